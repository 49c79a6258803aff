// Package config loads, normalizes, and validates EqualMedia configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GOOGLE_CLOUD_API_KEY and GOOGLE_CLOUD_PROJECT. The Config type centralizes
// every knob the daemon and CLI need: Google Cloud endpoints, caption and
// narration tuning, avatar placement, and the socket/API bind addresses.
//
// Runtime credentials live in a Store rather than in package state. The
// daemon creates one Store at startup, seeds it from Config.Credentials, and
// hands it to the cloud adapters. WatchCredentials keeps the Store in sync
// with edits to the config file.
package config
