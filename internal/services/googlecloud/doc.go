// Package googlecloud adapts the Google Cloud Speech-to-Text and
// Text-to-Speech REST APIs to the caption and narration models.
//
// Both calls authenticate with an API key read from a Credentials source at
// call time, fail with ErrMissingAPIKey before touching the network when the
// key is absent, and report non-2xx responses as *APIError carrying the
// server-provided message (or the HTTP status text when the body has none).
package googlecloud
