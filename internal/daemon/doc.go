// Package daemon hosts the document sandbox as a long-running process.
//
// It owns the in-memory scene, the document proxy, the three feature panels
// and the credential store, and guards the process with a flock so only one
// sandbox runs per log directory. The daemon serves an HTTP panel API on the
// configured bind address and hot-reloads Google credentials when the config
// file changes. The JSON-RPC socket lives in package ipc and wraps a Daemon.
package daemon
