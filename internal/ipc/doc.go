// Package ipc exposes the document sandbox over JSON-RPC on a Unix socket and
// ships the matching client used by the CLI.
//
// The service is registered as "Sandbox" and mirrors the document proxy
// operations plus status, snapshot and credential updates. Request types carry
// the caller's request ID so logs on both sides of the socket correlate. The
// client honours context cancellation and restores error classification from
// the server's error text, so errors.Is works against the services sentinels.
package ipc
