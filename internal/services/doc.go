// Package services defines shared utilities consumed by the panels, the
// document proxy, and the cloud adapters.
//
// Key responsibilities:
//   - Context helpers that stamp the active feature and a correlation
//     identifier for logging.
//   - Structured error markers plus the Wrap helper, and the HTTPStatus
//     mapping the panel API uses to report them.
//
// Adapters for external services live in subpackages (googlecloud).
package services
