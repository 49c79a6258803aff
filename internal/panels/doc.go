// Package panels orchestrates the three accessibility features: captions,
// narration and the sign-language avatar placeholder.
//
// Each panel takes user input, calls the relevant speech service, and hands the
// result to a DocumentAPI. Panels run one generation at a time and return
// ErrBusy for overlapping requests. Every call is stamped with a request ID
// that follows it into the logs and across the IPC boundary.
package panels
