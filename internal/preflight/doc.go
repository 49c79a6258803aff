// Package preflight provides readiness checks for the Google Cloud
// credentials, filesystem paths, and listeners that EqualMedia depends on.
//
// The CLI "equalmedia doctor" command runs RunAll and renders each Result;
// CheckSandbox is shared with "equalmedia status" to report whether a
// sandbox answers on the configured socket.
package preflight
