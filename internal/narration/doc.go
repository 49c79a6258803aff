// Package narration models synthesized narration audio and its duration
// estimate.
package narration
