// Package logging assembles structured slog loggers and formatting helpers used
// across EqualMedia.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so panel and document code can
// tag log lines with the feature being generated and the request correlation
// ID. WarnWithContext keeps warnings actionable by always attaching an event
// type, a hint, and the user-facing impact.
//
// The daemon logger writes the configured format to stderr and tees JSON lines
// into paths.log_dir/equalmedia.log.
package logging
