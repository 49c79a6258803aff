// Package captions holds the caption model and the conversion from a
// speech-recognition response into time-stamped captions.
//
// Builder.Build is the one piece of real logic: each recognition result yields
// at most one caption, timed from its word offsets when they are present and
// from a fixed fallback window otherwise. The package also renders the
// on-document "[m:ss-m:ss] text" labels and reads and writes SubRip files.
package captions
