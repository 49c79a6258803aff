// Package document renders accessibility payloads into a host document.
//
// Editor is the narrow drawing surface the host exposes (rectangles, text,
// color fills and an insertion parent); Scene is the in-memory host used by
// the daemon and tests. Proxy turns captions, narration and avatar payloads
// into placeholder visuals. Insertion is best-effort per element: a failing
// caption or label is logged, recorded in the InsertSummary and skipped.
package document
