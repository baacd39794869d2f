// Package poll provides the domain types for polls and the publication gate.
//
// A Question carries a publication timestamp. The gate decides, relative to
// a supplied "now", whether a question is visible (published at or before
// now) and whether it was published recently (within the last day).
//
// Key constraints:
//   - Gate functions are pure: no clock reads, no I/O, inputs never mutated
//   - "now" always comes from a Clock owned by the caller
//   - Listing order is PubDate descending, then Seq descending
//
// This package imports nothing internal. The store, web and cli packages
// build on it.
package poll
