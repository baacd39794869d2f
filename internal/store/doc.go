// Package store provides SQLite-backed storage for poll questions and choices.
//
// The store is the persistence collaborator of the publication gate:
//   - Questions: text and publication time, ordered by pub_date then seq
//   - Choices: answers belonging to a question, with vote counters
//
// # Ordering
//
// Every question has a seq INTEGER assigned on insert. Listings order by
// pub_date DESC, pub_nanos DESC, seq DESC so that questions published at
// the same instant come back newest-insert first, matching poll.ListVisible.
//
// # Time
//
// pub_date holds UTC unix seconds and pub_nanos the nanosecond remainder,
// so any time.Time round-trips without overflow. Comparisons against "now"
// happen in SQL on integers and are exact; values read back are in UTC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Visibility is NOT enforced by Question or Choices; callers ask the gate.
// PublishedQuestions is the only query that filters on publication time.
package store
