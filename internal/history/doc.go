// Package history persists an operational record of download runs in
// SQLite: one row per invocation with its kind, variable filter, outcome
// counters, and timing. The database is an append-only log surfaced by the
// `chelsa runs` command; schema changes bump the version and users recreate
// the file.
package history
