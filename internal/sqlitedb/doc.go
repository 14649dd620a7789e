// Package sqlitedb opens the SQLite databases used for local state (quota
// counters and the observation journal) with a shared set of pragmas and a
// single-version schema check.
package sqlitedb
