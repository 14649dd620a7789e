// Package quota enforces the free tier's daily limit on trait answers.
//
// Tracker keeps two values in a key-value Store: the number of answers used
// today and the yyyy-MM-dd stamp that count belongs to. When the stamp no
// longer matches today (computed from an injected clock in a fixed location)
// the count starts over. Entitled users bypass the tracker without touching
// storage.
//
// Storage failures never block the user: unreadable state counts as zero
// usage and failed writes are logged and dropped. Stores exist for SQLite,
// a JSON file, Redis, and memory; Open picks one from configuration.
package quota
