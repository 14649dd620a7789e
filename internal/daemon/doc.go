// Package daemon coordinates the long-running `botanize serve` process.
//
// It takes a flock-based lock so only one server runs per state directory,
// then runs its components (the HTTP API and, optionally, the taxonomy file
// watcher) until the context is cancelled or one of them fails. Components
// own their own shutdown; the daemon only sequences startup, shutdown, and the
// lock.
package daemon
