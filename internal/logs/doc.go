// Package logs reads the botanize log file for the `botanize logs` command.
//
// Tail returns the last N lines together with the byte offset they end at, and
// Follow polls from that offset, handing each appended line to a callback
// until the context ends. A truncated or rotated file restarts from zero.
package logs
