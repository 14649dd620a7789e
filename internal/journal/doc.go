// Package journal records confirmed identifications in a SQLite database.
//
// Each Entry keeps the species, the mode that produced it (observe, capture
// or both), the provider's raw score next to the trait-adjusted score, and
// the traits the user verified. Entries are listed newest first.
package journal
