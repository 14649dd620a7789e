// Package session drives the two identification flows.
//
// ObserveSession walks the trait questions for one organ, charging each
// answer against the daily quota before it is stored. Identifier sends a
// photo to the recognition provider, re-scores the candidates with any
// verified traits and optionally saves the winner to the journal.
package session
