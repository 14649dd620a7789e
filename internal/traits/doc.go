// Package traits defines the organ-specific question catalog used to narrow a
// plant down by what the observer can see, along with the Selection type that
// carries the answers.
//
// The catalog is a fixed, ordered table. Cards pairs each question with the
// vocabulary terms offered as answers and drops questions that have none.
package traits
