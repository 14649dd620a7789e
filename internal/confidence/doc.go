// Package confidence refines image-recognition scores with traits the user
// has verified by eye.
//
// Each verified trait nudges a candidate's score: agreement with the local
// species record adds MatchBonus, anything else (a contradiction or an
// undocumented trait) subtracts MismatchPenalty. This differs from the
// observe matcher, which never rewards or punishes an undocumented trait
// beyond counting it; the two rules are kept apart on purpose and should be
// revisited together if either changes.
package confidence
