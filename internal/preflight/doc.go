// Package preflight provides readiness checks for the paths, reference data
// and external services botanize depends on.
//
// `botanize config validate` prints every Result; `botanize serve` runs the
// same checks at startup and logs failures without refusing to start, since a
// missing Pl@ntNet key only disables photo identification.
//
// Each check is gated by its config: the Pl@ntNet probe is skipped when no
// api key is configured.
package preflight
