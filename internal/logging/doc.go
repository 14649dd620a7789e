// Package logging wires log/slog for botanize with a console handler for
// terminals and a JSON handler for files and machines.
//
// Components receive a *slog.Logger and derive a component-scoped child with
// NewComponentLogger. Standardized field keys (component, event_type,
// error_hint, impact, decision_type) keep warnings and scoring decisions
// searchable across the CLI, the HTTP API, and the quota tracker.
//
// Warnings should explain cause, impact, and next step; WarnWithContext fills
// in defaults when a caller omits one of those fields.
package logging
