package session

import "errors"

var (
	// ErrQuotaExceeded is returned when a free user has used today's answers.
	ErrQuotaExceeded = errors.New("daily trait answer limit reached")
	// ErrEntitlementRequired is returned when the tier does not include a feature.
	ErrEntitlementRequired = errors.New("feature requires a paid tier")
)
