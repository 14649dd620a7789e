package quota

import (
	"context"
	"fmt"
	"log/slog"

	"botanize/internal/config"
	"botanize/internal/logging"
)

// Open returns the persistence backend named by cfg.Quota.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("quota: config is required")
	}
	switch cfg.Quota.Backend {
	case "", "sqlite":
		return OpenSQLiteStore(ctx, cfg.QuotaDBPath())
	case "file":
		return OpenFileStore(cfg.QuotaFilePath(), logger)
	case "redis":
		return NewRedisStore(RedisOptions{
			Addr:     cfg.Quota.RedisAddr,
			Password: cfg.Quota.RedisPassword,
			DB:       cfg.Quota.RedisDB,
			Prefix:   cfg.Quota.RedisPrefix,
		}), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("quota: unsupported backend %q", cfg.Quota.Backend)
	}
}

// OpenOrMemory is Open for callers that must keep working when storage is
// broken: on error it logs a warning and returns an empty MemoryStore, so usage
// starts from zero for the life of the process.
func OpenOrMemory(ctx context.Context, cfg *config.Config, logger *slog.Logger) Backend {
	backend, err := Open(ctx, cfg, logger)
	if err == nil {
		return backend
	}
	backendName := ""
	if cfg != nil {
		backendName = cfg.Quota.Backend
	}
	logging.WarnWithContext(logging.NewComponentLogger(logger, "quota"),
		"quota store unavailable; counting in memory", "quota_open_failed",
		logging.String("backend", backendName),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "run `botanize config validate` to check the quota backend"),
		logging.String(logging.FieldImpact, "usage is not persisted and restarts from zero"))
	return NewMemoryStore()
}

// NewTrackerFromConfig builds a tracker with the limit, keys and calendar from cfg.
func NewTrackerFromConfig(cfg *config.Config, store Store, entitlement Entitlement, opts ...Option) *Tracker {
	base := []Option{
		WithLimit(cfg.Quota.FreeDailyLimit),
		WithKeys(cfg.Quota.CountKey, cfg.Quota.DateKey),
		WithLocation(cfg.QuotaLocation()),
	}
	return NewTracker(store, entitlement, append(base, opts...)...)
}
