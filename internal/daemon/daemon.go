package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"botanize/internal/logging"
)

// ErrAlreadyRunning is returned when another process holds the lock.
var ErrAlreadyRunning = errors.New("another botanize server is already running")

// Component is a long-running part of the server. Run blocks until ctx is
// cancelled and returns nil on a clean stop.
type Component interface {
	Run(ctx context.Context) error
}

// Named labels a component for logs.
type Named struct {
	Name string
	Component
}

// Daemon runs components under a single-instance lock.
type Daemon struct {
	logger     *slog.Logger
	lockPath   string
	lock       *flock.Flock
	components []Named

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running    bool     `json:"running"`
	LockPath   string   `json:"lock_path"`
	Components []string `json:"components"`
}

// New prepares a daemon guarded by the lock file at lockPath.
func New(lockPath string, logger *slog.Logger, components ...Named) (*Daemon, error) {
	if lockPath == "" {
		return nil, errors.New("daemon requires a lock path")
	}
	if len(components) == 0 {
		return nil, errors.New("daemon requires at least one component")
	}
	for _, c := range components {
		if c.Component == nil {
			return nil, fmt.Errorf("daemon component %q is nil", c.Name)
		}
	}
	return &Daemon{
		logger:     logging.NewComponentLogger(logger, "daemon"),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
		components: components,
	}, nil
}

// Run acquires the lock and runs every component until ctx is cancelled or
// one of them returns an error, which cancels the rest.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
				logging.String("lock", d.lockPath),
				logging.Error(err))
		}
	}()

	d.logger.Info("botanize server started",
		logging.String("lock", d.lockPath),
		logging.Int("components", len(d.components)))

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range d.components {
		g.Go(func() error {
			if err := c.Run(gctx); err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		d.logger.Error("botanize server stopped", logging.Error(err))
		return err
	}
	d.logger.Info("botanize server stopped")
	return nil
}

// Status reports whether Run is active.
func (d *Daemon) Status() Status {
	names := make([]string, 0, len(d.components))
	for _, c := range d.components {
		names = append(names, c.Name)
	}
	return Status{Running: d.running.Load(), LockPath: d.lockPath, Components: names}
}
