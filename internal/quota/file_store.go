package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"botanize/internal/fileutil"
	"botanize/internal/logging"
)

// FileStore keeps quota values in a small JSON object on disk, rewritten
// atomically on every Set.
type FileStore struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

var (
	_ Backend = (*FileStore)(nil)
	_ Counter = (*FileStore)(nil)
)

// OpenFileStore loads path if it exists. A missing file starts empty, and so
// does a file that no longer parses; the next write replaces it.
func OpenFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("quota file path is empty")
	}
	s := &FileStore{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read quota file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		logging.WarnWithContext(logging.NewComponentLogger(logger, "quota"),
			"quota file unreadable; starting from zero usage", "quota_file_corrupt",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the file is rewritten on the next answer"),
			logging.String(logging.FieldImpact, "today's recorded usage is forgotten"))
		return s, nil
	}
	if values != nil {
		s.values = values
	}
	return s, nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(map[string]string{key: value})
}

// Consume implements Counter within this process; the file is not shared
// between processes.
func (s *FileStore) Consume(_ context.Context, req ConsumeRequest) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count, accepted := nextCount(s.values[req.DateKey], s.values[req.CountKey], req)
	err := s.update(map[string]string{
		req.CountKey: strconv.Itoa(count),
		req.DateKey:  req.Today,
	})
	if err != nil {
		return 0, false, err
	}
	return count, accepted, nil
}

// Close implements Backend.
func (s *FileStore) Close() error { return nil }

// update applies changes and persists them, restoring the previous values if
// the write fails. Callers hold mu.
func (s *FileStore) update(changes map[string]string) error {
	type prior struct {
		value   string
		existed bool
	}
	previous := make(map[string]prior, len(changes))
	for key, value := range changes {
		old, existed := s.values[key]
		previous[key] = prior{old, existed}
		s.values[key] = value
	}
	if err := s.save(); err != nil {
		for key, p := range previous {
			if p.existed {
				s.values[key] = p.value
			} else {
				delete(s.values, key)
			}
		}
		return fmt.Errorf("persist quota file: %w", err)
	}
	return nil
}

func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quota values: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save quota file: %w", err)
	}
	return nil
}
