package quota

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"botanize/internal/logging"
)

const (
	DefaultLimit    = 3
	DefaultCountKey = "observe_questions_today"
	DefaultDateKey  = "observe_questions_date"

	dateLayout = "2006-01-02"
)

// Outcome is the result of recording one answer.
type Outcome int

const (
	Accepted Outcome = iota
	Denied
)

func (o Outcome) String() string {
	if o == Denied {
		return "denied"
	}
	return "accepted"
}

// Entitlement reports whether the user bypasses the daily limit.
type Entitlement interface {
	UnlimitedMatching() bool
}

// Status summarizes today's usage.
type Status struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Unlimited bool   `json:"unlimited"`
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLocation sets the calendar used to decide when a day ends.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithLimit sets the number of answers allowed per day. Negative values are ignored.
func WithLimit(limit int) Option {
	return func(t *Tracker) {
		if limit >= 0 {
			t.limit = limit
		}
	}
}

// WithKeys renames the persisted count and date keys.
func WithKeys(countKey, dateKey string) Option {
	return func(t *Tracker) {
		if strings.TrimSpace(countKey) != "" {
			t.countKey = countKey
		}
		if strings.TrimSpace(dateKey) != "" {
			t.dateKey = dateKey
		}
	}
}

// WithLogger sets the tracker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// Tracker meters trait answers for users without unlimited matching.
type Tracker struct {
	store       Store
	entitlement Entitlement
	now         func() time.Time
	loc         *time.Location
	limit       int
	countKey    string
	dateKey     string
	logger      *slog.Logger
}

// keyLocks serializes read-modify-write per count key across trackers that
// share a store inside one process. Stores implementing Counter also guard
// against other processes.
var keyLocks sync.Map

// NewTracker builds a tracker over store. A nil entitlement meters everyone.
func NewTracker(store Store, entitlement Entitlement, opts ...Option) *Tracker {
	t := &Tracker{
		store:       store,
		entitlement: entitlement,
		now:         time.Now,
		loc:         time.Local,
		limit:       DefaultLimit,
		countKey:    DefaultCountKey,
		dateKey:     DefaultDateKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	t.logger = logging.NewComponentLogger(t.logger, "quota")
	return t
}

// Limit returns the configured daily limit.
func (t *Tracker) Limit() int {
	return t.limit
}

// CurrentCount returns the answers used today. A stale window is reset first.
// A storage error reads as zero without touching what is stored.
func (t *Tracker) CurrentCount(ctx context.Context) int {
	unlock := t.lock()
	defer unlock()
	count, _ := t.refresh(ctx)
	return count
}

// RecordAnswer consumes one answer from today's allowance. Entitled users are
// accepted without touching storage. A storage error accepts the answer and
// leaves the stored count as it was.
func (t *Tracker) RecordAnswer(ctx context.Context) Outcome {
	if t.unlimited() {
		return Accepted
	}
	unlock := t.lock()
	defer unlock()

	if counter, ok := t.store.(Counter); ok {
		return t.consume(ctx, counter)
	}

	count, ok := t.refresh(ctx)
	if !ok {
		return Accepted
	}
	if count >= t.limit {
		t.logDenied(count)
		return Denied
	}
	t.write(ctx, t.countKey, strconv.Itoa(count+1))
	t.logger.Debug("answer recorded", logging.Int("count", count+1), logging.Int("limit", t.limit))
	return Accepted
}

func (t *Tracker) consume(ctx context.Context, counter Counter) Outcome {
	count, accepted, err := counter.Consume(ctx, ConsumeRequest{
		CountKey: t.countKey,
		DateKey:  t.dateKey,
		Today:    t.today(),
		Limit:    t.limit,
	})
	if err != nil {
		t.warnStorage("quota update failed; allowing usage", "quota_write_failed", t.countKey, err)
		return Accepted
	}
	if !accepted {
		t.logDenied(count)
		return Denied
	}
	t.logger.Debug("answer recorded", logging.Int("count", count), logging.Int("limit", t.limit))
	return Accepted
}

func (t *Tracker) logDenied(count int) {
	t.logger.Info("answer denied",
		append(logging.Args(logging.DecisionAttrs("quota", "denied", "daily limit reached")...),
			logging.Int("count", count),
			logging.Int("limit", t.limit))...)
}

// Status reports today's usage. Entitled users see no count and no storage access.
func (t *Tracker) Status(ctx context.Context) Status {
	status := Status{Date: t.today(), Limit: t.limit}
	if t.unlimited() {
		status.Unlimited = true
		return status
	}
	status.Count = t.CurrentCount(ctx)
	status.Remaining = t.limit - status.Count
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	return status
}

func (t *Tracker) unlimited() bool {
	return t.entitlement != nil && t.entitlement.UnlimitedMatching()
}

func (t *Tracker) today() string {
	return t.now().In(t.loc).Format(dateLayout)
}

func (t *Tracker) lock() func() {
	value, _ := keyLocks.LoadOrStore(t.countKey, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// refresh returns today's count, resetting the stored window when the date
// stamp is missing or not today. ok is false after a storage error, in which
// case nothing is written. Callers hold the key lock.
func (t *Tracker) refresh(ctx context.Context) (count int, ok bool) {
	if t.store == nil {
		return 0, false
	}
	today := t.today()
	date, found, err := t.store.Get(ctx, t.dateKey)
	if err != nil {
		t.warnStorage("quota read failed; allowing usage", "quota_read_failed", t.dateKey, err)
		return 0, false
	}
	if !found || date != today {
		t.write(ctx, t.countKey, "0")
		t.write(ctx, t.dateKey, today)
		return 0, true
	}
	raw, found, err := t.store.Get(ctx, t.countKey)
	if err != nil {
		t.warnStorage("quota read failed; allowing usage", "quota_read_failed", t.countKey, err)
		return 0, false
	}
	if !found {
		return 0, true
	}
	count = parseCount(raw)
	if count == 0 && strings.TrimSpace(raw) != "0" {
		logging.WarnWithContext(t.logger, "quota count unreadable; treating as zero", "quota_read_failed",
			logging.String("key", t.countKey),
			logging.String("value", raw),
			logging.String(logging.FieldErrorHint, "the stored count will be overwritten on the next answer"),
			logging.String(logging.FieldImpact, "usage for today restarts from zero"))
	}
	return count, true
}

func (t *Tracker) write(ctx context.Context, key, value string) {
	if t.store == nil {
		return
	}
	if err := t.store.Set(ctx, key, value); err != nil {
		logging.WarnWithContext(t.logger, "quota write failed", "quota_write_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the quota backend configuration and connectivity"),
			logging.String(logging.FieldImpact, "answer not counted against today's limit"))
	}
}

func (t *Tracker) warnStorage(msg, eventType, key string, err error) {
	logging.WarnWithContext(t.logger, msg, eventType,
		logging.String("key", key),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the quota backend configuration and connectivity"),
		logging.String(logging.FieldImpact, "daily limit not enforced while storage is unavailable"))
}
