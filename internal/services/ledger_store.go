package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/savingsjars/backend/internal/audit"
	"github.com/savingsjars/backend/internal/config"
	"github.com/savingsjars/backend/internal/kv"
	"github.com/savingsjars/backend/internal/metrics"
)

// Collection names; each is stored under "<prefix>:<name>".
const (
	colGoals            = "goals"
	colContributions    = "contributions"
	colSettings         = "settings"
	colWorkSessions     = "work_sessions"
	colSafe             = "safe"
	colSafeTransactions = "safe_transactions"
)

// lockOrder is the global acquisition order; every operation locks its
// collections in this order so two operations never wait on each other in a cycle.
var lockOrder = []string{
	colGoals,
	colContributions,
	colSafe,
	colSafeTransactions,
	colWorkSessions,
	colSettings,
}

type collectionLocks struct {
	mu    map[string]*sync.Mutex
	order map[string]int
}

func newCollectionLocks() *collectionLocks {
	l := &collectionLocks{
		mu:    make(map[string]*sync.Mutex, len(lockOrder)),
		order: make(map[string]int, len(lockOrder)),
	}
	for i, name := range lockOrder {
		l.mu[name] = &sync.Mutex{}
		l.order[name] = i
	}
	return l
}

// acquire locks the named collections for one read-modify-write cycle and
// returns the matching unlock func.
func (l *collectionLocks) acquire(names ...string) func() {
	sorted := append([]string(nil), names...)
	sort.Slice(sorted, func(i, j int) bool { return l.order[sorted[i]] < l.order[sorted[j]] })

	held := make([]*sync.Mutex, 0, len(sorted))
	for i, name := range sorted {
		if i > 0 && sorted[i-1] == name {
			continue
		}
		m := l.mu[name]
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// LedgerStore owns every ledger collection and keeps the derived totals
// (goal current amounts, safe balance, average daily earning) consistent.
type LedgerStore struct {
	kv        kv.Store
	prefix    string
	cfg       config.LedgerConfig
	locks     *collectionLocks
	audit     *audit.Logger
	validator *ValidationHelper
	now       func() time.Time
	newID     func() string
}

// Option customises a LedgerStore.
type Option func(*LedgerStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerStore) { s.now = now }
}

// WithAuditLogger replaces the default stdlib-backed audit logger.
func WithAuditLogger(logger *audit.Logger) Option {
	return func(s *LedgerStore) { s.audit = logger }
}

func NewLedgerStore(store kv.Store, keyPrefix string, cfg config.LedgerConfig, opts ...Option) *LedgerStore {
	if keyPrefix == "" {
		keyPrefix = "savingsjars"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	s := &LedgerStore{
		kv:        store,
		prefix:    keyPrefix,
		cfg:       cfg,
		locks:     newCollectionLocks(),
		audit:     audit.NewLogger(),
		validator: NewValidationHelper(),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LedgerStore) key(collection string) string {
	return s.prefix + ":" + collection
}

// Keys returns the fully qualified storage key of every collection.
func (s *LedgerStore) Keys() []string {
	keys := make([]string, 0, len(lockOrder))
	for _, name := range lockOrder {
		keys = append(keys, s.key(name))
	}
	return keys
}

func (s *LedgerStore) clock() time.Time {
	return s.now().In(s.cfg.Location)
}

// read loads one collection into out. A missing key leaves out untouched and
// is not an error. Storage and decode failures are logged and returned
// wrapped in ErrStorageUnavailable so callers can refuse to write over data
// they never saw.
func (s *LedgerStore) read(ctx context.Context, collection string, out any) error {
	key := s.key(collection)
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("[LedgerStore] read - key: %s, error: %v", key, err)
		metrics.StorageFailures.WithLabelValues("read").Inc()
		return fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("[LedgerStore] read - key: %s, decode error: %v", key, err)
		metrics.StorageFailures.WithLabelValues("decode").Inc()
		return fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

// write persists one collection. Failures are logged and dropped.
func (s *LedgerStore) write(ctx context.Context, collection string, value any) bool {
	key := s.key(collection)
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[LedgerStore] write - key: %s, encode error: %v", key, err)
		metrics.StorageFailures.WithLabelValues("encode").Inc()
		return false
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		log.Printf("[LedgerStore] write - key: %s, error: %v", key, err)
		metrics.StorageFailures.WithLabelValues("write").Inc()
		s.audit.LogError(audit.StorageWriteFailed, key, err)
		return false
	}
	return true
}

// ClearAll removes every collection key. Removal is sequential with no
// transaction around it.
func (s *LedgerStore) ClearAll(ctx context.Context) {
	unlock := s.locks.acquire(lockOrder...)
	defer unlock()

	for _, key := range s.Keys() {
		if err := s.kv.Delete(ctx, key); err != nil {
			log.Printf("[LedgerStore] ClearAll - key: %s, error: %v", key, err)
			metrics.StorageFailures.WithLabelValues("delete").Inc()
		}
	}
	metrics.SafeBalance.Set(0)
	s.audit.LogOperation(audit.LedgerCleared, s.prefix, "")
	metrics.ObserveOperation("clear_all", metrics.ResultOK)
}

// observe records the outcome of an operation in metrics.
func observe(operation string, err error) {
	switch {
	case err == nil:
		metrics.ObserveOperation(operation, metrics.ResultOK)
	case IsNotFound(err):
		metrics.ObserveOperation(operation, metrics.ResultNotFound)
	case errors.Is(err, ErrStorageUnavailable):
		metrics.ObserveOperation(operation, metrics.ResultUnavailable)
	default:
		metrics.ObserveOperation(operation, metrics.ResultRejected)
	}
}
