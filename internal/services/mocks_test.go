package services

import (
	"context"
	"testing"
	"time"

	"github.com/savingsjars/backend/internal/audit"
	"github.com/savingsjars/backend/internal/config"
	"github.com/savingsjars/backend/internal/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKVStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKVStore) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// Wednesday.
var testNow = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testLedgerConfig() config.LedgerConfig {
	cfg := config.DefaultLedgerConfig()
	cfg.Location = time.UTC
	return cfg
}

func newTestStoreOn(t *testing.T, store kv.Store) (*LedgerStore, *testClock) {
	t.Helper()
	clock := &testClock{now: testNow}
	ls := NewLedgerStore(store, "test", testLedgerConfig(),
		WithClock(clock.Now),
		WithAuditLogger(audit.NewLoggerWithSink(func(string) {})),
	)
	return ls, clock
}

func newTestStore(t *testing.T) (*LedgerStore, *testClock) {
	t.Helper()
	return newTestStoreOn(t, kv.NewMemoryStore())
}

func amt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrAmt(v int64) *decimal.Decimal {
	d := amt(v)
	return &d
}
