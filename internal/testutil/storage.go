package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nhle/carereminder/internal/storage"
)

// ErrInjected is returned by FailingStorage when a failure is switched on.
var ErrInjected = errors.New("injected storage failure")

// NewTestStorage creates an in-memory SQLite adapter with all migrations
// applied. It automatically closes the adapter when the test completes.
func NewTestStorage(t *testing.T) *storage.SQLite {
	t.Helper()

	s, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("creating test storage: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test storage: %v", err)
		}
	})

	return s
}

// FailingStorage wraps an adapter and fails reads or writes on demand.
type FailingStorage struct {
	storage.Adapter

	mu       sync.Mutex
	failGet  bool
	failSet  bool
	setCalls int
}

// NewFailingStorage wraps next.
func NewFailingStorage(next storage.Adapter) *FailingStorage {
	return &FailingStorage{Adapter: next}
}

// FailReads makes every subsequent Get fail when on is true.
func (f *FailingStorage) FailReads(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = on
}

// FailWrites makes every subsequent Set fail when on is true.
func (f *FailingStorage) FailWrites(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet = on
}

// SetCalls returns how many times Set was called, failed or not.
func (f *FailingStorage) SetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

func (f *FailingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return "", false, ErrInjected
	}
	return f.Adapter.Get(ctx, key)
}

func (f *FailingStorage) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := f.failSet
	f.setCalls++
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Adapter.Set(ctx, key, value)
}
