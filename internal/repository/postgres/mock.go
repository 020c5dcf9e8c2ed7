package postgres

import (
	"context"
	"sync"

	"github.com/diabetesguard/backend/internal/domain"
)

// DefaultMockCapacity bounds how many prediction logs the mock keeps
const DefaultMockCapacity = 500

// MockRepository implements domain.PredictionRepository in memory for
// testing/demo mode. It keeps the newest entries up to its capacity.
type MockRepository struct {
	mu      sync.RWMutex
	entries []domain.PredictionLog
	next    int
	full    bool
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return NewMockRepositoryWithCapacity(DefaultMockCapacity)
}

// NewMockRepositoryWithCapacity creates a mock that keeps at most capacity entries
func NewMockRepositoryWithCapacity(capacity int) *MockRepository {
	if capacity < 1 {
		capacity = 1
	}
	return &MockRepository{entries: make([]domain.PredictionLog, capacity)}
}

// SavePredictionLog stores the entry, evicting the oldest when full
func (r *MockRepository) SavePredictionLog(ctx context.Context, entry domain.PredictionLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = entry
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// RecentPredictions returns up to limit entries, newest first
func (r *MockRepository) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.full {
		size = len(r.entries)
	}
	if limit > size {
		limit = size
	}

	out := make([]domain.PredictionLog, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		out = append(out, r.entries[idx])
	}
	return out, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
