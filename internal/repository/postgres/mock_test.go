package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diabetesguard/backend/internal/domain"
)

var _ domain.PredictionRepository = (*MockRepository)(nil)
var _ domain.PredictionRepository = (*PostgresRepository)(nil)

func entry(i int) domain.PredictionLog {
	return domain.PredictionLog{ID: fmt.Sprintf("id-%d", i)}
}

func logIDs(logs []domain.PredictionLog) []string {
	out := make([]string, len(logs))
	for i, l := range logs {
		out[i] = l.ID
	}
	return out
}

func TestMockRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewMockRepositoryWithCapacity(10)
	for i := 1; i <= 3; i++ {
		require.NoError(t, r.SavePredictionLog(ctx, entry(i)))
	}

	got, err := r.RecentPredictions(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-3", "id-2"}, logIDs(got))

	got, err = r.RecentPredictions(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-3", "id-2", "id-1"}, logIDs(got))
}

func TestMockEvictsOldest(t *testing.T) {
	ctx := context.Background()
	r := NewMockRepositoryWithCapacity(3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, r.SavePredictionLog(ctx, entry(i)))
	}

	got, err := r.RecentPredictions(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-5", "id-4", "id-3"}, logIDs(got))
}

func TestMockEmptyAndCanceled(t *testing.T) {
	r := NewMockRepository()
	got, err := r.RecentPredictions(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, r.Health(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, r.SavePredictionLog(ctx, entry(1)))
}

func TestMockConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	r := NewMockRepositoryWithCapacity(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.SavePredictionLog(ctx, entry(i))
		}(i)
	}
	wg.Wait()

	got, err := r.RecentPredictions(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}
