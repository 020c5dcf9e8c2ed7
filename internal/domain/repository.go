package domain

import (
	"context"
	"time"
)

// PredictionRepository defines the interface for prediction log persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type PredictionRepository interface {
	// SavePredictionLog persists a prediction and its input profile
	SavePredictionLog(ctx context.Context, entry PredictionLog) error

	// RecentPredictions returns the newest entries first
	RecentPredictions(ctx context.Context, limit int) ([]PredictionLog, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}

// StatsCache stores computed dashboard statistics between requests
type StatsCache interface {
	// GetSummary returns ok=false on a cache miss
	GetSummary(ctx context.Context) (summary DatasetSummary, ok bool, err error)

	// SetSummary stores the summary for ttl
	SetSummary(ctx context.Context, summary DatasetSummary, ttl time.Duration) error
}
