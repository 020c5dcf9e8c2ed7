package service

import (
	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/internal/model"
)

// PredictionRepository is re-exported from domain for convenience
type PredictionRepository = domain.PredictionRepository

// StatsCache is re-exported from domain for convenience
type StatsCache = domain.StatsCache

// BundleSource yields the loaded model bundle. *model.Cache implements it.
type BundleSource interface {
	Get() (*model.Bundle, error)
	Loaded() bool
}
