package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/internal/features"
	"github.com/diabetesguard/backend/internal/model"
	"github.com/diabetesguard/backend/internal/recommend"
	"github.com/diabetesguard/backend/internal/scoring"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// ModelStatus describes the model bundle for health reporting
type ModelStatus struct {
	Loaded    bool   `json:"loaded"`
	ModelName string `json:"model_name,omitempty"`
	Dir       string `json:"dir,omitempty"`
	Features  int    `json:"features,omitempty"`
}

// PredictionService scores health profiles and records each prediction
type PredictionService struct {
	models BundleSource
	repo   PredictionRepository
	opts   features.Options
	log    *zap.Logger

	mu        sync.Mutex
	scorer    *scoring.Scorer
	scorerFor *model.Bundle

	wgBg sync.WaitGroup // tracks background log writes for graceful shutdown
}

// NewPredictionService creates a new prediction service
func NewPredictionService(models BundleSource, repo PredictionRepository, opts features.Options, log *zap.Logger) *PredictionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PredictionService{models: models, repo: repo, opts: opts, log: log}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *PredictionService) WaitBackground() {
	s.wgBg.Wait()
}

// Predict scores the request and builds recommendations for it. Model load
// failures are returned as-is so callers can tell them apart from bad input.
func (s *PredictionService) Predict(ctx context.Context, req domain.PredictionRequest) (domain.PredictionResponse, error) {
	scorer, err := s.currentScorer()
	if err != nil {
		return domain.PredictionResponse{}, err
	}

	vec, result, err := scorer.Assess(features.Input(req.Fields()))
	if err != nil {
		return domain.PredictionResponse{}, err
	}

	requestID := uuid.NewString()
	if len(vec.Defaulted) > 0 {
		s.log.Warn("features defaulted to 0",
			zap.String("request_id", requestID),
			zap.Strings("columns", vec.Defaulted),
		)
	}

	profile := req.Profile()
	recs := recommend.For(profile)

	entry := domain.PredictionLog{
		ID:        requestID,
		Profile:   profile,
		Result:    result,
		ModelName: scorer.ModelName(),
		CreatedAt: time.Now().UTC(),
	}
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SavePredictionLog(bgCtx, entry); err != nil {
			s.log.Error("failed to save prediction log", zap.String("request_id", requestID), zap.Error(err))
		}
	}()

	s.log.Debug("prediction",
		zap.String("request_id", requestID),
		zap.Float64("probability", result.Probability),
		zap.String("risk_level", string(result.RiskLevel)),
	)

	return domain.PredictionResponse{
		RequestID:         requestID,
		RiskLevel:         result.RiskLevel,
		Probability:       result.Probability,
		Prediction:        result.Diabetic,
		Recommendations:   recommend.Texts(recs),
		DefaultedFeatures: vec.Defaulted,
		ModelName:         scorer.ModelName(),
	}, nil
}

// Recommendations runs the rule engine alone; no model is needed
func (s *PredictionService) Recommendations(req domain.PredictionRequest) []domain.Recommendation {
	return recommend.For(req.Profile())
}

// Recent returns logged predictions, newest first. limit is clamped to
// [1, MaxRecentLimit]; zero or less means DefaultRecentLimit.
func (s *PredictionService) Recent(ctx context.Context, limit int) ([]domain.PredictionLog, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	return s.repo.RecentPredictions(ctx, limit)
}

// ModelStatus reports whether a bundle is loaded without triggering a load
func (s *PredictionService) ModelStatus() ModelStatus {
	if !s.models.Loaded() {
		return ModelStatus{}
	}
	b, err := s.models.Get()
	if err != nil {
		return ModelStatus{}
	}
	return ModelStatus{Loaded: true, ModelName: b.Manifest.ModelName, Dir: b.Dir, Features: b.Width()}
}

// RepositoryHealth checks the prediction log store
func (s *PredictionService) RepositoryHealth(ctx context.Context) error {
	return s.repo.Health(ctx)
}

// currentScorer returns a scorer for the current bundle, building it once per bundle.
func (s *PredictionService) currentScorer() (*scoring.Scorer, error) {
	b, err := s.models.Get()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scorer != nil && s.scorerFor == b {
		return s.scorer, nil
	}
	sc, err := scoring.NewScorer(b, s.opts)
	if err != nil {
		return nil, err
	}
	s.scorer, s.scorerFor = sc, b
	return sc, nil
}
