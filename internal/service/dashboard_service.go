package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/diabetesguard/backend/internal/dataset"
	"github.com/diabetesguard/backend/internal/domain"
)

// DashboardService computes dataset statistics for the analytics pages
type DashboardService struct {
	load  func() (*dataset.Dataset, error)
	cache StatsCache // optional
	ttl   time.Duration
	log   *zap.Logger

	mu   sync.Mutex
	data *dataset.Dataset
	corr *domain.CorrelationMatrix

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewDashboardService creates a new dashboard service. The dataset is loaded
// on first use; a failed load is retried on the next call. cache may be nil.
func NewDashboardService(load func() (*dataset.Dataset, error), cache StatsCache, ttl time.Duration, log *zap.Logger) *DashboardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DashboardService{load: load, cache: cache, ttl: ttl, log: log}
}

// WaitBackground blocks until all background cache writes complete.
func (s *DashboardService) WaitBackground() {
	s.wgBg.Wait()
}

func (s *DashboardService) dataset() (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data != nil {
		return s.data, nil
	}
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	s.log.Info("dataset loaded", zap.String("path", d.Path), zap.Int("records", d.Rows))
	s.data = d
	return d, nil
}

// GetDashboardData computes summary and correlation concurrently using goroutines
func (s *DashboardService) GetDashboardData(ctx context.Context) (domain.DashboardData, error) {
	if _, err := s.dataset(); err != nil {
		return domain.DashboardData{}, err
	}

	var (
		summary domain.DatasetSummary
		corr    domain.CorrelationMatrix
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		sm, err := s.GetSummary(ctx)
		mu.Lock()
		if err != nil {
			errs = append(errs, err)
		} else {
			summary = sm
		}
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		c, err := s.GetCorrelation(ctx)
		mu.Lock()
		if err != nil {
			errs = append(errs, err)
		} else {
			corr = c
		}
		mu.Unlock()
	}()

	wg.Wait()

	if len(errs) > 0 {
		return domain.DashboardData{}, errs[0]
	}

	return domain.DashboardData{
		Summary:     summary,
		Correlation: corr,
		Reference:   dataset.Reference(),
		Timestamp:   time.Now(),
	}, nil
}

// GetSummary returns the dataset summary, served from the stats cache when
// one is configured. Cache failures are logged and fall back to computing.
func (s *DashboardService) GetSummary(ctx context.Context) (domain.DatasetSummary, error) {
	if s.cache != nil {
		sm, ok, err := s.cache.GetSummary(ctx)
		if err != nil {
			s.log.Warn("stats cache read failed", zap.Error(err))
		} else if ok {
			return sm, nil
		}
	}

	d, err := s.dataset()
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	sm := dataset.Summary(d)

	if s.cache != nil {
		s.wgBg.Add(1)
		go func() {
			defer s.wgBg.Done()
			bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.cache.SetSummary(bgCtx, sm, s.ttl); err != nil {
				s.log.Warn("stats cache write failed", zap.Error(err))
			}
		}()
	}
	return sm, nil
}

// GetCorrelation returns the Pearson matrix, computed once per process
func (s *DashboardService) GetCorrelation(ctx context.Context) (domain.CorrelationMatrix, error) {
	d, err := s.dataset()
	if err != nil {
		return domain.CorrelationMatrix{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.corr == nil {
		c := dataset.Correlation(d)
		s.corr = &c
	}
	return *s.corr, nil
}

// GetDistribution returns a histogram of one numeric column
func (s *DashboardService) GetDistribution(ctx context.Context, column string, bins int) (domain.Histogram, error) {
	d, err := s.dataset()
	if err != nil {
		return domain.Histogram{}, err
	}
	return dataset.Histogram(d, column, bins)
}

// NumericColumns lists the columns a distribution can be requested for
func (s *DashboardService) NumericColumns(ctx context.Context) ([]string, error) {
	d, err := s.dataset()
	if err != nil {
		return nil, err
	}
	return d.NumericColumns(), nil
}

// GetReference returns static feature descriptions, ranges and risk factors
func (s *DashboardService) GetReference() domain.ReferenceData {
	return dataset.Reference()
}

// Export renders the summary and correlation matrix as an XLSX workbook
func (s *DashboardService) Export(ctx context.Context) ([]byte, error) {
	data, err := s.GetDashboardData(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.ExportWorkbook(data.Summary, data.Correlation)
}
