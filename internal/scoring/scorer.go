// Package scoring runs a prepared feature vector through a loaded bundle:
// impute, then scale, then predict.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/internal/features"
	"github.com/diabetesguard/backend/internal/model"
	"github.com/diabetesguard/backend/pkg/utils"
)

// SchemaMismatchError reports a vector that does not match the bundle schema
type SchemaMismatchError struct {
	Expected []string
	Got      []string
}

func (e *SchemaMismatchError) Error() string {
	if len(e.Expected) != len(e.Got) {
		return fmt.Sprintf("scoring: vector has %d columns, model expects %d", len(e.Got), len(e.Expected))
	}
	for i := range e.Expected {
		if e.Expected[i] != e.Got[i] {
			return fmt.Sprintf("scoring: column %d is %q, model expects %q", i, e.Got[i], e.Expected[i])
		}
	}
	return "scoring: schema mismatch"
}

func (e *SchemaMismatchError) Unwrap() error {
	return domain.ErrSchemaMismatch
}

// Scorer scores vectors against one bundle
type Scorer struct {
	bundle   *model.Bundle
	preparer *features.Preparer
}

// NewScorer builds a scorer and a preparer for the bundle's schema. Age
// quartile edges from the bundle manifest are used unless opts sets them.
func NewScorer(b *model.Bundle, opts features.Options) (*Scorer, error) {
	if len(opts.AgeRiskEdges) == 0 {
		opts.AgeRiskEdges = b.Manifest.AgeRiskEdges
	}
	p, err := features.NewPreparer(b.Columns, opts)
	if err != nil {
		return nil, err
	}
	return &Scorer{bundle: b, preparer: p}, nil
}

// Prepare encodes in with the bundle's schema
func (s *Scorer) Prepare(in features.Input) (features.FeatureVector, error) {
	return s.preparer.Prepare(in)
}

// Score returns the positive-class probability, class label and risk band.
func (s *Scorer) Score(v features.FeatureVector) (domain.PredictionResult, error) {
	if err := s.checkSchema(v); err != nil {
		return domain.PredictionResult{}, err
	}

	x := v.Values
	var err error
	if s.bundle.Imputer != nil {
		if x, err = s.bundle.Imputer.Transform(x); err != nil {
			return domain.PredictionResult{}, fmt.Errorf("scoring: impute: %w", err)
		}
	}
	for i, val := range x {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return domain.PredictionResult{}, fmt.Errorf("scoring: column %q has no usable value: %w", v.Columns[i], domain.ErrMalformedInput)
		}
	}
	if x, err = s.bundle.Scaler.Transform(x); err != nil {
		return domain.PredictionResult{}, fmt.Errorf("scoring: scale: %w", err)
	}

	proba, err := s.bundle.Classifier.PredictProba(x)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("scoring: predict: %w", err)
	}
	p := utils.Clamp(proba[s.bundle.Classifier.PositiveIndex()], 0, 1)

	return domain.PredictionResult{
		Probability: p,
		// ties go to the negative class, as argmax picks the first maximum
		Diabetic:  p > 0.5,
		RiskLevel: Level(p),
	}, nil
}

// Assess prepares and scores in one step
func (s *Scorer) Assess(in features.Input) (features.FeatureVector, domain.PredictionResult, error) {
	v, err := s.Prepare(in)
	if err != nil {
		return features.FeatureVector{}, domain.PredictionResult{}, err
	}
	res, err := s.Score(v)
	return v, res, err
}

func (s *Scorer) checkSchema(v features.FeatureVector) error {
	want := s.bundle.Columns
	if len(v.Values) != len(want) || len(v.Columns) != len(want) {
		return &SchemaMismatchError{Expected: want, Got: v.Columns}
	}
	for i := range want {
		if v.Columns[i] != want[i] {
			return &SchemaMismatchError{Expected: want, Got: v.Columns}
		}
	}
	return nil
}

// ModelName identifies the bundle for logs and responses
func (s *Scorer) ModelName() string {
	if n := strings.TrimSpace(s.bundle.Manifest.ModelName); n != "" {
		return n
	}
	return string(s.bundle.Classifier.Kind)
}
