package model

import (
	"errors"
	"fmt"
	"math"
)

// Scaler is a standard scaler: (x - mean) / scale per column.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Width is the number of columns the scaler was fit on
func (s *Scaler) Width() int {
	return len(s.Mean)
}

func (s *Scaler) validate() error {
	if len(s.Mean) == 0 {
		return errors.New("scaler has no columns")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler mean has %d columns, scale has %d", len(s.Mean), len(s.Scale))
	}
	return nil
}

// Transform returns a scaled copy of x. A zero scale (constant training
// column) is treated as 1.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != s.Width() {
		return nil, fmt.Errorf("scaler: got %d columns, want %d", len(x), s.Width())
	}
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

// Imputer replaces missing (NaN) values with per-column statistics.
type Imputer struct {
	Strategy   string    `json:"strategy"`
	Statistics []float64 `json:"statistics"`
}

// Width is the number of columns the imputer was fit on
func (m *Imputer) Width() int {
	return len(m.Statistics)
}

func (m *Imputer) validate() error {
	if len(m.Statistics) == 0 {
		return errors.New("imputer has no statistics")
	}
	for i, v := range m.Statistics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("imputer statistic %d is not finite", i)
		}
	}
	return nil
}

// Transform returns a copy of x with NaN entries replaced
func (m *Imputer) Transform(x []float64) ([]float64, error) {
	if len(x) != m.Width() {
		return nil, fmt.Errorf("imputer: got %d columns, want %d", len(x), m.Width())
	}
	out := make([]float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			v = m.Statistics[i]
		}
		out[i] = v
	}
	return out, nil
}
