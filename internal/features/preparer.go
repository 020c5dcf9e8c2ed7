// Package features turns a raw health profile into the fixed-order numeric
// vector the classifier was trained on.
package features

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/diabetesguard/backend/internal/domain"
)

// Input maps a column name to its raw value. Values may be numbers,
// numeric strings, category names, or nil for an explicit missing value.
type Input map[string]any

// FeatureVector is the ordered numeric encoding of one profile
type FeatureVector struct {
	Columns   []string
	Values    []float64
	Defaulted []string // expected columns absent from the input, filled with 0
}

// Options tunes the preparer
type Options struct {
	// Strict rejects inputs that lack an expected column instead of filling 0.
	Strict bool
	// AgeRiskEdges are the training-time age quartile edges.
	AgeRiskEdges []float64
}

// MalformedInputError reports a value that cannot be converted to a number
type MalformedInputError struct {
	Column string
	Value  any
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("features: column %q: cannot use %v (%T) as a number", e.Column, e.Value, e.Value)
}

func (e *MalformedInputError) Unwrap() error {
	return domain.ErrMalformedInput
}

// MissingFeatureError lists expected columns absent from a strict input
type MissingFeatureError struct {
	Columns []string
}

func (e *MissingFeatureError) Error() string {
	return "features: missing columns: " + strings.Join(e.Columns, ", ")
}

func (e *MissingFeatureError) Unwrap() error {
	return domain.ErrMalformedInput
}

// Preparer builds FeatureVectors for one fixed column schema
type Preparer struct {
	columns []string
	used    map[string]bool // schema columns plus inputs of derived columns
	opts    Options
}

// NewPreparer validates the schema: it must be non-empty with unique, non-blank names.
func NewPreparer(columns []string, opts Options) (*Preparer, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("features: empty column schema: %w", domain.ErrSchemaMismatch)
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("features: blank column name: %w", domain.ErrSchemaMismatch)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("features: duplicate column %q: %w", c, domain.ErrSchemaMismatch)
		}
		seen[c] = struct{}{}
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	used := make(map[string]bool, len(cols))
	for _, c := range cols {
		used[c] = true
		for _, in := range derivationInputs[c] {
			used[in] = true
		}
	}
	return &Preparer{columns: cols, used: used, opts: opts}, nil
}

// Columns returns a copy of the schema
func (p *Preparer) Columns() []string {
	out := make([]string, len(p.columns))
	copy(out, p.columns)
	return out
}

// Prepare converts in into a vector ordered by the schema. Keys the schema
// does not use are ignored. Expected columns that are neither supplied nor
// derivable are set to 0 and listed in Defaulted, unless Options.Strict is set.
func (p *Preparer) Prepare(in Input) (FeatureVector, error) {
	raw := make(map[string]float64, len(in))
	// sorted so the first reported error does not depend on map iteration
	keys := make([]string, 0, len(in))
	for k := range in {
		if p.used[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := toFloat(k, in[k])
		if err != nil {
			return FeatureVector{}, err
		}
		raw[k] = v
	}

	vec := FeatureVector{
		Columns: p.Columns(),
		Values:  make([]float64, len(p.columns)),
	}
	for i, col := range p.columns {
		if v, ok := raw[col]; ok {
			vec.Values[i] = v
			continue
		}
		if derive, ok := derivations[col]; ok {
			if v, ok := derive(raw, p.opts); ok {
				vec.Values[i] = v
				continue
			}
		}
		vec.Defaulted = append(vec.Defaulted, col)
	}

	if p.opts.Strict && len(vec.Defaulted) > 0 {
		return FeatureVector{}, &MissingFeatureError{Columns: vec.Defaulted}
	}
	return vec, nil
}

func toFloat(column string, v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, &MalformedInputError{Column: column, Value: v}
		}
		return f, nil
	case string:
		if IsCategorical(column) {
			code, _ := Encode(column, x)
			return code, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, &MalformedInputError{Column: column, Value: v}
		}
		return f, nil
	default:
		return 0, &MalformedInputError{Column: column, Value: v}
	}
}
