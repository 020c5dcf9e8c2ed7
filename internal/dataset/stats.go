package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/pkg/utils"
)

const (
	DefaultBins = 20
	MaxBins     = 200
)

// Summary computes the overview metrics, per-column statistics and
// missing-value counts shown on the dashboard.
func Summary(d *Dataset) domain.DatasetSummary {
	s := domain.DatasetSummary{
		Records:       d.Rows,
		Categorical:   make(map[string][]domain.CategoryCount),
		MissingValues: make(map[string]int, len(d.Columns)),
		GeneratedAt:   time.Now().UTC(),
	}

	for _, c := range d.Columns {
		missing := c.Missing()
		s.MissingValues[c.Name] = missing
		if missing > 0 {
			s.HasMissingData = true
		}
		if c.Numeric {
			s.Numeric = append(s.Numeric, describe(c.Name, c.Values))
		} else {
			s.Categorical[c.Name] = countLabels(c.Labels)
		}
	}

	if v, err := d.numeric(domain.ColumnDiagnosis); err == nil {
		positives, n := 0.0, 0.0
		for _, x := range v {
			if math.IsNaN(x) {
				continue
			}
			n++
			if x == 1 {
				positives++
			}
		}
		s.DiabetesRate = utils.Percent(positives, n)
	}
	if v, err := d.numeric(domain.ColumnAge); err == nil {
		s.AverageAge = utils.RoundTo(mean(v), 1)
	}
	if v, err := d.numeric(domain.ColumnBMI); err == nil {
		s.AverageBMI = utils.RoundTo(mean(v), 1)
	}
	return s
}

// Histogram bins a numeric column into equal-width buckets over [min, max].
// Every bin is half-open except the last, which includes max.
func Histogram(d *Dataset, column string, bins int) (domain.Histogram, error) {
	if bins < 1 || bins > MaxBins {
		return domain.Histogram{}, fmt.Errorf("dataset: bins must be between 1 and %d, got %d", MaxBins, bins)
	}
	values, err := d.numeric(column)
	if err != nil {
		return domain.Histogram{}, err
	}

	present := dropNaN(values)
	h := domain.Histogram{Column: column, Edges: make([]float64, bins+1), Counts: make([]int, bins)}
	if len(present) == 0 {
		return h, nil
	}

	lo, hi := minMax(present)
	for i := range h.Edges {
		h.Edges[i] = utils.Lerp(lo, hi, float64(i)/float64(bins))
	}
	width := (hi - lo) / float64(bins)
	for _, x := range present {
		i := 0
		if width > 0 {
			i = int((x - lo) / width)
		}
		if i < 0 {
			i = 0
		} else if i >= bins {
			i = bins - 1
		}
		h.Counts[i]++
	}
	return h, nil
}

// Correlation returns the Pearson correlation matrix over every numeric
// column. Each pair uses only rows where both values are present. Pairs
// with no variance are reported as 0.
func Correlation(d *Dataset) domain.CorrelationMatrix {
	cols := d.NumericColumns()
	m := domain.CorrelationMatrix{Columns: cols, Values: make([][]float64, len(cols))}
	for i := range cols {
		m.Values[i] = make([]float64, len(cols))
	}
	for i := range cols {
		a, _ := d.numeric(cols[i])
		for j := i; j < len(cols); j++ {
			b, _ := d.numeric(cols[j])
			r := pearson(a, b)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pearson(a, b []float64) float64 {
	var n, sa, sb float64
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		n++
		sa += a[i]
		sb += b[i]
	}
	if n < 2 {
		return 0
	}
	ma, mb := sa/n, sb/n

	var cov, va, vb float64
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		da, db := a[i]-ma, b[i]-mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return 0
	}
	return utils.Clamp(cov/math.Sqrt(va*vb), -1, 1)
}

func describe(name string, values []float64) domain.ColumnStats {
	present := dropNaN(values)
	st := domain.ColumnStats{Name: name, Count: len(present), Missing: len(values) - len(present)}
	if len(present) == 0 {
		return st
	}

	sorted := append([]float64(nil), present...)
	sort.Float64s(sorted)

	st.Mean = mean(present)
	st.Std = sampleStd(present, st.Mean)
	st.Min = sorted[0]
	st.Max = sorted[len(sorted)-1]
	st.Median = median(sorted)
	return st
}

// countLabels returns category frequencies, most frequent first
func countLabels(labels []string) []domain.CategoryCount {
	counts := map[string]int{}
	for _, l := range labels {
		if l != "" {
			counts[l]++
		}
	}
	out := make([]domain.CategoryCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, domain.CategoryCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// mean ignores missing values and returns 0 when nothing is present
func mean(values []float64) float64 {
	var sum, n float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

func sampleStd(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
