package features

import (
	"math"

	"github.com/diabetesguard/backend/internal/domain"
)

// Derived column names produced by the training pipeline.
const (
	ColumnAgeBMI           = "Age_BMI"
	ColumnBMIGlucose       = "BMI_Glucose"
	ColumnAgeRisk          = "Age_Risk"
	ColumnBMIRisk          = "BMI_Risk"
	ColumnBPRisk           = "BP_Risk"
	ColumnGlucoseRisk      = "Glucose_Risk"
	ColumnExerciseCategory = "Exercise_Category"
)

var (
	bmiRiskEdges     = []float64{0, 18.5, 25, 30, math.Inf(1)}
	bpRiskEdges      = []float64{0, 120, 140, math.Inf(1)}
	glucoseRiskEdges = []float64{0, 100, 126, math.Inf(1)}
	exerciseEdges    = []float64{0, 2, 4, math.Inf(1)}
)

type derivation func(v map[string]float64, opts Options) (float64, bool)

var derivations = map[string]derivation{
	ColumnAgeBMI: func(v map[string]float64, _ Options) (float64, bool) {
		return product(v, domain.ColumnAge, domain.ColumnBMI)
	},
	ColumnBMIGlucose: func(v map[string]float64, _ Options) (float64, bool) {
		return product(v, domain.ColumnBMI, domain.ColumnGlucoseLevel)
	},
	ColumnBMIRisk: func(v map[string]float64, _ Options) (float64, bool) {
		return binned(v, domain.ColumnBMI, bmiRiskEdges, false)
	},
	ColumnBPRisk: func(v map[string]float64, _ Options) (float64, bool) {
		return binned(v, domain.ColumnBloodPressure, bpRiskEdges, false)
	},
	ColumnGlucoseRisk: func(v map[string]float64, _ Options) (float64, bool) {
		return binned(v, domain.ColumnGlucoseLevel, glucoseRiskEdges, false)
	},
	ColumnExerciseCategory: func(v map[string]float64, _ Options) (float64, bool) {
		return binned(v, domain.ColumnExerciseHours, exerciseEdges, true)
	},
	ColumnAgeRisk: func(v map[string]float64, opts Options) (float64, bool) {
		// quartile edges are fit on the training data, so they travel with the bundle
		if len(opts.AgeRiskEdges) < 2 {
			return 0, false
		}
		return binned(v, domain.ColumnAge, opts.AgeRiskEdges, true)
	},
}

// derivationInputs lists the base columns each derived column reads
var derivationInputs = map[string][]string{
	ColumnAgeBMI:           {domain.ColumnAge, domain.ColumnBMI},
	ColumnBMIGlucose:       {domain.ColumnBMI, domain.ColumnGlucoseLevel},
	ColumnBMIRisk:          {domain.ColumnBMI},
	ColumnBPRisk:           {domain.ColumnBloodPressure},
	ColumnGlucoseRisk:      {domain.ColumnGlucoseLevel},
	ColumnExerciseCategory: {domain.ColumnExerciseHours},
	ColumnAgeRisk:          {domain.ColumnAge},
}

func product(v map[string]float64, a, b string) (float64, bool) {
	x, okA := v[a]
	y, okB := v[b]
	if !okA || !okB {
		return 0, false
	}
	return x * y, true
}

func binned(v map[string]float64, column string, edges []float64, includeLowest bool) (float64, bool) {
	x, ok := v[column]
	if !ok {
		return 0, false
	}
	return cut(x, edges, includeLowest), true
}

// cut returns the index i of the right-closed interval (edges[i], edges[i+1]]
// containing x, or NaN when x falls outside every interval.
func cut(x float64, edges []float64, includeLowest bool) float64 {
	if math.IsNaN(x) || len(edges) < 2 {
		return math.NaN()
	}
	if includeLowest && x == edges[0] {
		return 0
	}
	for i := 0; i+1 < len(edges); i++ {
		if x > edges[i] && x <= edges[i+1] {
			return float64(i)
		}
	}
	return math.NaN()
}
