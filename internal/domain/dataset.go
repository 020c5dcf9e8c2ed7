package domain

import "time"

// ColumnStats describes one numeric dataset column
type ColumnStats struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Median  float64 `json:"median"`
	Max     float64 `json:"max"`
}

// CategoryCount is the frequency of one categorical value
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DatasetSummary holds descriptive statistics over the whole dataset
type DatasetSummary struct {
	Records        int                        `json:"records"`
	DiabetesRate   float64                    `json:"diabetes_rate_percent"`
	AverageAge     float64                    `json:"average_age"`
	AverageBMI     float64                    `json:"average_bmi"`
	Numeric        []ColumnStats              `json:"numeric"`
	Categorical    map[string][]CategoryCount `json:"categorical"`
	MissingValues  map[string]int             `json:"missing_values"`
	HasMissingData bool                       `json:"has_missing_data"`
	GeneratedAt    time.Time                  `json:"generated_at"`
}

// Histogram is an equal-width binning of one numeric column
type Histogram struct {
	Column string    `json:"column"`
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// CorrelationMatrix holds pairwise Pearson coefficients between numeric columns
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// FeatureRange is the accepted and normal range of one numeric feature
type FeatureRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Normal string  `json:"normal"`
}

// RiskFactor is a static description of a diabetes risk factor
type RiskFactor struct {
	Factor         string `json:"factor"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// ReferenceData bundles the static lookup tables shown on the dashboard
type ReferenceData struct {
	Descriptions map[string]string       `json:"descriptions"`
	Ranges       map[string]FeatureRange `json:"ranges"`
	RiskFactors  []RiskFactor            `json:"risk_factors"`
}

// DashboardData aggregates everything the analytics page renders
type DashboardData struct {
	Summary     DatasetSummary    `json:"summary"`
	Correlation CorrelationMatrix `json:"correlation"`
	Reference   ReferenceData     `json:"reference"`
	Timestamp   time.Time         `json:"timestamp"`
}
