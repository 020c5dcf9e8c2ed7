package domain

import (
	"strings"
	"time"
)

// RiskLevel is one of four discrete bands derived from a probability
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// Label is the wording shown on result pages, e.g. "High Risk".
func (l RiskLevel) Label() string {
	return string(l) + " Risk"
}

// PredictionResult is the classifier output for one profile
type PredictionResult struct {
	Probability float64   `json:"probability"`
	Diabetic    bool      `json:"prediction"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

// Recommendation is one advisory block
type Recommendation struct {
	ID     string   `json:"id"`
	Icon   string   `json:"icon"`
	Title  string   `json:"title"`
	Advice []string `json:"advice"`
}

// Text renders the block as "<icon> <title>:" followed by one "- " line per advice item.
func (r Recommendation) Text() string {
	var b strings.Builder
	if r.Icon != "" {
		b.WriteString(r.Icon)
		b.WriteByte(' ')
	}
	b.WriteString(r.Title)
	b.WriteByte(':')
	for _, a := range r.Advice {
		b.WriteString("\n- ")
		b.WriteString(a)
	}
	return b.String()
}

// PredictionRequest is the transport-level input. Keys follow the dataset
// column names for JSON and short snake_case names for HTML forms.
// Numeric fields are pointers so an absent field can be told apart from zero.
type PredictionRequest struct {
	Age           *float64 `json:"Age" form:"age" validate:"omitempty,gte=0,lte=120"`
	Gender        string   `json:"Gender" form:"gender" validate:"omitempty,max=32"`
	BMI           *float64 `json:"BMI" form:"bmi" validate:"omitempty,gte=10,lte=50"`
	BloodPressure *float64 `json:"Blood_Pressure" form:"blood_pressure" validate:"omitempty,gte=70,lte=200"`
	GlucoseLevel  *float64 `json:"Glucose_Level" form:"glucose_level" validate:"omitempty,gte=70,lte=300"`
	ExerciseHours *float64 `json:"Exercise_Hours_Per_Week" form:"exercise_hours" validate:"omitempty,gte=0,lte=40"`
	SmokingStatus string   `json:"Smoking_Status" form:"smoking_status" validate:"omitempty,max=32"`
	Alcohol       *float64 `json:"Alcohol_Consumption_Per_Week" form:"alcohol" validate:"omitempty,gte=0,lte=50"`
	StressLevel   string   `json:"Stress_Level" form:"stress_level" validate:"omitempty,max=32"`
}

// Fields returns only the fields present in the request, keyed by column name.
func (r PredictionRequest) Fields() map[string]any {
	out := make(map[string]any, len(ProfileColumns))
	putNum := func(key string, v *float64) {
		if v != nil {
			out[key] = *v
		}
	}
	putStr := func(key, v string) {
		if v != "" {
			out[key] = v
		}
	}

	putNum(ColumnAge, r.Age)
	putStr(ColumnGender, r.Gender)
	putNum(ColumnBMI, r.BMI)
	putNum(ColumnBloodPressure, r.BloodPressure)
	putNum(ColumnGlucoseLevel, r.GlucoseLevel)
	putNum(ColumnExerciseHours, r.ExerciseHours)
	putStr(ColumnSmokingStatus, r.SmokingStatus)
	putNum(ColumnAlcohol, r.Alcohol)
	putStr(ColumnStressLevel, r.StressLevel)
	return out
}

// Profile builds a HealthProfile, using zero for absent numeric fields.
func (r PredictionRequest) Profile() HealthProfile {
	val := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	return HealthProfile{
		Age:                  val(r.Age),
		Gender:               Gender(r.Gender),
		BMI:                  val(r.BMI),
		BloodPressure:        val(r.BloodPressure),
		GlucoseLevel:         val(r.GlucoseLevel),
		ExerciseHoursPerWeek: val(r.ExerciseHours),
		SmokingStatus:        SmokingStatus(r.SmokingStatus),
		AlcoholPerWeek:       val(r.Alcohol),
		StressLevel:          StressLevel(r.StressLevel),
	}
}

// PredictionResponse is returned by the prediction API
type PredictionResponse struct {
	RequestID         string    `json:"request_id"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Probability       float64   `json:"probability"`
	Prediction        bool      `json:"prediction"`
	Recommendations   []string  `json:"recommendations"`
	DefaultedFeatures []string  `json:"defaulted_features,omitempty"`
	ModelName         string    `json:"model_name,omitempty"`
}

// PredictionLog is a persisted record of one prediction
type PredictionLog struct {
	ID        string           `json:"id"`
	Profile   HealthProfile    `json:"profile"`
	Result    PredictionResult `json:"result"`
	ModelName string           `json:"model_name"`
	CreatedAt time.Time        `json:"created_at"`
}
