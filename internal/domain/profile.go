package domain

// Dataset column names. The trained model and the CSV dataset share them.
const (
	ColumnAge           = "Age"
	ColumnGender        = "Gender"
	ColumnBMI           = "BMI"
	ColumnBloodPressure = "Blood_Pressure"
	ColumnGlucoseLevel  = "Glucose_Level"
	ColumnExerciseHours = "Exercise_Hours_Per_Week"
	ColumnSmokingStatus = "Smoking_Status"
	ColumnAlcohol       = "Alcohol_Consumption_Per_Week"
	ColumnStressLevel   = "Stress_Level"
	ColumnDiagnosis     = "Diabetes_Diagnosis"
)

// ProfileColumns lists the nine user-entered fields in form order.
var ProfileColumns = []string{
	ColumnAge, ColumnGender, ColumnBMI, ColumnBloodPressure, ColumnGlucoseLevel,
	ColumnExerciseHours, ColumnSmokingStatus, ColumnAlcohol, ColumnStressLevel,
}

// Gender is the biological gender reported on the form
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// SmokingStatus is the self-reported smoking history
type SmokingStatus string

const (
	SmokingNever   SmokingStatus = "Never"
	SmokingFormer  SmokingStatus = "Former"
	SmokingCurrent SmokingStatus = "Current"
)

// StressLevel is the self-reported stress level
type StressLevel string

const (
	StressLow      StressLevel = "Low"
	StressModerate StressLevel = "Moderate"
	StressHigh     StressLevel = "High"
)

// HealthProfile holds one subject's metrics for a single prediction.
// It is a value type and is never mutated after construction.
type HealthProfile struct {
	Age                  float64       `json:"age"`
	Gender               Gender        `json:"gender"`
	BMI                  float64       `json:"bmi"`
	BloodPressure        float64       `json:"blood_pressure"`
	GlucoseLevel         float64       `json:"glucose_level"`
	ExerciseHoursPerWeek float64       `json:"exercise_hours_per_week"`
	SmokingStatus        SmokingStatus `json:"smoking_status"`
	AlcoholPerWeek       float64       `json:"alcohol_consumption_per_week"`
	StressLevel          StressLevel   `json:"stress_level"`
}
