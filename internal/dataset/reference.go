package dataset

import "github.com/diabetesguard/backend/internal/domain"

// Reference returns the static feature descriptions, normal ranges and
// risk factor notes displayed next to the statistics.
func Reference() domain.ReferenceData {
	descriptions := map[string]string{
		domain.ColumnAge:           "Age in years",
		domain.ColumnGender:        "Biological gender (Male/Female)",
		domain.ColumnBMI:           "Body Mass Index, a measure of body fat based on height and weight",
		domain.ColumnBloodPressure: "Systolic blood pressure (mm Hg)",
		domain.ColumnGlucoseLevel:  "Blood glucose level (mg/dL)",
		domain.ColumnExerciseHours: "Hours of physical activity per week",
		domain.ColumnSmokingStatus: "Current smoking status (Never/Former/Current)",
		domain.ColumnAlcohol:       "Average alcoholic drinks per week",
		domain.ColumnStressLevel:   "Self-reported stress level (Low/Moderate/High)",
		domain.ColumnDiagnosis:     "Whether the person has diabetes (0=No, 1=Yes)",
	}

	ranges := map[string]domain.FeatureRange{
		domain.ColumnAge:           {Min: 18, Max: 100, Normal: "18-80"},
		domain.ColumnBMI:           {Min: 18.5, Max: 40, Normal: "18.5-24.9"},
		domain.ColumnBloodPressure: {Min: 90, Max: 180, Normal: "90-120"},
		domain.ColumnGlucoseLevel:  {Min: 70, Max: 200, Normal: "70-100"},
		domain.ColumnExerciseHours: {Min: 0, Max: 20, Normal: "2.5-5"},
		domain.ColumnAlcohol:       {Min: 0, Max: 21, Normal: "0-7"},
	}

	factors := []domain.RiskFactor{
		{Factor: "High Blood Glucose", Description: "Fasting blood sugar > 126 mg/dL", Recommendation: "Regular blood sugar monitoring and balanced diet"},
		{Factor: "Obesity", Description: "BMI > 30", Recommendation: "Weight management through diet and exercise"},
		{Factor: "Physical Inactivity", Description: "Less than 150 minutes of exercise per week", Recommendation: "Regular physical activity, aim for 30 minutes daily"},
		{Factor: "High Blood Pressure", Description: "Systolic BP > 140 mmHg", Recommendation: "Blood pressure monitoring and lifestyle changes"},
		{Factor: "Age", Description: "Risk increases with age, especially after 45", Recommendation: "Regular health check-ups and screenings"},
		{Factor: "Smoking", Description: "Current or former smoker", Recommendation: "Smoking cessation and avoiding second-hand smoke"},
		{Factor: "Alcohol Consumption", Description: "More than 7 drinks per week", Recommendation: "Limit alcohol intake and stay hydrated"},
		{Factor: "Stress", Description: "High levels of chronic stress", Recommendation: "Stress management techniques and regular exercise"},
	}

	return domain.ReferenceData{Descriptions: descriptions, Ranges: ranges, RiskFactors: factors}
}
