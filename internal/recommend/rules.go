package recommend

import (
	"fmt"

	"github.com/diabetesguard/backend/internal/domain"
)

// Rule is one advisory block and the condition that triggers it.
// A nil When means the rule always fires.
type Rule struct {
	ID     string
	Icon   string
	Title  string
	Advice []string
	When   func(domain.HealthProfile) bool
}

// Group is an ordered set of tiers over one metric. At most one rule per
// group fires: the first whose condition holds.
type Group struct {
	Name  string
	Tiers []Rule
}

// Thresholds. Alcohol uses the 14 drinks/week limit and stress fires on
// both High and Moderate.
const (
	BMIObese         = 30.0
	BMIOverweight    = 25.0
	BPHigh           = 140.0
	BPElevated       = 120.0
	GlucoseDiabetic  = 126.0
	GlucoseElevated  = 100.0
	MinExerciseHours = 2.5
	MaxDrinksPerWeek = 14.0
)

var table = []Group{
	{Name: "bmi", Tiers: []Rule{
		{
			ID: "weight_management", Icon: "🏋️", Title: "Weight Management",
			Advice: []string{
				"Consider consulting a nutritionist",
				"Aim for a balanced, calorie-controlled diet",
				"Set realistic weight loss goals",
			},
			When: func(p domain.HealthProfile) bool { return p.BMI > BMIObese },
		},
		{
			ID: "weight_watch", Icon: "⚖️", Title: "Weight Watch",
			Advice: []string{
				"Monitor your caloric intake",
				"Include more fruits and vegetables in your diet",
				"Maintain regular physical activity",
			},
			When: func(p domain.HealthProfile) bool { return p.BMI > BMIOverweight },
		},
	}},
	{Name: "blood_pressure", Tiers: []Rule{
		{
			ID: "blood_pressure_management", Icon: "❤️", Title: "Blood Pressure Management",
			Advice: []string{
				"Reduce sodium intake",
				"Practice stress management techniques",
				"Consider DASH diet",
				"Regular BP monitoring",
			},
			When: func(p domain.HealthProfile) bool { return p.BloodPressure > BPHigh },
		},
		{
			ID: "blood_pressure_watch", Icon: "🩺", Title: "Blood Pressure Watch",
			Advice: []string{
				"Limit salt intake",
				"Regular blood pressure monitoring",
				"Stay physically active",
			},
			When: func(p domain.HealthProfile) bool { return p.BloodPressure > BPElevated },
		},
	}},
	{Name: "glucose", Tiers: []Rule{
		{
			ID: "blood_sugar_control", Icon: "🍎", Title: "Blood Sugar Control",
			Advice: []string{
				"Monitor blood sugar regularly",
				"Follow a balanced diet",
				"Consider consulting an endocrinologist",
			},
			When: func(p domain.HealthProfile) bool { return p.GlucoseLevel > GlucoseDiabetic },
		},
		{
			ID: "blood_sugar_watch", Icon: "🥗", Title: "Blood Sugar Watch",
			Advice: []string{
				"Limit refined sugars",
				"Choose whole grains over processed grains",
				"Regular blood sugar monitoring",
			},
			When: func(p domain.HealthProfile) bool { return p.GlucoseLevel > GlucoseElevated },
		},
	}},
	{Name: "exercise", Tiers: []Rule{
		{
			ID: "physical_activity", Icon: "🏃", Title: "Physical Activity",
			Advice: []string{
				"Aim for at least 150 minutes of moderate exercise per week",
				"Include both cardio and strength training",
				"Start slowly and gradually increase intensity",
			},
			When: func(p domain.HealthProfile) bool { return p.ExerciseHoursPerWeek < MinExerciseHours },
		},
	}},
	{Name: "smoking", Tiers: []Rule{
		{
			ID: "smoking_cessation", Icon: "🚭", Title: "Smoking Cessation",
			Advice: []string{
				"Consider nicotine replacement therapy",
				"Join a smoking cessation program",
				"Set a quit date",
				"Seek support from family and friends",
			},
			When: func(p domain.HealthProfile) bool { return p.SmokingStatus == domain.SmokingCurrent },
		},
	}},
	{Name: "alcohol", Tiers: []Rule{
		{
			ID: "alcohol_moderation", Icon: "🍷", Title: "Alcohol Moderation",
			Advice: []string{
				"Limit alcohol consumption",
				"Stay within recommended guidelines",
				"Consider alcohol-free days",
				"Stay hydrated",
			},
			When: func(p domain.HealthProfile) bool { return p.AlcoholPerWeek > MaxDrinksPerWeek },
		},
	}},
	{Name: "stress", Tiers: []Rule{
		{
			ID: "stress_management", Icon: "🧘", Title: "Stress Management",
			Advice: []string{
				"Practice relaxation techniques",
				"Consider meditation or yoga",
				"Maintain a regular sleep schedule",
				"Seek professional support if needed",
			},
			When: func(p domain.HealthProfile) bool {
				return p.StressLevel == domain.StressHigh || p.StressLevel == domain.StressModerate
			},
		},
	}},
	{Name: "general", Tiers: []Rule{
		{
			ID: "general_health", Icon: "🌟", Title: "General Health Tips",
			Advice: []string{
				"Get regular health check-ups",
				"Stay hydrated",
				"Maintain a balanced diet",
				"Get adequate sleep",
			},
		},
	}},
}

// validate checks the table is complete: unique ids, non-empty text, and a
// single unconditional rule that closes the table.
func validate(groups []Group) error {
	if len(groups) == 0 {
		return fmt.Errorf("recommend: empty rule table")
	}
	seen := map[string]bool{}
	for gi, g := range groups {
		if len(g.Tiers) == 0 {
			return fmt.Errorf("recommend: group %q has no rules", g.Name)
		}
		for ti, r := range g.Tiers {
			if r.ID == "" || r.Title == "" || len(r.Advice) == 0 {
				return fmt.Errorf("recommend: group %q rule %d is incomplete", g.Name, ti)
			}
			if seen[r.ID] {
				return fmt.Errorf("recommend: duplicate rule id %q", r.ID)
			}
			seen[r.ID] = true

			last := gi == len(groups)-1 && ti == len(g.Tiers)-1
			if (r.When == nil) != last {
				return fmt.Errorf("recommend: rule %q: only the final rule may be unconditional, and it must be", r.ID)
			}
		}
	}
	return nil
}

func init() {
	if err := validate(table); err != nil {
		panic(err)
	}
}
