// Package recommend maps a health profile to advisory text blocks.
package recommend

import "github.com/diabetesguard/backend/internal/domain"

// For evaluates the rule table in order: BMI, blood pressure, glucose,
// exercise, smoking, alcohol, stress, general. The result is never empty;
// the general block is always last.
func For(p domain.HealthProfile) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(table))
	for _, g := range table {
		for _, r := range g.Tiers {
			if r.When == nil || r.When(p) {
				out = append(out, toRecommendation(r))
				break
			}
		}
	}
	return out
}

// Texts renders recommendations as text blocks
func Texts(recs []domain.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Text()
	}
	return out
}

// Groups returns the rule table, for documentation pages
func Groups() []Group {
	out := make([]Group, len(table))
	copy(out, table)
	return out
}

func toRecommendation(r Rule) domain.Recommendation {
	advice := make([]string, len(r.Advice))
	copy(advice, r.Advice)
	return domain.Recommendation{ID: r.ID, Icon: r.Icon, Title: r.Title, Advice: advice}
}
