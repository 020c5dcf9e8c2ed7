package scoring

import "github.com/diabetesguard/backend/internal/domain"

// Level maps a probability in [0,1] to its risk band. Bands are half-open
// on the right: [0,0.2) Low, [0.2,0.4) Moderate, [0.4,0.6) High, [0.6,1] Very High.
func Level(probability float64) domain.RiskLevel {
	switch {
	case probability < 0.2:
		return domain.RiskLow
	case probability < 0.4:
		return domain.RiskModerate
	case probability < 0.6:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}
