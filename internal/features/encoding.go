package features

import "github.com/diabetesguard/backend/internal/domain"

// categoryCodes is the fixed category to code table the model was trained with.
var categoryCodes = map[string]map[string]float64{
	domain.ColumnGender: {
		string(domain.GenderMale):   0,
		string(domain.GenderFemale): 1,
	},
	domain.ColumnSmokingStatus: {
		string(domain.SmokingNever):   0,
		string(domain.SmokingFormer):  1,
		string(domain.SmokingCurrent): 2,
	},
	domain.ColumnStressLevel: {
		string(domain.StressLow):      0,
		string(domain.StressModerate): 1,
		string(domain.StressHigh):     2,
	},
}

// IsCategorical reports whether column is encoded through the category table
func IsCategorical(column string) bool {
	_, ok := categoryCodes[column]
	return ok
}

// Encode maps a categorical value to its code. Unknown values map to 0;
// known reports whether the value was in the table.
func Encode(column, value string) (code float64, known bool) {
	codes, ok := categoryCodes[column]
	if !ok {
		return 0, false
	}
	code, known = codes[value]
	return code, known
}

// Categories returns the accepted values of a categorical column ordered by code
func Categories(column string) []string {
	codes := categoryCodes[column]
	out := make([]string, len(codes))
	for v, c := range codes {
		out[int(c)] = v
	}
	return out
}

func init() {
	// Codes must be dense from 0 so Categories can index by code.
	for col, codes := range categoryCodes {
		seen := make([]bool, len(codes))
		for v, c := range codes {
			i := int(c)
			if float64(i) != c || i < 0 || i >= len(codes) || seen[i] {
				panic("features: invalid code for " + col + "=" + v)
			}
			seen[i] = true
		}
	}
}
