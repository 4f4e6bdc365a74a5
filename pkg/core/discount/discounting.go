package discount

import (
	"math"
	"sort"

	"dcf_valuation/pkg/models"
)

// Factors computes the discount factor for each forecast year under the
// given convention.
//
// year_specific_flat: DF_t = (1 + r_t)^period(t), each year's own rate
// raised to its ordinal position, not a compounded path of differing rates.
// constant: the first forecast year's rate is used for every exponent.
func Factors(
	mode models.DiscountingMode,
	rates map[int]float64,
	tl models.Timeline,
) (map[int]float64, error) {
	if err := models.CheckDiscountingMode(mode); err != nil {
		return nil, err
	}

	factors := make(map[int]float64, len(tl.ForecastYears))
	flat := rates[tl.ForecastYears[0]]

	for _, y := range tl.ForecastYears {
		period := float64(tl.Period(y))
		r := flat
		if mode == models.DiscountingYearSpecificFlat {
			r = rates[y]
		}
		factors[y] = math.Pow(1+r, period)
	}
	return factors, nil
}

// ConstantFactors is Factors for a single rate (the Ke leg).
func ConstantFactors(rate float64, tl models.Timeline) map[int]float64 {
	factors := make(map[int]float64, len(tl.ForecastYears))
	for _, y := range tl.ForecastYears {
		factors[y] = math.Pow(1+rate, float64(tl.Period(y)))
	}
	return factors
}

// PresentValues divides each cash flow by its year's discount factor.
func PresentValues(cashFlows, factors map[int]float64) map[int]float64 {
	pv := make(map[int]float64, len(cashFlows))
	for y, cf := range cashFlows {
		pv[y] = cf / factors[y]
	}
	return pv
}

// Sum adds a year-keyed series in ascending year order, so the accumulated
// total is bit-identical across runs.
func Sum(series map[int]float64) float64 {
	years := make([]int, 0, len(series))
	for y := range series {
		years = append(years, y)
	}
	sort.Ints(years)

	var total float64
	for _, y := range years {
		total += series[y]
	}
	return total
}
