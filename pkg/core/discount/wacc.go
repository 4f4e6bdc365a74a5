// Package discount resolves the discount rates: CAPM cost of equity, per-year
// WACC under book-value or target weighting, and discount factors under the
// selected discounting convention.
package discount

import (
	"math"

	"dcf_valuation/pkg/models"
)

// weightTolerance bounds how far target weights may drift from summing to 1.
const weightTolerance = 1e-6

// CostOfEquity computes Ke = rf + beta*(rm - rf), honoring a direct override.
func CostOfEquity(c models.CAPMInputs) float64 {
	if c.KeOverride != nil {
		return *c.KeOverride
	}
	return c.RiskFree + c.Beta*(c.MarketReturn-c.RiskFree)
}

// BuildWACC forms WACC_t = wE_t*Ke + wD_t*rd_t*(1-tax_t) for every forecast
// year. Book-value mode weighs with that year's closing debt and equity book
// (end-of-period, same convention as interest expense); target mode uses the
// fixed weights, which must sum to 1.
func BuildWACC(
	a *models.Assumptions,
	ke float64,
	debt map[int]float64,
	equityBook map[int]float64,
	rd map[int]float64,
	taxRate map[int]float64,
) (map[int]float64, []models.WACCDetail, error) {
	if err := models.CheckWeightingMode(a.WACC.WeightingMode); err != nil {
		return nil, nil, err
	}

	forecast := a.Timeline.ForecastYears
	wacc := make(map[int]float64, len(forecast))
	details := make([]models.WACCDetail, 0, len(forecast))

	var targetWE, targetWD float64
	if a.WACC.WeightingMode == models.WeightingTarget {
		if a.WACC.TargetWE == nil || a.WACC.TargetWD == nil {
			return nil, nil, &models.ValidationError{
				Field:  "wacc",
				Reason: "target weighting mode requires we and wd",
			}
		}
		targetWE = *a.WACC.TargetWE
		targetWD = *a.WACC.TargetWD
		if math.Abs(targetWE+targetWD-1.0) > weightTolerance {
			return nil, nil, &models.ValidationError{
				Field:  "wacc",
				Reason: "target weights must sum to 1",
			}
		}
	}

	for _, y := range forecast {
		var wE, wD float64
		switch a.WACC.WeightingMode {
		case models.WeightingTarget:
			wE, wD = targetWE, targetWD
		case models.WeightingBookValue:
			total := debt[y] + equityBook[y]
			if total > 0 {
				wD = debt[y] / total
				wE = equityBook[y] / total
			} else {
				wD, wE = 0, 1
			}
		}

		wacc[y] = wE*ke + wD*rd[y]*(1-taxRate[y])
		details = append(details, models.WACCDetail{
			Year:         y,
			Ke:           ke,
			Rd:           rd[y],
			TaxRate:      taxRate[y],
			Debt:         debt[y],
			EquityBook:   equityBook[y],
			WeightDebt:   wD,
			WeightEquity: wE,
			WACC:         wacc[y],
		})
	}

	return wacc, details, nil
}
