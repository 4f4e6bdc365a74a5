// Package projection computes the per-year operating projections: revenue
// from growth drivers or an explicit series, EBITDA from cost ratios, EBIT
// after depreciation, and the net working capital schedule.
package projection

import (
	"dcf_valuation/pkg/models"
)

// Operating holds the resolved operating projections, year-keyed. Revenue
// covers base + forecast years; the remaining series cover forecast years.
type Operating struct {
	Revenue        map[int]float64
	OperatingCosts map[int]float64
	CostRatios     map[int]float64
	EBITDA         map[int]float64
	DA             map[int]float64
	EBIT           map[int]float64
}

// BuildOperating resolves revenue, costs, EBITDA, D&A and EBIT for every
// forecast year. An explicit revenue series overrides the growth chain; an
// explicit EBITDA series overrides the cost-ratio route.
func BuildOperating(a *models.Assumptions) (*Operating, error) {
	tl := a.Timeline
	base := tl.BaseYear
	forecast := tl.ForecastYears

	revenue, err := buildRevenue(a)
	if err != nil {
		return nil, err
	}

	da, err := a.Operating.DA.Resolve("operating.depreciation_amortization", forecast, []int{base})
	if err != nil {
		return nil, err
	}

	op := &Operating{
		Revenue:        revenue,
		OperatingCosts: make(map[int]float64, len(forecast)),
		CostRatios:     make(map[int]float64, len(forecast)),
		EBITDA:         make(map[int]float64, len(forecast)),
		DA:             da,
		EBIT:           make(map[int]float64, len(forecast)),
	}

	if a.Operating.ExplicitEBITDA != nil {
		ebitda, err := models.ResolveMap("operating.explicit_ebitda", a.Operating.ExplicitEBITDA, forecast, []int{base})
		if err != nil {
			return nil, err
		}
		for _, y := range forecast {
			op.EBITDA[y] = ebitda[y]
			op.OperatingCosts[y] = revenue[y] - ebitda[y]
			if revenue[y] != 0 {
				op.CostRatios[y] = op.OperatingCosts[y] / revenue[y]
			}
		}
	} else {
		ratios, err := a.Operating.CostRatios.Resolve("operating.cost_ratios", forecast, []int{base})
		if err != nil {
			return nil, err
		}
		for _, y := range forecast {
			op.CostRatios[y] = ratios[y]
			op.OperatingCosts[y] = revenue[y] * ratios[y]
			op.EBITDA[y] = revenue[y] * (1 - ratios[y])
		}
	}

	for _, y := range forecast {
		op.EBIT[y] = op.EBITDA[y] - da[y]
	}

	return op, nil
}

// buildRevenue produces revenue for base + forecast years. The chain route is
// revenue_t = revenue_{t-1} * (1 + growth_t) in year order.
func buildRevenue(a *models.Assumptions) (map[int]float64, error) {
	tl := a.Timeline
	base := tl.BaseYear
	forecast := tl.ForecastYears

	if a.Revenue.ExplicitRevenue != nil {
		revenue, err := models.ResolveMap("revenue.explicit_revenue", a.Revenue.ExplicitRevenue, forecast, []int{base})
		if err != nil {
			return nil, err
		}
		if v, ok := a.Revenue.ExplicitRevenue[base]; ok {
			revenue[base] = v
		} else if a.Revenue.BaseRevenue != nil {
			revenue[base] = *a.Revenue.BaseRevenue
		} else {
			return nil, &models.ValidationError{
				Field:  "revenue",
				Reason: "base-year revenue required: include the base year in explicit_revenue or set base_revenue",
			}
		}
		return revenue, nil
	}

	if a.Revenue.BaseRevenue == nil {
		return nil, &models.ValidationError{
			Field:  "revenue",
			Reason: "underdetermined: provide explicit_revenue or both base_revenue and growth_rates",
		}
	}
	growth, err := a.Revenue.GrowthRates.Resolve("revenue.growth_rates", forecast, []int{base})
	if err != nil {
		return nil, err
	}

	revenue := make(map[int]float64, len(forecast)+1)
	revenue[base] = *a.Revenue.BaseRevenue
	prev := revenue[base]
	for _, y := range forecast {
		prev = prev * (1 + growth[y])
		revenue[y] = prev
	}
	return revenue, nil
}

// ResolveCapex positions capital expenditure as positive cash outflows per
// forecast year.
func ResolveCapex(a *models.Assumptions) (map[int]float64, error) {
	return a.Investments.Capex.Resolve("investments.capex", a.Timeline.ForecastYears, []int{a.Timeline.BaseYear})
}
