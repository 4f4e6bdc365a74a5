package projection

import (
	"dcf_valuation/pkg/models"
)

// WorkingCapital is the NWC schedule. Levels cover base + forecast years;
// deltas cover forecast years only (the base-year delta is undefined).
type WorkingCapital struct {
	NWC      map[int]float64
	DeltaNWC map[int]float64
}

// BuildWorkingCapital sizes NWC from the revenue series and the NWC ratio
// (base year mandatory, since the first delta reads the prior-year level),
// or from an explicit NWC series when one is given.
func BuildWorkingCapital(a *models.Assumptions, revenue map[int]float64) (*WorkingCapital, error) {
	tl := a.Timeline
	allYears := tl.AllYears()

	nwc := make(map[int]float64, len(allYears))

	switch {
	case a.NWC.ExplicitNWC != nil:
		resolved, err := models.ResolveMap("nwc.explicit_nwc", a.NWC.ExplicitNWC, allYears, nil)
		if err != nil {
			return nil, err
		}
		nwc = resolved
	case !a.NWC.NWCPercent.IsZero():
		percent, err := a.NWC.NWCPercent.Resolve("nwc.nwc_percent", allYears, nil)
		if err != nil {
			return nil, err
		}
		for _, y := range allYears {
			nwc[y] = revenue[y] * percent[y]
		}
	default:
		return nil, &models.ValidationError{
			Field:  "nwc",
			Reason: "underdetermined: provide nwc_percent (including the base year) or explicit_nwc",
		}
	}

	delta := make(map[int]float64, len(tl.ForecastYears))
	prev := tl.BaseYear
	for _, y := range tl.ForecastYears {
		delta[y] = nwc[y] - nwc[prev]
		prev = y
	}

	return &WorkingCapital{NWC: nwc, DeltaNWC: delta}, nil
}
