package biometano

import (
	"dcf_valuation/pkg/core/engine"
	"dcf_valuation/pkg/models"
)

// Result pairs the physical schedules with the valuation the generic engine
// produced from them.
type Result struct {
	Projections *Projections
	Valuation   *models.ValuationResult
}

// ToAssumptions translates the derived schedules into the explicit-series
// form the generic engine consumes: revenue, EBITDA, D&A, NWC, capex and the
// debt schedule all become per-year inputs.
func (p *Projections) ToAssumptions() *models.Assumptions {
	c := p.Case
	years := c.Horizon.AllForecastYears()

	revenue := map[int]float64{c.Horizon.BaseYear: 0}
	ebitda := map[int]float64{}
	da := map[int]float64{}
	capex := map[int]float64{}
	nwc := map[int]float64{c.Horizon.BaseYear: 0}
	debt := map[int]float64{c.Horizon.BaseYear: 0}
	rd := map[int]float64{}

	for i, y := range years {
		revenue[y] = p.Revenue[i].Total()
		ebitda[y] = p.EBITDA[y]
		da[y] = p.Depreciation[y]
		capex[y] = p.Capex[i].Total()
		nwc[y] = p.NWC[y]
		debt[y] = p.Financing[i].Closing
		rd[y] = p.Financing[i].Rd
	}

	growth := c.TerminalValue.PerpetuityGrowth
	a := &models.Assumptions{
		DiscountingMode: models.DiscountingYearSpecificFlat,
		Timeline: models.Timeline{
			BaseYear:      c.Horizon.BaseYear,
			ForecastYears: years,
		},
		Revenue: models.RevenueInputs{
			ExplicitRevenue: revenue,
		},
		Operating: models.OperatingInputs{
			ExplicitEBITDA: ebitda,
			DA:             models.PerYear(da),
		},
		NWC: models.NWCInputs{
			ExplicitNWC: nwc,
		},
		Investments: models.InvestmentInputs{
			Capex: models.PerYear(capex),
		},
		Tax: models.TaxInputs{
			Rate: models.Const(c.Financing.TaxRate),
		},
		CAPM: models.CAPMInputs{
			RiskFree:     c.Financing.RiskFree,
			MarketReturn: c.Financing.MarketReturn,
			Beta:         c.Financing.Beta,
			KeOverride:   c.Financing.KeOverride,
		},
		Debt: models.DebtInputs{
			Balances:   debt,
			CostOfDebt: models.PerYear(rd),
		},
		Equity: models.EquityInputs{
			BaseEquityBook: c.Financing.EquityBookAtBase,
		},
		TerminalValue: models.TerminalValueInputs{
			Method:           c.TerminalValue.Method,
			PerpetuityGrowth: &growth,
			ExitMultiple:     c.TerminalValue.ExitMultiple,
			ExitMetric:       models.ExitMetricEBITDA,
		},
		NetDebt: models.NetDebtInputs{
			CashAndEquivalents: c.Financing.CashAtBase,
		},
	}

	if c.Financing.TargetWE != nil && !c.Financing.UseBookWeights {
		we := *c.Financing.TargetWE
		wd := 1 - we
		a.WACC = models.WACCInputs{
			WeightingMode: models.WeightingTarget,
			TargetWE:      &we,
			TargetWD:      &wd,
		}
	} else {
		a.WACC = models.WACCInputs{WeightingMode: models.WeightingBookValue}
	}
	return a
}

// RunCase builds the physical schedules and values the project through the
// generic engine.
func RunCase(c *Case) (*Result, error) {
	c.ApplyDefaults()
	proj, err := c.Build()
	if err != nil {
		return nil, err
	}
	valuation, err := engine.Run(proj.ToAssumptions())
	if err != nil {
		return nil, err
	}
	return &Result{Projections: proj, Valuation: valuation}, nil
}
