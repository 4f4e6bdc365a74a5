package models

import "sort"

// Timeline is the valuation horizon: the base year t0 (valuation date is the
// end of this year) and the explicit forecast years t1..tN.
type Timeline struct {
	BaseYear      int   `json:"base_year" yaml:"base_year" validate:"required"`
	ForecastYears []int `json:"forecast_years" yaml:"forecast_years" validate:"required,min=1"`
}

// Normalize sorts and deduplicates the forecast years and checks they all
// follow the base year.
func (t *Timeline) Normalize() error {
	seen := make(map[int]bool, len(t.ForecastYears))
	years := make([]int, 0, len(t.ForecastYears))
	for _, y := range t.ForecastYears {
		if seen[y] {
			return &ValidationError{Field: "timeline.forecast_years", Reason: "duplicate years"}
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		if y <= t.BaseYear {
			return &ValidationError{Field: "timeline.forecast_years", Reason: "forecast years must follow the base year"}
		}
	}
	t.ForecastYears = years
	return nil
}

// AllYears returns base + forecast years in order.
func (t Timeline) AllYears() []int {
	all := make([]int, 0, len(t.ForecastYears)+1)
	all = append(all, t.BaseYear)
	all = append(all, t.ForecastYears...)
	return all
}

// FinalYear is the last explicit forecast year.
func (t Timeline) FinalYear() int {
	return t.ForecastYears[len(t.ForecastYears)-1]
}

// Period returns the ordinal discounting period of a forecast year (1-based).
func (t Timeline) Period(year int) int {
	for i, y := range t.ForecastYears {
		if y == year {
			return i + 1
		}
	}
	return year - t.BaseYear
}

// RevenueInputs drive the top line: either an explicit series (which wins when
// both are given) or a base value chained through per-year growth rates.
type RevenueInputs struct {
	BaseRevenue     *float64        `json:"base_revenue,omitempty" yaml:"base_revenue,omitempty"`
	ExplicitRevenue map[int]float64 `json:"explicit_revenue,omitempty" yaml:"explicit_revenue,omitempty"`
	GrowthRates     Series          `json:"growth_rates,omitempty" yaml:"growth_rates,omitempty"`
}

// OperatingInputs hold cost ratios and D&A. An explicit EBITDA series
// overrides the cost-ratio route (the biometano adapter relies on this for
// construction years with zero revenue).
type OperatingInputs struct {
	CostRatios     Series          `json:"cost_ratios,omitempty" yaml:"cost_ratios,omitempty"`
	ExplicitEBITDA map[int]float64 `json:"explicit_ebitda,omitempty" yaml:"explicit_ebitda,omitempty"`
	DA             Series          `json:"depreciation_amortization" yaml:"depreciation_amortization"`
}

// NWCInputs size net working capital, as a ratio of revenue (base year
// included) or as an explicit level series.
type NWCInputs struct {
	NWCPercent  Series          `json:"nwc_percent,omitempty" yaml:"nwc_percent,omitempty"`
	ExplicitNWC map[int]float64 `json:"explicit_nwc,omitempty" yaml:"explicit_nwc,omitempty"`
}

// InvestmentInputs hold capex by forecast year, positive = cash outflow.
type InvestmentInputs struct {
	Capex Series `json:"capex" yaml:"capex"`
}

// TaxInputs hold the tax rate, constant or per year.
type TaxInputs struct {
	Rate Series `json:"tax_rate" yaml:"tax_rate"`
}

// CAPMInputs derive the cost of equity: Ke = rf + beta*(rm - rf).
type CAPMInputs struct {
	RiskFree     float64  `json:"rf" yaml:"rf"`
	MarketReturn float64  `json:"rm" yaml:"rm"`
	Beta         float64  `json:"beta" yaml:"beta"`
	KeOverride   *float64 `json:"ke_override,omitempty" yaml:"ke_override,omitempty"`
}

// DebtInputs hold end-of-period debt balances (base year included) and the
// cost of debt.
type DebtInputs struct {
	Balances   map[int]float64 `json:"balances" yaml:"balances" validate:"required"`
	CostOfDebt Series          `json:"rd" yaml:"rd"`
}

// WACCInputs configure capital structure weighting. Target mode takes fixed
// weights that must sum to 1; book-value mode forms per-year weights from
// closing debt and the rolled-forward equity book.
type WACCInputs struct {
	WeightingMode WeightingMode `json:"weighting_mode" yaml:"weighting_mode"`
	TargetWE      *float64      `json:"we,omitempty" yaml:"we,omitempty"`
	TargetWD      *float64      `json:"wd,omitempty" yaml:"wd,omitempty"`
}

// EquityInputs anchor the equity book roll-forward.
type EquityInputs struct {
	BaseEquityBook float64 `json:"base_equity_book" yaml:"base_equity_book"`
}

// TerminalValueInputs configure the value beyond the explicit horizon.
type TerminalValueInputs struct {
	Method           TerminalValueMethod `json:"method" yaml:"method"`
	PerpetuityGrowth *float64            `json:"g,omitempty" yaml:"g,omitempty"`
	ExitMultiple     *float64            `json:"exit_multiple,omitempty" yaml:"exit_multiple,omitempty"`
	ExitMetric       ExitMetric          `json:"exit_metric,omitempty" yaml:"exit_metric,omitempty"`
}

// NetDebtInputs carry the base-year cash position for the equity bridge.
// Base debt comes from DebtInputs.
type NetDebtInputs struct {
	CashAndEquivalents float64 `json:"cash_and_equivalents" yaml:"cash_and_equivalents"`
}

// Assumptions is the immutable input aggregate for one engine run. It is
// constructed once from a validated document and never mutated; concurrent
// runs each take their own copy.
type Assumptions struct {
	DiscountingMode DiscountingMode     `json:"discounting_mode" yaml:"discounting_mode"`
	Timeline        Timeline            `json:"timeline" yaml:"timeline" validate:"required"`
	Revenue         RevenueInputs       `json:"revenue" yaml:"revenue"`
	Operating       OperatingInputs     `json:"operating" yaml:"operating"`
	NWC             NWCInputs           `json:"nwc" yaml:"nwc"`
	Investments     InvestmentInputs    `json:"investments" yaml:"investments"`
	Tax             TaxInputs           `json:"tax" yaml:"tax"`
	CAPM            CAPMInputs          `json:"capm" yaml:"capm"`
	Debt            DebtInputs          `json:"debt" yaml:"debt"`
	Equity          EquityInputs        `json:"equity" yaml:"equity"`
	WACC            WACCInputs          `json:"wacc" yaml:"wacc"`
	TerminalValue   TerminalValueInputs `json:"terminal_value" yaml:"terminal_value"`
	NetDebt         NetDebtInputs       `json:"net_debt" yaml:"net_debt"`
}

// Clone returns a deep copy, so sensitivity sweeps can perturb parameters
// without sharing state across concurrent runs.
func (a *Assumptions) Clone() *Assumptions {
	c := *a
	c.Timeline.ForecastYears = append([]int(nil), a.Timeline.ForecastYears...)
	c.Revenue.BaseRevenue = cloneFloat(a.Revenue.BaseRevenue)
	c.Revenue.ExplicitRevenue = cloneYearMap(a.Revenue.ExplicitRevenue)
	c.Revenue.GrowthRates = cloneSeries(a.Revenue.GrowthRates)
	c.Operating.CostRatios = cloneSeries(a.Operating.CostRatios)
	c.Operating.ExplicitEBITDA = cloneYearMap(a.Operating.ExplicitEBITDA)
	c.Operating.DA = cloneSeries(a.Operating.DA)
	c.NWC.NWCPercent = cloneSeries(a.NWC.NWCPercent)
	c.NWC.ExplicitNWC = cloneYearMap(a.NWC.ExplicitNWC)
	c.Investments.Capex = cloneSeries(a.Investments.Capex)
	c.Tax.Rate = cloneSeries(a.Tax.Rate)
	c.CAPM.KeOverride = cloneFloat(a.CAPM.KeOverride)
	c.Debt.Balances = cloneYearMap(a.Debt.Balances)
	c.Debt.CostOfDebt = cloneSeries(a.Debt.CostOfDebt)
	c.WACC.TargetWE = cloneFloat(a.WACC.TargetWE)
	c.WACC.TargetWD = cloneFloat(a.WACC.TargetWD)
	c.TerminalValue.PerpetuityGrowth = cloneFloat(a.TerminalValue.PerpetuityGrowth)
	c.TerminalValue.ExitMultiple = cloneFloat(a.TerminalValue.ExitMultiple)
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneYearMap(m map[int]float64) map[int]float64 {
	if m == nil {
		return nil
	}
	c := make(map[int]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneSeries(s Series) Series {
	return Series{Constant: cloneFloat(s.Constant), PerYear: cloneYearMap(s.PerYear)}
}
