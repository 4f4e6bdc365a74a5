// Package statements derives the income statement, the balance-sheet
// roll-forwards, and the cash flows from the operating projections. Interest
// follows the end-of-period convention throughout: a year's charge is that
// year's closing debt times that year's cost of debt.
package statements

import (
	"dcf_valuation/pkg/core/projection"
	"dcf_valuation/pkg/models"
)

// Statements holds the built income statement and balance sheet.
// Year-keyed maps: income lines and net borrowing cover forecast years;
// balance lines cover base + forecast years.
type Statements struct {
	Interest     map[int]float64
	EBT          map[int]float64
	Tax          map[int]float64
	NetIncome    map[int]float64
	NetBorrowing map[int]float64

	Equity      map[int]float64
	Debt        map[int]float64
	FixedAssets map[int]float64
	Cash        map[int]float64

	InvestedCapital      map[int]float64
	NetFinancialPosition map[int]float64
}

// Build produces the statements. Debt balances, cost of debt and tax rate
// arrive pre-resolved from the engine.
//
// Equity rolls forward on net income alone (no dividends or capital
// changes), and taxes are linear in EBT so the two FCFF routes tie by
// construction.
func Build(
	a *models.Assumptions,
	op *projection.Operating,
	wc *projection.WorkingCapital,
	capex map[int]float64,
	debt map[int]float64,
	rd map[int]float64,
	taxRate map[int]float64,
) *Statements {
	tl := a.Timeline
	base := tl.BaseYear
	forecast := tl.ForecastYears

	s := &Statements{
		Interest:             make(map[int]float64, len(forecast)),
		EBT:                  make(map[int]float64, len(forecast)),
		Tax:                  make(map[int]float64, len(forecast)),
		NetIncome:            make(map[int]float64, len(forecast)),
		NetBorrowing:         make(map[int]float64, len(forecast)),
		Equity:               make(map[int]float64, len(forecast)+1),
		Debt:                 debt,
		FixedAssets:          make(map[int]float64, len(forecast)+1),
		Cash:                 make(map[int]float64, len(forecast)+1),
		InvestedCapital:      make(map[int]float64, len(forecast)+1),
		NetFinancialPosition: make(map[int]float64, len(forecast)+1),
	}

	// Income statement.
	for _, y := range forecast {
		s.Interest[y] = debt[y] * rd[y]
		s.EBT[y] = op.EBIT[y] - s.Interest[y]
		s.Tax[y] = s.EBT[y] * taxRate[y]
		s.NetIncome[y] = s.EBT[y] - s.Tax[y]
	}

	// Base-year anchors. Fixed assets are derived so the reclassified
	// identity CIN = NFP + Equity holds exactly at t0.
	s.Equity[base] = a.Equity.BaseEquityBook
	s.Cash[base] = a.NetDebt.CashAndEquivalents
	s.NetFinancialPosition[base] = debt[base] - s.Cash[base]
	s.FixedAssets[base] = s.NetFinancialPosition[base] + s.Equity[base] - wc.NWC[base]
	s.InvestedCapital[base] = s.FixedAssets[base] + wc.NWC[base]

	// Roll-forwards.
	prev := base
	for _, y := range forecast {
		s.NetBorrowing[y] = debt[y] - debt[prev]
		s.Equity[y] = s.Equity[prev] + s.NetIncome[y]
		s.FixedAssets[y] = s.FixedAssets[prev] + capex[y] - op.DA[y]
		s.Cash[y] = s.Cash[prev] +
			s.NetIncome[y] + op.DA[y] - wc.DeltaNWC[y] - capex[y] + s.NetBorrowing[y]
		s.NetFinancialPosition[y] = debt[y] - s.Cash[y]
		s.InvestedCapital[y] = s.FixedAssets[y] + wc.NWC[y]
		prev = y
	}

	return s
}
