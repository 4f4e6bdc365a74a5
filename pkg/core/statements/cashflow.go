package statements

import (
	"dcf_valuation/pkg/core/projection"
)

// CashFlows holds FCFF and FCFE built two independent ways: the direct
// formula from EBIT, and the cash-flow-statement route (CFO/CFI/CFF). The
// audit checker compares the routes year by year.
type CashFlows struct {
	NOPAT             map[int]float64
	FCFF              map[int]float64
	FCFE              map[int]float64
	InterestTaxShield map[int]float64

	CFO               map[int]float64
	CFI               map[int]float64
	CFF               map[int]float64
	FCFFFromStatement map[int]float64
	FCFEFromStatement map[int]float64
}

// BuildCashFlows computes both routes for every forecast year.
//
// Direct: FCFF = EBIT*(1-t) + D&A - ΔNWC - Capex,
// FCFE = FCFF - Interest*(1-t) + NetBorrowing.
//
// Statement route: CFO = NetIncome + D&A - ΔNWC, CFI = -Capex,
// CFF = NetBorrowing (no dividends); FCFF = CFO + CFI + Interest*(1-t),
// FCFE = CFO + CFI + CFF.
func BuildCashFlows(
	forecast []int,
	op *projection.Operating,
	wc *projection.WorkingCapital,
	capex map[int]float64,
	s *Statements,
	taxRate map[int]float64,
) *CashFlows {
	cf := &CashFlows{
		NOPAT:             make(map[int]float64, len(forecast)),
		FCFF:              make(map[int]float64, len(forecast)),
		FCFE:              make(map[int]float64, len(forecast)),
		InterestTaxShield: make(map[int]float64, len(forecast)),
		CFO:               make(map[int]float64, len(forecast)),
		CFI:               make(map[int]float64, len(forecast)),
		CFF:               make(map[int]float64, len(forecast)),
		FCFFFromStatement: make(map[int]float64, len(forecast)),
		FCFEFromStatement: make(map[int]float64, len(forecast)),
	}

	for _, y := range forecast {
		t := taxRate[y]
		afterTaxInterest := s.Interest[y] * (1 - t)

		cf.NOPAT[y] = op.EBIT[y] * (1 - t)
		cf.InterestTaxShield[y] = s.Interest[y] * t
		cf.FCFF[y] = cf.NOPAT[y] + op.DA[y] - wc.DeltaNWC[y] - capex[y]
		cf.FCFE[y] = cf.FCFF[y] - afterTaxInterest + s.NetBorrowing[y]

		cf.CFO[y] = s.NetIncome[y] + op.DA[y] - wc.DeltaNWC[y]
		cf.CFI[y] = -capex[y]
		cf.CFF[y] = s.NetBorrowing[y]
		cf.FCFFFromStatement[y] = cf.CFO[y] + cf.CFI[y] + afterTaxInterest
		cf.FCFEFromStatement[y] = cf.CFO[y] + cf.CFI[y] + cf.CFF[y]
	}

	return cf
}
