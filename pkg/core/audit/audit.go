// Package audit recomputes each statement identity independently from the
// assembled outputs and reports pass/fail with numeric residuals. Checks
// never block a run; the caller decides whether a failure is fatal.
package audit

import (
	"math"

	"dcf_valuation/pkg/models"
)

const (
	// relTolerance is the relative band for each identity.
	relTolerance = 1e-6
	// absTolerance floors the band for near-zero bases.
	absTolerance = 1e-6
)

// Run executes all consistency checks against a built result.
func Run(r *models.ValuationResult) []models.AuditCheck {
	checks := make([]models.AuditCheck, 0, 4*len(r.ForecastYears)+2)

	checks = append(checks, balanceSheetIdentity(r)...)
	checks = append(checks, cashFlowCrossChecks(r)...)
	checks = append(checks, cashContinuity(r)...)
	checks = append(checks, pvRollup(r))

	return checks
}

// balanceSheetIdentity verifies InvestedCapital == NFP + Equity per year.
func balanceSheetIdentity(r *models.ValuationResult) []models.AuditCheck {
	checks := make([]models.AuditCheck, 0, len(r.Statements))
	for _, row := range r.Statements {
		expected := row.InvestedCapital
		computed := row.NetFinancialPosition + row.ClosingEquity
		checks = append(checks, newCheck("balance_sheet_identity", row.Year, expected, computed))
	}
	return checks
}

// cashFlowCrossChecks compares the direct FCFF/FCFE with the
// cash-flow-statement route.
func cashFlowCrossChecks(r *models.ValuationResult) []models.AuditCheck {
	checks := make([]models.AuditCheck, 0, 2*len(r.CashFlows))
	for _, row := range r.CashFlows {
		checks = append(checks, newCheck("fcff_cross_check", row.Year, row.FCFF, row.FCFFFromStatement))
		checks = append(checks, newCheck("fcfe_cross_check", row.Year, row.FCFE, row.FCFEFromStatement))
	}
	return checks
}

// cashContinuity verifies Cash_t == Cash_{t-1} + CFO + CFI + CFF.
func cashContinuity(r *models.ValuationResult) []models.AuditCheck {
	checks := make([]models.AuditCheck, 0, len(r.CashFlows))
	prevCash := r.Bridge.CashAtBase

	cashByYear := make(map[int]float64, len(r.Statements))
	for _, row := range r.Statements {
		cashByYear[row.Year] = row.ClosingCash
	}

	for _, row := range r.CashFlows {
		expected := cashByYear[row.Year]
		computed := prevCash + row.CFO + row.CFI + row.CFF
		checks = append(checks, newCheck("cash_continuity", row.Year, expected, computed))
		prevCash = expected
	}
	return checks
}

// pvRollup verifies EV == Σ PV(FCFF) + PV(TV) from the discount rows.
func pvRollup(r *models.ValuationResult) models.AuditCheck {
	var sum float64
	for _, row := range r.Discounting {
		sum += row.PVFCFF
	}
	return newCheck("pv_rollup_to_ev", 0, r.Bridge.EnterpriseValue, sum+r.TerminalValue.PVFCFF)
}

func newCheck(name string, year int, expected, computed float64) models.AuditCheck {
	residual := computed - expected
	tol := math.Max(relTolerance*math.Abs(expected), absTolerance)
	return models.AuditCheck{
		Name:      name,
		Year:      year,
		Expected:  expected,
		Computed:  computed,
		Residual:  residual,
		Tolerance: tol,
		Passed:    math.Abs(residual) <= tol,
	}
}
