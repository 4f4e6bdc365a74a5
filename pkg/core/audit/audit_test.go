package audit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcf_valuation/pkg/core/audit"
	"dcf_valuation/pkg/core/engine"
	"dcf_valuation/pkg/models"
)

func consistentResult(t *testing.T) *models.ValuationResult {
	t.Helper()
	base := 1000.0
	g := 0.01
	a := &models.Assumptions{
		DiscountingMode: models.DiscountingYearSpecificFlat,
		Timeline:        models.Timeline{BaseYear: 2023, ForecastYears: []int{2024, 2025}},
		Revenue:         models.RevenueInputs{BaseRevenue: &base, GrowthRates: models.Const(0.05)},
		Operating: models.OperatingInputs{
			CostRatios: models.Const(0.8),
			DA:         models.Const(50),
		},
		NWC:         models.NWCInputs{NWCPercent: models.Const(0.1)},
		Investments: models.InvestmentInputs{Capex: models.Const(60)},
		Tax:         models.TaxInputs{Rate: models.Const(0.25)},
		CAPM:        models.CAPMInputs{RiskFree: 0.03, MarketReturn: 0.08, Beta: 1.0},
		Debt: models.DebtInputs{
			Balances:   map[int]float64{2023: 200, 2024: 180, 2025: 160},
			CostOfDebt: models.Const(0.05),
		},
		Equity:        models.EquityInputs{BaseEquityBook: 800},
		WACC:          models.WACCInputs{WeightingMode: models.WeightingBookValue},
		TerminalValue: models.TerminalValueInputs{Method: models.TerminalPerpetuity, PerpetuityGrowth: &g},
		NetDebt:       models.NetDebtInputs{CashAndEquivalents: 100},
	}
	result, err := engine.Run(a)
	require.NoError(t, err)
	return result
}

func TestRunAllChecksPassOnConsistentResult(t *testing.T) {
	result := consistentResult(t)
	checks := audit.Run(result)

	require.NotEmpty(t, checks)
	names := map[string]bool{}
	for _, c := range checks {
		names[c.Name] = true
		assert.True(t, c.Passed, "%s year %d residual %v", c.Name, c.Year, c.Residual)
	}
	for _, want := range []string{
		"balance_sheet_identity", "fcff_cross_check", "fcfe_cross_check",
		"cash_continuity", "pv_rollup_to_ev",
	} {
		assert.True(t, names[want], "missing check %s", want)
	}
}

func TestRunFlagsTamperedStatements(t *testing.T) {
	result := consistentResult(t)
	result.Statements[0].InvestedCapital += 5

	checks := audit.Run(result)
	failed := 0
	for _, c := range checks {
		if c.Name == "balance_sheet_identity" && !c.Passed {
			failed++
		}
	}
	assert.Equal(t, 1, failed, "exactly the tampered year should fail")
}

func TestRunFlagsTamperedCashFlows(t *testing.T) {
	result := consistentResult(t)
	result.CashFlows[1].FCFF += 1

	var failedNames []string
	for _, c := range audit.Run(result) {
		if !c.Passed {
			failedNames = append(failedNames, c.Name)
		}
	}
	assert.Contains(t, failedNames, "fcff_cross_check")
}

func TestRunFlagsTamperedBridge(t *testing.T) {
	result := consistentResult(t)
	result.Bridge.EnterpriseValue += 10

	var failedNames []string
	for _, c := range audit.Run(result) {
		if !c.Passed {
			failedNames = append(failedNames, c.Name)
		}
	}
	assert.Contains(t, failedNames, "pv_rollup_to_ev")
}
