package sensitivity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcf_valuation/pkg/models"
)

func sweepAssumptions() *models.Assumptions {
	base := 9800.0
	g := 0.02
	return &models.Assumptions{
		DiscountingMode: models.DiscountingYearSpecificFlat,
		Timeline:        models.Timeline{BaseYear: 2023, ForecastYears: []int{2024, 2025, 2026, 2027}},
		Revenue: models.RevenueInputs{
			BaseRevenue: &base,
			GrowthRates: models.PerYear(map[int]float64{2024: 0.12, 2025: 0.09, 2026: 0.07, 2027: 0.05}),
		},
		Operating: models.OperatingInputs{
			CostRatios: models.PerYear(map[int]float64{2024: 0.86, 2025: 0.84, 2026: 0.82, 2027: 0.81}),
			DA:         models.PerYear(map[int]float64{2024: 450, 2025: 520, 2026: 560, 2027: 590}),
		},
		NWC: models.NWCInputs{
			NWCPercent: models.PerYear(map[int]float64{2023: 0.14, 2024: 0.15, 2025: 0.13, 2026: 0.12, 2027: 0.11}),
		},
		Investments: models.InvestmentInputs{
			Capex: models.PerYear(map[int]float64{2024: 650, 2025: 720, 2026: 820, 2027: 900}),
		},
		Tax:  models.TaxInputs{Rate: models.Const(0.28)},
		CAPM: models.CAPMInputs{RiskFree: 0.035, MarketReturn: 0.09, Beta: 1.10},
		Debt: models.DebtInputs{
			Balances:   map[int]float64{2023: 1200, 2024: 1550, 2025: 1600, 2026: 1550, 2027: 1500},
			CostOfDebt: models.PerYear(map[int]float64{2024: 0.056, 2025: 0.061, 2026: 0.062, 2027: 0.062}),
		},
		Equity: models.EquityInputs{BaseEquityBook: 5000},
		WACC:   models.WACCInputs{WeightingMode: models.WeightingBookValue},
		TerminalValue: models.TerminalValueInputs{
			Method:           models.TerminalPerpetuity,
			PerpetuityGrowth: &g,
		},
		NetDebt: models.NetDebtInputs{CashAndEquivalents: 950},
	}
}

func TestRunGrid(t *testing.T) {
	a := sweepAssumptions()
	grid, err := RunGrid(context.Background(), a, GridSpec{
		GrowthValues: []float64{0.01, 0.02, 0.03},
		RateShifts:   []float64{-0.005, 0, 0.005},
		Parallelism:  2,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, grid.RunID)
	require.Len(t, grid.Cells, 9)
	assert.Equal(t, 9, grid.Valid)
	assert.Zero(t, grid.Invalid)

	// Center cell reproduces the base case.
	center := grid.Cells[4]
	assert.InDelta(t, 0.02, center.Growth, 1e-12)
	assert.Zero(t, center.RateShift)
	assert.InDelta(t, grid.Base.Bridge.EquityValue, center.EquityValue, 0.01)

	assert.LessOrEqual(t, grid.Min, grid.Mean)
	assert.LessOrEqual(t, grid.Mean, grid.Max)
	assert.Greater(t, grid.StdDev, 0.0)
}

func TestRunGridEquityRisesWithGrowthAndFallsWithRates(t *testing.T) {
	a := sweepAssumptions()
	grid, err := RunGrid(context.Background(), a, GridSpec{
		GrowthValues: []float64{0.01, 0.03},
		RateShifts:   []float64{0, 0.01},
	})
	require.NoError(t, err)
	require.Len(t, grid.Cells, 4)

	lowG, highG := grid.Cells[0], grid.Cells[2]
	assert.Greater(t, highG.EquityValue, lowG.EquityValue)

	flat, shifted := grid.Cells[0], grid.Cells[1]
	assert.Greater(t, flat.EquityValue, shifted.EquityValue)
}

func TestRunGridRecordsIllPosedCells(t *testing.T) {
	a := sweepAssumptions()
	grid, err := RunGrid(context.Background(), a, GridSpec{
		GrowthValues: []float64{0.02, 0.20},
		RateShifts:   []float64{0},
	})
	require.NoError(t, err)

	require.Len(t, grid.Cells, 2)
	assert.Empty(t, grid.Cells[0].Err)
	assert.NotEmpty(t, grid.Cells[1].Err, "growth above WACC should be recorded, not fatal")
	assert.Equal(t, 1, grid.Valid)
	assert.Equal(t, 1, grid.Invalid)
}

func TestRunGridDoesNotMutateInput(t *testing.T) {
	a := sweepAssumptions()
	want := *a.TerminalValue.PerpetuityGrowth
	_, err := RunGrid(context.Background(), a, GridSpec{
		GrowthValues: []float64{0.00, 0.01},
		RateShifts:   []float64{-0.01, 0.01},
	})
	require.NoError(t, err)
	assert.InDelta(t, want, *a.TerminalValue.PerpetuityGrowth, 1e-12)
	assert.InDelta(t, 0.035, a.CAPM.RiskFree, 1e-12)
}

func TestRunShocks(t *testing.T) {
	a := sweepAssumptions()
	base, results, err := RunShocks(context.Background(), a, DefaultShocks(0.5), 2)
	require.NoError(t, err)
	require.Len(t, results, 8)

	byName := map[string]ShockResult{}
	for _, r := range results {
		require.Empty(t, r.Err, "shock %s", r.Name)
		byName[r.Name] = r
	}

	assert.Less(t, byName["beta_up"].EquityValue, base.Bridge.EquityValue)
	assert.Greater(t, byName["beta_down"].EquityValue, base.Bridge.EquityValue)
	assert.Less(t, byName["tax_up"].DeltaEquity, 0.0)
	assert.Greater(t, byName["growth_up"].DeltaEquity, 0.0)
}

func TestRunShocksCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := RunShocks(ctx, sweepAssumptions(), DefaultShocks(0.5), 1)
	require.Error(t, err)
}
