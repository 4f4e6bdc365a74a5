package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcf_valuation/pkg/core/engine"
	"dcf_valuation/pkg/models"
)

const yamlCase = `
discounting_mode: year_specific_flat
timeline:
  base_year: 2023
  forecast_years: [2024, 2025, 2026, 2027]
revenue:
  base_revenue: 9800
  growth_rates:
    2024: 0.12
    2025: 0.09
    2026: 0.07
    2027: 0.05
operating:
  cost_ratios:
    2024: 0.86
    2025: 0.84
    2026: 0.82
    2027: 0.81
  depreciation_amortization:
    2024: 450
    2025: 520
    2026: 560
    2027: 590
nwc:
  nwc_percent:
    2023: 0.14
    2024: 0.15
    2025: 0.13
    2026: 0.12
    2027: 0.11
investments:
  capex:
    2024: 650
    2025: 720
    2026: 820
    2027: 900
tax:
  tax_rate: 0.28
capm:
  rf: 0.035
  rm: 0.09
  beta: 1.10
debt:
  balances:
    2023: 1200
    2024: 1550
    2025: 1600
    2026: 1550
    2027: 1500
  rd:
    2024: 0.056
    2025: 0.061
    2026: 0.062
    2027: 0.062
equity:
  base_equity_book: 5000
wacc:
  weighting_mode: book_value
terminal_value:
  method: perpetuity
  g: 0.02
net_debt:
  cash_and_equivalents: 950
`

// hjson tolerates comments and unquoted keys.
const hjsonCase = `
{
  discounting_mode: constant
  timeline: {
    base_year: 2023
    forecast_years: [2024, 2025]
  }
  revenue: {
    base_revenue: 1000
    growth_rates: 0.05
  }
  operating: {
    cost_ratios: 0.8
    depreciation_amortization: 50
  }
  nwc: { nwc_percent: 0.1 }
  investments: { capex: 60 }
  tax: { tax_rate: 0.25 }
  capm: { rf: 0.03, rm: 0.08, beta: 1.0 }
  debt: {
    balances: { "2023": 200, "2024": 180, "2025": 160 }
    rd: 0.05
  }
  equity: { base_equity_book: 800 }
  wacc: { weighting_mode: "book_value" }
  terminal_value: { method: "perpetuity", g: 0.01 }
  net_debt: { cash_and_equivalents: 100 }
}
`

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAssumptionsYAML(t *testing.T) {
	a, err := LoadAssumptions(write(t, "case.yaml", yamlCase))
	require.NoError(t, err)

	assert.Equal(t, models.DiscountingYearSpecificFlat, a.DiscountingMode)
	assert.Equal(t, 2023, a.Timeline.BaseYear)
	require.NotNil(t, a.Revenue.BaseRevenue)
	assert.InDelta(t, 9800, *a.Revenue.BaseRevenue, 1e-9)
	assert.InDelta(t, 0.12, a.Revenue.GrowthRates.PerYear[2024], 1e-12)
	require.NotNil(t, a.Tax.Rate.Constant)
	assert.InDelta(t, 0.28, *a.Tax.Rate.Constant, 1e-12)
	assert.InDelta(t, 1550, a.Debt.Balances[2024], 1e-9)
	require.NotNil(t, a.TerminalValue.PerpetuityGrowth)

	// The loaded document runs end to end.
	result, err := engine.Run(a)
	require.NoError(t, err)
	assert.InDelta(t, 14763.874966, result.Bridge.EquityValue, 0.01)
}

func TestLoadAssumptionsHJSON(t *testing.T) {
	a, err := LoadAssumptions(write(t, "case.hjson", hjsonCase))
	require.NoError(t, err)

	assert.Equal(t, models.DiscountingConstant, a.DiscountingMode)
	require.NotNil(t, a.Revenue.GrowthRates.Constant)
	assert.InDelta(t, 0.05, *a.Revenue.GrowthRates.Constant, 1e-12)
	assert.InDelta(t, 180, a.Debt.Balances[2024], 1e-9)

	_, err = engine.Run(a)
	require.NoError(t, err)
}

func TestLoadAssumptionsUnknownExtension(t *testing.T) {
	_, err := LoadAssumptions(write(t, "case.toml", "x = 1"))
	require.Error(t, err)
}

func TestLoadAssumptionsMissingFile(t *testing.T) {
	_, err := LoadAssumptions(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadAssumptionsRejectsInvalidDocument(t *testing.T) {
	// No timeline at all.
	_, err := LoadAssumptions(write(t, "bad.yaml", "revenue:\n  base_revenue: 100\n"))
	require.Error(t, err)
}

const biometanoCase = `
name: demo-plant
horizon:
  base_year: 2023
  years_forecast: 4
  construction_years: 1
production:
  forsu_throughput_tpy: 40000
  biomethane_mwh_y: 30000
revenues:
  gate_fee: { price: 80, payment_delay_days: 60, enabled: true }
  tariff: { price: 60, payment_delay_days: 90, escalation_rate: 0.02, enabled: true }
opex:
  personnel: { fixed_annual: 400000, payment_delay_days: 30 }
  utilities: { variable_per_mwh: 10 }
capex:
  epc: { amount: 8000000, spend_profile: [1.0], useful_life_years: 20 }
financing:
  debt_amount: 5000000
  debt_drawdown_profile: [1.0]
  cost_of_debt: 0.05
  debt_repayment_years: 10
  cash_at_base: 500000
  equity_book_at_base: 3000000
  tax_rate: 0.28
  rf: 0.03
  rm: 0.08
  beta: 1.0
terminal_value:
  method: perpetuity
  perpetuity_growth: 0.01
`

func TestLoadBiometanoCase(t *testing.T) {
	c, err := LoadBiometanoCase(write(t, "plant.yaml", biometanoCase))
	require.NoError(t, err)

	assert.Equal(t, "demo-plant", c.Name)
	assert.Equal(t, 2025, c.Horizon.CODYear())
	assert.InDelta(t, 30000, c.Production.BiomethaneMWh(), 1e-9)

	// Defaults filled for omitted fields.
	assert.InDelta(t, 10, c.Production.KWhPerSmc, 1e-12)
	assert.NotEmpty(t, c.Production.AvailabilityProfile)
	assert.True(t, c.Revenues.GateFee.Enabled)
	assert.False(t, c.Revenues.CO2.Enabled)
}

func TestLoadBiometanoCaseRejectsMissingOutput(t *testing.T) {
	doc := `
horizon: { base_year: 2023, years_forecast: 4, construction_years: 1 }
production: { forsu_throughput_tpy: 40000 }
`
	_, err := LoadBiometanoCase(write(t, "plant.yaml", doc))
	require.Error(t, err)
}
