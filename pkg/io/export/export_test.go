package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcf_valuation/pkg/models"
)

func sampleResult() *models.ValuationResult {
	g := 0.02
	return &models.ValuationResult{
		BaseYear:        2023,
		ForecastYears:   []int{2024, 2025},
		DiscountingMode: models.DiscountingYearSpecificFlat,
		Ke:              0.0955,
		Projections: []models.ProjectionRow{
			{Year: 2024, Revenue: 10976, EBITDA: 1536.64, DA: 450, EBIT: 1086.64, NOPAT: 782.38},
			{Year: 2025, Revenue: 11963.84, EBITDA: 1914.21, DA: 520, EBIT: 1394.21, NOPAT: 1003.83},
		},
		Statements: []models.StatementRow{
			{Year: 2024, InterestExpense: 86.8, EBT: 999.84, Tax: 279.96, NetIncome: 719.88, ClosingEquity: 5719.88},
			{Year: 2025, InterestExpense: 97.6, EBT: 1296.61, Tax: 363.05, NetIncome: 933.56, ClosingEquity: 6653.44},
		},
		CashFlows: []models.CashFlowRow{
			{Year: 2024, FCFF: 307.98, FCFE: 595.48, CFO: 895.48, CFI: -650, CFF: 350},
			{Year: 2025, FCFF: 894.94, FCFE: 874.66, CFO: 1544.94, CFI: -720, CFF: 50},
		},
		Discounting: []models.DiscountRow{
			{Year: 2024, Period: 1, WACC: 0.083735, DiscountFactor: 1.083735, FCFF: 307.98, PVFCFF: 284.18},
			{Year: 2025, Period: 2, WACC: 0.085501, DiscountFactor: 1.178313, FCFF: 894.94, PVFCFF: 759.51},
		},
		TerminalValue: models.TerminalValue{
			Method:     models.TerminalPerpetuity,
			FinalYear:  2025,
			GrowthRate: &g,
			ValueFCFF:  17331.65,
			PVFCFF:     12352.28,
		},
		Bridge: models.Bridge{
			SumPVFCFF:       1043.69,
			PVTerminalFCFF:  12352.28,
			EnterpriseValue: 13395.97,
			DebtAtBase:      1200,
			CashAtBase:      950,
			NetDebt:         250,
			EquityValue:     13145.97,
			EquityValueFCFE: 12400.12,
		},
		AuditChecks: []models.AuditCheck{
			{Name: "balance_sheet_identity", Year: 2024, Expected: 1, Computed: 1, Passed: true},
			{Name: "pv_rollup_to_ev", Expected: 13395.97, Computed: 13395.97, Passed: true},
		},
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, sampleResult())
	out := buf.String()

	assert.Contains(t, out, "2024")
	assert.Contains(t, out, "Enterprise value")
	assert.Contains(t, out, "13395.97")
	assert.Contains(t, out, "Equity value")
}

func TestRenderAudit(t *testing.T) {
	r := sampleResult()
	r.AuditChecks[0].Passed = false

	var buf bytes.Buffer
	RenderAudit(&buf, r)
	out := buf.String()
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "balance_sheet_identity")
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSV(dir, sampleResult()))

	for _, name := range []string{
		"projections.csv", "statements.csv", "cash_flows.csv", "discounting.csv", "audit_checks.csv",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.GreaterOrEqual(t, len(lines), 2, "%s should have header and rows", name)
		assert.Contains(t, lines[0], "year", name)
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuation.xlsx")
	require.NoError(t, WriteWorkbook(path, sampleResult()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestReportMarkdownAndHTML(t *testing.T) {
	r := sampleResult()
	md := Report("demo", r)

	assert.Contains(t, md, "# Valuation report: demo")
	assert.Contains(t, md, "Enterprise value")
	assert.Contains(t, md, "All 2 identity checks passed")

	html, err := ReportHTML("demo", r)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), "demo")
}

func TestReportListsFailures(t *testing.T) {
	r := sampleResult()
	r.AuditChecks[1].Passed = false
	r.AuditChecks[1].Residual = 0.5

	md := Report("demo", r)
	assert.Contains(t, md, "1 of 2 identity checks failed")
	assert.Contains(t, md, "pv_rollup_to_ev")
}
