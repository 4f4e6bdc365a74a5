// Package export renders valuation results to terminal tables, CSV files,
// Excel workbooks and markdown/HTML reports.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"dcf_valuation/pkg/models"
)

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}

// RenderSummary prints the headline valuation: per-year PVs, terminal value
// and the enterprise-to-equity bridge.
func RenderSummary(w io.Writer, r *models.ValuationResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Year", "FCFF", "WACC", "DF", "PV(FCFF)"})
	for _, row := range r.Discounting {
		table.Append([]string{
			strconv.Itoa(row.Year),
			money(row.FCFF),
			pct(row.WACC),
			strconv.FormatFloat(row.DiscountFactor, 'f', 6, 64),
			money(row.PVFCFF),
		})
	}
	table.Render()

	b := r.Bridge
	bridge := tablewriter.NewWriter(w)
	bridge.SetHeader([]string{"Bridge", "Value"})
	bridge.Append([]string{"Sum PV(FCFF)", money(b.SumPVFCFF)})
	bridge.Append([]string{fmt.Sprintf("PV(TV, %s)", r.TerminalValue.Method), money(b.PVTerminalFCFF)})
	bridge.Append([]string{"Enterprise value", money(b.EnterpriseValue)})
	bridge.Append([]string{"Net debt at base", money(b.NetDebt)})
	bridge.Append([]string{"Equity value", money(b.EquityValue)})
	bridge.Append([]string{"Equity value (FCFE route)", money(b.EquityValueFCFE)})
	bridge.Render()
}

// RenderCashFlows prints both cash flow routes side by side.
func RenderCashFlows(w io.Writer, r *models.ValuationResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Year", "NOPAT", "D&A", "dNWC", "Capex", "FCFF", "FCFE", "CFO", "CFI", "CFF"})
	for _, row := range r.CashFlows {
		table.Append([]string{
			strconv.Itoa(row.Year),
			money(row.NOPAT), money(row.DA), money(row.DeltaNWC), money(row.Capex),
			money(row.FCFF), money(row.FCFE),
			money(row.CFO), money(row.CFI), money(row.CFF),
		})
	}
	table.Render()
}

// RenderStatements prints the income statement and reclassified balance
// sheet rows.
func RenderStatements(w io.Writer, r *models.ValuationResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Year", "Interest", "EBT", "Tax", "Net income", "Equity", "Debt", "Cash", "CIN", "NFP"})
	for _, row := range r.Statements {
		table.Append([]string{
			strconv.Itoa(row.Year),
			money(row.InterestExpense), money(row.EBT), money(row.Tax), money(row.NetIncome),
			money(row.ClosingEquity), money(row.ClosingDebt), money(row.ClosingCash),
			money(row.InvestedCapital), money(row.NetFinancialPosition),
		})
	}
	table.Render()
}

// RenderAudit prints every identity check with its residual.
func RenderAudit(w io.Writer, r *models.ValuationResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Check", "Year", "Expected", "Computed", "Residual", "Status"})
	for _, c := range r.AuditChecks {
		year := ""
		if c.Year != 0 {
			year = strconv.Itoa(c.Year)
		}
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		table.Append([]string{
			c.Name, year,
			money(c.Expected), money(c.Computed),
			strconv.FormatFloat(c.Residual, 'e', 3, 64),
			status,
		})
	}
	table.Render()
}
