package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"dcf_valuation/pkg/models"
)

// WriteWorkbook writes the full result to an Excel workbook, one sheet per
// schedule plus a summary sheet.
func WriteWorkbook(path string, r *models.ValuationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, r); err != nil {
		return err
	}
	if err := writeRowsSheet(f, "Projections",
		[]interface{}{"Year", "Revenue", "Operating costs", "Cost ratio", "EBITDA", "D&A", "EBIT", "NOPAT"},
		len(r.Projections), func(i int) []interface{} {
			row := r.Projections[i]
			return []interface{}{row.Year, row.Revenue, row.OperatingCosts, row.CostRatio, row.EBITDA, row.DA, row.EBIT, row.NOPAT}
		}); err != nil {
		return err
	}
	if err := writeRowsSheet(f, "Statements",
		[]interface{}{"Year", "Interest", "EBT", "Tax", "Net income", "Equity", "Debt", "NWC", "Fixed assets", "Cash", "Invested capital", "NFP"},
		len(r.Statements), func(i int) []interface{} {
			row := r.Statements[i]
			return []interface{}{
				row.Year, row.InterestExpense, row.EBT, row.Tax, row.NetIncome,
				row.ClosingEquity, row.ClosingDebt, row.ClosingNWC, row.ClosingFixedAssets,
				row.ClosingCash, row.InvestedCapital, row.NetFinancialPosition,
			}
		}); err != nil {
		return err
	}
	if err := writeRowsSheet(f, "Cash Flow",
		[]interface{}{"Year", "NOPAT", "D&A", "Delta NWC", "Capex", "FCFF", "Interest", "Tax shield", "Net borrowing", "FCFE", "CFO", "CFI", "CFF"},
		len(r.CashFlows), func(i int) []interface{} {
			row := r.CashFlows[i]
			return []interface{}{
				row.Year, row.NOPAT, row.DA, row.DeltaNWC, row.Capex, row.FCFF,
				row.InterestExpense, row.InterestTaxShield, row.NetBorrowing, row.FCFE,
				row.CFO, row.CFI, row.CFF,
			}
		}); err != nil {
		return err
	}
	if err := writeRowsSheet(f, "Discounting",
		[]interface{}{"Year", "Period", "WACC", "Ke", "DF", "DF (Ke)", "PV FCFF", "PV FCFE"},
		len(r.Discounting), func(i int) []interface{} {
			row := r.Discounting[i]
			return []interface{}{row.Year, row.Period, row.WACC, row.Ke, row.DiscountFactor, row.DiscountFactorKe, row.PVFCFF, row.PVFCFE}
		}); err != nil {
		return err
	}
	if err := writeRowsSheet(f, "Audit Checks",
		[]interface{}{"Check", "Year", "Expected", "Computed", "Residual", "Tolerance", "Passed"},
		len(r.AuditChecks), func(i int) []interface{} {
			c := r.AuditChecks[i]
			return []interface{}{c.Name, c.Year, c.Expected, c.Computed, c.Residual, c.Tolerance, c.Passed}
		}); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, r *models.ValuationResult) error {
	const sheet = "Valuation Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	b := r.Bridge
	rows := [][]interface{}{
		{"Base year", r.BaseYear},
		{"Discounting mode", string(r.DiscountingMode)},
		{"Cost of equity (Ke)", r.Ke},
		{"Terminal value method", string(r.TerminalValue.Method)},
		{"Terminal value (FCFF)", r.TerminalValue.ValueFCFF},
		{"Sum PV(FCFF)", b.SumPVFCFF},
		{"PV terminal value", b.PVTerminalFCFF},
		{"Enterprise value", b.EnterpriseValue},
		{"Debt at base", b.DebtAtBase},
		{"Cash at base", b.CashAtBase},
		{"Net debt", b.NetDebt},
		{"Equity value", b.EquityValue},
		{"Equity value (FCFE route)", b.EquityValueFCFE},
		{"Reconciliation difference", b.ReconciliationDifference},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeRowsSheet(f *excelize.File, sheet string, header []interface{}, n int, row func(int) []interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
