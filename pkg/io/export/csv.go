package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"dcf_valuation/pkg/models"
)

// WriteCSV writes the result schedules to a directory, one file per
// schedule.
func WriteCSV(dir string, r *models.ValuationResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := map[string]func(*csv.Writer) error{
		"projections.csv":  func(w *csv.Writer) error { return writeProjections(w, r) },
		"statements.csv":   func(w *csv.Writer) error { return writeStatements(w, r) },
		"cash_flows.csv":   func(w *csv.Writer) error { return writeCashFlows(w, r) },
		"discounting.csv":  func(w *csv.Writer) error { return writeDiscounting(w, r) },
		"audit_checks.csv": func(w *csv.Writer) error { return writeAudit(w, r) },
	}
	for name, write := range files {
		if err := writeFile(filepath.Join(dir, name), write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func f64(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func writeProjections(w *csv.Writer, r *models.ValuationResult) error {
	if err := w.Write([]string{"year", "revenue", "operating_costs", "cost_ratio", "ebitda", "da", "ebit", "nopat"}); err != nil {
		return err
	}
	for _, row := range r.Projections {
		rec := []string{
			strconv.Itoa(row.Year), f64(row.Revenue), f64(row.OperatingCosts), f64(row.CostRatio),
			f64(row.EBITDA), f64(row.DA), f64(row.EBIT), f64(row.NOPAT),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeStatements(w *csv.Writer, r *models.ValuationResult) error {
	header := []string{
		"year", "interest", "ebt", "tax", "net_income",
		"equity", "debt", "nwc", "fixed_assets", "cash", "invested_capital", "nfp",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range r.Statements {
		rec := []string{
			strconv.Itoa(row.Year), f64(row.InterestExpense), f64(row.EBT), f64(row.Tax), f64(row.NetIncome),
			f64(row.ClosingEquity), f64(row.ClosingDebt), f64(row.ClosingNWC), f64(row.ClosingFixedAssets),
			f64(row.ClosingCash), f64(row.InvestedCapital), f64(row.NetFinancialPosition),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeCashFlows(w *csv.Writer, r *models.ValuationResult) error {
	header := []string{
		"year", "nopat", "da", "delta_nwc", "capex", "fcff",
		"interest", "interest_tax_shield", "net_borrowing", "fcfe",
		"cfo", "cfi", "cff", "fcff_from_statement", "fcfe_from_statement",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range r.CashFlows {
		rec := []string{
			strconv.Itoa(row.Year), f64(row.NOPAT), f64(row.DA), f64(row.DeltaNWC), f64(row.Capex), f64(row.FCFF),
			f64(row.InterestExpense), f64(row.InterestTaxShield), f64(row.NetBorrowing), f64(row.FCFE),
			f64(row.CFO), f64(row.CFI), f64(row.CFF), f64(row.FCFFFromStatement), f64(row.FCFEFromStatement),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeDiscounting(w *csv.Writer, r *models.ValuationResult) error {
	if err := w.Write([]string{"year", "period", "wacc", "ke", "df", "df_ke", "pv_fcff", "pv_fcfe"}); err != nil {
		return err
	}
	for _, row := range r.Discounting {
		rec := []string{
			strconv.Itoa(row.Year), strconv.Itoa(row.Period), f64(row.WACC), f64(row.Ke),
			f64(row.DiscountFactor), f64(row.DiscountFactorKe), f64(row.PVFCFF), f64(row.PVFCFE),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeAudit(w *csv.Writer, r *models.ValuationResult) error {
	if err := w.Write([]string{"check", "year", "expected", "computed", "residual", "tolerance", "passed"}); err != nil {
		return err
	}
	for _, c := range r.AuditChecks {
		rec := []string{
			c.Name, strconv.Itoa(c.Year), f64(c.Expected), f64(c.Computed),
			f64(c.Residual), f64(c.Tolerance), strconv.FormatBool(c.Passed),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
