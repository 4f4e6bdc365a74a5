package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"dcf_valuation/pkg/models"
)

// Report renders the valuation as a markdown document: headline bridge,
// per-year discounting detail and the audit outcome.
func Report(name string, r *models.ValuationResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Valuation report: %s\n\n", name))
	b.WriteString(fmt.Sprintf("Base year %d, %d forecast years, %s discounting.\n\n",
		r.BaseYear, len(r.ForecastYears), r.DiscountingMode))

	br := r.Bridge
	b.WriteString("## Enterprise-to-equity bridge\n\n")
	b.WriteString("| Item | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Sum PV(FCFF) | %.2f |\n", br.SumPVFCFF)
	fmt.Fprintf(&b, "| PV terminal value (%s) | %.2f |\n", r.TerminalValue.Method, br.PVTerminalFCFF)
	fmt.Fprintf(&b, "| Enterprise value | %.2f |\n", br.EnterpriseValue)
	fmt.Fprintf(&b, "| Net debt at base | %.2f |\n", br.NetDebt)
	fmt.Fprintf(&b, "| **Equity value** | **%.2f** |\n", br.EquityValue)
	fmt.Fprintf(&b, "| Equity value (FCFE route) | %.2f |\n", br.EquityValueFCFE)
	b.WriteString("\n")

	if len(br.ReconciliationNotes) > 0 {
		b.WriteString("## Reconciliation\n\n")
		for _, note := range br.ReconciliationNotes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Discounting\n\n")
	b.WriteString("| Year | FCFF | WACC | DF | PV(FCFF) |\n|---|---:|---:|---:|---:|\n")
	for _, row := range r.Discounting {
		fmt.Fprintf(&b, "| %d | %.2f | %.4f | %.6f | %.2f |\n",
			row.Year, row.FCFF, row.WACC, row.DiscountFactor, row.PVFCFF)
	}
	b.WriteString("\n")

	failures := r.AuditFailures()
	b.WriteString("## Audit\n\n")
	if len(failures) == 0 {
		fmt.Fprintf(&b, "All %d identity checks passed.\n", len(r.AuditChecks))
	} else {
		fmt.Fprintf(&b, "%d of %d identity checks failed:\n\n", len(failures), len(r.AuditChecks))
		for _, c := range failures {
			fmt.Fprintf(&b, "- %s (year %d): residual %.6g exceeds tolerance %.6g\n",
				c.Name, c.Year, c.Residual, c.Tolerance)
		}
	}
	return b.String()
}

// ReportHTML converts the markdown report to a standalone HTML page.
func ReportHTML(name string, r *models.ValuationResult) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(name)
	buf.WriteString("</title></head><body>\n")
	if err := md.Convert([]byte(Report(name, r)), &buf); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	buf.WriteString("</body></html>\n")
	return buf.Bytes(), nil
}
