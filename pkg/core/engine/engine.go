// Package engine sequences the calculation stages in dependency order and
// assembles the ValuationResult. The engine is a pure function of the
// Assumptions: no process-wide state, safe for concurrent invocations that
// each hold their own inputs.
package engine

import (
	"dcf_valuation/pkg/core/audit"
	"dcf_valuation/pkg/core/discount"
	"dcf_valuation/pkg/core/projection"
	"dcf_valuation/pkg/core/statements"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
)

// Run validates the assumptions and executes the full pipeline. The first
// validation or configuration failure aborts with no partial result; audit
// failures never abort and are always attached to the result.
func Run(a *models.Assumptions) (*models.ValuationResult, error) {
	if err := a.Timeline.Normalize(); err != nil {
		return nil, err
	}
	if err := models.CheckDiscountingMode(a.DiscountingMode); err != nil {
		return nil, err
	}
	if err := models.CheckWeightingMode(a.WACC.WeightingMode); err != nil {
		return nil, err
	}
	if err := models.CheckTerminalValueMethod(a.TerminalValue.Method); err != nil {
		return nil, err
	}

	tl := a.Timeline
	base := tl.BaseYear
	forecast := tl.ForecastYears
	baseOptional := []int{base}

	// Rate resolution. Debt balances and NWC% must include the base year;
	// the remaining series are forecast-only with base-year entries
	// tolerated.
	taxRate, err := a.Tax.Rate.Resolve("tax.tax_rate", forecast, baseOptional)
	if err != nil {
		return nil, err
	}
	rd, err := a.Debt.CostOfDebt.Resolve("debt.rd", forecast, baseOptional)
	if err != nil {
		return nil, err
	}
	debt, err := models.ResolveMap("debt.balances", a.Debt.Balances, tl.AllYears(), nil)
	if err != nil {
		return nil, err
	}

	// Operating projections and schedules.
	op, err := projection.BuildOperating(a)
	if err != nil {
		return nil, err
	}
	wc, err := projection.BuildWorkingCapital(a, op.Revenue)
	if err != nil {
		return nil, err
	}
	capex, err := projection.ResolveCapex(a)
	if err != nil {
		return nil, err
	}

	// Statements and cash flows.
	stmt := statements.Build(a, op, wc, capex, debt, rd, taxRate)
	cf := statements.BuildCashFlows(forecast, op, wc, capex, stmt, taxRate)

	// Discount rates and factors.
	ke := discount.CostOfEquity(a.CAPM)
	wacc, waccDetails, err := discount.BuildWACC(a, ke, debt, stmt.Equity, rd, taxRate)
	if err != nil {
		return nil, err
	}
	df, err := discount.Factors(a.DiscountingMode, wacc, tl)
	if err != nil {
		return nil, err
	}
	dfKe := discount.ConstantFactors(ke, tl)

	pvFCFF := discount.PresentValues(cf.FCFF, df)
	pvFCFE := discount.PresentValues(cf.FCFE, dfKe)
	sumPVFCFF := discount.Sum(pvFCFF)
	sumPVFCFE := discount.Sum(pvFCFE)

	// Terminal value and bridge.
	final := tl.FinalYear()
	tv, err := valuation.BuildTerminalValue(
		a,
		cf.FCFF[final], cf.FCFE[final],
		wacc[final], ke,
		op.EBITDA[final], op.EBIT[final], op.Revenue[final],
		df[final], dfKe[final],
	)
	if err != nil {
		return nil, err
	}
	bridge := valuation.BuildBridge(sumPVFCFF, sumPVFCFE, tv, debt[base], a.NetDebt.CashAndEquivalents)

	// Assemble the result rows in year order.
	result := &models.ValuationResult{
		BaseYear:        base,
		ForecastYears:   forecast,
		DiscountingMode: a.DiscountingMode,
		Ke:              ke,
		WACCDetails:     waccDetails,
		TerminalValue:   tv,
		Bridge:          bridge,
	}

	for _, y := range forecast {
		result.Projections = append(result.Projections, models.ProjectionRow{
			Year:           y,
			Revenue:        op.Revenue[y],
			OperatingCosts: op.OperatingCosts[y],
			CostRatio:      op.CostRatios[y],
			EBITDA:         op.EBITDA[y],
			DA:             op.DA[y],
			EBIT:           op.EBIT[y],
			NOPAT:          cf.NOPAT[y],
		})
	}

	for _, y := range tl.AllYears() {
		result.WorkingCapital = append(result.WorkingCapital, models.WorkingCapitalRow{
			Year:     y,
			NWC:      wc.NWC[y],
			DeltaNWC: wc.DeltaNWC[y],
		})
	}

	for _, y := range forecast {
		result.Statements = append(result.Statements, models.StatementRow{
			Year:                 y,
			InterestExpense:      stmt.Interest[y],
			EBT:                  stmt.EBT[y],
			Tax:                  stmt.Tax[y],
			NetIncome:            stmt.NetIncome[y],
			ClosingEquity:        stmt.Equity[y],
			ClosingDebt:          stmt.Debt[y],
			ClosingNWC:           wc.NWC[y],
			ClosingFixedAssets:   stmt.FixedAssets[y],
			ClosingCash:          stmt.Cash[y],
			InvestedCapital:      stmt.InvestedCapital[y],
			NetFinancialPosition: stmt.NetFinancialPosition[y],
		})
	}

	for _, y := range forecast {
		result.CashFlows = append(result.CashFlows, models.CashFlowRow{
			Year:              y,
			NOPAT:             cf.NOPAT[y],
			DA:                op.DA[y],
			DeltaNWC:          wc.DeltaNWC[y],
			Capex:             capex[y],
			FCFF:              cf.FCFF[y],
			InterestExpense:   stmt.Interest[y],
			InterestTaxShield: cf.InterestTaxShield[y],
			NetBorrowing:      stmt.NetBorrowing[y],
			FCFE:              cf.FCFE[y],
			CFO:               cf.CFO[y],
			CFI:               cf.CFI[y],
			CFF:               cf.CFF[y],
			FCFFFromStatement: cf.FCFFFromStatement[y],
			FCFEFromStatement: cf.FCFEFromStatement[y],
		})
	}

	for _, y := range forecast {
		result.Discounting = append(result.Discounting, models.DiscountRow{
			Year:             y,
			Period:           tl.Period(y),
			WACC:             wacc[y],
			Ke:               ke,
			DiscountFactor:   df[y],
			DiscountFactorKe: dfKe[y],
			FCFF:             cf.FCFF[y],
			FCFE:             cf.FCFE[y],
			PVFCFF:           pvFCFF[y],
			PVFCFE:           pvFCFE[y],
		})
	}

	result.AuditChecks = audit.Run(result)
	return result, nil
}
