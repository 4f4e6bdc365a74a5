package models

// ProjectionRow is one forecast year of operating projections.
type ProjectionRow struct {
	Year           int
	Revenue        float64
	OperatingCosts float64
	CostRatio      float64
	EBITDA         float64
	DA             float64
	EBIT           float64
	NOPAT          float64
}

// WorkingCapitalRow is one year of the NWC schedule. DeltaNWC is undefined
// for the base year and reported as zero there.
type WorkingCapitalRow struct {
	Year     int
	NWC      float64
	DeltaNWC float64
}

// StatementRow is one forecast year of the income statement and the
// reclassified balance sheet (Invested Capital / Net Financial Position /
// Equity).
type StatementRow struct {
	Year            int
	InterestExpense float64
	EBT             float64
	Tax             float64
	NetIncome       float64

	ClosingEquity      float64
	ClosingDebt        float64
	ClosingNWC         float64
	ClosingFixedAssets float64
	ClosingCash        float64

	InvestedCapital      float64
	NetFinancialPosition float64
}

// CashFlowRow is one forecast year of cash flows: the direct FCFF/FCFE
// construction alongside the independent statement route (CFO/CFI/CFF) used
// for cross-checking.
type CashFlowRow struct {
	Year              int
	NOPAT             float64
	DA                float64
	DeltaNWC          float64
	Capex             float64
	FCFF              float64
	InterestExpense   float64
	InterestTaxShield float64
	NetBorrowing      float64
	FCFE              float64

	CFO               float64
	CFI               float64
	CFF               float64
	FCFFFromStatement float64
	FCFEFromStatement float64
}

// DiscountRow is one forecast year of discounting detail for both legs.
type DiscountRow struct {
	Year             int
	Period           int
	WACC             float64
	Ke               float64
	DiscountFactor   float64
	DiscountFactorKe float64
	FCFF             float64
	FCFE             float64
	PVFCFF           float64
	PVFCFE           float64
}

// WACCDetail records how a year's WACC was formed.
type WACCDetail struct {
	Year         int
	Ke           float64
	Rd           float64
	TaxRate      float64
	Debt         float64
	EquityBook   float64
	WeightDebt   float64
	WeightEquity float64
	WACC         float64
}

// TerminalValue holds the terminal value computation for both legs.
type TerminalValue struct {
	Method    TerminalValueMethod
	FinalYear int

	GrowthRate   *float64
	ExitMultiple *float64
	ExitMetric   ExitMetric
	MetricValue  *float64

	ValueFCFF float64
	ValueFCFE float64
	PVFCFF    float64
	PVFCFE    float64
}

// Bridge is the enterprise-to-equity valuation bridge, with the direct FCFE
// equity value alongside for reconciliation.
type Bridge struct {
	SumPVFCFF       float64
	SumPVFCFE       float64
	PVTerminalFCFF  float64
	PVTerminalFCFE  float64
	EnterpriseValue float64
	DebtAtBase      float64
	CashAtBase      float64
	NetDebt         float64
	EquityValue     float64
	EquityValueFCFE float64

	ReconciliationDifference float64
	ReconciliationNotes      []string
}

// AuditCheck is one post-computation identity check. Checks never abort a
// run; the caller decides how to treat failures.
type AuditCheck struct {
	Name      string
	Year      int // 0 for aggregate checks
	Expected  float64
	Computed  float64
	Residual  float64
	Tolerance float64
	Passed    bool
}

// ValuationResult is the complete, immutable output of one engine run.
type ValuationResult struct {
	BaseYear        int
	ForecastYears   []int
	DiscountingMode DiscountingMode

	Projections    []ProjectionRow
	WorkingCapital []WorkingCapitalRow
	Statements     []StatementRow
	CashFlows      []CashFlowRow
	WACCDetails    []WACCDetail
	Discounting    []DiscountRow

	Ke            float64
	TerminalValue TerminalValue
	Bridge        Bridge

	AuditChecks []AuditCheck
}

// AuditFailures returns the checks that exceeded tolerance.
func (r *ValuationResult) AuditFailures() []AuditCheck {
	var failed []AuditCheck
	for _, c := range r.AuditChecks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}
