package models

// DiscountingMode selects the present value convention.
type DiscountingMode string

const (
	// DiscountingConstant discounts every year at a single WACC (the first
	// forecast year's) raised to the year's ordinal period.
	DiscountingConstant DiscountingMode = "constant"
	// DiscountingYearSpecificFlat discounts year t at that year's own WACC
	// raised to period t, not a compounded path of differing rates.
	DiscountingYearSpecificFlat DiscountingMode = "year_specific_flat"
)

// TerminalValueMethod selects how value beyond the explicit horizon is sized.
type TerminalValueMethod string

const (
	TerminalPerpetuity   TerminalValueMethod = "perpetuity"
	TerminalExitMultiple TerminalValueMethod = "exit_multiple"
)

// WeightingMode selects how WACC capital structure weights are formed.
type WeightingMode string

const (
	WeightingTarget    WeightingMode = "target"
	WeightingBookValue WeightingMode = "book_value"
)

// ExitMetric is the operating metric an exit multiple is applied to.
type ExitMetric string

const (
	ExitMetricEBITDA  ExitMetric = "ebitda"
	ExitMetricEBIT    ExitMetric = "ebit"
	ExitMetricRevenue ExitMetric = "revenue"
)

// CheckDiscountingMode returns a ConfigurationError for unknown modes.
func CheckDiscountingMode(m DiscountingMode) error {
	switch m {
	case DiscountingConstant, DiscountingYearSpecificFlat:
		return nil
	}
	return &ConfigurationError{Field: "discounting_mode", Value: string(m)}
}

// CheckWeightingMode returns a ConfigurationError for unknown modes.
func CheckWeightingMode(m WeightingMode) error {
	switch m {
	case WeightingTarget, WeightingBookValue:
		return nil
	}
	return &ConfigurationError{Field: "wacc.weighting_mode", Value: string(m)}
}

// CheckTerminalValueMethod returns a ConfigurationError for unknown methods.
func CheckTerminalValueMethod(m TerminalValueMethod) error {
	switch m {
	case TerminalPerpetuity, TerminalExitMultiple:
		return nil
	}
	return &ConfigurationError{Field: "terminal_value.method", Value: string(m)}
}

// CheckExitMetric returns a ConfigurationError for unknown metrics.
func CheckExitMetric(m ExitMetric) error {
	switch m {
	case ExitMetricEBITDA, ExitMetricEBIT, ExitMetricRevenue:
		return nil
	}
	return &ConfigurationError{Field: "terminal_value.exit_metric", Value: string(m)}
}
