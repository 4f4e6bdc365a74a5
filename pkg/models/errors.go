package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError is a fatal, pre-computation input error: missing year
// coverage, ill-posed rates, absent base-year values. The engine aborts on the
// first one and returns no partial result.
type ValidationError struct {
	Field        string
	Reason       string
	MissingYears []int
}

func (e *ValidationError) Error() string {
	if len(e.MissingYears) > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Field, e.Reason, formatYears(e.MissingYears))
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConfigurationError is a fatal, pre-computation error for an unknown or
// unsupported enum value (discounting mode, weighting mode, terminal value
// method, exit metric).
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: unsupported value %q", e.Field, e.Value)
}

func formatYears(years []int) string {
	sorted := make([]int, len(years))
	copy(sorted, years)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, y := range sorted {
		parts[i] = fmt.Sprintf("%d", y)
	}
	return strings.Join(parts, ", ")
}
