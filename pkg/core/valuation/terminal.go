// Package valuation computes terminal value and the enterprise-to-equity
// bridge.
package valuation

import (
	"fmt"
	"math"

	"dcf_valuation/pkg/models"
)

// Perpetuity computes TV = CF_N * (1+g) / (r - g), the Gordon growth model.
// g must be strictly below the discount rate: the formula is undefined or
// negative otherwise, so this is a hard validation failure, not an audit
// warning.
func Perpetuity(finalCashFlow, rate, growth float64) (float64, error) {
	if growth >= rate {
		return 0, &models.ValidationError{
			Field:  "terminal_value.g",
			Reason: fmt.Sprintf("growth rate (%.4f) must be less than discount rate (%.4f)", growth, rate),
		}
	}
	if math.Abs(growth) < 1e-10 {
		return finalCashFlow / rate, nil
	}
	return finalCashFlow * (1 + growth) / (rate - growth), nil
}

// BuildTerminalValue computes the terminal values for both legs and their
// present values. The perpetuity method capitalizes FCFF at the final year's
// WACC and FCFE at Ke; the exit-multiple method is EV-based and shared by
// both legs. The PVs use the same discount factors as the last explicit year.
func BuildTerminalValue(
	a *models.Assumptions,
	fcffLast, fcfeLast float64,
	waccLast, ke float64,
	metricEBITDA, metricEBIT, metricRevenue float64,
	dfLast, dfKeLast float64,
) (models.TerminalValue, error) {
	tv := models.TerminalValue{
		Method:    a.TerminalValue.Method,
		FinalYear: a.Timeline.FinalYear(),
	}

	if err := models.CheckTerminalValueMethod(a.TerminalValue.Method); err != nil {
		return tv, err
	}

	switch a.TerminalValue.Method {
	case models.TerminalPerpetuity:
		if a.TerminalValue.PerpetuityGrowth == nil {
			return tv, &models.ValidationError{
				Field:  "terminal_value",
				Reason: "perpetuity method requires g",
			}
		}
		g := *a.TerminalValue.PerpetuityGrowth
		tv.GrowthRate = &g

		valueFCFF, err := Perpetuity(fcffLast, waccLast, g)
		if err != nil {
			return tv, err
		}
		valueFCFE, err := Perpetuity(fcfeLast, ke, g)
		if err != nil {
			return tv, err
		}
		tv.ValueFCFF = valueFCFF
		tv.ValueFCFE = valueFCFE

	case models.TerminalExitMultiple:
		if a.TerminalValue.ExitMultiple == nil {
			return tv, &models.ValidationError{
				Field:  "terminal_value",
				Reason: "exit_multiple method requires exit_multiple and exit_metric",
			}
		}
		if err := models.CheckExitMetric(a.TerminalValue.ExitMetric); err != nil {
			return tv, err
		}

		var metric float64
		switch a.TerminalValue.ExitMetric {
		case models.ExitMetricEBITDA:
			metric = metricEBITDA
		case models.ExitMetricEBIT:
			metric = metricEBIT
		case models.ExitMetricRevenue:
			metric = metricRevenue
		}
		multiple := *a.TerminalValue.ExitMultiple
		tv.ExitMultiple = &multiple
		tv.ExitMetric = a.TerminalValue.ExitMetric
		tv.MetricValue = &metric

		value := multiple * metric
		tv.ValueFCFF = value
		tv.ValueFCFE = value
	}

	tv.PVFCFF = tv.ValueFCFF / dfLast
	tv.PVFCFE = tv.ValueFCFE / dfKeLast
	return tv, nil
}
