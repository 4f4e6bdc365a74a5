package models

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestSeriesResolveConstantBroadcast(t *testing.T) {
	s := Const(0.28)
	out, err := s.Resolve("tax.tax_rate", []int{2024, 2025, 2026}, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 years, got %d", len(out))
	}
	for y, v := range out {
		if v != 0.28 {
			t.Errorf("year %d: expected 0.28, got %v", y, v)
		}
	}
}

func TestSeriesResolveMissingYears(t *testing.T) {
	s := PerYear(map[int]float64{2024: 0.05, 2026: 0.06})
	_, err := s.Resolve("debt.rd", []int{2024, 2025, 2026}, nil)
	if err == nil {
		t.Fatal("expected validation error for missing year")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "debt.rd" {
		t.Errorf("expected field debt.rd, got %s", verr.Field)
	}
	if len(verr.MissingYears) != 1 || verr.MissingYears[0] != 2025 {
		t.Errorf("expected missing year 2025, got %v", verr.MissingYears)
	}
}

func TestSeriesResolveBaseYearTolerated(t *testing.T) {
	s := PerYear(map[int]float64{2023: 0.048, 2024: 0.056, 2025: 0.061})
	out, err := s.Resolve("debt.rd", []int{2024, 2025}, []int{2023})
	if err != nil {
		t.Fatalf("base-year entry should be tolerated: %v", err)
	}
	if _, ok := out[2023]; ok {
		t.Error("base year should not appear in resolved output")
	}
}

func TestSeriesResolveRejectsExtraYears(t *testing.T) {
	s := PerYear(map[int]float64{2024: 0.05, 2025: 0.05, 2031: 0.05})
	_, err := s.Resolve("tax.tax_rate", []int{2024, 2025}, []int{2023})
	if err == nil {
		t.Fatal("expected rejection of years outside the timeline")
	}
}

func TestSeriesResolveEmpty(t *testing.T) {
	var s Series
	_, err := s.Resolve("nwc.nwc_percent", []int{2024}, nil)
	if err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestSeriesUnmarshalForms(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"scalar", `0.28`},
		{"year map", `{"2024": 0.28, "2025": 0.27}`},
		{"explicit struct", `{"constant": 0.28}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s Series
			if err := json.Unmarshal([]byte(tc.doc), &s); err != nil {
				t.Fatalf("json unmarshal: %v", err)
			}
			if s.IsZero() {
				t.Error("expected a populated series")
			}
		})
	}
}

func TestSeriesUnmarshalYAMLScalarAndMap(t *testing.T) {
	var doc struct {
		Rate Series `yaml:"rate"`
		Rd   Series `yaml:"rd"`
	}
	src := "rate: 0.28\nrd:\n  2024: 0.056\n  2025: 0.061\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if doc.Rate.Constant == nil || *doc.Rate.Constant != 0.28 {
		t.Errorf("expected constant 0.28, got %+v", doc.Rate)
	}
	if doc.Rd.PerYear[2025] != 0.061 {
		t.Errorf("expected per-year 0.061, got %+v", doc.Rd)
	}
}

func TestTimelineNormalize(t *testing.T) {
	tl := Timeline{BaseYear: 2023, ForecastYears: []int{2026, 2024, 2025}}
	if err := tl.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if tl.ForecastYears[0] != 2024 || tl.FinalYear() != 2026 {
		t.Errorf("expected sorted years, got %v", tl.ForecastYears)
	}

	dup := Timeline{BaseYear: 2023, ForecastYears: []int{2024, 2024}}
	if err := dup.Normalize(); err == nil {
		t.Error("expected duplicate-year rejection")
	}

	early := Timeline{BaseYear: 2023, ForecastYears: []int{2023, 2024}}
	if err := early.Normalize(); err == nil {
		t.Error("expected rejection of forecast year at or before base")
	}
}

func TestConfigurationErrors(t *testing.T) {
	if err := CheckDiscountingMode("midyear"); err == nil {
		t.Error("expected unknown discounting mode rejection")
	}
	if err := CheckWeightingMode(WeightingTarget); err != nil {
		t.Errorf("target mode should pass: %v", err)
	}
	if err := CheckTerminalValueMethod("liquidation"); err == nil {
		t.Error("expected unknown terminal value method rejection")
	}
	var cerr *ConfigurationError
	if err := CheckExitMetric("nopat"); !errors.As(err, &cerr) {
		t.Errorf("expected *ConfigurationError, got %T", err)
	}
}

func TestAssumptionsCloneIsDeep(t *testing.T) {
	base := 9800.0
	a := &Assumptions{
		Timeline: Timeline{BaseYear: 2023, ForecastYears: []int{2024}},
		Revenue:  RevenueInputs{BaseRevenue: &base, GrowthRates: Const(0.1)},
		Debt:     DebtInputs{Balances: map[int]float64{2023: 1200, 2024: 1550}},
	}
	c := a.Clone()
	*c.Revenue.BaseRevenue = 1
	c.Debt.Balances[2023] = 0
	c.Timeline.ForecastYears[0] = 2030

	if *a.Revenue.BaseRevenue != 9800 {
		t.Error("clone shares BaseRevenue pointer")
	}
	if a.Debt.Balances[2023] != 1200 {
		t.Error("clone shares Balances map")
	}
	if a.Timeline.ForecastYears[0] != 2024 {
		t.Error("clone shares ForecastYears slice")
	}
}
