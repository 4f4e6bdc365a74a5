package projection

import (
	"math"
	"testing"

	"dcf_valuation/pkg/models"
)

func almost(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

func growthAssumptions() *models.Assumptions {
	base := 9800.0
	return &models.Assumptions{
		Timeline: models.Timeline{BaseYear: 2023, ForecastYears: []int{2024, 2025, 2026, 2027}},
		Revenue: models.RevenueInputs{
			BaseRevenue: &base,
			GrowthRates: models.PerYear(map[int]float64{2024: 0.12, 2025: 0.09, 2026: 0.07, 2027: 0.05}),
		},
		Operating: models.OperatingInputs{
			CostRatios: models.PerYear(map[int]float64{2024: 0.86, 2025: 0.84, 2026: 0.82, 2027: 0.81}),
			DA:         models.PerYear(map[int]float64{2024: 450, 2025: 520, 2026: 560, 2027: 590}),
		},
	}
}

func TestBuildOperatingGrowthChain(t *testing.T) {
	op, err := BuildOperating(growthAssumptions())
	if err != nil {
		t.Fatalf("build operating: %v", err)
	}

	almost(t, "revenue 2023", op.Revenue[2023], 9800)
	almost(t, "revenue 2024", op.Revenue[2024], 10976)
	almost(t, "revenue 2025", op.Revenue[2025], 11963.84)
	almost(t, "ebitda 2024", op.EBITDA[2024], 10976*0.14)
	almost(t, "ebit 2024", op.EBIT[2024], 10976*0.14-450)
	almost(t, "costs 2024", op.OperatingCosts[2024], 10976*0.86)
}

func TestBuildOperatingExplicitRevenueWins(t *testing.T) {
	a := growthAssumptions()
	a.Revenue.ExplicitRevenue = map[int]float64{2023: 9000, 2024: 10000, 2025: 11000, 2026: 12000, 2027: 13000}

	op, err := BuildOperating(a)
	if err != nil {
		t.Fatalf("build operating: %v", err)
	}
	almost(t, "revenue 2024", op.Revenue[2024], 10000)
	almost(t, "revenue 2023", op.Revenue[2023], 9000)
}

func TestBuildOperatingExplicitRevenueCoversBase(t *testing.T) {
	a := growthAssumptions()
	a.Revenue.BaseRevenue = nil
	a.Revenue.GrowthRates = models.Series{}
	a.Revenue.ExplicitRevenue = map[int]float64{2023: 9000, 2024: 10000, 2025: 11000, 2026: 12000, 2027: 13000}

	op, err := BuildOperating(a)
	if err != nil {
		t.Fatalf("build operating: %v", err)
	}
	almost(t, "revenue 2023", op.Revenue[2023], 9000)
	almost(t, "revenue 2027", op.Revenue[2027], 13000)
}

func TestBuildOperatingExplicitEBITDAOverride(t *testing.T) {
	a := growthAssumptions()
	a.Operating.CostRatios = models.Series{}
	a.Operating.ExplicitEBITDA = map[int]float64{2024: 1500, 2025: 1600, 2026: 1700, 2027: 1800}

	op, err := BuildOperating(a)
	if err != nil {
		t.Fatalf("build operating: %v", err)
	}
	almost(t, "ebitda 2024", op.EBITDA[2024], 1500)
	almost(t, "costs 2024", op.OperatingCosts[2024], 10976-1500)
	almost(t, "ebit 2027", op.EBIT[2027], 1800-590)
}

func TestBuildOperatingUnderdetermined(t *testing.T) {
	a := growthAssumptions()
	a.Revenue.BaseRevenue = nil
	if _, err := BuildOperating(a); err == nil {
		t.Fatal("expected error with no revenue route")
	}

	b := growthAssumptions()
	b.Revenue.ExplicitRevenue = map[int]float64{2024: 1, 2025: 1, 2026: 1, 2027: 1}
	b.Revenue.BaseRevenue = nil
	if _, err := BuildOperating(b); err == nil {
		t.Fatal("expected error for missing base-year revenue")
	}
}

func TestBuildWorkingCapitalPercentRoute(t *testing.T) {
	a := growthAssumptions()
	a.NWC.NWCPercent = models.PerYear(map[int]float64{
		2023: 0.14, 2024: 0.15, 2025: 0.13, 2026: 0.12, 2027: 0.11,
	})

	op, err := BuildOperating(a)
	if err != nil {
		t.Fatalf("build operating: %v", err)
	}
	wc, err := BuildWorkingCapital(a, op.Revenue)
	if err != nil {
		t.Fatalf("build working capital: %v", err)
	}

	almost(t, "nwc 2023", wc.NWC[2023], 9800*0.14)
	almost(t, "nwc 2024", wc.NWC[2024], 10976*0.15)
	almost(t, "delta 2024", wc.DeltaNWC[2024], 10976*0.15-9800*0.14)
	almost(t, "delta base", wc.DeltaNWC[2023], 0)
}

func TestBuildWorkingCapitalPercentRequiresBaseYear(t *testing.T) {
	a := growthAssumptions()
	a.NWC.NWCPercent = models.PerYear(map[int]float64{
		2024: 0.15, 2025: 0.13, 2026: 0.12, 2027: 0.11,
	})
	op, err := BuildOperating(a)
	if err != nil {
		t.Fatalf("build operating: %v", err)
	}
	if _, err := BuildWorkingCapital(a, op.Revenue); err == nil {
		t.Fatal("expected error for missing base-year nwc ratio")
	}
}

func TestBuildWorkingCapitalExplicitRoute(t *testing.T) {
	a := growthAssumptions()
	a.NWC.ExplicitNWC = map[int]float64{2023: 100, 2024: 150, 2025: 140, 2026: 160, 2027: 170}

	op, err := BuildOperating(a)
	if err != nil {
		t.Fatalf("build operating: %v", err)
	}
	wc, err := BuildWorkingCapital(a, op.Revenue)
	if err != nil {
		t.Fatalf("build working capital: %v", err)
	}
	almost(t, "delta 2025", wc.DeltaNWC[2025], -10)
}

func TestResolveCapexConstant(t *testing.T) {
	a := growthAssumptions()
	a.Investments.Capex = models.Const(700)
	capex, err := ResolveCapex(a)
	if err != nil {
		t.Fatalf("resolve capex: %v", err)
	}
	almost(t, "capex 2026", capex[2026], 700)
}
