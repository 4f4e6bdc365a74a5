// Package sensitivity sweeps the engine over perturbed assumption sets: a
// two-way grid over terminal growth and a parallel rate shift, plus
// one-at-a-time shocks. Every run takes its own deep copy of the
// assumptions, so cells execute concurrently without sharing state.
package sensitivity

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"dcf_valuation/pkg/core/engine"
	"dcf_valuation/pkg/models"
)

const defaultParallelism = 4

// GridSpec configures the two-way sweep. GrowthValues vary the perpetuity
// growth rate; RateShifts move the risk-free rate and the cost of debt in
// parallel, shifting the whole discount-rate structure.
type GridSpec struct {
	GrowthValues []float64 `json:"growth_values" yaml:"growth_values"`
	RateShifts   []float64 `json:"rate_shifts" yaml:"rate_shifts"`
	Parallelism  int       `json:"parallelism" yaml:"parallelism"`
}

// Cell is one grid point. Ill-posed combinations (growth at or above the
// discount rate) carry the validation error instead of values.
type Cell struct {
	Growth    float64
	RateShift float64

	EnterpriseValue float64
	EquityValue     float64
	AuditFailed     int

	Err string
}

// Summary describes the distribution of equity values across valid cells.
type Summary struct {
	Valid   int
	Invalid int
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// GridResult is the outcome of a grid sweep, cells in row-major order
// (growth outer, rate shift inner).
type GridResult struct {
	RunID string
	Base  *models.ValuationResult
	Cells []Cell
	Summary
}

// RunGrid values every growth x rate-shift combination. The base case runs
// first; a base-case failure aborts the sweep, per-cell failures do not.
func RunGrid(ctx context.Context, a *models.Assumptions, spec GridSpec) (*GridResult, error) {
	base, err := engine.Run(a.Clone())
	if err != nil {
		return nil, err
	}

	result := &GridResult{
		RunID: uuid.NewString(),
		Base:  base,
		Cells: make([]Cell, len(spec.GrowthValues)*len(spec.RateShifts)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism(spec.Parallelism))

	for i, growth := range spec.GrowthValues {
		for j, shift := range spec.RateShifts {
			idx := i*len(spec.RateShifts) + j
			growth, shift := growth, shift
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				perturbed := a.Clone()
				applyGrowth(perturbed, growth)
				applyRateShift(perturbed, shift)
				result.Cells[idx] = runCell(perturbed, growth, shift)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Summary = summarize(result.Cells)
	return result, nil
}

// Shock is a named one-at-a-time perturbation.
type Shock struct {
	Name  string
	Apply func(*models.Assumptions)
}

// ShockResult is the outcome of one shock against the base case.
type ShockResult struct {
	Name string

	EnterpriseValue float64
	EquityValue     float64
	DeltaEquity     float64

	Err string
}

// RunShocks values each shock independently against the same base case.
func RunShocks(ctx context.Context, a *models.Assumptions, shocks []Shock, limit int) (*models.ValuationResult, []ShockResult, error) {
	base, err := engine.Run(a.Clone())
	if err != nil {
		return nil, nil, err
	}

	results := make([]ShockResult, len(shocks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism(limit))

	for i, s := range shocks {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perturbed := a.Clone()
			s.Apply(perturbed)
			r, err := engine.Run(perturbed)
			if err != nil {
				results[i] = ShockResult{Name: s.Name, Err: err.Error()}
				return nil
			}
			results[i] = ShockResult{
				Name:            s.Name,
				EnterpriseValue: r.Bridge.EnterpriseValue,
				EquityValue:     r.Bridge.EquityValue,
				DeltaEquity:     r.Bridge.EquityValue - base.Bridge.EquityValue,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return base, results, nil
}

// DefaultShocks builds the standard one-at-a-time set: beta, risk-free rate,
// tax rate and terminal growth, each moved by delta in both directions.
func DefaultShocks(delta float64) []Shock {
	return []Shock{
		{Name: "beta_up", Apply: func(a *models.Assumptions) { a.CAPM.Beta += delta }},
		{Name: "beta_down", Apply: func(a *models.Assumptions) { a.CAPM.Beta -= delta }},
		{Name: "rf_up", Apply: func(a *models.Assumptions) { a.CAPM.RiskFree += delta / 100 }},
		{Name: "rf_down", Apply: func(a *models.Assumptions) { a.CAPM.RiskFree -= delta / 100 }},
		{Name: "tax_up", Apply: func(a *models.Assumptions) { shiftSeries(&a.Tax.Rate, delta/100) }},
		{Name: "tax_down", Apply: func(a *models.Assumptions) { shiftSeries(&a.Tax.Rate, -delta/100) }},
		{Name: "growth_up", Apply: func(a *models.Assumptions) { shiftGrowth(a, delta/100) }},
		{Name: "growth_down", Apply: func(a *models.Assumptions) { shiftGrowth(a, -delta/100) }},
	}
}

func runCell(a *models.Assumptions, growth, shift float64) Cell {
	r, err := engine.Run(a)
	if err != nil {
		return Cell{Growth: growth, RateShift: shift, Err: err.Error()}
	}
	return Cell{
		Growth:          growth,
		RateShift:       shift,
		EnterpriseValue: r.Bridge.EnterpriseValue,
		EquityValue:     r.Bridge.EquityValue,
		AuditFailed:     len(r.AuditFailures()),
	}
}

func applyGrowth(a *models.Assumptions, growth float64) {
	g := growth
	a.TerminalValue.PerpetuityGrowth = &g
	a.TerminalValue.Method = models.TerminalPerpetuity
}

// applyRateShift moves rf and rd together, so Ke and WACC shift in parallel.
func applyRateShift(a *models.Assumptions, shift float64) {
	if shift == 0 {
		return
	}
	a.CAPM.RiskFree += shift
	a.CAPM.MarketReturn += shift
	shiftSeries(&a.Debt.CostOfDebt, shift)
}

func shiftSeries(s *models.Series, delta float64) {
	if s.Constant != nil {
		v := *s.Constant + delta
		s.Constant = &v
	}
	for y, v := range s.PerYear {
		s.PerYear[y] = v + delta
	}
}

func shiftGrowth(a *models.Assumptions, delta float64) {
	if a.TerminalValue.PerpetuityGrowth == nil {
		return
	}
	g := *a.TerminalValue.PerpetuityGrowth + delta
	a.TerminalValue.PerpetuityGrowth = &g
}

func summarize(cells []Cell) Summary {
	var values []float64
	invalid := 0
	for _, c := range cells {
		if c.Err != "" {
			invalid++
			continue
		}
		values = append(values, c.EquityValue)
	}
	s := Summary{Valid: len(values), Invalid: invalid}
	if len(values) == 0 {
		return s
	}
	sort.Float64s(values)
	s.Min = values[0]
	s.Max = values[len(values)-1]
	s.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	return s
}

func parallelism(n int) int {
	if n <= 0 {
		return defaultParallelism
	}
	return n
}
