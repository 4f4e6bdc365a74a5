// Package biometano is the domain-specialized variant: it derives revenue and
// cost series from physical production assumptions (plant capacity,
// availability ramp-up, throughput, price escalation) and itemized OPEX
// categories, then feeds the same downstream valuation machinery as the
// generic engine.
package biometano

import (
	"dcf_valuation/pkg/models"
)

// Default conversion and ramp-up values, matching standard plant modeling
// practice for FORSU digestion with biomethane upgrading.
const (
	DefaultKWhPerSmc    = 10.0
	DefaultImpurityRate = 0.20
)

var defaultAvailabilityProfile = []float64{0.75, 0.90, 0.95}

// Horizon is the project timeline: valuation date, construction phase, and
// operating years after the commercial operation date (COD).
type Horizon struct {
	BaseYear          int `json:"base_year" yaml:"base_year" validate:"required"`
	YearsForecast     int `json:"years_forecast" yaml:"years_forecast" validate:"required,gte=1,lte=30"`
	ConstructionYears int `json:"construction_years" yaml:"construction_years" validate:"gte=0,lte=5"`
}

// CODYear is the first operating year.
func (h Horizon) CODYear() int {
	return h.BaseYear + h.ConstructionYears + 1
}

// ConstructionYearsList returns the construction-phase years.
func (h Horizon) ConstructionYearsList() []int {
	years := make([]int, 0, h.ConstructionYears)
	for y := h.BaseYear + 1; y < h.CODYear(); y++ {
		years = append(years, y)
	}
	return years
}

// OperatingYearsList returns the operating-phase years.
func (h Horizon) OperatingYearsList() []int {
	years := make([]int, 0, h.YearsForecast)
	for i := 0; i < h.YearsForecast; i++ {
		years = append(years, h.CODYear()+i)
	}
	return years
}

// AllForecastYears returns construction + operating years.
func (h Horizon) AllForecastYears() []int {
	return append(h.ConstructionYearsList(), h.OperatingYearsList()...)
}

// Production configures plant capacity and output at full availability.
type Production struct {
	ForsuThroughputTPY float64 `json:"forsu_throughput_tpy" yaml:"forsu_throughput_tpy" validate:"required,gt=0"`
	ImpurityRate       float64 `json:"impurity_rate" yaml:"impurity_rate" validate:"gte=0,lte=0.5"`

	BiomethaneSmcY *float64 `json:"biomethane_smc_y,omitempty" yaml:"biomethane_smc_y,omitempty"`
	BiomethaneMWhY *float64 `json:"biomethane_mwh_y,omitempty" yaml:"biomethane_mwh_y,omitempty"`
	KWhPerSmc      float64  `json:"kwh_per_smc" yaml:"kwh_per_smc"`

	AvailabilityProfile []float64 `json:"availability_profile" yaml:"availability_profile" validate:"dive,gte=0,lte=1"`

	CompostTPY float64 `json:"compost_tpy" yaml:"compost_tpy" validate:"gte=0"`
	CO2TPY     float64 `json:"co2_tpy" yaml:"co2_tpy" validate:"gte=0"`
}

// BiomethaneMWh returns full-capacity biomethane output in MWh/year.
func (p Production) BiomethaneMWh() float64 {
	if p.BiomethaneMWhY != nil {
		return *p.BiomethaneMWhY
	}
	if p.BiomethaneSmcY != nil {
		return *p.BiomethaneSmcY * p.KWhPerSmc / 1000
	}
	return 0
}

// Availability returns the ramp-up factor for an operating year (0-indexed
// from COD); steady state holds the last profile value.
func (p Production) Availability(operatingYearIndex int) float64 {
	if len(p.AvailabilityProfile) == 0 {
		return 1.0
	}
	if operatingYearIndex < len(p.AvailabilityProfile) {
		return p.AvailabilityProfile[operatingYearIndex]
	}
	return p.AvailabilityProfile[len(p.AvailabilityProfile)-1]
}

// RevenueChannel prices one revenue stream: base price per unit, annual
// escalation compounding from COD, and the payment delay driving trade
// receivables.
type RevenueChannel struct {
	Price            float64 `json:"price" yaml:"price"`
	PaymentDelayDays int     `json:"payment_delay_days" yaml:"payment_delay_days" validate:"gte=0,lte=365"`
	EscalationRate   float64 `json:"escalation_rate" yaml:"escalation_rate" validate:"gte=-0.1,lte=0.2"`
	Enabled          bool    `json:"enabled" yaml:"enabled"`
}

// Revenues holds the five channels of a biomethane plant.
type Revenues struct {
	GateFee RevenueChannel `json:"gate_fee" yaml:"gate_fee"` // euro per tonne FORSU
	Tariff  RevenueChannel `json:"tariff" yaml:"tariff"`     // euro per MWh biomethane
	CO2     RevenueChannel `json:"co2" yaml:"co2"`           // euro per tonne
	GO      RevenueChannel `json:"go" yaml:"go"`             // euro per MWh
	Compost RevenueChannel `json:"compost" yaml:"compost"`   // euro per tonne
}

// OpexCategory configures one operating cost line: fixed plus volume-driven
// components, escalation from COD, and an optional ramp-up profile that
// defaults to plant availability.
type OpexCategory struct {
	FixedAnnual      float64   `json:"fixed_annual" yaml:"fixed_annual" validate:"gte=0"`
	VariablePerTonne float64   `json:"variable_per_tonne" yaml:"variable_per_tonne" validate:"gte=0"`
	VariablePerMWh   float64   `json:"variable_per_mwh" yaml:"variable_per_mwh" validate:"gte=0"`
	PercentOfCapex   float64   `json:"percent_of_capex" yaml:"percent_of_capex" validate:"gte=0,lte=1"`
	EscalationRate   float64   `json:"escalation_rate" yaml:"escalation_rate" validate:"gte=-0.1,lte=0.2"`
	PaymentDelayDays int       `json:"payment_delay_days" yaml:"payment_delay_days" validate:"gte=0,lte=365"`
	RampUpProfile    []float64 `json:"ramp_up_profile,omitempty" yaml:"ramp_up_profile,omitempty"`
}

// Opex holds the cost categories of the plant.
type Opex struct {
	FeedstockHandling OpexCategory `json:"feedstock_handling" yaml:"feedstock_handling"`
	Utilities         OpexCategory `json:"utilities" yaml:"utilities"`
	Chemicals         OpexCategory `json:"chemicals" yaml:"chemicals"`
	Maintenance       OpexCategory `json:"maintenance" yaml:"maintenance"`
	Personnel         OpexCategory `json:"personnel" yaml:"personnel"`
	Insurance         OpexCategory `json:"insurance" yaml:"insurance"`
	Overheads         OpexCategory `json:"overheads" yaml:"overheads"`
	DigestateHandling OpexCategory `json:"digestate_handling" yaml:"digestate_handling"`
	Other             OpexCategory `json:"other" yaml:"other"`
}

// OpexCategoryNames is the display order used across tables and exports.
var OpexCategoryNames = []string{
	"feedstock_handling", "utilities", "chemicals", "maintenance",
	"personnel", "insurance", "overheads", "digestate_handling", "other",
}

// Categories returns the categories keyed by name.
func (o Opex) Categories() map[string]OpexCategory {
	return map[string]OpexCategory{
		"feedstock_handling": o.FeedstockHandling,
		"utilities":          o.Utilities,
		"chemicals":          o.Chemicals,
		"maintenance":        o.Maintenance,
		"personnel":          o.Personnel,
		"insurance":          o.Insurance,
		"overheads":          o.Overheads,
		"digestate_handling": o.DigestateHandling,
		"other":              o.Other,
	}
}

// CapexItem is one investment line with its construction spend profile
// (fractions per construction year, summing to 1) and useful life.
type CapexItem struct {
	Amount          float64   `json:"amount" yaml:"amount" validate:"gte=0"`
	SpendProfile    []float64 `json:"spend_profile" yaml:"spend_profile"`
	UsefulLifeYears int       `json:"useful_life_years" yaml:"useful_life_years" validate:"gte=0,lte=50"`
}

// Capex holds the investment lines of the plant.
type Capex struct {
	EPC            CapexItem `json:"epc" yaml:"epc"`
	Civils         CapexItem `json:"civils" yaml:"civils"`
	UpgradingUnit  CapexItem `json:"upgrading_unit" yaml:"upgrading_unit"`
	GridConnection CapexItem `json:"grid_connection" yaml:"grid_connection"`
	Engineering    CapexItem `json:"engineering" yaml:"engineering"`
	Permitting     CapexItem `json:"permitting" yaml:"permitting"`
	Contingency    CapexItem `json:"contingency" yaml:"contingency"`
	StartupCosts   CapexItem `json:"startup_costs" yaml:"startup_costs"`
	Other          CapexItem `json:"other" yaml:"other"`
}

// CapexItemNames is the display order used across tables and exports.
var CapexItemNames = []string{
	"epc", "civils", "upgrading_unit", "grid_connection", "engineering",
	"permitting", "contingency", "startup_costs", "other",
}

// Items returns the lines keyed by name.
func (c Capex) Items() map[string]CapexItem {
	return map[string]CapexItem{
		"epc":             c.EPC,
		"civils":          c.Civils,
		"upgrading_unit":  c.UpgradingUnit,
		"grid_connection": c.GridConnection,
		"engineering":     c.Engineering,
		"permitting":      c.Permitting,
		"contingency":     c.Contingency,
		"startup_costs":   c.StartupCosts,
		"other":           c.Other,
	}
}

// Total is the full investment amount across lines.
func (c Capex) Total() float64 {
	var total float64
	for _, item := range c.Items() {
		total += item.Amount
	}
	return total
}

// Financing configures debt, base cash/equity, tax, and the discount-rate
// inputs feeding the generic engine.
type Financing struct {
	DebtAmount          float64       `json:"debt_amount" yaml:"debt_amount" validate:"gte=0"`
	DebtDrawdownProfile []float64     `json:"debt_drawdown_profile" yaml:"debt_drawdown_profile"`
	CostOfDebt          models.Series `json:"cost_of_debt" yaml:"cost_of_debt"`
	DebtRepaymentYears  int           `json:"debt_repayment_years" yaml:"debt_repayment_years" validate:"gte=0,lte=30"`

	CashAtBase       float64 `json:"cash_at_base" yaml:"cash_at_base" validate:"gte=0"`
	EquityBookAtBase float64 `json:"equity_book_at_base" yaml:"equity_book_at_base" validate:"gte=0"`

	TaxRate float64 `json:"tax_rate" yaml:"tax_rate" validate:"gte=0,lte=0.5"`

	RiskFree     float64  `json:"rf" yaml:"rf"`
	MarketReturn float64  `json:"rm" yaml:"rm"`
	Beta         float64  `json:"beta" yaml:"beta" validate:"gte=0"`
	KeOverride   *float64 `json:"ke_override,omitempty" yaml:"ke_override,omitempty"`

	TargetWE       *float64 `json:"target_we,omitempty" yaml:"target_we,omitempty" validate:"omitempty,gte=0,lte=1"`
	UseBookWeights bool     `json:"use_book_weights" yaml:"use_book_weights"`
}

// TerminalValue configures value beyond the explicit horizon. The exit
// multiple applies to final-year EBITDA.
type TerminalValue struct {
	Method           models.TerminalValueMethod `json:"method" yaml:"method"`
	PerpetuityGrowth float64                    `json:"perpetuity_growth" yaml:"perpetuity_growth" validate:"gte=-0.05,lte=0.05"`
	ExitMultiple     *float64                   `json:"exit_multiple,omitempty" yaml:"exit_multiple,omitempty" validate:"omitempty,gt=0"`
}

// Case is a complete biometano project finance case.
type Case struct {
	Name          string        `json:"name" yaml:"name"`
	Horizon       Horizon       `json:"horizon" yaml:"horizon" validate:"required"`
	Production    Production    `json:"production" yaml:"production" validate:"required"`
	Revenues      Revenues      `json:"revenues" yaml:"revenues"`
	Opex          Opex          `json:"opex" yaml:"opex"`
	Capex         Capex         `json:"capex" yaml:"capex"`
	Financing     Financing     `json:"financing" yaml:"financing"`
	TerminalValue TerminalValue `json:"terminal_value" yaml:"terminal_value"`
}

// ApplyDefaults fills the conversion and ramp-up defaults a sparse document
// may omit.
func (c *Case) ApplyDefaults() {
	if c.Production.KWhPerSmc == 0 {
		c.Production.KWhPerSmc = DefaultKWhPerSmc
	}
	if len(c.Production.AvailabilityProfile) == 0 {
		c.Production.AvailabilityProfile = append([]float64(nil), defaultAvailabilityProfile...)
	}
	if c.TerminalValue.Method == "" {
		c.TerminalValue.Method = models.TerminalPerpetuity
	}
	if c.Financing.CostOfDebt.IsZero() {
		c.Financing.CostOfDebt = models.Const(0.05)
	}
}

// Validate checks the cross-field constraints the struct tags cannot express.
func (c *Case) Validate() error {
	if c.Production.BiomethaneSmcY == nil && c.Production.BiomethaneMWhY == nil {
		return &models.ValidationError{
			Field:  "production",
			Reason: "provide biomethane_smc_y or biomethane_mwh_y",
		}
	}
	for name, item := range c.Capex.Items() {
		if item.Amount > 0 && len(item.SpendProfile) > 0 {
			if err := checkProfileSum("capex."+name+".spend_profile", item.SpendProfile); err != nil {
				return err
			}
		}
	}
	if c.Financing.DebtAmount > 0 && len(c.Financing.DebtDrawdownProfile) > 0 {
		if err := checkProfileSum("financing.debt_drawdown_profile", c.Financing.DebtDrawdownProfile); err != nil {
			return err
		}
	}
	if err := models.CheckTerminalValueMethod(c.TerminalValue.Method); err != nil {
		return err
	}
	if c.TerminalValue.Method == models.TerminalExitMultiple && c.TerminalValue.ExitMultiple == nil {
		return &models.ValidationError{
			Field:  "terminal_value",
			Reason: "exit_multiple method requires exit_multiple",
		}
	}
	return nil
}

func checkProfileSum(field string, profile []float64) error {
	var total float64
	for _, v := range profile {
		total += v
	}
	if total < 0.999 || total > 1.001 {
		return &models.ValidationError{Field: field, Reason: "profile must sum to 1"}
	}
	return nil
}
