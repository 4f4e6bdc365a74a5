package biometano

import "math"

// ============================================================================
// Schedule rows
// ============================================================================

// ProductionRow is the physical output of one year.
type ProductionRow struct {
	Year          int
	Availability  float64
	ForsuTonnes   float64
	BiomethaneMWh float64
	CO2Tonnes     float64
	CompostTonnes float64
}

// RevenueRow is the revenue of one year by channel.
type RevenueRow struct {
	Year    int
	GateFee float64
	Tariff  float64
	CO2     float64
	GO      float64
	Compost float64
}

// Total sums the channels.
func (r RevenueRow) Total() float64 {
	return r.GateFee + r.Tariff + r.CO2 + r.GO + r.Compost
}

// OpexRow is the operating cost of one year by category.
type OpexRow struct {
	Year       int
	ByCategory map[string]float64
}

// Total sums the categories.
func (r OpexRow) Total() float64 {
	var total float64
	for _, v := range r.ByCategory {
		total += v
	}
	return total
}

// CapexRow is the investment spend of one year by item.
type CapexRow struct {
	Year   int
	ByItem map[string]float64
}

// Total sums the items.
func (r CapexRow) Total() float64 {
	var total float64
	for _, v := range r.ByItem {
		total += v
	}
	return total
}

// FinancingRow is the debt schedule of one year. Interest accrues on the
// closing balance, matching the end-of-period convention of the statement
// builder downstream.
type FinancingRow struct {
	Year      int
	Opening   float64
	Drawdown  float64
	Repayment float64
	Closing   float64
	Rd        float64
	Interest  float64
}

// Projections holds every derived schedule of a case, one row per forecast
// year in chronological order.
type Projections struct {
	Case *Case

	Production []ProductionRow
	Revenue    []RevenueRow
	Opex       []OpexRow
	Capex      []CapexRow
	Financing  []FinancingRow

	EBITDA       map[int]float64
	Depreciation map[int]float64

	Receivables map[int]float64
	Payables    map[int]float64
	NWC         map[int]float64
}

// ============================================================================
// Build
// ============================================================================

// Build derives all physical and monetary schedules from the case
// assumptions. The result feeds ToAssumptions for the generic engine.
func (c *Case) Build() (*Projections, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p := &Projections{
		Case:         c,
		EBITDA:       map[int]float64{},
		Depreciation: map[int]float64{},
		Receivables:  map[int]float64{},
		Payables:     map[int]float64{},
		NWC:          map[int]float64{},
	}

	p.buildProduction()
	p.buildCapex()
	if err := p.buildFinancing(); err != nil {
		return nil, err
	}
	p.buildRevenue()
	p.buildOpex()
	p.buildDepreciation()
	p.buildWorkingCapital()

	for i, rev := range p.Revenue {
		p.EBITDA[rev.Year] = rev.Total() - p.Opex[i].Total()
	}
	return p, nil
}

func (p *Projections) buildProduction() {
	c := p.Case
	mwhFull := c.Production.BiomethaneMWh()
	for _, y := range c.Horizon.ConstructionYearsList() {
		p.Production = append(p.Production, ProductionRow{Year: y})
	}
	for i, y := range c.Horizon.OperatingYearsList() {
		avail := c.Production.Availability(i)
		p.Production = append(p.Production, ProductionRow{
			Year:          y,
			Availability:  avail,
			ForsuTonnes:   c.Production.ForsuThroughputTPY * avail,
			BiomethaneMWh: mwhFull * avail,
			CO2Tonnes:     c.Production.CO2TPY * avail,
			CompostTonnes: c.Production.CompostTPY * avail,
		})
	}
}

func (p *Projections) buildCapex() {
	c := p.Case
	constructionYears := c.Horizon.ConstructionYearsList()
	for _, y := range c.Horizon.AllForecastYears() {
		row := CapexRow{Year: y, ByItem: map[string]float64{}}
		for name, item := range c.Capex.Items() {
			if item.Amount <= 0 {
				continue
			}
			row.ByItem[name] = capexSpend(item, y, constructionYears, c.Horizon.CODYear())
		}
		p.Capex = append(p.Capex, row)
	}
}

// capexSpend allocates an item's amount across years. With a spend profile
// the amount spreads over the construction phase; without one, and without a
// construction phase, everything lands in the first forecast year.
func capexSpend(item CapexItem, year int, constructionYears []int, codYear int) float64 {
	if len(constructionYears) == 0 {
		if year == codYear {
			return item.Amount
		}
		return 0
	}
	for i, cy := range constructionYears {
		if cy != year {
			continue
		}
		if i < len(item.SpendProfile) {
			return item.Amount * item.SpendProfile[i]
		}
		if len(item.SpendProfile) == 0 {
			return item.Amount / float64(len(constructionYears))
		}
		return 0
	}
	return 0
}

func (p *Projections) buildFinancing() error {
	c := p.Case
	constructionYears := c.Horizon.ConstructionYearsList()
	years := c.Horizon.AllForecastYears()

	rd, err := c.Financing.CostOfDebt.Resolve("financing.cost_of_debt", years, []int{c.Horizon.BaseYear})
	if err != nil {
		return err
	}

	// Drawdown follows the profile over construction; with no construction
	// phase the full amount is drawn in the first forecast year.
	drawdowns := map[int]float64{}
	if c.Financing.DebtAmount > 0 {
		if len(constructionYears) == 0 {
			drawdowns[years[0]] = c.Financing.DebtAmount
		} else {
			for i, y := range constructionYears {
				if i < len(c.Financing.DebtDrawdownProfile) {
					drawdowns[y] = c.Financing.DebtAmount * c.Financing.DebtDrawdownProfile[i]
				} else if len(c.Financing.DebtDrawdownProfile) == 0 {
					drawdowns[y] = c.Financing.DebtAmount / float64(len(constructionYears))
				}
			}
		}
	}

	// Straight-line repayment from COD over the repayment term.
	annualRepayment := 0.0
	if c.Financing.DebtRepaymentYears > 0 {
		annualRepayment = c.Financing.DebtAmount / float64(c.Financing.DebtRepaymentYears)
	}

	balance := 0.0
	for _, y := range years {
		row := FinancingRow{Year: y, Opening: balance, Drawdown: drawdowns[y], Rd: rd[y]}
		if y >= c.Horizon.CODYear() && annualRepayment > 0 {
			row.Repayment = math.Min(annualRepayment, balance+row.Drawdown)
		}
		balance = balance + row.Drawdown - row.Repayment
		row.Closing = balance
		row.Interest = row.Closing * row.Rd
		p.Financing = append(p.Financing, row)
	}
	return nil
}

// escalate compounds a channel price from COD: the first operating year pays
// the base price, each subsequent year escalates once more.
func escalate(base, rate float64, year, codYear int) float64 {
	if year < codYear {
		return base
	}
	return base * math.Pow(1+rate, float64(year-codYear))
}

func (p *Projections) buildRevenue() {
	c := p.Case
	cod := c.Horizon.CODYear()
	for _, prod := range p.Production {
		row := RevenueRow{Year: prod.Year}
		if ch := c.Revenues.GateFee; ch.Enabled {
			row.GateFee = prod.ForsuTonnes * escalate(ch.Price, ch.EscalationRate, prod.Year, cod)
		}
		if ch := c.Revenues.Tariff; ch.Enabled {
			row.Tariff = prod.BiomethaneMWh * escalate(ch.Price, ch.EscalationRate, prod.Year, cod)
		}
		if ch := c.Revenues.CO2; ch.Enabled {
			row.CO2 = prod.CO2Tonnes * escalate(ch.Price, ch.EscalationRate, prod.Year, cod)
		}
		if ch := c.Revenues.GO; ch.Enabled {
			row.GO = prod.BiomethaneMWh * escalate(ch.Price, ch.EscalationRate, prod.Year, cod)
		}
		if ch := c.Revenues.Compost; ch.Enabled {
			row.Compost = prod.CompostTonnes * escalate(ch.Price, ch.EscalationRate, prod.Year, cod)
		}
		p.Revenue = append(p.Revenue, row)
	}
}

func (p *Projections) buildOpex() {
	c := p.Case
	cod := c.Horizon.CODYear()
	totalCapex := c.Capex.Total()
	categories := c.Opex.Categories()

	for _, prod := range p.Production {
		row := OpexRow{Year: prod.Year, ByCategory: map[string]float64{}}
		if prod.Year >= cod {
			opIndex := prod.Year - cod
			for name, cat := range categories {
				ramp := prod.Availability
				if len(cat.RampUpProfile) > 0 {
					if opIndex < len(cat.RampUpProfile) {
						ramp = cat.RampUpProfile[opIndex]
					} else {
						ramp = cat.RampUpProfile[len(cat.RampUpProfile)-1]
					}
				}
				fixed := cat.FixedAnnual + cat.PercentOfCapex*totalCapex
				variable := cat.VariablePerTonne*prod.ForsuTonnes + cat.VariablePerMWh*prod.BiomethaneMWh
				cost := (fixed*ramp + variable) * escalationFactor(cat.EscalationRate, prod.Year, cod)
				if cost != 0 {
					row.ByCategory[name] = cost
				}
			}
		}
		p.Opex = append(p.Opex, row)
	}
}

func escalationFactor(rate float64, year, codYear int) float64 {
	if year < codYear || rate == 0 {
		return 1
	}
	return math.Pow(1+rate, float64(year-codYear))
}

// buildDepreciation applies straight-line depreciation over the
// amount-weighted useful life, starting at COD once assets enter service.
func (p *Projections) buildDepreciation() {
	c := p.Case
	total := c.Capex.Total()
	if total <= 0 {
		for _, y := range c.Horizon.AllForecastYears() {
			p.Depreciation[y] = 0
		}
		return
	}

	var weighted float64
	for _, item := range c.Capex.Items() {
		life := item.UsefulLifeYears
		if life == 0 {
			life = 20
		}
		weighted += item.Amount * float64(life)
	}
	life := weighted / total
	annual := total / life

	cod := c.Horizon.CODYear()
	for _, y := range c.Horizon.AllForecastYears() {
		if y >= cod && float64(y-cod) < life {
			p.Depreciation[y] = annual
		} else {
			p.Depreciation[y] = 0
		}
	}
}

// buildWorkingCapital derives NWC from payment terms: receivables are
// channel revenue weighted by its collection delay, payables are category
// cost weighted by its settlement delay.
func (p *Projections) buildWorkingCapital() {
	c := p.Case
	p.Receivables[c.Horizon.BaseYear] = 0
	p.Payables[c.Horizon.BaseYear] = 0
	p.NWC[c.Horizon.BaseYear] = 0

	categories := c.Opex.Categories()
	for i, rev := range p.Revenue {
		ar := rev.GateFee*days(c.Revenues.GateFee) +
			rev.Tariff*days(c.Revenues.Tariff) +
			rev.CO2*days(c.Revenues.CO2) +
			rev.GO*days(c.Revenues.GO) +
			rev.Compost*days(c.Revenues.Compost)

		var ap float64
		for name, cost := range p.Opex[i].ByCategory {
			ap += cost * float64(categories[name].PaymentDelayDays) / 365
		}

		p.Receivables[rev.Year] = ar
		p.Payables[rev.Year] = ap
		p.NWC[rev.Year] = ar - ap
	}
}

func days(ch RevenueChannel) float64 {
	return float64(ch.PaymentDelayDays) / 365
}
