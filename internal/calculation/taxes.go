package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// ComprehensiveTaxCalculator handles all tax calculations
type ComprehensiveTaxCalculator struct {
	FederalTaxCalc   *FederalTaxCalculator
	DeductionCalc    *DeductionCalculator
	SSTaxCalc        *SSTaxCalculator
	CapitalGainsCalc *CapitalGainsCalculator
	MedicareCalc     *MedicareCalculator
	FICATaxCalc      *FICACalculator
	StateTaxCalc     *StateTaxCalculator
	EarlyWithdrawal  domain.EarlyWithdrawalConfig
}

// NewComprehensiveTaxCalculator creates a new comprehensive tax calculator with the built-in rules
func NewComprehensiveTaxCalculator() *ComprehensiveTaxCalculator {
	return NewComprehensiveTaxCalculatorWithConfig(DefaultTaxRules())
}

// NewComprehensiveTaxCalculatorWithConfig creates a new comprehensive tax calculator with configurable rules
func NewComprehensiveTaxCalculatorWithConfig(rules domain.TaxRules) *ComprehensiveTaxCalculator {
	rules = rules.Normalized()
	return &ComprehensiveTaxCalculator{
		FederalTaxCalc:   NewFederalTaxCalculator(rules),
		DeductionCalc:    NewDeductionCalculator(rules),
		SSTaxCalc:        NewSSTaxCalculatorWithConfig(rules.SocialSecurityTax),
		CapitalGainsCalc: NewCapitalGainsCalculator(rules),
		MedicareCalc:     NewMedicareCalculatorWithConfig(rules.Medicare),
		FICATaxCalc:      NewFICACalculatorWithConfig(rules.FICA),
		StateTaxCalc:     NewStateTaxCalculatorWithConfig(rules.State),
		EarlyWithdrawal:  rules.EarlyWithdrawal,
	}
}

// household is the normalized, per-call view of the non-income inputs
type household struct {
	demo       domain.Demographics
	settings   domain.Settings
	taxYear    int
	sunset     bool
	deductions *domain.ItemizedDeductions
	fica       bool
	notes      []string
}

func newHousehold(taxpayerAge int, spouseAge *int, status domain.FilingStatus, opts domain.CalcOptions) household {
	demo, notes := domain.Demographics{
		TaxpayerAge:  taxpayerAge,
		SpouseAge:    spouseAge,
		FilingStatus: status,
	}.Normalized()

	h := household{
		demo:       demo,
		taxYear:    opts.Settings.Year(),
		sunset:     opts.Settings.Sunset(),
		deductions: opts.Deductions,
		fica:       opts.FICAEnabled,
		notes:      notes,
	}
	if opts.Settings != nil {
		h.settings = *opts.Settings
	}
	h.settings.TaxYear = h.taxYear
	return h
}

// birthYears lists the people on the return for the state exclusion
func (h household) birthYears() []int {
	years := []int{h.settings.TaxpayerBirthYear}
	if years[0] <= 0 {
		years[0] = h.taxYear - h.demo.TaxpayerAge
	}
	if h.demo.HasSpouse() && h.demo.FilingStatus.IsJoint() {
		spouse := h.settings.SpouseBirthYear
		if spouse <= 0 {
			spouse = h.taxYear - *h.demo.SpouseAge
		}
		years = append(years, spouse)
	}
	return years
}

// federalCore is the part of the pipeline that determines taxable income
type federalCore struct {
	socialSecurity  domain.SocialSecurityTaxation
	agi             decimal.Decimal
	magi            decimal.Decimal
	deduction       domain.DeductionDetail
	taxable         decimal.Decimal
	preferential    decimal.Decimal
	ordinaryTaxable decimal.Decimal

	// unclampedOrdinary is AGI less the deduction and preferential income, before the zero floor
	unclampedOrdinary decimal.Decimal
}

func (cc *ComprehensiveTaxCalculator) computeCore(b *incomeBuckets, h *household) federalCore {
	status := h.demo.FilingStatus
	other := b.otherIncome()

	provisional := cc.SSTaxCalc.CalculateProvisionalIncome(other, b.TaxExemptInterest, b.SocialSecurity)
	core := federalCore{
		socialSecurity: cc.SSTaxCalc.CalculateTaxableSocialSecurity(b.SocialSecurity, provisional, status),
	}
	core.agi = other.Add(core.socialSecurity.Taxable)
	core.magi = core.agi.Add(b.TaxExemptInterest)
	if h.settings.MAGIOverride != nil {
		core.magi = *h.settings.MAGIOverride
	}

	standard := cc.DeductionCalc.CalculateStandardDeduction(h.demo, core.magi, h.taxYear, h.sunset)
	itemized := cc.DeductionCalc.CalculateItemized(h.deductions, status, core.agi)
	core.deduction = ChooseDeduction(standard, itemized)

	core.taxable = nonNegative(core.agi.Sub(core.deduction.Amount))
	core.preferential = decimal.Min(b.preferential(), core.taxable)
	core.ordinaryTaxable = core.taxable.Sub(core.preferential)
	core.unclampedOrdinary = core.agi.Sub(core.deduction.Amount).Sub(b.preferential())
	return core
}

// CalculateComprehensiveTaxes runs the full pipeline for one household and tax year.
// Malformed input degrades to documented defaults and is reported in Warnings.
func (cc *ComprehensiveTaxCalculator) CalculateComprehensiveTaxes(sources []domain.IncomeSource, taxpayerAge int, spouseAge *int, status domain.FilingStatus, opts domain.CalcOptions) domain.ScenarioResult {
	h := newHousehold(taxpayerAge, spouseAge, status, opts)
	buckets := cc.adjustSources(sources, h.demo, h.taxYear)
	return cc.calculate(&buckets, &h)
}

func (cc *ComprehensiveTaxCalculator) calculate(b *incomeBuckets, h *household) domain.ScenarioResult {
	status := h.demo.FilingStatus
	core := cc.computeCore(b, h)

	result := domain.ScenarioResult{
		TaxYear:                   h.taxYear,
		FilingStatus:              status,
		TaxpayerAge:               h.demo.TaxpayerAge,
		SpouseAge:                 h.demo.SpouseAge,
		TotalIncome:               b.TotalIncome,
		TaxFreeIncome:             b.TaxFreeIncome,
		OrdinaryIncome:            b.Ordinary,
		EarnedIncome:              b.earnedTotal(),
		AGI:                       core.agi,
		MAGI:                      core.magi,
		Deduction:                 core.deduction,
		TaxableIncome:             core.taxable,
		OrdinaryTaxableIncome:     core.ordinaryTaxable,
		PreferentialTaxableIncome: core.preferential,
		SocialSecurity:            core.socialSecurity,
		Sources:                   b.Sources,
	}
	result.Warnings = append(append(result.Warnings, h.notes...), b.Warnings...)

	// Federal income tax
	brackets := cc.FederalTaxCalc.BracketsFor(status, h.taxYear, h.sunset)
	result.OrdinaryTax = CalculateBracketTax(core.ordinaryTaxable, brackets)

	// Preferential income that survives the deduction keeps its gains/dividends split
	gains := decimal.Min(b.LongTermGains, core.preferential)
	dividends := core.preferential.Sub(gains)
	result.CapitalGains = cc.CapitalGainsCalc.CalculatePreferentialTax(core.ordinaryTaxable, gains, dividends, status)
	result.CapitalGains.NetInvestmentIncome = b.NetInvestmentIncome
	result.NIIT = cc.CapitalGainsCalc.CalculateNIIT(b.NetInvestmentIncome, core.magi, status)
	result.CapitalGains.NIIT = result.NIIT
	result.FederalTax = result.OrdinaryTax.Add(result.CapitalGains.Tax).Add(result.NIIT)

	result.EarlyWithdrawalPenalty = b.PenaltyBase.Mul(cc.EarlyWithdrawal.PenaltyRate)

	result.State = cc.StateTaxCalc.CalculateStateTax(StateTaxInput{
		AGI:                   core.agi,
		TaxableSocialSecurity: core.socialSecurity.Taxable,
		RetirementIncome:      b.RetirementIncome,
		BirthYears:            h.birthYears(),
		FilingStatus:          status,
	})

	if h.fica {
		people := b.Earned[:1]
		if h.demo.HasSpouse() {
			people = b.Earned[:]
		}
		result.Payroll = cc.FICATaxCalc.CalculatePayrollTax(people, status)
	}

	result.TotalTax = result.FederalTax.
		Add(result.EarlyWithdrawalPenalty).
		Add(result.State.NetTax).
		Add(result.Payroll.Total)

	// Bracket position and the gap to the next bracket
	pos := locateBracket(core.ordinaryTaxable, brackets)
	result.MarginalRate = pos.current.Rate
	result.CurrentBracket = pos.current
	result.NextBracket = pos.next
	if pos.next != nil {
		result.AmountToNextBracket = nonNegative(pos.boundary.Sub(core.unclampedOrdinary))
		result.AmountToNextBracketIncome = cc.incomeToReach(b, h, pos.boundary, core.unclampedOrdinary)
	}

	result.IRMAA = cc.MedicareCalc.CalculateIRMAA(core.magi, status, h.settings.Medicare, h.demo.HasSpouse())

	if result.TotalIncome.IsPositive() {
		result.EffectiveRate = result.TotalTax.Div(result.TotalIncome)
	}
	return result
}

// incomeToReach finds the smallest whole-dollar amount of extra ordinary income that lifts
// ordinary taxable income to boundary. Extra income can raise taxable Social Security and
// shrink the deduction, so the solve re-runs the taxable-income part of the pipeline.
// Every extra dollar adds at least a dollar of ordinary taxable income, which bounds the search.
func (cc *ComprehensiveTaxCalculator) incomeToReach(b *incomeBuckets, h *household, boundary, current decimal.Decimal) decimal.Decimal {
	gap := boundary.Sub(current)
	if !gap.IsPositive() {
		return decimal.Zero
	}
	reached := func(extra decimal.Decimal) bool {
		shifted := b.addOrdinary(extra)
		return cc.computeCore(&shifted, h).unclampedOrdinary.GreaterThanOrEqual(boundary)
	}

	lo := decimal.Zero
	hi := gap.Ceil()
	for i := 0; i < maxGapIterations && hi.Sub(lo).GreaterThan(one); i++ {
		mid := lo.Add(hi).Div(decimal.NewFromInt(2)).Floor()
		if reached(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

const maxGapIterations = 64
