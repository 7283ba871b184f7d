package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// StateTaxCalculator handles a flat-rate state income tax
type StateTaxCalculator struct {
	Config domain.StateTaxConfig
}

// NewStateTaxCalculator creates a state calculator with the default state rules
func NewStateTaxCalculator() *StateTaxCalculator {
	return NewStateTaxCalculatorWithConfig(DefaultTaxRules().State)
}

// NewStateTaxCalculatorWithConfig creates a state calculator with configurable values
func NewStateTaxCalculatorWithConfig(config domain.StateTaxConfig) *StateTaxCalculator {
	return &StateTaxCalculator{Config: config}
}

// StateTaxInput is what the state calculation needs from the federal pipeline
type StateTaxInput struct {
	AGI                   decimal.Decimal
	TaxableSocialSecurity decimal.Decimal
	RetirementIncome      decimal.Decimal
	BirthYears            []int // one per person on the return
	FilingStatus          domain.FilingStatus
}

// ExclusionLimit sums the per-person retirement exclusion for each birth year
func (stc *StateTaxCalculator) ExclusionLimit(birthYears []int) decimal.Decimal {
	total := decimal.Zero
	for _, year := range birthYears {
		for _, band := range stc.Config.ExclusionBands {
			if band.Contains(year) {
				total = total.Add(band.Limit)
				break
			}
		}
	}
	return total
}

// CalculateStateTax applies the flat rate to AGI less exempt Social Security and the
// retirement exclusion, then subtracts the personal credit when AGI is under the limit
func (stc *StateTaxCalculator) CalculateStateTax(in StateTaxInput) domain.StateTaxDetail {
	cfg := stc.Config
	detail := domain.StateTaxDetail{
		Name:             cfg.Name,
		Rate:             cfg.Rate,
		RetirementIncome: nonNegative(in.RetirementIncome),
	}

	base := nonNegative(in.AGI)
	if cfg.ExemptSocialSecurity {
		base = nonNegative(base.Sub(in.TaxableSocialSecurity))
	}
	detail.RetirementExclusion = decimal.Min(detail.RetirementIncome, stc.ExclusionLimit(in.BirthYears))
	detail.TaxableIncome = nonNegative(base.Sub(detail.RetirementExclusion))
	detail.GrossTax = detail.TaxableIncome.Mul(cfg.Rate)

	if limit := cfg.CreditIncomeLimit.For(in.FilingStatus); cfg.PersonalCredit.IsPositive() && in.AGI.LessThanOrEqual(limit) {
		filers := int64(1)
		if in.FilingStatus.IsJoint() {
			filers = 2
		}
		detail.Credit = decimal.Min(cfg.PersonalCredit.Mul(decimal.NewFromInt(filers)), detail.GrossTax)
	}
	detail.NetTax = nonNegative(detail.GrossTax.Sub(detail.Credit))
	return detail
}
