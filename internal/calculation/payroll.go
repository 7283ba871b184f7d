package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// FICACalculator handles FICA and self-employment tax
type FICACalculator struct {
	Config domain.FICATaxConfig
}

// NewFICACalculator creates a new FICA calculator with 2025 rates
func NewFICACalculator() *FICACalculator {
	return NewFICACalculatorWithConfig(DefaultTaxRules().FICA)
}

// NewFICACalculatorWithConfig creates a new FICA calculator with configurable values
func NewFICACalculatorWithConfig(config domain.FICATaxConfig) *FICACalculator {
	return &FICACalculator{Config: config}
}

// EarnedIncome is one person's wages and net business income
type EarnedIncome struct {
	Wages    decimal.Decimal
	Business decimal.Decimal
}

// CalculatePayrollTax computes employee FICA on wages, self-employment tax on business income
// and the additional Medicare tax on combined earnings above the status threshold.
// The wage base applies per person; wages use it up before self-employment earnings.
func (fc *FICACalculator) CalculatePayrollTax(people []EarnedIncome, status domain.FilingStatus) domain.PayrollTaxDetail {
	cfg := fc.Config
	detail := domain.PayrollTaxDetail{Enabled: true}
	combined := decimal.Zero
	two := decimal.NewFromInt(2)

	for _, p := range people {
		wages := nonNegative(p.Wages)
		business := nonNegative(p.Business)

		ssWages := decimal.Min(wages, cfg.SocialSecurityWageBase)
		detail.SocialSecurity = detail.SocialSecurity.Add(ssWages.Mul(cfg.SocialSecurityRate))
		detail.Medicare = detail.Medicare.Add(wages.Mul(cfg.MedicareRate))

		seEarnings := business.Mul(cfg.SelfEmploymentFactor)
		if seEarnings.IsPositive() {
			remainingBase := nonNegative(cfg.SocialSecurityWageBase.Sub(wages))
			seSS := decimal.Min(seEarnings, remainingBase).Mul(cfg.SocialSecurityRate.Mul(two))
			seMedicare := seEarnings.Mul(cfg.MedicareRate.Mul(two))
			detail.SelfEmployment = detail.SelfEmployment.Add(seSS).Add(seMedicare)
		}
		combined = combined.Add(wages).Add(seEarnings)
	}

	excess := nonNegative(combined.Sub(cfg.AdditionalMedicareThreshold.For(status)))
	detail.AdditionalMedicare = excess.Mul(cfg.AdditionalMedicareRate)
	detail.Total = detail.SocialSecurity.Add(detail.Medicare).Add(detail.SelfEmployment).Add(detail.AdditionalMedicare)
	return detail
}
