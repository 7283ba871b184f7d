package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/rpgo/tax-engine/pkg/dateutil"
	"github.com/shopspring/decimal"
)

var (
	half       = decimal.NewFromFloat(0.5)
	eightyFive = decimal.NewFromFloat(0.85)
	one        = decimal.NewFromInt(1)
	twelve     = decimal.NewFromInt(12)
	hundred    = decimal.NewFromInt(100)
)

const (
	earlyReductionMonths = 36
	// Delayed credits were smaller for anyone born before this year
	delayedCreditCutoffYear = 1943
)

// SocialSecurityCalculator handles Social Security benefit calculations for one person
type SocialSecurityCalculator struct {
	BirthYear         int
	FullRetirementAge int // months
	BenefitAtFRA      decimal.Decimal
	Rules             domain.SocialSecurityRules
}

// NewSocialSecurityCalculator creates a benefit calculator with the default rules
func NewSocialSecurityCalculator(birthYear int, benefitAtFRA decimal.Decimal) *SocialSecurityCalculator {
	return NewSocialSecurityCalculatorWithRules(birthYear, benefitAtFRA, DefaultTaxRules().SocialSecurityRules)
}

// NewSocialSecurityCalculatorWithRules creates a benefit calculator with configurable adjustment rates
func NewSocialSecurityCalculatorWithRules(birthYear int, benefitAtFRA decimal.Decimal, rules domain.SocialSecurityRules) *SocialSecurityCalculator {
	return &SocialSecurityCalculator{
		BirthYear:         birthYear,
		FullRetirementAge: dateutil.FullRetirementAgeMonths(birthYear),
		BenefitAtFRA:      benefitAtFRA,
		Rules:             rules,
	}
}

// CalculateBenefitAtAge returns the monthly benefit when claiming at a whole-year age.
// Claims before the earliest claiming age pay nothing; claims past the latest age are credited as at that age.
func (ssc *SocialSecurityCalculator) CalculateBenefitAtAge(claimingAge int) decimal.Decimal {
	if claimingAge < ssc.Rules.EarliestClaimingAge || ssc.BenefitAtFRA.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if claimingAge > ssc.Rules.LatestClaimingAge {
		claimingAge = ssc.Rules.LatestClaimingAge
	}
	claimMonths := claimingAge * 12

	if claimMonths < ssc.FullRetirementAge {
		// Early retirement reduction
		monthsEarly := ssc.FullRetirementAge - claimMonths
		first := monthsEarly
		if first > earlyReductionMonths {
			first = earlyReductionMonths
		}
		reduction := ssc.Rules.EarlyFirst36MonthsRate.Mul(decimal.NewFromInt(int64(first)))
		if monthsEarly > earlyReductionMonths {
			extra := decimal.NewFromInt(int64(monthsEarly - earlyReductionMonths))
			reduction = reduction.Add(ssc.Rules.EarlyAdditionalRate.Mul(extra))
		}
		return ssc.BenefitAtFRA.Mul(one.Sub(reduction))
	}

	if claimMonths > ssc.FullRetirementAge {
		// Delayed retirement credits
		monthsDelayed := decimal.NewFromInt(int64(claimMonths - ssc.FullRetirementAge))
		rate := ssc.Rules.DelayedCreditMonthly
		if ssc.BirthYear < delayedCreditCutoffYear {
			rate = ssc.Rules.DelayedCreditPre1943
		}
		return ssc.BenefitAtFRA.Mul(one.Add(rate.Mul(monthsDelayed)))
	}

	return ssc.BenefitAtFRA // At Full Retirement Age
}

// ApplySSCOLA applies the annual Social Security COLA
func ApplySSCOLA(currentBenefit decimal.Decimal, colaRate decimal.Decimal) decimal.Decimal {
	return currentBenefit.Mul(one.Add(colaRate))
}

// SSTaxCalculator determines the taxable portion of Social Security benefits
type SSTaxCalculator struct {
	Thresholds domain.ByStatus[domain.SocialSecurityThresholds]
}

// NewSSTaxCalculator creates a Social Security tax calculator with the 2025 thresholds
func NewSSTaxCalculator() *SSTaxCalculator {
	return NewSSTaxCalculatorWithConfig(DefaultTaxRules().SocialSecurityTax)
}

// NewSSTaxCalculatorWithConfig creates a Social Security tax calculator with configurable thresholds
func NewSSTaxCalculatorWithConfig(thresholds domain.ByStatus[domain.SocialSecurityThresholds]) *SSTaxCalculator {
	return &SSTaxCalculator{Thresholds: thresholds}
}

// CalculateProvisionalIncome is other income plus tax-exempt interest plus half the benefits
func (sstc *SSTaxCalculator) CalculateProvisionalIncome(otherIncome, taxExemptInterest, benefits decimal.Decimal) decimal.Decimal {
	return otherIncome.Add(taxExemptInterest).Add(benefits.Mul(half))
}

// CalculateTaxableSocialSecurity applies the two-threshold test:
//   - PI <= T1: nothing is taxable (tier I)
//   - T1 < PI <= T2: the lesser of half the excess over T1 and half the benefits (tier II)
//   - PI > T2: 85% of the excess over T2 plus the lesser of half of (T2 - T1) and half the benefits (tier III)
//
// The result never exceeds 85% of the benefits.
func (sstc *SSTaxCalculator) CalculateTaxableSocialSecurity(benefits, provisionalIncome decimal.Decimal, status domain.FilingStatus) domain.SocialSecurityTaxation {
	th := sstc.Thresholds.For(status)
	result := domain.SocialSecurityTaxation{
		Benefits:          benefits,
		ProvisionalIncome: provisionalIncome,
		Taxable:           decimal.Zero,
		Tier:              "I",
		PercentTaxable:    decimal.Zero,
		Threshold1:        th.Threshold1,
		Threshold2:        th.Threshold2,
	}
	if benefits.LessThanOrEqual(decimal.Zero) {
		result.Benefits = decimal.Zero
		return result
	}

	halfBenefits := benefits.Mul(half)
	var taxable decimal.Decimal
	switch {
	case provisionalIncome.LessThanOrEqual(th.Threshold1):
		return result
	case provisionalIncome.LessThanOrEqual(th.Threshold2):
		result.Tier = "II"
		taxable = decimal.Min(provisionalIncome.Sub(th.Threshold1).Mul(half), halfBenefits)
	default:
		result.Tier = "III"
		middle := decimal.Min(th.Threshold2.Sub(th.Threshold1).Mul(half), halfBenefits)
		taxable = provisionalIncome.Sub(th.Threshold2).Mul(eightyFive).Add(middle)
	}

	taxable = decimal.Min(taxable, benefits.Mul(eightyFive))
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	result.Taxable = taxable
	result.PercentTaxable = taxable.Div(benefits).Mul(hundred).Round(2)
	return result
}
