package calculation

import (
	"fmt"

	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// incomeBuckets is the partition of adjusted, annualized sources
type incomeBuckets struct {
	Ordinary           decimal.Decimal // wages, business, distributions, pensions, interest and other ordinary income
	LongTermGains      decimal.Decimal
	ShortTermGains     decimal.Decimal
	QualifiedDividends decimal.Decimal
	OrdinaryDividends  decimal.Decimal
	SocialSecurity     decimal.Decimal
	TaxExemptInterest  decimal.Decimal
	Earned             [2]EarnedIncome // taxpayer, spouse

	RetirementIncome    decimal.Decimal
	NetInvestmentIncome decimal.Decimal
	PenaltyBase         decimal.Decimal

	TotalIncome   decimal.Decimal
	TaxFreeIncome decimal.Decimal
	Sources       []domain.SourceBreakdown
	Warnings      []string
}

// otherIncome is everything in AGI except Social Security
func (b *incomeBuckets) otherIncome() decimal.Decimal {
	return b.Ordinary.Add(b.ShortTermGains).Add(b.OrdinaryDividends).Add(b.LongTermGains).Add(b.QualifiedDividends)
}

// preferential is income eligible for the capital gains schedule
func (b *incomeBuckets) preferential() decimal.Decimal {
	return b.LongTermGains.Add(b.QualifiedDividends)
}

// earnedTotal is wages plus business income
func (b *incomeBuckets) earnedTotal() decimal.Decimal {
	return b.Earned[0].Wages.Add(b.Earned[0].Business).Add(b.Earned[1].Wages).Add(b.Earned[1].Business)
}

func (b *incomeBuckets) addOrdinary(extra decimal.Decimal) incomeBuckets {
	out := *b
	out.Ordinary = out.Ordinary.Add(extra)
	return out
}

// adjustSources annualizes every enabled source, splits it into taxable and tax-free
// portions and assigns it to a bucket
func (cc *ComprehensiveTaxCalculator) adjustSources(sources []domain.IncomeSource, demo domain.Demographics, taxYear int) incomeBuckets {
	b := incomeBuckets{}
	for i, src := range sources {
		if src == nil {
			continue
		}
		base := src.Base()
		if !base.Enabled() {
			continue
		}
		amount := base.AnnualAmount()
		if amount.IsNegative() {
			b.Warnings = append(b.Warnings, fmt.Sprintf("income source %s has a negative amount; treated as zero", sourceLabel(base, i)))
			amount = decimal.Zero
		}

		ownerAge := demo.AgeOf(base.Owner)
		person := 0
		if base.Owner.IsSpouse() && demo.HasSpouse() {
			person = 1
		}

		row := domain.SourceBreakdown{
			ID:      base.ID,
			Name:    base.Name,
			Kind:    src.Kind(),
			Owner:   base.Owner,
			Annual:  amount,
			Taxable: amount,
		}
		if row.Owner == "" {
			row.Owner = domain.OwnerTaxpayer
		}

		switch v := src.(type) {
		case domain.Wages:
			b.Ordinary = b.Ordinary.Add(amount)
			b.Earned[person].Wages = b.Earned[person].Wages.Add(amount)
		case domain.BusinessIncome:
			b.Ordinary = b.Ordinary.Add(amount)
			b.Earned[person].Business = b.Earned[person].Business.Add(amount)
		case domain.TraditionalRetirement:
			b.Ordinary = b.Ordinary.Add(amount)
			b.RetirementIncome = b.RetirementIncome.Add(amount)
			if cc.penaltyApplies(ownerAge, v.PenaltyExempt) {
				row.Penalty = amount
			}
		case domain.Pension:
			b.Ordinary = b.Ordinary.Add(amount)
			b.RetirementIncome = b.RetirementIncome.Add(amount)
		case domain.SocialSecurityBenefit:
			b.SocialSecurity = b.SocialSecurity.Add(amount)
		case domain.LongTermCapitalGains:
			b.LongTermGains = b.LongTermGains.Add(amount)
			b.NetInvestmentIncome = b.NetInvestmentIncome.Add(amount)
		case domain.ShortTermCapitalGains:
			b.ShortTermGains = b.ShortTermGains.Add(amount)
			b.NetInvestmentIncome = b.NetInvestmentIncome.Add(amount)
		case domain.QualifiedDividends:
			b.QualifiedDividends = b.QualifiedDividends.Add(amount)
			b.NetInvestmentIncome = b.NetInvestmentIncome.Add(amount)
		case domain.OrdinaryDividends:
			b.OrdinaryDividends = b.OrdinaryDividends.Add(amount)
			b.NetInvestmentIncome = b.NetInvestmentIncome.Add(amount)
		case domain.InterestIncome:
			b.Ordinary = b.Ordinary.Add(amount)
			b.NetInvestmentIncome = b.NetInvestmentIncome.Add(amount)
		case domain.TaxExemptInterest:
			b.TaxExemptInterest = b.TaxExemptInterest.Add(amount)
			row.Taxable = decimal.Zero
		case domain.Annuity:
			row.Taxable = annuityTaxablePortion(v, amount)
			b.Ordinary = b.Ordinary.Add(row.Taxable)
			b.RetirementIncome = b.RetirementIncome.Add(row.Taxable)
			if !v.Qualified {
				b.NetInvestmentIncome = b.NetInvestmentIncome.Add(row.Taxable)
			}
			if cc.penaltyApplies(ownerAge, v.PenaltyExempt) {
				row.Penalty = row.Taxable
			}
		case domain.RothDistribution:
			taxable, penaltyBase, ok := cc.rothTreatment(v, amount, ownerAge, taxYear)
			if !ok {
				b.Warnings = append(b.Warnings, fmt.Sprintf("roth distribution %s has malformed contribution data; treated as tax-free and penalty-free", sourceLabel(base, i)))
			}
			row.Taxable = taxable
			row.Penalty = penaltyBase
			b.Ordinary = b.Ordinary.Add(taxable)
		case domain.LifeInsurance:
			row.Taxable = nonNegative(amount.Sub(nonNegative(v.CostBasis)))
			b.Ordinary = b.Ordinary.Add(row.Taxable)
		case domain.OtherIncome:
			b.Ordinary = b.Ordinary.Add(amount)
		default:
			b.Ordinary = b.Ordinary.Add(amount)
		}

		row.TaxFree = amount.Sub(row.Taxable)
		b.PenaltyBase = b.PenaltyBase.Add(row.Penalty)
		b.TotalIncome = b.TotalIncome.Add(amount)
		b.TaxFreeIncome = b.TaxFreeIncome.Add(row.TaxFree)
		b.Sources = append(b.Sources, row)
	}
	return b
}

// penaltyApplies reports whether the early-withdrawal penalty hits a distribution
func (cc *ComprehensiveTaxCalculator) penaltyApplies(ownerAge int, exempt bool) bool {
	if exempt {
		return false
	}
	return decimal.NewFromInt(int64(ownerAge)).LessThan(cc.EarlyWithdrawal.PenaltyFreeAge)
}

// annuityTaxablePortion removes the exclusion ratio from non-qualified annuity payments.
// Qualified annuities are fully taxable.
func annuityTaxablePortion(a domain.Annuity, amount decimal.Decimal) decimal.Decimal {
	if a.Qualified {
		return amount
	}
	ratio := decimal.Zero
	switch {
	case a.ExclusionRatio != nil:
		ratio = *a.ExclusionRatio
	case a.ExpectedReturn.IsPositive():
		ratio = nonNegative(a.InvestmentInContract).Div(a.ExpectedReturn)
	}
	if ratio.IsNegative() {
		ratio = decimal.Zero
	}
	if ratio.GreaterThan(one) {
		ratio = one
	}
	return amount.Mul(one.Sub(ratio))
}

// rothTreatment recovers contributions first. Earnings are tax-free once the owner is past
// the penalty-free age and the account is seasoned; otherwise they are ordinary income and,
// before the penalty-free age, subject to the penalty. ok is false when the contribution
// data cannot be used, in which case the whole distribution is tax-free and penalty-free.
func (cc *ComprehensiveTaxCalculator) rothTreatment(r domain.RothDistribution, amount decimal.Decimal, ownerAge, taxYear int) (taxable, penaltyBase decimal.Decimal, ok bool) {
	if r.ContributionBasis.IsNegative() || r.FirstContributionYear <= 0 || r.FirstContributionYear > taxYear {
		return decimal.Zero, decimal.Zero, false
	}
	earnings := nonNegative(amount.Sub(r.ContributionBasis))
	if earnings.IsZero() {
		return decimal.Zero, decimal.Zero, true
	}
	pastAge := decimal.NewFromInt(int64(ownerAge)).GreaterThanOrEqual(cc.EarlyWithdrawal.PenaltyFreeAge)
	seasoned := taxYear-r.FirstContributionYear >= cc.EarlyWithdrawal.RothSeasoningYears
	if pastAge && seasoned {
		return decimal.Zero, decimal.Zero, true
	}
	if cc.penaltyApplies(ownerAge, r.PenaltyExempt) {
		return earnings, earnings, true
	}
	return earnings, decimal.Zero, true
}

func sourceLabel(b domain.SourceBase, index int) string {
	if label := b.Label(); label != "" {
		return label
	}
	return fmt.Sprintf("#%d", index+1)
}
