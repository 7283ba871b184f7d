package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// CapitalGainsCalculator stacks preferential income above ordinary taxable income
type CapitalGainsCalculator struct {
	Brackets domain.ByStatus[[]domain.Bracket]
	NIIT     domain.NIITConfig
}

// NewCapitalGainsCalculator creates a capital gains calculator from a rule set
func NewCapitalGainsCalculator(rules domain.TaxRules) *CapitalGainsCalculator {
	return &CapitalGainsCalculator{Brackets: rules.CapitalGains, NIIT: rules.NIIT}
}

// StackPreferential taxes amount as if it sat on top of base in the preferential schedule
func StackPreferential(base, amount decimal.Decimal, brackets []domain.Bracket) domain.StackResult {
	base = nonNegative(base)
	amount = nonNegative(amount)
	top := base.Add(amount)
	tax := CalculateBracketTax(top, brackets).Sub(CalculateBracketTax(base, brackets))

	rate := MarginalBracketRate(top, brackets)
	if amount.IsZero() {
		// Rate the next dollar would pay
		rate = MarginalBracketRate(base.Add(one), brackets)
	}
	result := domain.StackResult{
		Amount:       amount,
		Tax:          tax,
		MarginalRate: rate,
		BracketLabel: rate.Mul(hundred).String() + "%",
	}
	if amount.IsPositive() {
		result.EffectiveRate = tax.Div(amount)
	}
	return result
}

// CalculatePreferentialTax stacks long-term gains and then qualified dividends above ordinary
// taxable income. Only the preferential income that survives the deduction is taxed here.
func (cgc *CapitalGainsCalculator) CalculatePreferentialTax(ordinaryTaxable, gains, dividends decimal.Decimal, status domain.FilingStatus) domain.CapitalGainsDetail {
	brackets := domain.NormalizeBrackets(cgc.Brackets.For(status))
	detail := domain.CapitalGainsDetail{
		LongTermGains:      gains,
		QualifiedDividends: dividends,
	}

	detail.Gains = StackPreferential(ordinaryTaxable, gains, brackets)
	detail.Dividends = StackPreferential(ordinaryTaxable.Add(gains), dividends, brackets)
	detail.Tax = detail.Gains.Tax.Add(detail.Dividends.Tax)

	// Portion of the preferential slice in each band
	lo := nonNegative(ordinaryTaxable)
	hi := lo.Add(nonNegative(gains)).Add(nonNegative(dividends))
	for i, b := range brackets {
		piece := nonNegative(decimal.Min(hi, b.Max).Sub(decimal.Max(lo, b.Min)))
		switch i {
		case 0:
			detail.TaxedAtZero = piece
		case 1:
			detail.TaxedAtFifteen = piece
		default:
			detail.TaxedAtTwenty = detail.TaxedAtTwenty.Add(piece)
		}
	}
	return detail
}

// CalculateNIIT is the rate times the lesser of net investment income and MAGI above the threshold
func (cgc *CapitalGainsCalculator) CalculateNIIT(netInvestmentIncome, magi decimal.Decimal, status domain.FilingStatus) decimal.Decimal {
	excess := nonNegative(magi.Sub(cgc.NIIT.Thresholds.For(status)))
	base := decimal.Min(nonNegative(netInvestmentIncome), excess)
	return base.Mul(cgc.NIIT.Rate)
}
