package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// FederalTaxCalculator resolves ordinary bracket schedules and computes progressive tax
type FederalTaxCalculator struct {
	Brackets       domain.ByStatus[[]domain.Bracket]
	SunsetBrackets domain.ByStatus[[]domain.Bracket]
}

// NewFederalTaxCalculator2025 creates a federal calculator with the built-in 2025 schedules
func NewFederalTaxCalculator2025() *FederalTaxCalculator {
	return NewFederalTaxCalculator(DefaultTaxRules())
}

// NewFederalTaxCalculator creates a federal calculator from a rule set
func NewFederalTaxCalculator(rules domain.TaxRules) *FederalTaxCalculator {
	return &FederalTaxCalculator{
		Brackets:       rules.OrdinaryBrackets,
		SunsetBrackets: rules.SunsetBrackets,
	}
}

// BracketsFor returns a fresh copy of the ordinary schedule for a status and year.
// Unknown statuses resolve to single; a sunset from 2026 swaps in the pre-TCJA rates.
func (ftc *FederalTaxCalculator) BracketsFor(status domain.FilingStatus, taxYear int, tcjaSunset bool) []domain.Bracket {
	source := ftc.Brackets
	if tcjaSunset && taxYear >= 2026 {
		source = ftc.SunsetBrackets
	}
	return domain.NormalizeBrackets(source.For(status))
}

// CalculateBracketTax applies a progressive schedule. Income at or below zero owes nothing.
func CalculateBracketTax(income decimal.Decimal, brackets []domain.Bracket) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	tax := decimal.Zero
	for _, bracket := range brackets {
		if income.LessThanOrEqual(bracket.Min) {
			break
		}
		inBracket := decimal.Min(income, bracket.Max).Sub(bracket.Min)
		if inBracket.GreaterThan(decimal.Zero) {
			tax = tax.Add(inBracket.Mul(bracket.Rate))
		}
	}
	return tax
}

// BracketIndex returns the index of the bracket whose (Min, Max] range holds the income,
// or -1 for income at or below zero.
func BracketIndex(income decimal.Decimal, brackets []domain.Bracket) int {
	if income.LessThanOrEqual(decimal.Zero) || len(brackets) == 0 {
		return -1
	}
	for i, b := range brackets {
		if income.GreaterThan(b.Min) && (b.IsTop() || income.LessThanOrEqual(b.Max)) {
			return i
		}
	}
	return len(brackets) - 1
}

// MarginalBracketRate is the rate of the bracket holding the income. Income at or
// below zero sits in a virtual 0% bracket.
func MarginalBracketRate(income decimal.Decimal, brackets []domain.Bracket) decimal.Decimal {
	i := BracketIndex(income, brackets)
	if i < 0 {
		return decimal.Zero
	}
	return brackets[i].Rate
}

// bracketPosition describes where income sits in a schedule
type bracketPosition struct {
	current domain.BracketInfo
	next    *domain.BracketInfo

	// boundary is the taxable income at which the next bracket starts
	boundary decimal.Decimal
}

func locateBracket(income decimal.Decimal, brackets []domain.Bracket) bracketPosition {
	i := BracketIndex(income, brackets)
	if i < 0 {
		// Virtual 0% bracket below the first dollar of taxable income
		pos := bracketPosition{
			current:  domain.BracketInfo{Min: decimal.Zero, Max: decimal.Zero, Rate: decimal.Zero},
			boundary: decimal.Zero,
		}
		if len(brackets) > 0 {
			pos.next = bracketInfo(brackets[0])
		}
		return pos
	}
	pos := bracketPosition{current: *bracketInfo(brackets[i])}
	if i+1 < len(brackets) {
		pos.next = bracketInfo(brackets[i+1])
		pos.boundary = brackets[i].Max
	}
	return pos
}

func bracketInfo(b domain.Bracket) *domain.BracketInfo {
	return &domain.BracketInfo{Min: b.Min, Max: b.Max, Rate: b.Rate, Unbounded: b.IsTop()}
}
