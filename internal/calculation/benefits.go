package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/rpgo/tax-engine/pkg/dateutil"
	money "github.com/rpgo/tax-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

// benefitStream is one person's claimed benefit over the projection
type benefitStream struct {
	Timeline personTimeline
	ClaimAge int
	Monthly  decimal.Decimal // At the claiming age, before COLA
	calc     *SocialSecurityCalculator
}

func newBenefitStream(t personTimeline, claimAge int, rules domain.SocialSecurityRules) benefitStream {
	calc := NewSocialSecurityCalculatorWithRules(t.BirthYear, t.Info.PrimaryInsuranceAmount, rules)
	return benefitStream{
		Timeline: t,
		ClaimAge: claimAge,
		Monthly:  calc.CalculateBenefitAtAge(claimAge),
		calc:     calc,
	}
}

// claimed reports whether the benefit is in pay in the given projection year
func (b benefitStream) claimed(year int) bool {
	return b.Timeline.alive(year) && b.Timeline.ageIn(year) >= b.ClaimAge
}

// annual is the person's own benefit for a projection year. Benefits are indexed by COLA
// from the first projection year.
func (b benefitStream) annual(year int, cola decimal.Decimal) decimal.Decimal {
	if !b.claimed(year) {
		return decimal.Zero
	}
	return money.NewMoneyFromDecimal(b.Monthly).Annual().Grow(cola, year).Decimal
}

// deceasedAnnual is the benefit the survivor benefit is based on: what the person was receiving
// at death or, when they died before claiming, the larger of their full retirement age benefit
// and the benefit earned by their age at death.
func (b benefitStream) deceasedAnnual(year int, cola decimal.Decimal) decimal.Decimal {
	monthly := b.Monthly
	if deathAge := b.Timeline.ageAtDeath(); deathAge < b.ClaimAge {
		monthly = decimal.Max(b.calc.BenefitAtFRA, b.calc.CalculateBenefitAtAge(deathAge))
	}
	return money.NewMoneyFromDecimal(monthly).Annual().Grow(cola, year).Decimal
}

// householdBenefits returns each person's benefit for a year. After a death the survivor
// receives the larger of their own benefit and the survivor benefit.
func householdBenefits(taxpayer benefitStream, spouse *benefitStream, year int, cola decimal.Decimal, rules domain.SocialSecurityRules) (decimal.Decimal, decimal.Decimal) {
	tp := taxpayer.annual(year, cola)
	if spouse == nil {
		return tp, decimal.Zero
	}
	sp := spouse.annual(year, cola)

	survivorOf := func(survivor, deceased benefitStream, own decimal.Decimal) decimal.Decimal {
		fra := dateutil.SurvivorFullRetirementAgeMonths(survivor.Timeline.BirthYear)
		benefit := CalculateSurvivorSSBenefit(deceased.deceasedAnnual(year, cola), survivor.Timeline.ageIn(year), fra, rules)
		return decimal.Max(own, benefit)
	}
	switch {
	case taxpayer.Timeline.alive(year) && !spouse.Timeline.alive(year):
		tp = survivorOf(taxpayer, *spouse, tp)
	case spouse.Timeline.alive(year) && !taxpayer.Timeline.alive(year):
		sp = survivorOf(*spouse, taxpayer, sp)
	}
	return tp, sp
}
