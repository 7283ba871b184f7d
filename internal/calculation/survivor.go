package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/rpgo/tax-engine/pkg/dateutil"
	money "github.com/rpgo/tax-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

const (
	defaultLifeExpectancy = 85
	maxProjectionYears    = 60
)

// personTimeline places one person on the projection's year axis
type personTimeline struct {
	Info      domain.PersonInfo
	BirthYear int

	// DeathIndex is the first projection year the person is no longer alive
	DeathIndex int
}

// newTimeline applies the person defaults. A person is alive through the year they
// reach their life expectancy.
func newTimeline(p domain.PersonInfo, taxYear int) personTimeline {
	if p.Age <= 0 || p.Age > domain.MaxAge {
		p.Age = domain.DefaultAge
	}
	if p.LifeExpectancy <= 0 {
		p.LifeExpectancy = defaultLifeExpectancy
	}
	if p.LifeExpectancy < p.Age {
		p.LifeExpectancy = p.Age
	}
	birthYear := p.BirthYear
	if birthYear <= 0 {
		birthYear = dateutil.BirthYear(taxYear, p.Age)
	}
	return personTimeline{
		Info:       p,
		BirthYear:  birthYear,
		DeathIndex: p.LifeExpectancy - p.Age + 1,
	}
}

func (t personTimeline) alive(year int) bool {
	return year < t.DeathIndex
}

func (t personTimeline) ageIn(year int) int {
	return t.Info.Age + year
}

// ageAtDeath is the age in the last year the person is alive
func (t personTimeline) ageAtDeath() int {
	return t.Info.LifeExpectancy
}

// projectionHorizon runs until the last survivor's final year, capped
func projectionHorizon(people ...*personTimeline) int {
	horizon := 0
	for _, p := range people {
		if p != nil && p.DeathIndex > horizon {
			horizon = p.DeathIndex
		}
	}
	if horizon > maxProjectionYears {
		horizon = maxProjectionYears
	}
	return horizon
}

// CalculateSurvivorSSBenefit computes the survivor benefit from the deceased's current benefit.
// At or after the survivor's full retirement age the survivor receives 100% of it; from the
// earliest survivor age the factor rises linearly from the minimum factor. Earlier than that
// nothing is payable.
func CalculateSurvivorSSBenefit(deceasedCurrent decimal.Decimal, survivorAge int, survivorFRAMonths int, rules domain.SocialSecurityRules) decimal.Decimal {
	if deceasedCurrent.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	ageMonths := survivorAge * 12
	if ageMonths >= survivorFRAMonths {
		return deceasedCurrent
	}
	if survivorAge < rules.SurvivorEarliestAge {
		return decimal.Zero
	}
	earliest := rules.SurvivorEarliestAge * 12
	ratio := money.SafeDiv(
		decimal.NewFromInt(int64(ageMonths-earliest)),
		decimal.NewFromInt(int64(survivorFRAMonths-earliest)),
	)
	minFactor := rules.SurvivorMinimumFactor
	factor := minFactor.Add(one.Sub(minFactor).Mul(ratio))
	return deceasedCurrent.Mul(factor)
}
