package calculation

import (
	"testing"
	"time"

	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strategyByLabel(t *testing.T, analysis domain.ClaimingAnalysis, label string) domain.ClaimingStrategy {
	t.Helper()
	for _, s := range analysis.Strategies {
		if s.Label() == label {
			return s
		}
	}
	require.FailNowf(t, "strategy not found", "no strategy %s", label)
	return domain.ClaimingStrategy{}
}

func TestClaimingAges(t *testing.T) {
	rules := DefaultTaxRules().SocialSecurityRules

	assert.Equal(t, []int{62, 63, 64, 65, 66, 67, 68, 69, 70}, claimingAges(55, rules))
	assert.Equal(t, []int{66, 67, 68, 69, 70}, claimingAges(66, rules))
	assert.Equal(t, []int{70}, claimingAges(75, rules))
}

func TestNormalizeOptimization(t *testing.T) {
	opt := normalizeOptimization(domain.OptimizationSettings{}, true)
	assert.Equal(t, domain.DefaultTaxYear, opt.TaxYear)
	assertDecimal(t, dec("0.03"), opt.DiscountRate, "discount rate")
	assertDecimal(t, dec("0.025"), opt.COLA, "COLA")
	assert.Equal(t, domain.MarriedFilingJointly, opt.FilingStatus)

	opt = normalizeOptimization(domain.OptimizationSettings{FilingStatus: "hoh", TaxYear: 2027}, false)
	assert.Equal(t, domain.HeadOfHousehold, opt.FilingStatus)
	assert.Equal(t, 2027, opt.TaxYear)

	assert.Equal(t, domain.Single, normalizeOptimization(domain.OptimizationSettings{}, false).FilingStatus)
}

func TestClaimingStrategy_SingleWithoutOtherIncome(t *testing.T) {
	e := NewEngine()
	obs := newCountingObserver()
	e.SetObserver(obs)
	taxpayer := domain.PersonInfo{Name: "Pat", Age: 62, PrimaryInsuranceAmount: dec("2000"), LifeExpectancy: 85}

	analysis := e.CalculateTaxEfficientClaimingStrategy(taxpayer, nil, nil, domain.OptimizationSettings{Workers: 4})

	require.Len(t, analysis.Strategies, 9)
	assert.Equal(t, 62, analysis.EarliestStrategy.TaxpayerClaimingAge)
	assert.GreaterOrEqual(t, analysis.BestStrategy.TaxpayerClaimingAge, 67)
	assert.True(t, analysis.GainOverEarliest.IsPositive())
	assert.GreaterOrEqual(t, analysis.BreakevenAge, 75)
	assert.LessOrEqual(t, analysis.BreakevenAge, 85)
	assert.NotEmpty(t, analysis.Recommendations)
	assert.Contains(t, analysis.Recommendations[0], analysis.BestStrategy.Label())

	for i, s := range analysis.Strategies {
		if i > 0 {
			assert.True(t, s.NetValue.LessThanOrEqual(analysis.Strategies[i-1].NetValue), "strategies are ranked")
		}
		// Benefits alone stay under the provisional income thresholds
		assert.True(t, s.LifetimeAfterTax.Equal(s.LifetimeBenefits), "strategy %s owes tax", s.Label())
		assert.True(t, s.IRMAAImpact.IsZero())
		assert.True(t, s.NetValue.Equal(s.PresentValue))
		assert.True(t, s.OptimizationScore.GreaterThanOrEqual(dec("0")) && s.OptimizationScore.LessThanOrEqual(dec("100")))
		require.Len(t, s.Years, 24)
	}

	early := strategyByLabel(t, analysis, "62")
	assertDecimal(t, dec("1400"), early.TaxpayerMonthlyBenefit, "monthly benefit at 62")
	assert.Equal(t, 2025, early.Years[0].Year)
	assert.Equal(t, 62, early.Years[0].TaxpayerAge)
	assertDecimal(t, dec("16800"), early.Years[0].Benefits, "first-year benefits")
	assertDecimal(t, dec("17220"), early.Years[1].Benefits, "second-year benefits with COLA")

	late := strategyByLabel(t, analysis, "70")
	assert.True(t, late.Years[7].Benefits.IsZero())
	assert.True(t, late.Years[8].Benefits.IsPositive())

	assert.Equal(t, analysis.Evaluations, obs.evaluations[OpClaiming])
	assert.Equal(t, 1, obs.searches[OpClaiming])
}

func TestClaimingStrategy_CoupleSwitchesToSingleAfterDeath(t *testing.T) {
	e := NewEngine()
	e.Workers = 4
	taxpayer := domain.PersonInfo{Name: "Alex", Age: 64, PrimaryInsuranceAmount: dec("2500"), LifeExpectancy: 90}
	spouse := &domain.PersonInfo{Name: "Sam", Age: 62, PrimaryInsuranceAmount: dec("1000"), LifeExpectancy: 80}
	sources := []domain.IncomeSource{
		domain.Pension{SourceBase: base("pension", 40000)},
		domain.Pension{SourceBase: spouseBase("spouse-pension", 10000)},
	}

	analysis := e.CalculateTaxEfficientClaimingStrategy(taxpayer, spouse, sources, domain.OptimizationSettings{})

	require.Len(t, analysis.Strategies, 63)
	assert.Equal(t, "64/62", analysis.EarliestStrategy.Label())

	s := strategyByLabel(t, analysis, "67/67")
	require.Len(t, s.Years, 27)
	assert.Equal(t, domain.MarriedFilingJointly, s.Years[18].FilingStatus)
	assert.Equal(t, 80, s.Years[18].SpouseAge)
	assert.Equal(t, domain.Single, s.Years[19].FilingStatus)
	assert.Zero(t, s.Years[19].SpouseAge)
	assert.Equal(t, 83, s.Years[19].TaxpayerAge)
	assert.True(t, s.Years[19].Benefits.IsPositive())
}

func TestClaimingStrategy_SurvivorTakesLargerBenefit(t *testing.T) {
	e := NewEngine()
	e.Workers = 2
	taxpayer := domain.PersonInfo{Name: "Lee", Age: 66, PrimaryInsuranceAmount: dec("3000"), LifeExpectancy: 70}
	spouse := &domain.PersonInfo{Name: "Kim", Age: 66, PrimaryInsuranceAmount: dec("500"), LifeExpectancy: 90}

	analysis := e.CalculateTaxEfficientClaimingStrategy(taxpayer, spouse, nil, domain.OptimizationSettings{})

	s := strategyByLabel(t, analysis, "66/66")
	require.Len(t, s.Years, 25)

	// Both alive in year 4; from year 5 the spouse files alone on the survivor benefit
	assert.Equal(t, domain.MarriedFilingJointly, s.Years[4].FilingStatus)
	assert.Equal(t, domain.Single, s.Years[5].FilingStatus)
	assert.Equal(t, 71, s.Years[5].TaxpayerAge)
	assertDecimal(t, dec("38467.88"), s.Years[5].Benefits, "survivor benefit")
}

func TestClaimingStrategy_TargetBracketAndIRMAA(t *testing.T) {
	e := NewEngine()
	e.Workers = 4
	taxpayer := domain.PersonInfo{Age: 66, PrimaryInsuranceAmount: dec("3000"), LifeExpectancy: 75}

	t.Run("high income violates the target and pays IRMAA", func(t *testing.T) {
		sources := []domain.IncomeSource{domain.Pension{SourceBase: base("pension", 150000)}}
		opt := domain.OptimizationSettings{
			TargetBracketRate: dec("0.22"),
			Medicare:          domain.MedicareElection{TaxpayerPartB: true, TaxpayerPartD: true},
		}
		analysis := e.CalculateTaxEfficientClaimingStrategy(taxpayer, nil, sources, opt)

		best := analysis.BestStrategy
		assert.True(t, best.IRMAAImpact.IsPositive())
		assert.Positive(t, best.BracketViolations)
		assert.Empty(t, best.RothConversions)
		assertDecimal(t, best.PresentValue.Sub(best.IRMAAImpact), best.NetValue, "net value")
	})

	t.Run("low income leaves room for conversions", func(t *testing.T) {
		sources := []domain.IncomeSource{domain.Pension{SourceBase: base("pension", 20000)}}
		opt := domain.OptimizationSettings{TargetBracketRate: dec("0.12")}
		analysis := e.CalculateTaxEfficientClaimingStrategy(taxpayer, nil, sources, opt)

		best := analysis.BestStrategy
		assert.Zero(t, best.BracketViolations)
		require.Len(t, best.RothConversions, len(best.Years))
		first := best.RothConversions[0]
		assertDecimal(t, dec("0.12"), first.BracketRate, "bracket rate")
		assert.True(t, first.Headroom.GreaterThanOrEqual(minRothHeadroom))
		assert.Equal(t, 2025, first.Year)
	})
}

func TestRankStrategies(t *testing.T) {
	assert.Equal(t, domain.ClaimingAnalysis{}, rankStrategies(nil))

	strategies := []domain.ClaimingStrategy{
		{TaxpayerClaimingAge: 62, NetValue: dec("100")},
		{TaxpayerClaimingAge: 63, NetValue: dec("300")},
		{TaxpayerClaimingAge: 64, NetValue: dec("300")},
		{TaxpayerClaimingAge: 65, NetValue: dec("50")},
	}
	analysis := rankStrategies(strategies)

	assert.Equal(t, 63, analysis.BestStrategy.TaxpayerClaimingAge)
	assert.Equal(t, 64, analysis.Strategies[1].TaxpayerClaimingAge)
	assert.Equal(t, 65, analysis.WorstStrategy.TaxpayerClaimingAge)
	assert.Equal(t, 62, analysis.EarliestStrategy.TaxpayerClaimingAge)
	assertDecimal(t, dec("200"), analysis.GainOverEarliest, "gain over earliest")
	assert.Equal(t, 62, strategies[0].TaxpayerClaimingAge, "input order is preserved")
}

func TestBreakevenAge(t *testing.T) {
	years := func(startAge int, amounts ...string) []domain.ClaimingYear {
		out := make([]domain.ClaimingYear, len(amounts))
		for i, a := range amounts {
			out[i] = domain.ClaimingYear{TaxpayerAge: startAge + i, AfterTaxBenefits: dec(a)}
		}
		return out
	}
	earliest := domain.ClaimingStrategy{TaxpayerClaimingAge: 62, Years: years(62, "10", "10", "10", "10", "10")}

	delayed := domain.ClaimingStrategy{TaxpayerClaimingAge: 64, Years: years(62, "0", "0", "25", "25", "25")}
	assert.Equal(t, 65, breakevenAge(delayed, earliest))

	never := domain.ClaimingStrategy{TaxpayerClaimingAge: 64, Years: years(62, "0", "0", "11", "11", "11")}
	assert.Zero(t, breakevenAge(never, earliest))

	assert.Zero(t, breakevenAge(earliest, earliest))
}

func TestPersonTimeline(t *testing.T) {
	tl := newTimeline(domain.PersonInfo{Age: 70, LifeExpectancy: 72}, 2025)
	assert.Equal(t, 1955, tl.BirthYear)
	assert.Equal(t, 3, tl.DeathIndex)
	assert.True(t, tl.alive(2))
	assert.False(t, tl.alive(3))
	assert.Equal(t, 72, tl.ageIn(2))

	defaulted := newTimeline(domain.PersonInfo{Age: -1}, 2025)
	assert.Equal(t, 65, defaulted.Info.Age)
	assert.Equal(t, 85, defaulted.Info.LifeExpectancy)

	outlived := newTimeline(domain.PersonInfo{Age: 90, LifeExpectancy: 80}, 2025)
	assert.Equal(t, 1, outlived.DeathIndex)

	young := newTimeline(domain.PersonInfo{Age: 20, LifeExpectancy: 100}, 2025)
	assert.Equal(t, maxProjectionYears, projectionHorizon(&young, nil))
}

func TestClaimingStrategy_ReportsElapsedFromClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	SetNowFunc(func() time.Time {
		calls++
		return start.Add(time.Duration(calls) * 2 * time.Second)
	})
	defer SetNowFunc(time.Now)

	e := NewEngine()
	obs := newCountingObserver()
	e.SetObserver(obs)
	taxpayer := domain.PersonInfo{Age: 64, PrimaryInsuranceAmount: dec("1800"), LifeExpectancy: 80}
	e.CalculateTaxEfficientClaimingStrategy(taxpayer, nil, nil, domain.OptimizationSettings{Workers: 2})

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2*time.Second, obs.elapsed[OpClaiming])
}
