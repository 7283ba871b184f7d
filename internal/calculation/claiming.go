package calculation

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/rpgo/tax-engine/pkg/dateutil"
	money "github.com/rpgo/tax-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

var (
	defaultDiscountRate = decimal.RequireFromString("0.03")
	defaultCOLA         = decimal.RequireFromString("0.025")
	minRothHeadroom     = decimal.NewFromInt(1000)

	scoreBase           = decimal.NewFromInt(50)
	maxDelayBonus       = decimal.NewFromInt(25)
	maxConversionBonus  = decimal.NewFromInt(15)
	conversionBonusUnit = decimal.RequireFromString("1.5")
	maxIRMAAPenalty     = decimal.NewFromInt(20)
	irmaaPenaltyUnit    = decimal.NewFromInt(1000)
	maxViolationPenalty = decimal.NewFromInt(20)
	violationPenalty    = decimal.NewFromInt(2)
)

// CalculateTaxEfficientClaimingStrategy evaluates every pair of claiming ages and ranks them by
// after-tax present value net of IRMAA surcharges
func (e *Engine) CalculateTaxEfficientClaimingStrategy(taxpayer domain.PersonInfo, spouse *domain.PersonInfo, sources []domain.IncomeSource, opt domain.OptimizationSettings) domain.ClaimingAnalysis {
	started := nowFunc()
	opt = normalizeOptimization(opt, spouse != nil)
	workers := opt.Workers
	if workers <= 0 {
		workers = e.workers()
	}

	analysis, _ := e.optimizeClaiming(context.Background(), taxpayer, spouse, sources, opt, workers, true)
	e.observer().ObserveSearch(OpClaiming, nowFunc().Sub(started), analysis.Evaluations)
	e.logger().Infof("claiming: best=%s net_value=%s strategies=%d evaluations=%d",
		analysis.BestStrategy.Label(), analysis.BestStrategy.NetValue.StringFixed(2), len(analysis.Strategies), analysis.Evaluations)
	return analysis
}

// normalizeOptimization applies the optimizer defaults
func normalizeOptimization(opt domain.OptimizationSettings, hasSpouse bool) domain.OptimizationSettings {
	if opt.TaxYear <= 0 {
		opt.TaxYear = domain.DefaultTaxYear
	}
	if opt.DiscountRate.IsZero() {
		opt.DiscountRate = defaultDiscountRate
	}
	if opt.COLA.IsZero() {
		opt.COLA = defaultCOLA
	}
	if opt.FilingStatus == "" {
		opt.FilingStatus = domain.Single
		if hasSpouse {
			opt.FilingStatus = domain.MarriedFilingJointly
		}
	}
	opt.FilingStatus = opt.FilingStatus.Normalize()
	return opt
}

// claimingAges lists the ages a person can still choose between
func claimingAges(currentAge int, rules domain.SocialSecurityRules) []int {
	first := rules.EarliestClaimingAge
	if currentAge > first {
		first = currentAge
	}
	if first > rules.LatestClaimingAge {
		first = rules.LatestClaimingAge
	}
	ages := make([]int, 0, rules.LatestClaimingAge-first+1)
	for age := first; age <= rules.LatestClaimingAge; age++ {
		ages = append(ages, age)
	}
	return ages
}

// claimingSearch holds everything shared by the strategies of one search
type claimingSearch struct {
	engine   *Engine
	sources  []domain.IncomeSource
	taxpayer personTimeline
	spouse   *personTimeline
	opt      domain.OptimizationSettings
	rules    domain.SocialSecurityRules
	horizon  int
	baseline *memo[int, domain.ScenarioResult]
	evals    atomic.Int64
}

// optimizeClaiming runs the nested age search. keepYears controls whether strategies carry
// their year-by-year detail. The boolean is false when ctx ended the search early.
func (e *Engine) optimizeClaiming(ctx context.Context, taxpayer domain.PersonInfo, spouse *domain.PersonInfo, sources []domain.IncomeSource, opt domain.OptimizationSettings, workers int, keepYears bool) (domain.ClaimingAnalysis, bool) {
	s := &claimingSearch{
		engine:   e,
		sources:  sources,
		taxpayer: newTimeline(taxpayer, opt.TaxYear),
		opt:      opt,
		rules:    e.Rules.SocialSecurityRules,
		baseline: newMemo[int, domain.ScenarioResult](),
	}
	if spouse != nil {
		t := newTimeline(*spouse, opt.TaxYear)
		s.spouse = &t
	}
	s.horizon = projectionHorizon(&s.taxpayer, s.spouse)

	type agePair struct{ taxpayer, spouse int }
	var pairs []agePair
	for _, tpAge := range claimingAges(s.taxpayer.Info.Age, s.rules) {
		if s.spouse == nil {
			pairs = append(pairs, agePair{taxpayer: tpAge})
			continue
		}
		for _, spAge := range claimingAges(s.spouse.Info.Age, s.rules) {
			pairs = append(pairs, agePair{taxpayer: tpAge, spouse: spAge})
		}
	}

	strategies := make([]domain.ClaimingStrategy, len(pairs))
	done := make([]bool, len(pairs))
	runParallel(ctx, workers, len(pairs), func(i int) {
		strategies[i] = s.evaluateStrategy(pairs[i].taxpayer, pairs[i].spouse, keepYears)
		done[i] = true
	})
	for _, ok := range done {
		if !ok {
			return domain.ClaimingAnalysis{Evaluations: int(s.evals.Load())}, false
		}
	}

	analysis := rankStrategies(strategies)
	analysis.Evaluations = int(s.evals.Load())
	analysis.Recommendations = generateRecommendations(analysis, opt)
	return analysis, true
}

// yearInputs is the orchestrator input for one projection year
type yearInputs struct {
	sources     []domain.IncomeSource
	taxpayerAge int
	spouseAge   *int
	status      domain.FilingStatus
	settings    *domain.Settings

	// survivorIsSpouse means the taxpayer has died and the spouse files alone
	survivorIsSpouse bool
}

// inputsFor drops the sources of anyone who has died and switches to single filing from the
// year after a death. A surviving spouse files as the taxpayer.
func (s *claimingSearch) inputsFor(year int) yearInputs {
	tpAlive := s.taxpayer.alive(year)
	spAlive := s.spouse != nil && s.spouse.alive(year)

	in := yearInputs{status: s.opt.FilingStatus}
	settings := &domain.Settings{
		TaxYear:    s.opt.TaxYear + year,
		TCJASunset: s.opt.TCJASunset,
	}
	medicare := func(elected bool, t *personTimeline) bool {
		return elected && t.alive(year) && dateutil.IsMedicareEligible(t.ageIn(year))
	}

	switch {
	case tpAlive && spAlive:
		in.taxpayerAge = s.taxpayer.ageIn(year)
		age := s.spouse.ageIn(year)
		in.spouseAge = &age
		settings.TaxpayerBirthYear = s.taxpayer.BirthYear
		settings.SpouseBirthYear = s.spouse.BirthYear
		settings.Medicare = domain.MedicareElection{
			TaxpayerPartB: medicare(s.opt.Medicare.TaxpayerPartB, &s.taxpayer),
			TaxpayerPartD: medicare(s.opt.Medicare.TaxpayerPartD, &s.taxpayer),
			SpousePartB:   medicare(s.opt.Medicare.SpousePartB, s.spouse),
			SpousePartD:   medicare(s.opt.Medicare.SpousePartD, s.spouse),
		}
	case tpAlive:
		in.taxpayerAge = s.taxpayer.ageIn(year)
		if s.spouse != nil {
			in.status = domain.Single
		}
		settings.TaxpayerBirthYear = s.taxpayer.BirthYear
		settings.Medicare = domain.MedicareElection{
			TaxpayerPartB: medicare(s.opt.Medicare.TaxpayerPartB, &s.taxpayer),
			TaxpayerPartD: medicare(s.opt.Medicare.TaxpayerPartD, &s.taxpayer),
		}
	default:
		in.taxpayerAge = s.spouse.ageIn(year)
		in.status = domain.Single
		in.survivorIsSpouse = true
		settings.TaxpayerBirthYear = s.spouse.BirthYear
		settings.Medicare = domain.MedicareElection{
			TaxpayerPartB: medicare(s.opt.Medicare.SpousePartB, s.spouse),
			TaxpayerPartD: medicare(s.opt.Medicare.SpousePartD, s.spouse),
		}
	}
	in.settings = settings

	for _, src := range s.sources {
		if src == nil {
			continue
		}
		spouseOwned := src.Base().Owner.IsSpouse()
		if (spouseOwned && s.spouse != nil && !spAlive) || (!spouseOwned && !tpAlive) {
			continue
		}
		in.sources = append(in.sources, src)
	}
	return in
}

func (s *claimingSearch) run(in yearInputs, sources []domain.IncomeSource) domain.ScenarioResult {
	s.evals.Add(1)
	return s.engine.evaluate(OpClaiming, sources, in.taxpayerAge, in.spouseAge, in.status, domain.CalcOptions{
		Deductions: s.opt.Deductions,
		Settings:   in.settings,
	})
}

// baselineFor is the no-Social-Security result for a year; it does not depend on the claiming ages
func (s *claimingSearch) baselineFor(year int, in yearInputs) domain.ScenarioResult {
	return s.baseline.get(year, func() domain.ScenarioResult {
		return s.run(in, in.sources)
	})
}

// evaluateStrategy projects one pair of claiming ages year by year
func (s *claimingSearch) evaluateStrategy(tpClaim, spClaim int, keepYears bool) domain.ClaimingStrategy {
	tpStream := newBenefitStream(s.taxpayer, tpClaim, s.rules)
	strategy := domain.ClaimingStrategy{
		TaxpayerClaimingAge:    tpClaim,
		TaxpayerMonthlyBenefit: tpStream.Monthly,
	}
	var spStream *benefitStream
	if s.spouse != nil {
		stream := newBenefitStream(*s.spouse, spClaim, s.rules)
		spStream = &stream
		strategy.SpouseClaimingAge = spClaim
		strategy.SpouseMonthlyBenefit = stream.Monthly
	}

	for year := 0; year < s.horizon; year++ {
		in := s.inputsFor(year)
		tpBenefit, spBenefit := householdBenefits(tpStream, spStream, year, s.opt.COLA, s.rules)
		benefits := tpBenefit.Add(spBenefit)

		base := s.baselineFor(year, in)
		with := base
		if benefits.IsPositive() {
			with = s.run(in, withBenefits(in, tpBenefit, spBenefit))
		}

		incremental := with.TotalTax.Sub(base.TotalTax)
		afterTax := benefits.Sub(incremental)
		pv := money.NewMoneyFromDecimal(afterTax).Discount(s.opt.DiscountRate, year).Decimal

		strategy.LifetimeBenefits = strategy.LifetimeBenefits.Add(benefits)
		strategy.LifetimeAfterTax = strategy.LifetimeAfterTax.Add(afterTax)
		strategy.PresentValue = strategy.PresentValue.Add(pv)
		strategy.IRMAAImpact = strategy.IRMAAImpact.Add(with.IRMAA.AnnualSurcharge)

		if s.opt.TargetBracketRate.IsPositive() {
			if with.MarginalRate.GreaterThan(s.opt.TargetBracketRate) {
				strategy.BracketViolations++
			} else if headroom, rate, ok := s.rothHeadroom(in, with); ok {
				strategy.RothConversions = append(strategy.RothConversions, domain.RothConversionOpportunity{
					Year:        in.settings.TaxYear,
					TaxpayerAge: in.taxpayerAge,
					BracketRate: rate,
					Headroom:    headroom,
				})
			}
		}

		if keepYears {
			row := domain.ClaimingYear{
				Year:             in.settings.TaxYear,
				TaxpayerAge:      in.taxpayerAge,
				FilingStatus:     with.FilingStatus,
				Benefits:         benefits,
				TaxableBenefits:  with.SocialSecurity.Taxable,
				IncrementalTax:   incremental,
				AfterTaxBenefits: afterTax,
				PresentValue:     pv,
				IRMAASurcharge:   with.IRMAA.AnnualSurcharge,
				MarginalRate:     with.MarginalRate,
			}
			if in.spouseAge != nil {
				row.SpouseAge = *in.spouseAge
			}
			strategy.Years = append(strategy.Years, row)
		}
	}

	strategy.NetValue = strategy.PresentValue.Sub(strategy.IRMAAImpact)
	strategy.OptimizationScore = s.score(strategy)
	return strategy
}

// rothHeadroom is the room left below the top of the highest bracket at or under the target
// rate. Years sitting in an unbounded bracket report no opportunity.
func (s *claimingSearch) rothHeadroom(in yearInputs, result domain.ScenarioResult) (decimal.Decimal, decimal.Decimal, bool) {
	brackets := s.engine.TaxBrackets(in.status, in.settings)
	target := -1
	for i, b := range brackets {
		if b.Rate.LessThanOrEqual(s.opt.TargetBracketRate) {
			target = i
		}
	}
	if target < 0 || brackets[target].IsTop() {
		return decimal.Zero, decimal.Zero, false
	}
	headroom := brackets[target].Max.Sub(result.OrdinaryTaxableIncome)
	if headroom.LessThan(minRothHeadroom) {
		return decimal.Zero, decimal.Zero, false
	}
	return headroom, brackets[target].Rate, true
}

// score rewards delay and conversion room and penalizes IRMAA and bracket violations, on 0-100
func (s *claimingSearch) score(c domain.ClaimingStrategy) decimal.Decimal {
	span := decimal.NewFromInt(int64(s.rules.LatestClaimingAge - s.rules.EarliestClaimingAge))
	delay := func(age int) decimal.Decimal {
		return money.SafeDiv(decimal.NewFromInt(int64(age-s.rules.EarliestClaimingAge)), span)
	}
	meanDelay := delay(c.TaxpayerClaimingAge)
	if s.spouse != nil {
		meanDelay = meanDelay.Add(delay(c.SpouseClaimingAge)).Div(decimal.NewFromInt(2))
	}

	conversions := decimal.NewFromInt(int64(len(c.RothConversions)))
	violations := decimal.NewFromInt(int64(c.BracketViolations))

	score := scoreBase.
		Add(maxDelayBonus.Mul(meanDelay)).
		Add(decimal.Min(maxConversionBonus, conversionBonusUnit.Mul(conversions))).
		Sub(decimal.Min(maxIRMAAPenalty, c.IRMAAImpact.Div(irmaaPenaltyUnit))).
		Sub(decimal.Min(maxViolationPenalty, violationPenalty.Mul(violations)))
	return money.Clamp(score, decimal.Zero, hundred).Round(2)
}

// withBenefits adds each person's Social Security benefit for the year
func withBenefits(in yearInputs, taxpayerBenefit, spouseBenefit decimal.Decimal) []domain.IncomeSource {
	out := make([]domain.IncomeSource, 0, len(in.sources)+2)
	out = append(out, in.sources...)
	tpOwner, spOwner := domain.OwnerTaxpayer, domain.OwnerSpouse
	if in.survivorIsSpouse {
		tpOwner = domain.OwnerSpouse
	}
	if taxpayerBenefit.IsPositive() {
		out = append(out, domain.SocialSecurityBenefit{SourceBase: domain.SourceBase{
			ID:        "social-security-taxpayer",
			Name:      "Social Security",
			Amount:    taxpayerBenefit,
			Frequency: domain.Yearly,
			Owner:     tpOwner,
		}})
	}
	if spouseBenefit.IsPositive() {
		out = append(out, domain.SocialSecurityBenefit{SourceBase: domain.SourceBase{
			ID:        "social-security-spouse",
			Name:      "Social Security (spouse)",
			Amount:    spouseBenefit,
			Frequency: domain.Yearly,
			Owner:     spOwner,
		}})
	}
	return out
}

// rankStrategies orders strategies by net value. Ties keep the earlier claiming ages first.
func rankStrategies(strategies []domain.ClaimingStrategy) domain.ClaimingAnalysis {
	if len(strategies) == 0 {
		return domain.ClaimingAnalysis{}
	}
	earliest := strategies[0]
	ranked := make([]domain.ClaimingStrategy, len(strategies))
	copy(ranked, strategies)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NetValue.GreaterThan(ranked[j].NetValue)
	})

	analysis := domain.ClaimingAnalysis{
		BestStrategy:     ranked[0],
		WorstStrategy:    ranked[len(ranked)-1],
		EarliestStrategy: earliest,
		Strategies:       ranked,
		GainOverEarliest: ranked[0].NetValue.Sub(earliest.NetValue),
	}
	analysis.BreakevenAge = breakevenAge(analysis.BestStrategy, earliest)
	return analysis
}
