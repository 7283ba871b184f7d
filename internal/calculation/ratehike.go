package calculation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpgo/tax-engine/internal/domain"
	money "github.com/rpgo/tax-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

// RateHikeOptions tunes the finite-difference search for the next rate jump
type RateHikeOptions struct {
	Probe     decimal.Decimal // Width of the window a marginal rate is measured over
	Step      decimal.Decimal // Coarse scan spacing
	Cap       decimal.Decimal // Largest extra income scanned
	Threshold decimal.Decimal // Rate increase over the baseline that counts as a jump
	Precision decimal.Decimal // Coarse bisection stops at this width
	FineProbe decimal.Decimal // Resolution of the final localization
}

// DefaultRateHikeOptions returns the standard search parameters
func DefaultRateHikeOptions() RateHikeOptions {
	return RateHikeOptions{
		Probe:     decimal.NewFromInt(1000),
		Step:      decimal.NewFromInt(500),
		Cap:       decimal.NewFromInt(200000),
		Threshold: decimal.RequireFromString("0.005"),
		Precision: decimal.NewFromInt(100),
		FineProbe: decimal.NewFromInt(10),
	}
}

const (
	methodScan     = "scan"
	methodFallback = "bracket-fallback"

	causeBracket      = "Tax Bracket"
	causeSS50         = "Social Security 50%"
	causeSS85         = "Social Security 85%"
	causeSenior       = "Senior Deduction Phase-Out"
	causeCapitalGains = "Capital Gains Stacking"
	causeNIIT         = "Net Investment Income Tax"
	causeStateCredit  = "State Credit Phase-Out"
	causeCombined     = "Combined Effects"
	causeTopBracket   = "Top Bracket"

	probeSourceID       = "rate-hike-probe"
	maxBisectIterations = 64
)

// Minimum change in a component's slope across the crossing for it to count as a cause
var (
	socialSecurityBend = decimal.RequireFromString("0.1")
	deductionBend      = decimal.RequireFromString("0.01")
	capitalGainsBend   = decimal.RequireFromString("0.01")
	niitBend           = decimal.RequireFromString("0.005")
	minSeparation      = decimal.RequireFromString("0.01")
)

// FindNextRateHike finds how much extra ordinary income the household can take before its
// effective marginal rate (total tax plus IRMAA surcharges) jumps, and what causes the jump
func (e *Engine) FindNextRateHike(sources []domain.IncomeSource, taxpayerAge int, spouseAge *int, status domain.FilingStatus, settings *domain.Settings) domain.RateHikeResult {
	return e.FindNextRateHikeWithOptions(context.Background(), sources, taxpayerAge, spouseAge, status, settings, DefaultRateHikeOptions())
}

// FindNextRateHikeWithOptions is FindNextRateHike with explicit search parameters. A cancelled
// context ends the scan early and returns the bracket fallback.
func (e *Engine) FindNextRateHikeWithOptions(ctx context.Context, sources []domain.IncomeSource, taxpayerAge int, spouseAge *int, status domain.FilingStatus, settings *domain.Settings, opts RateHikeOptions) domain.RateHikeResult {
	started := nowFunc()
	s := &rateHikeSearch{
		engine:      e,
		sources:     sources,
		taxpayerAge: taxpayerAge,
		spouseAge:   spouseAge,
		status:      status,
		calcOpts:    domain.CalcOptions{Settings: settings},
		opts:        opts,
		cache:       newMemo[string, domain.ScenarioResult](),
	}

	result := s.run(ctx)
	result.Evaluations = s.cache.computed()
	e.observer().ObserveSearch(OpRateHike, nowFunc().Sub(started), result.Evaluations)
	e.logger().Debugf("rate hike: amount=%s current=%s next=%s cause=%q method=%s evaluations=%d",
		result.AmountToNextHike.StringFixed(2), result.CurrentRate.StringFixed(4), result.NextRate.StringFixed(4),
		result.Cause, result.Method, result.Evaluations)
	return result
}

type rateHikeSearch struct {
	engine      *Engine
	sources     []domain.IncomeSource
	taxpayerAge int
	spouseAge   *int
	status      domain.FilingStatus
	calcOpts    domain.CalcOptions
	opts        RateHikeOptions
	cache       *memo[string, domain.ScenarioResult]
}

// at returns the orchestrator result with delta of extra ordinary income
func (s *rateHikeSearch) at(delta decimal.Decimal) domain.ScenarioResult {
	delta = nonNegative(delta)
	return s.cache.get(delta.StringFixed(2), func() domain.ScenarioResult {
		return s.engine.evaluate(OpRateHike, withExtraIncome(s.sources, delta), s.taxpayerAge, s.spouseAge, s.status, s.calcOpts)
	})
}

func (s *rateHikeSearch) burden(delta decimal.Decimal) decimal.Decimal {
	return s.at(delta).Burden()
}

// slope is the burden added per dollar between a and b
func (s *rateHikeSearch) slope(a, b decimal.Decimal) decimal.Decimal {
	return money.SafeDiv(s.burden(b).Sub(s.burden(a)), b.Sub(a))
}

// rate is the effective marginal rate measured forward from delta
func (s *rateHikeSearch) rate(delta decimal.Decimal) decimal.Decimal {
	return s.slope(delta, delta.Add(s.opts.Probe))
}

func (s *rateHikeSearch) run(ctx context.Context) domain.RateHikeResult {
	base := s.at(decimal.Zero)
	r0 := s.rate(decimal.Zero)

	lo, hi, found := s.scan(ctx, r0)
	if !found {
		return s.fallback(base, r0)
	}
	lo, hi = s.bisect(lo, hi, r0)
	crossing := s.localize(lo, hi, r0)

	causes := s.attribute(crossing)
	// A cliff sits inside the window at hi but behind the one at the crossing
	next := decimal.Max(decimal.Max(s.rate(crossing), s.rate(hi)), r0)
	return domain.RateHikeResult{
		AmountToNextHike: crossing,
		CurrentRate:      r0,
		NextRate:         next,
		Causes:           causes,
		Cause:            strings.Join(causes, " + "),
		Method:           methodScan,
		BaselineIncome:   base.TotalIncome,
	}
}

// spiked reports whether the rate measured at delta exceeds the baseline by the threshold
func (s *rateHikeSearch) spiked(delta, r0 decimal.Decimal) bool {
	return s.rate(delta).Sub(r0).GreaterThan(s.opts.Threshold)
}

// scan walks forward in steps, evaluating each batch of points in parallel, and returns the
// last quiet point and the first spiked point
func (s *rateHikeSearch) scan(ctx context.Context, r0 decimal.Decimal) (decimal.Decimal, decimal.Decimal, bool) {
	var points []decimal.Decimal
	if s.opts.Step.IsPositive() {
		for x := s.opts.Step; x.LessThanOrEqual(s.opts.Cap); x = x.Add(s.opts.Step) {
			points = append(points, x)
		}
	}

	workers := s.engine.workers()
	prev := decimal.Zero
	for start := 0; start < len(points); start += workers {
		if ctx.Err() != nil {
			return decimal.Zero, decimal.Zero, false
		}
		end := start + workers
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]

		// Warm the cache with both ends of every window in the batch
		deltas := make([]decimal.Decimal, 0, 2*len(batch))
		for _, x := range batch {
			deltas = append(deltas, x, x.Add(s.opts.Probe))
		}
		runParallel(ctx, workers, len(deltas), func(i int) {
			s.at(deltas[i])
		})

		for _, x := range batch {
			if s.spiked(x, r0) {
				return prev, x, true
			}
			prev = x
		}
	}
	return decimal.Zero, decimal.Zero, false
}

// bisect narrows [lo, hi] to the precision while keeping lo quiet and hi spiked
func (s *rateHikeSearch) bisect(lo, hi, r0 decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	for i := 0; i < maxBisectIterations && hi.Sub(lo).GreaterThan(s.opts.Precision); i++ {
		mid := money.Midpoint(lo, hi)
		if mid.LessThanOrEqual(lo) || mid.GreaterThanOrEqual(hi) {
			break
		}
		if s.spiked(mid, r0) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo, hi
}

// localize pins the crossing inside [lo, hi + probe]. It extends the burden line through lo
// and finds the first income where the burden pulls away from it by more than the fine probe's
// worth of the threshold. Falls back to hi when nothing separates.
func (s *rateHikeSearch) localize(lo, hi, r0 decimal.Decimal) decimal.Decimal {
	local := r0
	if lo.IsPositive() {
		local = s.slope(decimal.Max(decimal.Zero, lo.Sub(s.opts.Probe)), lo)
	}
	tolerance := decimal.Max(s.opts.Threshold.Mul(s.opts.FineProbe), minSeparation)
	baseBurden := s.burden(lo)
	separated := func(x decimal.Decimal) bool {
		line := baseBurden.Add(local.Mul(x.Sub(lo)))
		return s.burden(x).Sub(line).GreaterThan(tolerance)
	}

	left, right := lo, hi.Add(s.opts.Probe)
	if !separated(right) {
		return hi
	}
	for i := 0; i < maxBisectIterations && right.Sub(left).GreaterThan(one); i++ {
		mid := money.Midpoint(left, right)
		if mid.LessThanOrEqual(left) || mid.GreaterThanOrEqual(right) {
			break
		}
		if separated(mid) {
			right = mid
		} else {
			left = mid
		}
	}
	return right
}

// attribute diffs the results on either side of the crossing
func (s *rateHikeSearch) attribute(crossing decimal.Decimal) []string {
	a := nonNegative(crossing.Sub(s.opts.Probe))
	b := crossing
	c := crossing.Add(s.opts.Probe)
	ra, rb, rc := s.at(a), s.at(b), s.at(c)

	// bend is the change in slope of a component across the crossing
	bend := func(f func(domain.ScenarioResult) decimal.Decimal) decimal.Decimal {
		after := money.SafeDiv(f(rc).Sub(f(rb)), c.Sub(b))
		before := money.SafeDiv(f(rb).Sub(f(ra)), b.Sub(a))
		return after.Sub(before)
	}

	var causes []string
	if rc.MarginalRate.GreaterThan(ra.MarginalRate) {
		causes = append(causes, causeBracket)
	}

	ssBend := bend(func(r domain.ScenarioResult) decimal.Decimal { return r.SocialSecurity.Taxable })
	switch {
	case rc.SocialSecurity.Tier == "III" && ra.SocialSecurity.Tier != "III":
		causes = append(causes, causeSS85)
	case rc.SocialSecurity.Tier == "II" && ra.SocialSecurity.Tier == "I":
		causes = append(causes, causeSS50)
	case ssBend.GreaterThan(socialSecurityBend):
		if rc.SocialSecurity.Tier == "III" {
			causes = append(causes, causeSS85)
		} else {
			causes = append(causes, causeSS50)
		}
	}

	if rc.IRMAA.TierIndex > ra.IRMAA.TierIndex && rc.IRMAA.AnnualSurcharge.GreaterThan(ra.IRMAA.AnnualSurcharge) {
		causes = append(causes, fmt.Sprintf("IRMAA Tier %d", rc.IRMAA.TierIndex))
	}

	seniorLoss := bend(func(r domain.ScenarioResult) decimal.Decimal { return r.Deduction.Standard.Senior.Neg() })
	if rc.Deduction.Type == "standard" && seniorLoss.GreaterThan(deductionBend) {
		causes = append(causes, causeSenior)
	}

	if bend(func(r domain.ScenarioResult) decimal.Decimal { return r.CapitalGains.Tax }).GreaterThan(capitalGainsBend) {
		causes = append(causes, causeCapitalGains)
	}

	if bend(func(r domain.ScenarioResult) decimal.Decimal { return r.NIIT }).GreaterThan(niitBend) {
		causes = append(causes, causeNIIT)
	}

	if ra.State.Credit.GreaterThan(rc.State.Credit) {
		causes = append(causes, causeStateCredit)
	}

	if len(causes) == 0 {
		causes = []string{causeCombined}
	}
	return causes
}

// fallback reports the plain distance to the next ordinary bracket in income terms
func (s *rateHikeSearch) fallback(base domain.ScenarioResult, r0 decimal.Decimal) domain.RateHikeResult {
	result := domain.RateHikeResult{
		CurrentRate:    r0,
		NextRate:       r0,
		Method:         methodFallback,
		BaselineIncome: base.TotalIncome,
	}
	if base.NextBracket == nil {
		result.Causes = []string{causeTopBracket}
		result.Cause = causeTopBracket
		return result
	}
	result.AmountToNextHike = nonNegative(base.AmountToNextBracketIncome)
	result.NextRate = decimal.Max(base.NextBracket.Rate, r0)
	result.Causes = []string{causeBracket}
	result.Cause = causeBracket
	return result
}

// withExtraIncome returns a copy of sources with delta of taxpayer-owned ordinary income appended
func withExtraIncome(sources []domain.IncomeSource, delta decimal.Decimal) []domain.IncomeSource {
	out := make([]domain.IncomeSource, 0, len(sources)+1)
	out = append(out, sources...)
	if delta.IsPositive() {
		out = append(out, domain.OtherIncome{SourceBase: domain.SourceBase{
			ID:        probeSourceID,
			Name:      "Additional income",
			Amount:    delta,
			Frequency: domain.Yearly,
			Owner:     domain.OwnerTaxpayer,
		}})
	}
	return out
}
