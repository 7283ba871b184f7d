package calculation

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rpgo/tax-engine/internal/domain"
	money "github.com/rpgo/tax-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

const (
	DefaultMonteCarloTrials = 500
	MaxMonteCarloTrials     = 2000

	lifeExpectancySpread = 5
)

var (
	discountSpread = decimal.RequireFromString("0.01")
	colaSpread     = decimal.RequireFromString("0.005")
)

// trialOutcome is the winning strategy of one perturbed run
type trialOutcome struct {
	label string
	value decimal.Decimal
	done  bool
}

// RunMonteCarloAnalysis reruns the claiming search under randomly perturbed discount rate, COLA and
// life expectancies. Trial i draws from seed+i, so a fixed seed reproduces the analysis. The run
// stops early when ctx is done or the time limit in opt passes, and reports the trials it completed.
func (e *Engine) RunMonteCarloAnalysis(ctx context.Context, taxpayer domain.PersonInfo, spouse *domain.PersonInfo, sources []domain.IncomeSource, opt domain.OptimizationSettings, scenarioCount int) domain.MonteCarloAnalysis {
	started := nowFunc()
	opt = normalizeOptimization(opt, spouse != nil)
	if scenarioCount <= 0 {
		scenarioCount = DefaultMonteCarloTrials
	}
	if scenarioCount > MaxMonteCarloTrials {
		e.logger().Warnf("monte carlo: %d trials requested, capped at %d", scenarioCount, MaxMonteCarloTrials)
		scenarioCount = MaxMonteCarloTrials
	}
	seed := opt.Seed
	if seed == 0 {
		seed = seedFunc()
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = e.workers()
	}

	if opt.TimeLimitSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opt.TimeLimitSeconds)*time.Second)
		defer cancel()
	}

	analysis := domain.MonteCarloAnalysis{
		RequestedTrials: scenarioCount,
		Seed:            seed,
	}

	base, complete := e.optimizeClaiming(ctx, taxpayer, spouse, sources, opt, workers, false)
	evaluations := base.Evaluations
	if !complete {
		analysis.TimedOut = true
		e.observer().ObserveSearch(OpMonteCarlo, nowFunc().Sub(started), evaluations)
		return analysis
	}
	analysis.BaseStrategy = base.BestStrategy.Label()

	outcomes := make([]trialOutcome, scenarioCount)
	trialEvals := make([]int, scenarioCount)
	runParallel(ctx, workers, scenarioCount, func(i int) {
		rng := rand.New(rand.NewSource(seed + int64(i)))
		tp, sp, trialOpt := perturb(rng, taxpayer, spouse, opt)
		result, ok := e.optimizeClaiming(ctx, tp, sp, sources, trialOpt, 1, false)
		trialEvals[i] = result.Evaluations
		if !ok {
			return
		}
		outcomes[i] = trialOutcome{
			label: result.BestStrategy.Label(),
			value: result.BestStrategy.NetValue,
			done:  true,
		}
	})

	var completed []trialOutcome
	for i, o := range outcomes {
		evaluations += trialEvals[i]
		if o.done {
			completed = append(completed, o)
		}
	}
	analysis.CompletedTrials = len(completed)
	analysis.TimedOut = len(completed) < scenarioCount && ctx.Err() != nil
	analysis.ValuePercentiles = calculatePercentileRanges(completed)
	analysis.Frequencies = claimingFrequencies(completed)
	analysis.Risk = calculateRiskMetrics(completed, analysis.BaseStrategy)

	e.observer().ObserveSearch(OpMonteCarlo, nowFunc().Sub(started), evaluations)
	e.logger().Infof("monte carlo: %d/%d trials, base=%s p50=%s agreement=%s",
		analysis.CompletedTrials, analysis.RequestedTrials, analysis.BaseStrategy,
		analysis.ValuePercentiles.P50.StringFixed(2), analysis.Risk.BaseStrategyAgreement.StringFixed(3))
	return analysis
}

// perturb draws one trial's assumptions uniformly around the base case
func perturb(rng *rand.Rand, taxpayer domain.PersonInfo, spouse *domain.PersonInfo, opt domain.OptimizationSettings) (domain.PersonInfo, *domain.PersonInfo, domain.OptimizationSettings) {
	uniform := func(spread decimal.Decimal) decimal.Decimal {
		return spread.Mul(decimal.NewFromFloat(rng.Float64()*2 - 1))
	}
	life := func(p domain.PersonInfo) domain.PersonInfo {
		base := p.LifeExpectancy
		if base <= 0 {
			base = defaultLifeExpectancy
		}
		p.LifeExpectancy = base + rng.Intn(2*lifeExpectancySpread+1) - lifeExpectancySpread
		if p.LifeExpectancy < p.Age {
			p.LifeExpectancy = p.Age
		}
		return p
	}

	opt.DiscountRate = opt.DiscountRate.Add(uniform(discountSpread)).Round(6)
	opt.COLA = opt.COLA.Add(uniform(colaSpread)).Round(6)
	tp := life(taxpayer)
	if spouse == nil {
		return tp, nil, opt
	}
	sp := life(*spouse)
	return tp, &sp, opt
}

// calculatePercentileRanges calculates percentile ranges for trial values
func calculatePercentileRanges(trials []trialOutcome) domain.PercentileRanges {
	n := len(trials)
	if n == 0 {
		return domain.PercentileRanges{}
	}
	values := make([]decimal.Decimal, n)
	for i, t := range trials {
		values[i] = t.value
	}
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })

	return domain.PercentileRanges{
		P10: values[n/10],
		P25: values[n/4],
		P50: values[n/2],
		P75: values[3*n/4],
		P90: values[9*n/10],
	}
}

// claimingFrequencies counts winning strategies, most frequent first
func claimingFrequencies(trials []trialOutcome) []domain.ClaimingFrequency {
	counts := make(map[string]int)
	for _, t := range trials {
		counts[t.label]++
	}
	freqs := make([]domain.ClaimingFrequency, 0, len(counts))
	total := decimal.NewFromInt(int64(len(trials)))
	for label, count := range counts {
		freqs = append(freqs, domain.ClaimingFrequency{
			Strategy: label,
			Count:    count,
			Percent:  money.SafeDiv(decimal.NewFromInt(int64(count)).Mul(hundred), total).Round(2),
		})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Strategy < freqs[j].Strategy
	})
	return freqs
}

// calculateRiskMetrics summarises the spread of trial values
func calculateRiskMetrics(trials []trialOutcome, baseLabel string) domain.RiskMetrics {
	if len(trials) == 0 {
		return domain.RiskMetrics{}
	}
	n := decimal.NewFromInt(int64(len(trials)))
	sum := decimal.Zero
	lo, hi := trials[0].value, trials[0].value
	agree := 0
	for _, t := range trials {
		sum = sum.Add(t.value)
		lo = decimal.Min(lo, t.value)
		hi = decimal.Max(hi, t.value)
		if t.label == baseLabel {
			agree++
		}
	}
	mean := sum.Div(n)

	variance := decimal.Zero
	for _, t := range trials {
		diff := t.value.Sub(mean)
		variance = variance.Add(diff.Mul(diff))
	}
	variance = variance.Div(n)
	stdDev := decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64())).Round(2)

	return domain.RiskMetrics{
		Mean:                   mean.Round(2),
		StandardDeviation:      stdDev,
		Min:                    lo,
		Max:                    hi,
		CoefficientOfVariation: money.SafeDiv(stdDev, mean.Abs()).Round(4),
		BaseStrategyAgreement:  decimal.NewFromInt(int64(agree)).Div(n).Round(4),
	}
}
