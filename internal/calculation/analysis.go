package calculation

import (
	"fmt"

	"github.com/rpgo/tax-engine/internal/domain"
	money "github.com/rpgo/tax-engine/pkg/decimal"
)

// generateRecommendations summarises a ranked claiming analysis
func generateRecommendations(analysis domain.ClaimingAnalysis, opt domain.OptimizationSettings) []string {
	best := analysis.BestStrategy
	earliest := analysis.EarliestStrategy
	dollars := func(v money.Money) string { return v.Round().Format() }

	recs := []string{
		fmt.Sprintf("Claim at %s for the highest after-tax present value net of IRMAA (%s)",
			best.Label(), dollars(money.NewMoneyFromDecimal(best.NetValue))),
	}

	if analysis.GainOverEarliest.IsPositive() {
		recs = append(recs, fmt.Sprintf("Compared with claiming at %s, this adds %s of after-tax present value",
			earliest.Label(), dollars(money.NewMoneyFromDecimal(analysis.GainOverEarliest))))
	}
	if analysis.BreakevenAge > 0 {
		recs = append(recs, fmt.Sprintf("Cumulative after-tax benefits overtake claiming at %s by age %d",
			earliest.Label(), analysis.BreakevenAge))
	}
	if best.IRMAAImpact.IsPositive() {
		recs = append(recs, fmt.Sprintf("IRMAA surcharges total %s over the projection; managing MAGI near tier bounds reduces them",
			dollars(money.NewMoneyFromDecimal(best.IRMAAImpact))))
	}
	if best.BracketViolations > 0 {
		recs = append(recs, fmt.Sprintf("%d years exceed the %s%% target bracket",
			best.BracketViolations, opt.TargetBracketRate.Mul(hundred).String()))
	}
	if n := len(best.RothConversions); n > 0 {
		first := best.RothConversions[0]
		recs = append(recs, fmt.Sprintf("%d years have at least %s of room for Roth conversions, starting in %d with %s in the %s%% bracket",
			n, dollars(money.NewMoneyFromDecimal(minRothHeadroom)), first.Year,
			dollars(money.NewMoneyFromDecimal(first.Headroom)), first.BracketRate.Mul(hundred).String()))
	}
	return recs
}
