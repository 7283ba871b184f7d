package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// breakevenAge is the taxpayer age in the first year the delayed strategy's cumulative after-tax
// benefits catch up with the earliest strategy's, after having trailed them. Zero when the
// strategies are the same or never cross.
func breakevenAge(delayed, earliest domain.ClaimingStrategy) int {
	if delayed.Label() == earliest.Label() {
		return 0
	}
	n := len(delayed.Years)
	if len(earliest.Years) < n {
		n = len(earliest.Years)
	}

	cumDelayed, cumEarliest := decimal.Zero, decimal.Zero
	trailed := false
	for i := 0; i < n; i++ {
		cumDelayed = cumDelayed.Add(delayed.Years[i].AfterTaxBenefits)
		cumEarliest = cumEarliest.Add(earliest.Years[i].AfterTaxBenefits)
		if cumDelayed.LessThan(cumEarliest) {
			trailed = true
			continue
		}
		if trailed {
			return delayed.Years[i].TaxpayerAge
		}
	}
	return 0
}
