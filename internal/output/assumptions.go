package output

import (
	"fmt"

	"github.com/rpgo/tax-engine/internal/domain"
)

// GenerateAssumptions lists the rule-set values and search settings a report was computed under.
// opt is nil for single-year calculations.
func GenerateAssumptions(rules domain.TaxRules, opt *domain.OptimizationSettings) []string {
	std := rules.StandardDeduction.Base
	out := []string{
		fmt.Sprintf("Federal tables: %d, held constant for later years (no inflation indexing)", rules.Year),
		fmt.Sprintf("Standard deduction: %s single / %s joint", FormatCurrency(std.Single), FormatCurrency(std.MarriedFilingJointly)),
		fmt.Sprintf("Net investment income tax: %s above %s joint", FormatRate(rules.NIIT.Rate), FormatCurrency(rules.NIIT.Thresholds.MarriedFilingJointly)),
		fmt.Sprintf("Medicare Part B base premium: %s per month", FormatCurrency(rules.Medicare.BasePartBPremium)),
	}
	if rules.State.Name != "" {
		out = append(out, fmt.Sprintf("State income tax (%s): %s flat", rules.State.Name, FormatRate(rules.State.Rate)))
	}
	if opt == nil {
		return out
	}
	out = append(out,
		fmt.Sprintf("Discount rate: %s annually", FormatRate(opt.DiscountRate)),
		fmt.Sprintf("Social Security COLA: %s annually", FormatRate(opt.COLA)),
	)
	if opt.TargetBracketRate.IsPositive() {
		out = append(out, fmt.Sprintf("Target bracket: %s", FormatRate(opt.TargetBracketRate)))
	}
	if opt.TCJASunset {
		out = append(out, "TCJA sunset: pre-2018 brackets and deductions from 2026")
	}
	return out
}
