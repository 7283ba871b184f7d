package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// DeductionCalculator computes standard and itemized deductions
type DeductionCalculator struct {
	Standard domain.StandardDeductionConfig
	Itemized domain.ItemizedConfig
}

// NewDeductionCalculator creates a deduction calculator from a rule set
func NewDeductionCalculator(rules domain.TaxRules) *DeductionCalculator {
	return &DeductionCalculator{Standard: rules.StandardDeduction, Itemized: rules.Itemized}
}

// CalculateStandardDeduction returns the base amount, the age-65 add-ons and the senior
// deduction after its MAGI phase-out
func (dc *DeductionCalculator) CalculateStandardDeduction(demo domain.Demographics, magi decimal.Decimal, taxYear int, tcjaSunset bool) domain.DeductionBreakdown {
	status := demo.FilingStatus.Normalize()
	sunset := tcjaSunset && taxYear >= 2026

	base := dc.Standard.Base.For(status)
	if sunset {
		base = dc.Standard.SunsetBase.For(status)
	}

	seniors := demo.SeniorCount()
	addOn := dc.Standard.AgeAddOnUnmarried
	if status.IsMarried() {
		addOn = dc.Standard.AgeAddOnMarried
	}
	ageAddOn := addOn.Mul(decimal.NewFromInt(int64(seniors)))

	breakdown := domain.DeductionBreakdown{
		Base:              base,
		AgeAddOn:          ageAddOn,
		QualifyingSeniors: seniors,
	}
	breakdown.SeniorBeforePhaseOut, breakdown.Senior = dc.seniorDeduction(status, seniors, magi, taxYear, sunset)
	breakdown.Total = base.Add(ageAddOn).Add(breakdown.Senior)
	return breakdown
}

// seniorDeduction returns the full and phased-out senior deduction
func (dc *DeductionCalculator) seniorDeduction(status domain.FilingStatus, seniors int, magi decimal.Decimal, taxYear int, sunset bool) (decimal.Decimal, decimal.Decimal) {
	cfg := dc.Standard.Senior
	if seniors == 0 || sunset || taxYear < cfg.FirstYear || taxYear > cfg.LastYear {
		return decimal.Zero, decimal.Zero
	}
	if status == domain.MarriedFilingSeparately && !cfg.AllowSeparate {
		return decimal.Zero, decimal.Zero
	}

	full := cfg.PerPerson.Mul(decimal.NewFromInt(int64(seniors)))
	start := cfg.PhaseOutStart.For(status)
	end := cfg.PhaseOutEnd.For(status)
	if !end.IsZero() && magi.GreaterThanOrEqual(end) {
		return full, decimal.Zero
	}
	excess := magi.Sub(start)
	if excess.LessThanOrEqual(decimal.Zero) {
		return full, full
	}
	reduced := full.Sub(excess.Mul(cfg.PhaseOutRate))
	if reduced.IsNegative() {
		reduced = decimal.Zero
	}
	return full, decimal.Min(reduced, full)
}

// CalculateItemized totals Schedule A with the SALT cap and the medical AGI floor
func (dc *DeductionCalculator) CalculateItemized(items *domain.ItemizedDeductions, status domain.FilingStatus, agi decimal.Decimal) decimal.Decimal {
	if items == nil {
		return decimal.Zero
	}
	salt := nonNegative(items.StateAndLocalTaxes)
	if limit := dc.Itemized.SALTCap.For(status); limit.IsPositive() {
		salt = decimal.Min(salt, limit)
	}
	floor := nonNegative(agi).Mul(dc.Itemized.MedicalFloor)
	medical := nonNegative(nonNegative(items.Medical).Sub(floor))

	return salt.
		Add(nonNegative(items.MortgageInterest)).
		Add(nonNegative(items.Charitable)).
		Add(medical).
		Add(nonNegative(items.Other))
}

// ChooseDeduction takes the larger of the standard and itemized deductions
func ChooseDeduction(standard domain.DeductionBreakdown, itemized decimal.Decimal) domain.DeductionDetail {
	detail := domain.DeductionDetail{
		Type:     "standard",
		Standard: standard,
		Itemized: itemized,
		Amount:   standard.Total,
	}
	if itemized.GreaterThan(standard.Total) {
		detail.Type = "itemized"
		detail.Amount = itemized
	}
	return detail
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
