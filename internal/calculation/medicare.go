package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// MedicareCalculator resolves IRMAA tiers and surcharges
type MedicareCalculator struct {
	BasePartBPremium decimal.Decimal
	JointTiers       []domain.IRMAATier
	IndividualTiers  []domain.IRMAATier
}

// NewMedicareCalculator creates a new Medicare calculator with 2025 rates
func NewMedicareCalculator() *MedicareCalculator {
	return NewMedicareCalculatorWithConfig(DefaultTaxRules().Medicare)
}

// NewMedicareCalculatorWithConfig creates a new Medicare calculator with configurable values
func NewMedicareCalculatorWithConfig(config domain.MedicareConfig) *MedicareCalculator {
	return &MedicareCalculator{
		BasePartBPremium: config.BasePartBPremium,
		JointTiers:       config.JointTiers,
		IndividualTiers:  config.IndividualTiers,
	}
}

// FindTier returns the index and tier with Min <= MAGI < Max. MAGI below the first
// tier resolves to tier 0 and MAGI past the last bound to the top tier.
func (mc *MedicareCalculator) FindTier(magi decimal.Decimal, status domain.FilingStatus) (int, domain.IRMAATier) {
	tiers := mc.IndividualTiers
	if status.IsJoint() {
		tiers = mc.JointTiers
	}
	if len(tiers) == 0 {
		return 0, domain.IRMAATier{}
	}
	for i, tier := range tiers {
		if magi.GreaterThanOrEqual(tier.Min) && magi.LessThan(tier.Max) {
			return i, tier
		}
	}
	if magi.LessThan(tiers[0].Min) {
		return 0, tiers[0]
	}
	last := len(tiers) - 1
	return last, tiers[last]
}

// CalculateIRMAA sums the monthly surcharges across every elected person and part
func (mc *MedicareCalculator) CalculateIRMAA(magi decimal.Decimal, status domain.FilingStatus, election domain.MedicareElection, hasSpouse bool) domain.IRMAADetail {
	index, tier := mc.FindTier(magi, status)
	detail := domain.IRMAADetail{
		MAGI:      magi,
		TierIndex: index,
		Tier:      tier,
	}

	monthly := decimal.Zero
	add := func(elected bool, surcharge decimal.Decimal) {
		if !elected {
			return
		}
		detail.EnrolledParts++
		monthly = monthly.Add(surcharge)
	}
	add(election.TaxpayerPartB, tier.PartB)
	add(election.TaxpayerPartD, tier.PartD)
	add(hasSpouse && election.SpousePartB, tier.PartB)
	add(hasSpouse && election.SpousePartD, tier.PartD)

	detail.MonthlySurcharge = monthly
	detail.AnnualSurcharge = monthly.Mul(twelve)
	return detail
}

// CalculateAnnualPartBCost is the base Part B premium plus the IRMAA Part B surcharge for one person
func (mc *MedicareCalculator) CalculateAnnualPartBCost(magi decimal.Decimal, status domain.FilingStatus) decimal.Decimal {
	_, tier := mc.FindTier(magi, status)
	return mc.BasePartBPremium.Add(tier.PartB).Mul(twelve)
}
