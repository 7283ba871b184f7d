package calculation

import (
	"testing"

	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateStandardDeduction(t *testing.T) {
	dc := NewDeductionCalculator(DefaultTaxRules())

	tests := []struct {
		name        string
		demo        domain.Demographics
		magi        string
		taxYear     int
		sunset      bool
		base        string
		ageAddOn    string
		senior      string
		seniorCount int
		total       string
	}{
		{
			name:    "single under 65",
			demo:    domain.Demographics{TaxpayerAge: 45, FilingStatus: domain.Single},
			magi:    "75000",
			taxYear: 2025,
			base:    "15000", ageAddOn: "0", senior: "0", seniorCount: 0, total: "15000",
		},
		{
			name:    "single 66 below phase-out",
			demo:    domain.Demographics{TaxpayerAge: 66, FilingStatus: domain.Single},
			magi:    "50000",
			taxYear: 2025,
			base:    "15000", ageAddOn: "2000", senior: "6000", seniorCount: 1, total: "23000",
		},
		{
			name:    "single 66 inside phase-out",
			demo:    domain.Demographics{TaxpayerAge: 66, FilingStatus: domain.Single},
			magi:    "100000",
			taxYear: 2025,
			base:    "15000", ageAddOn: "2000", senior: "4750", seniorCount: 1, total: "21750",
		},
		{
			name:    "single 66 at phase-out end",
			demo:    domain.Demographics{TaxpayerAge: 66, FilingStatus: domain.Single},
			magi:    "195000",
			taxYear: 2025,
			base:    "15000", ageAddOn: "2000", senior: "0", seniorCount: 1, total: "17000",
		},
		{
			name:    "joint both over 65 with partial senior deduction",
			demo:    domain.Demographics{TaxpayerAge: 67, SpouseAge: intPtr(66), FilingStatus: domain.MarriedFilingJointly},
			magi:    "340000",
			taxYear: 2025,
			base:    "30000", ageAddOn: "3200", senior: "2500", seniorCount: 2, total: "35700",
		},
		{
			name:    "joint one over 65",
			demo:    domain.Demographics{TaxpayerAge: 67, SpouseAge: intPtr(63), FilingStatus: domain.MarriedFilingJointly},
			magi:    "100000",
			taxYear: 2025,
			base:    "30000", ageAddOn: "1600", senior: "6000", seniorCount: 1, total: "37600",
		},
		{
			name:    "separate return ignores the spouse and gets no senior deduction",
			demo:    domain.Demographics{TaxpayerAge: 67, SpouseAge: intPtr(66), FilingStatus: domain.MarriedFilingSeparately},
			magi:    "50000",
			taxYear: 2025,
			base:    "15000", ageAddOn: "1600", senior: "0", seniorCount: 1, total: "16600",
		},
		{
			name:    "head of household",
			demo:    domain.Demographics{TaxpayerAge: 40, FilingStatus: domain.HeadOfHousehold},
			magi:    "60000",
			taxYear: 2025,
			base:    "22500", ageAddOn: "0", senior: "0", seniorCount: 0, total: "22500",
		},
		{
			name:    "senior deduction expired",
			demo:    domain.Demographics{TaxpayerAge: 70, FilingStatus: domain.Single},
			magi:    "50000",
			taxYear: 2029,
			base:    "15000", ageAddOn: "2000", senior: "0", seniorCount: 1, total: "17000",
		},
		{
			name:    "sunset tables",
			demo:    domain.Demographics{TaxpayerAge: 70, SpouseAge: intPtr(70), FilingStatus: domain.MarriedFilingJointly},
			magi:    "50000",
			taxYear: 2026,
			sunset:  true,
			base:    "16700", ageAddOn: "3200", senior: "0", seniorCount: 2, total: "19900",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dc.CalculateStandardDeduction(tt.demo, dec(tt.magi), tt.taxYear, tt.sunset)
			assertDecimal(t, dec(tt.base), got.Base, "base")
			assertDecimal(t, dec(tt.ageAddOn), got.AgeAddOn, "age add-on")
			assertDecimal(t, dec(tt.senior), got.Senior, "senior")
			assertDecimal(t, dec(tt.total), got.Total, "total")
			assert.Equal(t, tt.seniorCount, got.QualifyingSeniors)
		})
	}
}

func TestSeniorDeduction_NonIncreasingInMAGI(t *testing.T) {
	dc := NewDeductionCalculator(DefaultTaxRules())
	demo := domain.Demographics{TaxpayerAge: 68, SpouseAge: intPtr(67), FilingStatus: domain.MarriedFilingJointly}

	prev := dc.CalculateStandardDeduction(demo, decimal.Zero, 2025, false).Senior
	for magi := int64(5000); magi <= 450000; magi += 5000 {
		got := dc.CalculateStandardDeduction(demo, decimal.NewFromInt(magi), 2025, false)
		assert.True(t, got.Senior.LessThanOrEqual(prev), "senior deduction rose at MAGI %d", magi)
		assert.True(t, got.Senior.LessThanOrEqual(got.SeniorBeforePhaseOut))
		assert.False(t, got.Senior.IsNegative())
		prev = got.Senior
	}
	assert.True(t, prev.IsZero())
}

func TestCalculateItemized(t *testing.T) {
	dc := NewDeductionCalculator(DefaultTaxRules())

	t.Run("nil deductions", func(t *testing.T) {
		assert.True(t, dc.CalculateItemized(nil, domain.Single, dec("100000")).IsZero())
	})

	t.Run("SALT cap and medical floor", func(t *testing.T) {
		items := &domain.ItemizedDeductions{
			StateAndLocalTaxes: dec("50000"),
			MortgageInterest:   dec("10000"),
			Charitable:         dec("5000"),
			Medical:            dec("20000"),
		}
		assertDecimal(t, dec("67500"), dc.CalculateItemized(items, domain.MarriedFilingJointly, dec("100000")), "joint")
		assertDecimal(t, dec("47500"), dc.CalculateItemized(items, domain.MarriedFilingSeparately, dec("100000")), "separate")
	})

	t.Run("negative entries are ignored", func(t *testing.T) {
		items := &domain.ItemizedDeductions{Charitable: dec("-500"), Other: dec("1000")}
		assertDecimal(t, dec("1000"), dc.CalculateItemized(items, domain.Single, dec("50000")), "itemized")
	})
}

func TestChooseDeduction(t *testing.T) {
	standard := domain.DeductionBreakdown{Total: dec("30000")}

	got := ChooseDeduction(standard, dec("25000"))
	assert.Equal(t, "standard", got.Type)
	assertDecimal(t, dec("30000"), got.Amount, "amount")

	got = ChooseDeduction(standard, dec("31000"))
	assert.Equal(t, "itemized", got.Type)
	assertDecimal(t, dec("31000"), got.Amount, "amount")
}
