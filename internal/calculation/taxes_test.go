package calculation

import (
	"testing"

	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateComprehensiveTaxes_SingleWorker(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()
	sources := []domain.IncomeSource{domain.Wages{SourceBase: base("salary", 75000)}}

	result := cc.CalculateComprehensiveTaxes(sources, 45, nil, domain.Single, domain.CalcOptions{})

	assertDecimal(t, dec("75000"), result.AGI, "AGI")
	assertDecimal(t, dec("15000"), result.Deduction.Amount, "deduction")
	assertDecimal(t, dec("60000"), result.TaxableIncome, "taxable income")
	assertDecimal(t, dec("8253"), result.OrdinaryTax, "ordinary tax")
	assertDecimal(t, dec("0.22"), result.MarginalRate, "marginal rate")
	assertDecimal(t, dec("3187.50"), result.State.NetTax, "state tax")
	assertDecimal(t, dec("11440.50"), result.TotalTax, "total tax")
	assertDecimalWithin(t, dec("0.15254"), result.EffectiveRate, dec("0.00001"), "effective rate")
	require.NotNil(t, result.NextBracket)
	assertDecimal(t, dec("0.24"), result.NextBracket.Rate, "next rate")
	assertDecimal(t, dec("40525"), result.AmountToNextBracket, "amount to next bracket")
	assertDecimal(t, dec("40525"), result.AmountToNextBracketIncome, "income to next bracket")
	assert.False(t, result.Payroll.Enabled)
	assert.Empty(t, result.Warnings)
}

func TestCalculateComprehensiveTaxes_RetiredCouple(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()
	sources := []domain.IncomeSource{
		domain.SocialSecurityBenefit{SourceBase: base("ss", 50600)},
		domain.Pension{SourceBase: base("pension", 94000)},
	}

	result := cc.CalculateComprehensiveTaxes(sources, 67, intPtr(65), domain.MarriedFilingJointly, domain.CalcOptions{})

	assertDecimal(t, dec("43010"), result.SocialSecurity.Taxable, "taxable benefits")
	assert.Equal(t, "III", result.SocialSecurity.Tier)
	assertDecimal(t, dec("137010"), result.AGI, "AGI")
	assertDecimal(t, dec("45200"), result.Deduction.Amount, "deduction")
	assertDecimal(t, dec("12000"), result.Deduction.Standard.Senior, "senior deduction")
	assertDecimal(t, dec("91810"), result.TaxableIncome, "taxable income")
	assertDecimal(t, dec("0.12"), result.MarginalRate, "marginal rate")
	assertDecimal(t, dec("10553.20"), result.OrdinaryTax, "ordinary tax")
	assertDecimal(t, dec("2490"), result.AmountToNextBracket, "amount to next bracket")
	assertDecimal(t, dec("2490"), result.AmountToNextBracketIncome, "income to next bracket")
	assertDecimal(t, dec("71205"), result.State.RetirementExclusion, "state retirement exclusion")
	assertDecimal(t, dec("968.79"), result.State.NetTax, "state tax")
	assert.Equal(t, 0, result.IRMAA.EnrolledParts)
}

func TestCalculateComprehensiveTaxes_SeniorPhaseOut(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()

	t.Run("high-income couple keeps part of the senior deduction", func(t *testing.T) {
		sources := []domain.IncomeSource{domain.Pension{SourceBase: base("pension", 340000)}}
		result := cc.CalculateComprehensiveTaxes(sources, 67, intPtr(66), domain.MarriedFilingJointly, domain.CalcOptions{})
		assertDecimal(t, dec("2500"), result.Deduction.Standard.Senior, "senior deduction")
		assertDecimal(t, dec("35700"), result.Deduction.Amount, "deduction")
	})

	t.Run("phase-out stretches the income needed to reach the next bracket", func(t *testing.T) {
		sources := []domain.IncomeSource{domain.Pension{SourceBase: base("pension", 74000)}}
		result := cc.CalculateComprehensiveTaxes(sources, 66, nil, domain.Single, domain.CalcOptions{})
		assertDecimal(t, dec("51000"), result.TaxableIncome, "taxable income")
		assertDecimal(t, dec("49525"), result.AmountToNextBracket, "amount to next bracket")
		assertDecimal(t, dec("47215"), result.AmountToNextBracketIncome, "income to next bracket")
	})
}

func TestCalculateComprehensiveTaxes_CapitalGains(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()
	sources := []domain.IncomeSource{
		domain.LongTermCapitalGains{SourceBase: base("ltcg", 50000)},
		domain.Pension{SourceBase: base("pension", 30000)},
	}

	result := cc.CalculateComprehensiveTaxes(sources, 70, nil, domain.Single, domain.CalcOptions{})

	assertDecimal(t, dec("22750"), result.Deduction.Amount, "deduction")
	assertDecimal(t, dec("57250"), result.TaxableIncome, "taxable income")
	assertDecimal(t, dec("50000"), result.PreferentialTaxableIncome, "preferential income")
	assertDecimal(t, dec("7250"), result.OrdinaryTaxableIncome, "ordinary taxable income")
	assertDecimal(t, dec("725"), result.OrdinaryTax, "ordinary tax")
	assertDecimal(t, dec("1335"), result.CapitalGains.Tax, "capital gains tax")
	assertDecimal(t, dec("41100"), result.CapitalGains.TaxedAtZero, "taxed at zero")
	assertDecimal(t, dec("2060"), result.FederalTax, "federal tax")
	assert.True(t, result.NIIT.IsZero())
	assertDecimal(t, dec("2125"), result.State.NetTax, "state tax")
	assertDecimal(t, dec("4185"), result.TotalTax, "total tax")
}

func TestCalculateComprehensiveTaxes_DeductionAbsorbsOrdinaryIncome(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()
	sources := []domain.IncomeSource{domain.LongTermCapitalGains{SourceBase: base("ltcg", 20000)}}

	result := cc.CalculateComprehensiveTaxes(sources, 45, nil, domain.Single, domain.CalcOptions{})

	assertDecimal(t, dec("5000"), result.TaxableIncome, "taxable income")
	assertDecimal(t, dec("5000"), result.PreferentialTaxableIncome, "preferential income")
	assert.True(t, result.OrdinaryTaxableIncome.IsZero())
	assert.True(t, result.MarginalRate.IsZero())
	require.NotNil(t, result.NextBracket)
	assertDecimal(t, dec("0.10"), result.NextBracket.Rate, "next rate")
	assertDecimal(t, dec("15000"), result.AmountToNextBracket, "amount to next bracket")
	assertDecimal(t, dec("15000"), result.AmountToNextBracketIncome, "income to next bracket")
}

func TestCalculateComprehensiveTaxes_TopBracket(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()
	sources := []domain.IncomeSource{domain.Wages{SourceBase: base("salary", 2000000)}}

	result := cc.CalculateComprehensiveTaxes(sources, 50, nil, domain.Single, domain.CalcOptions{})

	assertDecimal(t, dec("0.37"), result.MarginalRate, "marginal rate")
	assert.Nil(t, result.NextBracket)
	assert.True(t, result.AmountToNextBracket.IsZero())
	assert.True(t, result.AmountToNextBracketIncome.IsZero())
}

func TestCalculateComprehensiveTaxes_Options(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()

	t.Run("payroll taxes when enabled", func(t *testing.T) {
		sources := []domain.IncomeSource{
			domain.Wages{SourceBase: base("salary", 100000)},
			domain.Wages{SourceBase: spouseBase("spouse-salary", 50000)},
		}
		result := cc.CalculateComprehensiveTaxes(sources, 45, intPtr(44), domain.MarriedFilingJointly, domain.CalcOptions{FICAEnabled: true})
		require.True(t, result.Payroll.Enabled)
		assertDecimal(t, dec("11475"), result.Payroll.Total, "payroll")
		assertDecimal(t, dec("150000"), result.EarnedIncome, "earned income")
		assert.True(t, result.TotalTax.GreaterThan(result.FederalTax.Add(result.State.NetTax)))
	})

	t.Run("early withdrawal penalty", func(t *testing.T) {
		sources := []domain.IncomeSource{domain.TraditionalRetirement{SourceBase: base("ira", 20000)}}
		result := cc.CalculateComprehensiveTaxes(sources, 50, nil, domain.Single, domain.CalcOptions{})
		assertDecimal(t, dec("2000"), result.EarlyWithdrawalPenalty, "penalty")
	})

	t.Run("sunset tables", func(t *testing.T) {
		sources := []domain.IncomeSource{domain.Wages{SourceBase: base("salary", 75000)}}
		settings := &domain.Settings{TaxYear: 2026, TCJASunset: true}
		result := cc.CalculateComprehensiveTaxes(sources, 45, nil, domain.Single, domain.CalcOptions{Settings: settings})
		assert.Equal(t, 2026, result.TaxYear)
		assertDecimal(t, dec("66650"), result.TaxableIncome, "taxable income")
		assertDecimal(t, dec("11218.75"), result.OrdinaryTax, "ordinary tax")
		assertDecimal(t, dec("0.25"), result.MarginalRate, "marginal rate")
	})

	t.Run("MAGI override drives IRMAA and the phase-out", func(t *testing.T) {
		magi := dec("600000")
		settings := &domain.Settings{MAGIOverride: &magi, Medicare: domain.MedicareElection{TaxpayerPartB: true}}
		sources := []domain.IncomeSource{domain.Pension{SourceBase: base("pension", 50000)}}
		result := cc.CalculateComprehensiveTaxes(sources, 70, nil, domain.Single, domain.CalcOptions{Settings: settings})
		assertDecimal(t, magi, result.MAGI, "MAGI")
		assertDecimal(t, dec("50000"), result.AGI, "AGI")
		assert.Equal(t, 5, result.IRMAA.TierIndex)
		assertDecimal(t, dec("443.90"), result.IRMAA.MonthlySurcharge, "monthly surcharge")
		assert.True(t, result.Deduction.Standard.Senior.IsZero())
	})

	t.Run("itemized deductions win when larger", func(t *testing.T) {
		items := &domain.ItemizedDeductions{StateAndLocalTaxes: dec("30000"), MortgageInterest: dec("20000")}
		sources := []domain.IncomeSource{domain.Wages{SourceBase: base("salary", 200000)}}
		result := cc.CalculateComprehensiveTaxes(sources, 45, nil, domain.Single, domain.CalcOptions{Deductions: items})
		assert.Equal(t, "itemized", result.Deduction.Type)
		assertDecimal(t, dec("150000"), result.TaxableIncome, "taxable income")
	})

	t.Run("tax-exempt interest is in MAGI but not AGI", func(t *testing.T) {
		sources := []domain.IncomeSource{
			domain.Pension{SourceBase: base("pension", 30000)},
			domain.TaxExemptInterest{SourceBase: base("muni", 10000)},
		}
		result := cc.CalculateComprehensiveTaxes(sources, 70, nil, domain.Single, domain.CalcOptions{})
		assertDecimal(t, dec("30000"), result.AGI, "AGI")
		assertDecimal(t, dec("40000"), result.MAGI, "MAGI")
		assertDecimal(t, dec("10000"), result.TaxFreeIncome, "tax-free income")
		assertDecimal(t, dec("40000"), result.TotalIncome, "total income")
	})
}

func TestCalculateComprehensiveTaxes_DegradedInput(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()

	t.Run("empty input", func(t *testing.T) {
		result := cc.CalculateComprehensiveTaxes(nil, 45, nil, domain.Single, domain.CalcOptions{})
		assert.True(t, result.TotalTax.IsZero())
		assert.True(t, result.EffectiveRate.IsZero())
		assert.Empty(t, result.Sources)
	})

	t.Run("invalid ages and status", func(t *testing.T) {
		result := cc.CalculateComprehensiveTaxes(nil, 0, intPtr(150), domain.FilingStatus("bogus"), domain.CalcOptions{})
		assert.Equal(t, 65, result.TaxpayerAge)
		require.NotNil(t, result.SpouseAge)
		assert.Equal(t, 65, *result.SpouseAge)
		assert.Equal(t, domain.Single, result.FilingStatus)
		assert.Len(t, result.Warnings, 3)
	})

	t.Run("negative and disabled sources", func(t *testing.T) {
		disabled := base("old", 90000)
		disabled.Disabled = true
		sources := []domain.IncomeSource{
			nil,
			domain.Wages{SourceBase: disabled},
			domain.OtherIncome{SourceBase: base("loss", -4000)},
		}
		result := cc.CalculateComprehensiveTaxes(sources, 45, nil, domain.Single, domain.CalcOptions{})
		assert.True(t, result.TotalIncome.IsZero())
		assert.Len(t, result.Warnings, 1)
	})

	t.Run("monthly amounts are annualized", func(t *testing.T) {
		monthly := base("pension", 2500)
		monthly.Frequency = domain.Monthly
		result := cc.CalculateComprehensiveTaxes([]domain.IncomeSource{domain.Pension{SourceBase: monthly}}, 70, nil, domain.Single, domain.CalcOptions{})
		assertDecimal(t, dec("30000"), result.AGI, "AGI")
	})
}

func TestCalculateComprehensiveTaxes_Idempotent(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()
	sources := []domain.IncomeSource{
		domain.SocialSecurityBenefit{SourceBase: base("ss", 30000)},
		domain.TraditionalRetirement{SourceBase: base("ira", 45000)},
		domain.QualifiedDividends{SourceBase: base("qdiv", 6000)},
	}
	opts := domain.CalcOptions{Settings: &domain.Settings{Medicare: domain.MedicareElection{TaxpayerPartB: true}}}

	first := cc.CalculateComprehensiveTaxes(sources, 68, nil, domain.Single, opts)
	second := cc.CalculateComprehensiveTaxes(sources, 68, nil, domain.Single, opts)
	assert.Equal(t, first, second)
}

func TestCalculateComprehensiveTaxes_TotalTaxNonDecreasing(t *testing.T) {
	cc := NewComprehensiveTaxCalculator()
	prev := decimal.Zero
	for extra := int64(0); extra <= 250000; extra += 2500 {
		sources := []domain.IncomeSource{
			domain.SocialSecurityBenefit{SourceBase: base("ss", 30000)},
			domain.TraditionalRetirement{SourceBase: base("ira", extra)},
		}
		result := cc.CalculateComprehensiveTaxes(sources, 70, nil, domain.Single, domain.CalcOptions{})
		assert.True(t, result.TotalTax.GreaterThanOrEqual(prev), "total tax fell at %d", extra)
		assert.True(t, result.TaxableIncome.LessThanOrEqual(result.AGI))
		assert.True(t, result.SocialSecurity.Taxable.LessThanOrEqual(dec("25500")))
		prev = result.TotalTax
	}
}
