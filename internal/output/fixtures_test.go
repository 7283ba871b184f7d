package output

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scenarioFixture() domain.ScenarioResult {
	spouseAge := 61
	return domain.ScenarioResult{
		TaxYear:        2025,
		FilingStatus:   domain.MarriedFilingJointly,
		TaxpayerAge:    63,
		SpouseAge:      &spouseAge,
		TotalIncome:    d("34500"),
		TaxFreeIncome:  d("1500"),
		OrdinaryIncome: d("33000"),
		AGI:            d("33000"),
		MAGI:           d("34500"),
		Deduction: domain.DeductionDetail{
			Type:   "standard",
			Amount: d("30000"),
		},
		TaxableIncome: d("3000"),
		OrdinaryTax:   d("300"),
		FederalTax:    d("300"),
		State: domain.StateTaxDetail{
			Name:   "flat-rate state",
			NetTax: d("1275"),
		},
		TotalTax:      d("1575"),
		EffectiveRate: d("0.0457"),
		MarginalRate:  d("0.1"),
		CurrentBracket: domain.BracketInfo{
			Max:  d("23850"),
			Rate: d("0.1"),
		},
		NextBracket:         &domain.BracketInfo{Min: d("23850"), Max: d("96950"), Rate: d("0.12")},
		AmountToNextBracket: d("20850"),
		Sources: []domain.SourceBreakdown{
			{ID: "pension", Name: "Pension", Kind: domain.KindPension, Owner: domain.OwnerTaxpayer, Annual: d("33000"), Taxable: d("33000")},
			{ID: "munis", Name: "Municipal bonds", Kind: domain.KindTaxExemptInterest, Owner: domain.OwnerTaxpayer, Annual: d("1500"), TaxFree: d("1500")},
		},
		Warnings: []string{"income source refund has a negative amount; treated as zero"},
	}
}

func rateHikeFixture() domain.RateHikeResult {
	return domain.RateHikeResult{
		AmountToNextHike: d("1234.5"),
		CurrentRate:      d("0.22"),
		NextRate:         d("0.4"),
		Causes:           []string{"Social Security 85%", "IRMAA Tier 1"},
		Cause:            "Social Security 85% + IRMAA Tier 1",
		Method:           "scan",
		Evaluations:      41,
		BaselineIncome:   d("95000"),
	}
}

func claimingFixture() domain.ClaimingAnalysis {
	best := domain.ClaimingStrategy{
		TaxpayerClaimingAge:    70,
		TaxpayerMonthlyBenefit: d("2480"),
		LifetimeBenefits:       d("500000"),
		LifetimeAfterTax:       d("450000"),
		PresentValue:           d("320000"),
		NetValue:               d("320000"),
		Years: []domain.ClaimingYear{
			{Year: 2025, TaxpayerAge: 66, FilingStatus: domain.Single},
			{Year: 2029, TaxpayerAge: 70, FilingStatus: domain.Single, Benefits: d("29760"), TaxableBenefits: d("4000"), IncrementalTax: d("480"), AfterTaxBenefits: d("29280"), PresentValue: d("26015.5"), MarginalRate: d("0.12")},
		},
	}
	earliest := domain.ClaimingStrategy{
		TaxpayerClaimingAge:    66,
		TaxpayerMonthlyBenefit: d("1866.67"),
		LifetimeBenefits:       d("420000"),
		LifetimeAfterTax:       d("400000"),
		PresentValue:           d("300000"),
		NetValue:               d("300000"),
	}
	return domain.ClaimingAnalysis{
		BestStrategy:     best,
		WorstStrategy:    earliest,
		EarliestStrategy: earliest,
		Strategies:       []domain.ClaimingStrategy{best, earliest},
		GainOverEarliest: d("20000"),
		BreakevenAge:     80,
		Recommendations:  []string{"Claim at 70 for the highest after-tax present value net of IRMAA ($320,000.00)"},
		Evaluations:      18,
	}
}

func monteCarloFixture() domain.MonteCarloAnalysis {
	return domain.MonteCarloAnalysis{
		RequestedTrials: 20,
		CompletedTrials: 20,
		Seed:            42,
		BaseStrategy:    "70",
		ValuePercentiles: domain.PercentileRanges{
			P10: d("280000"),
			P25: d("300000"),
			P50: d("318000"),
			P75: d("335000"),
			P90: d("350000"),
		},
		Frequencies: []domain.ClaimingFrequency{
			{Strategy: "70", Count: 12, Percent: d("60")},
			{Strategy: "67", Count: 8, Percent: d("40")},
		},
		Risk: domain.RiskMetrics{
			Mean:                   d("317500"),
			StandardDeviation:      d("21000"),
			Min:                    d("270000"),
			Max:                    d("360000"),
			CoefficientOfVariation: d("0.0661"),
			BaseStrategyAgreement:  d("0.6"),
		},
	}
}
