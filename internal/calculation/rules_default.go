package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX RULE ASSUMPTIONS:
//
// 1. Ordinary brackets are the 2024/2025 TCJA schedules and are not indexed for later years.
//    With TCJASunset set and a tax year of 2026 or later the pre-TCJA rates (10/15/25/28/33/35/39.6)
//    apply instead.
//
// 2. The senior deduction ($6,000 per person 65+) applies for tax years 2025 through 2028 only.
//
// 3. IRMAA tiers use 2025 surcharges. Married filing separately uses the individual schedule.
//
// 4. State tax models a flat-rate state that exempts Social Security, excludes retirement income up
//    to a limit set by birth year, and grants a small personal credit below an income limit.

func dollars(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func schedule(rates []string, bounds ...int64) []domain.Bracket {
	brackets := make([]domain.Bracket, len(rates))
	lo := decimal.Zero
	for i, r := range rates {
		hi := domain.Unbounded
		if i < len(bounds) {
			hi = dollars(bounds[i])
		}
		brackets[i] = domain.Bracket{Min: lo, Max: hi, Rate: pct(r)}
		lo = hi
	}
	return brackets
}

var (
	tcjaRates   = []string{"0.10", "0.12", "0.22", "0.24", "0.32", "0.35", "0.37"}
	sunsetRates = []string{"0.10", "0.15", "0.25", "0.28", "0.33", "0.35", "0.396"}
	gainsRates  = []string{"0", "0.15", "0.20"}
)

// DefaultTaxRules returns a freshly built rule set for the 2025 tax year
func DefaultTaxRules() domain.TaxRules {
	return domain.TaxRules{
		Year: 2025,
		OrdinaryBrackets: domain.ByStatus[[]domain.Bracket]{
			Single:                  schedule(tcjaRates, 11600, 47150, 100525, 191950, 243725, 609350),
			MarriedFilingJointly:    schedule(tcjaRates, 23200, 94300, 201050, 383900, 487450, 731200),
			MarriedFilingSeparately: schedule(tcjaRates, 11600, 47150, 100525, 191950, 243725, 365600),
			HeadOfHousehold:         schedule(tcjaRates, 16550, 63100, 100500, 191950, 243700, 609350),
		},
		SunsetBrackets: domain.ByStatus[[]domain.Bracket]{
			Single:                  schedule(sunsetRates, 11925, 48475, 117350, 244800, 532400, 534100),
			MarriedFilingJointly:    schedule(sunsetRates, 23850, 96950, 195650, 298150, 532450, 601500),
			MarriedFilingSeparately: schedule(sunsetRates, 11925, 48475, 97825, 149075, 266225, 300750),
			HeadOfHousehold:         schedule(sunsetRates, 17000, 64850, 167450, 271150, 532450, 567800),
		},
		StandardDeduction: domain.StandardDeductionConfig{
			Base: domain.ByStatus[decimal.Decimal]{
				Single:                  dollars(15000),
				MarriedFilingJointly:    dollars(30000),
				MarriedFilingSeparately: dollars(15000),
				HeadOfHousehold:         dollars(22500),
			},
			SunsetBase: domain.ByStatus[decimal.Decimal]{
				Single:                  dollars(8350),
				MarriedFilingJointly:    dollars(16700),
				MarriedFilingSeparately: dollars(8350),
				HeadOfHousehold:         dollars(12250),
			},
			AgeAddOnMarried:   dollars(1600),
			AgeAddOnUnmarried: dollars(2000),
			Senior: domain.SeniorDeductionConfig{
				PerPerson:    dollars(6000),
				PhaseOutRate: pct("0.05"),
				FirstYear:    2025,
				LastYear:     2028,
				PhaseOutStart: domain.ByStatus[decimal.Decimal]{
					Single:                  dollars(75000),
					MarriedFilingJointly:    dollars(150000),
					MarriedFilingSeparately: dollars(75000),
					HeadOfHousehold:         dollars(75000),
				},
				PhaseOutEnd: domain.ByStatus[decimal.Decimal]{
					Single:                  dollars(195000),
					MarriedFilingJointly:    dollars(390000),
					MarriedFilingSeparately: dollars(195000),
					HeadOfHousehold:         dollars(195000),
				},
			},
		},
		Itemized: domain.ItemizedConfig{
			SALTCap: domain.ByStatus[decimal.Decimal]{
				Single:                  dollars(40000),
				MarriedFilingJointly:    dollars(40000),
				MarriedFilingSeparately: dollars(20000),
				HeadOfHousehold:         dollars(40000),
			},
			MedicalFloor: pct("0.075"),
		},
		SocialSecurityTax: domain.ByStatus[domain.SocialSecurityThresholds]{
			Single:                  domain.SocialSecurityThresholds{Threshold1: dollars(25000), Threshold2: dollars(34000)},
			MarriedFilingJointly:    domain.SocialSecurityThresholds{Threshold1: dollars(32000), Threshold2: dollars(44000)},
			MarriedFilingSeparately: domain.SocialSecurityThresholds{Threshold1: decimal.Zero, Threshold2: decimal.Zero},
			HeadOfHousehold:         domain.SocialSecurityThresholds{Threshold1: dollars(25000), Threshold2: dollars(34000)},
		},
		SocialSecurityRules: domain.SocialSecurityRules{
			EarlyFirst36MonthsRate: decimal.NewFromInt(5).Div(decimal.NewFromInt(900)),
			EarlyAdditionalRate:    decimal.NewFromInt(5).Div(decimal.NewFromInt(1200)),
			DelayedCreditMonthly:   decimal.NewFromInt(2).Div(decimal.NewFromInt(300)),
			DelayedCreditPre1943:   pct("0.065").Div(decimal.NewFromInt(12)),
			EarliestClaimingAge:    62,
			LatestClaimingAge:      70,
			SurvivorMinimumFactor:  pct("0.715"),
			SurvivorEarliestAge:    60,
		},
		CapitalGains: domain.ByStatus[[]domain.Bracket]{
			Single:                  schedule(gainsRates, 48350, 533400),
			MarriedFilingJointly:    schedule(gainsRates, 96700, 600050),
			MarriedFilingSeparately: schedule(gainsRates, 48350, 300000),
			HeadOfHousehold:         schedule(gainsRates, 64750, 566700),
		},
		NIIT: domain.NIITConfig{
			Rate: pct("0.038"),
			Thresholds: domain.ByStatus[decimal.Decimal]{
				Single:                  dollars(200000),
				MarriedFilingJointly:    dollars(250000),
				MarriedFilingSeparately: dollars(125000),
				HeadOfHousehold:         dollars(200000),
			},
		},
		FICA: domain.FICATaxConfig{
			SocialSecurityWageBase: dollars(176100),
			SocialSecurityRate:     pct("0.062"),
			MedicareRate:           pct("0.0145"),
			AdditionalMedicareRate: pct("0.009"),
			AdditionalMedicareThreshold: domain.ByStatus[decimal.Decimal]{
				Single:                  dollars(200000),
				MarriedFilingJointly:    dollars(250000),
				MarriedFilingSeparately: dollars(125000),
				HeadOfHousehold:         dollars(200000),
			},
			SelfEmploymentFactor: pct("0.9235"),
		},
		Medicare: domain.MedicareConfig{
			BasePartBPremium: pct("185.00"),
			IndividualTiers:  irmaaTiers(106000, 133000, 167000, 200000, 500000),
			JointTiers:       irmaaTiers(212000, 266000, 334000, 400000, 750000),
		},
		State: domain.StateTaxConfig{
			Name:                 "flat-rate state",
			Rate:                 pct("0.0425"),
			ExemptSocialSecurity: true,
			ExclusionBands: []domain.RetirementExclusionBand{
				{BornTo: 1945, Limit: dollars(65897)},
				{BornFrom: 1946, BornTo: 1952, Limit: dollars(56961)},
				{BornFrom: 1953, BornTo: 1958, Limit: dollars(42723)},
				{BornFrom: 1959, BornTo: 1966, Limit: dollars(28482)},
				{BornFrom: 1967, Limit: decimal.Zero},
			},
			PersonalCredit: dollars(150),
			CreditIncomeLimit: domain.ByStatus[decimal.Decimal]{
				Single:                  dollars(50000),
				MarriedFilingJointly:    dollars(75000),
				MarriedFilingSeparately: dollars(37500),
				HeadOfHousehold:         dollars(50000),
			},
		},
		EarlyWithdrawal: domain.EarlyWithdrawalConfig{
			PenaltyRate:        pct("0.10"),
			PenaltyFreeAge:     pct("59.5"),
			RothSeasoningYears: 5,
		},
	}
}

// irmaaTiers builds the 2025 surcharge schedule for the given MAGI thresholds
func irmaaTiers(bounds ...int64) []domain.IRMAATier {
	partB := []string{"0", "74.00", "185.00", "295.90", "406.90", "443.90"}
	partD := []string{"0", "13.70", "35.30", "57.00", "78.60", "85.80"}
	tiers := make([]domain.IRMAATier, len(partB))
	lo := decimal.Zero
	for i := range partB {
		hi := domain.Unbounded
		if i < len(bounds) {
			hi = dollars(bounds[i])
		}
		tiers[i] = domain.IRMAATier{Min: lo, Max: hi, PartB: pct(partB[i]), PartD: pct(partD[i])}
		lo = hi
	}
	return tiers
}
