package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unbounded is the sentinel upper bound of a top bracket
var Unbounded = decimal.New(1, 15)

// Bracket is one band of a progressive schedule. Income in (Min, Max] is taxed at Rate.
type Bracket struct {
	Min  decimal.Decimal `yaml:"min" json:"min"`
	Max  decimal.Decimal `yaml:"max" json:"max"` // Zero or omitted on the last bracket means unbounded
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// IsTop reports whether the bracket has no upper bound
func (b Bracket) IsTop() bool {
	return b.Max.GreaterThanOrEqual(Unbounded)
}

// ByStatus holds one value per filing status. Qualifying surviving spouses use the joint value.
type ByStatus[T any] struct {
	Single                  T `yaml:"single" json:"single"`
	MarriedFilingJointly    T `yaml:"married_filing_jointly" json:"married_filing_jointly"`
	MarriedFilingSeparately T `yaml:"married_filing_separately" json:"married_filing_separately"`
	HeadOfHousehold         T `yaml:"head_of_household" json:"head_of_household"`
}

// For selects the value for a filing status
func (b ByStatus[T]) For(f FilingStatus) T {
	switch f.Normalize() {
	case MarriedFilingJointly, QualifyingSurvivingSpouse:
		return b.MarriedFilingJointly
	case MarriedFilingSeparately:
		return b.MarriedFilingSeparately
	case HeadOfHousehold:
		return b.HeadOfHousehold
	default:
		return b.Single
	}
}

// TaxRules is the complete read-only rule set used by the engine
type TaxRules struct {
	// Year the tables describe
	Year int `yaml:"year" json:"year"` // Default: 2025

	// Ordinary income schedules under current law and after a TCJA sunset
	OrdinaryBrackets ByStatus[[]Bracket] `yaml:"ordinary_brackets" json:"ordinary_brackets"`
	SunsetBrackets   ByStatus[[]Bracket] `yaml:"sunset_brackets" json:"sunset_brackets"`

	StandardDeduction StandardDeductionConfig `yaml:"standard_deduction" json:"standard_deduction"`
	Itemized          ItemizedConfig          `yaml:"itemized" json:"itemized"`

	// Provisional income thresholds for benefit taxation
	SocialSecurityTax   ByStatus[SocialSecurityThresholds] `yaml:"social_security_tax" json:"social_security_tax"`
	SocialSecurityRules SocialSecurityRules                `yaml:"social_security_rules" json:"social_security_rules"`

	// 0/15/20% schedules for long-term gains and qualified dividends
	CapitalGains ByStatus[[]Bracket] `yaml:"capital_gains" json:"capital_gains"`
	NIIT         NIITConfig          `yaml:"niit" json:"niit"`

	FICA            FICATaxConfig         `yaml:"fica" json:"fica"`
	Medicare        MedicareConfig        `yaml:"medicare" json:"medicare"`
	State           StateTaxConfig        `yaml:"state" json:"state"`
	EarlyWithdrawal EarlyWithdrawalConfig `yaml:"early_withdrawal" json:"early_withdrawal"`
}

// StandardDeductionConfig contains base amounts, age add-ons and the senior deduction
type StandardDeductionConfig struct {
	Base              ByStatus[decimal.Decimal] `yaml:"base" json:"base"`                                 // Default: 15000 / 30000 / 15000 / 22500
	SunsetBase        ByStatus[decimal.Decimal] `yaml:"sunset_base" json:"sunset_base"`                   // Pre-TCJA amounts
	AgeAddOnMarried   decimal.Decimal           `yaml:"age_add_on_married" json:"age_add_on_married"`     // Default: 1600
	AgeAddOnUnmarried decimal.Decimal           `yaml:"age_add_on_unmarried" json:"age_add_on_unmarried"` // Default: 2000
	Senior            SeniorDeductionConfig     `yaml:"senior" json:"senior"`
}

// SeniorDeductionConfig is the temporary per-person deduction for taxpayers 65 and over
type SeniorDeductionConfig struct {
	PerPerson     decimal.Decimal           `yaml:"per_person" json:"per_person"`           // Default: 6000
	PhaseOutRate  decimal.Decimal           `yaml:"phase_out_rate" json:"phase_out_rate"`   // Default: 0.05
	FirstYear     int                       `yaml:"first_year" json:"first_year"`           // Default: 2025
	LastYear      int                       `yaml:"last_year" json:"last_year"`             // Default: 2028
	PhaseOutStart ByStatus[decimal.Decimal] `yaml:"phase_out_start" json:"phase_out_start"` // Default: 75000 / 150000 joint
	PhaseOutEnd   ByStatus[decimal.Decimal] `yaml:"phase_out_end" json:"phase_out_end"`     // Default: 195000 / 390000 joint
	AllowSeparate bool                      `yaml:"allow_separate" json:"allow_separate"`   // Default: false
}

// ItemizedConfig limits Schedule A items
type ItemizedConfig struct {
	SALTCap      ByStatus[decimal.Decimal] `yaml:"salt_cap" json:"salt_cap"`           // Default: 40000 / 20000 MFS
	MedicalFloor decimal.Decimal           `yaml:"medical_floor" json:"medical_floor"` // Default: 0.075 of AGI
}

// SocialSecurityThresholds are the provisional income tiers
type SocialSecurityThresholds struct {
	Threshold1 decimal.Decimal `yaml:"threshold_1" json:"threshold_1"` // 50% taxation begins
	Threshold2 decimal.Decimal `yaml:"threshold_2" json:"threshold_2"` // 85% taxation begins
}

// SocialSecurityRules contains benefit adjustment rules for the claiming optimizer
type SocialSecurityRules struct {
	// Early retirement reduction: 5/9 of 1% per month for first 36 months, 5/12 of 1% thereafter
	EarlyFirst36MonthsRate decimal.Decimal `yaml:"early_first_36_months_rate" json:"early_first_36_months_rate"`
	EarlyAdditionalRate    decimal.Decimal `yaml:"early_additional_rate" json:"early_additional_rate"`
	DelayedCreditMonthly   decimal.Decimal `yaml:"delayed_credit_monthly" json:"delayed_credit_monthly"`   // Default: 2/3 of 1%
	DelayedCreditPre1943   decimal.Decimal `yaml:"delayed_credit_pre_1943" json:"delayed_credit_pre_1943"` // Default: 6.5%/yr monthly
	EarliestClaimingAge    int             `yaml:"earliest_claiming_age" json:"earliest_claiming_age"`     // Default: 62
	LatestClaimingAge      int             `yaml:"latest_claiming_age" json:"latest_claiming_age"`         // Default: 70
	SurvivorMinimumFactor  decimal.Decimal `yaml:"survivor_minimum_factor" json:"survivor_minimum_factor"` // Default: 0.715 at age 60
	SurvivorEarliestAge    int             `yaml:"survivor_earliest_age" json:"survivor_earliest_age"`     // Default: 60
}

// NIITConfig is the net investment income tax
type NIITConfig struct {
	Rate       decimal.Decimal           `yaml:"rate" json:"rate"`             // Default: 0.038
	Thresholds ByStatus[decimal.Decimal] `yaml:"thresholds" json:"thresholds"` // Default: 200000 / 250000 joint / 125000 MFS
}

// FICATaxConfig contains payroll and self-employment tax parameters
type FICATaxConfig struct {
	SocialSecurityWageBase      decimal.Decimal           `yaml:"social_security_wage_base" json:"social_security_wage_base"` // Default: 176100
	SocialSecurityRate          decimal.Decimal           `yaml:"social_security_rate" json:"social_security_rate"`           // Default: 0.062
	MedicareRate                decimal.Decimal           `yaml:"medicare_rate" json:"medicare_rate"`                         // Default: 0.0145
	AdditionalMedicareRate      decimal.Decimal           `yaml:"additional_medicare_rate" json:"additional_medicare_rate"`   // Default: 0.009
	AdditionalMedicareThreshold ByStatus[decimal.Decimal] `yaml:"additional_medicare_threshold" json:"additional_medicare_threshold"`
	SelfEmploymentFactor        decimal.Decimal           `yaml:"self_employment_factor" json:"self_employment_factor"` // Default: 0.9235
}

// MedicareConfig contains the IRMAA surcharge schedule
type MedicareConfig struct {
	BasePartBPremium decimal.Decimal `yaml:"base_part_b_premium" json:"base_part_b_premium"` // Default: 185.00
	JointTiers       []IRMAATier     `yaml:"joint_tiers" json:"joint_tiers"`
	IndividualTiers  []IRMAATier     `yaml:"individual_tiers" json:"individual_tiers"`
}

// TiersFor returns the joint schedule for joint filers and the individual schedule otherwise
func (m MedicareConfig) TiersFor(f FilingStatus) []IRMAATier {
	if f.IsJoint() {
		return m.JointTiers
	}
	return m.IndividualTiers
}

// IRMAATier is a MAGI band with its monthly Part B and Part D surcharges per person
type IRMAATier struct {
	Min   decimal.Decimal `yaml:"min" json:"min"`
	Max   decimal.Decimal `yaml:"max" json:"max"`
	PartB decimal.Decimal `yaml:"part_b" json:"part_b"`
	PartD decimal.Decimal `yaml:"part_d" json:"part_d"`
}

// StateTaxConfig is a flat state income tax with a retirement exclusion and a personal credit
type StateTaxConfig struct {
	Name                 string                    `yaml:"name" json:"name"`
	Rate                 decimal.Decimal           `yaml:"rate" json:"rate"`                                     // Default: 0.0425
	ExemptSocialSecurity bool                      `yaml:"exempt_social_security" json:"exempt_social_security"` // Default: true
	ExclusionBands       []RetirementExclusionBand `yaml:"exclusion_bands" json:"exclusion_bands"`
	PersonalCredit       decimal.Decimal           `yaml:"personal_credit" json:"personal_credit"` // Per filer
	CreditIncomeLimit    ByStatus[decimal.Decimal] `yaml:"credit_income_limit" json:"credit_income_limit"`
}

// RetirementExclusionBand is the per-person exclusion limit for a birth-year cohort
type RetirementExclusionBand struct {
	BornFrom int             `yaml:"born_from" json:"born_from"` // Inclusive, 0 for no lower bound
	BornTo   int             `yaml:"born_to" json:"born_to"`     // Inclusive, 0 for no upper bound
	Limit    decimal.Decimal `yaml:"limit" json:"limit"`
}

// Contains reports whether a birth year falls in the band
func (b RetirementExclusionBand) Contains(birthYear int) bool {
	if b.BornFrom != 0 && birthYear < b.BornFrom {
		return false
	}
	if b.BornTo != 0 && birthYear > b.BornTo {
		return false
	}
	return true
}

// EarlyWithdrawalConfig is the additional tax on distributions before 59½
type EarlyWithdrawalConfig struct {
	PenaltyRate        decimal.Decimal `yaml:"penalty_rate" json:"penalty_rate"`                 // Default: 0.10
	PenaltyFreeAge     decimal.Decimal `yaml:"penalty_free_age" json:"penalty_free_age"`         // Default: 59.5
	RothSeasoningYears int             `yaml:"roth_seasoning_years" json:"roth_seasoning_years"` // Default: 5
}

// NormalizeBrackets returns a copy with contiguous bounds and an unbounded top bracket
func NormalizeBrackets(in []Bracket) []Bracket {
	out := make([]Bracket, len(in))
	copy(out, in)
	for i := range out {
		if i > 0 {
			out[i].Min = out[i-1].Max
		}
		if i == len(out)-1 && (out[i].Max.IsZero() || out[i].Max.LessThanOrEqual(out[i].Min)) {
			out[i].Max = Unbounded
		}
	}
	return out
}

// ValidateBrackets checks that a schedule starts at zero, is contiguous, has strictly
// increasing rates and ends unbounded
func ValidateBrackets(name string, brackets []Bracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("%s: no brackets", name)
	}
	if !brackets[0].Min.IsZero() {
		return fmt.Errorf("%s: first bracket must start at 0, got %s", name, brackets[0].Min)
	}
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s: bracket %d rate %s out of range", name, i, b.Rate)
		}
		if !b.Max.GreaterThan(b.Min) {
			return fmt.Errorf("%s: bracket %d max %s not above min %s", name, i, b.Max, b.Min)
		}
		if i == 0 {
			continue
		}
		prev := brackets[i-1]
		if !prev.Max.Equal(b.Min) {
			return fmt.Errorf("%s: bracket %d is not contiguous with bracket %d", name, i, i-1)
		}
		if !b.Rate.GreaterThan(prev.Rate) {
			return fmt.Errorf("%s: bracket %d rate does not increase", name, i)
		}
	}
	if !brackets[len(brackets)-1].IsTop() {
		return fmt.Errorf("%s: last bracket must be unbounded", name)
	}
	return nil
}

// ValidateTiers checks an IRMAA schedule is ascending and contiguous
func ValidateTiers(name string, tiers []IRMAATier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%s: no tiers", name)
	}
	for i := 1; i < len(tiers); i++ {
		if !tiers[i].Min.Equal(tiers[i-1].Max) {
			return fmt.Errorf("%s: tier %d is not contiguous with tier %d", name, i, i-1)
		}
		if tiers[i].PartB.LessThan(tiers[i-1].PartB) {
			return fmt.Errorf("%s: tier %d surcharge decreases", name, i)
		}
	}
	return nil
}

// Validate checks every schedule of the rule set
func (r TaxRules) Validate() error {
	statuses := []FilingStatus{Single, MarriedFilingJointly, MarriedFilingSeparately, HeadOfHousehold}
	for _, s := range statuses {
		if err := ValidateBrackets("ordinary_brackets."+string(s), r.OrdinaryBrackets.For(s)); err != nil {
			return err
		}
		if err := ValidateBrackets("sunset_brackets."+string(s), r.SunsetBrackets.For(s)); err != nil {
			return err
		}
		if err := ValidateBrackets("capital_gains."+string(s), r.CapitalGains.For(s)); err != nil {
			return err
		}
		th := r.SocialSecurityTax.For(s)
		if th.Threshold2.LessThan(th.Threshold1) {
			return fmt.Errorf("social_security_tax.%s: threshold_2 below threshold_1", s)
		}
	}
	if err := ValidateTiers("medicare.joint_tiers", r.Medicare.JointTiers); err != nil {
		return err
	}
	if err := ValidateTiers("medicare.individual_tiers", r.Medicare.IndividualTiers); err != nil {
		return err
	}
	if r.State.Rate.IsNegative() {
		return fmt.Errorf("state.rate must not be negative")
	}
	return nil
}

// Normalized returns a copy with every bracket schedule normalized
func (r TaxRules) Normalized() TaxRules {
	norm := func(b ByStatus[[]Bracket]) ByStatus[[]Bracket] {
		return ByStatus[[]Bracket]{
			Single:                  NormalizeBrackets(b.Single),
			MarriedFilingJointly:    NormalizeBrackets(b.MarriedFilingJointly),
			MarriedFilingSeparately: NormalizeBrackets(b.MarriedFilingSeparately),
			HeadOfHousehold:         NormalizeBrackets(b.HeadOfHousehold),
		}
	}
	r.OrdinaryBrackets = norm(r.OrdinaryBrackets)
	r.SunsetBrackets = norm(r.SunsetBrackets)
	r.CapitalGains = norm(r.CapitalGains)
	return r
}
