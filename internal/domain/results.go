package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// BracketInfo describes one ordinary bracket in a result
type BracketInfo struct {
	Min       decimal.Decimal `json:"min"`
	Max       decimal.Decimal `json:"max"`
	Rate      decimal.Decimal `json:"rate"`
	Unbounded bool            `json:"unbounded"`
}

// DeductionBreakdown is the standard deduction split into its parts
type DeductionBreakdown struct {
	Base                 decimal.Decimal `json:"base"`
	AgeAddOn             decimal.Decimal `json:"age_add_on"`
	Senior               decimal.Decimal `json:"senior"`
	SeniorBeforePhaseOut decimal.Decimal `json:"senior_before_phase_out"`
	QualifyingSeniors    int             `json:"qualifying_seniors"`
	Total                decimal.Decimal `json:"total"`
}

// DeductionDetail records which deduction won
type DeductionDetail struct {
	Type     string             `json:"type"` // "standard" or "itemized"
	Standard DeductionBreakdown `json:"standard"`
	Itemized decimal.Decimal    `json:"itemized"`
	Amount   decimal.Decimal    `json:"amount"`
}

// SocialSecurityTaxation is the outcome of the provisional income test
type SocialSecurityTaxation struct {
	Benefits          decimal.Decimal `json:"benefits"`
	ProvisionalIncome decimal.Decimal `json:"provisional_income"`
	Taxable           decimal.Decimal `json:"taxable"`
	Tier              string          `json:"tier"` // I, II or III
	PercentTaxable    decimal.Decimal `json:"percent_taxable"`
	Threshold1        decimal.Decimal `json:"threshold_1"`
	Threshold2        decimal.Decimal `json:"threshold_2"`
}

// StackResult is the tax on a slice of preferential income stacked above a base
type StackResult struct {
	Amount        decimal.Decimal `json:"amount"`
	Tax           decimal.Decimal `json:"tax"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	MarginalRate  decimal.Decimal `json:"marginal_rate"`
	BracketLabel  string          `json:"bracket_label"`
}

// CapitalGainsDetail reports how preferential income was taxed
type CapitalGainsDetail struct {
	LongTermGains       decimal.Decimal `json:"long_term_gains"`
	QualifiedDividends  decimal.Decimal `json:"qualified_dividends"`
	Gains               StackResult     `json:"gains"`
	Dividends           StackResult     `json:"dividends"`
	TaxedAtZero         decimal.Decimal `json:"taxed_at_zero"`
	TaxedAtFifteen      decimal.Decimal `json:"taxed_at_fifteen"`
	TaxedAtTwenty       decimal.Decimal `json:"taxed_at_twenty"`
	Tax                 decimal.Decimal `json:"tax"`
	NetInvestmentIncome decimal.Decimal `json:"net_investment_income"`
	NIIT                decimal.Decimal `json:"niit"`
}

// IRMAADetail is the Medicare surcharge tier and its cost
type IRMAADetail struct {
	MAGI             decimal.Decimal `json:"magi"`
	TierIndex        int             `json:"tier_index"`
	Tier             IRMAATier       `json:"tier"`
	EnrolledParts    int             `json:"enrolled_parts"`
	MonthlySurcharge decimal.Decimal `json:"monthly_surcharge"`
	AnnualSurcharge  decimal.Decimal `json:"annual_surcharge"`
}

// StateTaxDetail is the state liability
type StateTaxDetail struct {
	Name                string          `json:"name"`
	Rate                decimal.Decimal `json:"rate"`
	RetirementIncome    decimal.Decimal `json:"retirement_income"`
	RetirementExclusion decimal.Decimal `json:"retirement_exclusion"`
	TaxableIncome       decimal.Decimal `json:"taxable_income"`
	GrossTax            decimal.Decimal `json:"gross_tax"`
	Credit              decimal.Decimal `json:"credit"`
	NetTax              decimal.Decimal `json:"net_tax"`
}

// PayrollTaxDetail is FICA and self-employment tax
type PayrollTaxDetail struct {
	Enabled            bool            `json:"enabled"`
	SocialSecurity     decimal.Decimal `json:"social_security"`
	Medicare           decimal.Decimal `json:"medicare"`
	SelfEmployment     decimal.Decimal `json:"self_employment"`
	AdditionalMedicare decimal.Decimal `json:"additional_medicare"`
	Total              decimal.Decimal `json:"total"`
}

// SourceBreakdown is one source after adjustments
type SourceBreakdown struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Kind    Kind            `json:"kind"`
	Owner   Owner           `json:"owner"`
	Annual  decimal.Decimal `json:"annual"`
	Taxable decimal.Decimal `json:"taxable"`
	TaxFree decimal.Decimal `json:"tax_free"`
	Penalty decimal.Decimal `json:"penalty"`
}

// ScenarioResult is the full outcome of one comprehensive calculation
type ScenarioResult struct {
	TaxYear      int          `json:"tax_year"`
	FilingStatus FilingStatus `json:"filing_status"`
	TaxpayerAge  int          `json:"taxpayer_age"`
	SpouseAge    *int         `json:"spouse_age,omitempty"`

	TotalIncome    decimal.Decimal `json:"total_income"`
	TaxFreeIncome  decimal.Decimal `json:"tax_free_income"`
	OrdinaryIncome decimal.Decimal `json:"ordinary_income"`
	EarnedIncome   decimal.Decimal `json:"earned_income"`
	AGI            decimal.Decimal `json:"agi"`
	MAGI           decimal.Decimal `json:"magi"`

	Deduction                 DeductionDetail `json:"deduction"`
	TaxableIncome             decimal.Decimal `json:"taxable_income"`
	OrdinaryTaxableIncome     decimal.Decimal `json:"ordinary_taxable_income"`
	PreferentialTaxableIncome decimal.Decimal `json:"preferential_taxable_income"`

	OrdinaryTax            decimal.Decimal    `json:"ordinary_tax"`
	CapitalGains           CapitalGainsDetail `json:"capital_gains"`
	NIIT                   decimal.Decimal    `json:"niit"`
	FederalTax             decimal.Decimal    `json:"federal_tax"`
	EarlyWithdrawalPenalty decimal.Decimal    `json:"early_withdrawal_penalty"`
	State                  StateTaxDetail     `json:"state"`
	Payroll                PayrollTaxDetail   `json:"payroll"`
	TotalTax               decimal.Decimal    `json:"total_tax"`

	SocialSecurity SocialSecurityTaxation `json:"social_security"`
	IRMAA          IRMAADetail            `json:"irmaa"`

	EffectiveRate             decimal.Decimal `json:"effective_rate"`
	MarginalRate              decimal.Decimal `json:"marginal_rate"`
	CurrentBracket            BracketInfo     `json:"current_bracket"`
	NextBracket               *BracketInfo    `json:"next_bracket,omitempty"`
	AmountToNextBracket       decimal.Decimal `json:"amount_to_next_bracket"`
	AmountToNextBracketIncome decimal.Decimal `json:"amount_to_next_bracket_income"`

	Sources  []SourceBreakdown `json:"sources"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Burden is total tax plus the annual IRMAA surcharge
func (r ScenarioResult) Burden() decimal.Decimal {
	return r.TotalTax.Add(r.IRMAA.AnnualSurcharge)
}

// RateHikeResult locates the next income level where the effective marginal rate jumps
type RateHikeResult struct {
	AmountToNextHike decimal.Decimal `json:"amount_to_next_hike"`
	CurrentRate      decimal.Decimal `json:"current_rate"`
	NextRate         decimal.Decimal `json:"next_rate"`
	Causes           []string        `json:"causes"`
	Cause            string          `json:"cause"`
	Method           string          `json:"method"` // "scan" or "bracket-fallback"
	Evaluations      int             `json:"evaluations"`
	BaselineIncome   decimal.Decimal `json:"baseline_income"`
}

// PersonInfo describes one claimant
type PersonInfo struct {
	Name                   string          `yaml:"name" json:"name"`
	Age                    int             `yaml:"age" json:"age"`
	BirthYear              int             `yaml:"birth_year,omitempty" json:"birth_year,omitempty"`         // Defaults to tax year minus age
	PrimaryInsuranceAmount decimal.Decimal `yaml:"primary_insurance_amount" json:"primary_insurance_amount"` // Monthly benefit at full retirement age
	LifeExpectancy         int             `yaml:"life_expectancy" json:"life_expectancy"`                   // Default: 85
}

// OptimizationSettings controls the claiming search
type OptimizationSettings struct {
	FilingStatus      FilingStatus        `yaml:"filing_status" json:"filing_status"`
	TaxYear           int                 `yaml:"tax_year" json:"tax_year"`                       // First projection year
	DiscountRate      decimal.Decimal     `yaml:"discount_rate" json:"discount_rate"`             // Default: 0.03
	COLA              decimal.Decimal     `yaml:"cola" json:"cola"`                               // Default: 0.025
	TargetBracketRate decimal.Decimal     `yaml:"target_bracket_rate" json:"target_bracket_rate"` // Zero disables violations and conversion flags
	Medicare          MedicareElection    `yaml:"medicare" json:"medicare"`                       // Applied from age 65
	TCJASunset        bool                `yaml:"tcja_sunset" json:"tcja_sunset"`
	Deductions        *ItemizedDeductions `yaml:"deductions,omitempty" json:"deductions,omitempty"`
	Workers           int                 `yaml:"workers,omitempty" json:"workers,omitempty"`
	TimeLimitSeconds  int                 `yaml:"time_limit_seconds,omitempty" json:"time_limit_seconds,omitempty"` // Monte Carlo only
	Seed              int64               `yaml:"seed,omitempty" json:"seed,omitempty"`                             // Monte Carlo only
}

// ClaimingYear is one projected year of a strategy
type ClaimingYear struct {
	Year             int             `json:"year"`
	TaxpayerAge      int             `json:"taxpayer_age"`
	SpouseAge        int             `json:"spouse_age,omitempty"`
	FilingStatus     FilingStatus    `json:"filing_status"`
	Benefits         decimal.Decimal `json:"benefits"`
	TaxableBenefits  decimal.Decimal `json:"taxable_benefits"`
	IncrementalTax   decimal.Decimal `json:"incremental_tax"`
	AfterTaxBenefits decimal.Decimal `json:"after_tax_benefits"`
	PresentValue     decimal.Decimal `json:"present_value"`
	IRMAASurcharge   decimal.Decimal `json:"irmaa_surcharge"`
	MarginalRate     decimal.Decimal `json:"marginal_rate"`
}

// RothConversionOpportunity is a year with room left in the target bracket
type RothConversionOpportunity struct {
	Year        int             `json:"year"`
	TaxpayerAge int             `json:"taxpayer_age"`
	BracketRate decimal.Decimal `json:"bracket_rate"`
	Headroom    decimal.Decimal `json:"headroom"`
}

// ClaimingStrategy is one pair of claiming ages and its projected value
type ClaimingStrategy struct {
	TaxpayerClaimingAge    int                         `json:"taxpayer_claiming_age"`
	SpouseClaimingAge      int                         `json:"spouse_claiming_age,omitempty"`
	TaxpayerMonthlyBenefit decimal.Decimal             `json:"taxpayer_monthly_benefit"`
	SpouseMonthlyBenefit   decimal.Decimal             `json:"spouse_monthly_benefit"`
	LifetimeBenefits       decimal.Decimal             `json:"lifetime_benefits"`
	LifetimeAfterTax       decimal.Decimal             `json:"lifetime_after_tax"`
	PresentValue           decimal.Decimal             `json:"present_value"`
	IRMAAImpact            decimal.Decimal             `json:"irmaa_impact"`
	NetValue               decimal.Decimal             `json:"net_value"`
	BracketViolations      int                         `json:"bracket_violations"`
	RothConversions        []RothConversionOpportunity `json:"roth_conversions"`
	OptimizationScore      decimal.Decimal             `json:"optimization_score"`
	Years                  []ClaimingYear              `json:"years,omitempty"`
}

// Label renders the claiming ages as "67" or "67/70"
func (c ClaimingStrategy) Label() string {
	if c.SpouseClaimingAge == 0 {
		return strconv.Itoa(c.TaxpayerClaimingAge)
	}
	return strconv.Itoa(c.TaxpayerClaimingAge) + "/" + strconv.Itoa(c.SpouseClaimingAge)
}

// ClaimingAnalysis is the ranked outcome of the claiming search
type ClaimingAnalysis struct {
	BestStrategy     ClaimingStrategy   `json:"best_strategy"`
	WorstStrategy    ClaimingStrategy   `json:"worst_strategy"`
	EarliestStrategy ClaimingStrategy   `json:"earliest_strategy"`
	Strategies       []ClaimingStrategy `json:"strategies"`
	GainOverEarliest decimal.Decimal    `json:"gain_over_earliest"`
	BreakevenAge     int                `json:"breakeven_age,omitempty"`
	Recommendations  []string           `json:"recommendations"`
	Evaluations      int                `json:"evaluations"`
}

// PercentileRanges holds P10 through P90 of a sample
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// ClaimingFrequency counts how often a pair of ages won across trials
type ClaimingFrequency struct {
	Strategy string          `json:"strategy"`
	Count    int             `json:"count"`
	Percent  decimal.Decimal `json:"percent"`
}

// RiskMetrics summarises the spread of trial outcomes
type RiskMetrics struct {
	Mean                   decimal.Decimal `json:"mean"`
	StandardDeviation      decimal.Decimal `json:"standard_deviation"`
	Min                    decimal.Decimal `json:"min"`
	Max                    decimal.Decimal `json:"max"`
	CoefficientOfVariation decimal.Decimal `json:"coefficient_of_variation"`
	BaseStrategyAgreement  decimal.Decimal `json:"base_strategy_agreement"`
}

// MonteCarloAnalysis is the outcome of the perturbed claiming search
type MonteCarloAnalysis struct {
	RequestedTrials  int                 `json:"requested_trials"`
	CompletedTrials  int                 `json:"completed_trials"`
	Seed             int64               `json:"seed"`
	BaseStrategy     string              `json:"base_strategy"`
	ValuePercentiles PercentileRanges    `json:"value_percentiles"`
	Frequencies      []ClaimingFrequency `json:"frequencies"`
	Risk             RiskMetrics         `json:"risk"`
	TimedOut         bool                `json:"timed_out"`
}
