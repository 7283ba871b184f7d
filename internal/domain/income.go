package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Frequency is how often an income amount is received
type Frequency string

const (
	Yearly  Frequency = "yearly"
	Monthly Frequency = "monthly"
)

// Kind names an income source variant. It is the YAML discriminator.
type Kind string

const (
	KindWages                 Kind = "wages"
	KindBusiness              Kind = "business_income"
	KindTraditionalRetirement Kind = "traditional_retirement"
	KindPension               Kind = "pension"
	KindSocialSecurity        Kind = "social_security"
	KindLongTermGains         Kind = "long_term_capital_gains"
	KindShortTermGains        Kind = "short_term_capital_gains"
	KindQualifiedDividends    Kind = "qualified_dividends"
	KindOrdinaryDividends     Kind = "ordinary_dividends"
	KindInterest              Kind = "interest"
	KindTaxExemptInterest     Kind = "tax_exempt_interest"
	KindAnnuity               Kind = "annuity"
	KindRoth                  Kind = "roth_distribution"
	KindLifeInsurance         Kind = "life_insurance"
	KindOther                 Kind = "other"
)

var kindAliases = map[string]Kind{
	"salary":          KindWages,
	"w2":              KindWages,
	"self_employment": KindBusiness,
	"business":        KindBusiness,
	"ira":             KindTraditionalRetirement,
	"401k":            KindTraditionalRetirement,
	"tsp":             KindTraditionalRetirement,
	"traditional":     KindTraditionalRetirement,
	"ss":              KindSocialSecurity,
	"ltcg":            KindLongTermGains,
	"stcg":            KindShortTermGains,
	"dividends":       KindOrdinaryDividends,
	"municipal_bonds": KindTaxExemptInterest,
	"roth":            KindRoth,
	"other_income":    KindOther,
}

// ParseKind resolves a discriminator string. The second value is false for unknown kinds.
func ParseKind(s string) (Kind, bool) {
	key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_")))
	switch k := Kind(key); k {
	case KindWages, KindBusiness, KindTraditionalRetirement, KindPension, KindSocialSecurity,
		KindLongTermGains, KindShortTermGains, KindQualifiedDividends, KindOrdinaryDividends,
		KindInterest, KindTaxExemptInterest, KindAnnuity, KindRoth, KindLifeInsurance, KindOther:
		return k, true
	}
	k, ok := kindAliases[key]
	return k, ok
}

// IncomeSource is implemented only by the variants in this file
type IncomeSource interface {
	Base() SourceBase
	Kind() Kind
	incomeSource()
}

// SourceBase holds the fields shared by every income source
type SourceBase struct {
	ID        string          `yaml:"id,omitempty" json:"id,omitempty"`
	Name      string          `yaml:"name,omitempty" json:"name,omitempty"`
	Amount    decimal.Decimal `yaml:"amount" json:"amount"`
	Frequency Frequency       `yaml:"frequency,omitempty" json:"frequency,omitempty"` // Default: yearly
	Disabled  bool            `yaml:"-" json:"disabled,omitempty"`
	Owner     Owner           `yaml:"owner,omitempty" json:"owner,omitempty"` // Default: taxpayer
}

// Base returns the shared fields
func (b SourceBase) Base() SourceBase { return b }

func (SourceBase) incomeSource() {}

// Enabled reports whether the source contributes to any aggregate
func (b SourceBase) Enabled() bool { return !b.Disabled }

// AnnualAmount annualizes monthly amounts. Negative amounts are returned as is;
// the calculator clamps them and records a warning.
func (b SourceBase) AnnualAmount() decimal.Decimal {
	if strings.EqualFold(string(b.Frequency), string(Monthly)) {
		return b.Amount.Mul(decimal.NewFromInt(12))
	}
	return b.Amount
}

// Label returns the name, falling back to the ID
func (b SourceBase) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID
}

// Wages are W-2 earnings
type Wages struct{ SourceBase }

// BusinessIncome is net self-employment income
type BusinessIncome struct{ SourceBase }

// TraditionalRetirement is a pre-tax IRA, 401(k) or TSP distribution
type TraditionalRetirement struct {
	SourceBase
	PenaltyExempt bool
}

// Pension is a defined-benefit annuity fully taxed as ordinary income
type Pension struct{ SourceBase }

// SocialSecurityBenefit is the gross annual benefit before taxation rules
type SocialSecurityBenefit struct{ SourceBase }

// LongTermCapitalGains are net long-term gains taxed at preferential rates
type LongTermCapitalGains struct{ SourceBase }

// ShortTermCapitalGains are taxed as ordinary income
type ShortTermCapitalGains struct{ SourceBase }

// QualifiedDividends are taxed at preferential rates
type QualifiedDividends struct{ SourceBase }

// OrdinaryDividends are taxed as ordinary income
type OrdinaryDividends struct{ SourceBase }

// InterestIncome is taxable interest
type InterestIncome struct{ SourceBase }

// TaxExemptInterest stays out of AGI but enters provisional income and MAGI
type TaxExemptInterest struct{ SourceBase }

// Annuity is a commercial annuity payment. Qualified annuities are fully taxable;
// non-qualified ones exclude a share either given directly or derived from the
// investment in the contract over the expected return.
type Annuity struct {
	SourceBase
	Qualified            bool
	ExclusionRatio       *decimal.Decimal
	InvestmentInContract decimal.Decimal
	ExpectedReturn       decimal.Decimal
	PenaltyExempt        bool
}

// RothDistribution recovers contributions first, then earnings
type RothDistribution struct {
	SourceBase
	ContributionBasis     decimal.Decimal
	FirstContributionYear int
	PenaltyExempt         bool
}

// LifeInsurance is a cash-value withdrawal taxable only above the remaining cost basis
type LifeInsurance struct {
	SourceBase
	CostBasis decimal.Decimal
}

// OtherIncome is ordinary income with no penalty or payroll tax
type OtherIncome struct{ SourceBase }

func (Wages) Kind() Kind                 { return KindWages }
func (BusinessIncome) Kind() Kind        { return KindBusiness }
func (TraditionalRetirement) Kind() Kind { return KindTraditionalRetirement }
func (Pension) Kind() Kind               { return KindPension }
func (SocialSecurityBenefit) Kind() Kind { return KindSocialSecurity }
func (LongTermCapitalGains) Kind() Kind  { return KindLongTermGains }
func (ShortTermCapitalGains) Kind() Kind { return KindShortTermGains }
func (QualifiedDividends) Kind() Kind    { return KindQualifiedDividends }
func (OrdinaryDividends) Kind() Kind     { return KindOrdinaryDividends }
func (InterestIncome) Kind() Kind        { return KindInterest }
func (TaxExemptInterest) Kind() Kind     { return KindTaxExemptInterest }
func (Annuity) Kind() Kind               { return KindAnnuity }
func (RothDistribution) Kind() Kind      { return KindRoth }
func (LifeInsurance) Kind() Kind         { return KindLifeInsurance }
func (OtherIncome) Kind() Kind           { return KindOther }

// IncomeSources is the YAML-facing list of sources
type IncomeSources []IncomeSource

// sourceDocument is the flattened on-disk shape of every variant
type sourceDocument struct {
	Kind                  string           `yaml:"kind"`
	ID                    string           `yaml:"id,omitempty"`
	Name                  string           `yaml:"name,omitempty"`
	Amount                decimal.Decimal  `yaml:"amount"`
	Frequency             Frequency        `yaml:"frequency,omitempty"`
	Enabled               *bool            `yaml:"enabled,omitempty"`
	Owner                 Owner            `yaml:"owner,omitempty"`
	PenaltyExempt         bool             `yaml:"penalty_exempt,omitempty"`
	Qualified             bool             `yaml:"qualified,omitempty"`
	ExclusionRatio        *decimal.Decimal `yaml:"exclusion_ratio,omitempty"`
	InvestmentInContract  *decimal.Decimal `yaml:"investment_in_contract,omitempty"`
	ExpectedReturn        *decimal.Decimal `yaml:"expected_return,omitempty"`
	ContributionBasis     *decimal.Decimal `yaml:"contribution_basis,omitempty"`
	FirstContributionYear int              `yaml:"first_contribution_year,omitempty"`
	CostBasis             *decimal.Decimal `yaml:"cost_basis,omitempty"`
}

// UnmarshalYAML decodes a sequence of `kind`-tagged mappings. A node that is not a
// sequence yields an empty list; entries with unknown kinds are skipped so a
// file written by a newer version still loads.
func (s *IncomeSources) UnmarshalYAML(value *yaml.Node) error {
	*s = IncomeSources{}
	if value.Kind != yaml.SequenceNode {
		return nil
	}
	for i, item := range value.Content {
		var doc sourceDocument
		if err := item.Decode(&doc); err != nil {
			return fmt.Errorf("income source %d: %w", i, err)
		}
		src, err := doc.toSource()
		if err != nil {
			continue
		}
		*s = append(*s, src)
	}
	return nil
}

// MarshalYAML writes the flattened document form
func (s IncomeSources) MarshalYAML() (interface{}, error) {
	docs := make([]sourceDocument, 0, len(s))
	for _, src := range s {
		if src == nil {
			continue
		}
		docs = append(docs, documentFor(src))
	}
	return docs, nil
}

// ErrUnknownKind is returned when a source carries an unrecognised discriminator
var ErrUnknownKind = errors.New("unknown income source kind")

func (d sourceDocument) toSource() (IncomeSource, error) {
	kind, ok := ParseKind(d.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}
	base := SourceBase{
		ID:        d.ID,
		Name:      d.Name,
		Amount:    d.Amount,
		Frequency: d.Frequency,
		Owner:     d.Owner,
	}
	if d.Enabled != nil && !*d.Enabled {
		base.Disabled = true
	}
	if base.Frequency == "" {
		base.Frequency = Yearly
	}
	if base.Owner == "" {
		base.Owner = OwnerTaxpayer
	}
	switch kind {
	case KindWages:
		return Wages{base}, nil
	case KindBusiness:
		return BusinessIncome{base}, nil
	case KindTraditionalRetirement:
		return TraditionalRetirement{SourceBase: base, PenaltyExempt: d.PenaltyExempt}, nil
	case KindPension:
		return Pension{base}, nil
	case KindSocialSecurity:
		return SocialSecurityBenefit{base}, nil
	case KindLongTermGains:
		return LongTermCapitalGains{base}, nil
	case KindShortTermGains:
		return ShortTermCapitalGains{base}, nil
	case KindQualifiedDividends:
		return QualifiedDividends{base}, nil
	case KindOrdinaryDividends:
		return OrdinaryDividends{base}, nil
	case KindInterest:
		return InterestIncome{base}, nil
	case KindTaxExemptInterest:
		return TaxExemptInterest{base}, nil
	case KindAnnuity:
		return Annuity{
			SourceBase:           base,
			Qualified:            d.Qualified,
			ExclusionRatio:       d.ExclusionRatio,
			InvestmentInContract: valueOrZero(d.InvestmentInContract),
			ExpectedReturn:       valueOrZero(d.ExpectedReturn),
			PenaltyExempt:        d.PenaltyExempt,
		}, nil
	case KindRoth:
		return RothDistribution{
			SourceBase:            base,
			ContributionBasis:     valueOrZero(d.ContributionBasis),
			FirstContributionYear: d.FirstContributionYear,
			PenaltyExempt:         d.PenaltyExempt,
		}, nil
	case KindLifeInsurance:
		return LifeInsurance{SourceBase: base, CostBasis: valueOrZero(d.CostBasis)}, nil
	default:
		return OtherIncome{base}, nil
	}
}

func documentFor(src IncomeSource) sourceDocument {
	b := src.Base()
	doc := sourceDocument{
		Kind:      string(src.Kind()),
		ID:        b.ID,
		Name:      b.Name,
		Amount:    b.Amount,
		Frequency: b.Frequency,
		Owner:     b.Owner,
	}
	if b.Disabled {
		f := false
		doc.Enabled = &f
	}
	switch v := src.(type) {
	case TraditionalRetirement:
		doc.PenaltyExempt = v.PenaltyExempt
	case Annuity:
		doc.Qualified = v.Qualified
		doc.ExclusionRatio = v.ExclusionRatio
		doc.PenaltyExempt = v.PenaltyExempt
		if !v.Qualified && v.ExclusionRatio == nil {
			doc.InvestmentInContract = &v.InvestmentInContract
			doc.ExpectedReturn = &v.ExpectedReturn
		}
	case RothDistribution:
		doc.ContributionBasis = &v.ContributionBasis
		doc.FirstContributionYear = v.FirstContributionYear
		doc.PenaltyExempt = v.PenaltyExempt
	case LifeInsurance:
		doc.CostBasis = &v.CostBasis
	}
	return doc
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
