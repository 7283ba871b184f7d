package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTaxYear is used whenever settings omit a tax year
const DefaultTaxYear = 2025

// DefaultAge is the nominal age used when an age is missing or out of range
const DefaultAge = 65

// MaxAge is the oldest age accepted as valid input
const MaxAge = 120

// FilingStatus is the federal filing status of a return
type FilingStatus string

const (
	Single                    FilingStatus = "single"
	MarriedFilingJointly      FilingStatus = "married_filing_jointly"
	MarriedFilingSeparately   FilingStatus = "married_filing_separately"
	HeadOfHousehold           FilingStatus = "head_of_household"
	QualifyingSurvivingSpouse FilingStatus = "qualifying_surviving_spouse"
)

// ParseFilingStatus accepts the canonical names plus common abbreviations.
// Anything unrecognised falls back to Single.
func ParseFilingStatus(s string) FilingStatus {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "married_filing_jointly", "mfj", "joint", "married":
		return MarriedFilingJointly
	case "married_filing_separately", "mfs", "separate":
		return MarriedFilingSeparately
	case "head_of_household", "hoh":
		return HeadOfHousehold
	case "qualifying_surviving_spouse", "qss", "qualifying_widow", "qualifying_widower":
		return QualifyingSurvivingSpouse
	default:
		return Single
	}
}

// Normalize returns the status itself when known, otherwise Single
func (f FilingStatus) Normalize() FilingStatus {
	switch f {
	case Single, MarriedFilingJointly, MarriedFilingSeparately, HeadOfHousehold, QualifyingSurvivingSpouse:
		return f
	default:
		return ParseFilingStatus(string(f))
	}
}

// IsJoint reports whether the status uses the joint tables
func (f FilingStatus) IsJoint() bool {
	switch f.Normalize() {
	case MarriedFilingJointly, QualifyingSurvivingSpouse:
		return true
	}
	return false
}

// IsMarried reports whether the married age add-on applies
func (f FilingStatus) IsMarried() bool {
	switch f.Normalize() {
	case MarriedFilingJointly, MarriedFilingSeparately, QualifyingSurvivingSpouse:
		return true
	}
	return false
}

// UnmarshalText lets YAML and JSON carry free-form status names
func (f *FilingStatus) UnmarshalText(text []byte) error {
	*f = ParseFilingStatus(string(text))
	return nil
}

// Owner identifies which member of the household receives an income source
type Owner string

const (
	OwnerTaxpayer Owner = "taxpayer"
	OwnerSpouse   Owner = "spouse"
)

// IsSpouse reports whether the source belongs to the spouse
func (o Owner) IsSpouse() bool {
	return strings.EqualFold(string(o), string(OwnerSpouse))
}

// Demographics holds the ages and filing status of the household for one tax year
type Demographics struct {
	TaxpayerAge  int          `yaml:"taxpayer_age" json:"taxpayer_age"`
	SpouseAge    *int         `yaml:"spouse_age,omitempty" json:"spouse_age,omitempty"`
	FilingStatus FilingStatus `yaml:"filing_status" json:"filing_status"`
}

// Normalized applies the age and status defaults. The second value lists what was replaced.
func (d Demographics) Normalized() (Demographics, []string) {
	var notes []string
	out := Demographics{FilingStatus: d.FilingStatus.Normalize(), TaxpayerAge: d.TaxpayerAge}
	if d.FilingStatus != "" && out.FilingStatus != d.FilingStatus {
		notes = append(notes, "unknown filing status "+string(d.FilingStatus)+", using single")
	}
	if d.TaxpayerAge <= 0 || d.TaxpayerAge > MaxAge {
		out.TaxpayerAge = DefaultAge
		notes = append(notes, "invalid taxpayer age, using 65")
	}
	if d.SpouseAge != nil {
		age := *d.SpouseAge
		if age <= 0 || age > MaxAge {
			age = DefaultAge
			notes = append(notes, "invalid spouse age, using 65")
		}
		out.SpouseAge = &age
	}
	return out, notes
}

// HasSpouse reports whether a spouse age was supplied
func (d Demographics) HasSpouse() bool {
	return d.SpouseAge != nil
}

// AgeOf returns the age of the owner of a source. Spouse-owned sources fall
// back to the taxpayer age when there is no spouse.
func (d Demographics) AgeOf(o Owner) int {
	if o.IsSpouse() && d.SpouseAge != nil {
		return *d.SpouseAge
	}
	return d.TaxpayerAge
}

// SeniorCount returns the number of people aged 65 or over counted on the return
func (d Demographics) SeniorCount() int {
	n := 0
	if d.TaxpayerAge >= 65 {
		n++
	}
	if d.SpouseAge != nil && *d.SpouseAge >= 65 && d.FilingStatus.IsJoint() {
		n++
	}
	return n
}

// MedicareElection records which Medicare parts each person is enrolled in
type MedicareElection struct {
	TaxpayerPartB bool `yaml:"taxpayer_part_b" json:"taxpayer_part_b"`
	TaxpayerPartD bool `yaml:"taxpayer_part_d" json:"taxpayer_part_d"`
	SpousePartB   bool `yaml:"spouse_part_b" json:"spouse_part_b"`
	SpousePartD   bool `yaml:"spouse_part_d" json:"spouse_part_d"`
}

// Any reports whether at least one part is elected
func (m MedicareElection) Any() bool {
	return m.TaxpayerPartB || m.TaxpayerPartD || m.SpousePartB || m.SpousePartD
}

// Settings carries the per-calculation switches
type Settings struct {
	TaxYear           int              `yaml:"tax_year" json:"tax_year"`                                           // Default: 2025
	TCJASunset        bool             `yaml:"tcja_sunset" json:"tcja_sunset"`                                     // Revert to pre-2018 tables from 2026
	Medicare          MedicareElection `yaml:"medicare" json:"medicare"`                                           // Part B/D enrollment per person
	MAGIOverride      *decimal.Decimal `yaml:"magi_override,omitempty" json:"magi_override,omitempty"`             // Replaces computed MAGI for IRMAA and phase-outs
	TaxpayerBirthYear int              `yaml:"taxpayer_birth_year,omitempty" json:"taxpayer_birth_year,omitempty"` // Overrides tax year minus age
	SpouseBirthYear   int              `yaml:"spouse_birth_year,omitempty" json:"spouse_birth_year,omitempty"`
}

// Year returns the tax year with the default applied
func (s *Settings) Year() int {
	if s == nil || s.TaxYear <= 0 {
		return DefaultTaxYear
	}
	return s.TaxYear
}

// Sunset reports whether pre-TCJA tables apply to the given settings
func (s *Settings) Sunset() bool {
	return s != nil && s.TCJASunset && s.Year() >= 2026
}

// ItemizedDeductions are Schedule A amounts. Medical is the gross amount before the AGI floor.
type ItemizedDeductions struct {
	StateAndLocalTaxes decimal.Decimal `yaml:"state_and_local_taxes" json:"state_and_local_taxes"`
	MortgageInterest   decimal.Decimal `yaml:"mortgage_interest" json:"mortgage_interest"`
	Charitable         decimal.Decimal `yaml:"charitable" json:"charitable"`
	Medical            decimal.Decimal `yaml:"medical" json:"medical"`
	Other              decimal.Decimal `yaml:"other" json:"other"`
}

// CalcOptions are the optional inputs of a comprehensive calculation
type CalcOptions struct {
	Deductions  *ItemizedDeductions
	Settings    *Settings
	FICAEnabled bool
}
