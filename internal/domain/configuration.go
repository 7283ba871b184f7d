package domain

import (
	"gopkg.in/yaml.v3"
)

// Configuration is one scenario file: a household for a single tax year plus the
// optional claiming search inputs
type Configuration struct {
	Household     Demographics        `yaml:"household" json:"household"`
	IncomeSources IncomeSources       `yaml:"income_sources" json:"income_sources"`
	Deductions    *ItemizedDeductions `yaml:"deductions,omitempty" json:"deductions,omitempty"`
	Settings      Settings            `yaml:"settings" json:"settings"`
	FICAEnabled   bool                `yaml:"fica_enabled" json:"fica_enabled"`
	Claiming      *ClaimingConfig     `yaml:"claiming,omitempty" json:"claiming,omitempty"`

	// TaxRules overrides parts of the built-in rule set; keys left out keep their defaults
	TaxRules yaml.Node `yaml:"tax_rules,omitempty" json:"-"`

	// Warnings collected while loading, such as sources with an unknown kind
	Warnings []string `yaml:"-" json:"warnings,omitempty"`
}

// ClaimingConfig holds the people and settings of a claiming search
type ClaimingConfig struct {
	Taxpayer         PersonInfo           `yaml:"taxpayer" json:"taxpayer"`
	Spouse           *PersonInfo          `yaml:"spouse,omitempty" json:"spouse,omitempty"`
	Optimization     OptimizationSettings `yaml:"optimization" json:"optimization"`
	MonteCarloTrials int                  `yaml:"monte_carlo_trials,omitempty" json:"monte_carlo_trials,omitempty"` // Default: 500
}

// CalcOptions builds the options of a comprehensive calculation from the file
func (c *Configuration) CalcOptions() CalcOptions {
	settings := c.Settings
	return CalcOptions{
		Deductions:  c.Deductions,
		Settings:    &settings,
		FICAEnabled: c.FICAEnabled,
	}
}

// Sources returns the income sources as the engine consumes them
func (c *Configuration) Sources() []IncomeSource {
	return []IncomeSource(c.IncomeSources)
}

// NonBenefitSources drops Social Security entries; the claiming search supplies its own
func (c *Configuration) NonBenefitSources() []IncomeSource {
	out := make([]IncomeSource, 0, len(c.IncomeSources))
	for _, src := range c.IncomeSources {
		if src == nil || src.Kind() == KindSocialSecurity {
			continue
		}
		out = append(out, src)
	}
	return out
}
