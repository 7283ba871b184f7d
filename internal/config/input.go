package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rpgo/tax-engine/internal/calculation"
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrNoClaiming is returned when a command needs the claiming block and the file has none
var ErrNoClaiming = errors.New("configuration has no claiming section")

// InputParser handles parsing of scenario files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a scenario from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a scenario document
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	warnings, err := skippedSources(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	config.Warnings = append(config.Warnings, warnings...)

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// skippedSources names the income sources the loader dropped for an unknown kind
func skippedSources(data []byte) ([]string, error) {
	var raw struct {
		IncomeSources yaml.Node `yaml:"income_sources"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.IncomeSources.Kind != yaml.SequenceNode {
		return nil, nil
	}
	var warnings []string
	for i, item := range raw.IncomeSources.Content {
		var src struct {
			Kind string `yaml:"kind"`
			ID   string `yaml:"id"`
		}
		if err := item.Decode(&src); err != nil {
			return nil, err
		}
		if _, ok := domain.ParseKind(src.Kind); ok {
			continue
		}
		label := src.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		warnings = append(warnings, fmt.Sprintf("income source %s skipped: unknown kind %q", label, src.Kind))
	}
	return warnings, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := validateAge("household.taxpayer_age", config.Household.TaxpayerAge); err != nil {
		return err
	}
	if config.Household.SpouseAge != nil {
		if err := validateAge("household.spouse_age", *config.Household.SpouseAge); err != nil {
			return err
		}
	}

	ids := make(map[string]bool)
	for i, src := range config.IncomeSources {
		if src == nil {
			continue
		}
		if err := ip.validateSource(src); err != nil {
			return fmt.Errorf("income source %d validation failed: %w", i, err)
		}
		id := src.Base().ID
		if id == "" {
			continue
		}
		if ids[id] {
			return fmt.Errorf("income source %d: duplicate id %q", i, id)
		}
		ids[id] = true
	}

	if d := config.Deductions; d != nil {
		for name, v := range map[string]decimal.Decimal{
			"state_and_local_taxes": d.StateAndLocalTaxes,
			"mortgage_interest":     d.MortgageInterest,
			"charitable":            d.Charitable,
			"medical":               d.Medical,
			"other":                 d.Other,
		} {
			if v.IsNegative() {
				return fmt.Errorf("deductions.%s cannot be negative", name)
			}
		}
	}

	if err := validateTaxYear("settings.tax_year", config.Settings.TaxYear); err != nil {
		return err
	}
	if m := config.Settings.MAGIOverride; m != nil && m.IsNegative() {
		return fmt.Errorf("settings.magi_override cannot be negative")
	}

	if config.Claiming != nil {
		if err := ip.validateClaiming(config.Claiming); err != nil {
			return fmt.Errorf("claiming validation failed: %w", err)
		}
	}
	return nil
}

// validateSource checks the fields the engine cannot repair on its own. Negative
// amounts are left to the engine, which clamps them and reports a warning.
func (ip *InputParser) validateSource(src domain.IncomeSource) error {
	b := src.Base()
	switch b.Frequency {
	case domain.Yearly, domain.Monthly:
	default:
		return fmt.Errorf("frequency must be 'yearly' or 'monthly', got %q", b.Frequency)
	}
	switch b.Owner {
	case domain.OwnerTaxpayer, domain.OwnerSpouse:
	default:
		return fmt.Errorf("owner must be 'taxpayer' or 'spouse', got %q", b.Owner)
	}
	if a, ok := src.(domain.Annuity); ok && a.ExclusionRatio != nil {
		if a.ExclusionRatio.IsNegative() || a.ExclusionRatio.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("annuity exclusion ratio must be between 0 and 1")
		}
	}
	return nil
}

// validateClaiming validates the claiming search inputs
func (ip *InputParser) validateClaiming(c *domain.ClaimingConfig) error {
	if err := validatePerson("taxpayer", c.Taxpayer); err != nil {
		return err
	}
	if c.Spouse != nil {
		if err := validatePerson("spouse", *c.Spouse); err != nil {
			return err
		}
	}

	opt := c.Optimization
	if err := validateTaxYear("optimization.tax_year", opt.TaxYear); err != nil {
		return err
	}
	if opt.DiscountRate.LessThan(decimal.NewFromFloat(-0.5)) || opt.DiscountRate.GreaterThan(decimal.NewFromFloat(0.5)) {
		return fmt.Errorf("optimization.discount_rate must be between -50%% and 50%%")
	}
	if opt.COLA.LessThan(decimal.NewFromFloat(-0.1)) || opt.COLA.GreaterThan(decimal.NewFromFloat(0.2)) {
		return fmt.Errorf("optimization.cola must be between -10%% and 20%%")
	}
	if opt.TargetBracketRate.IsNegative() || opt.TargetBracketRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("optimization.target_bracket_rate must be between 0 and 1")
	}
	if opt.Workers < 0 {
		return fmt.Errorf("optimization.workers cannot be negative")
	}
	if opt.TimeLimitSeconds < 0 {
		return fmt.Errorf("optimization.time_limit_seconds cannot be negative")
	}
	if c.MonteCarloTrials < 0 || c.MonteCarloTrials > calculation.MaxMonteCarloTrials {
		return fmt.Errorf("monte_carlo_trials must be between 0 and %d", calculation.MaxMonteCarloTrials)
	}
	return nil
}

func validatePerson(name string, p domain.PersonInfo) error {
	if err := validateAge(name+".age", p.Age); err != nil {
		return err
	}
	if p.PrimaryInsuranceAmount.IsNegative() {
		return fmt.Errorf("%s.primary_insurance_amount cannot be negative", name)
	}
	if p.LifeExpectancy != 0 && p.LifeExpectancy < p.Age {
		return fmt.Errorf("%s.life_expectancy cannot be below the current age", name)
	}
	return nil
}

func validateAge(field string, age int) error {
	if age <= 0 || age > domain.MaxAge {
		return fmt.Errorf("%s must be between 1 and %d", field, domain.MaxAge)
	}
	return nil
}

func validateTaxYear(field string, year int) error {
	if year != 0 && (year < 2000 || year > 2100) {
		return fmt.Errorf("%s must be between 2000 and 2100", field)
	}
	return nil
}

// ResolveRules applies the file's tax_rules overrides to the built-in rules
func (ip *InputParser) ResolveRules(config *domain.Configuration) (domain.TaxRules, error) {
	rules := calculation.DefaultTaxRules()
	if config == nil || config.TaxRules.Kind == 0 {
		return rules, nil
	}
	if err := config.TaxRules.Decode(&rules); err != nil {
		return domain.TaxRules{}, fmt.Errorf("failed to parse tax_rules: %w", err)
	}
	rules = rules.Normalized()
	if err := rules.Validate(); err != nil {
		return domain.TaxRules{}, fmt.Errorf("tax_rules validation failed: %w", err)
	}
	return rules, nil
}

// CreateExampleConfiguration creates an example configuration: a couple in their early
// sixties living on a pension, IRA withdrawals and a brokerage account before either
// has claimed Social Security
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	spouseAge := 61
	source := func(id, name string, amount int64, owner domain.Owner) domain.SourceBase {
		return domain.SourceBase{
			ID:        id,
			Name:      name,
			Amount:    decimal.NewFromInt(amount),
			Frequency: domain.Yearly,
			Owner:     owner,
		}
	}
	pension := source("pension", "Pension", 2750, domain.OwnerTaxpayer)
	pension.Frequency = domain.Monthly

	return &domain.Configuration{
		Household: domain.Demographics{
			TaxpayerAge:  63,
			SpouseAge:    &spouseAge,
			FilingStatus: domain.MarriedFilingJointly,
		},
		IncomeSources: domain.IncomeSources{
			domain.Pension{SourceBase: pension},
			domain.TraditionalRetirement{SourceBase: source("ira", "IRA withdrawals", 24000, domain.OwnerTaxpayer)},
			domain.Wages{SourceBase: source("wages-spouse", "Part-time wages", 18000, domain.OwnerSpouse)},
			domain.QualifiedDividends{SourceBase: source("dividends", "Brokerage dividends", 4200, domain.OwnerTaxpayer)},
			domain.LongTermCapitalGains{SourceBase: source("gains", "Fund sales", 6500, domain.OwnerTaxpayer)},
			domain.TaxExemptInterest{SourceBase: source("munis", "Municipal bonds", 1500, domain.OwnerTaxpayer)},
		},
		Settings: domain.Settings{
			TaxYear: domain.DefaultTaxYear,
		},
		FICAEnabled: true,
		Claiming: &domain.ClaimingConfig{
			Taxpayer: domain.PersonInfo{
				Name:                   "Taxpayer",
				Age:                    63,
				PrimaryInsuranceAmount: decimal.NewFromInt(2600),
				LifeExpectancy:         88,
			},
			Spouse: &domain.PersonInfo{
				Name:                   "Spouse",
				Age:                    61,
				PrimaryInsuranceAmount: decimal.NewFromInt(1400),
				LifeExpectancy:         92,
			},
			Optimization: domain.OptimizationSettings{
				TaxYear:           domain.DefaultTaxYear,
				DiscountRate:      decimal.NewFromFloat(0.03),
				COLA:              decimal.NewFromFloat(0.025),
				TargetBracketRate: decimal.NewFromFloat(0.12),
				Medicare: domain.MedicareElection{
					TaxpayerPartB: true,
					SpousePartB:   true,
				},
				Seed: 42,
			},
			MonteCarloTrials: 200,
		},
	}
}
