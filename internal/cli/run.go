package cli

import (
	"fmt"

	"github.com/rpgo/tax-engine/internal/calculation"
	"github.com/rpgo/tax-engine/internal/config"
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/rpgo/tax-engine/internal/logging"
	"github.com/rpgo/tax-engine/internal/output"
	"github.com/spf13/cobra"
)

// scenario is a loaded file with the engine built for its rules
type scenario struct {
	cfg       *domain.Configuration
	household domain.Demographics
	engine    *calculation.Engine
	warnings  []string
}

func (o *RootOptions) loadScenario(path string) (*scenario, error) {
	parser := config.NewInputParser()
	cfg, err := parser.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	rules, err := parser.ResolveRules(cfg)
	if err != nil {
		return nil, err
	}

	household, notes := cfg.Household.Normalized()
	warnings := append(append([]string{}, cfg.Warnings...), notes...)
	for _, w := range warnings {
		o.Logger.Warn("scenario", "file", path, "warning", w)
	}

	engine := calculation.NewEngineWithRules(rules)
	engine.Workers = o.Workers
	engine.SetLogger(logging.NewSlogAdapter(o.Logger))
	engine.SetObserver(o.Observer)

	o.Logger.Debug("scenario loaded", "file", path, "sources", len(cfg.IncomeSources),
		"filing_status", household.FilingStatus, "rules_year", rules.Year)
	return &scenario{cfg: cfg, household: household, engine: engine, warnings: warnings}, nil
}

// baseline runs the comprehensive calculation for the file as written
func (s *scenario) baseline() domain.ScenarioResult {
	h := s.household
	return s.engine.CalculateComprehensiveTaxes(s.cfg.Sources(), h.TaxpayerAge, h.SpouseAge, h.FilingStatus, s.cfg.CalcOptions())
}

// claimingInputs returns the claiming block with household defaults filled in
func (s *scenario) claimingInputs() (*domain.ClaimingConfig, error) {
	if s.cfg.Claiming == nil {
		return nil, config.ErrNoClaiming
	}
	c := *s.cfg.Claiming
	if c.Optimization.FilingStatus == "" {
		c.Optimization.FilingStatus = s.household.FilingStatus
	}
	if c.Optimization.TaxYear <= 0 {
		c.Optimization.TaxYear = s.cfg.Settings.TaxYear
	}
	if c.Optimization.Deductions == nil {
		c.Optimization.Deductions = s.cfg.Deductions
	}
	if c.Optimization.Workers <= 0 {
		c.Optimization.Workers = s.engine.Workers
	}
	return &c, nil
}

// emit prints the report or, with an output directory, writes it to timestamped files
func (o *RootOptions) emit(cmd *cobra.Command, report *output.Report) error {
	if o.OutputDir != "" {
		w := &output.Writer{Dir: o.OutputDir, Clock: o.Clock}
		files, err := w.GenerateReport(report, o.Format)
		if err != nil {
			return err
		}
		for _, f := range files {
			o.Logger.Info("report written", "file", f)
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	}

	f := output.GetFormatterByName(o.Format)
	if f == nil {
		return fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, o.Format)
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
