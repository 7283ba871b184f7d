package cli

import (
	"github.com/rpgo/tax-engine/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewClaimingCommand creates the claiming command.
func NewClaimingCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		title      string
		target     float64
		tcjaSunset bool
	)

	cmd := &cobra.Command{
		Use:   "claiming <scenario.yaml>",
		Short: "Rank Social Security claiming ages by after-tax present value",
		Long: `Project every claiming age combination for the people in the file's claiming
section and rank them by discounted after-tax benefits net of IRMAA surcharges.
Social Security entries under income_sources are ignored; benefits come from the
primary insurance amounts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.loadScenario(args[0])
			if err != nil {
				return err
			}
			c, err := s.claimingInputs()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("target-bracket") {
				c.Optimization.TargetBracketRate = decimal.NewFromFloat(target)
			}
			if cmd.Flags().Changed("tcja-sunset") {
				c.Optimization.TCJASunset = tcjaSunset
			}

			analysis := s.engine.CalculateTaxEfficientClaimingStrategy(c.Taxpayer, c.Spouse, s.cfg.NonBenefitSources(), c.Optimization)

			report := output.NewClaimingReport(title, analysis)
			report.Assumptions = output.GenerateAssumptions(s.engine.Rules, &c.Optimization)
			report.Warnings = s.warnings
			return rootOpts.emit(cmd, report)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "report title")
	cmd.Flags().Float64Var(&target, "target-bracket", 0, "bracket rate to stay within, e.g. 0.12 (overrides the file)")
	cmd.Flags().BoolVar(&tcjaSunset, "tcja-sunset", false, "use pre-2018 brackets and deductions from 2026 (overrides the file)")
	return cmd
}
