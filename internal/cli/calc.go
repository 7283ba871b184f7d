package cli

import (
	"github.com/rpgo/tax-engine/internal/output"
	"github.com/spf13/cobra"
)

// NewCalcCommand creates the calc command.
func NewCalcCommand(rootOpts *RootOptions) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "calc <scenario.yaml>",
		Short: "Calculate one year of household taxes",
		Long: `Calculate federal, state and payroll taxes, taxable Social Security,
IRMAA surcharges and the effective and marginal rates for the scenario file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.loadScenario(args[0])
			if err != nil {
				return err
			}
			result := s.baseline()

			report := output.NewScenarioReport(title, result)
			report.Assumptions = output.GenerateAssumptions(s.engine.Rules, nil)
			report.Warnings = append(append([]string{}, s.warnings...), result.Warnings...)
			return rootOpts.emit(cmd, report)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "report title")
	return cmd
}
