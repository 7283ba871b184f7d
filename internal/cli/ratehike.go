package cli

import (
	"fmt"

	"github.com/rpgo/tax-engine/internal/calculation"
	"github.com/rpgo/tax-engine/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewRateHikeCommand creates the rate-hike command.
func NewRateHikeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		title string
		limit int64
		step  int64
	)

	cmd := &cobra.Command{
		Use:   "rate-hike <scenario.yaml>",
		Short: "Find how much more income fits before the marginal rate jumps",
		Long: `Scan extra ordinary income on top of the scenario and report where the
effective marginal rate (tax plus IRMAA surcharges) first jumps, and what causes it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 || step <= 0 {
				return fmt.Errorf("--limit and --step must be positive")
			}
			s, err := rootOpts.loadScenario(args[0])
			if err != nil {
				return err
			}

			opts := calculation.DefaultRateHikeOptions()
			opts.Cap = decimal.NewFromInt(limit)
			opts.Step = decimal.NewFromInt(step)

			h := s.household
			baseline := s.baseline()
			result := s.engine.FindNextRateHikeWithOptions(cmd.Context(), s.cfg.Sources(), h.TaxpayerAge, h.SpouseAge,
				h.FilingStatus, &s.cfg.Settings, opts)

			report := output.NewRateHikeReport(title, result, &baseline)
			report.Assumptions = output.GenerateAssumptions(s.engine.Rules, nil)
			report.Warnings = append(append([]string{}, s.warnings...), report.Warnings...)
			return rootOpts.emit(cmd, report)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "report title")
	cmd.Flags().Int64Var(&limit, "limit", 200000, "largest extra income to scan, in dollars")
	cmd.Flags().Int64Var(&step, "step", 500, "scan spacing, in dollars")
	return cmd
}
