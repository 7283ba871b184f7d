package cli

import (
	"fmt"

	"github.com/rpgo/tax-engine/internal/calculation"
	"github.com/rpgo/tax-engine/internal/output"
	"github.com/spf13/cobra"
)

// NewMonteCarloCommand creates the montecarlo command.
func NewMonteCarloCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		title     string
		trials    int
		seed      int64
		timeLimit int
	)

	cmd := &cobra.Command{
		Use:   "montecarlo <scenario.yaml>",
		Short: "Test the claiming recommendation against randomized assumptions",
		Long: `Rerun the claiming search under perturbed discount rates, COLAs and life
expectancies and report how often the base recommendation still wins.

Trial count and seed come from the flags, then the file, then TAXENGINE_MC_TRIALS
and TAXENGINE_MC_SEED.`,
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

			n := rootOpts.Env.MCTrials
			if c.MonteCarloTrials > 0 {
				n = c.MonteCarloTrials
			}
			if cmd.Flags().Changed("trials") {
				n = trials
			}
			if n <= 0 || n > calculation.MaxMonteCarloTrials {
				return fmt.Errorf("trials must be between 1 and %d, got %d", calculation.MaxMonteCarloTrials, n)
			}

			if c.Optimization.Seed == 0 {
				c.Optimization.Seed = rootOpts.Env.MCSeed
			}
			if cmd.Flags().Changed("seed") {
				c.Optimization.Seed = seed
			}
			if cmd.Flags().Changed("time-limit") {
				c.Optimization.TimeLimitSeconds = timeLimit
			}

			analysis := s.engine.RunMonteCarloAnalysis(cmd.Context(), c.Taxpayer, c.Spouse, s.cfg.NonBenefitSources(), c.Optimization, n)
			if analysis.TimedOut {
				rootOpts.Logger.Warn("monte carlo stopped early", "completed", analysis.CompletedTrials, "requested", analysis.RequestedTrials)
			}

			report := output.NewMonteCarloReport(title, analysis)
			report.Assumptions = output.GenerateAssumptions(s.engine.Rules, &c.Optimization)
			report.Warnings = s.warnings
			return rootOpts.emit(cmd, report)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "report title")
	cmd.Flags().IntVarP(&trials, "trials", "n", calculation.DefaultMonteCarloTrials, "number of trials")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().IntVar(&timeLimit, "time-limit", 0, "stop after this many seconds and report completed trials")
	return cmd
}
