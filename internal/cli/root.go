package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rpgo/tax-engine/internal/config"
	"github.com/rpgo/tax-engine/internal/logging"
	"github.com/rpgo/tax-engine/internal/metrics"
	"github.com/rpgo/tax-engine/internal/output"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // Formatter name or alias, or "all" with an output directory
	OutputDir   string // Empty prints the report to stdout
	Workers     int
	LogLevel    string
	LogFormat   string
	MetricsFile string
	EnvFile     string

	// Set up by the root command before a subcommand runs
	Env      *config.Environment
	Logger   *slog.Logger
	Observer *metrics.Observer
	Clock    clockwork.Clock
}

// NewRootCommand creates the root command for the taxengine CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "taxengine",
		Short: "Household income tax, marginal rate and Social Security claiming analysis",
		Long: `Compute a household's federal, state and payroll tax for one year, find the next
income level where its effective marginal rate jumps, and rank Social Security
claiming ages by after-tax present value.

Scenarios are YAML files; run "taxengine example" for a starting point.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.flushMetrics()
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.StringVarP(&opts.Format, "format", "f", "console", "output format ("+strings.Join(output.AvailableFormatterNames(), "|")+"|all)")
	flags.StringVarP(&opts.OutputDir, "output-dir", "o", "", "write timestamped report files here instead of stdout")
	flags.IntVar(&opts.Workers, "workers", 0, "parallel workers for searches (0 = one per CPU)")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics for this run to a textfile-collector file")
	flags.StringVar(&opts.EnvFile, "env-file", "", "read defaults from this .env file (default ./.env)")

	// Add subcommands
	cmd.AddCommand(NewCalcCommand(opts))
	cmd.AddCommand(NewRateHikeCommand(opts))
	cmd.AddCommand(NewClaimingCommand(opts))
	cmd.AddCommand(NewMonteCarloCommand(opts))
	cmd.AddCommand(NewExampleCommand(opts))

	return cmd
}

// setup resolves flags against the environment and builds the logger and metrics observer.
// Flags given on the command line win over the environment.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	var files []string
	if o.EnvFile != "" {
		files = append(files, o.EnvFile)
	}
	env, err := config.LoadEnvironment(files...)
	if err != nil {
		return err
	}
	o.Env = env

	flags := cmd.Flags()
	if !flags.Changed("log-level") {
		o.LogLevel = env.LogLevel
	}
	if !flags.Changed("log-format") {
		o.LogFormat = env.LogFormat
	}
	if !flags.Changed("workers") {
		o.Workers = env.Workers
	}
	if !flags.Changed("output-dir") {
		o.OutputDir = env.OutputDir
	}
	if !flags.Changed("metrics-file") {
		o.MetricsFile = env.MetricsFile
	}
	if o.Verbose {
		o.LogLevel = "debug"
	}
	if o.Workers < 0 {
		return fmt.Errorf("--workers cannot be negative")
	}
	if err := o.validateFormat(); err != nil {
		return err
	}

	o.Logger = logging.InitLogger(cmd.ErrOrStderr(), o.LogLevel, o.LogFormat)
	o.Observer = metrics.NewObserver()
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return nil
}

func (o *RootOptions) validateFormat() error {
	if strings.EqualFold(strings.TrimSpace(o.Format), "all") {
		if o.OutputDir == "" {
			return fmt.Errorf("--format all needs --output-dir")
		}
		return nil
	}
	if output.GetFormatterByName(o.Format) == nil {
		return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", output.ErrUnsupportedFormat, o.Format,
			strings.Join(output.AvailableFormatterNames(), ", "), strings.Join(output.AvailableFormatAliases(), ", "))
	}
	return nil
}

func (o *RootOptions) flushMetrics() error {
	if o.MetricsFile == "" || o.Observer == nil {
		return nil
	}
	if err := o.Observer.WriteTextfile(o.MetricsFile); err != nil {
		return err
	}
	o.Logger.Debug("metrics written", "file", o.MetricsFile)
	return nil
}
