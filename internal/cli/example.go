package cli

import (
	"fmt"

	"github.com/rpgo/tax-engine/internal/config"
	"github.com/rpgo/tax-engine/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewExampleCommand creates the example command.
func NewExampleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "example [path]",
		Short: "Write an example scenario file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewInputParser().CreateExampleConfiguration()
			if len(args) == 1 {
				if err := output.SaveConfiguration(cfg, args[0]); err != nil {
					return err
				}
				rootOpts.Logger.Info("example scenario written", "file", args[0])
				return nil
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
