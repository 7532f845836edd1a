package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synthworks/tabsynth/cmd/cli/config"
)

// cliConfig holds the persisted CLI defaults, installed by ApplyConfig before
// any command runs. Flags always take precedence.
var cliConfig = config.DefaultConfig()

// ApplyConfig installs loaded CLI defaults for all commands.
func ApplyConfig(cfg *config.CLIConfig) {
	if cfg != nil {
		cliConfig = cfg
	}
}

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialize the CLI configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(cliConfig)
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to disk",
		Long: `Write the effective configuration (built-in defaults merged with any
loaded config file and TABSYNTH_* environment overrides) so it can be edited.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.SaveConfig(cliConfig, file)
			if err != nil {
				return err
			}
			fmt.Printf("Config written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Target path (default is $HOME/.tabsynth/config.yaml)")

	return cmd
}
