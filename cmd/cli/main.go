package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synthworks/tabsynth/cmd/cli/commands"
	"github.com/synthworks/tabsynth/cmd/cli/config"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tabsynth",
		Short: "Privacy-Safe Tabular Synthetic Data CLI",
		Long: `A command-line interface for training tabular generative models and
producing privacy-safe synthetic datasets with anomaly injection,
leakage protection, and deduplication.`,
		Version: "0.1.0",
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tabsynth/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Initialize Viper
	cobra.OnInitialize(initConfig)

	// Add commands
	rootCmd.AddCommand(commands.NewTrainCmd())
	rootCmd.AddCommand(commands.NewGenerateCmd())
	rootCmd.AddCommand(commands.NewAnalyzeCmd())
	rootCmd.AddCommand(commands.NewConfigCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	cfg, err := config.LoadConfig(cfgFile)
	cobra.CheckErr(err)
	commands.ApplyConfig(cfg)

	if verbose && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", cfgFile)
	}
}
