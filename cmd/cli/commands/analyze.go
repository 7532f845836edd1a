package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synthworks/tabsynth/cmd/cli/config"
	"github.com/synthworks/tabsynth/internal/analytics"
	"github.com/synthworks/tabsynth/internal/metadata"
	"github.com/synthworks/tabsynth/internal/storage/implementations/file"
)

type AnalyzeOptions struct {
	InputFile  string
	OutputFile string
	Format     string
	LogLevel   string
}

func NewAnalyzeCmd() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute descriptive statistics and column metadata for a dataset",
		Long: `Analyze a tabular dataset: per-column statistics (moments for numeric
columns, top values for categorical ones), detected column kinds, and
personal-data tags derived from column names.`,
		Example: `  # Print a summary to stdout
  tabsynth analyze --input customers.csv

  # Write the full report as JSON
  tabsynth analyze --input customers.csv --format json --output report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Dataset file (CSV or JSON)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Output format (text, json)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.MarkFlagRequired("input")

	return cmd
}

func (o *AnalyzeOptions) applyDefaults(cfg *config.CLIConfig) {
	if o.Format == "" {
		o.Format = cfg.Format
	}
}

type analyzeReport struct {
	Stats    *analytics.DatasetStats `json:"stats"`
	Metadata *metadata.TableMetadata `json:"metadata"`
}

func runAnalyze(opts *AnalyzeOptions) error {
	opts.applyDefaults(cliConfig)
	logger := newLogger(opts.LogLevel)
	ctx := context.Background()

	store, err := file.NewDatasetStore(nil, logger)
	if err != nil {
		return err
	}

	dataset, err := store.ReadDataset(ctx, opts.InputFile)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	report := &analyzeReport{
		Stats:    analytics.Describe(dataset),
		Metadata: metadata.NewDetector(logger).Detect(dataset),
	}

	output := os.Stdout
	if opts.OutputFile != "-" {
		output, err = os.Create(opts.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	switch opts.Format {
	case "json":
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "text":
		fmt.Fprint(output, report.Stats.ContextBlock())
		for _, col := range report.Metadata.Columns {
			if col.PIIType != "" {
				fmt.Fprintf(output, "! %s looks like personal data (%s); values will be replaced with surrogates\n",
					col.Name, col.PIIType)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}
