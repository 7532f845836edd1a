package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synthworks/tabsynth/cmd/cli/config"
	"github.com/synthworks/tabsynth/internal/generators"
	"github.com/synthworks/tabsynth/internal/storage/implementations/file"
	"github.com/synthworks/tabsynth/internal/storage/implementations/s3"
	"github.com/synthworks/tabsynth/internal/synthesis"
	"github.com/synthworks/tabsynth/pkg/models"
)

type GenerateOptions struct {
	ModelPath    string
	Synthesizer  string
	OriginalFile string
	Count        int
	MaxAttempts  int
	Anomalies    string
	OutputFile   string
	S3Bucket     string
	S3Prefix     string
	LogLevel     string
}

func NewGenerateCmd() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate privacy-safe synthetic tabular data",
		Long: `Generate synthetic rows from a trained model. Each pass over-requests
candidate rows, optionally injects anomalies, removes rows that exactly match
the original dataset, and deduplicates into the result set until the target
count is reached or the attempt budget runs out.

A run that exhausts its budget still writes everything it collected and
exits zero; only a sampling failure aborts without an artifact.`,
		Example: `  # Generate 1000 rows from a trained model
  tabsynth generate --model customers.model.json --count 1000 --output synthetic.csv

  # Generate with leakage protection against the original data
  tabsynth generate --model customers.model.json --original customers.csv --count 1000 --output synthetic.csv

  # Inject anomalies into 5%% of rows per rule
  tabsynth generate --model m.json --count 500 --anomalies '[{"column":"balance","type":"null"}]' --output out.csv

  # Upload the artifact to S3 as well
  tabsynth generate --model m.json --count 500 --output out.csv --s3-bucket artifacts --s3-prefix runs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ModelPath, "model", "m", "", "Trained model artifact path")
	cmd.Flags().StringVarP(&opts.Synthesizer, "synthesizer", "s", "", "Synthesizer type (statistical, empirical)")
	cmd.Flags().StringVar(&opts.OriginalFile, "original", "", "Original dataset for leakage protection (CSV or JSON)")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1000, "Number of synthetic rows to generate")
	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 0, "Attempt budget for the generation loop (0 = default)")
	cmd.Flags().StringVar(&opts.Anomalies, "anomalies", "", "Anomaly rules as a JSON array")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "Output file (CSV or JSON)")
	cmd.Flags().StringVar(&opts.S3Bucket, "s3-bucket", "", "Also upload the artifact to this S3 bucket")
	cmd.Flags().StringVar(&opts.S3Prefix, "s3-prefix", "", "Key prefix for the S3 upload")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.MarkFlagRequired("model")

	return cmd
}

// applyDefaults fills flags the invocation left unset from the CLI config.
func (o *GenerateOptions) applyDefaults(cfg *config.CLIConfig) {
	if o.Synthesizer == "" {
		o.Synthesizer = cfg.Synthesizer
	}
	if o.OutputFile == "" {
		o.OutputFile = cfg.Output
	}
	if o.LogLevel == "" {
		o.LogLevel = cfg.LogLevel
	}
	if o.S3Bucket == "" {
		o.S3Bucket = cfg.S3Bucket
	}
	if o.S3Prefix == "" {
		o.S3Prefix = cfg.S3Prefix
	}
}

func runGenerate(opts *GenerateOptions) error {
	opts.applyDefaults(cliConfig)
	logger := newLogger(opts.LogLevel)
	ctx := context.Background()

	rules, err := models.ParseAnomalyRules(opts.Anomalies)
	if err != nil {
		return fmt.Errorf("invalid anomaly rules: %w", err)
	}

	store, err := file.NewDatasetStore(nil, logger)
	if err != nil {
		return err
	}

	var original *models.Dataset
	if opts.OriginalFile != "" {
		original, err = store.ReadDataset(ctx, opts.OriginalFile)
		if err != nil {
			return fmt.Errorf("failed to read original dataset: %w", err)
		}
	}

	factory := generators.NewFactory(logger)
	synth, err := factory.CreateSynthesizer(opts.Synthesizer)
	if err != nil {
		return err
	}
	defer synth.Close()

	if err := synth.Load(opts.ModelPath); err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	pipeline, err := synthesis.NewPipeline(synth,
		&synthesis.PipelineConfig{MaxAttempts: opts.MaxAttempts}, logger, nil)
	if err != nil {
		return err
	}

	req := &models.GenerationRequest{
		ID:          uuid.NewString(),
		TargetCount: opts.Count,
		MaxAttempts: opts.MaxAttempts,
		Rules:       rules,
		Original:    original,
		CreatedAt:   time.Now(),
	}

	result, runErr := pipeline.Run(ctx, req)
	if runErr != nil {
		// Sampling failure: no artifact is written.
		if result != nil {
			return fmt.Errorf("generation failed after %d attempts: %w", result.AttemptsMade, runErr)
		}
		return runErr
	}

	if result.Status == models.StatusPartial {
		logger.WithFields(logrus.Fields{
			"collected": result.RowCount,
			"target":    opts.Count,
			"shortfall": result.Shortfall,
		}).Warn("Attempt budget exhausted, writing partial result")
	}

	artifact := result.Dataset("synthetic")
	if err := store.WriteDataset(ctx, opts.OutputFile, artifact); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if opts.S3Bucket != "" {
		if err := uploadArtifact(ctx, opts, artifact, logger); err != nil {
			return fmt.Errorf("failed to upload artifact: %w", err)
		}
	}

	fmt.Printf("Generation completed: %s\n", result.Status)
	fmt.Printf("Rows written: %d (attempts: %d, leaked removed: %d)\n",
		result.RowCount, result.AttemptsMade, result.LeakedRemoved)
	if result.Shortfall > 0 {
		fmt.Printf("Shortfall: %d rows below target\n", result.Shortfall)
	}
	return nil
}

func uploadArtifact(ctx context.Context, opts *GenerateOptions, artifact *models.Dataset, logger *logrus.Logger) error {
	sink, err := s3.NewSink(&s3.SinkConfig{
		Bucket: opts.S3Bucket,
		Prefix: opts.S3Prefix,
	}, logger)
	if err != nil {
		return err
	}
	if err := sink.Connect(ctx); err != nil {
		return err
	}
	defer sink.Close()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(artifact.Columns); err != nil {
		return err
	}
	record := make([]string, len(artifact.Columns))
	for _, row := range artifact.Rows {
		for i, col := range artifact.Columns {
			record[i] = models.FormatValue(row[col])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	location, err := sink.PutArtifact(ctx, fmt.Sprintf("%s-%s.csv", artifact.Name, artifact.ID), buf.Bytes())
	if err != nil {
		return err
	}

	fmt.Printf("Artifact uploaded to %s\n", location)
	return nil
}
