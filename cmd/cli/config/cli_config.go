package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// CLIConfig holds persisted CLI defaults. Flags always win; these fill in
// whatever a command invocation left unset.
type CLIConfig struct {
	Synthesizer string `mapstructure:"synthesizer"`
	Output      string `mapstructure:"output"`
	Format      string `mapstructure:"format"`
	LogLevel    string `mapstructure:"log_level"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Prefix    string `mapstructure:"s3_prefix"`
}

// DefaultConfig returns the built-in defaults used when no config file exists.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		Synthesizer: "statistical",
		Output:      "synthetic.csv",
		Format:      "text",
		LogLevel:    "info",
	}
}

// LoadConfig reads the CLI config file, falling back to defaults when absent.
// An empty cfgFile resolves to $HOME/.tabsynth/config.yaml. Values are also
// overridable through TABSYNTH_* environment variables.
func LoadConfig(cfgFile string) (*CLIConfig, error) {
	config := DefaultConfig()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		v.AddConfigPath(filepath.Join(home, ".tabsynth"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TABSYNTH")
	v.AutomaticEnv()

	v.SetDefault("synthesizer", config.Synthesizer)
	v.SetDefault("output", config.Output)
	v.SetDefault("format", config.Format)
	v.SetDefault("log_level", config.LogLevel)
	v.SetDefault("s3_bucket", config.S3Bucket)
	v.SetDefault("s3_prefix", config.S3Prefix)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the CLI config to disk and returns the written path. An
// empty cfgFile resolves to $HOME/.tabsynth/config.yaml, creating the
// directory when needed.
func SaveConfig(config *CLIConfig, cfgFile string) (string, error) {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		configDir := filepath.Join(home, ".tabsynth")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return "", fmt.Errorf("error creating config directory: %w", err)
		}

		cfgFile = filepath.Join(configDir, "config.yaml")
	}

	v := viper.New()
	v.Set("synthesizer", config.Synthesizer)
	v.Set("output", config.Output)
	v.Set("format", config.Format)
	v.Set("log_level", config.LogLevel)
	v.Set("s3_bucket", config.S3Bucket)
	v.Set("s3_prefix", config.S3Prefix)

	if err := v.WriteConfigAs(cfgFile); err != nil {
		return "", fmt.Errorf("error writing config file: %w", err)
	}
	return cfgFile, nil
}
