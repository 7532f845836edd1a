package main

import (
	"flag"
	"fmt"
	"os"
)

type Config struct {
	Port          int
	Host          string
	LogLevel      string
	LogFormat     string
	MetricsPort   int
	EnableMetrics bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	EnableRegistry   bool

	OracleURL     string
	OracleModel   string
	EnableCopilot bool

	Version bool
}

func ParseFlags() *Config {
	config := &Config{}

	flag.IntVar(&config.Port, "port", 8080, "Server port")
	flag.StringVar(&config.Host, "host", "0.0.0.0", "Server host")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&config.LogFormat, "log-format", "json", "Log format (json, text)")
	flag.IntVar(&config.MetricsPort, "metrics-port", 9090, "Prometheus metrics port")
	flag.BoolVar(&config.EnableMetrics, "enable-metrics", true, "Enable Prometheus metrics")

	flag.StringVar(&config.RedisAddr, "redis-addr", "localhost:6379", "Redis address for the dataset cache")
	flag.StringVar(&config.RedisPassword, "redis-password", "", "Redis password")
	flag.IntVar(&config.RedisDB, "redis-db", 0, "Redis database number")

	flag.BoolVar(&config.EnableRegistry, "enable-registry", false, "Enable the PostgreSQL dataset registry")
	flag.StringVar(&config.PostgresHost, "postgres-host", "localhost", "PostgreSQL host")
	flag.IntVar(&config.PostgresPort, "postgres-port", 5432, "PostgreSQL port")
	flag.StringVar(&config.PostgresDB, "postgres-db", "tabsynth", "PostgreSQL database")
	flag.StringVar(&config.PostgresUser, "postgres-user", "", "PostgreSQL user")
	flag.StringVar(&config.PostgresPassword, "postgres-password", "", "PostgreSQL password")

	flag.BoolVar(&config.EnableCopilot, "enable-copilot", true, "Enable the dataset copilot endpoints")
	flag.StringVar(&config.OracleURL, "oracle-url", "http://localhost:11434", "Text-generation oracle base URL")
	flag.StringVar(&config.OracleModel, "oracle-model", "gemma3:4b", "Text-generation oracle model")

	flag.BoolVar(&config.Version, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPrivacy-Safe Tabular Synthetic Data Server\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if config.Version {
		info := GetBuildInfo()
		fmt.Printf("Version: %s\n", info.Version)
		fmt.Printf("Git Commit: %s\n", info.GitCommit)
		fmt.Printf("Build Date: %s\n", info.BuildDate)
		fmt.Printf("Go Version: %s\n", info.GoVersion)
		fmt.Printf("Platform: %s\n", info.Platform)
		os.Exit(0)
	}

	return config
}
