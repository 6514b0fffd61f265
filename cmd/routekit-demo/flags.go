package main

import (
	"flag"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	MetricsPort int
	ShowVersion bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("ROUTEKIT_CONFIG", ""),
		"Path to YAML configuration file, empty for defaults (env: ROUTEKIT_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("ROUTEKIT_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: ROUTEKIT_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("ROUTEKIT_LOG_FORMAT", "text"),
		"Log format: json, text (env: ROUTEKIT_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("ROUTEKIT_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: ROUTEKIT_METRICS_PORT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
