package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mtlgen/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MTLGEN_CONFIG: config file path
	OutputDir  string        // MTLGEN_OUTPUT_DIR: default output directory
	Template   string        // MTLGEN_TEMPLATE: DOCX template path
	Style      string        // MTLGEN_STYLE: CSS style name
	Timeout    time.Duration // MTLGEN_TIMEOUT: PDF page load timeout
	Workers    int           // MTLGEN_WORKERS: parallel builders
	AssetPath  string        // MTLGEN_ASSET_PATH: custom templates/styles/schema
}

// knownEnvVars lists valid MTLGEN_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MTLGEN_CONFIG":     true,
	"MTLGEN_OUTPUT_DIR": true,
	"MTLGEN_TEMPLATE":   true,
	"MTLGEN_STYLE":      true,
	"MTLGEN_TIMEOUT":    true,
	"MTLGEN_WORKERS":    true,
	"MTLGEN_ASSET_PATH": true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable or non-positive durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MTLGEN_CONFIG"),
		OutputDir:  os.Getenv("MTLGEN_OUTPUT_DIR"),
		Template:   os.Getenv("MTLGEN_TEMPLATE"),
		Style:      os.Getenv("MTLGEN_STYLE"),
		AssetPath:  os.Getenv("MTLGEN_ASSET_PATH"),
	}

	if timeout := os.Getenv("MTLGEN_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MTLGEN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized MTLGEN_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MTLGEN_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides cfg with every env value that is set.
// Priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by resolveSettings)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Template != "" {
		cfg.DOCX.Template = env.Template
	}
	if env.Style != "" {
		cfg.CSS.Style = env.Style
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Timeout > 0 {
		cfg.PDF.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Build.Workers = env.Workers
	}
}
