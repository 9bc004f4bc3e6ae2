package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-mtlgen/internal/dateutil"
	"github.com/alnah/go-mtlgen/internal/fileutil"
	"github.com/alnah/go-mtlgen/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxNameLength     = 100 // trainer name
	MaxStyleLength    = 64  // asset names
	MaxPatternLength  = 256
	MaxDateLength     = 30
	MaxPageSizeLength = 10 // "letter", "a4", "legal"
	MaxDurationLength = 20
	MaxWorkers        = 32
)

// configDirName is the directory under os.UserConfigDir searched by name.
const configDirName = "go-mtlgen"

// Config holds all configuration for pack generation.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	DOCX    DOCXConfig    `yaml:"docx"`
	CSS     CSSConfig     `yaml:"css"`
	Assets  AssetsConfig  `yaml:"assets"`
	Schema  SchemaConfig  `yaml:"schema"`
	PDF     PDFConfig     `yaml:"pdf"`
	Signoff SignoffConfig `yaml:"signoff"`
	Build   BuildConfig   `yaml:"build"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = "out"
}

// DOCXConfig defines Word export options.
type DOCXConfig struct {
	Template string `yaml:"template"` // .docx whose styles and sectPr are inherited; empty = blank package
}

// CSSConfig defines HTML/PDF styling options.
type CSSConfig struct {
	Style string `yaml:"style"` // name under styles/; empty = "mtl"
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets only
}

// SchemaConfig overrides task validation.
type SchemaConfig struct {
	Path           string `yaml:"path"`           // schema file (YAML or JSON)
	DatePattern    string `yaml:"datePattern"`    // meta.last_updated pattern
	VersionPattern string `yaml:"versionPattern"` // meta.version pattern
}

// PDFConfig defines PDF page settings.
type PDFConfig struct {
	PageSize string `yaml:"pageSize"` // "letter", "a4", "legal"
	Timeout  string `yaml:"timeout"`  // Go duration, e.g. "45s"
}

// SignoffConfig fills sign-off fields the task leaves blank.
type SignoffConfig struct {
	Date        string `yaml:"date"` // literal, "auto" or "auto:FORMAT"
	TrainerName string `yaml:"trainerName"`
}

// BuildConfig defines batch build options.
type BuildConfig struct {
	Workers int `yaml:"workers"` // 0 = derived from GOMAXPROCS
}

// Validate checks field lengths and enumerated values.
// Called by LoadConfig; also usable on a Config built in code.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"docx.template", c.DOCX.Template, MaxPathLength},
		{"css.style", c.CSS.Style, MaxStyleLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"schema.path", c.Schema.Path, MaxPathLength},
		{"schema.datePattern", c.Schema.DatePattern, MaxPatternLength},
		{"schema.versionPattern", c.Schema.VersionPattern, MaxPatternLength},
		{"pdf.pageSize", c.PDF.PageSize, MaxPageSizeLength},
		{"pdf.timeout", c.PDF.Timeout, MaxDurationLength},
		{"signoff.date", c.Signoff.Date, MaxDateLength},
		{"signoff.trainerName", c.Signoff.TrainerName, MaxNameLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if c.PDF.PageSize != "" {
		switch strings.ToLower(c.PDF.PageSize) {
		case "letter", "a4", "legal":
		default:
			return fmt.Errorf("%w: pdf.pageSize %q (must be letter, a4, or legal)", ErrInvalidValue, c.PDF.PageSize)
		}
	}

	if c.PDF.Timeout != "" {
		d, err := time.ParseDuration(c.PDF.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: pdf.timeout %q (must be a positive duration like 30s)", ErrInvalidValue, c.PDF.Timeout)
		}
	}

	for field, pattern := range map[string]string{
		"schema.datePattern":    c.Schema.DatePattern,
		"schema.versionPattern": c.Schema.VersionPattern,
	} {
		if pattern == "" {
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
		}
	}

	if err := dateutil.ValidateDateValue(c.Signoff.Date); err != nil {
		return fmt.Errorf("%w: signoff.date: %v", ErrInvalidValue, err)
	}

	if c.Build.Workers < 0 || c.Build.Workers > MaxWorkers {
		return fmt.Errorf("%w: build.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Build.Workers)
	}

	return nil
}

// TimeoutDuration returns pdf.timeout parsed, or zero when unset.
// Validate must have passed.
func (c *Config) TimeoutDuration() time.Duration {
	if c.PDF.Timeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.PDF.Timeout)
	return d
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns an empty configuration; every zero value means
// "use the built-in default".
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is read directly; otherwise it is a
// name searched in the current directory, then in the user config dir.
// A missing file is an error.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath tries name.yaml and name.yml in the current directory,
// then in <UserConfigDir>/go-mtlgen/.
func resolveConfigPath(name string) (string, error) {
	var candidates []string
	for _, ext := range []string{".yaml", ".yml"} {
		candidates = append(candidates, name+ext)
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range []string{".yaml", ".yml"} {
			candidates = append(candidates, filepath.Join(userDir, configDirName, name+ext))
		}
	}

	for _, p := range candidates {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(candidates, ", "))
}
