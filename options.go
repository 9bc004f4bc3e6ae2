package mtlgen

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Option configures a Renderer, PDFExporter or Builder.
type Option func(*config)

// config holds settings shared by every component built from options.
type config struct {
	timeout      time.Duration
	assetPath    string
	assetLoader  AssetLoader
	logger       *zap.Logger
	docxTemplate string
	style        string
	pageSize     string

	// pdfRenderer replaces headless Chrome; set by tests.
	pdfRenderer pdfRenderer
}

// defaultTimeout bounds a PDF page load when the context has no deadline.
const defaultTimeout = 30 * time.Second

// Paper sizes accepted by WithPageSize.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

func newConfig(opts []Option) *config {
	c := &config{
		timeout:  defaultTimeout,
		logger:   zap.NewNop(),
		style:    DefaultStyle,
		pageSize: PageSizeLetter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// assetSource returns the configured asset source. WithAssetLoader wins over
// WithAssetPath.
func (c *config) assetSource() (AssetLoader, error) {
	if c.assetLoader != nil {
		return c.assetLoader, nil
	}
	return NewAssetLoader(c.assetPath)
}

// WithTimeout sets the PDF page load timeout used when the context has no
// deadline. Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mtlgen: WithTimeout duration must be positive")
	}
	return func(c *config) {
		c.timeout = d
	}
}

// WithAssetPath loads templates, styles and the schema from dir first,
// falling back to the embedded assets.
func WithAssetPath(dir string) Option {
	return func(c *config) {
		c.assetPath = dir
	}
}

// WithAssetLoader sets a custom asset source.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *config) {
		c.assetLoader = loader
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}
}

// WithDocxTemplate seeds DOCX output from the .docx or .dotx file at path.
func WithDocxTemplate(path string) Option {
	return func(c *config) {
		c.docxTemplate = path
	}
}

// WithStyle selects the CSS style inlined into HTML and PDF output.
func WithStyle(name string) Option {
	return func(c *config) {
		if name != "" {
			c.style = name
		}
	}
}

// WithPageSize sets the PDF paper size: letter (default), a4, or legal.
func WithPageSize(size string) Option {
	return func(c *config) {
		if size != "" {
			c.pageSize = strings.ToLower(size)
		}
	}
}

// paperSize returns the paper dimensions in inches.
func paperSize(size string) (width, height float64, err error) {
	switch strings.ToLower(size) {
	case "", PageSizeLetter:
		return 8.5, 11, nil
	case PageSizeA4:
		return 8.27, 11.69, nil
	case PageSizeLegal:
		return 8.5, 14, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q (must be letter, a4, or legal)", ErrInvalidPageSize, size)
	}
}
