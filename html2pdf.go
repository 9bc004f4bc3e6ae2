package mtlgen

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-mtlgen/internal/fileutil"
	"github.com/alnah/go-mtlgen/internal/pipeline"
	"github.com/alnah/go-mtlgen/internal/process"
)

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ pdfRenderer = (*rodRenderer)(nil)

// pdfOptions holds page geometry in inches.
type pdfOptions struct {
	PaperWidth  float64
	PaperHeight float64
}

// marginInches applies to every side.
const marginInches = 0.5

// engineRemedy is appended to browser launch failures.
const engineRemedy = "install Chrome/Chromium or set ROD_BROWSER_BIN"

// rodRenderer implements pdfRenderer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRenderer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
	logger   *zap.Logger
}

func newRodRenderer(timeout time.Duration, logger *zap.Logger) *rodRenderer {
	return &rodRenderer{timeout: timeout, logger: logger}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}

	r.logger.Debug("launching browser", zap.String("bin", bin))
	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v (%s)", ErrPDFEngineUnavailable, err, engineRemedy)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Kill()
		return fmt.Errorf("%w: %v (%s)", ErrPDFEngineUnavailable, err, engineRemedy)
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// Close shuts down the browser and kills the launcher's process group so
// no Chrome helper processes outlive the renderer.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		process.KillProcessGroup(r.launcher.PID())
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it to PDF.
// Returns explicit errors instead of panicking when browser operations fail.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: fileURL(filePath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	// Wait for page to load with timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.PDF(buildPDFOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// buildPDFOptions constructs proto.PagePrintToPDF. Nil opts means letter.
func buildPDFOptions(opts *pdfOptions) *proto.PagePrintToPDF {
	width, height := 8.5, 11.0
	if opts != nil && opts.PaperWidth > 0 && opts.PaperHeight > 0 {
		width, height = opts.PaperWidth, opts.PaperHeight
	}

	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// fileURL returns a file:// URL for a local path.
func fileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if filepath.VolumeName(path) != "" {
		p = "/" + p // Windows drive letters
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// PDFExporter prints HTML pages to PDF files with headless Chrome.
// The browser starts on first use. A PDFExporter is not safe for concurrent
// use; call Close when done.
type PDFExporter struct {
	renderer pdfRenderer
	opts     pdfOptions
	logger   *zap.Logger
}

// NewPDFExporter creates a PDFExporter. It honors WithTimeout, WithPageSize
// and WithLogger. An unknown page size returns ErrInvalidPageSize.
func NewPDFExporter(opts ...Option) (*PDFExporter, error) {
	return newPDFExporter(newConfig(opts))
}

func newPDFExporter(cfg *config) (*PDFExporter, error) {
	width, height, err := paperSize(cfg.pageSize)
	if err != nil {
		return nil, err
	}

	renderer := cfg.pdfRenderer
	if renderer == nil {
		renderer = newRodRenderer(cfg.timeout, cfg.logger)
	}

	return &PDFExporter{
		renderer: renderer,
		opts:     pdfOptions{PaperWidth: width, PaperHeight: height},
		logger:   cfg.logger,
	}, nil
}

// ExportPDF renders htmlContent to a PDF at outputPath and returns the path.
// Relative URLs in the page resolve against the output directory. Parent
// directories are created.
func (e *PDFExporter) ExportPDF(ctx context.Context, htmlContent, outputPath string) (string, error) {
	if err := fileutil.EnsureParentDir(outputPath); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	htmlContent, err := pipeline.InjectBase(htmlContent, filepath.Dir(outputPath))
	if err != nil {
		return "", fmt.Errorf("setting base URL: %w", err)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return "", err
	}
	defer cleanup()

	data, err := e.renderer.RenderFromFile(ctx, tmpPath, &e.opts)
	if err != nil {
		return "", err
	}

	if err := fileutil.WriteFile(outputPath, data); err != nil {
		return "", fmt.Errorf("writing pdf: %w", err)
	}
	e.logger.Debug("pdf written", zap.String("path", outputPath), zap.Int("bytes", len(data)))
	return outputPath, nil
}

// Close releases browser resources.
func (e *PDFExporter) Close() error {
	if e.renderer != nil {
		return e.renderer.Close()
	}
	return nil
}

// ExportPDF renders htmlContent to a PDF at outputPath with a short-lived
// browser and returns the path.
func ExportPDF(ctx context.Context, htmlContent, outputPath string, opts ...Option) (string, error) {
	exporter, err := NewPDFExporter(opts...)
	if err != nil {
		return "", err
	}
	defer func() { _ = exporter.Close() }()

	return exporter.ExportPDF(ctx, htmlContent, outputPath)
}
