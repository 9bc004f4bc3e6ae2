package mtlgen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-mtlgen/internal/fileutil"
	"github.com/alnah/go-mtlgen/internal/pipeline"
)

// ArtifactSet lists the files written for one surface.
type ArtifactSet struct {
	DocType  DocType
	Markdown string
	DOCX     string
	PDF      string
}

// Builder renders every surface of a task to Markdown, DOCX and PDF.
// Create with NewBuilder and Close when done. A Builder owns one browser
// and is not safe for concurrent use; see BuilderPool.
type Builder struct {
	renderer     *Renderer
	pdf          *PDFExporter
	docxTemplate string
	logger       *zap.Logger
}

// NewBuilder creates a Builder. The browser is not started until the first
// PDF is exported.
func NewBuilder(opts ...Option) (*Builder, error) {
	cfg := newConfig(opts)

	renderer, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}
	pdf, err := newPDFExporter(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.docxTemplate != "" && !fileutil.FileExists(cfg.docxTemplate) {
		cfg.logger.Warn("docx template not found, using blank document", zap.String("template", cfg.docxTemplate))
	}

	return &Builder{
		renderer:     renderer,
		pdf:          pdf,
		docxTemplate: cfg.docxTemplate,
		logger:       cfg.logger,
	}, nil
}

// BuildPack writes <base>.md, <base>.docx and <base>.pdf into outputDir for
// mtl-1, mtl-2 and mtl-3 in order, where base is Task.BaseFilename.
//
// The first failure is returned wrapped with the surface name. Files
// already written for earlier surfaces are left in place.
func (b *Builder) BuildPack(ctx context.Context, task *Task, outputDir string) ([]ArtifactSet, error) {
	sets := make([]ArtifactSet, 0, len(DocTypes()))
	for _, d := range DocTypes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		set, err := b.buildSurface(ctx, task, d, outputDir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Label(), err)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func (b *Builder) buildSurface(ctx context.Context, task *Task, d DocType, outputDir string) (ArtifactSet, error) {
	start := time.Now()
	log := b.logger.With(zap.String("doc", d.Label()), zap.String("task", task.Meta.TaskID))
	log.Debug("rendering surface")

	data := surfaceContext(task, d)
	markdown, err := b.renderer.RenderMarkdown(string(d), data)
	if err != nil {
		return ArtifactSet{}, err
	}
	htmlContent, err := b.renderer.RenderFullHTML(ctx, string(d), data, "")
	if err != nil {
		return ArtifactSet{}, err
	}

	// Screenshots are written relative to the task file.
	if task.SourcePath != "" {
		htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, filepath.Dir(task.SourcePath))
		if err != nil {
			return ArtifactSet{}, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	base := filepath.Join(outputDir, task.BaseFilename(d))
	set := ArtifactSet{
		DocType:  d,
		Markdown: base + ".md",
		DOCX:     base + ".docx",
		PDF:      base + ".pdf",
	}

	if err := fileutil.WriteFile(set.Markdown, []byte(markdown)); err != nil {
		return ArtifactSet{}, fmt.Errorf("writing markdown: %w", err)
	}
	log.Debug("artifact written", zap.String("path", set.Markdown))

	if _, err := ExportDOCX(task, d, set.DOCX, b.docxTemplate); err != nil {
		return ArtifactSet{}, err
	}
	log.Debug("artifact written", zap.String("path", set.DOCX))

	if _, err := b.pdf.ExportPDF(ctx, htmlContent, set.PDF); err != nil {
		return ArtifactSet{}, err
	}

	log.Info("surface built", zap.String("dir", outputDir), zap.Duration("elapsed", time.Since(start)))
	return set, nil
}

// Renderer returns the builder's renderer, for callers that only need HTML.
func (b *Builder) Renderer() *Renderer {
	return b.renderer
}

// Close releases the browser.
func (b *Builder) Close() error {
	if b.pdf != nil {
		return b.pdf.Close()
	}
	return nil
}

// BuildPack builds every surface of task into outputDir with a short-lived
// Builder.
func BuildPack(ctx context.Context, task *Task, outputDir string, opts ...Option) ([]ArtifactSet, error) {
	b, err := NewBuilder(opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	return b.BuildPack(ctx, task, outputDir)
}
