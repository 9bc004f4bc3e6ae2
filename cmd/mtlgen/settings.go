package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/config"
	"github.com/alnah/go-mtlgen/internal/dateutil"
)

// defaultOutputDir is used when neither --out, MTLGEN_OUTPUT_DIR nor
// output.defaultDir is set.
const defaultOutputDir = "out"

// settings is the merged view of flags, env and config for one command run.
type settings struct {
	outputDir      string
	template       string
	style          string
	assetPath      string
	schemaPath     string
	datePattern    string
	versionPattern string
	pageSize       string
	timeout        time.Duration
	workers        int
	signoff        mtlgen.Signoff
}

// resolveSettings overlays non-zero flags on cfg, which already carries the
// env overrides, and resolves the sign-off date against now.
func resolveSettings(cfg *config.Config, f *commandFlags, now time.Time) (*settings, error) {
	s := &settings{
		outputDir:      firstNonEmpty(f.output.dir, cfg.Output.DefaultDir, defaultOutputDir),
		template:       firstNonEmpty(f.output.template, cfg.DOCX.Template),
		style:          firstNonEmpty(f.assets.style, cfg.CSS.Style),
		assetPath:      firstNonEmpty(f.assets.assetPath, cfg.Assets.BasePath),
		schemaPath:     firstNonEmpty(f.schema.path, cfg.Schema.Path),
		datePattern:    firstNonEmpty(f.schema.datePattern, cfg.Schema.DatePattern),
		versionPattern: firstNonEmpty(f.schema.versionPattern, cfg.Schema.VersionPattern),
		pageSize:       firstNonEmpty(f.pdf.pageSize, cfg.PDF.PageSize),
		timeout:        cfg.TimeoutDuration(),
		workers:        cfg.Build.Workers,
	}
	if f.pdf.timeout > 0 {
		s.timeout = f.pdf.timeout
	}
	if f.workers > 0 {
		s.workers = f.workers
	}

	date, err := dateutil.ResolveDate(firstNonEmpty(f.signoff.date, cfg.Signoff.Date), now)
	if err != nil {
		return nil, fmt.Errorf("resolving sign-off date: %w", err)
	}
	s.signoff = mtlgen.Signoff{
		TrainerName: firstNonEmpty(f.signoff.trainer, cfg.Signoff.TrainerName),
		Date:        date,
	}

	return s, nil
}

// loaderOptions returns the schema overrides. With an asset path the
// schema is looked up there before the embedded one.
func (s *settings) loaderOptions() ([]mtlgen.LoaderOption, error) {
	var opts []mtlgen.LoaderOption
	if s.assetPath != "" {
		loader, err := mtlgen.NewAssetLoader(s.assetPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mtlgen.WithSchemaLoader(loader))
	}
	if s.schemaPath != "" {
		opts = append(opts, mtlgen.WithSchemaPath(s.schemaPath))
	}
	if s.datePattern != "" {
		opts = append(opts, mtlgen.WithDatePattern(s.datePattern))
	}
	if s.versionPattern != "" {
		opts = append(opts, mtlgen.WithVersionPattern(s.versionPattern))
	}
	return opts, nil
}

// renderOptions configures a Renderer or Builder.
func (s *settings) renderOptions(logger *zap.Logger) []mtlgen.Option {
	opts := []mtlgen.Option{
		mtlgen.WithLogger(logger),
		mtlgen.WithAssetPath(s.assetPath),
		mtlgen.WithStyle(s.style),
		mtlgen.WithDocxTemplate(s.template),
		mtlgen.WithPageSize(s.pageSize),
	}
	if s.timeout > 0 {
		opts = append(opts, mtlgen.WithTimeout(s.timeout))
	}
	return opts
}

// applySignoff fills the task's blank trainer and date from the settings.
// Values recorded in the task are kept.
func (s *settings) applySignoff(task *mtlgen.Task) *mtlgen.Task {
	var fill mtlgen.Signoff
	if !task.Signoff.HasDate() {
		fill.Date = s.signoff.Date
	}
	if task.Signoff.TrainerName == "" || task.Signoff.TrainerName == mtlgen.SignoffNamePlaceholder {
		fill.TrainerName = s.signoff.TrainerName
	}
	if fill == (mtlgen.Signoff{}) {
		return task
	}
	return task.WithSignoff(fill)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
