package main

import (
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared by every command.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// assetFlags selects templates, styles and the schema source.
type assetFlags struct {
	style     string
	assetPath string
}

// schemaFlags overrides task validation.
type schemaFlags struct {
	path           string
	datePattern    string
	versionPattern string
}

// outputFlags holds build output flags.
type outputFlags struct {
	dir      string
	template string
}

// pdfFlags holds PDF page flags.
type pdfFlags struct {
	pageSize string
	timeout  time.Duration
}

// signoffFlags fills sign-off fields the task leaves blank.
type signoffFlags struct {
	date    string
	trainer string
}

// commandFlags gathers every flag group; each command registers the
// groups it uses.
type commandFlags struct {
	common  commonFlags
	assets  assetFlags
	schema  schemaFlags
	output  outputFlags
	pdf     pdfFlags
	signoff signoffFlags
	workers int
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config name or path (env: MTLGEN_CONFIG)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print debug logs")
}

func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name for HTML and PDF (default \"mtl\")")
	addAssetPathFlag(fs, &f.assetPath)
}

func addAssetPathFlag(fs *flag.FlagSet, assetPath *string) {
	fs.StringVar(assetPath, "asset-path", "", "directory with templates/, styles/ and schema/ overrides")
}

func addSchemaFlags(fs *flag.FlagSet, f *schemaFlags) {
	fs.StringVar(&f.path, "schema", "", "validate against this YAML or JSON schema")
	fs.StringVar(&f.datePattern, "date-pattern", "", "regexp for meta.last_updated")
	fs.StringVar(&f.versionPattern, "version-pattern", "", "regexp for meta.version")
}

func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.dir, "out", "o", "", "output directory (default \"out\")")
	fs.StringVarP(&f.template, "template", "t", "", "DOCX template whose styles and page layout are reused")
}

func addPDFFlags(fs *flag.FlagSet, f *pdfFlags) {
	fs.StringVar(&f.pageSize, "page-size", "", "PDF paper size: letter, a4, legal")
	fs.DurationVar(&f.timeout, "timeout", 0, "PDF page load timeout, e.g. 45s (default 30s)")
}

func addSignoffFlags(fs *flag.FlagSet, f *signoffFlags) {
	fs.StringVar(&f.date, "signoff-date", "", "sign-off date when the task has none: a date, \"auto\" or \"auto:FORMAT\"")
	fs.StringVar(&f.trainer, "trainer", "", "trainer name when the task has none")
}

func addWorkersFlag(fs *flag.FlagSet, workers *int) {
	fs.IntVarP(workers, "workers", "w", 0, "parallel builders, each with its own browser (default: CPU/2, max 8)")
}
