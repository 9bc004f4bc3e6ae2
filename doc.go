// Package mtlgen generates Master Task List (MTL) training documents from
// structured task data.
//
// A task is a YAML or JSON file describing one maintenance procedure: its
// metadata, required tools, ordered steps with safety notes, final
// confirmations, a teachback rubric and a sign-off block. One task renders
// to three document surfaces:
//
//   - MTL-1, a summary sheet
//   - MTL-2, the detailed step-by-step procedure
//   - MTL-3, the teachback and sign-off sheet
//
// # Quick Start
//
// Load and validate a task, then build every surface into a directory:
//
//	task, err := mtlgen.LoadTask("tasks/replace-filter.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sets, err := mtlgen.BuildPack(ctx, task, "out")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, set := range sets {
//	    fmt.Println(set.DocType, set.Markdown, set.DOCX, set.PDF)
//	}
//
// # Loading and Validation
//
// LoadTask and ValidateTaskMap check the input against a draft-07 JSON
// Schema. Every violation is reported at once through *ValidationError,
// which matches ErrValidation:
//
//	var verr *mtlgen.ValidationError
//	if errors.As(err, &verr) {
//	    for _, v := range verr.Violations {
//	        fmt.Println(v) // meta.last_updated: does not match pattern ...
//	    }
//	}
//
// A valid task is enriched once: steps get their 1-based sequence, optional
// fields get empty defaults and every rubric entry gets a levels map with the
// four labels Needs Work, Good, Better and Best. Enrichment never modifies
// the caller's data and is idempotent.
//
// # Output Pipeline
//
// For each surface a Builder:
//
//  1. Renders the Markdown template (text/template)
//  2. Converts it to a standalone HTML page with inlined CSS (Goldmark)
//  3. Writes the Markdown file
//  4. Exports a DOCX document, optionally seeded from a Word template
//  5. Prints the HTML to PDF with headless Chrome (go-rod)
//
// Output names follow "<SURFACE>_<task id>_<version>", for example
// MTL-2_MTL_2_GT-001.pdf.
//
// # Parallel Processing
//
// A Builder owns one browser and is not safe for concurrent use. For batch
// builds, BuilderPool hands out Builders created on demand:
//
//	pool := mtlgen.NewBuilderPool(mtlgen.ResolvePoolSize(0))
//	defer pool.Close()
//
//	b := pool.Acquire()
//	defer pool.Release(b)
//
// # Requirements
//
// PDF export needs Chrome or Chromium. Rod downloads a browser on first use
// when none is found; set ROD_BROWSER_BIN to use a pre-installed binary.
package mtlgen
