package main

import (
	"errors"
	"os"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/config"
	"github.com/alnah/go-mtlgen/internal/dateutil"
)

// Exit codes for the mtlgen CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful command
	ExitGeneral = 1 // General error, failed validation or unreadable task
	ExitUsage   = 2 // Invalid flags or config, unsupported document, clashing outputs
	ExitIO      = 3 // File, template or style not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// validate, build and preview report any load failure as 1 (checked
	// first: a missing task file also matches os.ErrNotExist)
	if errors.Is(err, ErrLoadTask) ||
		errors.Is(err, mtlgen.ErrValidation) ||
		errors.Is(err, mtlgen.ErrTaskParse) {
		return ExitGeneral
	}

	// Browser errors (exit 4)
	if errors.Is(err, mtlgen.ErrPDFEngineUnavailable) ||
		errors.Is(err, mtlgen.ErrPageCreate) ||
		errors.Is(err, mtlgen.ErrPageLoad) ||
		errors.Is(err, mtlgen.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mtlgen.ErrTaskNotFound) ||
		errors.Is(err, mtlgen.ErrTemplateNotFound) ||
		errors.Is(err, mtlgen.ErrStyleNotFound) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, mtlgen.ErrUnsupportedDocument) ||
		errors.Is(err, mtlgen.ErrInvalidPageSize) ||
		errors.Is(err, mtlgen.ErrInvalidAssetPath) ||
		errors.Is(err, mtlgen.ErrDocxTemplate) ||
		errors.Is(err, mtlgen.ErrSchema) ||
		errors.Is(err, ErrDuplicateTask) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
