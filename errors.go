package mtlgen

import "errors"

// Sentinel errors for library operations.
var (
	// Task loading errors.
	ErrTaskNotFound = errors.New("task file not found")
	ErrTaskParse    = errors.New("failed to parse task")
	ErrValidation   = errors.New("task failed schema validation")
	ErrSchema       = errors.New("invalid schema")

	// Rendering errors.
	ErrTemplateNotFound    = errors.New("template not found")
	ErrStyleNotFound       = errors.New("style not found")
	ErrTemplateRender      = errors.New("template rendering failed")
	ErrHTMLConversion      = errors.New("HTML conversion failed")
	ErrUnsupportedDocument = errors.New("unsupported document type")

	// PDF errors.
	ErrPDFEngineUnavailable = errors.New("PDF engine unavailable")
	ErrPageCreate           = errors.New("failed to create browser page")
	ErrPageLoad             = errors.New("failed to load page")
	ErrPDFGeneration        = errors.New("PDF generation failed")

	// Settings validation errors.
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrDocxTemplate     = errors.New("invalid docx template")
)
