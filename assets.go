package mtlgen

import (
	"errors"

	"github.com/alnah/go-mtlgen/internal/assets"
)

// Built-in asset names.
const (
	// DefaultStyle is the CSS inlined into HTML and PDF output.
	DefaultStyle = assets.DefaultStyleName

	// DefaultSchema is the task schema used for validation.
	DefaultSchema = assets.DefaultSchemaName
)

// AssetLoader defines the contract for loading templates, styles and the
// task schema. Implementations may load from the filesystem, embedded
// assets, or any other store.
//
// NewAssetLoader provides filesystem loading with fallback to the embedded
// defaults.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns an error matching ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a Markdown template by name (without .md extension).
	// Returns an error matching ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)

	// LoadSchema loads a YAML or JSON schema by name (without extension).
	LoadSchema(name string) ([]byte, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only embedded assets.
// If basePath is set, custom assets take precedence with fallback to embedded.
//
// The basePath directory mirrors the embedded layout:
//   - templates/{mtl-1,mtl-2,mtl-3}.md
//   - styles/{name}.css
//   - schema/{name}.yaml
//
// Returns ErrInvalidAssetPath if basePath is set but not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter maps internal asset errors to the public sentinels.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.LoadTemplate(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadSchema(name string) ([]byte, error) {
	content, err := a.resolver.LoadSchema(name)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return content, nil
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	switch {
	case errors.Is(err, assets.ErrStyleNotFound):
		return wrapError(ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrTemplateNotFound):
		return wrapError(ErrTemplateNotFound, err)
	case errors.Is(err, assets.ErrSchemaNotFound):
		return wrapError(ErrSchema, err)
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return wrapError(ErrInvalidAssetPath, err)
	default:
		return err
	}
}

// wrapError attaches a public sentinel without changing the message.
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

func (e *wrappedAssetError) Is(target error) bool {
	return target == e.sentinel
}

func (e *wrappedAssetError) Unwrap() error {
	return e.original
}

// Compile-time interface check.
var _ AssetLoader = (*assetLoaderAdapter)(nil)
