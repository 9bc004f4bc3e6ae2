package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles/*.css templates/*.md schema/*.yaml
var embedded embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (e *EmbeddedLoader) read(kind assetKind, name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	content, err := embedded.ReadFile(kind.dir + "/" + name + kind.ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", kind.notFound, name)
	}
	return content, nil
}

// LoadStyle loads a CSS style by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	content, err := e.read(styleKind, name)
	return string(content), err
}

// LoadTemplate loads a Markdown template by name.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	content, err := e.read(templateKind, name)
	return string(content), err
}

// LoadSchema loads a YAML schema by name.
func (e *EmbeddedLoader) LoadSchema(name string) ([]byte, error) {
	return e.read(schemaKind, name)
}

// ListStyles returns the names of the built-in styles, sorted.
func (e *EmbeddedLoader) ListStyles() []string {
	entries, err := fs.ReadDir(embedded, styleKind.dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), styleKind.ext); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
