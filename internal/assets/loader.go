package assets

// Built-in asset names.
const (
	DefaultStyleName  = "mtl"
	DefaultSchemaName = "mtl"
)

// AssetLoader defines the contract for loading templates, styles, and schemas.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a Markdown template by name (without .md extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)

	// LoadSchema loads a YAML schema document by name (without .yaml extension).
	// Returns ErrSchemaNotFound if the schema doesn't exist.
	LoadSchema(name string) ([]byte, error)
}

// assetKind describes where one category of asset lives.
type assetKind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = assetKind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = assetKind{dir: "templates", ext: ".md", notFound: ErrTemplateNotFound}
	schemaKind   = assetKind{dir: "schema", ext: ".yaml", notFound: ErrSchemaNotFound}
)
