// Package assets provides the Markdown templates, CSS styles, and JSON Schema
// used to render and validate MTL documents.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - custom directory on disk
//	    └── AssetResolver     - custom first, embedded on not-found
//
// AssetResolver only falls back when the custom directory lacks the asset.
// Validation and I/O errors from the custom directory are returned as-is so a
// broken override is never silently replaced by the built-in version.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css      # e.g. mtl.css
//	├── templates/
//	│   └── {name}.md       # mtl-1.md, mtl-2.md, mtl-3.md
//	└── schema/
//	    └── {name}.yaml     # draft-07 JSON Schema written as YAML
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies every path stays within basePath.
package assets
