// Package pipeline turns rendered task Markdown into a standalone HTML document.
//
// Stages, in order:
//   - Markdown normalization (line endings, blank-line runs)
//   - Markdown to HTML conversion via Goldmark (GFM, class-based highlighting)
//   - Relative image path rewriting against the task file's directory
//   - CSS and <base> injection into the document head
//
// PDF and DOCX output live in the root mtlgen package; this package only
// produces HTML.
package pipeline
