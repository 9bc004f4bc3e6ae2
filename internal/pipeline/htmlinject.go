package pipeline

import (
	"context"
	"html"
	"net/url"
	"path/filepath"
	"strings"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized so it cannot close the style element.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}
	return injectHead(htmlContent, "<style>"+sanitizeCSS(cssContent)+"</style>")
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// InjectBase inserts <base href="file:///dir/"> into the document head so
// relative URLs resolve against dir. An empty dir leaves the HTML unchanged.
// An existing <base> element is left alone.
func InjectBase(htmlContent, dir string) (string, error) {
	if dir == "" {
		return htmlContent, nil
	}
	if strings.Contains(strings.ToLower(htmlContent), "<base ") {
		return htmlContent, nil
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	href := dirToFileURL(absDir)
	return injectHead(htmlContent, `<base href="`+html.EscapeString(href)+`">`), nil
}

// dirToFileURL returns a file:// URL for dir with a trailing slash, so the
// browser treats it as a directory when resolving relative references.
func dirToFileURL(absDir string) string {
	p := filepath.ToSlash(absDir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letters
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}

// injectHead inserts block before </head>, after <body ...>, or at the start.
func injectHead(htmlContent, block string) string {
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + block + htmlContent[insertPos:]
		}
	}

	return block + htmlContent
}
