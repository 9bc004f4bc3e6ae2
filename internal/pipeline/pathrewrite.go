package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteRelativePaths resolves relative img[src] and a[href] values against
// sourceDir and replaces them with absolute file:// URLs. Step screenshots
// are written relative to the task file, while the rendered HTML is loaded
// from elsewhere, so they must be pinned before PDF rendering.
//
// URLs, anchors, absolute paths and paths escaping sourceDir are left as is.
// An empty sourceDir returns the HTML unchanged.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, fragment, err := parseDocument(htmlContent)
	if err != nil {
		return "", err
	}

	walk(doc, func(n *html.Node) {
		switch n.DataAtom {
		case atom.Img:
			resolveAttr(n, "src", root)
		case atom.A:
			resolveAttr(n, "href", root)
		}
	})

	return renderDocument(doc, fragment)
}

// parseDocument parses a full document, or a fragment in body context.
// The returned bool reports whether the input was a fragment.
func parseDocument(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderDocument serializes doc; fragments render their children only.
func renderDocument(doc *html.Node, fragment bool) (string, error) {
	var buf strings.Builder

	if !fragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func resolveAttr(n *html.Node, key, root string) {
	for i := range n.Attr {
		if n.Attr[i].Key != key || !isRelativeRef(n.Attr[i].Val) {
			continue
		}

		target := filepath.Join(root, filepath.FromSlash(n.Attr[i].Val))
		if !within(target, root) {
			continue
		}
		n.Attr[i].Val = fileURL(target)
	}
}

// isRelativeRef reports whether ref is a relative filesystem path.
func isRelativeRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	for _, scheme := range []string{"http:", "https:", "file:", "data:", "mailto:"} {
		if strings.HasPrefix(strings.ToLower(ref), scheme) {
			return false
		}
	}
	return !filepath.IsAbs(ref) && !strings.HasPrefix(ref, "/")
}

// within reports whether path is root or lies beneath it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// fileURL converts an absolute path to a file:// URL, escaping as needed.
func fileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
