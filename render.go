package mtlgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"text/template"

	"github.com/alnah/go-mtlgen/internal/assets"
	"github.com/alnah/go-mtlgen/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector   = (*pipeline.CSSInjection)(nil)
)

// Renderer turns a task context into Markdown and standalone HTML using the
// mtl-1, mtl-2 and mtl-3 templates. A Renderer caches parsed templates and
// is not safe for concurrent use.
type Renderer struct {
	assets        AssetLoader
	style         string
	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
	templates     map[string]*template.Template
}

// NewRenderer creates a Renderer. It honors WithAssetPath, WithAssetLoader
// and WithStyle.
func NewRenderer(opts ...Option) (*Renderer, error) {
	return newRenderer(newConfig(opts))
}

func newRenderer(cfg *config) (*Renderer, error) {
	loader, err := cfg.assetSource()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		assets:        loader,
		style:         cfg.style,
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
		templates:     make(map[string]*template.Template),
	}, nil
}

// BuildContext returns the template data for task: its fields keyed by
// their JSON names (meta, steps, ...) merged with extras such as
// document_type. Extras win on key collisions.
func BuildContext(task *Task, extras map[string]any) map[string]any {
	data := task.Map()
	maps.Copy(data, extras)
	return data
}

// surfaceContext is the context for one surface, with document_type set.
func surfaceContext(task *Task, d DocType) map[string]any {
	return BuildContext(task, map[string]any{"document_type": d.Label()})
}

// RenderMarkdown executes the named template ("mtl-2" or "mtl-2.md") and
// normalizes the result: LF line endings and no runs of blank lines.
func (r *Renderer) RenderMarkdown(templateName string, data map[string]any) (string, error) {
	tmpl, err := r.template(strings.TrimSuffix(templateName, ".md"))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateRender, templateName, err)
	}
	return pipeline.NormalizeMarkdown(buf.String()), nil
}

// RenderFullHTML renders the template to Markdown, converts it to an HTML5
// page titled with meta.title and inlines the named CSS style. An empty
// cssName uses the renderer's style (default "mtl").
func (r *Renderer) RenderFullHTML(ctx context.Context, templateName string, data map[string]any, cssName string) (string, error) {
	md, err := r.RenderMarkdown(templateName, data)
	if err != nil {
		return "", err
	}

	htmlContent, err := r.htmlConverter.ToHTML(ctx, md, contextTitle(data))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	if cssName == "" {
		cssName = r.style
	}
	css, err := r.assets.LoadStyle(cssName)
	if err != nil {
		if errors.Is(err, assets.ErrInvalidAssetName) {
			err = wrapError(ErrStyleNotFound, err)
		}
		return "", fmt.Errorf("loading style: %w", err)
	}

	htmlContent = r.cssInjector.InjectCSS(ctx, htmlContent, css)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return htmlContent, nil
}

func (r *Renderer) template(name string) (*template.Template, error) {
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}

	source, err := r.assets.LoadTemplate(name)
	if err != nil {
		if errors.Is(err, assets.ErrInvalidAssetName) {
			err = wrapError(ErrTemplateNotFound, err)
		}
		return nil, fmt.Errorf("loading template: %w", err)
	}

	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateRender, name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

// contextTitle returns meta.title, or "" when absent.
func contextTitle(data map[string]any) string {
	meta, _ := data["meta"].(map[string]any)
	title, _ := meta["title"].(string)
	return title
}

var templateFuncs = template.FuncMap{
	"join": joinItems,
	"cell": tableCell,
}

// joinItems joins a list of values with sep. Template data decoded from
// JSON holds lists as []any.
func joinItems(items any, sep string) string {
	switch v := items.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, sep)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprint(v)
	}
}

// tableCell formats a value for a Markdown table cell.
func tableCell(v any) string {
	if v == nil {
		return ""
	}
	s := fmt.Sprint(v)
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "|", `\|`).Replace(s)
	return strings.TrimSpace(s)
}
