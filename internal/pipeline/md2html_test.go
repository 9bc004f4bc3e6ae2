package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	converter := NewGoldmarkConverter()

	tests := []struct {
		name         string
		markdown     string
		title        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "wraps in html5 shell with title",
			markdown:     "# Replace filter",
			title:        "Replace filter",
			wantContains: []string{"<!DOCTYPE html>", "<title>Replace filter</title>", `<h1 id="replace-filter">Replace filter</h1>`},
		},
		{
			name:         "blank title falls back to default",
			markdown:     "text",
			wantContains: []string{"<title>" + DefaultTitle + "</title>"},
		},
		{
			name:         "title is escaped",
			markdown:     "text",
			title:        "Valves <A & B>",
			wantContains: []string{"<title>Valves &lt;A &amp; B&gt;</title>"},
		},
		{
			name:         "GFM table",
			markdown:     "| Criterion | Good |\n|---|---|\n| Safety | ok |",
			wantContains: []string{"<table>", "<th>Criterion</th>", "<td>ok</td>"},
		},
		{
			name:         "strikethrough",
			markdown:     "~~old~~",
			wantContains: []string{"<del>old</del>"},
		},
		{
			name:         "bold critical marker",
			markdown:     "**CRITICAL:** lock out power",
			wantContains: []string{"<strong>CRITICAL:</strong> lock out power"},
		},
		{
			name:         "hard wraps keep metadata lines apart",
			markdown:     "Task ID: T1\nVersion: GT-001",
			wantContains: []string{"Task ID: T1<br />"},
		},
		{
			name:         "fenced code uses highlight classes",
			markdown:     "```go\nfunc main() {}\n```",
			wantContains: []string{`class="chroma"`},
		},
		{
			name:         "raw HTML dropped",
			markdown:     "<script>alert(1)</script>",
			wantExcludes: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := converter.ToHTML(context.Background(), tt.markdown, tt.title)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() missing %q in:\n%s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("ToHTML() should not contain %q in:\n%s", exclude, got)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ToHTML_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToHTML(ctx, "# x", "x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}
