package main

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/fileutil"
	"github.com/alnah/go-mtlgen/internal/pipeline"
)

func newPreviewCmd(a *app) *cobra.Command {
	var doc string
	cmd := &cobra.Command{
		Use:   "preview <task>",
		Short: "Render one surface to HTML and open it in the default browser",
		Long: `Preview renders a single surface to a temporary HTML file, prints its path
and opens it in the default browser. The file is left in place.`,
		Example: "  mtlgen preview tasks/pump-seal.yaml\n  mtlgen preview tasks/pump-seal.yaml --doc mtl-3 --style compact",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPreview(cmd, args[0], doc)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&doc, "doc", "d", string(mtlgen.DocSteps), "surface to preview: mtl-1, mtl-2, mtl-3")
	addAssetFlags(fs, &a.flags.assets)
	addSchemaFlags(fs, &a.flags.schema)
	addSignoffFlags(fs, &a.flags.signoff)
	_ = cmd.RegisterFlagCompletionFunc("doc", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		docs := make([]string, 0, len(mtlgen.DocTypes()))
		for _, d := range mtlgen.DocTypes() {
			docs = append(docs, string(d))
		}
		return docs, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func (a *app) runPreview(cmd *cobra.Command, path, doc string) error {
	docType, err := mtlgen.ParseDocType(doc)
	if err != nil {
		return err
	}

	loader, s, err := a.newLoader()
	if err != nil {
		return err
	}
	task, err := a.loadTask(cmd, loader, path)
	if err != nil {
		return err
	}
	task = s.applySignoff(task)

	renderer, err := mtlgen.NewRenderer(s.renderOptions(a.logger)...)
	if err != nil {
		return err
	}
	data := mtlgen.BuildContext(task, map[string]any{"document_type": docType.Label()})
	htmlContent, err := renderer.RenderFullHTML(cmd.Context(), string(docType), data, "")
	if err != nil {
		return err
	}

	// The preview lives in the temp dir; screenshots stay relative to the task.
	htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, filepath.Dir(task.SourcePath))
	if err != nil {
		return fmt.Errorf("rewriting relative paths: %w", err)
	}

	previewPath, _, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return fmt.Errorf("writing preview: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), previewPath)
	a.env.OpenBrowser(fileURL(previewPath))
	return nil
}

// fileURL returns the file:// URL for path.
func fileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if filepath.VolumeName(path) != "" {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
