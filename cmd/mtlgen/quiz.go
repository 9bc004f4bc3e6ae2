package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/yamlutil"
)

// Quiz output formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newQuizCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "quiz <task>",
		Short: "Print review questions derived from a task",
		Long: `Quiz prints one open question per teachback prompt, a short-answer
question per confirm text in the first five steps, and one per final
confirmation (first three), answered by its accepted outcomes.`,
		Example: "  mtlgen quiz tasks/pump-seal.yaml\n  mtlgen quiz tasks/pump-seal.yaml --format yaml",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuiz(cmd, args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, yaml")
	addSchemaFlags(cmd.Flags(), &a.flags.schema)
	addAssetPathFlag(cmd.Flags(), &a.flags.assets.assetPath)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatJSON, formatYAML}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func (a *app) runQuiz(cmd *cobra.Command, path, format string) error {
	format = strings.ToLower(format)
	if format != formatJSON && format != formatYAML {
		return fmt.Errorf("%w: --format %q (must be json or yaml)", ErrUsage, format)
	}

	loader, _, err := a.newLoader()
	if err != nil {
		return err
	}
	task, err := loader.Load(path)
	if err != nil {
		return err
	}

	items := mtlgen.BuildQuiz(task)
	out := cmd.OutOrStdout()
	if format == formatYAML {
		data, err := yamlutil.Marshal(items)
		if err != nil {
			return fmt.Errorf("encoding quiz: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
