package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	mtlgen "github.com/alnah/go-mtlgen"
)

// ErrLoadTask wraps failures to read, parse or validate a task file.
var ErrLoadTask = errors.New("failed to load task")

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <task>",
		Short: "Validate a task definition against the schema",
		Long: `Validate checks a YAML or JSON task definition against the MTL schema
and lists every violation, one "<path>: <message>" per line.`,
		Example: "  mtlgen validate tasks/pump-seal.yaml\n  mtlgen validate --date-pattern '^\\d{4}-\\d{2}-\\d{2}$' task.json",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE:    a.runValidate,
	}
	addSchemaFlags(cmd.Flags(), &a.flags.schema)
	addAssetPathFlag(cmd.Flags(), &a.flags.assets.assetPath)
	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, args []string) error {
	loader, _, err := a.newLoader()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := loader.Load(args[0]); err != nil {
		var verr *mtlgen.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(out, "Validation failed:")
			for _, line := range verr.Lines() {
				fmt.Fprintln(out, line)
			}
			return reported(err)
		}
		fmt.Fprintln(out, err)
		return reported(fmt.Errorf("%w: %w", ErrLoadTask, err))
	}

	if !a.flags.common.quiet {
		fmt.Fprintln(out, "Validation passed.")
	}
	return nil
}

// newLoader compiles the schema selected by flags, env and config.
func (a *app) newLoader() (*mtlgen.Loader, *settings, error) {
	s, err := a.settings()
	if err != nil {
		return nil, nil, err
	}
	opts, err := s.loaderOptions()
	if err != nil {
		return nil, nil, err
	}
	loader, err := mtlgen.NewLoader(opts...)
	if err != nil {
		return nil, nil, err
	}
	return loader, s, nil
}

// loadTask loads path and prints "Failed to load task: <err>" on failure.
func (a *app) loadTask(cmd *cobra.Command, loader *mtlgen.Loader, path string) (*mtlgen.Task, error) {
	task, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to load task: %v\n", err)
		return nil, reported(fmt.Errorf("%w: %w", ErrLoadTask, err))
	}
	return task, nil
}
