package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/assets"
	"github.com/alnah/go-mtlgen/internal/config"
	"github.com/alnah/go-mtlgen/internal/hints"
)

// ErrUsage marks an invalid command line.
var ErrUsage = errors.New("invalid usage")

// app is the state shared by every command of one invocation.
type app struct {
	env    *Environment
	flags  commandFlags
	cfg    *config.Config // config file with env overrides applied
	logger *zap.Logger
}

// run executes the command line and returns the process exit code.
func run(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	root := newRootCmd(env)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var rep *reportedError
	if !errors.As(err, &rep) {
		fmt.Fprintf(env.Stderr, "mtlgen: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

func newRootCmd(env *Environment) *cobra.Command {
	a := &app{env: env, cfg: env.Config, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "mtlgen",
		Short: "Generate MTL training packs from task definitions",
		Long: `mtlgen turns one YAML or JSON task definition into a training pack:
MTL-1 (summary sheet), MTL-2 (step-by-step) and MTL-3 (teachback and
sign-off), each as Markdown, Word and PDF.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              usageArgs(cobra.NoArgs),
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.logger.Sync() },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return fmt.Errorf("%w: no command given", ErrUsage)
		},
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	addCommonFlags(root.PersistentFlags(), &a.flags.common)

	root.AddCommand(
		newValidateCmd(a),
		newBuildCmd(a),
		newPreviewCmd(a),
		newQuizCmd(a),
		newDoctorCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup builds the logger and loads configuration. Priority:
// flags > env > config file > defaults.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	a.logger = newLogger(a.env.Stderr, a.flags.common.quiet, a.flags.common.verbose)
	a.logger.Debug("starting", zap.String("version", Version), zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)))

	warnUnknownEnvVars(a.env.Stderr)
	envCfg := loadEnvConfig()

	cfg := a.env.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if name := firstNonEmpty(a.flags.common.config, envCfg.ConfigPath); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return err
		}
		a.logger.Debug("config loaded", zap.String("config", name))
		cfg = loaded
	}

	merged := *cfg
	applyEnvConfig(envCfg, &merged)
	a.cfg = &merged
	return nil
}

func (a *app) settings() (*settings, error) {
	now := time.Now
	if a.env.Now != nil {
		now = a.env.Now
	}
	return resolveSettings(a.cfg, &a.flags, now())
}

// usageArgs marks argument count errors as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}

// reportedError wraps a failure the command already printed; run only
// maps it to an exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return &reportedError{err: err}
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, mtlgen.ErrPDFEngineUnavailable),
		errors.Is(err, mtlgen.ErrPageCreate):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, mtlgen.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, mtlgen.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.NewEmbeddedLoader().ListStyles())
	case errors.Is(err, mtlgen.ErrTemplateNotFound):
		return hints.ForTemplateNotFound(os.Getenv("MTLGEN_ASSET_PATH"))
	case errors.Is(err, mtlgen.ErrDocxTemplate):
		return hints.ForDocxTemplate()
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
