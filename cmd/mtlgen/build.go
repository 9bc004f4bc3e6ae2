package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/fileutil"
)

// Sentinel errors for batch builds.
var (
	ErrNoInput       = errors.New("no task files found")
	ErrDuplicateTask = errors.New("tasks share output names")
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <task|dir>...",
		Short: "Render Markdown, Word and PDF for all MTL surfaces",
		Long: `Build writes MTL-1, MTL-2 and MTL-3 for each task as Markdown, DOCX and PDF.
Directories are scanned for .yaml, .yml and .json files. Output files are
named <SURFACE>_<task_id>_<version>, so several tasks can share --out.`,
		Example: "  mtlgen build tasks/pump-seal.yaml --out packs\n  mtlgen build tasks/ --out packs --workers 4 --template brand.docx",
		Args:    usageArgs(cobra.MinimumNArgs(1)),
		RunE:    a.runBuild,
	}
	fs := cmd.Flags()
	addOutputFlags(fs, &a.flags.output)
	addAssetFlags(fs, &a.flags.assets)
	addSchemaFlags(fs, &a.flags.schema)
	addPDFFlags(fs, &a.flags.pdf)
	addSignoffFlags(fs, &a.flags.signoff)
	addWorkersFlag(fs, &a.flags.workers)
	return cmd
}

// buildJob is one loaded task waiting for a builder.
type buildJob struct {
	Path string
	Task *mtlgen.Task
}

// BuildResult holds the outcome of building one task.
type BuildResult struct {
	TaskPath string
	Sets     []mtlgen.ArtifactSet
	Err      error
	Duration time.Duration
}

func (a *app) runBuild(cmd *cobra.Command, args []string) error {
	loader, s, err := a.newLoader()
	if err != nil {
		return err
	}

	paths, err := fileutil.ExpandTaskPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w in %s", ErrNoInput, strings.Join(args, ", "))
	}

	jobs, err := a.loadJobs(cmd, loader, s, paths)
	if err != nil {
		return err
	}

	pool := a.env.NewPool(mtlgen.ResolvePoolSize(s.workers), s.renderOptions(a.logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			a.logger.Warn("closing builders", zap.Error(err))
		}
	}()
	a.logger.Debug("building", zap.Int("tasks", len(jobs)), zap.Int("pool", pool.Size()), zap.String("out", s.outputDir))

	results := buildBatch(cmd.Context(), pool, jobs, s.outputDir)
	if failed := printResults(results, a.flags.common.quiet, a.flags.common.verbose, a.env); failed > 0 {
		return reported(fmt.Errorf("%d of %d build(s) failed: %w", failed, len(results), firstError(results)))
	}
	return nil
}

// loadJobs loads every path before anything is built, so a bad task in a
// batch fails fast. Tasks that would overwrite each other are rejected.
func (a *app) loadJobs(cmd *cobra.Command, loader *mtlgen.Loader, s *settings, paths []string) ([]buildJob, error) {
	jobs := make([]buildJob, 0, len(paths))
	var loadErr error
	for _, p := range paths {
		task, err := a.loadTask(cmd, loader, p)
		if err != nil {
			if loadErr == nil {
				loadErr = err
			}
			continue
		}
		jobs = append(jobs, buildJob{Path: p, Task: s.applySignoff(task)})
	}
	if loadErr != nil {
		return nil, loadErr
	}

	owners := make(map[string]string, len(jobs))
	for _, j := range jobs {
		name := j.Task.BaseFilename(mtlgen.DocSummary)
		if prev, ok := owners[name]; ok {
			return nil, fmt.Errorf("%w: %s and %s both produce %s", ErrDuplicateTask, prev, j.Path, name)
		}
		owners[name] = j.Path
	}
	return jobs, nil
}

// buildBatch builds tasks concurrently, one builder per worker.
func buildBatch(ctx context.Context, pool Pool, jobs []buildJob, outputDir string) []BuildResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))
	results := make([]BuildResult, len(jobs))
	queue := make(chan int, len(jobs))
	var wg sync.WaitGroup

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			builder, err := pool.Acquire(ctx)
			if err != nil {
				// Jobs this worker takes fail; other workers keep building.
				for idx := range queue {
					results[idx] = BuildResult{
						TaskPath: jobs[idx].Path,
						Err:      fmt.Errorf("acquiring builder: %w", err),
					}
				}
				return
			}
			defer pool.Release(builder)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = BuildResult{TaskPath: jobs[idx].Path, Err: ctx.Err()}
					continue
				}
				results[idx] = buildOne(ctx, builder, jobs[idx], outputDir)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

func buildOne(ctx context.Context, builder PackBuilder, job buildJob, outputDir string) BuildResult {
	start := time.Now()
	sets, err := builder.BuildPack(ctx, job.Task, outputDir)
	return BuildResult{
		TaskPath: job.Path,
		Sets:     sets,
		Err:      err,
		Duration: time.Since(start),
	}
}

// ResultSummary holds the count of succeeded and failed builds.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

func countResults(results []BuildResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults prints one "Generated" line per artifact set and returns
// the number of failed tasks. Failures go to stderr with a hint.
func printResults(results []BuildResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.TaskPath, r.Err, hintFor(r.Err))
			continue
		}
		if quiet {
			continue
		}

		for _, set := range r.Sets {
			if verbose {
				fmt.Fprintf(env.Stdout, "Generated %s %s %s %s\n", set.DocType, set.Markdown, set.DOCX, set.PDF)
			} else {
				fmt.Fprintf(env.Stdout, "Generated %s %s %s %s\n", set.DocType,
					filepath.Base(set.Markdown), filepath.Base(set.DOCX), filepath.Base(set.PDF))
			}
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s built in %v\n", r.TaskPath, r.Duration.Round(time.Millisecond))
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

func firstError(results []BuildResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
