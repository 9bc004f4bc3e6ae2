package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/config"
)

// ---------------------------------------------------------------------------
// Task fixtures
// ---------------------------------------------------------------------------

const validTask = `meta:
  title: Swap Filter
  task_id: FLT-7
  version: GT-014
  last_updated: 11-02-23
  difficulty: Beginner
steps:
  - id: open
    text: Open the housing.
  - id: swap
    text: Swap the cartridge.
    confirm: Arrow points downstream
    screenshot: screens/swap.png
teachback:
  prompts:
    - Why does flow direction matter?
`

// otherTask has its own task_id, so it builds beside validTask.
const otherTask = `meta:
  title: Bleed Line
  task_id: BLD-2
  version: GT-014
  last_updated: 11-02-23
  difficulty: Intermediate
steps:
  - id: vent
    text: Open the vent.
`

const invalidTask = `meta:
  title: Swap Filter
  task_id: FLT-7
  version: GT-014
  last_updated: "2023-11-02"
  difficulty: Expert
steps:
  - id: open
    text: Open the housing.
`

// writeTask writes content to dir/name and returns the path.
func writeTask(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Fake builder pool
// ---------------------------------------------------------------------------

// fakeBuilder returns artifact paths without writing anything.
type fakeBuilder struct {
	mu    sync.Mutex
	tasks []*mtlgen.Task
	fail  map[string]error // by task_id
}

func (b *fakeBuilder) BuildPack(ctx context.Context, task *mtlgen.Task, outputDir string) ([]mtlgen.ArtifactSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.tasks = append(b.tasks, task)
	err := b.fail[task.Meta.TaskID]
	b.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mtlgen.DocSummary.Label(), err)
	}

	var sets []mtlgen.ArtifactSet
	for _, d := range mtlgen.DocTypes() {
		base := filepath.Join(outputDir, task.BaseFilename(d))
		sets = append(sets, mtlgen.ArtifactSet{DocType: d, Markdown: base + ".md", DOCX: base + ".docx", PDF: base + ".pdf"})
	}
	return sets, nil
}

func (b *fakeBuilder) builtTasks() []*mtlgen.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*mtlgen.Task(nil), b.tasks...)
}

// fakePool hands out one shared fakeBuilder.
type fakePool struct {
	mu         sync.Mutex
	builder    *fakeBuilder
	size       int
	opts       int
	acquireErr error
	acquired   int
	released   int
	closed     bool
}

func newFakePool() *fakePool {
	return &fakePool{builder: &fakeBuilder{fail: map[string]error{}}}
}

func (p *fakePool) Acquire(ctx context.Context) (PackBuilder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.builder, nil
}

func (p *fakePool) Release(PackBuilder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *fakePool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

func (p *fakePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// ---------------------------------------------------------------------------
// Test environment
// ---------------------------------------------------------------------------

// fixedNow is 2024-03-05 14:30 UTC.
var fixedNow = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

type testEnv struct {
	env    *Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	pool   *fakePool

	mu     sync.Mutex
	opened []string
	pools  int
}

func newTestEnv() *testEnv {
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		pool:   newFakePool(),
	}
	te.env = &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Config: config.DefaultConfig(),
		NewPool: func(size int, opts ...mtlgen.Option) Pool {
			te.mu.Lock()
			te.pools++
			te.mu.Unlock()
			te.pool.size = size
			te.pool.opts = len(opts)
			return te.pool
		},
		OpenBrowser: func(url string) {
			te.mu.Lock()
			defer te.mu.Unlock()
			te.opened = append(te.opened, url)
		},
	}
	return te
}

func (te *testEnv) run(args ...string) int {
	return run(args, te.env)
}

func (te *testEnv) poolsCreated() int {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.pools
}

func (te *testEnv) openedURLs() []string {
	te.mu.Lock()
	defer te.mu.Unlock()
	return append([]string(nil), te.opened...)
}
