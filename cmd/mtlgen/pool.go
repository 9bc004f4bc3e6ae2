package main

import (
	"context"
	"fmt"

	mtlgen "github.com/alnah/go-mtlgen"
)

// PackBuilder builds every surface of one task.
type PackBuilder interface {
	BuildPack(ctx context.Context, task *mtlgen.Task, outputDir string) ([]mtlgen.ArtifactSet, error)
}

// Compile-time interface implementation check.
var _ PackBuilder = (*mtlgen.Builder)(nil)

// Pool abstracts builder pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (PackBuilder, error)
	Release(PackBuilder)
	Size() int
	Close() error
}

// poolAdapter wraps mtlgen.BuilderPool to implement Pool.
type poolAdapter struct {
	pool *mtlgen.BuilderPool
}

func newBuilderPool(size int, opts ...mtlgen.Option) Pool {
	return &poolAdapter{pool: mtlgen.NewBuilderPool(size, opts...)}
}

func (a *poolAdapter) Acquire(ctx context.Context) (PackBuilder, error) {
	b, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Release panics if b did not come from this pool's Acquire.
func (a *poolAdapter) Release(b PackBuilder) {
	builder, ok := b.(*mtlgen.Builder)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", b))
	}
	a.pool.Release(builder)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

func (a *poolAdapter) Close() error {
	return a.pool.Close()
}
