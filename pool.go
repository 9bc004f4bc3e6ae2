package mtlgen

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("builder pool closed")

// BuilderPool manages a pool of Builder instances for parallel builds.
// Each builder has its own browser instance, enabling true parallelism.
// Builders are created lazily on first acquire to avoid startup delay.
type BuilderPool struct {
	size     int
	opts     []Option
	builders []*Builder
	sem      chan *Builder
	mu       sync.Mutex
	created  int
	closed   bool

	newBuilder func(...Option) (*Builder, error)
}

// NewBuilderPool creates a pool with capacity for n builders, each created
// with opts. Builders are created when acquired, not at pool creation.
func NewBuilderPool(n int, opts ...Option) *BuilderPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}

	return &BuilderPool{
		size:       n,
		opts:       opts,
		builders:   make([]*Builder, 0, n),
		sem:        make(chan *Builder, n),
		newBuilder: NewBuilder,
	}
}

// Acquire gets a builder from the pool, creating one if needed.
// Blocks until a builder is released or ctx is done.
func (p *BuilderPool) Acquire(ctx context.Context) (*Builder, error) {
	// Try to get an existing builder (non-blocking)
	select {
	case b, ok := <-p.sem:
		return p.checkOut(b, ok)
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create new builder outside the lock
		b, err := p.newBuilder(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			_ = b.Close()
			return nil, ErrPoolClosed
		}
		p.builders = append(p.builders, b)
		return b, nil
	}
	p.mu.Unlock()

	// All builders created, wait for one to be released
	select {
	case b, ok := <-p.sem:
		return p.checkOut(b, ok)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// checkOut hands out a builder received from sem. A closed channel still
// yields its buffered builders, so the closed flag decides.
func (p *BuilderPool) checkOut(b *Builder, ok bool) (*Builder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !ok || p.closed {
		return nil, ErrPoolClosed
	}
	return b, nil
}

// Release returns a builder to the pool.
// The lock is held while sending so Close cannot close the channel mid-send;
// the channel has room for every builder, so the send never blocks.
func (p *BuilderPool) Release(b *Builder) {
	if b == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- b
}

// Close releases all browser resources.
// Returns an aggregated error if multiple builders fail to close.
func (p *BuilderPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	builders := p.builders
	p.mu.Unlock()

	var errs []error
	for _, b := range builders {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *BuilderPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
