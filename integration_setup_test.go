//go:build integration

package mtlgen

// Notes:
// - Integration test setup: shared BuilderPool for all integration tests
// - testPool is initialized in TestMain and closed after all tests complete
// - acquireBuilder provides automatic release via t.Cleanup()
// - Pool size is capped at 4 for CI environments to avoid resource exhaustion

import (
	"context"
	"os"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test Configuration
// ---------------------------------------------------------------------------

// testTimeout bounds each integration operation.
const testTimeout = 60 * time.Second

// testPool is shared by all integration tests. Tests only Acquire and
// Release, so it is safe for concurrent use.
var testPool *BuilderPool

// ---------------------------------------------------------------------------
// TestMain - Integration Test Setup and Teardown
// ---------------------------------------------------------------------------

func TestMain(m *testing.M) {
	testPool = NewBuilderPool(min(ResolvePoolSize(0), 4), WithTimeout(testTimeout))

	code := m.Run()

	_ = testPool.Close()
	os.Exit(code)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// acquireBuilder gets a builder from the shared pool and releases it when
// the test ends.
func acquireBuilder(t *testing.T) *Builder {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	b, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(func() { testPool.Release(b) })
	return b
}
