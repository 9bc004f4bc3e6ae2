package main

import (
	"io"
	"os"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, the builder pool and the browser opener.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config // replaced by --config / MTLGEN_CONFIG when set

	// NewPool creates the pool used by build.
	NewPool func(size int, opts ...mtlgen.Option) Pool

	// OpenBrowser shows a file URL to the user; preview calls it.
	OpenBrowser func(url string)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Config:      config.DefaultConfig(),
		NewPool:     newBuilderPool,
		OpenBrowser: launcher.Open,
	}
}
