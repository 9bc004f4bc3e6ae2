package main

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/config"
	"github.com/alnah/go-mtlgen/internal/dateutil"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unknown", errors.New("boom"), ExitGeneral},
		{"validation", &mtlgen.ValidationError{}, ExitGeneral},
		{"parse", fmt.Errorf("%w: bad yaml", mtlgen.ErrTaskParse), ExitGeneral},
		{"load wins over not found", fmt.Errorf("%w: %w", ErrLoadTask, fs.ErrNotExist), ExitGeneral},
		{"doctor", reported(errDoctor), ExitGeneral},
		{"usage", fmt.Errorf("%w: no command given", ErrUsage), ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config value", config.ErrInvalidValue, ExitUsage},
		{"date format", dateutil.ErrInvalidDateFormat, ExitUsage},
		{"unsupported document", mtlgen.ErrUnsupportedDocument, ExitUsage},
		{"page size", mtlgen.ErrInvalidPageSize, ExitUsage},
		{"schema", mtlgen.ErrSchema, ExitUsage},
		{"duplicate task", ErrDuplicateTask, ExitUsage},
		{"task not found", mtlgen.ErrTaskNotFound, ExitIO},
		{"template not found", mtlgen.ErrTemplateNotFound, ExitIO},
		{"style not found", mtlgen.ErrStyleNotFound, ExitIO},
		{"permission", fmt.Errorf("writing: %w", fs.ErrPermission), ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"browser", mtlgen.ErrPDFEngineUnavailable, ExitBrowser},
		{"page load", fmt.Errorf("MTL-2: %w", mtlgen.ErrPageLoad), ExitBrowser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
