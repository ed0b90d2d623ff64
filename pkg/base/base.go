// Package base runs RASPA once. A run that exceeds its wall time is resumed
// from its binary restart file, at most raspa.max_iterations times.
package base

import (
	"context"
	"fmt"

	"github.com/kpotier/goraspa/pkg/ctxlog"
	"github.com/kpotier/goraspa/pkg/workflow"
)

// Type is the type of workflow.
var Type = "base"

// Base only needs the [raspa] table of the workflow file.
type Base struct {
	raspa workflow.Settings
}

// New returns an instance of the Base structure. It reads and parses the
// workflow file given in argument. The file must be a TOML file.
func New(path string) (*Base, error) {
	s, err := workflow.Load(path, nil)
	if err != nil {
		return nil, err
	}
	return &Base{raspa: s}, nil
}

// Start runs the simulation and writes the report.
func (b *Base) Start(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("workflow", Type, "output", b.raspa.Output))

	job, err := b.raspa.Job()
	if err != nil {
		return fmt.Errorf("Job: %w", err)
	}
	e, err := b.raspa.Engine()
	if err != nil {
		return fmt.Errorf("Engine: %w", err)
	}

	c := &workflow.Controller{Engine: e, MaxIterations: b.raspa.MaxIterations}
	return workflow.Execute(ctx, b.raspa, c, job, 0)
}
