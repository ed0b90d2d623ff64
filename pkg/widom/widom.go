// Package widom computes Henry coefficients with Widom insertions in a
// framework. The simulation is extended until the Henry coefficient of
// every component is known within the threshold.
package widom

import (
	"context"
	"errors"
	"fmt"

	"github.com/kpotier/goraspa/pkg/check"
	"github.com/kpotier/goraspa/pkg/ctxlog"
	"github.com/kpotier/goraspa/pkg/params"
	"github.com/kpotier/goraspa/pkg/workflow"
)

// Type is the type of workflow.
var Type = "widom"

// Widom is a structure containing the parameters that can be parsed from
// the [widom] table of a TOML workflow file. Framework defaults to the first
// framework of the parameters and Components to all of them.
type Widom struct {
	Threshold  float64  `toml:"widom.threshold"`
	Cycles     int      `toml:"widom.additional_cycles"`
	Framework  string   `toml:"widom.framework"`
	Components []string `toml:"widom.components"`

	// KeepUnitCells disables the computation of the unit cells from the
	// cutoff.
	KeepUnitCells bool `toml:"widom.keep_unit_cells"`

	raspa workflow.Settings
}

// New returns an instance of the Widom structure. It reads and parses the
// workflow file given in argument. The file must be a TOML file.
func New(path string) (*Widom, error) {
	var w Widom
	s, err := workflow.Load(path, &w)
	if err != nil {
		return nil, err
	}
	if w.Threshold <= 0 {
		return nil, errors.New("widom.threshold must be positive")
	}
	if w.Cycles <= 0 {
		return nil, errors.New("widom.additional_cycles must be positive")
	}
	w.raspa = s
	return &w, nil
}

// Start runs the simulations until the Henry coefficients converge and
// writes the report.
func (w *Widom) Start(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("workflow", Type, "output", w.raspa.Output))

	job, err := w.raspa.Job()
	if err != nil {
		return fmt.Errorf("Job: %w", err)
	}
	framework := w.Framework
	if framework == "" {
		fws := job.Params.OfKind(params.Framework)
		if len(fws) == 0 {
			return params.Errorf("System", "a Widom workflow needs a framework")
		}
		framework = fws[0].Name
	}
	comps := w.Components
	if len(comps) == 0 {
		comps = job.Params.ComponentNames()
	}

	e, err := w.raspa.Engine()
	if err != nil {
		return fmt.Errorf("Engine: %w", err)
	}
	c := &workflow.Controller{
		Engine: e,
		Checkers: []check.Checker{
			&check.WidomChecker{System: framework, Components: comps, Threshold: w.Threshold},
		},
		MaxIterations: w.raspa.MaxIterations,
		Increment:     workflow.Increment{Cycles: w.Cycles},
	}
	if !w.KeepUnitCells {
		c.Geometry, err = w.raspa.Geometry(job.Params)
		if err != nil {
			return fmt.Errorf("Geometry: %w", err)
		}
	}

	return workflow.Execute(ctx, w.raspa, c, job, w.Threshold, *w)
}
