// Package gcmc computes adsorption in a framework in the grand canonical
// ensemble. The simulation is extended until the absolute loading of every
// component is known within the threshold.
package gcmc

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
var Type = "gcmc"

// GCMC is a structure containing the parameters that can be parsed from
// the [gcmc] table of a TOML workflow file. Framework defaults to the first
// framework of the parameters and Components to all of them.
type GCMC struct {
	Threshold  float64  `toml:"gcmc.threshold"`
	Cycles     int      `toml:"gcmc.additional_cycles"`
	Framework  string   `toml:"gcmc.framework"`
	Components []string `toml:"gcmc.components"`

	KeepUnitCells bool `toml:"gcmc.keep_unit_cells"`

	raspa workflow.Settings
}

// New returns an instance of the GCMC structure. It reads and parses the
// workflow file given in argument. The file must be a TOML file.
func New(path string) (*GCMC, error) {
	var g GCMC
	s, err := workflow.Load(path, &g)
	if err != nil {
		return nil, err
	}
	if g.Threshold <= 0 {
		return nil, errors.New("gcmc.threshold must be positive")
	}
	if g.Cycles <= 0 {
		return nil, errors.New("gcmc.additional_cycles must be positive")
	}
	g.raspa = s
	return &g, nil
}

// Start runs the simulations until the loadings converge and writes the
// report.
func (g *GCMC) Start(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("workflow", Type, "output", g.raspa.Output))

	job, err := g.raspa.Job()
	if err != nil {
		return fmt.Errorf("Job: %w", err)
	}
	framework := g.Framework
	if framework == "" {
		fws := job.Params.OfKind(params.Framework)
		if len(fws) == 0 {
			return params.Errorf("System", "a GCMC workflow needs a framework")
		}
		framework = fws[0].Name
	}
	comps := g.Components
	if len(comps) == 0 {
		comps = job.Params.ComponentNames()
	}

	e, err := g.raspa.Engine()
	if err != nil {
		return fmt.Errorf("Engine: %w", err)
	}
	c := &workflow.Controller{
		Engine: e,
		Checkers: []check.Checker{
			&check.LoadingChecker{System: framework, Components: comps, Threshold: g.Threshold},
		},
		MaxIterations: g.raspa.MaxIterations,
		Increment:     workflow.Increment{Cycles: g.Cycles, InitializationCycles: g.Cycles},
	}
	if !g.KeepUnitCells {
		c.Geometry, err = g.raspa.Geometry(job.Params)
		if err != nil {
			return fmt.Errorf("Geometry: %w", err)
		}
	}

	return workflow.Execute(ctx, g.raspa, c, job, g.Threshold, *g)
}
