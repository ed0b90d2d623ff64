// Package gemc computes phase equilibria in the Gibbs ensemble. The two
// boxes are enlarged whenever they become smaller than twice the cutoff and
// the simulation is extended until the loadings of both boxes converge.
package gemc

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
var Type = "gemc"

// GEMC is a structure containing the parameters that can be parsed from
// the [gemc] table of a TOML workflow file. The two boxes are the Box
// systems of the parameters, in order.
type GEMC struct {
	Threshold  float64  `toml:"gemc.threshold"`
	Cycles     int      `toml:"gemc.additional_cycles"`
	Components []string `toml:"gemc.components"`
	BoxGrowth  float64  `toml:"gemc.box_growth"` // added to a box edge that is too small

	raspa workflow.Settings
}

// New returns an instance of the GEMC structure. It reads and parses the
// workflow file given in argument. The file must be a TOML file.
func New(path string) (*GEMC, error) {
	var g GEMC
	s, err := workflow.Load(path, &g)
	if err != nil {
		return nil, err
	}
	if g.Threshold <= 0 {
		return nil, errors.New("gemc.threshold must be positive")
	}
	if g.Cycles <= 0 {
		return nil, errors.New("gemc.additional_cycles must be positive")
	}
	if g.BoxGrowth < 0 {
		return nil, errors.New("gemc.box_growth cannot be negative")
	}
	g.raspa = s
	return &g, nil
}

// Boxes returns the names of the two boxes of p.
func Boxes(p *params.Params) ([2]string, error) {
	var names [2]string
	boxes := p.OfKind(params.Box)
	if len(boxes) != 2 || len(p.Systems) != 2 {
		return names, params.Errorf("System", "a Gibbs ensemble needs two boxes and nothing else, got %d systems", len(p.Systems))
	}
	names[0], names[1] = boxes[0].Name, boxes[1].Name
	return names, nil
}

// Start runs the simulations until both boxes are large enough and their
// loadings converge. It then writes the report.
func (g *GEMC) Start(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("workflow", Type, "output", g.raspa.Output))

	job, err := g.raspa.Job()
	if err != nil {
		return fmt.Errorf("Job: %w", err)
	}
	boxes, err := Boxes(job.Params)
	if err != nil {
		return err
	}
	cutoff, err := job.Params.CutOff()
	if err != nil {
		return err
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
			&check.BoxSizeChecker{Boxes: boxes, CutOff: cutoff},
			&check.TwoBoxChecker{Boxes: boxes, Components: comps, Threshold: g.Threshold},
		},
		MaxIterations: g.raspa.MaxIterations,
		Increment:     workflow.Increment{Cycles: g.Cycles, InitializationCycles: g.Cycles},
		BoxGrowth:     g.BoxGrowth,
	}

	return workflow.Execute(ctx, g.raspa, c, job, g.Threshold, *g)
}
