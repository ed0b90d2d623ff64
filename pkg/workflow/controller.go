// Package workflow runs RASPA until the results are converged. Every run
// restarts from the configurations of the previous one with more cycles.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/kpotier/goraspa/pkg/cell"
	"github.com/kpotier/goraspa/pkg/check"
	"github.com/kpotier/goraspa/pkg/ctxlog"
	"github.com/kpotier/goraspa/pkg/engine"
	"github.com/kpotier/goraspa/pkg/output"
	"github.com/kpotier/goraspa/pkg/params"
)

// Defaults applied when the controller does not set them.
const (
	DefaultBinaryRestartEvery = 1000
	DefaultBoxGrowth          = 2.0
)

// Increment is what is added to the cycle counts after a run that did not
// converge.
type Increment struct {
	Cycles               int
	InitializationCycles int
}

// Controller submits runs until every checker is satisfied or
// MaxIterations runs were submitted.
type Controller struct {
	Engine engine.Engine
	// Checkers are evaluated in order after every run.
	Checkers      []check.Checker
	MaxIterations int
	Increment     Increment
	// Geometry holds the cell of the frameworks whose unit cells are
	// computed from the cutoff before every run.
	Geometry map[string]cell.Params
	// BoxGrowth is added to every box edge found too small.
	BoxGrowth float64
}

// Step is the record of one run.
type Step struct {
	Iteration int
	Cycles    int
	Timeout   bool
	Outcomes  []check.Outcome
}

// Converged tells whether every checker of the step was satisfied.
func (s Step) Converged() bool {
	if s.Timeout {
		return false
	}
	for _, o := range s.Outcomes {
		if !o.Converged {
			return false
		}
	}
	return true
}

// Report is the state of the loop after its last run.
type Report struct {
	Iterations int
	Results    output.Results
	Warnings   []output.Warning
	// Params are the parameters of the last run.
	Params    *params.Params
	Retrieved fs.FS
	Remote    string
	History   []Step
}

// NotConvergedError is returned when MaxIterations runs were not enough.
// Last holds the results of the last run.
type NotConvergedError struct {
	Iterations int
	Last       *Report
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("not converged after %d iterations", e.Iterations)
}

// Run submits job until it converges. The parameters of job are not
// modified; the ones of every run are derived from a copy.
func (c *Controller) Run(ctx context.Context, job *engine.Job) (*Report, error) {
	log := ctxlog.FromContext(ctx)

	if c.MaxIterations < 1 {
		return nil, params.Errorf("max_iterations", "must be at least 1, got %d", c.MaxIterations)
	}
	if c.Engine == nil {
		return nil, errors.New("no engine")
	}
	if job == nil || job.Params == nil {
		return nil, params.Errorf("parameters", "missing")
	}

	p := job.Params.Clone()
	if !p.General.Has(params.KeyBinaryRestart) {
		p.General.Set(params.KeyBinaryRestart, DefaultBinaryRestartEvery)
	}
	growth := c.BoxGrowth
	if growth == 0 {
		growth = DefaultBoxGrowth
	}

	rep := &Report{}
	restart, parent := job.Restart, job.Parent
	for it := 1; it <= c.MaxIterations; it++ {
		if err := c.geometry(p); err != nil {
			return nil, fmt.Errorf("geometry: %w", err)
		}

		next := *job
		next.Params = p.Clone()
		next.Restart = restart
		next.Parent = parent

		cycles, _ := p.General.Int(params.KeyCycles)
		log.Info("submitting", "iteration", it, "cycles", cycles, "restart", restart != nil, "parent", parent)
		out, err := c.Engine.Submit(ctx, &next)
		rep.Iterations, rep.Params = it, next.Params

		var timeout *engine.TimeoutError
		if errors.As(err, &timeout) {
			log.Warn("run did not finish, resuming from its binary restart", "iteration", it, "remote", timeout.Remote)
			rep.History = append(rep.History, Step{Iteration: it, Cycles: cycles, Timeout: true})
			rep.Remote, rep.Retrieved = timeout.Remote, timeout.Retrieved
			parent = timeout.Remote
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("Submit (iteration %d): %w", it, err)
		}
		if out.Retrieved == nil {
			return nil, fmt.Errorf("iteration %d: %w", it, engine.ErrNoRetrievedFolder)
		}
		rep.Results, rep.Warnings = out.Results, append(rep.Warnings, out.Warnings...)
		rep.Retrieved, rep.Remote = out.Retrieved, out.Remote

		step := Step{Iteration: it, Cycles: cycles}
		boxes := make(map[string]check.BoxStatus)
		for _, ch := range c.Checkers {
			o, err := ch.Check(out.Results)
			if err != nil {
				return nil, fmt.Errorf("Check (iteration %d): %w", it, err)
			}
			step.Outcomes = append(step.Outcomes, o)
			for name, st := range o.Boxes {
				boxes[name] = st
			}
			log.Debug("checked", "iteration", it, "checker", o.Name, "converged", o.Converged, "errors", o.Errors)
		}
		rep.History = append(rep.History, step)

		if step.Converged() {
			log.Info("converged", "iteration", it)
			return rep, nil
		}

		if err := c.extend(p, boxes, growth); err != nil {
			return nil, fmt.Errorf("extend: %w", err)
		}
		restart, parent = out.Retrieved, ""
	}

	return rep, &NotConvergedError{Iterations: rep.Iterations, Last: rep}
}

// geometry sets the unit cells of the frameworks so that their
// perpendicular widths exceed twice the cutoff.
func (c *Controller) geometry(p *params.Params) error {
	if len(c.Geometry) == 0 {
		return nil
	}
	cutoff, err := p.CutOff()
	if err != nil {
		return err
	}
	for name, cp := range c.Geometry {
		s := p.System(name)
		if s == nil || s.Kind != params.Framework {
			return params.Errorf("System."+name, "no framework called %s", name)
		}
		s.SetUnitCells(cell.Multipliers(cp, 2*cutoff))
	}
	return nil
}

// extend prepares the parameters of the next run: more cycles, molecules
// taken from the restart files and larger boxes where needed.
func (c *Controller) extend(p *params.Params, boxes map[string]check.BoxStatus, growth float64) error {
	if err := p.AddCycles(params.KeyCycles, c.Increment.Cycles); err != nil {
		return err
	}
	if c.Increment.InitializationCycles != 0 {
		if err := p.AddCycles(params.KeyInitCycles, c.Increment.InitializationCycles); err != nil {
			return err
		}
	}
	p.ResetMolecules()

	for name, st := range boxes {
		if st.OK {
			continue
		}
		s := p.System(name)
		if s == nil {
			return params.Errorf("System."+name, "no box called %s", name)
		}
		l, err := s.BoxLengths()
		if err != nil {
			return params.Errorf("System."+name, "%v", err)
		}
		for k, small := range st.Small {
			if small {
				l[k] += growth
			}
		}
		s.SetBoxLengths(l)
	}
	return nil
}
