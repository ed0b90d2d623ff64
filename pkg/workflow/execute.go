package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/kpotier/goraspa/pkg/ctxlog"
	"github.com/kpotier/goraspa/pkg/engine"
)

// Execute runs c on job and writes the report described by s, whether the
// loop converged or not. stamp is written at the top of the report after
// s. A *NotConvergedError is returned once the report is written.
func Execute(ctx context.Context, s Settings, c *Controller, job *engine.Job, threshold float64, stamp ...interface{}) error {
	log := ctxlog.FromContext(ctx)

	rep, err := c.Run(ctx, job)
	var nc *NotConvergedError
	switch {
	case errors.As(err, &nc):
		log.Warn("not converged", "iterations", nc.Iterations)
		rep = nc.Last
	case err != nil:
		return fmt.Errorf("Run: %w", err)
	}

	if err := rep.Write(s.Output, append([]interface{}{s}, stamp...)...); err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	log.Info("report written", "path", s.Output, "iterations", rep.Iterations, "converged", rep.Converged())

	if s.Plot != "" && len(Series(rep.History)) > 0 {
		if err := Plot(s.Plot, rep.History, threshold); err != nil {
			return fmt.Errorf("Plot: %w", err)
		}
	}
	return err
}
