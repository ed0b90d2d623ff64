package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/kpotier/goraspa/pkg/ctxlog"
	"github.com/kpotier/goraspa/pkg/output"
)

// Stdout receives the standard output and error of the engine binary.
const Stdout = "raspa.stdout"

// Local runs the engine binary in a new folder of Root for every job.
type Local struct {
	Binary string
	Root   string
	// WallTime kills the run once exceeded. Zero means no limit.
	WallTime time.Duration
}

// Submit implements Engine. A run killed by WallTime returns a
// *TimeoutError; its folder can be given as Job.Parent to resume it.
func (l *Local) Submit(ctx context.Context, job *Job) (*Outcome, error) {
	log := ctxlog.FromContext(ctx)

	dir := filepath.Join(l.Root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("MkdirAll: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFile))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("Lock: %w", err)
	}
	defer lock.Unlock()

	args, err := Stage(dir, job)
	if err != nil {
		return nil, fmt.Errorf("Stage: %w", err)
	}

	log.Info("running", "dir", dir, "binary", l.Binary, "args", args)
	if err := l.run(ctx, dir, args); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	retrieved := os.DirFS(dir)
	res, warnings, err := output.ParseFolder(retrieved, job.Params.SystemOrder(), len(job.Params.Components))
	if errors.Is(err, output.ErrTimeout) {
		return nil, &TimeoutError{Remote: dir, Retrieved: retrieved}
	}
	if err != nil {
		return nil, fmt.Errorf("ParseFolder: %w", err)
	}
	for _, w := range warnings {
		log.Warn("raspa", "system", w.System, "line", w.Line)
	}

	return &Outcome{Results: res, Warnings: warnings, Retrieved: retrieved, Remote: dir}, nil
}

// run executes the binary in dir. Exceeding the wall time is not an error:
// the report is then incomplete and parsed as a timeout.
func (l *Local) run(ctx context.Context, dir string, args []string) error {
	rctx := ctx
	if l.WallTime > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, l.WallTime)
		defer cancel()
	}

	stdout, err := os.Create(filepath.Join(dir, Stdout))
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	defer stdout.Close()

	cmd := exec.CommandContext(rctx, l.Binary, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stdout

	err = cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if rctx.Err() != nil {
		ctxlog.FromContext(ctx).Warn("wall time exceeded", "dir", dir, "walltime", l.WallTime)
		return nil
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		ctxlog.FromContext(ctx).Warn("raspa exited with an error", "dir", dir, "code", exit.ExitCode())
		return nil
	}
	return err
}
