package engine

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"

	"github.com/kpotier/goraspa/pkg/input"
	"github.com/kpotier/goraspa/pkg/output"
	"github.com/kpotier/goraspa/pkg/params"
)

// LockFile is held by a run for as long as it writes into its folder.
const LockFile = ".raspa.lock"

// RestartName returns the name RASPA expects for the initial configuration
// of a system: restart_<label>_<nx>.<ny>.<nz>_<T>_<P>. The label of a box is
// "Box" and its unit cells 1 1 1.
func RestartName(s *params.System) (string, error) {
	label := s.Name
	if s.Kind == params.Box {
		label = "Box"
	}
	ucs, err := s.UnitCells()
	if err != nil {
		return "", fmt.Errorf("UnitCells: %w", err)
	}
	t, err := s.Temperature()
	if err != nil {
		return "", fmt.Errorf("Temperature: %w", err)
	}
	p, err := s.Pressure()
	if err != nil {
		return "", fmt.Errorf("Pressure: %w", err)
	}
	return fmt.Sprintf("restart_%s_%d.%d.%d_%f_%s", label, ucs[0], ucs[1], ucs[2], t,
		strconv.FormatFloat(p, 'g', 6, 64)), nil
}

// Stage writes the input files of job into dir and returns the arguments
// of the engine binary.
func Stage(dir string, job *Job) ([]string, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	p := job.Params.Clone()

	if job.Restart != nil {
		if err := stageRestart(dir, job.Restart, p); err != nil {
			return nil, fmt.Errorf("stageRestart: %w", err)
		}
		p.General.Set(params.KeyRestartFile, true)
	}

	if job.Parent != "" {
		if err := stageCrashRestart(dir, job.Parent); err != nil {
			return nil, fmt.Errorf("stageCrashRestart: %w", err)
		}
		p.General.Set(params.KeyContinueCrash, true)
	}

	for name, src := range job.Frameworks {
		if err := copyFile(filepath.Join(dir, name+".cif"), src); err != nil {
			return nil, fmt.Errorf("copyFile: %w", err)
		}
	}
	for name, src := range job.BlockPockets {
		if err := copyFile(filepath.Join(dir, name+".block"), src); err != nil {
			return nil, fmt.Errorf("copyFile: %w", err)
		}
	}
	for _, src := range job.Files {
		if err := copyFile(filepath.Join(dir, filepath.Base(src)), src); err != nil {
			return nil, fmt.Errorf("copyFile: %w", err)
		}
	}

	f, err := os.Create(filepath.Join(dir, input.FileName))
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	defer f.Close()
	if err := input.Write(f, p); err != nil {
		return nil, fmt.Errorf("Write: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("Close: %w", err)
	}

	args, _ := job.Cmdline()
	return append(args, input.FileName), nil
}

// stageRestart copies Restart/System_i/<file> of the previous run to
// RestartInitial/System_i/<RestartName>.
func stageRestart(dir string, fsys fs.FS, p *params.Params) error {
	for i, s := range p.Systems {
		src, err := restartFile(fsys, i)
		if err != nil {
			return err
		}
		name, err := RestartName(s)
		if err != nil {
			return fmt.Errorf("RestartName: %w", err)
		}

		dst := filepath.Join(dir, filepath.FromSlash(output.SystemDir(RestartInitialDir, i)))
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return fmt.Errorf("MkdirAll: %w", err)
		}
		b, err := fs.ReadFile(fsys, src)
		if err != nil {
			return fmt.Errorf("ReadFile: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dst, name), b, 0o644); err != nil {
			return fmt.Errorf("WriteFile: %w", err)
		}
	}
	return nil
}

// stageCrashRestart copies the binary restart file of parent. The parent
// folder must not be in use by a run.
func stageCrashRestart(dir, parent string) error {
	lock := flock.New(filepath.Join(parent, LockFile))
	ok, err := lock.TryRLock()
	if err != nil {
		return fmt.Errorf("TryRLock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s is used by a running simulation", parent)
	}
	defer lock.Unlock()

	return copyFile(filepath.Join(dir, CrashRestart), filepath.Join(parent, CrashRestart))
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
