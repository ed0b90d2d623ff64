// Package engine describes how a RASPA run is submitted and what comes back
// from it. Local runs the engine binary on this machine; any scheduler can
// be plugged in by implementing Engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/kpotier/goraspa/pkg/output"
	"github.com/kpotier/goraspa/pkg/params"
)

// Layout of a run folder.
const (
	RestartDir        = "Restart"
	RestartInitialDir = "RestartInitial"
	CrashRestart      = "CrashRestart"
)

// Settings keys understood by the engines.
const (
	SettingCmdline        = "cmdline"
	SettingRetrieveList   = "additional_retrieve_list"
	settingsConfiguration = "settings"
)

// ErrNoRetrievedFolder is returned when a run did not give back its folder.
var ErrNoRetrievedFolder = errors.New("no retrieved folder")

// Engine submits a job and waits for it. Submit either returns a complete
// Outcome or an error, never both.
type Engine interface {
	Submit(ctx context.Context, job *Job) (*Outcome, error)
}

// Job is everything needed by one run.
type Job struct {
	Params *params.Params
	// Frameworks maps every Framework system to its CIF file.
	Frameworks map[string]string
	// BlockPockets maps the names used in BlockPocketsFileName to their
	// files. They are staged as <name>.block.
	BlockPockets map[string]string
	// Files are extra files (force field, molecule definitions) staged
	// under their base name.
	Files []string
	// Restart is the retrieved folder of a previous run. Its Restart
	// files become the initial configurations of this run.
	Restart fs.FS
	// Parent is the folder of a previous run that did not finish. Its
	// binary restart file is used to resume the run.
	Parent string
	// Settings are options of the run itself, not of RASPA.
	Settings map[string]interface{}
}

// Outcome is what a finished run gives back.
type Outcome struct {
	Results   output.Results
	Warnings  []output.Warning
	Retrieved fs.FS
	// Remote is the folder the run was executed in.
	Remote string
}

// TimeoutError is returned when the run started but did not finish. Remote
// holds the binary restart file needed to resume it.
type TimeoutError struct {
	Remote    string
	Retrieved fs.FS
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v (remote folder %s)", output.ErrTimeout, e.Remote)
}

// Unwrap returns output.ErrTimeout.
func (e *TimeoutError) Unwrap() error {
	return output.ErrTimeout
}

// Validate checks the job before anything is staged.
func (j *Job) Validate() error {
	if j.Params == nil {
		return params.Errorf("parameters", "missing")
	}
	if err := j.Params.Validate(); err != nil {
		return err
	}

	for _, s := range j.Params.OfKind(params.Framework) {
		if _, ok := j.Frameworks[s.Name]; !ok {
			return params.Errorf("System."+s.Name, "framework %s has no structure file", s.Name)
		}
	}

	for _, c := range j.Params.Components {
		for _, name := range pocketNames(c) {
			if _, ok := j.BlockPockets[name]; !ok {
				return params.Errorf("Component."+c.Name+"."+params.KeyBlockPockets, "no block pocket file named %s", name)
			}
		}
	}

	var unknown []string
	for k := range j.Settings {
		if k != SettingCmdline && k != SettingRetrieveList {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return params.Errorf(settingsConfiguration, "keys not understood: %v", unknown)
	}
	if _, err := j.Cmdline(); err != nil {
		return params.Errorf(settingsConfiguration, "%v", err)
	}

	if j.Restart != nil {
		if err := checkRestart(j.Restart, len(j.Params.Systems)); err != nil {
			return params.Errorf("restart", "%v", err)
		}
	}
	return nil
}

// pocketNames returns the block pocket names used by a component, the
// placeholder excluded.
func pocketNames(c *params.Component) []string {
	v, ok := c.Settings.Get(params.KeyBlockPockets)
	if !ok {
		return nil
	}
	placeholder, _ := params.PerSystemDefault(params.KeyBlockPockets)

	var names []string
	add := func(v interface{}) {
		if s, ok := v.(string); ok && s != placeholder {
			names = append(names, s)
		}
	}
	if m, ok := v.(*params.Settings); ok {
		for _, k := range m.Keys() {
			v, _ := m.Get(k)
			add(v)
		}
		return names
	}
	add(v)
	return names
}

// Cmdline returns the extra command line arguments given in the settings.
func (j *Job) Cmdline() ([]string, error) {
	v, ok := j.Settings[SettingCmdline]
	if !ok {
		return nil, nil
	}
	switch v := v.(type) {
	case []string:
		return v, nil
	case []interface{}:
		args := make([]string, len(v))
		for k, a := range v {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("%s: %v is not a string", SettingCmdline, a)
			}
			args[k] = s
		}
		return args, nil
	}
	return nil, fmt.Errorf("%s must be a list of strings", SettingCmdline)
}

// checkRestart checks that every system folder of Restart holds exactly one
// file.
func checkRestart(fsys fs.FS, nsystems int) error {
	if _, err := fs.Stat(fsys, RestartDir); err != nil {
		return fmt.Errorf("the restart folder was not found in the previous run")
	}
	for i := 0; i < nsystems; i++ {
		if _, err := restartFile(fsys, i); err != nil {
			return err
		}
	}
	return nil
}

// restartFile returns the path of the restart file of the i-th system.
func restartFile(fsys fs.FS, i int) (string, error) {
	dir := output.SystemDir(RestartDir, i)
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("ReadDir: %w", err)
	}
	if len(entries) != 1 || entries[0].IsDir() {
		return "", fmt.Errorf("%s must hold exactly one file, found %d entries", dir, len(entries))
	}
	return path.Join(dir, entries[0].Name()), nil
}
