package workflow

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/kpotier/goraspa/pkg/cell"
	"github.com/kpotier/goraspa/pkg/engine"
	"github.com/kpotier/goraspa/pkg/params"
)

// Settings are the parameters shared by every workflow. They are read from
// the [raspa] table of the workflow file; each workflow reads its own
// table from the same file.
type Settings struct {
	Params  string `toml:"raspa.params"`  // YAML file of the RASPA parameters
	Binary  string `toml:"raspa.binary"`  // RASPA executable
	WorkDir string `toml:"raspa.work_dir"` // one folder per run is created inside

	WallTime      string `toml:"raspa.wall_time"` // e.g. "12h", empty for no limit
	MaxIterations int    `toml:"raspa.max_iterations"`

	Frameworks   map[string]string `toml:"raspa.frameworks"`    // system name -> CIF file
	BlockPockets map[string]string `toml:"raspa.block_pockets"` // pocket name -> file
	Files        []string          `toml:"raspa.files"`
	Cmdline      []string          `toml:"raspa.cmdline"`
	Retrieve     []string          `toml:"raspa.retrieve"`

	Restart string `toml:"raspa.restart"` // folder of a finished run to restart from
	Parent  string `toml:"raspa.parent"`  // folder of an interrupted run to resume

	Output string `toml:"raspa.output"`
	Plot   string `toml:"raspa.plot"`
}

// Load reads the workflow file at path. The [raspa] table fills the
// returned Settings and the file is also decoded into v, the settings of
// the workflow itself.
func Load(path string, v interface{}) (Settings, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("LoadFile: %w", err)
	}

	if !tree.Has("raspa.max_iterations") {
		return Settings{}, errors.New("raspa.max_iterations is missing")
	}

	var s Settings
	if err := tree.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("Unmarshal: %w", err)
	}
	if v != nil {
		if err := tree.Unmarshal(v); err != nil {
			return Settings{}, fmt.Errorf("Unmarshal: %w", err)
		}
	}

	if err := s.Check(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Check returns an error if a mandatory setting is missing.
func (s *Settings) Check() error {
	switch {
	case s.Params == "":
		return errors.New("raspa.params is missing")
	case s.Binary == "":
		return errors.New("raspa.binary is missing")
	case s.WorkDir == "":
		return errors.New("raspa.work_dir is missing")
	case s.Output == "":
		return errors.New("raspa.output is missing")
	}
	if s.MaxIterations < 1 {
		return fmt.Errorf("raspa.max_iterations must be at least 1, got %d", s.MaxIterations)
	}
	if _, err := s.wallTime(); err != nil {
		return err
	}
	return nil
}

func (s *Settings) wallTime() (time.Duration, error) {
	if s.WallTime == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.WallTime)
	if err != nil {
		return 0, fmt.Errorf("raspa.wall_time: %w", err)
	}
	return d, nil
}

// Engine returns the engine running the binary in WorkDir.
func (s *Settings) Engine() (*engine.Local, error) {
	d, err := s.wallTime()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("MkdirAll: %w", err)
	}
	return &engine.Local{Binary: s.Binary, Root: s.WorkDir, WallTime: d}, nil
}

// Job loads the parameters and returns the first job of the workflow.
func (s *Settings) Job() (*engine.Job, error) {
	p, err := params.Load(s.Params)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	job := &engine.Job{
		Params:       p,
		Frameworks:   s.Frameworks,
		BlockPockets: s.BlockPockets,
		Files:        s.Files,
		Parent:       s.Parent,
		Settings:     make(map[string]interface{}),
	}
	if len(s.Cmdline) > 0 {
		job.Settings[engine.SettingCmdline] = s.Cmdline
	}
	if len(s.Retrieve) > 0 {
		job.Settings[engine.SettingRetrieveList] = s.Retrieve
	}
	if s.Restart != "" {
		job.Restart = os.DirFS(s.Restart)
	}
	return job, nil
}

// Geometry reads the cell of the frameworks of p.
func (s *Settings) Geometry(p *params.Params) (map[string]cell.Params, error) {
	geo := make(map[string]cell.Params)
	for _, sys := range p.OfKind(params.Framework) {
		path, ok := s.Frameworks[sys.Name]
		if !ok {
			return nil, params.Errorf("System."+sys.Name, "framework %s has no structure file", sys.Name)
		}
		cp, err := cell.LoadCIF(path)
		if err != nil {
			return nil, fmt.Errorf("LoadCIF %s: %w", sys.Name, err)
		}
		geo[sys.Name] = cp
	}
	return geo, nil
}
