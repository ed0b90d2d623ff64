package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpotier/goraspa/pkg/output"
	"github.com/kpotier/goraspa/pkg/params"
)

func load(t *testing.T, name string) *params.Params {
	t.Helper()
	p, err := params.Load(filepath.Join("testdata", name))
	require.NoError(t, err)
	return p
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func frameworkJob(t *testing.T) *Job {
	t.Helper()
	src := t.TempDir()
	return &Job{
		Params:       load(t, "framework_box.yaml"),
		Frameworks:   map[string]string{"tcc1rs": writeFile(t, src, "TCC1RS.cif", "data_tcc1rs\n")},
		BlockPockets: map[string]string{"tcc1rs_pockets": writeFile(t, src, "pockets.txt", "0\n")},
		Files:        []string{writeFile(t, src, "force_field.def", "# rules\n")},
	}
}

func TestRestartName(t *testing.T) {
	p := load(t, "framework_box.yaml")

	name, err := RestartName(p.System("tcc1rs"))
	require.NoError(t, err)
	assert.Equal(t, "restart_tcc1rs_1.2.3_298.000000_500000", name)

	name, err = RestartName(p.System("box_one"))
	require.NoError(t, err)
	assert.Equal(t, "restart_Box_1.1.1_300.000000_0", name)

	p.System("box_one").Settings.Set(params.KeyPressure, 1e6)
	name, err = RestartName(p.System("box_one"))
	require.NoError(t, err)
	assert.Equal(t, "restart_Box_1.1.1_300.000000_1e+06", name)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(j *Job)
		path   string
	}{
		{"missing framework", func(j *Job) { j.Frameworks = nil }, "System.tcc1rs"},
		{"missing pocket", func(j *Job) { j.BlockPockets = nil }, "Component.methane.BlockPocketsFileName"},
		{"unknown setting", func(j *Job) { j.Settings = map[string]interface{}{"parser": "raspa"} }, "settings"},
		{"bad cmdline", func(j *Job) { j.Settings = map[string]interface{}{SettingCmdline: "-v"} }, "settings"},
		{"no restart folder", func(j *Job) { j.Restart = fstest.MapFS{} }, "restart"},
		{"two restart files", func(j *Job) {
			j.Restart = fstest.MapFS{
				"Restart/System_0/a": {Data: []byte("a")},
				"Restart/System_0/b": {Data: []byte("b")},
				"Restart/System_1/c": {Data: []byte("c")},
			}
		}, "restart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := frameworkJob(t)
			tt.modify(j)
			err := j.Validate()
			var cfgErr *params.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.path, cfgErr.Path)
		})
	}

	j := frameworkJob(t)
	j.Settings = map[string]interface{}{
		SettingCmdline:      []interface{}{"-a", "b"},
		SettingRetrieveList: []interface{}{"Movies"},
	}
	assert.NoError(t, j.Validate())
}

func TestStage(t *testing.T) {
	parent := t.TempDir()
	writeFile(t, parent, CrashRestart, "binary")

	j := frameworkJob(t)
	j.Settings = map[string]interface{}{SettingCmdline: []string{"-v"}}
	j.Parent = parent
	j.Restart = fstest.MapFS{
		"Restart/System_0/restart_tcc1rs_1.2.3_298.000000_500000": {Data: []byte("framework")},
		"Restart/System_1/restart_Box_1.1.1_300.000000_0":         {Data: []byte("box")},
	}

	dir := t.TempDir()
	args, err := Stage(dir, j)
	require.NoError(t, err)
	assert.Equal(t, []string{"-v", "simulation.input"}, args)

	for name, want := range map[string]string{
		"tcc1rs.cif":            "data_tcc1rs\n",
		"tcc1rs_pockets.block":  "0\n",
		"force_field.def":       "# rules\n",
		CrashRestart:            "binary",
		"RestartInitial/System_0/restart_tcc1rs_1.2.3_298.000000_500000": "framework",
		"RestartInitial/System_1/restart_Box_1.1.1_300.000000_0":         "box",
	} {
		b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(b), name)
	}

	deck, err := os.ReadFile(filepath.Join(dir, "simulation.input"))
	require.NoError(t, err)
	assert.Contains(t, string(deck), "RestartFile yes\n")
	assert.Contains(t, string(deck), "ContinueAfterCrash yes\n")

	// the job parameters are left untouched
	assert.False(t, j.Params.General.Has(params.KeyRestartFile))
}

func fakeRaspa(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "simulate")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestLocal_Submit(t *testing.T) {
	fixture, err := filepath.Abs("../output/testdata/one_component.out")
	require.NoError(t, err)
	bin := fakeRaspa(t, fmt.Sprintf(`test -f simulation.input || exit 1
mkdir -p Output/System_0 Restart/System_0
cp %q Output/System_0/output_tcc1rs_1.1.1_298.000000_500000.data
echo restart > Restart/System_0/restart_tcc1rs_1.1.1_298.000000_500000
`, fixture))

	l := &Local{Binary: bin, Root: t.TempDir()}
	j := &Job{
		Params:     load(t, "framework.yaml"),
		Frameworks: map[string]string{"tcc1rs": writeFile(t, t.TempDir(), "tcc1rs.cif", "data_tcc1rs\n")},
	}

	out, err := l.Submit(context.Background(), j)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Remote, l.Root))
	methane := out.Results["tcc1rs"].Component("methane")
	v, ok := methane.Stat("loading_absolute").Average.Get()
	require.True(t, ok)
	assert.Equal(t, 12.02, v)
	assert.Len(t, out.Warnings, 2)

	// the retrieved folder can restart the next run
	j.Restart = out.Retrieved
	assert.NoError(t, j.Validate())
}

func TestLocal_Timeout(t *testing.T) {
	bin := fakeRaspa(t, `mkdir -p Output/System_0
printf 'Starting simulation\nCurrent cycle: 1200 out of 2000\n' > Output/System_0/output.data
`)

	l := &Local{Binary: bin, Root: t.TempDir()}
	j := &Job{
		Params:     load(t, "framework.yaml"),
		Frameworks: map[string]string{"tcc1rs": writeFile(t, t.TempDir(), "tcc1rs.cif", "data_tcc1rs\n")},
	}

	_, err := l.Submit(context.Background(), j)
	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout), "got %v", err)
	assert.ErrorIs(t, err, output.ErrTimeout)
	assert.DirExists(t, timeout.Remote)
}
