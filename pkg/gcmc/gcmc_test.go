package gcmc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const workflowFile = `[raspa]
params = %q
binary = %q
work_dir = %q
output = %q
max_iterations = 3

[raspa.frameworks]
tcc1rs = %q

[gcmc]
threshold = %.2f
additional_cycles = 2000
`

func abs(t *testing.T, path string) string {
	t.Helper()
	p, err := filepath.Abs(path)
	require.NoError(t, err)
	return p
}

func writeWorkflow(t *testing.T, binary string, threshold float64) (path, workDir, output string) {
	t.Helper()
	dir := t.TempDir()
	workDir, output = filepath.Join(dir, "runs"), filepath.Join(dir, "gcmc.yaml")
	content := fmt.Sprintf(workflowFile, abs(t, "testdata/params.yaml"), binary, workDir, output,
		abs(t, "testdata/tcc1rs.cif"), threshold)

	path = filepath.Join(dir, "gcmc.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path, workDir, output
}

func TestNew(t *testing.T) {
	path, workDir, output := writeWorkflow(t, "raspa", 0.1)
	g, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, g.Threshold)
	assert.Equal(t, 2000, g.Cycles)
	assert.Equal(t, workDir, g.raspa.WorkDir)
	assert.Equal(t, output, g.raspa.Output)
	assert.Equal(t, 3, g.raspa.MaxIterations)
	assert.Equal(t, abs(t, "testdata/tcc1rs.cif"), g.raspa.Frameworks["tcc1rs"])

	path, _, _ = writeWorkflow(t, "raspa", 0)
	_, err = New(path)
	assert.Error(t, err)
}

func TestStart(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	bin := filepath.Join(t.TempDir(), "simulate")
	script := fmt.Sprintf(`#!/bin/sh
mkdir -p Output/System_0 Restart/System_0
cp %q Output/System_0/output_tcc1rs.data
echo restart > Restart/System_0/restart_tcc1rs
`, abs(t, "../output/testdata/one_component.out"))
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	// the loading of the report is known within 20 %
	path, workDir, output := writeWorkflow(t, bin, 0.25)
	g, err := New(path)
	require.NoError(t, err)
	require.NoError(t, g.Start(context.Background()))

	decks, err := filepath.Glob(filepath.Join(workDir, "*", "simulation.input"))
	require.NoError(t, err)
	require.Len(t, decks, 1)
	deck, err := os.ReadFile(decks[0])
	require.NoError(t, err)
	assert.Contains(t, string(deck), "   UnitCells 3 3 3\n")
	assert.Contains(t, string(deck), "WriteBinaryRestartFileEvery 1000\n")

	b, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc struct {
		Iterations int  `yaml:"iterations"`
		Converged  bool `yaml:"converged"`
	}
	require.NoError(t, yaml.Unmarshal(b, &doc))
	assert.Equal(t, 1, doc.Iterations)
	assert.True(t, doc.Converged)
}
