package cfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "job.toml", `types = [["gcmc", "gcmc"], ["gemc"]]
files = [["co2.toml", "ch4.toml"], ["xe.toml"]]
`)
	c, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"gcmc", "gcmc"}, {"gemc"}}, c.Types)

	path = writeFile(t, dir, "bad.toml", `types = [["gcmc", "gcmc"]]
files = [["co2.toml"]]
`)
	_, err = New(path)
	assert.EqualError(t, err, "step 0: 1 files for 2 workflows")

	path = writeFile(t, dir, "unknown.toml", `types = [["gcmc"], ["md"]]
files = [["co2.toml"], ["md.toml"]]
`)
	_, err = New(path)
	assert.EqualError(t, err, "step 1: workflow `md` doesn't exist")
}

func TestKnown(t *testing.T) {
	for _, name := range []string{"base", "widom", "gcmc", "gemc"} {
		assert.True(t, Known(name), name)
	}
	assert.False(t, Known("md"))
}

func TestLaunch_Unknown(t *testing.T) {
	err := Launch(context.Background(), "md", "md.toml")
	assert.EqualError(t, err, "workflow `md` doesn't exist")
}

func TestStart_CountsFailures(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "job.toml", `types = [["widom", "base"], [], ["gemc"]]
files = [["missing.toml", "missing.toml"], [], ["missing.toml"]]
`)
	c, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Start(context.Background()))
}
