package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	b, err := New("testdata/base.toml")
	require.NoError(t, err)
	assert.Equal(t, 4, b.raspa.MaxIterations)
	assert.Equal(t, "runs/interrupted", b.raspa.Parent)

	_, err = New("testdata/missing.toml")
	assert.Error(t, err)
}
