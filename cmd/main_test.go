package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRender(t *testing.T) {
	out, err := execute(t, "render", "../pkg/input/testdata/pockets.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Component 0 MoleculeName methane\n")
}

func TestParse(t *testing.T) {
	out, err := execute(t, "parse", "--system", "tcc1rs", "--components", "1", "../pkg/output/testdata/one_component.out")
	require.NoError(t, err)
	assert.Contains(t, out, "methane:")
	assert.Contains(t, out, "loading_absolute:")
}

func TestCells(t *testing.T) {
	// flags keep their values between executions: the missing cell first
	_, err := execute(t, "cells", "--threshold", "25")
	assert.Error(t, err)

	out, err := execute(t, "cells", "--a", "7", "--b", "13", "--c", "30", "--threshold", "25")
	require.NoError(t, err)
	assert.Equal(t, "4 2 1\n", out)
}
