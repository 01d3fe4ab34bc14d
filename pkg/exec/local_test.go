package exec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalExecRunCapturesOutput(t *testing.T) {
	e := NewLocalExec()
	result, err := e.Run(context.Background(), []string{"echo", "hello"}, DefaultOpts())
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.False(t, result.TimedOut)
}

func TestLocalExecRunNonZeroExit(t *testing.T) {
	e := NewLocalExec()
	result, err := e.Run(context.Background(), []string{"ls", "/definitely/not/a/path"}, DefaultOpts())
	require.NoError(t, err)
	assert.NotEqual(t, 0, result.ExitCode)
	assert.NotEmpty(t, result.Stderr)
}

func TestLocalExecRunTimeout(t *testing.T) {
	e := NewLocalExec()
	result, err := e.Run(context.Background(), []string{"sleep", "5"}, Opts{Timeout: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, result.TimedOut)
	assert.Less(t, result.Duration, 2*time.Second)
}

func TestLocalExecRunEmptyCommand(t *testing.T) {
	e := NewLocalExec()
	_, err := e.Run(context.Background(), nil, DefaultOpts())
	require.Error(t, err)
}

func TestLocalExecRunMissingWorkDir(t *testing.T) {
	e := NewLocalExec()
	_, err := e.Run(context.Background(), []string{"echo", "hi"}, Opts{WorkDir: "/definitely/not/a/dir"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "working directory does not exist")
}
