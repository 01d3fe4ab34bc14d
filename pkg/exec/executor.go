// Package exec provides process execution for the sandbox. The sandbox's
// allowlist is the only admission path, so only local execution is wired.
package exec

import (
	"context"
	"time"
)

// Executor defines the interface for running commands.
type Executor interface {
	// Run executes a command with the given options and returns the result.
	// A non-zero exit code is reported through Result.ExitCode, not as an
	// error; errors indicate the command could not be run at all.
	Run(ctx context.Context, cmd []string, opts Opts) (Result, error)

	// Name returns the executor name for logging.
	Name() string
}

// Opts contains options for command execution.
type Opts struct {
	// Env contains additional environment variables (KEY=VALUE format).
	Env []string

	// Timeout is the maximum wall-clock duration for command execution.
	// On expiry the subprocess is killed and partial output is returned.
	Timeout time.Duration

	// WorkDir is the working directory for the command.
	WorkDir string
}

// Result contains the result of command execution.
type Result struct {
	// Stdout contains the standard output.
	Stdout string

	// Stderr contains the standard error output.
	Stderr string

	// Duration is how long the command took to execute.
	Duration time.Duration

	// ExitCode is the exit code of the command.
	ExitCode int

	// TimedOut indicates the command was killed by the timeout.
	TimedOut bool
}

// DefaultOpts returns default execution options.
func DefaultOpts() Opts {
	return Opts{
		Timeout: 10 * time.Second,
	}
}
