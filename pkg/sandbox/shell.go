package sandbox

import (
	"context"
	"fmt"
	"strings"

	"workbench/pkg/exec"
)

// executeShell runs an allowlisted shell command with a bounded timeout
// and output cap. Timeouts and non-zero exits still return the captured
// partial output alongside the error.
func (s *Sandbox) executeShell(ctx context.Context, cmd Command) Result {
	commandLine, err := stringArg(cmd, "command")
	if err != nil {
		return failure(cmd, err)
	}

	tokens := strings.Fields(commandLine)
	if len(tokens) == 0 {
		return failure(cmd, fmt.Errorf("command cannot be empty"))
	}
	if !s.policy.CommandAllowed(tokens[0]) {
		return failure(cmd, fmt.Errorf("command not allowed: %s", tokens[0]))
	}

	s.logger.Debug("executing shell command: %s", commandLine)

	result, err := s.executor.Run(ctx, tokens, exec.Opts{
		Timeout: s.policy.ShellTimeout,
		WorkDir: s.root,
	})
	if err != nil {
		return failure(cmd, fmt.Errorf("shell execution failed: %w", err))
	}

	output := s.truncateOutput(result.Stdout + result.Stderr)

	if result.TimedOut {
		return Result{
			ID:      cmd.ID,
			Success: false,
			Data:    output,
			Error:   fmt.Sprintf("command timed out after %s", s.policy.ShellTimeout),
		}
	}
	if result.ExitCode != 0 {
		return Result{
			ID:      cmd.ID,
			Success: false,
			Data:    output,
			Error:   fmt.Sprintf("command exited with code %d", result.ExitCode),
		}
	}
	return success(cmd, output)
}

// truncationMarker replaces the tail of over-long output. The marker
// counts against the cap so the returned string never exceeds it.
const truncationMarker = "\n... [output truncated]"

func (s *Sandbox) truncateOutput(output string) string {
	if len(output) <= s.policy.MaxOutputLength {
		return output
	}
	keep := s.policy.MaxOutputLength - len(truncationMarker)
	if keep < 0 {
		return output[:s.policy.MaxOutputLength]
	}
	return output[:keep] + truncationMarker
}
