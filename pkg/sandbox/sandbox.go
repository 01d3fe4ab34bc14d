// Package sandbox provides the only sanctioned path from the orchestrator
// and the terminal UI to the filesystem and shell. Every operation is
// containment- and allowlist-checked and returns a structured result
// envelope; no raw OS failure propagates past the dispatch boundary.
package sandbox

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"time"

	"workbench/pkg/exec"
	"workbench/pkg/logx"
)

// CommandType identifies a sandbox operation. The enum is closed: any
// other value yields an unknown-command-type error.
type CommandType string

const (
	CommandReadFile     CommandType = "read_file"
	CommandWriteFile    CommandType = "write_file"
	CommandDeleteFile   CommandType = "delete_file"
	CommandListFiles    CommandType = "list_files"
	CommandExecuteShell CommandType = "execute_shell"
	CommandSearchCode   CommandType = "search_code"
	CommandGetLogs      CommandType = "get_logs"
	CommandLintCheck    CommandType = "lint_check"
	CommandGetPreview   CommandType = "get_preview"
)

// Command is one request to the sandbox dispatch entry point.
type Command struct {
	ID   string         `json:"id"`
	Type CommandType    `json:"type"`
	Args map[string]any `json:"args"`
}

// Result is the uniform success/error envelope returned by every
// operation.
type Result struct {
	ID      string   `json:"id"`
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Logs    []string `json:"logs,omitempty"`
}

// FileEntry describes one entry returned by list_files.
type FileEntry struct {
	Name string `json:"name"`
	Type string `json:"type"` // "file" or "directory"
	Path string `json:"path"` // relative to the project root
}

// Observer receives a record of each dispatched command; used for metrics.
type Observer func(cmdType string, success bool, duration time.Duration)

// Sandbox validates and runs the closed set of file and shell operations
// against a rooted project directory. It is stateless per call and safe
// for concurrent use from unrelated requests.
type Sandbox struct {
	root     string
	policy   Policy
	executor exec.Executor
	logger   *logx.Logger
	observer Observer
}

// New creates a sandbox rooted at the given project directory.
func New(root string, policy Policy) (*Sandbox, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %s: %w", root, err)
	}
	return &Sandbox{
		root:     filepath.Clean(absRoot),
		policy:   policy,
		executor: exec.NewLocalExec(),
		logger:   logx.NewLogger("sandbox"),
	}, nil
}

// SetObserver installs a metrics observer for dispatched commands.
func (s *Sandbox) SetObserver(observer Observer) {
	s.observer = observer
}

// Root returns the project root directory.
func (s *Sandbox) Root() string {
	return s.root
}

// Execute is the single dispatch entry point. Unexpected panics are
// recovered and converted to structured failures so no operation is ever
// fatal to the caller.
func (s *Sandbox) Execute(ctx context.Context, cmd Command) (result Result) {
	start := time.Now()
	result.ID = cmd.ID

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sandbox command %s panicked: %v", cmd.Type, r)
			result = Result{
				ID:      cmd.ID,
				Success: false,
				Error:   fmt.Sprintf("internal error: %v", r),
				Logs:    []string{string(debug.Stack())},
			}
		}
		if s.observer != nil {
			s.observer(string(cmd.Type), result.Success, time.Since(start))
		}
	}()

	switch cmd.Type {
	case CommandReadFile:
		result = s.readFile(cmd)
	case CommandWriteFile:
		result = s.writeFile(cmd)
	case CommandDeleteFile:
		result = s.deleteFile(cmd)
	case CommandListFiles:
		result = s.listFiles(cmd)
	case CommandExecuteShell:
		result = s.executeShell(ctx, cmd)
	case CommandSearchCode:
		result = s.searchCode(cmd)
	case CommandGetLogs:
		result = s.getLogs(cmd)
	case CommandLintCheck:
		result = s.lintCheck(cmd)
	case CommandGetPreview:
		result = s.getPreview(cmd)
	default:
		result = Result{
			ID:      cmd.ID,
			Success: false,
			Error:   fmt.Sprintf("unknown command type: %s", cmd.Type),
		}
	}
	return result
}

// stringArg extracts a required string argument.
func stringArg(cmd Command, key string) (string, error) {
	raw, ok := cmd.Args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument: %s", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("argument %s must be a string", key)
	}
	return value, nil
}

func failure(cmd Command, err error) Result {
	return Result{ID: cmd.ID, Success: false, Error: err.Error()}
}

func success(cmd Command, data any) Result {
	return Result{ID: cmd.ID, Success: true, Data: data}
}
