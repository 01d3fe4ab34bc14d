package sandbox

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy controls what the sandbox admits: the shell allowlist, the path
// component denylist, and output/timeout bounds. Compiled defaults cover
// normal operation; a YAML file can override them per project.
type Policy struct {
	// AllowedCommands lists permitted first tokens for execute_shell.
	AllowedCommands []string `yaml:"allowed_commands"`

	// DeniedPathComponents lists path components that no filesystem
	// operation may touch.
	DeniedPathComponents []string `yaml:"denied_path_components"`

	// ShellTimeout bounds execute_shell wall-clock time.
	ShellTimeout time.Duration `yaml:"shell_timeout"`

	// MaxOutputLength caps combined stdout/stderr length.
	MaxOutputLength int `yaml:"max_output_length"`

	// MaxSearchResults caps search_code matches.
	MaxSearchResults int `yaml:"max_search_results"`

	// MaxLineLength is the lint_check line length limit.
	MaxLineLength int `yaml:"max_line_length"`

	// PreviewURL is the fixed descriptor returned by get_preview.
	PreviewURL string `yaml:"preview_url"`
}

// DefaultPolicy returns the compiled-in sandbox policy.
func DefaultPolicy() Policy {
	return Policy{
		AllowedCommands: []string{
			"ls", "cat", "head", "tail", "grep", "find", "wc", "pwd", "echo",
			"npm", "npx", "node", "yarn", "pnpm", "go", "tsc",
		},
		DeniedPathComponents: []string{
			"node_modules", ".git", "dist", "build", "vendor", "target",
			".env", ".env.local", ".env.production", "secrets",
		},
		ShellTimeout:     10 * time.Second,
		MaxOutputLength:  10000,
		MaxSearchResults: 50,
		MaxLineLength:    500,
		PreviewURL:       "http://localhost:3000",
	}
}

// LoadPolicy reads a YAML policy file, filling unset fields from the
// defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	var overrides Policy
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	if len(overrides.AllowedCommands) > 0 {
		policy.AllowedCommands = overrides.AllowedCommands
	}
	if len(overrides.DeniedPathComponents) > 0 {
		policy.DeniedPathComponents = overrides.DeniedPathComponents
	}
	if overrides.ShellTimeout > 0 {
		policy.ShellTimeout = overrides.ShellTimeout
	}
	if overrides.MaxOutputLength > 0 {
		policy.MaxOutputLength = overrides.MaxOutputLength
	}
	if overrides.MaxSearchResults > 0 {
		policy.MaxSearchResults = overrides.MaxSearchResults
	}
	if overrides.MaxLineLength > 0 {
		policy.MaxLineLength = overrides.MaxLineLength
	}
	if overrides.PreviewURL != "" {
		policy.PreviewURL = overrides.PreviewURL
	}

	return policy, nil
}

// CommandAllowed reports whether the first token of a shell command is in
// the allowlist.
func (p *Policy) CommandAllowed(firstToken string) bool {
	for _, allowed := range p.AllowedCommands {
		if firstToken == allowed {
			return true
		}
	}
	return false
}
