package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_WORKBENCH_KEY", "sk-secret")

	path := writeConfig(t, `{
		"backend": {"provider": "anthropic", "model": "claude-sonnet", "api_key": "${TEST_WORKBENCH_KEY}"},
		"project": {"root": "/tmp/project"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.Backend.APIKey)
	assert.Equal(t, DefaultMaxTokens, cfg.Backend.MaxTokens)
	assert.Equal(t, DefaultProjectLanguage, cfg.Project.Language)
	assert.Equal(t, DefaultSupervisorMaxRetries, cfg.Workflow.SupervisorMaxRetries)
	assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
}

func TestLoadUnresolvedKeyIsUnconfigured(t *testing.T) {
	path := writeConfig(t, `{
		"backend": {"provider": "openai", "model": "gpt-4o", "api_key": "${DEFINITELY_UNSET_VAR_42}"},
		"project": {"root": "/tmp/project"}
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestLoadOllamaNeedsNoKey(t *testing.T) {
	path := writeConfig(t, `{
		"backend": {"provider": "ollama", "model": "llama3"},
		"project": {"root": "/tmp/project"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaHost, cfg.Backend.Host)
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing provider",
			`{"backend": {"model": "m"}, "project": {"root": "/p"}}`,
			"provider is required",
		},
		{
			"unknown provider",
			`{"backend": {"provider": "bard", "model": "m"}, "project": {"root": "/p"}}`,
			"unknown backend provider",
		},
		{
			"missing model",
			`{"backend": {"provider": "ollama"}, "project": {"root": "/p"}}`,
			"model is required",
		},
		{
			"missing project root",
			`{"backend": {"provider": "ollama", "model": "m"}}`,
			"project root is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
