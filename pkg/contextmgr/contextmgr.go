// Package contextmgr budgets project file content into prompt context.
// Selection and truncation are deterministic so identical inputs produce
// identical prompts.
package contextmgr

import (
	"strings"

	"github.com/tiktoken-go/tokenizer"

	"workbench/pkg/prompts"
)

const (
	// MaxContextFiles bounds how many files are composed into the
	// analysis prompt.
	MaxContextFiles = 5

	// AnalysisExcerptBytes is the per-file budget for the analysis phase.
	AnalysisExcerptBytes = 3000

	// TaskExcerptBytes is the per-file budget for per-task analysis and
	// implementation calls.
	TaskExcerptBytes = 6000

	// SupervisorExcerptBytes bounds the analysis excerpt embedded in the
	// supervisor review prompt.
	SupervisorExcerptBytes = 1500
)

// File is one project file offered as prompt context.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Manager selects and truncates context files for prompt composition.
type Manager struct {
	files []File
	codec tokenizer.Codec
}

// New creates a manager over the given files. Order is preserved; the
// caller's ordering expresses relevance.
func New(files []File) *Manager {
	// Token counting is best effort; a nil codec falls back to a
	// character heuristic.
	codec, _ := tokenizer.ForModel(tokenizer.GPT4)
	return &Manager{files: files, codec: codec}
}

// Files returns the managed files.
func (m *Manager) Files() []File {
	return m.files
}

// Truncate clips content to the given byte budget. Truncation is silent;
// prompts never mention that content was clipped.
func Truncate(content string, budget int) string {
	if budget <= 0 || len(content) <= budget {
		return content
	}
	return content[:budget]
}

// AnalysisContext returns up to MaxContextFiles files truncated to the
// analysis budget, in stored order.
func (m *Manager) AnalysisContext() []prompts.ContextFile {
	limit := len(m.files)
	if limit > MaxContextFiles {
		limit = MaxContextFiles
	}
	out := make([]prompts.ContextFile, 0, limit)
	for _, f := range m.files[:limit] {
		out = append(out, prompts.ContextFile{
			Path:    f.Path,
			Content: Truncate(f.Content, AnalysisExcerptBytes),
		})
	}
	return out
}

// Match returns the first stored file whose path contains the task's
// file path as a substring, untruncated. Returns false when the task
// names no file or nothing matches.
func (m *Manager) Match(filePath string) (File, bool) {
	if filePath == "" {
		return File{}, false
	}
	for _, f := range m.files {
		if strings.Contains(f.Path, filePath) {
			return f, true
		}
	}
	return File{}, false
}

// FileForTask returns the matching file truncated to the task budget.
func (m *Manager) FileForTask(filePath string) (prompts.ContextFile, bool) {
	f, ok := m.Match(filePath)
	if !ok {
		return prompts.ContextFile{}, false
	}
	return prompts.ContextFile{
		Path:    f.Path,
		Content: Truncate(f.Content, TaskExcerptBytes),
	}, true
}

// CountTokens estimates the token count of text for metrics and logging.
// Falls back to a 4-chars-per-token heuristic when the codec is
// unavailable.
func (m *Manager) CountTokens(text string) int {
	if m.codec == nil {
		return len(text) / 4
	}
	count, err := m.codec.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return count
}
