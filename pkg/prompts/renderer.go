// Package prompts provides the fixed catalog of role instruction templates
// and phase prompt templates used by the orchestrator. Pure data, no state.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed *.tpl.md
var templateFS embed.FS

// ContextFile is one context-file excerpt embedded into a prompt.
type ContextFile struct {
	Path    string
	Content string
}

// TemplateData holds the data for prompt rendering. Fields are typed; no
// runtime string-keyed substitution happens outside text/template.
type TemplateData struct {
	Goal            string
	Language        string
	Analysis        string
	Plan            string
	TaskTitle       string
	TaskDescription string
	FilePath        string
	FileContent     string
	ContextFiles    []ContextFile
	TaskSummaries   []string
	Feedback        string
	Issues          []string
}

// Template identifies one prompt template file.
type Template string

const (
	// Role instruction templates (system prompts).

	// AnalyzerRoleTemplate instructs the analyzer persona.
	AnalyzerRoleTemplate Template = "role_analyzer.tpl.md"
	// PlannerRoleTemplate instructs the planner persona.
	PlannerRoleTemplate Template = "role_planner.tpl.md"
	// StructurerRoleTemplate instructs the structurer persona.
	StructurerRoleTemplate Template = "role_structurer.tpl.md"
	// TaskAnalyzerRoleTemplate instructs the per-task analyzer persona.
	TaskAnalyzerRoleTemplate Template = "role_task_analyzer.tpl.md"
	// WorkerRoleTemplate instructs the worker persona that produces and
	// fixes implementation code.
	WorkerRoleTemplate Template = "role_worker.tpl.md"
	// SupervisorRoleTemplate instructs the supervisor persona that approves
	// or rejects completed work.
	SupervisorRoleTemplate Template = "role_supervisor.tpl.md"
	// DebuggerRoleTemplate instructs the debugger persona.
	DebuggerRoleTemplate Template = "role_debugger.tpl.md"

	// Phase user-message templates.

	// AnalysisTemplate composes the analysis-phase user message.
	AnalysisTemplate Template = "analysis.tpl.md"
	// PlanningTemplate composes the planning-phase user message.
	PlanningTemplate Template = "planning.tpl.md"
	// StructuringTemplate composes the structuring-phase user message.
	StructuringTemplate Template = "structuring.tpl.md"
	// TaskAnalysisTemplate composes the per-task analysis user message.
	TaskAnalysisTemplate Template = "task_analysis.tpl.md"
	// ImplementationTemplate composes the worker implementation user message.
	ImplementationTemplate Template = "implementation.tpl.md"
	// FixTemplate composes a worker fix-request user message.
	FixTemplate Template = "fix.tpl.md"
	// SupervisorReviewTemplate composes the run-level supervisor user message.
	SupervisorReviewTemplate Template = "supervisor_review.tpl.md"
)

// allTemplates lists every template loaded at construction.
var allTemplates = []Template{
	AnalyzerRoleTemplate,
	PlannerRoleTemplate,
	StructurerRoleTemplate,
	TaskAnalyzerRoleTemplate,
	WorkerRoleTemplate,
	SupervisorRoleTemplate,
	DebuggerRoleTemplate,
	AnalysisTemplate,
	PlanningTemplate,
	StructuringTemplate,
	TaskAnalysisTemplate,
	ImplementationTemplate,
	FixTemplate,
	SupervisorReviewTemplate,
}

// Renderer renders prompt templates. All templates are parsed at
// construction so malformed templates fail fast.
type Renderer struct {
	templates map[Template]*template.Template
}

// NewRenderer creates a renderer with all templates parsed.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[Template]*template.Template)}
	for _, name := range allTemplates {
		content, err := templateFS.ReadFile(string(name))
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		tmpl, err := template.New(string(name)).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Render renders the named template with the given data.
func (r *Renderer) Render(name Template, data *TemplateData) (string, error) {
	tmpl, exists := r.templates[name]
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Available returns the names of all loaded templates.
func (r *Renderer) Available() []Template {
	names := make([]Template, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
