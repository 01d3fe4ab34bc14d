// Package orchestrator drives the multi-phase workflow: analysis,
// planning, task decomposition, per-task implementation, and supervised
// review. One orchestrator exclusively owns one run for the lifetime of
// one streaming request.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"workbench/pkg/contextmgr"
	"workbench/pkg/events"
	"workbench/pkg/llm"
	"workbench/pkg/logx"
	"workbench/pkg/metrics"
	"workbench/pkg/prompts"
	"workbench/pkg/proto"
)

// passedMarker is the literal token the supervisor emits on approval.
const passedMarker = "PASSED"

// errAborted signals user-initiated cancellation. It is not a bug
// condition; the terminal error event carries its message.
var errAborted = errors.New("aborted by user")

// Config tunes one orchestrator instance. MaxTokens and Temperature
// override the request defaults when set; zero values keep them.
type Config struct {
	ProjectID            string
	Language             string
	SupervisorMaxRetries int
	SingleCallMode       bool
	MaxTokens            int
	Temperature          float32
}

// Orchestrator sequences the workflow phases for one run. Phases and
// tasks execute strictly sequentially; there is no fan-out, because a
// task's implementation may depend on artifacts produced by earlier
// tasks and the supervisor reasons over the cumulative task log.
type Orchestrator struct {
	run      *proto.Run
	client   llm.Client
	renderer *prompts.Renderer
	ctxmgr   *contextmgr.Manager
	emitter  *events.Emitter
	recorder *metrics.Recorder
	logger   *logx.Logger
	cfg      Config

	abortRequested atomic.Bool
}

// New creates an orchestrator for one goal. The recorder may be nil.
func New(goal string, files []contextmgr.File, client llm.Client, renderer *prompts.Renderer, emitter *events.Emitter, recorder *metrics.Recorder, cfg Config) *Orchestrator {
	if cfg.SupervisorMaxRetries <= 0 {
		cfg.SupervisorMaxRetries = 3
	}
	if cfg.Language == "" {
		cfg.Language = "go"
	}
	return &Orchestrator{
		run:      proto.NewRun(cfg.ProjectID, goal),
		client:   client,
		renderer: renderer,
		ctxmgr:   contextmgr.New(files),
		emitter:  emitter,
		recorder: recorder,
		logger:   logx.NewLogger("orchestrator"),
		cfg:      cfg,
	}
}

// Run returns the run owned by this orchestrator.
func (o *Orchestrator) Run() *proto.Run {
	return o.run
}

// Abort requests cooperative cancellation. The flag is checked before
// each phase transition and each event emission; a model call already in
// flight is cut short only by the transport's own context cancellation.
func (o *Orchestrator) Abort() {
	o.abortRequested.Store(true)
}

// Execute runs the workflow to a terminal phase. The caller always
// observes exactly one terminal event: complete on success, or a single
// error event on failure or abort.
func (o *Orchestrator) Execute(ctx context.Context) error {
	err := o.execute(ctx)
	switch {
	case err == nil:
		if terr := o.run.TransitionPhase(proto.PhaseCompleted); terr != nil {
			o.logger.Error("completion transition failed: %v", terr)
		}
		o.emit(proto.NewPhaseChangeEvent(proto.PhaseCompleted))
		o.emit(proto.NewCompleteEvent())
		o.observeRun()
		return nil
	case errors.Is(err, errAborted):
		// The abort event is the last event on the stream.
		o.emitter.Emit(proto.NewErrorEvent(errAborted.Error()))
		o.emitter.Abort()
		o.failRun()
		return err
	default:
		o.logger.Error("run %s failed in phase %s: %v", o.run.ID, o.run.Phase, err)
		o.emit(proto.NewErrorEvent(err.Error()))
		o.failRun()
		return err
	}
}

func (o *Orchestrator) execute(ctx context.Context) error {
	if o.cfg.SingleCallMode {
		return o.executeSingleCall(ctx)
	}
	if err := o.analyzing(ctx); err != nil {
		return err
	}
	if err := o.planning(ctx); err != nil {
		return err
	}
	if err := o.structuring(ctx); err != nil {
		return err
	}
	if err := o.executing(ctx); err != nil {
		return err
	}
	return o.reviewing(ctx)
}

func (o *Orchestrator) failRun() {
	if !o.run.Phase.IsTerminal() {
		if terr := o.run.TransitionPhase(proto.PhaseFailed); terr != nil {
			o.logger.Error("failure transition failed: %v", terr)
		}
	}
	o.observeRun()
}

func (o *Orchestrator) observeRun() {
	if o.recorder != nil {
		o.recorder.ObserveRun(string(o.run.Phase))
	}
}

// emit delivers one event unless an abort has been requested.
func (o *Orchestrator) emit(event proto.Event) {
	if o.abortRequested.Load() {
		return
	}
	o.emitter.Emit(event)
}

// logRun appends a run-level log line and mirrors it as a log event.
func (o *Orchestrator) logRun(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	o.run.AppendLog(line)
	o.emit(proto.NewLogEvent(line))
}

// enterPhase advances the run and announces the transition. The abort
// flag is checked here so an aborted run never starts another phase.
func (o *Orchestrator) enterPhase(phase proto.Phase) error {
	if o.abortRequested.Load() {
		return errAborted
	}
	if err := o.run.TransitionPhase(phase); err != nil {
		return err
	}
	o.emit(proto.NewPhaseChangeEvent(phase))
	o.logRun("phase %s started", phase)
	return nil
}

// render renders a system role prompt and a user message template.
func (o *Orchestrator) render(role, message prompts.Template, data *prompts.TemplateData) (string, string, error) {
	system, err := o.renderer.Render(role, data)
	if err != nil {
		return "", "", err
	}
	user, err := o.renderer.Render(message, data)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

// newRequest builds a completion request, applying the configured token
// and temperature overrides when present.
func (o *Orchestrator) newRequest(system, user string) llm.CompletionRequest {
	req := llm.NewCompletionRequest([]llm.CompletionMessage{
		llm.NewSystemMessage(system),
		llm.NewUserMessage(user),
	})
	if o.cfg.MaxTokens > 0 {
		req.MaxTokens = o.cfg.MaxTokens
	}
	if o.cfg.Temperature > 0 {
		req.Temperature = o.cfg.Temperature
	}
	return req
}

// callStreaming invokes the backend and forwards each fragment as a
// token event. The concatenation of the forwarded fragments is the
// returned full text, so clients can reconstruct the stored result from
// the token stream alone.
func (o *Orchestrator) callStreaming(ctx context.Context, system, user string) (string, error) {
	req := o.newRequest(system, user)

	start := time.Now()
	ch, err := o.client.Stream(ctx, req)
	if err != nil {
		o.observeBackend(system+user, "", false, time.Since(start))
		return "", err
	}

	var full strings.Builder
	for chunk := range ch {
		if chunk.Error != nil {
			o.observeBackend(system+user, full.String(), false, time.Since(start))
			return full.String(), chunk.Error
		}
		if chunk.Done {
			break
		}
		if chunk.Content == "" {
			continue
		}
		if o.abortRequested.Load() {
			return full.String(), errAborted
		}
		o.emit(proto.NewTokenEvent(chunk.Content))
		full.WriteString(chunk.Content)
	}
	o.observeBackend(system+user, full.String(), true, time.Since(start))
	return full.String(), nil
}

// call invokes the backend synchronously without token events.
func (o *Orchestrator) call(ctx context.Context, system, user string) (string, error) {
	if o.abortRequested.Load() {
		return "", errAborted
	}
	req := o.newRequest(system, user)
	start := time.Now()
	resp, err := o.client.Complete(ctx, req)
	o.observeBackend(system+user, resp.Content, err == nil, time.Since(start))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (o *Orchestrator) observeBackend(prompt, completion string, success bool, duration time.Duration) {
	if o.recorder == nil {
		return
	}
	o.recorder.ObserveBackendRequest(
		o.client.ModelName(),
		string(o.run.Phase),
		o.ctxmgr.CountTokens(prompt),
		o.ctxmgr.CountTokens(completion),
		success,
		duration,
	)
}

func (o *Orchestrator) observePhase(phase proto.Phase, start time.Time) {
	if o.recorder != nil {
		o.recorder.ObservePhase(string(phase), time.Since(start))
	}
}

func (o *Orchestrator) analyzing(ctx context.Context) error {
	if err := o.enterPhase(proto.PhaseAnalyzing); err != nil {
		return err
	}
	start := time.Now()
	defer o.observePhase(proto.PhaseAnalyzing, start)

	system, user, err := o.render(prompts.AnalyzerRoleTemplate, prompts.AnalysisTemplate, &prompts.TemplateData{
		Goal:         o.run.UserGoal,
		Language:     o.cfg.Language,
		ContextFiles: o.ctxmgr.AnalysisContext(),
	})
	if err != nil {
		return err
	}
	result, err := o.callStreaming(ctx, system, user)
	if err != nil {
		return err
	}
	o.run.AnalysisResult = result
	return nil
}

func (o *Orchestrator) planning(ctx context.Context) error {
	if err := o.enterPhase(proto.PhasePlanning); err != nil {
		return err
	}
	start := time.Now()
	defer o.observePhase(proto.PhasePlanning, start)

	system, user, err := o.render(prompts.PlannerRoleTemplate, prompts.PlanningTemplate, &prompts.TemplateData{
		Goal:     o.run.UserGoal,
		Analysis: o.run.AnalysisResult,
	})
	if err != nil {
		return err
	}
	result, err := o.callStreaming(ctx, system, user)
	if err != nil {
		return err
	}
	o.run.PlanningResult = result
	return nil
}

func (o *Orchestrator) structuring(ctx context.Context) error {
	if err := o.enterPhase(proto.PhaseStructuring); err != nil {
		return err
	}
	start := time.Now()
	defer o.observePhase(proto.PhaseStructuring, start)

	system, user, err := o.render(prompts.StructurerRoleTemplate, prompts.StructuringTemplate, &prompts.TemplateData{
		Goal: o.run.UserGoal,
		Plan: o.run.PlanningResult,
	})
	if err != nil {
		return err
	}
	response, err := o.callStreaming(ctx, system, user)
	if err != nil {
		return err
	}

	parsed := ParseTaskList(response)
	if parsed.Fallback {
		o.logger.Warn("structuring output unparseable, creating fallback task")
		o.logRun("structuring output unparseable, using fallback task")
	}
	tasks := parsed.Materialize()
	if err := o.run.SetTasks(tasks); err != nil {
		return err
	}
	for _, task := range tasks {
		o.emit(proto.NewTaskUpdateEvent(task))
	}
	o.logger.Info("run %s structured into %d tasks", o.run.ID, len(tasks))
	return nil
}

func (o *Orchestrator) executing(ctx context.Context) error {
	if err := o.enterPhase(proto.PhaseExecuting); err != nil {
		return err
	}
	start := time.Now()
	defer o.observePhase(proto.PhaseExecuting, start)

	proto.SortTasksByPriority(o.run.Tasks)
	for _, task := range o.run.Tasks {
		if o.abortRequested.Load() {
			return errAborted
		}
		if err := o.executeTask(ctx, task); err != nil {
			if ferr := task.Transition(proto.TaskStatusFailed); ferr != nil {
				o.logger.Error("task failure transition: %v", ferr)
			}
			o.emit(proto.NewTaskUpdateEvent(task))
			return err
		}
	}
	return nil
}

// executeTask walks one task through the analyzing, coding, reviewing,
// and done statuses. Task processing is sequential per run.
func (o *Orchestrator) executeTask(ctx context.Context, task *proto.Task) error {
	o.run.CurrentTaskID = task.ID

	if err := task.Transition(proto.TaskStatusAnalyzing); err != nil {
		return err
	}
	o.emit(proto.NewTaskUpdateEvent(task))

	analysisData := &prompts.TemplateData{
		TaskTitle:       task.Title,
		TaskDescription: task.Description,
		FilePath:        task.FilePath,
	}
	if file, ok := o.ctxmgr.FileForTask(task.FilePath); ok {
		analysisData.ContextFiles = []prompts.ContextFile{file}
	}
	system, user, err := o.render(prompts.TaskAnalyzerRoleTemplate, prompts.TaskAnalysisTemplate, analysisData)
	if err != nil {
		return err
	}
	summary, err := o.callStreaming(ctx, system, user)
	if err != nil {
		return err
	}
	task.AppendLog(summary)

	if err := task.Transition(proto.TaskStatusCoding); err != nil {
		return err
	}
	o.emit(proto.NewTaskUpdateEvent(task))

	implData := &prompts.TemplateData{
		TaskTitle:       task.Title,
		TaskDescription: task.Description,
		Analysis:        summary,
		FilePath:        task.FilePath,
	}
	if file, ok := o.ctxmgr.Match(task.FilePath); ok {
		// The implementation call sees the whole file.
		implData.FilePath = file.Path
		implData.FileContent = file.Content
	}
	system, user, err = o.render(prompts.WorkerRoleTemplate, prompts.ImplementationTemplate, implData)
	if err != nil {
		return err
	}
	implementation, err := o.callStreaming(ctx, system, user)
	if err != nil {
		return err
	}
	task.AppendLog(fmt.Sprintf("implementation produced (%d chars)", len(implementation)))

	if err := task.Transition(proto.TaskStatusReviewing); err != nil {
		return err
	}
	o.emit(proto.NewTaskUpdateEvent(task))

	if issues := syntaxIssues(implementation, o.cfg.Language); len(issues) > 0 {
		o.requestSyntaxFix(ctx, task, implementation, issues)
	}

	if err := task.Transition(proto.TaskStatusDone); err != nil {
		return err
	}
	o.emit(proto.NewTaskCompleteEvent(task))
	return nil
}

// requestSyntaxFix fires one corrective worker call for detected
// imbalances. The fix output is not re-validated and does not replace
// the stored implementation; failures only log.
func (o *Orchestrator) requestSyntaxFix(ctx context.Context, task *proto.Task, implementation string, issues []string) {
	task.AppendLog(fmt.Sprintf("syntax check found %d issues", len(issues)))
	o.emit(proto.NewTaskUpdateEvent(task))

	system, user, err := o.render(prompts.WorkerRoleTemplate, prompts.FixTemplate, &prompts.TemplateData{
		FilePath:    task.FilePath,
		FileContent: implementation,
		Issues:      issues,
	})
	if err != nil {
		o.logger.Warn("failed to render fix prompt for task %s: %v", task.ID, err)
		return
	}
	if _, err := o.call(ctx, system, user); err != nil {
		o.logger.Warn("syntax fix call failed for task %s: %v", task.ID, err)
	}
}

func (o *Orchestrator) reviewing(ctx context.Context) error {
	if err := o.enterPhase(proto.PhaseReviewing); err != nil {
		return err
	}
	start := time.Now()
	defer o.observePhase(proto.PhaseReviewing, start)

	summaries := make([]string, 0, len(o.run.Tasks))
	for _, task := range o.run.CompletedTasks() {
		summaries = append(summaries, fmt.Sprintf("%s: %s", task.Title, task.LastLog()))
	}
	analysisExcerpt := contextmgr.Truncate(o.run.AnalysisResult, contextmgr.SupervisorExcerptBytes)

	workerSystem, err := o.renderer.Render(prompts.WorkerRoleTemplate, &prompts.TemplateData{})
	if err != nil {
		return err
	}

	fixes := 0
	for {
		system, user, err := o.render(prompts.SupervisorRoleTemplate, prompts.SupervisorReviewTemplate, &prompts.TemplateData{
			Goal:          o.run.UserGoal,
			Analysis:      analysisExcerpt,
			TaskSummaries: summaries,
			Feedback:      o.run.SupervisorFeedback,
		})
		if err != nil {
			return err
		}
		verdict, err := o.call(ctx, system, user)
		if err != nil {
			return err
		}
		o.run.SupervisorFeedback = verdict
		o.emit(proto.NewSupervisorFeedbackEvent(verdict))

		if strings.Contains(verdict, passedMarker) {
			o.run.SupervisorPassCount++
			o.logRun("supervisor passed the run")
			return nil
		}
		if fixes >= o.cfg.SupervisorMaxRetries {
			o.logger.Warn("supervisor retries exhausted for run %s after %d fixes", o.run.ID, fixes)
			o.logRun("supervisor retries exhausted without a pass")
			return nil
		}
		fixUser := fmt.Sprintf("Address the following review feedback:\n\n%s", verdict)
		if _, err := o.call(ctx, workerSystem, fixUser); err != nil {
			return err
		}
		fixes++
	}
}

// executeSingleCall is the short-circuit path for minimal backends: one
// worker call with the raw goal, bypassing analysis, planning,
// structuring, and review.
func (o *Orchestrator) executeSingleCall(ctx context.Context) error {
	if err := o.enterPhase(proto.PhaseExecuting); err != nil {
		return err
	}
	start := time.Now()
	defer o.observePhase(proto.PhaseExecuting, start)

	system, err := o.renderer.Render(prompts.WorkerRoleTemplate, &prompts.TemplateData{})
	if err != nil {
		return err
	}
	result, err := o.callStreaming(ctx, system, o.run.UserGoal)
	if err != nil {
		return err
	}
	o.logRun("single-call response produced (%d chars)", len(result))
	return nil
}
