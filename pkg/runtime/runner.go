// Package runtime drives the agent control loop: it feeds conversation
// history to the model, dispatches the tool calls the model requests against
// a sandbox session, and folds the results back into the history until the
// model stops asking for tools.
package runtime

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/drover-ai/drover/pkg/adapters/llm"
	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/agent"
	"github.com/drover-ai/drover/pkg/errmodel"
)

// DefaultMaxIterations bounds the loop when the caller does not override it.
const DefaultMaxIterations = 40

// StepRecord captures one loop iteration for the transcript.
type StepRecord struct {
	RunID      string
	Iteration  int
	Assistant  []llm.Block
	Results    []llm.Block
	StopReason string
	Usage      llm.Usage
}

// Recorder persists loop iterations. Recording failures are logged, never
// fatal; the transcript is an observability aid, not part of the run.
type Recorder interface {
	RecordStep(ctx context.Context, step StepRecord) error
}

// Runner executes one agent run against a model client and a tool registry.
type Runner struct {
	client   llm.Client
	registry *agent.Registry
	logger   *zap.Logger

	maxIterations int
	estimator     TokenEstimator
	maxTokens     int
	recorder      Recorder
}

// Option configures the Runner at construction time.
type Option func(*Runner)

// WithMaxIterations caps the number of model round trips per run.
func WithMaxIterations(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxIterations = n
		}
	}
}

// WithPromptBudget aborts a run before a completion whose accumulated text
// history exceeds maxTokens as counted by est.
func WithPromptBudget(est TokenEstimator, maxTokens int) Option {
	return func(r *Runner) {
		if est != nil && maxTokens > 0 {
			r.estimator = est
			r.maxTokens = maxTokens
		}
	}
}

// WithRecorder attaches a transcript recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner constructs a Runner.
func NewRunner(client llm.Client, registry *agent.Registry, opts ...Option) *Runner {
	r := &Runner{
		client:        client,
		registry:      registry,
		logger:        zap.NewNop(),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunSpec describes one run. RunID is assigned when empty.
type RunSpec struct {
	RunID       string
	Model       string
	System      string
	Instruction string
}

// Run executes the loop until the model produces a turn with no tool calls,
// then returns that turn's text. The history is append-only: every
// completion sees every prior turn. Exceeding the iteration cap or the
// prompt budget aborts the run with a model-category error.
func (r *Runner) Run(ctx context.Context, session sandbox.Session, spec RunSpec) (string, error) {
	tr := otel.Tracer("runtime/runner")
	runID := spec.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx, span := tr.Start(ctx, "Runner.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("model", spec.Model),
	))
	defer span.End()

	log := r.logger.With(zap.String("run_id", runID))
	tools := r.toolDefs()
	history := []llm.Message{llm.UserMessage(llm.TextBlock(spec.Instruction))}

	for i := 0; i < r.maxIterations; i++ {
		if r.estimator != nil {
			if used := estimateHistory(r.estimator, spec.System, history); used > r.maxTokens {
				err := errmodel.Model("budget_exceeded", "prompt budget exhausted", map[string]any{
					"run_id": runID, "tokens": used, "max_tokens": r.maxTokens,
				}, nil)
				span.RecordError(err)
				return "", err
			}
		}

		resp, err := r.complete(ctx, llm.Request{
			Model:    spec.Model,
			System:   spec.System,
			Messages: history,
			Tools:    tools,
		}, runID, i)
		if err != nil {
			span.RecordError(err)
			return "", err
		}

		assistant, results := r.dispatchTurn(ctx, session, log, resp.Content)
		history = append(history, llm.Message{Role: llm.RoleAssistant, Content: assistant})

		if r.recorder != nil {
			rec := StepRecord{
				RunID:      runID,
				Iteration:  i,
				Assistant:  assistant,
				Results:    results,
				StopReason: resp.StopReason,
				Usage:      resp.Usage,
			}
			if err := r.recorder.RecordStep(ctx, rec); err != nil {
				log.Warn("transcript record failed", zap.Error(err))
			}
		}

		if len(results) == 0 {
			answer := finalText(assistant)
			log.Info("run complete",
				zap.Int("iterations", i+1),
				zap.Int("answer_len", len(answer)))
			return answer, nil
		}
		history = append(history, llm.Message{Role: llm.RoleUser, Content: results})
	}

	err := errmodel.Model("iteration_limit", "run exceeded iteration cap", map[string]any{
		"run_id": runID, "max_iterations": r.maxIterations,
	}, nil)
	span.RecordError(err)
	return "", err
}

func (r *Runner) complete(ctx context.Context, req llm.Request, runID string, iteration int) (llm.Response, error) {
	tr := otel.Tracer("runtime/runner")
	ctx, span := tr.Start(ctx, "Runner.complete", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("iteration", iteration),
	))
	defer span.End()
	resp, err := r.client.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		return llm.Response{}, errmodel.Model("completion_failed", "model completion failed", map[string]any{"run_id": runID}, err)
	}
	span.SetAttributes(
		attribute.Int64("tokens.input", resp.Usage.InputTokens),
		attribute.Int64("tokens.output", resp.Usage.OutputTokens),
	)
	return resp, nil
}

// dispatchTurn walks the response blocks in order, running each tool_use as
// it is encountered so remote side effects happen in the order the model
// asked for them. It returns the assistant turn verbatim plus the matching
// tool results, result order mirroring tool_use order. A dispatch that
// produced no outcome (unknown tool, invocation failure) contributes no
// result block; a turn made up solely of such calls therefore ends the run.
func (r *Runner) dispatchTurn(ctx context.Context, session sandbox.Session, log *zap.Logger, blocks []llm.Block) (assistant, results []llm.Block) {
	for _, b := range blocks {
		assistant = append(assistant, b)
		switch b.Type {
		case llm.BlockText:
			log.Info("assistant", zap.String("text", b.Text))
		case llm.BlockToolUse:
			log.Info("tool call",
				zap.String("tool", b.Name),
				zap.String("tool_use_id", b.ID),
				zap.Any("input", b.Input))
			if out := r.registry.Dispatch(ctx, b.Name, b.Input, session); out != nil {
				results = append(results, agent.NormalizeOutcome(out, b.ID))
			}
		}
	}
	return assistant, results
}

func (r *Runner) toolDefs() []llm.ToolDef {
	descs := r.registry.Descriptors()
	defs := make([]llm.ToolDef, 0, len(descs))
	for _, d := range descs {
		defs = append(defs, llm.ToolDef{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}
	return defs
}

// finalText joins the text blocks of the final assistant turn.
func finalText(blocks []llm.Block) string {
	var parts []string
	for _, b := range blocks {
		if b.Type == llm.BlockText {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}
