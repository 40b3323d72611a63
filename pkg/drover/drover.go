// Package drover is the entry point for agent runs. Launch hands a sandboxed
// computer to the model with an open-ended instruction; Extract uses the
// same loop to fill a Go struct with information the agent observes.
package drover

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drover-ai/drover/pkg/adapters/llm"
	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/agent"
	"github.com/drover-ai/drover/pkg/agent/tools"
	"github.com/drover-ai/drover/pkg/extract"
	"github.com/drover-ai/drover/pkg/prompt"
	"github.com/drover-ai/drover/pkg/runtime"
	"github.com/drover-ai/drover/pkg/store"
)

// Config carries the cross-cutting pieces shared by both run modes.
// Zero value works: nop logger, default tool set, default iteration cap,
// no transcript.
type Config struct {
	Logger        *zap.Logger
	Tools         []agent.Tool
	MaxIterations int
	TokenBudget   int
	Transcripts   store.TranscriptStore
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

// LaunchRequest describes an open-ended run.
type LaunchRequest struct {
	Instruction string
	// URL, when set, is opened in the instance browser before the run so
	// the agent does not spend iterations doing it by hand.
	URL   string
	Size  sandbox.Size
	Model string
}

// ExtractRequest describes an information-retrieval run. Command overrides
// the instruction otherwise derived from the query type.
type ExtractRequest struct {
	URL     string
	Command string
	Size    sandbox.Size
	Model   string
}

// Launch provisions an instance, runs the agent loop on the instruction,
// and returns the agent's final report. The instance is stopped on every
// path, including errors.
func Launch(ctx context.Context, client llm.Client, prov sandbox.Provisioner, cfg Config, req LaunchRequest) (string, error) {
	system := prompt.Launch(time.Now())
	return run(ctx, client, prov, cfg, runParams{
		mode:        "launch",
		system:      system,
		instruction: req.Instruction,
		url:         req.URL,
		size:        req.Size,
		model:       req.Model,
	})
}

// Extract provisions an instance, runs the agent loop on a task derived
// from query's type, and decodes the agent's JSON answer into query.
// query must be a non-nil pointer to a struct.
func Extract(ctx context.Context, client llm.Client, prov sandbox.Provisioner, cfg Config, query any, req ExtractRequest) error {
	schema, command, err := prompt.DeriveTask(query, req.Command)
	if err != nil {
		return err
	}
	system, err := prompt.Extract(time.Now(), schema)
	if err != nil {
		return err
	}
	answer, err := run(ctx, client, prov, cfg, runParams{
		mode:        "extract",
		system:      system,
		instruction: command,
		url:         req.URL,
		size:        req.Size,
		model:       req.Model,
	})
	if err != nil {
		return err
	}
	// TODO: on schema mismatch, feed the validation error back to the
	// model and re-request once before giving up.
	return extract.Unmarshal(schema, answer, query)
}

// ExtractJSON is Extract for callers without a Go type: the schema is
// supplied directly and the validated JSON object is returned raw. An
// empty Command falls back to the observe-only default task.
func ExtractJSON(ctx context.Context, client llm.Client, prov sandbox.Provisioner, cfg Config, schema []byte, req ExtractRequest) (json.RawMessage, error) {
	command := req.Command
	if command == "" {
		command = prompt.DefaultTask
	}
	system, err := prompt.Extract(time.Now(), schema)
	if err != nil {
		return nil, err
	}
	answer, err := run(ctx, client, prov, cfg, runParams{
		mode:        "extract",
		system:      system,
		instruction: command,
		url:         req.URL,
		size:        req.Size,
		model:       req.Model,
	})
	if err != nil {
		return nil, err
	}
	span, err := extract.JSONSpan(answer)
	if err != nil {
		return nil, err
	}
	if err := extract.Validate(schema, []byte(span)); err != nil {
		return nil, err
	}
	return json.RawMessage(span), nil
}

type runParams struct {
	mode        string
	system      string
	instruction string
	url         string
	size        sandbox.Size
	model       string
}

func run(ctx context.Context, client llm.Client, prov sandbox.Provisioner, cfg Config, p runParams) (answer string, err error) {
	log := cfg.logger()
	runID := uuid.NewString()

	size := p.size
	if size == "" {
		size = sandbox.SizeSmall
	}

	session, err := prov.Start(ctx, size)
	if err != nil {
		return "", err
	}
	defer func() {
		if stopErr := prov.Stop(ctx, session); stopErr != nil {
			log.Warn("instance stop failed",
				zap.String("instance_id", session.ID()),
				zap.Error(stopErr))
		}
	}()

	if streamURL, serr := prov.StreamURL(ctx, session); serr == nil {
		log.Info("instance ready",
			zap.String("instance_id", session.ID()),
			zap.String("stream_url", streamURL))
	}

	if p.url != "" {
		if oerr := sandbox.OpenURL(ctx, session, p.url); oerr != nil {
			log.Warn("pre-navigation failed, agent will navigate itself",
				zap.String("url", p.url),
				zap.Error(oerr))
		}
	}

	toolset := cfg.Tools
	if toolset == nil {
		toolset = tools.Defaults()
	}
	registry, err := agent.NewRegistry(log, toolset...)
	if err != nil {
		return "", err
	}

	opts := []runtime.Option{runtime.WithLogger(log)}
	if cfg.MaxIterations > 0 {
		opts = append(opts, runtime.WithMaxIterations(cfg.MaxIterations))
	}
	if cfg.TokenBudget > 0 {
		est, terr := runtime.NewTikTokenEstimator(p.model)
		if terr != nil {
			return "", terr
		}
		opts = append(opts, runtime.WithPromptBudget(est, cfg.TokenBudget))
	}
	if cfg.Transcripts != nil {
		rec := store.RunRecord{
			RunID:       runID,
			Mode:        p.mode,
			Model:       p.model,
			Instruction: p.instruction,
			Status:      "running",
			StartedAt:   time.Now().UTC(),
		}
		if cerr := cfg.Transcripts.CreateRun(ctx, rec); cerr != nil {
			log.Warn("transcript create failed", zap.Error(cerr))
		} else {
			opts = append(opts, runtime.WithRecorder(store.NewRecorder(cfg.Transcripts)))
			defer func() {
				status, errText := "succeeded", ""
				if err != nil {
					status, errText = "failed", err.Error()
				}
				if ferr := cfg.Transcripts.FinishRun(ctx, runID, status, answer, errText); ferr != nil {
					log.Warn("transcript finish failed", zap.Error(ferr))
				}
			}()
		}
	}

	runner := runtime.NewRunner(client, registry, opts...)
	answer, err = runner.Run(ctx, session, runtime.RunSpec{
		RunID:       runID,
		Model:       p.model,
		System:      p.system,
		Instruction: p.instruction,
	})
	return answer, err
}
