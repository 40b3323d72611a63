// Package store persists run transcripts: one row per run plus one row per
// loop iteration, so finished runs can be replayed and audited offline.
package store

import (
	"context"
	"time"
)

// RunRecord is the persisted header of one agent run.
type RunRecord struct {
	RunID       string
	Mode        string // "launch" | "extract"
	Model       string
	Instruction string
	Answer      string
	Status      string // "running" | "succeeded" | "failed"
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// StepRow is the persisted form of one loop iteration. Assistant and
// Results hold the turn's blocks as JSON.
type StepRow struct {
	RunID      string
	Iteration  int
	Assistant  []byte
	Results    []byte
	StopReason string
	CreatedAt  time.Time
}

// TranscriptStore persists runs and their steps.
type TranscriptStore interface {
	CreateRun(ctx context.Context, run RunRecord) error
	FinishRun(ctx context.Context, runID, status, answer, errText string) error
	AppendStep(ctx context.Context, step StepRow) error
	GetRun(ctx context.Context, runID string) (RunRecord, error)
	ListSteps(ctx context.Context, runID string) ([]StepRow, error)
}
