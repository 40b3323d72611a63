package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/drover-ai/drover/pkg/runtime"
)

// Recorder adapts a TranscriptStore to the loop's step hook.
type Recorder struct {
	ts TranscriptStore
}

// NewRecorder wraps a TranscriptStore.
func NewRecorder(ts TranscriptStore) *Recorder {
	return &Recorder{ts: ts}
}

func (r *Recorder) RecordStep(ctx context.Context, step runtime.StepRecord) error {
	assistant, err := json.Marshal(step.Assistant)
	if err != nil {
		return err
	}
	results, err := json.Marshal(step.Results)
	if err != nil {
		return err
	}
	return r.ts.AppendStep(ctx, StepRow{
		RunID:      step.RunID,
		Iteration:  step.Iteration,
		Assistant:  assistant,
		Results:    results,
		StopReason: step.StopReason,
		CreatedAt:  time.Now().UTC(),
	})
}
