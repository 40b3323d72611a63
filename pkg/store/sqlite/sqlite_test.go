package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/drover-ai/drover/pkg/store"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	err := s.CreateRun(ctx, store.RunRecord{
		RunID:       "r1",
		Mode:        "launch",
		Model:       "test-model",
		Instruction: "open the dashboard",
		Status:      "running",
		StartedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.FinishRun(ctx, "r1", "succeeded", "done", ""); err != nil {
		t.Fatal(err)
	}

	run, err := s.GetRun(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != "succeeded" || run.Answer != "done" || run.Mode != "launch" {
		t.Fatalf("run = %+v", run)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	s := openTest(t)
	if err := s.FinishRun(context.Background(), "missing", "failed", "", "boom"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestCreateRunRequiresID(t *testing.T) {
	s := openTest(t)
	if err := s.CreateRun(context.Background(), store.RunRecord{}); err == nil {
		t.Fatal("expected error for empty run_id")
	}
}

func TestStepsOrderedByIteration(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if err := s.CreateRun(ctx, store.RunRecord{RunID: "r2", Mode: "extract", Model: "m", Instruction: "i", Status: "running"}); err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{2, 0, 1} {
		err := s.AppendStep(ctx, store.StepRow{
			RunID:      "r2",
			Iteration:  i,
			Assistant:  []byte(`[{"type":"text","text":"t"}]`),
			Results:    []byte(`[]`),
			StopReason: "tool_use",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	steps, err := s.ListSteps(ctx, "r2")
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 3 {
		t.Fatalf("steps = %d", len(steps))
	}
	for i, st := range steps {
		if st.Iteration != i {
			t.Fatalf("step %d iteration = %d", i, st.Iteration)
		}
	}
}

func TestDuplicateIterationRejected(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if err := s.CreateRun(ctx, store.RunRecord{RunID: "r3", Mode: "launch", Model: "m", Instruction: "i", Status: "running"}); err != nil {
		t.Fatal(err)
	}
	step := store.StepRow{RunID: "r3", Iteration: 0}
	if err := s.AppendStep(ctx, step); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendStep(ctx, step); err == nil {
		t.Fatal("expected primary key violation")
	}
}
