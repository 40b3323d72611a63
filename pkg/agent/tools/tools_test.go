package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
)

// fakeSession records the last surface call and replays canned results.
type fakeSession struct {
	computerAction string
	computerCoord  []int
	computerText   string
	bashCommand    string
	bashRestart    bool
	editReq        sandbox.EditRequest

	result sandbox.SurfaceResult
	err    error
}

func (f *fakeSession) ID() string { return "fake-1" }

func (f *fakeSession) Computer(ctx context.Context, action string, coordinate []int, text string) (sandbox.SurfaceResult, error) {
	f.computerAction, f.computerCoord, f.computerText = action, coordinate, text
	return f.result, f.err
}

func (f *fakeSession) Bash(ctx context.Context, command string, restart bool) (sandbox.SurfaceResult, error) {
	f.bashCommand, f.bashRestart = command, restart
	return f.result, f.err
}

func (f *fakeSession) Edit(ctx context.Context, req sandbox.EditRequest) (sandbox.SurfaceResult, error) {
	f.editReq = req
	return f.result, f.err
}

func (f *fakeSession) CDPURL(ctx context.Context) (string, error) { return "", errors.New("no browser") }

func TestComputerScreenshot(t *testing.T) {
	s := &fakeSession{result: sandbox.SurfaceResult{Base64Image: "aGk="}}
	out, err := Computer{}.Invoke(context.Background(), map[string]any{"action": "screenshot"}, s)
	if err != nil {
		t.Fatal(err)
	}
	if s.computerAction != "screenshot" {
		t.Fatalf("action = %q", s.computerAction)
	}
	if out.IsError || out.Base64Image != "aGk=" {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestComputerClickCoordinate(t *testing.T) {
	s := &fakeSession{}
	args := map[string]any{"action": "left_click", "coordinate": []any{float64(120), float64(45)}}
	if _, err := (Computer{}).Invoke(context.Background(), args, s); err != nil {
		t.Fatal(err)
	}
	if len(s.computerCoord) != 2 || s.computerCoord[0] != 120 || s.computerCoord[1] != 45 {
		t.Fatalf("coordinate = %v", s.computerCoord)
	}
}

func TestComputerMissingAction(t *testing.T) {
	s := &fakeSession{}
	out, err := Computer{}.Invoke(context.Background(), map[string]any{}, s)
	if err == nil || out != nil {
		t.Fatalf("out = %+v err = %v, want invoke error", out, err)
	}
	if s.computerAction != "" {
		t.Fatalf("surface was called with action %q", s.computerAction)
	}
}

func TestComputerTransportError(t *testing.T) {
	s := &fakeSession{err: errors.New("connection reset")}
	if _, err := (Computer{}).Invoke(context.Background(), map[string]any{"action": "key"}, s); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestBashCommand(t *testing.T) {
	s := &fakeSession{result: sandbox.SurfaceResult{Output: "hello\n"}}
	out, err := Bash{}.Invoke(context.Background(), map[string]any{"command": "echo hello"}, s)
	if err != nil {
		t.Fatal(err)
	}
	if s.bashCommand != "echo hello" || s.bashRestart {
		t.Fatalf("command = %q restart = %v", s.bashCommand, s.bashRestart)
	}
	if out.Output != "hello\n" {
		t.Fatalf("output = %q", out.Output)
	}
}

func TestBashRemoteFailureBecomesErrorOutcome(t *testing.T) {
	s := &fakeSession{result: sandbox.SurfaceResult{Error: "frobnicate: not found"}}
	out, err := Bash{}.Invoke(context.Background(), map[string]any{"command": "frobnicate"}, s)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsError || out.Error != "frobnicate: not found" {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestBashRestartWithoutCommand(t *testing.T) {
	s := &fakeSession{}
	out, err := Bash{}.Invoke(context.Background(), map[string]any{"restart": true}, s)
	if err != nil {
		t.Fatal(err)
	}
	if out.IsError || !s.bashRestart {
		t.Fatalf("outcome = %+v restart = %v", out, s.bashRestart)
	}
}

func TestEditorStrReplace(t *testing.T) {
	s := &fakeSession{result: sandbox.SurfaceResult{Output: "ok"}}
	args := map[string]any{
		"command": "str_replace",
		"path":    "/tmp/a.txt",
		"old_str": "foo",
		"new_str": "bar",
	}
	out, err := Editor{}.Invoke(context.Background(), args, s)
	if err != nil {
		t.Fatal(err)
	}
	if s.editReq.Command != "str_replace" || s.editReq.Path != "/tmp/a.txt" || s.editReq.OldStr != "foo" || s.editReq.NewStr != "bar" {
		t.Fatalf("request = %+v", s.editReq)
	}
	if out.IsError {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestEditorInsertLine(t *testing.T) {
	s := &fakeSession{}
	args := map[string]any{
		"command":     "insert",
		"path":        "/tmp/a.txt",
		"insert_line": float64(7),
		"new_str":     "added",
	}
	if _, err := (Editor{}).Invoke(context.Background(), args, s); err != nil {
		t.Fatal(err)
	}
	if s.editReq.InsertLine == nil || *s.editReq.InsertLine != 7 {
		t.Fatalf("insert_line = %v", s.editReq.InsertLine)
	}
}

func TestEditorMissingPath(t *testing.T) {
	out, err := Editor{}.Invoke(context.Background(), map[string]any{"command": "view"}, &fakeSession{})
	if err == nil || out != nil {
		t.Fatalf("out = %+v err = %v, want invoke error", out, err)
	}
}

func TestBashMissingCommand(t *testing.T) {
	s := &fakeSession{}
	out, err := Bash{}.Invoke(context.Background(), map[string]any{}, s)
	if err == nil || out != nil {
		t.Fatalf("out = %+v err = %v, want invoke error", out, err)
	}
}

func TestDefaultsOrder(t *testing.T) {
	names := []string{}
	for _, tool := range Defaults() {
		names = append(names, tool.Describe().Name)
	}
	want := []string{"computer", "bash", "str_replace_editor"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("defaults order = %v, want %v", names, want)
		}
	}
}
