package drover

import (
	"context"
	"errors"
	"testing"

	"github.com/drover-ai/drover/pkg/adapters/llm"
	"github.com/drover-ai/drover/pkg/adapters/sandbox"
)

type fakeSession struct{ id string }

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Computer(ctx context.Context, action string, coordinate []int, text string) (sandbox.SurfaceResult, error) {
	return sandbox.SurfaceResult{Base64Image: "aW1n"}, nil
}

func (f *fakeSession) Bash(ctx context.Context, command string, restart bool) (sandbox.SurfaceResult, error) {
	return sandbox.SurfaceResult{Output: "ok"}, nil
}

func (f *fakeSession) Edit(ctx context.Context, req sandbox.EditRequest) (sandbox.SurfaceResult, error) {
	return sandbox.SurfaceResult{}, nil
}

func (f *fakeSession) CDPURL(ctx context.Context) (string, error) {
	return "", errors.New("no browser")
}

type fakeProvisioner struct {
	startErr error
	started  int
	stopped  int
	size     sandbox.Size
}

func (p *fakeProvisioner) Start(ctx context.Context, size sandbox.Size) (sandbox.Session, error) {
	if p.startErr != nil {
		return nil, p.startErr
	}
	p.started++
	p.size = size
	return &fakeSession{id: "i-1"}, nil
}

func (p *fakeProvisioner) Stop(ctx context.Context, s sandbox.Session) error {
	p.stopped++
	return nil
}

func (p *fakeProvisioner) StreamURL(ctx context.Context, s sandbox.Session) (string, error) {
	return "https://stream.example/i-1", nil
}

type cannedClient struct {
	answers []string
	err     error
}

func (c *cannedClient) Name() string { return "canned" }

func (c *cannedClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if c.err != nil {
		return llm.Response{}, c.err
	}
	answer := "done"
	if len(c.answers) > 0 {
		answer = c.answers[0]
		c.answers = c.answers[1:]
	}
	return llm.Response{
		Content:    []llm.Block{llm.TextBlock(answer)},
		StopReason: "end_turn",
	}, nil
}

func TestLaunchReturnsAnswerAndStopsInstance(t *testing.T) {
	prov := &fakeProvisioner{}
	answer, err := Launch(context.Background(), &cannedClient{answers: []string{"report: all good"}}, prov, Config{}, LaunchRequest{
		Instruction: "check the dashboard",
	})
	if err != nil {
		t.Fatal(err)
	}
	if answer != "report: all good" {
		t.Fatalf("answer = %q", answer)
	}
	if prov.started != 1 || prov.stopped != 1 {
		t.Fatalf("started = %d stopped = %d", prov.started, prov.stopped)
	}
	if prov.size != sandbox.SizeSmall {
		t.Fatalf("size = %q, want default small", prov.size)
	}
}

func TestLaunchStopsInstanceOnModelError(t *testing.T) {
	prov := &fakeProvisioner{}
	_, err := Launch(context.Background(), &cannedClient{err: errors.New("model down")}, prov, Config{}, LaunchRequest{
		Instruction: "anything",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if prov.stopped != 1 {
		t.Fatalf("stopped = %d, want 1", prov.stopped)
	}
}

func TestLaunchPropagatesStartError(t *testing.T) {
	prov := &fakeProvisioner{startErr: errors.New("no capacity")}
	_, err := Launch(context.Background(), &cannedClient{}, prov, Config{}, LaunchRequest{Instruction: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if prov.stopped != 0 {
		t.Fatal("stop called for an instance that never started")
	}
}

func TestLaunchHonorsSize(t *testing.T) {
	prov := &fakeProvisioner{}
	_, err := Launch(context.Background(), &cannedClient{}, prov, Config{}, LaunchRequest{
		Instruction: "x",
		Size:        sandbox.SizeLarge,
	})
	if err != nil {
		t.Fatal(err)
	}
	if prov.size != sandbox.SizeLarge {
		t.Fatalf("size = %q", prov.size)
	}
}

type titleQuery struct {
	Title string `json:"title"`
}

func TestExtractFillsQuery(t *testing.T) {
	prov := &fakeProvisioner{}
	client := &cannedClient{answers: []string{`The page shows: {"title": "Example Domain"}`}}
	var q titleQuery
	err := Extract(context.Background(), client, prov, Config{}, &q, ExtractRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if q.Title != "Example Domain" {
		t.Fatalf("query = %+v", q)
	}
	if prov.stopped != 1 {
		t.Fatalf("stopped = %d", prov.stopped)
	}
}

func TestExtractFailsOnProseAnswer(t *testing.T) {
	prov := &fakeProvisioner{}
	client := &cannedClient{answers: []string{"I could not find the information."}}
	var q titleQuery
	err := Extract(context.Background(), client, prov, Config{}, &q, ExtractRequest{})
	if err == nil {
		t.Fatal("expected extraction error")
	}
	if prov.stopped != 1 {
		t.Fatal("instance leaked on extraction failure")
	}
}

func TestExtractRejectsNonStructQuery(t *testing.T) {
	prov := &fakeProvisioner{}
	var notAStruct int
	err := Extract(context.Background(), &cannedClient{}, prov, Config{}, &notAStruct, ExtractRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if prov.started != 0 {
		t.Fatal("instance provisioned for an invalid query")
	}
}
