// Package scrapybara is a Scrapybara-backed sandbox provider. It talks to
// the hosted REST API; every surface call is a synchronous POST returning
// the {output, error, base64_image, system} envelope.
package scrapybara

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
)

const (
	defaultBaseURL = "https://api.scrapybara.com/v1"
	// Instance boots can take a while on cold starts.
	defaultTimeout = 120 * time.Second
)

type provisioner struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type session struct {
	p  *provisioner
	id string
}

func (s *session) ID() string { return s.id }

type startRequest struct {
	InstanceType string `json:"instance_type"`
}

type startResponse struct {
	InstanceID string `json:"instance_id"`
}

func (p *provisioner) Start(ctx context.Context, size sandbox.Size) (sandbox.Session, error) {
	if size == "" {
		size = sandbox.SizeSmall
	}
	var resp startResponse
	if err := p.post(ctx, "/start", startRequest{InstanceType: string(size)}, &resp); err != nil {
		return nil, fmt.Errorf("scrapybara: start: %w", err)
	}
	if resp.InstanceID == "" {
		return nil, fmt.Errorf("scrapybara: start returned no instance id")
	}
	return &session{p: p, id: resp.InstanceID}, nil
}

func (p *provisioner) Stop(ctx context.Context, s sandbox.Session) error {
	if s == nil {
		return nil
	}
	if err := p.post(ctx, "/instance/"+s.ID()+"/stop", struct{}{}, nil); err != nil {
		return fmt.Errorf("scrapybara: stop: %w", err)
	}
	return nil
}

func (p *provisioner) StreamURL(ctx context.Context, s sandbox.Session) (string, error) {
	var resp struct {
		StreamURL string `json:"stream_url"`
	}
	if err := p.get(ctx, "/instance/"+s.ID()+"/stream_url", &resp); err != nil {
		return "", fmt.Errorf("scrapybara: stream_url: %w", err)
	}
	return resp.StreamURL, nil
}

type computerRequest struct {
	Action     string `json:"action"`
	Coordinate []int  `json:"coordinate,omitempty"`
	Text       string `json:"text,omitempty"`
}

func (s *session) Computer(ctx context.Context, action string, coordinate []int, text string) (sandbox.SurfaceResult, error) {
	var out sandbox.SurfaceResult
	err := s.p.post(ctx, "/instance/"+s.id+"/computer", computerRequest{Action: action, Coordinate: coordinate, Text: text}, &out)
	return out, err
}

type bashRequest struct {
	Command string `json:"command,omitempty"`
	Restart bool   `json:"restart,omitempty"`
}

func (s *session) Bash(ctx context.Context, command string, restart bool) (sandbox.SurfaceResult, error) {
	var out sandbox.SurfaceResult
	err := s.p.post(ctx, "/instance/"+s.id+"/bash", bashRequest{Command: command, Restart: restart}, &out)
	return out, err
}

func (s *session) Edit(ctx context.Context, req sandbox.EditRequest) (sandbox.SurfaceResult, error) {
	var out sandbox.SurfaceResult
	err := s.p.post(ctx, "/instance/"+s.id+"/edit", req, &out)
	return out, err
}

func (s *session) CDPURL(ctx context.Context) (string, error) {
	var resp struct {
		CDPURL string `json:"cdp_url"`
	}
	if err := s.p.post(ctx, "/instance/"+s.id+"/browser/start", struct{}{}, &resp); err != nil {
		return "", fmt.Errorf("scrapybara: browser start: %w", err)
	}
	return resp.CDPURL, nil
}

func (p *provisioner) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req, out)
}

func (p *provisioner) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	return p.do(req, out)
}

func (p *provisioner) do(req *http.Request, out any) error {
	req.Header.Set("x-api-key", p.apiKey)
	res, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, res.StatusCode, truncate(string(b), 256))
	}
	if out == nil || len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, out)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Factory creates a Scrapybara provisioner. cfg keys: api_key, base_url.
func Factory(ctx context.Context, cfg map[string]any) (sandbox.Provisioner, error) { // nolint: revive
	_ = ctx
	apiKey := os.Getenv("SCRAPYBARA_API_KEY")
	if v, ok := cfg["api_key"].(string); ok && v != "" {
		apiKey = v
	}
	if apiKey == "" {
		return nil, fmt.Errorf("scrapybara: missing API key; set SCRAPYBARA_API_KEY or cfg.api_key")
	}
	baseURL := defaultBaseURL
	if v, ok := cfg["base_url"].(string); ok && v != "" {
		baseURL = v
	}
	return &provisioner{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

func init() {
	_ = sandbox.Register("scrapybara", Factory)
}
