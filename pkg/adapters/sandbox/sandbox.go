// Package sandbox defines the contract for remote sandboxed computers:
// a Provisioner that starts and stops instances, and a Session exposing the
// three actuator surfaces (pointer/keyboard, shell, file editor) the agent
// tools drive. The session's remote-side state (mouse position, shell cwd,
// open files) is mutated by every call; callers must not share one session
// across concurrent runs.
package sandbox

import (
	"context"
	"fmt"
	"sync"
)

// Size selects the instance class to provision.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// SurfaceResult is the normalized outcome of any surface call. A remote
// failure (bad path, bad command) arrives as Error, not as a Go error.
type SurfaceResult struct {
	Output      string `json:"output,omitempty"`
	Error       string `json:"error,omitempty"`
	Base64Image string `json:"base64_image,omitempty"`
	System      string `json:"system,omitempty"`
}

// EditRequest carries the file-editor surface arguments. Fields beyond
// Command and Path are command-specific and forwarded as-is.
type EditRequest struct {
	Command    string `json:"command"`
	Path       string `json:"path"`
	FileText   string `json:"file_text,omitempty"`
	ViewRange  []int  `json:"view_range,omitempty"`
	OldStr     string `json:"old_str,omitempty"`
	NewStr     string `json:"new_str,omitempty"`
	InsertLine *int   `json:"insert_line,omitempty"`
}

// Session is a handle to one live instance. The caller that provisioned it
// owns its lifecycle; the agent loop only borrows it.
type Session interface {
	// ID returns the provider-assigned instance identifier.
	ID() string
	// Computer drives the pointer/keyboard surface.
	Computer(ctx context.Context, action string, coordinate []int, text string) (SurfaceResult, error)
	// Bash runs a command in the instance's persistent shell; restart
	// recycles that shell context.
	Bash(ctx context.Context, command string, restart bool) (SurfaceResult, error)
	// Edit drives the file-editor surface.
	Edit(ctx context.Context, req EditRequest) (SurfaceResult, error)
	// CDPURL returns the Chrome DevTools endpoint of the instance's
	// browser, starting the browser if needed.
	CDPURL(ctx context.Context) (string, error)
}

// Provisioner starts and stops instances.
type Provisioner interface {
	Start(ctx context.Context, size Size) (Session, error)
	Stop(ctx context.Context, s Session) error
	// StreamURL returns a URL for watching the instance live; purely
	// informational.
	StreamURL(ctx context.Context, s Session) (string, error)
}

// Factory constructs a Provisioner from provider-specific config.
type Factory func(ctx context.Context, cfg map[string]any) (Provisioner, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers a Provisioner factory under a provider name.
func Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("sandbox: empty provider name")
	}
	if f == nil {
		return fmt.Errorf("sandbox: nil factory for %q", name)
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := factories[name]; exists {
		return fmt.Errorf("sandbox: provider %q already registered", name)
	}
	factories[name] = f
	return nil
}

// Resolve gets a registered factory by name.
func Resolve(name string) (Factory, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// New constructs a Provisioner for a registered provider.
func New(ctx context.Context, provider string, cfg map[string]any) (Provisioner, error) {
	f, ok := Resolve(provider)
	if !ok {
		return nil, fmt.Errorf("sandbox: unknown provider %q", provider)
	}
	return f(ctx, cfg)
}
