package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alucardeht/x-mcp/internal/logger"
)

var log = logger.ForComponent("tools")

// Tool decodes its own arguments, talks to the upstream and renders the
// outcome as an Envelope. A returned error is a business failure; the
// registry folds it into a failure envelope.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, input json.RawMessage) (Envelope, error)
}

type AnnotatedTool interface {
	Tool
	Title() string
	Annotations() map[string]bool
}

// Registry is the routing table. It is filled once at startup and only
// read afterwards; List preserves registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// RegisterMatching registers the tools whose names match at least one glob
// in patterns and returns the names it skipped. An empty pattern list
// enables everything.
func (r *Registry) RegisterMatching(patterns []string, tools ...Tool) ([]string, error) {
	var skipped []string
	for _, tool := range tools {
		ok, err := Enabled(tool.Name(), patterns)
		if err != nil {
			return nil, err
		}
		if !ok {
			skipped = append(skipped, tool.Name())
			continue
		}
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return skipped, nil
}

func Enabled(name string, patterns []string) (bool, error) {
	if len(patterns) == 0 {
		return true, nil
	}
	for _, pattern := range patterns {
		match, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid tool pattern %q: %w", pattern, err)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Call routes one tools/call. It never fails: unknown tools, argument
// errors, upstream errors and panics all come back as failure envelopes.
func (r *Registry) Call(ctx context.Context, name string, input json.RawMessage) (env Envelope) {
	tool, ok := r.Get(name)
	if !ok {
		return Failure(NewToolNotFoundError(name).Message)
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("tool panic recovered",
				"tool", name,
				"panic", rec,
				"stack", string(debug.Stack()))
			env = Failure(NewToolExecutionError(name, fmt.Errorf("%v", rec)).Message)
		}
	}()

	result, err := tool.Execute(ctx, input)
	if err != nil {
		return Failure(err.Error())
	}
	if result == nil {
		return Failure(NewToolExecutionError(name, fmt.Errorf("empty result")).Message)
	}
	return result
}
