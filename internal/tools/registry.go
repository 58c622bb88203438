// Package tools holds the venue fetch tools the recommendation generator may
// call. A tool never fails the run: every problem comes back as an error
// object inside the returned string.
package tools

import (
	"context"
	"fmt"
)

// Tool is a named, argument-free fetch capability.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context) string
}

// Registry is an ordered, name-unique tool collection. Order is registration order.
type Registry struct {
	tools []Tool
	index map[string]Tool
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{index: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(t Tool) error {
	if t.Name() == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.index[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools = append(r.tools, t)
	r.index[t.Name()] = t
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.index[name]
	return t, ok
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	return append([]Tool(nil), r.tools...)
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name()
	}
	return names
}

func (r *Registry) Len() int { return len(r.tools) }
