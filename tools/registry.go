package tools

import (
	"errors"
	"fmt"

	"github.com/petasbytes/job-agent/internal/provider"
)

// Registry maps tool names to definitions. It is immutable after NewRegistry
// and safe for concurrent readers.
type Registry struct {
	byName map[string]ToolDefinition
	order  []string
}

// NewRegistry indexes defs, keeping their order for advertisement.
func NewRegistry(defs ...ToolDefinition) (*Registry, error) {
	r := &Registry{byName: make(map[string]ToolDefinition, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, errors.New("tool name is empty")
		}
		if d.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", d.Name)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("tool %s registered twice", d.Name)
		}
		r.byName[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (ToolDefinition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Specs lists {name, description, schema} for every tool in registration order.
func (r *Registry) Specs() []provider.ToolSpec {
	out := make([]provider.ToolSpec, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byName[n].Spec())
	}
	return out
}

func (r *Registry) Names() []string { return append([]string(nil), r.order...) }

func (r *Registry) Len() int { return len(r.order) }
