// Package plugin holds the registry of style-generation plugins a
// configuration document may activate.
package plugin

import (
	"fmt"
	"sort"
	"strings"
)

// Plugin describes one activatable plugin.
type Plugin struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Deprecated  string `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// builtin lists the plugins the external build is known to resolve.
var builtin = []Plugin{
	{ID: "daisyui", Description: "Component classes and named color themes"},
	{ID: "@tailwindcss/forms", Description: "Minimal reset styles for form elements"},
	{ID: "@tailwindcss/typography", Description: "prose classes for rendered markdown and CMS content"},
	{ID: "@tailwindcss/line-clamp", Description: "line-clamp-* utilities", Deprecated: "built into Tailwind CSS since v3.3"},
	{ID: "@tailwindcss/aspect-ratio", Description: "aspect-w-* / aspect-h-* utilities"},
	{ID: "@tailwindcss/container-queries", Description: "@container variants"},
}

// Registry resolves plugin identifiers.
type Registry struct {
	byID map[string]Plugin
}

// NewRegistry returns a registry holding the built-in plugins plus extra ids.
func NewRegistry(extra ...string) *Registry {
	r := &Registry{byID: make(map[string]Plugin, len(builtin)+len(extra))}
	for _, p := range builtin {
		r.byID[p.ID] = p
	}
	for _, id := range extra {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := r.byID[id]; !ok {
			r.byID[id] = Plugin{ID: id, Description: "project plugin"}
		}
	}
	return r
}

// Resolve looks up a plugin by id.
func (r *Registry) Resolve(id string) (Plugin, error) {
	p, ok := r.byID[id]
	if !ok {
		return Plugin{}, fmt.Errorf("unknown plugin %q", id)
	}
	return p, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Known returns all registered plugins sorted by id.
func (r *Registry) Known() []Plugin {
	out := make([]Plugin, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
