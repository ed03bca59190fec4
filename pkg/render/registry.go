package render

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/cyberwani/metabox/pkg/schema"
)

// Strategy writes the control markup for one field into buf. The
// wrapper chrome (label cell, description line) is handled by the
// renderer, not the strategy.
type Strategy func(buf *bytes.Buffer, field schema.FieldDefinition, state fieldState) error

// Script describes a JavaScript dependency a field type needs on the
// edit screen.
type Script struct {
	Src    string
	Inline string
	Defer  bool
}

// Descriptor bundles a rendering strategy with the assets the field
// type requires.
type Descriptor struct {
	Name        string
	Renderer    Strategy
	Stylesheets []string
	Scripts     []Script

	// handlesDescription marks strategies that place the help text
	// themselves instead of letting the wrapper append it.
	handlesDescription bool
}

// Registry maps field types to rendering strategies. Callers can
// replace built-ins or add descriptors for custom types.
type Registry struct {
	mu         sync.RWMutex
	strategies map[schema.FieldType]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[schema.FieldType]Descriptor)}
}

// Register associates a descriptor with a field type, replacing any
// existing entry.
func (r *Registry) Register(t schema.FieldType, descriptor Descriptor) error {
	if t == "" {
		return fmt.Errorf("render: field type is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("render: renderer for %q is nil", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	descriptor.Name = string(t)
	r.strategies[t] = descriptor
	return nil
}

// MustRegister mirrors Register but panics on error, simplifying the
// default registry setup.
func (r *Registry) MustRegister(t schema.FieldType, descriptor Descriptor) {
	if err := r.Register(t, descriptor); err != nil {
		panic(err)
	}
}

// Names lists the registered field types in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for t := range r.strategies {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// Descriptor fetches the descriptor for a field type.
func (r *Registry) Descriptor(t schema.FieldType) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.strategies[t]
	return descriptor, ok
}

// Assets aggregates the stylesheet and script dependencies of the
// given field types, de-duplicated in first-seen order.
func (r *Registry) Assets(types []schema.FieldType) (stylesheets []string, scripts []Script) {
	if len(types) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seenStyles := make(map[string]struct{})
	seenScripts := make(map[string]struct{})
	for _, t := range types {
		descriptor, ok := r.strategies[t]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href == "" {
				continue
			}
			if _, dup := seenStyles[href]; dup {
				continue
			}
			seenStyles[href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, script := range descriptor.Scripts {
			key := script.Src
			if key == "" {
				key = "inline:" + script.Inline
			}
			if _, dup := seenScripts[key]; dup {
				continue
			}
			seenScripts[key] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}
