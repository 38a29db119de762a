// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Registry resolves template keys to descriptors. The zero value is not
// usable; call New or LoadRegistry.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*TemplateDescriptor
	order []string
}

// New returns a registry holding only the built-in templates.
func New() *Registry {
	r := &Registry{byID: make(map[string]*TemplateDescriptor, len(builtin))}
	for _, d := range builtin {
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r
}

// LoadRegistry returns the built-ins plus every forked template found under
// dir/<name>/template.json. A missing dir yields just the built-ins.
func LoadRegistry(dir string) (*Registry, error) {
	r := New()
	if dir == "" {
		return r, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*", DescriptorFile))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	for _, path := range matches {
		d, err := readDescriptor(path)
		if err != nil {
			return nil, err
		}
		if d.ID == "" {
			d.ID = filepath.Base(filepath.Dir(path))
		}
		if err := r.Register(d); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return r, nil
}

func readDescriptor(path string) (*TemplateDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d TemplateDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &d, nil
}

// Register adds a custom descriptor. Built-in keys cannot be replaced.
func (r *Registry) Register(d *TemplateDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[d.ID]; exists {
		return fmt.Errorf("template %q already registered", d.ID)
	}
	cp := *d
	cp.Status = StatusCustom
	r.byID[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return nil
}

// GetTemplate returns the descriptor for key, or the restaurant descriptor
// when key is unknown. The result is shared and must not be modified.
func (r *Registry) GetTemplate(key string) *TemplateDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.byID[key]; ok {
		return d
	}
	return r.byID[DefaultTemplate]
}

// Has reports whether key is registered exactly.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[key]
	return ok
}

// ListTemplates returns all descriptors: built-ins first in declaration
// order, then custom templates in load order.
func (r *Registry) ListTemplates() []TemplateDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]TemplateDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// Keys lists registered template ids in listing order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// WriteDescriptor stores d as dir/template.json.
func WriteDescriptor(dir string, d *TemplateDescriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, DescriptorFile), data, 0o644)
}

var defaultRegistry = New()

// GetTemplate looks key up in the built-in registry.
func GetTemplate(key string) *TemplateDescriptor {
	return defaultRegistry.GetTemplate(key)
}

// ListTemplates lists the built-in templates.
func ListTemplates() []TemplateDescriptor {
	return defaultRegistry.ListTemplates()
}
