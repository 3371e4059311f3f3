// Package transform holds the named transform functions a pipeline stage can
// reference by function_name.
//
// Functions are registered explicitly at startup; the resolver checks names
// against the registry (Has) before anything runs, and the runner applies
// them by name (Apply).
package transform

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"domainetl/internal/etlerr"
	"domainetl/internal/table"
)

// Func maps input frames keyed by domain to output frames keyed by domain.
// Implementations must not mutate their inputs.
type Func func(ctx context.Context, in map[string]*table.Frame) (map[string]*table.Frame, error)

// Registry maps function names to Funcs. It is safe for concurrent use;
// in practice it is written at startup and only read afterwards.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register installs (or replaces) fn under name. A nil fn reserves the name
// without making it callable; applying it fails with NotCallable.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Has reports whether name is registered, callable or not.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Get returns the function registered under name.
//
// Errors: ConfigError(UnknownFunction) when name is not registered,
// TransformError(NotCallable) when it is registered as nil.
func (r *Registry) Get(name string) (Func, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, etlerr.Config(etlerr.UnknownFunction, name)
	}
	if fn == nil {
		return nil, &etlerr.TransformError{Kind: etlerr.NotCallable, Function: name}
	}
	return fn, nil
}

// Apply runs the named function over in. An empty name is the identity:
// the inputs are returned as the outputs. Every returned frame is renamed to
// its key so downstream loaders see the output domain.
func (r *Registry) Apply(ctx context.Context, name string, in map[string]*table.Frame) (map[string]*table.Frame, error) {
	if name == "" {
		return in, nil
	}
	fn, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	out, err := fn(ctx, in)
	if err != nil {
		return nil, &etlerr.TransformError{Kind: etlerr.Failed, Function: name, Err: err}
	}
	if out == nil {
		out = map[string]*table.Frame{}
	}
	for domain, f := range out {
		if f == nil {
			return nil, &etlerr.TransformError{Kind: etlerr.Failed, Function: name, Err: fmt.Errorf("output %q is nil", domain)}
		}
		f.Domain = domain
	}
	return out, nil
}
