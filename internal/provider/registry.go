package provider

import (
	"fmt"
	"sync"
)

// Factory constructs a CommentHost for a namespace ("owner/repo").
type Factory func(namespace string) (CommentHost, error)

// Registry maps namespaces to owned CommentHost instances, constructed
// lazily and never shared across namespaces. Each host carries its own
// thread-status cache, so operations against one repository can never read
// or invalidate another's cached state.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	hosts   map[string]CommentHost
}

// NewRegistry creates a registry that builds hosts with the given factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		hosts:   make(map[string]CommentHost),
	}
}

// Host returns the CommentHost owned by namespace, constructing it on first
// use. Construction failures are not cached; the next call retries.
func (r *Registry) Host(namespace string) (CommentHost, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.hosts[namespace]; ok {
		return h, nil
	}
	h, err := r.factory(namespace)
	if err != nil {
		return nil, fmt.Errorf("constructing host for %s: %w", namespace, err)
	}
	r.hosts[namespace] = h
	return h, nil
}
