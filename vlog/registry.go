package vlog

import (
	"fmt"
	"sync"
)

// A Registry hands out unique module names. It is the only mutable state
// shared between generation requests, so it is synchronized.
type Registry struct {
	mu   sync.Mutex
	used map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{used: make(map[string]bool)}
}

// Claim reserves and returns a module name. The base name is used directly
// when free; otherwise a numeric suffix is appended.
func (r *Registry) Claim(base string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := base
	for n := 1; r.used[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}

	r.used[name] = true

	return name
}
