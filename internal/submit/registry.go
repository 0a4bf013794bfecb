package submit

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// deleteFunc deletes one registered resource by name; it is supplied by the
// orchestrator at Register time and closes over the typed clientset method
// (e.g. CoreV1().Secrets(ns).Delete).
type deleteFunc func(ctx context.Context) error

// ResourceRegistry tracks every Kubernetes object the orchestrator has
// created during a submission, so a failure at any later phase can tear
// down exactly what was created and nothing more.
//
// Register/Unregister are idempotent: registering the same (kind, name)
// twice replaces the delete function, and unregistering an absent entry is
// a no-op. DeleteAll is best-effort: it attempts every registered delete and
// joins every failure into a single CleanupError rather than stopping at
// the first one.
type ResourceRegistry struct {
	mu      sync.Mutex
	entries map[resourceRef]deleteFunc
	order   []resourceRef
}

// NewResourceRegistry returns an empty registry.
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{entries: map[resourceRef]deleteFunc{}}
}

func (r *ResourceRegistry) register(kind resourceKind, name string, del deleteFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := resourceRef{Kind: kind, Name: name}
	if _, exists := r.entries[ref]; !exists {
		r.order = append(r.order, ref)
	}
	r.entries[ref] = del
}

// RegisterSecret, RegisterService, RegisterPod, and RegisterIngress record a
// created resource's delete function under its kind and name.
func (r *ResourceRegistry) RegisterSecret(name string, del deleteFunc) {
	r.register(resourceKindSecret, name, del)
}

func (r *ResourceRegistry) RegisterService(name string, del deleteFunc) {
	r.register(resourceKindService, name, del)
}

func (r *ResourceRegistry) RegisterPod(name string, del deleteFunc) {
	r.register(resourceKindPod, name, del)
}

func (r *ResourceRegistry) RegisterIngress(name string, del deleteFunc) {
	r.register(resourceKindIngress, name, del)
}

// Unregister removes a resource from tracking without deleting it, used
// once a resource has been successfully adopted under the driver Pod's
// owner reference and its lifecycle is no longer the registry's
// responsibility.
func (r *ResourceRegistry) Unregister(kind resourceKind, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, resourceRef{Kind: kind, Name: name})
}

// DeleteAll deletes every still-registered resource in reverse registration
// order (Pod/Service/Ingress before the Secret they depend on), continuing
// past individual failures. It returns nil if every deletion succeeded or
// nothing was registered, and a *CleanupError otherwise.
func (r *ResourceRegistry) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	order := make([]resourceRef, len(r.order))
	copy(order, r.order)
	entries := make(map[resourceRef]deleteFunc, len(r.entries))
	for k, v := range r.entries {
		entries[k] = v
	}
	r.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		ref := order[i]
		del, ok := entries[ref]
		if !ok {
			continue
		}
		log.Printf("cleanup: deleting %s", ref)
		if err := del(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ref, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &CleanupError{Errs: errs}
}
