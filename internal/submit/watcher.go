package submit

import (
	"context"
	"sync"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/watch"
)

// matchFunc extracts T from a watch.Event and reports whether the event
// represents the condition a ReadinessWatcher is waiting for. It receives
// the raw event so predicates can distinguish Added/Modified/Deleted.
type matchFunc[T any] func(event watch.Event) (value T, matched bool)

// ReadinessWatcher is a single-assignment promise driven by a Kubernetes
// watch stream: it blocks until a caller-supplied predicate matches one
// event on the stream, then yields that event's object and never blocks
// again for subsequent calls to Wait within the same invocation.
type ReadinessWatcher[T any] struct {
	watcher watch.Interface
	match   matchFunc[T]

	mu       sync.Mutex
	resolved bool
	value    T
}

// NewReadinessWatcher wraps a watch.Interface (typically obtained from a
// typed clientset's Watch call, already scoped to the submission's
// AppId/role selector) with a predicate over its events.
func NewReadinessWatcher[T any](watcher watch.Interface, match matchFunc[T]) *ReadinessWatcher[T] {
	return &ReadinessWatcher[T]{watcher: watcher, match: match}
}

// Wait blocks until the predicate matches an event, the watch channel
// closes (ErrWatchClosed), or ctx is done (ErrWatchTimeout).
func (w *ReadinessWatcher[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	w.mu.Lock()
	if w.resolved {
		defer w.mu.Unlock()
		return w.value, nil
	}
	w.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return zero, ErrWatchTimeout
		case event, ok := <-w.watcher.ResultChan():
			if !ok {
				return zero, ErrWatchClosed
			}
			if value, matched := w.match(event); matched {
				w.mu.Lock()
				defer w.mu.Unlock()
				if !w.resolved {
					w.resolved, w.value = true, value
				}
				return w.value, nil
			}
		}
	}
}

// Stop releases the underlying watch.
func (w *ReadinessWatcher[T]) Stop() {
	w.watcher.Stop()
}

// PodRunningMatch matches a Pod event once it was Added or Modified, its
// phase is Running, and its driver container reports ready=true. A Pod can
// reach phase=Running with its driver container still starting up (e.g.
// waiting on the readiness probe), so phase alone is not enough; a Pod that
// has already failed never matches, since the orchestrator should not adopt
// or submit against a dead Pod.
func PodRunningMatch() matchFunc[*corev1.Pod] {
	return func(event watch.Event) (*corev1.Pod, bool) {
		if event.Type != watch.Added && event.Type != watch.Modified {
			return nil, false
		}
		pod, ok := event.Object.(*corev1.Pod)
		if !ok {
			return nil, false
		}
		if pod.Status.Phase != corev1.PodRunning {
			return nil, false
		}
		for _, cs := range pod.Status.ContainerStatuses {
			if cs.Name == DriverContainerName && cs.Ready {
				return pod, true
			}
		}
		return nil, false
	}
}

// ServiceHasClusterIPMatch matches once the Service has been assigned a
// ClusterIP by the API server.
func ServiceHasClusterIPMatch() matchFunc[*corev1.Service] {
	return func(event watch.Event) (*corev1.Service, bool) {
		svc, ok := event.Object.(*corev1.Service)
		if !ok || event.Type == watch.Deleted {
			return nil, false
		}
		if svc.Spec.ClusterIP == "" || svc.Spec.ClusterIP == corev1.ClusterIPNone {
			return nil, false
		}
		return svc, true
	}
}

// EndpointsReadyMatch matches an Endpoints event once it was Added or
// Modified and carries at least one subset with a non-empty Addresses list,
// meaning at least one backing Pod has passed its readiness probe.
func EndpointsReadyMatch() matchFunc[*corev1.Endpoints] {
	return func(event watch.Event) (*corev1.Endpoints, bool) {
		if event.Type != watch.Added && event.Type != watch.Modified {
			return nil, false
		}
		ep, ok := event.Object.(*corev1.Endpoints)
		if !ok {
			return nil, false
		}
		for _, subset := range ep.Subsets {
			if len(subset.Addresses) > 0 {
				return ep, true
			}
		}
		return nil, false
	}
}

// IngressCreatedMatch matches once the Ingress was Added or Modified and its
// controller has published at least one load-balancer address, meaning the
// route is actually programmed rather than merely admitted.
func IngressCreatedMatch() matchFunc[*networkingv1.Ingress] {
	return func(event watch.Event) (*networkingv1.Ingress, bool) {
		if event.Type != watch.Added && event.Type != watch.Modified {
			return nil, false
		}
		ing, ok := event.Object.(*networkingv1.Ingress)
		if !ok {
			return nil, false
		}
		if len(ing.Status.LoadBalancer.Ingress) == 0 {
			return nil, false
		}
		return ing, true
	}
}
