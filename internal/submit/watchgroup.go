package submit

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/sparkctl/sparkctl/internal/util/async"
)

// WatcherGroup holds the four readiness watchers the orchestrator arms
// before creating any component, so no create-then-watch race can miss the
// event that satisfies readiness.
type WatcherGroup struct {
	Pod       *ReadinessWatcher[*corev1.Pod]
	Service   *ReadinessWatcher[*corev1.Service]
	Endpoints *ReadinessWatcher[*corev1.Endpoints]
	Ingress   *ReadinessWatcher[*networkingv1.Ingress]
}

// Stop releases every armed watch, skipping the Ingress watcher when none
// was armed because no Ingress was requested.
func (g *WatcherGroup) Stop() {
	g.Pod.Stop()
	g.Service.Stop()
	g.Endpoints.Stop()
	if g.Ingress != nil {
		g.Ingress.Stop()
	}
}

// ArmWatchers opens the Pod, Service, and Endpoints watches (and an Ingress
// watch when exposeIngress is set) scoped to the submission's selector, all
// concurrently, joining any failure to establish a watch stream into a
// single error.
func ArmWatchers(ctx context.Context, client kubernetes.Interface, namespace string, selector Selectors, exposeIngress bool) (*WatcherGroup, error) {
	opts := metav1.ListOptions{LabelSelector: labelsSelectorString(selector.Selector())}

	group := &WatcherGroup{}
	tasks := []async.Task{
		{Name: "pod watch", Func: func(ctx context.Context) error {
			w, err := client.CoreV1().Pods(namespace).Watch(ctx, opts)
			if err != nil {
				return err
			}
			group.Pod = NewReadinessWatcher(w, PodRunningMatch())
			return nil
		}},
		{Name: "service watch", Func: func(ctx context.Context) error {
			w, err := client.CoreV1().Services(namespace).Watch(ctx, opts)
			if err != nil {
				return err
			}
			group.Service = NewReadinessWatcher(w, ServiceHasClusterIPMatch())
			return nil
		}},
		{Name: "endpoints watch", Func: func(ctx context.Context) error {
			w, err := client.CoreV1().Endpoints(namespace).Watch(ctx, opts)
			if err != nil {
				return err
			}
			group.Endpoints = NewReadinessWatcher(w, EndpointsReadyMatch())
			return nil
		}},
	}

	if exposeIngress {
		tasks = append(tasks, async.Task{Name: "ingress watch", Func: func(ctx context.Context) error {
			w, err := client.NetworkingV1().Ingresses(namespace).Watch(ctx, opts)
			if err != nil {
				return err
			}
			group.Ingress = NewReadinessWatcher(w, IngressCreatedMatch())
			return nil
		}})
	}

	if err := async.RunParallel(ctx, tasks, false); err != nil {
		group.partialStop()
		return nil, err
	}

	return group, nil
}

// partialStop releases whichever watchers were successfully armed before
// ArmWatchers returned an error, avoiding a leaked watch connection.
func (g *WatcherGroup) partialStop() {
	if g.Pod != nil {
		g.Pod.Stop()
	}
	if g.Service != nil {
		g.Service.Stop()
	}
	if g.Endpoints != nil {
		g.Endpoints.Stop()
	}
	if g.Ingress != nil {
		g.Ingress.Stop()
	}
}

// labelsSelectorString renders a label map as a comma-joined "k=v" selector
// string suitable for metav1.ListOptions.LabelSelector.
func labelsSelectorString(labels map[string]string) string {
	s := ""
	for k, v := range labels {
		if s != "" {
			s += ","
		}
		s += k + "=" + v
	}
	return s
}
