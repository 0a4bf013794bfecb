package submit

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Endpoint is one candidate URL the submission RPC client may try, in
// priority order.
type Endpoint struct {
	URL string
}

// DiscoverEndpoints returns the submission server's candidate base URLs,
// each ending in /<AppId>/<SubmissionServerPathComponent>, with scheme
// gated on whether SSL is enabled for the submission server.
//
// When exposeIngress is set, discovery is trivial: a single URL built from
// the Ingress base path, since the Ingress controller is responsible for
// routing it to a healthy backend.
//
// Otherwise it lists the cluster's Nodes, filters out any marked
// Unschedulable, and returns one candidate URL per remaining node using
// its ExternalIP address if present, falling back to its LegacyHostIP
// address (as on bare-metal clusters that never populate ExternalIP).
func DiscoverEndpoints(ctx context.Context, client kubernetes.Interface, appID string, nodePort int32, scheme string, exposeIngress bool, ingressBaseURL string) ([]Endpoint, error) {
	if exposeIngress {
		if ingressBaseURL == "" {
			return nil, fmt.Errorf("%w: ingress base url is empty", ErrNoReachableEndpoint)
		}
		return []Endpoint{{URL: ingressBaseURL}}, nil
	}

	nodes, err := client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	suffix := joinURLPath(appID, SubmissionServerPathComponent)
	var endpoints []Endpoint
	for _, node := range nodes.Items {
		if node.Spec.Unschedulable {
			continue
		}
		ip := nodeReachableIP(&node)
		if ip == "" {
			continue
		}
		endpoints = append(endpoints, Endpoint{URL: fmt.Sprintf("%s://%s:%d%s", scheme, ip, nodePort, suffix)})
	}

	if len(endpoints) == 0 {
		return nil, ErrNoReachableEndpoint
	}
	return endpoints, nil
}

// nodeLegacyHostIP is k8s.io/api's former corev1.NodeLegacyHostIP constant,
// removed from the upstream package but still emitted by some bare-metal
// clusters.
const nodeLegacyHostIP corev1.NodeAddressType = "LegacyHostIP"

// nodeReachableIP prefers the node's ExternalIP status address, falling
// back to its LegacyHostIP address when no ExternalIP is reported.
func nodeReachableIP(node *corev1.Node) string {
	var legacy string
	for _, addr := range node.Status.Addresses {
		if addr.Address == "" {
			continue
		}
		switch addr.Type {
		case corev1.NodeExternalIP:
			return addr.Address
		case nodeLegacyHostIP:
			legacy = addr.Address
		}
	}
	return legacy
}
