// Package k8sclient builds a typed Kubernetes clientset for the submission
// client's target cluster, from a resolved master URL plus optional mTLS
// material, or from in-cluster configuration when running inside a Pod.
package k8sclient

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Options configures how the REST client reaches the API server.
type Options struct {
	// MasterURL is the bare https://host[:port] address, already resolved
	// from a "k8s://..." --master value.
	MasterURL string

	CACertFile     string
	ClientCertFile string
	ClientKeyFile  string

	// Insecure skips server certificate verification. Only meant for
	// local development clusters; never set from a loaded Config file.
	Insecure bool
}

// New builds a typed clientset from Options.
func New(opts Options) (kubernetes.Interface, error) {
	restConfig, err := buildRESTConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubernetes rest config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}
	return clientset, nil
}

// NewFromClientset wraps an already-constructed clientset, such as
// k8s.io/client-go/kubernetes/fake, in place of one built by New.
func NewFromClientset(clientset kubernetes.Interface) kubernetes.Interface {
	return clientset
}

func buildRESTConfig(opts Options) (*rest.Config, error) {
	if opts.MasterURL == "" {
		return rest.InClusterConfig()
	}

	cfg := &rest.Config{
		Host: opts.MasterURL,
		TLSClientConfig: rest.TLSClientConfig{
			CAFile:   opts.CACertFile,
			CertFile: opts.ClientCertFile,
			KeyFile:  opts.ClientKeyFile,
			Insecure: opts.Insecure,
		},
	}
	return cfg, nil
}
