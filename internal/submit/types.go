package submit

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	corev1 "k8s.io/api/core/v1"
)

// Selectors bundles the three reserved labels every driver resource carries
// plus whatever custom labels the caller supplied through --driver-labels.
type Selectors struct {
	AppID        string
	AppName      string
	CustomLabels map[string]string
}

// Labels renders the full label set, reserved keys taking precedence over
// custom labels of the same key, ready to attach to a Secret, Service, Pod,
// or Ingress ObjectMeta.
func (s Selectors) Labels() map[string]string {
	labels := make(map[string]string, len(s.CustomLabels)+3)
	for k, v := range s.CustomLabels {
		labels[k] = v
	}
	labels[AppIDLabelKey] = s.AppID
	labels[RoleLabelKey] = RoleDriverValue
	labels[AppNameLabelKey] = s.AppName
	return labels
}

// Selector renders just the reserved AppID/role pair, used to scope watches
// and list calls to exactly the resources this submission owns.
func (s Selectors) Selector() map[string]string {
	return map[string]string{
		AppIDLabelKey: s.AppID,
		RoleLabelKey:  RoleDriverValue,
	}
}

// AppResourceKind distinguishes the three ways a submitted application's
// main resource (jar, Python file, ...) can be located.
type AppResourceKind int

const (
	// AppResourceUploaded means the resource lives on the submission
	// client's local filesystem and must be packaged and base64-encoded
	// into the submission payload.
	AppResourceUploaded AppResourceKind = iota
	// AppResourceContainerLocal means the resource already exists inside
	// the driver container image; only its in-container path is passed
	// through.
	AppResourceContainerLocal
	// AppResourceRemote means the resource is fetched by the driver at
	// runtime from an external URI (http://, https://, hdfs://, ...).
	AppResourceRemote
)

func (k AppResourceKind) String() string {
	switch k {
	case AppResourceUploaded:
		return "uploaded"
	case AppResourceContainerLocal:
		return "container-local"
	case AppResourceRemote:
		return "remote"
	default:
		return fmt.Sprintf("AppResourceKind(%d)", int(k))
	}
}

// AppResource is the tagged union produced by classifying the submitted
// application's main resource URI by scheme.
type AppResource struct {
	Kind AppResourceKind
	// URI is the resource's original reference: a local path for
	// Uploaded/ContainerLocal, or the full remote URI for Remote.
	URI string
	// EncodedPayload holds the base64 tar+gzip blob when Kind is
	// AppResourceUploaded; empty otherwise.
	EncodedPayload string
}

// SslOptions records whether SSL is enabled for the driver's submission
// server and the URL scheme that follows from it.
type SslOptions struct {
	Enabled bool
	Scheme  string
}

// SslBundle is the full set of driver-side SSL material and client-side
// HTTPS contexts supplied by the SSL collaborator: the Secrets carrying
// certificate data, the Volumes/VolumeMounts/Env that mount that data into
// the driver container, and the contexts the submission RPC client uses to
// dial the driver over HTTPS.
type SslBundle struct {
	Options SslOptions

	Secrets      []*corev1.Secret
	Volumes      []corev1.Volume
	VolumeMounts []corev1.VolumeMount
	Env          []corev1.EnvVar

	// ClientSocketCtx configures the RPC client's HTTP transport when
	// dialing the driver's submission server over HTTPS.
	ClientSocketCtx *tls.Config
	// ClientTrustCtx is the CA pool the RPC client trusts when verifying
	// the driver's submission server certificate.
	ClientTrustCtx *x509.CertPool
}

// Empty reports whether no SSL material was configured.
func (b SslBundle) Empty() bool {
	return !b.Options.Enabled
}

// Scheme returns the URL scheme ("http" or "https") the driver readiness
// probe, EndpointDiscovery, and the RPC client must all agree on.
func (b SslBundle) Scheme() string {
	if !b.Options.Enabled {
		return "http"
	}
	if b.Options.Scheme != "" {
		return b.Options.Scheme
	}
	return "https"
}

// SubmissionRequest is the fully assembled payload POSTed to the driver's
// in-pod submission server once it becomes reachable.
type SubmissionRequest struct {
	AppID           string
	AppName         string
	MainClass       string
	AppResource     AppResource
	AppArgs         []string
	SparkProperties map[string]string
	Environment     map[string]string
	Secret          string
	// FilesBlob and JarsBlob are base64 tar+gzip archives of the local
	// --files/--jars paths bundled alongside the submission; empty when
	// none were given.
	FilesBlob string
	JarsBlob  string
}

// resourceKind identifies the Kubernetes object kinds the orchestrator
// creates and tracks in the ResourceRegistry.
type resourceKind string

const (
	resourceKindSecret  resourceKind = "Secret"
	resourceKindService resourceKind = "Service"
	resourceKindPod     resourceKind = "Pod"
	resourceKindIngress resourceKind = "Ingress"
)

// resourceRef identifies one registered resource by kind and name, used as
// the ResourceRegistry's map key.
type resourceRef struct {
	Kind resourceKind
	Name string
}

func (r resourceRef) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.Name)
}
