package submit

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"go.uber.org/zap"

	"github.com/sparkctl/sparkctl/internal/config"
)

// SSLProvider supplies the SSL material installed on the driver's own
// submission server: the Secret(s) carrying certificate data, the
// Volumes/VolumeMounts/Env that mount it into the driver Pod, and the
// client-side contexts the RPC client uses to dial the driver over HTTPS.
type SSLProvider interface {
	Bundle(ctx context.Context, appID, namespace string, selectors Selectors) (SslBundle, error)
}

// RPCClient submits an assembled SubmissionRequest to the driver's in-pod
// submission server, trying each candidate endpoint in order, and pings
// that same server as a final sanity check before submitting.
type RPCClient interface {
	Ping(ctx context.Context, endpoints []Endpoint) error
	Submit(ctx context.Context, endpoints []Endpoint, req SubmissionRequest) error
}

// SubmissionSpec describes one application submission request.
type SubmissionSpec struct {
	AppName         string
	MainClass       string
	MainResourceURI string
	AppArgs         []string
	LocalFiles      []string
	LocalJars       []string
	DriverLabelsCSV string
	SparkProperties map[string]string
	Environment     map[string]string
}

// Orchestrator drives one submission through its full provisioning state
// machine: create and readiness-gate a Secret, Service, Pod, and optional
// Ingress; adopt them under the Pod once its UID is known; discover the
// driver's reachable URLs; and hand the submission off over the driver's
// own HTTP(S) server. Any failure before the submission completes tears
// down every resource this Orchestrator created.
type Orchestrator struct {
	Client     kubernetes.Interface
	Namespace  string
	Config     *config.Config
	SSL        SSLProvider
	RPC        RPCClient
	Encode     PayloadEncoder
	EncodeList PayloadListEncoder
	Logger     *zap.Logger
}

// Submit runs one application through the full provisioning protocol and
// blocks until the submission RPC succeeds (or, if WaitForAppCompletion is
// set, until the driver Pod terminates).
func (o *Orchestrator) Submit(ctx context.Context, spec SubmissionSpec) (err error) {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := NewResourceRegistry()
	lastPhase := PhaseValidate

	defer func() {
		if err == nil {
			return
		}
		logger.Warn("aborting submission, tearing down created resources", zap.String("phase", string(lastPhase)), zap.Error(err))
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if cleanupErr := registry.DeleteAll(cleanupCtx); cleanupErr != nil {
			logger.Error("cleanup after aborted submission encountered errors", zap.Error(cleanupErr))
			err = &PhaseError{Phase: PhaseAborting, Cause: fmt.Errorf("%w (cleanup also failed: %v)", err, cleanupErr)}
			return
		}
		err = &PhaseError{Phase: PhaseTerminated, Cause: err}
	}()

	// Validate.
	lastPhase = PhaseValidate
	launchTimeMillis := time.Now().UnixMilli()
	appID := DeriveAppID(spec.AppName, launchTimeMillis)
	selectors, perr := BuildSelectors(appID, spec.AppName, spec.DriverLabelsCSV)
	if perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}
	logger.Info("submission validated", zap.String("appId", appID), zap.String("appName", spec.AppName))

	// ClientReady: o.Client is constructed by the caller (cmd/sparkctl) and
	// handed in already initialized; this phase exists for symmetry with
	// the rest of the state machine and to fail fast on a nil client.
	lastPhase = PhaseClientReady
	if o.Client == nil {
		return &PhaseError{Phase: lastPhase, Cause: fmt.Errorf("kubernetes client is not initialized")}
	}

	factory := ComponentFactory{Namespace: o.Namespace, Selectors: selectors, Config: o.Config}

	// SecretCreated.
	lastPhase = PhaseSecretCreated
	submissionSecret, perr := generateSubmissionSecret()
	if perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}
	secret := factory.BuildSecret(appID, submissionSecret)
	if perr := o.createSecret(ctx, secret, registry); perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}

	// SslReady: fetch the SSL bundle and create every SSL secret it
	// carries, so both the submission secret and SSL secrets are present
	// before the Pod that mounts them is built.
	lastPhase = PhaseSslReady
	var sslBundle SslBundle
	if o.SSL != nil {
		sslBundle, perr = o.SSL.Bundle(ctx, appID, o.Namespace, selectors)
		if perr != nil {
			return &PhaseError{Phase: lastPhase, Cause: perr}
		}
	}
	for _, sslSecret := range sslBundle.Secrets {
		if perr := o.createSecret(ctx, sslSecret, registry); perr != nil {
			return &PhaseError{Phase: lastPhase, Cause: perr}
		}
	}

	// WatchersArmed: arm every readiness watch before creating the
	// resources they watch, so no create-then-watch race can miss the
	// event that satisfies readiness.
	lastPhase = PhaseWatchersArmed
	watchCtx, cancelWatch := context.WithTimeout(ctx, o.Config.DriverSubmitTimeout())
	defer cancelWatch()

	watchers, perr := ArmWatchers(ctx, o.Client, o.Namespace, selectors, o.Config.ExposeIngress)
	if perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}
	defer watchers.Stop()

	// ComponentsCreated.
	lastPhase = PhaseComponentsCreated
	builtSvc := factory.BuildService(appID)
	svc, perr := o.createService(ctx, builtSvc, registry)
	if perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}

	pod := factory.BuildPod(appID, sslBundle)
	if perr := o.createPod(ctx, pod, registry); perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}

	if o.Config.ExposeIngress {
		built := factory.BuildIngress(appID)
		if perr := o.createIngress(ctx, built, registry); perr != nil {
			return &PhaseError{Phase: lastPhase, Cause: perr}
		}
	}

	// ComponentsReady.
	lastPhase = PhaseComponentsReady
	readyPod, perr := watchers.Pod.Wait(watchCtx)
	if perr != nil {
		diag, diagErr := DiagnosePodTimeout(ctx, o.Client, o.Namespace, PodName(appID), o.Config.DriverSubmitTimeout(), perr)
		if diagErr != nil {
			return &PhaseError{Phase: lastPhase, Cause: diagErr}
		}
		return &PhaseError{Phase: lastPhase, Cause: fmt.Errorf("%w: %s", ErrPodNotReady, diag)}
	}
	if readySvc, perr := watchers.Service.Wait(watchCtx); perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	} else {
		svc = readySvc
	}
	if o.Config.ExposeIngress {
		if _, perr := watchers.Ingress.Wait(watchCtx); perr != nil {
			return &PhaseError{Phase: lastPhase, Cause: perr}
		}
	}

	// Adopted: now that the Pod's UID is known, adopt the Secret, Service,
	// SSL secrets, and Ingress under it and release them from registry
	// tracking, since the Kubernetes garbage collector now owns their
	// lifecycle.
	lastPhase = PhaseAdopted
	owner := BuildOwnerReference(readyPod)
	if perr := o.adopt(ctx, appID, owner, sslBundle, registry); perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}

	// Submitted.
	lastPhase = PhaseSubmitted
	nodePort := submissionNodePort(svc)
	scheme := sslBundle.Scheme()
	endpoints, perr := DiscoverEndpoints(ctx, o.Client, appID, nodePort, scheme, o.Config.ExposeIngress, ingressURL(o.Config, appID, scheme))
	if perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}

	builder := SubmissionRequestBuilder{Encode: o.Encode, EncodeList: o.EncodeList}
	req, perr := builder.Build(appID, spec.AppName, spec.MainClass, spec.MainResourceURI, spec.AppArgs, spec.LocalFiles, spec.LocalJars, spec.SparkProperties, spec.Environment, submissionSecret)
	if perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}
	if perr := o.RPC.Ping(ctx, endpoints); perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}
	if perr := o.RPC.Submit(ctx, endpoints, req); perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}
	logger.Info("submission accepted", zap.String("appId", appID))

	// ServiceRewritten.
	lastPhase = PhaseServiceRewritten
	current, perr := o.Client.CoreV1().Services(o.Namespace).Get(ctx, ServiceName(appID), metav1.GetOptions{})
	if perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: fmt.Errorf("failed to get service for rewrite: %w", perr)}
	}
	factory.RewriteExternalTrafficPolicyLocal(current)
	if perr := o.updateService(ctx, current); perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}

	// Persisted: by this point every resource is owned by the Pod, so
	// nothing further needs tracking in the registry; the deferred cleanup
	// above becomes a no-op on the success path.
	lastPhase = PhasePersisted
	registry.Unregister(resourceKindPod, PodName(appID))

	if !o.Config.WaitForAppCompletion {
		lastPhase = PhaseDone
		return nil
	}

	lastPhase = PhaseWaiting
	if perr := o.waitForCompletion(ctx, appID); perr != nil {
		return &PhaseError{Phase: lastPhase, Cause: perr}
	}

	lastPhase = PhaseDone
	return nil
}

func (o *Orchestrator) createSecret(ctx context.Context, secret *corev1.Secret, registry *ResourceRegistry) error {
	client := o.Client.CoreV1().Secrets(o.Namespace)
	if _, err := client.Create(ctx, secret, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create secret %s: %w", secret.Name, err)
	}
	registry.RegisterSecret(secret.Name, func(ctx context.Context) error {
		return ignoreNotFound(client.Delete(ctx, secret.Name, metav1.DeleteOptions{}))
	})
	return nil
}

// createService creates svc and returns the server-assigned object, whose
// Spec.Ports carry the NodePort values the API server assigned (BuildService
// never sets one itself).
func (o *Orchestrator) createService(ctx context.Context, svc *corev1.Service, registry *ResourceRegistry) (*corev1.Service, error) {
	client := o.Client.CoreV1().Services(o.Namespace)
	created, err := client.Create(ctx, svc, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create service %s: %w", svc.Name, err)
	}
	registry.RegisterService(svc.Name, func(ctx context.Context) error {
		return ignoreNotFound(client.Delete(ctx, svc.Name, metav1.DeleteOptions{}))
	})
	return created, nil
}

func (o *Orchestrator) createPod(ctx context.Context, pod *corev1.Pod, registry *ResourceRegistry) error {
	client := o.Client.CoreV1().Pods(o.Namespace)
	if _, err := client.Create(ctx, pod, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create pod %s: %w", pod.Name, err)
	}
	registry.RegisterPod(pod.Name, func(ctx context.Context) error {
		return ignoreNotFound(client.Delete(ctx, pod.Name, metav1.DeleteOptions{}))
	})
	return nil
}

func (o *Orchestrator) updateService(ctx context.Context, svc *corev1.Service) error {
	client := o.Client.CoreV1().Services(o.Namespace)
	if _, err := client.Update(ctx, svc, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update service %s: %w", svc.Name, err)
	}
	return nil
}

func (o *Orchestrator) adopt(ctx context.Context, appID string, owner metav1.OwnerReference, sslBundle SslBundle, registry *ResourceRegistry) error {
	secrets := o.Client.CoreV1().Secrets(o.Namespace)
	secret, err := secrets.Get(ctx, SecretName(appID), metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get secret for adoption: %w", err)
	}
	secret.OwnerReferences = append(secret.OwnerReferences, owner)
	if _, err := secrets.Update(ctx, secret, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to adopt secret: %w", err)
	}
	registry.Unregister(resourceKindSecret, SecretName(appID))

	for _, sslSecret := range sslBundle.Secrets {
		got, err := secrets.Get(ctx, sslSecret.Name, metav1.GetOptions{})
		if err != nil {
			return fmt.Errorf("failed to get ssl secret %s for adoption: %w", sslSecret.Name, err)
		}
		got.OwnerReferences = append(got.OwnerReferences, owner)
		if _, err := secrets.Update(ctx, got, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("failed to adopt ssl secret %s: %w", sslSecret.Name, err)
		}
		registry.Unregister(resourceKindSecret, sslSecret.Name)
	}

	services := o.Client.CoreV1().Services(o.Namespace)
	svc, err := services.Get(ctx, ServiceName(appID), metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get service for adoption: %w", err)
	}
	svc.OwnerReferences = append(svc.OwnerReferences, owner)
	if _, err := services.Update(ctx, svc, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to adopt service: %w", err)
	}
	registry.Unregister(resourceKindService, ServiceName(appID))

	if !o.Config.ExposeIngress {
		return nil
	}
	ingresses := o.Client.NetworkingV1().Ingresses(o.Namespace)
	ing, err := ingresses.Get(ctx, IngressName(appID), metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get ingress for adoption: %w", err)
	}
	ing.OwnerReferences = append(ing.OwnerReferences, owner)
	if _, err := ingresses.Update(ctx, ing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to adopt ingress: %w", err)
	}
	registry.Unregister(resourceKindIngress, IngressName(appID))
	return nil
}

func (o *Orchestrator) createIngress(ctx context.Context, ing *networkingv1.Ingress, registry *ResourceRegistry) error {
	client := o.Client.NetworkingV1().Ingresses(o.Namespace)
	if _, err := client.Create(ctx, ing, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create ingress %s: %w", ing.Name, err)
	}
	registry.RegisterIngress(ing.Name, func(ctx context.Context) error {
		return ignoreNotFound(client.Delete(ctx, ing.Name, metav1.DeleteOptions{}))
	})
	return nil
}

// waitForCompletion blocks until the driver Pod reaches a terminal phase.
func (o *Orchestrator) waitForCompletion(ctx context.Context, appID string) error {
	ticker := time.NewTicker(o.Config.ReportInterval())
	defer ticker.Stop()

	client := o.Client.CoreV1().Pods(o.Namespace)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pod, err := client.Get(ctx, PodName(appID), metav1.GetOptions{})
			if err != nil {
				return fmt.Errorf("failed to poll driver pod status: %w", err)
			}
			switch pod.Status.Phase {
			case corev1.PodSucceeded:
				return nil
			case corev1.PodFailed:
				return fmt.Errorf("driver pod failed: %s", pod.Status.Reason)
			}
		}
	}
}

func ignoreNotFound(err error) error {
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}

func generateSubmissionSecret() (string, error) {
	buf := make([]byte, submissionSecretRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate submission secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func submissionNodePort(svc *corev1.Service) int32 {
	for _, p := range svc.Spec.Ports {
		if p.Name == SubmissionServerPortName {
			return p.NodePort
		}
	}
	return 0
}

func ingressURL(cfg *config.Config, appID, scheme string) string {
	if !cfg.ExposeIngress {
		return ""
	}
	return scheme + "://" + strings.TrimPrefix(joinURLPath(cfg.IngressBasePath, appID, SubmissionServerPathComponent), "/")
}
