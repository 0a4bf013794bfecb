package submit

import (
	"context"
	"errors"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/sparkctl/sparkctl/internal/config"
)

type stubRPCClient struct {
	calls      []SubmissionRequest
	err        error
	pingErr    error
	pingCalled bool
}

func (s *stubRPCClient) Submit(ctx context.Context, endpoints []Endpoint, req SubmissionRequest) error {
	if !s.pingCalled {
		return errors.New("submit called before ping")
	}
	s.calls = append(s.calls, req)
	return s.err
}

func (s *stubRPCClient) Ping(ctx context.Context, endpoints []Endpoint) error {
	s.pingCalled = true
	return s.pingErr
}

type noopSSLProvider struct{}

func (noopSSLProvider) Bundle(ctx context.Context, appID, namespace string, selectors Selectors) (SslBundle, error) {
	return SslBundle{}, nil
}

// newTestOrchestrator returns an Orchestrator backed by a fake clientset
// with a reactor that assigns a Pod UID on create, mirroring what a real
// API server does and what the orchestrator's adoption step depends on.
func newTestOrchestrator(rpc RPCClient) (*Orchestrator, *fake.Clientset) {
	node := &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
		Status: corev1.NodeStatus{
			Addresses: []corev1.NodeAddress{{Type: corev1.NodeExternalIP, Address: "203.0.113.10"}},
		},
	}
	clientset := fake.NewSimpleClientset(node)

	clientset.PrependReactor("create", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
		create, ok := action.(k8stesting.CreateAction)
		if !ok {
			return false, nil, nil
		}
		if pod, ok := create.GetObject().(*corev1.Pod); ok {
			pod.UID = types.UID("test-pod-uid")
			// The fake clientset never runs a kubelet, so simulate one
			// reporting the driver container ready, matching what
			// PodRunningMatch requires to resolve the readiness watch.
			pod.Status.Phase = corev1.PodRunning
			pod.Status.ContainerStatuses = []corev1.ContainerStatus{
				{Name: DriverContainerName, Ready: true},
			}
		}
		return false, nil, nil
	})

	// The fake clientset does not simulate a real API server's ClusterIP or
	// NodePort allocation; assign both so ServiceHasClusterIPMatch and the
	// orchestrator's NodePort capture can be satisfied.
	clientset.PrependReactor("create", "services", func(action k8stesting.Action) (bool, runtime.Object, error) {
		create, ok := action.(k8stesting.CreateAction)
		if !ok {
			return false, nil, nil
		}
		if svc, ok := create.GetObject().(*corev1.Service); ok {
			svc.Spec.ClusterIP = "10.96.0.5"
			for i := range svc.Spec.Ports {
				if svc.Spec.Ports[i].Name == SubmissionServerPortName {
					svc.Spec.Ports[i].NodePort = 31000
				}
			}
		}
		return false, nil, nil
	})

	cfg := &config.Config{
		Namespace:               "spark",
		DriverDockerImage:       "spark:latest",
		ServiceAccount:          "spark-sa",
		UIPort:                  config.DefaultUIPort,
		DriverPort:              config.DefaultDriverPort,
		BlockManagerPort:        config.DefaultBlockManagerPort,
		DriverSubmitTimeoutSecs: 5,
		ReportIntervalSecs:      1,
	}

	return &Orchestrator{
		Client:     clientset,
		Namespace:  "spark",
		Config:     cfg,
		SSL:        noopSSLProvider{},
		RPC:        rpc,
		Encode:     fakeEncoder,
		EncodeList: fakeListEncoder,
	}, clientset
}

type staticSSLProvider struct {
	secretName string
}

func (p staticSSLProvider) Bundle(ctx context.Context, appID, namespace string, selectors Selectors) (SslBundle, error) {
	return SslBundle{
		Options: SslOptions{Enabled: true, Scheme: "https"},
		Secrets: []*corev1.Secret{
			{
				ObjectMeta: metav1.ObjectMeta{Name: p.secretName, Namespace: namespace, Labels: selectors.Labels()},
				Data:       map[string][]byte{"ca.crt": []byte("ca-cert")},
			},
		},
	}, nil
}

func TestOrchestrator_Submit_CreatesAndAdoptsSslSecrets(t *testing.T) {
	rpc := &stubRPCClient{}
	orch, clientset := newTestOrchestrator(rpc)
	orch.SSL = staticSSLProvider{secretName: "wordcount-ssl"}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := orch.Submit(ctx, SubmissionSpec{
		AppName:         "wordcount",
		MainClass:       "com.example.WordCount",
		MainResourceURI: "/opt/spark/wordcount.jar",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	secret, getErr := clientset.CoreV1().Secrets("spark").Get(ctx, "wordcount-ssl", metav1.GetOptions{})
	if getErr != nil {
		t.Fatalf("expected ssl secret to exist: %v", getErr)
	}
	if len(secret.OwnerReferences) != 1 {
		t.Errorf("expected ssl secret to be adopted under the driver pod, got owners %+v", secret.OwnerReferences)
	}
}

func TestOrchestrator_Submit_PingsBeforeSubmitting(t *testing.T) {
	rpc := &stubRPCClient{}
	orch, _ := newTestOrchestrator(rpc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := orch.Submit(ctx, SubmissionSpec{
		AppName:         "wordcount",
		MainClass:       "com.example.WordCount",
		MainResourceURI: "/opt/spark/wordcount.jar",
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !rpc.pingCalled {
		t.Error("expected ping to be called before the submission rpc")
	}
	if len(rpc.calls) != 1 {
		t.Fatalf("expected submit to still be called once ping succeeds, got %d calls", len(rpc.calls))
	}
}

func TestOrchestrator_Submit_AbortsWhenPingFails(t *testing.T) {
	rpc := &stubRPCClient{pingErr: errors.New("connection refused")}
	orch, _ := newTestOrchestrator(rpc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := orch.Submit(ctx, SubmissionSpec{
		AppName:         "wordcount",
		MainClass:       "com.example.WordCount",
		MainResourceURI: "/opt/spark/wordcount.jar",
	})
	if err == nil {
		t.Fatal("expected error when ping fails")
	}
	if len(rpc.calls) != 0 {
		t.Errorf("expected submit to never be called when ping fails, got %d calls", len(rpc.calls))
	}
}

func TestOrchestrator_Submit_HappyPath(t *testing.T) {
	rpc := &stubRPCClient{}
	orch, _ := newTestOrchestrator(rpc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := orch.Submit(ctx, SubmissionSpec{
		AppName:         "wordcount",
		MainClass:       "com.example.WordCount",
		MainResourceURI: "/opt/spark/wordcount.jar",
		AppArgs:         []string{"--input", "s3a://bucket/data"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(rpc.calls) != 1 {
		t.Fatalf("expected exactly one submission rpc call, got %d", len(rpc.calls))
	}
	if rpc.calls[0].AppName != "wordcount" {
		t.Errorf("unexpected submitted app name: %s", rpc.calls[0].AppName)
	}
}

func TestOrchestrator_Submit_AbortsAndCleansUpOnRPCFailure(t *testing.T) {
	rpc := &stubRPCClient{err: errors.New("driver rejected submission: bad request")}
	orch, clientset := newTestOrchestrator(rpc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := orch.Submit(ctx, SubmissionSpec{
		AppName:         "wordcount",
		MainClass:       "com.example.WordCount",
		MainResourceURI: "/opt/spark/wordcount.jar",
	})
	if err == nil {
		t.Fatal("expected error from failed submission rpc")
	}

	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("expected *PhaseError, got %T: %v", err, err)
	}
	if phaseErr.Phase != PhaseTerminated {
		t.Errorf("expected PhaseTerminated, got %s", phaseErr.Phase)
	}

	// The Secret and Service are adopted under the driver Pod's owner
	// reference before the submission RPC runs, so cleanup after an RPC
	// failure relies on Kubernetes' own owner-reference garbage collection
	// cascading from the Pod delete below rather than explicit registry
	// deletes (the fake clientset does not simulate that cascade). The
	// registry's own responsibility -- deleting the still-owning Pod -- is
	// what we assert here.
	pods, listErr := clientset.CoreV1().Pods("spark").List(ctx, metav1.ListOptions{})
	if listErr != nil {
		t.Fatalf("unexpected list error: %v", listErr)
	}
	if len(pods.Items) != 0 {
		t.Errorf("expected driver pod to be cleaned up, found %d", len(pods.Items))
	}
}

func TestOrchestrator_Submit_FailsFastWithoutClient(t *testing.T) {
	orch := &Orchestrator{Config: &config.Config{}}
	err := orch.Submit(context.Background(), SubmissionSpec{AppName: "app"})
	if err == nil {
		t.Fatal("expected error for missing client")
	}
}
