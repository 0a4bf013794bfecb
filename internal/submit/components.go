package submit

import (
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/sparkctl/sparkctl/internal/config"
	"github.com/sparkctl/sparkctl/internal/util/ptr"
)

// ComponentFactory builds the Secret, Service, Pod, and Ingress object specs
// for one submission. It never talks to the API server itself; the
// orchestrator is responsible for Create/Get/Patch calls, so the factory can
// be exercised by plain unit tests.
type ComponentFactory struct {
	Namespace string
	Selectors Selectors
	Config    *config.Config
}

// BuildSecret returns the one-time Secret carrying the base64 submission
// secret. Any SSL material is carried in its own Secret(s) under
// SslBundle.Secrets, created and adopted alongside this one.
func (f ComponentFactory) BuildSecret(appID, submissionSecret string) *corev1.Secret {
	data := map[string][]byte{
		SubmissionAppSecretNameKey: []byte(submissionSecret),
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      SecretName(appID),
			Namespace: f.Namespace,
			Labels:    f.Selectors.Labels(),
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}
	return secret
}

// BuildService returns the Service fronting the driver's submission server,
// UI, driver RPC, and block-manager ports. It is a NodePort Service when no
// Ingress is requested, so EndpointDiscovery can reach the driver directly
// through any schedulable node's external IP; otherwise it is a plain
// ClusterIP Service routed to by the Ingress.
func (f ComponentFactory) BuildService(appID string) *corev1.Service {
	cfg := f.Config
	svcType := corev1.ServiceTypeClusterIP
	if !cfg.ExposeIngress {
		svcType = corev1.ServiceTypeNodePort
	}

	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ServiceName(appID),
			Namespace: f.Namespace,
			Labels:    f.Selectors.Labels(),
		},
		Spec: corev1.ServiceSpec{
			Selector: f.Selectors.Selector(),
			Type:     svcType,
			Ports: []corev1.ServicePort{
				{Name: SubmissionServerPortName, Port: int32(config.DefaultSubmissionPort), TargetPort: intstrFromInt(config.DefaultSubmissionPort)},
				{Name: UIPortName, Port: int32(cfg.UIPort), TargetPort: intstrFromInt(cfg.UIPort)},
				{Name: "driver-rpc-port", Port: int32(cfg.DriverPort), TargetPort: intstrFromInt(cfg.DriverPort)},
				{Name: "blockmanager", Port: int32(cfg.BlockManagerPort), TargetPort: intstrFromInt(cfg.BlockManagerPort)},
			},
		},
	}
}

// RewriteExternalTrafficPolicyLocal pins a NodePort Service's external
// traffic policy to Local once the orchestrator has confirmed the driver
// Pod is running, so NodePort traffic is answered only by the node hosting
// the Pod, without an extra hop, and the driver sees the client's source
// address. It is a no-op for ClusterIP Services (the Ingress-exposed path).
func (f ComponentFactory) RewriteExternalTrafficPolicyLocal(svc *corev1.Service) {
	if svc.Spec.Type != corev1.ServiceTypeNodePort {
		return
	}
	svc.Spec.ExternalTrafficPolicy = corev1.ServiceExternalTrafficPolicyLocal
}

// BuildPod returns the driver Pod spec: the submission secret mounted under
// DriverContainerSecretsBaseDir, the submission server/UI/RPC/block-manager
// ports, the three environment variables the driver needs to locate its own
// submission secret, port, and base path, any SSL material merged in from
// ssl, and a readiness probe against the submission server's ping route so
// the Pod is only reported ready once that server actually answers.
// RestartPolicy is OnFailure: a driver that exits non-zero may still be
// worth retrying in place, whereas sparkctl itself owns final cleanup.
func (f ComponentFactory) BuildPod(appID string, ssl SslBundle) *corev1.Pod {
	cfg := f.Config
	secretVolume := "submission-secret"
	mountPath := secretMountPath(appID)

	scheme := corev1.URISchemeHTTP
	if ssl.Options.Enabled {
		scheme = corev1.URISchemeHTTPS
	}

	volumes := []corev1.Volume{
		{
			Name: secretVolume,
			VolumeSource: corev1.VolumeSource{
				Secret: &corev1.SecretVolumeSource{SecretName: SecretName(appID)},
			},
		},
	}
	volumes = append(volumes, ssl.Volumes...)

	volumeMounts := []corev1.VolumeMount{
		{Name: secretVolume, MountPath: mountPath, ReadOnly: true},
	}
	volumeMounts = append(volumeMounts, ssl.VolumeMounts...)

	env := []corev1.EnvVar{
		{Name: EnvSubmissionSecretLocation, Value: mountPath + "/" + SubmissionAppSecretNameKey},
		{Name: EnvSubmissionServerPort, Value: itoa(config.DefaultSubmissionPort)},
		{Name: EnvSubmissionServerBasePath, Value: joinURLPath(appID, SubmissionServerPathComponent)},
	}
	env = append(env, ssl.Env...)

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      PodName(appID),
			Namespace: f.Namespace,
			Labels:    f.Selectors.Labels(),
		},
		Spec: corev1.PodSpec{
			ServiceAccountName: cfg.ServiceAccount,
			RestartPolicy:      corev1.RestartPolicyOnFailure,
			Volumes:            volumes,
			Containers: []corev1.Container{
				{
					Name:  DriverContainerName,
					Image: cfg.DriverDockerImage,
					Ports: []corev1.ContainerPort{
						{Name: SubmissionServerPortName, ContainerPort: int32(config.DefaultSubmissionPort)},
						{Name: UIPortName, ContainerPort: int32(cfg.UIPort)},
						{Name: "driver-rpc-port", ContainerPort: int32(cfg.DriverPort)},
						{Name: "blockmanager", ContainerPort: int32(cfg.BlockManagerPort)},
					},
					VolumeMounts: volumeMounts,
					Env:          env,
					ReadinessProbe: &corev1.Probe{
						ProbeHandler: corev1.ProbeHandler{
							HTTPGet: &corev1.HTTPGetAction{
								Path:   joinURLPath(appID, SubmissionServerPathComponent, SubmissionPingPathSuffix),
								Port:   intstr.FromString(SubmissionServerPortName),
								Scheme: scheme,
							},
						},
					},
				},
			},
		},
	}
}

// BuildIngress returns an Ingress routing requests under
// IngressBasePath/<appID>/{submit,ui} to the submission Service, used only
// when config.ExposeIngress is set.
func (f ComponentFactory) BuildIngress(appID string) *networkingv1.Ingress {
	pathType := networkingv1.PathTypePrefix
	basePath := f.Config.IngressBasePath
	if basePath == "" {
		basePath = "/"
	}

	backend := func(port string, portNum int32) networkingv1.IngressBackend {
		return networkingv1.IngressBackend{
			Service: &networkingv1.IngressServiceBackend{
				Name: ServiceName(appID),
				Port: networkingv1.ServiceBackendPort{Name: port},
			},
		}
	}

	return &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{
			Name:      IngressName(appID),
			Namespace: f.Namespace,
			Labels:    f.Selectors.Labels(),
		},
		Spec: networkingv1.IngressSpec{
			Rules: []networkingv1.IngressRule{
				{
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     joinURLPath(basePath, appID, SubmissionServerPathComponent),
									PathType: &pathType,
									Backend:  backend(SubmissionServerPortName, int32(config.DefaultSubmissionPort)),
								},
								{
									Path:     joinURLPath(basePath, appID, UIPathComponent),
									PathType: &pathType,
									Backend:  backend(UIPortName, int32(f.Config.UIPort)),
								},
							},
						},
					},
				},
			},
		},
	}
}

// BuildOwnerReference returns an owner reference pinning a resource's
// lifecycle to the driver Pod, so the Kubernetes garbage collector cleans up
// the Service/Secret/Ingress if the Pod is ever deleted directly.
func BuildOwnerReference(pod *corev1.Pod) metav1.OwnerReference {
	return metav1.OwnerReference{
		APIVersion: "v1",
		Kind:       "Pod",
		Name:       pod.Name,
		UID:        pod.UID,
		Controller: ptr.Bool(true),
	}
}
