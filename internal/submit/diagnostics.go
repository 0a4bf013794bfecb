package submit

import (
	"context"
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// DiagnosePodTimeout renders a human-readable explanation of why a driver
// Pod did not become ready within timeout, attached to the error returned
// from the ComponentsReady phase. If the Pod's status cannot even be
// fetched, it returns ErrDiagnosticFetchFailed chaining both the fetch
// error and the original timeout cause, so neither is lost.
func DiagnosePodTimeout(ctx context.Context, client kubernetes.Interface, namespace, podName string, timeout time.Duration, cause error) (string, error) {
	pod, err := client.CoreV1().Pods(namespace).Get(ctx, podName, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: pod %s/%s: %w: %w", ErrDiagnosticFetchFailed, namespace, podName, err, cause)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "pod %s/%s was not ready in %d seconds", namespace, podName, int(timeout.Seconds()))

	if pod.Status.Phase != "" {
		fmt.Fprintf(&b, "; latest phase: %s", pod.Status.Phase)
	} else {
		b.WriteString("; The pod had no final phase.")
	}

	if pod.Status.Message != "" {
		fmt.Fprintf(&b, "; latest message: %s", pod.Status.Message)
	} else {
		b.WriteString("; no final message")
	}

	b.WriteString("; ")
	b.WriteString(driverContainerState(pod.Status.ContainerStatuses))

	return b.String(), nil
}

// driverContainerState renders the driver container's last known state from
// a Pod's container statuses.
func driverContainerState(statuses []corev1.ContainerStatus) string {
	for _, cs := range statuses {
		if cs.Name != DriverContainerName {
			continue
		}
		switch {
		case cs.State.Running != nil:
			return fmt.Sprintf("driver container running since %s", cs.State.Running.StartedAt)
		case cs.State.Waiting != nil:
			return fmt.Sprintf("driver container waiting: %s (%s)", cs.State.Waiting.Reason, cs.State.Waiting.Message)
		case cs.State.Terminated != nil:
			t := cs.State.Terminated
			return fmt.Sprintf("driver container terminated at %s: %s (%s, exit %d)", t.FinishedAt, t.Reason, t.Message, t.ExitCode)
		}
	}
	return "driver container wasn't found in pod"
}
