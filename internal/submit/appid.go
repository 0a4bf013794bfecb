package submit

import (
	"fmt"
	"strings"
)

// DeriveAppID builds the submission's AppId from the user-supplied
// application name and a launch timestamp in epoch milliseconds:
// lowercase(appName + "-" + launchTimeMillis), with every "." replaced by
// "-" so the result is a legal Kubernetes label value and resource name
// component.
func DeriveAppID(appName string, launchTimeMillis int64) string {
	raw := fmt.Sprintf("%s-%d", appName, launchTimeMillis)
	raw = strings.ToLower(raw)
	return strings.ReplaceAll(raw, ".", "-")
}

// SecretName returns the one-time submission Secret's name for a given
// AppId.
func SecretName(appID string) string {
	return submissionAppSecretNamePrefix + appID
}

// ServiceName, PodName, and IngressName name the driver's Service, Pod, and
// Ingress; all three resources share the AppId as their resource name so
// cleanup-by-name never collides across concurrent submissions.
func ServiceName(appID string) string { return appID }
func PodName(appID string) string     { return appID }
func IngressName(appID string) string { return appID }
