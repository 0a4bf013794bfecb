package submit

import (
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// secretMountPath returns the in-container directory the submission secret
// is mounted under for a given AppId.
func secretMountPath(appID string) string {
	return DriverContainerSecretsBaseDir + "/" + appID
}

func intstrFromInt(port int) intstr.IntOrString {
	return intstr.FromInt32(int32(port))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// joinURLPath joins path components with a single "/" between each,
// collapsing any doubled slashes introduced by a base path that already
// ends in "/".
func joinURLPath(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return "/" + strings.Join(cleaned, "/")
}
