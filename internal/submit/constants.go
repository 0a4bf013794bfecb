package submit

import "time"

// Reserved and driver selector label keys. These mirror the conventional
// Apache Spark-on-Kubernetes submission client's label vocabulary.
const (
	// AppIDLabelKey is reserved: it is always set by the orchestrator and
	// must never appear in a user-supplied custom label string.
	AppIDLabelKey = "spark-app-selector"
	// RoleLabelKey marks the driver Pod/Service/Ingress/Secret.
	RoleLabelKey = "spark-role"
	// RoleDriverValue is the RoleLabelKey value every resource carries.
	RoleDriverValue = "driver"
	// AppNameLabelKey carries the user-supplied application name.
	AppNameLabelKey = "spark-app-name"
)

// Driver container and port naming.
const (
	// DriverContainerName is the name of the container inside the driver
	// Pod that runs the submission server and later the user application.
	DriverContainerName = "spark-kubernetes-driver"

	// SubmissionServerPortName names the Service/container port carrying
	// the in-pod submission HTTP(S) server.
	SubmissionServerPortName = "submit-server"
	// UIPortName names the Service/container port carrying the driver UI.
	UIPortName = "spark-ui"

	// SubmissionServerPathComponent and UIPathComponent are the two path
	// prefixes routed by the Ingress; the submission server's own HTTP
	// routes sit under /<AppId>/SubmissionServerPathComponent.
	SubmissionServerPathComponent = "submit"
	UIPathComponent               = "ui"

	// SubmissionPingPathSuffix is the submission server's health-check
	// route, appended after AppId/SubmissionServerPathComponent for both
	// the driver Pod's readiness probe and the RPC client's sanity ping.
	SubmissionPingPathSuffix = "v1/submissions/ping"

	// SubmissionCreatePathSuffix is the submission server's application
	// creation route, appended after AppId/SubmissionServerPathComponent
	// by the RPC client's Submit call.
	SubmissionCreatePathSuffix = "v1/submissions/create"

	// DriverContainerSecretsBaseDir is the directory under which the
	// submission secret is mounted, namespaced by AppId. SSL secrets are
	// mounted separately, at the path the SSL provider chooses.
	DriverContainerSecretsBaseDir = "/var/run/secrets/sparkctl"
)

// Environment variable names set on the driver container.
const (
	EnvSubmissionSecretLocation = "SPARKCTL_SUBMISSION_SECRET_LOCATION"
	EnvSubmissionServerPort     = "SPARKCTL_SUBMISSION_SERVER_PORT"
	EnvSubmissionServerBasePath = "SPARKCTL_SUBMISSION_SERVER_BASE_PATH"
)

// SubmissionAppSecretNameKey is the key under which the 128-byte random
// submission secret is stored inside the Secret's Data map.
const SubmissionAppSecretNameKey = "SUBMISSION_APP_SECRET_NAME"

// submissionAppSecretNamePrefix names the one-time Secret created before the
// Pod; the full name is this prefix plus the AppId.
const submissionAppSecretNamePrefix = "submission-app-secret-"

// HTTP client retry policy (spec.md §4.8.1 step 11).
const (
	SubmissionClientRetriesIngress  = 10
	SubmissionClientRetriesNodePort = 3
)

// RPC timeout for the submission HTTP(S) client, applied as the HTTP
// client's overall per-request timeout (connection and response together).
const RPCConnectTimeout = 5 * time.Second

// submissionSecretRandomBytes is the length, in bytes, of the random
// submission secret before base64 encoding (spec.md §3 invariant 2).
const submissionSecretRandomBytes = 128
