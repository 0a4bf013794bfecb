// Package submit implements the orchestrated provisioning state machine
// that launches a driver Pod into a Kubernetes cluster and hands a local
// submission payload off to it over HTTPS.
//
// It creates and readiness-gates a Secret, Service, Pod, and optional
// Ingress; adopts them under the Pod via owner references once the Pod's
// UID is known; discovers the driver's reachable URLs; and invokes the
// driver's submission RPC. Any failure before success tears down every
// resource the orchestrator created.
package submit
