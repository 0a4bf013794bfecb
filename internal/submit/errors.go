package submit

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the submit package's components. Callers
// should use errors.Is against these rather than matching on message text.
var (
	// ErrInvalidMasterURL is returned when a master URL does not carry the
	// "k8s://" scheme or fails to parse as a host[:port] pair.
	ErrInvalidMasterURL = errors.New("invalid master url")

	// ErrReservedLabel is returned when a caller-supplied label string
	// tries to set AppIDLabelKey directly.
	ErrReservedLabel = errors.New("reserved label key")

	// ErrMalformedLabel is returned when a label token is not a "k=v" pair.
	ErrMalformedLabel = errors.New("malformed label")

	// ErrWatchTimeout is returned by ReadinessWatcher.Wait when the
	// context is canceled or its deadline elapses before the watched
	// condition is observed.
	ErrWatchTimeout = errors.New("timed out waiting for resource readiness")

	// ErrWatchClosed is returned by ReadinessWatcher.Wait when the
	// underlying watch channel closes before the condition is observed.
	ErrWatchClosed = errors.New("watch channel closed before condition met")

	// ErrNoReachableEndpoint is returned by EndpointDiscovery when no
	// candidate URL could be constructed from the cluster state (e.g. no
	// schedulable node carries an external or legacy host IP).
	ErrNoReachableEndpoint = errors.New("no reachable submission endpoint")

	// ErrSubmissionRejected is returned when the submission RPC fails on
	// every candidate endpoint, whether the driver's submission server
	// answered with a non-2xx status or could not be reached.
	ErrSubmissionRejected = errors.New("driver rejected submission")

	// ErrPodNotReady is returned when the driver Pod does not reach
	// Running with its driver container ready before the submit timeout
	// elapses.
	ErrPodNotReady = errors.New("pod was not ready in time")

	// ErrDiagnosticFetchFailed is returned when DiagnosePodTimeout cannot
	// fetch the driver Pod's status to explain a readiness timeout.
	ErrDiagnosticFetchFailed = errors.New("failed to fetch pod diagnostics")
)

// Phase names an orchestration state, used by PhaseError to report where in
// the state machine a failure occurred.
type Phase string

// Orchestration phases, in the order the orchestrator passes through them.
const (
	PhaseValidate          Phase = "Validate"
	PhaseClientReady       Phase = "ClientReady"
	PhaseSecretCreated     Phase = "SecretCreated"
	PhaseSslReady          Phase = "SslReady"
	PhaseWatchersArmed     Phase = "WatchersArmed"
	PhaseComponentsCreated Phase = "ComponentsCreated"
	PhaseComponentsReady   Phase = "ComponentsReady"
	PhaseAdopted           Phase = "Adopted"
	PhaseSubmitted         Phase = "Submitted"
	PhaseServiceRewritten  Phase = "ServiceRewritten"
	PhasePersisted         Phase = "Persisted"
	PhaseWaiting           Phase = "Waiting"
	PhaseDone              Phase = "Done"
	PhaseAborting          Phase = "Aborting"
	PhaseTerminated        Phase = "Terminated"
)

// PhaseError wraps a failure with the orchestration phase it occurred in,
// so logs and exit-code mapping can report exactly where a submission died.
type PhaseError struct {
	Phase Phase
	Cause error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Cause)
}

func (e *PhaseError) Unwrap() error {
	return e.Cause
}

// CleanupError wraps the set of errors encountered while tearing down
// resources after an aborted submission. It never suppresses the original
// failure that triggered the abort; the orchestrator joins the two.
type CleanupError struct {
	Errs []error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup failed for %d resource(s): %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *CleanupError) Unwrap() []error {
	return e.Errs
}
