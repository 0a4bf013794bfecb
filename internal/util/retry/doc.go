// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay, and maximum delay. It backs the submission RPC
// client's per-endpoint retry policy; the orchestrator's Kubernetes API
// calls are not retried through it.
package retry
