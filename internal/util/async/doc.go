// Package async provides utilities for parallel task execution with
// error collection.
//
// [RunParallel] executes multiple operations concurrently and joins all
// errors. The orchestrator uses it to establish the Pod/Service/Endpoints/Ingress
// watch connections concurrently before awaiting their readiness promises
// sequentially.
package async
