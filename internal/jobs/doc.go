// Package jobs turns validated manifests into download+clip work and runs
// it under a bounded worker pool.
//
// Collection resolves each manifest entry to a fully qualified remote
// locator, a namespaced staging path, and a clipped output path. Execution
// pipelines transfer, size verification, transform, and staging cleanup per
// job; a single job's failure is isolated into the run summary and never
// aborts its siblings.
package jobs
