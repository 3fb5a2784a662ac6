// Package rclone wraps the rclone command-line tool behind the narrow
// transfer contract the pipeline needs: copy one remote object to a local
// path, and enumerate a remote prefix as structured listing records.
//
// Whole-command failures are retried with linear backoff; the error returned
// after exhaustion carries the tool's stderr diagnostic. An injectable
// Executor keeps the wrapper testable without the binary installed.
package rclone
