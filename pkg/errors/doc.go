// Package errors provides structured error types for better observability
// and programmatic error handling across the termination hook.
//
// The codes mirror the failure taxonomy of the shutdown pipeline. None of
// them is fatal: callers translate them into a verdict and a log line.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeControlPlaneFault,
//	    "describe task failed",
//	    cause,
//	    map[string]any{
//	        "cluster": identity.Cluster,
//	        "task":    identity.ID,
//	    },
//	)
package errors
