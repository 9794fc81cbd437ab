// Package errors provides structured error types for the foreign scene bridge.
//
// Errors are categorized by Phase (where in the export pipeline the error
// occurred) and Kind (error category). The Error type carries the foreign
// type name, archive path, field path and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindNotFound).
//		Type("org.concord.energy3d.model.Wall").
//		Archive("lib/energy3d.jar").
//		Detail("artifact entry missing").
//		Build()
//
// The export failure taxonomy is exposed as phase sentinels:
//
//	if errors.Is(err, errors.DiscoveryFailure) { ... }
//	if errors.Is(err, errors.BuildError) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
