// Package export writes floor plans as foreign scene files.
//
// An Exporter owns the process-lifetime type registry and runs one job at
// a time: locate the foreign distribution, resolve the scene types
// (patching artifacts as needed), build the scene graph, serialize it and
// read it back. Every step is logged to an append-mode sidecar log next to
// the destination.
//
//	e := export.New(export.Options{Hint: installDir})
//	defer e.Close(ctx)
//	res := e.Export(ctx, export.Job{Plan: p, Destination: "house.ng3"})
//	if !res.OK {
//		fmt.Println(res.Diagnostic)
//	}
//
// Failures are reported through Result and never returned as errors. A
// job that fails before serializing leaves no destination file; a failed
// write leaves the partial file and a short diagnostic file beside it.
package export
