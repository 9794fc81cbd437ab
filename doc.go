// Package sweetenergy3d converts floor plans into scene files of a foreign
// energy-simulation application by driving that application's own compiled
// types.
//
// The foreign application ships as a module set: a primary archive plus
// dependency archives, each a zip container of WebAssembly artifacts. One
// artifact defines one foreign type; its structural header lives in a
// "foreign.type" custom section and its entry points are function exports.
// Artifacts run on wazero.
//
// # Architecture Overview
//
//	sweetenergy3d/
//	├── locate/          Finds the module set on disk
//	├── archive/         Zip containers of artifacts
//	├── artifact/        Artifact descriptor and section-level editor
//	├── patch/           Rewrites artifacts before they are installed
//	├── standin/         Go-defined host types and compatibility stand-ins
//	├── resolve/         Two-tier type registry (isolated and outer)
//	├── foreign/         Reflective construction and mutation of objects
//	├── objstream/       Native object-stream encoder and decoder
//	├── plan/            Source plans and wall geometry
//	├── scene/           Scene graph builder for one plan
//	├── export/          Export orchestrator, serialization and verification
//	├── errors/          Structured error types
//	└── cmd/bridge/      Command line: export, verify, inspect
//
// # Quick Start
//
//	e := export.New(export.Options{Hint: dir})
//	defer e.Close(ctx)
//
//	p, err := plan.Load("house.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := e.Export(ctx, export.Job{Plan: p, Destination: "house.ng3"})
//	if !res.OK {
//	    log.Fatal(res.Diagnostic)
//	}
//
// # Failure Reporting
//
// Every failure is an *errors.Error carrying the phase it happened in:
// discovery, resolve, patch, build or serialize. An export that fails
// reports the phase, a diagnostic line and the path of the job's log file.
package sweetenergy3d
