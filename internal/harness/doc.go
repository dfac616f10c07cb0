// Package harness runs retime conformance scenarios.
//
// A scenario names an interchange document and a flow of engine steps.
// Each step is checked against its expect clause and recorded in a trace
// that can be compared with a golden file.
//
// # Scenario Format
//
//	name: sh020_retimed
//	description: "Speed 2 with a warp curve clamps the start handle"
//	document: documents/retimed_movie.otio
//	settings:
//	  handle_start: 10
//	  handle_end: 10
//	flow:
//	  - op: resolve
//	    handle_start: 10
//	    handle_end: 10
//	    expect:
//	      result: { mediaIn: 10, mediaOut: 22, handleStart: 10 }
//	  - op: remap
//	    clip: sh010
//	    start: 1011
//	    duration: 10
//	    expect:
//	      error: NOT_SEQUENCE
//	  - op: collect
//	assertions:
//	  - type: shot_recorded
//	    shot: sh010
//	    expect: { frameStart: 1001, handleStart: 10 }
//	  - type: clip_skipped
//	    shot: offline
//	    code: NO_AVAILABLE_RANGE
//
// # Operations
//
//   - resolve: media range with retimes and clamped handles
//   - remap: a source range mapped onto sequence file numbers
//   - collect: every video clip of a timeline, recorded in the ledger
//
// # Deterministic Testing
//
// Collect steps write to an in-memory SQLite ledger with a deterministic
// clock and sequential record IDs, so traces and stored data are identical
// across runs and can be compared byte for byte with golden files.
package harness
