// Package harness provides conformance testing for checksum trees.
//
// A scenario declares one or more workspace manifests and a list of
// assertions about the trees the engine assembles for them. Every tree the
// harness computes is journaled to an in-memory store, so assertions can also
// query what was recorded.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	manifests:
//	  base:
//	    name: demo
//	    projects:
//	      - id: api
//	        kind: go
//	        references: [model]
//	  changed:
//	    ...
//	files:
//	  onDisk: ../manifests/workspace.cue
//	assertions:
//	  - type: cone
//	    manifest: base
//	    root: api
//	    members: [api, model]
//	  - type: same_checksum
//	    manifests: [base, changed]
//	    root: api
//
// Manifests under files are loaded through manifest.Loader, relative to the
// scenario file, and may be YAML or CUE.
//
// # Assertion Types
//
//   - cone: the cone of root contains exactly members
//   - children: the tree for root has exactly these participating children, in order
//   - same_checksum: two manifests produce the same root checksum for a scope
//   - different_checksum: two manifests produce different root checksums for a scope
//   - journal_matches: the journal holds the tree's root for exactly these manifests
//
// An empty root selects the whole snapshot.
//
// # Golden Files
//
// RunWithGolden renders every computed tree and compares the output against
// testdata/golden/{name}.golden. Checksums are replaced with labels (#1, #2,
// ...) in order of first appearance, so golden files record which checksums
// are equal without pinning their bytes.
package harness
