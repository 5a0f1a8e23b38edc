// Package manifest turns declarative workspace manifests into snapshots.
//
// A manifest lists the projects of a workspace, their references to each
// other, and the documents they contain. Manifests are written in YAML or
// CUE:
//
//	name: shop
//	supported_kinds: [go]
//	external_references: [github.com/acme/lib@v1.2.0]
//	projects:
//	  - id: api
//	    kind: go
//	    references: [model]
//	    documents:
//	      - path: main.go
//	        text: package main
//
// Build validates a manifest and produces a fresh workspace.Snapshot whose
// entities are *Project values. Each Project computes its checksum once, from
// its identity attributes and its documents ordered by path.
package manifest
