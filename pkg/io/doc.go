// Package io provides JSON import and export for package graphs and
// schedules.
//
// # Graph Format
//
//	{
//	  "nodes": [
//	    {"name": "@acme/app", "version": "1.0.0", "location": "/ws/packages/app"},
//	    {"name": "@acme/core", "version": "1.2.0", "location": "/ws/packages/core",
//	     "external": [{"name": "lodash", "spec": "^4.17.0", "kind": "dependencies"}]}
//	  ],
//	  "edges": [
//	    {"from": "@acme/app", "to": "@acme/core", "spec": "^1.0.0", "kind": "dependencies"}
//	  ]
//	}
//
// Edges point from the declaring package to its dependency. [FromNodes]
// exports a filtered selection; edges leaving the selection are dropped.
//
// # Plan Format
//
//	{"batches": [["@acme/core"], ["@acme/app"]]}
//
// A plan produced with cycles allowed also carries "unordered" (the tail
// that could not be ordered) and "cycles".
//
// # Import
//
// [ReadJSON] and [ImportJSON] turn an exported graph back into manifest
// records and rebuild it with [graph.Build], so an exported graph can be
// scheduled again without the workspace on disk:
//
//	g, err := io.ImportJSON("graph.json", graph.Options{})
//	plan, err := schedule.Graph(g, schedule.Options{})
package io
