// Package snapshot converts between a workspace and its JSON form.
//
// A snapshot has up to three sections: palette definitions, workspace
// instances, and a generated-code bundle. Exports pick sections by kind
// ([ParseKind]): "definitions", "instances" or "project" (all three).
//
//	{
//	  "definitions": [{"label": "say %text", "kind": "command", ...}],
//	  "instances": [{
//	    "id": "…", "label": "say %text", "kind": "command",
//	    "x": 40, "y": 40,
//	    "parentContainerId": null, "parentInput": null,
//	    "inputs": {"text": {"literal": "\"hi\"", "childId": null}},
//	    "nestedChildIds": []
//	  }],
//	  "code": "console.log(\"hi\");",
//	  "language": "javascript"
//	}
//
// [Capture] records a settled workspace in registry order. [Restore] rebuilds
// one in two phases, so records may reference blocks that appear later in the
// list. Restoring a capture yields the same ids, labels, kinds, colors,
// templates, nesting order, slot occupancy and literals.
//
// [Decode] also reads the payload written by the original browser editor
// (blockDefs, blockStates).
package snapshot
