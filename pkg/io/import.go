package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/graph"
)

// ReadJSON decodes a graph written by [WriteJSON] and rebuilds it.
//
// The rebuilt graph re-resolves every declaration: an edge whose spec no
// longer matches the target's version becomes an external dependency, as
// it would in a workspace. Duplicate names fail with the same
// [*graph.DuplicateNameError] that discovery produces.
func ReadJSON(r io.Reader, opts graph.Options) (*graph.Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	records, err := data.Records()
	if err != nil {
		return nil, err
	}
	return graph.Build(records, opts)
}

// ImportJSON reads a graph from a JSON file.
func ImportJSON(path string, opts graph.Options) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f, opts)
}
