package io

import (
	"encoding/json"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/graph"
	"github.com/matzehuels/monorail/pkg/manifest"
	"github.com/matzehuels/monorail/pkg/schedule"
)

// Graph is the JSON form of a package graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one package.
type Node struct {
	Name     string       `json:"name"`
	Version  string       `json:"version,omitempty"`
	Location string       `json:"location,omitempty"`
	Private  bool         `json:"private,omitempty"`
	External []Dependency `json:"external,omitempty"`
}

// Edge is a local dependency from a package to another package of the
// graph.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Spec string `json:"spec"`
	Kind string `json:"kind"`
}

// Dependency is an external dependency declaration.
type Dependency struct {
	Name string `json:"name"`
	Spec string `json:"spec"`
	Kind string `json:"kind"`
}

// Plan is the JSON form of a schedule.
type Plan struct {
	Batches   [][]string `json:"batches"`
	Unordered []string   `json:"unordered,omitempty"`
	Cycles    [][]string `json:"cycles,omitempty"`
}

// FromNodes converts nodes and the local edges among them. Edges leaving
// the set are dropped.
func FromNodes(nodes []*graph.Node) Graph {
	in := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		in[n.Name()] = true
	}

	out := Graph{Nodes: make([]Node, 0, len(nodes)), Edges: []Edge{}}
	for _, n := range nodes {
		nd := Node{
			Name:     n.Name(),
			Version:  n.Version(),
			Location: n.Location(),
			Private:  n.Private(),
		}
		ext := n.ExternalDependencies()
		for _, name := range n.ExternalDependencyNames() {
			d := ext[name]
			nd.External = append(nd.External, Dependency{Name: name, Spec: d.Spec, Kind: string(d.Kind)})
		}
		out.Nodes = append(out.Nodes, nd)

		for _, dep := range n.LocalDependencyNames() {
			if !in[dep] {
				continue
			}
			e, _ := n.LocalDependency(dep)
			out.Edges = append(out.Edges, Edge{From: n.Name(), To: dep, Spec: e.Spec, Kind: string(e.Kind)})
		}
	}
	return out
}

// FromPlan converts a schedule to package names.
func FromPlan(p *schedule.Plan) Plan {
	out := Plan{Batches: p.Names(), Cycles: p.Cycles}
	if !p.Ordered() {
		// Names appends the unordered tail as a last batch.
		out.Batches = out.Batches[:len(out.Batches)-1]
		for _, n := range p.Unordered {
			out.Unordered = append(out.Unordered, n.Name())
		}
	}
	return out
}

// Records converts the graph back into manifest records so it can be
// rebuilt with [graph.Build]. Every edge and external dependency becomes a
// declaration of its kind.
func (g Graph) Records() ([]manifest.Record, error) {
	records := make([]manifest.Record, 0, len(g.Nodes))
	index := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		rec := manifest.Record{
			Name:         n.Name,
			Version:      n.Version,
			Location:     n.Location,
			Private:      n.Private,
			Dependencies: map[manifest.DependencyKind]map[string]string{},
		}
		for _, d := range n.External {
			if err := declare(&rec, d.Kind, d.Name, d.Spec); err != nil {
				return nil, err
			}
		}
		index[n.Name] = len(records)
		records = append(records, rec)
	}
	for _, e := range g.Edges {
		i, ok := index[e.From]
		if !ok {
			return nil, errors.New(errors.ErrCodePackageNotFound, "edge %s -> %s: unknown package %q", e.From, e.To, e.From)
		}
		if err := declare(&records[i], e.Kind, e.To, e.Spec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func declare(rec *manifest.Record, kind, name, spec string) error {
	k, err := manifest.ParseKind(kind)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "package %s, dependency %s", rec.Name, name)
	}
	if rec.Dependencies[k] == nil {
		rec.Dependencies[k] = map[string]string{}
	}
	rec.Dependencies[k][name] = spec
	return nil
}

// Names returns the package names in node order.
func (g Graph) Names() []string {
	names := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		names[i] = n.Name
	}
	return names
}

// HasCycles reports whether the plan could not order every package.
func (p Plan) HasCycles() bool { return len(p.Unordered) > 0 || len(p.Cycles) > 0 }

// Flatten returns every package of the plan in execution order.
func (p Plan) Flatten() []string {
	var out []string
	for _, b := range p.Batches {
		out = append(out, b...)
	}
	return append(out, slices.Clone(p.Unordered)...)
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode")
	}
	return nil
}

// ExportJSON writes v to a JSON file at path.
func ExportJSON(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(v, f)
}
