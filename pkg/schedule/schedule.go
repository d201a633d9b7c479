package schedule

import (
	"slices"

	"github.com/matzehuels/monorail/pkg/graph"
)

// Options configures [Batches].
type Options struct {
	// AllowCycles returns a plan with an unordered tail for a cyclic
	// input. By default a cycle fails with a [*CycleError].
	AllowCycles bool

	// Kinds restricts the edges that impose ordering to the given
	// dependency kinds. Empty means every edge of the graph.
	Kinds graph.DependencyKinds
}

// Plan is the result of scheduling a set of nodes.
type Plan struct {
	// Batches holds the dependency-ordered levels. Every node in batch i
	// has all of its in-set local dependencies in batches before i.
	Batches [][]*graph.Node

	// Unordered holds the nodes that could not be ordered because they are
	// on, or downstream of, a dependency cycle. It is only populated when
	// cycles are not rejected.
	Unordered []*graph.Node

	// Cycles lists the strongly connected components found among the
	// unordered nodes, by package name.
	Cycles [][]string
}

// Ordered reports whether every node was placed in a dependency-ordered
// batch.
func (p *Plan) Ordered() bool { return len(p.Unordered) == 0 }

// All returns the ordered batches followed by the unordered tail as one
// final batch when it is not empty.
func (p *Plan) All() [][]*graph.Node {
	all := make([][]*graph.Node, 0, len(p.Batches)+1)
	all = append(all, p.Batches...)
	if len(p.Unordered) > 0 {
		all = append(all, p.Unordered)
	}
	return all
}

// Len returns the number of scheduled nodes.
func (p *Plan) Len() int {
	n := len(p.Unordered)
	for _, b := range p.Batches {
		n += len(b)
	}
	return n
}

// Names returns the package names of every batch returned by [Plan.All].
func (p *Plan) Names() [][]string {
	all := p.All()
	names := make([][]string, len(all))
	for i, batch := range all {
		names[i] = make([]string, len(batch))
		for j, n := range batch {
			names[i][j] = n.Name()
		}
	}
	return names
}

// Graph schedules every node of g.
func Graph(g *graph.Graph, opts Options) (*Plan, error) {
	return Batches(g.Nodes(), opts)
}

// Batches orders nodes into dependency levels using Kahn's algorithm.
//
// Only edges between members of nodes are considered; dependencies outside
// the set are assumed to be satisfied already. Batch 0 holds every node
// with no in-set local dependency, and each following batch holds the
// nodes whose last in-set dependency was in the previous batch. Within a
// batch, nodes keep their input order. Duplicate entries in nodes are
// ignored after their first occurrence.
//
// Nodes left over once no more progress can be made depend, directly or
// transitively, on a cycle. The cycles among them are identified with
// Tarjan's strongly connected components algorithm. Batches returns a
// [*CycleError] unless [Options.AllowCycles] is set, in which case the
// leftovers are returned in [Plan.Unordered] in input order.
//
// Batches is a pure function of its input. Apart from sorting each batch
// back into input order it runs in O(V+E).
func Batches(nodes []*graph.Node, opts Options) (*Plan, error) {
	sub := newSubset(nodes, opts.Kinds)

	pending := make([]int, len(sub.members))
	for i := range sub.members {
		pending[i] = len(sub.deps[i])
	}

	plan := &Plan{}
	done := make([]bool, len(sub.members))
	var current []int
	for i := range sub.members {
		if pending[i] == 0 {
			current = append(current, i)
		}
	}

	for len(current) > 0 {
		batch := make([]*graph.Node, len(current))
		for j, i := range current {
			batch[j] = sub.members[i]
			done[i] = true
		}
		plan.Batches = append(plan.Batches, batch)

		var next []int
		for _, i := range current {
			for _, k := range sub.dependents[i] {
				pending[k]--
				if pending[k] == 0 {
					next = append(next, k)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	var rest []int
	for i := range sub.members {
		if !done[i] {
			rest = append(rest, i)
		}
	}
	if len(rest) == 0 {
		return plan, nil
	}

	cycles := sub.cycles(rest)
	if !opts.AllowCycles {
		return nil, &CycleError{Cycles: cycles}
	}
	for _, i := range rest {
		plan.Unordered = append(plan.Unordered, sub.members[i])
	}
	plan.Cycles = cycles
	return plan, nil
}

// subset is the input node set with its in-set edges as index lists.
type subset struct {
	members    []*graph.Node
	deps       [][]int // member -> members it depends on
	dependents [][]int // member -> members depending on it
}

func newSubset(nodes []*graph.Node, kinds graph.DependencyKinds) *subset {
	pos := make(map[string]int, len(nodes))
	s := &subset{members: make([]*graph.Node, 0, len(nodes))}
	for _, n := range nodes {
		if _, seen := pos[n.Name()]; seen {
			continue
		}
		pos[n.Name()] = len(s.members)
		s.members = append(s.members, n)
	}

	s.deps = make([][]int, len(s.members))
	s.dependents = make([][]int, len(s.members))
	for i, n := range s.members {
		for _, name := range n.LocalDependencyNames() {
			j, ok := pos[name]
			if !ok {
				continue
			}
			if len(kinds) > 0 {
				if e, _ := n.LocalDependency(name); !kinds.Contains(e.Kind) {
					continue
				}
			}
			s.deps[i] = append(s.deps[i], j)
			s.dependents[j] = append(s.dependents[j], i)
		}
	}
	return s
}
