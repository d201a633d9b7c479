package schedule

import (
	"slices"
	"strings"

	"github.com/matzehuels/monorail/pkg/errors"
)

// CycleError is returned by [Batches] when cycles are rejected and the
// input contains at least one dependency cycle.
type CycleError struct {
	// Cycles holds one entry per strongly connected component, each listing
	// package names in input order. The order is not an edge path.
	Cycles [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = "[" + strings.Join(c, ", ") + "]"
	}
	noun := "cycle"
	if len(e.Cycles) > 1 {
		noun = "cycles"
	}
	return "dependency " + noun + " detected: " + strings.Join(parts, "; ")
}

// Code implements [errors.Coder].
func (e *CycleError) Code() errors.Code { return errors.ErrCodeDependencyCycle }

// Members returns the names of every package on a cycle, in report order.
func (e *CycleError) Members() []string {
	var out []string
	for _, c := range e.Cycles {
		out = append(out, c...)
	}
	return out
}

// cycles returns the strongly connected components among the given
// members (restricted to edges between them) that form cycles: components
// with more than one member, or a single member depending on itself.
// Components and their members are ordered by input position.
func (s *subset) cycles(among []int) [][]string {
	in := make(map[int]bool, len(among))
	for _, v := range among {
		in[v] = true
	}

	var (
		index   = make(map[int]int, len(among))
		low     = make(map[int]int, len(among))
		onStack = make(map[int]bool, len(among))
		stack   []int
		next    = 1
		comps   [][]int
	)

	var visit func(v int)
	visit = func(v int) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true

		selfLoop := false
		for _, w := range s.deps[v] {
			if !in[w] {
				continue
			}
			if w == v {
				selfLoop = true
			}
			if index[w] == 0 {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}
		var comp []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		if len(comp) > 1 || selfLoop {
			comps = append(comps, comp)
		}
	}

	for _, v := range among {
		if index[v] == 0 {
			visit(v)
		}
	}

	for _, c := range comps {
		slices.Sort(c)
	}
	slices.SortFunc(comps, func(a, b []int) int { return a[0] - b[0] })

	cycles := make([][]string, len(comps))
	for i, c := range comps {
		cycles[i] = make([]string, len(c))
		for j, v := range c {
			cycles[i][j] = s.members[v].Name()
		}
	}
	return cycles
}
