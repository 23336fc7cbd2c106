package container

import (
	"fmt"
	"strings"
)

type visitState uint8

const (
	stateUnvisited visitState = iota
	stateVisiting
	stateVisited
)

// frame is one node on the explicit traversal stack.
type frame struct {
	idx  int
	next int // next dependency to examine
}

// order returns the registrations in dependencies-before-dependents order,
// or ErrCircularDependency when the declared names form a cycle.
//
// The walk is an iterative depth-first traversal with an explicit frame stack
// so deep graphs never hit the call-stack limit. Nodes already satisfying the
// partial order keep their input order, which makes builds reproducible.
// Dependency names that match no registration in the input are treated as
// leaves here; Build validates them against the full registry.
func order(regs []Registration) ([]Registration, error) {
	index := make(map[string]int, len(regs))
	for i, r := range regs {
		if _, ok := index[r.Name]; !ok {
			index[r.Name] = i
		}
	}

	states := make([]visitState, len(regs))
	out := make([]Registration, 0, len(regs))

	for root := range regs {
		if states[root] != stateUnvisited {
			continue
		}
		states[root] = stateVisiting
		stack := []frame{{idx: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := regs[top.idx].Dependencies

			pushed := false
			for top.next < len(deps) {
				j, ok := index[deps[top.next]]
				top.next++
				if !ok {
					continue
				}
				switch states[j] {
				case stateVisiting:
					return nil, cycleError(regs, stack, j)
				case stateUnvisited:
					states[j] = stateVisiting
					stack = append(stack, frame{idx: j})
					pushed = true
				}
				if pushed {
					break
				}
			}
			if pushed {
				continue
			}

			// All dependencies placed; the node itself can be placed.
			states[top.idx] = stateVisited
			out = append(out, regs[top.idx])
			stack = stack[:len(stack)-1]
		}
	}

	return out, nil
}

// cycleError formats the chain of names currently on the traversal stack,
// closed by the node that was reached twice.
func cycleError(regs []Registration, stack []frame, repeat int) error {
	chain := make([]string, 0, len(stack)+1)
	for _, f := range stack {
		chain = append(chain, regs[f.idx].Name)
	}
	chain = append(chain, regs[repeat].Name)
	return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(chain, " -> "))
}
