package domain

// Graph declares, for every reachable state, the set of states directly
// reachable from it. A state mapped to an empty set is terminal.
type Graph[S comparable] map[S][]S

// CanTransition reports whether target is directly reachable from current.
// It is a pure predicate; it never mutates the graph or any entity.
func (g Graph[S]) CanTransition(current, target S) bool {
	for _, candidate := range g[current] {
		if candidate == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state has no outgoing transitions.
func (g Graph[S]) IsTerminal(state S) bool {
	return len(g[state]) == 0
}
