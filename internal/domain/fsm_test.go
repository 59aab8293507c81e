package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraph_CanTransition(t *testing.T) {
	graph := Graph[string]{
		"a": {"b", "c"},
		"b": {"c"},
		"c": {},
	}

	assert.True(t, graph.CanTransition("a", "b"))
	assert.True(t, graph.CanTransition("a", "c"))
	assert.True(t, graph.CanTransition("b", "c"))
	assert.False(t, graph.CanTransition("b", "a"))
	assert.False(t, graph.CanTransition("c", "a"))
	assert.False(t, graph.CanTransition("a", "a"))
	assert.False(t, graph.CanTransition("unknown", "a"))
}

func TestGraph_IsTerminal(t *testing.T) {
	graph := Graph[string]{
		"a": {"b"},
		"b": {},
	}

	assert.False(t, graph.IsTerminal("a"))
	assert.True(t, graph.IsTerminal("b"))
	// states absent from the graph have no outgoing edges
	assert.True(t, graph.IsTerminal("unknown"))
}

func TestWorkflowGraphs_TerminalStates(t *testing.T) {
	assert.True(t, ReturnGraph.IsTerminal(ReturnStatusRefunded))
	assert.True(t, ReturnGraph.IsTerminal(ReturnStatusRejected))
	assert.False(t, ReturnGraph.IsTerminal(ReturnStatusEligibility))

	assert.True(t, RepairGraph.IsTerminal(RepairStatusCompleted))
	assert.True(t, RepairGraph.IsTerminal(RepairStatusFailed))
	assert.True(t, RepairGraph.IsTerminal(RepairStatusCancelled))
	assert.False(t, RepairGraph.IsTerminal(RepairStatusInProgress))

	// tickets reopen from closed, so closed is not graph-terminal
	assert.False(t, TicketGraph.IsTerminal(TicketStatusClosed))
	assert.False(t, TicketGraph.IsTerminal(TicketStatusResolved))

	assert.True(t, ChatGraph.IsTerminal(ChatStatusEnded))
	assert.False(t, ChatGraph.IsTerminal(ChatStatusWaiting))
}
