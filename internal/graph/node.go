// SPDX-License-Identifier: MIT
package graph

import (
	"dspgraph/internal/signal"

	"github.com/google/uuid"
)

// NodeKind distinguishes the graph node variants spec §3 names.
type NodeKind int

const (
	KindProcessor NodeKind = iota
	KindInputEndpoint
	KindOutputEndpoint
)

// node is the graph's internal record for one node: its stable identity,
// its processor (built-in, user, or endpoint), and its per-block output
// buffer cache. Node records are never removed once added; index is the
// node's dense position in Graph.nodes, assigned when the node is added
// and used for all run-time lookups so the hot path never touches ID or
// a map.
type node struct {
	id    uuid.UUID
	name  string
	kind  NodeKind
	proc  Processor
	index int // dense position, fixed when the node is added

	inputSpec  []signal.PortSpec
	outputSpec []signal.PortSpec

	outputs []*signal.Buffer // sized to block size once Allocate runs
}

// Edge connects one source node's output port to one target node's input
// port (spec §3). At most one edge exists per (target node, target
// input); connecting a new source replaces the prior edge atomically.
type Edge struct {
	SourceNode uuid.UUID
	SourceOut  int
	TargetNode uuid.UUID
	TargetIn   int
}

type targetKey struct {
	node uuid.UUID
	port int
}
