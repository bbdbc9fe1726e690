// SPDX-License-Identifier: MIT

// Package graph implements the directed signal-flow graph, its edit-time
// invariants, and the block-rate scheduler/executor that drives it (spec
// §3, §4.2, §4.3).
package graph

import (
	"fmt"
	"sync"

	"dspgraph/internal/signal"

	"github.com/google/uuid"
)

// Graph owns a directed graph of processor nodes, designated input and
// output endpoints, a cached linear evaluation order, and per-node
// buffer caches. Edits (AddNode, Connect, ...) are guarded by a short
// critical section taken only on the build thread, per spec §9; the
// runtime does not take its own lock during Process, since Process runs
// single-threaded and never races an edit.
type Graph struct {
	mu sync.Mutex

	nodes   []*node
	byID    map[uuid.UUID]int
	edges   map[targetKey]Edge
	incount map[uuid.UUID][]Edge // target -> incoming edges, kept for traversal

	inputEndpoints  []uuid.UUID // designated order
	outputEndpoints []uuid.UUID

	sampleRate   float64
	blockSize    int
	maxBlockSize int
	allocated    bool

	order      []int // dense node indices in evaluation order; valid only when orderOK
	orderOK    bool
	plan       *plan
	constants  map[constKey]*signal.Buffer
}

type constKey struct {
	node uuid.UUID
	port int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byID:      make(map[uuid.UUID]int),
		edges:     make(map[targetKey]Edge),
		incount:   make(map[uuid.UUID][]Edge),
		constants: make(map[constKey]*signal.Buffer),
	}
}

// AddNode registers a processor under the graph and returns its stable
// id. The processor's port arity is fixed for the node's lifetime.
func (g *Graph) AddNode(name string, proc Processor) (uuid.UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addNodeLocked(name, KindProcessor, proc)
}

// AddInputEndpoint adds a designated external-input node of the given
// tag, appended to the graph's ordered list of input endpoints.
func (g *Graph) AddInputEndpoint(name string, tag signal.Tag) (uuid.UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := g.addNodeLocked(name, KindInputEndpoint, newInputEndpoint(tag))
	if err != nil {
		return uuid.Nil, err
	}
	g.inputEndpoints = append(g.inputEndpoints, id)
	return id, nil
}

// AddOutputEndpoint adds a designated external-output node of the given
// tag, appended to the graph's ordered list of output endpoints.
func (g *Graph) AddOutputEndpoint(name string, tag signal.Tag) (uuid.UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := g.addNodeLocked(name, KindOutputEndpoint, newOutputEndpoint(tag))
	if err != nil {
		return uuid.Nil, err
	}
	g.outputEndpoints = append(g.outputEndpoints, id)
	return id, nil
}

func (g *Graph) addNodeLocked(name string, kind NodeKind, proc Processor) (uuid.UUID, error) {
	id := uuid.New()
	n := &node{
		id:         id,
		name:       name,
		kind:       kind,
		proc:       proc,
		index:      len(g.nodes),
		inputSpec:  proc.InputSpec(),
		outputSpec: proc.OutputSpec(),
	}
	g.nodes = append(g.nodes, n)
	g.byID[id] = n.index
	g.orderOK = false
	return id, nil
}

func (g *Graph) nodeByID(id uuid.UUID) (*node, error) {
	idx, ok := g.byID[id]
	if !ok {
		return nil, &GraphEditError{Op: "lookup", Reason: "unknown node id"}
	}
	return g.nodes[idx], nil
}

// portIndexByName resolves a port name to an index within the given
// spec slice.
func portIndexByName(spec []signal.PortSpec, name string) (int, bool) {
	for i, p := range spec {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Connect wires a source node's output port to a target node's input
// port by index. Connecting to an already-connected target input
// replaces the prior edge atomically. Self-loops and cycles are rejected
// synchronously (spec §9 "Open questions": this implementation chooses
// eager detection at connect time).
func (g *Graph) Connect(source uuid.UUID, sourceOut int, target uuid.UUID, targetIn int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	srcNode, err := g.nodeByID(source)
	if err != nil {
		return &GraphEditError{Op: "connect", Reason: "unknown source node"}
	}
	dstNode, err := g.nodeByID(target)
	if err != nil {
		return &GraphEditError{Op: "connect", Reason: "unknown target node"}
	}
	if source == target {
		return &GraphEditError{Op: "connect", Reason: "self-loop not permitted", Node: srcNode.name}
	}
	if sourceOut < 0 || sourceOut >= len(srcNode.outputSpec) {
		return &GraphEditError{Op: "connect", Reason: "source output index out of range", Node: srcNode.name, Port: sourceOut}
	}
	if targetIn < 0 || targetIn >= len(dstNode.inputSpec) {
		return &GraphEditError{Op: "connect", Reason: "target input index out of range", Node: dstNode.name, Port: targetIn}
	}
	srcTag := srcNode.outputSpec[sourceOut].Tag
	dstTag := dstNode.inputSpec[targetIn].Tag
	if !signal.Compatible(srcTag, dstTag) {
		return &GraphEditError{Op: "connect", Reason: fmt.Sprintf("tag mismatch: %s -> %s", srcTag, dstTag), Node: dstNode.name, Port: targetIn}
	}

	key := targetKey{node: target, port: targetIn}
	prior, hadPrior := g.edges[key]

	// Eager cycle check: would adding source->target create a path
	// target ~> source? Temporarily exclude the edge being replaced.
	if g.reaches(target, source, key, hadPrior) {
		return &GraphEditError{Op: "connect", Reason: "connecting would introduce a cycle", Node: dstNode.name, Port: targetIn}
	}

	if hadPrior {
		g.removeEdgeLocked(prior)
	}
	e := Edge{SourceNode: source, SourceOut: sourceOut, TargetNode: target, TargetIn: targetIn}
	g.edges[key] = e
	g.incount[target] = append(g.incount[target], e)
	g.orderOK = false
	return nil
}

// ConnectByName resolves port names to indices, then calls Connect.
func (g *Graph) ConnectByName(source uuid.UUID, sourceOutName string, target uuid.UUID, targetInName string) error {
	g.mu.Lock()
	srcNode, err := g.nodeByID(source)
	if err != nil {
		g.mu.Unlock()
		return &GraphEditError{Op: "connect", Reason: "unknown source node"}
	}
	dstNode, err := g.nodeByID(target)
	if err != nil {
		g.mu.Unlock()
		return &GraphEditError{Op: "connect", Reason: "unknown target node"}
	}
	outIdx, ok := portIndexByName(srcNode.outputSpec, sourceOutName)
	if !ok {
		g.mu.Unlock()
		return &GraphEditError{Op: "connect", Reason: fmt.Sprintf("unknown output port %q", sourceOutName), Node: srcNode.name}
	}
	inIdx, ok := portIndexByName(dstNode.inputSpec, targetInName)
	if !ok {
		g.mu.Unlock()
		return &GraphEditError{Op: "connect", Reason: fmt.Sprintf("unknown input port %q", targetInName), Node: dstNode.name}
	}
	g.mu.Unlock()
	return g.Connect(source, outIdx, target, inIdx)
}

// removeEdgeLocked drops e from incount; the caller still owns g.mu.
func (g *Graph) removeEdgeLocked(e Edge) {
	list := g.incount[e.TargetNode]
	for i, cand := range list {
		if cand == e {
			g.incount[e.TargetNode] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// reaches reports whether there is a path from `from` to `to` in the
// current edge set, pretending the edge keyed by `ignoreKey` doesn't
// exist when ignore is true (used to check for cycles introduced by a
// replacement edge without counting the edge it is replacing).
func (g *Graph) reaches(from, to uuid.UUID, ignoreKey targetKey, ignore bool) bool {
	if from == to {
		return true
	}
	visited := make(map[uuid.UUID]bool)
	stack := []uuid.UUID{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cur == to {
			return true
		}
		for key, e := range g.edges {
			if ignore && key == ignoreKey {
				continue
			}
			if e.SourceNode == cur {
				stack = append(stack, e.TargetNode)
			}
		}
	}
	return false
}

// NodeName returns the human-readable name assigned at AddNode time.
func (g *Graph) NodeName(id uuid.UUID) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, err := g.nodeByID(id)
	if err != nil {
		return ""
	}
	return n.name
}

// InputEndpoints returns the designated external-input node ids, in
// declared order.
func (g *Graph) InputEndpoints() []uuid.UUID {
	out := make([]uuid.UUID, len(g.inputEndpoints))
	copy(out, g.inputEndpoints)
	return out
}

// OutputEndpoints returns the designated external-output node ids, in
// declared order.
func (g *Graph) OutputEndpoints() []uuid.UUID {
	out := make([]uuid.UUID, len(g.outputEndpoints))
	copy(out, g.outputEndpoints)
	return out
}

// ExternalInput returns the driver-writable buffer for an input
// endpoint. Valid only after Allocate.
func (g *Graph) ExternalInput(id uuid.UUID) (*signal.Buffer, error) {
	n, err := g.nodeByID(id)
	if err != nil {
		return nil, err
	}
	ep, ok := n.proc.(*endpointProcessor)
	if !ok || !ep.isInput {
		return nil, &GraphEditError{Op: "external-input", Reason: "node is not an input endpoint", Node: n.name}
	}
	return ep.External(), nil
}

// OutputBuffer returns the current cached output buffer for node/port,
// valid after Allocate and until the next Resize.
func (g *Graph) OutputBuffer(id uuid.UUID, port int) (*signal.Buffer, error) {
	n, err := g.nodeByID(id)
	if err != nil {
		return nil, err
	}
	if port < 0 || port >= len(n.outputs) {
		return nil, &GraphEditError{Op: "output-buffer", Reason: "port out of range", Node: n.name, Port: port}
	}
	return n.outputs[port], nil
}

// NodeIDs returns every node id in insertion order. Intended for
// introspection (persistence, diagnostics) outside the hot path.
func (g *Graph) NodeIDs() []uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]uuid.UUID, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.id
	}
	return ids
}

// NodeKind reports whether id is a processor node or a designated
// input/output endpoint.
func (g *Graph) NodeKind(id uuid.UUID) (NodeKind, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, err := g.nodeByID(id)
	if err != nil {
		return 0, err
	}
	return n.kind, nil
}

// NodeProcessor returns the Processor registered for id. For endpoint
// nodes this is the graph's internal endpointProcessor.
func (g *Graph) NodeProcessor(id uuid.UUID) (Processor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, err := g.nodeByID(id)
	if err != nil {
		return nil, err
	}
	return n.proc, nil
}

// EndpointTag returns the signal tag of a designated input or output
// endpoint node.
func (g *Graph) EndpointTag(id uuid.UUID) (signal.Tag, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, err := g.nodeByID(id)
	if err != nil {
		return 0, err
	}
	ep, ok := n.proc.(*endpointProcessor)
	if !ok {
		return 0, &GraphEditError{Op: "endpoint-tag", Reason: "node is not an endpoint", Node: n.name}
	}
	return ep.tag, nil
}

// Edges returns every edge currently in the graph, in no particular
// order.
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}
	return edges
}
