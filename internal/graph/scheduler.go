// SPDX-License-Identifier: MIT
package graph

import (
	"sort"

	"dspgraph/internal/signal"

	"github.com/google/uuid"
)

// plan is the executor's hot-path representation: for each node in
// evaluation order, its resolved input sources (a pointer straight at
// either a predecessor's cached output buffer or a constant-default
// buffer). Resolving by pointer at build time means the per-block loop
// never performs a map lookup.
type plan struct {
	steps []planStep
}

type planStep struct {
	nodeIndex int
	inputs    []*signal.Buffer
}

// rebuildPlanLocked recomputes the evaluation order and the plan. Caller
// holds g.mu.
func (g *Graph) rebuildPlanLocked() error {
	order, err := g.computeOrderLocked()
	if err != nil {
		return err
	}
	g.order = order
	g.orderOK = true
	g.plan = g.buildPlanLocked(order)
	return nil
}

// computeOrderLocked performs a post-order DFS from every zero-indegree
// node (in insertion order), then reverses the result, so that for every
// edge u->v, index(u) < index(v). Ties are broken by node insertion
// order both when choosing roots and when choosing among a node's
// successors (spec §4.3).
func (g *Graph) computeOrderLocked() ([]int, error) {
	n := len(g.nodes)
	outgoing := make([][]int, n)
	indeg := make([]int, n)
	for _, e := range g.edges {
		srcIdx := g.byID[e.SourceNode]
		dstIdx := g.byID[e.TargetNode]
		outgoing[srcIdx] = append(outgoing[srcIdx], dstIdx)
		indeg[dstIdx]++
	}
	for i := range outgoing {
		sort.Ints(outgoing[i])
	}

	visited := make([]bool, n)
	onStack := make([]bool, n)
	postorder := make([]int, 0, n)

	var dfs func(i int) error
	dfs = func(i int) error {
		if onStack[i] {
			return &GraphEditError{Op: "allocate", Reason: "cycle detected", Node: g.nodes[i].name}
		}
		if visited[i] {
			return nil
		}
		onStack[i] = true
		for _, j := range outgoing[i] {
			if err := dfs(j); err != nil {
				return err
			}
		}
		onStack[i] = false
		visited[i] = true
		postorder = append(postorder, i)
		return nil
	}

	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			if err := dfs(i); err != nil {
				return nil, err
			}
		}
	}
	// Defense in depth: every node in a DAG is reachable from some
	// zero-indegree node, so this loop should be a no-op; kept in case a
	// future node-removal feature breaks that invariant.
	for i := 0; i < n; i++ {
		if !visited[i] {
			if err := dfs(i); err != nil {
				return nil, err
			}
		}
	}

	order := make([]int, n)
	for i, idx := range postorder {
		order[n-1-i] = idx
	}
	return order, nil
}

// buildPlanLocked resolves, for every node in order, each input port's
// source: a predecessor's output buffer, or a constant buffer holding
// the port's declared default.
func (g *Graph) buildPlanLocked(order []int) *plan {
	p := &plan{steps: make([]planStep, len(order))}
	for i, idx := range order {
		n := g.nodes[idx]
		ins := make([]*signal.Buffer, len(n.inputSpec))
		for port := range n.inputSpec {
			key := targetKey{node: n.id, port: port}
			if e, ok := g.edges[key]; ok {
				src := g.nodes[g.byID[e.SourceNode]]
				ins[port] = src.outputs[e.SourceOut]
			} else {
				ins[port] = g.constantForLocked(n, port)
			}
		}
		p.steps[i] = planStep{nodeIndex: idx, inputs: ins}
	}
	return p
}

func (g *Graph) constantForLocked(n *node, port int) *signal.Buffer {
	key := constKey{node: n.id, port: port}
	if buf, ok := g.constants[key]; ok {
		return buf
	}
	spec := n.inputSpec[port]
	buf := signal.NewBuffer(spec.Tag, g.blockSize)
	buf.FillConstant(spec.DefaultValue())
	g.constants[key] = buf
	return buf
}

// Allocate provisions every node's internal state and output buffers for
// the given sample rate and maximum block size, then computes the
// evaluation order and plan. It may allocate; subsequent Resize calls
// must not. A cycle anywhere in the graph is reported here if it wasn't
// already rejected at Connect time.
func (g *Graph) Allocate(sampleRate float64, maxBlockSize int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, n := range g.nodes {
		if err := n.proc.Allocate(sampleRate, maxBlockSize); err != nil {
			return &ProcessorError{NodeName: n.name, Port: -1, Err: err}
		}
		n.outputs = make([]*signal.Buffer, len(n.outputSpec))
		for i, spec := range n.outputSpec {
			n.outputs[i] = signal.NewBuffer(spec.Tag, maxBlockSize)
		}
	}

	g.sampleRate = sampleRate
	g.maxBlockSize = maxBlockSize
	g.blockSize = maxBlockSize
	g.allocated = true
	g.constants = make(map[constKey]*signal.Buffer)

	return g.rebuildPlanLocked()
}

// Resize changes the active sample rate/block size without allocating
// beyond the capacity established by Allocate. If the graph was edited
// since the last Allocate/Resize, the evaluation order and plan are
// recomputed first (this does allocate, since it happens outside the
// per-block hot path).
func (g *Graph) Resize(sampleRate float64, blockSize int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.allocated {
		return &GraphEditError{Op: "resize", Reason: "graph not allocated"}
	}
	if blockSize < 0 || blockSize > g.maxBlockSize {
		return &GraphEditError{Op: "resize", Reason: "block size exceeds max block size"}
	}
	if !g.orderOK {
		if err := g.rebuildPlanLocked(); err != nil {
			return err
		}
	}

	for _, n := range g.nodes {
		if err := n.proc.Resize(sampleRate, blockSize); err != nil {
			return &ProcessorError{NodeName: n.name, Port: -1, Err: err}
		}
		for _, buf := range n.outputs {
			buf.Resize(blockSize)
		}
	}
	for key, buf := range g.constants {
		buf.Resize(blockSize)
		n := g.nodes[g.byID[key.node]]
		buf.FillConstant(n.inputSpec[key.port].DefaultValue())
	}

	g.sampleRate = sampleRate
	g.blockSize = blockSize
	return nil
}

// Process runs one render block: every node in the cached evaluation
// order gathers its resolved inputs and is dispatched once, in order, on
// the calling goroutine. It does not allocate and does not lock (spec
// §5: no locks on the audio thread; the graph is owned by exactly one
// thread between edits).
func (g *Graph) Process(mode Mode) error {
	if !g.allocated {
		return &GraphEditError{Op: "process", Reason: "graph not allocated"}
	}
	if g.blockSize == 0 {
		return nil
	}
	ctx := &Context{SampleRate: g.sampleRate, BlockSize: g.blockSize, Mode: mode}
	for _, step := range g.plan.steps {
		n := g.nodes[step.nodeIndex]
		if err := n.proc.Process(ctx, step.inputs, n.outputs); err != nil {
			return &ProcessorError{NodeName: n.name, Port: -1, Err: err}
		}
	}
	return nil
}

// SampleRate returns the sample rate established by the last
// Allocate/Resize call.
func (g *Graph) SampleRate() float64 { return g.sampleRate }

// BlockSize returns the block size established by the last
// Allocate/Resize call.
func (g *Graph) BlockSize() int { return g.blockSize }

// MaxBlockSize returns the block size established by Allocate.
func (g *Graph) MaxBlockSize() int { return g.maxBlockSize }

// Order returns the cached evaluation order as node ids, for
// diagnostics and testing (spec §8 "Order respects dependencies").
func (g *Graph) Order() []uuid.UUID {
	out := make([]uuid.UUID, len(g.order))
	for i, idx := range g.order {
		out[i] = g.nodes[idx].id
	}
	return out
}

// IndexOf returns a node's position in the cached evaluation order.
func (g *Graph) IndexOf(id uuid.UUID) int {
	nodeIdx, ok := g.byID[id]
	if !ok {
		return -1
	}
	for pos, idx := range g.order {
		if idx == nodeIdx {
			return pos
		}
	}
	return -1
}
