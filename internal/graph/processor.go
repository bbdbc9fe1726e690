// SPDX-License-Identifier: MIT
package graph

import "dspgraph/internal/signal"

// Mode tells a processor whether it is running in the top-level graph or
// nested inside an FFT subgraph, per spec §4.2.
type Mode int

const (
	TopLevel Mode = iota
	InFFTSubgraph
)

// Context carries the per-block parameters a processor needs beyond its
// input/output buffers.
type Context struct {
	SampleRate float64
	BlockSize  int
	Mode       Mode
}

// Processor is the uniform interface every graph node's computation
// implements (spec §3, §4.2). Implementations must not allocate inside
// Process; all capacity is provisioned in Allocate/Resize.
type Processor interface {
	// InputSpec declares the ordered input ports.
	InputSpec() []signal.PortSpec
	// OutputSpec declares the ordered output ports.
	OutputSpec() []signal.PortSpec

	// Allocate is called once per build; it may allocate.
	Allocate(sampleRate float64, maxBlockSize int) error

	// Resize is called whenever sample rate or block size changes; it may
	// re-plan internal state but must never allocate beyond the capacity
	// established by Allocate's maxBlockSize.
	Resize(sampleRate float64, blockSize int) error

	// Process reads inputs (borrowed immutably, one per InputSpec entry,
	// each already sized to ctx.BlockSize), fills outputs (borrowed
	// mutably, one per OutputSpec entry), and must not allocate.
	Process(ctx *Context, inputs []*signal.Buffer, outputs []*signal.Buffer) error
}
