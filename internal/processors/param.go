// SPDX-License-Identifier: MIT
package processors

import (
	"math"
	"sync/atomic"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// Param is a lock-free cross-thread parameter cell: a control thread
// calls Set while the audio thread calls Process, with no locking on
// either side.
type Param struct {
	bits atomic.Uint64
}

// NewParam constructs a Param holding the given initial value.
func NewParam(initial float64) *Param {
	p := &Param{}
	p.bits.Store(math.Float64bits(initial))
	return p
}

// Set stores a new value, visible to the audio thread on its next
// Process call.
func (p *Param) Set(v float64) {
	p.bits.Store(math.Float64bits(v))
}

// Load reads the current value.
func (p *Param) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}

func (p *Param) InputSpec() []signal.PortSpec { return nil }
func (p *Param) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (p *Param) Allocate(float64, int) error { return nil }
func (p *Param) Resize(float64, int) error   { return nil }
func (p *Param) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	outputs[0].FillConstant(p.Load())
	return nil
}
