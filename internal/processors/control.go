// SPDX-License-Identifier: MIT
package processors

import (
	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// Cond selects between two Float streams sample-by-sample based on a
// Bool condition stream.
type Cond struct{}

func (Cond) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "cond", Tag: signal.Bool},
		{Name: "then", Tag: signal.Float},
		{Name: "else", Tag: signal.Float},
	}
}
func (Cond) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (Cond) Allocate(float64, int) error { return nil }
func (Cond) Resize(float64, int) error   { return nil }
func (Cond) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	cond, then, els := inputs[0].Bools(), inputs[1].Floats(), inputs[2].Floats()
	out := outputs[0].Floats()
	for i := range out {
		if cond[i] {
			out[i] = then[i]
		} else {
			out[i] = els[i]
		}
	}
	return nil
}

// comparisonOp implements every two-input comparison processor (spec
// §4.6). Name identifies which comparison this is for persistence.
type comparisonOp struct {
	Name string
	fn   func(a, b float64) bool
}

func (o *comparisonOp) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "a", Tag: signal.Float},
		{Name: "b", Tag: signal.Float},
	}
}
func (o *comparisonOp) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Bool}}
}
func (o *comparisonOp) Allocate(float64, int) error { return nil }
func (o *comparisonOp) Resize(float64, int) error   { return nil }
// Process marks a slot present only when the comparison holds, so a
// comparisonOp feeding a trigger consumer (Counter, SampleAndHold,
// Merge) behaves as an event rather than a dense boolean stream.
func (o *comparisonOp) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	a, b, outBuf := inputs[0].Floats(), inputs[1].Floats(), outputs[0]
	out := outBuf.Bools()
	for i := range out {
		if o.fn(a[i], b[i]) {
			out[i] = true
			outBuf.SetPresent(i)
		} else {
			out[i] = false
			outBuf.SetAbsent(i)
		}
	}
	return nil
}

func NewLess() graph.Processor {
	return &comparisonOp{Name: "less", fn: func(a, b float64) bool { return a < b }}
}
func NewGreater() graph.Processor {
	return &comparisonOp{Name: "greater", fn: func(a, b float64) bool { return a > b }}
}
func NewEqual() graph.Processor {
	return &comparisonOp{Name: "equal", fn: func(a, b float64) bool { return a == b }}
}
func NewNotEqual() graph.Processor {
	return &comparisonOp{Name: "notequal", fn: func(a, b float64) bool { return a != b }}
}
func NewLessOrEqual() graph.Processor {
	return &comparisonOp{Name: "lessorequal", fn: func(a, b float64) bool { return a <= b }}
}
func NewGreaterOrEqual() graph.Processor {
	return &comparisonOp{Name: "greaterorequal", fn: func(a, b float64) bool { return a >= b }}
}

// Select routes one of N Float inputs to the output, chosen by an Int
// index input (out of range clamps to the nearest valid index).
type Select struct {
	N int
}

func (s *Select) InputSpec() []signal.PortSpec {
	specs := make([]signal.PortSpec, 0, s.N+1)
	specs = append(specs, signal.PortSpec{Name: "index", Tag: signal.Int})
	for i := 0; i < s.N; i++ {
		specs = append(specs, signal.PortSpec{Name: inputName(i), Tag: signal.Float})
	}
	return specs
}
func (s *Select) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (s *Select) Allocate(float64, int) error { return nil }
func (s *Select) Resize(float64, int) error   { return nil }
func (s *Select) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	index := inputs[0].Ints()
	out := outputs[0].Floats()
	for i := range out {
		idx := int(index[i])
		if idx < 0 {
			idx = 0
		}
		if idx > s.N-1 {
			idx = s.N - 1
		}
		out[i] = inputs[1+idx].Floats()[i]
	}
	return nil
}

func inputName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return string(letters[i])
	}
	return "in" + string(rune('0'+i))
}

// Merge combines N Bool event streams into one, taking the first
// present input per slot and leaving the slot absent when none of the
// inputs fired that slot.
type Merge struct {
	N int
}

func (m *Merge) InputSpec() []signal.PortSpec {
	specs := make([]signal.PortSpec, m.N)
	for i := 0; i < m.N; i++ {
		specs[i] = signal.PortSpec{Name: inputName(i), Tag: signal.Bool}
	}
	return specs
}
func (m *Merge) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Bool}}
}
func (m *Merge) Allocate(float64, int) error { return nil }
func (m *Merge) Resize(float64, int) error   { return nil }
func (m *Merge) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	outBuf := outputs[0]
	out := outBuf.Bools()
	for i := range out {
		fired := false
		for _, in := range inputs {
			if in.Present(i) {
				out[i] = in.Bools()[i]
				fired = true
				break
			}
		}
		if fired {
			outBuf.SetPresent(i)
		} else {
			out[i] = false
			outBuf.SetAbsent(i)
		}
	}
	return nil
}
