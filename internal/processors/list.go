// SPDX-License-Identifier: MIT
package processors

import (
	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// Len outputs the length of a List, per slot.
type Len struct{}

func (Len) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "list", Tag: signal.List}}
}
func (Len) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Int}}
}
func (Len) Allocate(float64, int) error { return nil }
func (Len) Resize(float64, int) error   { return nil }
func (Len) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0], outputs[0]
	lists, lens := in.Lists(), out.Ints()
	for i := range lens {
		if !in.Present(i) {
			out.SetAbsent(i)
			continue
		}
		lens[i] = int64(len(lists[i]))
		out.SetPresent(i)
	}
	return nil
}

// Get outputs the Float element at the given index of a List, absent
// when the list is absent or the index is out of range.
type Get struct{}

func (Get) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "list", Tag: signal.List},
		{Name: "index", Tag: signal.Int},
	}
}
func (Get) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (Get) Allocate(float64, int) error { return nil }
func (Get) Resize(float64, int) error   { return nil }
func (Get) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	listBuf, idxBuf, out := inputs[0], inputs[1], outputs[0]
	lists, indices, vals := listBuf.Lists(), idxBuf.Ints(), out.Floats()
	for i := range vals {
		list := lists[i]
		idx := int(indices[i])
		if !listBuf.Present(i) || idx < 0 || idx >= len(list) {
			out.SetAbsent(i)
			continue
		}
		v, ok := list[idx].(float64)
		if !ok {
			out.SetAbsent(i)
			continue
		}
		vals[i] = v
		out.SetPresent(i)
	}
	return nil
}

// Pack packs N Float input signals into a single List output, per slot.
type Pack struct {
	N int
}

func (p *Pack) InputSpec() []signal.PortSpec {
	specs := make([]signal.PortSpec, p.N)
	for i := 0; i < p.N; i++ {
		specs[i] = signal.PortSpec{Name: inputName(i), Tag: signal.Float}
	}
	return specs
}
func (p *Pack) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.List}}
}
func (p *Pack) Allocate(float64, int) error { return nil }
func (p *Pack) Resize(float64, int) error   { return nil }
func (p *Pack) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	out := outputs[0].Lists()
	for i := range out {
		elems := make([]any, p.N)
		for j, in := range inputs {
			elems[j] = in.Floats()[i]
		}
		out[i] = elems
	}
	return nil
}

// Unpack unpacks a List input into N Float output signals, zero when
// the list is absent or too short.
type Unpack struct {
	N int
}

func (u *Unpack) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "list", Tag: signal.List}}
}
func (u *Unpack) OutputSpec() []signal.PortSpec {
	specs := make([]signal.PortSpec, u.N)
	for i := 0; i < u.N; i++ {
		specs[i] = signal.PortSpec{Name: inputName(i), Tag: signal.Float}
	}
	return specs
}
func (u *Unpack) Allocate(float64, int) error { return nil }
func (u *Unpack) Resize(float64, int) error   { return nil }
func (u *Unpack) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	listBuf := inputs[0]
	lists := listBuf.Lists()
	n := len(lists)
	for i := 0; i < n; i++ {
		list := lists[i]
		for j, out := range outputs {
			floats := out.Floats()
			if listBuf.Present(i) && j < len(list) {
				if v, ok := list[j].(float64); ok {
					floats[i] = v
					continue
				}
			}
			floats[i] = 0
		}
	}
	return nil
}
