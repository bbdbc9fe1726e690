// SPDX-License-Identifier: MIT
package processors

import (
	"math"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// FloatToInt truncates a Float stream to Int.
type FloatToInt struct{}

func (FloatToInt) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Float}}
}
func (FloatToInt) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Int}}
}
func (FloatToInt) Allocate(float64, int) error { return nil }
func (FloatToInt) Resize(float64, int) error   { return nil }
func (FloatToInt) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0].Floats(), outputs[0].Ints()
	for i := range out {
		out[i] = int64(in[i])
	}
	return nil
}

// IntToFloat widens an Int stream to Float.
type IntToFloat struct{}

func (IntToFloat) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Int}}
}
func (IntToFloat) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (IntToFloat) Allocate(float64, int) error { return nil }
func (IntToFloat) Resize(float64, int) error   { return nil }
func (IntToFloat) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0].Ints(), outputs[0].Floats()
	for i := range out {
		out[i] = float64(in[i])
	}
	return nil
}

// MessageToSample converts a Midi note-number message to a Float,
// holding the last decoded value between messages.
type MessageToSample struct {
	held float64
}

func (m *MessageToSample) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "midi", Tag: signal.Midi}}
}
func (m *MessageToSample) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (m *MessageToSample) Allocate(float64, int) error { return nil }
func (m *MessageToSample) Resize(float64, int) error   { return nil }
func (m *MessageToSample) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0], outputs[0]
	midis, vals := in.Midis(), out.Floats()
	for i := range vals {
		if in.Present(i) && len(midis[i]) == 3 {
			m.held = float64(midis[i][1])
		}
		vals[i] = m.held
	}
	return nil
}

// Smooth is a one-pole filter moving toward target at the given
// coefficient (0 = no movement, 1 = instant).
type Smooth struct {
	value float64
}

func (s *Smooth) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "in", Tag: signal.Float},
		{Name: "rate", Tag: signal.Float, Default: 0.01},
	}
}
func (s *Smooth) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (s *Smooth) Allocate(float64, int) error { return nil }
func (s *Smooth) Resize(float64, int) error   { return nil }
func (s *Smooth) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, rate, out := inputs[0].Floats(), inputs[1].Floats(), outputs[0].Floats()
	for i := range out {
		s.value += (in[i] - s.value) * rate[i]
		out[i] = s.value
	}
	return nil
}

// Changed emits a present event whenever in differs from its previous
// value by more than threshold, and marks every other slot absent.
type Changed struct {
	prev    float64
	hasPrev bool
}

func (c *Changed) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "in", Tag: signal.Float},
		{Name: "threshold", Tag: signal.Float, Default: 0.0},
	}
}
func (c *Changed) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Bool}}
}
func (c *Changed) Allocate(float64, int) error { return nil }
func (c *Changed) Resize(float64, int) error   { return nil }
func (c *Changed) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, threshold, outBuf := inputs[0].Floats(), inputs[1].Floats(), outputs[0]
	out := outBuf.Bools()
	for i := range out {
		if c.hasPrev && math.Abs(in[i]-c.prev) > threshold[i] {
			out[i] = true
			outBuf.SetPresent(i)
		} else {
			out[i] = false
			outBuf.SetAbsent(i)
		}
		c.prev = in[i]
		c.hasPrev = true
	}
	return nil
}

// ZeroCrossing emits a present event on every sample where in changes
// sign from the previous sample, and marks every other slot absent.
type ZeroCrossing struct {
	prev float64
}

func (z *ZeroCrossing) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Float}}
}
func (z *ZeroCrossing) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Bool}}
}
func (z *ZeroCrossing) Allocate(float64, int) error { return nil }
func (z *ZeroCrossing) Resize(float64, int) error   { return nil }
func (z *ZeroCrossing) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, outBuf := inputs[0].Floats(), outputs[0]
	out := outBuf.Bools()
	for i := range out {
		if (z.prev < 0 && in[i] >= 0) || (z.prev > 0 && in[i] <= 0) {
			out[i] = true
			outBuf.SetPresent(i)
		} else {
			out[i] = false
			outBuf.SetAbsent(i)
		}
		z.prev = in[i]
	}
	return nil
}
