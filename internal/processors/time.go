// SPDX-License-Identifier: MIT
package processors

import (
	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// Metro is a metronome that emits a present event every period seconds
// and marks every other slot absent, tracked by a free-running
// per-sample time accumulator rather than a sample counter so period
// can change live without drift.
type Metro struct {
	Period float64

	sampleRate float64
	period     float64
	time       float64
	nextTime   float64
}

func (m *Metro) InputSpec() []signal.PortSpec {
	period := m.Period
	if period == 0 {
		period = 1.0
	}
	return []signal.PortSpec{{Name: "period", Tag: signal.Float, Default: period}}
}
func (m *Metro) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Bool}}
}
func (m *Metro) Allocate(sampleRate float64, blockSize int) error {
	m.sampleRate = sampleRate
	if m.period == 0 {
		m.period = m.Period
	}
	return nil
}
func (m *Metro) Resize(sampleRate float64, blockSize int) error {
	m.sampleRate = sampleRate
	return nil
}
func (m *Metro) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	period, outBuf := inputs[0].Floats(), outputs[0]
	out := outBuf.Bools()
	for i := range out {
		m.period = period[i]

		if m.time >= m.nextTime {
			m.nextTime = m.time + m.period
			out[i] = true
			outBuf.SetPresent(i)
		} else {
			out[i] = false
			outBuf.SetAbsent(i)
		}

		m.time += 1.0 / m.sampleRate
	}
	return nil
}

// Counter increments by one each time its trigger input is true,
// wrapping modulo max (max <= 0 disables wrapping).
type Counter struct {
	count int64
}

func (c *Counter) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "trigger", Tag: signal.Bool},
		{Name: "max", Tag: signal.Int, Default: int64(0)},
	}
}
func (c *Counter) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Int}}
}
func (c *Counter) Allocate(float64, int) error { return nil }
func (c *Counter) Resize(float64, int) error   { return nil }
func (c *Counter) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	trigger, max := inputs[0].Bools(), inputs[1].Ints()
	out := outputs[0].Ints()
	for i := range out {
		if trigger[i] {
			c.count++
			if max[i] > 0 && c.count >= max[i] {
				c.count = 0
			}
		}
		out[i] = c.count
	}
	return nil
}

// SampleAndHold latches in onto out whenever trigger is true, and holds
// the last latched value otherwise.
type SampleAndHold struct {
	held float64
}

func (s *SampleAndHold) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "in", Tag: signal.Float},
		{Name: "trigger", Tag: signal.Bool},
	}
}
func (s *SampleAndHold) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (s *SampleAndHold) Allocate(float64, int) error { return nil }
func (s *SampleAndHold) Resize(float64, int) error   { return nil }
func (s *SampleAndHold) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, trigger := inputs[0].Floats(), inputs[1].Bools()
	out := outputs[0].Floats()
	for i := range out {
		if trigger[i] {
			s.held = in[i]
		}
		out[i] = s.held
	}
	return nil
}

// ConstSampleDelay delays its input by a fixed, configured number of
// samples using a ring buffer sized once at Allocate.
type ConstSampleDelay struct {
	Samples int

	buf   []float64
	write int
}

func (d *ConstSampleDelay) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Float}}
}
func (d *ConstSampleDelay) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (d *ConstSampleDelay) Allocate(sampleRate float64, blockSize int) error {
	n := d.Samples
	if n < 1 {
		n = 1
	}
	d.buf = make([]float64, n)
	d.write = 0
	return nil
}
func (d *ConstSampleDelay) Resize(sampleRate float64, blockSize int) error { return nil }
func (d *ConstSampleDelay) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0].Floats(), outputs[0].Floats()
	n := len(d.buf)
	for i := range out {
		out[i] = d.buf[d.write]
		d.buf[d.write] = in[i]
		d.write++
		if d.write >= n {
			d.write = 0
		}
	}
	return nil
}
