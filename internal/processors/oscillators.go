// SPDX-License-Identifier: MIT
package processors

import (
	"math"
	"math/rand"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// SineOscillator is a free-running sine wave oscillator.
type SineOscillator struct {
	t     float64
	tStep float64
}

func (o *SineOscillator) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "frequency", Tag: signal.Float, Default: 440.0}}
}
func (o *SineOscillator) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (o *SineOscillator) Allocate(sampleRate float64, blockSize int) error {
	o.tStep = 1.0 / sampleRate
	return nil
}
func (o *SineOscillator) Resize(sampleRate float64, blockSize int) error {
	o.tStep = 1.0 / sampleRate
	return nil
}
func (o *SineOscillator) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	freq, out := inputs[0].Floats(), outputs[0].Floats()
	for i := range out {
		out[i] = math.Sin(o.t * freq[i] * 2.0 * math.Pi)
		o.t += o.tStep
	}
	return nil
}

// SawOscillator is a naive (aliasing) phase-modulo sawtooth.
type SawOscillator struct {
	phase float64
	step  float64
}

func (o *SawOscillator) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "frequency", Tag: signal.Float, Default: 440.0}}
}
func (o *SawOscillator) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (o *SawOscillator) Allocate(sampleRate float64, blockSize int) error {
	o.step = 1.0 / sampleRate
	return nil
}
func (o *SawOscillator) Resize(sampleRate float64, blockSize int) error {
	o.step = 1.0 / sampleRate
	return nil
}
func (o *SawOscillator) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	freq, out := inputs[0].Floats(), outputs[0].Floats()
	for i := range out {
		out[i] = o.phase*2.0 - 1.0
		o.phase += freq[i] * o.step
		o.phase = math.Mod(o.phase, 1.0)
		if o.phase < 0 {
			o.phase += 1.0
		}
	}
	return nil
}

// BlSawOscillator is a band-limited sawtooth built by summing harmonics
// up to the Nyquist frequency.
type BlSawOscillator struct {
	sampleRate float64
	phase      float64
}

func (o *BlSawOscillator) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "frequency", Tag: signal.Float, Default: 440.0}}
}
func (o *BlSawOscillator) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (o *BlSawOscillator) Allocate(sampleRate float64, blockSize int) error {
	o.sampleRate = sampleRate
	return nil
}
func (o *BlSawOscillator) Resize(sampleRate float64, blockSize int) error {
	o.sampleRate = sampleRate
	return nil
}
func (o *BlSawOscillator) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	freq, out := inputs[0].Floats(), outputs[0].Floats()
	for i, f := range freq {
		if f <= 0 {
			out[i] = 0
			continue
		}
		harmonics := int(o.sampleRate / (2.0 * f))
		t := o.phase / o.sampleRate

		var saw float64
		for h := 1; h <= harmonics; h++ {
			hf := float64(h)
			saw += (2.0 / (hf * math.Pi)) * math.Sin(math.Pi*hf*t)
		}

		o.phase += f
		o.phase = math.Mod(o.phase, o.sampleRate)

		out[i] = saw*2.0 - 1.0
	}
	return nil
}

// PulseOscillator is a phase-modulo pulse/square wave with a
// controllable duty cycle.
type PulseOscillator struct {
	phase float64
	step  float64
}

func (o *PulseOscillator) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "frequency", Tag: signal.Float, Default: 440.0},
		{Name: "width", Tag: signal.Float, Default: 0.5},
	}
}
func (o *PulseOscillator) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (o *PulseOscillator) Allocate(sampleRate float64, blockSize int) error {
	o.step = 1.0 / sampleRate
	return nil
}
func (o *PulseOscillator) Resize(sampleRate float64, blockSize int) error {
	o.step = 1.0 / sampleRate
	return nil
}
func (o *PulseOscillator) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	freq, width, out := inputs[0].Floats(), inputs[1].Floats(), outputs[0].Floats()
	for i := range out {
		if o.phase > width[i] {
			out[i] = 1.0
		} else {
			out[i] = -1.0
		}
		o.phase += freq[i] * o.step
		o.phase = math.Mod(o.phase, 1.0)
		if o.phase < 0 {
			o.phase += 1.0
		}
	}
	return nil
}

// PhaseAccumulator emits a free-running ramp in [0, 1) at the given
// frequency, for oscillators and LFOs built outside the catalogue.
type PhaseAccumulator struct {
	phase float64
	step  float64
}

func (o *PhaseAccumulator) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "frequency", Tag: signal.Float, Default: 0.0}}
}
func (o *PhaseAccumulator) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "phase", Tag: signal.Float}}
}
func (o *PhaseAccumulator) Allocate(sampleRate float64, blockSize int) error {
	o.step = 1.0 / sampleRate
	return nil
}
func (o *PhaseAccumulator) Resize(sampleRate float64, blockSize int) error {
	o.step = 1.0 / sampleRate
	return nil
}
func (o *PhaseAccumulator) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	freq, out := inputs[0].Floats(), outputs[0].Floats()
	for i := range out {
		out[i] = o.phase
		o.phase += freq[i] * o.step
		o.phase = math.Mod(o.phase, 1.0)
		if o.phase < 0 {
			o.phase += 1.0
		}
	}
	return nil
}

// NoiseOscillator emits uniform white noise in [-1, 1], seeded
// deterministically at construction so offline renders are reproducible.
type NoiseOscillator struct {
	Seed int64
	rng  *rand.Rand
}

func (o *NoiseOscillator) InputSpec() []signal.PortSpec { return nil }
func (o *NoiseOscillator) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (o *NoiseOscillator) Allocate(sampleRate float64, blockSize int) error {
	o.rng = rand.New(rand.NewSource(o.Seed))
	return nil
}
func (o *NoiseOscillator) Resize(sampleRate float64, blockSize int) error { return nil }
func (o *NoiseOscillator) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	out := outputs[0].Floats()
	for i := range out {
		out[i] = o.rng.Float64()*2.0 - 1.0
	}
	return nil
}
