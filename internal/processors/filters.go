// SPDX-License-Identifier: MIT
package processors

import (
	"math"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

const thermal = 0.000025

// MoogLadder is a 4-pole low-pass filter based on the Huovilainen model
// of the Moog transistor ladder.
type MoogLadder struct {
	sampleRate float64
	stage      [4]float64
	stageTanh  [3]float64
	delay      [6]float64
	tune       float64
	acr        float64
	resQuad    float64
}

func (f *MoogLadder) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "in", Tag: signal.Float},
		{Name: "cutoff", Tag: signal.Float, Default: 1000.0},
		{Name: "resonance", Tag: signal.Float, Default: 0.1},
	}
}
func (f *MoogLadder) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (f *MoogLadder) Allocate(sampleRate float64, blockSize int) error {
	f.sampleRate = sampleRate
	return nil
}
func (f *MoogLadder) Resize(sampleRate float64, blockSize int) error {
	f.sampleRate = sampleRate
	return nil
}

// based on: https://github.com/ddiakopoulos/MoogLadders HuovilainenModel
func (f *MoogLadder) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, cutoffs, resonances, out := inputs[0].Floats(), inputs[1].Floats(), inputs[2].Floats(), outputs[0].Floats()
	for i := range out {
		cutoff := clamp(cutoffs[i], 0.0, f.sampleRate*0.5)
		resonance := clamp(resonances[i], 0.0, 1.0)

		fc := cutoff / f.sampleRate
		fr := fc * 0.5 // oversampling
		fc2 := fc * fc
		fc3 := fc2 * fc

		fcr := 1.8730*fc3 + 0.4955*fc2 - 0.6490*fc + 0.9988
		f.acr = -3.9364*fc2 + 1.8409*fc + 0.9968
		f.tune = (1.0 - math.Exp(-((2.0*math.Pi)*fr*fcr))) / thermal
		f.resQuad = 4.0 * resonance * f.acr

		for pass := 0; pass < 2; pass++ {
			inp := in[i] - f.resQuad*f.delay[5]
			f.stage[0] = f.delay[0] + f.tune*(math.Tanh(inp*thermal)-f.stageTanh[0])
			f.delay[0] = f.stage[0]
			for k := 1; k < 4; k++ {
				inp = f.stage[k-1]
				f.stageTanh[k-1] = math.Tanh(inp * thermal)
				if k == 3 {
					f.stage[k] = f.delay[k] + f.tune*(f.stageTanh[k-1]-math.Tanh(f.delay[k]*thermal))
				} else {
					f.stage[k] = f.delay[k] + f.tune*(f.stageTanh[k-1]-f.stageTanh[k])
				}
				f.delay[k] = f.stage[k]
			}
			f.delay[5] = (f.stage[3] + f.delay[4]) * 0.5
			f.delay[4] = f.stage[3]
		}

		out[i] = f.delay[5]
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Biquad is a 2-pole, 2-zero biquad filter whose coefficients are
// supplied directly on its inputs, recomputed every sample.
type Biquad struct {
	x1, x2 float64
	y1, y2 float64
}

func (f *Biquad) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "in", Tag: signal.Float},
		{Name: "a0", Tag: signal.Float, Default: 1.0},
		{Name: "a1", Tag: signal.Float, Default: 0.0},
		{Name: "a2", Tag: signal.Float, Default: 0.0},
		{Name: "b1", Tag: signal.Float, Default: 0.0},
		{Name: "b2", Tag: signal.Float, Default: 0.0},
	}
}
func (f *Biquad) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (f *Biquad) Allocate(float64, int) error { return nil }
func (f *Biquad) Resize(float64, int) error   { return nil }
func (f *Biquad) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in := inputs[0].Floats()
	a0, a1, a2 := inputs[1].Floats(), inputs[2].Floats(), inputs[3].Floats()
	b1, b2 := inputs[4].Floats(), inputs[5].Floats()
	out := outputs[0].Floats()

	for i := range out {
		filtered := a0[i]*in[i] + a1[i]*f.x1 + a2[i]*f.x2 - b1[i]*f.y1 - b2[i]*f.y2

		f.x2 = f.x1
		f.x1 = in[i]
		f.y2 = f.y1
		f.y1 = filtered

		out[i] = filtered
	}
	return nil
}

// BiquadType selects the coefficient formula AutoBiquad recomputes from
// frequency/Q/gain.
type BiquadType int

const (
	LowPass BiquadType = iota
	HighPass
	BandPass
	Notch
	Peak
	LowShelf
	HighShelf
)

// AutoBiquad is a 2-pole, 2-zero biquad filter that derives its own
// coefficients from a cutoff frequency, Q, and gain, following the
// earlevel.com cookbook formulae.
type AutoBiquad struct {
	Type BiquadType

	sampleRate float64
	a0, a1, a2 float64
	b1, b2     float64
	x1, x2     float64
	y1, y2     float64

	cutoff float64
	q      float64
	gain   float64
}

func (f *AutoBiquad) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "in", Tag: signal.Float},
		{Name: "frequency", Tag: signal.Float, Default: 1000.0},
		{Name: "q", Tag: signal.Float, Default: 0.707},
		{Name: "gain", Tag: signal.Float, Default: 0.0},
	}
}
func (f *AutoBiquad) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (f *AutoBiquad) Allocate(sampleRate float64, blockSize int) error {
	f.sampleRate = sampleRate
	f.cutoff = 1000.0
	f.q = 0.707
	f.setCoefficients()
	return nil
}
func (f *AutoBiquad) Resize(sampleRate float64, blockSize int) error {
	f.sampleRate = sampleRate
	f.setCoefficients()
	return nil
}

// http://www.earlevel.com/scripts/widgets/20131013/biquads2.js
func (f *AutoBiquad) setCoefficients() {
	q := f.q
	if q < 0.01 {
		q = 0.01
	}

	v := math.Pow(10.0, math.Abs(f.gain)/20.0)
	k := math.Tan(math.Pi * f.cutoff / f.sampleRate)
	k2 := k * k

	switch f.Type {
	case LowPass:
		norm := 1.0 / (1.0 + k/q + k2)
		f.a0 = k2 * norm
		f.a1 = 2.0 * f.a0
		f.a2 = f.a0
		f.b1 = 2.0 * (k2 - 1.0) * norm
		f.b2 = (1.0 - k/q + k2) * norm
	case HighPass:
		norm := 1.0 / (1.0 + k/q + k2)
		f.a0 = 1.0 * norm
		f.a1 = -2.0 * f.a0
		f.a2 = f.a0
		f.b1 = 2.0 * (k2 - 1.0) * norm
		f.b2 = (1.0 - k/q + k2) * norm
	case BandPass:
		norm := 1.0 / (1.0 + k/q + k2)
		f.a0 = k / q * norm
		f.a1 = 0.0
		f.a2 = -f.a0
		f.b1 = 2.0 * (k2 - 1.0) * norm
		f.b2 = (1.0 - k/q + k2) * norm
	case Notch:
		norm := 1.0 / (1.0 + k/q + k2)
		f.a0 = (1.0 + k2) * norm
		f.a1 = 2.0 * (k2 - 1.0) * norm
		f.a2 = f.a0
		f.b1 = f.a1
		f.b2 = (1.0 - k/q + k2) * norm
	case Peak:
		if f.gain >= 0.0 {
			norm := 1.0 / (1.0 + 1.0/q*k + k2)
			f.a0 = (1.0 + v/q*k + k2) * norm
			f.a1 = 2.0 * (k2 - 1.0) * norm
			f.a2 = (1.0 - v/q*k + k2) * norm
			f.b1 = f.a1
			f.b2 = (1.0 - 1.0/q*k + k2) * norm
		} else {
			norm := 1.0 / (1.0 + v/q*k + k2)
			f.a0 = (1.0 + 1.0/q*k + k2) * norm
			f.a1 = 2.0 * (k2 - 1.0) * norm
			f.a2 = (1.0 - 1.0/q*k + k2) * norm
			f.b1 = f.a1
			f.b2 = (1.0 - v/q*k + k2) * norm
		}
	case LowShelf:
		sqrt2 := math.Sqrt2
		if f.gain >= 0.0 {
			norm := 1.0 / (1.0 + sqrt2*k + k2)
			f.a0 = (1.0 + math.Sqrt(2.0*v)*k + v*k2) * norm
			f.a1 = 2.0 * (v*k2 - 1.0) * norm
			f.a2 = (1.0 - math.Sqrt(2.0*v)*k + v*k2) * norm
			f.b1 = 2.0 * (k2 - 1.0) * norm
			f.b2 = (1.0 - sqrt2*k + k2) * norm
		} else {
			norm := 1.0 / (1.0 + sqrt2*k + k2)
			f.a0 = (v + math.Sqrt(2.0*v)*k + k2) * norm
			f.a1 = 2.0 * (k2 - v) * norm
			f.a2 = (v - math.Sqrt(2.0*v)*k + k2) * norm
			f.b1 = 2.0 * (k2 - 1.0) * norm
			f.b2 = (1.0 - sqrt2*k + k2) * norm
		}
	case HighShelf:
		sqrt2 := math.Sqrt2
		if f.gain >= 0.0 {
			norm := 1.0 / (1.0 + sqrt2*k + k2)
			f.a0 = (v + math.Sqrt(2.0*v)*k + k2) * norm
			f.a1 = 2.0 * (k2 - v) * norm
			f.a2 = (v - math.Sqrt(2.0*v)*k + k2) * norm
			f.b1 = 2.0 * (k2 - 1.0) * norm
			f.b2 = (1.0 - sqrt2*k + k2) * norm
		} else {
			norm := 1.0 / (v + math.Sqrt(2.0*v)*k + k2)
			f.a0 = (1.0 + sqrt2*k + k2) * norm
			f.a1 = 2.0 * (k2 - 1.0) * norm
			f.a2 = (1.0 - sqrt2*k + k2) * norm
			f.b1 = 2.0 * (v*k2 - 1.0) * norm
			f.b2 = (v - math.Sqrt(2.0*v)*k + v*k2) * norm
		}
	}
}

func (f *AutoBiquad) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in := inputs[0].Floats()
	frequency, q, gain := inputs[1].Floats(), inputs[2].Floats(), inputs[3].Floats()
	out := outputs[0].Floats()

	for i := range out {
		freqChanged := math.Abs(frequency[i]-f.cutoff) > epsilon
		qChanged := math.Abs(q[i]-f.q) > epsilon
		gainChanged := math.Abs(gain[i]-f.gain) > epsilon

		if freqChanged || qChanged || gainChanged {
			f.cutoff = frequency[i]
			f.q = q[i]
			f.gain = gain[i]
			f.setCoefficients()
		}

		filtered := f.a0*in[i] + f.a1*f.x1 + f.a2*f.x2 - f.b1*f.y1 - f.b2*f.y2

		f.x2 = f.x1
		f.x1 = in[i]
		f.y2 = f.y1
		f.y1 = filtered

		out[i] = filtered
	}
	return nil
}

const epsilon = 2.220446049250313e-16
