// SPDX-License-Identifier: MIT
package fftgraph

import (
	"math"
	"math/cmplx"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// Complex-domain FFT processors (spec §4.4 "complex-domain primitives").
// All operate on Complex-tagged buffers of length fftLength+1, one bin
// per slot; DC (index 0) and Nyquist (last index) realness is enforced
// explicitly where an operation could introduce imaginary parts there.

// ComplexPassthrough copies its input unchanged.
type ComplexPassthrough struct{}

func (ComplexPassthrough) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Complex}}
}
func (ComplexPassthrough) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Complex}}
}
func (ComplexPassthrough) Allocate(float64, int) error { return nil }
func (ComplexPassthrough) Resize(float64, int) error   { return nil }
func (ComplexPassthrough) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	copy(outputs[0].Complexes(), inputs[0].Complexes())
	return nil
}

type complexBinOp struct {
	name string
	fn   func(a, b complex128) complex128
}

func (o *complexBinOp) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "a", Tag: signal.Complex},
		{Name: "b", Tag: signal.Complex},
	}
}
func (o *complexBinOp) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Complex}}
}
func (o *complexBinOp) Allocate(float64, int) error { return nil }
func (o *complexBinOp) Resize(float64, int) error   { return nil }
func (o *complexBinOp) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	a, b, out := inputs[0].Complexes(), inputs[1].Complexes(), outputs[0].Complexes()
	for i := range out {
		out[i] = o.fn(a[i], b[i])
	}
	return nil
}

func complexRem(a, b complex128) complex128 {
	re := math.Mod(real(a), real(b))
	im := math.Mod(imag(a), imag(b))
	return complex(re, im)
}

// NewComplexAdd returns a bin-wise complex addition processor.
func NewComplexAdd() graph.Processor {
	return &complexBinOp{name: "add", fn: func(a, b complex128) complex128 { return a + b }}
}

// NewComplexSub returns a bin-wise complex subtraction processor.
func NewComplexSub() graph.Processor {
	return &complexBinOp{name: "sub", fn: func(a, b complex128) complex128 { return a - b }}
}

// NewComplexMul returns a bin-wise complex multiplication processor.
func NewComplexMul() graph.Processor {
	return &complexBinOp{name: "mul", fn: func(a, b complex128) complex128 { return a * b }}
}

// NewComplexDiv returns a bin-wise complex division processor.
func NewComplexDiv() graph.Processor {
	return &complexBinOp{name: "div", fn: func(a, b complex128) complex128 { return a / b }}
}

// NewComplexRem returns a bin-wise complex remainder processor, applying
// math.Mod independently to real and imaginary components.
func NewComplexRem() graph.Processor {
	return &complexBinOp{name: "rem", fn: complexRem}
}

// ComplexConvolve multiplies two paired spectra bin-wise (spec §4.4:
// "Convolution is bin-wise multiplication over paired spectra"),
// zeroing the DC and Nyquist bins on output to preserve realness after
// inversion.
type ComplexConvolve struct{}

func (ComplexConvolve) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "a", Tag: signal.Complex},
		{Name: "b", Tag: signal.Complex},
	}
}
func (ComplexConvolve) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Complex}}
}
func (ComplexConvolve) Allocate(float64, int) error { return nil }
func (ComplexConvolve) Resize(float64, int) error   { return nil }
func (ComplexConvolve) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	a, b, out := inputs[0].Complexes(), inputs[1].Complexes(), outputs[0].Complexes()
	for i := range out {
		out[i] = a[i] * b[i]
	}
	out[0] = 0
	out[len(out)-1] = 0
	return nil
}

// ComplexConjugate negates the imaginary part of every bin.
type ComplexConjugate struct{}

func (ComplexConjugate) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Complex}}
}
func (ComplexConjugate) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Complex}}
}
func (ComplexConjugate) Allocate(float64, int) error { return nil }
func (ComplexConjugate) Resize(float64, int) error   { return nil }
func (ComplexConjugate) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0].Complexes(), outputs[0].Complexes()
	for i, c := range in {
		out[i] = cmplx.Conj(c)
	}
	return nil
}

// ComplexSplit splits a complex bin buffer into real and imaginary
// Float buffers.
type ComplexSplit struct{}

func (ComplexSplit) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Complex}}
}
func (ComplexSplit) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "real", Tag: signal.Float},
		{Name: "imag", Tag: signal.Float},
	}
}
func (ComplexSplit) Allocate(float64, int) error { return nil }
func (ComplexSplit) Resize(float64, int) error   { return nil }
func (ComplexSplit) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in := inputs[0].Complexes()
	re, im := outputs[0].Floats(), outputs[1].Floats()
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	return nil
}

// ComplexCombine joins real and imaginary Float buffers into a complex
// bin buffer.
type ComplexCombine struct{}

func (ComplexCombine) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "real", Tag: signal.Float},
		{Name: "imag", Tag: signal.Float},
	}
}
func (ComplexCombine) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Complex}}
}
func (ComplexCombine) Allocate(float64, int) error { return nil }
func (ComplexCombine) Resize(float64, int) error   { return nil }
func (ComplexCombine) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	re, im := inputs[0].Floats(), inputs[1].Floats()
	out := outputs[0].Complexes()
	for i := range out {
		out[i] = complex(re[i], im[i])
	}
	return nil
}

// ComplexToPolar computes magnitude and phase from a complex bin buffer.
type ComplexToPolar struct{}

func (ComplexToPolar) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Complex}}
}
func (ComplexToPolar) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "mag", Tag: signal.Float},
		{Name: "phase", Tag: signal.Float},
	}
}
func (ComplexToPolar) Allocate(float64, int) error { return nil }
func (ComplexToPolar) Resize(float64, int) error   { return nil }
func (ComplexToPolar) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in := inputs[0].Complexes()
	mag, phase := outputs[0].Floats(), outputs[1].Floats()
	for i, c := range in {
		mag[i] = cmplx.Abs(c)
		phase[i] = cmplx.Phase(c)
	}
	return nil
}

// ComplexFromPolar combines magnitude and phase into a complex bin
// buffer.
type ComplexFromPolar struct{}

func (ComplexFromPolar) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "mag", Tag: signal.Float},
		{Name: "phase", Tag: signal.Float},
	}
}
func (ComplexFromPolar) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Complex}}
}
func (ComplexFromPolar) Allocate(float64, int) error { return nil }
func (ComplexFromPolar) Resize(float64, int) error   { return nil }
func (ComplexFromPolar) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	mag, phase := inputs[0].Floats(), inputs[1].Floats()
	out := outputs[0].Complexes()
	for i := range out {
		out[i] = cmplx.Rect(mag[i], phase[i])
	}
	return nil
}

// PhaseVocoder accumulates delta-phases between successive frames
// modulo 2*pi, per spec §4.4. It zeroes the DC and Nyquist bins on
// output to preserve realness after inversion.
type PhaseVocoder struct {
	phaseAccum []float64
}

func (p *PhaseVocoder) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "current_frame", Tag: signal.Complex},
		{Name: "previous_frame", Tag: signal.Complex},
	}
}
func (p *PhaseVocoder) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Complex}}
}
func (p *PhaseVocoder) Allocate(sampleRate float64, maxBlockSize int) error {
	p.phaseAccum = make([]float64, maxBlockSize)
	return nil
}
func (p *PhaseVocoder) Resize(float64, int) error { return nil }
func (p *PhaseVocoder) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	current, previous := inputs[0].Complexes(), inputs[1].Complexes()
	out := outputs[0].Complexes()
	for n := range out {
		inMag := cmplx.Abs(current[n])
		inPhase := cmplx.Phase(current[n])
		lastPhase := cmplx.Phase(previous[n])

		delta := inPhase - lastPhase
		p.phaseAccum[n] += delta
		p.phaseAccum[n] = math.Mod(p.phaseAccum[n], 2*math.Pi)

		out[n] = cmplx.Rect(inMag, p.phaseAccum[n])
	}
	out[0] = 0
	out[len(out)-1] = 0
	return nil
}
