// SPDX-License-Identifier: MIT

// Package processors implements the built-in processor catalogue (spec
// §4.6): arithmetic, oscillators, filters, dynamics, time, control,
// list, MIDI, and glue processors, plus the cross-thread Param cell.
package processors

import (
	"math"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// Constant outputs a single configured value on every slot, every
// block.
type Constant struct {
	Value float64
}

func (c *Constant) InputSpec() []signal.PortSpec { return nil }
func (c *Constant) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float, Default: c.Value}}
}
func (c *Constant) Allocate(float64, int) error { return nil }
func (c *Constant) Resize(float64, int) error   { return nil }
func (c *Constant) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	outputs[0].FillConstant(c.Value)
	return nil
}

// binaryOp implements every two-input arithmetic processor (spec
// §4.6). Name identifies which operation this is for persistence (spec
// §6); it carries no runtime state of its own.
type binaryOp struct {
	Name string
	fn   func(a, b float64) float64
}

func (o *binaryOp) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "a", Tag: signal.Float},
		{Name: "b", Tag: signal.Float},
	}
}
func (o *binaryOp) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (o *binaryOp) Allocate(float64, int) error { return nil }
func (o *binaryOp) Resize(float64, int) error   { return nil }
func (o *binaryOp) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	a, b, out := inputs[0].Floats(), inputs[1].Floats(), outputs[0].Floats()
	for i := range out {
		out[i] = o.fn(a[i], b[i])
	}
	return nil
}

func NewAdd() graph.Processor {
	return &binaryOp{Name: "add", fn: func(a, b float64) float64 { return a + b }}
}
func NewSub() graph.Processor {
	return &binaryOp{Name: "sub", fn: func(a, b float64) float64 { return a - b }}
}
func NewMul() graph.Processor {
	return &binaryOp{Name: "mul", fn: func(a, b float64) float64 { return a * b }}
}
func NewDiv() graph.Processor {
	return &binaryOp{Name: "div", fn: func(a, b float64) float64 { return a / b }}
}
func NewRem() graph.Processor   { return &binaryOp{Name: "rem", fn: math.Mod} }
func NewPowf() graph.Processor  { return &binaryOp{Name: "powf", fn: math.Pow} }
func NewAtan2() graph.Processor { return &binaryOp{Name: "atan2", fn: math.Atan2} }
func NewHypot() graph.Processor { return &binaryOp{Name: "hypot", fn: math.Hypot} }
func NewMin() graph.Processor   { return &binaryOp{Name: "min", fn: math.Min} }
func NewMax() graph.Processor   { return &binaryOp{Name: "max", fn: math.Max} }

// unaryOp implements every one-input arithmetic/trig processor (spec
// §4.6). Name identifies which operation this is for persistence.
type unaryOp struct {
	Name string
	fn   func(a float64) float64
}

func (o *unaryOp) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Float}}
}
func (o *unaryOp) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (o *unaryOp) Allocate(float64, int) error { return nil }
func (o *unaryOp) Resize(float64, int) error   { return nil }
func (o *unaryOp) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	return signal.MapFloat(outputs[0], inputs[0], o.fn)
}

func recip(a float64) float64 { return 1.0 / a }

func signum(a float64) float64 {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	default:
		return 0
	}
}

func NewNeg() graph.Processor {
	return &unaryOp{Name: "neg", fn: func(a float64) float64 { return -a }}
}
func NewAbs() graph.Processor   { return &unaryOp{Name: "abs", fn: math.Abs} }
func NewSqrt() graph.Processor  { return &unaryOp{Name: "sqrt", fn: math.Sqrt} }
func NewCbrt() graph.Processor  { return &unaryOp{Name: "cbrt", fn: math.Cbrt} }
func NewCeil() graph.Processor  { return &unaryOp{Name: "ceil", fn: math.Ceil} }
func NewFloor() graph.Processor { return &unaryOp{Name: "floor", fn: math.Floor} }
func NewRound() graph.Processor { return &unaryOp{Name: "round", fn: math.Round} }
func NewTrunc() graph.Processor { return &unaryOp{Name: "trunc", fn: math.Trunc} }
func NewFract() graph.Processor {
	return &unaryOp{Name: "fract", fn: func(a float64) float64 { return a - math.Trunc(a) }}
}
func NewRecip() graph.Processor  { return &unaryOp{Name: "recip", fn: recip} }
func NewSignum() graph.Processor { return &unaryOp{Name: "signum", fn: signum} }
func NewSin() graph.Processor    { return &unaryOp{Name: "sin", fn: math.Sin} }
func NewCos() graph.Processor    { return &unaryOp{Name: "cos", fn: math.Cos} }
func NewTan() graph.Processor    { return &unaryOp{Name: "tan", fn: math.Tan} }
func NewAsin() graph.Processor   { return &unaryOp{Name: "asin", fn: math.Asin} }
func NewAcos() graph.Processor   { return &unaryOp{Name: "acos", fn: math.Acos} }
func NewAtan() graph.Processor   { return &unaryOp{Name: "atan", fn: math.Atan} }
func NewSinh() graph.Processor   { return &unaryOp{Name: "sinh", fn: math.Sinh} }
func NewCosh() graph.Processor   { return &unaryOp{Name: "cosh", fn: math.Cosh} }
func NewTanh() graph.Processor   { return &unaryOp{Name: "tanh", fn: math.Tanh} }
func NewExp() graph.Processor    { return &unaryOp{Name: "exp", fn: math.Exp} }
func NewExp2() graph.Processor   { return &unaryOp{Name: "exp2", fn: math.Exp2} }
func NewExpM1() graph.Processor  { return &unaryOp{Name: "expm1", fn: math.Expm1} }
func NewLn() graph.Processor     { return &unaryOp{Name: "ln", fn: math.Log} }
func NewLog2() graph.Processor   { return &unaryOp{Name: "log2", fn: math.Log2} }
func NewLog10() graph.Processor  { return &unaryOp{Name: "log10", fn: math.Log10} }
