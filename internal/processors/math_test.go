// SPDX-License-Identifier: MIT
package processors

import (
	"math"
	"testing"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

func runBlock(t *testing.T, p graph.Processor, inputs []*signal.Buffer, blockSize int) []*signal.Buffer {
	t.Helper()
	if err := p.Allocate(48000, blockSize); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	outs := make([]*signal.Buffer, len(p.OutputSpec()))
	for i, spec := range p.OutputSpec() {
		outs[i] = signal.NewBuffer(spec.Tag, blockSize)
	}
	ctx := &graph.Context{SampleRate: 48000, BlockSize: blockSize, Mode: graph.TopLevel}
	if err := p.Process(ctx, inputs, outs); err != nil {
		t.Fatalf("Process: %v", err)
	}
	return outs
}

func floatBuf(vals ...float64) *signal.Buffer {
	b := signal.NewBuffer(signal.Float, len(vals))
	copy(b.Floats(), vals)
	return b
}

func TestBinaryOps(t *testing.T) {
	tests := []struct {
		name string
		proc graph.Processor
		a, b float64
		want float64
	}{
		{"add", NewAdd(), 2, 3, 5},
		{"sub", NewSub(), 5, 3, 2},
		{"mul", NewMul(), 2, 3, 6},
		{"div", NewDiv(), 6, 3, 2},
		{"rem", NewRem(), 5, 3, 2},
		{"min", NewMin(), 5, 3, 3},
		{"max", NewMax(), 5, 3, 5},
		{"hypot", NewHypot(), 3, 4, 5},
		{"atan2", NewAtan2(), 0, -1, math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runBlock(t, tt.proc, []*signal.Buffer{floatBuf(tt.a), floatBuf(tt.b)}, 1)
			if got := out[0].Floats()[0]; math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s(%v, %v) = %v, want %v", tt.name, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestUnaryOps(t *testing.T) {
	tests := []struct {
		name string
		proc graph.Processor
		in   float64
		want float64
	}{
		{"neg", NewNeg(), 2, -2},
		{"abs", NewAbs(), -2, 2},
		{"sqrt", NewSqrt(), 4, 2},
		{"ceil", NewCeil(), 1.2, 2},
		{"floor", NewFloor(), 1.8, 1},
		{"trunc", NewTrunc(), -1.8, -1},
		{"fract", NewFract(), 1.25, 0.25},
		{"recip", NewRecip(), 4, 0.25},
		{"signum", NewSignum(), -5, -1},
		{"sin", NewSin(), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runBlock(t, tt.proc, []*signal.Buffer{floatBuf(tt.in)}, 1)
			if got := out[0].Floats()[0]; math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s(%v) = %v, want %v", tt.name, tt.in, got, tt.want)
			}
		})
	}
}

func TestConstant(t *testing.T) {
	c := &Constant{Value: 3.5}
	out := runBlock(t, c, nil, 4)
	for i, v := range out[0].Floats() {
		if v != 3.5 {
			t.Errorf("out[%d] = %v, want 3.5", i, v)
		}
	}
}
