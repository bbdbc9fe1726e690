// SPDX-License-Identifier: MIT
package processors

import (
	"math"
	"testing"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

func TestBiquadIdentityCoefficients(t *testing.T) {
	const n = 8
	f := &Biquad{}
	if err := f.Allocate(48000, n); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	in := constFloatBuf(0, n)
	for i, v := range []float64{1, 2, 3, 4, 5, 6, 7, 8} {
		in.Floats()[i] = v
	}

	inputs := []*signal.Buffer{
		in,
		constFloatBuf(1.0, n), // a0
		constFloatBuf(0.0, n), // a1
		constFloatBuf(0.0, n), // a2
		constFloatBuf(0.0, n), // b1
		constFloatBuf(0.0, n), // b2
	}
	out := []*signal.Buffer{signal.NewBuffer(signal.Float, n)}
	ctx := &graph.Context{SampleRate: 48000, BlockSize: n, Mode: graph.TopLevel}
	if err := f.Process(ctx, inputs, out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i, v := range out[0].Floats() {
		want := in.Floats()[i]
		if math.Abs(v-want) > 1e-12 {
			t.Errorf("out[%d] = %v, want %v (identity coefficients)", i, v, want)
		}
	}
}

func TestAutoBiquadLowPassDCGain(t *testing.T) {
	const sampleRate = 48000.0
	const n = 4096

	f := &AutoBiquad{Type: LowPass}
	if err := f.Allocate(sampleRate, n); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	in := constFloatBuf(1.0, n)
	inputs := []*signal.Buffer{
		in,
		constFloatBuf(500.0, n),
		constFloatBuf(0.707, n),
		constFloatBuf(0.0, n),
	}
	out := []*signal.Buffer{signal.NewBuffer(signal.Float, n)}
	ctx := &graph.Context{SampleRate: sampleRate, BlockSize: n, Mode: graph.TopLevel}
	if err := f.Process(ctx, inputs, out); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// A DC input through a low-pass filter converges to unit gain.
	got := out[0].Floats()[n-1]
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("steady-state DC gain = %v, want ~1.0", got)
	}
}

func TestMoogLadderStable(t *testing.T) {
	const sampleRate = 48000.0
	const n = 2048

	f := &MoogLadder{}
	if err := f.Allocate(sampleRate, n); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	in := signal.NewBuffer(signal.Float, n)
	for i := range in.Floats() {
		in.Floats()[i] = math.Sin(2 * math.Pi * 220 * float64(i) / sampleRate)
	}

	inputs := []*signal.Buffer{in, constFloatBuf(1000.0, n), constFloatBuf(0.5, n)}
	out := []*signal.Buffer{signal.NewBuffer(signal.Float, n)}
	ctx := &graph.Context{SampleRate: sampleRate, BlockSize: n, Mode: graph.TopLevel}
	if err := f.Process(ctx, inputs, out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i, v := range out[0].Floats() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is non-finite: %v", i, v)
		}
		if math.Abs(v) > 10.0 {
			t.Fatalf("sample %d = %v, filter diverged", i, v)
		}
	}
}
