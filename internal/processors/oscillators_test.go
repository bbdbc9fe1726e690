// SPDX-License-Identifier: MIT
package processors

import (
	"math"
	"testing"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

func constFloatBuf(v float64, n int) *signal.Buffer {
	b := signal.NewBuffer(signal.Float, n)
	for i := range b.Floats() {
		b.Floats()[i] = v
	}
	return b
}

func TestSineOscillatorFrequency(t *testing.T) {
	const sampleRate = 48000.0
	const freq = 100.0
	const n = 480

	osc := &SineOscillator{}
	if err := osc.Allocate(sampleRate, n); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	in := []*signal.Buffer{constFloatBuf(freq, n)}
	out := []*signal.Buffer{signal.NewBuffer(signal.Float, n)}
	ctx := &graph.Context{SampleRate: sampleRate, BlockSize: n, Mode: graph.TopLevel}
	if err := osc.Process(ctx, in, out); err != nil {
		t.Fatalf("Process: %v", err)
	}

	samples := out[0].Floats()
	for i, s := range samples {
		want := math.Sin(float64(i) / sampleRate * freq * 2.0 * math.Pi)
		if math.Abs(s-want) > 1e-9 {
			t.Fatalf("sample %d = %v, want %v", i, s, want)
		}
	}
}

func TestSawOscillatorRange(t *testing.T) {
	const sampleRate = 48000.0
	const n = 4800

	osc := &SawOscillator{}
	if err := osc.Allocate(sampleRate, n); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	in := []*signal.Buffer{constFloatBuf(220.0, n)}
	out := []*signal.Buffer{signal.NewBuffer(signal.Float, n)}
	ctx := &graph.Context{SampleRate: sampleRate, BlockSize: n, Mode: graph.TopLevel}
	if err := osc.Process(ctx, in, out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i, s := range out[0].Floats() {
		if s < -1.0 || s > 1.0 {
			t.Fatalf("sample %d = %v out of [-1, 1]", i, s)
		}
	}
}

func TestNoiseOscillatorDeterministic(t *testing.T) {
	const n = 256
	a := &NoiseOscillator{Seed: 42}
	b := &NoiseOscillator{Seed: 42}
	if err := a.Allocate(48000, n); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := b.Allocate(48000, n); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	ctx := &graph.Context{SampleRate: 48000, BlockSize: n, Mode: graph.TopLevel}
	outA := []*signal.Buffer{signal.NewBuffer(signal.Float, n)}
	outB := []*signal.Buffer{signal.NewBuffer(signal.Float, n)}
	if err := a.Process(ctx, nil, outA); err != nil {
		t.Fatalf("Process a: %v", err)
	}
	if err := b.Process(ctx, nil, outB); err != nil {
		t.Fatalf("Process b: %v", err)
	}
	for i := range outA[0].Floats() {
		if outA[0].Floats()[i] != outB[0].Floats()[i] {
			t.Fatalf("sample %d differs between identically-seeded noise sources", i)
		}
		if outA[0].Floats()[i] < -1.0 || outA[0].Floats()[i] > 1.0 {
			t.Fatalf("sample %d out of [-1, 1]", i)
		}
	}
}
