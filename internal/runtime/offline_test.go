// SPDX-License-Identifier: MIT
package runtime

import (
	"math"
	"testing"

	"dspgraph/internal/graph"
	"dspgraph/internal/processors"
	"dspgraph/internal/signal"
)

// buildSineGainGraph wires SineOscillator(440) -> mul(0.2) -> output_0,
// the "sine constant-gain" scenario from spec §8.
func buildSineGainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()

	osc, err := g.AddNode("osc", &processors.SineOscillator{})
	if err != nil {
		t.Fatalf("AddNode osc: %v", err)
	}
	freq, err := g.AddNode("freq", &processors.Constant{Value: 440})
	if err != nil {
		t.Fatalf("AddNode freq: %v", err)
	}
	gain, err := g.AddNode("gain", &processors.Constant{Value: 0.2})
	if err != nil {
		t.Fatalf("AddNode gain: %v", err)
	}
	mul, err := g.AddNode("mul", processors.NewMul())
	if err != nil {
		t.Fatalf("AddNode mul: %v", err)
	}
	out, err := g.AddOutputEndpoint("output_0", signal.Float)
	if err != nil {
		t.Fatalf("AddOutputEndpoint: %v", err)
	}

	if err := g.ConnectByName(freq, "out", osc, "frequency"); err != nil {
		t.Fatalf("connect freq->osc: %v", err)
	}
	if err := g.ConnectByName(osc, "out", mul, "a"); err != nil {
		t.Fatalf("connect osc->mul.a: %v", err)
	}
	if err := g.ConnectByName(gain, "out", mul, "b"); err != nil {
		t.Fatalf("connect gain->mul.b: %v", err)
	}
	if err := g.ConnectByName(mul, "out", out, "in"); err != nil {
		t.Fatalf("connect mul->out: %v", err)
	}
	return g
}

func TestRenderSineConstantGain(t *testing.T) {
	const sampleRate = 48000.0
	g := buildSineGainGraph(t)

	channels, err := Render(g, sampleRate, 512, 1.0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("got %d output channels, want 1", len(channels))
	}
	samples := channels[0]
	if len(samples) != sampleRate {
		t.Fatalf("got %d samples, want %d", len(samples), int(sampleRate))
	}

	var sumSq float64
	crossings := 0
	for i, v := range samples {
		sumSq += v * v
		if i > 0 && ((samples[i-1] < 0) != (v < 0)) {
			crossings++
		}
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))
	wantRMS := 0.2 / math.Sqrt2
	if math.Abs(rms-wantRMS) > 0.01*wantRMS {
		t.Errorf("RMS = %v, want ~%v", rms, wantRMS)
	}
	wantCrossings := 2 * 440
	if math.Abs(float64(crossings-wantCrossings)) > 0.02*float64(wantCrossings) {
		t.Errorf("zero crossings = %d, want ~%d", crossings, wantCrossings)
	}
}

func TestRenderFinalBlockResize(t *testing.T) {
	g := buildSineGainGraph(t)
	// duration*sampleRate is not a multiple of block size, forcing a
	// final short block.
	channels, err := Render(g, 48000, 500, 0.01)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(channels[0]) != 480 {
		t.Fatalf("got %d samples, want 480", len(channels[0]))
	}
}
