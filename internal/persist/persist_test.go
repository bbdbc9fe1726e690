// SPDX-License-Identifier: MIT
package persist

import (
	"testing"

	"dspgraph/internal/graph"
	"dspgraph/internal/processors"
	"dspgraph/internal/signal"
)

func buildRoundTripGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()

	freq, err := g.AddInputEndpoint("frequency", signal.Float)
	if err != nil {
		t.Fatalf("AddInputEndpoint: %v", err)
	}
	out, err := g.AddOutputEndpoint("out", signal.Float)
	if err != nil {
		t.Fatalf("AddOutputEndpoint: %v", err)
	}

	osc, err := g.AddNode("osc", &processors.SineOscillator{})
	if err != nil {
		t.Fatalf("AddNode osc: %v", err)
	}
	gainConst, err := g.AddNode("gain", &processors.Constant{Value: 0.5})
	if err != nil {
		t.Fatalf("AddNode gain: %v", err)
	}
	mul, err := g.AddNode("mul", processors.NewMul())
	if err != nil {
		t.Fatalf("AddNode mul: %v", err)
	}
	delay, err := g.AddNode("delay", &processors.ConstSampleDelay{Samples: 7})
	if err != nil {
		t.Fatalf("AddNode delay: %v", err)
	}

	if err := g.ConnectByName(freq, "out", osc, "frequency"); err != nil {
		t.Fatalf("connect freq->osc: %v", err)
	}
	if err := g.ConnectByName(osc, "out", mul, "a"); err != nil {
		t.Fatalf("connect osc->mul: %v", err)
	}
	if err := g.ConnectByName(gainConst, "out", mul, "b"); err != nil {
		t.Fatalf("connect gain->mul: %v", err)
	}
	if err := g.ConnectByName(mul, "out", delay, "in"); err != nil {
		t.Fatalf("connect mul->delay: %v", err)
	}
	if err := g.ConnectByName(delay, "out", out, "in"); err != nil {
		t.Fatalf("connect delay->out: %v", err)
	}

	return g
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := buildRoundTripGraph(t)

	doc, err := Save(g)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(doc.Inputs) != 1 || len(doc.Outputs) != 1 {
		t.Fatalf("expected 1 input and 1 output endpoint, got %d/%d", len(doc.Inputs), len(doc.Outputs))
	}
	if len(doc.Processors) != 4 {
		t.Fatalf("expected 4 processor nodes, got %d", len(doc.Processors))
	}
	if len(doc.Edges) != 5 {
		t.Fatalf("expected 5 edges, got %d", len(doc.Edges))
	}

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	reloaded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	g2, err := Load(reloaded)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := g2.Allocate(48000, 64); err != nil {
		t.Fatalf("Allocate reloaded graph: %v", err)
	}

	var gotGain float64
	var gotDelay int
	for _, rec := range reloaded.Processors {
		switch rec.Kind {
		case "Constant":
			var c processors.Constant
			if err := rec.Params.Decode(&c); err != nil {
				t.Fatalf("decode Constant params: %v", err)
			}
			gotGain = c.Value
		case "ConstSampleDelay":
			var d processors.ConstSampleDelay
			if err := rec.Params.Decode(&d); err != nil {
				t.Fatalf("decode ConstSampleDelay params: %v", err)
			}
			gotDelay = d.Samples
		}
	}
	if gotGain != 0.5 {
		t.Errorf("gain Value = %v, want 0.5", gotGain)
	}
	if gotDelay != 7 {
		t.Errorf("delay Samples = %v, want 7", gotDelay)
	}
}

func TestKindOfNamedOperators(t *testing.T) {
	cases := []struct {
		proc graph.Processor
		want string
	}{
		{processors.NewAdd(), "add"},
		{processors.NewSub(), "sub"},
		{processors.NewNeg(), "neg"},
		{processors.NewLess(), "less"},
		{processors.NewGreaterOrEqual(), "greaterorequal"},
		{&processors.Constant{}, "Constant"},
		{&processors.SineOscillator{}, "SineOscillator"},
	}
	for _, c := range cases {
		got, err := kindOf(c.proc)
		if err != nil {
			t.Fatalf("kindOf(%T): %v", c.proc, err)
		}
		if got != c.want {
			t.Errorf("kindOf(%T) = %q, want %q", c.proc, got, c.want)
		}
	}
}

func TestLoadUnknownKind(t *testing.T) {
	doc := &Document{
		Processors: []ProcessorRecord{{ID: "1", Name: "mystery", Kind: "NoSuchProcessor"}},
	}
	if _, err := Load(doc); err == nil {
		t.Fatal("expected error loading unknown processor kind")
	}
}
