// SPDX-License-Identifier: MIT
package graph

import (
	"testing"

	"dspgraph/internal/signal"
)

// passthrough is a minimal one-in/one-out Float processor used to test
// the graph and scheduler without depending on internal/processors.
type passthrough struct {
	gain float64
}

func (p *passthrough) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "in", Tag: signal.Float}}
}

func (p *passthrough) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}

func (p *passthrough) Allocate(sampleRate float64, maxBlockSize int) error { return nil }
func (p *passthrough) Resize(sampleRate float64, blockSize int) error     { return nil }

func (p *passthrough) Process(ctx *Context, inputs []*signal.Buffer, outputs []*signal.Buffer) error {
	in, out := inputs[0].Floats(), outputs[0].Floats()
	gain := p.gain
	if gain == 0 {
		gain = 1
	}
	for i := range out {
		out[i] = in[i] * gain
	}
	return nil
}

func newSinglePassthroughGraph(t *testing.T) (*Graph, func()) {
	t.Helper()
	g := NewGraph()
	in, err := g.AddInputEndpoint("in", signal.Float)
	if err != nil {
		t.Fatalf("AddInputEndpoint: %v", err)
	}
	out, err := g.AddOutputEndpoint("out", signal.Float)
	if err != nil {
		t.Fatalf("AddOutputEndpoint: %v", err)
	}
	if err := g.Connect(in, 0, out, 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := g.Allocate(48000, 8); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	return g, func() {}
}

func TestEndpointIdentitySemantics(t *testing.T) {
	g, done := newSinglePassthroughGraph(t)
	defer done()

	ins := g.InputEndpoints()
	outs := g.OutputEndpoints()
	extIn, err := g.ExternalInput(ins[0])
	if err != nil {
		t.Fatalf("ExternalInput: %v", err)
	}
	want := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	copy(extIn.Floats(), want)

	if err := g.Process(TopLevel); err != nil {
		t.Fatalf("Process: %v", err)
	}

	outBuf, err := g.OutputBuffer(outs[0], 0)
	if err != nil {
		t.Fatalf("OutputBuffer: %v", err)
	}
	got := outBuf.Floats()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestSelfLoopRejected(t *testing.T) {
	g := NewGraph()
	id, _ := g.AddNode("p", &passthrough{})
	if err := g.Connect(id, 0, id, 0); err == nil {
		t.Fatal("expected self-loop to be rejected")
	}
}

func TestCycleRejectedAtConnect(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddNode("a", &passthrough{})
	b, _ := g.AddNode("b", &passthrough{})
	if err := g.Connect(a, 0, b, 0); err != nil {
		t.Fatalf("Connect a->b: %v", err)
	}
	if err := g.Connect(b, 0, a, 0); err == nil {
		t.Fatal("expected cycle b->a to be rejected")
	}
}

func TestTagMismatchRejected(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddInputEndpoint("a", signal.Float)
	b, _ := g.AddOutputEndpoint("b", signal.Int)
	if err := g.Connect(a, 0, b, 0); err == nil {
		t.Fatal("expected tag mismatch to be rejected")
	}
}

func TestEvaluationOrderRespectsDependencies(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddNode("a", &passthrough{gain: 1})
	b, _ := g.AddNode("b", &passthrough{gain: 2})
	c, _ := g.AddNode("c", &passthrough{gain: 3})
	if err := g.Connect(a, 0, b, 0); err != nil {
		t.Fatalf("connect a->b: %v", err)
	}
	if err := g.Connect(b, 0, c, 0); err != nil {
		t.Fatalf("connect b->c: %v", err)
	}
	if err := g.Allocate(48000, 4); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	ia, ib, ic := g.IndexOf(a), g.IndexOf(b), g.IndexOf(c)
	if !(ia < ib && ib < ic) {
		t.Errorf("expected order a < b < c, got a=%d b=%d c=%d", ia, ib, ic)
	}
}

func TestEdgeReplacementMatchesDirectConnect(t *testing.T) {
	// Connecting A -> T:i then B -> T:i must behave exactly as if only
	// B -> T:i had ever been connected (spec §8 edge replacement law).
	run := func(connectA bool) []float64 {
		g := NewGraph()
		a, _ := g.AddNode("a", &passthrough{gain: 10})
		b, _ := g.AddNode("b", &passthrough{gain: 20})
		in, _ := g.AddInputEndpoint("in", signal.Float)
		out, _ := g.AddOutputEndpoint("out", signal.Float)
		g.Connect(in, 0, a, 0)
		g.Connect(in, 0, b, 0)
		if connectA {
			g.Connect(a, 0, out, 0)
		}
		g.Connect(b, 0, out, 0)
		g.Allocate(48000, 4)
		extIn, _ := g.ExternalInput(in)
		copy(extIn.Floats(), []float64{1, 2, 3, 4})
		g.Process(TopLevel)
		outBuf, _ := g.OutputBuffer(out, 0)
		result := make([]float64, len(outBuf.Floats()))
		copy(result, outBuf.Floats())
		return result
	}

	withReplacement := run(true)
	directOnly := run(false)
	for i := range withReplacement {
		if withReplacement[i] != directOnly[i] {
			t.Errorf("sample %d: replacement=%v direct=%v", i, withReplacement[i], directOnly[i])
		}
	}
}

func TestZeroLengthBlockNoPanic(t *testing.T) {
	g, done := newSinglePassthroughGraph(t)
	defer done()
	if err := g.Resize(48000, 0); err != nil {
		t.Fatalf("Resize to 0: %v", err)
	}
	if err := g.Process(TopLevel); err != nil {
		t.Fatalf("Process with zero block size: %v", err)
	}
}

func TestUnconnectedInputUsesDefault(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddNode("a", &passthrough{gain: 1})
	out, _ := g.AddOutputEndpoint("out", signal.Float)
	g.Connect(a, 0, out, 0)
	if err := g.Allocate(48000, 4); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := g.Process(TopLevel); err != nil {
		t.Fatalf("Process: %v", err)
	}
	outBuf, _ := g.OutputBuffer(out, 0)
	for i, v := range outBuf.Floats() {
		if v != 0 {
			t.Errorf("sample %d: expected default-zero passthrough, got %v", i, v)
		}
	}
}
