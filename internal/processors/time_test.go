// SPDX-License-Identifier: MIT
package processors

import (
	"testing"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

func TestMetroCadence(t *testing.T) {
	m := &Metro{Period: 0.5}
	sampleRate := 10.0
	blockSize := 10

	if err := m.Allocate(sampleRate, blockSize); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	period := floatBuf(repeat(0.5, blockSize)...)
	out := signal.NewBuffer(signal.Bool, blockSize)
	ctx := &graph.Context{SampleRate: sampleRate, BlockSize: blockSize, Mode: graph.TopLevel}
	if err := m.Process(ctx, []*signal.Buffer{period}, []*signal.Buffer{out}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	pulses := 0
	for i, v := range out.Bools() {
		if v != out.Present(i) {
			t.Errorf("slot %d: value %v but present %v, want them to agree", i, v, out.Present(i))
		}
		if v {
			pulses++
		}
	}
	if pulses != 2 {
		t.Errorf("expected 2 pulses over 1 second at period 0.5s, got %d", pulses)
	}
}

// TestMetroPresenceMatchesSpec8_2 renders Metro(period=0.25) at 48kHz,
// block 512, for 1.0s and checks the exact present slots named by the
// cadence property: 0, 12000, 24000, 36000.
func TestMetroPresenceMatchesSpec8_2(t *testing.T) {
	m := &Metro{Period: 0.25}
	sampleRate := 48000.0
	blockSize := 512

	if err := m.Allocate(sampleRate, blockSize); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	want := map[int]bool{0: true, 12000: true, 24000: true, 36000: true}
	present := make(map[int]bool)

	total := int(sampleRate * 1.0)
	for start := 0; start < total; start += blockSize {
		n := blockSize
		if start+n > total {
			n = total - start
		}
		period := floatBuf(repeat(0.25, n)...)
		out := signal.NewBuffer(signal.Bool, n)
		ctx := &graph.Context{SampleRate: sampleRate, BlockSize: n, Mode: graph.TopLevel}
		if err := m.Process(ctx, []*signal.Buffer{period}, []*signal.Buffer{out}); err != nil {
			t.Fatalf("Process: %v", err)
		}
		for i := 0; i < n; i++ {
			if out.Present(i) {
				present[start+i] = true
			}
		}
	}

	if len(present) != 4 {
		t.Errorf("expected exactly 4 present slots, got %d: %v", len(present), present)
	}
	for idx := range want {
		if !present[idx] {
			t.Errorf("expected slot %d to be present", idx)
		}
	}
}

func TestCounterWrap(t *testing.T) {
	c := &Counter{}
	out := runBlock(t, c, []*signal.Buffer{
		boolBuf(true, true, true, true, true),
		intBuf(3, 3, 3, 3, 3),
	}, 5)
	want := []int64{1, 2, 0, 1, 2}
	got := out[0].Ints()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSampleAndHold(t *testing.T) {
	s := &SampleAndHold{}
	out := runBlock(t, s, []*signal.Buffer{
		floatBuf(1, 2, 3, 4),
		boolBuf(true, false, true, false),
	}, 4)
	want := []float64{1, 1, 3, 3}
	got := out[0].Floats()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestConstSampleDelay(t *testing.T) {
	d := &ConstSampleDelay{Samples: 2}
	if err := d.Allocate(48000, 8); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	in := floatBuf(1, 2, 3, 4, 5)
	out := signal.NewBuffer(signal.Float, 5)
	ctx := &graph.Context{SampleRate: 48000, BlockSize: 5, Mode: graph.TopLevel}
	if err := d.Process(ctx, []*signal.Buffer{in}, []*signal.Buffer{out}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []float64{0, 0, 1, 2, 3}
	got := out.Floats()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
