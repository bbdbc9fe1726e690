// SPDX-License-Identifier: MIT
package processors

import (
	"testing"

	"dspgraph/internal/signal"
)

func boolBuf(vals ...bool) *signal.Buffer {
	b := signal.NewBuffer(signal.Bool, len(vals))
	copy(b.Bools(), vals)
	return b
}

// eventBuf builds a Bool buffer the way an event-producing processor
// (Metro, a comparison, Changed, ZeroCrossing) does: a slot is present
// only when it fired, absent otherwise.
func eventBuf(vals ...bool) *signal.Buffer {
	b := signal.NewBuffer(signal.Bool, len(vals))
	bs := b.Bools()
	for i, v := range vals {
		bs[i] = v
		if v {
			b.SetPresent(i)
		} else {
			b.SetAbsent(i)
		}
	}
	return b
}

func intBuf(vals ...int64) *signal.Buffer {
	b := signal.NewBuffer(signal.Int, len(vals))
	copy(b.Ints(), vals)
	return b
}

func TestCond(t *testing.T) {
	out := runBlock(t, &Cond{}, []*signal.Buffer{
		boolBuf(true, false, true),
		floatBuf(1, 1, 1),
		floatBuf(2, 2, 2),
	}, 3)
	want := []float64{1, 2, 1}
	got := out[0].Floats()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestComparisonOps(t *testing.T) {
	tests := []struct {
		name string
		kind string
		a, b float64
		want bool
	}{
		{"less-true", "less", 1, 2, true},
		{"less-false", "less", 2, 1, false},
		{"greater", "greater", 3, 2, true},
		{"equal", "equal", 2, 2, true},
		{"notequal", "notequal", 2, 2, false},
		{"lessorequal", "lessorequal", 2, 2, true},
		{"greaterorequal", "greaterorequal", 1, 2, false},
	}
	ctors := map[string]func() *comparisonOp{
		"less":           func() *comparisonOp { return NewLess().(*comparisonOp) },
		"greater":        func() *comparisonOp { return NewGreater().(*comparisonOp) },
		"equal":          func() *comparisonOp { return NewEqual().(*comparisonOp) },
		"notequal":       func() *comparisonOp { return NewNotEqual().(*comparisonOp) },
		"lessorequal":    func() *comparisonOp { return NewLessOrEqual().(*comparisonOp) },
		"greaterorequal": func() *comparisonOp { return NewGreaterOrEqual().(*comparisonOp) },
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := ctors[tt.kind]()
			if proc.Name != tt.kind {
				t.Fatalf("Name = %q, want %q", proc.Name, tt.kind)
			}
			out := runBlock(t, proc, []*signal.Buffer{floatBuf(tt.a), floatBuf(tt.b)}, 1)
			if got := out[0].Bools()[0]; got != tt.want {
				t.Errorf("%s(%v, %v) = %v, want %v", tt.kind, tt.a, tt.b, got, tt.want)
			}
			if got := out[0].Present(0); got != tt.want {
				t.Errorf("%s(%v, %v) present = %v, want %v", tt.kind, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	s := &Select{N: 3}
	out := runBlock(t, s, []*signal.Buffer{
		intBuf(0, 1, 2, 5, -1),
		floatBuf(10, 10, 10, 10, 10),
		floatBuf(20, 20, 20, 20, 20),
		floatBuf(30, 30, 30, 30, 30),
	}, 5)
	want := []float64{10, 20, 30, 30, 10}
	got := out[0].Floats()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMerge(t *testing.T) {
	m := &Merge{N: 3}
	out := runBlock(t, m, []*signal.Buffer{
		eventBuf(false, false, true),
		eventBuf(false, true, false),
		eventBuf(false, false, false),
	}, 3)
	want := []bool{false, true, true}
	wantPresent := []bool{false, true, true}
	got := out[0].Bools()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %v, want %v", i, got[i], want[i])
		}
		if out[0].Present(i) != wantPresent[i] {
			t.Errorf("slot %d: present = %v, want %v", i, out[0].Present(i), wantPresent[i])
		}
	}
}

// TestMergeFirstPresentWins checks that when more than one input fires
// the same slot, the earliest input by index is the one that wins,
// per Merge's "first present" semantics.
func TestMergeFirstPresentWins(t *testing.T) {
	m := &Merge{N: 2}
	second := eventBuf(false)
	second.SetPresent(0)
	out := runBlock(t, m, []*signal.Buffer{
		eventBuf(true),
		second,
	}, 1)
	if got := out[0].Bools()[0]; !got {
		t.Errorf("slot 0: got %v, want true (first input's value)", got)
	}
	if !out[0].Present(0) {
		t.Error("slot 0: expected present")
	}
}
