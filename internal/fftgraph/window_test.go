// SPDX-License-Identifier: MIT
package fftgraph

import (
	"math"
	"testing"
)

func TestBuildWindowUnitGain(t *testing.T) {
	tests := []struct {
		name      string
		fftLength int
		hopLength int
		win       WindowFunc
	}{
		{"hann-4x", 512, 128, Hann},
		{"hamming-4x", 256, 64, Hamming},
		{"blackman-2x", 512, 256, Blackman},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := buildWindow(tt.fftLength, tt.hopLength, tt.win)
			if len(w) != tt.fftLength {
				t.Fatalf("len(window) = %d, want %d", len(w), tt.fftLength)
			}

			overlaps := tt.fftLength / tt.hopLength
			// buildWindow normalizes by 2*overlaps*sum(raw window), so the
			// normalized coefficients must sum to 1/(2*overlaps).
			var sum float64
			for _, v := range w {
				sum += v
			}
			want := 1.0 / (2.0 * float64(overlaps))
			if math.Abs(sum-want) > 1e-9 {
				t.Errorf("sum(window) = %v, want %v", sum, want)
			}
		})
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name    string
		want    WindowFunc
		wantErr bool
	}{
		{"hann", Hann, false},
		{"Hanning", Hann, false},
		{"HAMMING", Hamming, false},
		{"blackman", Blackman, false},
		{"blackmannuttall", BlackmanNuttall, false},
		{"bartletthann", BartlettHann, false},
		{"lanczos", Lanczos, false},
		{"nuttall", Nuttall, false},
		{"bogus", Hann, true},
	}
	for _, tt := range tests {
		got, err := ParseWindowFunc(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWindowFunc(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseWindowFunc(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
