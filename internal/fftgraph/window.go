// SPDX-License-Identifier: MIT
package fftgraph

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the analysis window applied before each forward
// transform.
type WindowFunc int

const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	BlackmanNuttall
	BartlettHann
	Lanczos
	Nuttall
)

// ParseWindowFunc converts a case-insensitive name to a WindowFunc.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "bartletthann":
		return BartlettHann, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("fftgraph: unknown window function %q", name)
	}
}

// applyWindow fills coeffs (pre-seeded to 1.0 by the caller) with the
// chosen window's coefficients.
func applyWindow(coeffs []float64, fn WindowFunc) {
	switch fn {
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hann(coeffs)
	}
}

// buildWindow computes the normalized, centered window table for an FFT
// subgraph of the given length/hop (spec §4.4): generate the periodic
// form of the window (the first fftLength points of a fftLength+1 point
// window), rotate it so it is centered at index 0, then normalize by
// 2 * (fftLength/hopLength) * sum(window) so overlap-add reconstructs
// with unit gain.
func buildWindow(fftLength, hopLength int, fn WindowFunc) []float64 {
	full := make([]float64, fftLength+1)
	for i := range full {
		full[i] = 1.0
	}
	applyWindow(full, fn)
	coeffs := full[:fftLength]

	rotated := make([]float64, fftLength)
	shift := fftLength / 2
	for i, v := range coeffs {
		rotated[(i+shift)%fftLength] = v
	}

	overlappingFrames := fftLength / hopLength
	var sum float64
	for _, v := range rotated {
		sum += v
	}
	sum *= 2.0 * float64(overlappingFrames)

	for i := range rotated {
		rotated[i] /= sum
	}
	return rotated
}
