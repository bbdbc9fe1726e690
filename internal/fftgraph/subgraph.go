// SPDX-License-Identifier: MIT

// Package fftgraph implements the nested FFT subgraph engine (spec
// §4.4): a subsystem that looks like a single time-domain processor to
// the outer graph but internally runs its own directed graph of
// frequency-domain processors on each STFT frame, with windowed
// overlap-add reconstruction at its audio boundaries.
package fftgraph

import (
	"fmt"
	"math/cmplx"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
	"dspgraph/pkg/bitint"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Subgraph is a graph.Processor whose inputs and outputs are ordinary
// Float audio streams, backed internally by an FFT analysis/synthesis
// loop driving a nested graph.Graph of Complex-tagged processors.
type Subgraph struct {
	fftLength int
	hopLength int
	window    WindowFunc
	coeffs    []float64 // normalized, centered, length fftLength
	padded    int       // 2 * fftLength

	inner *graph.Graph
	fwd   *fourier.FFT

	inNames  []string
	inIDs    []uuid.UUID
	outNames []string
	outIDs   []uuid.UUID

	inRings   []*ring
	inScratch [][]float64

	outRings   []*ring
	outOverlap []*ring
	outScratch [][]float64

	maxBlockSize int
}

// New constructs an FFT subgraph. fftLength must be a power of two and
// a multiple of hopLength.
func New(fftLength, hopLength int, win WindowFunc) (*Subgraph, error) {
	if fftLength <= 0 || hopLength <= 0 {
		return nil, fmt.Errorf("fftgraph: fft_length and hop_length must be positive")
	}
	if !bitint.IsPowerOfTwo(fftLength) {
		return nil, fmt.Errorf("fftgraph: fft_length (%d) must be a power of two", fftLength)
	}
	if fftLength%hopLength != 0 {
		return nil, fmt.Errorf("fftgraph: fft_length (%d) must be an integer multiple of hop_length (%d)", fftLength, hopLength)
	}
	return &Subgraph{
		fftLength: fftLength,
		hopLength: hopLength,
		window:    win,
		padded:    2 * fftLength,
		inner:     graph.NewGraph(),
	}, nil
}

// AddAudioInput adds an outer-visible Float audio input whose samples
// feed the analysis side of the STFT loop, and returns the inner
// graph's Complex-tagged endpoint id other FFT processors connect from.
func (s *Subgraph) AddAudioInput(name string) (uuid.UUID, error) {
	id, err := s.inner.AddInputEndpoint(name, signal.Complex)
	if err != nil {
		return uuid.Nil, err
	}
	s.inNames = append(s.inNames, name)
	s.inIDs = append(s.inIDs, id)
	return id, nil
}

// AddAudioOutput adds an outer-visible Float audio output whose samples
// are produced by inverse-transforming and overlap-adding the inner
// graph's Complex-tagged endpoint, whose id is returned for other FFT
// processors to connect to.
func (s *Subgraph) AddAudioOutput(name string) (uuid.UUID, error) {
	id, err := s.inner.AddOutputEndpoint(name, signal.Complex)
	if err != nil {
		return uuid.Nil, err
	}
	s.outNames = append(s.outNames, name)
	s.outIDs = append(s.outIDs, id)
	return id, nil
}

// AddProcessor registers an FFT processor (one of the complex-domain
// primitives, or a user-defined one) inside the subgraph.
func (s *Subgraph) AddProcessor(name string, proc graph.Processor) (uuid.UUID, error) {
	return s.inner.AddNode(name, proc)
}

// Connect wires two FFT-processor ports inside the subgraph, by index.
func (s *Subgraph) Connect(source uuid.UUID, sourceOut int, target uuid.UUID, targetIn int) error {
	return s.inner.Connect(source, sourceOut, target, targetIn)
}

// ConnectByName wires two FFT-processor ports inside the subgraph, by
// name.
func (s *Subgraph) ConnectByName(source uuid.UUID, sourceOutName string, target uuid.UUID, targetInName string) error {
	return s.inner.ConnectByName(source, sourceOutName, target, targetInName)
}

// InputSpec implements graph.Processor: one Float port per audio input.
func (s *Subgraph) InputSpec() []signal.PortSpec {
	specs := make([]signal.PortSpec, len(s.inNames))
	for i, name := range s.inNames {
		specs[i] = signal.PortSpec{Name: name, Tag: signal.Float}
	}
	return specs
}

// OutputSpec implements graph.Processor: one Float port per audio
// output.
func (s *Subgraph) OutputSpec() []signal.PortSpec {
	specs := make([]signal.PortSpec, len(s.outNames))
	for i, name := range s.outNames {
		specs[i] = signal.PortSpec{Name: name, Tag: signal.Float}
	}
	return specs
}

// Allocate builds the normalized window table, the forward/inverse FFT
// plans, the nested graph's own allocation (fixed at fftLength+1 bins
// regardless of the outer block size), and the ring buffers driving the
// STFT loop. Each input ring starts with fftLength-hopLength zeros and
// each output ring with hopLength zeros, so the output trails the input
// by exactly fftLength samples whatever the outer block size.
func (s *Subgraph) Allocate(sampleRate float64, maxBlockSize int) error {
	s.coeffs = buildWindow(s.fftLength, s.hopLength, s.window)
	s.fwd = fourier.NewFFT(s.padded)
	s.maxBlockSize = maxBlockSize

	if err := s.inner.Allocate(sampleRate, s.fftLength+1); err != nil {
		return err
	}

	ringCap := s.fftLength + maxBlockSize
	overlapCap := s.padded + maxBlockSize

	s.inRings = make([]*ring, len(s.inIDs))
	s.inScratch = make([][]float64, len(s.inIDs))
	for i := range s.inIDs {
		s.inRings[i] = newRing(ringCap)
		for j := 0; j < s.fftLength-s.hopLength; j++ {
			s.inRings[i].Push(0)
		}
		s.inScratch[i] = make([]float64, s.padded)
	}

	s.outRings = make([]*ring, len(s.outIDs))
	s.outOverlap = make([]*ring, len(s.outIDs))
	s.outScratch = make([][]float64, len(s.outIDs))
	for i := range s.outIDs {
		s.outRings[i] = newRing(ringCap)
		for j := 0; j < s.hopLength; j++ {
			s.outRings[i].Push(0)
		}
		s.outOverlap[i] = newRing(overlapCap)
		s.outScratch[i] = make([]float64, s.padded)
	}

	return nil
}

// Resize is a no-op: the FFT plan size depends only on fftLength, and
// the ring buffer capacities are fixed at Allocate from fftLength and
// the maxBlockSize passed there; the nested graph's own block size
// (fftLength+1) never changes after Allocate.
func (s *Subgraph) Resize(sampleRate float64, blockSize int) error {
	return nil
}

// Process runs the STFT analysis/synthesis loop described in spec
// §4.4: append incoming samples, run as many hop-sized subgraph frames
// as the accumulated ring buffer supports, then drain each output ring
// into the outer block, zero-filling any shortfall.
func (s *Subgraph) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	blockSize := ctx.BlockSize

	inputLen := 0
	for i := range s.inIDs {
		in := inputs[i]
		floats := in.Floats()
		for j := 0; j < blockSize; j++ {
			v := floats[j]
			if !in.Present(j) {
				v = 0
			}
			s.inRings[i].Push(v)
		}
		inputLen = s.inRings[i].Len()
	}

	for inputLen >= s.fftLength {
		for i, id := range s.inIDs {
			s.inRings[i].CopyWindowed(s.inScratch[i], s.fftLength, s.coeffs)
			s.inRings[i].Drop(s.hopLength)

			extBuf, err := s.inner.ExternalInput(id)
			if err != nil {
				return err
			}
			s.fwd.Coefficients(extBuf.Complexes(), s.inScratch[i])
		}

		if err := s.inner.Process(graph.InFFTSubgraph); err != nil {
			return err
		}

		for i, id := range s.outIDs {
			outBuf, err := s.inner.OutputBuffer(id, 0)
			if err != nil {
				return err
			}
			s.fwd.Sequence(s.outScratch[i], outBuf.Complexes())

			overlap := s.outOverlap[i]
			scratch := s.outScratch[i]
			for j := 0; j < s.padded; j++ {
				if j < overlap.Len() {
					overlap.AddAt(j, scratch[j])
				} else {
					overlap.Push(scratch[j])
				}
			}
			for j := 0; j < s.hopLength; j++ {
				v, _ := overlap.PopFront()
				s.outRings[i].Push(v)
			}
		}

		inputLen -= s.hopLength
	}

	for i := range s.outIDs {
		out := outputs[i].Floats()
		for j := 0; j < blockSize; j++ {
			if v, ok := s.outRings[i].PopFront(); ok {
				out[j] = v
			} else {
				out[j] = 0
			}
		}
	}
	return nil
}

// FFTLength returns the configured FFT window length.
func (s *Subgraph) FFTLength() int { return s.fftLength }

// HopLength returns the configured hop length between frames.
func (s *Subgraph) HopLength() int { return s.hopLength }

// Magnitudes returns the per-bin magnitude spectrum of the outIdx'th
// audio output's most recent subgraph evaluation, for read-only
// diagnostics that observe the engine off its data path (spec §6).
func (s *Subgraph) Magnitudes(outIdx int) ([]float64, error) {
	buf, err := s.inner.OutputBuffer(s.outIDs[outIdx], 0)
	if err != nil {
		return nil, err
	}
	bins := buf.Complexes()
	mags := make([]float64, len(bins))
	for i, c := range bins {
		mags[i] = cmplx.Abs(c)
	}
	return mags, nil
}
