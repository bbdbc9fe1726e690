// SPDX-License-Identifier: MIT
package processors

import (
	"math"

	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// PeakLimiter is an envelope-follower peak limiter: gain is smoothed
// toward 1.0 or threshold/envelope depending on whether the tracked
// peak envelope exceeds the threshold.
type PeakLimiter struct {
	gain     float64
	envelope float64
}

func (l *PeakLimiter) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{
		{Name: "in", Tag: signal.Float},
		{Name: "threshold", Tag: signal.Float, Default: 0.9885530946569389}, // -0.1 dBFS
		{Name: "attack", Tag: signal.Float, Default: 0.9},
		{Name: "release", Tag: signal.Float, Default: 0.9995},
	}
}
func (l *PeakLimiter) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Float}}
}
func (l *PeakLimiter) Allocate(float64, int) error {
	l.gain = 1.0
	return nil
}
func (l *PeakLimiter) Resize(float64, int) error { return nil }
func (l *PeakLimiter) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in := inputs[0].Floats()
	threshold, attack, release := inputs[1].Floats(), inputs[2].Floats(), inputs[3].Floats()
	out := outputs[0].Floats()

	for i := range out {
		l.envelope = math.Max(math.Abs(in[i]), l.envelope*release[i])

		targetGain := 1.0
		if l.envelope > threshold[i] {
			targetGain = threshold[i] / l.envelope
		}

		l.gain = l.gain*attack[i] + targetGain*(1.0-attack[i])

		out[i] = in[i] * l.gain
	}
	return nil
}
