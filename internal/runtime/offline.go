// SPDX-License-Identifier: MIT
package runtime

import (
	"dspgraph/internal/graph"
)

// Render performs an offline render (spec §4.5 "Offline render"):
// reset, prepare, then repeatedly process g until duration*sampleRate
// samples have been produced, returning one sample slice per output
// endpoint in declared order. The final block is resized to the exact
// number of remaining samples when it is shorter than maxBlockSize.
func Render(g *graph.Graph, sampleRate float64, maxBlockSize int, duration float64) ([][]float64, error) {
	if err := g.Allocate(sampleRate, maxBlockSize); err != nil {
		return nil, err
	}
	if err := g.Resize(sampleRate, maxBlockSize); err != nil {
		return nil, err
	}

	total := int(duration * sampleRate)
	outputs := g.OutputEndpoints()
	channels := make([][]float64, len(outputs))
	for i := range channels {
		channels[i] = make([]float64, 0, total)
	}

	produced := 0
	for produced < total {
		want := maxBlockSize
		if remaining := total - produced; remaining < want {
			want = remaining
		}
		if want != g.BlockSize() {
			if err := g.Resize(sampleRate, want); err != nil {
				return nil, err
			}
		}
		if err := g.Process(graph.TopLevel); err != nil {
			return nil, err
		}
		for i, id := range outputs {
			buf, err := g.OutputBuffer(id, 0)
			if err != nil {
				return nil, err
			}
			channels[i] = append(channels[i], buf.Floats()[:want]...)
		}
		produced += want
	}
	return channels, nil
}
