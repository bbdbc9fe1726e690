// SPDX-License-Identifier: MIT
package runtime

import (
	"fmt"
	"math"
	"os"

	"dspgraph/internal/graph"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFloatFormat is the WAV fmt-chunk audio format code for IEEE float
// PCM, as go-audio/wav expects it in NewEncoder's audioFormat argument.
const wavFloatFormat = 3

// RenderToFile performs an offline render and writes the result as an
// interleaved, 32-bit float WAV file at sampleRate (spec §4.5 "Offline
// to file", §6 "Offline file format": channel count equals the number
// of output endpoints).
func RenderToFile(g *graph.Graph, path string, sampleRate float64, maxBlockSize int, duration float64) error {
	channels, err := Render(g, sampleRate, maxBlockSize, duration)
	if err != nil {
		return err
	}
	return writeFloatWAV(path, channels, sampleRate)
}

func writeFloatWAV(path string, channels [][]float64, sampleRate float64) error {
	if len(channels) == 0 {
		return fmt.Errorf("runtime: graph has no output endpoints to render")
	}
	numFrames := len(channels[0])

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := wav.NewEncoder(file, int(sampleRate), 32, len(channels), wavFloatFormat)

	// go-audio/wav's Encoder.Write only accepts *audio.IntBuffer; for
	// 32-bit float PCM it writes each Data entry's low 32 bits verbatim,
	// so a float32 sample is carried through as its IEEE-754 bit pattern
	// reinterpreted as a signed int32.
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: int(sampleRate)},
		Data:           make([]int, numFrames*len(channels)),
		SourceBitDepth: 32,
	}
	for frame := 0; frame < numFrames; frame++ {
		for ch, samples := range channels {
			bits := math.Float32bits(float32(samples[frame]))
			buf.Data[frame*len(channels)+ch] = int(int32(bits))
		}
	}

	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
