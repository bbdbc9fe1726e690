// SPDX-License-Identifier: MIT
package runtime

import (
	"fmt"
	osruntime "runtime"

	"dspgraph/internal/config"
	"dspgraph/internal/graph"
	"dspgraph/internal/log"

	"github.com/gordonklaus/portaudio"
)

// Handle lets an external thread stop a running live stream (spec §5).
// Stopping transfers ownership of the graph back through the handback
// channel so it may be reused or inspected.
type Handle struct {
	kill     chan struct{}
	handback chan *graph.Graph
}

// Stop signals the audio thread to tear down the stream and blocks
// until it hands the graph back. Callers can expect millisecond-scale
// latency (spec §5).
func (h *Handle) Stop() *graph.Graph {
	close(h.kill)
	return <-h.handback
}

// RunLive opens an audio device per cfg's backend/device selectors,
// matches its output channel count against g's output endpoint count
// (a mismatch is a fatal setup error per spec §4.5/§6), and installs a
// callback that resizes g only when the host's block size changes,
// runs one Process per callback, and copies each output endpoint's
// samples into the device's interleaved frame slots.
func RunLive(g *graph.Graph, cfg config.GraphConfig) (*Handle, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &graph.SetupError{Reason: "failed to initialize audio backend", Err: err}
	}

	device, err := resolveDevice(cfg.Backend, cfg.Device)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	outputs := g.OutputEndpoints()
	channels := len(outputs)
	// A device with spare output channels is fine; only too few is fatal.
	if device.MaxOutputChannels < channels {
		portaudio.Terminate()
		return nil, &graph.SetupError{Reason: fmt.Sprintf(
			"device %q supports %d output channels, graph has %d output endpoints",
			device.Name, device.MaxOutputChannels, channels)}
	}

	if err := g.Allocate(cfg.SampleRate, cfg.MaxBlockSize); err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if err := g.Resize(cfg.SampleRate, cfg.BlockSize); err != nil {
		portaudio.Terminate()
		return nil, err
	}

	lastBlockSize := cfg.BlockSize
	sampleRate := cfg.SampleRate

	callback := func(out []float32) {
		osruntime.LockOSThread()
		defer osruntime.UnlockOSThread()

		frames := len(out) / channels
		if frames != lastBlockSize {
			if err := g.Resize(sampleRate, frames); err != nil {
				log.Errorf("runtime: resize to block size %d failed: %v", frames, err)
				return
			}
			lastBlockSize = frames
		}
		if err := g.Process(graph.TopLevel); err != nil {
			log.Errorf("runtime: process error: %v", err)
			return
		}
		for ch, id := range outputs {
			buf, err := g.OutputBuffer(id, 0)
			if err != nil {
				log.Errorf("runtime: output buffer for endpoint %d: %v", ch, err)
				continue
			}
			floats := buf.Floats()
			for i := 0; i < frames; i++ {
				out[i*channels+ch] = float32(floats[i])
			}
		}
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Channels: channels,
			Device:   device,
			Latency:  device.DefaultLowOutputLatency,
		},
		FramesPerBuffer: cfg.BlockSize,
		SampleRate:      cfg.SampleRate,
	}
	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		portaudio.Terminate()
		return nil, &graph.SetupError{Reason: "failed to open output stream", Err: err}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, &graph.SetupError{Reason: "failed to start output stream", Err: err}
	}

	kill := make(chan struct{})
	handback := make(chan *graph.Graph, 1)

	go func() {
		<-kill
		if err := stream.Stop(); err != nil {
			log.Errorf("runtime: stream stop: %v", err)
		}
		if err := stream.Close(); err != nil {
			log.Errorf("runtime: stream close: %v", err)
		}
		portaudio.Terminate()
		handback <- g
	}()

	return &Handle{kill: kill, handback: handback}, nil
}
