// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"dspgraph/cmd"
	"dspgraph/internal/config"
	"dspgraph/internal/diagnostics"
	"dspgraph/internal/fftgraph"
	"dspgraph/internal/graph"
	"dspgraph/internal/log"
	"dspgraph/internal/processors"
	"dspgraph/internal/runtime"
	"dspgraph/internal/signal"
)

// The program flow is divided into three phases:
//
// 1. Startup (Cold Path): parse flags/config, handle one-off commands
//    that exit before any audio device is touched.
// 2. Concurrent Phase (Hot Path): build the graph, start the live
//    stream, block on a shutdown signal.
// 3. Shutdown (Cold Path): hand the stream back and exit.
func main() {
	cfg, err := cmd.ParseArgs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}
	if cfg.Debug {
		log.SetLevel(log.LevelDebug)
	}

	switch cfg.Command {
	case "list":
		if err := runList(); err != nil {
			log.Fatalf("%v", err)
		}
	default:
		if err := runLive(cfg); err != nil {
			log.Fatalf("%v", err)
		}
	}
}

func runList() error {
	devices, err := runtime.ListDevices()
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("No audio devices found.")
		return nil
	}
	fmt.Printf("\nAvailable Audio Devices (%d found)\n\n", len(devices))
	for _, d := range devices {
		fmt.Printf("[%d] %s\n", d.Index, d.Name)
		fmt.Printf("    Host API: %s\n", d.HostAPI)
		fmt.Printf("    Channels: Input=%d, Output=%d\n", d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Printf("    Default Sample Rate: %.0f Hz\n\n", d.DefaultSampleRate)
	}
	return nil
}

// runLive builds a silent passthrough graph, routed through a
// passthrough FFT subgraph so the live diagnostics stream has a
// magnitude spectrum to publish, and drives it live. Graph assembly is
// a library concern; this default graph exists only so the CLI has
// something to run end to end.
func runLive(cfg *config.Config) error {
	g := graph.NewGraph()
	out, err := g.AddOutputEndpoint("out", signal.Float)
	if err != nil {
		return err
	}
	silence, err := g.AddNode("silence", &processors.Constant{Value: 0})
	if err != nil {
		return err
	}

	sub, err := fftgraph.New(512, 128, fftgraph.Hann)
	if err != nil {
		return err
	}
	inID, err := sub.AddAudioInput("in")
	if err != nil {
		return err
	}
	outID, err := sub.AddAudioOutput("out")
	if err != nil {
		return err
	}
	passID, err := sub.AddProcessor("passthrough", &fftgraph.ComplexPassthrough{})
	if err != nil {
		return err
	}
	if err := sub.Connect(inID, 0, passID, 0); err != nil {
		return err
	}
	if err := sub.Connect(passID, 0, outID, 0); err != nil {
		return err
	}

	fftNode, err := g.AddNode("fft", sub)
	if err != nil {
		return err
	}
	if err := g.ConnectByName(silence, "out", fftNode, "in"); err != nil {
		return err
	}
	if err := g.ConnectByName(fftNode, "out", out, "in"); err != nil {
		return err
	}

	handle, err := runtime.RunLive(g, cfg.Graph)
	if err != nil {
		return fmt.Errorf("failed to start live stream: %w", err)
	}

	var broadcaster *diagnostics.Broadcaster
	if cfg.DiagnosticsAddr != "" {
		broadcaster = diagnostics.NewBroadcaster(cfg.DiagnosticsAddr)
		stop := pollMagnitudes(sub, broadcaster)
		defer stop()
		defer broadcaster.Close()
		log.Infof("Diagnostics websocket listening on %s/spectrum", cfg.DiagnosticsAddr)
	}

	log.Infof("Live stream started. Waiting for interrupt signal (Ctrl+C)...")
	quit := make(chan os.Signal, 1)
	ossignal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infof("Shutdown signal received, stopping stream...")
	handle.Stop()
	log.Infof("Stream stopped.")
	return nil
}

// pollMagnitudes publishes the FFT subgraph's magnitude spectrum to
// broadcaster at a fixed cadence until the returned stop function is
// called. Polling rather than hooking into Process keeps diagnostics
// entirely off the render thread, per internal/diagnostics' own
// constraint.
func pollMagnitudes(sub *fftgraph.Subgraph, broadcaster *diagnostics.Broadcaster) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mags, err := sub.Magnitudes(0)
				if err != nil {
					continue
				}
				broadcaster.Publish(mags)
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
