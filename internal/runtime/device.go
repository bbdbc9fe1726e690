// SPDX-License-Identifier: MIT

// Package runtime implements the runtime driver (spec §4.5): offline
// render, offline-to-file WAV muxing, and live playback through a host
// audio device, plus the kill/handback handshake that lets an outer
// thread stop a live stream (spec §5).
package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"dspgraph/internal/graph"

	"github.com/gordonklaus/portaudio"
)

// Device describes one enumerated host audio device, independent of
// the portaudio binding, for listing and diagnostics.
type Device struct {
	Index             int
	Name              string
	HostAPI           string
	MaxOutputChannels int
	MaxInputChannels  int
	DefaultSampleRate float64
}

// ListDevices enumerates every device the host backend exposes.
// PortAudio must not already be initialized by the caller.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &graph.SetupError{Reason: "failed to initialize audio backend", Err: err}
	}
	defer portaudio.Terminate()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, &graph.SetupError{Reason: "failed to enumerate devices", Err: err}
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		hostAPI := "unknown"
		if info.HostApi != nil {
			hostAPI = info.HostApi.Name
		}
		devices[i] = Device{
			Index:             i,
			Name:              info.Name,
			HostAPI:           hostAPI,
			MaxOutputChannels: info.MaxOutputChannels,
			MaxInputChannels:  info.MaxInputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}
	return devices, nil
}

// resolveDevice selects a portaudio.DeviceInfo matching the
// "backend"/"device" configuration surface (spec §6): backend narrows
// the candidate list by host API name (default accepts every backend),
// device then picks one of default/index(n)/name(substring) among the
// survivors. Candidates with zero output channels are never selected.
func resolveDevice(backend, device string) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, &graph.SetupError{Reason: "failed to enumerate devices", Err: err}
	}

	var candidates []*portaudio.DeviceInfo
	backend = strings.ToLower(strings.TrimSpace(backend))
	for _, info := range infos {
		if info.MaxOutputChannels == 0 {
			continue
		}
		if backend == "" || backend == "default" {
			candidates = append(candidates, info)
			continue
		}
		if info.HostApi != nil && strings.Contains(strings.ToLower(info.HostApi.Name), backend) {
			candidates = append(candidates, info)
		}
	}
	if len(candidates) == 0 {
		return nil, &graph.SetupError{Reason: fmt.Sprintf("no output-capable device on backend %q", backend)}
	}

	device = strings.TrimSpace(device)
	switch {
	case device == "" || device == "default":
		def, err := portaudio.DefaultOutputDevice()
		if err == nil {
			for _, c := range candidates {
				if c.Name == def.Name {
					return c, nil
				}
			}
		}
		return candidates[0], nil

	case strings.HasPrefix(device, "index(") && strings.HasSuffix(device, ")"):
		n, err := strconv.Atoi(device[len("index(") : len(device)-1])
		if err != nil {
			return nil, &graph.SetupError{Reason: fmt.Sprintf("malformed device selector %q", device), Err: err}
		}
		if n < 0 || n >= len(infos) {
			return nil, &graph.SetupError{Reason: fmt.Sprintf("device index %d out of range (0..%d)", n, len(infos)-1)}
		}
		if infos[n].MaxOutputChannels == 0 {
			return nil, &graph.SetupError{Reason: fmt.Sprintf("device %d (%s) has no output channels", n, infos[n].Name)}
		}
		return infos[n], nil

	case strings.HasPrefix(device, "name(") && strings.HasSuffix(device, ")"):
		substr := strings.ToLower(device[len("name(") : len(device)-1])
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c.Name), substr) {
				return c, nil
			}
		}
		return nil, &graph.SetupError{Reason: fmt.Sprintf("no output device matching %q on backend %q", substr, backend)}

	default:
		return nil, &graph.SetupError{Reason: fmt.Sprintf("unrecognized device selector %q (want default, index(n), or name(substring))", device)}
	}
}
