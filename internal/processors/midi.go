// SPDX-License-Identifier: MIT
package processors

import (
	"dspgraph/internal/graph"
	"dspgraph/internal/signal"
)

// MidiNote extracts the note number (0-127) from a 3-byte MIDI message,
// presence-false when the message is absent or malformed.
type MidiNote struct{}

func (MidiNote) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "midi", Tag: signal.Midi}}
}
func (MidiNote) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "note", Tag: signal.Float}}
}
func (MidiNote) Allocate(float64, int) error { return nil }
func (MidiNote) Resize(float64, int) error   { return nil }
func (MidiNote) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0], outputs[0]
	midis, notes := in.Midis(), out.Floats()
	for i := range notes {
		msg := midis[i]
		if !in.Present(i) || len(msg) != 3 {
			out.SetAbsent(i)
			continue
		}
		notes[i] = float64(msg[1])
		out.SetPresent(i)
	}
	return nil
}

// MidiVelocity extracts the normalized (0.0-1.0) velocity from a 3-byte
// MIDI message.
type MidiVelocity struct{}

func (MidiVelocity) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "midi", Tag: signal.Midi}}
}
func (MidiVelocity) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "velocity", Tag: signal.Float}}
}
func (MidiVelocity) Allocate(float64, int) error { return nil }
func (MidiVelocity) Resize(float64, int) error   { return nil }
func (MidiVelocity) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0], outputs[0]
	midis, velocities := in.Midis(), out.Floats()
	for i := range velocities {
		msg := midis[i]
		if !in.Present(i) || len(msg) != 3 {
			out.SetAbsent(i)
			continue
		}
		velocities[i] = float64(msg[2]) / 127.0
		out.SetPresent(i)
	}
	return nil
}

// MidiChannel extracts the channel (0-15) from a 3-byte MIDI message's
// status byte, 0 when the message is absent or malformed.
type MidiChannel struct{}

func (MidiChannel) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "midi", Tag: signal.Midi}}
}
func (MidiChannel) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "channel", Tag: signal.Float}}
}
func (MidiChannel) Allocate(float64, int) error { return nil }
func (MidiChannel) Resize(float64, int) error   { return nil }
func (MidiChannel) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0], outputs[0]
	midis, channels := in.Midis(), out.Floats()
	for i := range channels {
		msg := midis[i]
		channels[i] = 0
		if in.Present(i) && len(msg) == 3 {
			channels[i] = float64(msg[0] & 0x0F)
		}
	}
	return nil
}

// IsNoteOn reports whether a 3-byte MIDI message is a note-on event
// (status high nibble 0x9 with nonzero velocity).
type IsNoteOn struct{}

func (IsNoteOn) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "midi", Tag: signal.Midi}}
}
func (IsNoteOn) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Bool}}
}
func (IsNoteOn) Allocate(float64, int) error { return nil }
func (IsNoteOn) Resize(float64, int) error   { return nil }
func (IsNoteOn) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0], outputs[0]
	midis, flags := in.Midis(), out.Bools()
	for i := range flags {
		msg := midis[i]
		flags[i] = in.Present(i) && len(msg) == 3 && msg[0]&0xF0 == 0x90 && msg[2] > 0
	}
	return nil
}

// IsNoteOff reports whether a 3-byte MIDI message is a note-off event
// (status high nibble 0x8, or a note-on with zero velocity per MIDI
// running-status convention).
type IsNoteOff struct{}

func (IsNoteOff) InputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "midi", Tag: signal.Midi}}
}
func (IsNoteOff) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: signal.Bool}}
}
func (IsNoteOff) Allocate(float64, int) error { return nil }
func (IsNoteOff) Resize(float64, int) error   { return nil }
func (IsNoteOff) Process(ctx *graph.Context, inputs, outputs []*signal.Buffer) error {
	in, out := inputs[0], outputs[0]
	midis, flags := in.Midis(), out.Bools()
	for i := range flags {
		msg := midis[i]
		if !in.Present(i) || len(msg) != 3 {
			flags[i] = false
			continue
		}
		status := msg[0] & 0xF0
		flags[i] = status == 0x80 || (status == 0x90 && msg[2] == 0)
	}
	return nil
}
