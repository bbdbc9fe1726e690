// SPDX-License-Identifier: MIT
package graph

import "dspgraph/internal/signal"

// endpointProcessor implements the Endpoint node variant (spec §3): an
// identity passthrough for either an externally visible input or an
// externally visible output. For an input endpoint, Process copies the
// driver-populated External buffer into its sole output; the driver
// writes External before each block. For an output endpoint, Process
// copies its sole input into its sole output; the driver reads the
// output buffer after each block.
type endpointProcessor struct {
	tag      signal.Tag
	isInput  bool
	external *signal.Buffer // owned by the driver, for input endpoints only
}

func newInputEndpoint(tag signal.Tag) *endpointProcessor {
	return &endpointProcessor{tag: tag, isInput: true}
}

func newOutputEndpoint(tag signal.Tag) *endpointProcessor {
	return &endpointProcessor{tag: tag, isInput: false}
}

func (e *endpointProcessor) InputSpec() []signal.PortSpec {
	if e.isInput {
		return nil
	}
	return []signal.PortSpec{{Name: "in", Tag: e.tag}}
}

func (e *endpointProcessor) OutputSpec() []signal.PortSpec {
	return []signal.PortSpec{{Name: "out", Tag: e.tag}}
}

func (e *endpointProcessor) Allocate(sampleRate float64, maxBlockSize int) error {
	if e.isInput {
		e.external = signal.NewBuffer(e.tag, maxBlockSize)
	}
	return nil
}

func (e *endpointProcessor) Resize(sampleRate float64, blockSize int) error {
	if e.isInput {
		e.external.Resize(blockSize)
	}
	return nil
}

func (e *endpointProcessor) Process(ctx *Context, inputs []*signal.Buffer, outputs []*signal.Buffer) error {
	out := outputs[0]
	if e.isInput {
		return out.CopyFrom(e.external)
	}
	return out.CopyFrom(inputs[0])
}

// External returns the driver-writable buffer for an input endpoint. Not
// valid for output endpoints.
func (e *endpointProcessor) External() *signal.Buffer { return e.external }
