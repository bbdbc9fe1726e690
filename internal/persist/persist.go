// SPDX-License-Identifier: MIT

// Package persist implements self-describing YAML serialization of a
// graph's structure (spec §6): its endpoints, processor nodes tagged by
// kind, and edges. Transient runtime state, held in every processor's
// unexported fields, is excluded automatically since yaml.v3 only
// reflects over exported fields; nothing in this package filters it.
package persist

import (
	"fmt"
	"reflect"

	"dspgraph/internal/graph"
	"dspgraph/internal/processors"
	"dspgraph/internal/signal"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// EndpointRecord is the persisted form of a designated input or output
// endpoint.
type EndpointRecord struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Tag  string `yaml:"tag"`
}

// ProcessorRecord is the persisted form of one processor node: its
// identity, its kind string (resolved through registry at load time),
// and its exported construction parameters.
type ProcessorRecord struct {
	ID     string    `yaml:"id"`
	Name   string    `yaml:"name"`
	Kind   string    `yaml:"kind"`
	Params yaml.Node `yaml:"params,omitempty"`
}

// EdgeRecord is the persisted form of one connection, referencing nodes
// by their string-encoded ids.
type EdgeRecord struct {
	SourceID  string `yaml:"source_id"`
	SourceOut int    `yaml:"source_out"`
	TargetID  string `yaml:"target_id"`
	TargetIn  int    `yaml:"target_in"`
}

// Document is the full persisted form of a graph.
type Document struct {
	Inputs     []EndpointRecord  `yaml:"inputs"`
	Outputs    []EndpointRecord  `yaml:"outputs"`
	Processors []ProcessorRecord `yaml:"processors"`
	Edges      []EdgeRecord      `yaml:"edges"`
}

// registry maps a processor kind string to a constructor producing a
// zero-value instance of that kind, ready to have Params decoded into
// it. binaryOp/unaryOp/comparisonOp kinds (add, sub, less, ...) reuse
// the processors package's own New* constructors directly, since those
// already set the unexported comparison/arithmetic closure; only their
// exported Name field round-trips through yaml, which is a no-op since
// the constructor already set it to the same value.
var registry = map[string]func() graph.Processor{
	"add": processors.NewAdd, "sub": processors.NewSub,
	"mul": processors.NewMul, "div": processors.NewDiv,
	"rem": processors.NewRem, "powf": processors.NewPowf,
	"atan2": processors.NewAtan2, "hypot": processors.NewHypot,
	"min": processors.NewMin, "max": processors.NewMax,

	"neg": processors.NewNeg, "abs": processors.NewAbs,
	"sqrt": processors.NewSqrt, "cbrt": processors.NewCbrt,
	"ceil": processors.NewCeil, "floor": processors.NewFloor,
	"round": processors.NewRound, "trunc": processors.NewTrunc,
	"fract": processors.NewFract, "recip": processors.NewRecip,
	"signum": processors.NewSignum,
	"sin":    processors.NewSin, "cos": processors.NewCos, "tan": processors.NewTan,
	"asin": processors.NewAsin, "acos": processors.NewAcos, "atan": processors.NewAtan,
	"sinh": processors.NewSinh, "cosh": processors.NewCosh, "tanh": processors.NewTanh,
	"exp": processors.NewExp, "exp2": processors.NewExp2, "expm1": processors.NewExpM1,
	"ln": processors.NewLn, "log2": processors.NewLog2, "log10": processors.NewLog10,

	"less": processors.NewLess, "greater": processors.NewGreater,
	"equal": processors.NewEqual, "notequal": processors.NewNotEqual,
	"lessorequal": processors.NewLessOrEqual, "greaterorequal": processors.NewGreaterOrEqual,

	"Constant": func() graph.Processor { return &processors.Constant{} },

	"SineOscillator":   func() graph.Processor { return &processors.SineOscillator{} },
	"SawOscillator":    func() graph.Processor { return &processors.SawOscillator{} },
	"BlSawOscillator":  func() graph.Processor { return &processors.BlSawOscillator{} },
	"PulseOscillator":  func() graph.Processor { return &processors.PulseOscillator{} },
	"PhaseAccumulator": func() graph.Processor { return &processors.PhaseAccumulator{} },
	"NoiseOscillator":  func() graph.Processor { return &processors.NoiseOscillator{} },

	"Biquad":      func() graph.Processor { return &processors.Biquad{} },
	"AutoBiquad":  func() graph.Processor { return &processors.AutoBiquad{} },
	"MoogLadder":  func() graph.Processor { return &processors.MoogLadder{} },
	"PeakLimiter": func() graph.Processor { return &processors.PeakLimiter{} },

	"Metro":            func() graph.Processor { return &processors.Metro{} },
	"Counter":          func() graph.Processor { return &processors.Counter{} },
	"SampleAndHold":    func() graph.Processor { return &processors.SampleAndHold{} },
	"ConstSampleDelay": func() graph.Processor { return &processors.ConstSampleDelay{} },

	"Cond":   func() graph.Processor { return processors.Cond{} },
	"Select": func() graph.Processor { return &processors.Select{} },
	"Merge":  func() graph.Processor { return &processors.Merge{} },

	"Len":    func() graph.Processor { return processors.Len{} },
	"Get":    func() graph.Processor { return processors.Get{} },
	"Pack":   func() graph.Processor { return &processors.Pack{} },
	"Unpack": func() graph.Processor { return &processors.Unpack{} },

	"MidiNote":     func() graph.Processor { return processors.MidiNote{} },
	"MidiVelocity": func() graph.Processor { return processors.MidiVelocity{} },
	"MidiChannel":  func() graph.Processor { return processors.MidiChannel{} },
	"IsNoteOn":     func() graph.Processor { return processors.IsNoteOn{} },
	"IsNoteOff":    func() graph.Processor { return processors.IsNoteOff{} },

	"FloatToInt":      func() graph.Processor { return processors.FloatToInt{} },
	"IntToFloat":      func() graph.Processor { return processors.IntToFloat{} },
	"MessageToSample": func() graph.Processor { return &processors.MessageToSample{} },
	"Smooth":          func() graph.Processor { return &processors.Smooth{} },
	"Changed":         func() graph.Processor { return &processors.Changed{} },
	"ZeroCrossing":    func() graph.Processor { return &processors.ZeroCrossing{} },

	// Param's value lives in an atomic word with no exported field; like
	// oscillator phase, it is runtime state and is not persisted. A
	// reloaded Param always starts at zero.
	"Param": func() graph.Processor { return processors.NewParam(0) },
}

// kindOf resolves a processor instance to its registry kind string. A
// processor struct with an exported Name field (binaryOp, unaryOp,
// comparisonOp) is identified by that field's value; everything else is
// identified by its concrete type name.
func kindOf(proc graph.Processor) (string, error) {
	v := reflect.ValueOf(proc)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("persist: cannot identify kind of %T", proc)
	}
	if f := v.FieldByName("Name"); f.IsValid() && f.Kind() == reflect.String && f.String() != "" {
		return f.String(), nil
	}
	return v.Type().Name(), nil
}

// Save snapshots a graph's structure into a Document.
func Save(g *graph.Graph) (*Document, error) {
	doc := &Document{}

	for _, id := range g.NodeIDs() {
		kind, err := g.NodeKind(id)
		if err != nil {
			return nil, err
		}
		switch kind {
		case graph.KindInputEndpoint, graph.KindOutputEndpoint:
			tag, err := g.EndpointTag(id)
			if err != nil {
				return nil, err
			}
			rec := EndpointRecord{ID: id.String(), Name: g.NodeName(id), Tag: tag.String()}
			if kind == graph.KindInputEndpoint {
				doc.Inputs = append(doc.Inputs, rec)
			} else {
				doc.Outputs = append(doc.Outputs, rec)
			}
		case graph.KindProcessor:
			proc, err := g.NodeProcessor(id)
			if err != nil {
				return nil, err
			}
			procKind, err := kindOf(proc)
			if err != nil {
				return nil, err
			}
			var params yaml.Node
			if err := params.Encode(proc); err != nil {
				return nil, fmt.Errorf("persist: encoding params for node %q: %w", g.NodeName(id), err)
			}
			doc.Processors = append(doc.Processors, ProcessorRecord{
				ID:     id.String(),
				Name:   g.NodeName(id),
				Kind:   procKind,
				Params: params,
			})
		}
	}

	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeRecord{
			SourceID:  e.SourceNode.String(),
			SourceOut: e.SourceOut,
			TargetID:  e.TargetNode.String(),
			TargetIn:  e.TargetIn,
		})
	}

	return doc, nil
}

// Marshal renders a Document as YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// Unmarshal parses YAML into a Document.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("persist: parsing document: %w", err)
	}
	return &doc, nil
}

// Load reconstructs a graph from a Document. Old string ids are mapped
// to newly minted node ids as nodes are created.
func Load(doc *Document) (*graph.Graph, error) {
	g := graph.NewGraph()
	idMap := make(map[string]uuid.UUID, len(doc.Inputs)+len(doc.Outputs)+len(doc.Processors))

	for _, rec := range doc.Inputs {
		tag, err := signal.ParseTag(rec.Tag)
		if err != nil {
			return nil, fmt.Errorf("persist: input endpoint %q: %w", rec.Name, err)
		}
		id, err := g.AddInputEndpoint(rec.Name, tag)
		if err != nil {
			return nil, err
		}
		idMap[rec.ID] = id
	}

	for _, rec := range doc.Outputs {
		tag, err := signal.ParseTag(rec.Tag)
		if err != nil {
			return nil, fmt.Errorf("persist: output endpoint %q: %w", rec.Name, err)
		}
		id, err := g.AddOutputEndpoint(rec.Name, tag)
		if err != nil {
			return nil, err
		}
		idMap[rec.ID] = id
	}

	for _, rec := range doc.Processors {
		factory, ok := registry[rec.Kind]
		if !ok {
			return nil, fmt.Errorf("persist: unknown processor kind %q (node %q)", rec.Kind, rec.Name)
		}
		proc := factory()
		if v := reflect.ValueOf(proc); v.Kind() == reflect.Ptr && !isEmptyParams(&rec.Params) {
			if err := rec.Params.Decode(proc); err != nil {
				return nil, fmt.Errorf("persist: decoding params for node %q: %w", rec.Name, err)
			}
		}
		id, err := g.AddNode(rec.Name, proc)
		if err != nil {
			return nil, err
		}
		idMap[rec.ID] = id
	}

	for _, rec := range doc.Edges {
		src, ok := idMap[rec.SourceID]
		if !ok {
			return nil, fmt.Errorf("persist: edge references unknown source id %q", rec.SourceID)
		}
		dst, ok := idMap[rec.TargetID]
		if !ok {
			return nil, fmt.Errorf("persist: edge references unknown target id %q", rec.TargetID)
		}
		if err := g.Connect(src, rec.SourceOut, dst, rec.TargetIn); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func isEmptyParams(n *yaml.Node) bool {
	return n.Kind == 0 || (n.Kind == yaml.MappingNode && len(n.Content) == 0)
}
