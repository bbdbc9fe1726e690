// SPDX-License-Identifier: MIT

// Package signal implements the data model every processor and port in the
// graph engine is built on: the signal type tag, the fixed-length block
// buffer that carries one tag's worth of data for one render block, and the
// port spec that names and types a processor's inputs and outputs.
package signal

import "fmt"

// Tag identifies the kind of value a port or buffer carries. Connections
// between ports require matching tags; Dynamic acts as a wildcard checked
// at connect time.
type Tag int

const (
	Float Tag = iota
	Int
	Bool
	String
	List
	Midi
	Dynamic
	// Complex carries a frequency-domain bin buffer (complex128). It is
	// used exclusively by FFT-subgraph ports (spec §4.4); no top-level
	// port ever declares it.
	Complex
)

func (t Tag) String() string {
	switch t {
	case Float:
		return "Float"
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case List:
		return "List"
	case Midi:
		return "Midi"
	case Dynamic:
		return "Dynamic"
	case Complex:
		return "Complex"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// ParseTag converts a Tag's String() output back into a Tag, for
// deserializing persisted endpoint records (spec §6).
func ParseTag(name string) (Tag, error) {
	switch name {
	case "Float":
		return Float, nil
	case "Int":
		return Int, nil
	case "Bool":
		return Bool, nil
	case "String":
		return String, nil
	case "List":
		return List, nil
	case "Midi":
		return Midi, nil
	case "Dynamic":
		return Dynamic, nil
	case "Complex":
		return Complex, nil
	default:
		return 0, fmt.Errorf("signal: unknown tag %q", name)
	}
}

// Compatible reports whether a connection from an output of tag `src` to an
// input of tag `dst` is legal. Dynamic on either side always matches.
func Compatible(src, dst Tag) bool {
	if src == Dynamic || dst == Dynamic {
		return true
	}
	return src == dst
}

// ZeroValue returns the tag's zero representation, used to fill newly
// grown buffer slots and absent-as-default slots.
func ZeroValue(t Tag) any {
	switch t {
	case Float:
		return float64(0)
	case Int:
		return int64(0)
	case Bool:
		return false
	case String:
		return ""
	case List:
		return ([]any)(nil)
	case Midi:
		return ([]byte)(nil)
	case Dynamic:
		return nil
	case Complex:
		return complex(0, 0)
	default:
		return nil
	}
}
