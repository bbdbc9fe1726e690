// SPDX-License-Identifier: MIT
package signal

import "fmt"

// ErrTagMismatch is returned by CopyFrom when the source and destination
// buffers carry different tags.
type ErrTagMismatch struct {
	Dst, Src Tag
}

func (e *ErrTagMismatch) Error() string {
	return fmt.Sprintf("signal: tag mismatch, dst=%s src=%s", e.Dst, e.Src)
}

// ErrLengthMismatch is returned by CopyFrom when buffer lengths disagree.
type ErrLengthMismatch struct {
	Dst, Src int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("signal: length mismatch, dst=%d src=%d", e.Dst, e.Src)
}

// Buffer is a fixed-length, single-tag block of storage: exactly one
// render block's worth of values for one port. Per-slot presence is
// tracked separately from the value so that event-like signals (message,
// midi) can distinguish "no value this frame" from "zero value this
// frame". Dense signals (float, int, bool audio/control streams) leave
// every slot present by default.
type Buffer struct {
	tag Tag

	floats  []float64
	ints    []int64
	bools   []bool
	strs    []string
	lists   [][]any
	midis   [][]byte
	dynamic []any
	complex []complex128

	// present is nil for an all-present buffer (the common case for
	// audio/control signals); allocated lazily the first time a slot is
	// marked absent.
	present []bool
}

// NewBuffer allocates a zeroed buffer of the given tag and length.
func NewBuffer(tag Tag, length int) *Buffer {
	b := &Buffer{tag: tag}
	b.grow(length)
	return b
}

func (b *Buffer) grow(length int) {
	switch b.tag {
	case Float:
		b.floats = growFloat(b.floats, length)
	case Int:
		b.ints = growInt(b.ints, length)
	case Bool:
		b.bools = growBool(b.bools, length)
	case String:
		b.strs = growString(b.strs, length)
	case List:
		b.lists = growList(b.lists, length)
	case Midi:
		b.midis = growMidi(b.midis, length)
	case Dynamic:
		b.dynamic = growDynamic(b.dynamic, length)
	case Complex:
		b.complex = growComplex(b.complex, length)
	}
	if b.present != nil {
		b.present = growBool(b.present, length)
	}
}

func growFloat(s []float64, n int) []float64 {
	if cap(s) >= n {
		old := len(s)
		s = s[:n]
		for i := old; i < n; i++ {
			s[i] = 0
		}
		return s
	}
	out := make([]float64, n)
	copy(out, s)
	return out
}

func growInt(s []int64, n int) []int64 {
	if cap(s) >= n {
		old := len(s)
		s = s[:n]
		for i := old; i < n; i++ {
			s[i] = 0
		}
		return s
	}
	out := make([]int64, n)
	copy(out, s)
	return out
}

func growBool(s []bool, n int) []bool {
	if cap(s) >= n {
		old := len(s)
		s = s[:n]
		for i := old; i < n; i++ {
			s[i] = false
		}
		return s
	}
	out := make([]bool, n)
	copy(out, s)
	return out
}

func growString(s []string, n int) []string {
	if cap(s) >= n {
		old := len(s)
		s = s[:n]
		for i := old; i < n; i++ {
			s[i] = ""
		}
		return s
	}
	out := make([]string, n)
	copy(out, s)
	return out
}

func growList(s [][]any, n int) [][]any {
	if cap(s) >= n {
		old := len(s)
		s = s[:n]
		for i := old; i < n; i++ {
			s[i] = nil
		}
		return s
	}
	out := make([][]any, n)
	copy(out, s)
	return out
}

func growMidi(s [][]byte, n int) [][]byte {
	if cap(s) >= n {
		old := len(s)
		s = s[:n]
		for i := old; i < n; i++ {
			s[i] = nil
		}
		return s
	}
	out := make([][]byte, n)
	copy(out, s)
	return out
}

func growComplex(s []complex128, n int) []complex128 {
	if cap(s) >= n {
		old := len(s)
		s = s[:n]
		for i := old; i < n; i++ {
			s[i] = 0
		}
		return s
	}
	out := make([]complex128, n)
	copy(out, s)
	return out
}

func growDynamic(s []any, n int) []any {
	if cap(s) >= n {
		old := len(s)
		s = s[:n]
		for i := old; i < n; i++ {
			s[i] = nil
		}
		return s
	}
	out := make([]any, n)
	copy(out, s)
	return out
}

// Tag returns the buffer's signal tag.
func (b *Buffer) Tag() Tag { return b.tag }

// Len returns the buffer's current block length.
func (b *Buffer) Len() int {
	switch b.tag {
	case Float:
		return len(b.floats)
	case Int:
		return len(b.ints)
	case Bool:
		return len(b.bools)
	case String:
		return len(b.strs)
	case List:
		return len(b.lists)
	case Midi:
		return len(b.midis)
	case Complex:
		return len(b.complex)
	default:
		return len(b.dynamic)
	}
}

// Resize changes the buffer's length, preserving the existing prefix and
// filling any newly added slots with the tag's zero value and "present".
// It never shrinks backing capacity, so it never allocates when the new
// length is within previously seen capacity.
func (b *Buffer) Resize(length int) {
	b.grow(length)
}

// FillConstant overwrites every slot with the given value (which must be
// the Go type the buffer's tag expects; see ZeroValue) and marks every
// slot present.
func (b *Buffer) FillConstant(v any) {
	switch b.tag {
	case Float:
		f, _ := v.(float64)
		for i := range b.floats {
			b.floats[i] = f
		}
	case Int:
		n, _ := v.(int64)
		for i := range b.ints {
			b.ints[i] = n
		}
	case Bool:
		bo, _ := v.(bool)
		for i := range b.bools {
			b.bools[i] = bo
		}
	case String:
		s, _ := v.(string)
		for i := range b.strs {
			b.strs[i] = s
		}
	case List:
		l, _ := v.([]any)
		for i := range b.lists {
			b.lists[i] = l
		}
	case Midi:
		m, _ := v.([]byte)
		for i := range b.midis {
			b.midis[i] = m
		}
	case Dynamic:
		for i := range b.dynamic {
			b.dynamic[i] = v
		}
	case Complex:
		c, _ := v.(complex128)
		for i := range b.complex {
			b.complex[i] = c
		}
	}
	b.clearPresence()
}

// clearPresence marks every slot present by discarding the presence
// bitset entirely (nil means "all present").
func (b *Buffer) clearPresence() {
	b.present = nil
}

// Present reports whether slot i carries a value this block.
func (b *Buffer) Present(i int) bool {
	if b.present == nil {
		return true
	}
	return b.present[i]
}

// SetAbsent marks slot i as carrying no value this block.
func (b *Buffer) SetAbsent(i int) {
	if b.present == nil {
		b.present = make([]bool, b.Len())
		for j := range b.present {
			b.present[j] = true
		}
	}
	b.present[i] = false
}

// SetPresent marks slot i as carrying a value this block.
func (b *Buffer) SetPresent(i int) {
	if b.present == nil {
		return
	}
	b.present[i] = true
}

// Floats returns the buffer's backing float slice. Valid only when
// Tag() == Float.
func (b *Buffer) Floats() []float64 { return b.floats }

// Ints returns the buffer's backing int slice. Valid only when
// Tag() == Int.
func (b *Buffer) Ints() []int64 { return b.ints }

// Bools returns the buffer's backing bool slice. Valid only when
// Tag() == Bool.
func (b *Buffer) Bools() []bool { return b.bools }

// Strings returns the buffer's backing string slice. Valid only when
// Tag() == String.
func (b *Buffer) Strings() []string { return b.strs }

// Lists returns the buffer's backing list-of-any slice. Valid only when
// Tag() == List.
func (b *Buffer) Lists() [][]any { return b.lists }

// Midis returns the buffer's backing raw-MIDI-event slice. Valid only
// when Tag() == Midi.
func (b *Buffer) Midis() [][]byte { return b.midis }

// Dynamics returns the buffer's backing any slice. Valid only when
// Tag() == Dynamic.
func (b *Buffer) Dynamics() []any { return b.dynamic }

// Complexes returns the buffer's backing complex128 slice, one bin per
// slot. Valid only when Tag() == Complex.
func (b *Buffer) Complexes() []complex128 { return b.complex }

// Map applies fn element-wise, writing fn(input[i]) into dst[i]. Both
// buffers must share Tag() == Float and equal length.
func MapFloat(dst, src *Buffer, fn func(float64) float64) error {
	if dst.tag != Float || src.tag != Float {
		return &ErrTagMismatch{Dst: dst.tag, Src: src.tag}
	}
	if dst.Len() != src.Len() {
		return &ErrLengthMismatch{Dst: dst.Len(), Src: src.Len()}
	}
	df, sf := dst.floats, src.floats
	for i := range df {
		df[i] = fn(sf[i])
	}
	return nil
}

// CopyFrom overwrites b's contents (values and presence) with src's. Both
// buffers must share the same tag and length.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if b.tag != src.tag {
		return &ErrTagMismatch{Dst: b.tag, Src: src.tag}
	}
	if b.Len() != src.Len() {
		return &ErrLengthMismatch{Dst: b.Len(), Src: src.Len()}
	}
	switch b.tag {
	case Float:
		copy(b.floats, src.floats)
	case Int:
		copy(b.ints, src.ints)
	case Bool:
		copy(b.bools, src.bools)
	case String:
		copy(b.strs, src.strs)
	case List:
		copy(b.lists, src.lists)
	case Midi:
		copy(b.midis, src.midis)
	case Dynamic:
		copy(b.dynamic, src.dynamic)
	case Complex:
		copy(b.complex, src.complex)
	}
	if src.present == nil {
		b.present = nil
	} else {
		b.present = growBool(b.present[:0], len(src.present))
		copy(b.present, src.present)
	}
	return nil
}
