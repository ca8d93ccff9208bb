// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2023
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package pulse

import (
	"fmt"
)

// EndSpec is the explicit end of an instruction interval.
//
// EndPos is exclusive: the sample at the EndPos tick is not covered by
// the instruction, it belongs to the next instruction or to padding.
// KeepVal selects what that padding holds if there is a gap until the
// next edge: the instruction's value at EndPos (true) or the channel
// default (false).
type EndSpec struct {
	EndPos  uint64
	KeepVal bool
}

// DurSpec is the duration of a pulse passed to Channel.AddInstr, in
// seconds. KeepVal has the same meaning as in EndSpec. A nil *DurSpec
// means "run until the next instruction or the global end".
type DurSpec struct {
	Dur     float64
	KeepVal bool
}

// Instr is one instruction interval on a channel's edit cache: a
// waveform function, an inclusive start tick, and an optional explicit
// end. Instructions are ordered by start tick alone.
//
// An instruction with no EndSpec ("go-this") holds its function until
// the next instruction or the compile stop position. Its effective end,
// the earliest tick any later instruction may start on, is startPos+1:
// it needs at least one tick to have any effect.
type Instr[T Samp] struct {
	startPos uint64
	end      *EndSpec
	fn       Fn[T]
}

// NewInstr builds an instruction interval. end may be nil for a
// "go-this" instruction. Panics if the explicit end does not leave room
// for at least one tick; user-facing paths validate durations before
// ever getting here, so tripping this is a bug in the caller.
func NewInstr[T Samp](startPos uint64, end *EndSpec, fn Fn[T]) *Instr[T] {
	if fn == nil {
		panic("pulse: NewInstr called with a nil Fn")
	}
	if end != nil {
		if end.EndPos < startPos+1 {
			panic(fmt.Sprintf(
				"pulse: instruction must satisfy start_pos+1 <= end_pos, got start_pos=%d end_pos=%d",
				startPos, end.EndPos,
			))
		}
		e := *end
		end = &e
	}
	return &Instr[T]{startPos: startPos, end: end, fn: fn}
}

// StartPos returns the inclusive start tick.
func (in *Instr[T]) StartPos() uint64 {
	return in.startPos
}

// End returns the explicit end spec, if the instruction has one.
func (in *Instr[T]) End() (EndSpec, bool) {
	if in.end == nil {
		return EndSpec{}, false
	}
	return *in.end, true
}

// EffEndPos returns the explicit end position, or startPos+1 for a
// "go-this" instruction.
func (in *Instr[T]) EffEndPos() uint64 {
	if in.end == nil {
		return in.startPos + 1
	}
	return in.end.EndPos
}

// Dur returns the instruction length in ticks, if it has an explicit
// end.
func (in *Instr[T]) Dur() (uint64, bool) {
	if in.end == nil {
		return 0, false
	}
	return in.end.EndPos - in.startPos, true
}

// Fn returns the waveform function carried by this instruction.
func (in *Instr[T]) Fn() Fn[T] {
	return in.fn
}

// String implements the fmt.Stringer interface.
func (in *Instr[T]) String() string {
	if in.end == nil {
		return fmt.Sprintf("Instr(fn=%v, start_pos=%d, no specified end)", in.fn, in.startPos)
	}
	return fmt.Sprintf(
		"Instr(fn=%v, start_pos=%d, end_pos=%d, keep_val=%v)",
		in.fn, in.startPos, in.end.EndPos, in.end.KeepVal,
	)
}

// vim: foldmethod=marker
