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

var (
	// ErrDuplicateName will be returned when registering a device or a
	// channel under a name that is already taken.
	ErrDuplicateName = fmt.Errorf("pulse: name is already registered")

	// ErrUnknownName will be returned when looking up a device or a channel
	// that was never registered.
	ErrUnknownName = fmt.Errorf("pulse: no such name")

	// ErrRateMismatch will be returned when a channel's sample rate does not
	// agree with its device's, or a sink's rate does not agree with the
	// device being streamed.
	ErrRateMismatch = fmt.Errorf("pulse: sample rates do not match")

	// ErrShortPulse will be returned when a requested pulse collapses to
	// less than one tick after rounding onto the sample clock grid.
	ErrShortPulse = fmt.Errorf("pulse: pulse is shorter than one clock period")

	// ErrCollision will be returned when a new instruction overlaps an
	// existing one by two or more ticks.
	ErrCollision = fmt.Errorf("pulse: instruction collides with an existing instruction")

	// ErrUnrepairable will be returned on a 1-tick rounding collision that
	// cannot be fixed by trimming, because the new pulse is itself only one
	// tick long.
	ErrUnrepairable = fmt.Errorf("pulse: 1-tick collision cannot be repaired by trimming")

	// ErrGoThisBeforeInstr will be returned when an instruction with no
	// specified duration is placed immediately before an existing
	// instruction.
	ErrGoThisBeforeInstr = fmt.Errorf("pulse: open-ended instruction placed right before another instruction")

	// ErrNoInstructions will be returned by operations that require at least
	// one instruction, channel or device to have been edited.
	ErrNoInstructions = fmt.Errorf("pulse: no instructions")

	// ErrStopBeforeLast will be returned when a requested stop or reset time
	// lands before the end of the last instruction.
	ErrStopBeforeLast = fmt.Errorf("pulse: stop position is before the last instruction end")

	// ErrWindowOutOfRange will be returned when a requested sample window is
	// empty or extends past the compiled stop position.
	ErrWindowOutOfRange = fmt.Errorf("pulse: sample window is out of range")

	// ErrBufferTooSmall will be returned when a caller-provided sample
	// buffer cannot hold the requested window.
	ErrBufferTooSmall = fmt.Errorf("pulse: sample buffer is too small")

	// ErrStaleCompile will be returned when an operation needs the compile
	// cache but the edit cache has changed since the last compile.
	ErrStaleCompile = fmt.Errorf("pulse: compile cache is stale, call Compile first")

	// ErrInconsistent will be returned (or paniced on, for internal
	// postcondition violations) when the active channels of one device
	// disagree on their compiled stop position.
	ErrInconsistent = fmt.Errorf("pulse: channels disagree on compiled stop position")

	// ErrShortWrite will be returned when a Writer accepts fewer samples
	// than it was handed.
	ErrShortWrite = fmt.Errorf("pulse: short write")
)

// vim: foldmethod=marker
