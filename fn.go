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

// Samp is the set of sample types a channel can produce. Analog output
// channels carry float64 samples, digital output channels carry bool
// samples. Everything above the sample level (instructions, channels,
// devices) is generic over this constraint.
type Samp interface {
	~float64 | ~bool
}

// Fn is a waveform generator. Given a read-only vector of time points
// (seconds) and a writable sample vector of the same length, Fill writes
// the sample value for each time point in place.
//
// Implementations must be immutable after construction: the compiler
// stores Fn values in compile caches and shares them across windows, and
// a future device materialization may evaluate channels on separate
// goroutines. A value that never changes is safe to share; do not keep
// mutable state inside a Fn.
type Fn[T Samp] interface {
	// Fill evaluates the function at every time in t, writing results
	// into out. len(t) == len(out) is the caller's responsibility.
	Fill(t []float64, out []T)
}

// constFn is the trivial Fn, used for padding gaps between instructions
// and for the Constant / GoHigh / GoLow shortcuts.
type constFn[T Samp] struct {
	val T
}

// Const returns a Fn that holds a fixed value regardless of time.
func Const[T Samp](val T) Fn[T] {
	return constFn[T]{val: val}
}

// Fill implements the Fn interface.
func (c constFn[T]) Fill(t []float64, out []T) {
	for i := range out {
		out[i] = c.val
	}
}

// String implements the fmt.Stringer interface.
func (c constFn[T]) String() string {
	return fmt.Sprintf("Const(%v)", c.val)
}

// evalAt evaluates fn at a single time point. init seeds the one-element
// result buffer; its value is irrelevant for any total function but it
// gives a well-defined sample type zero point.
func evalAt[T Samp](fn Fn[T], t float64, init T) T {
	tArr := [1]float64{t}
	res := [1]T{init}
	fn.Fill(tArr[:], res[:])
	return res[0]
}

// vim: foldmethod=marker
