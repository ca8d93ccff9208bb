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
	"math"

	"hz.tools/rf"
)

// roundTick converts a time in seconds to the nearest position on the
// sample clock grid of the given rate.
func roundTick(t float64, rate rf.Hz) uint64 {
	return uint64(math.Round(t * float64(rate)))
}

// tickTime converts a clock grid position back to seconds.
func tickTime(pos uint64, rate rf.Hz) float64 {
	return float64(pos) / float64(rate)
}

// fillLinspace writes len(dst) evenly spaced values from start to stop,
// both endpoints included. A single-element dst gets start.
func fillLinspace(dst []float64, start, stop float64) {
	n := len(dst)
	switch n {
	case 0:
		return
	case 1:
		dst[0] = start
		return
	}
	step := (stop - start) / float64(n-1)
	for i := range dst {
		dst[i] = start + float64(i)*step
	}
	// Pin the last point to avoid accumulated drift past stop.
	dst[n-1] = stop
}

// vim: foldmethod=marker
