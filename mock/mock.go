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

// Package mock provides an in-memory sample sink standing in for a
// hardware driver binding, for use in tests and examples.
package mock

import (
	"sync"

	"hz.tools/pulse"
	"hz.tools/rf"
)

// Sink is a pulse.Writer that records everything written to it.
type Sink[T pulse.Samp] struct {
	mu       sync.Mutex
	sampRate rf.Hz
	limit    int
	samps    []T
}

// NewSink creates a sink consuming at the given rate with no capacity
// limit.
func NewSink[T pulse.Samp](sampRate rf.Hz) *Sink[T] {
	return &Sink[T]{sampRate: sampRate, limit: -1}
}

// NewSinkLimit creates a sink that accepts at most limit samples in
// total and short-writes past it, for exercising error paths.
func NewSinkLimit[T pulse.Samp](sampRate rf.Hz, limit int) *Sink[T] {
	return &Sink[T]{sampRate: sampRate, limit: limit}
}

// Write implements the pulse.Writer interface.
func (s *Sink[T]) Write(buf []T) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(buf)
	if s.limit >= 0 && len(s.samps)+n > s.limit {
		n = s.limit - len(s.samps)
		if n < 0 {
			n = 0
		}
	}
	s.samps = append(s.samps, buf[:n]...)
	return n, nil
}

// SampleRate implements the pulse.Writer interface.
func (s *Sink[T]) SampleRate() rf.Hz {
	return s.sampRate
}

// Samples returns a copy of everything written so far.
func (s *Sink[T]) Samples() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, len(s.samps))
	copy(out, s.samps)
	return out
}

// vim: foldmethod=marker
