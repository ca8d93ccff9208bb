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
	"hz.tools/rf"
)

// Writer is where materialized sample windows go: typically the buffer
// write of a hardware driver binding, or an in-memory sink in tests.
type Writer[T Samp] interface {
	// Write consumes a window of samples, returning how many it
	// accepted and any error. Accepting fewer than len(buf) samples
	// without an error is a short write.
	Write(buf []T) (int, error)

	// SampleRate returns the number of samples per second this sink
	// consumes at.
	SampleRate() rf.Hz
}

type multiWriter[T Samp] struct {
	writers  []Writer[T]
	sampRate rf.Hz
}

// MultiWriter creates a writer that duplicates its writes to all the
// provided writers, similar to the Unix tee(1) command, or
// io.MultiWriter. Useful for feeding a driver and a capture sink the
// same windows.
func MultiWriter[T Samp](sampRate rf.Hz, writers ...Writer[T]) Writer[T] {
	allWriters := make([]Writer[T], 0, len(writers))
	for _, w := range writers {
		if mw, ok := w.(*multiWriter[T]); ok {
			allWriters = append(allWriters, mw.writers...)
		} else {
			allWriters = append(allWriters, w)
		}
	}
	return &multiWriter[T]{
		sampRate: sampRate,
		writers:  allWriters,
	}
}

// SampleRate implements the Writer interface.
func (mw *multiWriter[T]) SampleRate() rf.Hz {
	return mw.sampRate
}

// Write implements the Writer interface.
func (mw *multiWriter[T]) Write(buf []T) (int, error) {
	var (
		i   int
		err error
	)

	for _, w := range mw.writers {
		i, err = w.Write(buf)
		if err != nil {
			return i, err
		}
		if i != len(buf) {
			return i, ErrShortWrite
		}
	}
	return len(buf), nil
}

// vim: foldmethod=marker
