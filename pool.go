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
	"sync"
)

// BufPool creates a dynamically sized pool of sample buffers of a fixed
// length. This lets the streaming loop reuse window buffers instead of
// allocating one per window.
//
// Under the hood this is a sync.Pool with type-safe hooks to make it
// a bit more ergonomic to use.
type BufPool[T Samp] struct {
	pool *sync.Pool
}

// NewBufPool creates a pool handing out buffers of the given length.
func NewBufPool[T Samp](length int) (*BufPool[T], error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: pool buffer length must be at least 1, got %d", ErrBufferTooSmall, length)
	}
	return &BufPool[T]{
		pool: &sync.Pool{
			New: func() interface{} {
				return make([]T, length)
			},
		},
	}, nil
}

// Get will either return an unused buffer, or allocate a new one for
// your use.
func (p *BufPool[T]) Get() []T {
	return p.pool.Get().([]T)
}

// Put returns a buffer to the pool.
func (p *BufPool[T]) Put(buf []T) {
	p.pool.Put(buf)
}

// vim: foldmethod=marker
