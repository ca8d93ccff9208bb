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

package pulse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/pulse"
)

func TestBufPool(t *testing.T) {
	pool, err := pulse.NewBufPool[float64](1024)
	assert.NoError(t, err)
	assert.NotNil(t, pool)

	buf := pool.Get()
	assert.Len(t, buf, 1024)

	buf1 := pool.Get()
	assert.Len(t, buf1, 1024)

	pool.Put(buf)
	pool.Put(buf1)

	again := pool.Get()
	assert.Len(t, again, 1024)
}

func TestBufPoolBadLength(t *testing.T) {
	_, err := pulse.NewBufPool[bool](0)
	assert.ErrorIs(t, err, pulse.ErrBufferTooSmall)
}

// vim: foldmethod=marker
