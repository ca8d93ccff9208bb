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
	"github.com/stretchr/testify/require"

	"hz.tools/pulse"
	"hz.tools/rf"
)

func TestDigitalPulseTrain(t *testing.T) {
	line := pulse.NewChannel("port0/line0", rf.Hz(100), false, false)

	require.NoError(t, pulse.HighFor(line, 0.0, 0.5))
	require.NoError(t, pulse.LowFor(line, 0.5, 0.25))
	require.NoError(t, pulse.GoHigh(line, 1.0))
	require.NoError(t, line.Compile(200))

	res := make([]bool, 200)
	tArr := make([]float64, 200)
	for i := range tArr {
		tArr[i] = float64(i) / 100.0
	}
	require.NoError(t, line.FillSamps(0, res, tArr))

	assert.True(t, res[0])
	assert.True(t, res[49])
	assert.False(t, res[50]) // explicit low pulse
	assert.False(t, res[74])
	assert.False(t, res[75]) // gap padding at channel default
	assert.False(t, res[99])
	assert.True(t, res[100]) // go-high holds to the end
	assert.True(t, res[199])
}

func TestDigitalGoLow(t *testing.T) {
	line := pulse.NewChannel("port0/line1", rf.Hz(100), true, false)

	require.NoError(t, pulse.GoLow(line, 0.5))
	require.NoError(t, line.Compile(100))

	v, err := line.EvalPoint(0.2)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = line.EvalPoint(0.7)
	require.NoError(t, err)
	assert.False(t, v)
}

// vim: foldmethod=marker
