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

// Shortcuts for driving digital lines. They are free functions rather
// than methods because Go methods cannot be restricted to one
// instantiation of a generic type.

// GoHigh drives the line high from time t until the next instruction or
// the global end.
func GoHigh(c *Channel[bool], t float64) error {
	return c.Constant(true, t, nil)
}

// GoLow drives the line low from time t until the next instruction or
// the global end.
func GoLow(c *Channel[bool], t float64) error {
	return c.Constant(false, t, nil)
}

// HighFor drives the line high for dur seconds starting at t, then
// returns it to the channel default.
func HighFor(c *Channel[bool], t, dur float64) error {
	return c.Constant(true, t, &DurSpec{Dur: dur})
}

// LowFor drives the line low for dur seconds starting at t, then
// returns it to the channel default.
func LowFor(c *Channel[bool], t, dur float64) error {
	return c.Constant(false, t, &DurSpec{Dur: dur})
}

// vim: foldmethod=marker
