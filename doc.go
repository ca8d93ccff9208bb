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

// Package pulse compiles timed waveform instructions into dense,
// tick-aligned sample streams for multi-channel, multi-device
// hardware-synchronized signal generation.
//
// Users describe an experiment by adding pulses, either constant or
// function-valued, to named channels on named devices. A Streamer owns
// the devices, a Device owns channels sharing one sample clock, and a
// Channel owns the instructions placed on it. Compilation turns the
// sparse, overlap-checked instruction intervals of every channel into a
// contiguous run of (end tick, function) pairs covering [0, stop), and
// sample materialization evaluates those functions over streaming
// windows on demand. Nothing is expanded to samples until a window asks
// for them.
//
// This package contains no hardware I/O. A driver binding (NI-DAQmx or
// similar) is expected to sit on top of it, pulling windows via
// Device.CalcSamps or the Stream helper and pushing them to the card.
//
// The sample type is generic: analog output devices are Device[float64]
// and digital output devices are Device[bool]. Both share the same
// compilation logic.
package pulse // import "hz.tools/pulse"

// vim: foldmethod=marker
