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
	"errors"
	"fmt"
	"math"

	"hz.tools/rf"
)

// Device groups the channels driven by one sample clock: one output
// task on one physical card. Channels are kept in insertion order,
// which is also the row order of materialized sample buffers.
//
// The clock, trigger and reference-clock wiring of the card is carried
// as an opaque HardwareConfig for the driver layer; the compiler never
// reads it.
type Device[T Samp] struct {
	name     string
	sampRate rf.Hz
	cfg      HardwareConfig

	order []string
	chans map[string]*Channel[T]
}

// NewDevice creates a device. Panics on a non-positive sample rate.
func NewDevice[T Samp](name string, sampRate rf.Hz, cfg HardwareConfig) *Device[T] {
	if sampRate <= 0 {
		panic(fmt.Sprintf("pulse: device %q given non-positive sample rate %v", name, sampRate))
	}
	return &Device[T]{
		name:     name,
		sampRate: sampRate,
		cfg:      cfg,
		chans:    map[string]*Channel[T]{},
	}
}

// NewAODevice creates an analog-output device.
func NewAODevice(name string, sampRate rf.Hz, cfg HardwareConfig) *Device[float64] {
	return NewDevice[float64](name, sampRate, cfg)
}

// NewDODevice creates a digital-output device.
func NewDODevice(name string, sampRate rf.Hz, cfg HardwareConfig) *Device[bool] {
	return NewDevice[bool](name, sampRate, cfg)
}

// Name returns the device name as seen by the driver.
func (d *Device[T]) Name() string {
	return d.name
}

// SampRate returns the device sample clock rate.
func (d *Device[T]) SampRate() rf.Hz {
	return d.sampRate
}

// ClkPeriod returns one sample clock period in seconds.
func (d *Device[T]) ClkPeriod() float64 {
	return 1.0 / float64(d.sampRate)
}

// Config returns the opaque driver configuration the device was
// created with.
func (d *Device[T]) Config() HardwareConfig {
	return d.cfg
}

// AddChan registers a channel. The channel's sample rate must agree
// with the device's and its name must be unused on this device.
func (d *Device[T]) AddChan(ch *Channel[T]) error {
	if math.Abs(float64(ch.SampRate()-d.sampRate)) >= 1e-10 {
		return fmt.Errorf(
			"%w: cannot add channel %s with samp_rate=%v to device %s with samp_rate=%v",
			ErrRateMismatch, ch.Name(), ch.SampRate(), d.name, d.sampRate,
		)
	}
	if _, ok := d.chans[ch.Name()]; ok {
		return fmt.Errorf(
			"%w: device %s already has a channel named %s (registered: %v)",
			ErrDuplicateName, d.name, ch.Name(), d.order,
		)
	}
	d.chans[ch.Name()] = ch
	d.order = append(d.order, ch.Name())
	return nil
}

// Chan returns the named channel.
func (d *Device[T]) Chan(name string) (*Channel[T], error) {
	ch, ok := d.chans[name]
	if !ok {
		return nil, fmt.Errorf(
			"%w: device %s has no channel %s (registered: %v)",
			ErrUnknownName, d.name, name, d.order,
		)
	}
	return ch, nil
}

// Chans returns every channel in insertion order.
func (d *Device[T]) Chans() []*Channel[T] {
	out := make([]*Channel[T], 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.chans[name])
	}
	return out
}

// ActiveChans returns the channels with a non-empty edit cache, in
// insertion order. Compilation and sample generation operate on these
// only.
func (d *Device[T]) ActiveChans() []*Channel[T] {
	out := make([]*Channel[T], 0, len(d.order))
	for _, name := range d.order {
		if ch := d.chans[name]; ch.GotInstructions() {
			out = append(out, ch)
		}
	}
	return out
}

// GotInstructions reports whether any channel is active.
func (d *Device[T]) GotInstructions() bool {
	for _, ch := range d.chans {
		if ch.GotInstructions() {
			return true
		}
	}
	return false
}

// LastInstrEndPos returns the largest effective instruction end tick
// across all channels, or 0 when nothing has been edited.
func (d *Device[T]) LastInstrEndPos() uint64 {
	var last uint64
	for _, ch := range d.chans {
		if pos, ok := ch.LastInstrEndPos(); ok && pos > last {
			last = pos
		}
	}
	return last
}

// LastInstrEndTime is LastInstrEndPos in seconds.
func (d *Device[T]) LastInstrEndTime() float64 {
	return tickTime(d.LastInstrEndPos(), d.sampRate)
}

// endClipped reports whether stopTick lands exactly on the explicit end
// of some channel's last instruction. Open-ended last instructions have
// no closing edge to protect and never count.
func (d *Device[T]) endClipped(stopTick uint64) bool {
	for _, ch := range d.chans {
		if !ch.GotInstructions() {
			continue
		}
		instrs := ch.Instrs()
		last := instrs[len(instrs)-1]
		if end, ok := last.End(); ok && end.EndPos == stopTick {
			return true
		}
	}
	return false
}

// Compile compiles every active channel up to a common stop position
// derived from stopTime.
//
// If the rounded stop tick coincides with the explicit end of some
// channel's last instruction, the device compiles one tick longer so
// the card materializes the sample right after the pulse. Without that
// extra sample, generation stops on the last in-pulse value and the
// pulse never gets its closing edge; NI cards, for one, simply hold the
// last generated value.
func (d *Device[T]) Compile(stopTime float64) error {
	if !d.GotInstructions() {
		return fmt.Errorf("%w: device %s has no instructions to compile", ErrNoInstructions, d.name)
	}
	stopTick := roundTick(stopTime, d.sampRate)
	if last := d.LastInstrEndPos(); stopTick < last {
		return fmt.Errorf(
			"%w: [dev %s] requested stop time %v s rounded to %d clock periods, below the last instruction end %d",
			ErrStopBeforeLast, d.name, stopTime, stopTick, last,
		)
	}

	stopPos := stopTick
	if d.endClipped(stopTick) {
		stopPos = stopTick + 1
	}

	for _, ch := range d.ActiveChans() {
		if err := ch.Compile(stopPos); err != nil {
			return fmt.Errorf("[dev %s] %w", d.name, err)
		}
	}
	return nil
}

// CompiledStopPos returns the common stop tick of the device's compiled
// channels, or 0 when nothing is compiled.
//
// Panics when compiled channels disagree: channels of one device are
// driven by one clock and must be compiled together through
// Device.Compile, so disagreement means someone compiled a channel
// directly.
func (d *Device[T]) CompiledStopPos() uint64 {
	var (
		found bool
		stop  uint64
	)
	for _, name := range d.order {
		ch := d.chans[name]
		ends := ch.CompileCacheEnds()
		if len(ends) == 0 {
			continue
		}
		chStop := ends[len(ends)-1]
		if !found {
			found, stop = true, chStop
			continue
		}
		if chStop != stop {
			panic(fmt.Sprintf(
				"pulse: channels of device %s have unequal compiled stop positions (%d vs %d on %s); compile through Device.Compile, not channel by channel",
				d.name, stop, chStop, ch.Name(),
			))
		}
	}
	return stop
}

// CompiledStopTime is CompiledStopPos in seconds.
func (d *Device[T]) CompiledStopTime() float64 {
	return tickTime(d.CompiledStopPos(), d.sampRate)
}

// ValidateCompileCache checks that the device is ready for sample
// materialization: it is active, every active channel is
// fresh-compiled, and all active channels agree on the stop position.
// All failures are aggregated into one error.
func (d *Device[T]) ValidateCompileCache() error {
	active := d.ActiveChans()
	if len(active) == 0 {
		return fmt.Errorf("%w: device %s has no active channels", ErrNoInstructions, d.name)
	}
	var errs []error
	for _, ch := range active {
		if err := ch.ValidateCompileCache(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	var stop uint64
	for i, ch := range active {
		chStop := ch.CompiledStopPos()
		if i == 0 {
			stop = chStop
			continue
		}
		if chStop != stop {
			errs = append(errs, fmt.Errorf(
				"%w: device %s: channel %s stops at %d, expected %d",
				ErrInconsistent, d.name, ch.Name(), chStop, stop,
			))
		}
	}
	return errors.Join(errs...)
}

// CalcSamps materializes the tick window [startPos, endPos) for every
// active channel into buf.
//
// The layout is row-major per channel: buf holds channel 0's full
// window, then channel 1's, in ActiveChans order. buf must hold at
// least nChans*(endPos-startPos) samples. The window time vector is
// computed once and shared read-only by every channel, so all channels
// sample identical time points.
//
// This runs during streaming, against a live driver connection: it
// validates everything and returns errors, it does not panic.
func (d *Device[T]) CalcSamps(buf []T, startPos, endPos uint64) error {
	if err := d.ValidateCompileCache(); err != nil {
		return err
	}
	stop := d.CompiledStopPos()
	if endPos < startPos+1 {
		return fmt.Errorf(
			"%w: [dev %s] requested window [%d, %d) must hold at least one sample",
			ErrWindowOutOfRange, d.name, startPos, endPos,
		)
	}
	if endPos > stop {
		return fmt.Errorf(
			"%w: [dev %s] requested end_pos %d is beyond the compiled stop position %d",
			ErrWindowOutOfRange, d.name, endPos, stop,
		)
	}

	active := d.ActiveChans()
	n := int(endPos - startPos)
	if len(buf) < len(active)*n {
		return fmt.Errorf(
			"%w: [dev %s] buffer holds %d samples, window needs %d chans * %d samps = %d",
			ErrBufferTooSmall, d.name, len(buf), len(active), n, len(active)*n,
		)
	}

	t := make([]float64, n)
	fillLinspace(t, float64(startPos)*d.ClkPeriod(), float64(endPos-1)*d.ClkPeriod())

	for k, ch := range active {
		if err := ch.FillSamps(startPos, buf[k*n:(k+1)*n], t); err != nil {
			return fmt.Errorf("[dev %s] %w", d.name, err)
		}
	}
	return nil
}

// AddResetInstr inserts a reset instruction at resetTime on every
// channel of the device, active or not, so the whole card settles to
// its reset values.
func (d *Device[T]) AddResetInstr(resetTime float64) error {
	resetPos := roundTick(resetTime, d.sampRate)
	if last := d.LastInstrEndPos(); resetPos < last {
		return fmt.Errorf(
			"%w: [dev %s] reset time %v s rounded to %d clock periods, below the last instruction end %d",
			ErrStopBeforeLast, d.name, resetTime, resetPos, last,
		)
	}
	for _, name := range d.order {
		if err := d.chans[name].AddResetInstr(resetPos); err != nil {
			return fmt.Errorf("[dev %s] %w", d.name, err)
		}
	}
	return nil
}

// ClearEditCache clears the edit (and with it compile) caches of every
// channel.
func (d *Device[T]) ClearEditCache() {
	for _, ch := range d.chans {
		ch.ClearEditCache()
	}
}

// ClearCompileCache clears the compile caches of every channel.
func (d *Device[T]) ClearCompileCache() {
	for _, ch := range d.chans {
		ch.ClearCompileCache()
	}
}

// vim: foldmethod=marker
