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
	"math"
	"sort"

	"github.com/tidwall/btree"

	"hz.tools/rf"
)

// Channel is one physical output line on a device: a name as the driver
// sees it (for instance "ao0" or "port0/line0"), the device sample
// rate, and two caches.
//
// The edit cache is a sorted set of instruction intervals, ordered by
// start tick, kept free of overlaps at insertion time. The compile
// cache is the dense form produced by Compile: parallel vectors of end
// ticks and functions covering [0, stop) with no gaps. Queries
// (FillSamps, CalcNSamps, EvalPoint) read the caches, they never
// mutate.
type Channel[T Samp] struct {
	name     string
	sampRate rf.Hz
	dfltVal  T
	rstVal   T

	instrs *btree.BTreeG[*Instr[T]]

	cacheEnds []uint64
	cacheFns  []Fn[T]
	fresh     bool
}

// NewChannel creates a channel. dfltVal is the value held over
// intervals no instruction covers; rstVal is the value reset
// instructions drive. Panics on a non-positive sample rate.
func NewChannel[T Samp](name string, sampRate rf.Hz, dfltVal, rstVal T) *Channel[T] {
	if sampRate <= 0 {
		panic(fmt.Sprintf("pulse: channel %q given non-positive sample rate %v", name, sampRate))
	}
	return &Channel[T]{
		name:     name,
		sampRate: sampRate,
		dfltVal:  dfltVal,
		rstVal:   rstVal,
		instrs:   newInstrTree[T](),
		fresh:    true,
	}
}

func newInstrTree[T Samp]() *btree.BTreeG[*Instr[T]] {
	return btree.NewBTreeG[*Instr[T]](func(a, b *Instr[T]) bool {
		return a.startPos < b.startPos
	})
}

// Name returns the channel name as seen by the driver.
func (c *Channel[T]) Name() string {
	return c.name
}

// SampRate returns the sample clock rate.
func (c *Channel[T]) SampRate() rf.Hz {
	return c.sampRate
}

// ClkPeriod returns one sample clock period in seconds.
func (c *Channel[T]) ClkPeriod() float64 {
	return 1.0 / float64(c.sampRate)
}

// DefaultValue returns the value held over uncovered intervals.
func (c *Channel[T]) DefaultValue() T {
	return c.dfltVal
}

// ResetValue returns the value driven by reset instructions.
func (c *Channel[T]) ResetValue() T {
	return c.rstVal
}

// GotInstructions reports whether the edit cache is non-empty. A
// channel with instructions is "active"; device-level compilation and
// sample generation skip inactive channels.
func (c *Channel[T]) GotInstructions() bool {
	return c.instrs.Len() > 0
}

// IsFreshCompiled reports whether the compile cache reflects the
// current edit cache.
func (c *Channel[T]) IsFreshCompiled() bool {
	return c.fresh
}

// Instrs returns the edit cache in ascending start order.
func (c *Channel[T]) Instrs() []*Instr[T] {
	out := make([]*Instr[T], 0, c.instrs.Len())
	c.instrs.Scan(func(in *Instr[T]) bool {
		out = append(out, in)
		return true
	})
	return out
}

// LastInstrEndPos returns the effective end tick of the last
// instruction. ok is false when the edit cache is empty.
func (c *Channel[T]) LastInstrEndPos() (pos uint64, ok bool) {
	last, ok := c.instrs.Max()
	if !ok {
		return 0, false
	}
	return last.EffEndPos(), true
}

// LastInstrEndTime is LastInstrEndPos in seconds.
func (c *Channel[T]) LastInstrEndTime() (t float64, ok bool) {
	pos, ok := c.LastInstrEndPos()
	if !ok {
		return 0, false
	}
	return tickTime(pos, c.sampRate), true
}

// prevBefore returns the instruction with the greatest start tick
// strictly below in's, or nil.
func (c *Channel[T]) prevBefore(in *Instr[T]) *Instr[T] {
	var found *Instr[T]
	c.instrs.Descend(in, func(it *Instr[T]) bool {
		if it.startPos >= in.startPos {
			return true
		}
		found = it
		return false
	})
	return found
}

// nextFrom returns the instruction with the smallest start tick at or
// above in's, or nil.
func (c *Channel[T]) nextFrom(in *Instr[T]) *Instr[T] {
	var found *Instr[T]
	c.instrs.Ascend(in, func(it *Instr[T]) bool {
		found = it
		return false
	})
	return found
}

// AddInstr places fn on the channel starting at time t (seconds).
//
// dur selects the interval type: a non-nil DurSpec gives the pulse an
// explicit duration with KeepVal controlling the padding after it,
// while nil means the function runs until the next instruction or the
// global end ("go-this").
//
// Start and end times are rounded onto the sample clock grid. A pulse
// that collapses below one tick returns ErrShortPulse. A 1-tick overlap
// with a neighbor is treated as a rounding artifact of back-to-back
// pulses and repaired by trimming one tick off the new pulse where
// possible; larger overlaps return ErrCollision.
//
// Panics on a negative start time, since that is a programming error
// rather than a rounding artifact. Times within half a clock period
// below zero are accepted as a nominal t=0.
func (c *Channel[T]) AddInstr(fn Fn[T], t float64, dur *DurSpec) error {
	if fn == nil {
		panic(fmt.Sprintf("pulse: channel %q given a nil Fn", c.name))
	}
	if t <= -0.5*c.ClkPeriod() {
		panic(fmt.Sprintf("pulse: channel %q given negative start time %v", c.name, t))
	}

	startPos := roundTick(t, c.sampRate)
	var end *EndSpec
	if dur != nil {
		endPos := roundTick(t+dur.Dur, c.sampRate)
		if endPos < startPos+1 {
			return fmt.Errorf(
				"%w: [chan %s] requested start t = %v s = %v clock periods rounded to %d, "+
					"requested end (t+dur) = %v s = %v clock periods rounded to %d; "+
					"the shortest pulse the streamer can produce is 1 clock period, "+
					"align short pulse edges with the clock grid",
				ErrShortPulse, c.name,
				t, t*float64(c.sampRate), startPos,
				t+dur.Dur, (t+dur.Dur)*float64(c.sampRate), endPos,
			)
		}
		end = &EndSpec{EndPos: endPos, KeepVal: dur.KeepVal}
	}
	in := NewInstr(startPos, end, fn)

	// Collision on the left.
	if prev := c.prevBefore(in); prev != nil {
		prevEnd := prev.EffEndPos()
		switch {
		case prevEnd <= in.startPos:
			// No collision.
		case prevEnd == in.startPos+1:
			// Exactly 1 tick: a rounding artifact of back-to-back
			// pulses. Trim the new instruction from the left.
			if d, hasDur := in.Dur(); hasDur && d < 2 {
				return fmt.Errorf(
					"%w: [chan %s] 1-tick collision on the left of %v cannot be fixed, the new pulse is only 1 tick long",
					ErrUnrepairable, c.name, in,
				)
			}
			in.startPos++
		default:
			return fmt.Errorf(
				"%w: [chan %s] collision on the left with existing instruction\n\t%v\nthe new instruction is\n\t%v",
				ErrCollision, c.name, prev, in,
			)
		}
	}

	// Collision on the right.
	if next := c.nextFrom(in); next != nil {
		effEnd := in.EffEndPos()
		switch {
		case effEnd <= next.startPos:
			// No collision.
		case effEnd == next.startPos+1:
			if in.end == nil {
				return fmt.Errorf(
					"%w: [chan %s] attempt to insert open-ended instruction %v right at the start of %v",
					ErrGoThisBeforeInstr, c.name, in, next,
				)
			}
			if d, _ := in.Dur(); d < 2 {
				return fmt.Errorf(
					"%w: [chan %s] 1-tick collision on the right of %v cannot be fixed, the new pulse is only 1 tick long",
					ErrUnrepairable, c.name, in,
				)
			}
			in.end.EndPos--
		default:
			return fmt.Errorf(
				"%w: [chan %s] the new instruction\n\t%v\ncollides on the right with existing instruction\n\t%v",
				ErrCollision, c.name, in, next,
			)
		}
	}

	c.instrs.Set(in)
	c.fresh = false
	return nil
}

// Constant is shorthand for AddInstr(Const(val), t, dur).
func (c *Channel[T]) Constant(val T, t float64, dur *DurSpec) error {
	return c.AddInstr(Const(val), t, dur)
}

// AddResetInstr inserts an open-ended instruction driving the reset
// value, starting at resetPos. Fails if resetPos lands before the end
// of the last instruction.
func (c *Channel[T]) AddResetInstr(resetPos uint64) error {
	if last, ok := c.LastInstrEndPos(); ok && resetPos < last {
		return fmt.Errorf(
			"%w: [chan %s] reset instruction at reset_pos = %d is below last_instr_end_pos = %d",
			ErrStopBeforeLast, c.name, resetPos, last,
		)
	}
	c.instrs.Set(NewInstr(resetPos, nil, Const(c.rstVal)))
	c.fresh = false
	return nil
}

// ClearEditCache drops every instruction, and with it the compile
// cache. The channel is fresh-compiled afterwards, both caches being
// empty.
func (c *Channel[T]) ClearEditCache() {
	c.instrs = newInstrTree[T]()
	c.ClearCompileCache()
}

// ClearCompileCache drops the compiled end/function vectors. The
// channel stays fresh-compiled only if the edit cache is empty too.
func (c *Channel[T]) ClearCompileCache() {
	c.cacheEnds = nil
	c.cacheFns = nil
	c.fresh = c.instrs.Len() == 0
}

// Compile flushes the edit cache into the compile cache, covering
// [0, stopPos) contiguously.
//
// The interval before the first instruction is padded with the channel
// default. Each finite instruction is followed, if there is a gap until
// the next edge, by constant padding holding either its value at the
// end tick (KeepVal) or the channel default. Open-ended instructions
// span until the next edge outright.
func (c *Channel[T]) Compile(stopPos uint64) error {
	c.ClearCompileCache()

	if !c.GotInstructions() {
		return fmt.Errorf("%w: channel %s has no instructions to compile", ErrNoInstructions, c.name)
	}
	last, _ := c.LastInstrEndPos()
	if stopPos < last {
		return fmt.Errorf(
			"%w: [chan %s] compiling with stop_pos %d while instructions end at %d",
			ErrStopBeforeLast, c.name, stopPos, last,
		)
	}

	instrs := c.Instrs()
	ends := make([]uint64, 0, 2*len(instrs)+1)
	fns := make([]Fn[T], 0, 2*len(instrs)+1)
	push := func(fn Fn[T], end uint64) {
		fns = append(fns, fn)
		ends = append(ends, end)
	}

	if first := instrs[0].startPos; first > 0 {
		push(Const(c.dfltVal), first)
	}
	for i, in := range instrs {
		nextEdge := stopPos
		if i+1 < len(instrs) {
			nextEdge = instrs[i+1].startPos
		}
		end, hasEnd := in.End()
		if !hasEnd {
			push(in.fn, nextEdge)
			continue
		}
		push(in.fn, end.EndPos)
		if end.EndPos < nextEdge {
			padVal := c.dfltVal
			if end.KeepVal {
				padVal = evalAt(in.fn, tickTime(end.EndPos, c.sampRate), c.dfltVal)
			}
			push(Const(padVal), nextEdge)
		}
	}

	// Postconditions. A violation here is a compiler bug, not a user
	// mistake.
	if len(ends) != len(fns) {
		panic(fmt.Sprintf("pulse: BUG: [chan %s] compile cache length mismatch: %d ends, %d fns", c.name, len(ends), len(fns)))
	}
	if ends[len(ends)-1] != stopPos {
		panic(fmt.Sprintf("pulse: BUG: [chan %s] compile cache ends at %d, requested stop_pos %d", c.name, ends[len(ends)-1], stopPos))
	}
	for i := 1; i < len(ends); i++ {
		if ends[i-1] >= ends[i] {
			panic(fmt.Sprintf("pulse: BUG: [chan %s] compile cache ends not strictly ascending at index %d", c.name, i))
		}
	}

	c.cacheEnds = ends
	c.cacheFns = fns
	c.fresh = true
	return nil
}

// CompileCacheEnds returns the compiled instruction end ticks, in
// ascending order. The returned slice is the live cache; do not mutate.
func (c *Channel[T]) CompileCacheEnds() []uint64 {
	return c.cacheEnds
}

// CompileCacheFns returns the compiled functions parallel to
// CompileCacheEnds. The returned slice is the live cache; do not
// mutate.
func (c *Channel[T]) CompileCacheFns() []Fn[T] {
	return c.cacheFns
}

// ValidateCompileCache returns ErrStaleCompile when the edit cache has
// changed since the last Compile.
func (c *Channel[T]) ValidateCompileCache() error {
	if c.fresh {
		return nil
	}
	return fmt.Errorf("%w: channel %s", ErrStaleCompile, c.name)
}

// CompiledStopPos returns the stop tick of the compile cache.
//
// Panics on a stale or empty cache: callers iterating channels are
// expected to validate first and to filter on GotInstructions, so
// either condition indicates a bug above this call.
func (c *Channel[T]) CompiledStopPos() uint64 {
	if err := c.ValidateCompileCache(); err != nil {
		panic(err.Error())
	}
	if len(c.cacheEnds) == 0 {
		panic(fmt.Sprintf("pulse: channel %s has a valid but empty compile cache; filter inactive channels with GotInstructions", c.name))
	}
	return c.cacheEnds[len(c.cacheEnds)-1]
}

// CompiledStopTime is CompiledStopPos in seconds.
func (c *Channel[T]) CompiledStopTime() float64 {
	return tickTime(c.CompiledStopPos(), c.sampRate)
}

// cacheWindow locates the compile cache index range intersecting
// [winStart, winEnd). first is the first instruction whose end strictly
// exceeds winStart, last the first whose end reaches winEnd.
func (c *Channel[T]) cacheWindow(winStart, winEnd uint64) (first, last int) {
	first = sort.Search(len(c.cacheEnds), func(i int) bool {
		return c.cacheEnds[i] > winStart
	})
	last = sort.Search(len(c.cacheEnds), func(i int) bool {
		return c.cacheEnds[i] >= winEnd
	})
	return first, last
}

// FillSamps writes samples for the tick window [startPos,
// startPos+len(res)) into res, evaluating each covered compiled
// instruction over its slice of the window.
//
// t must hold the time points of the window ticks and match res in
// length. It is passed in rather than derived so a device can compute
// one time vector per materialization call and lend it to every
// channel.
func (c *Channel[T]) FillSamps(startPos uint64, res []T, t []float64) error {
	if !c.GotInstructions() {
		return fmt.Errorf("%w: [chan %s] FillSamps on a channel with no instructions", ErrNoInstructions, c.name)
	}
	if err := c.ValidateCompileCache(); err != nil {
		return err
	}
	if len(res) != len(t) {
		return fmt.Errorf(
			"%w: [chan %s] FillSamps given res len %d and t len %d",
			ErrBufferTooSmall, c.name, len(res), len(t),
		)
	}

	winStart := startPos
	winEnd := winStart + uint64(len(res))
	stopPos := c.cacheEnds[len(c.cacheEnds)-1]
	if winEnd > stopPos {
		return fmt.Errorf(
			"%w: [chan %s] window end %d+%d = %d goes beyond compiled stop position %d",
			ErrWindowOutOfRange, c.name, startPos, len(res), winEnd, stopPos,
		)
	}
	if len(res) == 0 {
		return nil
	}

	first, last := c.cacheWindow(winStart, winEnd)
	cur := winStart
	for idx := first; idx <= last; idx++ {
		next := min(c.cacheEnds[idx], winEnd)
		lo, hi := cur-winStart, next-winStart
		c.cacheFns[idx].Fill(t[lo:hi], res[lo:hi])
		cur = next
	}
	return nil
}

// CalcNSamps evaluates the compiled channel at n evenly spaced time
// points over the full compiled run. See CalcNSampsRange.
func (c *Channel[T]) CalcNSamps(n int) ([]T, error) {
	if err := c.calcPrecheck(); err != nil {
		return nil, err
	}
	return c.calcNSamps(n, 0, c.CompiledStopTime())
}

// CalcNSampsRange evaluates the compiled channel at n evenly spaced
// time points over [startTime, endTime].
//
// Unlike FillSamps this samples at arbitrary off-grid times; it exists
// for visualization, where n is typically far below the tick count of
// the window. Instruction boundaries stay on the tick grid and are
// mapped onto output indices proportionally.
func (c *Channel[T]) CalcNSampsRange(n int, startTime, endTime float64) ([]T, error) {
	if err := c.calcPrecheck(); err != nil {
		return nil, err
	}
	if endTime > c.CompiledStopTime() {
		return nil, fmt.Errorf(
			"%w: [chan %s] requested end time %v exceeds compiled stop time %v",
			ErrWindowOutOfRange, c.name, endTime, c.CompiledStopTime(),
		)
	}
	if endTime < startTime {
		return nil, fmt.Errorf(
			"%w: [chan %s] requested end time %v is below start time %v",
			ErrWindowOutOfRange, c.name, endTime, startTime,
		)
	}
	return c.calcNSamps(n, startTime, endTime)
}

func (c *Channel[T]) calcPrecheck() error {
	if !c.GotInstructions() {
		return fmt.Errorf("%w: channel %s has no instructions", ErrNoInstructions, c.name)
	}
	return c.ValidateCompileCache()
}

func (c *Channel[T]) calcNSamps(n int, startTime, endTime float64) ([]T, error) {
	res := make([]T, n)
	for i := range res {
		res[i] = c.dfltVal
	}
	if n == 0 {
		return res, nil
	}
	t := make([]float64, n)
	fillLinspace(t, startTime, endTime)

	// The absolute tick grid decides which compiled instructions the
	// window overlaps; the samples themselves are evaluated at the
	// off-grid times in t.
	winStart := roundTick(startTime, c.sampRate)
	winEnd := roundTick(endTime, c.sampRate)
	first, last := c.cacheWindow(winStart, winEnd)

	if winEnd == winStart {
		// Degenerate window: a single grid tick. Evaluate whichever
		// instruction covers it over all n points.
		if first < len(c.cacheFns) {
			c.cacheFns[first].Fill(t, res)
		}
		return res, nil
	}

	// Linear proportional mapping of [winStart, winEnd] onto [0, n).
	cvt := func(pos uint64) int {
		frac := float64(pos-winStart) / float64(winEnd-winStart)
		return int(math.Round(float64(n) * frac))
	}

	cur := winStart
	for idx := first; idx <= last; idx++ {
		next := min(c.cacheEnds[idx], winEnd)
		lo, hi := cvt(cur), cvt(next)
		c.cacheFns[idx].Fill(t[lo:hi], res[lo:hi])
		cur = next
	}
	return res, nil
}

// EvalPoint evaluates the channel at a single time, straight from the
// edit cache: no compile needed. Uncovered times give the channel
// default; the padding tail of a finite instruction gives its KeepVal
// value or the default.
func (c *Channel[T]) EvalPoint(t float64) (T, error) {
	if t < -0.5*c.ClkPeriod() {
		return c.dfltVal, fmt.Errorf(
			"%w: [chan %s] negative time %v passed to EvalPoint", ErrWindowOutOfRange, c.name, t,
		)
	}
	tPos := roundTick(t, c.sampRate)

	// The closest instruction starting at or before tPos.
	var prev *Instr[T]
	c.instrs.Descend(&Instr[T]{startPos: tPos}, func(it *Instr[T]) bool {
		prev = it
		return false
	})
	if prev == nil {
		return c.dfltVal, nil
	}

	end, hasEnd := prev.End()
	switch {
	case !hasEnd:
		// Open-ended: covers everything from its start on.
		return evalAt(prev.fn, tickTime(tPos, c.sampRate), c.dfltVal), nil
	case tPos < end.EndPos:
		return evalAt(prev.fn, tickTime(tPos, c.sampRate), c.dfltVal), nil
	case end.KeepVal:
		return evalAt(prev.fn, tickTime(end.EndPos, c.sampRate), c.dfltVal), nil
	default:
		return c.dfltVal, nil
	}
}

// vim: foldmethod=marker
