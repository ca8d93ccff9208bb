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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"hz.tools/pulse"
	"hz.tools/pulse/fnlib"
	"hz.tools/rf"
)

func newAOChan(t *testing.T, rate rf.Hz, dflt float64) *pulse.Channel[float64] {
	t.Helper()
	return pulse.NewChannel("ao0", rate, dflt, 0.0)
}

func evalOne(t *testing.T, fn pulse.Fn[float64], at float64) float64 {
	t.Helper()
	out := make([]float64, 1)
	fn.Fill([]float64{at}, out)
	return out[0]
}

func TestChannelPaddingBeforeFirstInstr(t *testing.T) {
	ch := newAOChan(t, rf.MHz, -10.0)

	err := ch.AddInstr(fnlib.Sine(1.0, 1.23, 0, 0.5), 1.0, &pulse.DurSpec{Dur: 1.0})
	require.NoError(t, err)
	require.NoError(t, ch.Compile(2_000_000))

	ends := ch.CompileCacheEnds()
	fns := ch.CompileCacheFns()
	assert.Equal(t, []uint64{1_000_000, 2_000_000}, ends)
	require.Len(t, fns, 2)

	// Leading padding holds the channel default.
	assert.Equal(t, -10.0, evalOne(t, fns[0], 0.5))
	assert.Equal(t, uint64(2_000_000), ch.CompiledStopPos())
}

func TestChannelKeepValPadding(t *testing.T) {
	ch := newAOChan(t, rf.MHz, -10.0)

	err := ch.AddInstr(fnlib.Sine(1.0, 0.12, 0, 0), 0, &pulse.DurSpec{Dur: 1.0, KeepVal: true})
	require.NoError(t, err)
	require.NoError(t, ch.Compile(2_000_000))

	fns := ch.CompileCacheFns()
	require.Len(t, fns, 2)

	want := math.Sin(2 * math.Pi * 0.12 * 1.0)
	assert.InDelta(t, want, evalOne(t, fns[1], 1.7), 1e-10)
	// Padding is constant, the evaluation time must not matter.
	assert.InDelta(t, want, evalOne(t, fns[1], 123.0), 1e-10)
}

func TestChannelShortPulse(t *testing.T) {
	ch := newAOChan(t, rf.MHz, 0)

	err := ch.Constant(1.0, 0, &pulse.DurSpec{Dur: 0.4e-6})
	assert.ErrorIs(t, err, pulse.ErrShortPulse)
	assert.False(t, ch.GotInstructions())
}

func TestChannelLeftCollisionAutoRepair(t *testing.T) {
	ch := pulse.NewChannel("ao0", 10*rf.MHz, 0.0, 0.0)

	require.NoError(t, ch.Constant(1.0, 0.5, &pulse.DurSpec{Dur: 0.5000001, KeepVal: true}))
	// Rounds to [10_000_000, 15_000_000); left neighbor ends at
	// 10_000_001, one tick in. The new pulse gets trimmed from the
	// left.
	require.NoError(t, ch.Constant(2.0, 1.0, &pulse.DurSpec{Dur: 0.5}))

	instrs := ch.Instrs()
	require.Len(t, instrs, 2)
	assert.Equal(t, uint64(10_000_001), instrs[0].EffEndPos())
	assert.Equal(t, uint64(10_000_001), instrs[1].StartPos())
	assert.Equal(t, uint64(15_000_000), instrs[1].EffEndPos())
}

func TestChannelRightCollisionAutoRepair(t *testing.T) {
	ch := pulse.NewChannel("ao0", 10*rf.MHz, 0.0, 0.0)

	require.NoError(t, ch.Constant(1.0, 1.0, &pulse.DurSpec{Dur: 0.5}))
	require.NoError(t, ch.Constant(2.0, 0.5, &pulse.DurSpec{Dur: 0.5000001, KeepVal: true}))

	instrs := ch.Instrs()
	require.Len(t, instrs, 2)
	assert.Equal(t, uint64(5_000_000), instrs[0].StartPos())
	// Trimmed from the right to meet the existing pulse exactly.
	assert.Equal(t, uint64(10_000_000), instrs[0].EffEndPos())
	assert.Equal(t, uint64(10_000_000), instrs[1].StartPos())
}

func TestChannelUnrepairableOneTickPulse(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), 0.0, 0.0)

	require.NoError(t, ch.Constant(1.0, 0.011, &pulse.DurSpec{Dur: 0.01}))
	// One tick long, one tick into the left neighbor's tail: nothing
	// left to trim.
	err := ch.Constant(2.0, 0.02, &pulse.DurSpec{Dur: 0.001})
	assert.ErrorIs(t, err, pulse.ErrUnrepairable)
}

func TestChannelHardCollision(t *testing.T) {
	ch := newAOChan(t, rf.MHz, 0)

	require.NoError(t, ch.Constant(1.0, 1.0, &pulse.DurSpec{Dur: 1.0}))
	err := ch.Constant(2.0, 0.5, &pulse.DurSpec{Dur: 1.0})
	assert.ErrorIs(t, err, pulse.ErrCollision)

	err = ch.Constant(2.0, 1.5, &pulse.DurSpec{Dur: 1.0})
	assert.ErrorIs(t, err, pulse.ErrCollision)

	// The failed inserts must not have touched the edit cache.
	assert.Len(t, ch.Instrs(), 1)
}

func TestChannelGoThisBeforeInstr(t *testing.T) {
	ch := newAOChan(t, rf.MHz, 0)

	require.NoError(t, ch.Constant(1.0, 1.0, &pulse.DurSpec{Dur: 0.5}))
	err := ch.Constant(2.0, 1.0, nil)
	assert.ErrorIs(t, err, pulse.ErrGoThisBeforeInstr)
}

func TestChannelGoThisShiftedIntoInstr(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), 0.0, 0.0)

	// Finite pulse covering [0, 10), open-ended pulse at tick 10.
	require.NoError(t, ch.Constant(1.0, 0, &pulse.DurSpec{Dur: 0.01}))
	require.NoError(t, ch.Constant(2.0, 0.01, nil))

	// A go-this at tick 9 collides 1 tick on the left, shifts to 10,
	// and then sits right on the existing open-ended instruction.
	err := ch.Constant(3.0, 0.009, nil)
	assert.ErrorIs(t, err, pulse.ErrGoThisBeforeInstr)
}

func TestChannelCompileStopBeforeLast(t *testing.T) {
	ch := newAOChan(t, rf.MHz, 0)

	require.NoError(t, ch.Constant(1.0, 0, &pulse.DurSpec{Dur: 2.0}))
	err := ch.Compile(1_000_000)
	assert.ErrorIs(t, err, pulse.ErrStopBeforeLast)
}

func TestChannelCompileNoInstructions(t *testing.T) {
	ch := newAOChan(t, rf.MHz, 0)
	assert.ErrorIs(t, ch.Compile(100), pulse.ErrNoInstructions)
}

func TestChannelGoThisSpansToNextEdge(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(100), 0.0, 0.0)

	require.NoError(t, ch.Constant(1.0, 0, nil))
	require.NoError(t, ch.Constant(2.0, 1.0, &pulse.DurSpec{Dur: 1.0}))
	require.NoError(t, ch.Compile(300))

	assert.Equal(t, []uint64{100, 200, 300}, ch.CompileCacheEnds())

	res := make([]float64, 300)
	tArr := make([]float64, 300)
	for i := range tArr {
		tArr[i] = float64(i) / 100.0
	}
	require.NoError(t, ch.FillSamps(0, res, tArr))
	assert.Equal(t, 1.0, res[0])
	assert.Equal(t, 1.0, res[99])
	assert.Equal(t, 2.0, res[100])
	assert.Equal(t, 2.0, res[199])
	// Tail padding reverts to the default.
	assert.Equal(t, 0.0, res[200])
	assert.Equal(t, 0.0, res[299])
}

func TestChannelFillSampsAcrossBoundary(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), 0.0, 0.0)

	require.NoError(t, ch.Constant(1.0, 0, &pulse.DurSpec{Dur: 1.0}))
	require.NoError(t, ch.Constant(2.0, 1.0, &pulse.DurSpec{Dur: 1.0}))
	require.NoError(t, ch.Compile(2000))

	res := make([]float64, 20)
	tArr := make([]float64, 20)
	for i := range tArr {
		tArr[i] = float64(990+i) / 1000.0
	}
	require.NoError(t, ch.FillSamps(990, res, tArr))

	for i := 0; i < 10; i++ {
		assert.Equal(t, 1.0, res[i], "sample %d", i)
	}
	for i := 10; i < 20; i++ {
		assert.Equal(t, 2.0, res[i], "sample %d", i)
	}
}

func TestChannelFillSampsWindowChecks(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), 0.0, 0.0)
	require.NoError(t, ch.Constant(1.0, 0, &pulse.DurSpec{Dur: 1.0}))
	require.NoError(t, ch.Compile(1000))

	res := make([]float64, 10)
	tArr := make([]float64, 10)

	assert.ErrorIs(t, ch.FillSamps(995, res, tArr), pulse.ErrWindowOutOfRange)
	assert.ErrorIs(t, ch.FillSamps(0, res, tArr[:5]), pulse.ErrBufferTooSmall)
	assert.NoError(t, ch.FillSamps(0, res[:0], tArr[:0]))

	// Editing after compile makes the cache stale.
	require.NoError(t, ch.Constant(2.0, 2.0, &pulse.DurSpec{Dur: 0.5}))
	assert.ErrorIs(t, ch.FillSamps(0, res, tArr), pulse.ErrStaleCompile)
}

func TestChannelEvalPoint(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), -1.0, 0.0)

	require.NoError(t, ch.AddInstr(fnlib.Linear(2.0, 0), 1.0, &pulse.DurSpec{Dur: 1.0, KeepVal: true}))

	// Before the first instruction: the default.
	v, err := ch.EvalPoint(0.5)
	require.NoError(t, err)
	assert.Equal(t, -1.0, v)

	// Inside the instruction: the function itself.
	v, err = ch.EvalPoint(1.5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-12)

	// Past the end with keep_val: the value at the end tick.
	v, err = ch.EvalPoint(5.0)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-12)

	_, err = ch.EvalPoint(-1.0)
	assert.Error(t, err)
}

func TestChannelEvalPointNoKeepVal(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), -1.0, 0.0)
	require.NoError(t, ch.Constant(5.0, 0, &pulse.DurSpec{Dur: 1.0}))

	v, err := ch.EvalPoint(2.0)
	require.NoError(t, err)
	assert.Equal(t, -1.0, v)
}

func TestChannelEvalPointMatchesFillSamps(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), -1.0, 0.0)

	require.NoError(t, ch.AddInstr(fnlib.Sine(1.0, 3.0, 0.5, 0), 0.25, &pulse.DurSpec{Dur: 1.0, KeepVal: true}))
	require.NoError(t, ch.Constant(0.5, 2.0, nil))
	require.NoError(t, ch.Compile(3000))

	n := int(ch.CompiledStopPos())
	res := make([]float64, n)
	tArr := make([]float64, n)
	for i := range tArr {
		tArr[i] = float64(i) / 1000.0
	}
	require.NoError(t, ch.FillSamps(0, res, tArr))

	for _, tick := range []int{0, 249, 250, 1000, 1249, 1250, 1700, 1999, 2000, 2500, 2999} {
		v, err := ch.EvalPoint(float64(tick) / 1000.0)
		require.NoError(t, err)
		assert.InDelta(t, res[tick], v, 1e-12, "tick %d", tick)
	}
}

func TestChannelCalcNSamps(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), -1.0, 0.0)

	require.NoError(t, ch.Constant(1.0, 0, &pulse.DurSpec{Dur: 1.0}))
	require.NoError(t, ch.Constant(2.0, 1.0, &pulse.DurSpec{Dur: 1.0}))
	require.NoError(t, ch.Compile(2000))

	res, err := ch.CalcNSamps(10)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 2, 2, 2, 2, 2}, res)

	// A sub-window maps the same way.
	res, err = ch.CalcNSampsRange(4, 0.5, 1.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 2, 2}, res)

	_, err = ch.CalcNSampsRange(4, 0, 3.0)
	assert.ErrorIs(t, err, pulse.ErrWindowOutOfRange)
	_, err = ch.CalcNSampsRange(4, 1.5, 0.5)
	assert.ErrorIs(t, err, pulse.ErrWindowOutOfRange)
}

func TestChannelAddResetInstr(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), 0.0, -7.0)

	require.NoError(t, ch.Constant(1.0, 0, &pulse.DurSpec{Dur: 1.0}))
	assert.ErrorIs(t, ch.AddResetInstr(500), pulse.ErrStopBeforeLast)
	require.NoError(t, ch.AddResetInstr(1000))

	require.NoError(t, ch.Compile(1500))
	assert.Equal(t, []uint64{1000, 1500}, ch.CompileCacheEnds())

	v, err := ch.EvalPoint(1.2)
	require.NoError(t, err)
	assert.Equal(t, -7.0, v)
}

func TestChannelClearCaches(t *testing.T) {
	ch := pulse.NewChannel("ao0", rf.Hz(1000), 0.0, 0.0)
	assert.True(t, ch.IsFreshCompiled())

	require.NoError(t, ch.Constant(1.0, 0, &pulse.DurSpec{Dur: 1.0}))
	assert.False(t, ch.IsFreshCompiled())

	require.NoError(t, ch.Compile(1000))
	assert.True(t, ch.IsFreshCompiled())

	ch.ClearCompileCache()
	assert.False(t, ch.IsFreshCompiled())
	assert.Empty(t, ch.CompileCacheEnds())

	ch.ClearEditCache()
	assert.True(t, ch.IsFreshCompiled())
	assert.False(t, ch.GotInstructions())
}

// addRandomInstrs lays non-overlapping pulses onto ch, on whole ticks,
// either back to back or with a gap, so no rounding repair kicks in,
// and returns the final edit-cache end.
func addRandomInstrs(t *rapid.T, ch *pulse.Channel[float64], rate rf.Hz) uint64 {
	n := rapid.IntRange(1, 8).Draw(t, "n")
	cur := uint64(rapid.IntRange(0, 50).Draw(t, "lead"))
	period := 1.0 / float64(rate)
	for i := 0; i < n; i++ {
		durTicks := rapid.IntRange(1, 40).Draw(t, "dur")
		keep := rapid.Bool().Draw(t, "keep")
		if err := ch.Constant(
			float64(i),
			float64(cur)*period,
			&pulse.DurSpec{Dur: float64(durTicks) * period, KeepVal: keep},
		); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		cur += uint64(durTicks) + uint64(rapid.IntRange(0, 30).Draw(t, "gap"))
	}
	last, ok := ch.LastInstrEndPos()
	if !ok {
		t.Fatalf("no instructions after %d inserts", n)
	}
	return last
}

func TestChannelCompileInvariantsRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const rate = rf.Hz(1000)
		ch := pulse.NewChannel("ao0", rate, -0.5, 0.0)

		last := addRandomInstrs(t, ch, rate)
		stop := last + uint64(rapid.IntRange(0, 100).Draw(t, "tail"))
		if err := ch.Compile(stop); err != nil {
			t.Fatalf("compile failed: %v", err)
		}

		ends := ch.CompileCacheEnds()
		fns := ch.CompileCacheFns()

		if len(ends) != len(fns) {
			t.Fatalf("parallel arrays diverge: %d ends, %d fns", len(ends), len(fns))
		}
		if len(ends) == 0 || ends[0] == 0 {
			t.Fatalf("first end must be positive, got %v", ends)
		}
		for i := 1; i < len(ends); i++ {
			if ends[i-1] >= ends[i] {
				t.Fatalf("ends not strictly ascending: %v", ends)
			}
		}
		if ends[len(ends)-1] != stop {
			t.Fatalf("coverage ends at %d, requested %d", ends[len(ends)-1], stop)
		}
		if !ch.IsFreshCompiled() {
			t.Fatalf("channel not fresh after compile")
		}
	})
}

func TestChannelCompileIdempotentRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const rate = rf.Hz(1000)
		ch := pulse.NewChannel("ao0", rate, 0.0, 0.0)

		last := addRandomInstrs(t, ch, rate)
		stop := last + uint64(rapid.IntRange(0, 20).Draw(t, "tail"))

		if err := ch.Compile(stop); err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		first := append([]uint64{}, ch.CompileCacheEnds()...)

		if err := ch.Compile(stop); err != nil {
			t.Fatalf("recompile failed: %v", err)
		}
		second := ch.CompileCacheEnds()

		if len(first) != len(second) {
			t.Fatalf("recompile changed cache size: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("recompile changed ends: %v vs %v", first, second)
			}
		}
	})
}

func TestChannelEvalMatchesFillRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const rate = rf.Hz(1000)
		ch := pulse.NewChannel("ao0", rate, -2.5, 0.0)

		last := addRandomInstrs(t, ch, rate)
		stop := last + uint64(rapid.IntRange(1, 20).Draw(t, "tail"))
		if err := ch.Compile(stop); err != nil {
			t.Fatalf("compile failed: %v", err)
		}

		n := int(stop)
		res := make([]float64, n)
		tArr := make([]float64, n)
		for i := range tArr {
			tArr[i] = float64(i) / float64(rate)
		}
		if err := ch.FillSamps(0, res, tArr); err != nil {
			t.Fatalf("fill failed: %v", err)
		}

		tick := rapid.IntRange(0, n-1).Draw(t, "tick")
		v, err := ch.EvalPoint(float64(tick) / float64(rate))
		if err != nil {
			t.Fatalf("eval failed: %v", err)
		}
		if math.Abs(v-res[tick]) > 1e-12 {
			t.Fatalf("eval %v != fill %v at tick %d", v, res[tick], tick)
		}
	})
}

// vim: foldmethod=marker
