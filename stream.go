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
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Stream sweeps a compiled device's full run [0, compiled stop) in
// windows of winSamps ticks, materializes each window with CalcSamps
// and hands it to w. Window buffers are row-major per channel, the
// layout a driver writes, and come from a small pool.
//
// Materialization and writing run as a two-stage pipeline: window n+1
// is computed while window n is being written. The device graph must
// stay frozen for the duration of the call; Stream itself never
// mutates it.
//
// The final window is truncated to the compiled stop position, so a
// closing-edge extension tick ends up in the last window.
func Stream[T Samp](dev *Device[T], w Writer[T], winSamps int) error {
	if winSamps < 1 {
		return fmt.Errorf("%w: stream window must hold at least 1 sample, got %d", ErrWindowOutOfRange, winSamps)
	}
	if w.SampleRate() != dev.SampRate() {
		return fmt.Errorf(
			"%w: writer consumes at %v, device %s generates at %v",
			ErrRateMismatch, w.SampleRate(), dev.Name(), dev.SampRate(),
		)
	}
	if err := dev.ValidateCompileCache(); err != nil {
		return err
	}

	var (
		stop   = dev.CompiledStopPos()
		nChans = len(dev.ActiveChans())
	)
	pool, err := NewBufPool[T](nChans * winSamps)
	if err != nil {
		return err
	}

	windows := make(chan []T, 1)
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		defer close(windows)
		for cur := uint64(0); cur < stop; cur += uint64(winSamps) {
			end := min(cur+uint64(winSamps), stop)
			buf := pool.Get()[:nChans*int(end-cur)]
			if err := dev.CalcSamps(buf, cur, end); err != nil {
				return err
			}
			select {
			case windows <- buf:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		for buf := range windows {
			n, err := w.Write(buf)
			if err != nil {
				return err
			}
			if n != len(buf) {
				return ErrShortWrite
			}
			pool.Put(buf[:cap(buf)])
		}
		return nil
	})

	return g.Wait()
}

// vim: foldmethod=marker
