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

// Package fnlib is the built-in library of waveform functions for the
// pulse compiler. Every constructor returns an immutable pulse.Fn;
// constructors whose parameters have range constraints validate them
// and return an error.
package fnlib

import (
	"fmt"
	"math"

	"hz.tools/pulse"
)

// ErrInvalidParam will be returned by constructors given parameters
// outside their valid range.
var ErrInvalidParam = fmt.Errorf("fnlib: invalid function parameter")

// Const returns a constant analog value.
func Const(val float64) pulse.Fn[float64] {
	return pulse.Const(val)
}

// ConstBool returns a constant digital value.
func ConstBool(val bool) pulse.Fn[bool] {
	return pulse.Const(val)
}

type linear struct {
	slope, offs float64
}

// Linear evaluates slope*t + offs.
func Linear(slope, offs float64) pulse.Fn[float64] {
	return linear{slope: slope, offs: offs}
}

func (f linear) Fill(t []float64, out []float64) {
	for i, tv := range t {
		out[i] = f.slope*tv + f.offs
	}
}

func (f linear) String() string {
	return fmt.Sprintf("Linear(slope=%v, offs=%v)", f.slope, f.offs)
}

type sine struct {
	amp, freq, phase, offs float64
}

// Sine evaluates offs + amp*sin(2π*freq*t + phase). freq is the linear
// frequency in Hz, phase the absolute phase in radians.
func Sine(amp, freq, phase, offs float64) pulse.Fn[float64] {
	return sine{amp: amp, freq: freq, phase: phase, offs: offs}
}

func (f sine) Fill(t []float64, out []float64) {
	for i, tv := range t {
		out[i] = f.offs + f.amp*math.Sin(2*math.Pi*f.freq*tv+f.phase)
	}
}

func (f sine) String() string {
	return fmt.Sprintf("Sine(amp=%v, freq=%v, phase=%v, offs=%v)", f.amp, f.freq, f.phase, f.offs)
}

type gaussian struct {
	t0, sigma, scale, offs float64
}

// Gaussian evaluates offs + scale*exp(-(t-t0)²/(2σ²)). sigma must be
// non-zero.
func Gaussian(t0, sigma, scale, offs float64) (pulse.Fn[float64], error) {
	if sigma == 0 {
		return nil, fmt.Errorf("%w: Gaussian sigma must be non-zero", ErrInvalidParam)
	}
	return gaussian{t0: t0, sigma: sigma, scale: scale, offs: offs}, nil
}

func (f gaussian) Fill(t []float64, out []float64) {
	for i, tv := range t {
		d := tv - f.t0
		out[i] = f.offs + f.scale*math.Exp(-d*d/(2*f.sigma*f.sigma))
	}
}

func (f gaussian) String() string {
	return fmt.Sprintf("Gaussian(t0=%v, sigma=%v, scale=%v, offs=%v)", f.t0, f.sigma, f.scale, f.offs)
}

type lorentzian struct {
	t0, tau, scale, offs float64
}

// Lorentzian evaluates offs + scale/(1 + ((t-t0)/τ)²). tau must be
// non-zero.
func Lorentzian(t0, tau, scale, offs float64) (pulse.Fn[float64], error) {
	if tau == 0 {
		return nil, fmt.Errorf("%w: Lorentzian tau must be non-zero", ErrInvalidParam)
	}
	return lorentzian{t0: t0, tau: tau, scale: scale, offs: offs}, nil
}

func (f lorentzian) Fill(t []float64, out []float64) {
	for i, tv := range t {
		d := (tv - f.t0) / f.tau
		out[i] = f.offs + f.scale/(1+d*d)
	}
}

func (f lorentzian) String() string {
	return fmt.Sprintf("Lorentzian(t0=%v, tau=%v, scale=%v, offs=%v)", f.t0, f.tau, f.scale, f.offs)
}

type tanh struct {
	t0, tau, scale, offs float64
}

// TanH evaluates offs + scale*tanh((t-t0)/τ). tau must be non-zero.
func TanH(t0, tau, scale, offs float64) (pulse.Fn[float64], error) {
	if tau == 0 {
		return nil, fmt.Errorf("%w: TanH tau must be non-zero", ErrInvalidParam)
	}
	return tanh{t0: t0, tau: tau, scale: scale, offs: offs}, nil
}

func (f tanh) Fill(t []float64, out []float64) {
	for i, tv := range t {
		out[i] = f.offs + f.scale*math.Tanh((tv-f.t0)/f.tau)
	}
}

func (f tanh) String() string {
	return fmt.Sprintf("TanH(t0=%v, tau=%v, scale=%v, offs=%v)", f.t0, f.tau, f.scale, f.offs)
}

type exp struct {
	tau, scale, offs float64
}

// Exp evaluates offs + scale*exp(t/τ); a negative tau gives a decay.
// tau must be non-zero.
func Exp(tau, scale, offs float64) (pulse.Fn[float64], error) {
	if tau == 0 {
		return nil, fmt.Errorf("%w: Exp tau must be non-zero", ErrInvalidParam)
	}
	return exp{tau: tau, scale: scale, offs: offs}, nil
}

func (f exp) Fill(t []float64, out []float64) {
	for i, tv := range t {
		out[i] = f.offs + f.scale*math.Exp(tv/f.tau)
	}
}

func (f exp) String() string {
	return fmt.Sprintf("Exp(tau=%v, scale=%v, offs=%v)", f.tau, f.scale, f.offs)
}

type poly struct {
	coeffs []float64
}

// Poly evaluates Σ coeffs[i]*tⁱ. At least one coefficient is required.
func Poly(coeffs ...float64) (pulse.Fn[float64], error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("%w: Poly needs at least one coefficient", ErrInvalidParam)
	}
	// Copy so the Fn stays immutable even if the caller reuses the
	// slice.
	c := make([]float64, len(coeffs))
	copy(c, coeffs)
	return poly{coeffs: c}, nil
}

func (f poly) Fill(t []float64, out []float64) {
	for i, tv := range t {
		acc := 0.0
		for j := len(f.coeffs) - 1; j >= 0; j-- {
			acc = acc*tv + f.coeffs[j]
		}
		out[i] = acc
	}
}

func (f poly) String() string {
	return fmt.Sprintf("Poly(coeffs=%v)", f.coeffs)
}

type pow struct {
	t0, pow, scale, offs float64
}

// Pow evaluates offs + scale*(t-t0)^pow.
func Pow(t0, p, scale, offs float64) pulse.Fn[float64] {
	return pow{t0: t0, pow: p, scale: scale, offs: offs}
}

func (f pow) Fill(t []float64, out []float64) {
	for i, tv := range t {
		out[i] = f.offs + f.scale*math.Pow(tv-f.t0, f.pow)
	}
}

func (f pow) String() string {
	return fmt.Sprintf("Pow(t0=%v, pow=%v, scale=%v, offs=%v)", f.t0, f.pow, f.scale, f.offs)
}

// vim: foldmethod=marker
