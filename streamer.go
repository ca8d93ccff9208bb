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

	"github.com/charmbracelet/log"

	"hz.tools/rf"
)

// streamerDev is the sample-type-independent face of a Device, letting
// the Streamer hold analog and digital devices in one ordered
// collection.
type streamerDev interface {
	Name() string
	SampRate() rf.Hz
	GotInstructions() bool
	LastInstrEndTime() float64
	Compile(stopTime float64) error
	CompiledStopPos() uint64
	CompiledStopTime() float64
	AddResetInstr(resetTime float64) error
	ClearEditCache()
	ClearCompileCache()
	ValidateCompileCache() error
}

// Streamer is the root of the pipeline: the full collection of output
// devices taking part in one experiment. Analog (float64-sample) and
// digital (bool-sample) devices live side by side under globally unique
// names, in registration order.
type Streamer struct {
	order []string
	ao    map[string]*Device[float64]
	do    map[string]*Device[bool]

	log *log.Logger
}

// NewStreamer creates an empty streamer.
func NewStreamer() *Streamer {
	return &Streamer{
		ao: map[string]*Device[float64]{},
		do: map[string]*Device[bool]{},
	}
}

// SetLogger hands the streamer a logger for debug-level compile
// diagnostics. A nil logger (the default) keeps the streamer silent.
func (s *Streamer) SetLogger(l *log.Logger) {
	s.log = l
}

func (s *Streamer) debug(msg string, keyvals ...interface{}) {
	if s.log != nil {
		s.log.Debug(msg, keyvals...)
	}
}

func (s *Streamer) nameTaken(name string) bool {
	_, aoOK := s.ao[name]
	_, doOK := s.do[name]
	return aoOK || doOK
}

// AddAODev registers an analog-output device. Device names are unique
// across both device kinds.
func (s *Streamer) AddAODev(dev *Device[float64]) error {
	if s.nameTaken(dev.Name()) {
		return fmt.Errorf("%w: there is already a device named %s", ErrDuplicateName, dev.Name())
	}
	s.ao[dev.Name()] = dev
	s.order = append(s.order, dev.Name())
	return nil
}

// AddDODev registers a digital-output device. Device names are unique
// across both device kinds.
func (s *Streamer) AddDODev(dev *Device[bool]) error {
	if s.nameTaken(dev.Name()) {
		return fmt.Errorf("%w: there is already a device named %s", ErrDuplicateName, dev.Name())
	}
	s.do[dev.Name()] = dev
	s.order = append(s.order, dev.Name())
	return nil
}

// AODev returns the named analog-output device.
func (s *Streamer) AODev(name string) (*Device[float64], error) {
	dev, ok := s.ao[name]
	if !ok {
		return nil, fmt.Errorf("%w: no analog-output device named %s (registered: %v)", ErrUnknownName, name, s.order)
	}
	return dev, nil
}

// DODev returns the named digital-output device.
func (s *Streamer) DODev(name string) (*Device[bool], error) {
	dev, ok := s.do[name]
	if !ok {
		return nil, fmt.Errorf("%w: no digital-output device named %s (registered: %v)", ErrUnknownName, name, s.order)
	}
	return dev, nil
}

// DevNames returns the registered device names in registration order.
func (s *Streamer) DevNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// devs returns every device in registration order through the
// type-independent face.
func (s *Streamer) devs() []streamerDev {
	out := make([]streamerDev, 0, len(s.order))
	for _, name := range s.order {
		if dev, ok := s.ao[name]; ok {
			out = append(out, dev)
			continue
		}
		out = append(out, s.do[name])
	}
	return out
}

// GotInstructions reports whether any device has been edited.
func (s *Streamer) GotInstructions() bool {
	for _, dev := range s.devs() {
		if dev.GotInstructions() {
			return true
		}
	}
	return false
}

// LastInstrEndTime returns the latest instruction end time across all
// devices, 0 when nothing has been edited.
func (s *Streamer) LastInstrEndTime() float64 {
	var last float64
	for _, dev := range s.devs() {
		if t := dev.LastInstrEndTime(); t > last {
			last = t
		}
	}
	return last
}

// Compile compiles every active device up to the latest instruction end
// time and returns the total run time.
func (s *Streamer) Compile() (float64, error) {
	if !s.GotInstructions() {
		return 0, fmt.Errorf("%w: streamer has no instructions to compile", ErrNoInstructions)
	}
	return s.compile(s.LastInstrEndTime())
}

// CompileUntil compiles every active device up to an explicit stop
// time, which must not cut off any instruction, and returns the total
// run time.
func (s *Streamer) CompileUntil(stopTime float64) (float64, error) {
	if !s.GotInstructions() {
		return 0, fmt.Errorf("%w: streamer has no instructions to compile", ErrNoInstructions)
	}
	if last := s.LastInstrEndTime(); stopTime < last {
		return 0, fmt.Errorf(
			"%w: requested stop time %v s while the last instruction ends at %v s; to stop right at the last instruction use Compile",
			ErrStopBeforeLast, stopTime, last,
		)
	}
	return s.compile(stopTime)
}

func (s *Streamer) compile(stopTime float64) (float64, error) {
	for _, dev := range s.devs() {
		if !dev.GotInstructions() {
			continue
		}
		if err := dev.Compile(stopTime); err != nil {
			return 0, err
		}
		s.debug(
			"compiled device",
			"dev", dev.Name(),
			"stop_time", stopTime,
			"compiled_stop_pos", dev.CompiledStopPos(),
			"compiled_stop_time", dev.CompiledStopTime(),
		)
	}
	return s.TotalRunTime(), nil
}

// TotalRunTime returns the shortest compiled stop time across active
// devices.
//
// Each device may extend its own run by one tick for the closing edge,
// so compiled stop times legitimately differ by up to one clock period;
// the globally safe run length is the shortest of them.
func (s *Streamer) TotalRunTime() float64 {
	total := math.Inf(1)
	found := false
	for _, dev := range s.devs() {
		if !dev.GotInstructions() {
			continue
		}
		found = true
		if t := dev.CompiledStopTime(); t < total {
			total = t
		}
	}
	if !found {
		return 0
	}
	return total
}

// AddResetInstr inserts reset instructions on every channel of every
// device, right after the last instruction.
func (s *Streamer) AddResetInstr() error {
	return s.addResetInstr(s.LastInstrEndTime())
}

// AddResetInstrAt inserts reset instructions on every channel of every
// device at time t, which must not land before the last instruction
// end.
func (s *Streamer) AddResetInstrAt(t float64) error {
	if last := s.LastInstrEndTime(); t < last {
		return fmt.Errorf(
			"%w: requested reset at t = %v s but some channels have instructions until %v s; to reset right at the end use AddResetInstr",
			ErrStopBeforeLast, t, last,
		)
	}
	return s.addResetInstr(t)
}

func (s *Streamer) addResetInstr(t float64) error {
	// Inactive devices get the reset too: every channel of the rig
	// should settle to its reset value, edited or not.
	for _, dev := range s.devs() {
		if err := dev.AddResetInstr(t); err != nil {
			return err
		}
	}
	return nil
}

// ClearEditCache clears the edit and compile caches of every device.
func (s *Streamer) ClearEditCache() {
	for _, dev := range s.devs() {
		dev.ClearEditCache()
	}
}

// ClearCompileCache clears the compile caches of every device.
func (s *Streamer) ClearCompileCache() {
	for _, dev := range s.devs() {
		dev.ClearCompileCache()
	}
}

// ValidateCompileCache aggregates per-device validation failures into
// one report. Devices are not required to agree on a stop position with
// each other; differing rates and closing-edge extensions make up to
// one tick of spread normal.
func (s *Streamer) ValidateCompileCache() error {
	var errs []error
	for _, dev := range s.devs() {
		if !dev.GotInstructions() {
			continue
		}
		if err := dev.ValidateCompileCache(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// vim: foldmethod=marker
