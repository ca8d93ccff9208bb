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
	"gopkg.in/yaml.v3"
)

// HardwareConfig carries the clock, trigger and reference-clock wiring
// of a device. The compiler passes it through untouched; only the
// driver binding on top of this package interprets it. Field names
// follow the NI terminology the driver layer speaks.
//
// The struct round-trips through YAML so experiment rigs can keep their
// device wiring in config files.
type HardwareConfig struct {
	// SampClkSrc is an external sample clock terminal, empty for the
	// onboard clock.
	SampClkSrc string `yaml:"samp_clk_src,omitempty"`

	// StartTrigIn is the terminal to import the start trigger from.
	StartTrigIn string `yaml:"start_trig_in,omitempty"`

	// StartTrigOut is the terminal to export the start trigger to.
	StartTrigOut string `yaml:"start_trig_out,omitempty"`

	// RefClkIn is the terminal to import the reference clock from.
	RefClkIn string `yaml:"ref_clk_in,omitempty"`

	// RefClkRate is the reference clock rate in Hz, when RefClkIn is
	// set.
	RefClkRate float64 `yaml:"ref_clk_rate,omitempty"`

	// ExportRefClk asks the device to export its reference clock.
	ExportRefClk bool `yaml:"export_ref_clk,omitempty"`

	// Primary marks the device whose trigger starts the whole rig.
	Primary bool `yaml:"primary,omitempty"`

	// MinBufWriteTimeout is the driver's minimum buffer-write timeout
	// in seconds, 0 for the driver default.
	MinBufWriteTimeout float64 `yaml:"min_bufwrite_timeout,omitempty"`
}

// ParseHardwareConfig unmarshals a YAML document into a HardwareConfig.
func ParseHardwareConfig(data []byte) (HardwareConfig, error) {
	var cfg HardwareConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return HardwareConfig{}, err
	}
	return cfg, nil
}

// Marshal renders the config as YAML.
func (c HardwareConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// vim: foldmethod=marker
