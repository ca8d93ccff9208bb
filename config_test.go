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
)

func TestHardwareConfigYAML(t *testing.T) {
	cfg, err := pulse.ParseHardwareConfig([]byte(`
samp_clk_src: PXI_Trig7
start_trig_in: PXI_Trig0
ref_clk_rate: 10e6
primary: true
`))
	require.NoError(t, err)
	assert.Equal(t, "PXI_Trig7", cfg.SampClkSrc)
	assert.Equal(t, "PXI_Trig0", cfg.StartTrigIn)
	assert.Equal(t, 10e6, cfg.RefClkRate)
	assert.True(t, cfg.Primary)
	assert.False(t, cfg.ExportRefClk)
}

func TestHardwareConfigRoundTrip(t *testing.T) {
	in := pulse.HardwareConfig{
		SampClkSrc:         "PXI_Trig7",
		StartTrigOut:       "PFI0",
		RefClkIn:           "PXI_Clk10",
		RefClkRate:         10e6,
		ExportRefClk:       true,
		MinBufWriteTimeout: 5.0,
	}

	data, err := in.Marshal()
	require.NoError(t, err)

	out, err := pulse.ParseHardwareConfig(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestHardwareConfigBadYAML(t *testing.T) {
	_, err := pulse.ParseHardwareConfig([]byte("samp_clk_src: [unterminated"))
	assert.Error(t, err)
}

// vim: foldmethod=marker
