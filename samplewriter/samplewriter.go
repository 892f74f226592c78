// This file is part of Stellago.
//
// Stellago is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Stellago is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Stellago.  If not, see <https://www.gnu.org/licenses/>.

// Package samplewriter writes a stream of ADC conversion results to disk as
// a WAV file. Note that the samples are buffered in memory in their
// entirety, and written to disk on End(). It is therefore probably only
// suitable for testing and for short captures.
package samplewriter

import (
	"os"

	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/environment"
	"github.com/stellago/stellago/logger"
	"github.com/youpy/go-wav"
)

// sentinel error pattern for all samplewriter errors.
const Error = "samplewriter: %v"

// SampleWriter collects ADC samples and encodes them on End().
type SampleWriter struct {
	env        *environment.Environment
	filename   string
	sampleRate uint32
	buffer     []wav.Sample
}

// New is the preferred method of initialisation for the SampleWriter type.
// The sample rate is whatever rate the timer that triggers the ADC has been
// programmed to; the writer has no way of checking it.
func New(env *environment.Environment, filename string, sampleRate uint32) (*SampleWriter, error) {
	if sampleRate == 0 {
		return nil, curated.Errorf(Error, "a sample rate is required")
	}

	sw := &SampleWriter{
		env:        env,
		filename:   filename,
		sampleRate: sampleRate,
		buffer:     make([]wav.Sample, 0),
	}

	return sw, nil
}

// Add one conversion result to the capture. The 10-bit ADC range maps onto
// the positive half of the 16-bit WAV range.
func (sw *SampleWriter) Add(value uint32) {
	s := wav.Sample{}
	s.Values[0] = int(value&0x3ff) << 5
	sw.buffer = append(sw.buffer, s)
}

// Len returns the number of samples collected so far.
func (sw *SampleWriter) Len() int {
	return len(sw.buffer)
}

// End the capture and write the WAV file.
func (sw *SampleWriter) End() (rerr error) {
	f, err := os.Create(sw.filename)
	if err != nil {
		return curated.Errorf(Error, err)
	}
	defer func() {
		err := f.Close()
		if err != nil {
			rerr = curated.Errorf(Error, err)
		}
	}()

	enc := wav.NewWriter(f, uint32(len(sw.buffer)), 1, sw.sampleRate, 16)
	if enc == nil {
		return curated.Errorf(Error, "bad parameters for wav encoding")
	}

	if err := enc.WriteSamples(sw.buffer); err != nil {
		return curated.Errorf(Error, err)
	}

	logger.Logf(sw.env, "samplewriter", "%d samples written to %s", len(sw.buffer), sw.filename)

	return nil
}
