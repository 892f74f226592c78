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

package samplewriter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	audiowav "github.com/go-audio/wav"
	"github.com/stellago/stellago/environment"
	"github.com/stellago/stellago/hardware/clock"
	"github.com/stellago/stellago/samplewriter"
	"github.com/stellago/stellago/test"
)

func TestRoundTrip(t *testing.T) {
	env, err := environment.NewEnvironment(clock.NewTimeline(), nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	filename := filepath.Join(t.TempDir(), "capture.wav")

	sw, err := samplewriter.New(env, filename, 8000)
	test.DemandSuccess(t, err)

	// the ADC produces values around its half-scale point
	for _, v := range []uint32{0x200, 0x204, 0x207, 0x200} {
		sw.Add(v)
	}
	test.ExpectEquality(t, sw.Len(), 4)
	test.ExpectSuccess(t, sw.End())

	// decode with an independent decoder
	f, err := os.Open(filename)
	test.DemandSuccess(t, err)
	defer f.Close()

	dec := audiowav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, *buf.Format, audio.Format{NumChannels: 1, SampleRate: 8000})
	test.DemandEquality(t, len(buf.Data), 4)
	test.ExpectEquality(t, buf.Data[0], 0x200<<5)
	test.ExpectEquality(t, buf.Data[1], 0x204<<5)
	test.ExpectEquality(t, buf.Data[2], 0x207<<5)
	test.ExpectEquality(t, buf.Data[3], 0x200<<5)
}

func TestBadParameters(t *testing.T) {
	env, err := environment.NewEnvironment(clock.NewTimeline(), nil)
	test.DemandSuccess(t, err)

	_, err = samplewriter.New(env, "capture.wav", 0)
	test.ExpectFailure(t, err)
}
