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

package main

import (
	"path/filepath"
	"testing"

	"github.com/stellago/stellago/hardware/clock"
	"github.com/stellago/stellago/samplewriter"
	"github.com/stellago/stellago/test"
)

func TestNewMCUPreferences(t *testing.T) {
	mc, _, err := newMCU("lm3s811evb", true, true)
	test.DemandSuccess(t, err)

	test.ExpectSuccess(t, mc.Env.Prefs.RandomState.Get().(bool))
	test.ExpectSuccess(t, mc.Env.Prefs.TraceRegisters.Get().(bool))
}

func TestCaptureSampleCount(t *testing.T) {
	mc, tl, err := newMCU("lm3s811evb", false, false)
	test.DemandSuccess(t, err)
	mc.Env.Normalise()

	sw, err := samplewriter.New(mc.Env, filepath.Join(t.TempDir(), "capture.wav"), 8000)
	test.DemandSuccess(t, err)

	// one virtual second of capture yields exactly the requested number of
	// samples, not one per trigger edge
	test.DemandSuccess(t, capture(mc, tl, sw, clock.TicksPerSecond, 8000))
	test.ExpectEquality(t, sw.Len(), 8000)
}
