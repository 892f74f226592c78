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

package ssys_test

import (
	"testing"

	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/environment"
	"github.com/stellago/stellago/hardware/clock"
	"github.com/stellago/stellago/hardware/peripherals"
	"github.com/stellago/stellago/hardware/ssys"
	"github.com/stellago/stellago/test"
)

func newSSYS(t *testing.T, boardName string) *ssys.SSYS {
	t.Helper()

	env, err := environment.NewEnvironment(clock.NewTimeline(), nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	board, ok := peripherals.FindBoard(boardName)
	test.DemandEquality(t, ok, true)

	sy, err := ssys.NewSSYS(env, board, nil)
	test.DemandSuccess(t, err)

	return sy
}

func TestResetClockScale(t *testing.T) {
	// the reset value of the clock divisor field is the same on both
	// silicon classes: divisor 15, giving 80ns per system clock tick
	sy := newSSYS(t, "lm3s811evb")
	test.ExpectEquality(t, sy.ClockScale(), int64(80))

	sy = newSSYS(t, "lm3s6965evb")
	test.ExpectEquality(t, sy.ClockScale(), int64(80))
}

func TestUnknownBoardClass(t *testing.T) {
	env, err := environment.NewEnvironment(clock.NewTimeline(), nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	// version field out of range
	_, err = ssys.NewSSYS(env, peripherals.BoardInfo{DID0: 0x20000000}, nil)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, peripherals.Unimplemented))

	// known version, unknown class
	_, err = ssys.NewSSYS(env, peripherals.BoardInfo{DID0: 0x10050000}, nil)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, peripherals.Unimplemented))
}

func TestPLLAlwaysReady(t *testing.T) {
	sy := newSSYS(t, "lm3s811evb")

	// no PLL startup delay: the ready bit is set as soon as the control
	// register is written
	test.ExpectSuccess(t, sy.Write(0x00, 4, 1<<24))
	v, err := sy.Read(0x00, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(1<<24|1<<25))

	// even a write that does not request the PLL reads back as ready
	test.ExpectSuccess(t, sy.Write(0x00, 4, 0))
	v, err = sy.Read(0x00, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(1<<25))
}

func TestClockSourceSwitch(t *testing.T) {
	sy := newSSYS(t, "lm3s811evb")

	// the requested source appears in the status field with zero latency
	test.ExpectSuccess(t, sy.Write(0x08, 4, 0x1))
	v, err := sy.Read(0x08, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0x5))

	test.ExpectSuccess(t, sy.Write(0x08, 4, 0x3))
	v, err = sy.Read(0x08, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0xf))
}

func TestCatchAll(t *testing.T) {
	sy := newSSYS(t, "lm3s811evb")

	// every unmodelled register shares a single storage location. a write
	// to one offset reads back at any other
	test.ExpectSuccess(t, sy.Write(0x060, 4, 0xcafe0000))
	v, err := sy.Read(0x144, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0xcafe0000))

	// and reads never fault
	_, err = sy.Read(0x4fc, 4)
	test.ExpectSuccess(t, err)
}
