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

package hardware_test

import (
	"testing"

	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/hardware"
	"github.com/stellago/stellago/hardware/clock"
	"github.com/stellago/stellago/hardware/peripherals"
	"github.com/stellago/stellago/hardware/preferences"
	"github.com/stellago/stellago/test"
)

const (
	ssysBase   = 0x40023800
	timer0Base = 0x40030000
	timer3Base = 0x40033000
	i2cBase    = 0x40020000
	adcBase    = 0x40038000
)

func newMCU(t *testing.T, boardName string) (*clock.Timeline, *hardware.MCU) {
	t.Helper()

	tl := clock.NewTimeline()
	mc, err := hardware.NewMCU(tl, nil, boardName, nil)
	test.DemandSuccess(t, err)
	mc.Env.Normalise()

	return tl, mc
}

func write(t *testing.T, mc *hardware.MCU, address uint32, value uint32) {
	t.Helper()
	test.DemandSuccess(t, mc.Write(address, 4, value))
}

func read(t *testing.T, mc *hardware.MCU, address uint32) uint32 {
	t.Helper()
	v, err := mc.Read(address, 4)
	test.DemandSuccess(t, err)
	return v
}

func TestBoardComposition(t *testing.T) {
	_, mc := newMCU(t, "lm3s811evb")

	// the capability words of the lm3s811 populate three timers, the ADC
	// and the I2C controller
	test.ExpectInequality(t, mc.SSYS, nil)
	test.ExpectInequality(t, mc.ADC, nil)
	test.ExpectInequality(t, mc.Timers[0], nil)
	test.ExpectInequality(t, mc.Timers[1], nil)
	test.ExpectInequality(t, mc.Timers[2], nil)
	test.ExpectEquality(t, mc.Timers[3] == nil, true)
	test.ExpectInequality(t, mc.I2C, nil)
}

func TestUnknownBoard(t *testing.T) {
	_, err := hardware.NewMCU(clock.NewTimeline(), nil, "lm3s0000evb", nil)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, hardware.UnknownBoard))
}

func TestBusDecode(t *testing.T) {
	_, mc := newMCU(t, "lm3s811evb")

	// a register write through the bus lands in the right block
	write(t, mc, timer0Base+0x28, 1000)
	test.ExpectEquality(t, read(t, mc, timer0Base+0x28), uint32(1000))

	// instances decode independently
	test.ExpectEquality(t, read(t, mc, timer0Base+0x1000+0x28), uint32(0))

	// unmapped addresses are a bus fault. timer 3 is absent from this board
	_, err := mc.Read(timer3Base, 4)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, hardware.BusFault))

	_, err = mc.Read(0x50000000, 4)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, hardware.BusFault))
}

func TestInterruptDelivery(t *testing.T) {
	tl := clock.NewTimeline()

	levels := make(map[int]bool)
	mc, err := hardware.NewMCU(tl, nil, "lm3s811evb", func(num int) peripherals.Line {
		return func(level bool) {
			levels[num] = level
		}
	})
	test.DemandSuccess(t, err)
	mc.Env.Normalise()

	// timer 0 timeout is interrupt 19
	write(t, mc, timer0Base+0x18, 0x1)
	write(t, mc, timer0Base+0x28, 100)
	write(t, mc, timer0Base+0x0c, 0x01)

	test.ExpectSuccess(t, tl.RunUntil(100*80))
	test.ExpectEquality(t, levels[19], true)

	write(t, mc, timer0Base+0x24, 0x1)
	test.ExpectEquality(t, levels[19], false)
}

func TestTimerTriggersADC(t *testing.T) {
	tl, mc := newMCU(t, "lm3s811evb")

	// sequencer 0 samples on the timer trigger
	write(t, mc, adcBase+0x14, 5)
	write(t, mc, adcBase+0x44, 6)
	write(t, mc, adcBase+0x00, 1)

	// one-shot timer with the ADC trigger output enabled
	write(t, mc, timer0Base+0x04, 0x1)
	write(t, mc, timer0Base+0x28, 100)
	write(t, mc, timer0Base+0x0c, 0x21)

	test.ExpectSuccess(t, tl.RunUntil(100*80))

	// the trigger pulse delivers both edges, so a single timeout samples
	// twice
	test.ExpectEquality(t, read(t, mc, adcBase+0x4c), uint32(0x20))
	test.ExpectEquality(t, read(t, mc, adcBase+0x48), uint32(0x200))
	test.ExpectEquality(t, read(t, mc, adcBase+0x48), uint32(0x204))
}

func TestSnapshotResume(t *testing.T) {
	tl, mc := newMCU(t, "lm3s811evb")

	// periodic timer, one period every 8000ns
	write(t, mc, timer0Base+0x28, 100)
	write(t, mc, timer0Base+0x0c, 0x01)

	test.ExpectSuccess(t, tl.RunUntil(10000))
	test.ExpectEquality(t, read(t, mc, timer0Base+0x1c), uint32(0x1))
	write(t, mc, timer0Base+0x24, 0x1)

	snap := mc.Snapshot()
	test.ExpectEquality(t, snap.Now, int64(10000))

	// run the live machine ahead before restoring
	test.ExpectSuccess(t, tl.RunUntil(30000))
	test.ExpectEquality(t, read(t, mc, timer0Base+0x1c), uint32(0x1))

	mc.Plumb(snap)
	test.ExpectEquality(t, tl.Now(), int64(10000))

	// the restored machine reads as it did at the snapshot
	test.ExpectEquality(t, read(t, mc, timer0Base+0x1c), uint32(0))
	test.ExpectEquality(t, read(t, mc, timer0Base+0x28), uint32(100))

	// the pending deadline fires exactly once, at its original time
	test.ExpectSuccess(t, tl.RunUntil(15999))
	test.ExpectEquality(t, read(t, mc, timer0Base+0x1c), uint32(0))
	test.ExpectSuccess(t, tl.RunUntil(16000))
	test.ExpectEquality(t, read(t, mc, timer0Base+0x1c), uint32(0x1))

	// the same snapshot can be restored again
	mc.Plumb(snap)
	test.ExpectEquality(t, read(t, mc, timer0Base+0x1c), uint32(0))
}

func TestResetAll(t *testing.T) {
	tl, mc := newMCU(t, "lm3s811evb")

	write(t, mc, timer0Base+0x28, 100)
	write(t, mc, timer0Base+0x0c, 0x01)
	write(t, mc, i2cBase+0x20, 0x10)

	test.ExpectSuccess(t, mc.Reset())

	test.ExpectEquality(t, read(t, mc, timer0Base+0x28), uint32(0))
	test.ExpectEquality(t, read(t, mc, i2cBase+0x20), uint32(0))

	// a reset cancels any armed deadline
	test.ExpectSuccess(t, tl.RunUntil(100000))
	test.ExpectEquality(t, read(t, mc, timer0Base+0x1c), uint32(0))
}

func TestPreferencesAtConstruction(t *testing.T) {
	p, err := preferences.NewPreferences()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, p.RandomState.Set(true))

	mc, err := hardware.NewMCU(clock.NewTimeline(), p, "lm3s811evb", nil)
	test.DemandSuccess(t, err)

	// the supplied preferences are adopted, not copied. peripherals that
	// read a preference while they are being built see the caller's values
	test.ExpectEquality(t, mc.Env.Prefs, p)
	test.ExpectSuccess(t, mc.Env.Prefs.RandomState.Get().(bool))
}
