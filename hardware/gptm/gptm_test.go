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

package gptm_test

import (
	"testing"

	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/environment"
	"github.com/stellago/stellago/hardware/clock"
	"github.com/stellago/stellago/hardware/gptm"
	"github.com/stellago/stellago/hardware/peripherals"
	"github.com/stellago/stellago/test"
)

// fixedScale stands in for the system controller in tests.
type fixedScale int64

func (s fixedScale) ClockScale() int64 {
	return int64(s)
}

func newGPTM(t *testing.T) (*clock.Timeline, *gptm.GPTM) {
	t.Helper()

	tl := clock.NewTimeline()
	env, err := environment.NewEnvironment(tl, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	return tl, gptm.NewGPTM(env, 0, tl, fixedScale(80), nil, nil)
}

func readReg(t *testing.T, gp *gptm.GPTM, offset uint32) uint32 {
	t.Helper()
	v, err := gp.Read(offset, 4)
	test.DemandSuccess(t, err)
	return v
}

func TestCountdownDeadline(t *testing.T) {
	tl, gp := newGPTM(t)

	// 32-bit countdown, load 100 ticks of 80ns
	test.ExpectSuccess(t, gp.Write(0x28, 4, 100))
	test.ExpectSuccess(t, gp.Write(0x0c, 4, 0x01))

	// nothing at 100*80-1
	test.ExpectSuccess(t, tl.RunUntil(7999))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0))

	// timeout exactly at 100*80
	test.ExpectSuccess(t, tl.RunUntil(8000))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0x1))
}

func TestPeriodicPhase(t *testing.T) {
	tl, gp := newGPTM(t)

	test.ExpectSuccess(t, gp.Write(0x28, 4, 100))
	test.ExpectSuccess(t, gp.Write(0x0c, 4, 0x01))

	test.ExpectSuccess(t, tl.RunUntil(8000))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0x1))

	// acknowledge and wait for the next period. the reload extends from the
	// previous deadline so the period never drifts
	test.ExpectSuccess(t, gp.Write(0x24, 4, 0x1))
	test.ExpectSuccess(t, tl.RunUntil(15999))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0))
	test.ExpectSuccess(t, tl.RunUntil(16000))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0x1))
}

func TestOneShot(t *testing.T) {
	tl, gp := newGPTM(t)

	test.ExpectSuccess(t, gp.Write(0x04, 4, 0x1))
	test.ExpectSuccess(t, gp.Write(0x28, 4, 100))
	test.ExpectSuccess(t, gp.Write(0x0c, 4, 0x01))

	test.ExpectSuccess(t, tl.RunUntil(8000))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0x1))

	// the enable bit clears itself and no further timeout happens
	test.ExpectEquality(t, readReg(t, gp, 0x0c), uint32(0))
	test.ExpectSuccess(t, gp.Write(0x24, 4, 0x1))
	test.ExpectSuccess(t, tl.RunUntil(100000))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0))
}

func TestDisableCancels(t *testing.T) {
	tl, gp := newGPTM(t)

	test.ExpectSuccess(t, gp.Write(0x28, 4, 100))
	test.ExpectSuccess(t, gp.Write(0x0c, 4, 0x01))
	test.ExpectSuccess(t, tl.RunUntil(4000))
	test.ExpectSuccess(t, gp.Write(0x0c, 4, 0x00))

	test.ExpectSuccess(t, tl.RunUntil(100000))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0))
}

func TestRTC(t *testing.T) {
	tl, gp := newGPTM(t)

	// RTC mode with a match value of 2. the counter runs 0,1,2 and wraps on
	// the tick after passing the match
	test.ExpectSuccess(t, gp.Write(0x00, 4, 1))
	test.ExpectSuccess(t, gp.Write(0x30, 4, 2))
	test.ExpectSuccess(t, gp.Write(0x0c, 4, 0x01))

	// the RTC ticks at 1Hz regardless of the system clock divisor
	test.ExpectSuccess(t, tl.RunUntil(clock.TicksPerSecond))
	test.ExpectEquality(t, readReg(t, gp, 0x48), uint32(1))

	test.ExpectSuccess(t, tl.RunUntil(2*clock.TicksPerSecond))
	test.ExpectEquality(t, readReg(t, gp, 0x48), uint32(2))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0))

	// wrap and match
	test.ExpectSuccess(t, tl.RunUntil(3*clock.TicksPerSecond))
	test.ExpectEquality(t, readReg(t, gp, 0x48), uint32(0))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0x8))
}

func TestTriggerPulse(t *testing.T) {
	tl := clock.NewTimeline()
	env, err := environment.NewEnvironment(tl, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	edges := 0
	trigger := peripherals.Line(func(_ bool) {
		edges++
	})

	gp := gptm.NewGPTM(env, 0, tl, fixedScale(80), nil, trigger)

	// bit 5 of the control register routes the timeout to the alternate
	// output. a pulse delivers both edges
	test.ExpectSuccess(t, gp.Write(0x04, 4, 0x1))
	test.ExpectSuccess(t, gp.Write(0x28, 4, 100))
	test.ExpectSuccess(t, gp.Write(0x0c, 4, 0x21))

	test.ExpectSuccess(t, tl.RunUntil(8000))
	test.ExpectEquality(t, edges, 2)
}

func TestInterruptLine(t *testing.T) {
	tl := clock.NewTimeline()
	env, err := environment.NewEnvironment(tl, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	level := false
	irq := peripherals.Line(func(l bool) {
		level = l
	})

	gp := gptm.NewGPTM(env, 0, tl, fixedScale(80), irq, nil)

	test.ExpectSuccess(t, gp.Write(0x18, 4, 0x1))
	test.ExpectSuccess(t, gp.Write(0x28, 4, 100))
	test.ExpectSuccess(t, gp.Write(0x0c, 4, 0x01))

	test.ExpectSuccess(t, tl.RunUntil(8000))
	test.ExpectEquality(t, level, true)

	// acknowledging the interrupt drops the line
	test.ExpectSuccess(t, gp.Write(0x24, 4, 0x1))
	test.ExpectEquality(t, level, false)
}

func TestRegisterQuirks(t *testing.T) {
	_, gp := newGPTM(t)

	// 16-bit configuration so the halves stay independent
	test.ExpectSuccess(t, gp.Write(0x00, 4, 4))

	// the B match value is taken from the top half of the written word
	test.ExpectSuccess(t, gp.Write(0x34, 4, 0x00120034))
	test.ExpectEquality(t, readReg(t, gp, 0x34), uint32(0x12))

	// a B prescale match write lands on the A register
	test.ExpectSuccess(t, gp.Write(0x44, 4, 5))
	test.ExpectEquality(t, readReg(t, gp, 0x40), uint32(5))
	test.ExpectEquality(t, readReg(t, gp, 0x44), uint32(0))

	// undefined interrupt mask bits never stick
	test.ExpectSuccess(t, gp.Write(0x18, 4, 0xff))
	test.ExpectEquality(t, readReg(t, gp, 0x18), uint32(0x77))
}

func TestLiveValueRead(t *testing.T) {
	_, gp := newGPTM(t)

	// the free-running count cannot be read outside of RTC mode
	_, err := gp.Read(0x48, 4)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, peripherals.Unimplemented))

	_, err = gp.Read(0x4c, 4)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, peripherals.Unimplemented))
}

func TestUnimplementedMode(t *testing.T) {
	_, gp := newGPTM(t)

	// a 16-bit mode other than PWM faults on enable
	test.ExpectSuccess(t, gp.Write(0x00, 4, 4))
	test.ExpectSuccess(t, gp.Write(0x04, 4, 0x2))
	err := gp.Write(0x0c, 4, 0x01)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, peripherals.Unimplemented))
}

func TestSnapshotResume(t *testing.T) {
	tl := clock.NewTimeline()
	env, err := environment.NewEnvironment(tl, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	gp := gptm.NewGPTM(env, 0, tl, fixedScale(80), nil, nil)

	test.ExpectSuccess(t, gp.Write(0x28, 4, 100))
	test.ExpectSuccess(t, gp.Write(0x0c, 4, 0x01))

	// one fire at 8000, next armed for 16000
	test.ExpectSuccess(t, tl.RunUntil(10000))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0x1))
	test.ExpectSuccess(t, gp.Write(0x24, 4, 0x1))

	snap := gp.Snapshot()

	// run the original past the next deadline
	test.ExpectSuccess(t, tl.RunUntil(20000))
	test.ExpectEquality(t, readReg(t, gp, 0x1c), uint32(0x1))

	// restore onto a fresh timeline at the snapshot time. the pending fire
	// happens exactly once, at the stored deadline
	tl2 := clock.NewTimeline()
	tl2.Plumb(10000)
	snap.Plumb(env, tl2, fixedScale(80), nil, nil)

	test.ExpectSuccess(t, tl2.RunUntil(15999))
	test.ExpectEquality(t, readReg(t, snap, 0x1c), uint32(0))
	test.ExpectSuccess(t, tl2.RunUntil(16000))
	test.ExpectEquality(t, readReg(t, snap, 0x1c), uint32(0x1))
}
