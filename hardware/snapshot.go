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

package hardware

import (
	"fmt"

	"github.com/stellago/stellago/hardware/adc"
	"github.com/stellago/stellago/hardware/gptm"
	"github.com/stellago/stellago/hardware/i2c"
	"github.com/stellago/stellago/hardware/peripherals"
	"github.com/stellago/stellago/hardware/ssys"
)

// State contains the snapshotted state of every peripheral along with the
// virtual time the snapshot was taken at. A State is immutable once created
// and can be plumbed back into an MCU any number of times.
type State struct {
	Now int64

	SSYS   *ssys.SSYS
	ADC    *adc.ADC
	Timers [NumTimers]*gptm.GPTM
	I2C    *i2c.Controller
}

func (s *State) String() string {
	return fmt.Sprintf("snapshot @ %d", s.Now)
}

// Snapshot the MCU in its current state.
func (mc *MCU) Snapshot() *State {
	s := &State{
		Now:  mc.Clk.Now(),
		SSYS: mc.SSYS.Snapshot(),
	}

	if mc.ADC != nil {
		s.ADC = mc.ADC.Snapshot()
	}
	for n, gp := range mc.Timers {
		if gp != nil {
			s.Timers[n] = gp.Snapshot()
		}
	}
	if mc.I2C != nil {
		s.I2C = mc.I2C.Snapshot()
	}

	return s
}

// Plumb a previously snapshotted State back into the MCU. The virtual clock
// is rewound to the snapshot time and every pending deadline is re-armed
// from the restored peripheral state.
//
// The State itself is not consumed. Copies of the snapshotted peripherals
// are plumbed in, so the same State can be restored again later.
func (mc *MCU) Plumb(s *State) {
	// rewinding the clock drops every scheduled event. the peripheral Plumb
	// functions re-arm their own deadlines
	mc.Clk.Plumb(s.Now)

	for _, pl := range mc.Board.Placements() {
		switch pl.Kind {
		case peripherals.SSYS:
			mc.SSYS = s.SSYS.Snapshot()
			mc.SSYS.Plumb(mc.Env, mc.line(pl.IRQ[0]))

		case peripherals.ADC:
			var irq [adc.NumSequencers]peripherals.Line
			for i := range irq {
				irq[i] = mc.line(pl.IRQ[i])
			}
			mc.ADC = s.ADC.Snapshot()
			mc.ADC.Plumb(mc.Env, irq)

		case peripherals.GPTM:
			mc.Timers[pl.Num] = s.Timers[pl.Num].Snapshot()
			mc.Timers[pl.Num].Plumb(mc.Env, mc.Clk, mc.SSYS, mc.line(pl.IRQ[0]), mc.adcTrigger())

		case peripherals.I2C:
			mc.I2C = s.I2C.Snapshot()
			mc.I2C.Plumb(mc.Env, mc.Bus, mc.line(pl.IRQ[0]))
		}
	}

	mc.relink()
}

// relink rebuilds the address decode table from the current peripheral
// pointers.
func (mc *MCU) relink() {
	mc.regions = mc.regions[:0]

	for _, pl := range mc.Board.Placements() {
		var per peripherals.Peripheral

		switch pl.Kind {
		case peripherals.SSYS:
			per = mc.SSYS
		case peripherals.ADC:
			per = mc.ADC
		case peripherals.GPTM:
			per = mc.Timers[pl.Num]
		case peripherals.I2C:
			per = mc.I2C
		}

		mc.regions = append(mc.regions, region{
			base: pl.Base,
			size: regionSize(pl.Kind),
			per:  per,
		})
	}
}
