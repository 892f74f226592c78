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

// Package hardware is the composition point of the emulated microcontroller.
// The MCU type assembles the peripheral blocks named by a board definition,
// places them in the address space and wires their interrupt and trigger
// lines together.
//
// The peripherals themselves live in sub-packages and are driven entirely
// through the MCU's Read() and Write() functions and through the virtual
// clock the MCU was created with.
package hardware

import (
	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/environment"
	"github.com/stellago/stellago/hardware/adc"
	"github.com/stellago/stellago/hardware/clock"
	"github.com/stellago/stellago/hardware/gptm"
	"github.com/stellago/stellago/hardware/i2c"
	"github.com/stellago/stellago/hardware/peripherals"
	"github.com/stellago/stellago/hardware/preferences"
	"github.com/stellago/stellago/hardware/ssys"
)

// NumTimers is the maximum number of timer blocks a board can carry.
const NumTimers = 4

// fault patterns.
const (
	UnknownBoard = "mcu: unknown board: %s"
	BusFault     = "mcu: no peripheral at %#08x"
)

// IRQ is the delivery hook for peripheral interrupts. The MCU asks it for a
// line for every interrupt number the board assigns. A nil IRQ leaves every
// interrupt line disconnected, which is fine for guests that poll.
type IRQ func(num int) peripherals.Line

// region is one mapped register block.
type region struct {
	base uint32
	size uint32
	per  peripherals.Peripheral
}

// MCU is an emulation of the peripheral set of a Luminary microcontroller.
// Which blocks are present is decided by the board definition.
type MCU struct {
	Env *environment.Environment

	// the virtual clock every time-dependent peripheral schedules against
	Clk *clock.Timeline

	Board peripherals.BoardInfo

	// the serial bus shared by the I2C controller and any attached devices
	Bus *i2c.SharedBus

	SSYS   *ssys.SSYS
	ADC    *adc.ADC
	Timers [NumTimers]*gptm.GPTM
	I2C    *i2c.Controller

	irq     IRQ
	regions []region
}

// factory builds one peripheral from its placement and stores it in the
// MCU. keyed by peripheral kind so that the board composition stays data.
type factory func(mc *MCU, pl peripherals.Placement) (peripherals.Peripheral, error)

var factories = map[peripherals.Kind]factory{
	peripherals.SSYS: func(mc *MCU, pl peripherals.Placement) (peripherals.Peripheral, error) {
		sy, err := ssys.NewSSYS(mc.Env, mc.Board, mc.line(pl.IRQ[0]))
		if err != nil {
			return nil, err
		}
		mc.SSYS = sy
		return sy, nil
	},

	peripherals.ADC: func(mc *MCU, pl peripherals.Placement) (peripherals.Peripheral, error) {
		var irq [adc.NumSequencers]peripherals.Line
		for i := range irq {
			irq[i] = mc.line(pl.IRQ[i])
		}
		mc.ADC = adc.NewADC(mc.Env, irq)
		return mc.ADC, nil
	},

	peripherals.GPTM: func(mc *MCU, pl peripherals.Placement) (peripherals.Peripheral, error) {
		gp := gptm.NewGPTM(mc.Env, pl.Num, mc.Clk, mc.SSYS, mc.line(pl.IRQ[0]), mc.adcTrigger())
		mc.Timers[pl.Num] = gp
		return gp, nil
	},

	peripherals.I2C: func(mc *MCU, pl peripherals.Placement) (peripherals.Peripheral, error) {
		mc.I2C = i2c.NewController(mc.Env, mc.Bus, mc.line(pl.IRQ[0]))
		return mc.I2C, nil
	},
}

func regionSize(kind peripherals.Kind) uint32 {
	switch kind {
	case peripherals.SSYS:
		return ssys.RegionSize
	case peripherals.GPTM:
		return gptm.RegionSize
	case peripherals.I2C:
		return i2c.RegionSize
	case peripherals.ADC:
		return adc.RegionSize
	}
	return 0
}

// NewMCU creates a new instance of the peripheral set for the named board.
// The supplied clock drives every deadline in the emulation; it is never
// read from the wall clock.
func NewMCU(clk *clock.Timeline, prefs *preferences.Preferences, boardName string, irq IRQ) (*MCU, error) {
	board, ok := peripherals.FindBoard(boardName)
	if !ok {
		return nil, curated.Errorf(UnknownBoard, boardName)
	}

	env, err := environment.NewEnvironment(clk, prefs)
	if err != nil {
		return nil, err
	}

	mc := &MCU{
		Env:   env,
		Clk:   clk,
		Board: board,
		Bus:   i2c.NewSharedBus(),
		irq:   irq,
	}

	// placement order guarantees the system controller exists before any
	// peripheral that needs its clock scale, and the ADC before any timer
	// that triggers it
	for _, pl := range board.Placements() {
		f, ok := factories[pl.Kind]
		if !ok {
			return nil, curated.Errorf(BusFault, pl.Base)
		}

		per, err := f(mc, pl)
		if err != nil {
			return nil, err
		}

		mc.regions = append(mc.regions, region{
			base: pl.Base,
			size: regionSize(pl.Kind),
			per:  per,
		})
	}

	return mc, nil
}

// line resolves an interrupt number to a Line through the delivery hook.
func (mc *MCU) line(num int) peripherals.Line {
	if mc.irq == nil {
		return nil
	}
	return mc.irq(num)
}

// adcTrigger returns the line a timer pulses to start an ADC conversion.
func (mc *MCU) adcTrigger() peripherals.Line {
	if mc.ADC == nil {
		return nil
	}
	return mc.ADC.Trigger
}

// Peripheral returns the peripheral mapped at the address, along with the
// offset of the address inside its register block. The bool return value is
// false if the address is unmapped.
func (mc *MCU) Peripheral(address uint32) (peripherals.Peripheral, uint32, bool) {
	for _, r := range mc.regions {
		if address >= r.base && address < r.base+r.size {
			return r.per, address - r.base, true
		}
	}
	return nil, 0, false
}

// Read a register anywhere in the peripheral address space.
func (mc *MCU) Read(address uint32, size int) (uint32, error) {
	per, offset, ok := mc.Peripheral(address)
	if !ok {
		return 0, curated.Errorf(BusFault, address)
	}
	return per.Read(offset, size)
}

// Write a register anywhere in the peripheral address space.
func (mc *MCU) Write(address uint32, size int, value uint32) error {
	per, offset, ok := mc.Peripheral(address)
	if !ok {
		return curated.Errorf(BusFault, address)
	}
	return per.Write(offset, size, value)
}

// Reset the MCU to its power-on state.
func (mc *MCU) Reset() error {
	for _, r := range mc.regions {
		if err := r.per.Reset(); err != nil {
			return err
		}
	}
	return nil
}

// Run the emulation until the virtual clock reaches t.
func (mc *MCU) Run(t int64) error {
	return mc.Clk.RunUntil(t)
}
