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

// Package gptm implements the general purpose timer module: two 16-bit
// counters that can be ganged into a single 32-bit countdown timer or a
// 32-bit RTC.
//
// The timers should be disabled by the guest before changing the
// configuration. The emulation takes advantage of this and defers everything
// until a timer is enabled: writes to the load, match and prescale registers
// never disturb an already armed deadline.
//
// Timer deadlines are scheduled against the virtual clock. The length of a
// countdown tick is not owned by this package; it is read from the system
// controller through the ClockScaler interface every time a deadline is
// computed.
package gptm

import (
	"fmt"

	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/environment"
	"github.com/stellago/stellago/hardware/clock"
	"github.com/stellago/stellago/hardware/peripherals"
)

// RegionSize is the size of the register region in bytes.
const RegionSize = 0x1000

// register offsets.
const (
	regConfig       = 0x00
	regModeA        = 0x04
	regModeB        = 0x08
	regControl      = 0x0c
	regIntMask      = 0x18
	regRawStatus    = 0x1c
	regMaskedStatus = 0x20
	regIntClear     = 0x24
	regLoadA        = 0x28
	regLoadB        = 0x2c
	regMatchA       = 0x30
	regMatchB       = 0x34
	regPrescaleA    = 0x38
	regPrescaleB    = 0x3c
	regPrescMatchA  = 0x40
	regPrescMatchB  = 0x44
	regValueA       = 0x48
	regValueB       = 0x4c
)

// config register values. values >= 4 split the timer into two independent
// 16-bit channels.
const (
	config32Countdown = 0
	config32RTC       = 1
)

// control register bits.
const (
	ctrlEnableA    = 0x001
	ctrlTriggerADC = 0x020
	ctrlEnableB    = 0x100
)

// raw status bits.
const (
	statusTimeout  = 0x1
	statusRTCMatch = 0x8
)

// mode register bits and values.
const (
	modeOneShot = 0x1

	// guests that program PWM mode get a silently dead output rather than a
	// fault. waveform generation is not implemented but the mode is common
	// enough that faulting on it would make too many programs unrunnable
	modePWM = 0xa
)

// fault patterns.
const (
	UnimplementedMode = "gptm: 16-bit timer mode %#04x"
	LiveValueRead     = "gptm: live timer value read"
)

// ClockScaler provides the current system clock period in virtual
// nanoseconds per tick. Implemented by the system controller.
type ClockScaler interface {
	ClockScale() int64
}

// GPTM implements one general purpose timer module. Boards carry several
// instances.
type GPTM struct {
	env   *environment.Environment
	clk   clock.Clock
	scale ClockScaler

	irq     peripherals.Line
	trigger peripherals.Line

	// instance number of this timer module on the board
	num int

	config  uint32
	mode    [2]uint32
	control uint32
	status  uint32
	mask    uint32

	load          [2]uint32
	match         [2]uint32
	prescale      [2]uint32
	matchPrescale [2]uint32

	rtc uint32

	// absolute virtual time of each channel's pending fire. meaningful only
	// while the channel is armed. kept after a fire so that a periodic
	// reload can extend from the previous deadline, preserving phase
	deadline [2]int64
	armed    [2]bool

	handle [2]clock.HandleID
}

// NewGPTM is the preferred method of initialisation for the GPTM type.
//
// The trigger line is the timer's alternate output, pulsed to start an ADC
// sample when the trigger control bit is set.
func NewGPTM(env *environment.Environment, num int, clk clock.Clock, scale ClockScaler, irq peripherals.Line, trigger peripherals.Line) *GPTM {
	return &GPTM{
		env:     env,
		num:     num,
		clk:     clk,
		scale:   scale,
		irq:     irq,
		trigger: trigger,
	}
}

// Label implements the peripherals.Peripheral interface.
func (gp *GPTM) Label() string {
	return fmt.Sprintf("GPTM%d", gp.num)
}

func (gp *GPTM) String() string {
	return fmt.Sprintf("cfg=%d ctl=%#04x ris=%#02x imr=%#02x load=%#08x",
		gp.config, gp.control, gp.status, gp.mask, gp.load[0]|gp.load[1]<<16)
}

// Reset implements the peripherals.Peripheral interface.
func (gp *GPTM) Reset() error {
	gp.stop(0)
	gp.stop(1)

	*gp = GPTM{
		env:     gp.env,
		num:     gp.num,
		clk:     gp.clk,
		scale:   gp.scale,
		irq:     gp.irq,
		trigger: gp.trigger,
	}

	gp.updateIRQ()

	return nil
}

func (gp *GPTM) updateIRQ() {
	gp.irq.Set(gp.status&gp.mask != 0)
}

// arm the channel's clock event at the channel's current deadline.
func (gp *GPTM) schedule(ch int) {
	gp.clk.Cancel(gp.handle[ch])
	gp.handle[ch] = gp.clk.ScheduleAt(gp.deadline[ch], func() error {
		return gp.fire(ch)
	})
	gp.armed[ch] = true
}

// stop cancels the channel's pending fire without disturbing the counters.
func (gp *GPTM) stop(ch int) {
	gp.clk.Cancel(gp.handle[ch])
	gp.handle[ch] = clock.NilHandle
	gp.armed[ch] = false
}

// reload computes the channel's next deadline and arms it. when reset is
// true the deadline is measured from the current virtual time (the channel
// has just been enabled); otherwise it extends from the channel's previous
// deadline so that a periodic timer keeps its phase.
func (gp *GPTM) reload(ch int, reset bool) error {
	base := gp.deadline[ch]
	if reset {
		base = gp.clk.Now()
	}

	if gp.config == config32Countdown {
		count := int64(gp.load[0] | gp.load[1]<<16)
		base += count * gp.scale.ClockScale()
	} else if gp.config == config32RTC {
		// the RTC ticks at a fixed 1Hz, independent of the system clock
		base += clock.TicksPerSecond
	} else if gp.mode[ch] == modePWM {
		// PWM mode. not implemented
	} else {
		return curated.Errorf(peripherals.Unimplemented, curated.Errorf(UnimplementedMode, gp.mode[ch]))
	}

	gp.deadline[ch] = base
	gp.schedule(ch)

	return nil
}

// fire is the clock event callback for a channel reaching its deadline.
func (gp *GPTM) fire(ch int) error {
	gp.armed[ch] = false
	gp.handle[ch] = clock.NilHandle

	var err error

	if gp.config == config32Countdown {
		gp.status |= statusTimeout

		if gp.control&ctrlTriggerADC != 0 {
			// the timer's alternate output starts an ADC sample
			gp.trigger.Pulse()
		}

		if gp.mode[0]&modeOneShot == modeOneShot {
			// one-shot. the enable bit clears itself and no new deadline is
			// scheduled
			gp.control &= ^uint32(ctrlEnableA)
		} else {
			// periodic
			err = gp.reload(ch, false)
		}
	} else if gp.config == config32RTC {
		gp.rtc++
		match := gp.match[0] | gp.match[1]<<16
		if gp.rtc > match {
			gp.rtc = 0
		}
		if gp.rtc == 0 {
			gp.status |= statusRTCMatch
		}
		err = gp.reload(ch, false)
	} else if gp.mode[ch] == modePWM {
		// PWM mode. not implemented
	} else {
		err = curated.Errorf(peripherals.Unimplemented, curated.Errorf(UnimplementedMode, gp.mode[ch]))
	}

	gp.updateIRQ()

	return err
}

// Read implements the peripherals.Peripheral interface.
func (gp *GPTM) Read(offset uint32, _ int) (uint32, error) {
	switch offset {
	case regConfig:
		return gp.config, nil
	case regModeA:
		return gp.mode[0], nil
	case regModeB:
		return gp.mode[1], nil
	case regControl:
		return gp.control, nil
	case regIntMask:
		return gp.mask, nil
	case regRawStatus:
		return gp.status, nil
	case regMaskedStatus:
		return gp.status & gp.mask, nil
	case regIntClear:
		return 0, nil
	case regLoadA:
		if gp.config < 4 {
			return gp.load[0] | gp.load[1]<<16, nil
		}
		return gp.load[0], nil
	case regLoadB:
		return gp.load[1], nil
	case regMatchA:
		if gp.config < 4 {
			return gp.match[0] | gp.match[1]<<16, nil
		}
		return gp.match[0], nil
	case regMatchB:
		return gp.match[1], nil
	case regPrescaleA:
		return gp.prescale[0], nil
	case regPrescaleB:
		return gp.prescale[1], nil
	case regPrescMatchA:
		return gp.matchPrescale[0], nil
	case regPrescMatchB:
		return gp.matchPrescale[1], nil
	case regValueA:
		// quirk: the RTC counter is returned when the control register is
		// exactly 1, not when the config register selects RTC mode
		if gp.control == 1 {
			return gp.rtc, nil
		}
		// reading the live count of a free-running timer is not modelled
		return 0, curated.Errorf(peripherals.Unimplemented, curated.Errorf(LiveValueRead))
	case regValueB:
		return 0, curated.Errorf(peripherals.Unimplemented, curated.Errorf(LiveValueRead))
	}

	return 0, curated.Errorf(peripherals.BadOffset, curated.Errorf("gptm: read %#03x", offset))
}

// Write implements the peripherals.Peripheral interface.
func (gp *GPTM) Write(offset uint32, _ int, value uint32) error {
	switch offset {
	case regConfig:
		gp.config = value

	case regModeA:
		gp.mode[0] = value

	case regModeB:
		gp.mode[1] = value

	case regControl:
		oldval := gp.control
		gp.control = value

		// an enable bit transition is the only point at which deferred
		// configuration takes effect
		if (oldval^value)&ctrlEnableA != 0 {
			if value&ctrlEnableA != 0 {
				if err := gp.reload(0, true); err != nil {
					return err
				}
			} else {
				gp.stop(0)
			}
		}
		if (oldval^value)&ctrlEnableB != 0 && gp.config >= 4 {
			if value&ctrlEnableB != 0 {
				if err := gp.reload(1, true); err != nil {
					return err
				}
			} else {
				gp.stop(1)
			}
		}

	case regIntMask:
		gp.mask = value & 0x77

	case regIntClear:
		gp.status &= ^value

	case regLoadA:
		gp.load[0] = value & 0xffff
		if gp.config < 4 {
			gp.load[1] = value >> 16
		}

	case regLoadB:
		gp.load[1] = value & 0xffff

	case regMatchA:
		gp.match[0] = value & 0xffff
		if gp.config < 4 {
			gp.match[1] = value >> 16
		}

	case regMatchB:
		// quirk: the B match value is taken from the top half of the write
		gp.match[1] = value >> 16

	case regPrescaleA:
		gp.prescale[0] = value

	case regPrescaleB:
		gp.prescale[1] = value

	case regPrescMatchA:
		gp.matchPrescale[0] = value

	case regPrescMatchB:
		// quirk: the write lands on the A register
		gp.matchPrescale[0] = value

	default:
		return curated.Errorf(peripherals.BadOffset, curated.Errorf("gptm: write %#03x", offset))
	}

	gp.updateIRQ()

	return nil
}

// Snapshot creates a copy of the GPTM in its current state.
func (gp *GPTM) Snapshot() *GPTM {
	n := *gp
	return &n
}

// Plumb the GPTM back into the emulation after a Snapshot() has been
// restored. Channels that were armed when the snapshot was taken are
// re-armed at their stored absolute deadlines, so a restored machine
// resumes without an extra or missing fire.
func (gp *GPTM) Plumb(env *environment.Environment, clk clock.Clock, scale ClockScaler, irq peripherals.Line, trigger peripherals.Line) {
	gp.env = env
	gp.clk = clk
	gp.scale = scale
	gp.irq = irq
	gp.trigger = trigger

	for ch := 0; ch < 2; ch++ {
		gp.handle[ch] = clock.NilHandle
		if gp.armed[ch] {
			gp.schedule(ch)
		}
	}

	gp.updateIRQ()
}
