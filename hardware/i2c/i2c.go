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

// Package i2c implements the I2C master controller. Only the master
// interface is emulated; slave mode and loopback are unimplemented faults.
//
// Byte timing is not emulated. A transfer requested by a control register
// write completes within that same write, so the controller never reads back
// as busy. Contention for the shared bus is real however: a start request
// while another master owns the bus reports arbitration loss through the
// status register.
package i2c

import (
	"fmt"

	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/environment"
	"github.com/stellago/stellago/hardware/peripherals"
)

// RegionSize is the size of the register region in bytes.
const RegionSize = 0x1000

// register offsets.
const (
	regSlaveAddress  = 0x00
	regControlStatus = 0x04
	regData          = 0x08
	regTimerPeriod   = 0x0c
	regIntMask       = 0x10
	regRawStatus     = 0x14
	regMaskedStatus  = 0x18
	regIntClear      = 0x1c
	regMasterConfig  = 0x20
)

// control/status register bits. the register reads as status and writes as
// command.
const (
	statusBusy    = 0x01
	statusError   = 0x02
	statusAddrAck = 0x04
	statusDataAck = 0x08
	statusArbLost = 0x10
	statusIdle    = 0x20
	statusBusBusy = 0x40

	cmdRun   = 0x01
	cmdStart = 0x02
	cmdStop  = 0x04
)

// master config register bits.
const (
	cfgLoopback = 0x01
	cfgMaster   = 0x10
	cfgSlave    = 0x20
)

// fault patterns.
const (
	UnimplementedLoopback = "i2c: loopback mode"
	UnimplementedSlave    = "i2c: slave mode"
)

// Controller implements the I2C master controller block.
type Controller struct {
	env *environment.Environment
	bus Bus
	irq peripherals.Line

	slaveAddress  uint32
	controlStatus uint32
	data          uint32
	timerPeriod   uint32
	mask          uint32
	status        uint32
	masterConfig  uint32
}

// NewController is the preferred method of initialisation for the Controller
// type. The bus is shared with the devices wired to it by board composition.
func NewController(env *environment.Environment, bus Bus, irq peripherals.Line) *Controller {
	ct := &Controller{
		env: env,
		bus: bus,
		irq: irq,
	}

	ct.Reset()

	return ct
}

// Label implements the peripherals.Peripheral interface.
func (ct *Controller) Label() string {
	return "I2C"
}

func (ct *Controller) String() string {
	return fmt.Sprintf("msa=%#02x mcs=%#02x mcr=%#02x", ct.slaveAddress, ct.controlStatus, ct.masterConfig)
}

// Reset implements the peripherals.Peripheral interface.
func (ct *Controller) Reset() error {
	// a transfer in flight is abandoned, not left holding the bus
	if ct.controlStatus&statusBusBusy != 0 {
		ct.bus.Release()
	}

	ct.slaveAddress = 0
	ct.controlStatus = 0
	ct.data = 0
	ct.timerPeriod = 1
	ct.mask = 0
	ct.status = 0
	ct.masterConfig = 0

	ct.updateIRQ()

	return nil
}

func (ct *Controller) updateIRQ() {
	ct.irq.Set(ct.status&ct.mask != 0)
}

// Read implements the peripherals.Peripheral interface.
func (ct *Controller) Read(offset uint32, _ int) (uint32, error) {
	switch offset {
	case regSlaveAddress:
		return ct.slaveAddress, nil
	case regControlStatus:
		// byte timing is not emulated, so the controller is never busy
		return ct.controlStatus | statusIdle, nil
	case regData:
		return ct.data, nil
	case regTimerPeriod:
		return ct.timerPeriod, nil
	case regIntMask:
		return ct.mask, nil
	case regRawStatus:
		return ct.status, nil
	case regMaskedStatus:
		return ct.status & ct.mask, nil
	case regMasterConfig:
		return ct.masterConfig, nil
	}

	return 0, curated.Errorf(peripherals.BadOffset, curated.Errorf("i2c: read %#03x", offset))
}

// a command written to the control/status register. start acquires the bus,
// run transfers one byte, stop releases the bus. all three can be combined
// in a single write.
func (ct *Controller) command(value uint32) {
	if ct.masterConfig&cfgMaster == 0 {
		// master function disabled. do nothing
		return
	}

	// grab the bus if this is starting a transfer
	if value&cmdStart != 0 && ct.controlStatus&statusBusBusy == 0 {
		read := ct.slaveAddress&0x01 == 0x01
		if !ct.bus.Acquire(uint8(ct.slaveAddress>>1), read) {
			ct.controlStatus |= statusArbLost
		} else {
			ct.controlStatus &= ^uint32(statusArbLost)
			ct.controlStatus |= statusBusBusy
		}
	}

	// if we don't have the bus then indicate an error. nothing else in the
	// command is acted on
	if !ct.bus.Busy() || ct.controlStatus&statusBusBusy == 0 {
		ct.controlStatus |= statusError
		return
	}
	ct.controlStatus &= ^uint32(statusError)

	if value&cmdRun != 0 {
		// transfer one byte in the direction given by the address register's
		// read/write bit
		if ct.slaveAddress&0x01 == 0x01 {
			ct.data = uint32(ct.bus.Recv())
		} else {
			ct.bus.Send(uint8(ct.data))
		}

		// byte done. raise an interrupt
		ct.status |= 0x01
	}

	if value&cmdStop != 0 {
		ct.bus.Release()
		ct.controlStatus &= ^uint32(statusBusBusy)
	}
}

// Write implements the peripherals.Peripheral interface.
func (ct *Controller) Write(offset uint32, _ int, value uint32) error {
	switch offset {
	case regSlaveAddress:
		ct.slaveAddress = value & 0xff

	case regControlStatus:
		ct.command(value)

	case regData:
		ct.data = value & 0xff

	case regTimerPeriod:
		ct.timerPeriod = value & 0xff

	case regIntMask:
		// quirk: the mask is set to 1 regardless of the written value
		ct.mask = 1

	case regIntClear:
		ct.status &= ^value

	case regMasterConfig:
		if value&cfgLoopback != 0 {
			return curated.Errorf(peripherals.Unimplemented, curated.Errorf(UnimplementedLoopback))
		}
		if value&cfgSlave != 0 {
			return curated.Errorf(peripherals.Unimplemented, curated.Errorf(UnimplementedSlave))
		}
		ct.masterConfig = value & 0x31

	default:
		return curated.Errorf(peripherals.BadOffset, curated.Errorf("i2c: write %#03x", offset))
	}

	ct.updateIRQ()

	return nil
}

// Snapshot creates a copy of the Controller in its current state.
func (ct *Controller) Snapshot() *Controller {
	n := *ct
	return &n
}

// Plumb the Controller back into the emulation after a Snapshot() has been
// restored. The bus is a shared resource and is supplied by the board, not
// the snapshot. Bus ownership is not restored with it: a snapshot taken
// mid-transfer carries the busy flag but not the claim on the bus, so the
// restored controller reports an error on its next run command rather than
// resuming the transfer. Guests recover by starting the transfer again.
func (ct *Controller) Plumb(env *environment.Environment, bus Bus, irq peripherals.Line) {
	ct.env = env
	ct.bus = bus
	ct.irq = irq
	ct.updateIRQ()
}
