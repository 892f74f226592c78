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

package i2c

// Bus is the abstract serial bus the master controller drives. It is shared
// by every controller and device wired to it; its lifetime is the lifetime
// of the board.
type Bus interface {
	// Acquire the bus for a transfer with the device at the 7-bit address.
	// The read flag selects the direction of the subsequent byte transfers.
	// Returns false if the bus is already owned or if no device answers
	Acquire(address uint8, read bool) bool

	// Busy returns true while a transfer is in progress
	Busy() bool

	// Send one byte to the addressed device
	Send(data uint8)

	// Recv one byte from the addressed device
	Recv() uint8

	// Release the bus, ending the transfer
	Release()
}

// Device is an emulated slave device that can be attached to a SharedBus.
type Device interface {
	// Address is the device's 7-bit bus address
	Address() uint8

	// Start is called when a master addresses the device. returning false
	// refuses the transfer (no acknowledge)
	Start(read bool) bool

	// Send a byte from the master to the device
	Send(data uint8)

	// Recv a byte from the device
	Recv() uint8

	// End of transfer
	End()
}

// SharedBus is the concrete Bus used by the MCU. Devices are attached by
// board composition.
type SharedBus struct {
	devices []Device

	// the device currently addressed. nil when the bus is idle
	current Device
}

// NewSharedBus is the preferred method of initialisation for the SharedBus
// type.
func NewSharedBus() *SharedBus {
	return &SharedBus{
		devices: make([]Device, 0),
	}
}

// Attach a device to the bus.
func (b *SharedBus) Attach(dev Device) {
	b.devices = append(b.devices, dev)
}

// Acquire implements the Bus interface.
func (b *SharedBus) Acquire(address uint8, read bool) bool {
	if b.current != nil {
		return false
	}
	for _, dev := range b.devices {
		if dev.Address() == address {
			if !dev.Start(read) {
				return false
			}
			b.current = dev
			return true
		}
	}
	return false
}

// Busy implements the Bus interface.
func (b *SharedBus) Busy() bool {
	return b.current != nil
}

// Send implements the Bus interface.
func (b *SharedBus) Send(data uint8) {
	if b.current != nil {
		b.current.Send(data)
	}
}

// Recv implements the Bus interface.
func (b *SharedBus) Recv() uint8 {
	if b.current == nil {
		return 0xff
	}
	return b.current.Recv()
}

// Release implements the Bus interface.
func (b *SharedBus) Release() {
	if b.current != nil {
		b.current.End()
		b.current = nil
	}
}
