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

// Package peripherals defines the concepts shared by every emulated
// peripheral: the register access interface, the level-triggered output
// line, the fault sentinels and the board composition data.
package peripherals

// Kind identifies a type of peripheral. Used as the key into the MCU's
// factory registry.
type Kind string

// List of valid Kind values.
const (
	SSYS Kind = "SSYS"
	GPTM Kind = "GPTM"
	I2C  Kind = "I2C"
	ADC  Kind = "ADC"
)

// Peripheral is the register access surface of an emulated device. Offsets
// are relative to the peripheral's base address. The size argument is the
// width of the access in bytes; the emulated peripherals treat every access
// as a word access, the argument exists for firmware compatibility of the
// boundary.
//
// Errors returned from Read and Write are either ordinary errors or fatal
// faults wrapping the Unimplemented or BadOffset sentinels. Fatal faults
// indicate unmodelled guest behaviour and should end the emulation loudly.
// They are never used for conditions the guest firmware is expected to
// recover from; those are represented as status register bits.
type Peripheral interface {
	Label() string
	Reset() error
	Read(offset uint32, size int) (uint32, error)
	Write(offset uint32, size int, value uint32) error
}

// Unimplemented is the sentinel pattern wrapped by every fault caused by
// guest firmware touching a feature the emulation does not model. Check with
// curated.Has().
const Unimplemented = "unimplemented: %v"

// BadOffset is the sentinel pattern wrapped by every fault caused by an
// access to an undefined register offset. Check with curated.Has().
const BadOffset = "bad register offset: %v"
