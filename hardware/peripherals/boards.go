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

package peripherals

import (
	"strings"
)

// BoardInfo describes one supported board: the identity registers of its
// silicon and the device-capability words that say which peripherals are
// present. The values are immutable once the board is defined.
type BoardInfo struct {
	Name string

	// device identity. DID0 encodes the silicon version/class and determines
	// some reset defaults in the system controller
	DID0 uint32
	DID1 uint32

	// device capability words
	DC0 uint32
	DC1 uint32
	DC2 uint32
	DC3 uint32
	DC4 uint32
}

// capability bit tests, per the Luminary device capability register layout.

// HasADC returns true if the board's silicon includes the ADC block.
func (b BoardInfo) HasADC() bool {
	return b.DC1&(1<<16) != 0
}

// HasTimer returns true if the board's silicon includes general purpose
// timer block n (0 to 3).
func (b BoardInfo) HasTimer(n int) bool {
	return b.DC2&(0x10000<<n) != 0
}

// HasI2C returns true if the board's silicon includes the I2C master block.
func (b BoardInfo) HasI2C() bool {
	return b.DC2&(1<<12) != 0
}

// FlashSize in bytes.
func (b BoardInfo) FlashSize() int {
	return int((b.DC0&0xffff)+1) << 1 * 1024
}

// Placement of the peripheral blocks in the address space, with their
// interrupt assignments. The same silicon layout is shared by every
// supported board; which entries are actually populated depends on the
// capability words.
type Placement struct {
	Kind Kind

	// instance number for peripherals that appear more than once (timers)
	Num int

	// base address of the register block
	Base uint32

	// interrupt numbers at the external aggregator. most peripherals own a
	// single line; the ADC owns one line per sequencer
	IRQ []int
}

// Placements returns the peripheral composition of the board as data. Order
// is deterministic.
func (b BoardInfo) Placements() []Placement {
	p := make([]Placement, 0, 8)

	p = append(p, Placement{Kind: SSYS, Base: 0x40023800, IRQ: []int{28}})

	if b.HasADC() {
		p = append(p, Placement{Kind: ADC, Base: 0x40038000, IRQ: []int{14, 15, 16, 17}})
	}

	timerIRQ := []int{19, 21, 23, 35}
	for n := 0; n < 4; n++ {
		if b.HasTimer(n) {
			p = append(p, Placement{
				Kind: GPTM,
				Num:  n,
				Base: 0x40030000 + uint32(n)*0x1000,
				IRQ:  []int{timerIRQ[n]},
			})
		}
	}

	if b.HasI2C() {
		p = append(p, Placement{Kind: I2C, Base: 0x40020000, IRQ: []int{8}})
	}

	return p
}

// Boards is the list of supported boards.
var Boards = []BoardInfo{
	{
		Name: "lm3s811evb",
		DID0: 0,
		DID1: 0x0032000e,
		DC0:  0x001f001f,
		DC1:  0x001132bf,
		DC2:  0x01071013,
		DC3:  0x3f0f01ff,
		DC4:  0x0000001f,
	},
	{
		Name: "lm3s6965evb",
		DID0: 0x10010002,
		DID1: 0x1073402e,
		DC0:  0x00ff007f,
		DC1:  0x001133ff,
		DC2:  0x030f5317,
		DC3:  0x0f0f87ff,
		DC4:  0x5000007f,
	},
}

// FindBoard returns the BoardInfo for the named board. The second return
// value is false if the name is not recognised. Name comparison is case
// insensitive.
func FindBoard(name string) (BoardInfo, bool) {
	for _, b := range Boards {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return BoardInfo{}, false
}
