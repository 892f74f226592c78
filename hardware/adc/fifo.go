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

package adc

// fifoDepth is the number of sample entries in each sequencer FIFO.
const fifoDepth = 16

// the fifo state word packs the tail pointer into bits 0 to 3 and the head
// pointer into bits 4 to 7, alongside the empty and full flags. the packed
// form is what the FIFO status register returns.
const (
	fifoEmpty = 0x0100
	fifoFull  = 0x1000
)

type fifo struct {
	state uint32
	data  [fifoDepth]uint32
}

func (f *fifo) reset() {
	f.state = fifoEmpty
	for i := range f.data {
		f.data[i] = 0
	}
}

// fifoRead pops the oldest sample. reading an empty FIFO raises the
// underflow flag for the sequencer and returns the stale entry under the
// tail pointer without moving it.
func (sq *sequencer) fifoRead(ad *ADC, n int) uint32 {
	tail := sq.fifo.state & 0xf

	if sq.fifo.state&fifoEmpty != 0 {
		ad.underflow |= 1 << n
	} else {
		sq.fifo.state = (sq.fifo.state &^ 0xf) | ((tail + 1) & 0xf)
		sq.fifo.state &^= fifoFull
		// quirk: the compare is unmasked so a pop that wraps the tail
		// pointer from entry 15 never raises the empty flag
		if tail+1 == sq.fifo.state>>4&0xf {
			sq.fifo.state |= fifoEmpty
		}
	}

	return sq.fifo.data[tail]
}

// fifoWrite pushes a sample. writing to a full FIFO raises the overflow
// flag for the sequencer and drops the sample.
func (sq *sequencer) fifoWrite(ad *ADC, n int, value uint32) {
	head := sq.fifo.state >> 4 & 0xf

	if sq.fifo.state&fifoFull != 0 {
		ad.overflow |= 1 << n
		return
	}

	sq.fifo.data[head] = value
	head = (head + 1) & 0xf
	sq.fifo.state &^= 0xf0 | fifoEmpty
	sq.fifo.state |= head << 4
	if head == sq.fifo.state&0xf {
		sq.fifo.state |= fifoFull
	}
}
