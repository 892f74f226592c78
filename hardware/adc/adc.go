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

// Package adc implements the analogue to digital converter. The block is
// only partially emulated: enough for guests that use a combined ADC and
// timer tick.
//
// Actual analogue inputs are not modelled. A triggered sample is synthesised
// from a free-running noise accumulator, because some guests use the ADC as
// a random number source and a constant value would starve them.
//
// Each of the four sample sequencers owns a 16 entry FIFO. FIFO overflow and
// underflow are recoverable conditions reported through status registers,
// never faults.
package adc

import (
	"fmt"

	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/environment"
	"github.com/stellago/stellago/hardware/peripherals"
)

// RegionSize is the size of the register region in bytes.
const RegionSize = 0x1000

// NumSequencers is the number of sample sequencers in the block. Each
// sequencer has its own interrupt line.
const NumSequencers = 4

// global register offsets.
const (
	regActive      = 0x00
	regRawStatus   = 0x04
	regIntMask     = 0x08
	regIntClear    = 0x0c
	regOverflow    = 0x10
	regEventMux    = 0x14
	regUnderflow   = 0x18
	regSeqPriority = 0x20
	regSampleInit  = 0x28
	regAveraging   = 0x30
)

// the per-sequencer register window. offsets inside the window are relative
// to the start of the sequencer's block.
const (
	seqWindowStart = 0x40
	seqWindowEnd   = 0xc0
	seqWindowShift = 5

	seqRegMux      = 0x00
	seqRegControl  = 0x04
	seqRegFifo     = 0x08
	seqRegFifoStat = 0x0c
)

// the event mux value that selects the timer as a sequencer's trigger
// source.
const muxTimer = 5

// the only sample sequence configuration the emulation supports: a single
// step, interrupt enabled, end of sequence.
const supportedSequence = 6

// fault patterns.
const (
	UnimplementedSequence = "adc: sample sequence %#08x"
	UnimplementedInitiate = "adc: software sample initiate"
)

// the linear congruential step of the noise accumulator.
const (
	noiseMultiplier = 314159
	noiseIncrement  = 1
)

// sequencer is one of the four sample sequencers.
type sequencer struct {
	fifo fifo
	mux  uint32
	ctl  uint32
}

// ADC implements the analogue to digital converter block.
type ADC struct {
	env *environment.Environment

	// one interrupt line per sequencer
	irq [NumSequencers]peripherals.Line

	active    uint32
	status    uint32
	mask      uint32
	eventMux  uint32
	overflow  uint32
	underflow uint32
	priority  uint32
	averaging uint32

	seq [NumSequencers]sequencer

	// free-running accumulator that synthesises sample values
	noise uint32
}

// NewADC is the preferred method of initialisation for the ADC type.
func NewADC(env *environment.Environment, irq [NumSequencers]peripherals.Line) *ADC {
	ad := &ADC{
		env: env,
		irq: irq,
	}

	ad.Reset()

	// an unknown power-on state gives guests that use the ADC as an entropy
	// source something to work with
	if env.Prefs.RandomState.Get().(bool) {
		ad.noise = env.Random.Uint32()
	}

	return ad
}

// Label implements the peripherals.Peripheral interface.
func (ad *ADC) Label() string {
	return "ADC"
}

func (ad *ADC) String() string {
	return fmt.Sprintf("actss=%#02x ris=%#02x im=%#02x emux=%#08x", ad.active, ad.status, ad.mask, ad.eventMux)
}

// Reset implements the peripherals.Peripheral interface. The noise
// accumulator is deliberately left alone, it free-runs across resets.
func (ad *ADC) Reset() error {
	for n := range ad.seq {
		ad.seq[n].mux = 0
		ad.seq[n].ctl = 0
		ad.seq[n].fifo.reset()
	}

	ad.updateIRQ()

	return nil
}

func (ad *ADC) updateIRQ() {
	for n := 0; n < NumSequencers; n++ {
		ad.irq[n].Set(ad.status&ad.mask&(1<<n) != 0)
	}
}

// Trigger is the sample trigger input, wired to the timer module's alternate
// output by board composition. The level is ignored; every delivered edge
// samples once into each sequencer that is active and selects the timer as
// its trigger source.
func (ad *ADC) Trigger(_ bool) {
	for n := 0; n < NumSequencers; n++ {
		if ad.active&(1<<n) == 0 {
			continue
		}

		// quirk: the mux field test uses an 8-bit mask over the 4-bit wide
		// per-sequencer field
		if ad.eventMux>>(n*4)&0xff != muxTimer {
			continue
		}

		ad.noise = ad.noise*noiseMultiplier + noiseIncrement
		ad.seq[n].fifoWrite(ad, n, 0x200+(ad.noise>>16&0x07))
		ad.status |= 1 << n
		ad.updateIRQ()
	}
}

// Read implements the peripherals.Peripheral interface.
func (ad *ADC) Read(offset uint32, _ int) (uint32, error) {
	if offset >= seqWindowStart && offset < seqWindowEnd {
		n := int(offset-seqWindowStart) >> seqWindowShift
		switch offset & 0x1f {
		case seqRegMux:
			return ad.seq[n].mux, nil
		case seqRegControl:
			return ad.seq[n].ctl, nil
		case seqRegFifo:
			return ad.seq[n].fifoRead(ad, n), nil
		case seqRegFifoStat:
			return ad.seq[n].fifo.state, nil
		}
	}

	switch offset {
	case regActive:
		return ad.active, nil
	case regRawStatus:
		return ad.status, nil
	case regIntMask:
		return ad.mask, nil
	case regIntClear:
		return ad.status & ad.mask, nil
	case regOverflow:
		return ad.overflow, nil
	case regEventMux:
		return ad.eventMux, nil
	case regUnderflow:
		return ad.underflow, nil
	case regSeqPriority:
		return ad.priority, nil
	case regAveraging:
		return ad.averaging, nil
	}

	return 0, curated.Errorf(peripherals.BadOffset, curated.Errorf("adc: read %#03x", offset))
}

// Write implements the peripherals.Peripheral interface.
func (ad *ADC) Write(offset uint32, _ int, value uint32) error {
	if offset >= seqWindowStart && offset < seqWindowEnd {
		n := int(offset-seqWindowStart) >> seqWindowShift
		switch offset & 0x1f {
		case seqRegMux:
			ad.seq[n].mux = value & 0x33333333
			return nil
		case seqRegControl:
			if value != supportedSequence {
				return curated.Errorf(peripherals.Unimplemented, curated.Errorf(UnimplementedSequence, value))
			}
			ad.seq[n].ctl = value
			return nil
		}
	}

	switch offset {
	case regActive:
		ad.active = value & 0xf

	case regIntMask:
		ad.mask = value

	case regIntClear:
		ad.status &= ^value

	case regOverflow:
		ad.overflow &= ^value

	case regEventMux:
		ad.eventMux = value

	case regUnderflow:
		ad.underflow &= ^value

	case regSeqPriority:
		ad.priority = value

	case regSampleInit:
		return curated.Errorf(peripherals.Unimplemented, curated.Errorf(UnimplementedInitiate))

	case regAveraging:
		ad.averaging = value

	default:
		return curated.Errorf(peripherals.BadOffset, curated.Errorf("adc: write %#03x", offset))
	}

	ad.updateIRQ()

	return nil
}

// Snapshot creates a copy of the ADC in its current state.
func (ad *ADC) Snapshot() *ADC {
	n := *ad
	return &n
}

// Plumb the ADC back into the emulation after a Snapshot() has been
// restored.
func (ad *ADC) Plumb(env *environment.Environment, irq [NumSequencers]peripherals.Line) {
	ad.env = env
	ad.irq = irq
	ad.updateIRQ()
}
