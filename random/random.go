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

// Package random should be used in preference to the math/rand package when
// a random number is required inside the emulation. The numbers are tied to
// the virtual clock, meaning that two runs of the same machine advancing
// through the same virtual time will see the same random sequence. Required
// for reproducible tests and parallel emulations.
package random

import (
	"math/rand"
	"time"

	"github.com/stellago/stellago/hardware/clock"
)

// the base seed for all random numbers.
var baseSeed int64

// initialise base seed.
func init() {
	baseSeed = int64(time.Now().Nanosecond())
}

// Random is a random number generator that is sensitive to time within the
// emulation.
type Random struct {
	clk clock.Clock

	// use zero seed rather than the random base seed. this is only really
	// useful for normalised instances where random numbers must be
	// predictable
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(clk clock.Clock) *Random {
	return &Random{
		clk: clk,
	}
}

// new RNG from the standard library.
func (rnd *Random) rand() *rand.Rand {
	if rnd.ZeroSeed {
		return rand.New(rand.NewSource(rnd.clk.Now()))
	}
	return rand.New(rand.NewSource(baseSeed + rnd.clk.Now()))
}

// Intn returns a random integer in the range 0 to n.
func (rnd *Random) Intn(n int) int {
	return rnd.rand().Intn(n)
}

// Uint32 returns a random 32 bit value.
func (rnd *Random) Uint32() uint32 {
	return rnd.rand().Uint32()
}
