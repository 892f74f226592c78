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

// Line is a level-triggered output line. Peripherals drive their interrupt
// and trigger outputs through a Line; what is on the other end (an interrupt
// aggregator, another peripheral's input, nothing) is decided by board
// composition.
//
// A nil Line is valid and swallows all activity.
type Line func(level bool)

// Set the level of the line.
func (l Line) Set(level bool) {
	if l != nil {
		l(level)
	}
}

// Pulse the line: high then immediately low. Both edges are delivered to the
// receiver.
func (l Line) Pulse() {
	l.Set(true)
	l.Set(false)
}
