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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. It works like
// Errorf() in the fmt package, taking a formatting pattern and placeholder
// values, but the pattern string also acts as the identity of the error. The
// Is() function checks whether an error was created with a specific pattern:
//
//	e := curated.Errorf("gptm: unimplemented timer mode %#04x", mode)
//
//	if curated.Is(e, "gptm: unimplemented timer mode %#04x") {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks whether a pattern occurs anywhere
// in the error chain. This is how the hardware packages distinguish fatal
// unimplemented-feature faults from ordinary errors: every such fault wraps
// the peripherals.Unimplemented sentinel pattern and callers test for it
// with Has().
//
// Sentinel patterns should be stored as a const string, suitably named and
// commented.
//
// The Error() function implementation normalises the message chain so that
// duplicate adjacent parts appear only once. Parts of the chain are separated
// by the sub-string ": ", as suggested on p239 of "The Go Programming
// Language" (Donovan, Kernighan).
package curated
