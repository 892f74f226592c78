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

// Package clock provides the virtual time base that drives the emulated
// peripherals. Time is measured in virtual nanoseconds and only moves when
// the Timeline is told to advance, so emulation speed is completely
// decoupled from wall-clock time.
//
// Peripherals never block. A peripheral that needs to act in the future
// schedules an event at an absolute deadline and returns. Events for the
// same Timeline are strictly serialised with register accesses, there is no
// preemption.
package clock

// TicksPerSecond is the number of virtual clock ticks in one virtual second.
const TicksPerSecond = 1000000000

// HandleID identifies a scheduled event so that it can be cancelled. The
// zero value is never a valid handle.
type HandleID int

// NilHandle is the zero value of HandleID.
const NilHandle HandleID = 0

// Event is the callback run when a scheduled deadline is reached. A non-nil
// error stops the run loop and is returned to the caller of Advance() or
// RunUntil(). Peripherals use this to surface unimplemented-feature faults
// from inside a fire callback.
type Event func() error

// Clock is the interface to the virtual time base as seen by a peripheral.
type Clock interface {
	// Now returns the current virtual time
	Now() int64

	// ScheduleAt registers ev to run at virtual time t. A deadline in the
	// past fires on the next advance
	ScheduleAt(t int64, ev Event) HandleID

	// Cancel a previously scheduled event. Cancelling an unknown or already
	// fired handle is a no-op
	Cancel(id HandleID)
}
