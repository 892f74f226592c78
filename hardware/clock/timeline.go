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

package clock

type pending struct {
	id HandleID
	at int64
	ev Event
}

// Timeline is the deterministic implementation of the Clock interface used
// by the MCU. Events fire no earlier than their deadline. Events with the
// same deadline fire in the order they were scheduled.
type Timeline struct {
	now    int64
	lastID HandleID

	// the pending list is kept unsorted. the list is short (one entry per
	// armed timer channel) so a linear scan for the earliest deadline is
	// preferable to maintaining a heap
	events []pending
}

// NewTimeline is the preferred method of initialisation for the Timeline
// type.
func NewTimeline() *Timeline {
	return &Timeline{
		events: make([]pending, 0, 8),
	}
}

// Now implements the Clock interface.
func (tl *Timeline) Now() int64 {
	return tl.now
}

// ScheduleAt implements the Clock interface.
func (tl *Timeline) ScheduleAt(t int64, ev Event) HandleID {
	tl.lastID++
	tl.events = append(tl.events, pending{
		id: tl.lastID,
		at: t,
		ev: ev,
	})
	return tl.lastID
}

// Cancel implements the Clock interface.
func (tl *Timeline) Cancel(id HandleID) {
	if id == NilHandle {
		return
	}
	for i := range tl.events {
		if tl.events[i].id == id {
			tl.events = append(tl.events[:i], tl.events[i+1:]...)
			return
		}
	}
}

// index of the next event due at or before time t. returns -1 if there is
// none.
func (tl *Timeline) next(t int64) int {
	idx := -1
	for i := range tl.events {
		if tl.events[i].at > t {
			continue
		}
		if idx == -1 || tl.events[i].at < tl.events[idx].at ||
			(tl.events[i].at == tl.events[idx].at && tl.events[i].id < tl.events[idx].id) {
			idx = i
		}
	}
	return idx
}

// RunUntil advances virtual time to t, firing every event due on the way in
// deadline order. An event returning an error stops the run immediately.
// Virtual time is left at the deadline of the failed event in that case.
func (tl *Timeline) RunUntil(t int64) error {
	for {
		idx := tl.next(t)
		if idx == -1 {
			break // for loop
		}

		e := tl.events[idx]
		tl.events = append(tl.events[:idx], tl.events[idx+1:]...)

		// an event scheduled in the past fires "now" without winding time
		// backwards
		if e.at > tl.now {
			tl.now = e.at
		}

		if err := e.ev(); err != nil {
			return err
		}
	}

	if t > tl.now {
		tl.now = t
	}

	return nil
}

// Advance virtual time by duration d. See RunUntil().
func (tl *Timeline) Advance(d int64) error {
	return tl.RunUntil(tl.now + d)
}

// Pending returns the number of scheduled events. Useful in tests.
func (tl *Timeline) Pending() int {
	return len(tl.events)
}

// Plumb resets the Timeline for a restored machine state: all pending events
// are dropped and virtual time is set to now. Peripherals re-arm their own
// deadlines during their Plumb() functions.
func (tl *Timeline) Plumb(now int64) {
	tl.events = tl.events[:0]
	tl.now = now
}
