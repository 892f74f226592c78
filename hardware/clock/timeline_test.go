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

package clock_test

import (
	"testing"

	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/hardware/clock"
	"github.com/stellago/stellago/test"
)

func TestOrdering(t *testing.T) {
	tl := clock.NewTimeline()

	order := []int{}
	tl.ScheduleAt(300, func() error { order = append(order, 3); return nil })
	tl.ScheduleAt(100, func() error { order = append(order, 1); return nil })
	tl.ScheduleAt(200, func() error { order = append(order, 2); return nil })

	// nothing fires before its deadline
	test.ExpectSuccess(t, tl.RunUntil(99))
	test.ExpectEquality(t, len(order), 0)
	test.ExpectEquality(t, tl.Now(), int64(99))

	// events fire in deadline order, not schedule order
	test.ExpectSuccess(t, tl.RunUntil(300))
	test.DemandEquality(t, len(order), 3)
	test.ExpectEquality(t, order[0], 1)
	test.ExpectEquality(t, order[1], 2)
	test.ExpectEquality(t, order[2], 3)
	test.ExpectEquality(t, tl.Now(), int64(300))
	test.ExpectEquality(t, tl.Pending(), 0)
}

func TestSameDeadline(t *testing.T) {
	tl := clock.NewTimeline()

	order := []int{}
	tl.ScheduleAt(100, func() error { order = append(order, 1); return nil })
	tl.ScheduleAt(100, func() error { order = append(order, 2); return nil })

	test.ExpectSuccess(t, tl.Advance(100))

	// same deadline fires in schedule order
	test.DemandEquality(t, len(order), 2)
	test.ExpectEquality(t, order[0], 1)
	test.ExpectEquality(t, order[1], 2)
}

func TestCancel(t *testing.T) {
	tl := clock.NewTimeline()

	fired := false
	id := tl.ScheduleAt(100, func() error { fired = true; return nil })
	tl.Cancel(id)

	test.ExpectSuccess(t, tl.Advance(1000))
	test.ExpectEquality(t, fired, false)

	// cancelling a stale handle is a no-op
	tl.Cancel(id)
	tl.Cancel(clock.NilHandle)
}

func TestReschedulingEvent(t *testing.T) {
	tl := clock.NewTimeline()

	// a periodic event that re-arms itself from its own deadline
	count := 0
	var ev clock.Event
	ev = func() error {
		count++
		tl.ScheduleAt(tl.Now()+100, ev)
		return nil
	}
	tl.ScheduleAt(100, ev)

	test.ExpectSuccess(t, tl.RunUntil(1000))
	test.ExpectEquality(t, count, 10)
	test.ExpectEquality(t, tl.Pending(), 1)
}

func TestEventError(t *testing.T) {
	tl := clock.NewTimeline()

	const boom = "event gone wrong"

	fired := false
	tl.ScheduleAt(100, func() error { return curated.Errorf(boom) })
	tl.ScheduleAt(200, func() error { fired = true; return nil })

	err := tl.RunUntil(1000)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, curated.Is(err, boom), true)

	// the run stopped at the failed event. the later event is still pending
	test.ExpectEquality(t, fired, false)
	test.ExpectEquality(t, tl.Now(), int64(100))
	test.ExpectEquality(t, tl.Pending(), 1)
}

func TestPlumb(t *testing.T) {
	tl := clock.NewTimeline()

	tl.ScheduleAt(100, func() error { return nil })
	test.ExpectEquality(t, tl.Pending(), 1)

	tl.Plumb(5000)
	test.ExpectEquality(t, tl.Now(), int64(5000))
	test.ExpectEquality(t, tl.Pending(), 0)
}
