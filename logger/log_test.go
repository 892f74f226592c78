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

package logger_test

import (
	"testing"

	"github.com/stellago/stellago/logger"
	"github.com/stellago/stellago/test"
)

func TestLogger(t *testing.T) {
	logger.Clear()

	tw := &test.CompareWriter{}

	logger.Write(tw)
	test.ExpectEquality(t, tw.Compare(""), true)

	logger.Log(logger.Allow, "test", "this is a test")
	logger.Write(tw)
	test.ExpectEquality(t, tw.Compare("test: this is a test\n"), true)
}

func TestLoggerRepeats(t *testing.T) {
	logger.Clear()

	tw := &test.CompareWriter{}

	// the same entry logged twice should be folded into one line
	logger.Log(logger.Allow, "test", "this is a test")
	logger.Log(logger.Allow, "test", "this is a test")
	logger.Write(tw)
	test.ExpectEquality(t, tw.Compare("test: this is a test (repeat x2)\n"), true)
}

func TestLoggerTail(t *testing.T) {
	logger.Clear()

	tw := &test.CompareWriter{}

	logger.Log(logger.Allow, "test", "this is a test (1)")
	logger.Log(logger.Allow, "test", "this is a test (2)")
	logger.Log(logger.Allow, "test", "this is a test (3)")

	logger.Tail(tw, 2)
	test.ExpectEquality(t, tw.Compare("test: this is a test (2)\ntest: this is a test (3)\n"), true)
}

type noLogging struct{}

func (_ noLogging) AllowLogging() bool {
	return false
}

func TestLoggerPermission(t *testing.T) {
	logger.Clear()

	tw := &test.CompareWriter{}

	logger.Log(noLogging{}, "test", "this should not appear")
	logger.Write(tw)
	test.ExpectEquality(t, tw.Compare(""), true)
}
