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

// Package monitor implements an interactive register monitor. It is the
// place to poke peripheral registers by hand, advance the virtual clock and
// inspect what the hardware does, without any guest firmware involved.
//
// Input history and a coloured prompt are provided through an ANSI terminal.
// There is no tab completion; the command language is small enough not to
// need it.
package monitor

import (
	"io"
	"os"

	"github.com/stellago/stellago/hardware"
	"github.com/stellago/stellago/monitor/easyterm"
	"github.com/stellago/stellago/monitor/easyterm/ansi"
)

// the prompt shows the current virtual time.
const promptSuffix = " >> "

// Monitor is an interactive session attached to an MCU.
type Monitor struct {
	easyterm.EasyTerm

	mc *hardware.MCU

	reader  runeReader
	history []string

	// snapshots taken with the SNAP command, restored with RESTORE
	snapshots []*hardware.State

	quit bool
}

// NewMonitor is the preferred method of initialisation for the Monitor
// type. The terminal is placed in raw mode for the duration of every input
// line; CleanUp() must be called before the program exits.
func NewMonitor(mc *hardware.MCU) (*Monitor, error) {
	mon := &Monitor{
		mc: mc,
	}

	if err := mon.EasyTerm.Initialise(os.Stdin, os.Stdout); err != nil {
		return nil, err
	}

	mon.reader = initRuneReader(os.Stdin)

	return mon, nil
}

// CleanUp restores the terminal.
func (mon *Monitor) CleanUp() {
	mon.TermPrint("\r")
	_ = mon.Flush()
	mon.EasyTerm.CleanUp()
}

// Run the interactive session until the QUIT command or the input reaches
// EOF.
func (mon *Monitor) Run() error {
	mon.printFeedback("%s monitor. type HELP for commands", mon.mc.Board.Name)

	for !mon.quit {
		input, err := mon.readLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		if err := mon.parseInput(input); err != nil {
			mon.printError("%v", err)
		}
	}

	return nil
}

func (mon *Monitor) printError(s string, a ...interface{}) {
	mon.TermPrint("\r%s* ", ansi.Pens["red"])
	mon.TermPrint(s, a...)
	mon.TermPrint("%s\n", ansi.NormalPen)
}

func (mon *Monitor) printResult(s string, a ...interface{}) {
	mon.TermPrint("\r%s", ansi.Pens["cyan"])
	mon.TermPrint(s, a...)
	mon.TermPrint("%s\n", ansi.NormalPen)
}

func (mon *Monitor) printFeedback(s string, a ...interface{}) {
	mon.TermPrint("\r%s", ansi.DimPens["white"])
	mon.TermPrint(s, a...)
	mon.TermPrint("%s\n", ansi.NormalPen)
}

func (mon *Monitor) printHelp(s string, a ...interface{}) {
	mon.TermPrint("\r%s  ", ansi.DimPens["white"])
	mon.TermPrint(s, a...)
	mon.TermPrint("%s\n", ansi.NormalPen)
}
