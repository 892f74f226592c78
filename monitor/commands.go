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

package monitor

import (
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/logger"
)

// sentinel for badly formed commands.
const badCommand = "monitor: %v"

func parseAddress(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, curated.Errorf(badCommand, curated.Errorf("not an address: %s", s))
	}
	return uint32(v), nil
}

func parseValue(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, curated.Errorf(badCommand, curated.Errorf("not a value: %s", s))
	}
	return uint32(v), nil
}

// parseInput splits the input into a command and its arguments and acts on
// it. Faults from the hardware are reported, not fatal; the monitor exists
// to explore the edges of the emulation.
func (mon *Monitor) parseInput(input string) error {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}

	command := strings.ToUpper(fields[0])
	args := fields[1:]

	switch command {
	case "HELP":
		mon.printHelp("READ <address>          read a peripheral register")
		mon.printHelp("WRITE <address> <value> write a peripheral register")
		mon.printHelp("STEP [duration]         advance the clock (default 1000ns)")
		mon.printHelp("RUN <time>              run the clock to an absolute time")
		mon.printHelp("TIME                    show the current virtual time")
		mon.printHelp("BOARD                   show the board definition")
		mon.printHelp("PERIPHERALS             list the mapped register blocks")
		mon.printHelp("SNAP                    snapshot the machine state")
		mon.printHelp("RESTORE [n]             restore a snapshot (default: latest)")
		mon.printHelp("RESET                   reset every peripheral")
		mon.printHelp("LOG                     show recent log entries")
		mon.printHelp("DUMP [file]             write a graph of the machine state")
		mon.printHelp("QUIT                    leave the monitor")

	case "READ":
		if len(args) != 1 {
			return curated.Errorf(badCommand, curated.Errorf("READ <address>"))
		}
		address, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		v, err := mon.mc.Read(address, 4)
		if err != nil {
			return err
		}
		mon.printResult("%#08x = %#08x", address, v)

	case "WRITE":
		if len(args) != 2 {
			return curated.Errorf(badCommand, curated.Errorf("WRITE <address> <value>"))
		}
		address, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		value, err := parseValue(args[1])
		if err != nil {
			return err
		}
		if err := mon.mc.Write(address, 4, value); err != nil {
			return err
		}

	case "STEP":
		d := int64(1000)
		if len(args) == 1 {
			v, err := strconv.ParseInt(args[0], 0, 64)
			if err != nil || v <= 0 {
				return curated.Errorf(badCommand, curated.Errorf("not a duration: %s", args[0]))
			}
			d = v
		}
		if err := mon.mc.Clk.Advance(d); err != nil {
			return err
		}

	case "RUN":
		if len(args) != 1 {
			return curated.Errorf(badCommand, curated.Errorf("RUN <time>"))
		}
		t, err := strconv.ParseInt(args[0], 0, 64)
		if err != nil {
			return curated.Errorf(badCommand, curated.Errorf("not a time: %s", args[0]))
		}
		if t < mon.mc.Clk.Now() {
			return curated.Errorf(badCommand, curated.Errorf("time %d is in the past", t))
		}
		if err := mon.mc.Clk.RunUntil(t); err != nil {
			return err
		}

	case "TIME":
		mon.printResult("t=%d pending=%d", mon.mc.Clk.Now(), mon.mc.Clk.Pending())

	case "BOARD":
		b := mon.mc.Board
		mon.printResult("%s  did0=%#08x did1=%#08x flash=%dk", b.Name, b.DID0, b.DID1, b.FlashSize()/1024)

	case "PERIPHERALS":
		for _, pl := range mon.mc.Board.Placements() {
			per, _, _ := mon.mc.Peripheral(pl.Base)
			mon.printResult("%#08x %-6s irq %v", pl.Base, per.Label(), pl.IRQ)
		}

	case "SNAP":
		mon.snapshots = append(mon.snapshots, mon.mc.Snapshot())
		mon.printFeedback("snapshot %d taken at t=%d", len(mon.snapshots)-1, mon.mc.Clk.Now())

	case "RESTORE":
		if len(mon.snapshots) == 0 {
			return curated.Errorf(badCommand, curated.Errorf("no snapshots"))
		}
		n := len(mon.snapshots) - 1
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 0 || v >= len(mon.snapshots) {
				return curated.Errorf(badCommand, curated.Errorf("no snapshot %s", args[0]))
			}
			n = v
		}
		mon.mc.Plumb(mon.snapshots[n])
		mon.printFeedback("restored snapshot %d, t=%d", n, mon.mc.Clk.Now())

	case "RESET":
		if err := mon.mc.Reset(); err != nil {
			return err
		}

	case "LOG":
		logger.Tail(logWriter{mon}, 20)

	case "DUMP":
		filename := "stellago_state.dot"
		if len(args) == 1 {
			filename = args[0]
		}
		f, err := os.Create(filename)
		if err != nil {
			return curated.Errorf(badCommand, err)
		}
		defer f.Close()
		memviz.Map(f, mon.mc)
		mon.printFeedback("state graph written to %s", filename)

	case "QUIT":
		mon.quit = true

	default:
		return curated.Errorf(badCommand, curated.Errorf("unknown command: %s", command))
	}

	return nil
}

// logWriter adapts the monitor's feedback style to an io.Writer for the
// central logger.
type logWriter struct {
	mon *Monitor
}

func (lw logWriter) Write(p []byte) (int, error) {
	for _, l := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		lw.mon.printFeedback("%s", l)
	}
	return len(p), nil
}
