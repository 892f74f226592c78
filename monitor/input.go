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
	"bufio"
	"fmt"
	"io"
	"unicode"

	"github.com/stellago/stellago/monitor/easyterm"
	"github.com/stellago/stellago/monitor/easyterm/ansi"
)

type runeReader struct {
	*bufio.Reader
}

func initRuneReader(r io.Reader) runeReader {
	return runeReader{Reader: bufio.NewReader(r)}
}

func (mon *Monitor) prompt() string {
	return fmt.Sprintf("[t=%d]%s", mon.mc.Clk.Now(), promptSuffix)
}

// readLine reads one line of input with history recall. The terminal is in
// raw mode for the duration; the cursor stays at the end of the line.
func (mon *Monitor) readLine() (string, error) {
	mon.RawMode()
	defer mon.CanonicalMode()

	input := []rune{}
	history := len(mon.history)

	// latest unfinished input, kept while scrolling through history
	stash := []rune{}

	redraw := func() {
		mon.TermPrint("\r%s", ansi.ClearLine)
		mon.TermPrint("%s%s%s", ansi.PenStyles["bold"], mon.prompt(), ansi.NormalPen)
		mon.TermPrint("%s", string(input))
	}
	redraw()

	for {
		r, _, err := mon.reader.ReadRune()
		if err != nil {
			mon.TermPrint("\n")
			return "", err
		}

		switch r {
		case easyterm.KeyInterrupt:
			mon.TermPrint("\n")
			return "", io.EOF

		case easyterm.KeyCarriageReturn:
			mon.TermPrint("\n")
			line := string(input)
			if len(line) > 0 {
				if len(mon.history) == 0 || mon.history[len(mon.history)-1] != line {
					mon.history = append(mon.history, line)
				}
			}
			return line, nil

		case easyterm.KeyBackspace, easyterm.KeyDelete:
			if len(input) > 0 {
				input = input[:len(input)-1]
				history = len(mon.history)
				redraw()
			}

		case easyterm.KeyEsc:
			r, _, err := mon.reader.ReadRune()
			if err != nil {
				return "", err
			}
			if r != easyterm.EscCursor {
				continue
			}

			r, _, err = mon.reader.ReadRune()
			if err != nil {
				return "", err
			}

			switch r {
			case easyterm.CursorUp:
				if history > 0 {
					if history == len(mon.history) {
						stash = input
					}
					history--
					input = []rune(mon.history[history])
					redraw()
				}
			case easyterm.CursorDown:
				if history < len(mon.history) {
					history++
					if history == len(mon.history) {
						input = stash
					} else {
						input = []rune(mon.history[history])
					}
					redraw()
				}
			}

		default:
			if unicode.IsPrint(r) {
				input = append(input, r)
				history = len(mon.history)
				mon.TermPrint("%c", r)
			}
		}
	}
}
