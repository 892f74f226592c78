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

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/stellago/stellago/curated"
	"github.com/stellago/stellago/hardware"
	"github.com/stellago/stellago/hardware/clock"
	"github.com/stellago/stellago/hardware/peripherals"
	"github.com/stellago/stellago/hardware/preferences"
	"github.com/stellago/stellago/logger"
	"github.com/stellago/stellago/modalflag"
	"github.com/stellago/stellago/monitor"
	"github.com/stellago/stellago/samplewriter"
	"github.com/stellago/stellago/statsview"
	"github.com/stellago/stellago/version"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "MONITOR", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)
	case "MONITOR":
		err = mon(md)
	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

// newMCU creates the emulated machine shared by the RUN and MONITOR modes.
func newMCU(boardName string, random bool, trace bool) (*hardware.MCU, *clock.Timeline, error) {
	tl := clock.NewTimeline()

	// preferences are read during peripheral construction (the ADC seeds
	// its noise accumulator from the random-state preference) so they must
	// be decided before the MCU is built
	prf, err := preferences.NewPreferences()
	if err != nil {
		return nil, nil, err
	}
	prf.RandomState.Set(random)
	prf.TraceRegisters.Set(trace)

	mc, err := hardware.NewMCU(tl, prf, boardName, nil)
	if err != nil {
		return nil, nil, err
	}

	return mc, tl, nil
}

func run(md *modalflag.Modes) error {
	md.NewMode()

	board := md.AddString("board", "lm3s811evb", "board to emulate")
	duration := md.AddInt("duration", 1000, "capture duration in milliseconds of virtual time")
	wav := md.AddString("wav", "capture.wav", "write ADC samples to wav file")
	rate := md.AddInt("rate", 8000, "ADC trigger rate in samples per second")
	random := md.AddBool("random", false, "start the hardware in an unknown state")
	trace := md.AddBool("trace", false, "log every register access")
	log := md.AddBool("log", false, "echo debugging log to stdout")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout)
	} else {
		logger.SetEcho(nil)
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(md.Output)
		} else {
			fmt.Println("* stats server not available in this build")
		}
	}

	if *rate <= 0 || *duration <= 0 {
		return curated.Errorf("run: %v", "rate and duration must be positive")
	}

	mc, tl, err := newMCU(*board, *random, *trace)
	if err != nil {
		return err
	}

	sw, err := samplewriter.New(mc.Env, *wav, uint32(*rate))
	if err != nil {
		return err
	}

	if err := capture(mc, tl, sw, int64(*duration)*1000000, int64(*rate)); err != nil {
		return err
	}

	return sw.End()
}

// capture programs the ADC to sample on a periodic timer trigger and drains
// the sample FIFO into the writer until the virtual clock reaches the
// duration.
func capture(mc *hardware.MCU, tl *clock.Timeline, sw *samplewriter.SampleWriter, duration int64, rate int64) error {
	var pl = struct {
		adc    uint32
		timer0 uint32
	}{}
	for _, p := range mc.Board.Placements() {
		switch p.Kind {
		case peripherals.ADC:
			pl.adc = p.Base
		case peripherals.GPTM:
			if p.Num == 0 {
				pl.timer0 = p.Base
			}
		}
	}
	if pl.adc == 0 || pl.timer0 == 0 {
		return curated.Errorf("run: %v", "board has no ADC or no timer")
	}

	// sequencer 0 samples on the timer trigger
	if err := mc.Write(pl.adc+0x14, 4, 5); err != nil {
		return err
	}
	if err := mc.Write(pl.adc+0x44, 4, 6); err != nil {
		return err
	}
	if err := mc.Write(pl.adc+0x00, 4, 1); err != nil {
		return err
	}

	// periodic timer with the ADC trigger output. each fire delivers two
	// samples, one per trigger edge, so the timer runs at half the sample
	// rate
	ticks := 2 * clock.TicksPerSecond / (rate * mc.SSYS.ClockScale())
	if ticks <= 0 {
		return curated.Errorf("run: %v", "sample rate too fast for the system clock")
	}
	if err := mc.Write(pl.timer0+0x28, 4, uint32(ticks)); err != nil {
		return err
	}
	if err := mc.Write(pl.timer0+0x0c, 4, 0x21); err != nil {
		return err
	}

	// run in chunks, draining the FIFO between chunks so it never overflows.
	// the drain counts timer fires rather than trusting the FIFO empty
	// flag, which can be missed when the tail pointer wraps
	period := ticks * mc.SSYS.ClockScale()
	chunk := 8 * period
	fired := int64(0)

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	defer signal.Stop(intChan)

	for tl.Now() < duration {
		select {
		case <-intChan:
			fmt.Println("\r")
			return nil
		default:
		}

		next := tl.Now() + chunk
		if next > duration {
			next = duration
		}
		if err := tl.RunUntil(next); err != nil {
			return err
		}

		for total := tl.Now() / period; fired < total; fired++ {
			for i := 0; i < 2; i++ {
				v, err := mc.Read(pl.adc+0x48, 4)
				if err != nil {
					return err
				}
				sw.Add(v)
			}
		}
	}

	return nil
}

func mon(md *modalflag.Modes) error {
	md.NewMode()

	board := md.AddString("board", "lm3s811evb", "board to emulate")
	random := md.AddBool("random", false, "start the hardware in an unknown state")
	trace := md.AddBool("trace", false, "log every register access")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	mc, _, err := newMCU(*board, *random, *trace)
	if err != nil {
		return err
	}

	mn, err := monitor.NewMonitor(mc)
	if err != nil {
		return err
	}
	defer mn.CleanUp()

	return mn.Run()
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("revision", false, "display vcs revision")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	vrsn, rev, _ := version.Version()
	fmt.Printf("%s (%s)\n", version.ApplicationName, vrsn)
	if *revision {
		fmt.Println(rev)
	}

	return nil
}
