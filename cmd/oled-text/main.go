// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// oled-text writes fixed-width text to a SSD1306 OLED panel, or to a
// terminal emulation of one.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/microdisplays/ssd1306text"
	"github.com/microdisplays/ssd1306text/screen2d"
)

var (
	app      = kingpin.New("oled-text", "Write text to a SSD1306 OLED panel")
	debug    = app.Flag("debug", "Turn on debug logging.").Bool()
	sim      = app.Flag("sim", "Render to the terminal instead of a real panel.").Bool()
	busName  = app.Flag("bus", "I²C bus name as understood by i2creg.").Default("").String()
	confFile = app.Flag("config", "Configuration file.").Default("oled-text.yaml").String()

	show      = app.Command("show", "Initialize the panel and show text")
	showLines = show.Arg("line", "Lines of text, one per page row.").Strings()

	clear = app.Command("clear", "Blank the panel")
)

func main() {
	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("%v: Try --help\n", err.Error())
		os.Exit(1)
	}

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if *debug {
		log.Info("Enabling debug output...")
		log.SetLevel(log.DebugLevel)
	}

	conf, err := getConfig(*confFile)
	if err != nil {
		log.Fatal(err)
	}

	switch cmd {
	case show.FullCommand():
		lines := *showLines
		if len(lines) == 0 {
			lines = conf.Lines
		}
		if err := run(conf, lines, false); err != nil {
			log.Fatal(err)
		}
	case clear.FullCommand():
		if err := run(conf, nil, true); err != nil {
			log.Fatal(err)
		}
	default:
		kingpin.FatalUsage("Unrecognized command")
	}
}

func run(conf *Config, lines []string, clearOnly bool) error {
	opts := ssd1306text.DefaultOpts
	opts.W = conf.Display.Width
	opts.H = conf.Display.Height
	opts.Addr = conf.Display.Address

	var bus i2c.Bus
	var emu *screen2d.Dev
	if *sim {
		emu = screen2d.New(&screen2d.Opts{W: opts.W, H: opts.H, Addr: opts.Addr})
		bus = emu
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		b, err := i2creg.Open(*busName)
		if err != nil {
			return err
		}
		defer b.Close()
		// The controller is specified up to 400kHz; stay at standard mode.
		if err := b.SetSpeed(100 * physic.KiloHertz); err != nil {
			log.Debugln("SetSpeed:", err)
		}
		bus = b
	}

	dev, err := ssd1306text.NewI2C(bus, &opts)
	if err != nil {
		return err
	}
	log.Infoln("Initialized", dev)

	if clearOnly {
		if err := dev.Clear(); err != nil {
			return err
		}
	} else {
		for i, line := range lines {
			if i >= dev.Rows() {
				log.Warnf("Dropping line %d: the panel has %d rows", i+1, dev.Rows())
				break
			}
			if err := dev.SetCursor(0, i); err != nil {
				return err
			}
			if _, err := dev.WriteString(line); err != nil {
				return err
			}
		}
	}

	if emu != nil {
		return emu.Render()
	}

	// The panel holds its content; idle until interrupted.
	log.Infoln("Waiting for interrupt...")
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan
	return dev.Halt()
}
