// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen2d emulates a page-addressed monochrome OLED controller and
// renders its frame to the terminal (stdout) using ANSI color codes.
//
// It implements i2c.Bus, so a driver can be pointed at it unchanged.
// Useful while you are waiting for your super nice OLED module to come by
// mail.
package screen2d

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for this display.
type Opts struct {
	W    int
	H    int
	Addr uint16
	// Palette selects the ANSI palette. Defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Writer receives rendered frames. Defaults to stdout.
	Writer io.Writer

	_ struct{}
}

// Dev is a paged monochrome OLED emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	addr    uint16
	width   int
	pages   int
	palette ansi256.Palette

	// Controller RAM, page-major, bit 0 the top pixel row of a page.
	pixels   []byte
	col      int
	page     int
	pending  bool
	on       bool
	inverted bool
	buf      bytes.Buffer
}

// New returns a Dev that emulates the panel at the console.
//
// Permits local testing of text layout without hardware.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	width, h := opts.W, opts.H
	if width == 0 {
		width = 128
	}
	if h == 0 {
		h = 32
	}
	addr := opts.Addr
	if addr == 0 {
		addr = 0x3C
	}
	return &Dev{
		w:       w,
		addr:    addr,
		width:   width,
		pages:   h / 8,
		palette: *p,
		pixels:  make([]byte, width*h/8),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("Screen2D{%dx%d}", d.width, d.pages*8)
}

// SetSpeed implements i2c.Bus. The emulated bus has no clock.
func (d *Dev) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx implements i2c.Bus. Only write transactions framed by a command (0x00)
// or data (0x40) control byte are accepted, like the real controller.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	if addr != d.addr {
		return fmt.Errorf("screen2d: no device at address %#02x", addr)
	}
	if len(r) != 0 {
		return errors.New("screen2d: reads are not supported")
	}
	if len(w) == 0 {
		return nil
	}
	switch w[0] {
	case 0x00:
		for _, c := range w[1:] {
			d.command(c)
		}
	case 0x40:
		d.data(w[1:])
	default:
		return fmt.Errorf("screen2d: invalid control byte %#02x", w[0])
	}
	return nil
}

// hasArg reports whether opcode c is followed by one argument byte.
func hasArg(c byte) bool {
	switch c {
	case 0x20, 0x81, 0x8D, 0xA8, 0xD3, 0xD5, 0xD9, 0xDB:
		return true
	}
	return false
}

func (d *Dev) command(c byte) {
	if d.pending {
		// Argument byte of the previous opcode. Clock, geometry and analog
		// settings do not affect the emulated frame.
		d.pending = false
		return
	}
	switch {
	case c >= 0xB0 && c <= 0xB7:
		if p := int(c & 0x07); p < d.pages {
			d.page = p
		}
	case c <= 0x0F:
		d.col = d.col&0x70 | int(c)
	case c >= 0x10 && c <= 0x1F:
		d.col = int(c&0x07)<<4 | d.col&0x0F
	case c == 0xAE:
		d.on = false
	case c == 0xAF:
		d.on = true
	case c == 0xA6:
		d.inverted = false
	case c == 0xA7:
		d.inverted = true
	default:
		d.pending = hasArg(c)
	}
}

func (d *Dev) data(p []byte) {
	for _, b := range p {
		if d.col >= d.width {
			// The controller wraps the column pointer within the page.
			d.col = 0
		}
		d.pixels[d.page*d.width+d.col] = b
		d.col++
	}
}

// Pixel reports whether the pixel at (x, y) is lit, after polarity.
func (d *Dev) Pixel(x, y int) bool {
	if x < 0 || x >= d.width || y < 0 || y >= d.pages*8 {
		return false
	}
	lit := d.pixels[(y/8)*d.width+x]&(1<<uint(y%8)) != 0
	if d.inverted {
		lit = !lit
	}
	return lit
}

// Render writes the current frame to the writer, one terminal cell per
// pixel. A panel that is off renders dark.
func (d *Dev) Render() error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	d.buf.Reset()
	lit := color.NRGBA{255, 255, 255, 255}
	dark := color.NRGBA{0, 0, 0, 255}
	for y := 0; y < d.pages*8; y++ {
		for x := 0; x < d.width; x++ {
			c := dark
			if d.on && d.Pixel(x, y) {
				c = lit
			}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

// Halt implements conn.Resource. It resets the terminal attributes.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m"))
	return err
}

var _ i2c.Bus = &Dev{}
var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
