// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306text

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"

	"github.com/microdisplays/ssd1306text/font5x7"
)

const packageName = "ssd1306text"

const (
	_CHARGEPUMP          = 0x8D
	_COMSCANDEC          = 0xC8
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGESTARTADDRESS    = 0xB0
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETHIGHCOLUMN       = 0x10
	_SETLOWCOLUMN        = 0x00
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSEGMENTREMAP     = 0xA1
	_SETSTARTLINE        = 0x40
	_SETVCOMDETECT       = 0xDB
)

const (
	i2cCmd  = 0x00 // I²C transaction has a stream of command bytes
	i2cData = 0x40 // I²C transaction has a stream of data bytes
)

// DefaultOpts is the recommended default options: the common 128x32 module
// at address 0x3C, with a 1 second transaction bound.
var DefaultOpts = Opts{
	W:         128,
	H:         32,
	Addr:      0x3C,
	TxTimeout: time.Second,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// The I²C address of the display.
	Addr uint16
	// TxTimeout bounds every bus transaction. Zero blocks until the bus
	// completes, like polling a hardware flag with no deadline. A stalled
	// bus (device absent, clock line held low) then blocks forever.
	TxTimeout time.Duration
	// StrictGlyphs makes writes fail on characters without font coverage
	// instead of rendering the replacement glyph.
	StrictGlyphs bool
}

// Dev is an open handle to the display controller.
type Dev struct {
	c       conn.Conn
	w       int
	h       int
	pages   int
	timeout time.Duration
	strict  bool

	mu sync.Mutex
	// Shadow of the controller's internal cursor. The controller advances
	// its column pointer by itself on data writes; the shadow lets the
	// writer enforce the wrap policy without reading it back.
	col    int
	page   int
	halted bool
}

// NewI2C returns a Dev that drives a SSD1306 text display over I²C.
//
// It brings the controller from its power-on state to an active,
// normal-polarity, page-addressed display by running the fixed
// initialization sequence. The sequence order is mandatory; the controller
// has no verification step, so a wedged bus surfaces only as a transaction
// error (or a timeout when Opts.TxTimeout is set).
func NewI2C(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	w, h, addr := opts.W, opts.H, opts.Addr
	if w == 0 {
		w = DefaultOpts.W
	}
	if h == 0 {
		h = DefaultOpts.H
	}
	if addr == 0x00 {
		addr = DefaultOpts.Addr
	}
	if w < 8 || w > 128 || w&7 != 0 {
		return nil, fmt.Errorf("%s: invalid width %d", packageName, w)
	}
	if h < 8 || h > 64 || h&7 != 0 {
		return nil, fmt.Errorf("%s: invalid height %d", packageName, h)
	}
	d := &Dev{
		c:       &i2c.Dev{Bus: bus, Addr: addr},
		w:       w,
		h:       h,
		pages:   h / 8,
		timeout: opts.TxTimeout,
		strict:  opts.StrictGlyphs,
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s.Dev{%s, %dx%d}", packageName, d.c, d.w, d.h)
}

// initSeq returns the power-up command bytes. Every byte is sent as its own
// command transaction; the controller decodes arguments positionally, so
// the order must not change.
func initSeq(h int) []byte {
	return []byte{
		_DISPLAYOFF,
		_SETDISPLAYCLOCKDIV, 0x80,
		_SETMULTIPLEX, byte(h - 1),
		_SETDISPLAYOFFSET, 0x00,
		_SETSTARTLINE | 0x00,
		_CHARGEPUMP, 0x14,
		_MEMORYMODE, 0x00,
		_SETSEGMENTREMAP,
		_COMSCANDEC,
		_SETCONTRAST, 0x8F,
		_SETPRECHARGE, 0xF1,
		_SETVCOMDETECT, 0x40,
		_DISPLAYALLON_RESUME,
		_NORMALDISPLAY,
		_DISPLAYON,
	}
}

func (d *Dev) init() error {
	for _, c := range initSeq(d.h) {
		if err := d.sendCommand([]byte{c}); err != nil {
			return err
		}
	}
	return nil
}

// SetCursor positions the controller's RAM pointer at the given pixel
// column and page row. A page covers a horizontal band of 8 pixel rows.
//
// Positions outside the panel geometry return OutOfRangeError; nothing is
// masked into the command nibbles.
func (d *Dev) SetCursor(col, page int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setCursor(col, page)
}

func (d *Dev) setCursor(col, page int) error {
	if col < 0 || col >= d.w || page < 0 || page >= d.pages {
		return &OutOfRangeError{Col: col, Page: page, W: d.w, Pages: d.pages}
	}
	cmds := []byte{
		_PAGESTARTADDRESS | byte(page),
		_SETLOWCOLUMN | byte(col&0x0F),
		_SETHIGHCOLUMN | byte((col>>4)&0x0F),
	}
	for _, c := range cmds {
		if err := d.sendCommand([]byte{c}); err != nil {
			return err
		}
	}
	d.col, d.page = col, page
	return nil
}

// Write renders p as fixed-width glyphs at the current cursor position.
//
// Every character costs exactly one data transaction of 6 bytes: the 5
// glyph columns and one blank spacing column. When a full cell no longer
// fits before the right edge, the writer wraps to column 0 of the next
// page; past the last page it stops and returns OutOfRangeError together
// with the number of characters written.
//
// Characters without font coverage render as the replacement glyph, or
// fail with UnsupportedGlyphError when Opts.StrictGlyphs is set.
func (d *Dev) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range p {
		if err := d.writeGlyph(rune(c)); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// WriteString renders text at the current cursor position.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

func (d *Dev) writeGlyph(r rune) error {
	if d.strict && !font5x7.Supported(r) {
		return &UnsupportedGlyphError{Rune: r}
	}
	if d.col+font5x7.CellWidth > d.w {
		if err := d.setCursor(0, d.page+1); err != nil {
			return err
		}
	}
	g := font5x7.Glyph(r)
	cell := make([]byte, 0, font5x7.CellWidth)
	cell = append(cell, g[:]...)
	cell = append(cell, 0x00)
	if err := d.sendData(cell); err != nil {
		return err
	}
	d.col += font5x7.CellWidth
	return nil
}

// Clear zeroes the display RAM one page at a time and returns the cursor
// to the origin.
func (d *Dev) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	blank := make([]byte, d.w)
	for p := 0; p < d.pages; p++ {
		if err := d.setCursor(0, p); err != nil {
			return err
		}
		if err := d.sendData(blank); err != nil {
			return err
		}
	}
	return d.setCursor(0, 0)
}

// Home moves the cursor to the top left corner.
func (d *Dev) Home() error {
	return d.SetCursor(0, 0)
}

// MoveTo moves the cursor to an arbitrary character cell. Row and column
// are 1-based, following the display.TextDisplay convention.
func (d *Dev) MoveTo(row, col int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if row < d.MinRow() || row > d.Rows() || col < d.MinCol() || col > d.Cols() {
		return &OutOfRangeError{Col: (col - 1) * font5x7.CellWidth, Page: row - 1, W: d.w, Pages: d.pages}
	}
	return d.setCursor((col-1)*font5x7.CellWidth, row-1)
}

// Move moves the cursor one character cell in the given direction.
func (d *Dev) Move(dir display.CursorDirection) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch dir {
	case display.Forward:
		return d.setCursor(d.col+font5x7.CellWidth, d.page)
	case display.Backward:
		return d.setCursor(d.col-font5x7.CellWidth, d.page)
	case display.Up:
		return d.setCursor(d.col, d.page-1)
	case display.Down:
		return d.setCursor(d.col, d.page+1)
	default:
		return ErrNotImplemented
	}
}

// Rows returns the number of text rows, one per 8 pixel page.
func (d *Dev) Rows() int {
	return d.pages
}

// Cols returns the number of character cells per row.
func (d *Dev) Cols() int {
	return d.w / font5x7.CellWidth
}

// MinRow returns the minimum row position.
func (d *Dev) MinRow() int {
	return 1
}

// MinCol returns the minimum column position.
func (d *Dev) MinCol() int {
	return 1
}

// Display turns the panel on or off. The display RAM is retained while
// off, so turning it back on restores the previous content.
func (d *Dev) Display(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted == !on {
		// Already in the requested state.
		return nil
	}
	c := byte(_DISPLAYOFF)
	if on {
		c = _DISPLAYON
	}
	if err := d.sendCommand([]byte{c}); err != nil {
		return err
	}
	d.halted = !on
	return nil
}

// Halt turns off the display.
func (d *Dev) Halt() error {
	return d.Display(false)
}

// Invert the display (black on white vs white on black).
func (d *Dev) Invert(blackOnWhite bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := []byte{_NORMALDISPLAY}
	if blackOnWhite {
		b[0] = _INVERTDISPLAY
	}
	return d.sendCommand(b)
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sendCommand([]byte{_SETCONTRAST, level})
}

// Contrast implements display.DisplayContrast.
func (d *Dev) Contrast(contrast display.Contrast) error {
	return d.SetContrast(byte(contrast))
}

// AutoScroll is not supported by the controller in page addressing mode.
func (d *Dev) AutoScroll(enabled bool) error {
	return ErrNotImplemented
}

// Cursor is not supported; the controller has no hardware text cursor.
func (d *Dev) Cursor(mode ...display.CursorMode) error {
	return ErrNotImplemented
}

func (d *Dev) sendCommand(c []byte) error {
	return d.tx(append([]byte{i2cCmd}, c...))
}

func (d *Dev) sendData(c []byte) error {
	return d.tx(append([]byte{i2cData}, c...))
}

// tx performs one bus transaction, bounded by the configured timeout.
func (d *Dev) tx(w []byte) error {
	if d.timeout == 0 {
		return wrap(d.c.Tx(w, nil))
	}
	done := make(chan error, 1)
	go func() { done <- d.c.Tx(w, nil) }()
	t := time.NewTimer(d.timeout)
	defer t.Stop()
	select {
	case err := <-done:
		return wrap(err)
	case <-t.C:
		// The in-flight goroutine is abandoned; conn.Conn.Tx has no
		// cancellation.
		return &BusTimeoutError{After: d.timeout}
	}
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

var _ conn.Resource = &Dev{}
var _ display.TextDisplay = &Dev{}
var _ display.DisplayContrast = &Dev{}
