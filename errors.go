// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306text

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/display"
)

// ErrNotImplemented is returned for display.TextDisplay operations the
// controller has no hardware for, such as a blinking text cursor.
var ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)

// BusTimeoutError is returned when a bus transaction does not complete
// within Opts.TxTimeout.
type BusTimeoutError struct {
	After time.Duration
}

func (e *BusTimeoutError) Error() string {
	return fmt.Sprintf("%s: bus transaction timed out after %s", packageName, e.After)
}

// OutOfRangeError is returned when a cursor position falls outside the
// panel geometry instead of silently masking the value into the nibble
// fields of the addressing commands.
type OutOfRangeError struct {
	Col, Page int
	W, Pages  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: position col=%d page=%d outside panel (%d columns, %d pages)", packageName, e.Col, e.Page, e.W, e.Pages)
}

// UnsupportedGlyphError is returned in strict mode for characters without
// font coverage.
type UnsupportedGlyphError struct {
	Rune rune
}

func (e *UnsupportedGlyphError) Error() string {
	return fmt.Sprintf("%s: no glyph for %q", packageName, e.Rune)
}
