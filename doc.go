// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306text controls a monochrome OLED display via a SSD1306
// controller in text mode over I²C.
//
// Unlike framebuffer drivers, this package never composes an image: it
// streams fixed-width 5x7 glyphs straight into the controller's display RAM
// through paged addressing, one 6-byte data transaction per character. That
// keeps RAM usage near zero and makes every write byte-exact on the wire,
// which matters on a 100kHz bus.
//
// The controller distinguishes configuration from pixel data with a control
// byte: every transaction starts with 0x00 (command stream) or 0x40 (data
// stream). The driver never emits a payload byte outside one of these two
// framings.
//
// Bus transactions can be bounded with Opts.TxTimeout. A zero timeout
// reproduces classic bare-metal behavior where a stalled bus blocks the
// caller indefinitely.
//
// # Datasheets
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
package ssd1306text
