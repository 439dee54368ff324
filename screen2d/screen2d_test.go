// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen2d

import (
	"bytes"
	"strings"
	"testing"
)

const testAddr = 0x3C

func getDev() (*Dev, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	d := New(&Opts{W: 128, H: 32, Addr: testAddr, Writer: buf})
	return d, buf
}

func command(t *testing.T, d *Dev, cmds ...byte) {
	t.Helper()
	for _, c := range cmds {
		if err := d.Tx(testAddr, []byte{0x00, c}, nil); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDataWrite(t *testing.T) {
	d, _ := getDev()
	// Page 1, column 16, display on.
	command(t, d, 0xAF, 0xB1, 0x00, 0x11)
	if err := d.Tx(testAddr, []byte{0x40, 0xFF, 0x01}, nil); err != nil {
		t.Fatal(err)
	}
	for y := 8; y < 16; y++ {
		if !d.Pixel(16, y) {
			t.Errorf("Pixel(16, %d) = false, want true", y)
		}
	}
	if !d.Pixel(17, 8) {
		t.Error("Pixel(17, 8) = false, want true")
	}
	if d.Pixel(17, 9) {
		t.Error("Pixel(17, 9) = true, want false")
	}
	// The column pointer advanced past the written bytes.
	if d.col != 18 {
		t.Errorf("col = %d, want 18", d.col)
	}
}

func TestColumnWrap(t *testing.T) {
	d, _ := getDev()
	command(t, d, 0xB0, 0x0F, 0x17) // column 127
	if err := d.Tx(testAddr, []byte{0x40, 0x01, 0x02}, nil); err != nil {
		t.Fatal(err)
	}
	if !d.Pixel(127, 0) {
		t.Error("Pixel(127, 0) = false, want true")
	}
	// Second byte wrapped to column 0 of the same page.
	if !d.Pixel(0, 1) {
		t.Error("Pixel(0, 1) = false, want true")
	}
}

func TestOneArgOpcode(t *testing.T) {
	d, _ := getDev()
	// The contrast argument 0xB2 must not be decoded as a page command.
	if err := d.Tx(testAddr, []byte{0x00, 0x81, 0xB2}, nil); err != nil {
		t.Fatal(err)
	}
	if d.page != 0 {
		t.Errorf("page = %d, want 0", d.page)
	}
	command(t, d, 0xB2)
	if d.page != 2 {
		t.Errorf("page = %d, want 2", d.page)
	}
}

func TestInvert(t *testing.T) {
	d, _ := getDev()
	if d.Pixel(3, 3) {
		t.Error("Pixel(3, 3) = true on a blank panel")
	}
	command(t, d, 0xA7)
	if !d.Pixel(3, 3) {
		t.Error("Pixel(3, 3) = false on an inverted blank panel")
	}
	command(t, d, 0xA6)
	if d.Pixel(3, 3) {
		t.Error("Pixel(3, 3) = true after normal polarity restored")
	}
}

func TestTxRejects(t *testing.T) {
	d, _ := getDev()
	if err := d.Tx(0x3D, []byte{0x00, 0xAF}, nil); err == nil {
		t.Error("expected error for wrong address")
	}
	if err := d.Tx(testAddr, []byte{0x00}, make([]byte, 1)); err == nil {
		t.Error("expected error for read transaction")
	}
	if err := d.Tx(testAddr, []byte{0x80, 0xAF}, nil); err == nil {
		t.Error("expected error for invalid control byte")
	}
}

func TestRender(t *testing.T) {
	d, buf := getDev()
	command(t, d, 0xAF, 0xB0, 0x00, 0x10)
	if err := d.Tx(testAddr, []byte{0x40, 0x7F}, nil); err != nil {
		t.Fatal(err)
	}
	if err := d.Render(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\033[") {
		t.Error("render output has no ANSI escapes")
	}
	if got := strings.Count(out, "\n"); got != 32 {
		t.Errorf("rendered %d lines, want 32", got)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
}

func TestString(t *testing.T) {
	d, _ := getDev()
	if got := d.String(); got != "Screen2D{128x32}" {
		t.Errorf("String() = %q", got)
	}
}
