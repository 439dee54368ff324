// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes the panel and the default content.
type Config struct {
	Display struct {
		Width   int    `yaml:"width"`
		Height  int    `yaml:"height"`
		Address uint16 `yaml:"address"`
	} `yaml:"display"`
	Lines []string `yaml:"lines"`
}

func parseConfig(content []byte) (*Config, error) {
	c := &Config{}
	c.Display.Width = 128
	c.Display.Height = 32
	c.Display.Address = 0x3C
	if len(content) > 0 {
		if err := yaml.Unmarshal(content, c); err != nil {
			return nil, err
		}
	}
	if c.Display.Width < 8 || c.Display.Width > 128 || c.Display.Width%8 != 0 {
		return nil, fmt.Errorf("display width %d must be a multiple of 8 in [8,128]", c.Display.Width)
	}
	if c.Display.Height < 8 || c.Display.Height > 64 || c.Display.Height%8 != 0 {
		return nil, fmt.Errorf("display height %d must be a multiple of 8 in [8,64]", c.Display.Height)
	}
	if c.Display.Address == 0 {
		return nil, fmt.Errorf("display address is missing")
	}
	return c, nil
}

// getConfig reads filename, falling back to compiled-in defaults when the
// file does not exist.
func getConfig(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return parseConfig(nil)
		}
		return nil, err
	}
	return parseConfig(content)
}
