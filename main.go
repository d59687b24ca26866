// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland
//
// nexactl - Nexa/HomeEasy 433 MHz remote control codec
//
// A CLI tool for decoding and sending Nexa/HomeEasy self-learning
// remote-control commands through a radio bridge.

package main

import (
	"github.com/jherland/nexactl/cmd"
	"github.com/jherland/nexactl/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}
