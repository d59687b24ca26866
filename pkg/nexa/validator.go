// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import "fmt"

// ValidateCommand checks the semantic constraints a command must meet
// before it can be encoded: a valid version, and for 12-bit commands
// no group/channel and a device id that fits in one byte. Commands
// coming out of the Parser always pass; this exists for commands built
// from user input.
func ValidateCommand(cmd *Command) error {
	switch cmd.Version {
	case VersionLegacy12:
		if cmd.Device[0] != 0 || cmd.Device[1] != 0 {
			return fmt.Errorf("12-bit device id %06X exceeds 8 bits", cmd.DeviceID())
		}
		if cmd.Group {
			return fmt.Errorf("12-bit commands have no group flag")
		}
		if cmd.Channel != 0 {
			return fmt.Errorf("12-bit commands have no channel, got %X", cmd.Channel)
		}
	case VersionModern32:
		if cmd.Channel > modernChanMask {
			return fmt.Errorf("channel %X exceeds 4 bits", cmd.Channel)
		}
	default:
		return fmt.Errorf("unknown command version %d", cmd.Version)
	}
	return nil
}
