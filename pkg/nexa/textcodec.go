// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import (
	"fmt"
	"strconv"
	"strings"
)

// Text line format, one command per line:
//
//	V:DDDDDD:G:C:S
//
// V is the version (1 or 2), DDDDDD the device id as six uppercase hex
// digits, G the group flag (0 or 1), C the channel as one hex digit,
// and S the state (0=off, 1=on). For version 1 the group and channel
// columns are always 0. FormatCommandLine and ParseCommandLine are
// exact inverses over valid commands.

// commandLineLen is the line length without its trailing newline.
const commandLineLen = 14

// FormatCommandLine renders cmd as its text line, newline included.
func FormatCommandLine(cmd *Command) string {
	group := 0
	if cmd.Group {
		group = 1
	}
	state := 0
	if cmd.State {
		state = 1
	}
	return fmt.Sprintf("%X:%06X:%d:%X:%d\n",
		uint8(cmd.Version), cmd.DeviceID(), group, cmd.Channel, state)
}

// ParseCommandLine parses one text line into a Command. A trailing
// "\n" or "\r\n" is accepted and ignored; anything else off-format is
// an error. The returned command has a zero Timestamp.
func ParseCommandLine(line string) (*Command, error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if len(line) != commandLineLen {
		return nil, fmt.Errorf("command line must be %d characters, got %d", commandLineLen, len(line))
	}
	if line[1] != ':' || line[8] != ':' || line[10] != ':' || line[12] != ':' {
		return nil, fmt.Errorf("malformed command line %q", line)
	}

	version, err := strconv.ParseUint(line[0:1], 16, 8)
	if err != nil || !Version(version).Valid() {
		return nil, fmt.Errorf("bad version field %q", line[0:1])
	}
	device, err := strconv.ParseUint(line[2:8], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("bad device field %q: %w", line[2:8], err)
	}
	group, err := parseFlag(line[9:10])
	if err != nil {
		return nil, fmt.Errorf("bad group field: %w", err)
	}
	channel, err := strconv.ParseUint(line[11:12], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("bad channel field %q: %w", line[11:12], err)
	}
	state, err := parseFlag(line[13:14])
	if err != nil {
		return nil, fmt.Errorf("bad state field: %w", err)
	}

	cmd := &Command{
		Version: Version(version),
		Channel: uint8(channel),
		Group:   group,
		State:   state,
	}
	cmd.SetDeviceID(uint32(device))
	return cmd, nil
}

func parseFlag(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("flag must be 0 or 1, got %q", s)
}
