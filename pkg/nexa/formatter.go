// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import (
	"fmt"
	"strings"
)

// FormatVersion names a protocol version for humans.
func FormatVersion(v Version) string {
	switch v {
	case VersionLegacy12:
		return "legacy-12"
	case VersionModern32:
		return "modern-32"
	}
	return fmt.Sprintf("unknown(%d)", uint8(v))
}

// FormatCommand renders cmd as a multi-column human-readable line, the
// monitor's display format. Unlike FormatCommandLine it is not meant
// to be parsed back.
func FormatCommand(cmd *Command) string {
	var b strings.Builder
	if !cmd.Timestamp.IsZero() {
		fmt.Fprintf(&b, "%s  ", cmd.Timestamp.Format("15:04:05.000"))
	}
	fmt.Fprintf(&b, "%-9s  device %06X", FormatVersion(cmd.Version), cmd.DeviceID())
	if cmd.Version == VersionModern32 {
		if cmd.Group {
			b.WriteString("  GROUP")
		} else {
			fmt.Fprintf(&b, "  ch %X", cmd.Channel)
		}
	}
	if cmd.State {
		b.WriteString("  ON")
	} else {
		b.WriteString("  OFF")
	}
	return b.String()
}
