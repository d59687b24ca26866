// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import (
	"errors"
	"fmt"
	"time"
)

// ErrFrameMarker is returned by unpackFrame when a frame's fixed marker
// bits (011 for 12-bit frames, 10 for 32-bit frames) do not match. The
// markers are what keeps the two encodings distinguishable under bit
// slip, so a mismatch discards the frame.
var ErrFrameMarker = errors.New("frame marker mismatch")

// Command is one parsed remote-control message.
//
// Device holds the device id most-significant byte first. For
// VersionLegacy12 only Device[2] is meaningful and Channel/Group are
// always 0/false.
type Command struct {
	Version Version
	Device  [3]byte
	Channel uint8 // 4-bit, 0 for Legacy12
	Group   bool  // always false for Legacy12
	State   bool  // on/off

	// Timestamp is when the command was decoded from the air. Zero for
	// commands built locally (e.g. parsed from a text line).
	Timestamp time.Time
}

// DeviceID returns the 24-bit device id as an integer.
func (c *Command) DeviceID() uint32 {
	return uint32(c.Device[0])<<16 | uint32(c.Device[1])<<8 | uint32(c.Device[2])
}

// SetDeviceID stores the low 24 bits of id into Device, MSB first.
func (c *Command) SetDeviceID(id uint32) {
	c.Device[0] = byte(id >> 16)
	c.Device[1] = byte(id >> 8)
	c.Device[2] = byte(id)
}

func (c *Command) String() string {
	return fmt.Sprintf("%s device=%06X group=%t channel=%X state=%t",
		FormatVersion(c.Version), c.DeviceID(), c.Group, c.Channel, c.State)
}

// Frame bit-indexing convention, used by everything below and by the
// Parser and Transmitter: bit i of a frame, counted in air/arrival order
// starting at 0, lives in byte i/8 at mask 0x80>>(i%8). Multi-bit fields
// are therefore serialized most-significant-bit first, which is also the
// order the real remotes use on the air.

// frameBit reads frame bit i.
func frameBit(buf []byte, i int) byte {
	if buf[i/8]&(0x80>>(i%8)) != 0 {
		return 1
	}
	return 0
}

// setFrameBit sets frame bit i to 1 (frames start out all zero).
func setFrameBit(buf []byte, i int) {
	buf[i/8] |= 0x80 >> (i % 8)
}

// Fixed marker bits inside the frame layouts:
// 12-bit DDDDDDDD011S — bits 8-10 are 0,1,1; bit 11 is the state.
// 32-bit D*24 10GSCCCC — bits 24-25 are 1,0; then group, state, channel.
const (
	legacyMarkerMask = 0xE0 // byte 1, bits 8-10
	legacyMarker     = 0x60
	legacyStateBit   = 0x10 // byte 1, bit 11

	modernMarkerMask = 0xC0 // byte 3, bits 24-25
	modernMarker     = 0x80
	modernGroupBit   = 0x20 // byte 3, bit 26
	modernStateBit   = 0x10 // byte 3, bit 27
	modernChanMask   = 0x0F // byte 3, bits 28-31
)

// packFrame renders cmd into its on-air frame bits and returns the bit
// count (12 or 32). The version must be valid.
func packFrame(cmd *Command) ([4]byte, int) {
	var buf [4]byte
	switch cmd.Version {
	case VersionLegacy12:
		buf[0] = cmd.Device[2]
		buf[1] = legacyMarker
		if cmd.State {
			buf[1] |= legacyStateBit
		}
		return buf, LegacyFrameBits
	case VersionModern32:
		buf[0] = cmd.Device[0]
		buf[1] = cmd.Device[1]
		buf[2] = cmd.Device[2]
		buf[3] = modernMarker | (cmd.Channel & modernChanMask)
		if cmd.Group {
			buf[3] |= modernGroupBit
		}
		if cmd.State {
			buf[3] |= modernStateBit
		}
		return buf, ModernFrameBits
	}
	return buf, 0
}

// unpackFrame is the inverse of packFrame: it validates the marker bits
// and materializes a Command from received frame bits.
func unpackFrame(v Version, buf [4]byte) (*Command, error) {
	cmd := &Command{Version: v}
	switch v {
	case VersionLegacy12:
		if buf[1]&legacyMarkerMask != legacyMarker {
			return nil, ErrFrameMarker
		}
		cmd.Device[2] = buf[0]
		cmd.State = buf[1]&legacyStateBit != 0
	case VersionModern32:
		if buf[3]&modernMarkerMask != modernMarker {
			return nil, ErrFrameMarker
		}
		cmd.Device[0] = buf[0]
		cmd.Device[1] = buf[1]
		cmd.Device[2] = buf[2]
		cmd.Group = buf[3]&modernGroupBit != 0
		cmd.State = buf[3]&modernStateBit != 0
		cmd.Channel = buf[3] & modernChanMask
	default:
		return nil, fmt.Errorf("unknown command version %d", v)
	}
	return cmd, nil
}
