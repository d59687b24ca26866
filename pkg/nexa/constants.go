// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

// Package nexa implements the Nexa/HomeEasy 433 MHz OOK remote-control
// protocol: classifying pulse durations, assembling data bits from timed
// pulse pairs, parsing the two command encodings (12-bit and 32-bit), and
// rendering commands back into protocol-exact pulse trains.
//
// The receive path is split into three pieces so it can straddle an
// interrupt/main-loop boundary: Receiver (pulse -> token, safe to drive
// from a sampling callback), TokenRing (lock-free single-producer/
// single-consumer buffer), and Parser (token -> Command). Decoder bundles
// the three for callers that run everything in one goroutine.
//
// All durations are given in microseconds. Positive durations are HIGH
// pulses, negative durations are LOW pulses.
package nexa

// Version selects one of the two historical command encodings.
type Version uint8

const (
	// VersionLegacy12 is the older 12-bit encoding: an 8-bit device id,
	// a 011 marker and a state bit. No channel or group support.
	VersionLegacy12 Version = 1
	// VersionModern32 is the self-learning 32-bit encoding: a 24-bit
	// device id, a 10 marker, group and state bits and a 4-bit channel.
	VersionModern32 Version = 2
)

// FrameBits returns the number of data bits in one frame of this version.
func (v Version) FrameBits() int {
	switch v {
	case VersionLegacy12:
		return LegacyFrameBits
	case VersionModern32:
		return ModernFrameBits
	}
	return 0
}

// Valid reports whether v is one of the two defined encodings.
func (v Version) Valid() bool {
	return v == VersionLegacy12 || v == VersionModern32
}

// Frame sizes
const (
	LegacyFrameBits = 12
	ModernFrameBits = 32
)

// Nominal pulse durations for the 12-bit encoding (µs)
const (
	LegacyShort   = 350
	LegacyLong    = 1050
	LegacySyncGap = 10850
)

// Nominal pulse durations for the 32-bit encoding (µs)
const (
	ModernHigh    = 310
	ModernShort   = 215
	ModernLong    = 1236
	ModernSyncGap = 10150
	ModernSyncLow = 2643
)

// DefaultRepeats is how many times a command frame is repeated on the
// air. All known remotes send 5.
const DefaultRepeats = 5

// DefaultRingCapacity is the token buffer size used by NewDecoder. One
// 32-bit frame produces 33 tokens, so this holds several frames of
// backlog before the overflow policy kicks in.
const DefaultRingCapacity = 256
