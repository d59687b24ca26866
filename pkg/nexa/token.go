// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

// Token is one symbolic unit emitted by the Receiver: a sync marker for
// either encoding, or a decoded data bit. Token order is significant and
// is preserved FIFO by the TokenRing.
type Token uint8

const (
	// TokenSyncA marks the start of a 32-bit frame.
	TokenSyncA Token = iota
	// TokenSyncB marks the start of a 12-bit frame.
	TokenSyncB
	// TokenBit0 is a decoded 0 bit.
	TokenBit0
	// TokenBit1 is a decoded 1 bit.
	TokenBit1
)

// IsBit reports whether t is a data bit rather than a sync marker.
func (t Token) IsBit() bool {
	return t == TokenBit0 || t == TokenBit1
}

func (t Token) String() string {
	switch t {
	case TokenSyncA:
		return "A"
	case TokenSyncB:
		return "B"
	case TokenBit0:
		return "0"
	case TokenBit1:
		return "1"
	}
	return "?"
}
