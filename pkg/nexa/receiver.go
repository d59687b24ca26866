// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

// Pulse-level receiver state machine.
//
// The receiver consumes one classified pulse at a time and emits sync
// and bit tokens into a TokenRing. It recognizes two frame encodings:
//
// 32-bit frames ("A") open with the long sync sequence
//
//	LOW cat 5, HIGH cat 1, LOW cat 3, HIGH cat 1
//
// and each bit is four pulses, LOW-HIGH-LOW-HIGH, where the two LOW
// gaps are a long/short (bit 1) or short/long (bit 0) pair.
//
// 12-bit frames ("B") share the first two sync pulses with format A;
// the LOW after the second pulse decides which one we are in. Format B
// bits are HIGH-LOW-HIGH-LOW with the middle HIGH long (bit 1) or
// short (bit 0).
//
// Anything that does not fit the current state resets the machine to
// its hunting state and the offending pulse is then re-examined from
// there, so a new frame's first sync pulse also serves as the previous
// frame's terminator.
package nexa

type rxState uint8

const (
	stateUnknown rxState = iota
	stateSyncA1
	stateSyncA2
	stateSyncA3
	stateBitA0
	stateBitA1
	stateBitA2
	stateBitA3
	stateBitB0
	stateBitB1
	stateBitB2
	stateBitB3
)

// pendingNone means no half-decoded bit is in flight.
const pendingNone int8 = -1

// Receiver turns a stream of classified pulses into protocol tokens.
// Feed is the producer side of the ring; it must be called from a
// single goroutine.
type Receiver struct {
	state   rxState
	pending int8 // tentative bit value awaiting its confirming pulse
	ring    *TokenRing
	stats   *Statistics
	dropped bool // last emit overflowed the ring
}

// NewReceiver creates a receiver emitting into ring. stats may be nil.
func NewReceiver(ring *TokenRing, stats *Statistics) *Receiver {
	return &Receiver{state: stateUnknown, pending: pendingNone, ring: ring, stats: stats}
}

// Reset returns the receiver to its hunting state, discarding any
// half-decoded bit. The ring is left alone.
func (r *Receiver) Reset() {
	r.state = stateUnknown
	r.pending = pendingNone
}

// emit pushes t into the ring and records an overflow if the consumer
// has fallen behind. Tokens are dropped, never blocked on.
func (r *Receiver) emit(t Token) {
	if !r.ring.Push(t) {
		r.dropped = true
	}
}

// Feed consumes one pulse duration in microseconds (positive HIGH,
// negative LOW) and reports whether it terminated a frame in progress,
// i.e. whether the machine left a mid-frame state for any reason. A
// true return is the parser's cue that no more bits will arrive for
// the current frame.
func (r *Receiver) Feed(micros int32) bool {
	cat := Classify(micros)
	if r.stats != nil {
		r.stats.Pulses++
		if cat == CategoryInvalid {
			r.stats.InvalidPulses++
		}
	}

	if r.step(cat) {
		return r.checkOverflow(false)
	}

	// The pulse does not fit here. Fall back to hunting and give the
	// same pulse one more look: it may be the first sync pulse of the
	// next frame, back to back with the one that just ended.
	frameEnded := r.state != stateUnknown
	if frameEnded && r.stats != nil {
		r.stats.Desyncs++
	}
	r.Reset()
	r.step(cat) // the stateUnknown row accepts or ignores anything
	return r.checkOverflow(frameEnded)
}

// checkOverflow handles a ring overflow flagged during emit: the token
// stream now has a hole in it, so any frame in progress is unsalvageable
// and the machine is forced back to hunting. The dropped pulse is NOT
// re-examined; after losing tokens there is no frame worth salvaging.
func (r *Receiver) checkOverflow(frameEnded bool) bool {
	if !r.dropped {
		return frameEnded
	}
	r.dropped = false
	if r.stats != nil {
		r.stats.OverflowDrops++
	}
	if r.state != stateUnknown {
		frameEnded = true
		r.Reset()
	}
	return frameEnded
}

// step advances the machine by one classified pulse. It returns false
// when the pulse has no transition from the current state; the caller
// decides what to do with the misfit. The stateUnknown row is total:
// it always returns true, either arming on a long LOW or ignoring the
// pulse.
func (r *Receiver) step(cat Category) bool {
	switch r.state {
	case stateUnknown:
		if cat == -5 {
			r.state = stateSyncA1
		}
		return true

	// Shared sync prefix: LOW 5 seen, expecting HIGH 1 then the
	// distinguishing LOW.
	case stateSyncA1:
		if cat == 1 {
			r.state = stateSyncA2
			return true
		}
	case stateSyncA2:
		switch cat {
		case -3: // 32-bit sync continues
			r.state = stateSyncA3
			return true
		case -2: // 12-bit frame: the long LOW after sync doubles as
			// the gap before the first bit's middle HIGH
			r.emit(TokenSyncB)
			if r.stats != nil {
				r.stats.SyncB++
			}
			r.state = stateBitB2
			return true
		}
	case stateSyncA3:
		if cat == 1 {
			r.emit(TokenSyncA)
			if r.stats != nil {
				r.stats.SyncA++
			}
			r.state = stateBitA0
			return true
		}

	// 32-bit bits: LOW gap, HIGH, LOW gap, HIGH. The first gap's
	// length picks the tentative bit, the second must complement it.
	case stateBitA0:
		switch cat {
		case -2:
			r.pending = 1
			r.state = stateBitA1
			return true
		case -1:
			r.pending = 0
			r.state = stateBitA1
			return true
		}
	case stateBitA1:
		if cat == 1 {
			r.state = stateBitA2
			return true
		}
	case stateBitA2:
		if (r.pending == 1 && cat == -1) || (r.pending == 0 && cat == -2) {
			r.state = stateBitA3
			return true
		}
	case stateBitA3:
		if cat == 1 {
			r.emitPending()
			r.state = stateBitA0
			return true
		}

	// 12-bit bits: HIGH, LOW gap, HIGH, LOW gap. The middle HIGH's
	// length picks the tentative bit, the trailing LOW must confirm.
	case stateBitB0:
		if cat == 1 {
			r.state = stateBitB1
			return true
		}
	case stateBitB1:
		if cat == -2 {
			r.state = stateBitB2
			return true
		}
	case stateBitB2:
		switch cat {
		case 2:
			r.pending = 1
			r.state = stateBitB3
			return true
		case 1:
			r.pending = 0
			r.state = stateBitB3
			return true
		}
	case stateBitB3:
		if (r.pending == 1 && cat == -1) || (r.pending == 0 && cat == -2) {
			r.emitPending()
			r.state = stateBitB0
			return true
		}
	}
	return false
}

// emitPending turns the tentative bit into a token.
func (r *Receiver) emitPending() {
	if r.pending == 1 {
		r.emit(TokenBit1)
	} else {
		r.emit(TokenBit0)
	}
	r.pending = pendingNone
	if r.stats != nil {
		r.stats.Bits++
	}
}
