// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import "sync/atomic"

// TokenRing is a fixed-capacity single-producer/single-consumer FIFO of
// Tokens. The producer (Receiver, possibly running in a sampling callback
// or interrupt context) and the consumer (Parser) may run concurrently;
// the only synchronization is atomic cursor updates, so neither side ever
// blocks or locks. When the ring is full, Push drops the token and
// returns false — the overflow policy is the caller's (see Receiver).
type TokenRing struct {
	buf  []Token
	mask uint32
	head atomic.Uint32 // consumer cursor, only advanced by Pop
	tail atomic.Uint32 // producer cursor, only advanced by Push
}

// NewTokenRing creates a ring holding up to capacity tokens. Capacity is
// rounded up to the next power of two (minimum 2) so cursor arithmetic
// can wrap with a mask.
func NewTokenRing(capacity int) *TokenRing {
	n := 2
	for n < capacity {
		n <<= 1
	}
	return &TokenRing{
		buf:  make([]Token, n),
		mask: uint32(n - 1),
	}
}

// Push appends t to the ring. Returns false (dropping t) when the ring
// is full. Must only be called from the single producer.
func (r *TokenRing) Push(t Token) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() == uint32(len(r.buf)) {
		return false
	}
	r.buf[tail&r.mask] = t
	r.tail.Store(tail + 1)
	return true
}

// Pop removes and returns the oldest token. The second return value is
// false when the ring is empty. Must only be called from the single
// consumer.
func (r *TokenRing) Pop() (Token, bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return 0, false
	}
	t := r.buf[head&r.mask]
	r.head.Store(head + 1)
	return t, true
}

// Len returns the number of buffered tokens. Racy by nature when both
// sides are live; exact when quiescent.
func (r *TokenRing) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the ring's capacity.
func (r *TokenRing) Cap() int {
	return len(r.buf)
}
