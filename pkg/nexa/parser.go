// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import "time"

// Parser assembles the receiver's token stream into complete commands.
// It is the consumer side of the TokenRing and must run in a single
// goroutine, which may be a different one from the receiver's.
//
// A sync token opens a frame of the corresponding encoding; the frame
// closes when exactly 12 or 32 bit tokens have followed. A sync token
// arriving mid-frame abandons the old frame and opens a new one. Bit
// tokens outside any frame are skipped.
type Parser struct {
	ring  *TokenRing
	stats *Statistics

	collecting bool
	version    Version
	bits       [4]byte
	nbits      int
}

// NewParser creates a parser draining ring. stats may be nil.
func NewParser(ring *TokenRing, stats *Statistics) *Parser {
	return &Parser{ring: ring, stats: stats}
}

// Reset abandons any frame in progress.
func (p *Parser) Reset() {
	p.collecting = false
	p.nbits = 0
	p.bits = [4]byte{}
}

// Next drains available tokens and returns the next complete command,
// or nil when the ring runs dry first. Call it repeatedly; partial
// frame state is kept across calls.
func (p *Parser) Next() *Command {
	for {
		tok, ok := p.ring.Pop()
		if !ok {
			return nil
		}
		if cmd := p.consume(tok); cmd != nil {
			return cmd
		}
	}
}

func (p *Parser) consume(tok Token) *Command {
	switch tok {
	case TokenSyncA, TokenSyncB:
		if p.collecting && p.stats != nil {
			p.stats.IncompleteFrames++
		}
		p.Reset()
		p.collecting = true
		if tok == TokenSyncA {
			p.version = VersionModern32
		} else {
			p.version = VersionLegacy12
		}
	case TokenBit0, TokenBit1:
		if !p.collecting {
			return nil // stray bit, no frame open
		}
		if tok == TokenBit1 {
			setFrameBit(p.bits[:], p.nbits)
		}
		p.nbits++
		if p.nbits == p.version.FrameBits() {
			return p.finish()
		}
	}
	return nil
}

// finish closes the current frame and validates it into a command.
func (p *Parser) finish() *Command {
	cmd, err := unpackFrame(p.version, p.bits)
	p.Reset()
	if err != nil {
		if p.stats != nil {
			p.stats.MalformedFrames++
		}
		return nil
	}
	cmd.Timestamp = time.Now()
	if p.stats != nil {
		p.stats.Commands++
		switch cmd.Version {
		case VersionLegacy12:
			p.stats.Legacy12Commands++
		case VersionModern32:
			p.stats.Modern32Commands++
		}
	}
	return cmd
}

// FrameEnded tells the parser the receiver has given up on the current
// frame (desync or ring overflow) after all its tokens have been
// drained. Without this a stale partial frame could swallow the first
// bits of the next one.
func (p *Parser) FrameEnded() {
	if p.collecting {
		if p.stats != nil {
			p.stats.IncompleteFrames++
		}
		p.Reset()
	}
}

// Decoder bundles a Receiver and a Parser around a shared ring for the
// common single-goroutine case: feed pulses in, pull commands out.
type Decoder struct {
	Receiver *Receiver
	Parser   *Parser
	stats    *Statistics
	done     []*Command // completed but not yet handed out
}

// NewDecoder creates a decoder with a ring of the given capacity;
// capacity <= 0 selects DefaultRingCapacity.
func NewDecoder(capacity int) *Decoder {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	stats := NewStatistics()
	ring := NewTokenRing(capacity)
	return &Decoder{
		Receiver: NewReceiver(ring, stats),
		Parser:   NewParser(ring, stats),
		stats:    stats,
	}
}

// Feed passes one pulse to the receiver, propagating frame-end to the
// parser. Any commands completed by the pulse become available via Next.
func (d *Decoder) Feed(micros int32) {
	if d.Receiver.Feed(micros) {
		// Drain the tokens of the frame that just ended before
		// discarding the parser's partial state.
		for {
			cmd := d.Parser.Next()
			if cmd == nil {
				break
			}
			d.done = append(d.done, cmd)
		}
		d.Parser.FrameEnded()
	}
}

// Next returns the next decoded command, or nil when none is ready.
func (d *Decoder) Next() *Command {
	if len(d.done) > 0 {
		cmd := d.done[0]
		d.done = d.done[1:]
		return cmd
	}
	return d.Parser.Next()
}

// Stats exposes the decoder's shared counters.
func (d *Decoder) Stats() *Statistics { return d.stats }
