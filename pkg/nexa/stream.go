// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import (
	"bufio"
	"io"
	"strconv"
)

// PulseScanner reads whitespace-separated signed pulse durations from
// a text stream. Capture hardware tends to interleave chatter with the
// numbers (banners, "BEGIN"/"END" markers, prompts); any token that
// does not parse as an integer is counted and skipped rather than
// treated as an error.
type PulseScanner struct {
	sc      *bufio.Scanner
	skipped uint64
}

func NewPulseScanner(r io.Reader) *PulseScanner {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &PulseScanner{sc: sc}
}

// Next returns the next pulse duration. It returns io.EOF at the end
// of the stream, or the underlying reader's error.
func (p *PulseScanner) Next() (int32, error) {
	for p.sc.Scan() {
		v, err := strconv.ParseInt(p.sc.Text(), 10, 32)
		if err != nil {
			p.skipped++
			continue
		}
		return int32(v), nil
	}
	if err := p.sc.Err(); err != nil {
		return 0, err
	}
	return 0, io.EOF
}

// Skipped reports how many non-numeric tokens have been ignored so far.
func (p *PulseScanner) Skipped() uint64 { return p.skipped }
