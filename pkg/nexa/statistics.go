// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import (
	"fmt"
	"time"
)

// Statistics tracks decoding health counters. All counters are plain
// ints updated by whichever goroutine owns the component holding them;
// share a Statistics across goroutines only behind your own lock.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	Pulses        uint64 // pulses fed to the receiver
	InvalidPulses uint64 // pulses outside every duration bucket
	SyncA         uint64 // 32-bit sync sequences recognized
	SyncB         uint64 // 12-bit sync sequences recognized
	Bits          uint64 // bit tokens emitted
	Desyncs       uint64 // pulses that forced the receiver back to hunting
	OverflowDrops uint64 // tokens lost to a full ring

	Commands         uint64 // complete, well-formed commands
	Legacy12Commands uint64
	Modern32Commands uint64
	IncompleteFrames uint64 // frames abandoned before their last bit
	MalformedFrames  uint64 // bit-complete frames with bad marker bits

	PulseRate   float64 // pulses per second, from CalculateRates
	CommandRate float64 // commands per second
}

func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{StartTime: now, LastUpdateTime: now}
}

// CalculateRates refreshes PulseRate and CommandRate over the whole
// period since StartTime.
func (s *Statistics) CalculateRates() {
	s.LastUpdateTime = time.Now()
	elapsed := s.LastUpdateTime.Sub(s.StartTime).Seconds()
	if elapsed <= 0 {
		return
	}
	s.PulseRate = float64(s.Pulses) / elapsed
	s.CommandRate = float64(s.Commands) / elapsed
}

// Reset zeroes all counters and restarts the measurement period.
func (s *Statistics) Reset() {
	*s = Statistics{}
	s.StartTime = time.Now()
	s.LastUpdateTime = s.StartTime
}

func (s *Statistics) String() string {
	return fmt.Sprintf(
		"pulses=%d (invalid=%d, %.1f/s) sync=%d/%d bits=%d desyncs=%d "+
			"overflow=%d commands=%d (12-bit=%d, 32-bit=%d, %.2f/s) "+
			"incomplete=%d malformed=%d",
		s.Pulses, s.InvalidPulses, s.PulseRate,
		s.SyncA, s.SyncB, s.Bits, s.Desyncs, s.OverflowDrops,
		s.Commands, s.Legacy12Commands, s.Modern32Commands, s.CommandRate,
		s.IncompleteFrames, s.MalformedFrames)
}
