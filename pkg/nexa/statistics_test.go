// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import (
	"strings"
	"testing"
	"time"
)

func TestStatistics_CalculateRates(t *testing.T) {
	s := NewStatistics()
	s.StartTime = time.Now().Add(-2 * time.Second)
	s.Pulses = 1000
	s.Commands = 10
	s.CalculateRates()
	if s.PulseRate < 400 || s.PulseRate > 600 {
		t.Errorf("PulseRate = %.1f, want ~500", s.PulseRate)
	}
	if s.CommandRate < 4 || s.CommandRate > 6 {
		t.Errorf("CommandRate = %.2f, want ~5", s.CommandRate)
	}
}

func TestStatistics_Reset(t *testing.T) {
	s := NewStatistics()
	s.Pulses = 42
	s.Desyncs = 7
	s.CalculateRates()
	s.Reset()
	if s.Pulses != 0 || s.Desyncs != 0 || s.PulseRate != 0 {
		t.Errorf("Reset left counters: %+v", s)
	}
	if s.StartTime.IsZero() {
		t.Error("Reset left StartTime zero")
	}
}

func TestStatistics_String(t *testing.T) {
	s := NewStatistics()
	s.Pulses = 123
	s.Commands = 4
	s.Legacy12Commands = 1
	s.Modern32Commands = 3
	out := s.String()
	for _, want := range []string{"pulses=123", "commands=4", "12-bit=1", "32-bit=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() = %q, missing %q", out, want)
		}
	}
}
