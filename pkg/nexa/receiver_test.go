// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import "testing"

// decodeAll runs a pulse train through a fresh decoder and collects
// every command that falls out.
func decodeAll(t *testing.T, pulses []int32) ([]*Command, *Statistics) {
	t.Helper()
	d := NewDecoder(0)
	var cmds []*Command
	for _, p := range pulses {
		d.Feed(p)
		for cmd := d.Next(); cmd != nil; cmd = d.Next() {
			cmds = append(cmds, cmd)
		}
	}
	for cmd := d.Next(); cmd != nil; cmd = d.Next() {
		cmds = append(cmds, cmd)
	}
	return cmds, d.Stats()
}

func sameCommand(a, b *Command) bool {
	return a.Version == b.Version && a.Device == b.Device &&
		a.Channel == b.Channel && a.Group == b.Group && a.State == b.State
}

func TestReceiver_DecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"modern on", Command{Version: VersionModern32, Device: [3]byte{0xAB, 0xCD, 0xEF}, Channel: 1, State: true}},
		{"modern off", Command{Version: VersionModern32, Device: [3]byte{0xAB, 0xCD, 0xEF}, Channel: 1}},
		{"modern group", Command{Version: VersionModern32, Device: [3]byte{0x00, 0x00, 0x01}, Group: true, State: true}},
		{"modern all ones device", Command{Version: VersionModern32, Device: [3]byte{0xFF, 0xFF, 0xFF}, Channel: 0xF, Group: true, State: true}},
		{"legacy on", Command{Version: VersionLegacy12, Device: [3]byte{0, 0, 0x2F}, State: true}},
		{"legacy off", Command{Version: VersionLegacy12, Device: [3]byte{0, 0, 0x2F}}},
		{"legacy zero device", Command{Version: VersionLegacy12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			train, err := AppendPulseTrain(nil, &tt.cmd, 1)
			if err != nil {
				t.Fatalf("AppendPulseTrain: %v", err)
			}
			cmds, _ := decodeAll(t, train)
			if len(cmds) != 1 {
				t.Fatalf("decoded %d commands, want 1", len(cmds))
			}
			if !sameCommand(cmds[0], &tt.cmd) {
				t.Errorf("decoded %+v, want %+v", cmds[0], tt.cmd)
			}
		})
	}
}

func TestReceiver_DecodesEveryRepeat(t *testing.T) {
	cmd := Command{Version: VersionModern32, Device: [3]byte{0x12, 0x34, 0x56}, Channel: 3, State: true}
	train, err := AppendPulseTrain(nil, &cmd, DefaultRepeats)
	if err != nil {
		t.Fatalf("AppendPulseTrain: %v", err)
	}
	cmds, stats := decodeAll(t, train)
	if len(cmds) != DefaultRepeats {
		t.Fatalf("decoded %d commands from %d repeats", len(cmds), DefaultRepeats)
	}
	for i, got := range cmds {
		if !sameCommand(got, &cmd) {
			t.Errorf("repeat %d decoded %+v, want %+v", i, got, cmd)
		}
	}
	if stats.Modern32Commands != DefaultRepeats {
		t.Errorf("Modern32Commands = %d, want %d", stats.Modern32Commands, DefaultRepeats)
	}
}

func TestReceiver_BackToBackMixedFrames(t *testing.T) {
	// A 32-bit frame directly followed by a 12-bit frame: the second
	// frame's sync doubles as the first frame's terminator, and both
	// must decode.
	a := Command{Version: VersionModern32, Device: [3]byte{0xAB, 0xCD, 0xEF}, Channel: 2, State: true}
	b := Command{Version: VersionLegacy12, Device: [3]byte{0, 0, 0x42}}

	train, err := AppendPulseTrain(nil, &a, 1)
	if err != nil {
		t.Fatal(err)
	}
	// Strip the terminator; the next frame provides the boundary.
	train = train[:len(train)-1]
	train, err = AppendPulseTrain(train, &b, 1)
	if err != nil {
		t.Fatal(err)
	}

	cmds, _ := decodeAll(t, train)
	if len(cmds) != 2 {
		t.Fatalf("decoded %d commands, want 2", len(cmds))
	}
	if !sameCommand(cmds[0], &a) {
		t.Errorf("first command = %+v, want %+v", cmds[0], a)
	}
	if !sameCommand(cmds[1], &b) {
		t.Errorf("second command = %+v, want %+v", cmds[1], b)
	}
}

func TestReceiver_RecoversAfterGarbage(t *testing.T) {
	cmd := Command{Version: VersionLegacy12, Device: [3]byte{0, 0, 0x99}, State: true}
	train := []int32{
		// Noise: invalid, truncated sync, random mid-range pulses.
		0, 123, -45678, 20000, -10150, 310, -310, 5000, -5000, 1, -1,
	}
	var err error
	train, err = AppendPulseTrain(train, &cmd, 2)
	if err != nil {
		t.Fatal(err)
	}
	cmds, stats := decodeAll(t, train)
	if len(cmds) != 2 {
		t.Fatalf("decoded %d commands after garbage, want 2", len(cmds))
	}
	for _, got := range cmds {
		if !sameCommand(got, &cmd) {
			t.Errorf("decoded %+v, want %+v", got, cmd)
		}
	}
	if stats.InvalidPulses == 0 {
		t.Error("InvalidPulses = 0, want > 0")
	}
	if stats.Desyncs == 0 {
		t.Error("Desyncs = 0, want > 0")
	}
}

func TestReceiver_TruncatedFrameYieldsNothing(t *testing.T) {
	cmd := Command{Version: VersionModern32, Device: [3]byte{0xAB, 0xCD, 0xEF}, State: true}
	train, err := AppendPulseTrain(nil, &cmd, 1)
	if err != nil {
		t.Fatal(err)
	}
	// Cut the train in the middle of the frame, then terminate.
	short := append([]int32{}, train[:len(train)/2]...)
	short = append(short, -ModernSyncGap)
	cmds, stats := decodeAll(t, short)
	if len(cmds) != 0 {
		t.Fatalf("decoded %d commands from truncated frame, want 0", len(cmds))
	}
	if stats.IncompleteFrames == 0 {
		t.Error("IncompleteFrames = 0, want > 0")
	}
}

func TestReceiver_OverflowIsLoudNotFatal(t *testing.T) {
	// Ring far too small for a 32-bit frame: decoding must fail
	// gracefully with the loss counted, never panic or livelock.
	stats := NewStatistics()
	ring := NewTokenRing(2)
	rx := NewReceiver(ring, stats)
	parser := NewParser(ring, stats)

	cmd := Command{Version: VersionModern32, Device: [3]byte{0xFF, 0xFF, 0xFF}, Channel: 0xF, State: true}
	train, err := AppendPulseTrain(nil, &cmd, 3)
	if err != nil {
		t.Fatal(err)
	}
	// Consumer never runs while the producer floods the ring.
	for _, p := range train {
		rx.Feed(p)
	}
	if stats.OverflowDrops == 0 {
		t.Error("OverflowDrops = 0, want > 0")
	}
	// Whatever survived in the ring must not assemble into a command
	// (the frames all lost tokens).
	if cmdOut := parser.Next(); cmdOut != nil {
		t.Errorf("parser assembled %+v from a flooded ring", cmdOut)
	}
}

func TestReceiver_ResetClearsPendingBit(t *testing.T) {
	stats := NewStatistics()
	ring := NewTokenRing(64)
	rx := NewReceiver(ring, stats)

	// Walk into the middle of a 32-bit bit (tentative 1 pending),
	// then reset and feed a clean frame.
	for _, p := range []int32{-ModernSyncGap, ModernHigh, -ModernSyncLow, ModernHigh, -ModernLong, ModernHigh} {
		rx.Feed(p)
	}
	rx.Reset()
	// Drain the stale sync token from the aborted frame.
	for {
		if _, ok := ring.Pop(); !ok {
			break
		}
	}

	cmd := Command{Version: VersionModern32, Device: [3]byte{1, 2, 3}, Channel: 7}
	train, err := AppendPulseTrain(nil, &cmd, 1)
	if err != nil {
		t.Fatal(err)
	}
	parser := NewParser(ring, stats)
	var got *Command
	for _, p := range train {
		rx.Feed(p)
		if c := parser.Next(); c != nil {
			got = c
		}
	}
	if got == nil || !sameCommand(got, &cmd) {
		t.Fatalf("decoded %+v after reset, want %+v", got, cmd)
	}
}
