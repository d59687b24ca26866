// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import "testing"

// recordingPin captures Set/Wait calls as signed pulse durations,
// merging consecutive waits at the same level.
type recordingPin struct {
	high   bool
	pulses []int32
	waits  []int32 // raw Wait() arguments, for chunking checks
}

func (p *recordingPin) Set(high bool) { p.high = high }

func (p *recordingPin) Wait(micros int32) {
	p.waits = append(p.waits, micros)
	if !p.high {
		micros = -micros
	}
	n := len(p.pulses)
	if n > 0 && (p.pulses[n-1] > 0) == (micros > 0) {
		p.pulses[n-1] += micros
		return
	}
	p.pulses = append(p.pulses, micros)
}

func TestTransmit_MatchesPulseTrain(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"modern", Command{Version: VersionModern32, Device: [3]byte{0xAB, 0xCD, 0xEF}, Channel: 1, State: true}},
		{"legacy", Command{Version: VersionLegacy12, Device: [3]byte{0, 0, 0x2F}, State: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := AppendPulseTrain(nil, &tt.cmd, 2)
			if err != nil {
				t.Fatal(err)
			}
			pin := &recordingPin{}
			if err := NewTransmitter(pin).Transmit(&tt.cmd, 2); err != nil {
				t.Fatalf("Transmit: %v", err)
			}
			if len(pin.pulses) != len(want) {
				t.Fatalf("keyed %d pulses, want %d", len(pin.pulses), len(want))
			}
			for i := range want {
				if pin.pulses[i] != want[i] {
					t.Fatalf("pulse %d = %d, want %d", i, pin.pulses[i], want[i])
				}
			}
			if pin.high {
				t.Error("pin left high after transmit")
			}
		})
	}
}

func TestTransmit_ChunkedWaitsPreserveDuration(t *testing.T) {
	cmd := Command{Version: VersionModern32, Device: [3]byte{1, 2, 3}, State: true}
	want, err := AppendPulseTrain(nil, &cmd, 1)
	if err != nil {
		t.Fatal(err)
	}

	pin := &recordingPin{}
	tx := NewTransmitter(pin)
	tx.MaxWait = 1000
	if err := tx.Transmit(&cmd, 1); err != nil {
		t.Fatalf("Transmit: %v", err)
	}

	for _, w := range pin.waits {
		if w > tx.MaxWait {
			t.Fatalf("Wait(%d) exceeds cap %d", w, tx.MaxWait)
		}
	}
	// Merged durations are unchanged by the chunking.
	if len(pin.pulses) != len(want) {
		t.Fatalf("merged %d pulses, want %d", len(pin.pulses), len(want))
	}
	for i := range want {
		if pin.pulses[i] != want[i] {
			t.Fatalf("pulse %d = %d, want %d", i, pin.pulses[i], want[i])
		}
	}
}

func TestAppendPulseTrain_GoldenSequences(t *testing.T) {
	// 12-bit frame for device 0x01, state off: frame bits are
	// 00000001 0110, sent most significant bit first.
	cmd := Command{Version: VersionLegacy12, Device: [3]byte{0, 0, 0x01}}
	got, err := AppendPulseTrain(nil, &cmd, 1)
	if err != nil {
		t.Fatal(err)
	}
	bit0 := []int32{350, -1050, 350, -1050}
	bit1 := []int32{350, -1050, 1050, -350}
	want := []int32{350, -10850}
	for _, b := range []byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 1, 0} {
		if b == 1 {
			want = append(want, bit1...)
		} else {
			want = append(want, bit0...)
		}
	}
	want = append(want, 350)
	if len(got) != len(want) {
		t.Fatalf("train length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pulse %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAppendPulseTrain_ModernSyncAndTerminator(t *testing.T) {
	cmd := Command{Version: VersionModern32}
	got, err := AppendPulseTrain(nil, &cmd, 1)
	if err != nil {
		t.Fatal(err)
	}
	wantLen := 4 + ModernFrameBits*4 + 1
	if len(got) != wantLen {
		t.Fatalf("train length = %d, want %d", len(got), wantLen)
	}
	sync := []int32{-10150, 310, -2643, 310}
	for i, w := range sync {
		if got[i] != w {
			t.Errorf("sync pulse %d = %d, want %d", i, got[i], w)
		}
	}
	if got[wantLen-1] != -10150 {
		t.Errorf("terminator = %d, want -10150", got[wantLen-1])
	}
}

func TestAppendPulseTrain_Errors(t *testing.T) {
	if _, err := AppendPulseTrain(nil, &Command{Version: 0}, 1); err == nil {
		t.Error("accepted invalid version")
	}
	if _, err := AppendPulseTrain(nil, &Command{Version: VersionModern32}, 0); err == nil {
		t.Error("accepted zero repeats")
	}
}
