// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import "testing"

func TestCommand_DeviceID(t *testing.T) {
	var cmd Command
	cmd.SetDeviceID(0xABCDEF)
	if cmd.Device != [3]byte{0xAB, 0xCD, 0xEF} {
		t.Errorf("Device = %X, want AB CD EF", cmd.Device)
	}
	if got := cmd.DeviceID(); got != 0xABCDEF {
		t.Errorf("DeviceID() = %06X, want ABCDEF", got)
	}
	// Bits above 24 are dropped.
	cmd.SetDeviceID(0xFF123456)
	if got := cmd.DeviceID(); got != 0x123456 {
		t.Errorf("DeviceID() = %06X, want 123456", got)
	}
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"legacy all zero", Command{Version: VersionLegacy12}},
		{"legacy max device on", Command{Version: VersionLegacy12, Device: [3]byte{0, 0, 0xFF}, State: true}},
		{"legacy device 2F off", Command{Version: VersionLegacy12, Device: [3]byte{0, 0, 0x2F}}},
		{"modern all zero", Command{Version: VersionModern32}},
		{"modern max everything", Command{Version: VersionModern32, Device: [3]byte{0xFF, 0xFF, 0xFF}, Channel: 0xF, Group: true, State: true}},
		{"modern group without channel", Command{Version: VersionModern32, Device: [3]byte{0xAB, 0xCD, 0xEF}, Group: true, State: true}},
		{"modern channel A", Command{Version: VersionModern32, Device: [3]byte{0x01, 0x02, 0x03}, Channel: 0xA}},
		{"modern alternating device", Command{Version: VersionModern32, Device: [3]byte{0x55, 0xAA, 0x55}, Channel: 0x5, State: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, nbits := packFrame(&tt.cmd)
			if want := tt.cmd.Version.FrameBits(); nbits != want {
				t.Fatalf("packFrame bit count = %d, want %d", nbits, want)
			}
			got, err := unpackFrame(tt.cmd.Version, frame)
			if err != nil {
				t.Fatalf("unpackFrame: %v", err)
			}
			if *got != tt.cmd {
				t.Errorf("round trip = %+v, want %+v", *got, tt.cmd)
			}
		})
	}
}

func TestPackFrame_BitLayout(t *testing.T) {
	// 12-bit layout: DDDDDDDD 011S, device bits most significant first.
	cmd := Command{Version: VersionLegacy12, State: true}
	cmd.SetDeviceID(0xA5)
	frame, _ := packFrame(&cmd)
	if frame[0] != 0xA5 {
		t.Errorf("legacy device byte = %02X, want A5", frame[0])
	}
	if frame[1] != 0x70 {
		t.Errorf("legacy marker/state byte = %02X, want 70", frame[1])
	}

	// 32-bit layout: 24 device bits, then 10 G S CCCC.
	cmd = Command{Version: VersionModern32, Channel: 0xC, Group: true}
	cmd.SetDeviceID(0x123456)
	frame, _ = packFrame(&cmd)
	want := [4]byte{0x12, 0x34, 0x56, 0xAC}
	if frame != want {
		t.Errorf("modern frame = %X, want %X", frame, want)
	}
}

func TestUnpackFrame_MarkerMismatch(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		frame   [4]byte
	}{
		{"legacy marker 000", VersionLegacy12, [4]byte{0xAB, 0x00, 0, 0}},
		{"legacy marker 111", VersionLegacy12, [4]byte{0xAB, 0xE0, 0, 0}},
		{"legacy marker 010", VersionLegacy12, [4]byte{0xAB, 0x40, 0, 0}},
		{"modern marker 00", VersionModern32, [4]byte{1, 2, 3, 0x00}},
		{"modern marker 01", VersionModern32, [4]byte{1, 2, 3, 0x40}},
		{"modern marker 11", VersionModern32, [4]byte{1, 2, 3, 0xC0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := unpackFrame(tt.version, tt.frame); err == nil {
				t.Error("unpackFrame accepted bad markers")
			}
		})
	}
}

func TestFrameBitIndexing(t *testing.T) {
	var buf [4]byte
	setFrameBit(buf[:], 0)
	setFrameBit(buf[:], 7)
	setFrameBit(buf[:], 8)
	setFrameBit(buf[:], 31)
	if buf != [4]byte{0x81, 0x80, 0x00, 0x01} {
		t.Fatalf("buf = %X, want 81 80 00 01", buf)
	}
	for i := 0; i < 32; i++ {
		want := byte(0)
		switch i {
		case 0, 7, 8, 31:
			want = 1
		}
		if got := frameBit(buf[:], i); got != want {
			t.Errorf("frameBit(%d) = %d, want %d", i, got, want)
		}
	}
}
