// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

import "fmt"

// Pin is the output line the transmitter keys. Set drives the line
// high or low; Wait holds the current level for the given number of
// microseconds. Implementations decide how to wait (hardware timer,
// busy loop, or just recording for tests).
type Pin interface {
	Set(high bool)
	Wait(micros int32)
}

// Transmitter renders commands as on-air pulse trains on a Pin.
type Transmitter struct {
	pin Pin

	// MaxWait caps a single Pin.Wait call; longer holds are split into
	// chunks of at most this size so implementations with a limited
	// timer range still see the full duration. <= 0 means no cap.
	MaxWait int32
}

func NewTransmitter(pin Pin) *Transmitter {
	return &Transmitter{pin: pin}
}

// Transmit keys cmd onto the pin the given number of times. Repeats
// matter: real receivers debounce, and remotes send every press
// several times (DefaultRepeats). The pin is left low afterwards.
func (t *Transmitter) Transmit(cmd *Command, repeats int) error {
	train, err := AppendPulseTrain(nil, cmd, repeats)
	if err != nil {
		return err
	}
	for _, p := range train {
		if p > 0 {
			t.pin.Set(true)
			t.hold(p)
		} else {
			t.pin.Set(false)
			t.hold(-p)
		}
	}
	t.pin.Set(false)
	return nil
}

func (t *Transmitter) hold(micros int32) {
	if t.MaxWait <= 0 {
		t.pin.Wait(micros)
		return
	}
	for micros > t.MaxWait {
		t.pin.Wait(t.MaxWait)
		micros -= t.MaxWait
	}
	if micros > 0 {
		t.pin.Wait(micros)
	}
}

// AppendPulseTrain appends the signed pulse durations for cmd, sent
// repeats times plus the closing terminator pulse, to dst and returns
// the extended slice. The output fed back through a Receiver/Parser
// pair reproduces cmd once per repeat.
func AppendPulseTrain(dst []int32, cmd *Command, repeats int) ([]int32, error) {
	if !cmd.Version.Valid() {
		return dst, fmt.Errorf("cannot encode command version %d", cmd.Version)
	}
	if repeats < 1 {
		return dst, fmt.Errorf("repeats must be >= 1, got %d", repeats)
	}
	frame, nbits := packFrame(cmd)
	for i := 0; i < repeats; i++ {
		switch cmd.Version {
		case VersionLegacy12:
			dst = appendLegacyFrame(dst, frame, nbits)
		case VersionModern32:
			dst = appendModernFrame(dst, frame, nbits)
		}
	}
	// Terminator: one more sync-opening pulse so the receiver can
	// bound the last bit of the last repeat.
	switch cmd.Version {
	case VersionLegacy12:
		dst = append(dst, LegacyShort)
	case VersionModern32:
		dst = append(dst, -ModernSyncGap)
	}
	return dst, nil
}

// appendModernFrame emits one 32-bit frame: the four-pulse sync, then
// four pulses per bit where the two LOW gaps carry the bit value as a
// long/short (1) or short/long (0) pair.
func appendModernFrame(dst []int32, frame [4]byte, nbits int) []int32 {
	dst = append(dst, -ModernSyncGap, ModernHigh, -ModernSyncLow, ModernHigh)
	for i := 0; i < nbits; i++ {
		if frameBit(frame[:], i) == 1 {
			dst = append(dst, -ModernLong, ModernHigh, -ModernShort, ModernHigh)
		} else {
			dst = append(dst, -ModernShort, ModernHigh, -ModernLong, ModernHigh)
		}
	}
	return dst
}

// appendLegacyFrame emits one 12-bit frame: a short HIGH and long sync
// gap, then four pulses per bit where the middle HIGH's length carries
// the bit value.
func appendLegacyFrame(dst []int32, frame [4]byte, nbits int) []int32 {
	dst = append(dst, LegacyShort, -LegacySyncGap)
	for i := 0; i < nbits; i++ {
		if frameBit(frame[:], i) == 1 {
			dst = append(dst, LegacyShort, -LegacyLong, LegacyLong, -LegacyShort)
		} else {
			dst = append(dst, LegacyShort, -LegacyLong, LegacyShort, -LegacyLong)
		}
	}
	return dst
}
