// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

// Package capture stores raw pulse streams as a sequence of CBOR
// records, one per batch of pulses read from the radio. The format is
// append-friendly and streamable: a reader can decode records one at a
// time without loading the whole file.
package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Record is one batch of pulses with the wall-clock time the batch was
// read. Integer keys keep the on-disk records compact.
type Record struct {
	Time   time.Time `cbor:"1,keyasint"`
	Pulses []int32   `cbor:"2,keyasint"`
}

// Writer appends records to a capture stream.
type Writer struct {
	enc *cbor.Encoder
}

func NewWriter(w io.Writer) (*Writer, error) {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	mode, err := opts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("building capture encoder: %w", err)
	}
	return &Writer{enc: mode.NewEncoder(w)}, nil
}

// Write appends one batch of pulses, stamped now if t is zero.
func (w *Writer) Write(t time.Time, pulses []int32) error {
	if t.IsZero() {
		t = time.Now()
	}
	if err := w.enc.Encode(Record{Time: t, Pulses: pulses}); err != nil {
		return fmt.Errorf("writing capture record: %w", err)
	}
	return nil
}

// Reader decodes records from a capture stream.
type Reader struct {
	dec *cbor.Decoder
}

func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream.
func (r *Reader) Next() (*Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading capture record: %w", err)
	}
	return &rec, nil
}
