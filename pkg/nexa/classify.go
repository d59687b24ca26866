// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package nexa

// Category is the symbolic class of one pulse: magnitude 1-5 by duration
// bucket, sign by polarity (positive = HIGH, negative = LOW), 0 = invalid.
type Category int8

// CategoryInvalid marks a pulse outside every defined duration bucket.
const CategoryInvalid Category = 0

// categoryBounds[i] is the exclusive upper bound, in µs, of category i+1.
// The buckets are not uniformly logarithmic: category 2 spans two octaves
// (512-2048 µs) because both data-bit LOW lengths of the 32-bit encoding
// fall in that range.
var categoryBounds = [...]int32{512, 2048, 4096, 8192, 16384}

// Classify maps a signed pulse duration in µs to its Category. It is a
// total function: durations of 0 µs or at least 16384 µs classify as
// CategoryInvalid. Runs in constant time; this is the hot receive path.
func Classify(micros int32) Category {
	mag := micros
	if mag < 0 {
		mag = -mag
		if mag < 0 {
			// -2^31 negates to itself; far outside every bucket anyway.
			return CategoryInvalid
		}
	}
	if mag == 0 {
		return CategoryInvalid
	}
	for i, bound := range categoryBounds {
		if mag < bound {
			c := Category(i + 1)
			if micros < 0 {
				return -c
			}
			return c
		}
	}
	return CategoryInvalid
}
