// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jherland/nexactl/pkg/capture"
	"github.com/jherland/nexactl/pkg/nexa"
)

var analyzeText bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Summarize pulse durations in a capture",
	Long: `Group the pulses of a capture file by duration category and report
count, minimum, mean and maximum duration per category, split by level.

This is the tool for checking how well a transmitter's timings sit inside
the decoder's buckets: nominal pulses should cluster tightly, and a fat
"invalid" row usually means reception problems.

With --text, FILE is whitespace-separated pulse durations (as printed by
'nexactl send --pulses' or captured from the bridge) instead of a CBOR
capture; use "-" for stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeText, "text", false, "Input is whitespace-separated pulse durations")
}

// pulseBucket accumulates duration statistics for one category.
type pulseBucket struct {
	count    int
	min, max int32
	sum      int64
}

func (b *pulseBucket) add(micros int32) {
	if b.count == 0 || micros < b.min {
		b.min = micros
	}
	if b.count == 0 || micros > b.max {
		b.max = micros
	}
	b.count++
	b.sum += int64(micros)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Buckets indexed by category +5: [-5..-1], invalid, [1..5].
	var buckets [11]pulseBucket
	total := 0

	addPulse := func(p int32) {
		buckets[int(nexa.Classify(p))+5].add(p)
		total++
	}

	if analyzeText {
		var in io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		scanner := nexa.NewPulseScanner(in)
		for {
			p, err := scanner.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return err
			}
			addPulse(p)
		}
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening capture file: %w", err)
		}
		defer f.Close()
		r := capture.NewReader(f)
		for {
			rec, err := r.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return err
			}
			for _, p := range rec.Pulses {
				addPulse(p)
			}
		}
	}

	fmt.Printf("%d pulses\n\n", total)
	fmt.Printf("%-10s %8s %9s %9s %9s\n", "category", "count", "min", "mean", "max")
	for cat := -5; cat <= 5; cat++ {
		b := &buckets[cat+5]
		if b.count == 0 {
			continue
		}
		name := fmt.Sprintf("%+d", cat)
		if cat == 0 {
			name = "invalid"
		}
		mean := float64(b.sum) / float64(b.count)
		fmt.Printf("%-10s %8d %9d %9.1f %9d\n", name, b.count, b.min, mean, b.max)
	}
	return nil
}
