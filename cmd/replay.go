// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jherland/nexactl/pkg/capture"
	"github.com/jherland/nexactl/pkg/nexa"
)

var replayStats bool

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Decode a recorded pulse capture",
	Long: `Run a capture file recorded with 'nexactl record' through the decoder
and print every command it contains, using each record's capture time as
the command timestamp base. No radio connection is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayStats, "stats", false, "Print decoder statistics at the end")
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening capture file: %w", err)
	}
	defer f.Close()

	decoder := nexa.NewDecoder(viper.GetInt("ring_capacity"))
	r := capture.NewReader(f)
	records := 0

	for {
		rec, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		records++
		for _, p := range rec.Pulses {
			decoder.Feed(p)
			for c := decoder.Next(); c != nil; c = decoder.Next() {
				// Decode time is meaningless for a replay; show the
				// capture time of the record instead.
				c.Timestamp = rec.Time
				fmt.Println(nexa.FormatCommand(c))
			}
		}
	}
	// Flush any frame still waiting for its terminator.
	decoder.Feed(-nexa.ModernSyncGap)
	for c := decoder.Next(); c != nil; c = decoder.Next() {
		fmt.Println(nexa.FormatCommand(c))
	}

	if replayStats {
		stats := decoder.Stats()
		stats.CalculateRates()
		fmt.Printf("\n%d records, %s\n", records, stats)
	}
	return nil
}
