// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jherland/nexactl/pkg/nexa"
)

var (
	monitorStatsInterval int
	monitorShowRaw       bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Decode and display remote-control commands as they arrive",
	Long: `Continuously decode the radio bridge's pulse stream and display every
remote-control command as it arrives, with timestamp, encoding version,
device id, group/channel and on/off state.

The bridge reports pulses as whitespace-separated signed microsecond
durations; any other output from the bridge (banners, prompts) is skipped.
Periodic statistics summaries show pulse and command rates alongside
desync, overflow and malformed-frame counters.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 0, "Statistics update interval in seconds (0 = config default)")
	monitorCmd.Flags().BoolVar(&monitorShowRaw, "show-raw", false, "Also print every pulse duration")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	interval := monitorStatsInterval
	if interval <= 0 {
		interval = viper.GetInt("stats_interval")
	}

	fmt.Printf("nexactl - Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := nexa.NewDecoder(viper.GetInt("ring_capacity"))
	scanner := nexa.NewPulseScanner(conn)
	lastStats := time.Now()

	for {
		pulse, err := scanner.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}
		if monitorShowRaw {
			fmt.Printf("% 7d\n", pulse)
		}

		decoder.Feed(pulse)
		for c := decoder.Next(); c != nil; c = decoder.Next() {
			fmt.Println(nexa.FormatCommand(c))
		}

		if time.Since(lastStats) >= time.Duration(interval)*time.Second {
			stats := decoder.Stats()
			stats.CalculateRates()
			fmt.Printf("--- %s ---\n", stats)
			lastStats = time.Now()
		}
	}
}
