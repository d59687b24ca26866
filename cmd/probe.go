// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jherland/nexactl/pkg/nexa"
)

var probeTimeout int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test connection by waiting for a valid command",
	Long: `Wait for a valid remote-control command on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any
complete, well-formed command frame. Noise and malformed frames are
ignored while waiting.

Exit codes:
  0 - Command received before timeout
  1 - Timeout reached without receiving a valid command
  2 - Connection error

Useful for testing connectivity to the radio bridge: press any paired
remote button within the timeout window.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 10, "Timeout in seconds to wait for a command")
}

func runProbe(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("nexactl - Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for a valid command (press a remote button)...\n\n")

	cmdChan := make(chan *nexa.Command, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		decoder := nexa.NewDecoder(viper.GetInt("ring_capacity"))
		scanner := nexa.NewPulseScanner(conn)
		for {
			pulse, err := scanner.Next()
			if err != nil {
				errChan <- err
				return
			}
			decoder.Feed(pulse)
			if c := decoder.Next(); c != nil {
				stats := decoder.Stats()
				if stats.InvalidPulses+stats.Desyncs > 0 {
					fmt.Printf("(skipped %d invalid pulses, %d desyncs before first command)\n",
						stats.InvalidPulses, stats.Desyncs)
				}
				cmdChan <- c
				return
			}
		}
	}()

	select {
	case c := <-cmdChan:
		fmt.Printf("SUCCESS: Received valid command\n")
		fmt.Printf("  Version: %s\n", nexa.FormatVersion(c.Version))
		fmt.Printf("  Device:  %06X\n", c.DeviceID())
		if c.Version == nexa.VersionModern32 {
			fmt.Printf("  Group:   %t\n", c.Group)
			fmt.Printf("  Channel: %X\n", c.Channel)
		}
		fmt.Printf("  State:   %t\n", c.State)
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(probeTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid command received within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	return nil
}
