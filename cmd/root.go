// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jherland/nexactl/internal/config"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "nexactl",
	Short: "Nexa/HomeEasy 433 MHz remote control codec",
	Long: `nexactl - decode and send Nexa/HomeEasy self-learning remote controls.

Talks to a radio bridge that reports received pulses as signed microsecond
durations (positive HIGH, negative LOW) and keys raw pulse trains back out.
Understands both the 12-bit legacy encoding and the 32-bit self-learning
encoding.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the NEXACTL_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.3.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		// Flags override the config file.
		if !cmd.Flags().Changed("port") {
			portName = viper.GetString("port")
		}
		if !cmd.Flags().Changed("baud") {
			baudRate = viper.GetInt("baud_rate")
		}
		if !cmd.Flags().Changed("url") {
			wsURL = viper.GetString("url")
		}
		if !cmd.Flags().Changed("username") {
			wsUsername = viper.GetString("username")
		}
		if !cmd.Flags().Changed("no-ssl-verify") {
			wsNoSSLVerify = viper.GetBool("no_ssl_verify")
		}
		return nil
	},
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
