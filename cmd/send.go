// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jherland/nexactl/pkg/nexa"
)

var (
	sendRepeats int
	sendPulses  bool
)

var sendCmd = &cobra.Command{
	Use:   "send V:DDDDDD:G:C:S",
	Short: "Send a remote-control command through the radio bridge",
	Long: `Send one command, given in the compact text form V:DDDDDD:G:C:S:

  V       encoding version: 1 (legacy 12-bit) or 2 (self-learning 32-bit)
  DDDDDD  device id, six hex digits (version 1 uses only the low byte)
  G       group flag, 0 or 1 (version 1: always 0)
  C       channel, one hex digit (version 1: always 0)
  S       state: 0=off, 1=on

Examples:
  nexactl send 2:ABCDEF:0:A:1     turn on channel A of device ABCDEF
  nexactl send 1:00002F:0:0:0     turn off legacy device 2F

The command line is written to the radio bridge, which keys the pulse
train. With --pulses the pulse durations are printed to stdout instead,
one signed microsecond value per line, without touching the radio.`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().IntVar(&sendRepeats, "repeats", 0, "Times to repeat the transmission (0 = config default)")
	sendCmd.Flags().BoolVar(&sendPulses, "pulses", false, "Print the pulse train instead of sending")
}

func runSend(cmd *cobra.Command, args []string) error {
	c, err := nexa.ParseCommandLine(args[0])
	if err != nil {
		return fmt.Errorf("parsing command: %w", err)
	}
	if err := nexa.ValidateCommand(c); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	repeats := sendRepeats
	if repeats <= 0 {
		repeats = viper.GetInt("repeats")
	}

	if sendPulses {
		train, err := nexa.AppendPulseTrain(nil, c, repeats)
		if err != nil {
			return err
		}
		var b strings.Builder
		for _, p := range train {
			fmt.Fprintf(&b, "%d\n", p)
		}
		fmt.Print(b.String())
		return nil
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	line := nexa.FormatCommandLine(c)
	if _, err := conn.Write([]byte(line)); err != nil {
		return fmt.Errorf("sending command: %w", err)
	}

	fmt.Printf("Sent via %s: %s", connInfo, line)
	return nil
}
