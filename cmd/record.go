// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jherland/nexactl/internal/recovery"
	"github.com/jherland/nexactl/pkg/capture"
	"github.com/jherland/nexactl/pkg/nexa"
)

var (
	recordDuration int
	recordBatch    int
)

var recordCmd = &cobra.Command{
	Use:   "record FILE",
	Short: "Record the raw pulse stream to a capture file",
	Long: `Record the radio bridge's pulse stream to FILE for later replay.

Pulses are written in batches as compact CBOR records, each stamped with
the time the batch was read. Recording runs until Ctrl+C or until
--duration elapses. Non-numeric bridge output is skipped, so the capture
holds only pulse durations.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().IntVar(&recordDuration, "duration", 0, "Stop after this many seconds (0 = until Ctrl+C)")
	recordCmd.Flags().IntVar(&recordBatch, "batch", 256, "Pulses per capture record")
}

func runRecord(cmd *cobra.Command, args []string) error {
	if recordBatch < 1 {
		return fmt.Errorf("--batch must be >= 1, got %d", recordBatch)
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("creating capture file: %w", err)
	}
	defer f.Close()

	w, err := capture.NewWriter(f)
	if err != nil {
		return err
	}

	fmt.Printf("nexactl - Record\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Recording to %s, press Ctrl+C to stop\n\n", args[0])

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var deadline <-chan time.Time
	if recordDuration > 0 {
		deadline = time.After(time.Duration(recordDuration) * time.Second)
	}

	type batch struct {
		t      time.Time
		pulses []int32
	}
	batchChan := make(chan batch, 4)
	errChan := make(chan error, 1)

	go func() {
		defer recovery.HandlePanicFunc(func() { conn.Close() })
		scanner := nexa.NewPulseScanner(conn)
		pulses := make([]int32, 0, recordBatch)
		started := time.Now()
		for {
			p, err := scanner.Next()
			if err != nil {
				if len(pulses) > 0 {
					batchChan <- batch{t: started, pulses: pulses}
				}
				errChan <- err
				return
			}
			if len(pulses) == 0 {
				started = time.Now()
			}
			pulses = append(pulses, p)
			if len(pulses) >= recordBatch {
				batchChan <- batch{t: started, pulses: pulses}
				pulses = make([]int32, 0, recordBatch)
			}
		}
	}()

	total := 0
	for {
		select {
		case b := <-batchChan:
			if err := w.Write(b.t, b.pulses); err != nil {
				return err
			}
			total += len(b.pulses)

		case err := <-errChan:
			// Drain any final batch queued before the error.
			for {
				select {
				case b := <-batchChan:
					if werr := w.Write(b.t, b.pulses); werr != nil {
						return werr
					}
					total += len(b.pulses)
					continue
				default:
				}
				break
			}
			fmt.Printf("\nRecorded %d pulses to %s\n", total, args[0])
			if errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) {
				return nil
			}
			return err

		case <-sigChan:
			fmt.Printf("\nRecorded %d pulses to %s\n", total, args[0])
			return nil

		case <-deadline:
			fmt.Printf("\nRecorded %d pulses to %s\n", total, args[0])
			return nil
		}
	}
}
