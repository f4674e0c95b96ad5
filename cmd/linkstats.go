// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexcell/towerwatch/pkg/bscp"
	"github.com/nexcell/towerwatch/pkg/transport"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var linkstatsCmd = &cobra.Command{
	Use:   "linkstats",
	Short: "Detect and analyze malformed frames and link errors",
	Long: `Track frame errors, malformed payloads and anomalous values with statistics.

This command validates every frame and detects:
  - CRC errors and framing failures
  - Malformed payloads (truncated metrics, bad lengths)
  - Unregistered metric codes and unknown message types
  - Anomalous telemetry values (non-finite floats, percentages out of range)
  - Rates and trends (frame rate, error rate, valid percentage)

By default, only errors are displayed. Use --show-all to display valid frames
too. With --tui the same data is rendered as a live dashboard.

A steady trickle of CRC errors on a link that stays connected usually means
cabling or RF interference, not a software problem; the periodic summaries
make that visible.`,
	RunE: runLinkstats,
}

func init() {
	rootCmd.AddCommand(linkstatsCmd)
	linkstatsCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just errors)")
	linkstatsCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	linkstatsCmd.Flags().BoolVar(&useTUI, "tui", false, "Render as a live dashboard instead of text")
}

func runLinkstats(cmd *cobra.Command, args []string) error {
	tr, connInfo, err := OpenTransport()
	if err != nil {
		return err
	}
	defer tr.Close()

	if useTUI {
		return runMonitorProgram(tr, connInfo)
	}
	return runLinkstatsText(tr, connInfo)
}

// printFeedError prints a framing/CRC error in highlighted format
func printFeedError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mFRAME ERROR:\033[0m %v\n\n", timestamp, err)
}

// printValidationErrors prints validation errors for a frame
func printValidationErrors(msg *bscp.Message, errs []bscp.ValidationError) {
	timestamp := msg.Timestamp.Format("15:04:05.000")
	msgType := bscp.FormatMessageType(msg.Type)

	fmt.Printf("[%s] \033[1;33mVALIDATION:\033[0m %s (0x%02X) seq=%d\n", timestamp, msgType, msg.Type, msg.Sequence)
	fmt.Printf("  CRC: \033[1;32mOK\033[0m\n")

	for i, err := range errs {
		switch err.Type {
		case bscp.AnomalyUnknownMetric:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)

		case bscp.AnomalyNonFiniteValue, bscp.AnomalyOutOfRange:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)

		case bscp.AnomalyLengthMismatch:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)

		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}
	fmt.Println()
}

// runLinkstatsText runs link diagnostics in plain text mode
func runLinkstatsText(tr transport.Transport, connInfo string) error {
	fmt.Printf("Towerwatch - Link Statistics\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All frames\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	parser := bscp.NewParser()
	stats := bscp.NewStatistics()
	buf := make([]byte, 4096)

	// Sync tracking - ignore framing errors until the first valid frame
	synchronized := false
	invalidBytesBeforeSync := 0

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	// Channel for non-blocking reads
	dataChan := make(chan []byte, 10)
	readErr := make(chan error, 1)
	go func() {
		for {
			n, err := tr.Recv(buf, recvTimeout)
			if err != nil {
				readErr <- err
				return
			}
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				dataChan <- data
			}
		}
	}()

	for {
		select {
		case data := <-dataChan:
			for _, b := range data {
				msg, feedErr := parser.FeedByte(b)

				if feedErr != nil {
					if synchronized {
						stats.Update(nil, feedErr, nil)
						printFeedError(feedErr)
					} else {
						invalidBytesBeforeSync++
					}
				} else if msg != nil {
					if !synchronized {
						synchronized = true
						if invalidBytesBeforeSync > 0 {
							fmt.Printf("[SYNC] Synchronized after skipping %d invalid bytes\n\n", invalidBytesBeforeSync)
						} else {
							fmt.Printf("[SYNC] Synchronized\n\n")
						}
					}

					validationErrors := bscp.ValidateMessage(msg)
					stats.Update(msg, nil, validationErrors)

					if len(validationErrors) > 0 {
						printValidationErrors(msg, validationErrors)
					} else if showAll {
						fmt.Print(bscp.FormatMessage(msg))
					}
				}
			}

		case err := <-readErr:
			fmt.Println()
			fmt.Print(stats.String())
			return err

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}
