// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexcell/towerwatch/pkg/bscp"
)

var probeTimeout int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test connection by waiting for a valid BSCP frame",
	Long: `Wait for a valid BSCP frame on the connection until timeout.

This command connects to a station and waits for any valid frame. Invalid
bytes are ignored; the command succeeds on the first complete frame that
passes the CRC check.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for verifying cabling, port parameters and TLS material before running
the longer diagnostics.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runProbe(cmd *cobra.Command, args []string) error {
	tr, connInfo, err := OpenTransport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer tr.Close()

	fmt.Printf("Towerwatch - Link Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for valid BSCP frame...\n\n")

	parser := bscp.NewParser()
	buf := make([]byte, 4096)

	msgChan := make(chan *bscp.Message, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		invalidBytes := 0
		for {
			n, err := tr.Recv(buf, recvTimeout)
			if err != nil {
				errChan <- err
				return
			}

			for i := 0; i < n; i++ {
				msg, feedErr := parser.FeedByte(buf[i])
				if feedErr != nil {
					// Ignore framing errors, just count invalid bytes
					invalidBytes++
					continue
				}
				if msg != nil {
					if invalidBytes > 0 {
						fmt.Printf("(skipped %d invalid bytes before sync)\n", invalidBytes)
					}
					msgChan <- msg
					return
				}
			}
		}
	}()

	select {
	case msg := <-msgChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Type: %s (0x%02X)\n", bscp.FormatMessageType(msg.Type), msg.Type)
		fmt.Printf("  Category: %s\n", msg.Category())
		fmt.Printf("  Sequence: %d\n", msg.Sequence)
		fmt.Printf("  Payload: %d bytes\n", len(msg.Payload))
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(probeTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	return nil
}
