// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/nexcell/towerwatch/pkg/bscp"
	"github.com/nexcell/towerwatch/pkg/transport"
)

var watchShowErrors bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Display decoded frames in human-readable format",
	Long: `Continuously decode and display BSCP frames as they arrive.

Each frame is shown with timestamp, message type, sequence number and decoded
payload. Metric values are labeled using the metric type registry.

Supports serial, TCP and TLS connections.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchShowErrors, "show-errors", false, "Also print CRC and framing errors")
}

func runWatch(cmd *cobra.Command, args []string) error {
	tr, connInfo, err := OpenTransport()
	if err != nil {
		return err
	}
	defer tr.Close()

	fmt.Printf("Towerwatch - Frame Watch\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	parser := bscp.NewParser()
	buf := make([]byte, 4096)

	for {
		n, err := tr.Recv(buf, recvTimeout)
		if err != nil {
			if errors.Is(err, transport.ErrConnectionClosed) {
				log.Printf("Connection closed")
				return nil
			}
			return err
		}

		for i := 0; i < n; i++ {
			msg, feedErr := parser.FeedByte(buf[i])
			if feedErr != nil {
				if watchShowErrors {
					fmt.Printf("[ERROR] %v\n", feedErr)
				}
				continue
			}
			if msg != nil {
				fmt.Print(bscp.FormatMessage(msg))
			}
		}
	}
}
