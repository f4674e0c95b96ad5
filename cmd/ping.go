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

var (
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure round-trip time with PING requests",
	Long: `Send PING_REQUEST frames and wait for matching PING_RESPONSE frames.

Each response is matched to its request by sequence number, so stream traffic
and event frames on the same link do not confuse the measurement.

This is useful for verifying:
  - The connection is established end to end
  - The station firmware is processing requests
  - Baseline link round-trip time

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	tr, connInfo, err := OpenTransport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer tr.Close()

	fmt.Printf("Towerwatch - Ping\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per ping\n", pingTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	parser := bscp.NewParser()
	successCount := 0
	failCount := 0
	var minRTT, maxRTT, totalRTT time.Duration

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		req := bscp.NewPingRequest(uint8(i))
		start := time.Now()

		resp, err := transact(tr, parser, req, time.Duration(pingTimeout)*time.Second)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failCount++
			continue
		}

		rtt := time.Since(start)
		fmt.Printf("PONG seq=%d rtt=%v\n", resp.Sequence, rtt.Round(time.Microsecond))
		successCount++
		totalRTT += rtt
		if minRTT == 0 || rtt < minRTT {
			minRTT = rtt
		}
		if rtt > maxRTT {
			maxRTT = rtt
		}

		// Small delay between pings
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	// Summary
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)
	if successCount > 0 {
		avg := totalRTT / time.Duration(successCount)
		fmt.Printf("rtt min/avg/max = %v/%v/%v\n",
			minRTT.Round(time.Microsecond), avg.Round(time.Microsecond), maxRTT.Round(time.Microsecond))
	}

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
