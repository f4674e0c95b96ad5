// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexcell/towerwatch/pkg/bscp"
)

var (
	queryTimeout int
	metricNames  []string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query station health status",
	Long: `Send a STATUS request and print the decoded response: overall status
code, uptime and error/warning counters.`,
	RunE: runStatus,
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Query current metric values",
	Long: `Send a METRICS request and print the decoded response.

By default the station returns every metric it samples. Use --metric to
request specific metrics by registry name (repeatable):

  towerwatch metrics --station lab-rack-2 --metric RSRP --metric SINR`,
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(metricsCmd)
	statusCmd.Flags().IntVar(&queryTimeout, "timeout", 5, "Response timeout in seconds")
	metricsCmd.Flags().IntVar(&queryTimeout, "timeout", 5, "Response timeout in seconds")
	metricsCmd.Flags().StringArrayVar(&metricNames, "metric", nil, "Metric name to request (repeatable, default all)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	tr, _, err := OpenTransport()
	if err != nil {
		return err
	}
	defer tr.Close()

	parser := bscp.NewParser()
	resp, err := transact(tr, parser, bscp.NewStatusRequest(1), time.Duration(queryTimeout)*time.Second)
	if err != nil {
		return err
	}

	status, err := bscp.DecodeStatus(resp.Payload)
	if err != nil {
		return fmt.Errorf("malformed status response: %w", err)
	}
	fmt.Print(bscp.FormatStatus(status))
	return nil
}

// resolveMetricCodes maps registry names back to type codes.
func resolveMetricCodes(names []string) ([]uint8, error) {
	codes := make([]uint8, 0, len(names))
	for _, name := range names {
		found := false
		for code := 0; code < 256; code++ {
			if bscp.MetricName(uint8(code)) == name {
				codes = append(codes, uint8(code))
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown metric %q", name)
		}
	}
	return codes, nil
}

func runMetrics(cmd *cobra.Command, args []string) error {
	codes, err := resolveMetricCodes(metricNames)
	if err != nil {
		return err
	}

	tr, _, err := OpenTransport()
	if err != nil {
		return err
	}
	defer tr.Close()

	parser := bscp.NewParser()
	req := bscp.NewMetricsRequest(1, codes...)
	resp, err := transact(tr, parser, req, time.Duration(queryTimeout)*time.Second)
	if err != nil {
		return err
	}

	metrics, err := bscp.DecodeMetrics(resp.Payload)
	if err != nil {
		return fmt.Errorf("malformed metrics response: %w", err)
	}
	if len(metrics) == 0 {
		fmt.Println("(no metrics returned)")
		return nil
	}
	fmt.Print(bscp.FormatMetrics(metrics))
	return nil
}
