// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// TCP/TLS connection flags
	hostAddr       string
	useTLS         bool
	tlsCAFile      string
	tlsCertFile    string
	tlsKeyFile     string
	tlsServerName  string
	tlsInsecure    bool

	// Profile flags
	stationName string
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:   "towerwatch",
	Short: "BSCP Base Station Link Analyzer",
	Long: `Towerwatch - A CLI tool for talking to base-station controllers over the
Base Station Control Protocol (BSCP).

Provides commands for live frame decoding, link diagnostics, one-shot queries,
remote command execution and bridging decoded telemetry to WebSocket and MQTT
consumers.

Connection modes:
  Serial: --port /dev/ttyUSB0 [--baud 115200]
  TCP:    --host station-17.nexcell.net:4400
  TLS:    --host station-17.nexcell.net:4401 --tls --ca ca.pem [--cert c.pem --key c.key]
  Profile: --station lab-rack-2 [--config towerwatch.toml]

Station profiles are read from a TOML file (default ~/.config/towerwatch.toml)
and carry the same parameters as the flags. Explicit flags win over the
profile.`,
	Version: "1.4.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// Network connection flags
	rootCmd.PersistentFlags().StringVarP(&hostAddr, "host", "H", "", "Station address as host:port")
	rootCmd.PersistentFlags().BoolVar(&useTLS, "tls", false, "Wrap the TCP connection in TLS")
	rootCmd.PersistentFlags().StringVar(&tlsCAFile, "ca", "", "CA certificate for station verification (TLS)")
	rootCmd.PersistentFlags().StringVar(&tlsCertFile, "cert", "", "Client certificate for mutual TLS")
	rootCmd.PersistentFlags().StringVar(&tlsKeyFile, "key", "", "Client key for mutual TLS")
	rootCmd.PersistentFlags().StringVar(&tlsServerName, "server-name", "", "Override the name verified against the station certificate")
	rootCmd.PersistentFlags().BoolVar(&tlsInsecure, "insecure", false, "Skip TLS certificate verification (bench use only)")

	// Profile flags
	rootCmd.PersistentFlags().StringVarP(&stationName, "station", "s", "", "Station profile name from the config file")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the TOML config file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
