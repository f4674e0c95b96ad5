// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexcell/towerwatch/pkg/bscp"
)

var execTimeout int

var execCmd = &cobra.Command{
	Use:   "exec <command...>",
	Short: "Execute a command on the station",
	Long: `Send an EXEC_COMMAND request and print the decoded result.

The arguments are joined into a single command line and handed to the
station's command interpreter. The exit status of towerwatch mirrors the
station-side result:

Exit codes:
  0 - Command executed and reported success
  1 - Command executed and reported failure
  2 - Connection or protocol error

Example:
  towerwatch exec --station lab-rack-2 cell restart 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().IntVar(&execTimeout, "timeout", 30, "Response timeout in seconds")
}

func runExec(cmd *cobra.Command, args []string) error {
	commandLine := strings.Join(args, " ")

	tr, _, err := OpenTransport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer tr.Close()

	parser := bscp.NewParser()
	req := bscp.NewExecCommand(1, commandLine)
	resp, err := transact(tr, parser, req, time.Duration(execTimeout)*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Exec failed: %v\n", err)
		os.Exit(2)
	}

	result, err := bscp.DecodeCommandResult(resp.Payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Malformed command result: %v\n", err)
		os.Exit(2)
	}

	fmt.Print(bscp.FormatCommandResult(result))
	if !result.Succeeded() {
		os.Exit(1)
	}
	return nil
}
