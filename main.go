// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks
//
// Towerwatch - Base Station Control Protocol diagnostic tool
//
// A CLI tool for monitoring, querying and controlling Nexcell base
// stations over serial, TCP and TLS links.

package main

import (
	"os"

	"github.com/nexcell/towerwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
