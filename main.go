// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Heliograph - Wireless Debug Display
//
// A CLI tool that shows remotely streamed plots and log lines in the
// terminal.

package main

import (
	"os"

	"github.com/Thermoquad/heliograph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
