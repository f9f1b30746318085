// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/piwatch/services/piwatch/chudnovsky"
)

var flagBlocks bool

var digitsCmd = &cobra.Command{
	Use:   "digits N",
	Short: "Print the first N fractional digits of pi and exit",
	Args:  cobra.ExactArgs(1),
	RunE:  runDigits,
}

func init() {
	digitsCmd.Flags().BoolVar(&flagBlocks, "blocks", false, "group output in blocks of ten digits")
	rootCmd.AddCommand(digitsCmd)
}

func runDigits(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("invalid digit count %q", args[0])
	}

	digits := chudnovsky.Digits(n)
	if len(digits) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "3")
		return nil
	}

	var b strings.Builder
	b.WriteString("3.")
	for i, d := range digits {
		if flagBlocks && i > 0 && i%10 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(d + '0')
	}
	fmt.Fprintln(cmd.OutOrStdout(), b.String())
	return nil
}
