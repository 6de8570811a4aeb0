// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Determine the width of the terminal attached to stdout, falling back to a
// given default when there is none.
func terminalWidth(fallback uint) uint {
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			return uint(width)
		}
	}
	//
	return fallback
}

// Wrap a line of text such that no line exceeds the given width, except where
// a single word is itself wider.  Continuation lines are indented.
func wrap(text string, width uint, indent string) []string {
	var (
		lines   []string
		builder strings.Builder
		// Width of current line, and whether it holds any word yet.
		current uint
		empty   = true
	)
	//
	for _, word := range strings.Fields(text) {
		n := uint(utf8.RuneCountInString(word))
		//
		if !empty && current+1+n > width {
			lines = append(lines, builder.String())
			builder.Reset()
			builder.WriteString(indent)
			current = uint(utf8.RuneCountInString(indent))
		} else if !empty {
			builder.WriteString(" ")
			current++
		}
		//
		builder.WriteString(word)
		current += n
		empty = false
	}
	//
	if !empty {
		lines = append(lines, builder.String())
	}
	//
	return lines
}
