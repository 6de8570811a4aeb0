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
	"errors"
	"fmt"
	"os"

	"github.com/consensys/go-rewrite/pkg/binfile"
	"github.com/consensys/go-rewrite/pkg/util/termio"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] object_file(s)",
	Short: "Check object files are compatible with this kernel.",
	Long: `Check that one or more object files can be read by this kernel.  Files which
are reported as incompatible must be recompiled from source.  The exit status is
2 if any file is incompatible, and 1 if any other error arises.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		loadConfig(cmd)
		//
		table := termio.NewTablePrinter(4)
		table.AddRow("file", "module", "kernel", "status")
		status := 0
		//
		for _, filename := range args {
			objfile, err := binfile.ReadFile(filename)
			//
			switch {
			case err == nil:
				row := table.AddRow(filename, objfile.Metadata.Module, objfile.Metadata.Kernel,
					fmt.Sprintf("ok (%d symbols)", len(objfile.Signature.Symbols())))
				table.SetEscape(3, row, termio.NewAnsiEscape().FgColour(termio.TERM_GREEN))
			case errors.Is(err, binfile.ErrIncompatible):
				row := table.AddRow(filename, "?", "?", err.Error())
				table.SetEscape(3, row, termio.NewAnsiEscape().FgColour(termio.TERM_YELLOW))
				status = max(status, 2)
			default:
				row := table.AddRow(filename, "?", "?", err.Error())
				table.SetEscape(3, row, termio.NewAnsiEscape().FgColour(termio.TERM_RED))
				status = max(status, 1)
			}
		}
		//
		table.SetMaxWidths(GetUint(cmd, "max-width"))
		table.AnsiEscapes(term.IsTerminal(int(os.Stdout.Fd())))
		//
		if err := table.Print(os.Stdout); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		os.Exit(status)
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Uint("max-width", 60, "maximum width of any column")
}
