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

	"github.com/consensys/go-rewrite/pkg/binfile"
	"github.com/consensys/go-rewrite/pkg/term"
	"github.com/consensys/go-rewrite/pkg/util"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] object_file",
	Short: "Inspect an object file.",
	Long: `Print the contents of an object file, including its metadata, the modules it
requires, its symbols (with their types and rules) and the rules it contributes
to symbols of other modules.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		loadConfig(cmd)
		//
		objfile, err := binfile.ReadFile(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		width := GetUint(cmd, "width")
		if width == 0 {
			width = terminalWidth(80)
		}
		//
		for _, line := range inspectObjectFile(objfile) {
			lead := leadingSpace(line)
			//
			for _, wrapped := range wrap(line, max(width, 40)-uint(len(lead)), "    ") {
				fmt.Println(lead + wrapped)
			}
		}
	},
}

// Produce the (unwrapped) lines describing an object file.
func inspectObjectFile(objfile *binfile.ObjectFile) []string {
	var (
		lines []string
		sig   = objfile.Signature
		meta  = objfile.Metadata
	)
	//
	lines = append(lines, fmt.Sprintf("module %s", sig.Path().String()))
	lines = append(lines, fmt.Sprintf("  format v%d.%d, kernel %s, compression %s", objfile.Header.MajorVersion,
		objfile.Header.MinorVersion, meta.Kernel, meta.Compression))
	lines = append(lines, fmt.Sprintf("  digest %s", meta.Digest))
	//
	if requires := sig.Requires(); len(requires) > 0 {
		names := util.Map(requires, util.Path.String)
		lines = append(lines, fmt.Sprintf("requires %s", strings.Join(names, ", ")))
	}
	//
	lines = append(lines, "symbols")
	//
	for _, symbol := range sig.Symbols() {
		kind := "constant"
		if symbol.Definable {
			kind = "symbol"
		}
		//
		lines = append(lines, fmt.Sprintf("  %s %s : %s", kind, symbol.Name, term.Format(symbol.Type)))
		//
		for _, rule := range symbol.Rules {
			lines = append(lines, fmt.Sprintf("    %s", term.FormatRule(symbol, rule)))
		}
	}
	//
	for _, dep := range sig.Dependencies() {
		lines = append(lines, fmt.Sprintf("contributes to %s", dep.Module.String()))
		//
		for _, contrib := range dep.Rules {
			head := term.NewStub(dep.Module, contrib.Symbol)
			lines = append(lines, fmt.Sprintf("    %s", term.FormatRule(head, contrib.Rule)))
		}
	}
	//
	return lines
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " "))]
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Uint("width", 0, "wrap output at this width (default is the terminal width)")
}
