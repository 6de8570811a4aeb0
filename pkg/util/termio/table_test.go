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
package termio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Table_01(t *testing.T) {
	var out strings.Builder
	//
	table := NewTablePrinter(2)
	table.AddRow("module", "status")
	table.AddRow("std.bool", "ok")
	//
	require.NoError(t, table.Print(&out))
	require.Equal(t, " module   | status |\n std.bool | ok     |\n", out.String())
}

func Test_Table_02(t *testing.T) {
	var out strings.Builder
	//
	table := NewTablePrinter(1)
	row := table.AddRow("incompatible")
	table.SetMaxWidths(6)
	table.SetEscape(0, row, NewAnsiEscape().FgColour(TERM_RED))
	table.AnsiEscapes(false)
	//
	require.NoError(t, table.Print(&out))
	require.Equal(t, " inco.. |\n", out.String())
}

func Test_Table_03(t *testing.T) {
	table := NewTablePrinter(2)
	//
	require.Panics(t, func() { table.AddRow("one") })
	require.Equal(t, "\033[31m", NewAnsiEscape().FgColour(TERM_RED).Build())
	require.Equal(t, "\033[1;32m", BoldAnsiEscape().FgColour(TERM_GREEN).Build())
}
