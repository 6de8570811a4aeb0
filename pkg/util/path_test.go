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
package util

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Path_01(t *testing.T) {
	path := ParsePath("std.bool")
	//
	require.Equal(t, uint(2), path.Depth())
	require.Equal(t, []string{"std", "bool"}, path.Segments())
	require.Equal(t, "std.bool", path.String())
	require.True(t, path.Equals(NewPath("std", "bool")))
	require.False(t, path.Equals(NewPath("std")))
}

func Test_Path_02(t *testing.T) {
	segments := []string{"std", "bool"}
	path := NewPath(segments...)
	// Paths do not alias the segments they are built from
	segments[1] = "nat"
	path.Segments()[0] = "lib"
	require.Equal(t, "std.bool", path.String())
	// The empty path
	require.Equal(t, uint(0), ParsePath("").Depth())
}

func Test_Path_03(t *testing.T) {
	// Keys distinguish segments containing dots
	require.NotEqual(t, NewPath("a.b").Key(), NewPath("a", "b").Key())
	require.Equal(t, NewPath("a", "b").Key(), ParsePath("a.b").Key())
}

func Test_Path_04(t *testing.T) {
	var (
		buffer  bytes.Buffer
		decoded Path
		path    = NewPath("std", "bool")
	)
	//
	require.NoError(t, gob.NewEncoder(&buffer).Encode(path))
	require.NoError(t, gob.NewDecoder(&buffer).Decode(&decoded))
	require.True(t, path.Equals(decoded))
}
