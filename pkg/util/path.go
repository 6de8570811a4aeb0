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
	"slices"
	"strings"
)

// Path identifies a module (i.e. a compilation unit) within a library.  A path
// is a sequence of name segments, such as "std.bool" which has the segments
// "std" and "bool".  Paths are used as keys for the registry of loaded modules
// and for the dependency tables of signatures.
type Path struct {
	// Segments in the path.
	segments []string
}

// NewPath constructs a new path from the given segments.
func NewPath(segments ...string) Path {
	return Path{slices.Clone(segments)}
}

// ParsePath splits a dotted module name (e.g. "std.bool") into a path.  The
// empty string gives the empty path.
func ParsePath(name string) Path {
	if name == "" {
		return Path{}
	}
	//
	return Path{strings.Split(name, ".")}
}

// Depth returns the number of segments in this path (a.k.a its depth).
func (p Path) Depth() uint {
	return uint(len(p.segments))
}

// Segments returns a copy of the segments making up this path.
func (p Path) Segments() []string {
	return slices.Clone(p.segments)
}

// Equals determines whether two paths are the same.
func (p Path) Equals(other Path) bool {
	return slices.Equal(p.segments, other.segments)
}

// Key returns a string uniquely identifying this path, suitable for use as a
// map key.
func (p Path) Key() string {
	return strings.Join(p.segments, "\x00")
}

// String returns the dotted representation of this path.
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

// ============================================================================
// Encoding / Decoding
// ============================================================================

// GobEncode a path.  This allows it to be marshalled into a binary form.
func (p Path) GobEncode() ([]byte, error) {
	var buffer bytes.Buffer
	//
	if err := gob.NewEncoder(&buffer).Encode(p.segments); err != nil {
		return nil, err
	}
	//
	return buffer.Bytes(), nil
}

// GobDecode a previously encoded path.
func (p *Path) GobDecode(data []byte) error {
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(&p.segments)
}
