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
package binfile

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/go-rewrite/pkg/signature"
	"github.com/consensys/go-rewrite/pkg/term"
	"github.com/consensys/go-rewrite/pkg/util"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

var (
	natPath   = util.NewPath("lib", "nat")
	arithPath = util.NewPath("lib", "arith")
)

func Test_ObjectFile_01(t *testing.T) {
	nat, arith := newTestSignatures()
	filename := filepath.Join(t.TempDir(), "lib", "arith.lpo")
	//
	require.NoError(t, Write(arith, filename, zstd.SpeedBestCompression))
	//
	objfile, err := ReadFile(filename)
	require.NoError(t, err)
	require.Equal(t, "lib.arith", objfile.Metadata.Module)
	require.Equal(t, KERNEL_VERSION, objfile.Metadata.Kernel)
	require.Equal(t, "best", objfile.Metadata.Compression)
	require.True(t, objfile.Header.IsCompatible())
	// No temporary files left behind
	entries, err := os.ReadDir(filepath.Dir(filename))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// Link the signature read back
	sig := objfile.Signature
	require.Len(t, sig.Requires(), 1)
	sig.Link(testRegistry{natPath.Key(): nat})
	//
	natSym, _ := nat.Find("nat")
	two, err := sig.Find("two")
	require.NoError(t, err)
	require.Same(t, natSym, two.Type.(*term.Symb).Symbol)
}

func Test_ObjectFile_02(t *testing.T) {
	nat, arith := newTestSignatures()
	//
	_, err := Encode(arith, zstd.SpeedFastest)
	require.NoError(t, err)
	// Encoding leaves the signature intact
	natSym, _ := nat.Find("nat")
	two, _ := arith.Find("two")
	require.Same(t, natSym, two.Type.(*term.Symb).Symbol)
}

func Test_ObjectFile_03(t *testing.T) {
	_, arith := newTestSignatures()
	data, err := Encode(arith, zstd.SpeedDefault)
	require.NoError(t, err)
	// Corrupt the body
	data[len(data)-1] ^= 0xff
	_, err = Decode(data)
	require.True(t, errors.Is(err, ErrIncompatible))
}

func Test_ObjectFile_04(t *testing.T) {
	data := []byte("certainly not an object file")
	//
	_, err := Decode(data)
	require.True(t, errors.Is(err, ErrIncompatible))
	_, err = Decode(nil)
	require.True(t, errors.Is(err, ErrIncompatible))
}

func Test_ObjectFile_05(t *testing.T) {
	data := encodeHeader(t, OBJFILE_MAJOR_VERSION+1, 0, Metadata{Kernel: KERNEL_VERSION})
	//
	require.Equal(t, LPOBJECT[:], data[:len(LPOBJECT)])
	_, _, _, err := DecodeHeader(data)
	require.True(t, errors.Is(err, ErrIncompatible))
}

func Test_ObjectFile_06(t *testing.T) {
	check_KernelVersion(t, "1.3.0", true)
	check_KernelVersion(t, "1.3.7", true)
	check_KernelVersion(t, "1.2.0", false)
	check_KernelVersion(t, "1.4.0", false)
	check_KernelVersion(t, "2.3.0", false)
	check_KernelVersion(t, "latest", false)
}

func Test_ObjectFile_07(t *testing.T) {
	var incompatible *IncompatibleError
	//
	filename := filepath.Join(t.TempDir(), "garbage.lpo")
	require.NoError(t, os.WriteFile(filename, []byte("lpobject"), 0644))
	//
	_, err := Read(filename)
	require.True(t, errors.As(err, &incompatible))
	require.Equal(t, filename, incompatible.Filename)
}

func Test_ObjectFile_08(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.lpo"))
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func Test_ObjectFile_09(t *testing.T) {
	_, arith := newTestSignatures()
	filename := filepath.Join(t.TempDir(), "arith.lpo")
	// Overwriting an existing object file
	require.NoError(t, os.WriteFile(filename, []byte("stale"), 0644))
	require.NoError(t, Write(arith, filename, zstd.SpeedDefault))
	//
	sig, err := Read(filename)
	require.NoError(t, err)
	require.Len(t, sig.Symbols(), 1)
	require.Len(t, sig.Dependencies(), 1)
}

func Test_Header_01(t *testing.T) {
	var (
		header = Header{LPOBJECT, 1, 2, []byte("{}")}
		other  Header
	)
	//
	data, err := header.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, other.UnmarshalBinary(bytes.NewReader(data)))
	require.Equal(t, header, other)
}

func Test_Header_02(t *testing.T) {
	var header Header
	// Metadata length far exceeding the data available
	data := encodeHeader(t, OBJFILE_MAJOR_VERSION, OBJFILE_MINOR_VERSION, Metadata{Kernel: KERNEL_VERSION})
	binary.BigEndian.PutUint32(data[len(LPOBJECT)+4:], math.MaxUint32)
	//
	_, _, _, err := DecodeHeader(data)
	require.True(t, errors.Is(err, ErrIncompatible))
	// Likewise for readers of unknown size
	err = header.UnmarshalBinary(io.MultiReader(bytes.NewReader(data)))
	require.True(t, errors.Is(err, ErrIncompatible))
}

// ===================================================================
// Test Helpers
// ===================================================================

type testRegistry map[string]*signature.Signature

func (p testRegistry) Lookup(path util.Path) (*signature.Signature, bool) {
	sig, ok := p[path.Key()]
	return sig, ok
}

// Construct a module nat (declaring nat, zero and add) and a module arith
// which declares two and adds a rule to add.
func newTestSignatures() (*signature.Signature, *signature.Signature) {
	nat := signature.Create(natPath)
	natType := term.NewSymb(nat.NewSymbol(false, "nat", term.NewType()))
	zero := term.NewSymb(nat.NewSymbol(false, "zero", natType))
	add := nat.NewSymbol(true, "add", term.NewArrow(natType, term.NewArrow(natType, natType)))
	// add zero $n ↪ $n
	mustAddRule(nat, add, term.NewRule([]string{"n"}, term.NewTEnv(0), zero, term.NewPatt(0, "n")))
	//
	arith := signature.Create(arithPath)
	two := arith.NewSymbol(true, "two", natType)
	// two ↪ add zero zero
	mustAddRule(arith, two, term.NewRule(nil, term.AddArgs(term.NewSymb(add), zero, zero)))
	// add $m zero ↪ $m
	mustAddRule(arith, add, term.NewRule([]string{"m"}, term.NewTEnv(0), term.NewPatt(0, "m"), zero))
	//
	return nat, arith
}

func mustAddRule(sig *signature.Signature, symbol *term.Symbol, rule *term.Rule) {
	if err := sig.AddRule(symbol, rule); err != nil {
		panic(err.Error())
	}
}

func encodeHeader(t *testing.T, major uint16, minor uint16, metadata Metadata) []byte {
	metaBytes, err := json.Marshal(&metadata)
	require.NoError(t, err)
	//
	header := Header{LPOBJECT, major, minor, metaBytes}
	data, err := header.MarshalBinary()
	require.NoError(t, err)
	//
	return data
}

func check_KernelVersion(t *testing.T, version string, compatible bool) {
	t.Helper()
	//
	data := encodeHeader(t, OBJFILE_MAJOR_VERSION, OBJFILE_MINOR_VERSION, Metadata{Kernel: version})
	_, _, _, err := DecodeHeader(data)
	//
	if compatible {
		require.NoError(t, err, "kernel %s", version)
	} else {
		require.True(t, errors.Is(err, ErrIncompatible), "kernel %s", version)
	}
}
