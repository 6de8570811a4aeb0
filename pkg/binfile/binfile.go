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
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
	"github.com/consensys/go-rewrite/pkg/signature"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

// ============================================================================
// Object File Format
// ============================================================================

// ObjectFile is a programatic representation of an underlying object file,
// which holds the (unlinked) signature of a single module.  An object file
// consists of a fixed header, a block of JSON metadata, and finally the
// compressed GOB encoding of the signature.
type ObjectFile struct {
	// Header for the object file
	Header Header
	// Metadata describing the object file.
	Metadata Metadata
	// The unlinked signature itself.
	Signature *signature.Signature
}

// Header provides a structured header for the object file format.  In
// particular, it supports versioning and embedded metadata.
type Header struct {
	Identifier   [8]byte
	MajorVersion uint16
	MinorVersion uint16
	MetaData     []byte
}

// Metadata records information about the kernel which wrote an object file,
// along with an integrity digest of the (compressed) body.
type Metadata struct {
	// Version of the kernel which produced this file.
	Kernel string `json:"kernel"`
	// Module whose signature this file holds.
	Module string `json:"module"`
	// Hex-encoded BLAKE2b-256 digest of the body.
	Digest string `json:"digest"`
	// Compression level used for the body.
	Compression string `json:"compression"`
}

// OBJFILE_MAJOR_VERSION gives the major version of the object file format.  No
// matter what version, we should always have the LPOBJECT identifier first,
// followed by the version numbers.  What follows after that, however, is
// determined by the major version.
const OBJFILE_MAJOR_VERSION uint16 = 1

// OBJFILE_MINOR_VERSION gives the minor version of the object file format.  The
// expected interpretation is that older versions are compatible with newer
// ones, but not vice-versa.
const OBJFILE_MINOR_VERSION uint16 = 0

// KERNEL_VERSION identifies the revision of the kernel.  Since the encoding of
// terms follows the kernel's own data structures, object files are only
// readable by kernels of the same major and minor revision.
const KERNEL_VERSION = "1.3.0"

// LPOBJECT is used as the file identifier for object files.  This just helps
// us identify actual object files from corrupted files.
var LPOBJECT [8]byte = [8]byte{'l', 'p', 'o', 'b', 'j', 'e', 'c', 't'}

// ErrIncompatible is matched (via errors.Is) by every error reporting an object
// file which this kernel cannot decode.  Such files must be recompiled from
// source.
var ErrIncompatible = errors.New("incompatible object file")

// IncompatibleError reports an object file which cannot be decoded by this
// kernel, either because it was produced by a different kernel revision or
// because it is malformed.
type IncompatibleError struct {
	// File being read (if known).
	Filename string
	// Reason for rejecting it.
	Reason string
}

func (e *IncompatibleError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("incompatible object file (%s)", e.Reason)
	}
	//
	return fmt.Sprintf("incompatible object file \"%s\" (%s)", e.Filename, e.Reason)
}

// Is allows IncompatibleError to be matched against ErrIncompatible.
func (e *IncompatibleError) Is(target error) bool {
	return target == ErrIncompatible
}

func incompatible(format string, args ...any) error {
	return &IncompatibleError{"", fmt.Sprintf(format, args...)}
}

// ============================================================================
// Header
// ============================================================================

// MarshalBinary converts the Header into a sequence of bytes.  Observe that we
// don't use GobEncoding here to avoid being tied to that encoding scheme.
func (p *Header) MarshalBinary() ([]byte, error) {
	var buffer bytes.Buffer
	// Write identifier
	buffer.Write(p.Identifier[:])
	// Write version numbers and metadata length
	fields := []any{p.MajorVersion, p.MinorVersion, uint32(len(p.MetaData))}
	//
	for _, field := range fields {
		if err := binary.Write(&buffer, binary.BigEndian, field); err != nil {
			return nil, err
		}
	}
	// Write metadata itself
	buffer.Write(p.MetaData)
	// Done
	return buffer.Bytes(), nil
}

// UnmarshalBinary initialises this Header from a given buffer.  This should
// match exactly the encoding above.  The metadata length is untrusted, so no
// more is allocated than the reader actually holds.
func (p *Header) UnmarshalBinary(reader io.Reader) error {
	var (
		metaLength uint32
		err        error
	)
	// Read identifier
	if _, err := io.ReadFull(reader, p.Identifier[:]); err != nil {
		return incompatible("malformed header")
	} else if p.Identifier != LPOBJECT {
		return incompatible("not an object file")
	}
	// Read version numbers and metadata length
	fields := []any{&p.MajorVersion, &p.MinorVersion, &metaLength}
	//
	for _, field := range fields {
		if err := binary.Read(reader, binary.BigEndian, field); err != nil {
			return incompatible("malformed header")
		}
	}
	// Read metadata itself
	if sized, ok := reader.(interface{ Len() int }); ok && uint64(metaLength) > uint64(sized.Len()) {
		return incompatible("malformed header (metadata length %d)", metaLength)
	} else if p.MetaData, err = io.ReadAll(io.LimitReader(reader, int64(metaLength))); err != nil {
		return incompatible("malformed header")
	} else if uint32(len(p.MetaData)) != metaLength {
		return incompatible("malformed header (metadata length %d)", metaLength)
	}
	// Done
	return nil
}

// IsCompatible determines whether a given object file is compatible with this
// version of the object file format.
func (p *Header) IsCompatible() bool {
	return p.Identifier == LPOBJECT &&
		p.MajorVersion == OBJFILE_MAJOR_VERSION &&
		p.MinorVersion <= OBJFILE_MINOR_VERSION
}

// ============================================================================
// Metadata
// ============================================================================

// IsCompatible determines whether the kernel which produced an object file is
// compatible with this kernel.
func (p *Metadata) IsCompatible() (bool, error) {
	current := semver.MustParse(KERNEL_VERSION)
	//
	version, err := semver.NewVersion(p.Kernel)
	if err != nil {
		return false, err
	}
	//
	constraint, err := semver.NewConstraint(fmt.Sprintf("~%d.%d", current.Major(), current.Minor()))
	if err != nil {
		return false, err
	}
	//
	return constraint.Check(version), nil
}

// ============================================================================
// Encoding / Decoding
// ============================================================================

// Encode a signature into the bytes of an object file.  This first takes an
// unlinked snapshot of the signature, such that only the content of its own
// module is written.  The given signature remains unchanged.
func Encode(sig *signature.Signature, level zstd.EncoderLevel) ([]byte, error) {
	var (
		body     bytes.Buffer
		snapshot = sig.Unlink()
	)
	// Encode signature
	if err := gob.NewEncoder(&body).Encode(snapshot); err != nil {
		return nil, err
	}
	// Compress body
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	//
	compressed := encoder.EncodeAll(body.Bytes(), nil)
	//
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	// Construct metadata
	digest := blake2b.Sum256(compressed)
	metadata := Metadata{KERNEL_VERSION, sig.Path().String(), hex.EncodeToString(digest[:]), level.String()}
	//
	metaBytes, err := json.Marshal(&metadata)
	if err != nil {
		return nil, err
	}
	// Construct header
	header := Header{LPOBJECT, OBJFILE_MAJOR_VERSION, OBJFILE_MINOR_VERSION, metaBytes}
	//
	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	//
	return append(headerBytes, compressed...), nil
}

// DecodeHeader decodes only the header and metadata of an object file,
// checking that they are compatible with this kernel.  The remaining (body)
// bytes are returned.
func DecodeHeader(data []byte) (Header, Metadata, []byte, error) {
	var (
		header   Header
		metadata Metadata
		reader   = bytes.NewReader(data)
	)
	// Read header
	if err := header.UnmarshalBinary(reader); err != nil {
		return header, metadata, nil, err
	} else if !header.IsCompatible() {
		return header, metadata, nil, incompatible("was v%d.%d, but expected v%d.%d", header.MajorVersion,
			header.MinorVersion, OBJFILE_MAJOR_VERSION, OBJFILE_MINOR_VERSION)
	}
	// Read metadata
	if err := json.Unmarshal(header.MetaData, &metadata); err != nil {
		return header, metadata, nil, incompatible("malformed metadata")
	} else if ok, err := metadata.IsCompatible(); err != nil {
		return header, metadata, nil, incompatible("malformed kernel version \"%s\"", metadata.Kernel)
	} else if !ok {
		return header, metadata, nil, incompatible("produced by kernel %s, but this is kernel %s", metadata.Kernel,
			KERNEL_VERSION)
	}
	//
	body := data[len(data)-reader.Len():]
	//
	return header, metadata, body, nil
}

// Decode the bytes of an object file.  This fails with an IncompatibleError
// if the file was produced by an incompatible kernel, or has been corrupted.
// The signature obtained is unlinked, and must be linked before use.
func Decode(data []byte) (*ObjectFile, error) {
	var sig signature.Signature
	//
	header, metadata, body, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	// Check integrity
	digest := blake2b.Sum256(body)
	//
	if hex.EncodeToString(digest[:]) != metadata.Digest {
		return nil, incompatible("digest mismatch")
	}
	// Decompress body
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	//
	defer decoder.Close()
	//
	encoded, err := decoder.DecodeAll(body, nil)
	if err != nil {
		return nil, incompatible("malformed body (%s)", err.Error())
	}
	// Decode signature
	if err := gob.NewDecoder(bytes.NewBuffer(encoded)).Decode(&sig); err != nil {
		return nil, incompatible("malformed signature (%s)", err.Error())
	} else if sig.Path().String() != metadata.Module {
		return nil, incompatible("holds module %s, but metadata says %s", sig.Path().String(), metadata.Module)
	}
	//
	return &ObjectFile{header, metadata, &sig}, nil
}
