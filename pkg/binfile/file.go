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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/go-rewrite/pkg/signature"
	"github.com/consensys/go-rewrite/pkg/util"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
)

// Write the object file for a given signature.  The signature is snapshotted
// and unlinked before being encoded, and remains valid for further use once
// this returns.  The file is first written under a temporary name in the same
// directory and then renamed, such that a failure never leaves a partially
// written object file behind.
func Write(sig *signature.Signature, filename string, level zstd.EncoderLevel) error {
	var stats = util.NewPerfStats()
	//
	data, err := Encode(sig, level)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", sig.Path().String(), err)
	}
	//
	if err := writeAtomically(filename, data); err != nil {
		return err
	}
	//
	stats.Log(fmt.Sprintf("Writing %s (%d bytes)", filename, len(data)))
	//
	return nil
}

func writeAtomically(filename string, data []byte) (err error) {
	dir := filepath.Dir(filename)
	//
	if err = os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	//
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return err
	}
	// Clean up on failure
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	//
	if _, err = tmp.Write(data); err != nil {
		return err
	} else if err = tmp.Sync(); err != nil {
		return err
	} else if err = tmp.Close(); err != nil {
		return err
	} else if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	//
	return os.Rename(tmp.Name(), filename)
}

// ReadFile reads and decodes a given object file.  An IncompatibleError
// naming the file is returned if it cannot be decoded by this kernel.
func ReadFile(filename string) (*ObjectFile, error) {
	var (
		stats         = util.NewPerfStats()
		incompatError *IncompatibleError
	)
	//
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	objfile, err := Decode(data)
	//
	if errors.As(err, &incompatError) {
		incompatError.Filename = filename
		return nil, incompatError
	} else if err != nil {
		return nil, fmt.Errorf("reading \"%s\": %w", filename, err)
	}
	//
	stats.Log(fmt.Sprintf("Reading %s", filename))
	log.Debugf("read module %s from %s (kernel %s)", objfile.Metadata.Module, filename, objfile.Metadata.Kernel)
	//
	return objfile, nil
}

// Read the (unlinked) signature held in a given object file.
func Read(filename string) (*signature.Signature, error) {
	objfile, err := ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return objfile.Signature, nil
}
