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
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/consensys/go-rewrite/pkg/binfile"
	"github.com/consensys/go-rewrite/pkg/signature"
	"github.com/consensys/go-rewrite/pkg/util"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Compiler is responsible for constructing the signature of a module from its
// source.  Parsing, scoping and type checking all live behind this interface.
type Compiler interface {
	// Compile the given module, declaring its symbols and rules in the current
	// signature of the state.  Dependencies are loaded via state.Require.
	Compile(state *State, path util.Path) error
	// ModTime returns the modification time of the given module's source, or
	// false if it has no source.
	ModTime(path util.Path) (time.Time, bool)
}

// ObjectFile returns the name of the object file for a given module.
func (p *State) ObjectFile(path util.Path) string {
	segments := append([]string{p.config.Objects.Directory}, path.Segments()...)
	//
	return filepath.Join(segments...) + p.config.Objects.Extension
}

// Require ensures the given module is loaded into the registry.  If possible,
// this reads its object file and links the signature it contains against the
// registry (after first requiring the modules it depends upon).  Otherwise,
// the module is compiled from source and its object file is (re)written.  The
// current signature is unaffected.  On failure, nothing is inserted into the
// registry.
func (p *State) Require(path util.Path) error {
	if _, ok := p.Lookup(path); ok {
		return nil
	} else if err := p.Begin(path); err != nil {
		return err
	}
	//
	finished := false
	// Ensure the loading stack is unwound on failure.
	defer func() {
		if !finished {
			p.Abort(path)
		}
	}()
	//
	sig, err := p.load(path)
	if err != nil {
		return err
	}
	//
	finished = true
	p.Finish(sig)
	//
	return nil
}

func (p *State) load(path util.Path) (*signature.Signature, error) {
	var filename = p.ObjectFile(path)
	//
	sig, err := p.readObject(path, filename)
	//
	switch {
	case err == nil:
		log.Debugf("loaded module %s from %s", path.String(), filename)
		return sig, nil
	case errors.Is(err, binfile.ErrIncompatible):
		log.Warnf("%s; recompiling %s", err.Error(), path.String())
	case errors.Is(err, errStale):
		log.Infof("object file %s is out of date; recompiling %s", filename, path.String())
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}
	//
	return p.compile(path, filename)
}

var errStale = errors.New("stale object file")

// Read the object file of a given module, then require its dependencies and
// link it.
func (p *State) readObject(path util.Path, filename string) (*signature.Signature, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	} else if p.compiler != nil {
		if modtime, ok := p.compiler.ModTime(path); ok && modtime.After(info.ModTime()) {
			return nil, errStale
		}
	}
	//
	objfile := p.takePreloaded(path)
	//
	if objfile == nil {
		if objfile, err = binfile.ReadFile(filename); err != nil {
			return nil, err
		}
	}
	//
	if !objfile.Signature.Path().Equals(path) {
		return nil, &binfile.IncompatibleError{Filename: filename,
			Reason: fmt.Sprintf("holds module %s", objfile.Signature.Path().String())}
	}
	//
	sig := objfile.Signature
	//
	for _, dep := range sig.Requires() {
		if err := p.Require(dep); err != nil {
			return nil, err
		} else if p.isNewer(dep, info.ModTime()) {
			return nil, errStale
		}
	}
	//
	sig.Link(p)
	//
	return sig, nil
}

// Check whether a (loaded) module was compiled during this session, or has an
// object file more recent than a given time.  Object files linked against an
// older version of it may refer to symbols it no longer declares.
func (p *State) isNewer(path util.Path, modtime time.Time) bool {
	if p.compiled[path.Key()] {
		return true
	}
	//
	info, err := os.Stat(p.ObjectFile(path))
	//
	return err == nil && info.ModTime().After(modtime)
}

// Compile a module from source, whilst preserving the current signature, and
// then write its object file.  On failure, any rules the module contributed to
// symbols of other modules are detached again.
func (p *State) compile(path util.Path, filename string) (_ *signature.Signature, err error) {
	if p.compiler == nil {
		return nil, &CompileError{path, errors.New("no usable object file, and no compiler")}
	}
	//
	var (
		stats    = util.NewPerfStats()
		previous = p.current
		sig      = signature.Create(path)
	)
	//
	p.current = sig
	//
	defer func() {
		p.current = previous
		//
		if err != nil {
			sig.Retract(p)
		}
	}()
	//
	if err := p.compiler.Compile(p, path); err != nil {
		return nil, &CompileError{path, err}
	}
	//
	level, err := p.config.CompressionLevel()
	if err != nil {
		return nil, err
	} else if err := binfile.Write(sig, filename, level); err != nil {
		return nil, err
	}
	//
	p.compiled[path.Key()] = true
	stats.Log(fmt.Sprintf("Compiling %s", path.String()))
	//
	return sig, nil
}

// Preload decodes the object files of the given modules concurrently, such
// that a subsequent Require need not read them again.  Missing or unusable
// object files are skipped here and dealt with by Require.  Preloaded files
// still undergo the usual staleness check before being used.
func (p *State) Preload(ctx context.Context, paths ...util.Path) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	//
	for _, path := range paths {
		if _, ok := p.Lookup(path); ok {
			continue
		}
		//
		path := path
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			//
			objfile, err := binfile.ReadFile(p.ObjectFile(path))
			//
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, binfile.ErrIncompatible) {
				log.Debugf("skipping preload of %s (%s)", path.String(), err.Error())
				return nil
			} else if err != nil {
				return err
			}
			//
			p.mutex.Lock()
			p.preloaded[path.Key()] = objfile
			p.mutex.Unlock()
			//
			return nil
		})
	}
	//
	return group.Wait()
}

// Remove (and return) the preloaded object file of a given module, if any.
func (p *State) takePreloaded(path util.Path) *binfile.ObjectFile {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	//
	objfile := p.preloaded[path.Key()]
	delete(p.preloaded, path.Key())
	//
	return objfile
}
