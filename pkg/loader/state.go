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
	"fmt"
	"strings"
	"sync"

	"github.com/consensys/go-rewrite/pkg/binfile"
	"github.com/consensys/go-rewrite/pkg/config"
	"github.com/consensys/go-rewrite/pkg/rewrite"
	"github.com/consensys/go-rewrite/pkg/signature"
	"github.com/consensys/go-rewrite/pkg/term"
	"github.com/consensys/go-rewrite/pkg/util"
	"github.com/consensys/go-rewrite/pkg/util/collection/stack"
	log "github.com/sirupsen/logrus"
)

// State holds everything needed to load and compile modules: the registry of
// modules loaded so far, the stack of modules currently being loaded (used to
// detect circular dependencies), and the signature currently being built.  A
// state is owned by a single driver, and is not safe for concurrent use (with
// the exception of Preload).
type State struct {
	// Loaded signatures, indexed by path key.  Entries are never removed.
	registry map[string]*signature.Signature
	// Paths of loaded modules in order of loading.
	loaded []util.Path
	// Modules currently being loaded, outermost first.
	loading *stack.Stack[util.Path]
	// Signature currently being built.
	current *signature.Signature
	// Compiler used for modules without (usable) object files.
	compiler Compiler
	// Kernel configuration
	config *config.Config
	// Modules compiled from source during this session, by path key.
	compiled map[string]bool
	// Object files decoded ahead of time.
	preloaded map[string]*binfile.ObjectFile
	// Guards preloaded
	mutex sync.Mutex
}

// NewState constructs an initial state with an empty registry, an empty
// loading stack and a fresh signature for the given module as the current
// signature.  If no configuration is given, the defaults are used.
func NewState(path util.Path, cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	//
	return &State{
		registry:  make(map[string]*signature.Signature),
		loading:   stack.NewStack[util.Path](),
		current:   signature.Create(path),
		config:    cfg,
		compiled:  make(map[string]bool),
		preloaded: make(map[string]*binfile.ObjectFile),
	}
}

// SetCompiler determines the compiler used for modules which have no (usable)
// object file.
func (p *State) SetCompiler(compiler Compiler) {
	p.compiler = compiler
}

// Config returns the kernel configuration of this state.
func (p *State) Config() *config.Config {
	return p.config
}

// Current returns the signature currently being built.
func (p *State) Current() *signature.Signature {
	return p.current
}

// Lookup the signature of a loaded module.
func (p *State) Lookup(path util.Path) (*signature.Signature, bool) {
	sig, ok := p.registry[path.Key()]
	return sig, ok
}

// Loaded returns the paths of all loaded modules, in order of loading.
func (p *State) Loaded() []util.Path {
	return p.loaded
}

// Loading returns the paths of the modules currently being loaded, outermost
// first.
func (p *State) Loading() []util.Path {
	return p.loading.From(0)
}

// Begin loading a given module.  If the module is already being loaded, then
// there is a circular dependency and an error is returned.  Otherwise, the
// module is pushed onto the loading stack.
func (p *State) Begin(path util.Path) error {
	if depth, ok := p.loading.Find(path.Equals); ok {
		cycle := append(p.loading.From(depth), path)
		return &CycleError{cycle}
	}
	//
	p.loading.Push(path)
	//
	return nil
}

// Finish loading the module on top of the loading stack, whose signature is
// then inserted into the registry.
func (p *State) Finish(sig *signature.Signature) {
	if p.loading.IsEmpty() {
		panic(fmt.Sprintf("finishing module %s which is not being loaded", sig.Path().String()))
	} else if top := p.loading.Peek(0); !top.Equals(sig.Path()) {
		panic(fmt.Sprintf("finishing module %s whilst loading %s", sig.Path().String(), top.String()))
	}
	//
	p.loading.Pop()
	p.registry[sig.Path().Key()] = sig
	p.loaded = append(p.loaded, sig.Path())
}

// Abort loading the module on top of the loading stack.  Nothing is inserted
// into the registry.
func (p *State) Abort(path util.Path) {
	if p.loading.IsEmpty() || !p.loading.Peek(0).Equals(path) {
		panic(fmt.Sprintf("aborting module %s which is not being loaded", path.String()))
	}
	//
	p.loading.Pop()
}

// Normalize a term using the configured reduction strategy.
func (p *State) Normalize(t term.Term) term.Term {
	strategy, err := p.config.Strategy()
	//
	if err != nil {
		log.Warnf("%s; using %s reduction", err.Error(), strategy.String())
	}
	//
	return rewrite.Normalize(t, strategy)
}

// ============================================================================
// Errors
// ============================================================================

// CycleError reports a circular dependency between modules.
type CycleError struct {
	// Modules making up the cycle, where the first and last are the same.
	Cycle []util.Path
}

func (e *CycleError) Error() string {
	names := util.Map(e.Cycle, util.Path.String)
	return fmt.Sprintf("circular dependency %s", strings.Join(names, " -> "))
}

// CompileError reports a failure to compile a module from source.
type CompileError struct {
	Module util.Path
	Cause  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s: %s", e.Module.String(), e.Cause.Error())
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}
