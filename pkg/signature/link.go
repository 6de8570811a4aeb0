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
package signature

import (
	"fmt"
	"slices"

	"github.com/consensys/go-rewrite/pkg/term"
	"github.com/consensys/go-rewrite/pkg/util"
)

// Registry provides access to the signatures of modules which have already
// been loaded.
type Registry interface {
	// Lookup the signature of a loaded module.
	Lookup(util.Path) (*Signature, bool)
}

// ============================================================================
// Linking
// ============================================================================

// Link resolves every reference to a symbol of another module (within the
// types and rules of this signature) to the canonical symbol held by the
// signature of that module in the given registry.  References to stubs of this
// module are resolved to the symbols of this signature, whilst references to
// actual symbols of this module are left untouched.  Furthermore, every rule
// this signature contributes to symbols of other modules is attached to those
// symbols (unless already attached).
//
// All modules referenced must already be in the registry.  Since modules are
// always linked in dependency order, it is a defect if one is missing.
func (p *Signature) Link(registry Registry) {
	var linker = linker{p, registry, make(map[string]*term.Symbol)}
	// Link own symbols
	for _, name := range p.names {
		symbol := p.symbols[name]
		symbol.Type = linker.link(symbol.Type)
		//
		for _, rule := range symbol.Rules {
			linker.linkRule(rule)
		}
	}
	// Reattach contributed rules
	for _, dep := range p.deps {
		for _, contrib := range dep.Rules {
			linker.linkRule(contrib.Rule)
			//
			target := linker.resolve(term.NewStub(dep.Module, contrib.Symbol))
			//
			if !slices.Contains(target.Rules, contrib.Rule) {
				target.Rules = append(target.Rules, contrib.Rule)
			}
		}
	}
}

type linker struct {
	signature *Signature
	registry  Registry
	// Cache of resolved symbols
	cache map[string]*term.Symbol
}

func (p *linker) linkRule(rule *term.Rule) {
	for i, arg := range rule.Lhs {
		rule.Lhs[i] = p.link(arg)
	}
	//
	rule.Rhs = p.link(rule.Rhs)
}

func (p *linker) link(t term.Term) term.Term {
	return term.Transform(t, func(t term.Term, _ uint) (term.Term, bool) {
		switch t := t.(type) {
		case *term.Meta:
			panic(fmt.Sprintf("unresolved metavariable ?%s encountered during linking", t.Name))
		case *term.Symb:
			if canonical := p.resolve(t.Symbol); canonical != t.Symbol {
				return term.NewSymb(canonical), true
			}
			//
			return t, true
		}
		//
		return t, false
	})
}

// Resolve a symbol to its canonical object.
func (p *linker) resolve(symbol *term.Symbol) *term.Symbol {
	var own = symbol.Module.Equals(p.signature.path)
	//
	if own && !symbol.IsStub() {
		return symbol
	}
	//
	key := symbolKey(symbol)
	//
	if canonical, ok := p.cache[key]; ok {
		return canonical
	}
	//
	var signature = p.signature
	//
	if !own {
		var ok bool
		//
		if signature, ok = p.registry.Lookup(symbol.Module); !ok {
			panic(fmt.Sprintf("module %s required by %s is not loaded", symbol.Module.String(),
				p.signature.path.String()))
		}
	}
	//
	canonical, err := signature.Find(symbol.Name)
	//
	if err != nil {
		panic(fmt.Sprintf("linking %s: %s", p.signature.path.String(), err.Error()))
	}
	//
	p.cache[key] = canonical
	//
	return canonical
}

// Retract detaches every rule this signature contributed to symbols of other
// modules in the given registry, thus undoing its AddRule (or Link) calls on
// them.  This is used when a module is abandoned part way through loading.
func (p *Signature) Retract(registry Registry) {
	for _, dep := range p.deps {
		sig, ok := registry.Lookup(dep.Module)
		if !ok {
			continue
		}
		//
		for _, contrib := range dep.Rules {
			if target, err := sig.Find(contrib.Symbol); err == nil {
				target.Rules = slices.DeleteFunc(target.Rules, func(rule *term.Rule) bool {
					return rule == contrib.Rule
				})
			}
		}
	}
}

// ============================================================================
// Unlinking
// ============================================================================

// Unlink produces a snapshot of this signature suitable for serialisation.
// The snapshot is a deep copy in which every reference to a symbol of another
// module is replaced by a stub carrying neither a type nor any rules.  Thus,
// the snapshot holds only the content of this module.  References to symbols
// of this module are shared with the copies in the snapshot.  This signature
// itself is left untouched, and remains valid.
func (p *Signature) Unlink() *Signature {
	var (
		snapshot = Create(p.path)
		unlinker = unlinker{snapshot, make(map[*term.Symbol]*term.Symbol), make(map[string]*term.Symbol)}
	)
	// Allocate copies first, so references between them can be shared.
	for _, name := range p.names {
		symbol := p.symbols[name]
		dup := &term.Symbol{Name: name, Module: p.path, Definable: symbol.Definable}
		unlinker.copies[symbol] = dup
		snapshot.symbols[name] = dup
		snapshot.names = append(snapshot.names, name)
	}
	// Copy types and rules
	for _, name := range p.names {
		symbol := p.symbols[name]
		dup := snapshot.symbols[name]
		dup.Type = unlinker.unlink(symbol.Type)
		dup.Rules = util.Map(symbol.Rules, unlinker.unlinkRule)
	}
	// Copy dependency table
	for _, dep := range p.deps {
		ndep := snapshot.dependency(dep.Module)
		unlinker.require(dep.Module)
		//
		for _, contrib := range dep.Rules {
			ndep.Rules = append(ndep.Rules, Contribution{contrib.Symbol, unlinker.unlinkRule(contrib.Rule)})
		}
	}
	//
	return snapshot
}

type unlinker struct {
	snapshot *Signature
	// Maps symbols of this module to their copies
	copies map[*term.Symbol]*term.Symbol
	// Stubs allocated for symbols of other modules
	stubs map[string]*term.Symbol
}

func (p *unlinker) unlinkRule(rule *term.Rule) *term.Rule {
	return &term.Rule{
		Lhs:  util.Map(rule.Lhs, p.unlink),
		Rhs:  p.unlink(rule.Rhs),
		Vars: slices.Clone(rule.Vars),
	}
}

func (p *unlinker) unlink(t term.Term) term.Term {
	if t == nil {
		panic("unlinking symbol without type")
	}
	//
	return term.Transform(t, func(t term.Term, _ uint) (term.Term, bool) {
		switch t := t.(type) {
		case *term.Meta:
			panic(fmt.Sprintf("unresolved metavariable ?%s encountered during unlinking", t.Name))
		case *term.Symb:
			return term.NewSymb(p.strip(t.Symbol)), true
		}
		//
		return t, false
	})
}

// Strip a symbol down to its representative within the snapshot.
func (p *unlinker) strip(symbol *term.Symbol) *term.Symbol {
	if dup, ok := p.copies[symbol]; ok {
		return dup
	} else if symbol.Module.Equals(p.snapshot.path) {
		// A stub or a symbol since redefined, both of which refer to the
		// symbol currently declared under that name.
		if dup, ok := p.snapshot.symbols[symbol.Name]; ok {
			return dup
		}
		//
		panic(fmt.Sprintf("unlinking %s: reference to undeclared symbol \"%s\"", p.snapshot.path.String(),
			symbol.Name))
	}
	//
	key := symbolKey(symbol)
	//
	if stub, ok := p.stubs[key]; ok {
		return stub
	}
	//
	stub := term.NewStub(symbol.Module, symbol.Name)
	p.stubs[key] = stub
	p.require(symbol.Module)
	//
	return stub
}

func (p *unlinker) require(module util.Path) {
	if !util.ContainsMatching(p.snapshot.requires, module.Equals) {
		p.snapshot.requires = append(p.snapshot.requires, module)
	}
}

// Key uniquely identifying a symbol by home module and name.
func symbolKey(symbol *term.Symbol) string {
	return symbol.Module.Key() + "\x00" + symbol.Name
}
