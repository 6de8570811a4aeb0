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

	"github.com/consensys/go-rewrite/pkg/term"
	"github.com/consensys/go-rewrite/pkg/util"
	log "github.com/sirupsen/logrus"
)

// Signature represents the symbols declared by a single module, along with the
// rules which that module contributes to symbols declared in other modules.
// Signatures are not safe for concurrent use.
type Signature struct {
	// Path of the module this signature belongs to.
	path util.Path
	// Symbols declared in this module, indexed by name.
	symbols map[string]*term.Symbol
	// Names of the declared symbols in order of (first) declaration.
	names []string
	// Rules contributed to symbols of other modules, by module.
	deps []*Dependency
	// Modules which this signature mentions (only known for signatures
	// obtained by unlinking or decoding).
	requires []util.Path
}

// Dependency records the rules which a signature contributes to symbols
// declared in some other module.
type Dependency struct {
	// Path of the module declaring the symbols.
	Module util.Path
	// Rules contributed in order of addition.
	Rules []Contribution
}

// Contribution identifies a single rule contributed to a symbol declared in
// another module.
type Contribution struct {
	// Name of the (external) symbol receiving the rule.
	Symbol string
	// The rule itself.
	Rule *term.Rule
}

// Create constructs an empty signature for a given module.
func Create(path util.Path) *Signature {
	return &Signature{path, make(map[string]*term.Symbol), nil, nil, nil}
}

// Path returns the path of the module this signature belongs to.
func (p *Signature) Path() util.Path {
	return p.path
}

// Symbols returns the symbols declared in this signature, in order of
// declaration.
func (p *Signature) Symbols() []*term.Symbol {
	var symbols = make([]*term.Symbol, len(p.names))
	//
	for i, name := range p.names {
		symbols[i] = p.symbols[name]
	}
	//
	return symbols
}

// Dependencies returns the rules contributed by this signature to symbols of
// other modules, grouped by module.
func (p *Signature) Dependencies() []*Dependency {
	return p.deps
}

// Requires returns the modules which must be loaded before this signature can
// be linked.  This is only known for signatures obtained by unlinking (or by
// decoding an object file).
func (p *Signature) Requires() []util.Path {
	return p.requires
}

// NewSymbol declares a new symbol in this signature.  If a symbol of the same
// name already exists, it is replaced (for all subsequent lookups) and a
// warning is reported.
func (p *Signature) NewSymbol(definable bool, name string, datatype term.Term) *term.Symbol {
	symbol := term.NewSymbol(p.path, name, definable, datatype)
	//
	if _, ok := p.symbols[name]; ok {
		log.Warnf("redefinition of symbol \"%s\" in module %s", name, p.path.String())
	} else {
		p.names = append(p.names, name)
	}
	//
	p.symbols[name] = symbol
	//
	return symbol
}

// Find looks up a symbol declared in this signature by name.  Symbols declared
// in other modules are never found here.
func (p *Signature) Find(name string) (*term.Symbol, error) {
	if symbol, ok := p.symbols[name]; ok {
		return symbol, nil
	}
	//
	return nil, &NotFoundError{p.path, name}
}

// AddRule attaches a rule to a given symbol, after all rules previously added
// to it.  The symbol must be definable, and the rule well-formed.  If the
// symbol is declared in some other module, the rule is also recorded in the
// dependency table of this signature.
func (p *Signature) AddRule(symbol *term.Symbol, rule *term.Rule) error {
	if !symbol.Definable {
		return &NotDefinableError{symbol}
	} else if err := rule.Check(); err != nil {
		return &RuleError{symbol, err}
	}
	//
	symbol.Rules = append(symbol.Rules, rule)
	//
	if !symbol.Module.Equals(p.path) {
		dep := p.dependency(symbol.Module)
		dep.Rules = append(dep.Rules, Contribution{symbol.Name, rule})
	}
	//
	return nil
}

// Dependency returns the dependency table entry for a given module, creating
// an empty one if none exists.
func (p *Signature) dependency(module util.Path) *Dependency {
	for _, dep := range p.deps {
		if dep.Module.Equals(module) {
			return dep
		}
	}
	//
	dep := &Dependency{module, nil}
	p.deps = append(p.deps, dep)
	//
	return dep
}

func (p *Signature) String() string {
	return fmt.Sprintf("signature %s (%d symbols, %d dependencies)", p.path.String(), len(p.names), len(p.deps))
}
