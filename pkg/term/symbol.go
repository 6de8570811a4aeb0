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
package term

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/consensys/go-rewrite/pkg/util"
)

// Symbol represents a declared constant or a definable function.  A symbol is
// owned by the signature of its home module, and every term referring to it
// (in any module) must hold a pointer to that same object.
type Symbol struct {
	// Name of this symbol, unique within its home module.
	Name string
	// Declared type of this symbol, or nil for a stub.
	Type Term
	// Path of the module which declares this symbol.
	Module util.Path
	// Indicates whether rewrite rules can be attached to this symbol.
	Definable bool
	// Rewrite rules in order of declaration.  Rules are only ever appended.
	Rules []*Rule
}

// NewSymbol constructs a new symbol without any rules.
func NewSymbol(module util.Path, name string, definable bool, datatype Term) *Symbol {
	return &Symbol{name, datatype, module, definable, nil}
}

// NewStub constructs an opaque placeholder for a symbol declared in some
// other module.  A stub carries neither a type nor any rules, and is replaced
// by the canonical symbol when the enclosing signature is linked.
func NewStub(module util.Path, name string) *Symbol {
	return &Symbol{name, nil, module, false, nil}
}

// IsStub determines whether this symbol is a placeholder.
func (p *Symbol) IsStub() bool {
	return p.Type == nil
}

// QualifiedName returns the name of this symbol qualified by its home module.
func (p *Symbol) QualifiedName() string {
	if p.Module.Depth() == 0 {
		return p.Name
	}
	//
	return fmt.Sprintf("%s.%s", p.Module.String(), p.Name)
}

func (p *Symbol) String() string {
	return p.QualifiedName()
}

// ============================================================================
// Rewrite Rules
// ============================================================================

// Rule represents a rewrite rule attached to some (implicit) head symbol.  The
// left-hand side is a sequence of argument patterns containing Patt
// placeholders, whilst the right-hand side refers to what those placeholders
// captured via TEnv placeholders.  Placeholders are addressed by slot, where
// each slot corresponds to one pattern variable of the rule.
type Rule struct {
	// Argument patterns.
	Lhs []Term
	// Right-hand side template.
	Rhs Term
	// Names of the pattern variables, indexed by slot.
	Vars []string
}

// NewRule constructs a new rewrite rule.
func NewRule(vars []string, rhs Term, lhs ...Term) *Rule {
	return &Rule{lhs, rhs, vars}
}

// Arity returns the number of arguments consumed by this rule.
func (p *Rule) Arity() uint {
	return uint(len(p.Lhs))
}

// Slots returns the number of pattern variables bound by this rule.
func (p *Rule) Slots() uint {
	return uint(len(p.Vars))
}

// Check that this rule is well-formed.  Specifically, that every slot used in
// the right-hand side is bound in the left-hand side, that slots are used
// consistently with the same number of arguments, that the arguments of
// pattern placeholders are distinct bound variables, and that neither side
// contains placeholders of the wrong kind or unresolved metavariables.
func (p *Rule) Check() error {
	var (
		arities = make([]int, len(p.Vars))
		err     error
	)
	//
	for i := range arities {
		arities[i] = -1
	}
	// Check left-hand side
	for _, arg := range p.Lhs {
		Walk(arg, func(t Term, depth uint) bool {
			if err == nil {
				err = p.checkLhs(t, depth, arities)
			}
			//
			return err == nil
		})
	}
	// Check right-hand side
	Walk(p.Rhs, func(t Term, depth uint) bool {
		if err == nil {
			err = p.checkRhs(t, arities)
		}
		//
		return err == nil
	})
	//
	return err
}

func (p *Rule) checkLhs(t Term, depth uint, arities []int) error {
	switch t := t.(type) {
	case *TEnv:
		return fmt.Errorf("environment placeholder $%d in left-hand side", t.Slot)
	case *Meta:
		return fmt.Errorf("unresolved metavariable ?%s in left-hand side", t.Name)
	case *Patt:
		if !t.IsWildcard() && t.Slot >= len(p.Vars) {
			return fmt.Errorf("pattern variable $%s has invalid slot %d", t.Name, t.Slot)
		}
		// Check arguments are distinct locally bound variables
		for i, arg := range t.Args {
			v, ok := Unfold(arg).(*Var)
			//
			if !ok || v.Index >= depth {
				return fmt.Errorf("pattern variable $%s applied to %s (expected bound variable)", t.Name, arg)
			}
			//
			for _, other := range t.Args[:i] {
				if Equal(v, other) {
					return fmt.Errorf("pattern variable $%s applied to %s twice", t.Name, arg)
				}
			}
		}
		//
		if !t.IsWildcard() {
			if arities[t.Slot] < 0 {
				arities[t.Slot] = len(t.Args)
			} else if arities[t.Slot] != len(t.Args) {
				return fmt.Errorf("pattern variable $%s used with different arities", t.Name)
			}
		}
	}
	//
	return nil
}

func (p *Rule) checkRhs(t Term, arities []int) error {
	switch t := t.(type) {
	case *Patt:
		return fmt.Errorf("pattern placeholder $%s in right-hand side", t.Name)
	case *Meta:
		return fmt.Errorf("unresolved metavariable ?%s in right-hand side", t.Name)
	case *TEnv:
		if t.Slot >= uint(len(p.Vars)) {
			return fmt.Errorf("environment placeholder has invalid slot %d", t.Slot)
		} else if arities[t.Slot] < 0 {
			return fmt.Errorf("pattern variable $%s not bound in left-hand side", p.Vars[t.Slot])
		} else if arities[t.Slot] != len(t.Args) {
			return fmt.Errorf("pattern variable $%s expects %d argument(s), given %d", p.Vars[t.Slot],
				arities[t.Slot], len(t.Args))
		}
	}
	//
	return nil
}

// ============================================================================
// Encoding / Decoding
// ============================================================================

// Only the identity of a referenced symbol is written out (i.e. its home module
// and its name).  Thus, decoding a symbol reference always produces a stub,
// which must subsequently be resolved by linking.
type symbolRef struct {
	Module util.Path
	Name   string
}

// GobEncode a symbol reference.  This allows it to be marshalled into a binary
// form.
func (p *Symb) GobEncode() ([]byte, error) {
	var buffer bytes.Buffer
	//
	ref := symbolRef{p.Symbol.Module, p.Symbol.Name}
	//
	if err := gob.NewEncoder(&buffer).Encode(&ref); err != nil {
		return nil, err
	}
	//
	return buffer.Bytes(), nil
}

// GobDecode a previously encoded symbol reference.
func (p *Symb) GobDecode(data []byte) error {
	var ref symbolRef
	//
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&ref); err != nil {
		return err
	}
	//
	p.Symbol = NewStub(ref.Module, ref.Name)
	//
	return nil
}
