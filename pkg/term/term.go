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
	"encoding/gob"
	"fmt"
)

// Term represents an expression of the logical framework.  Terms are immutable
// once constructed, with the exception of metavariables which can be resolved
// by the elaborator.  Bound variables are represented using de Bruijn indices,
// such that the body of a binder refers to its bound variable as index 0.
type Term interface {
	fmt.Stringer
	// Marker method to prevent arbitrary stringers being used as terms.
	term()
}

// ============================================================================
// Variable
// ============================================================================

// Var represents an occurrence of a bound variable, identified by the number of
// binders between the occurrence and the binder which introduces it.
type Var struct {
	Index uint
}

// NewVar constructs a variable with the given de Bruijn index.
func NewVar(index uint) *Var {
	return &Var{index}
}

func (p *Var) term() {}

// ============================================================================
// Sorts
// ============================================================================

const (
	// TYPE is the sort of types.
	TYPE uint8 = 0
	// KIND is the sort of TYPE itself.
	KIND uint8 = 1
)

// Sort represents one of the two universe constants TYPE or KIND.
type Sort struct {
	Level uint8
}

// NewType constructs the TYPE universe.
func NewType() *Sort {
	return &Sort{TYPE}
}

// NewKind constructs the KIND universe.
func NewKind() *Sort {
	return &Sort{KIND}
}

func (p *Sort) term() {}

// ============================================================================
// Symbol reference
// ============================================================================

// Symb represents a reference to a symbol.  Two references are equal only when
// they refer to the same Symbol object.
type Symb struct {
	Symbol *Symbol
}

// NewSymb constructs a reference to a given symbol.
func NewSymb(symbol *Symbol) *Symb {
	if symbol == nil {
		panic("symbol reference to nil")
	}
	//
	return &Symb{symbol}
}

func (p *Symb) term() {}

// ============================================================================
// Product
// ============================================================================

// Prod represents a dependent product "Πx:A.B" where the body B may refer to
// the bound variable x as index 0.
type Prod struct {
	// Name of the bound variable (only used for printing).
	Name string
	// Domain of the product.
	Domain Term
	// Body of the product.
	Body Term
}

// NewProd constructs a new product.
func NewProd(name string, domain Term, body Term) *Prod {
	return &Prod{name, domain, body}
}

// NewArrow constructs a non-dependent product "A → B".  Since the body cannot
// refer to the bound variable, it is lifted over the new binder.
func NewArrow(domain Term, codomain Term) *Prod {
	return &Prod{"_", domain, Shift(codomain, 1)}
}

func (p *Prod) term() {}

// ============================================================================
// Abstraction
// ============================================================================

// Abst represents an abstraction "λx:A.t" where the body t may refer to the
// bound variable x as index 0.
type Abst struct {
	// Name of the bound variable (only used for printing).
	Name string
	// Domain of the abstraction.
	Domain Term
	// Body of the abstraction.
	Body Term
}

// NewAbst constructs a new abstraction.
func NewAbst(name string, domain Term, body Term) *Abst {
	return &Abst{name, domain, body}
}

func (p *Abst) term() {}

// ============================================================================
// Application
// ============================================================================

// Appl represents the application of one term to another.
type Appl struct {
	Fun Term
	Arg Term
}

// NewAppl constructs a new application.
func NewAppl(fun Term, arg Term) *Appl {
	return &Appl{fun, arg}
}

func (p *Appl) term() {}

// AddArgs applies a given head to zero or more arguments, from left to right.
func AddArgs(head Term, args ...Term) Term {
	for _, arg := range args {
		head = &Appl{head, arg}
	}
	//
	return head
}

// GetArgs decomposes a term into its head and the arguments it is applied to,
// in left-to-right order.  Resolved metavariables are unfolded along the way.
func GetArgs(t Term) (Term, []Term) {
	var args []Term
	//
	t = Unfold(t)
	//
	for {
		appl, ok := t.(*Appl)
		if !ok {
			break
		}
		//
		args = append(args, appl.Arg)
		t = Unfold(appl.Fun)
	}
	// Reverse arguments
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	//
	return t, args
}

// ============================================================================
// Metavariable
// ============================================================================

// Meta represents a hole left by the elaborator.  Once resolved, a metavariable
// is simply an indirection to its value.  Unresolved metavariables must never
// reach the kernel.
type Meta struct {
	Id    uint
	Name  string
	Value Term
}

// NewMeta constructs a fresh unresolved metavariable.
func NewMeta(id uint, name string) *Meta {
	return &Meta{id, name, nil}
}

// Resolve instantiates this metavariable with a given value.
func (p *Meta) Resolve(value Term) {
	if p.IsResolved() {
		panic(fmt.Sprintf("metavariable ?%s already resolved", p.Name))
	}
	//
	p.Value = value
}

// IsResolved checks whether this metavariable has been resolved.
func (p *Meta) IsResolved() bool {
	return p.Value != nil
}

func (p *Meta) term() {}

// Unfold collapses any resolved metavariable indirections, returning the
// underlying term.  For kernel-internal terms this is the identity.
func Unfold(t Term) Term {
	for {
		meta, ok := t.(*Meta)
		if !ok || !meta.IsResolved() {
			return t
		}
		//
		t = meta.Value
	}
}

// ============================================================================
// Pattern placeholder
// ============================================================================

// WILDCARD is the slot of a pattern placeholder which matches anything without
// binding it.
const WILDCARD int = -1

// Patt represents a placeholder within the left-hand side of a rewrite rule.
// The placeholder binds whatever it matches into the given slot of the rule's
// environment.  The arguments are the locally bound variables which the
// matched term is allowed to depend on (i.e. when the placeholder occurs under
// a binder).
type Patt struct {
	// Slot index (or WILDCARD)
	Slot int
	// Name of the pattern variable (only used for printing).
	Name string
	// Locally bound variables.
	Args []Term
}

// NewPatt constructs a pattern placeholder binding into a given slot.
func NewPatt(slot uint, name string, args ...Term) *Patt {
	return &Patt{int(slot), name, args}
}

// NewWildcard constructs a pattern placeholder which binds nothing.
func NewWildcard(args ...Term) *Patt {
	return &Patt{WILDCARD, "_", args}
}

// IsWildcard determines whether this placeholder binds nothing.
func (p *Patt) IsWildcard() bool {
	return p.Slot == WILDCARD
}

func (p *Patt) term() {}

// ============================================================================
// Environment placeholder
// ============================================================================

// TEnv represents a placeholder within the right-hand side of a rewrite rule,
// which is replaced by whatever was captured in the given slot applied to the
// given arguments.
type TEnv struct {
	Slot uint
	Args []Term
}

// NewTEnv constructs a new environment placeholder.
func NewTEnv(slot uint, args ...Term) *TEnv {
	return &TEnv{slot, args}
}

func (p *TEnv) term() {}

// ============================================================================
// Encoding / Decoding
// ============================================================================

func init() {
	gob.Register(Term(&Var{}))
	gob.Register(Term(&Sort{}))
	gob.Register(Term(&Symb{}))
	gob.Register(Term(&Prod{}))
	gob.Register(Term(&Abst{}))
	gob.Register(Term(&Appl{}))
	gob.Register(Term(&Patt{}))
	gob.Register(Term(&TEnv{}))
}
