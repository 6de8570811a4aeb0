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

import "fmt"

// Transformer is applied to every subterm visited by Transform, along with the
// number of binders crossed to reach it.  When it returns true, the returned
// term replaces the visited term and its children are not visited.
type Transformer func(t Term, depth uint) (Term, bool)

// Transform rebuilds a term bottom-up, applying a given transformer in
// pre-order to every subterm.  Resolved metavariables are unfolded as they are
// encountered.  Nodes whose children are unchanged are returned as is, thus
// preserving sharing within the term graph.
func Transform(t Term, fn Transformer) Term {
	return transform(t, 0, fn)
}

func transform(t Term, depth uint, fn Transformer) Term {
	t = Unfold(t)
	//
	if nt, ok := fn(t, depth); ok {
		return nt
	}
	//
	switch t := t.(type) {
	case *Var, *Sort, *Symb, *Meta:
		return t
	case *Prod:
		domain := transform(t.Domain, depth, fn)
		body := transform(t.Body, depth+1, fn)
		//
		if domain == t.Domain && body == t.Body {
			return t
		}
		//
		return &Prod{t.Name, domain, body}
	case *Abst:
		domain := transform(t.Domain, depth, fn)
		body := transform(t.Body, depth+1, fn)
		//
		if domain == t.Domain && body == t.Body {
			return t
		}
		//
		return &Abst{t.Name, domain, body}
	case *Appl:
		fun := transform(t.Fun, depth, fn)
		arg := transform(t.Arg, depth, fn)
		//
		if fun == t.Fun && arg == t.Arg {
			return t
		}
		//
		return &Appl{fun, arg}
	case *Patt:
		if args, changed := transformAll(t.Args, depth, fn); changed {
			return &Patt{t.Slot, t.Name, args}
		}
		//
		return t
	case *TEnv:
		if args, changed := transformAll(t.Args, depth, fn); changed {
			return &TEnv{t.Slot, args}
		}
		//
		return t
	default:
		panic(fmt.Sprintf("unknown term encountered (%T)", t))
	}
}

func transformAll(terms []Term, depth uint, fn Transformer) ([]Term, bool) {
	var (
		nterms  = make([]Term, len(terms))
		changed = false
	)
	//
	for i, t := range terms {
		nterms[i] = transform(t, depth, fn)
		changed = changed || nterms[i] != t
	}
	//
	return nterms, changed
}

// Walk visits every subterm of a given term in pre-order, along with the number
// of binders crossed to reach it.  Visiting stops descending into a subterm when
// the visitor returns false.
func Walk(t Term, visitor func(Term, uint) bool) {
	Transform(t, func(t Term, depth uint) (Term, bool) {
		return t, !visitor(t, depth)
	})
}

// Shift lifts every free variable in a given term by a given amount.  A
// negative amount lowers free variables, and it is a defect to lower a variable
// below zero.
func Shift(t Term, amount int) Term {
	return ShiftFrom(t, amount, 0)
}

// ShiftFrom lifts every variable whose index is at least a given cutoff (at the
// outermost level) by a given amount.
func ShiftFrom(t Term, amount int, cutoff uint) Term {
	if amount == 0 {
		return t
	}
	//
	return Transform(t, func(t Term, depth uint) (Term, bool) {
		if v, ok := t.(*Var); ok {
			if v.Index < depth+cutoff {
				return v, true
			} else if int(v.Index)+amount < 0 {
				panic(fmt.Sprintf("variable #%d lowered out of scope", v.Index))
			}
			//
			return &Var{uint(int(v.Index) + amount)}, true
		}
		//
		return t, false
	})
}

// Subst instantiates the bound variable of a binder body with a given term.
// That is, index 0 in the body is replaced by the given value, and all other
// free variables in the body are lowered by one.
func Subst(body Term, value Term) Term {
	return SubstAll(body, value)
}

// SubstAll simultaneously instantiates the n outermost bound variables of a
// body nested under n binders.  The last value replaces index 0, the one before
// it index 1, and so on.  Remaining free variables are lowered by n.
func SubstAll(body Term, values ...Term) Term {
	var n = uint(len(values))
	//
	if n == 0 {
		return body
	}
	//
	return Transform(body, func(t Term, depth uint) (Term, bool) {
		if v, ok := t.(*Var); ok {
			if v.Index < depth {
				return v, true
			} else if v.Index-depth < n {
				// Variable being instantiated
				return Shift(values[n-1-(v.Index-depth)], int(depth)), true
			}
			//
			return &Var{v.Index - n}, true
		}
		//
		return t, false
	})
}

// IsClosed determines whether a given term has no free variables.
func IsClosed(t Term) bool {
	var closed = true
	//
	Walk(t, func(t Term, depth uint) bool {
		if v, ok := t.(*Var); ok && v.Index >= depth {
			closed = false
		}
		//
		return closed
	})
	//
	return closed
}
