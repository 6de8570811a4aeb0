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

// Equal determines whether two terms are syntactically equal (which, using de
// Bruijn indices, coincides with alpha-equivalence).  Symbol references are
// equal only when they refer to the same Symbol object, and metavariables only
// when they are the same metavariable.  Binder names are ignored.
func Equal(lhs Term, rhs Term) bool {
	lhs, rhs = Unfold(lhs), Unfold(rhs)
	//
	if lhs == rhs {
		return true
	}
	//
	switch l := lhs.(type) {
	case *Var:
		r, ok := rhs.(*Var)
		return ok && l.Index == r.Index
	case *Sort:
		r, ok := rhs.(*Sort)
		return ok && l.Level == r.Level
	case *Symb:
		r, ok := rhs.(*Symb)
		return ok && l.Symbol == r.Symbol
	case *Prod:
		r, ok := rhs.(*Prod)
		return ok && Equal(l.Domain, r.Domain) && Equal(l.Body, r.Body)
	case *Abst:
		r, ok := rhs.(*Abst)
		return ok && Equal(l.Domain, r.Domain) && Equal(l.Body, r.Body)
	case *Appl:
		r, ok := rhs.(*Appl)
		return ok && Equal(l.Fun, r.Fun) && Equal(l.Arg, r.Arg)
	case *Meta:
		// Distinct unresolved metavariables
		return false
	case *Patt:
		r, ok := rhs.(*Patt)
		return ok && l.Slot == r.Slot && EqualAll(l.Args, r.Args)
	case *TEnv:
		r, ok := rhs.(*TEnv)
		return ok && l.Slot == r.Slot && EqualAll(l.Args, r.Args)
	default:
		panic(fmt.Sprintf("unknown term encountered (%T)", lhs))
	}
}

// EqualAll determines whether two sequences of terms are pairwise
// syntactically equal.
func EqualAll(lhs []Term, rhs []Term) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !Equal(lhs[i], rhs[i]) {
			return false
		}
	}
	//
	return true
}
