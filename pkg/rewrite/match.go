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
package rewrite

import (
	"fmt"
	"slices"

	"github.com/consensys/go-rewrite/pkg/term"
)

// Env records what the pattern variables of a rule captured during a
// successful match, indexed by slot.  A captured value for a slot whose
// placeholder has k arguments is a term under k (anonymous) binders, where
// index 0 refers to the last argument.  Free variables beyond those k refer to
// the context in which the matched term lives.
type Env struct {
	// Captured values (nil when not yet bound).
	values []term.Term
	// Number of arguments each captured value is abstracted over.
	arities []uint
}

func newEnv(slots uint) Env {
	return Env{make([]term.Term, slots), make([]uint, slots)}
}

func (p Env) clone() Env {
	return Env{slices.Clone(p.values), slices.Clone(p.arities)}
}

func (p *Env) restore(saved Env) {
	copy(p.values, saved.values)
	copy(p.arities, saved.arities)
}

// Get returns the value captured for a given slot, and the number of arguments
// it is abstracted over.  The value is nil when the slot was never bound.
func (p Env) Get(slot uint) (term.Term, uint) {
	return p.values[slot], p.arities[slot]
}

// Matcher matches the argument patterns of rules against actual arguments.  A
// purely structural matcher never reduces the terms being matched.  Otherwise,
// whenever a non-placeholder pattern fails to match a term structurally, the
// term is first put into weak-head normal form and matched again.
type Matcher struct {
	whnf func(term.Term) term.Term
}

// Structural is the matcher which never reduces the terms being matched.
var Structural = Matcher{nil}

// Match attempts to match the left-hand side of a given rule against a given
// sequence of arguments (which must have exactly the arity of the rule).
func (m Matcher) Match(rule *term.Rule, args []term.Term) (Env, bool) {
	return m.matchAll(rule, newSpine(args, true))
}

func (m Matcher) matchAll(rule *term.Rule, redex *spine) (Env, bool) {
	var env = newEnv(rule.Slots())
	//
	if uint(len(redex.args)) < rule.Arity() || (redex.exact && uint(len(redex.args)) != rule.Arity()) {
		panic(fmt.Sprintf("matching %d argument(s) against rule of arity %d", len(redex.args), rule.Arity()))
	}
	//
	for i, pattern := range rule.Lhs {
		if !m.matchArg(pattern, redex, i, &env) {
			return env, false
		}
	}
	//
	return env, true
}

// Match a pattern against the ith argument of a spine.  When a reduction is
// needed, the argument is put into weak-head normal form at most once and the
// result replaces it in the spine.
func (m Matcher) matchArg(pattern term.Term, redex *spine, i int, env *Env) bool {
	if _, ok := pattern.(*term.Patt); ok || m.whnf == nil {
		return m.match(pattern, redex.args[i], 0, env)
	}
	//
	saved := env.clone()
	//
	if m.matchStructure(pattern, unfold(redex.args[i]), 0, env) {
		return true
	} else if redex.reduced[i] {
		return false
	}
	//
	env.restore(saved)
	//
	arg := redex.args[i]
	redex.args[i], redex.reduced[i] = unfold(m.whnf(arg)), true
	//
	if redex.args[i] == unfold(arg) {
		return false
	}
	//
	return m.matchStructure(pattern, redex.args[i], 0, env)
}

// spine holds the arguments of a prospective redex, along with which of them
// have already been put into weak-head normal form.
type spine struct {
	args    []term.Term
	reduced []bool
	// Whether every rule matched must use all arguments.
	exact bool
}

func newSpine(args []term.Term, exact bool) *spine {
	return &spine{slices.Clone(args), make([]bool, len(args)), exact}
}

// Match a pattern against a term, where both sit under depth binders of the
// left-hand side being matched.
func (m Matcher) match(pattern term.Term, t term.Term, depth uint, env *Env) bool {
	t = unfold(t)
	//
	if patt, ok := pattern.(*term.Patt); ok {
		return m.capture(patt, t, depth, env)
	} else if m.whnf == nil {
		return m.matchStructure(pattern, t, depth, env)
	}
	// Bindings made by a failed attempt must not leak into the retry.
	saved := env.clone()
	//
	if m.matchStructure(pattern, t, depth, env) {
		return true
	}
	//
	env.restore(saved)
	// Retry after reducing the term
	if nt := m.whnf(t); nt != t {
		return m.matchStructure(pattern, unfold(nt), depth, env)
	}
	//
	return false
}

func (m Matcher) matchStructure(pattern term.Term, t term.Term, depth uint, env *Env) bool {
	switch p := pattern.(type) {
	case *term.Var:
		v, ok := t.(*term.Var)
		return ok && v.Index == p.Index
	case *term.Sort:
		s, ok := t.(*term.Sort)
		return ok && s.Level == p.Level
	case *term.Symb:
		s, ok := t.(*term.Symb)
		return ok && s.Symbol == p.Symbol
	case *term.Prod:
		s, ok := t.(*term.Prod)
		return ok && m.match(p.Domain, s.Domain, depth, env) && m.match(p.Body, s.Body, depth+1, env)
	case *term.Abst:
		s, ok := t.(*term.Abst)
		return ok && m.match(p.Domain, s.Domain, depth, env) && m.match(p.Body, s.Body, depth+1, env)
	case *term.Appl:
		s, ok := t.(*term.Appl)
		return ok && m.match(p.Fun, s.Fun, depth, env) && m.match(p.Arg, s.Arg, depth, env)
	default:
		panic(fmt.Sprintf("malformed pattern encountered (%s)", pattern))
	}
}

// Capture a term into the slot of a given placeholder.  The term may only
// depend on those locally bound variables given as arguments to the
// placeholder.  If the slot has already been bound (i.e. the rule is not
// left-linear), the captured values must be syntactically equal or, for a
// reducing matcher, convertible.
func (m Matcher) capture(patt *term.Patt, t term.Term, depth uint, env *Env) bool {
	if patt.IsWildcard() {
		return true
	}
	//
	value, ok := abstract(t, patt.Args, depth)
	//
	if !ok {
		return false
	} else if existing := env.values[patt.Slot]; existing != nil {
		return term.Equal(existing, value) || (m.whnf != nil && Convertible(existing, value))
	}
	//
	env.values[patt.Slot] = value
	env.arities[patt.Slot] = uint(len(patt.Args))
	//
	return true
}

// Abstract a term (living under depth locally bound variables) over a given
// sequence of those variables.  This fails if the term depends on a locally
// bound variable not amongst them.
func abstract(t term.Term, args []term.Term, depth uint) (term.Term, bool) {
	var (
		k  = uint(len(args))
		ok = true
	)
	// Closed pattern at the top level
	if k == 0 && depth == 0 {
		term.Walk(t, func(t term.Term, _ uint) bool {
			unfold(t)
			return true
		})
		//
		return t, true
	}
	//
	value := term.Transform(t, func(t term.Term, inner uint) (term.Term, bool) {
		switch t := t.(type) {
		case *term.Meta:
			panic(fmt.Sprintf("unresolved metavariable ?%s encountered during matching", t.Name))
		case *term.Var:
			if t.Index < inner {
				return t, true
			}
			// Index relative to the left-hand side
			index := t.Index - inner
			//
			if index >= depth {
				// Bound outside of the left-hand side
				return term.NewVar(inner + index - depth + k), true
			}
			//
			for j, arg := range args {
				if v := unfold(arg).(*term.Var); v.Index == index {
					return term.NewVar(inner + k - 1 - uint(j)), true
				}
			}
			// Not permitted
			ok = false
			//
			return t, true
		}
		//
		return t, false
	})
	//
	return value, ok
}

func unfold(t term.Term) term.Term {
	t = term.Unfold(t)
	//
	if meta, ok := t.(*term.Meta); ok {
		panic(fmt.Sprintf("unresolved metavariable ?%s encountered during matching", meta.Name))
	}
	//
	return t
}
