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

	"github.com/consensys/go-rewrite/pkg/term"
	"github.com/consensys/go-rewrite/pkg/util"
)

// Select determines the first rule (in order of declaration) attached to a
// given symbol which matches the given arguments.  Rules whose arity exceeds
// the number of arguments cannot match.  The index of the selected rule is
// returned along with the captured environment, or -1 if no rule matches.
func (m Matcher) Select(symbol *term.Symbol, args []term.Term) (int, Env) {
	return m.selectRule(symbol, newSpine(args, false))
}

// Arguments reduced whilst trying one rule are kept in the spine for the
// remaining rules.
func (m Matcher) selectRule(symbol *term.Symbol, redex *spine) (int, Env) {
	for i, rule := range symbol.Rules {
		if rule.Arity() > uint(len(redex.args)) {
			continue
		}
		//
		if env, ok := m.matchAll(rule, redex); ok {
			return i, env
		}
	}
	//
	return -1, Env{}
}

// Step applies the first matching rule of a given symbol to the given
// arguments, returning the reduct (with any arguments beyond the rule's arity
// applied to it).  If no rule matches, the application is in normal form at
// its head and false is returned.
func (m Matcher) Step(symbol *term.Symbol, args []term.Term) (term.Term, bool) {
	var redex = newSpine(args, false)
	//
	index, env := m.selectRule(symbol, redex)
	//
	if index < 0 {
		return nil, false
	}
	//
	rule := symbol.Rules[index]
	reduct := Instantiate(rule.Rhs, env)
	//
	return term.AddArgs(reduct, redex.args[rule.Arity():]...), true
}

// Step applies a rule of the given symbol using structural matching only.
func Step(symbol *term.Symbol, args []term.Term) (term.Term, bool) {
	return Structural.Step(symbol, args)
}

// Instantiate the right-hand side of a rule using the values captured in a
// given environment.
func Instantiate(rhs term.Term, env Env) term.Term {
	return instantiate(rhs, env, 0)
}

func instantiate(rhs term.Term, env Env, base uint) term.Term {
	return term.Transform(rhs, func(t term.Term, depth uint) (term.Term, bool) {
		if tenv, ok := t.(*term.TEnv); ok {
			value, arity := env.Get(tenv.Slot)
			//
			if value == nil {
				panic(fmt.Sprintf("pattern variable $%d not bound", tenv.Slot))
			} else if arity != uint(len(tenv.Args)) {
				panic(fmt.Sprintf("pattern variable $%d expects %d argument(s), given %d", tenv.Slot, arity,
					len(tenv.Args)))
			}
			// Instantiate arguments first, since these may contain placeholders.
			args := util.Map(tenv.Args, func(arg term.Term) term.Term {
				return instantiate(arg, env, base+depth)
			})
			//
			return apply(value, args, base+depth), true
		}
		//
		return t, false
	})
}

// Apply a captured value to a given set of arguments, where the value is
// abstracted over exactly those arguments and the arguments themselves live
// under lift binders of the right-hand side.
func apply(value term.Term, args []term.Term, lift uint) term.Term {
	var k = uint(len(args))
	//
	if k == 0 && lift == 0 {
		return value
	}
	//
	return term.Transform(value, func(t term.Term, inner uint) (term.Term, bool) {
		if v, ok := t.(*term.Var); ok {
			if v.Index < inner {
				return v, true
			} else if v.Index-inner < k {
				return term.Shift(args[k-1-(v.Index-inner)], int(inner)), true
			}
			//
			return term.NewVar(v.Index - k + lift), true
		}
		//
		return t, false
	})
}
