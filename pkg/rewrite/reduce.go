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

// Strategy determines the order in which redexes are contracted during
// normalisation.  For a confluent and terminating rule set, every strategy
// produces the same normal form.
type Strategy uint8

const (
	// OUTERMOST reduces a term to weak-head normal form first (matching rules
	// lazily, so arguments are only reduced as far as the patterns require),
	// and then normalises the components of that head normal form.
	OUTERMOST Strategy = 0
	// INNERMOST normalises all components of a term (including the arguments
	// of an application, from left to right) before contracting a redex at the
	// root, using purely structural matching.
	INNERMOST Strategy = 1
)

// ParseStrategy converts the name of a reduction strategy into a strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "outermost":
		return OUTERMOST, nil
	case "innermost":
		return INNERMOST, nil
	default:
		return OUTERMOST, fmt.Errorf("unknown reduction strategy \"%s\"", name)
	}
}

func (s Strategy) String() string {
	if s == INNERMOST {
		return "innermost"
	}
	//
	return "outermost"
}

// Lazy is the matcher used for head reduction, which reduces terms only as far
// as required to match the patterns of a rule.
var Lazy = Matcher{nil}

func init() {
	Lazy.whnf = Whnf
}

// Whnf reduces a term to weak-head normal form, by repeatedly contracting beta
// redexes and rule redexes at its head.  The result is never a resolved
// metavariable.
func Whnf(t term.Term) term.Term {
	for {
		head, args := term.GetArgs(t)
		//
		switch h := head.(type) {
		case *term.Abst:
			if len(args) > 0 {
				t = term.AddArgs(term.Subst(h.Body, args[0]), args[1:]...)
				continue
			}
		case *term.Symb:
			if reduct, ok := Lazy.Step(h.Symbol, args); ok {
				t = reduct
				continue
			}
		}
		//
		return term.Unfold(t)
	}
}

// Normalize reduces a term to normal form using a given strategy.  This does
// not terminate when the rules involved are not terminating.
func Normalize(t term.Term, strategy Strategy) term.Term {
	switch strategy {
	case OUTERMOST:
		return outermost(t)
	case INNERMOST:
		return innermost(t)
	default:
		panic(fmt.Sprintf("unknown reduction strategy (%d)", strategy))
	}
}

func outermost(t term.Term) term.Term {
	for {
		t = Whnf(t)
		//
		switch h := t.(type) {
		case *term.Prod:
			return rebuildProd(h, outermost(h.Domain), outermost(h.Body))
		case *term.Abst:
			return rebuildAbst(h, outermost(h.Domain), outermost(h.Body))
		case *term.Appl:
			head, args := term.GetArgs(h)
			nargs := util.Map(args, outermost)
			// Normalised arguments can enable a rule which requires e.g. two
			// arguments to be syntactically equal.
			if symb, ok := head.(*term.Symb); ok && !term.EqualAll(args, nargs) {
				if reduct, ok := Structural.Step(symb.Symbol, nargs); ok {
					t = reduct
					continue
				}
			}
			//
			return term.AddArgs(head, nargs...)
		default:
			return t
		}
	}
}

func innermost(t term.Term) term.Term {
	switch h := term.Unfold(t).(type) {
	case *term.Prod:
		return rebuildProd(h, innermost(h.Domain), innermost(h.Body))
	case *term.Abst:
		return rebuildAbst(h, innermost(h.Domain), innermost(h.Body))
	case *term.Appl:
		head, args := term.GetArgs(h)
		nhead := innermost(head)
		nargs := util.Map(args, innermost)
		// Contract redex at the root (if any)
		switch hd := nhead.(type) {
		case *term.Abst:
			return innermost(term.AddArgs(term.Subst(hd.Body, nargs[0]), nargs[1:]...))
		case *term.Symb:
			if reduct, ok := Structural.Step(hd.Symbol, nargs); ok {
				return innermost(reduct)
			}
		}
		//
		return term.AddArgs(nhead, nargs...)
	case *term.Symb:
		// Symbols can have rules of arity zero.
		if reduct, ok := Structural.Step(h.Symbol, nil); ok {
			return innermost(reduct)
		}
		//
		return h
	default:
		return h
	}
}

func rebuildProd(p *term.Prod, domain term.Term, body term.Term) term.Term {
	if domain == p.Domain && body == p.Body {
		return p
	}
	//
	return term.NewProd(p.Name, domain, body)
}

func rebuildAbst(p *term.Abst, domain term.Term, body term.Term) term.Term {
	if domain == p.Domain && body == p.Body {
		return p
	}
	//
	return term.NewAbst(p.Name, domain, body)
}

// Convertible determines whether two terms are equal modulo the reduction
// relation.  Terms are first compared syntactically, and otherwise reduced to
// weak-head normal form and compared component-wise.
func Convertible(lhs term.Term, rhs term.Term) bool {
	if term.Equal(lhs, rhs) {
		return true
	}
	//
	lhs, rhs = Whnf(lhs), Whnf(rhs)
	//
	switch l := lhs.(type) {
	case *term.Prod:
		r, ok := rhs.(*term.Prod)
		return ok && Convertible(l.Domain, r.Domain) && Convertible(l.Body, r.Body)
	case *term.Abst:
		r, ok := rhs.(*term.Abst)
		return ok && Convertible(l.Domain, r.Domain) && Convertible(l.Body, r.Body)
	case *term.Appl:
		lhead, largs := term.GetArgs(l)
		rhead, rargs := term.GetArgs(rhs)
		//
		if len(largs) != len(rargs) || !Convertible(lhead, rhead) {
			return false
		}
		//
		for i := range largs {
			if !Convertible(largs[i], rargs[i]) {
				return false
			}
		}
		//
		return true
	default:
		return term.Equal(lhs, rhs)
	}
}
