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
	"fmt"
	"strings"
)

// Format renders a term for debugging purposes, resolving bound variables to
// the names given by their binders.  This is not the surface syntax, and
// cannot be parsed back.
func Format(t Term) string {
	var builder strings.Builder
	//
	format(&builder, t, nil, false)
	//
	return builder.String()
}

// FormatRule renders a rule attached to a given head symbol.
func FormatRule(head *Symbol, rule *Rule) string {
	var builder strings.Builder
	//
	builder.WriteString(head.Name)
	//
	for _, arg := range rule.Lhs {
		builder.WriteString(" ")
		format(&builder, arg, nil, true)
	}
	//
	builder.WriteString(" ↪ ")
	// Environment placeholders are printed using the names of their slots
	format(&builder, rule.Rhs, nil, false, rule.Vars...)
	//
	return builder.String()
}

func format(builder *strings.Builder, t Term, names []string, nested bool, slots ...string) {
	switch t := Unfold(t).(type) {
	case *Var:
		n := uint(len(names))
		if t.Index < n {
			builder.WriteString(names[n-1-t.Index])
		} else {
			fmt.Fprintf(builder, "#%d", t.Index)
		}
	case *Sort:
		if t.Level == TYPE {
			builder.WriteString("TYPE")
		} else {
			builder.WriteString("KIND")
		}
	case *Symb:
		builder.WriteString(t.Symbol.Name)
	case *Prod:
		open(builder, nested)
		fmt.Fprintf(builder, "Π %s : ", t.Name)
		format(builder, t.Domain, names, false, slots...)
		builder.WriteString(", ")
		format(builder, t.Body, append(names, t.Name), false, slots...)
		closed(builder, nested)
	case *Abst:
		open(builder, nested)
		fmt.Fprintf(builder, "λ %s : ", t.Name)
		format(builder, t.Domain, names, false, slots...)
		builder.WriteString(", ")
		format(builder, t.Body, append(names, t.Name), false, slots...)
		closed(builder, nested)
	case *Appl:
		head, args := GetArgs(t)
		//
		open(builder, nested)
		format(builder, head, names, true, slots...)
		//
		for _, arg := range args {
			builder.WriteString(" ")
			format(builder, arg, names, true, slots...)
		}
		//
		closed(builder, nested)
	case *Meta:
		fmt.Fprintf(builder, "?%s", t.Name)
	case *Patt:
		if t.IsWildcard() {
			builder.WriteString("_")
		} else {
			fmt.Fprintf(builder, "$%s", t.Name)
		}
		//
		formatArgs(builder, t.Args, names, slots)
	case *TEnv:
		if t.Slot < uint(len(slots)) {
			fmt.Fprintf(builder, "$%s", slots[t.Slot])
		} else {
			fmt.Fprintf(builder, "$%d", t.Slot)
		}
		//
		formatArgs(builder, t.Args, names, slots)
	default:
		panic(fmt.Sprintf("unknown term encountered (%T)", t))
	}
}

func formatArgs(builder *strings.Builder, args []Term, names []string, slots []string) {
	if len(args) == 0 {
		return
	}
	//
	builder.WriteString("[")
	//
	for i, arg := range args {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		format(builder, arg, names, false, slots...)
	}
	//
	builder.WriteString("]")
}

func open(builder *strings.Builder, nested bool) {
	if nested {
		builder.WriteString("(")
	}
}

func closed(builder *strings.Builder, nested bool) {
	if nested {
		builder.WriteString(")")
	}
}

func (p *Var) String() string  { return Format(p) }
func (p *Sort) String() string { return Format(p) }
func (p *Symb) String() string { return Format(p) }
func (p *Prod) String() string { return Format(p) }
func (p *Abst) String() string { return Format(p) }
func (p *Appl) String() string { return Format(p) }
func (p *Meta) String() string { return Format(p) }
func (p *Patt) String() string { return Format(p) }
func (p *TEnv) String() string { return Format(p) }
