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
	"testing"

	"github.com/consensys/go-rewrite/pkg/util"
	"github.com/stretchr/testify/require"
)

var testModule = util.NewPath("test")

func Test_Shift_01(t *testing.T) {
	check_Equal(t, NewVar(3), Shift(NewVar(1), 2))
}

func Test_Shift_02(t *testing.T) {
	// λx:TYPE. x #0  ==>  λx:TYPE. x #2
	body := NewAppl(NewVar(0), NewVar(1))
	expected := NewAbst("x", NewType(), NewAppl(NewVar(0), NewVar(3)))
	check_Equal(t, expected, Shift(NewAbst("x", NewType(), body), 2))
}

func Test_Shift_03(t *testing.T) {
	require.Panics(t, func() { Shift(NewVar(0), -1) })
}

func Test_Shift_04(t *testing.T) {
	// Closed terms are returned as is.
	closed := NewAbst("x", NewType(), NewVar(0))
	require.Same(t, closed, Shift(closed, 5))
}

func Test_Subst_01(t *testing.T) {
	c := NewSymb(NewSymbol(testModule, "c", false, NewType()))
	// (#0 #1)[c]  ==>  c #0
	check_Equal(t, NewAppl(c, NewVar(0)), Subst(NewAppl(NewVar(0), NewVar(1)), c))
}

func Test_Subst_02(t *testing.T) {
	// (λx. #1 x)[#5]  ==>  λx. #6 x
	body := NewAbst("x", NewType(), NewAppl(NewVar(1), NewVar(0)))
	expected := NewAbst("x", NewType(), NewAppl(NewVar(6), NewVar(0)))
	check_Equal(t, expected, Subst(body, NewVar(5)))
}

func Test_Subst_03(t *testing.T) {
	a := NewSymb(NewSymbol(testModule, "a", false, NewType()))
	b := NewSymb(NewSymbol(testModule, "b", false, NewType()))
	// (#1 #0 #2)[a,b]  ==>  a b #0
	body := AddArgs(NewVar(1), NewVar(0), NewVar(2))
	check_Equal(t, AddArgs(a, b, NewVar(0)), SubstAll(body, a, b))
}

func Test_Arrow_01(t *testing.T) {
	// The codomain of an arrow is lifted over the anonymous binder.
	arrow := NewArrow(NewType(), NewVar(0))
	check_Equal(t, NewProd("y", NewType(), NewVar(1)), arrow)
	require.False(t, IsClosed(arrow))
}

func Test_Args_01(t *testing.T) {
	f := NewSymb(NewSymbol(testModule, "f", true, NewType()))
	args := []Term{NewVar(0), NewVar(1), NewType()}
	head, nargs := GetArgs(AddArgs(f, args...))
	//
	require.Same(t, f, head)
	require.True(t, EqualAll(args, nargs))
}

func Test_Args_02(t *testing.T) {
	head, args := GetArgs(NewType())
	//
	check_Equal(t, NewType(), head)
	require.Empty(t, args)
}

func Test_Equal_01(t *testing.T) {
	// Symbols are compared by identity, not by name.
	s1 := NewSymbol(testModule, "s", false, NewType())
	s2 := NewSymbol(testModule, "s", false, NewType())
	//
	require.True(t, Equal(NewSymb(s1), NewSymb(s1)))
	require.False(t, Equal(NewSymb(s1), NewSymb(s2)))
}

func Test_Equal_02(t *testing.T) {
	// Binder names are irrelevant.
	lhs := NewProd("x", NewType(), NewVar(0))
	rhs := NewProd("y", NewType(), NewVar(0))
	require.True(t, Equal(lhs, rhs))
	require.False(t, Equal(lhs, NewAbst("x", NewType(), NewVar(0))))
}

func Test_Equal_03(t *testing.T) {
	m1 := NewMeta(1, "m")
	m2 := NewMeta(2, "n")
	//
	require.False(t, Equal(m1, m2))
	m1.Resolve(NewType())
	require.True(t, Equal(m1, NewType()))
	require.Panics(t, func() { m1.Resolve(NewKind()) })
}

func Test_Closed_01(t *testing.T) {
	require.True(t, IsClosed(NewAbst("x", NewType(), NewVar(0))))
	require.False(t, IsClosed(NewAbst("x", NewType(), NewVar(1))))
}

func Test_Rule_01(t *testing.T) {
	f := NewSymbol(testModule, "f", true, NewType())
	// f (f $a) ↪ $a
	rule := NewRule([]string{"a"}, NewTEnv(0), NewAppl(NewSymb(f), NewPatt(0, "a")))
	require.NoError(t, rule.Check())
	require.Equal(t, uint(1), rule.Arity())
	require.Equal(t, uint(1), rule.Slots())
}

func Test_Rule_02(t *testing.T) {
	// Unbound slot on the right-hand side
	rule := NewRule([]string{"a", "b"}, NewTEnv(1), NewPatt(0, "a"))
	require.Error(t, rule.Check())
}

func Test_Rule_03(t *testing.T) {
	// Pattern argument which is not a bound variable
	lhs := NewAbst("x", NewType(), NewPatt(0, "a", NewVar(1)))
	rule := NewRule([]string{"a"}, NewType(), lhs)
	require.Error(t, rule.Check())
}

func Test_Rule_04(t *testing.T) {
	// Pattern argument repeated
	lhs := NewAbst("x", NewType(), NewPatt(0, "a", NewVar(0), NewVar(0)))
	rule := NewRule([]string{"a"}, NewType(), lhs)
	require.Error(t, rule.Check())
}

func Test_Rule_05(t *testing.T) {
	// Slot used with different arities
	lhs := NewAbst("x", NewType(), NewAppl(NewPatt(0, "a", NewVar(0)), NewPatt(0, "a")))
	rule := NewRule([]string{"a"}, NewType(), lhs)
	require.Error(t, rule.Check())
}

func Test_Rule_06(t *testing.T) {
	// Environment placeholder on the left-hand side
	rule := NewRule([]string{"a"}, NewType(), NewTEnv(0))
	require.Error(t, rule.Check())
}

func Test_Rule_07(t *testing.T) {
	// Higher-order pattern applied consistently
	lhs := NewAbst("x", NewWildcard(), NewPatt(0, "f", NewVar(0)))
	rule := NewRule([]string{"f", "a"}, NewTEnv(0, NewTEnv(1)), lhs, NewPatt(1, "a"))
	require.NoError(t, rule.Check())
}

func Test_Rule_08(t *testing.T) {
	// Wrong number of arguments for environment placeholder
	lhs := NewAbst("x", NewWildcard(), NewPatt(0, "f", NewVar(0)))
	rule := NewRule([]string{"f"}, NewTEnv(0), lhs)
	require.Error(t, rule.Check())
}

func Test_Format_01(t *testing.T) {
	require.Equal(t, "λ x : TYPE, x", Format(NewAbst("x", NewType(), NewVar(0))))
	require.Equal(t, "Π x : TYPE, #1", Format(NewProd("x", NewType(), NewVar(1))))
}

func Test_Format_02(t *testing.T) {
	neg := NewSymbol(testModule, "neg", true, NewType())
	rule := NewRule([]string{"a"}, NewTEnv(0), NewAppl(NewSymb(neg), NewPatt(0, "a")))
	//
	require.Equal(t, "neg (neg $a) ↪ $a", FormatRule(neg, rule))
}

func Test_Encode_01(t *testing.T) {
	var (
		buffer  bytes.Buffer
		decoded Term
		f       = NewSymbol(testModule, "f", true, NewType())
		encoded = Term(NewAbst("x", NewType(), NewAppl(NewSymb(f), NewVar(0))))
	)
	//
	require.NoError(t, gob.NewEncoder(&buffer).Encode(&encoded))
	require.NoError(t, gob.NewDecoder(&buffer).Decode(&decoded))
	// Symbol references decode as stubs
	abst, ok := decoded.(*Abst)
	require.True(t, ok)
	symb := abst.Body.(*Appl).Fun.(*Symb)
	require.True(t, symb.Symbol.IsStub())
	require.Equal(t, "test.f", symb.Symbol.QualifiedName())
	require.Equal(t, Format(encoded), Format(decoded))
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_Equal(t *testing.T, expected Term, actual Term) {
	t.Helper()
	//
	if !Equal(expected, actual) {
		t.Errorf("expected %s, got %s", Format(expected), Format(actual))
	}
}
