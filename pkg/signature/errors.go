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
)

// NotFoundError is returned when looking up a symbol which is not declared in
// a given signature.
type NotFoundError struct {
	Module util.Path
	Name   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown symbol \"%s\" in module %s", e.Name, e.Module.String())
}

// NotDefinableError is returned when attempting to add a rule to a symbol which
// is not definable (i.e. a constant).
type NotDefinableError struct {
	Symbol *term.Symbol
}

func (e *NotDefinableError) Error() string {
	return fmt.Sprintf("cannot add rule to constant symbol %s", e.Symbol.QualifiedName())
}

// RuleError is returned when attempting to add an ill-formed rule.
type RuleError struct {
	Symbol *term.Symbol
	Cause  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("ill-formed rule for %s: %s", e.Symbol.QualifiedName(), e.Cause.Error())
}

func (e *RuleError) Unwrap() error {
	return e.Cause
}
