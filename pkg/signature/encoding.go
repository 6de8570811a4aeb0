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
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/consensys/go-rewrite/pkg/term"
	"github.com/consensys/go-rewrite/pkg/util"
)

// ============================================================================
// Encoding / Decoding
// ============================================================================

// Flattened form of a signature, as written out.
type record struct {
	Path     util.Path
	Symbols  []symbolRecord
	Deps     []*Dependency
	Requires []util.Path
}

type symbolRecord struct {
	Name      string
	Definable bool
	Type      term.Term
	Rules     []*term.Rule
}

// GobEncode a signature.  This allows it to be marshalled into a binary form.
// Symbol references are written out by identity only (i.e. module and name).
// Hence, only the content of this module is written.
func (p *Signature) GobEncode() ([]byte, error) {
	var (
		buffer bytes.Buffer
		rec    = record{p.path, make([]symbolRecord, len(p.names)), p.deps, p.requires}
	)
	//
	for i, symbol := range p.Symbols() {
		rec.Symbols[i] = symbolRecord{symbol.Name, symbol.Definable, symbol.Type, symbol.Rules}
	}
	//
	if err := gob.NewEncoder(&buffer).Encode(&rec); err != nil {
		return nil, err
	}
	//
	return buffer.Bytes(), nil
}

// GobDecode a previously encoded signature.  References to symbols of this
// module are shared with the decoded symbols, whilst references to symbols of
// other modules are left as stubs (to be resolved by linking).
func (p *Signature) GobDecode(data []byte) error {
	var rec record
	//
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&rec); err != nil {
		return err
	}
	//
	*p = *Create(rec.Path)
	p.deps = rec.Deps
	p.requires = rec.Requires
	//
	for _, sr := range rec.Symbols {
		if _, ok := p.symbols[sr.Name]; ok || sr.Type == nil {
			return fmt.Errorf("malformed declaration of symbol \"%s\"", sr.Name)
		}
		//
		p.symbols[sr.Name] = &term.Symbol{Name: sr.Name, Type: sr.Type, Module: rec.Path,
			Definable: sr.Definable, Rules: sr.Rules}
		p.names = append(p.names, sr.Name)
	}
	//
	return p.shareLocal()
}

// Replace every stub of a symbol in this module by the symbol itself.
func (p *Signature) shareLocal() error {
	var err error
	//
	share := func(t term.Term) term.Term {
		return term.Transform(t, func(t term.Term, _ uint) (term.Term, bool) {
			if symb, ok := t.(*term.Symb); ok {
				if !symb.Symbol.IsStub() || !symb.Symbol.Module.Equals(p.path) {
					return t, true
				} else if symbol, ok := p.symbols[symb.Symbol.Name]; ok {
					return term.NewSymb(symbol), true
				}
				//
				err = fmt.Errorf("reference to undeclared symbol \"%s\"", symb.Symbol.Name)
			}
			//
			return t, false
		})
	}
	//
	shareRule := func(rule *term.Rule) {
		for i, arg := range rule.Lhs {
			rule.Lhs[i] = share(arg)
		}
		//
		rule.Rhs = share(rule.Rhs)
	}
	//
	for _, symbol := range p.symbols {
		symbol.Type = share(symbol.Type)
		//
		for _, rule := range symbol.Rules {
			shareRule(rule)
		}
	}
	//
	for _, dep := range p.deps {
		for _, contrib := range dep.Rules {
			shareRule(contrib.Rule)
		}
	}
	//
	return err
}
