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
package util

// Predicate abstracts the notion of a function which identifies something.
type Predicate[T any] func(T) bool

// Map applies a function to every element of a slice, producing a fresh slice
// of the results.  A nil slice maps to nil.
func Map[S any, T any](items []S, fn func(S) T) []T {
	if items == nil {
		return nil
	}
	//
	nitems := make([]T, len(items))
	//
	for i, item := range items {
		nitems[i] = fn(item)
	}
	//
	return nitems
}

// FindMatching determines the index of the first item matching the given
// predicate, or returns len(items) when none matches.
func FindMatching[T any](items []T, predicate Predicate[T]) uint {
	for i, item := range items {
		if predicate(item) {
			return uint(i)
		}
	}
	//
	return uint(len(items))
}

// ContainsMatching checks whether a given slice contains an item matching the
// given predicate.
func ContainsMatching[T any](items []T, predicate Predicate[T]) bool {
	return FindMatching(items, predicate) < uint(len(items))
}
