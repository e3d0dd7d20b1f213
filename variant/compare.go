/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package variant

import (
	"fmt"

	"dirpx.dev/rtr/apis"
)

// Equal reports whether v and other hold equal values. Two empty variants
// are equal; an empty and a non-empty one are not. Builtin numbers of
// different types compare by value when the table carries the builtin
// comparators. Otherwise the equality comparator of
// v's type decides, after converting other to that type; when the
// conversion fails the values are unequal. Without a comparator Equal
// fails with ErrNotComparable.
func (v Variant) Equal(other Variant) (bool, error) {
	if !v.IsValid() || !other.IsValid() {
		return v.IsValid() == other.IsValid(), nil
	}
	if v.builtinPair(other) {
		if c, ok := scalarCompare(v.val, other.val); ok {
			return c == 0, nil
		}
	}
	v.tab.mu.RLock()
	eq := v.tab.equal[v.id]
	v.tab.mu.RUnlock()
	if eq == nil {
		return false, fmt.Errorf("%w: no equality for %s", apis.ErrNotComparable, v.TypeName())
	}
	rhs, err := other.Convert(v.id)
	if err != nil {
		return false, nil
	}
	return eq(v.val, rhs.val), nil
}

// Less reports whether v orders before other, using the less-than
// comparator of v's type after converting other to it. Missing
// comparators and failed conversions yield ErrNotComparable.
func (v Variant) Less(other Variant) (bool, error) {
	if !v.IsValid() || !other.IsValid() {
		return false, fmt.Errorf("%w: empty variant", apis.ErrNotComparable)
	}
	if v.builtinPair(other) {
		if c, ok := scalarCompare(v.val, other.val); ok {
			return c < 0, nil
		}
	}
	v.tab.mu.RLock()
	less := v.tab.less[v.id]
	v.tab.mu.RUnlock()
	if less == nil {
		return false, fmt.Errorf("%w: no ordering for %s", apis.ErrNotComparable, v.TypeName())
	}
	rhs, err := other.Convert(v.id)
	if err != nil {
		return false, fmt.Errorf("%w: %s vs %s: %v", apis.ErrNotComparable, v.TypeName(), other.TypeName(), err)
	}
	return less(v.val, rhs.val), nil
}

// Compare returns -1, 0 or +1 ordering v against other. It needs a
// less-than comparator for v's type; equality is taken from the equality
// comparator when one exists and from !(a<b) && !(b<a) otherwise.
func (v Variant) Compare(other Variant) (int, error) {
	lt, err := v.Less(other)
	if err != nil {
		return 0, err
	}
	if lt {
		return -1, nil
	}
	if eq, err := v.Equal(other); err == nil {
		if eq {
			return 0, nil
		}
		return 1, nil
	}
	rhs, err := other.Convert(v.id)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apis.ErrNotComparable, err)
	}
	gt, err := rhs.Less(v)
	if err != nil {
		return 0, err
	}
	if gt {
		return 1, nil
	}
	return 0, nil
}

func (v Variant) builtinPair(other Variant) bool {
	return v.tab.cfg.IncludeBuiltins && isBuiltinScalar(v.Type()) && isBuiltinScalar(other.Type())
}
