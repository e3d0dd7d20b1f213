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

package reflect

import (
	"errors"
	"reflect"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/config"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTooDeep indicates that pointer unwrapping hit MaxUnwrap
	// before reaching a non-pointer type.
	ErrReflectTooDeep = errors.New("reflect: pointer nesting exceeds MaxUnwrap")
)

// RawType strips pointer indirections from t and returns the pointee type
// together with the number of stripped levels.
//
// If MaxUnwrap <= 0, DefaultMaxUnwrap is used.
func RawType(t reflect.Type, cfg apis.Config) (reflect.Type, int, error) {
	if t == nil {
		return nil, 0, ErrReflectNilType
	}
	maxUnwrap := cfg.MaxUnwrap
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}

	depth := 0
	for t.Kind() == reflect.Pointer {
		if depth == maxUnwrap {
			return nil, depth, ErrReflectTooDeep
		}
		t = t.Elem()
		depth++
	}
	return t, depth, nil
}

// Indirect dereferences v until it is no longer a pointer, stopping at nil.
func Indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// Nilable reports whether the zero value of t is nil.
func Nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
