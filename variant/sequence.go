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
	"reflect"

	"dirpx.dev/rtr/apis"
)

// seq returns the slice, array or map behind v, looking through pointers
// and interfaces.
func (v Variant) seq() (reflect.Value, bool) {
	rv := v.val
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv, true
	}
	return reflect.Value{}, false
}

// Len returns the number of elements of a slice, array or map held by v.
// ok is false for any other value.
func (v Variant) Len() (n int, ok bool) {
	rv, ok := v.seq()
	if !ok {
		return 0, false
	}
	return rv.Len(), true
}

// Index returns a copy of element i of the slice or array held by v.
func (v Variant) Index(i int) (Variant, error) {
	rv, ok := v.seq()
	if !ok || rv.Kind() == reflect.Map {
		return Variant{}, fmt.Errorf("%w: %s is not a sequence", apis.ErrInvalidInstance, v.TypeName())
	}
	if i < 0 || i >= rv.Len() {
		return Variant{}, fmt.Errorf("%w: index %d out of range [0:%d]", apis.ErrInvalidInstance, i, rv.Len())
	}
	return v.tab.New(rv.Index(i).Interface()), nil
}

// Lookup returns a copy of the map entry stored under key. The key is
// converted to the map key type first; ok is false when the entry is
// missing or v holds no map.
func (v Variant) Lookup(key any) (Variant, bool) {
	rv, ok := v.seq()
	if !ok || rv.Kind() != reflect.Map {
		return Variant{}, false
	}
	k, err := v.tab.New(key).As(rv.Type().Key())
	if err != nil {
		return Variant{}, false
	}
	e := rv.MapIndex(k)
	if !e.IsValid() {
		return Variant{}, false
	}
	return v.tab.New(e.Interface()), true
}
