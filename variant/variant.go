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

// Package variant implements the type-erased value container of the
// reflection core.
//
// A Variant holds zero or one value tagged with the TypeID of its Go type.
// Everything a Variant can do beyond holding the value (conversion,
// comparison, printing) is looked up in the capability Table that created
// it, so two registries never share conversion rules.
package variant

import (
	"fmt"
	"reflect"

	"dirpx.dev/rtr/apis"
)

// Variant is a type-erased value. The zero Variant is empty.
// Variants are values; copying one copies the held value the way Go
// copies it (pointers stay shared).
type Variant struct {
	id  apis.TypeID
	val reflect.Value
	own apis.Ownership
	tab *Table
}

// IsValid reports whether v holds a value.
func (v Variant) IsValid() bool { return v.val.IsValid() }

// TypeID returns the id of the held type, or InvalidTypeID.
func (v Variant) TypeID() apis.TypeID { return v.id }

// Type returns the reflect.Type of the held value, or nil.
func (v Variant) Type() reflect.Type {
	if !v.val.IsValid() {
		return nil
	}
	return v.val.Type()
}

// TypeName returns the registry name of the held type, or "".
func (v Variant) TypeName() string {
	if v.tab == nil {
		return ""
	}
	return v.tab.arena.Name(v.id)
}

// Value returns the held reflect.Value (invalid for the empty Variant).
func (v Variant) Value() reflect.Value { return v.val }

// Interface returns the held value, or nil.
func (v Variant) Interface() any {
	if !v.val.IsValid() {
		return nil
	}
	return v.val.Interface()
}

// Ownership reports who owns the held value.
func (v Variant) Ownership() apis.Ownership { return v.own }

// Table returns the capability table v was created by.
func (v Variant) Table() *Table { return v.tab }

// CanConvert reports whether Convert(target) can succeed for some value
// of v's type: identity, an upcast, or a registered converter chain.
func (v Variant) CanConvert(target apis.TypeID) bool {
	if !v.IsValid() || !target.IsValid() {
		return false
	}
	if v.id == target {
		return true
	}
	if rt := v.tab.arena.Type(target); rt != nil {
		if _, ok := v.tab.upcast(v.val, rt); ok {
			return true
		}
	}
	_, ok := v.tab.path(v.id, target)
	return ok
}

// Convert returns a new Variant holding v converted to target.
// It fails with ErrNoConversionPath when no converter chain exists and
// with ErrConversion when a converter rejects the value.
func (v Variant) Convert(target apis.TypeID) (Variant, error) {
	if !v.IsValid() {
		return Variant{}, fmt.Errorf("%w: empty variant", apis.ErrConversion)
	}
	if v.id == target {
		return v, nil
	}
	rt := v.tab.arena.Type(target)
	if rt == nil {
		return Variant{}, fmt.Errorf("%w: unknown target type id %d", apis.ErrNoConversionPath, target)
	}
	if up, ok := v.tab.upcast(v.val, rt); ok {
		return Variant{id: target, val: up, own: v.own, tab: v.tab}, nil
	}
	out, err := v.tab.convertTo(v, target)
	if err != nil {
		return Variant{}, err
	}
	return Variant{id: target, val: out, own: apis.Owned, tab: v.tab}, nil
}

// ConvertType is Convert addressed by reflect.Type.
func (v Variant) ConvertType(rt reflect.Type) (Variant, error) {
	if !v.IsValid() {
		return Variant{}, fmt.Errorf("%w: empty variant", apis.ErrConversion)
	}
	return v.Convert(v.tab.arena.ID(rt))
}

// Get extracts the held value as T. It succeeds for the identical type,
// an interface T the value implements, a dereference of a held *T, an
// upcast along a registered hierarchy, or a registered conversion chain.
// Every other case fails with ErrConversion.
func Get[T any](v Variant) (T, error) {
	var zero T
	rv, err := v.As(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	out, ok := rv.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is not %s", apis.ErrConversion, rv.Type(), reflect.TypeFor[T]())
	}
	return out, nil
}

// MustGet is like Get but panics on failure.
func MustGet[T any](v Variant) T {
	out, err := Get[T](v)
	if err != nil {
		panic(err)
	}
	return out
}

// Is reports whether v holds exactly a T.
func Is[T any](v Variant) bool {
	return v.IsValid() && v.val.Type() == reflect.TypeFor[T]()
}

// As returns the held value as a reflect.Value of type target, following
// the rules of Get.
func (v Variant) As(target reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: empty variant", apis.ErrConversion)
	}
	src := v.val.Type()
	switch {
	case src == target:
		return v.val, nil
	case target.Kind() == reflect.Interface && src.Implements(target):
		return v.val.Convert(target), nil
	case src.Kind() == reflect.Pointer && src.Elem() == target:
		if v.val.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %s", apis.ErrConversion, src)
		}
		return v.val.Elem(), nil
	}
	if up, ok := v.tab.upcast(v.val, target); ok {
		return up, nil
	}
	out, err := v.tab.convertTo(v, v.tab.arena.ID(target))
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %s as %s: %v", apis.ErrConversion, src, target, err)
	}
	return out, nil
}

// ToInt converts v to int.
func (v Variant) ToInt() (int, bool) { return to[int](v) }

// ToInt64 converts v to int64.
func (v Variant) ToInt64() (int64, bool) { return to[int64](v) }

// ToUint64 converts v to uint64.
func (v Variant) ToUint64() (uint64, bool) { return to[uint64](v) }

// ToFloat64 converts v to float64.
func (v Variant) ToFloat64() (float64, bool) { return to[float64](v) }

// ToBool converts v to bool.
func (v Variant) ToBool() (bool, bool) { return to[bool](v) }

// ToString converts v to string through a registered conversion.
func (v Variant) ToString() (string, bool) { return to[string](v) }

func to[T any](v Variant) (T, bool) {
	out, err := Get[T](v)
	return out, err == nil
}

// String renders v using, in order: a registered printer, fmt.Stringer,
// a registered conversion to string, then fmt's default formatting.
func (v Variant) String() string {
	if !v.IsValid() {
		return ""
	}
	v.tab.mu.RLock()
	p := v.tab.print[v.id]
	v.tab.mu.RUnlock()
	if p != nil {
		return p(v.val)
	}
	if s, ok := v.val.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	if s, ok := v.ToString(); ok {
		return s
	}
	return fmt.Sprint(v.val.Interface())
}

// GoString implements fmt.GoStringer for debugging output.
func (v Variant) GoString() string {
	if !v.IsValid() {
		return "variant.Variant{}"
	}
	return fmt.Sprintf("variant.Variant{%s: %#v}", v.TypeName(), v.val.Interface())
}
