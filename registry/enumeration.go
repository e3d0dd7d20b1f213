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

package registry

import (
	"reflect"
	"slices"

	"go.uber.org/zap"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/variant"
)

// Enumeration is a handle to the name/value table of an enum type.
// The zero Enumeration is invalid.
type Enumeration struct {
	reg *Registry
	t   *typeDesc
}

// IsValid reports whether e denotes an enumeration.
func (e Enumeration) IsValid() bool { return e.t != nil && e.t.enum != nil }

// Type returns the enum type.
func (e Enumeration) Type() Type {
	if e.t == nil {
		return Type{}
	}
	return Type{reg: e.reg, id: e.t.id}
}

// UnderlyingType returns the integer type the enum is defined over.
func (e Enumeration) UnderlyingType() Type {
	if e.t == nil {
		return Type{}
	}
	return e.reg.TypeFor(underlying(e.t.rt))
}

// Names returns the symbolic names in registration order.
func (e Enumeration) Names() []string {
	if !e.IsValid() {
		return nil
	}
	return slices.Clone(e.t.enum.names)
}

// Values returns the values in registration order, aliases included.
func (e Enumeration) Values() []variant.Variant {
	if !e.IsValid() {
		return nil
	}
	out := make([]variant.Variant, len(e.t.enum.values))
	for i, v := range e.t.enum.values {
		out[i] = e.reg.tab.FromValue(v, apis.Owned)
	}
	return out
}

// Value returns the value named name, or the empty variant.
func (e Enumeration) Value(name string) variant.Variant {
	if !e.IsValid() {
		return variant.Variant{}
	}
	i := e.t.enum.index(name)
	if i < 0 {
		return variant.Variant{}
	}
	return e.reg.tab.FromValue(e.t.enum.values[i], apis.Owned)
}

// NameOf returns the first name registered for v, or "". v may be the
// enum value, an integer or a variant holding either.
func (e Enumeration) NameOf(v any) string {
	if !e.IsValid() {
		return ""
	}
	cv, err := e.reg.tab.New(v).ConvertType(e.t.rt)
	if err != nil {
		return ""
	}
	return e.t.enum.nameOf(cv.Value())
}

// Metadata returns the value stored under key, or the empty variant.
func (e Enumeration) Metadata(key any) variant.Variant {
	if !e.IsValid() {
		return variant.Variant{}
	}
	v, _ := e.t.enum.meta.get(key)
	return e.reg.tab.New(v)
}

// AddMetadata attaches key/value to the enumeration.
func (e Enumeration) AddMetadata(key, value any) error {
	if !e.IsValid() {
		return errNoMember(e.Type(), "enumeration")
	}
	return e.t.enum.meta.set(key, value)
}

func (en *enumDesc) nameOf(v reflect.Value) string {
	for i, x := range en.values {
		if x.Equal(v) {
			return en.names[i]
		}
	}
	return ""
}

func (en *enumDesc) byValue(v reflect.Value) (reflect.Value, bool) {
	for _, x := range en.values {
		if x.Equal(v) {
			return x, true
		}
	}
	return reflect.Value{}, false
}

func underlying(rt reflect.Type) reflect.Type {
	switch rt.Kind() {
	case reflect.Int:
		return reflect.TypeFor[int]()
	case reflect.Int8:
		return reflect.TypeFor[int8]()
	case reflect.Int16:
		return reflect.TypeFor[int16]()
	case reflect.Int32:
		return reflect.TypeFor[int32]()
	case reflect.Int64:
		return reflect.TypeFor[int64]()
	case reflect.Uint:
		return reflect.TypeFor[uint]()
	case reflect.Uint8:
		return reflect.TypeFor[uint8]()
	case reflect.Uint16:
		return reflect.TypeFor[uint16]()
	case reflect.Uint32:
		return reflect.TypeFor[uint32]()
	case reflect.Uint64:
		return reflect.TypeFor[uint64]()
	}
	return rt
}

// installEnum teaches the capability table to convert between an enum,
// its names and its underlying integer type, and to compare enum values.
func (r *Registry) installEnum(d *typeDesc) {
	rt, en := d.rt, d.enum
	ut := underlying(rt)
	strT := reflect.TypeFor[string]()

	// The integer link goes first so that numeric targets are reached
	// through the value, not through the name.
	r.tab.AddConverter(rt, ut, func(v reflect.Value) (reflect.Value, bool) {
		return v.Convert(ut), true
	})
	r.tab.AddConverter(ut, rt, func(v reflect.Value) (reflect.Value, bool) {
		return en.byValue(v.Convert(rt))
	})
	r.tab.AddConverter(rt, strT, func(v reflect.Value) (reflect.Value, bool) {
		n := en.nameOf(v)
		return reflect.ValueOf(n), n != ""
	})
	r.tab.AddConverter(strT, rt, func(v reflect.Value) (reflect.Value, bool) {
		i := en.index(v.String())
		if i < 0 {
			return reflect.Value{}, false
		}
		return en.values[i], true
	})
	r.tab.AddEqual(rt, func(a, b reflect.Value) bool { return a.Equal(b) })
	r.tab.AddLess(rt, func(a, b reflect.Value) bool {
		if a.CanInt() {
			return a.Int() < b.Int()
		}
		return a.Uint() < b.Uint()
	})
	r.log.Debug("enumeration installed", zap.String("type", d.name), zap.Int("values", len(en.names)))
}
