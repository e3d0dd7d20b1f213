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

// Package serial encodes values of registered types by walking their
// properties through the registry, so the wire layout follows the
// registration rather than Go struct tags.
//
// Values are first turned into a tree of map[string]any, []any and
// scalars; the JSON and CBOR codecs then encode that tree. Enumerations
// are written by name. A property whose Skip metadata is true is left out
// in both directions. Struct types that are not registered are rejected.
package serial

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/registry"
)

// Skip is the metadata key that excludes a property from encoding:
//
//	registration.Class[User](reg, "User").
//		Field("Password", registration.WithMetadata(serial.Skip, true))
const Skip = "serial.skip"

// maxDepth bounds nesting so that self-referencing values fail instead
// of recursing forever.
const maxDepth = 64

var (
	// ErrUnsupported is returned for values the tree encoding cannot represent.
	ErrUnsupported = errors.New("rtr(serial): unsupported value")
	// ErrShape is returned when decoded data does not fit the target type.
	ErrShape = errors.New("rtr(serial): data does not match target type")
	// ErrTooDeep is returned when nesting exceeds the supported depth.
	ErrTooDeep = errors.New("rtr(serial): value nested too deeply")
)

// instanceProps selects the public instance properties, inherited included.
const instanceProps = apis.FilterInstance | apis.FilterPublic

// Encode converts v into a tree of maps, slices and scalars.
func Encode(reg *registry.Registry, v any) (any, error) {
	return encode(reg, reflect.ValueOf(v), 0)
}

// Decode fills the value target points to from tree.
func Decode(reg *registry.Registry, tree any, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", apis.ErrInvalidInstance, target)
	}
	return decode(reg, tree, rv.Elem(), 0)
}

func encode(reg *registry.Registry, rv reflect.Value, depth int) (any, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, nil
	}

	t := reg.TypeFor(rv.Type())
	if t.IsEnumeration() {
		if name := t.Enumeration().NameOf(rv.Interface()); name != "" {
			return name, nil
		}
		return rv.Interface(), nil
	}

	switch rv.Kind() {
	case reflect.Struct:
		if !t.IsRegistered() {
			return nil, fmt.Errorf("%w: unregistered struct %s", ErrUnsupported, rv.Type())
		}
		obj := addressable(rv).Interface()
		out := make(map[string]any)
		for _, p := range t.Properties(instanceProps) {
			if skipped(p) {
				continue
			}
			val, err := p.Get(obj)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name(), p.Name(), err)
			}
			enc, err := encode(reg, val.Value(), depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name(), p.Name(), err)
			}
			out[p.Name()] = enc
		}
		return out, nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return nil, nil
			}
			if rv.Type().Elem().Kind() == reflect.Uint8 {
				return rv.Bytes(), nil
			}
		}
		out := make([]any, rv.Len())
		for i := range out {
			enc, err := encode(reg, rv.Index(i), depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = enc
		}
		return out, nil

	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := mapKey(reg, iter.Key())
			if !ok {
				return nil, fmt.Errorf("%w: map key of type %s", ErrUnsupported, rv.Type().Key())
			}
			enc, err := encode(reg, iter.Value(), depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", key, err)
			}
			out[key] = enc
		}
		return out, nil

	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, rv.Type())
	}
	return rv.Interface(), nil
}

func decode(reg *registry.Registry, tree any, out reflect.Value, depth int) error {
	if depth > maxDepth {
		return ErrTooDeep
	}
	if tree == nil {
		out.SetZero()
		return nil
	}

	rt := out.Type()
	switch rt.Kind() {
	case reflect.Pointer:
		if out.IsNil() {
			out.Set(reflect.New(rt.Elem()))
		}
		return decode(reg, tree, out.Elem(), depth+1)
	case reflect.Interface:
		v := reflect.ValueOf(tree)
		if !v.Type().AssignableTo(rt) {
			return fmt.Errorf("%w: %T into %s", ErrShape, tree, rt)
		}
		out.Set(v)
		return nil
	}

	t := reg.TypeFor(rt)
	if name, ok := tree.(string); ok && t.IsEnumeration() {
		v := t.Enumeration().Value(name)
		if !v.IsValid() {
			return fmt.Errorf("%w: %q is not a %s", ErrShape, name, t.Name())
		}
		out.Set(v.Value())
		return nil
	}

	switch rt.Kind() {
	case reflect.Struct:
		if !t.IsRegistered() {
			return fmt.Errorf("%w: unregistered struct %s", ErrUnsupported, rt)
		}
		m, ok := tree.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %T into %s", ErrShape, tree, t.Name())
		}
		obj := out.Addr().Interface()
		for _, p := range t.Properties(instanceProps) {
			raw, present := m[p.Name()]
			if !present || p.IsReadOnly() || skipped(p) {
				continue
			}
			val := reflect.New(p.Type().ReflectType()).Elem()
			if err := decode(reg, raw, val, depth+1); err != nil {
				return fmt.Errorf("%s.%s: %w", t.Name(), p.Name(), err)
			}
			if err := p.Set(obj, val.Interface()); err != nil {
				return fmt.Errorf("%s.%s: %w", t.Name(), p.Name(), err)
			}
		}
		return nil

	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			switch b := tree.(type) {
			case []byte:
				out.SetBytes(append([]byte(nil), b...))
				return nil
			case string:
				raw, err := base64.StdEncoding.DecodeString(b)
				if err != nil {
					return fmt.Errorf("%w: %v", ErrShape, err)
				}
				out.SetBytes(raw)
				return nil
			}
		}
		items, ok := tree.([]any)
		if !ok {
			return fmt.Errorf("%w: %T into %s", ErrShape, tree, rt)
		}
		s := reflect.MakeSlice(rt, len(items), len(items))
		for i, item := range items {
			if err := decode(reg, item, s.Index(i), depth+1); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		out.Set(s)
		return nil

	case reflect.Array:
		items, ok := tree.([]any)
		if !ok || len(items) != rt.Len() {
			return fmt.Errorf("%w: %T into %s", ErrShape, tree, rt)
		}
		for i, item := range items {
			if err := decode(reg, item, out.Index(i), depth+1); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil

	case reflect.Map:
		m, ok := tree.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %T into %s", ErrShape, tree, rt)
		}
		mv := reflect.MakeMapWithSize(rt, len(m))
		for k, raw := range m {
			var key reflect.Value
			if rt.Key().Kind() == reflect.String {
				key = reflect.ValueOf(k).Convert(rt.Key())
			} else {
				var err error
				if key, err = reg.Variant(k).As(rt.Key()); err != nil {
					return fmt.Errorf("[%q]: %w", k, err)
				}
			}
			val := reflect.New(rt.Elem()).Elem()
			if err := decode(reg, raw, val, depth+1); err != nil {
				return fmt.Errorf("[%q]: %w", k, err)
			}
			mv.SetMapIndex(key, val)
		}
		out.Set(mv)
		return nil
	}

	v, err := reg.Variant(tree).As(rt)
	if err != nil {
		return err
	}
	out.Set(v)
	return nil
}

// skipped reports whether p carries a true Skip metadata entry.
func skipped(p registry.Property) bool {
	skip, ok := p.Metadata(Skip).ToBool()
	return ok && skip
}

// mapKey renders a map key as a string. String kinds are taken as is;
// anything else needs a conversion to string.
func mapKey(reg *registry.Registry, k reflect.Value) (string, bool) {
	if k.Kind() == reflect.String {
		return k.String(), true
	}
	return reg.Variant(k.Interface()).ToString()
}

// addressable returns a pointer to rv so that getters with pointer
// receivers can run. Unaddressable values are copied first.
func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv.Addr()
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p
}
