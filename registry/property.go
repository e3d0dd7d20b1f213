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
	"fmt"
	"reflect"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/invoke"
	"dirpx.dev/rtr/variant"
)

// Property is a handle to a property of a type or a global variable.
// The zero Property is invalid.
type Property struct {
	reg *Registry
	d   *propertyDesc
}

// IsValid reports whether p denotes a property.
func (p Property) IsValid() bool { return p.d != nil }

// Name returns the property name.
func (p Property) Name() string {
	if p.d == nil {
		return ""
	}
	return p.d.name
}

// Type returns the value type of the property.
func (p Property) Type() Type {
	if p.d == nil {
		return Type{}
	}
	return p.reg.TypeFor(p.d.typ)
}

// DeclaringType returns the type that declares p, invalid for globals.
func (p Property) DeclaringType() Type {
	if p.d == nil || !p.d.owner.IsValid() {
		return Type{}
	}
	return Type{reg: p.reg, id: p.d.owner}
}

// IsReadOnly reports whether Set always fails.
func (p Property) IsReadOnly() bool { return p.d != nil && p.d.readOnly }

// IsStatic reports whether p needs no instance.
func (p Property) IsStatic() bool { return p.d != nil && p.d.static }

// Access returns the declared access level.
func (p Property) Access() apis.AccessLevel {
	if p.d == nil {
		return apis.Public
	}
	return p.d.access
}

// Policy returns the getter policy.
func (p Property) Policy() apis.Policy {
	if p.d == nil {
		return apis.PolicyDefault
	}
	return p.d.policy
}

// Metadata returns the value stored under key, or the empty variant.
func (p Property) Metadata(key any) variant.Variant {
	if p.d == nil {
		return variant.Variant{}
	}
	v, _ := p.d.meta.get(key)
	return p.reg.tab.New(v)
}

// AddMetadata attaches key/value to p. It is allowed after Freeze.
func (p Property) AddMetadata(key, value any) error {
	if p.d == nil {
		return fmt.Errorf("%w: invalid property", ErrNotFound)
	}
	return p.d.meta.set(key, value)
}

// Get reads the property from instance, which may be a value, a pointer
// or a Variant. Globals ignore instance. With PolicyReference the result
// is a borrowed pointer to the field, which needs a pointer instance.
func (p Property) Get(instance any) (variant.Variant, error) {
	if p.d == nil {
		return variant.Variant{}, fmt.Errorf("%w: invalid property", ErrNotFound)
	}
	tab := p.reg.tab
	switch p.d.kind {
	case propVariable:
		if p.d.policy == apis.PolicyReference {
			return tab.FromValue(p.d.ptr, apis.Borrowed), nil
		}
		return copyOut(tab, p.d.ptr.Elem()), nil

	case propAccessor:
		recv, err := invoke.Receiver(tab, tab.New(instance), p.d.getter.Receiver())
		if err != nil {
			return variant.Variant{}, err
		}
		return p.d.getter.CallBound(tab, recv, nil)

	default:
		owner := p.reg.arena.Type(p.d.owner)
		if p.d.policy == apis.PolicyReference {
			recv, err := invoke.Receiver(tab, tab.New(instance), reflect.PointerTo(owner))
			if err != nil {
				return variant.Variant{}, err
			}
			f, err := recv.Elem().FieldByIndexErr(p.d.field)
			if err != nil {
				return variant.Variant{}, fmt.Errorf("%w: %v", apis.ErrInvalidInstance, err)
			}
			return tab.FromValue(f.Addr(), apis.Borrowed), nil
		}
		recv, err := invoke.Receiver(tab, tab.New(instance), owner)
		if err != nil {
			return variant.Variant{}, err
		}
		f, err := recv.FieldByIndexErr(p.d.field)
		if err != nil {
			return variant.Variant{}, fmt.Errorf("%w: %v", apis.ErrInvalidInstance, err)
		}
		return copyOut(tab, f), nil
	}
}

// copyOut reads v by value. Pointers are dereferenced and the pointee is
// copied; a nil pointer reads as the empty variant.
func copyOut(tab *variant.Table, v reflect.Value) variant.Variant {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return variant.Variant{}
		}
		v = v.Elem()
	}
	return tab.New(v.Interface())
}

// Set writes value into the property of instance. Field properties need
// a pointer instance. value is converted to the property type like a
// method argument; a mismatch is reported at position 0.
func (p Property) Set(instance, value any) error {
	if p.d == nil {
		return fmt.Errorf("%w: invalid property", ErrNotFound)
	}
	if p.d.readOnly {
		return fmt.Errorf("%w: %s", apis.ErrReadOnly, p.d.name)
	}
	tab := p.reg.tab
	arg := tab.New(value)

	switch p.d.kind {
	case propVariable:
		v, err := p.convert(arg)
		if err != nil {
			return err
		}
		p.d.ptr.Elem().Set(v)
		return nil

	case propAccessor:
		recv, err := invoke.Receiver(tab, tab.New(instance), p.d.setter.Receiver())
		if err != nil {
			return err
		}
		_, err = p.d.setter.Call(tab, recv, []variant.Variant{arg})
		return err

	default:
		owner := p.reg.arena.Type(p.d.owner)
		recv, err := invoke.Receiver(tab, tab.New(instance), reflect.PointerTo(owner))
		if err != nil {
			return err
		}
		f, err := recv.Elem().FieldByIndexErr(p.d.field)
		if err != nil {
			return fmt.Errorf("%w: %v", apis.ErrInvalidInstance, err)
		}
		v, err := p.convert(arg)
		if err != nil {
			return err
		}
		f.Set(v)
		return nil
	}
}

func (p Property) convert(arg variant.Variant) (reflect.Value, error) {
	v, _, ok := invoke.Argument(arg, p.d.typ)
	if !ok {
		got := "nil"
		if arg.IsValid() {
			got = arg.TypeName()
		}
		return reflect.Value{}, &apis.ArgumentMismatchError{Position: 0, Expected: p.reg.arena.Name(p.reg.arena.ID(p.d.typ)), Got: got}
	}
	return v, nil
}
