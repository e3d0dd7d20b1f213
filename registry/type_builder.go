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
)

// TypeBuilder stages the members of one type for RegisterType. Every
// method validates its input immediately; the first failure is also
// remembered and fails the whole registration.
type TypeBuilder struct {
	reg  *Registry
	id   apis.TypeID
	rt   reflect.Type
	name string
	desc *typeDesc

	bases      []apis.TypeID
	namedBases []string
	err        error
}

func newTypeBuilder(r *Registry, id apis.TypeID, rt reflect.Type, name string) *TypeBuilder {
	return &TypeBuilder{
		reg:  r,
		id:   id,
		rt:   rt,
		name: name,
		desc: &typeDesc{id: id, name: name, rt: rt, meta: &metadata{m: map[any]any{}}},
	}
}

// Type returns the Go type being registered.
func (b *TypeBuilder) Type() reflect.Type { return b.rt }

// Name returns the name being registered.
func (b *TypeBuilder) Name() string { return b.name }

// Registry returns the registry the type is being registered into.
func (b *TypeBuilder) Registry() *Registry { return b.reg }

func (b *TypeBuilder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return err
}

// Base declares rt as a direct base. The base does not need to be
// registered yet.
func (b *TypeBuilder) Base(rt reflect.Type) error {
	if rt == nil {
		return b.fail(fmt.Errorf("%w: nil base of %s", apis.ErrInvalidHierarchy, b.name))
	}
	id := b.reg.arena.ID(rt)
	if id == b.id {
		return b.fail(fmt.Errorf("%w: %s lists itself as a base", apis.ErrInvalidHierarchy, b.name))
	}
	b.bases = append(b.bases, id)
	return nil
}

// BaseNamed declares the type registered under name as a direct base.
// The link is resolved once that name is registered.
func (b *TypeBuilder) BaseNamed(name string) error {
	if name == "" || name == b.name {
		return b.fail(fmt.Errorf("%w: bad base name %q for %s", apis.ErrInvalidHierarchy, name, b.name))
	}
	b.namedBases = append(b.namedBases, name)
	return nil
}

// Constructor adds a constructor. fn returns the type (or a pointer to
// it), optionally followed by an error.
func (b *TypeBuilder) Constructor(fn any, opts MemberOptions) error {
	c, err := invoke.New(fn, invoke.Options{Policy: opts.Policy, Names: opts.ParamNames, Defaults: opts.Defaults})
	if err != nil {
		return b.fail(fmt.Errorf("constructor of %s: %w", b.name, err))
	}
	if res := c.Result(); res != b.rt && (res == nil || res.Kind() != reflect.Pointer || res.Elem() != b.rt) {
		return b.fail(fmt.Errorf("%w: constructor of %s returns %v", apis.ErrInvalidSignature, b.name, res))
	}
	md, err := newMethodDesc(b.name, c, true, b.id, opts)
	if err != nil {
		return b.fail(err)
	}
	b.desc.ctors = append(b.desc.ctors, md)
	return nil
}

// Field binds property name to the exported struct field goField,
// promoted fields included. A pointer-typed field needs PolicyCopy or
// PolicyReference.
func (b *TypeBuilder) Field(name, goField string, opts MemberOptions) error {
	if b.rt.Kind() != reflect.Struct {
		return b.fail(fmt.Errorf("%w: %s is not a struct", apis.ErrInvalidSignature, b.name))
	}
	sf, ok := b.rt.FieldByName(goField)
	if !ok || !sf.IsExported() {
		return b.fail(fmt.Errorf("%w: %s has no exported field %q", apis.ErrInvalidSignature, b.name, goField))
	}
	pd, err := b.newProperty(name, opts)
	if err != nil {
		return b.fail(err)
	}
	if err := checkPointerPolicy(sf.Type, opts.Policy); err != nil {
		return b.fail(fmt.Errorf("field %s.%s: %w", b.name, name, err))
	}
	pd.kind, pd.typ, pd.field = propField, sf.Type, sf.Index
	b.desc.props = append(b.desc.props, pd)
	return nil
}

// Property binds name to a getter and an optional setter. The getter
// takes the receiver (T or *T) and returns the value, the setter takes
// the receiver and the value. A nil setter makes the property read-only.
func (b *TypeBuilder) Property(name string, getter, setter any, opts MemberOptions) error {
	pd, err := b.newProperty(name, opts)
	if err != nil {
		return b.fail(err)
	}
	if opts.Policy == apis.PolicyReference {
		return b.fail(fmt.Errorf("%w: property %s.%s: reference policy needs a field binding", apis.ErrInvalidSignature, b.name, name))
	}
	get, err := invoke.New(getter, invoke.Options{Method: true, Policy: opts.Policy})
	if err != nil {
		return b.fail(fmt.Errorf("getter %s.%s: %w", b.name, name, err))
	}
	if len(get.Params()) != 0 || get.Result() == nil {
		return b.fail(fmt.Errorf("%w: getter %s.%s must take no arguments and return a value", apis.ErrInvalidSignature, b.name, name))
	}
	if err := b.checkReceiver(get.Receiver()); err != nil {
		return b.fail(err)
	}
	pd.kind, pd.typ, pd.getter = propAccessor, get.Result(), get
	if setter == nil {
		pd.readOnly = true
	} else {
		set, err := invoke.New(setter, invoke.Options{Method: true})
		if err != nil {
			return b.fail(fmt.Errorf("setter %s.%s: %w", b.name, name, err))
		}
		ps := set.Params()
		if len(ps) != 1 || ps[0].Type != pd.typ || set.Result() != nil {
			return b.fail(fmt.Errorf("%w: setter %s.%s must take one %s", apis.ErrInvalidSignature, b.name, name, pd.typ))
		}
		if err := b.checkReceiver(set.Receiver()); err != nil {
			return b.fail(err)
		}
		pd.setter = set
	}
	b.desc.props = append(b.desc.props, pd)
	return nil
}

func (b *TypeBuilder) newProperty(name string, opts MemberOptions) (*propertyDesc, error) {
	if b.desc.property(name) != nil {
		return nil, fmt.Errorf("%w: property %s.%s", apis.ErrDuplicateRegistration, b.name, name)
	}
	return newPropertyDesc(name, b.id, opts)
}

// Method adds an instance method. fn takes the receiver (T or *T) first,
// so method expressions such as (*T).Move fit directly. Methods sharing
// a name are overloads.
func (b *TypeBuilder) Method(name string, fn any, opts MemberOptions) error {
	c, err := invoke.New(fn, invoke.Options{Method: true, Policy: opts.Policy, Names: opts.ParamNames, Defaults: opts.Defaults})
	if err != nil {
		return b.fail(fmt.Errorf("method %s.%s: %w", b.name, name, err))
	}
	if err := b.checkReceiver(c.Receiver()); err != nil {
		return b.fail(err)
	}
	return b.addMethod(name, c, false, opts)
}

// StaticMethod adds a method that takes no receiver.
func (b *TypeBuilder) StaticMethod(name string, fn any, opts MemberOptions) error {
	c, err := invoke.New(fn, invoke.Options{Policy: opts.Policy, Names: opts.ParamNames, Defaults: opts.Defaults})
	if err != nil {
		return b.fail(fmt.Errorf("method %s.%s: %w", b.name, name, err))
	}
	return b.addMethod(name, c, true, opts)
}

func (b *TypeBuilder) addMethod(name string, c *invoke.Callable, static bool, opts MemberOptions) error {
	if name == "" {
		return b.fail(fmt.Errorf("%w: empty method name on %s", apis.ErrInvalidSignature, b.name))
	}
	md, err := newMethodDesc(name, c, static, b.id, opts)
	if err != nil {
		return b.fail(err)
	}
	b.desc.methods = append(b.desc.methods, md)
	return nil
}

func (b *TypeBuilder) checkReceiver(rt reflect.Type) error {
	if rt == b.rt || rt.Kind() == reflect.Pointer && rt.Elem() == b.rt {
		return nil
	}
	return fmt.Errorf("%w: receiver %s does not belong to %s", apis.ErrInvalidSignature, rt, b.name)
}

// EnumValue adds the symbolic name for v, which must be of the enum type
// itself. Names are unique; values may repeat.
func (b *TypeBuilder) EnumValue(name string, v any) error {
	switch b.rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return b.fail(fmt.Errorf("%w: enumeration %s needs an integer type", apis.ErrInvalidSignature, b.name))
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != b.rt {
		return b.fail(fmt.Errorf("%w: enumeration %s value %q has type %T", apis.ErrInvalidSignature, b.name, name, v))
	}
	if b.desc.enum == nil {
		b.desc.enum = &enumDesc{meta: &metadata{m: map[any]any{}}}
	}
	if name == "" {
		return b.fail(fmt.Errorf("%w: enumeration %s has an empty name", apis.ErrInvalidSignature, b.name))
	}
	if b.desc.enum.index(name) >= 0 {
		return b.fail(fmt.Errorf("%w: enumeration %s name %q", apis.ErrDuplicateRegistration, b.name, name))
	}
	b.desc.enum.names = append(b.desc.enum.names, name)
	b.desc.enum.values = append(b.desc.enum.values, rv)
	return nil
}

// Metadata attaches a key/value pair to the type. Keys must be comparable.
func (b *TypeBuilder) Metadata(k, v any) error {
	if err := b.desc.meta.set(k, v); err != nil {
		return b.fail(err)
	}
	return nil
}
