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

// Package registration is the declarative front end of the registry.
//
// A class is described by chaining calls on a ClassBuilder and installed
// by Done, which registers everything at once or nothing:
//
//	registration.Class[Point](reg, "Point").
//		Constructor(NewPoint, registration.WithParamNames("x", "y")).
//		Field("X", registration.WithName("x")).
//		Method("dist", Point.Dist).
//		Done()
//
// Builders record the first error and skip later steps; Done reports it.
package registration

import (
	"cmp"
	"fmt"
	"reflect"

	"dirpx.dev/rtr/registry"
	"dirpx.dev/rtr/variant"
)

// ClassBuilder collects the description of T.
type ClassBuilder[T any] struct {
	reg   *registry.Registry
	name  string
	steps []func(*registry.TypeBuilder) error
}

// Class starts the description of T under name (empty for the default
// name). Options contribute type metadata.
func Class[T any](reg *registry.Registry, name string, opts ...Option) *ClassBuilder[T] {
	c := &ClassBuilder[T]{reg: reg, name: name}
	if m := collect(opts); len(m.Metadata) > 0 {
		c.step(func(b *registry.TypeBuilder) error {
			for _, kv := range m.Metadata {
				if err := b.Metadata(kv.Key, kv.Value); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return c
}

func (c *ClassBuilder[T]) step(fn func(*registry.TypeBuilder) error) *ClassBuilder[T] {
	c.steps = append(c.steps, fn)
	return c
}

// Constructor adds a constructor function returning T or *T.
func (c *ClassBuilder[T]) Constructor(fn any, opts ...Option) *ClassBuilder[T] {
	m := collect(opts)
	return c.step(func(b *registry.TypeBuilder) error { return b.Constructor(fn, m.MemberOptions) })
}

// Field binds the exported struct field goField as a property.
func (c *ClassBuilder[T]) Field(goField string, opts ...Option) *ClassBuilder[T] {
	m := collect(opts)
	name := cmp.Or(m.name, goField)
	return c.step(func(b *registry.TypeBuilder) error { return b.Field(name, goField, m.MemberOptions) })
}

// Property binds name to a getter and a setter.
func (c *ClassBuilder[T]) Property(name string, getter, setter any, opts ...Option) *ClassBuilder[T] {
	m := collect(opts)
	return c.step(func(b *registry.TypeBuilder) error { return b.Property(name, getter, setter, m.MemberOptions) })
}

// ReadOnly binds name to a getter alone.
func (c *ClassBuilder[T]) ReadOnly(name string, getter any, opts ...Option) *ClassBuilder[T] {
	return c.Property(name, getter, nil, opts...)
}

// Method adds an instance method; fn takes the receiver first.
func (c *ClassBuilder[T]) Method(name string, fn any, opts ...Option) *ClassBuilder[T] {
	m := collect(opts)
	return c.step(func(b *registry.TypeBuilder) error { return b.Method(name, fn, m.MemberOptions) })
}

// StaticMethod adds a method without a receiver.
func (c *ClassBuilder[T]) StaticMethod(name string, fn any, opts ...Option) *ClassBuilder[T] {
	m := collect(opts)
	return c.step(func(b *registry.TypeBuilder) error { return b.StaticMethod(name, fn, m.MemberOptions) })
}

// BaseNamed declares the type registered as name as a base of T.
func (c *ClassBuilder[T]) BaseNamed(name string) *ClassBuilder[T] {
	return c.step(func(b *registry.TypeBuilder) error { return b.BaseNamed(name) })
}

// Metadata attaches a key/value pair to T.
func (c *ClassBuilder[T]) Metadata(key, value any) *ClassBuilder[T] {
	return c.step(func(b *registry.TypeBuilder) error { return b.Metadata(key, value) })
}

// Done registers T with everything described so far.
func (c *ClassBuilder[T]) Done() (registry.Type, error) {
	return c.reg.RegisterType(reflect.TypeFor[T](), c.name, func(b *registry.TypeBuilder) error {
		for _, s := range c.steps {
			if err := s(b); err != nil {
				return err
			}
		}
		return nil
	})
}

// MustDone is like Done but panics on error. It suits init functions
// whose registrations are fixed at compile time.
func (c *ClassBuilder[T]) MustDone() registry.Type {
	t, err := c.Done()
	if err != nil {
		panic(fmt.Sprintf("registration of %s: %v", reflect.TypeFor[T](), err))
	}
	return t
}

// Base declares B as a base of the class being built.
func Base[B, T any](c *ClassBuilder[T]) *ClassBuilder[T] {
	return c.step(func(b *registry.TypeBuilder) error { return b.Base(reflect.TypeFor[B]()) })
}

// EnumBuilder collects the values of the enumeration E.
type EnumBuilder[E any] struct {
	reg   *registry.Registry
	name  string
	steps []func(*registry.TypeBuilder) error
}

// Enum starts the description of the enumeration E under name.
func Enum[E any](reg *registry.Registry, name string, opts ...Option) *EnumBuilder[E] {
	e := &EnumBuilder[E]{reg: reg, name: name}
	for _, kv := range collect(opts).Metadata {
		e.Metadata(kv.Key, kv.Value)
	}
	return e
}

// Value adds the symbolic name for v.
func (e *EnumBuilder[E]) Value(name string, v E) *EnumBuilder[E] {
	e.steps = append(e.steps, func(b *registry.TypeBuilder) error { return b.EnumValue(name, v) })
	return e
}

// Metadata attaches a key/value pair to E.
func (e *EnumBuilder[E]) Metadata(key, value any) *EnumBuilder[E] {
	e.steps = append(e.steps, func(b *registry.TypeBuilder) error { return b.Metadata(key, value) })
	return e
}

// Done registers E.
func (e *EnumBuilder[E]) Done() (registry.Type, error) {
	return e.reg.RegisterType(reflect.TypeFor[E](), e.name, func(b *registry.TypeBuilder) error {
		for _, s := range e.steps {
			if err := s(b); err != nil {
				return err
			}
		}
		return nil
	})
}

// Function registers a free function.
func Function(reg *registry.Registry, name string, fn any, opts ...Option) (registry.Method, error) {
	return reg.RegisterFunction(name, fn, collect(opts).MemberOptions)
}

// Variable registers a global variable through a pointer to it.
func Variable(reg *registry.Registry, name string, ptr any, opts ...Option) (registry.Property, error) {
	return reg.RegisterVariable(name, ptr, collect(opts).MemberOptions)
}

// Comparable teaches reg's variants to compare T values with ==.
func Comparable[T comparable](reg *registry.Registry) {
	variant.RegisterEqual(reg.Table(), func(a, b T) bool { return a == b })
}

// Ordered teaches reg's variants to compare and order T values.
func Ordered[T cmp.Ordered](reg *registry.Registry) {
	Comparable[T](reg)
	variant.RegisterLess(reg.Table(), cmp.Less[T])
}

// Converter registers a conversion from F to T. fn reports false when
// a particular value cannot be converted.
func Converter[F, T any](reg *registry.Registry, fn func(F) (T, bool)) {
	variant.RegisterConverter(reg.Table(), fn)
}

// Printer registers how T values render as text.
func Printer[T any](reg *registry.Registry, fn func(T) string) {
	variant.RegisterPrinter(reg.Table(), fn)
}
