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

type invokeParam = invoke.Param

// ParameterInfo describes one parameter of a method or constructor.
type ParameterInfo struct {
	Index      int
	Name       string
	Type       Type
	HasDefault bool
	Default    variant.Variant
}

func parameters(r *Registry, c *invoke.Callable) []ParameterInfo {
	ps := c.Params()
	out := make([]ParameterInfo, len(ps))
	for i, p := range ps {
		out[i] = ParameterInfo{Index: p.Index, Name: p.Name, Type: r.TypeFor(p.Type), HasDefault: p.HasDefault}
		if p.HasDefault {
			out[i].Default = r.tab.FromValue(p.Default, apis.Owned)
		}
	}
	return out
}

// Method is a handle to a method of a type or a free function.
// The zero Method is invalid.
type Method struct {
	reg *Registry
	d   *methodDesc
}

// IsValid reports whether m denotes a method.
func (m Method) IsValid() bool { return m.d != nil }

// Name returns the method name.
func (m Method) Name() string {
	if m.d == nil {
		return ""
	}
	return m.d.name
}

// IsStatic reports whether m needs no instance.
func (m Method) IsStatic() bool { return m.d != nil && m.d.static }

// Access returns the declared access level.
func (m Method) Access() apis.AccessLevel {
	if m.d == nil {
		return apis.Public
	}
	return m.d.access
}

// Policy returns the return policy.
func (m Method) Policy() apis.Policy {
	if m.d == nil {
		return apis.PolicyDefault
	}
	return m.d.call.Policy()
}

// DeclaringType returns the type that declares m, invalid for free functions.
func (m Method) DeclaringType() Type {
	if m.d == nil || !m.d.owner.IsValid() {
		return Type{}
	}
	return Type{reg: m.reg, id: m.d.owner}
}

// Parameters returns the declared parameters, receiver excluded.
func (m Method) Parameters() []ParameterInfo {
	if m.d == nil {
		return nil
	}
	return parameters(m.reg, m.d.call)
}

// ReturnType returns the result type, or an invalid Type for none.
func (m Method) ReturnType() Type {
	if m.d == nil || m.d.call.Result() == nil {
		return Type{}
	}
	return m.reg.TypeFor(m.d.call.Result())
}

// Signature renders the method as name(param, ...) for diagnostics.
func (m Method) Signature() string {
	if m.d == nil {
		return ""
	}
	return signature(m.reg, m.d.name, m.d.call)
}

// Metadata returns the value stored under key, or the empty variant.
func (m Method) Metadata(key any) variant.Variant {
	if m.d == nil {
		return variant.Variant{}
	}
	v, _ := m.d.meta.get(key)
	return m.reg.tab.New(v)
}

// Invoke calls m on instance with args. Static methods and free
// functions ignore instance.
func (m Method) Invoke(instance any, args ...any) (variant.Variant, error) {
	if m.d == nil {
		return variant.Variant{}, fmt.Errorf("%w: invalid method", ErrNotFound)
	}
	var recv reflect.Value
	if !m.d.static {
		var err error
		if recv, err = invoke.Receiver(m.reg.tab, m.reg.tab.New(instance), m.d.call.Receiver()); err != nil {
			return variant.Variant{}, err
		}
	}
	return m.d.call.Call(m.reg.tab, recv, m.reg.variants(args))
}

// Constructor is a handle to a constructor. The zero Constructor is invalid.
type Constructor struct {
	reg *Registry
	d   *methodDesc
}

// IsValid reports whether c denotes a constructor.
func (c Constructor) IsValid() bool { return c.d != nil }

// DeclaringType returns the constructed type.
func (c Constructor) DeclaringType() Type {
	if c.d == nil {
		return Type{}
	}
	return Type{reg: c.reg, id: c.d.owner}
}

// Access returns the declared access level.
func (c Constructor) Access() apis.AccessLevel {
	if c.d == nil {
		return apis.Public
	}
	return c.d.access
}

// Policy returns the construction policy.
func (c Constructor) Policy() apis.Policy {
	if c.d == nil {
		return apis.PolicyDefault
	}
	return c.d.call.Policy()
}

// Parameters returns the declared parameters.
func (c Constructor) Parameters() []ParameterInfo {
	if c.d == nil {
		return nil
	}
	return parameters(c.reg, c.d.call)
}

// Signature renders the constructor for diagnostics.
func (c Constructor) Signature() string {
	if c.d == nil {
		return ""
	}
	return signature(c.reg, c.d.name, c.d.call)
}

// Metadata returns the value stored under key, or the empty variant.
func (c Constructor) Metadata(key any) variant.Variant {
	if c.d == nil {
		return variant.Variant{}
	}
	v, _ := c.d.meta.get(key)
	return c.reg.tab.New(v)
}

// Invoke constructs a value from args.
func (c Constructor) Invoke(args ...any) (variant.Variant, error) {
	if c.d == nil {
		return variant.Variant{}, fmt.Errorf("%w: invalid constructor", ErrNotFound)
	}
	return c.d.call.Call(c.reg.tab, reflect.Value{}, c.reg.variants(args))
}

func signature(r *Registry, name string, c *invoke.Callable) string {
	s := name + "("
	for i, p := range c.Params() {
		if i > 0 {
			s += ", "
		}
		s += r.arena.Name(r.arena.ID(p.Type))
		if p.Name != "" {
			s += " " + p.Name
		}
	}
	return s + ")"
}

func errNoMember(t Type, what string) error {
	return fmt.Errorf("%w: %s has no %s", ErrNotFound, t.Name(), what)
}
