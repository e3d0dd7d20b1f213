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
	"iter"
	"reflect"
	"slices"

	"dirpx.dev/rtr/apis"
	uref "dirpx.dev/rtr/utils/reflect"
	"dirpx.dev/rtr/variant"
)

// Type is a handle to a type known to a Registry. The zero Type is
// invalid. Type values are comparable: equal handles denote the same type.
type Type struct {
	reg *Registry
	id  apis.TypeID
}

// IsValid reports whether t denotes a type the registry has observed.
func (t Type) IsValid() bool { return t.reg != nil && t.reg.arena.Type(t.id) != nil }

// IsRegistered reports whether a descriptor was registered for t.
func (t Type) IsRegistered() bool { return t.desc() != nil }

func (t Type) desc() *typeDesc {
	if t.reg == nil {
		return nil
	}
	return t.reg.desc(t.id)
}

// ID returns the TypeID of t.
func (t Type) ID() apis.TypeID { return t.id }

// Registry returns the registry t belongs to.
func (t Type) Registry() *Registry { return t.reg }

// Name returns the registered (or default) name of t.
func (t Type) Name() string {
	if t.reg == nil {
		return ""
	}
	return t.reg.arena.Name(t.id)
}

// String implements fmt.Stringer.
func (t Type) String() string { return t.Name() }

// ReflectType returns the Go type of t, or nil.
func (t Type) ReflectType() reflect.Type {
	if t.reg == nil {
		return nil
	}
	return t.reg.arena.Type(t.id)
}

// IsPointer reports whether t is a pointer type.
func (t Type) IsPointer() bool {
	rt := t.ReflectType()
	return rt != nil && rt.Kind() == reflect.Pointer
}

// IsClass reports whether t is a struct type.
func (t Type) IsClass() bool {
	rt := t.ReflectType()
	return rt != nil && rt.Kind() == reflect.Struct
}

// IsEnumeration reports whether t was registered with enumeration values.
func (t Type) IsEnumeration() bool {
	d := t.desc()
	return d != nil && d.enum != nil
}

// RawType returns t with pointer indirections removed, up to MaxUnwrap.
func (t Type) RawType() Type {
	rt := t.ReflectType()
	if rt == nil {
		return Type{}
	}
	raw, _, err := uref.RawType(rt, t.reg.cfg)
	if err != nil {
		return Type{}
	}
	return t.reg.TypeFor(raw)
}

// BaseClasses yields the registered bases of t, nearest first. The
// sequence is computed when iterated, so links to types registered in
// the meantime are included.
func (t Type) BaseClasses() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if t.reg == nil {
			return
		}
		t.reg.touch()
		t.reg.seq(t.reg.ancestors(t.id))(yield)
	}
}

// DerivedClasses yields the registered types deriving from t, nearest first.
func (t Type) DerivedClasses() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if t.reg == nil {
			return
		}
		t.reg.touch()
		t.reg.seq(t.reg.descendants(t.id))(yield)
	}
}

// IsDerivedFrom reports whether t is other or derives from it.
func (t Type) IsDerivedFrom(other Type) bool {
	if t.reg == nil || t.reg != other.reg {
		return false
	}
	return t.reg.IsDerivedFrom(t.id, other.id)
}

// lineage returns t's descriptor followed by those of its registered
// bases, nearest first.
func (t Type) lineage() []*typeDesc {
	d := t.desc()
	if d == nil {
		return nil
	}
	out := []*typeDesc{d}
	for _, id := range t.reg.ancestors(t.id) {
		if bd := t.reg.desc(id); bd != nil {
			out = append(out, bd)
		}
	}
	return out
}

func filterOf(filter []apis.Filter) apis.Filter {
	if len(filter) == 0 {
		return apis.DefaultFilter
	}
	var f apis.Filter
	for _, x := range filter {
		f |= x
	}
	return f
}

// Properties returns the properties of t matching filter (DefaultFilter
// when omitted): declared ones first, then inherited ones.
func (t Type) Properties(filter ...apis.Filter) []Property {
	t.touch()
	f := filterOf(filter)
	var out []Property
	for i, d := range t.lineage() {
		for _, p := range d.props {
			if f.Match(p.static, p.access, i > 0) {
				out = append(out, Property{reg: t.reg, d: p})
			}
		}
	}
	return out
}

// Property returns the property name of t or of its nearest base that
// declares it, subject to filter. It is invalid when none matches.
func (t Type) Property(name string, filter ...apis.Filter) Property {
	t.touch()
	f := filterOf(filter)
	for i, d := range t.lineage() {
		if p := d.property(name); p != nil && f.Match(p.static, p.access, i > 0) {
			return Property{reg: t.reg, d: p}
		}
	}
	return Property{}
}

// Methods returns the methods of t matching filter, declared ones first.
func (t Type) Methods(filter ...apis.Filter) []Method {
	t.touch()
	f := filterOf(filter)
	var out []Method
	for i, d := range t.lineage() {
		for _, m := range d.methods {
			if f.Match(m.static, m.access, i > 0) {
				out = append(out, Method{reg: t.reg, d: m})
			}
		}
	}
	return out
}

// Method returns the first method called name, or an invalid Method.
func (t Type) Method(name string, filter ...apis.Filter) Method {
	if ms := t.Overloads(name, filter...); len(ms) > 0 {
		return ms[0]
	}
	return Method{}
}

// Overloads returns every method called name. Declarations of the
// nearest type hide those of its bases.
func (t Type) Overloads(name string, filter ...apis.Filter) []Method {
	t.touch()
	f := filterOf(filter)
	for i, d := range t.lineage() {
		var out []Method
		for _, m := range d.methods {
			if m.name == name && f.Match(m.static, m.access, i > 0) {
				out = append(out, Method{reg: t.reg, d: m})
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// Constructors returns the constructors of t matching filter.
func (t Type) Constructors(filter ...apis.Filter) []Constructor {
	t.touch()
	d := t.desc()
	if d == nil {
		return nil
	}
	f := filterOf(filter)
	var out []Constructor
	for _, c := range d.ctors {
		if f.Match(true, c.access, false) || f.Match(false, c.access, false) {
			out = append(out, Constructor{reg: t.reg, d: c})
		}
	}
	return out
}

// Constructor returns the constructor whose parameter types are exactly
// params, or an invalid Constructor.
func (t Type) Constructor(params ...reflect.Type) Constructor {
	for _, c := range t.Constructors(apis.DefaultFilter | apis.FilterNonPublic) {
		ps := c.d.call.Params()
		if len(ps) != len(params) {
			continue
		}
		if slices.EqualFunc(ps, params, func(p invokeParam, rt reflect.Type) bool { return p.Type == rt }) {
			return c
		}
	}
	return Constructor{}
}

// Create constructs a t, choosing among its public constructors by args.
func (t Type) Create(args ...any) (variant.Variant, error) {
	d := t.desc()
	if d == nil || len(d.ctors) == 0 {
		return variant.Variant{}, errNoMember(t, "constructor")
	}
	var cands []*methodDesc
	for _, c := range t.Constructors() {
		cands = append(cands, c.d)
	}
	if len(cands) == 0 {
		return variant.Variant{}, errNoMember(t, "public constructor")
	}
	return callOverload(t.reg, cands, variant.Variant{}, t.reg.variants(args))
}

// Invoke calls method name on instance, choosing among its overloads by
// args. Static methods ignore instance.
func (t Type) Invoke(name string, instance any, args ...any) (variant.Variant, error) {
	ms := t.Overloads(name)
	if len(ms) == 0 {
		return variant.Variant{}, errNoMember(t, "method "+name)
	}
	cands := make([]*methodDesc, len(ms))
	for i, m := range ms {
		cands[i] = m.d
	}
	return callOverload(t.reg, cands, t.reg.tab.New(instance), t.reg.variants(args))
}

// Enumeration returns the enumeration of t, or an invalid Enumeration.
func (t Type) Enumeration() Enumeration {
	d := t.desc()
	if d == nil || d.enum == nil {
		return Enumeration{}
	}
	return Enumeration{reg: t.reg, t: d}
}

// Metadata returns the value stored under key, or the empty variant.
func (t Type) Metadata(key any) variant.Variant {
	d := t.desc()
	if d == nil {
		return variant.Variant{}
	}
	v, _ := d.meta.get(key)
	return t.reg.tab.New(v)
}

// MetadataKeys returns the metadata keys of t in insertion order.
func (t Type) MetadataKeys() []any {
	if d := t.desc(); d != nil {
		return d.meta.list()
	}
	return nil
}

// AddMetadata attaches key/value to a registered type. It is allowed
// after Freeze.
func (t Type) AddMetadata(key, value any) error {
	d := t.desc()
	if d == nil {
		return errNoMember(t, "descriptor")
	}
	return d.meta.set(key, value)
}

func (t Type) touch() {
	if t.reg != nil {
		t.reg.touch()
	}
}
