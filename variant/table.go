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
	"sync"
	"sync/atomic"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/ident"
	uref "dirpx.dev/rtr/utils/reflect"
)

// ConvertFunc converts v to a fixed target type. It returns false when
// the particular value cannot be represented (range, parse failure).
type ConvertFunc func(v reflect.Value) (reflect.Value, bool)

// CompareFunc compares two values of the same type.
type CompareFunc func(a, b reflect.Value) bool

// PrintFunc renders a value as text.
type PrintFunc func(v reflect.Value) string

// Hierarchy answers base/derived questions for upcasts. The registry
// implements it; a Table without one never upcasts.
type Hierarchy interface {
	IsDerivedFrom(derived, base apis.TypeID) bool
}

// Table is the capability table behind a family of Variants: it knows
// how to convert, compare and print the types of one registry.
type Table struct {
	arena *ident.Arena
	cfg   apis.Config
	h     Hierarchy

	mu    sync.RWMutex
	conv  map[apis.TypeID]map[apis.TypeID]ConvertFunc
	order map[apis.TypeID][]apis.TypeID // converter targets in registration order
	equal map[apis.TypeID]CompareFunc
	less  map[apis.TypeID]CompareFunc
	print map[apis.TypeID]PrintFunc

	gen   atomic.Uint64
	paths sync.Map // pathKey -> []apis.TypeID (nil: no path)
}

type pathKey struct {
	from, to apis.TypeID
	gen      uint64
}

// NewTable constructs a Table over arena. When cfg.IncludeBuiltins is set
// the standard scalar conversions and comparators are installed.
func NewTable(arena *ident.Arena, cfg apis.Config, h Hierarchy) *Table {
	t := &Table{
		arena: arena,
		cfg:   cfg,
		h:     h,
		conv:  make(map[apis.TypeID]map[apis.TypeID]ConvertFunc),
		order: make(map[apis.TypeID][]apis.TypeID),
		equal: make(map[apis.TypeID]CompareFunc),
		less:  make(map[apis.TypeID]CompareFunc),
		print: make(map[apis.TypeID]PrintFunc),
	}
	if cfg.IncludeBuiltins {
		installBuiltins(t)
	}
	return t
}

// Arena returns the identity arena the table resolves types with.
func (t *Table) Arena() *ident.Arena { return t.arena }

// New wraps v. A nil v yields the empty Variant; a Variant is returned as is.
// Pointers are recorded as Borrowed, everything else as Owned.
func (t *Table) New(v any) Variant {
	switch x := v.(type) {
	case nil:
		return Variant{}
	case Variant:
		return x
	case *Variant:
		if x == nil {
			return Variant{}
		}
		return *x
	}
	rv := reflect.ValueOf(v)
	own := apis.Owned
	if rv.Kind() == reflect.Pointer {
		own = apis.Borrowed
	}
	return t.FromValue(rv, own)
}

// Of wraps v keeping its static type T, so interface types survive.
func Of[T any](t *Table, v T) Variant {
	return t.FromValue(reflect.ValueOf(&v).Elem(), apis.Owned)
}

// FromValue wraps rv with the given ownership. An invalid rv yields the empty Variant.
func (t *Table) FromValue(rv reflect.Value, own apis.Ownership) Variant {
	if !rv.IsValid() {
		return Variant{}
	}
	return Variant{id: t.arena.ID(rv.Type()), val: rv, own: own, tab: t}
}

// AddConverter registers fn as the conversion from one type to another.
// A later registration for the same pair replaces the earlier one.
func (t *Table) AddConverter(from, to reflect.Type, fn ConvertFunc) {
	f, g := t.arena.ID(from), t.arena.ID(to)

	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.conv[f]
	if !ok {
		m = make(map[apis.TypeID]ConvertFunc)
		t.conv[f] = m
	}
	if _, exists := m[g]; !exists {
		t.order[f] = append(t.order[f], g)
	}
	m[g] = fn
	t.gen.Add(1)
	t.paths.Clear()
}

// AddEqual registers an equality comparator for rt.
func (t *Table) AddEqual(rt reflect.Type, fn CompareFunc) {
	id := t.arena.ID(rt)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.equal[id] = fn
}

// AddLess registers a less-than comparator for rt.
func (t *Table) AddLess(rt reflect.Type, fn CompareFunc) {
	id := t.arena.ID(rt)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.less[id] = fn
}

// AddPrinter registers a printer for rt.
func (t *Table) AddPrinter(rt reflect.Type, fn PrintFunc) {
	id := t.arena.ID(rt)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.print[id] = fn
}

// RegisterConverter registers a typed conversion from F to T.
func RegisterConverter[F, T any](t *Table, fn func(F) (T, bool)) {
	t.AddConverter(reflect.TypeFor[F](), reflect.TypeFor[T](), func(v reflect.Value) (reflect.Value, bool) {
		out, ok := fn(v.Interface().(F))
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(&out).Elem(), true
	})
}

// RegisterEqual registers a typed equality comparator for T.
func RegisterEqual[T any](t *Table, eq func(a, b T) bool) {
	t.AddEqual(reflect.TypeFor[T](), func(a, b reflect.Value) bool {
		return eq(a.Interface().(T), b.Interface().(T))
	})
}

// RegisterLess registers a typed less-than comparator for T.
func RegisterLess[T any](t *Table, less func(a, b T) bool) {
	t.AddLess(reflect.TypeFor[T](), func(a, b reflect.Value) bool {
		return less(a.Interface().(T), b.Interface().(T))
	})
}

// RegisterPrinter registers a typed printer for T.
func RegisterPrinter[T any](t *Table, p func(T) string) {
	t.AddPrinter(reflect.TypeFor[T](), func(v reflect.Value) string {
		return p(v.Interface().(T))
	})
}

// HasConverter reports whether a direct converter from -> to is registered.
func (t *Table) HasConverter(from, to apis.TypeID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.conv[from][to]
	return ok
}

// path returns the shortest converter chain from -> to, excluding from.
func (t *Table) path(from, to apis.TypeID) ([]apis.TypeID, bool) {
	key := pathKey{from: from, to: to, gen: t.gen.Load()}
	if p, ok := t.paths.Load(key); ok {
		ps := p.([]apis.TypeID)
		return ps, ps != nil
	}

	maxDepth := t.cfg.MaxConversionDepth
	if maxDepth <= 0 {
		maxDepth = 1
	}

	t.mu.RLock()
	prev := map[apis.TypeID]apis.TypeID{from: apis.InvalidTypeID}
	frontier := []apis.TypeID{from}
	found := false
	for depth := 0; depth < maxDepth && len(frontier) > 0 && !found; depth++ {
		var next []apis.TypeID
		for _, n := range frontier {
			for _, m := range t.order[n] {
				if _, seen := prev[m]; seen {
					continue
				}
				prev[m] = n
				if m == to {
					found = true
					break
				}
				next = append(next, m)
			}
			if found {
				break
			}
		}
		frontier = next
	}
	t.mu.RUnlock()

	var out []apis.TypeID
	if found {
		for n := to; n != from; n = prev[n] {
			out = append(out, n)
		}
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	t.paths.Store(key, out)
	return out, found
}

// convertTo runs the converter chain from v's type to target.
func (t *Table) convertTo(v Variant, target apis.TypeID) (reflect.Value, error) {
	hops, ok := t.path(v.id, target)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s -> %s", apis.ErrNoConversionPath, t.arena.Name(v.id), t.arena.Name(target))
	}

	t.mu.RLock()
	fns := make([]ConvertFunc, len(hops))
	from := v.id
	for i, h := range hops {
		fns[i] = t.conv[from][h]
		from = h
	}
	t.mu.RUnlock()

	cur := v.val
	for i, fn := range fns {
		out, ok := fn(cur)
		if !ok || !out.IsValid() {
			return reflect.Value{}, fmt.Errorf("%w: %v (%s) -> %s", apis.ErrConversion, cur.Interface(), cur.Type(), t.arena.Name(hops[i]))
		}
		cur = out
	}
	return cur, nil
}

// upcast reaches an embedded base of val's type when the hierarchy
// records the relation. Pointer targets need a pointer source.
func (t *Table) upcast(val reflect.Value, target reflect.Type) (reflect.Value, bool) {
	if t.h == nil || !val.IsValid() {
		return reflect.Value{}, false
	}
	src := val.Type()
	srcPtr := src.Kind() == reflect.Pointer
	if srcPtr {
		src = src.Elem()
	}
	dst := target
	dstPtr := dst.Kind() == reflect.Pointer
	if dstPtr {
		dst = dst.Elem()
	}
	if dstPtr && !srcPtr {
		return reflect.Value{}, false
	}
	sid, ok := t.arena.Lookup(src)
	if !ok {
		return reflect.Value{}, false
	}
	did, ok := t.arena.Lookup(dst)
	if !ok || !t.h.IsDerivedFrom(sid, did) {
		return reflect.Value{}, false
	}
	path, ok := uref.EmbeddedPath(src, dst)
	if !ok {
		return reflect.Value{}, false
	}
	f := uref.FieldByPath(val, path)
	if !f.IsValid() {
		return reflect.Value{}, false
	}
	if dstPtr {
		if !f.CanAddr() {
			return reflect.Value{}, false
		}
		return f.Addr(), true
	}
	return f, true
}

// Upcast exposes the embedded-base upcast used by conversions: it returns
// the base part of val when val's type is registered as derived from
// target's type.
func (t *Table) Upcast(val reflect.Value, target reflect.Type) (reflect.Value, bool) {
	return t.upcast(val, target)
}
