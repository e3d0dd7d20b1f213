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
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/config"
	"dirpx.dev/rtr/ident"
	"dirpx.dev/rtr/invoke"
	"dirpx.dev/rtr/variant"
)

// ErrNotFound is returned by the Invoke and Create shortcuts when the
// named member does not exist. Plain lookups report absence through
// invalid handles instead.
var ErrNotFound = errors.New("rtr(registry): no such member")

// Registry holds the type descriptors of one program (or one test).
// Queries are safe for concurrent use; registration is expected to
// finish before concurrent queries start.
type Registry struct {
	id    uuid.UUID
	cfg   apis.Config
	log   *zap.Logger
	arena *ident.Arena
	tab   *variant.Table

	frozen atomic.Bool

	// mu guards every map below.
	mu     sync.RWMutex
	types  map[apis.TypeID]*typeDesc
	byName map[string]apis.TypeID
	order  []apis.TypeID

	funcs     map[string][]*methodDesc
	funcOrder []string
	vars      map[string]*propertyDesc
	varOrder  []string

	graph hierarchy
}

// New constructs an empty Registry configured by cfg. Zero numeric knobs
// fall back to the config package defaults.
func New(cfg apis.Config) *Registry { return NewWithResolver(cfg, nil) }

// NewWithResolver is New with the resolver that names unregistered
// types. A nil res selects resolver.Default().
func NewWithResolver(cfg apis.Config, res apis.Resolver) *Registry {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	if cfg.MaxConversionDepth <= 0 {
		cfg.MaxConversionDepth = config.DefaultMaxConversionDepth
	}
	r := &Registry{
		id:     uuid.New(),
		cfg:    cfg,
		types:  make(map[apis.TypeID]*typeDesc),
		byName: make(map[string]apis.TypeID),
		funcs:  make(map[string][]*methodDesc),
		vars:   make(map[string]*propertyDesc),
		graph:  newHierarchy(),
	}
	r.log = cfg.Log().With(zap.Stringer("registry", r.id))
	r.arena = ident.New(cfg, res)
	r.tab = variant.NewTable(r.arena, cfg, r)
	r.log.Debug("registry created",
		zap.Stringer("identity", cfg.Identity),
		zap.Bool("builtins", cfg.IncludeBuiltins))
	return r
}

// ID returns the unique id of this registry instance.
func (r *Registry) ID() uuid.UUID { return r.id }

// Config returns the configuration the registry was built with.
func (r *Registry) Config() apis.Config { return r.cfg }

// Table returns the capability table of this registry's variants.
func (r *Registry) Table() *variant.Table { return r.tab }

// Arena returns the TypeID arena of this registry.
func (r *Registry) Arena() *ident.Arena { return r.arena }

// Logger returns the registry's logger.
func (r *Registry) Logger() *zap.Logger { return r.log }

// Variant wraps v as a variant of this registry.
func (r *Registry) Variant(v any) variant.Variant { return r.tab.New(v) }

// Freeze ends the registration phase. Later registrations fail with
// ErrFrozen; metadata can still be attached.
func (r *Registry) Freeze() {
	if r.frozen.CompareAndSwap(false, true) {
		r.log.Debug("registry frozen", zap.Int("types", r.Count()))
	}
}

// Frozen reports whether the registry is frozen.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// touch marks a query; with FreezeOnQuery the first query freezes.
func (r *Registry) touch() {
	if r.cfg.FreezeOnQuery && !r.frozen.Load() {
		r.Freeze()
	}
}

// Count returns the number of registered types.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// RegisterType installs the descriptor of rt under name. build stages
// members on a TypeBuilder; nothing is installed when it returns an error.
// An empty name selects the type's default name.
//
// It fails with ErrDuplicateRegistration when rt or name is already
// registered, ErrInvalidHierarchy when a base would close a cycle and
// ErrFrozen after Freeze. A failed call leaves the registry unchanged.
func (r *Registry) RegisterType(rt reflect.Type, name string, build func(*TypeBuilder) error) (Type, error) {
	if rt == nil {
		return Type{}, fmt.Errorf("%w: nil type", apis.ErrInvalidSignature)
	}
	if r.frozen.Load() {
		return Type{}, r.reject(rt, name, apis.ErrFrozen)
	}
	id := r.arena.ID(rt)
	if name == "" {
		name = r.arena.Name(id)
	}

	b := newTypeBuilder(r, id, rt, name)
	if build != nil {
		if err := build(b); err != nil {
			return Type{}, r.reject(rt, name, err)
		}
	}
	if b.err != nil {
		return Type{}, r.reject(rt, name, b.err)
	}
	if text, ok := describe(rt); ok {
		if _, set := b.desc.meta.get(apis.MetaDescription); !set {
			_ = b.desc.meta.set(apis.MetaDescription, text)
		}
	}

	r.mu.Lock()
	if err := r.admitLocked(b); err != nil {
		r.mu.Unlock()
		return Type{}, r.reject(rt, name, err)
	}
	r.commitLocked(b)
	r.mu.Unlock()

	if b.desc.enum != nil {
		r.installEnum(b.desc)
	}
	r.log.Debug("type registered",
		zap.String("type", name),
		zap.Uint32("id", uint32(id)),
		zap.Int("properties", len(b.desc.props)),
		zap.Int("methods", len(b.desc.methods)),
		zap.Int("constructors", len(b.desc.ctors)),
		zap.Int("bases", len(b.bases)+len(b.namedBases)))
	return Type{reg: r, id: id}, nil
}

// admitLocked runs every check that can reject b. r.mu must be held.
func (r *Registry) admitLocked(b *TypeBuilder) error {
	if r.frozen.Load() {
		return apis.ErrFrozen
	}
	if old, ok := r.types[b.id]; ok {
		return fmt.Errorf("%w: type %s already registered as %q", apis.ErrDuplicateRegistration, b.rt, old.name)
	}
	if _, ok := r.byName[b.name]; ok {
		return fmt.Errorf("%w: name %q", apis.ErrDuplicateRegistration, b.name)
	}
	if owner, ok := r.arena.ByName(b.name); ok && owner != b.id {
		return fmt.Errorf("%w: name %q belongs to %s", apis.ErrDuplicateRegistration, b.name, r.arena.Type(owner))
	}
	return r.graph.check(b.id, b.name, b.bases, b.namedBases, r.byName)
}

// commitLocked installs a checked builder. r.mu must be held.
func (r *Registry) commitLocked(b *TypeBuilder) {
	// admitLocked verified the name is free or already ours.
	_ = r.arena.Rename(b.id, b.name)
	r.types[b.id] = b.desc
	r.byName[b.name] = b.id
	r.order = append(r.order, b.id)
	r.graph.add(b.id, b.bases, b.namedBases)
}

var describerType = reflect.TypeFor[apis.Describer]()

// describe returns the description of rt when rt or *rt implements
// apis.Describer. The method is called on a fresh zero value.
func describe(rt reflect.Type) (string, bool) {
	if rt.Kind() == reflect.Interface {
		return "", false
	}
	var d apis.Describer
	switch {
	case rt.Kind() == reflect.Pointer && rt.Implements(describerType):
		d = reflect.New(rt.Elem()).Interface().(apis.Describer)
	case reflect.PointerTo(rt).Implements(describerType):
		d = reflect.New(rt).Interface().(apis.Describer)
	default:
		return "", false
	}
	text := d.TypeDescription()
	return text, text != ""
}

func (r *Registry) reject(rt reflect.Type, name string, err error) error {
	r.log.Warn("registration rejected",
		zap.String("type", name),
		zap.Stringer("rtype", rt),
		zap.Error(err))
	return err
}

// RegisterFunction adds a free function under name. Functions sharing a
// name are overloads.
func (r *Registry) RegisterFunction(name string, fn any, opts MemberOptions) (Method, error) {
	if r.frozen.Load() {
		return Method{}, r.rejectMember(name, apis.ErrFrozen)
	}
	c, err := invoke.New(fn, invoke.Options{Policy: opts.Policy, Names: opts.ParamNames, Defaults: opts.Defaults})
	if err != nil {
		return Method{}, r.rejectMember(name, err)
	}
	md, err := newMethodDesc(name, c, true, apis.InvalidTypeID, opts)
	if err != nil {
		return Method{}, r.rejectMember(name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return Method{}, r.rejectMember(name, apis.ErrFrozen)
	}
	if _, ok := r.funcs[name]; !ok {
		r.funcOrder = append(r.funcOrder, name)
	}
	r.funcs[name] = append(r.funcs[name], md)
	r.log.Debug("function registered", zap.String("function", name))
	return Method{reg: r, d: md}, nil
}

// RegisterVariable adds a global variable bound to ptr, which must be a
// non-nil pointer. Variable names are unique.
func (r *Registry) RegisterVariable(name string, ptr any, opts MemberOptions) (Property, error) {
	if r.frozen.Load() {
		return Property{}, r.rejectMember(name, apis.ErrFrozen)
	}
	pv := reflect.ValueOf(ptr)
	if !pv.IsValid() || pv.Kind() != reflect.Pointer || pv.IsNil() {
		return Property{}, r.rejectMember(name, fmt.Errorf("%w: variable %q needs a non-nil pointer, got %T", apis.ErrInvalidSignature, name, ptr))
	}
	pd, err := newPropertyDesc(name, apis.InvalidTypeID, opts)
	if err != nil {
		return Property{}, r.rejectMember(name, err)
	}
	if err := checkPointerPolicy(pv.Type().Elem(), opts.Policy); err != nil {
		return Property{}, r.rejectMember(name, fmt.Errorf("variable %q: %w", name, err))
	}
	pd.kind, pd.static, pd.ptr, pd.typ = propVariable, true, pv, pv.Type().Elem()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return Property{}, r.rejectMember(name, apis.ErrFrozen)
	}
	if _, ok := r.vars[name]; ok {
		return Property{}, r.rejectMember(name, fmt.Errorf("%w: variable %q", apis.ErrDuplicateRegistration, name))
	}
	r.vars[name] = pd
	r.varOrder = append(r.varOrder, name)
	r.log.Debug("variable registered", zap.String("variable", name))
	return Property{reg: r, d: pd}, nil
}

func (r *Registry) rejectMember(name string, err error) error {
	r.log.Warn("registration rejected", zap.String("member", name), zap.Error(err))
	return err
}

// TypeByName returns the type registered (or observed) under name.
// An unknown name yields an invalid Type.
func (r *Registry) TypeByName(name string) Type {
	r.touch()
	r.mu.RLock()
	id, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		if id, ok = r.arena.ByName(name); !ok {
			return Type{}
		}
	}
	return Type{reg: r, id: id}
}

// TypeOf returns the type of v. A Variant yields the type it holds;
// nil yields an invalid Type.
func (r *Registry) TypeOf(v any) Type {
	r.touch()
	switch x := v.(type) {
	case nil:
		return Type{}
	case variant.Variant:
		if !x.IsValid() {
			return Type{}
		}
		return Type{reg: r, id: x.TypeID()}
	}
	return r.TypeFor(reflect.TypeOf(v))
}

// TypeFor returns the type of rt, observing it if it is new.
func (r *Registry) TypeFor(rt reflect.Type) Type {
	r.touch()
	id := r.arena.ID(rt)
	if !id.IsValid() {
		return Type{}
	}
	return Type{reg: r, id: id}
}

// TypeByID returns the type in slot id, or an invalid Type.
func (r *Registry) TypeByID(id apis.TypeID) Type {
	r.touch()
	if r.arena.Type(id) == nil {
		return Type{}
	}
	return Type{reg: r, id: id}
}

// Get returns the Type of T in r.
func Get[T any](r *Registry) Type { return r.TypeFor(reflect.TypeFor[T]()) }

// Types returns the registered types in registration order.
func (r *Registry) Types() []Type {
	r.touch()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Type, len(r.order))
	for i, id := range r.order {
		out[i] = Type{reg: r, id: id}
	}
	return out
}

// Method returns the first registered free function named name, or an
// invalid Method.
func (r *Registry) Method(name string) Method {
	r.touch()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fs := r.funcs[name]; len(fs) > 0 {
		return Method{reg: r, d: fs[0]}
	}
	return Method{}
}

// Methods returns every free function in registration order.
func (r *Registry) Methods() []Method {
	r.touch()
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Method
	for _, n := range r.funcOrder {
		for _, d := range r.funcs[n] {
			out = append(out, Method{reg: r, d: d})
		}
	}
	return out
}

// Property returns the global variable named name, or an invalid Property.
func (r *Registry) Property(name string) Property {
	r.touch()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.vars[name]; ok {
		return Property{reg: r, d: d}
	}
	return Property{}
}

// Properties returns every global variable in registration order.
func (r *Registry) Properties() []Property {
	r.touch()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Property, 0, len(r.varOrder))
	for _, n := range r.varOrder {
		out = append(out, Property{reg: r, d: r.vars[n]})
	}
	return out
}

// Invoke calls the free function name, resolving overloads by args.
// An unknown name fails with ErrNotFound.
func (r *Registry) Invoke(name string, args ...any) (variant.Variant, error) {
	r.touch()
	r.mu.RLock()
	fs := slices.Clone(r.funcs[name])
	r.mu.RUnlock()
	if len(fs) == 0 {
		return variant.Variant{}, fmt.Errorf("%w: function %q", ErrNotFound, name)
	}
	return callOverload(r, fs, variant.Variant{}, r.variants(args))
}

func (r *Registry) variants(args []any) []variant.Variant {
	out := make([]variant.Variant, len(args))
	for i, a := range args {
		out[i] = r.tab.New(a)
	}
	return out
}

// desc returns the descriptor of id, or nil.
func (r *Registry) desc(id apis.TypeID) *typeDesc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types[id]
}

// callOverload picks among candidate methods and calls the winner with
// instance as receiver (ignored for static candidates).
func callOverload(r *Registry, cands []*methodDesc, instance variant.Variant, args []variant.Variant) (variant.Variant, error) {
	cs := make([]*invoke.Callable, len(cands))
	for i, c := range cands {
		cs[i] = c.call
	}
	i, bound, err := invoke.Select(r.tab, cs, args)
	if err != nil {
		return variant.Variant{}, err
	}
	m := cands[i]
	var recv reflect.Value
	if !m.static {
		if recv, err = invoke.Receiver(r.tab, instance, m.call.Receiver()); err != nil {
			return variant.Variant{}, err
		}
	}
	return m.call.CallBound(r.tab, recv, bound)
}

