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

package rtr

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/builder"
	"dirpx.dev/rtr/config"
	"dirpx.dev/rtr/registry"
	"dirpx.dev/rtr/variant"
)

// init initializes the global state. The registry itself is built lazily
// on first access so that every package's init has a chance to call
// Registration first.
func init() {
	s := &state{cfg: config.DefaultConfig()}
	b := builder.New()
	s.res = b.BuildResolver(s.cfg, nil)
	s.bld = b
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("rtr: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("rtr: builder returned nil resolver")
)

// Registration adds a unit to the global registry. Packages usually call
// it from init. A unit added after the registry was built marks it stale;
// the next access rebuilds it by replaying every unit.
func Registration(u builder.Unit) {
	if u == nil {
		return
	}
	unitsMu.Lock()
	units = append(units, u)
	unitsMu.Unlock()
	nunits.Add(1)
}

// Registry returns the global registry, building it if needed.
// The returned registry is frozen unless it was installed with SetRegistry.
func Registry() *registry.Registry {
	s := st.Load()
	if s.fresh() {
		return s.reg
	}
	return rebuild().reg
}

// RegistrationErr returns the joined errors of the units that failed
// while building the current global registry.
func RegistrationErr() error {
	s := st.Load()
	if !s.fresh() {
		s = rebuild()
	}
	return s.err
}

// TypeOf returns the type of v in the global registry.
// This is a convenience wrapper around the global registry.
func TypeOf(v any) registry.Type {
	return Registry().TypeOf(v)
}

// TypeFor returns the type of t in the global registry.
func TypeFor(t reflect.Type) registry.Type {
	return Registry().TypeFor(t)
}

// TypeByName looks a type up by its registered name in the global registry.
func TypeByName(name string) registry.Type {
	return Registry().TypeByName(name)
}

// Get returns the type of T in the global registry.
func Get[T any]() registry.Type {
	return registry.Get[T](Registry())
}

// Invoke calls the global function name with args.
func Invoke(name string, args ...any) (variant.Variant, error) {
	return Registry().Invoke(name, args...)
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration to cfg.
// A non-pinned resolver is rebuilt immediately; a non-pinned registry is
// rebuilt on next access.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()

	nres := old.res
	if !old.pres {
		nres = old.bld.BuildResolver(cfg, old.res)
	}
	if nres == nil {
		panic(ErrNilResolver)
	}

	n := old.with()
	n.cfg = cfg
	n.res = nres
	n.stale()
	st.Store(n)
}

// SetRegistry installs reg as the global registry and pins it.
// Registration units are not replayed into a pinned registry.
func SetRegistry(reg *registry.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	n := st.Load().with()
	n.reg = reg
	n.err = nil
	n.preg = true
	st.Store(n)
}

// Resolver returns the global resolver that names unregistered types.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver sets and pins the global resolver. A non-pinned registry
// is rebuilt on next access so that its type names follow res.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	n := st.Load().with()
	n.res = res
	n.pres = true
	n.stale()
	st.Store(n)
}

// Builder returns the global builder.
func Builder() builder.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder to b. Non-pinned layers are rebuilt
// with it: the resolver immediately, the registry on next access.
func SetBuilder(b builder.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()

	nres := old.res
	if !old.pres {
		nres = b.BuildResolver(old.cfg, old.res)
	}
	if nres == nil {
		panic(ErrNilResolver)
	}

	n := old.with()
	n.bld = b
	n.res = nres
	n.stale()
	st.Store(n)
}

// IsRegistryPinned returns whether the global registry is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry keeps the current global registry across reconfiguration
// and later Registration calls. It builds the registry first if needed.
func PinRegistry() {
	Registry()

	buildMu.Lock()
	defer buildMu.Unlock()

	n := st.Load().with()
	n.preg = true
	st.Store(n)
}

// UnpinRegistry lets the global registry be rebuilt again.
func UnpinRegistry() {
	buildMu.Lock()
	defer buildMu.Unlock()

	n := st.Load().with()
	n.preg = false
	st.Store(n)
}

// IsResolverPinned returns whether the global resolver is pinned.
func IsResolverPinned() bool {
	return st.Load().pres
}

// PinResolver keeps the current global resolver across reconfiguration.
func PinResolver() {
	buildMu.Lock()
	defer buildMu.Unlock()

	n := st.Load().with()
	n.pres = true
	st.Store(n)
}

// UnpinResolver lets the global resolver be rebuilt again.
func UnpinResolver() {
	buildMu.Lock()
	defer buildMu.Unlock()

	n := st.Load().with()
	n.pres = false
	st.Store(n)
}

// rebuild builds and publishes a registry for the current state unless a
// concurrent caller already did.
func rebuild() *state {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	if old.fresh() {
		return old
	}

	unitsMu.Lock()
	us := append([]builder.Unit(nil), units...)
	unitsMu.Unlock()

	reg, err := old.bld.BuildRegistry(old.cfg, old.res, us)
	if reg == nil {
		panic(ErrNilRegistry)
	}
	reg.Freeze()

	n := old.with()
	n.reg = reg
	n.err = err
	n.built = len(us)
	st.Store(n)
	return n
}

var (
	// unitsMu guards units.
	unitsMu sync.Mutex
	// units holds every unit passed to Registration, in call order.
	units []builder.Unit
	// nunits mirrors len(units) for the lock-free freshness check.
	nunits atomic.Int64
)

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// reg is the global registry; nil until first built.
	reg *registry.Registry
	// err is the joined unit error of the build that produced reg.
	err error
	// built is the number of units replayed into reg.
	built int
	// res is the global resolver.
	res apis.Resolver
	// bld is the global builder.
	bld builder.Builder
	// preg indicates whether the reg is pinned.
	preg bool
	// pres indicates whether the res is pinned.
	pres bool
}

// with returns an unpublished copy of s.
func (s *state) with() *state {
	n := *s
	return &n
}

// stale drops a non-pinned registry so the next access rebuilds it.
func (s *state) stale() {
	if !s.preg {
		s.reg = nil
		s.err = nil
		s.built = 0
	}
}

// fresh reports whether s.reg can be served as is.
func (s *state) fresh() bool {
	return s.reg != nil && (s.preg || int64(s.built) == nunits.Load())
}
