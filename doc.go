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

// Package rtr provides runtime type reflection for Go: registered types
// with properties, methods, constructors, enumerations and metadata,
// dynamically typed values (variants) with a conversion graph, and a
// process-wide registry assembled from registration units.
//
// The building blocks live in sub-packages and can be used on their own:
//
//   - registry: the type registry and the handles it hands out (Type,
//     Property, Method, Constructor, Enumeration).
//   - registration: a typed DSL over the registry (Class, Enum,
//     Function, Variable, and capability helpers).
//   - variant: the Variant value and the conversion/comparison table.
//   - invoke: signature checking, argument binding and return policies.
//   - serial: property-driven JSON and CBOR encoding of registered types.
//
// Package rtr itself only adds the global access point.
//
// # Design
//
// The core of rtr is a read-mostly global snapshot (state). The snapshot
// holds four things:
//
//   - Config: the knobs a registry is built with (identity mode,
//     builtin conversions, unwrap and conversion depth limits, logger).
//
//   - Registry: the process-wide *registry.Registry. It is built lazily
//     on first access by replaying every registration unit, and frozen
//     afterwards.
//
//   - Resolver: the strategy chain that names types nobody registered
//     explicitly. In priority order:
//     1. If the type implements apis.Namer, use its TypeName().
//     2. Otherwise, fall back to a reflect-based name ("pkg.Type", or
//     the package-path qualified name under apis.IdentityName).
//
//   - Builder: a pluggable factory that knows how to construct Registry
//     and Resolver instances for a given Config.
//
// All of these live inside a single immutable struct called state.
// The package holds an atomic pointer to the current state. Readers load
// that pointer, use it, and never mutate it. Writers build a brand-new
// state and atomically swap it in.
//
// # Registration units
//
// Packages contribute types from init:
//
//	func init() {
//		rtr.Registration(func(reg *registry.Registry) error {
//			return registration.Class[Point](reg, "Point").
//				Constructor(NewPoint).
//				Field("X").
//				Field("Y").
//				Method("Distance", Point.Distance).
//				Done()
//		})
//	}
//
// The first call to Registry (or any helper built on it) replays every
// unit in call order into a fresh registry. Units do not need to agree on
// an order: a type may name a base that another unit registers later.
// A failing unit does not stop the others; RegistrationErr reports the
// joined failures.
//
// A unit added after the registry was built marks the snapshot stale.
// The next access builds a new registry from all units; handles taken
// from the previous registry keep working against it.
//
// # Global API
//
//  1. Read helpers:
//
//     Registry() *registry.Registry
//     RegistrationErr() error
//     TypeOf(v any) registry.Type
//     TypeFor(t reflect.Type) registry.Type
//     TypeByName(name string) registry.Type
//     Get[T]() registry.Type
//     Invoke(name string, args ...any) (variant.Variant, error)
//
//  2. Mutation helpers:
//
//     Registration(u builder.Unit)
//     SetConfig(cfg apis.Config)
//     SetBuilder(b builder.Builder)
//     SetRegistry(reg *registry.Registry)
//     SetResolver(res apis.Resolver)
//     Pin/UnpinRegistry(), Pin/UnpinResolver()
//
//     Each of these acquires an internal build lock, derives a new
//     snapshot, and then atomically publishes it.
//
// # Concurrency model
//
// Reads load the current *state atomically and take no locks once the
// registry is built. The registry itself is safe for concurrent queries.
// Writes take a short build mutex, and "last write wins".
//
// # Pinning
//
// SetRegistry(reg) installs that exact registry and pins it: units are
// not replayed into it and SetConfig will not replace it until
// UnpinRegistry(). SetResolver(res) pins the resolver the same way.
//
// Code that can pass a *registry.Registry explicitly should do so; the
// global registry exists for init-time registration across packages.
package rtr
