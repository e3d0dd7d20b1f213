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

// Package builder assembles registries from configuration and
// registration units.
package builder

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/registry"
	"dirpx.dev/rtr/resolver"
	"dirpx.dev/rtr/strategy"
)

// Unit is one block of registrations, typically declared by a package
// from its init function. Units must not depend on each other's order.
type Unit func(*registry.Registry) error

// Builder constructs the resolver and registry for a configuration.
type Builder interface {
	// BuildResolver returns the resolver that names unregistered types.
	// prev is the resolver being replaced, or nil.
	BuildResolver(cfg apis.Config, prev apis.Resolver) apis.Resolver
	// BuildRegistry returns a registry for cfg with every unit applied.
	// A failing unit does not stop the others; their errors are joined.
	BuildRegistry(cfg apis.Config, res apis.Resolver, units []Unit) (*registry.Registry, error)
}

// New creates and returns the default Builder.
func New() Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildResolver returns a fresh namer-then-reflect resolver chain.
func (b *builder) BuildResolver(_ apis.Config, _ apis.Resolver) apis.Resolver {
	return resolver.New(
		strategy.NewNamerStrategy(),
		strategy.NewReflectStrategy(),
	)
}

// BuildRegistry creates a registry and replays units into it in order.
func (b *builder) BuildRegistry(cfg apis.Config, res apis.Resolver, units []Unit) (*registry.Registry, error) {
	reg := registry.NewWithResolver(cfg, res)
	var errs []error
	for i, u := range units {
		if u == nil {
			continue
		}
		if err := u(reg); err != nil {
			reg.Logger().Warn("registration unit failed", zap.Int("unit", i), zap.Error(err))
			errs = append(errs, fmt.Errorf("unit %d: %w", i, err))
		}
	}
	reg.Logger().Debug("registry built",
		zap.Int("units", len(units)),
		zap.Int("types", reg.Count()),
		zap.Int("failed", len(errs)))
	return reg, errors.Join(errs...)
}
