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

package config

import (
	"go.uber.org/zap"

	"dirpx.dev/rtr/apis"
)

const (
	// DefaultIdentity represents the default for Identity.
	// The reflect.Type keyed arena is the fast path.
	DefaultIdentity = apis.IdentityReflect
	// DefaultIncludeBuiltins represents the default for IncludeBuiltins.
	// When true, the standard conversions between builtin scalar types are installed.
	DefaultIncludeBuiltins = true
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultMaxConversionDepth represents the default for MaxConversionDepth.
	DefaultMaxConversionDepth = 4
	// DefaultFreezeOnQuery represents the default for FreezeOnQuery.
	DefaultFreezeOnQuery = false
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure limits are valid.
	if cfg.MaxUnwrap < 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	if cfg.MaxConversionDepth <= 0 {
		cfg.MaxConversionDepth = DefaultMaxConversionDepth
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Identity:           DefaultIdentity,
		IncludeBuiltins:    DefaultIncludeBuiltins,
		MaxUnwrap:          DefaultMaxUnwrap,
		MaxConversionDepth: DefaultMaxConversionDepth,
		FreezeOnQuery:      DefaultFreezeOnQuery,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithIdentity sets the Identity option.
func WithIdentity(mode apis.IdentityMode) Option {
	return func(c *apis.Config) {
		c.Identity = mode
	}
}

// WithIncludeBuiltins sets the IncludeBuiltins option.
func WithIncludeBuiltins(include bool) Option {
	return func(c *apis.Config) {
		c.IncludeBuiltins = include
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A negative value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max < 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithMaxConversionDepth sets the MaxConversionDepth option.
// A non-positive value resets to the default.
func WithMaxConversionDepth(depth int) Option {
	return func(c *apis.Config) {
		if depth <= 0 {
			c.MaxConversionDepth = DefaultMaxConversionDepth
			return
		}
		c.MaxConversionDepth = depth
	}
}

// WithFreezeOnQuery sets the FreezeOnQuery option.
func WithFreezeOnQuery(freeze bool) Option {
	return func(c *apis.Config) {
		c.FreezeOnQuery = freeze
	}
}

// WithLogger sets the Logger option.
func WithLogger(l *zap.Logger) Option {
	return func(c *apis.Config) {
		c.Logger = l
	}
}
