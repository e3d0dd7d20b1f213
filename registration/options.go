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

package registration

import (
	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/registry"
)

// Option configures one registered member.
type Option func(*member)

type member struct {
	registry.MemberOptions
	name string
}

func collect(opts []Option) member {
	var m member
	for _, o := range opts {
		if o != nil {
			o(&m)
		}
	}
	return m
}

// WithPolicy sets the return policy of a constructor, method or property.
func WithPolicy(p apis.Policy) Option {
	return func(m *member) { m.Policy = p }
}

// WithParamNames names the parameters of a constructor, method or function.
func WithParamNames(names ...string) Option {
	return func(m *member) { m.ParamNames = names }
}

// WithDefaults supplies default arguments for the trailing parameters.
func WithDefaults(values ...any) Option {
	return func(m *member) { m.Defaults = values }
}

// WithAccess sets the access level of a member.
func WithAccess(a apis.AccessLevel) Option {
	return func(m *member) { m.Access = a }
}

// WithMetadata attaches one key/value pair; repeat it for more. Pairs
// are recorded in option order.
func WithMetadata(key, value any) Option {
	return func(m *member) {
		m.Metadata = append(m.Metadata, registry.MetaPair{Key: key, Value: value})
	}
}

// WithName overrides the property name of a Field binding, which
// defaults to the Go field name.
func WithName(name string) Option {
	return func(m *member) { m.name = name }
}

// WithReadOnly makes a field or variable property reject Set.
func WithReadOnly() Option {
	return func(m *member) { m.ReadOnly = true }
}
