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
	"slices"
	"sync"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/invoke"
)

// MemberOptions configures a member at registration.
type MemberOptions struct {
	Policy     apis.Policy
	ParamNames []string
	Defaults   []any
	Access     apis.AccessLevel
	Metadata   []MetaPair
	// ReadOnly applies to field and variable properties.
	ReadOnly bool
}

// MetaPair is one metadata entry. Entries keep their registration order.
type MetaPair struct {
	Key, Value any
}

type typeDesc struct {
	id   apis.TypeID
	name string
	rt   reflect.Type

	props   []*propertyDesc
	methods []*methodDesc
	ctors   []*methodDesc
	enum    *enumDesc
	meta    *metadata
}

func (d *typeDesc) property(name string) *propertyDesc {
	for _, p := range d.props {
		if p.name == name {
			return p
		}
	}
	return nil
}

type propKind uint8

const (
	propField propKind = iota
	propAccessor
	propVariable
)

type propertyDesc struct {
	name   string
	owner  apis.TypeID
	kind   propKind
	typ    reflect.Type
	static bool

	field  []int            // propField
	getter *invoke.Callable // propAccessor
	setter *invoke.Callable // propAccessor, nil when read-only
	ptr    reflect.Value    // propVariable

	readOnly bool
	access   apis.AccessLevel
	policy   apis.Policy
	meta     *metadata
}

func newPropertyDesc(name string, owner apis.TypeID, opts MemberOptions) (*propertyDesc, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty property name", apis.ErrInvalidSignature)
	}
	switch opts.Policy {
	case apis.PolicyDefault, apis.PolicyCopy, apis.PolicyReference:
	default:
		return nil, fmt.Errorf("%w: property %q: policy %s", apis.ErrInvalidSignature, name, opts.Policy)
	}
	meta, err := newMetadata(opts.Metadata)
	if err != nil {
		return nil, err
	}
	return &propertyDesc{name: name, owner: owner, readOnly: opts.ReadOnly, access: opts.Access, policy: opts.Policy, meta: meta}, nil
}

// checkPointerPolicy rejects a pointer-typed field or variable that was
// registered without an explicit policy.
func checkPointerPolicy(rt reflect.Type, p apis.Policy) error {
	if rt.Kind() == reflect.Pointer && p == apis.PolicyDefault {
		return fmt.Errorf("%w: %s", apis.ErrPolicyRequired, rt)
	}
	return nil
}

type methodDesc struct {
	name   string
	owner  apis.TypeID
	call   *invoke.Callable
	static bool
	access apis.AccessLevel
	meta   *metadata
}

func newMethodDesc(name string, c *invoke.Callable, static bool, owner apis.TypeID, opts MemberOptions) (*methodDesc, error) {
	meta, err := newMetadata(opts.Metadata)
	if err != nil {
		return nil, err
	}
	return &methodDesc{name: name, owner: owner, call: c, static: static, access: opts.Access, meta: meta}, nil
}

type enumDesc struct {
	names  []string
	values []reflect.Value
	meta   *metadata
}

func (e *enumDesc) index(name string) int { return slices.Index(e.names, name) }

// metadata is a key/value store that may grow after registration.
type metadata struct {
	mu   sync.RWMutex
	m    map[any]any
	keys []any
}

func newMetadata(init []MetaPair) (*metadata, error) {
	md := &metadata{m: make(map[any]any, len(init))}
	for _, kv := range init {
		if err := md.set(kv.Key, kv.Value); err != nil {
			return nil, err
		}
	}
	return md, nil
}

func (md *metadata) set(k, v any) error {
	if k == nil || !reflect.TypeOf(k).Comparable() {
		return fmt.Errorf("%w: metadata key %T is not comparable", apis.ErrInvalidSignature, k)
	}
	md.mu.Lock()
	defer md.mu.Unlock()
	if _, ok := md.m[k]; ok {
		return fmt.Errorf("%w: metadata key %v", apis.ErrDuplicateRegistration, k)
	}
	md.m[k] = v
	md.keys = append(md.keys, k)
	return nil
}

func (md *metadata) get(k any) (any, bool) {
	if md == nil || k == nil || !reflect.TypeOf(k).Comparable() {
		return nil, false
	}
	md.mu.RLock()
	defer md.mu.RUnlock()
	v, ok := md.m[k]
	return v, ok
}

func (md *metadata) list() []any {
	if md == nil {
		return nil
	}
	md.mu.RLock()
	defer md.mu.RUnlock()
	return slices.Clone(md.keys)
}
