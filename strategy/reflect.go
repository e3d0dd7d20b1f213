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

package strategy

import (
	"reflect"
	"sync"

	"dirpx.dev/rtr/apis"
	uref "dirpx.dev/rtr/utils/reflect"
)

// NewReflectStrategy creates an apis.Strategy that names types from
// reflection, with memoization.
func NewReflectStrategy() apis.Strategy {
	return reflectStrategy{}
}

// reflectStrategy is the universal fallback. Under IdentityReflect it
// yields the short "pkg.Type" spelling reflect prints; under IdentityName
// it yields the package-path qualified spelling so names stay unique.
type reflectStrategy struct{}

// Ensure reflectStrategy implements apis.Strategy.
var _ apis.Strategy = (*reflectStrategy)(nil)

// cacheKey ensures memoization respects the config knob that affects naming.
type cacheKey struct {
	t        reflect.Type
	identity apis.IdentityMode
}

// typeNameCache caches resolved type names by (type, identity mode).
var typeNameCache sync.Map // key: cacheKey, val: string

// TryResolveType computes the name for t.
func (reflectStrategy) TryResolveType(t reflect.Type, cfg apis.Config) (string, bool) {
	if t == nil {
		return "", false
	}
	return byType(t, cfg), true
}

// byType resolves the name for t with memoization.
func byType(t reflect.Type, cfg apis.Config) string {
	key := cacheKey{t: t, identity: cfg.Identity}
	if v, ok := typeNameCache.Load(key); ok {
		return v.(string)
	}

	name := t.String()
	if cfg.Identity == apis.IdentityName {
		name = uref.QualifiedName(t)
	}

	typeNameCache.Store(key, name)
	return name
}
