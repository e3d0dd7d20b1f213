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

	"dirpx.dev/rtr/apis"
)

var namerType = reflect.TypeOf((*apis.Namer)(nil)).Elem()

// NewNamerStrategy creates an apis.Strategy that uses apis.Namer.
func NewNamerStrategy() apis.Strategy {
	return &namerStrategy{}
}

// namerStrategy lets a type pick its own name: if T or *T implements
// apis.Namer, the zero value's TypeName() is used and the chain stops.
type namerStrategy struct{}

// Ensure namerStrategy implements apis.Strategy.
var _ apis.Strategy = (*namerStrategy)(nil)

// TryResolveType checks whether t or *t implements apis.Namer.
func (*namerStrategy) TryResolveType(t reflect.Type, _ apis.Config) (string, bool) {
	if t == nil || t.Kind() == reflect.Interface {
		return "", false
	}
	var n apis.Namer
	switch {
	case t.Implements(namerType):
		if t.Kind() == reflect.Pointer {
			// A nil pointer receiver is not safe to call; use a fresh value.
			n = reflect.New(t.Elem()).Interface().(apis.Namer)
		} else {
			n = reflect.Zero(t).Interface().(apis.Namer)
		}
	case reflect.PointerTo(t).Implements(namerType):
		n = reflect.New(t).Interface().(apis.Namer)
	default:
		return "", false
	}
	name := n.TypeName()
	if name == "" {
		return "", false
	}
	return name, true
}
