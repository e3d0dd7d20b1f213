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

package reflect

import (
	"reflect"
)

// EmbeddedPath searches the anonymous fields of struct type from for an
// embedded field of type to (or *to) and returns its field index path.
// The search is breadth-first so the shallowest embedding wins.
func EmbeddedPath(from, to reflect.Type) ([]int, bool) {
	if from == nil || to == nil {
		return nil, false
	}
	type node struct {
		t    reflect.Type
		path []int
	}
	seen := map[reflect.Type]bool{}
	queue := []node{{t: from}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		t := n.t
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct || seen[t] {
			continue
		}
		seen[t] = true
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.Anonymous {
				continue
			}
			path := append(append([]int(nil), n.path...), i)
			ft := f.Type
			if ft == to || ft.Kind() == reflect.Pointer && ft.Elem() == to {
				return path, true
			}
			queue = append(queue, node{t: ft, path: path})
		}
	}
	return nil, false
}

// FieldByPath walks v along path, dereferencing embedded pointers.
// It returns an invalid Value when a nil embedded pointer is met.
func FieldByPath(v reflect.Value, path []int) reflect.Value {
	for _, i := range path {
		v = Indirect(v)
		if !v.IsValid() {
			return v
		}
		v = v.Field(i)
	}
	if v.Kind() == reflect.Pointer {
		// an embedded *Base: hand out the pointee so callers see the base value
		if v.IsNil() {
			return reflect.Value{}
		}
		return v.Elem()
	}
	return v
}
