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

package serial

import (
	"bytes"
	"encoding/json"
	"fmt"

	"dirpx.dev/rtr/registry"
)

// MarshalJSON encodes v as JSON through its registered properties.
func MarshalJSON(reg *registry.Registry, v any) ([]byte, error) {
	tree, err := Encode(reg, v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// UnmarshalJSON decodes data into the value target points to.
// Numbers keep their integer precision where they have no fraction.
func UnmarshalJSON(reg *registry.Registry, data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return fmt.Errorf("rtr(serial): json: %w", err)
	}
	return Decode(reg, normalize(tree), target)
}

// normalize replaces json.Number with int64 or float64 and map keys of
// any type with strings, so both codecs feed Decode the same shapes.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	}
	return v
}
