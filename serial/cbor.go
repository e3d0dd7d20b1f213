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
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"dirpx.dev/rtr/registry"
)

// cborEncMode encodes with the canonical options so that equal trees
// produce equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("serial: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalCBOR encodes v as canonical CBOR through its registered properties.
func MarshalCBOR(reg *registry.Registry, v any) ([]byte, error) {
	tree, err := Encode(reg, v)
	if err != nil {
		return nil, err
	}
	data, err := cborEncMode.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("rtr(serial): cbor: %w", err)
	}
	return data, nil
}

// UnmarshalCBOR decodes data into the value target points to.
func UnmarshalCBOR(reg *registry.Registry, data []byte, target any) error {
	var tree any
	if err := cbor.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("rtr(serial): cbor: %w", err)
	}
	return Decode(reg, normalize(tree), target)
}
