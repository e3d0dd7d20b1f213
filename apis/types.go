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

package apis

import (
	"fmt"
	"strings"
)

// TypeID is the process-local identity of a Go type inside one registry.
// It is an index into the registry's type arena; the zero value is invalid.
type TypeID uint32

// InvalidTypeID is the TypeID of no type.
const InvalidTypeID TypeID = 0

// IsValid reports whether id refers to an arena slot.
func (id TypeID) IsValid() bool { return id != InvalidTypeID }

// IdentityMode selects the type identity mechanism.
type IdentityMode int

const (
	// IdentityReflect keys types by their reflect.Type. This is the fast path.
	IdentityReflect IdentityMode = iota
	// IdentityName keys types by their package-qualified name, so equally
	// named types coming from different reflect.Type values share one TypeID.
	IdentityName
)

// String returns "reflect" or "name".
func (m IdentityMode) String() string {
	switch m {
	case IdentityReflect:
		return "reflect"
	case IdentityName:
		return "name"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseIdentityMode parses "reflect" or "name" (case-insensitive).
func ParseIdentityMode(s string) (IdentityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reflect", "rtti", "":
		return IdentityReflect, nil
	case "name":
		return IdentityName, nil
	default:
		return IdentityReflect, fmt.Errorf("rtr: unknown identity mode %q", s)
	}
}

// MustParseIdentityMode is ParseIdentityMode that panics on error.
func MustParseIdentityMode(s string) IdentityMode {
	m, err := ParseIdentityMode(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MarshalText implements encoding.TextMarshaler.
func (m IdentityMode) MarshalText() ([]byte, error) {
	switch m {
	case IdentityReflect, IdentityName:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("rtr: cannot marshal unknown identity mode %d", int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike
// ParseIdentityMode it rejects empty input.
func (m *IdentityMode) UnmarshalText(text []byte) error {
	trimmed := strings.TrimSpace(string(text))
	if trimmed == "" {
		return fmt.Errorf("rtr: empty identity mode")
	}
	v, err := ParseIdentityMode(trimmed)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Namer lets a type choose its own default registry name.
// It is consulted on the zero value of the type, so implementations
// must not depend on instance state.
type Namer interface {
	TypeName() string
}

// MetaDescription is the type metadata key a Describer's text is stored under.
const MetaDescription = "description"

// Describer lets a type carry a human-readable description. When the type
// is registered without a MetaDescription entry, the zero value's
// TypeDescription() is recorded under that key.
type Describer interface {
	TypeDescription() string
}
