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

import "fmt"

// Policy controls how the result of a constructor, method or property
// getter is wrapped into a Variant.
type Policy int

const (
	// PolicyDefault copies value results. Pointer results must name an
	// explicit policy at registration time.
	PolicyDefault Policy = iota
	// PolicyCopy dereferences pointer results and stores a copy.
	PolicyCopy
	// PolicyReference stores a pointer as a non-owning reference.
	PolicyReference
	// PolicyShared stores a heap pointer owned by the variant. Value
	// results are copied into a fresh allocation.
	PolicyShared
	// PolicyDiscard drops the result. Methods only.
	PolicyDiscard
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyDefault:
		return "default"
	case PolicyCopy:
		return "copy"
	case PolicyReference:
		return "reference"
	case PolicyShared:
		return "shared"
	case PolicyDiscard:
		return "discard"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// Ownership describes who owns the value held by a Variant.
type Ownership int

const (
	// Owned means the variant holds its own copy.
	Owned Ownership = iota
	// Borrowed means the variant holds a pointer it does not own.
	Borrowed
	// Shared means the variant holds a heap pointer it shares ownership of.
	Shared
)

// String returns the ownership name.
func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	case Shared:
		return "shared"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}
