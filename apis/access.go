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

// AccessLevel is the declared visibility of a member.
type AccessLevel int

const (
	Public AccessLevel = iota
	Protected
	Private
)

// String returns "public", "protected" or "private".
func (a AccessLevel) String() string {
	switch a {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// Filter selects members in filtered queries. Flags combine with |.
//
// A member matches when it satisfies at least one of FilterInstance and
// FilterStatic and one of FilterPublic and FilterNonPublic.
// FilterDeclaredOnly excludes members inherited from base types.
type Filter uint8

const (
	FilterInstance Filter = 1 << iota
	FilterStatic
	FilterPublic
	FilterNonPublic
	FilterDeclaredOnly

	// DefaultFilter matches every public member, inherited or not.
	DefaultFilter = FilterInstance | FilterStatic | FilterPublic
)

// Has reports whether all bits of flag are set in f.
func (f Filter) Has(flag Filter) bool { return f&flag == flag }

// Match reports whether a member with the given shape passes f.
func (f Filter) Match(static bool, access AccessLevel, inherited bool) bool {
	if inherited && f.Has(FilterDeclaredOnly) {
		return false
	}
	if static && !f.Has(FilterStatic) || !static && !f.Has(FilterInstance) {
		return false
	}
	if access == Public {
		return f.Has(FilterPublic)
	}
	return f.Has(FilterNonPublic)
}
