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

package invoke

import (
	"fmt"
	"reflect"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/variant"
)

// checkPolicy validates policy against a result type at registration.
func checkPolicy(result reflect.Type, p apis.Policy) error {
	if result == nil || p == apis.PolicyDiscard {
		return nil
	}
	ptr := result.Kind() == reflect.Pointer
	switch p {
	case apis.PolicyDefault:
		if ptr {
			return fmt.Errorf("%w: %s", apis.ErrPolicyRequired, result)
		}
	case apis.PolicyReference:
		if !ptr {
			return fmt.Errorf("%w: reference policy on value result %s", apis.ErrInvalidSignature, result)
		}
	case apis.PolicyCopy, apis.PolicyShared:
	default:
		return fmt.Errorf("%w: unknown policy %d", apis.ErrInvalidSignature, p)
	}
	return nil
}

// Apply wraps a result value according to p.
//
//	Default, Copy: the value (a pointer result is dereferenced), Owned.
//	Reference:     the pointer itself, Borrowed.
//	Shared:        a pointer owned by the variant; values are copied to the heap.
//	Discard:       the empty variant.
//
// Interface results are unwrapped to their dynamic value first.
func Apply(tab *variant.Table, out reflect.Value, p apis.Policy) (variant.Variant, error) {
	if p == apis.PolicyDiscard || !out.IsValid() {
		return variant.Variant{}, nil
	}
	if out.Kind() == reflect.Interface {
		if out.IsNil() {
			return variant.Variant{}, nil
		}
		out = out.Elem()
	}
	ptr := out.Kind() == reflect.Pointer

	switch p {
	case apis.PolicyReference:
		return tab.FromValue(out, apis.Borrowed), nil
	case apis.PolicyShared:
		if ptr {
			return tab.FromValue(out, apis.Shared), nil
		}
		h := reflect.New(out.Type())
		h.Elem().Set(out)
		return tab.FromValue(h, apis.Shared), nil
	default:
		if ptr {
			if out.IsNil() {
				return variant.Variant{}, fmt.Errorf("%w: nil %s cannot be copied", apis.ErrInvocation, out.Type())
			}
			return tab.FromValue(copyOf(out.Elem()), apis.Owned), nil
		}
		return tab.FromValue(out, apis.Owned), nil
	}
}

// copyOf returns a shallow copy of v detached from its source.
func copyOf(v reflect.Value) reflect.Value {
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}
