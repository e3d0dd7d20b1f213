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
	"errors"
	"fmt"
)

// Errors returned by registries, variants and invocations. They are
// wrapped with context by the operation that detects them; match with
// errors.Is. A failed lookup is never an error: absent types and members
// are reported through invalid handles.
var (
	// ErrDuplicateRegistration is returned when a type, name or member is registered twice.
	ErrDuplicateRegistration = errors.New("rtr: duplicate registration")
	// ErrInvalidHierarchy is returned when base declarations would form a cycle.
	ErrInvalidHierarchy = errors.New("rtr: invalid type hierarchy")
	// ErrConversion is returned when a value cannot be extracted or converted.
	ErrConversion = errors.New("rtr: conversion failed")
	// ErrNoConversionPath is returned when no converter chain links two types.
	ErrNoConversionPath = errors.New("rtr: no conversion path")
	// ErrNotComparable is returned when no comparator is registered for a type.
	ErrNotComparable = errors.New("rtr: values are not comparable")
	// ErrInvalidInstance is returned when an instance does not match the declaring type.
	ErrInvalidInstance = errors.New("rtr: invalid instance")
	// ErrArgumentMismatch is returned when arguments do not fit a signature.
	ErrArgumentMismatch = errors.New("rtr: argument mismatch")
	// ErrFrozen is returned when registering into a frozen registry.
	ErrFrozen = errors.New("rtr: registry is frozen")
	// ErrReadOnly is returned when setting a read-only property.
	ErrReadOnly = errors.New("rtr: property is read-only")
	// ErrPolicyRequired is returned when a pointer-returning callable has no explicit policy.
	ErrPolicyRequired = errors.New("rtr: pointer result requires an explicit policy")
	// ErrInvalidSignature is returned when a bound value is not usable as a callable or accessor.
	ErrInvalidSignature = errors.New("rtr: invalid signature")
	// ErrInvocation wraps an error returned by the invoked function itself.
	ErrInvocation = errors.New("rtr: invocation failed")
)

// ArgumentMismatchError identifies the first argument position that
// does not fit a signature.
type ArgumentMismatchError struct {
	// Position is the zero-based index of the offending parameter.
	Position int
	// Expected is the declared parameter type, empty for surplus arguments.
	Expected string
	// Got is the supplied argument type, empty for missing arguments.
	Got string
}

// Error implements error.
func (e *ArgumentMismatchError) Error() string {
	switch {
	case e.Got == "":
		return fmt.Sprintf("rtr: argument mismatch at position %d: missing %s", e.Position, e.Expected)
	case e.Expected == "":
		return fmt.Sprintf("rtr: argument mismatch at position %d: unexpected %s", e.Position, e.Got)
	default:
		return fmt.Sprintf("rtr: argument mismatch at position %d: cannot use %s as %s", e.Position, e.Got, e.Expected)
	}
}

// Unwrap makes errors.Is(err, ErrArgumentMismatch) hold.
func (e *ArgumentMismatchError) Unwrap() error { return ErrArgumentMismatch }
