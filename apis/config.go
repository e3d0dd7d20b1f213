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

import "go.uber.org/zap"

// Config carries the knobs a Registry is built with.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Identity selects how Go types are mapped onto TypeIDs.
	Identity IdentityMode

	// IncludeBuiltins controls whether a new registry installs the standard
	// conversion and comparison set for bool, integer, float and string types.
	IncludeBuiltins bool

	// MaxUnwrap limits pointer unwrapping when computing a raw type.
	// Acts as a safety guard against pathological nesting.
	MaxUnwrap int

	// MaxConversionDepth bounds the number of converter hops a Variant
	// may chain while searching for a conversion path.
	MaxConversionDepth int

	// FreezeOnQuery freezes the registry on its first query. Registration
	// after that point fails with ErrFrozen.
	FreezeOnQuery bool

	// Logger receives registration and resolution events. Nil means no logging.
	Logger *zap.Logger
}

// Log returns the configured logger, or a no-op logger when none is set.
func (c Config) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
