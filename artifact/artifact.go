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

// Package artifact names the packaged core library and the build
// definitions that produce it, from options kept in an rtr.toml manifest.
package artifact

import (
	"errors"
	"fmt"
	"runtime"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/config"
)

// Base is the library name every artifact name is built around.
const Base = "rttr_core"

// Build types.
const (
	Debug          = "Debug"
	Release        = "Release"
	RelWithDebInfo = "RelWithDebInfo"
	MinSizeRel     = "MinSizeRel"
)

// Target operating systems.
const (
	Windows = "Windows"
	Linux   = "Linux"
	Macos   = "Macos"
)

var (
	// ErrBuildType is returned for a build type outside the known set.
	ErrBuildType = errors.New("rtr(artifact): unknown build type")
	// ErrOS is returned for an operating system outside the known set.
	ErrOS = errors.New("rtr(artifact): unknown os")
)

// Options are the package options an artifact is built with.
type Options struct {
	// Shared selects a shared library instead of a static one.
	Shared bool `toml:"shared"`
	// RTTI builds with native type identity. Without it types are
	// identified by name.
	RTTI bool `toml:"rtti"`
	// StaticRuntime links the language runtime statically.
	StaticRuntime bool `toml:"static_runtime"`
	// BuildType is one of Debug, Release, RelWithDebInfo or MinSizeRel.
	BuildType string `toml:"build_type"`
	// OS is one of Windows, Linux or Macos.
	OS string `toml:"os"`
}

// DefaultOptions returns a static release build with RTTI for the host OS.
func DefaultOptions() Options {
	return Options{
		Shared:        false,
		RTTI:          true,
		StaticRuntime: false,
		BuildType:     Release,
		OS:            HostOS(),
	}
}

// HostOS maps runtime.GOOS onto the OS names used in Options.
func HostOS() string {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin", "ios":
		return Macos
	default:
		return Linux
	}
}

// Validate checks the enumerated fields of o.
func (o Options) Validate() error {
	switch o.BuildType {
	case Debug, Release, RelWithDebInfo, MinSizeRel:
	default:
		return fmt.Errorf("%w: %q", ErrBuildType, o.BuildType)
	}
	switch o.OS {
	case Windows, Linux, Macos:
	default:
		return fmt.Errorf("%w: %q", ErrOS, o.OS)
	}
	return nil
}

// Name returns the library name for o: Base with a "lib" prefix for
// static Windows builds and a "_d" suffix for debug builds.
func Name(o Options) string {
	prefix, suffix := "", ""
	if o.OS == Windows && !o.Shared {
		prefix = "lib"
	}
	if o.BuildType == Debug {
		suffix = "_d"
	}
	return prefix + Base + suffix
}

// Definitions returns the build definitions for o in a stable order.
// Optional components (benchmarks, documentation, examples, packaging,
// unit tests) are always disabled.
func Definitions(o Options) []string {
	onOff := func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	}
	defs := []string{
		"BUILD_BENCHMARKS=OFF",
		"BUILD_DOCUMENTATION=OFF",
		"BUILD_EXAMPLES=OFF",
		"BUILD_PACKAGE=OFF",
		"BUILD_UNIT_TESTS=OFF",
		"BUILD_INSTALLER=ON",
		"BUILD_WITH_RTTI=" + onOff(o.RTTI),
		"BUILD_STATIC=" + onOff(!o.Shared),
		"BUILD_RTTR_DYNAMIC=" + onOff(o.Shared),
	}
	if o.StaticRuntime {
		defs = append(defs, "BUILD_WITH_STATIC_RUNTIME_LIBS=ON")
	}
	return append(defs, "CMAKE_BUILD_TYPE="+o.BuildType)
}

// Config returns the registry configuration matching o. Builds without
// RTTI identify types by name.
func Config(o Options, opts ...config.Option) apis.Config {
	if !o.RTTI {
		opts = append(opts, config.WithIdentity(apis.IdentityName))
	}
	return config.NewConfig(opts...)
}
