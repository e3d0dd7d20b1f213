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

package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"dirpx.dev/rtr/apis"
)

// EnvPrefix is the environment variable prefix honoured by Load.
const EnvPrefix = "RTR"

// File is the on-disk shape of a registry configuration.
type File struct {
	Identity           string `mapstructure:"identity"`
	IncludeBuiltins    bool   `mapstructure:"include_builtins"`
	MaxUnwrap          int    `mapstructure:"max_unwrap"`
	MaxConversionDepth int    `mapstructure:"max_conversion_depth"`
	FreezeOnQuery      bool   `mapstructure:"freeze_on_query"`
}

// Load reads a configuration file (YAML, TOML or JSON, picked by
// extension) and RTR_* environment overrides. An empty path reads
// environment and defaults only. Options are applied last.
func Load(path string, opts ...Option) (apis.Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("identity", DefaultIdentity.String())
	v.SetDefault("include_builtins", DefaultIncludeBuiltins)
	v.SetDefault("max_unwrap", DefaultMaxUnwrap)
	v.SetDefault("max_conversion_depth", DefaultMaxConversionDepth)
	v.SetDefault("freeze_on_query", DefaultFreezeOnQuery)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return apis.Config{}, fmt.Errorf("rtr(config): read %s: %w", path, err)
			}
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return apis.Config{}, fmt.Errorf("rtr(config): unmarshal: %w", err)
	}

	mode, err := apis.ParseIdentityMode(f.Identity)
	if err != nil {
		return apis.Config{}, fmt.Errorf("rtr(config): %w", err)
	}

	all := []Option{
		WithIdentity(mode),
		WithIncludeBuiltins(f.IncludeBuiltins),
		WithMaxUnwrap(f.MaxUnwrap),
		WithMaxConversionDepth(f.MaxConversionDepth),
		WithFreezeOnQuery(f.FreezeOnQuery),
	}
	return NewConfig(append(all, opts...)...), nil
}
