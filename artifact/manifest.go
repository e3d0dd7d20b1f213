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

package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the manifest file name looked up by FindAndLoad.
const ManifestFile = "rtr.toml"

// Manifest is the content of an rtr.toml file:
//
//	[options]
//	shared = false
//	rtti = true
//	static_runtime = false
//	build_type = "Debug"
//	os = "Windows"
type Manifest struct {
	Options Options `toml:"options"`

	// Path is the file the manifest was loaded from (set at load time).
	Path string `toml:"-"`
}

// LoadManifest parses the manifest at path. Keys left out keep their
// DefaultOptions value; unknown keys are an error.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	m, err := ParseManifest(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if m.Path, err = filepath.Abs(path); err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest parses manifest text.
func ParseManifest(text string) (*Manifest, error) {
	m := Manifest{Options: DefaultOptions()}
	md, err := toml.Decode(text, &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := m.Options.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find an rtr.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ManifestFile)
		if _, err := os.Stat(path); err == nil {
			return LoadManifest(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}
