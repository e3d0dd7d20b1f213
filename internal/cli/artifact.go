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

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dirpx.dev/rtr/artifact"
)

// NewArtifactCommand creates the artifact command
func NewArtifactCommand() *cobra.Command {
	var (
		manifestPath string
		definitions  bool
		opts         = artifact.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Print the core library name for a set of build options",
		Long: `Print the core library name for a set of build options.

Options come from an rtr.toml manifest (--manifest, or the nearest one
above the working directory) and are overridden by flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadOptions(manifestPath)
			if err != nil {
				return err
			}

			// Flags the user set win over the manifest.
			f := cmd.Flags()
			if f.Changed("shared") {
				base.Shared = opts.Shared
			}
			if f.Changed("rtti") {
				base.RTTI = opts.RTTI
			}
			if f.Changed("static-runtime") {
				base.StaticRuntime = opts.StaticRuntime
			}
			if f.Changed("build-type") {
				base.BuildType = opts.BuildType
			}
			if f.Changed("os") {
				base.OS = opts.OS
			}
			if err := base.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, artifact.Name(base))
			if definitions {
				for _, d := range artifact.Definitions(base) {
					fmt.Fprintln(out, d)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "path to an rtr.toml manifest")
	cmd.Flags().BoolVar(&definitions, "definitions", false, "also print the build definitions")
	cmd.Flags().BoolVar(&opts.Shared, "shared", opts.Shared, "build a shared library")
	cmd.Flags().BoolVar(&opts.RTTI, "rtti", opts.RTTI, "build with native type identity")
	cmd.Flags().BoolVar(&opts.StaticRuntime, "static-runtime", opts.StaticRuntime, "link the runtime statically")
	cmd.Flags().StringVar(&opts.BuildType, "build-type", opts.BuildType, "Debug, Release, RelWithDebInfo or MinSizeRel")
	cmd.Flags().StringVar(&opts.OS, "os", opts.OS, "Windows, Linux or Macos")

	return cmd
}

// loadOptions reads the manifest at path, or the nearest rtr.toml when
// path is empty. Without a manifest the defaults apply.
func loadOptions(path string) (artifact.Options, error) {
	if path != "" {
		m, err := artifact.LoadManifest(path)
		if err != nil {
			return artifact.Options{}, err
		}
		return m.Options, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return artifact.Options{}, fmt.Errorf("cannot get working directory: %w", err)
	}
	m, err := artifact.FindAndLoad(wd)
	if err != nil {
		return artifact.Options{}, err
	}
	if m == nil {
		return artifact.DefaultOptions(), nil
	}
	return m.Options, nil
}
