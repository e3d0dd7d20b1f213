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
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dirpx.dev/rtr"
	"dirpx.dev/rtr/registry"
)

// errSmokeFailed is returned when at least one smoke check fails.
var errSmokeFailed = errors.New("smoke test failed")

// check is one smoke step. It returns a short detail on success.
type check struct {
	name string
	run  func(reg *registry.Registry) (string, error)
}

// smokeChecks cover registration, lookup, invocation and type identity.
var smokeChecks = []check{
	{"registration", func(reg *registry.Registry) (string, error) {
		if err := rtr.RegistrationErr(); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d types", reg.Count()), nil
	}},
	{"construct and read", func(reg *registry.Registry) (string, error) {
		pt := reg.TypeByName("Point")
		obj, err := pt.Create(3, 4)
		if err != nil {
			return "", err
		}
		x, err := pt.Property("x").Get(obj)
		if err != nil {
			return "", err
		}
		if n, ok := x.ToInt(); !ok || n != 3 {
			return "", fmt.Errorf("Point(3, 4).x = %v, want 3", x)
		}
		if pt.Property("z").IsValid() {
			return "", errors.New("Point.z should not exist")
		}
		return "Point(3, 4).x = 3", nil
	}},
	{"invoke", func(reg *registry.Registry) (string, error) {
		pt := reg.TypeByName("Point")
		origin, err := pt.Create(0)
		if err != nil {
			return "", err
		}
		target, err := pt.Create(3, 4)
		if err != nil {
			return "", err
		}
		d, err := pt.Invoke("distance", origin, target)
		if err != nil {
			return "", err
		}
		if f, ok := d.ToFloat64(); !ok || f != 5 {
			return "", fmt.Errorf("distance = %v, want 5", d)
		}
		sum, err := reg.Invoke("add", 2, 3)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("distance = %v, add(2, 3) = %v", d, sum), nil
	}},
	{"hierarchy", func(reg *registry.Registry) (string, error) {
		var derived []string
		for t := range reg.TypeByName("Animal").DerivedClasses() {
			derived = append(derived, t.Name())
		}
		if !slices.Contains(derived, "Dog") {
			return "", fmt.Errorf("Animal derived classes %v lack Dog", derived)
		}
		return fmt.Sprintf("Animal <- %v", derived), nil
	}},
	{"type identity", func(reg *registry.Registry) (string, error) {
		vec := []float64{1, 2, 3}
		byType, byValue := registry.Get[[]float64](reg), reg.TypeOf(vec)
		if byType != byValue || byType.Name() != byValue.Name() {
			return "", fmt.Errorf("%q != %q", byType.Name(), byValue.Name())
		}
		return byType.Name(), nil
	}},
}

// NewSmokeCommand creates the smoke command
func NewSmokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Run a registration, lookup and invocation round trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmoke(cmd.OutOrStdout(), rtr.Registry())
		},
	}
}

func runSmoke(out io.Writer, reg *registry.Registry) error {
	successColor := color.New(color.FgGreen, color.Bold)
	errorColor := color.New(color.FgRed, color.Bold)

	failed := 0
	for _, c := range smokeChecks {
		detail, err := c.run(reg)
		if err != nil {
			failed++
			errorColor.Fprint(out, "FAIL ")
			fmt.Fprintf(out, "%s: %v\n", c.name, err)
			continue
		}
		successColor.Fprint(out, "PASS ")
		fmt.Fprintf(out, "%s: %s\n", c.name, detail)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d checks", errSmokeFailed, failed, len(smokeChecks))
	}
	return nil
}
