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
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dirpx.dev/rtr"
	"dirpx.dev/rtr/registry"
)

// NewTypesCommand creates the types command
func NewTypesCommand() *cobra.Command {
	var members bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the types of the demo registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := rtr.Registry()
			if err := rtr.RegistrationErr(); err != nil {
				return err
			}
			return listTypes(cmd.OutOrStdout(), reg, members)
		},
	}

	cmd.Flags().BoolVarP(&members, "members", "m", false, "also list constructors, properties and methods")
	return cmd
}

func listTypes(out io.Writer, reg *registry.Registry, members bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tBASES\tPROPERTIES\tMETHODS")
	fmt.Fprintln(w, "----\t----\t-----\t----------\t-------")

	types := reg.Types()
	for _, t := range types {
		var bases []string
		for b := range t.BaseClasses() {
			bases = append(bases, b.Name())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			t.Name(), kindOf(t), orDash(strings.Join(bases, ", ")),
			len(t.Properties()), len(t.Methods()))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !members {
		return nil
	}

	titleColor := color.New(color.FgCyan, color.Bold)
	for _, t := range types {
		fmt.Fprintln(out)
		titleColor.Fprintln(out, t.Name())
		for _, c := range t.Constructors() {
			fmt.Fprintf(out, "  ctor   %s\n", c.Signature())
		}
		for _, p := range t.Properties() {
			mode := "rw"
			if p.IsReadOnly() {
				mode = "ro"
			}
			fmt.Fprintf(out, "  prop   %s %s (%s)\n", p.Name(), p.Type().Name(), mode)
		}
		for _, m := range t.Methods() {
			fmt.Fprintf(out, "  method %s\n", m.Signature())
		}
		if e := t.Enumeration(); e.IsValid() {
			fmt.Fprintf(out, "  values %s\n", strings.Join(e.Names(), ", "))
		}
	}
	return nil
}

func kindOf(t registry.Type) string {
	switch {
	case t.IsEnumeration():
		return "enum"
	case t.IsClass():
		return "class"
	default:
		return t.ReflectType().Kind().String()
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
