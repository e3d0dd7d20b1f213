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

// Package demo registers a small set of types into the global registry.
// The rtr command uses it to exercise registration, lookup and invocation.
package demo

import (
	"fmt"
	"math"

	"dirpx.dev/rtr"
	"dirpx.dev/rtr/registration"
	"dirpx.dev/rtr/registry"
)

func init() {
	// Dog goes first on purpose: its base is registered by a later unit.
	rtr.Registration(registerDog)
	rtr.Registration(registerAnimal)
	rtr.Registration(registerGeometry)
	rtr.Registration(registerFunctions)
}

// Point is a 2D point with integer coordinates.
type Point struct{ X, Y int }

// NewPoint returns the point (x, y).
func NewPoint(x, y int) Point { return Point{X: x, Y: y} }

// Distance returns the euclidean distance to o.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(float64(p.X-o.X), float64(p.Y-o.Y))
}

// Animal is the base of Dog.
type Animal struct{ Name string }

// Speak returns a greeting.
func (a Animal) Speak() string { return a.Name + " makes a sound" }

// Dog is an Animal with tricks.
type Dog struct {
	Animal
	Tricks []string
}

// Color is an enumeration.
type Color int

const (
	Red Color = iota
	Green
	Blue
)

// Verbose is a global variable exposed through the registry.
var Verbose bool

func registerAnimal(reg *registry.Registry) error {
	_, err := registration.Class[Animal](reg, "Animal").
		Field("Name", registration.WithName("name")).
		Method("speak", Animal.Speak).
		Done()
	return err
}

func registerDog(reg *registry.Registry) error {
	_, err := registration.Class[Dog](reg, "Dog").
		BaseNamed("Animal").
		Field("Tricks", registration.WithName("tricks")).
		Done()
	return err
}

func registerGeometry(reg *registry.Registry) error {
	_, err := registration.Class[Point](reg, "Point", registration.WithMetadata("doc", "a 2D point")).
		Constructor(NewPoint, registration.WithParamNames("x", "y"), registration.WithDefaults(0)).
		Field("X", registration.WithName("x")).
		Field("Y", registration.WithName("y")).
		Method("distance", Point.Distance, registration.WithParamNames("other")).
		Done()
	if err != nil {
		return err
	}
	registration.Comparable[Point](reg)
	registration.Printer(reg, func(p Point) string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) })

	_, err = registration.Enum[Color](reg, "Color").
		Value("red", Red).
		Value("green", Green).
		Value("blue", Blue).
		Done()
	return err
}

func registerFunctions(reg *registry.Registry) error {
	if _, err := registration.Function(reg, "add", func(a, b int) int { return a + b },
		registration.WithParamNames("a", "b")); err != nil {
		return err
	}
	if _, err := registration.Function(reg, "add", func(a, b float64) float64 { return a + b },
		registration.WithParamNames("a", "b")); err != nil {
		return err
	}
	_, err := registration.Variable(reg, "verbose", &Verbose)
	return err
}
