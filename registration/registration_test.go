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

package registration_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/config"
	"dirpx.dev/rtr/registration"
	"dirpx.dev/rtr/registry"
	"dirpx.dev/rtr/variant"
)

type Point struct{ X, Y int }

func NewPoint(x, y int) Point { return Point{X: x, Y: y} }

func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

func (p Point) Scale(k int) Point { return Point{p.X * k, p.Y * k} }

type Animal struct{ Name string }

func (a *Animal) Rename(n string) { a.Name = n }

type Dog struct{ Animal }

type Cat struct{ Animal }

type Weekday int

const (
	Sunday Weekday = iota
	Monday
)

type Version struct{ Major, Minor int }

func newRegistry() *registry.Registry { return registry.New(config.DefaultConfig()) }

func TestClass_PointScenario(t *testing.T) {
	reg := newRegistry()
	_, err := registration.Class[Point](reg, "Point", registration.WithMetadata("doc", "a 2D point")).
		Constructor(NewPoint, registration.WithParamNames("x", "y"), registration.WithDefaults(0)).
		Field("X", registration.WithName("x")).
		Field("Y", registration.WithName("y"), registration.WithReadOnly()).
		Method("add", Point.Add).
		Method("scale", Point.Scale, registration.WithDefaults(2)).
		Done()
	require.NoError(t, err)

	pt := reg.TypeByName("Point")
	require.True(t, pt.IsValid())
	assert.Equal(t, "a 2D point", pt.Metadata("doc").Interface())

	obj, err := pt.Create(3, 4)
	require.NoError(t, err)
	x, err := pt.Property("x").Get(obj)
	require.NoError(t, err)
	assert.Equal(t, 3, x.Interface())
	assert.False(t, pt.Property("z").IsValid())

	obj, err = pt.Create(5)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 5}, obj.Interface())

	p := &Point{}
	assert.ErrorIs(t, pt.Property("y").Set(p, 1), apis.ErrReadOnly)
	require.NoError(t, pt.Property("x").Set(p, 1))

	out, err := pt.Invoke("scale", Point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, Point{X: 2, Y: 4}, out.Interface())

	out, err = pt.Invoke("add", Point{X: 1}, Point{Y: 1})
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 1}, out.Interface())

	var am *apis.ArgumentMismatchError
	_, err = pt.Invoke("add", Point{}, "nope")
	require.ErrorAs(t, err, &am)
	assert.Equal(t, 0, am.Position)
}

func TestClass_DogThenAnimal(t *testing.T) {
	reg := newRegistry()

	_, err := registration.Base[Animal](registration.Class[Dog](reg, "Dog")).Done()
	require.NoError(t, err)
	_, err = registration.Class[Cat](reg, "Cat").BaseNamed("Animal").Done()
	require.NoError(t, err)
	animal, err := registration.Class[Animal](reg, "Animal").
		Field("Name").
		Method("rename", (*Animal).Rename).
		Done()
	require.NoError(t, err)

	var derived []string
	for d := range animal.DerivedClasses() {
		derived = append(derived, d.Name())
	}
	assert.ElementsMatch(t, []string{"Dog", "Cat"}, derived)

	d := &Dog{}
	_, err = reg.TypeByName("Dog").Invoke("rename", d, "Rex")
	require.NoError(t, err)
	assert.Equal(t, "Rex", d.Name)

	name, err := reg.TypeByName("Cat").Property("Name").Get(Cat{Animal{Name: "Tom"}})
	require.NoError(t, err)
	assert.Equal(t, "Tom", name.Interface())
}

func TestClass_FirstErrorWins(t *testing.T) {
	reg := newRegistry()
	_, err := registration.Class[Point](reg, "Point").
		Field("Missing").
		Method("bad", 42).
		Done()
	assert.ErrorIs(t, err, apis.ErrInvalidSignature)
	assert.Contains(t, err.Error(), "Missing")
	assert.Equal(t, 0, reg.Count())

	_, err = registration.Class[Point](reg, "Point").
		Field("X").
		Field("X").
		Done()
	assert.ErrorIs(t, err, apis.ErrDuplicateRegistration)

	assert.Panics(t, func() {
		registration.Class[Point](reg, "Point").StaticMethod("p", func() *Point { return nil }).MustDone()
	})
}

func TestEnum(t *testing.T) {
	reg := newRegistry()
	typ, err := registration.Enum[Weekday](reg, "Weekday", registration.WithMetadata("since", 1)).
		Value("sunday", Sunday).
		Value("monday", Monday).
		Done()
	require.NoError(t, err)

	e := typ.Enumeration()
	require.True(t, e.IsValid())
	assert.Equal(t, "monday", e.NameOf(Monday))
	assert.Equal(t, 1, typ.Metadata("since").Interface())

	day, err := variant.Get[Weekday](reg.Variant("sunday"))
	require.NoError(t, err)
	assert.Equal(t, Sunday, day)
}

func TestMetadata_OptionOrder(t *testing.T) {
	keys := []any{"k0", "k1", "k2", "k3", "k4", "k5", "k6", "k7"}
	opts := make([]registration.Option, len(keys))
	for i, k := range keys {
		opts[i] = registration.WithMetadata(k, i)
	}

	for range 10 {
		reg := newRegistry()
		typ, err := registration.Enum[Weekday](reg, "Weekday", opts...).Value("sunday", Sunday).Done()
		require.NoError(t, err)
		assert.Equal(t, keys, typ.MetadataKeys())

		reg = newRegistry()
		_, err = registration.Class[Point](reg, "Point", opts...).Done()
		require.NoError(t, err)
		assert.Equal(t, keys, reg.TypeByName("Point").MetadataKeys())
	}

	_, err := registration.Class[Point](newRegistry(), "Point",
		registration.WithMetadata("doc", 1), registration.WithMetadata("doc", 2)).Done()
	assert.ErrorIs(t, err, apis.ErrDuplicateRegistration)
}

var verbose = false

func TestFunctionsAndVariables(t *testing.T) {
	reg := newRegistry()

	_, err := registration.Function(reg, "upper", strings.ToUpper, registration.WithParamNames("s"))
	require.NoError(t, err)
	_, err = registration.Function(reg, "fail", func() error { return errors.New("nope") })
	require.NoError(t, err)
	_, err = registration.Variable(reg, "verbose", &verbose)
	require.NoError(t, err)
	_, err = registration.Variable(reg, "frozen", &verbose, registration.WithReadOnly())
	require.NoError(t, err)

	out, err := reg.Invoke("upper", "go")
	require.NoError(t, err)
	assert.Equal(t, "GO", out.Interface())
	assert.Equal(t, "s", reg.Method("upper").Parameters()[0].Name)

	_, err = reg.Invoke("fail")
	assert.ErrorIs(t, err, apis.ErrInvocation)

	require.NoError(t, reg.Property("verbose").Set(nil, "yes"))
	assert.True(t, verbose)
	assert.ErrorIs(t, reg.Property("frozen").Set(nil, false), apis.ErrReadOnly)
}

func TestCapabilities(t *testing.T) {
	reg := newRegistry()
	registration.Comparable[Version](reg)
	registration.Converter(reg, func(s string) (Version, bool) {
		var v Version
		if _, err := fmt.Sscanf(s, "%d.%d", &v.Major, &v.Minor); err != nil {
			return Version{}, false
		}
		return v, true
	})
	registration.Printer(reg, func(v Version) string { return fmt.Sprintf("v%d.%d", v.Major, v.Minor) })

	eq, err := reg.Variant(Version{1, 2}).Equal(reg.Variant("1.2"))
	require.NoError(t, err)
	assert.True(t, eq)
	assert.Equal(t, "v1.2", reg.Variant(Version{1, 2}).String())

	_, err = reg.Variant(Version{}).Less(reg.Variant(Version{}))
	assert.ErrorIs(t, err, apis.ErrNotComparable)

	type Score int
	registration.Ordered[Score](reg)
	c, err := reg.Variant(Score(3)).Compare(reg.Variant(Score(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}
