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

package registry_test

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/config"
	"dirpx.dev/rtr/registry"
	"dirpx.dev/rtr/variant"
)

type Point struct {
	X, Y int
	tag  string
}

func NewPoint(x, y int) Point { return Point{X: x, Y: y} }

func (p Point) Dist2() int { return p.X*p.X + p.Y*p.Y }

func (p *Point) Translate(dx, dy int) { p.X += dx; p.Y += dy }

type Animal struct{ Name string }

func (a *Animal) Speak() string { return a.Name + " makes a sound" }

type Dog struct {
	Animal
	Tricks int
}

func (d *Dog) Fetch() string { return d.Name + " fetches" }

type Puppy struct{ Dog }

type Color int

const (
	Red Color = iota
	Green
	Blue
)

func names(seq func(func(registry.Type) bool)) []string {
	var out []string
	for t := range seq {
		out = append(out, t.Name())
	}
	return out
}

func registerPoint(t *testing.T, r *registry.Registry) registry.Type {
	t.Helper()
	typ, err := r.RegisterType(reflect.TypeFor[Point](), "Point", func(b *registry.TypeBuilder) error {
		if err := b.Constructor(NewPoint, registry.MemberOptions{ParamNames: []string{"x", "y"}}); err != nil {
			return err
		}
		if err := b.Field("x", "X", registry.MemberOptions{}); err != nil {
			return err
		}
		if err := b.Field("y", "Y", registry.MemberOptions{}); err != nil {
			return err
		}
		if err := b.Method("dist2", Point.Dist2, registry.MemberOptions{}); err != nil {
			return err
		}
		return b.Method("translate", (*Point).Translate, registry.MemberOptions{})
	})
	require.NoError(t, err)
	return typ
}

func TestPointScenario(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	registerPoint(t, r)

	pt := r.TypeByName("Point")
	require.True(t, pt.IsValid())
	require.True(t, pt.IsRegistered())
	assert.Equal(t, registry.Get[Point](r), pt)
	assert.Equal(t, r.TypeOf(Point{}).ID(), pt.ID())

	obj, err := pt.Create(3, 4)
	require.NoError(t, err)
	x, err := pt.Property("x").Get(obj)
	require.NoError(t, err)
	assert.Equal(t, 3, x.Interface())

	z := pt.Property("z")
	assert.False(t, z.IsValid(), "unknown properties are absent, not errors")
	assert.False(t, r.TypeByName("Nope").IsValid())
}

func TestRegisteredTypesRoundTrip(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	registerPoint(t, r)
	_, err := r.RegisterType(reflect.TypeFor[Animal](), "Animal", nil)
	require.NoError(t, err)

	for _, typ := range r.Types() {
		got := r.TypeByName(typ.Name())
		assert.True(t, got.IsValid(), typ.Name())
		assert.Equal(t, typ.ID(), got.ID(), typ.Name())
		assert.Equal(t, typ.ID(), r.TypeFor(typ.ReflectType()).ID())
	}
	assert.Equal(t, 2, r.Count())
}

func TestDuplicateRegistrationIsAtomic(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	registerPoint(t, r)
	before := r.TypeByName("Point").Properties()

	_, err := r.RegisterType(reflect.TypeFor[Point](), "Point2", func(b *registry.TypeBuilder) error {
		return b.Field("extra", "Y", registry.MemberOptions{})
	})
	assert.ErrorIs(t, err, apis.ErrDuplicateRegistration)

	_, err = r.RegisterType(reflect.TypeFor[Animal](), "Point", nil)
	assert.ErrorIs(t, err, apis.ErrDuplicateRegistration)

	assert.Equal(t, 1, r.Count())
	assert.False(t, r.TypeByName("Point2").IsValid())
	assert.False(t, r.TypeFor(reflect.TypeFor[Animal]()).IsRegistered())
	assert.Equal(t, before, r.TypeByName("Point").Properties())
	assert.False(t, r.TypeByName("Point").Property("extra").IsValid())
}

func TestBuilderErrorInstallsNothing(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	boom := errors.New("boom")

	_, err := r.RegisterType(reflect.TypeFor[Point](), "Point", func(b *registry.TypeBuilder) error {
		require.NoError(t, b.Field("x", "X", registry.MemberOptions{}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = r.RegisterType(reflect.TypeFor[Point](), "Point", func(b *registry.TypeBuilder) error {
		_ = b.Field("hidden", "tag", registry.MemberOptions{})
		return nil
	})
	assert.ErrorIs(t, err, apis.ErrInvalidSignature, "a swallowed member error still fails the type")

	assert.Equal(t, 0, r.Count())
	registerPoint(t, r)
}

func TestHierarchy_DerivedRegisteredFirst(t *testing.T) {
	r := registry.New(config.DefaultConfig())

	_, err := r.RegisterType(reflect.TypeFor[Dog](), "Dog", func(b *registry.TypeBuilder) error {
		return b.BaseNamed("Animal")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Animal"}, r.Pending())

	animal, err := r.RegisterType(reflect.TypeFor[Animal](), "Animal", nil)
	require.NoError(t, err)

	dog := r.TypeByName("Dog")
	assert.Contains(t, names(animal.DerivedClasses()), "Dog")
	assert.Contains(t, names(dog.BaseClasses()), "Animal")
	assert.True(t, dog.IsDerivedFrom(animal))
	assert.False(t, animal.IsDerivedFrom(dog))
	assert.Empty(t, r.Pending())
}

func TestHierarchy_TypedBaseAndTransitivity(t *testing.T) {
	r := registry.New(config.DefaultConfig())

	_, err := r.RegisterType(reflect.TypeFor[Puppy](), "Puppy", func(b *registry.TypeBuilder) error {
		return b.Base(reflect.TypeFor[Dog]())
	})
	require.NoError(t, err)
	puppy := r.TypeByName("Puppy")
	assert.Empty(t, names(puppy.BaseClasses()), "unregistered bases are not listed")

	_, err = r.RegisterType(reflect.TypeFor[Dog](), "Dog", func(b *registry.TypeBuilder) error {
		return b.Base(reflect.TypeFor[Animal]())
	})
	require.NoError(t, err)
	animal, err := r.RegisterType(reflect.TypeFor[Animal](), "Animal", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Dog", "Animal"}, names(puppy.BaseClasses()))
	assert.Equal(t, []string{"Dog", "Puppy"}, names(animal.DerivedClasses()))

	// sequences stop early
	var first []string
	for b := range puppy.BaseClasses() {
		first = append(first, b.Name())
		break
	}
	assert.Equal(t, []string{"Dog"}, first)
}

func TestHierarchy_RejectsCycles(t *testing.T) {
	r := registry.New(config.DefaultConfig())

	_, err := r.RegisterType(reflect.TypeFor[Dog](), "Dog", func(b *registry.TypeBuilder) error {
		return b.Base(reflect.TypeFor[Dog]())
	})
	assert.ErrorIs(t, err, apis.ErrInvalidHierarchy)

	_, err = r.RegisterType(reflect.TypeFor[Dog](), "Dog", func(b *registry.TypeBuilder) error {
		return b.BaseNamed("Animal")
	})
	require.NoError(t, err)

	_, err = r.RegisterType(reflect.TypeFor[Animal](), "Animal", func(b *registry.TypeBuilder) error {
		return b.Base(reflect.TypeFor[Dog]())
	})
	assert.ErrorIs(t, err, apis.ErrInvalidHierarchy)
	assert.False(t, r.TypeByName("Animal").IsRegistered())

	_, err = r.RegisterType(reflect.TypeFor[Animal](), "Animal", func(b *registry.TypeBuilder) error {
		return b.BaseNamed("Puppy")
	})
	require.NoError(t, err, "a pending link is not a cycle yet")

	_, err = r.RegisterType(reflect.TypeFor[Puppy](), "Puppy", func(b *registry.TypeBuilder) error {
		return b.BaseNamed("Dog")
	})
	assert.ErrorIs(t, err, apis.ErrInvalidHierarchy)
}

func TestInheritedMembersAndUpcast(t *testing.T) {
	r := registry.New(config.DefaultConfig())

	_, err := r.RegisterType(reflect.TypeFor[Dog](), "Dog", func(b *registry.TypeBuilder) error {
		if err := b.BaseNamed("Animal"); err != nil {
			return err
		}
		if err := b.Field("tricks", "Tricks", registry.MemberOptions{}); err != nil {
			return err
		}
		return b.Method("fetch", (*Dog).Fetch, registry.MemberOptions{})
	})
	require.NoError(t, err)
	_, err = r.RegisterType(reflect.TypeFor[Animal](), "Animal", func(b *registry.TypeBuilder) error {
		if err := b.Field("name", "Name", registry.MemberOptions{}); err != nil {
			return err
		}
		return b.Method("speak", (*Animal).Speak, registry.MemberOptions{})
	})
	require.NoError(t, err)

	dog := r.TypeByName("Dog")
	d := &Dog{Animal: Animal{Name: "Rex"}}

	out, err := dog.Invoke("speak", d)
	require.NoError(t, err)
	assert.Equal(t, "Rex makes a sound", out.Interface())

	require.NoError(t, dog.Property("name").Set(d, "Fido"))
	assert.Equal(t, "Fido", d.Name)

	assert.False(t, dog.Property("name", apis.DefaultFilter|apis.FilterDeclaredOnly).IsValid())
	assert.Len(t, dog.Properties(), 2)
	assert.Len(t, dog.Properties(apis.DefaultFilter|apis.FilterDeclaredOnly), 1)

	a, err := variant.Get[*Animal](r.Variant(d))
	require.NoError(t, err)
	assert.Same(t, &d.Animal, a)

	_, err = r.TypeByName("Animal").Method("speak").Invoke(Point{})
	assert.ErrorIs(t, err, apis.ErrInvalidInstance)

	_, err = dog.Method("fetch").Invoke(Dog{})
	assert.ErrorIs(t, err, apis.ErrInvalidInstance, "pointer receivers need a pointer instance")
}

func TestMethodInvocation(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	pt := registerPoint(t, r)
	p := &Point{X: 1, Y: 2}

	_, err := pt.Invoke("translate", p, 2, "3")
	require.NoError(t, err)
	assert.Equal(t, Point{X: 3, Y: 5}, *p)

	out, err := pt.Invoke("dist2", p)
	require.NoError(t, err)
	assert.Equal(t, 34, out.Interface())

	var am *apis.ArgumentMismatchError
	_, err = pt.Invoke("translate", p, 1)
	require.ErrorAs(t, err, &am)
	assert.Equal(t, 1, am.Position)

	_, err = pt.Invoke("translate", p, 1, Point{})
	require.ErrorAs(t, err, &am)
	assert.Equal(t, 1, am.Position)
	assert.Equal(t, Point{X: 3, Y: 5}, *p, "a rejected call never runs")

	_, err = pt.Invoke("nope", p)
	assert.ErrorIs(t, err, registry.ErrNotFound)

	params := pt.Method("translate").Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "int", params[0].Type.Name())
	assert.Equal(t, "translate(int, int)", pt.Method("translate").Signature())

	ctor := pt.Constructor(reflect.TypeFor[int](), reflect.TypeFor[int]())
	require.True(t, ctor.IsValid())
	assert.Equal(t, "x", ctor.Parameters()[0].Name)
	assert.False(t, pt.Constructor(reflect.TypeFor[string]()).IsValid())
}

type Shape struct{ Sides int }

func (s Shape) Describe() string { return fmt.Sprintf("%d sides", s.Sides) }
func (s Shape) DescribeAs(p string) string { return p + ":" + s.Describe() }

func TestOverloadsAndPolicies(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	shared := &Shape{Sides: 3}

	typ, err := r.RegisterType(reflect.TypeFor[Shape](), "Shape", func(b *registry.TypeBuilder) error {
		if err := b.Constructor(func() Shape { return Shape{} }, registry.MemberOptions{}); err != nil {
			return err
		}
		if err := b.Constructor(func(n int) *Shape { return &Shape{Sides: n} }, registry.MemberOptions{Policy: apis.PolicyShared}); err != nil {
			return err
		}
		if err := b.Method("describe", Shape.Describe, registry.MemberOptions{}); err != nil {
			return err
		}
		if err := b.Method("describe", Shape.DescribeAs, registry.MemberOptions{}); err != nil {
			return err
		}
		if err := b.StaticMethod("triangle", func() *Shape { return shared }, registry.MemberOptions{Policy: apis.PolicyReference}); err != nil {
			return err
		}
		return b.StaticMethod("ignored", func() int { return 1 }, registry.MemberOptions{Policy: apis.PolicyDiscard})
	})
	require.NoError(t, err)

	v, err := typ.Create()
	require.NoError(t, err)
	assert.Equal(t, apis.Owned, v.Ownership())
	assert.Equal(t, Shape{}, v.Interface())

	v, err = typ.Create(4)
	require.NoError(t, err)
	assert.Equal(t, apis.Shared, v.Ownership())
	assert.Equal(t, &Shape{Sides: 4}, v.Interface())

	out, err := typ.Invoke("describe", Shape{Sides: 5})
	require.NoError(t, err)
	assert.Equal(t, "5 sides", out.Interface())
	out, err = typ.Invoke("describe", Shape{Sides: 5}, "pent")
	require.NoError(t, err)
	assert.Equal(t, "pent:5 sides", out.Interface())
	assert.Len(t, typ.Overloads("describe"), 2)

	ref, err := typ.Invoke("triangle", nil)
	require.NoError(t, err)
	assert.Equal(t, apis.Borrowed, ref.Ownership())
	assert.Same(t, shared, ref.Interface())

	gone, err := typ.Invoke("ignored", nil)
	require.NoError(t, err)
	assert.False(t, gone.IsValid())

	_, err = r.RegisterType(reflect.TypeFor[Animal](), "Animal", func(b *registry.TypeBuilder) error {
		return b.StaticMethod("make", func() *Animal { return nil }, registry.MemberOptions{})
	})
	assert.ErrorIs(t, err, apis.ErrPolicyRequired)
}

type Account struct{ balance int }

func (a Account) Balance() int { return a.balance }
func (a *Account) SetBalance(v int) { a.balance = v }
func (a Account) Owner() string { return "ops" }

func TestPropertiesAccessorsAndPolicies(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	typ, err := r.RegisterType(reflect.TypeFor[Account](), "Account", func(b *registry.TypeBuilder) error {
		if err := b.Property("balance", Account.Balance, (*Account).SetBalance, registry.MemberOptions{}); err != nil {
			return err
		}
		return b.Property("owner", Account.Owner, nil, registry.MemberOptions{Access: apis.Private})
	})
	require.NoError(t, err)

	acc := &Account{}
	bal := typ.Property("balance")
	require.NoError(t, bal.Set(acc, "250"))
	got, err := bal.Get(*acc)
	require.NoError(t, err)
	assert.Equal(t, 250, got.Interface())

	var am *apis.ArgumentMismatchError
	require.ErrorAs(t, bal.Set(acc, "lots"), &am)
	assert.Equal(t, 0, am.Position)

	assert.False(t, typ.Property("owner").IsValid(), "private members need FilterNonPublic")
	owner := typ.Property("owner", apis.FilterInstance|apis.FilterNonPublic)
	require.True(t, owner.IsValid())
	assert.True(t, owner.IsReadOnly())
	assert.ErrorIs(t, owner.Set(acc, "x"), apis.ErrReadOnly)

	pt := registerPoint(t, r)
	p := &Point{X: 7}
	_, err = r.RegisterType(reflect.TypeFor[Dog](), "Dog", func(b *registry.TypeBuilder) error {
		return b.Field("tricks", "Tricks", registry.MemberOptions{Policy: apis.PolicyReference})
	})
	require.NoError(t, err)
	d := &Dog{}
	ref, err := r.TypeByName("Dog").Property("tricks").Get(d)
	require.NoError(t, err)
	*ref.Interface().(*int) = 9
	assert.Equal(t, 9, d.Tricks)

	assert.ErrorIs(t, pt.Property("x").Set(Point{}, 1), apis.ErrInvalidInstance, "fields are set through pointers")
	require.NoError(t, pt.Property("x").Set(p, 8))
	assert.Equal(t, 8, p.X)

	_, err = r.RegisterType(reflect.TypeFor[Animal](), "Animal", func(b *registry.TypeBuilder) error {
		return b.Property("name", func(a Animal) string { return a.Name }, nil, registry.MemberOptions{Policy: apis.PolicyReference})
	})
	assert.ErrorIs(t, err, apis.ErrInvalidSignature)
}

func TestEnumeration(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	typ, err := r.RegisterType(reflect.TypeFor[Color](), "Color", func(b *registry.TypeBuilder) error {
		for _, kv := range []struct {
			n string
			v Color
		}{{"red", Red}, {"green", Green}, {"blue", Blue}, {"azure", Blue}} {
			if err := b.EnumValue(kv.n, kv.v); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	require.True(t, typ.IsEnumeration())

	e := typ.Enumeration()
	assert.Equal(t, []string{"red", "green", "blue", "azure"}, e.Names())
	assert.Equal(t, "int", e.UnderlyingType().Name())
	assert.Equal(t, Green, e.Value("green").Interface())
	assert.False(t, e.Value("purple").IsValid())
	assert.Equal(t, "blue", e.NameOf(Blue), "aliases resolve to the first name")
	assert.Equal(t, "green", e.NameOf(1))
	assert.Equal(t, "", e.NameOf(42))

	c, err := variant.Get[Color](r.Variant("blue"))
	require.NoError(t, err)
	assert.Equal(t, Blue, c)
	s, ok := r.Variant(Green).ToString()
	assert.True(t, ok)
	assert.Equal(t, "green", s)
	n, ok := r.Variant(Blue).ToInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(2), n)
	_, err = variant.Get[Color](r.Variant(7))
	assert.ErrorIs(t, err, apis.ErrConversion)

	lt, err := r.Variant(Red).Less(r.Variant(Blue))
	require.NoError(t, err)
	assert.True(t, lt)

	_, err = r.RegisterType(reflect.TypeFor[Point](), "", func(b *registry.TypeBuilder) error {
		return b.EnumValue("a", Point{})
	})
	assert.ErrorIs(t, err, apis.ErrInvalidSignature)

	type Level uint8
	_, err = r.RegisterType(reflect.TypeFor[Level](), "Level", func(b *registry.TypeBuilder) error {
		if err := b.EnumValue("low", Level(0)); err != nil {
			return err
		}
		return b.EnumValue("low", Level(1))
	})
	assert.ErrorIs(t, err, apis.ErrDuplicateRegistration)
}

func TestMetadata(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	typ, err := r.RegisterType(reflect.TypeFor[Point](), "Point", func(b *registry.TypeBuilder) error {
		if err := b.Metadata("version", 2); err != nil {
			return err
		}
		return b.Field("x", "X", registry.MemberOptions{Metadata: []registry.MetaPair{{Key: "unit", Value: "px"}}})
	})
	require.NoError(t, err)

	assert.Equal(t, 2, typ.Metadata("version").Interface())
	assert.False(t, typ.Metadata("missing").IsValid())
	assert.Equal(t, "px", typ.Property("x").Metadata("unit").Interface())

	r.Freeze()
	require.NoError(t, typ.AddMetadata("late", true), "metadata may be added after freeze")
	assert.Equal(t, true, typ.Metadata("late").Interface())
	assert.ErrorIs(t, typ.AddMetadata("late", false), apis.ErrDuplicateRegistration)
	assert.ErrorIs(t, typ.AddMetadata([]int{1}, 1), apis.ErrInvalidSignature)
	assert.Equal(t, []any{"version", "late"}, typ.MetadataKeys())
}

type Widget struct{}

func (*Widget) TypeDescription() string { return "a thing on screen" }

type Gadget struct{}

func (Gadget) TypeDescription() string { return "a useful device" }

func TestMetadata_Describer(t *testing.T) {
	r := registry.New(config.DefaultConfig())

	w, err := r.RegisterType(reflect.TypeFor[Widget](), "Widget", nil)
	require.NoError(t, err)
	assert.Equal(t, "a thing on screen", w.Metadata(apis.MetaDescription).Interface())

	g, err := r.RegisterType(reflect.TypeFor[Gadget](), "Gadget", func(b *registry.TypeBuilder) error {
		return b.Metadata(apis.MetaDescription, "overridden")
	})
	require.NoError(t, err)
	assert.Equal(t, "overridden", g.Metadata(apis.MetaDescription).Interface())

	p, err := r.RegisterType(reflect.TypeFor[*Gadget](), "GadgetPtr", nil)
	require.NoError(t, err)
	assert.Equal(t, "a useful device", p.Metadata(apis.MetaDescription).Interface())
}

func TestFreeze(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	registerPoint(t, r)
	r.Freeze()
	assert.True(t, r.Frozen())

	_, err := r.RegisterType(reflect.TypeFor[Animal](), "Animal", nil)
	assert.ErrorIs(t, err, apis.ErrFrozen)
	_, err = r.RegisterFunction("f", func() {}, registry.MemberOptions{})
	assert.ErrorIs(t, err, apis.ErrFrozen)

	q := registry.New(config.NewConfig(config.WithFreezeOnQuery(true)))
	registerPoint(t, q)
	assert.False(t, q.Frozen())
	_ = q.TypeByName("Point")
	assert.True(t, q.Frozen())
}

var counter = 10

func TestGlobals(t *testing.T) {
	r := registry.New(config.DefaultConfig())

	_, err := r.RegisterFunction("add", func(a, b int) int { return a + b }, registry.MemberOptions{ParamNames: []string{"a", "b"}})
	require.NoError(t, err)
	_, err = r.RegisterFunction("add", func(a, b string) string { return a + b }, registry.MemberOptions{})
	require.NoError(t, err)
	_, err = r.RegisterFunction("greet", func(name string) string { return "hi " + name }, registry.MemberOptions{Defaults: []any{"there"}})
	require.NoError(t, err)

	out, err := r.Invoke("add", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Interface())
	out, err = r.Invoke("add", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "ab", out.Interface())
	out, err = r.Method("greet").Invoke(nil)
	require.NoError(t, err)
	assert.Equal(t, "hi there", out.Interface())

	_, err = r.Invoke("missing")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.False(t, r.Method("missing").IsValid())
	assert.Len(t, r.Methods(), 3)

	v, err := r.RegisterVariable("counter", &counter, registry.MemberOptions{})
	require.NoError(t, err)
	require.NoError(t, v.Set(nil, 11))
	got, err := r.Property("counter").Get(nil)
	require.NoError(t, err)
	assert.Equal(t, 11, got.Interface())
	assert.True(t, r.Property("counter").IsStatic())

	_, err = r.RegisterVariable("counter", &counter, registry.MemberOptions{})
	assert.ErrorIs(t, err, apis.ErrDuplicateRegistration)
	_, err = r.RegisterVariable("bad", counter, registry.MemberOptions{})
	assert.ErrorIs(t, err, apis.ErrInvalidSignature)
	assert.Len(t, r.Properties(), 1)
}

type Node struct {
	Val  int
	Next *Node
}

func TestPointerField_NeedsPolicy(t *testing.T) {
	r := registry.New(config.DefaultConfig())

	_, err := r.RegisterType(reflect.TypeFor[Node](), "Node", func(b *registry.TypeBuilder) error {
		return b.Field("next", "Next", registry.MemberOptions{})
	})
	assert.ErrorIs(t, err, apis.ErrPolicyRequired)
	assert.False(t, r.TypeByName("Node").IsValid())

	typ, err := r.RegisterType(reflect.TypeFor[Node](), "Node", func(b *registry.TypeBuilder) error {
		return b.Field("next", "Next", registry.MemberOptions{Policy: apis.PolicyCopy})
	})
	require.NoError(t, err)

	tail := &Node{Val: 2}
	head := &Node{Val: 1, Next: tail}
	got, err := typ.Property("next").Get(head)
	require.NoError(t, err)
	assert.Equal(t, apis.Owned, got.Ownership())
	assert.Equal(t, Node{Val: 2}, got.Interface())
	tail.Val = 3
	assert.Equal(t, Node{Val: 2}, got.Interface())

	got, err = typ.Property("next").Get(tail)
	require.NoError(t, err)
	assert.False(t, got.IsValid())

	var shared *Node
	_, err = r.RegisterVariable("head", &shared, registry.MemberOptions{})
	assert.ErrorIs(t, err, apis.ErrPolicyRequired)
	v, err := r.RegisterVariable("head", &shared, registry.MemberOptions{Policy: apis.PolicyReference})
	require.NoError(t, err)
	got, err = v.Get(nil)
	require.NoError(t, err)
	assert.Equal(t, apis.Borrowed, got.Ownership())
	assert.Same(t, &shared, got.Interface())
}

func TestIdentityByName(t *testing.T) {
	r := registry.New(config.NewConfig(config.WithIdentity(apis.IdentityName)))
	registerPoint(t, r)

	typ := r.TypeOf(Point{})
	assert.Equal(t, "Point", typ.Name())
	assert.Equal(t, r.TypeByName("Point").ID(), typ.ID())

	ptr := r.TypeOf(&Point{})
	assert.True(t, ptr.IsPointer())
	assert.Equal(t, typ, ptr.RawType())
	assert.True(t, slices.Contains(r.Types(), typ))
}
