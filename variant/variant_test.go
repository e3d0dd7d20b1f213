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

package variant_test

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/config"
	"dirpx.dev/rtr/ident"
	"dirpx.dev/rtr/variant"
)

type Animal struct{ Name string }

func (a *Animal) Speak() string { return a.Name }

type Dog struct {
	Animal
	Breed string
}

type Celsius float64

type Money struct{ Cents int64 }

func (m Money) String() string { return fmt.Sprintf("$%d.%02d", m.Cents/100, m.Cents%100) }

// edges is a fixed base relation used to exercise upcasts.
type edges map[apis.TypeID]apis.TypeID

func (e edges) IsDerivedFrom(d, b apis.TypeID) bool {
	for cur, ok := e[d]; ok; cur, ok = e[cur] {
		if cur == b {
			return true
		}
	}
	return false
}

func newTable(t *testing.T, opts ...config.Option) *variant.Table {
	t.Helper()
	cfg := config.NewConfig(opts...)
	return variant.NewTable(ident.New(cfg, nil), cfg, nil)
}

func TestVariant_Empty(t *testing.T) {
	tab := newTable(t)

	var zero variant.Variant
	assert.False(t, zero.IsValid())
	assert.Equal(t, apis.InvalidTypeID, zero.TypeID())
	assert.Nil(t, zero.Type())
	assert.Nil(t, zero.Interface())
	assert.Equal(t, "", zero.String())

	assert.False(t, tab.New(nil).IsValid())

	_, err := variant.Get[int](zero)
	assert.ErrorIs(t, err, apis.ErrConversion)

	_, err = zero.Convert(tab.Arena().ID(reflect.TypeFor[int]()))
	assert.ErrorIs(t, err, apis.ErrConversion)

	eq, err := zero.Equal(variant.Variant{})
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestVariant_HoldAndGet(t *testing.T) {
	tab := newTable(t)

	v := tab.New(42)
	require.True(t, v.IsValid())
	assert.Equal(t, tab.Arena().ID(reflect.TypeFor[int]()), v.TypeID())
	assert.Equal(t, "int", v.TypeName())
	assert.Equal(t, apis.Owned, v.Ownership())
	assert.True(t, variant.Is[int](v))
	assert.False(t, variant.Is[int64](v))

	n, err := variant.Get[int](v)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	assert.Equal(t, v, tab.New(v), "wrapping a Variant returns it unchanged")

	p := &Money{Cents: 150}
	pv := tab.New(p)
	assert.Equal(t, apis.Borrowed, pv.Ownership())
	m, err := variant.Get[Money](pv)
	require.NoError(t, err)
	assert.Equal(t, int64(150), m.Cents)

	s, err := variant.Get[fmt.Stringer](tab.New(Money{Cents: 5}))
	require.NoError(t, err)
	assert.Equal(t, "$0.05", s.String())

	_, err = variant.Get[Dog](tab.New(Money{}))
	assert.ErrorIs(t, err, apis.ErrConversion)
}

func TestVariant_OfKeepsStaticType(t *testing.T) {
	tab := newTable(t)

	var s fmt.Stringer = Money{Cents: 1}
	v := variant.Of(tab, s)
	assert.Equal(t, reflect.TypeFor[fmt.Stringer](), v.Type())
	assert.Equal(t, reflect.TypeFor[Money](), tab.New(s).Type())
}

func TestVariant_BuiltinConversions(t *testing.T) {
	tab := newTable(t)

	cases := []struct {
		name string
		in   any
		want any
		ok   bool
	}{
		{"int->string", 12, "12", true},
		{"string->int", "34", 34, true},
		{"string->int partial", "34x", 0, false},
		{"string->int spaces", " 34", 0, false},
		{"string->float", "1.5", 1.5, true},
		{"float->int truncates", 3.9, 3, true},
		{"float->int range", 1e300, int64(0), false},
		{"float NaN->int", math.NaN(), 0, false},
		{"negative->uint", -1, uint(0), false},
		{"int->int8 range", 300, int8(0), false},
		{"int->int8", 100, int8(100), true},
		{"uint64 max->int64", uint64(math.MaxUint64), int64(0), false},
		{"float64->float32 range", 1e300, float32(0), false},
		{"float64->float32", 0.5, float32(0.5), true},
		{"bool->int", true, 1, true},
		{"int->bool", 0, false, true},
		{"string false->bool", " FALSE ", false, true},
		{"string 0->bool", "0", false, true},
		{"string empty->bool", "", false, true},
		{"string other->bool", "no", true, true},
		{"bool->string", true, "true", true},
		{"uint8->float64", uint8(7), 7.0, true},
		{"string->uint16 range", "70000", uint16(0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := tab.Arena().ID(reflect.TypeOf(tc.want))
			out, err := tab.New(tc.in).Convert(target)
			if !tc.ok {
				assert.ErrorIs(t, err, apis.ErrConversion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Interface())
		})
	}
}

func TestVariant_ToHelpers(t *testing.T) {
	tab := newTable(t)

	n, ok := tab.New("7").ToInt()
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	f, ok := tab.New(int16(-3)).ToFloat64()
	assert.True(t, ok)
	assert.Equal(t, -3.0, f)

	b, ok := tab.New("yes").ToBool()
	assert.True(t, ok)
	assert.True(t, b)

	s, ok := tab.New(2.5).ToString()
	assert.True(t, ok)
	assert.Equal(t, "2.5", s)

	_, ok = tab.New(Money{}).ToInt64()
	assert.False(t, ok)
}

func TestVariant_NoBuiltins(t *testing.T) {
	tab := newTable(t, config.WithIncludeBuiltins(false))

	_, err := tab.New(1).Convert(tab.Arena().ID(reflect.TypeFor[string]()))
	assert.ErrorIs(t, err, apis.ErrNoConversionPath)
	assert.False(t, tab.New(1).CanConvert(tab.Arena().ID(reflect.TypeFor[string]())))

	_, err = tab.New(1).Equal(tab.New(1))
	assert.ErrorIs(t, err, apis.ErrNotComparable)
	_, err = tab.New(1).Less(tab.New(2))
	assert.ErrorIs(t, err, apis.ErrNotComparable)
}

func TestVariant_ConverterChain(t *testing.T) {
	tab := newTable(t)
	variant.RegisterConverter(tab, func(c Celsius) (Money, bool) { return Money{Cents: int64(c * 100)}, true })

	// Celsius -> Money -> string needs a second hop through a printer-free converter.
	variant.RegisterConverter(tab, func(m Money) (int64, bool) { return m.Cents, true })

	v := tab.New(Celsius(1.5))
	target := tab.Arena().ID(reflect.TypeFor[int64]())
	require.True(t, v.CanConvert(target))
	out, err := v.Convert(target)
	require.NoError(t, err)
	assert.Equal(t, int64(150), out.Interface())

	n, err := variant.Get[int64](v)
	require.NoError(t, err)
	assert.Equal(t, int64(150), n)

	// Celsius -> Money -> int64 -> string exceeds a depth of two.
	shallow := newTable(t, config.WithMaxConversionDepth(2))
	variant.RegisterConverter(shallow, func(c Celsius) (Money, bool) { return Money{Cents: int64(c * 100)}, true })
	variant.RegisterConverter(shallow, func(m Money) (int64, bool) { return m.Cents, true })
	_, err = shallow.New(Celsius(1)).Convert(shallow.Arena().ID(reflect.TypeFor[string]()))
	assert.ErrorIs(t, err, apis.ErrNoConversionPath)

	_, err = tab.New(Celsius(1)).Convert(tab.Arena().ID(reflect.TypeFor[string]()))
	assert.NoError(t, err)
}

func TestVariant_ConverterRefusal(t *testing.T) {
	tab := newTable(t)
	variant.RegisterConverter(tab, func(m Money) (uint8, bool) {
		if m.Cents > 255 {
			return 0, false
		}
		return uint8(m.Cents), true
	})

	_, err := tab.New(Money{Cents: 1000}).Convert(tab.Arena().ID(reflect.TypeFor[uint8]()))
	assert.ErrorIs(t, err, apis.ErrConversion)
	assert.False(t, errors.Is(err, apis.ErrNoConversionPath))
}

func TestVariant_Upcast(t *testing.T) {
	cfg := config.DefaultConfig()
	arena := ident.New(cfg, nil)
	h := edges{arena.ID(reflect.TypeFor[Dog]()): arena.ID(reflect.TypeFor[Animal]())}
	tab := variant.NewTable(arena, cfg, h)

	d := &Dog{Animal: Animal{Name: "rex"}, Breed: "lab"}
	a, err := variant.Get[*Animal](tab.New(d))
	require.NoError(t, err)
	assert.Same(t, &d.Animal, a)
	assert.Equal(t, "rex", a.Speak())

	av, err := variant.Get[Animal](tab.New(Dog{Animal: Animal{Name: "fido"}}))
	require.NoError(t, err)
	assert.Equal(t, "fido", av.Name)

	_, err = variant.Get[*Animal](tab.New(Dog{}))
	assert.ErrorIs(t, err, apis.ErrConversion, "pointer upcast needs a pointer source")

	_, err = variant.Get[*Dog](tab.New(&Animal{}))
	assert.ErrorIs(t, err, apis.ErrConversion, "downcasts are not conversions")
}

func TestVariant_Compare(t *testing.T) {
	tab := newTable(t)

	eq, err := tab.New(3).Equal(tab.New(3.0))
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = tab.New(int8(-1)).Equal(tab.New(uint64(math.MaxUint64)))
	require.NoError(t, err)
	assert.False(t, eq)

	lt, err := tab.New(-1).Less(tab.New(uint(0)))
	require.NoError(t, err)
	assert.True(t, lt)

	c, err := tab.New("b").Compare(tab.New("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	eq, err = tab.New("12").Equal(tab.New(12))
	require.NoError(t, err)
	assert.True(t, eq, "other operand converts to the receiver's type")

	_, err = tab.New(Money{}).Equal(tab.New(Money{}))
	assert.ErrorIs(t, err, apis.ErrNotComparable)
	_, err = tab.New(Money{}).Less(tab.New(Money{}))
	assert.ErrorIs(t, err, apis.ErrNotComparable)

	variant.RegisterEqual(tab, func(a, b Money) bool { return a.Cents == b.Cents })
	variant.RegisterLess(tab, func(a, b Money) bool { return a.Cents < b.Cents })

	eq, err = tab.New(Money{Cents: 1}).Equal(tab.New(Money{Cents: 1}))
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = tab.New(Money{Cents: 1}).Equal(tab.New("x"))
	require.NoError(t, err)
	assert.False(t, eq, "inconvertible operands are unequal")

	_, err = tab.New(Money{Cents: 1}).Less(tab.New("x"))
	assert.ErrorIs(t, err, apis.ErrNotComparable)

	c, err = tab.New(Money{Cents: 1}).Compare(tab.New(Money{Cents: 9}))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestVariant_String(t *testing.T) {
	tab := newTable(t)

	assert.Equal(t, "$1.05", tab.New(Money{Cents: 105}).String())
	assert.Equal(t, "42", tab.New(42).String())
	assert.Equal(t, "{rex}", tab.New(Animal{Name: "rex"}).String())

	variant.RegisterPrinter(tab, func(a Animal) string { return "animal:" + a.Name })
	assert.Equal(t, "animal:rex", tab.New(Animal{Name: "rex"}).String())

	variant.RegisterConverter(tab, func(c Celsius) (string, bool) { return fmt.Sprintf("%.1fC", float64(c)), true })
	assert.Equal(t, "21.5C", tab.New(Celsius(21.5)).String())
}

func TestVariant_Sequences(t *testing.T) {
	tab := newTable(t)

	xs := []int{1, 2, 3}
	v := tab.New(&xs)
	n, ok := v.Len()
	require.True(t, ok)
	assert.Equal(t, 3, n)
	e, err := v.Index(1)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Interface())
	_, err = v.Index(3)
	assert.ErrorIs(t, err, apis.ErrInvalidInstance)

	_, ok = tab.New(7).Len()
	assert.False(t, ok)
	_, err = tab.New(7).Index(0)
	assert.ErrorIs(t, err, apis.ErrInvalidInstance)

	m := tab.New(map[int]string{1: "one"})
	n, ok = m.Len()
	require.True(t, ok)
	assert.Equal(t, 1, n)
	got, ok := m.Lookup(int64(1))
	require.True(t, ok)
	assert.Equal(t, "one", got.Interface())
	_, ok = m.Lookup(2)
	assert.False(t, ok)
	_, err = m.Index(0)
	assert.ErrorIs(t, err, apis.ErrInvalidInstance)
}
