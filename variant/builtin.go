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

package variant

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

var builtinTypes = []reflect.Type{
	reflect.TypeFor[bool](),
	reflect.TypeFor[int](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[int32](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[uint](),
	reflect.TypeFor[uint8](),
	reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](),
	reflect.TypeFor[uint64](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[string](),
}

// installBuiltins registers a converter for every ordered pair of
// builtin scalar types, plus equality and ordering for each of them.
func installBuiltins(t *Table) {
	for _, from := range builtinTypes {
		for _, to := range builtinTypes {
			if from == to {
				continue
			}
			t.AddConverter(from, to, scalarConverter(to))
		}
		t.AddEqual(from, scalarEqual)
		t.AddLess(from, scalarLess)
	}
}

// scalarConverter returns a converter into the scalar type to that
// accepts any builtin scalar source.
func scalarConverter(to reflect.Type) ConvertFunc {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(to).Elem()
		if !setScalar(out, v) {
			return reflect.Value{}, false
		}
		return out, true
	}
}

func setScalar(out, v reflect.Value) bool {
	switch out.Kind() {
	case reflect.String:
		return setString(out, v)
	case reflect.Bool:
		return setBool(out, v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(out, v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return setUint(out, v)
	case reflect.Float32, reflect.Float64:
		return setFloat(out, v)
	}
	return false
}

func setString(out, v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		out.SetString(v.String())
	case reflect.Bool:
		out.SetString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.SetString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out.SetString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32:
		out.SetString(strconv.FormatFloat(v.Float(), 'g', -1, 32))
	case reflect.Float64:
		out.SetString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	default:
		return false
	}
	return true
}

// setBool maps numbers to v != 0. Strings are false for "false", "0"
// and "" (ignoring case and surrounding space) and true otherwise.
func setBool(out, v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Bool:
		out.SetBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.SetBool(v.Int() != 0)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out.SetBool(v.Uint() != 0)
	case reflect.Float32, reflect.Float64:
		out.SetBool(v.Float() != 0)
	case reflect.String:
		s := strings.ToLower(strings.TrimSpace(v.String()))
		out.SetBool(s != "false" && s != "0" && s != "")
	default:
		return false
	}
	return true
}

func setInt(out, v reflect.Value) bool {
	var n int64
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			n = 1
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return false
		}
		n = int64(u)
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || f < -(1<<63) || f >= 1<<63 {
			return false
		}
		n = int64(f)
	case reflect.String:
		p, err := strconv.ParseInt(v.String(), 10, out.Type().Bits())
		if err != nil {
			return false
		}
		n = p
	default:
		return false
	}
	if out.OverflowInt(n) {
		return false
	}
	out.SetInt(n)
	return true
}

func setUint(out, v reflect.Value) bool {
	var n uint64
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			n = 1
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if i < 0 {
			return false
		}
		n = uint64(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n = v.Uint()
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || f < 0 || f >= 1<<64 {
			return false
		}
		n = uint64(f)
	case reflect.String:
		p, err := strconv.ParseUint(v.String(), 10, out.Type().Bits())
		if err != nil {
			return false
		}
		n = p
	default:
		return false
	}
	if out.OverflowUint(n) {
		return false
	}
	out.SetUint(n)
	return true
}

func setFloat(out, v reflect.Value) bool {
	var f float64
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			f = 1
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f = float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		f = v.Float()
		if !math.IsInf(f, 0) && !math.IsNaN(f) && out.OverflowFloat(f) {
			return false
		}
	case reflect.String:
		p, err := strconv.ParseFloat(v.String(), out.Type().Bits())
		if err != nil {
			return false
		}
		f = p
	default:
		return false
	}
	out.SetFloat(f)
	return true
}

func scalarEqual(a, b reflect.Value) bool {
	c, ok := scalarCompare(a, b)
	return ok && c == 0
}

func scalarLess(a, b reflect.Value) bool {
	c, ok := scalarCompare(a, b)
	return ok && c < 0
}

// scalarCompare orders two scalar values. Numbers of different kinds
// compare by value; ok is false for unordered pairs (NaN, mixed families).
func scalarCompare(a, b reflect.Value) (int, bool) {
	fa, fb := family(a.Kind()), family(b.Kind())
	switch {
	case fa == famString && fb == famString:
		return strings.Compare(a.String(), b.String()), true
	case fa == famBool && fb == famBool:
		x, y := a.Bool(), b.Bool()
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	case fa.numeric() && fb.numeric():
		return numericCompare(a, b)
	}
	return 0, false
}

type kindFamily uint8

const (
	famOther kindFamily = iota
	famBool
	famInt
	famUint
	famFloat
	famString
)

func (f kindFamily) numeric() bool { return f == famInt || f == famUint || f == famFloat }

func family(k reflect.Kind) kindFamily {
	switch k {
	case reflect.Bool:
		return famBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return famInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return famUint
	case reflect.Float32, reflect.Float64:
		return famFloat
	case reflect.String:
		return famString
	}
	return famOther
}

func numericCompare(a, b reflect.Value) (int, bool) {
	fa, fb := family(a.Kind()), family(b.Kind())
	switch {
	case fa == famFloat || fb == famFloat:
		x, y := asFloat(a), asFloat(b)
		if math.IsNaN(x) || math.IsNaN(y) {
			return 0, false
		}
		return cmp3(x < y, x > y), true
	case fa == famInt && fb == famInt:
		x, y := a.Int(), b.Int()
		return cmp3(x < y, x > y), true
	case fa == famUint && fb == famUint:
		x, y := a.Uint(), b.Uint()
		return cmp3(x < y, x > y), true
	case fa == famInt:
		if a.Int() < 0 {
			return -1, true
		}
		x, y := uint64(a.Int()), b.Uint()
		return cmp3(x < y, x > y), true
	default:
		if b.Int() < 0 {
			return 1, true
		}
		x, y := a.Uint(), uint64(b.Int())
		return cmp3(x < y, x > y), true
	}
}

func asFloat(v reflect.Value) float64 {
	switch family(v.Kind()) {
	case famInt:
		return float64(v.Int())
	case famUint:
		return float64(v.Uint())
	}
	return v.Float()
}

func cmp3(lt, gt bool) int {
	switch {
	case lt:
		return -1
	case gt:
		return 1
	}
	return 0
}

// isBuiltinScalar reports whether rt is one of the predeclared scalar types.
func isBuiltinScalar(rt reflect.Type) bool {
	return rt != nil && rt.PkgPath() == "" && family(rt.Kind()) != famOther
}
