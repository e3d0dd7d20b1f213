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

// Package invoke turns Go functions into reflective callables: it checks
// and converts arguments held in variants, calls the function, and wraps
// the result according to a return policy.
package invoke

import (
	"fmt"
	"reflect"

	"dirpx.dev/rtr/apis"
	uref "dirpx.dev/rtr/utils/reflect"
	"dirpx.dev/rtr/variant"
)

var errorType = reflect.TypeFor[error]()

// Options configures a Callable.
type Options struct {
	// Policy selects how the result is handed back.
	Policy apis.Policy
	// Names are parameter names, in order. Fewer names than parameters is fine.
	Names []string
	// Defaults bind to the trailing parameters.
	Defaults []any
	// Method marks the first function parameter as the receiver.
	Method bool
}

// Param describes one declared parameter of a Callable.
type Param struct {
	Index      int
	Name       string
	Type       reflect.Type
	Default    reflect.Value
	HasDefault bool
}

// Callable is an immutable wrapper around a Go function value.
type Callable struct {
	fn     reflect.Value
	recv   reflect.Type
	params []Param
	result reflect.Type
	hasErr bool
	policy apis.Policy
}

// New wraps fn. It fails with ErrInvalidSignature when fn is not a
// non-variadic function, when it returns more than one value besides a
// trailing error, or when names or defaults do not fit its parameters.
// A pointer result without an explicit policy fails with ErrPolicyRequired.
func New(fn any, opts Options) (*Callable, error) {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a function", apis.ErrInvalidSignature, fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic %s", apis.ErrInvalidSignature, ft)
	}

	c := &Callable{fn: fv, policy: opts.Policy}

	in := make([]reflect.Type, 0, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		in = append(in, ft.In(i))
	}
	if opts.Method {
		if len(in) == 0 {
			return nil, fmt.Errorf("%w: method %s has no receiver", apis.ErrInvalidSignature, ft)
		}
		c.recv, in = in[0], in[1:]
	}

	if len(opts.Names) > len(in) {
		return nil, fmt.Errorf("%w: %d names for %d parameters", apis.ErrInvalidSignature, len(opts.Names), len(in))
	}
	if len(opts.Defaults) > len(in) {
		return nil, fmt.Errorf("%w: %d defaults for %d parameters", apis.ErrInvalidSignature, len(opts.Defaults), len(in))
	}
	first := len(in) - len(opts.Defaults)
	c.params = make([]Param, len(in))
	for i, pt := range in {
		p := Param{Index: i, Type: pt}
		if i < len(opts.Names) {
			p.Name = opts.Names[i]
		}
		if i >= first {
			dv, err := defaultValue(opts.Defaults[i-first], pt)
			if err != nil {
				return nil, fmt.Errorf("%w: default for parameter %d: %v", apis.ErrInvalidSignature, i, err)
			}
			p.Default, p.HasDefault = dv, true
		}
		c.params[i] = p
	}

	switch n := ft.NumOut(); {
	case n == 0:
	case n == 1 && ft.Out(0) == errorType:
		c.hasErr = true
	case n == 1:
		c.result = ft.Out(0)
	case n == 2 && ft.Out(1) == errorType:
		c.result, c.hasErr = ft.Out(0), true
	default:
		return nil, fmt.Errorf("%w: %s returns too many values", apis.ErrInvalidSignature, ft)
	}

	if err := checkPolicy(c.result, c.policy); err != nil {
		return nil, fmt.Errorf("%s: %w", ft, err)
	}
	return c, nil
}

func defaultValue(d any, pt reflect.Type) (reflect.Value, error) {
	if d == nil {
		if !uref.Nilable(pt) {
			return reflect.Value{}, fmt.Errorf("nil is not a %s", pt)
		}
		return reflect.Zero(pt), nil
	}
	dv := reflect.ValueOf(d)
	out := reflect.New(pt).Elem()
	switch {
	case dv.Type().AssignableTo(pt):
		out.Set(dv)
	case numeric(dv.Kind()) && numeric(pt.Kind()):
		out.Set(dv.Convert(pt))
	default:
		return reflect.Value{}, fmt.Errorf("%s is not a %s", dv.Type(), pt)
	}
	return out, nil
}

func numeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

// Params returns the declared parameters, receiver excluded.
func (c *Callable) Params() []Param { return append([]Param(nil), c.params...) }

// Receiver returns the receiver type of a method, or nil.
func (c *Callable) Receiver() reflect.Type { return c.recv }

// Result returns the result type, or nil for functions without one.
func (c *Callable) Result() reflect.Type { return c.result }

// Policy returns the return policy.
func (c *Callable) Policy() apis.Policy { return c.policy }

// Type returns the wrapped function type.
func (c *Callable) Type() reflect.Type { return c.fn.Type() }

// Arity returns the minimum and maximum argument counts.
func (c *Callable) Arity() (min, max int) {
	min = len(c.params)
	for min > 0 && c.params[min-1].HasDefault {
		min--
	}
	return min, len(c.params)
}

// Bind checks args against the parameters and converts them. Missing
// trailing arguments are filled from defaults. The score sums 2 for each
// argument of the exact parameter type and 1 for each converted one.
// The first offending position is reported as *apis.ArgumentMismatchError.
func (c *Callable) Bind(tab *variant.Table, args []variant.Variant) ([]reflect.Value, int, error) {
	min, max := c.Arity()
	name := func(rt reflect.Type) string { return tab.Arena().Name(tab.Arena().ID(rt)) }

	switch {
	case len(args) < min:
		return nil, 0, &apis.ArgumentMismatchError{Position: len(args), Expected: name(c.params[len(args)].Type)}
	case len(args) > max:
		return nil, 0, &apis.ArgumentMismatchError{Position: max, Got: argName(args[max])}
	}

	out := make([]reflect.Value, len(c.params))
	score := 0
	for i, p := range c.params {
		if i >= len(args) {
			out[i] = p.Default
			continue
		}
		v, s, ok := Argument(args[i], p.Type)
		if !ok {
			return nil, 0, &apis.ArgumentMismatchError{Position: i, Expected: name(p.Type), Got: argName(args[i])}
		}
		out[i], score = v, score+s
	}
	return out, score, nil
}

func argName(v variant.Variant) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.TypeName()
}

// Call binds args and invokes the function. recv must be valid exactly
// when the callable is a method; use Receiver to obtain it.
func (c *Callable) Call(tab *variant.Table, recv reflect.Value, args []variant.Variant) (variant.Variant, error) {
	bound, _, err := c.Bind(tab, args)
	if err != nil {
		return variant.Variant{}, err
	}
	return c.CallBound(tab, recv, bound)
}

// CallBound invokes the function with arguments already produced by Bind.
func (c *Callable) CallBound(tab *variant.Table, recv reflect.Value, bound []reflect.Value) (variant.Variant, error) {
	in := bound
	if c.recv != nil {
		if !recv.IsValid() {
			return variant.Variant{}, fmt.Errorf("%w: method needs an instance", apis.ErrInvalidInstance)
		}
		in = append([]reflect.Value{recv}, bound...)
	}

	res := c.fn.Call(in)
	if c.hasErr {
		if e := res[len(res)-1]; !e.IsNil() {
			return variant.Variant{}, fmt.Errorf("%w: %w", apis.ErrInvocation, e.Interface().(error))
		}
	}
	if c.result == nil {
		return variant.Variant{}, nil
	}
	return Apply(tab, res[0], c.policy)
}

// Argument converts one argument to the parameter type pt. Exact type
// matches score 2; assignable, upcast and converted arguments score 1.
// An empty variant is accepted as the zero value of a nilable parameter.
func Argument(v variant.Variant, pt reflect.Type) (reflect.Value, int, bool) {
	if !v.IsValid() {
		if uref.Nilable(pt) {
			return reflect.Zero(pt), 1, true
		}
		return reflect.Value{}, 0, false
	}
	vt := v.Type()
	if vt == pt {
		return v.Value(), 2, true
	}
	if vt.AssignableTo(pt) {
		out := reflect.New(pt).Elem()
		out.Set(v.Value())
		return out, 1, true
	}
	out, err := v.As(pt)
	if err != nil {
		return reflect.Value{}, 0, false
	}
	return out, 1, true
}

// Receiver adapts instance to the receiver type rt: identical types,
// interfaces it implements, a dereferenced pointer for a value receiver,
// or the embedded base of a registered derived type. A pointer receiver
// needs a pointer (or addressable) instance. Anything else fails with
// ErrInvalidInstance.
func Receiver(tab *variant.Table, instance variant.Variant, rt reflect.Type) (reflect.Value, error) {
	if !instance.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: empty instance", apis.ErrInvalidInstance)
	}
	iv := instance.Value()
	it := iv.Type()

	if it.Kind() == reflect.Pointer && iv.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: nil %s", apis.ErrInvalidInstance, it)
	}
	switch {
	case it == rt:
		return iv, nil
	case rt.Kind() == reflect.Interface && it.Implements(rt):
		return iv, nil
	case rt.Kind() == reflect.Pointer && it == rt.Elem():
		if iv.CanAddr() {
			return iv.Addr(), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: %s needs a pointer instance, got %s", apis.ErrInvalidInstance, rt, it)
	case it.Kind() == reflect.Pointer && it.Elem() == rt:
		return iv.Elem(), nil
	}
	if up, ok := tab.Upcast(iv, rt); ok {
		return up, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s is not a %s", apis.ErrInvalidInstance, it, rt)
}

// Select resolves an overload among cands for args. Candidates whose
// arity admits len(args) are bound and scored; the highest score wins and
// ties go to the earliest candidate. When nothing binds, the error of the
// first arity-compatible candidate (or of the first candidate) is returned.
func Select(tab *variant.Table, cands []*Callable, args []variant.Variant) (int, []reflect.Value, error) {
	best, bestScore := -1, -1
	var bestArgs []reflect.Value
	var firstErr error
	for i, c := range cands {
		bound, score, err := c.Bind(tab, args)
		if err != nil {
			min, max := c.Arity()
			if firstErr == nil && len(args) >= min && len(args) <= max {
				firstErr = err
			}
			continue
		}
		if score > bestScore {
			best, bestScore, bestArgs = i, score, bound
		}
	}
	if best >= 0 {
		return best, bestArgs, nil
	}
	if firstErr == nil && len(cands) > 0 {
		_, _, firstErr = cands[0].Bind(tab, args)
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("%w: no candidates", apis.ErrArgumentMismatch)
	}
	return -1, nil, firstErr
}
