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
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/rtr/config"
	"dirpx.dev/rtr/registry"
)

// A few named types to avoid anonymous/unnamed pitfalls.
type T0 struct{ N int }
type T1 struct{ N int }
type T2 struct{ N int }
type T3 struct{ N int }
type T4 struct{ N int }

// TestConcurrentQueries verifies that lookups, graph queries, variant
// conversions and invocations are race-free once registration is done.
func TestConcurrentQueries(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	types := []reflect.Type{
		reflect.TypeOf(T0{}), reflect.TypeOf(T1{}), reflect.TypeOf(T2{}),
		reflect.TypeOf(T3{}), reflect.TypeOf(T4{}),
	}
	names := []string{"T0", "T1", "T2", "T3", "T4"}

	// Register in reverse so every base link starts out pending.
	for i := len(types) - 1; i >= 0; i-- {
		i := i
		_, err := reg.RegisterType(types[i], names[i], func(b *registry.TypeBuilder) error {
			if i > 0 {
				if err := b.BaseNamed(names[i-1]); err != nil {
					return err
				}
			}
			return b.Field("n", "N", registry.MemberOptions{})
		})
		if err != nil {
			t.Fatalf("register %s: %v", names[i], err)
		}
	}
	reg.Freeze()

	wg := sync.WaitGroup{}
	workers := runtime.GOMAXPROCS(0) * 4

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				k := (i + w) % len(names)
				typ := reg.TypeByName(names[k])
				if !typ.IsValid() {
					t.Errorf("lookup %s: invalid", names[k])
					return
				}
				n := 0
				for range typ.BaseClasses() {
					n++
				}
				if n != k {
					t.Errorf("bases of %s: got %d, want %d", names[k], n, k)
					return
				}
				v, err := typ.Property("n").Get(reflect.New(types[k]).Interface())
				if err != nil || v.Interface() != 0 {
					t.Errorf("get %s.n: got (%v,%v), want (0,nil)", names[k], v.Interface(), err)
					return
				}
				if s, ok := reg.Variant(i).ToString(); !ok || s == "" {
					t.Errorf("to string: got (%q,%v)", s, ok)
					return
				}
				// Unregistered types are assigned ids lazily under contention.
				_ = reg.TypeOf([]int{})
				_ = reg.Count()
				_ = reg.Types()
			}
		}(w)
	}
	wg.Wait()

	if got := reg.Count(); got != len(types) {
		t.Fatalf("Count after hammer: got %d, want %d", got, len(types))
	}
	last := reg.TypeByName(names[len(names)-1])
	if !last.IsDerivedFrom(reg.TypeByName(names[0])) {
		t.Fatalf("IsDerivedFrom(%s, %s): got false, want true", names[len(names)-1], names[0])
	}
}
