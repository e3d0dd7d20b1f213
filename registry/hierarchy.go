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

package registry

import (
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"

	"dirpx.dev/rtr/apis"
)

// hierarchy stores base links as TypeID edges. Links declared by name
// stay pending until a type with that name is registered; they are
// resolved on the first graph query after a registration.
type hierarchy struct {
	bases   map[apis.TypeID][]apis.TypeID
	derived map[apis.TypeID][]apis.TypeID
	pending []namedEdge
	dirty   bool
}

type namedEdge struct {
	from apis.TypeID
	base string
}

func newHierarchy() hierarchy {
	return hierarchy{
		bases:   make(map[apis.TypeID][]apis.TypeID),
		derived: make(map[apis.TypeID][]apis.TypeID),
	}
}

// check rejects a registration of id whose base links would close a
// cycle, considering every edge resolvable once id is registered.
func (h *hierarchy) check(id apis.TypeID, name string, bases []apis.TypeID, named []string, byName map[string]apis.TypeID) error {
	resolve := func(n string) (apis.TypeID, bool) {
		if n == name {
			return id, true
		}
		b, ok := byName[n]
		return b, ok
	}
	out := func(n apis.TypeID) []apis.TypeID {
		next := slices.Clone(h.bases[n])
		if n == id {
			next = append(next, bases...)
			for _, bn := range named {
				if b, ok := resolve(bn); ok {
					next = append(next, b)
				}
			}
		}
		for _, e := range h.pending {
			if e.from != n {
				continue
			}
			if b, ok := resolve(e.base); ok {
				next = append(next, b)
			}
		}
		return next
	}

	seen := map[apis.TypeID]bool{}
	stack := out(id)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == id {
			return fmt.Errorf("%w: %s would become its own base", apis.ErrInvalidHierarchy, name)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, out(n)...)
	}
	return nil
}

// add records the links of a newly registered type.
func (h *hierarchy) add(id apis.TypeID, bases []apis.TypeID, named []string) {
	for _, b := range bases {
		h.link(id, b)
	}
	for _, n := range named {
		h.pending = append(h.pending, namedEdge{from: id, base: n})
	}
	h.dirty = true
}

func (h *hierarchy) link(from, base apis.TypeID) {
	if slices.Contains(h.bases[from], base) {
		return
	}
	h.bases[from] = append(h.bases[from], base)
	h.derived[base] = append(h.derived[base], from)
}

// resolve links every pending edge whose base name is now registered
// and returns how many were linked.
func (h *hierarchy) resolve(byName map[string]apis.TypeID) int {
	n := 0
	keep := h.pending[:0]
	for _, e := range h.pending {
		if b, ok := byName[e.base]; ok {
			h.link(e.from, b)
			n++
			continue
		}
		keep = append(keep, e)
	}
	h.pending = keep
	h.dirty = false
	return n
}

// walk lists the nodes reachable from id through next, breadth-first,
// excluding id.
func walk(id apis.TypeID, next map[apis.TypeID][]apis.TypeID) []apis.TypeID {
	var out []apis.TypeID
	seen := map[apis.TypeID]bool{id: true}
	queue := []apis.TypeID{id}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range next[n] {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
			queue = append(queue, m)
		}
	}
	return out
}

// resolveGraph links pending base names if anything was registered since
// the last graph query.
func (r *Registry) resolveGraph() {
	r.mu.RLock()
	dirty := r.graph.dirty
	r.mu.RUnlock()
	if !dirty {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.graph.dirty {
		return
	}
	if n := r.graph.resolve(r.byName); n > 0 {
		r.log.Debug("base links resolved",
			zap.Int("linked", n),
			zap.Int("pending", len(r.graph.pending)))
	}
}

// ancestors returns the registered bases of id, nearest first.
func (r *Registry) ancestors(id apis.TypeID) []apis.TypeID {
	r.resolveGraph()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registeredLocked(walk(id, r.graph.bases))
}

// descendants returns the registered types deriving from id, nearest first.
func (r *Registry) descendants(id apis.TypeID) []apis.TypeID {
	r.resolveGraph()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registeredLocked(walk(id, r.graph.derived))
}

func (r *Registry) registeredLocked(ids []apis.TypeID) []apis.TypeID {
	out := ids[:0]
	for _, id := range ids {
		if _, ok := r.types[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// IsDerivedFrom reports whether derived equals base or lists it among
// its transitive bases.
func (r *Registry) IsDerivedFrom(derived, base apis.TypeID) bool {
	if derived == base {
		return derived.IsValid()
	}
	return slices.Contains(r.ancestors(derived), base)
}

// Pending returns the base names declared but not yet registered.
func (r *Registry) Pending() []string {
	r.resolveGraph()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.graph.pending))
	for _, e := range r.graph.pending {
		out = append(out, e.base)
	}
	return out
}

func (r *Registry) seq(ids []apis.TypeID) iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, id := range ids {
			if !yield(Type{reg: r, id: id}) {
				return
			}
		}
	}
}
