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

// Package ident assigns TypeIDs to Go types.
//
// An Arena is a slot table: every distinct type observed by a registry
// gets the next slot index as its TypeID, lazily, on first sight. Slots
// are never removed, so a TypeID stays valid for the arena's lifetime.
package ident

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/rtr/apis"
	"dirpx.dev/rtr/resolver"
	uref "dirpx.dev/rtr/utils/reflect"
)

var (
	// ErrNameTaken is returned by Rename when another slot owns the name.
	ErrNameTaken = errors.New("rtr(ident): name already bound to another type")
	// ErrUnknownID is returned for ids outside the arena.
	ErrUnknownID = errors.New("rtr(ident): unknown type id")
)

// Arena maps Go types to TypeIDs. It is safe for concurrent use.
type Arena struct {
	cfg apis.Config
	res apis.Resolver

	mu     sync.RWMutex
	byType map[reflect.Type]apis.TypeID
	byKey  map[string]apis.TypeID // IdentityName only
	byName map[string]apis.TypeID
	slots  []slot // index 0 is the invalid slot
}

type slot struct {
	rt   reflect.Type
	name string
}

// New constructs an Arena. A nil resolver selects resolver.Default().
func New(cfg apis.Config, res apis.Resolver) *Arena {
	if res == nil {
		res = resolver.Default()
	}
	return &Arena{
		cfg:    cfg,
		res:    res,
		byType: make(map[reflect.Type]apis.TypeID),
		byKey:  make(map[string]apis.TypeID),
		byName: make(map[string]apis.TypeID),
		slots:  make([]slot, 1),
	}
}

// ID returns the TypeID of rt, assigning a slot on first sight.
// A nil rt yields InvalidTypeID.
func (a *Arena) ID(rt reflect.Type) apis.TypeID {
	if rt == nil {
		return apis.InvalidTypeID
	}
	// Fast read path.
	if id, ok := a.Lookup(rt); ok {
		return id
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if id, ok := a.lookupLocked(rt); ok {
		return id
	}

	id := apis.TypeID(len(a.slots))
	name := a.res.ResolveType(rt, a.cfg)
	if name == "" {
		name = rt.String()
	}
	if _, taken := a.byName[name]; taken {
		// Two types resolving to one display name: fall back to the
		// qualified spelling, which is unique per package path.
		name = uref.QualifiedName(rt)
		if _, taken := a.byName[name]; taken {
			name = fmt.Sprintf("%s#%d", name, id)
		}
	}
	a.slots = append(a.slots, slot{rt: rt, name: name})
	a.byType[rt] = id
	if a.cfg.Identity == apis.IdentityName {
		a.byKey[uref.QualifiedName(rt)] = id
	}
	a.byName[name] = id
	return id
}

// Lookup returns the TypeID of rt without assigning one.
func (a *Arena) Lookup(rt reflect.Type) (apis.TypeID, bool) {
	if rt == nil {
		return apis.InvalidTypeID, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lookupLocked(rt)
}

func (a *Arena) lookupLocked(rt reflect.Type) (apis.TypeID, bool) {
	if id, ok := a.byType[rt]; ok {
		return id, true
	}
	if a.cfg.Identity == apis.IdentityName {
		if id, ok := a.byKey[uref.QualifiedName(rt)]; ok {
			return id, true
		}
	}
	return apis.InvalidTypeID, false
}

// ByName returns the TypeID currently bound to name.
func (a *Arena) ByName(name string) (apis.TypeID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	id, ok := a.byName[name]
	return id, ok
}

// Type returns the reflect.Type stored in slot id, or nil.
func (a *Arena) Type(id apis.TypeID) reflect.Type {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(id) <= 0 || int(id) >= len(a.slots) {
		return nil
	}
	return a.slots[id].rt
}

// Name returns the display name of slot id, or "".
func (a *Arena) Name(id apis.TypeID) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(id) <= 0 || int(id) >= len(a.slots) {
		return ""
	}
	return a.slots[id].name
}

// Rename binds name to slot id, releasing the slot's previous name.
func (a *Arena) Rename(id apis.TypeID, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if int(id) <= 0 || int(id) >= len(a.slots) {
		return ErrUnknownID
	}
	if owner, ok := a.byName[name]; ok {
		if owner == id {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	delete(a.byName, a.slots[id].name)
	a.slots[id].name = name
	a.byName[name] = id
	return nil
}

// Len returns the number of assigned slots.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.slots) - 1
}

// Config returns the configuration the arena was built with.
func (a *Arena) Config() apis.Config { return a.cfg }
