// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/veilcash/veild/repo"
	"github.com/veilcash/veild/types"
)

// NullifierSet provides cached access to the wallet's spent nullifier
// database. A nullifier lands here when one of our notes is spent;
// entries are never deleted or mutated afterwards.
type NullifierSet struct {
	ds            repo.Datastore
	cachedEntries map[types.Nullifier]bool
	maxEntries    uint
	mtx           sync.RWMutex
}

// NewNullifierSet returns a new NullifierSet. maxEntries controls how
// much memory is used for cache purposes.
func NewNullifierSet(ds repo.Datastore, maxEntries uint) *NullifierSet {
	return &NullifierSet{
		ds:            ds,
		cachedEntries: make(map[types.Nullifier]bool),
		maxEntries:    maxEntries,
		mtx:           sync.RWMutex{},
	}
}

// NullifierExists returns whether or not the nullifier exists in the
// set. If the entry is cached we'll return from memory, otherwise we
// have to check the disk.
//
// After determining if the nullifier exists we'll update the cache
// with the value so repeated checks, for example during coin
// selection, don't hit the disk a second time.
func (ns *NullifierSet) NullifierExists(nullifier types.Nullifier) (bool, error) {
	ns.mtx.Lock()
	defer ns.mtx.Unlock()

	exists, ok := ns.cachedEntries[nullifier]
	if ok {
		return exists, nil
	}

	exists, err := dsNullifierExists(ns.ds, nullifier)
	if err != nil {
		return false, err
	}

	if ns.maxEntries <= 0 {
		return exists, nil
	}

	ns.limitCache(1)
	ns.cachedEntries[nullifier] = exists
	return exists, nil
}

// AddNullifiers adds the nullifiers to the database. The cached entry
// is deleted rather than updated so a failed write can never leave a
// wrong value in memory.
func (ns *NullifierSet) AddNullifiers(nullifiers []types.Nullifier) error {
	ns.mtx.Lock()
	defer ns.mtx.Unlock()

	for _, n := range nullifiers {
		delete(ns.cachedEntries, n)
	}

	return dsPutNullifiers(ns.ds, nullifiers)
}

func (ns *NullifierSet) limitCache(newEntries int) {
	// If adding this new entry will put us over the max number of
	// allowed entries, then evict an entry. Eviction relies on the
	// random starting point of Go's map iteration; the order doesn't
	// matter here since the cache is purely an optimization.
	i := 0
	if uint(len(ns.cachedEntries)+newEntries) > ns.maxEntries {
		for nullifier := range ns.cachedEntries {
			delete(ns.cachedEntries, nullifier)
			i++
			if i >= newEntries {
				break
			}
		}
	}
}
