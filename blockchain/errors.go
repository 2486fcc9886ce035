// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"

	"github.com/veilcash/veild/types"
)

// ErrTreeFull is returned when inserting into an accumulator that
// already holds 2^TreeDepth leaves.
var ErrTreeFull = errors.New("accumulator is full")

// AssertError identifies an error that indicates an internal code
// consistency issue and should be treated as a critical and
// unrecoverable error.
type AssertError string

// Error returns the assertion error as a human-readable string and
// satisfies the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// LeafOutOfRangeError is returned when an inclusion proof is requested
// for a leaf index at or beyond the current leaf count. A zero-path
// proof for such an index would verify against the all-zero subtree,
// so the request fails loudly instead.
type LeafOutOfRangeError struct {
	Index     uint64
	LeafCount uint64
}

func (e LeafOutOfRangeError) Error() string {
	return fmt.Sprintf("leaf index %d out of range, tree has %d leaves", e.Index, e.LeafCount)
}

// StaleRootError is returned when the locally recomputed accumulator
// root does not match the last known on-chain root. This is fatal: an
// incorrect root means proofs would be generated against a tree state
// the ledger does not recognize. It is never silently patched; the
// only recovery path is a full resync from genesis.
type StaleRootError struct {
	LocalRoot types.FieldElement
	ChainRoot types.FieldElement
	LeafCount uint64
}

func (e StaleRootError) Error() string {
	return fmt.Sprintf("local root %s diverges from chain root %s at %d leaves",
		e.LocalRoot, e.ChainRoot, e.LeafCount)
}

// GapInSequenceError is returned when a ledger event arrives whose
// leaf index is not contiguous with the local tree. The event has
// been buffered, never dropped, and will be applied once the missing
// predecessors arrive.
type GapInSequenceError struct {
	Want uint64
	Got  uint64
}

func (e GapInSequenceError) Error() string {
	return fmt.Sprintf("event at leaf index %d buffered, next expected index is %d", e.Got, e.Want)
}
