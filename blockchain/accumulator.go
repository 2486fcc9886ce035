// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"

	"github.com/veilcash/veild/params"
	"github.com/veilcash/veild/types"
)

// InclusionProof is a merkle inclusion proof which proves that a given
// commitment is in the tree with the given accumulator root.
//
// PathIndices[level] is 1 if the node at that level is a right child,
// else 0. PathElements[level] is the sibling at that level, defaulting
// to the zero value of the level for empty subtrees.
type InclusionProof struct {
	LeafIndex    uint64
	PathElements [params.TreeDepth]types.FieldElement
	PathIndices  [params.TreeDepth]uint8
}

type treeNode struct {
	level uint8
	index uint64
}

// Accumulator is a fixed-depth, append-only merkle tree over output
// commitments. Leaves are assigned indices at insertion time and are
// never overwritten or removed. Node storage is a sparse mapping from
// (level, index) to field element; any node absent from the mapping
// defaults to the zero value of its level.
//
// The root depends on insertion order: two trees holding the same set
// of commitments inserted in different orders produce different roots,
// so anything rebuilding the accumulator must replay the ledger's
// insertion order exactly.
//
// The accumulator is a derived structure. It can be rebuilt statelessly
// from the full ordered leaf list at any time, so nothing here needs to
// survive a restart beyond the leaf list itself.
type Accumulator struct {
	nodes  map[treeNode]types.FieldElement
	leaves []types.FieldElement
	zeros  []types.FieldElement
}

// NewAccumulator returns a new empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		nodes: make(map[treeNode]types.FieldElement),
	}
}

// NewAccumulatorFromLeaves rebuilds an accumulator by replaying the
// provided leaves in order. The resulting root equals the root that
// incremental insertion of the same leaves would have produced.
func NewAccumulatorFromLeaves(leaves []types.FieldElement) (*Accumulator, error) {
	a := NewAccumulator()
	for _, leaf := range leaves {
		if _, err := a.Insert(leaf); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Insert appends a commitment to the tree and returns the new root.
// This is O(depth) hash operations. It is not possible to go backwards
// and undo an insertion, so make sure you mean to do it.
func (a *Accumulator) Insert(leaf types.FieldElement) (types.FieldElement, error) {
	if uint64(len(a.leaves)) >= 1<<params.TreeDepth {
		return types.FieldElement{}, ErrTreeFull
	}
	zeros, err := a.zeroTable()
	if err != nil {
		return types.FieldElement{}, err
	}

	index := uint64(len(a.leaves))
	h := leaf
	for level := uint8(0); level < params.TreeDepth; level++ {
		a.nodes[treeNode{level, index}] = h

		var sibling types.FieldElement
		if index%2 == 0 {
			sibling = a.nodeAt(level, index+1, zeros)
			h, err = types.HashFields(h, sibling)
		} else {
			sibling = a.nodeAt(level, index-1, zeros)
			h, err = types.HashFields(sibling, h)
		}
		if err != nil {
			return types.FieldElement{}, err
		}
		index /= 2
	}
	a.nodes[treeNode{params.TreeDepth, 0}] = h
	a.leaves = append(a.leaves, leaf)
	return h, nil
}

// Root returns the current root of the tree. An empty tree's root is
// the zero value of the top level.
func (a *Accumulator) Root() types.FieldElement {
	if root, ok := a.nodes[treeNode{params.TreeDepth, 0}]; ok {
		return root
	}
	zeros, err := a.zeroTable()
	if err != nil {
		return types.FieldElement{}
	}
	return zeros[params.TreeDepth]
}

// LeafCount returns the number of leaves inserted so far. This is also
// the index the next inserted leaf will be assigned.
func (a *Accumulator) LeafCount() uint64 {
	return uint64(len(a.leaves))
}

// Leaves returns a copy of the ordered leaf list.
func (a *Accumulator) Leaves() []types.FieldElement {
	leaves := make([]types.FieldElement, len(a.leaves))
	copy(leaves, a.leaves)
	return leaves
}

// LeafAt returns the commitment at the given leaf index.
func (a *Accumulator) LeafAt(index uint64) (types.FieldElement, error) {
	if index >= uint64(len(a.leaves)) {
		return types.FieldElement{}, LeafOutOfRangeError{Index: index, LeafCount: uint64(len(a.leaves))}
	}
	return a.leaves[index], nil
}

// GenerateProof returns an inclusion proof for the leaf at the given
// index against the tree's current root.
//
// Requesting a proof for an index at or beyond the current leaf count
// fails explicitly. Returning a zero-path proof instead would verify
// against the all-zero subtree and could mask a sync bug.
func (a *Accumulator) GenerateProof(leafIndex uint64) (*InclusionProof, error) {
	if leafIndex >= uint64(len(a.leaves)) {
		return nil, LeafOutOfRangeError{Index: leafIndex, LeafCount: uint64(len(a.leaves))}
	}
	zeros, err := a.zeroTable()
	if err != nil {
		return nil, err
	}

	proof := &InclusionProof{LeafIndex: leafIndex}
	index := leafIndex
	for level := uint8(0); level < params.TreeDepth; level++ {
		if index%2 == 0 {
			proof.PathIndices[level] = 0
			proof.PathElements[level] = a.nodeAt(level, index+1, zeros)
		} else {
			proof.PathIndices[level] = 1
			proof.PathElements[level] = a.nodeAt(level, index-1, zeros)
		}
		index /= 2
	}
	return proof, nil
}

// VerifyInclusionProof folds the leaf through the proof path and
// reports whether the result equals the provided root.
func VerifyInclusionProof(leaf types.FieldElement, proof *InclusionProof, root types.FieldElement) bool {
	h := leaf
	var err error
	for level := 0; level < params.TreeDepth; level++ {
		if proof.PathIndices[level] == 1 {
			h, err = types.HashFields(proof.PathElements[level], h)
		} else {
			h, err = types.HashFields(h, proof.PathElements[level])
		}
		if err != nil {
			return false
		}
	}
	return h == root
}

func (a *Accumulator) nodeAt(level uint8, index uint64, zeros []types.FieldElement) types.FieldElement {
	if n, ok := a.nodes[treeNode{level, index}]; ok {
		return n
	}
	return zeros[level]
}

// zeroTable lazily computes the per-level empty subtree values.
// zero[0] is the hash of a fixed domain separation tag; zero[k] is
// H2(zero[k-1], zero[k-1]). The table is immutable once built and is
// owned by the accumulator instance.
func (a *Accumulator) zeroTable() ([]types.FieldElement, error) {
	if a.zeros != nil {
		return a.zeros, nil
	}
	zeros := make([]types.FieldElement, params.TreeDepth+1)
	tag, err := types.NewFieldElementFromBig(new(big.Int).SetBytes(params.ZeroLeafTag))
	if err != nil {
		return nil, err
	}
	zeros[0], err = types.HashFields(tag)
	if err != nil {
		return nil, err
	}
	for k := 1; k <= params.TreeDepth; k++ {
		zeros[k], err = types.HashFields(zeros[k-1], zeros[k-1])
		if err != nil {
			return nil, err
		}
	}
	a.zeros = zeros
	return a.zeros, nil
}

// ZeroValue returns the empty subtree value at the given level.
func (a *Accumulator) ZeroValue(level int) (types.FieldElement, error) {
	if level < 0 || level > params.TreeDepth {
		return types.FieldElement{}, AssertError("zero value level out of range")
	}
	zeros, err := a.zeroTable()
	if err != nil {
		return types.FieldElement{}, err
	}
	return zeros[level], nil
}
