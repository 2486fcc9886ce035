// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package hash

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/iden3/go-iden3-crypto/poseidon"
)

// HashSize is the size, in bytes, of the canonical big-endian encoding
// of a hash output (a single field element).
const HashSize = 32

// MaxArity is the largest number of field elements the hash family
// accepts in a single call. The pool only ever hashes with arities
// one through four: H1 for key derivation, H2 for tree nodes and
// nullifiers, and H4 for note commitments.
const MaxArity = 4

// Modulus returns the order of the scalar field the hash family
// operates over. The returned value is a copy and may be mutated
// by the caller.
func Modulus() *big.Int {
	return new(big.Int).Set(constants.Q)
}

// HashFunc hashes between one and MaxArity field elements with the
// Poseidon permutation and returns the digest as a field element.
//
// Inputs must be canonical (non-negative and less than the field
// modulus) or an error is returned.
func HashFunc(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 || len(inputs) > MaxArity {
		return nil, fmt.Errorf("hash arity must be between 1 and %d, got %d", MaxArity, len(inputs))
	}
	for i, in := range inputs {
		if in == nil || in.Sign() < 0 || in.Cmp(constants.Q) >= 0 {
			return nil, fmt.Errorf("hash input %d is not a canonical field element", i)
		}
	}
	return poseidon.Hash(inputs)
}

// HashMerkleBranches takes two field elements, treated as the left and
// right tree nodes, and returns the hash of the pair. This is a helper
// function used to aid in the generation of a merkle tree.
func HashMerkleBranches(left, right *big.Int) (*big.Int, error) {
	return HashFunc(left, right)
}
