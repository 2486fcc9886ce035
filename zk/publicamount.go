// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package zk

import (
	"errors"
	"math/big"

	"github.com/veilcash/veild/params/hash"
	"github.com/veilcash/veild/types"
)

// ErrAmbiguousAmount is returned for deltas whose magnitude reaches
// half the field modulus. Such values cannot be decoded unambiguously
// under the half-field convention and are rejected on both sides.
var ErrAmbiguousAmount = errors.New("public amount is ambiguous under the half-field convention")

// EncodePublicAmount encodes the signed net value flow of an
// operation (sum of outputs minus sum of inputs) as a field element.
// Positive deltas map to themselves; negative deltas wrap, encoding
// as modulus minus magnitude. The magnitude must be strictly below
// half the field modulus for the encoding to be invertible.
func EncodePublicAmount(delta *big.Int) (types.FieldElement, error) {
	modulus := hash.Modulus()
	half := new(big.Int).Rsh(modulus, 1)
	if new(big.Int).Abs(delta).Cmp(half) >= 0 {
		return types.FieldElement{}, ErrAmbiguousAmount
	}
	v := new(big.Int).Set(delta)
	if v.Sign() < 0 {
		v.Add(v, modulus)
	}
	return types.NewFieldElementFromBig(v)
}

// DecodePublicAmount recovers the signed delta from an encoded public
// amount. Values in the ambiguous band around half the modulus are
// rejected rather than guessed at.
func DecodePublicAmount(encoded types.FieldElement) (*big.Int, error) {
	modulus := hash.Modulus()
	half := new(big.Int).Rsh(modulus, 1)
	v := encoded.Big()
	if v.Cmp(half) < 0 {
		return v, nil
	}
	neg := new(big.Int).Sub(modulus, v)
	if neg.Cmp(half) >= 0 {
		return nil, ErrAmbiguousAmount
	}
	return neg.Neg(neg), nil
}
