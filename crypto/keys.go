// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package crypto

import (
	"errors"

	"github.com/veilcash/veild/types"
)

// SpendingKey is the secret that authorizes spending notes. The
// public counterpart, the owner key, is derived as H1(spendingKey);
// only the holder of the spending key can reproduce it.
//
// Key material is held transiently: callers pass the key into witness
// assembly and must call Zeroize as soon as the witness has been
// handed to the prover. The key must never be logged or persisted
// in plaintext.
type SpendingKey struct {
	k types.FieldElement
}

// NewSpendingKey generates a new random spending key.
func NewSpendingKey() (*SpendingKey, error) {
	fe, err := types.RandomFieldElement()
	if err != nil {
		return nil, err
	}
	return &SpendingKey{k: fe}, nil
}

// SpendingKeyFromBytes loads a spending key from its canonical
// big-endian encoding.
func SpendingKeyFromBytes(b []byte) (*SpendingKey, error) {
	fe, err := types.NewFieldElement(b)
	if err != nil {
		return nil, errors.New("invalid spending key encoding")
	}
	return &SpendingKey{k: fe}, nil
}

// OwnerKey derives the public owner key, H1(spendingKey).
func (sk *SpendingKey) OwnerKey() (types.FieldElement, error) {
	return types.HashFields(sk.k)
}

// FieldElement returns the raw key as a field element for use as a
// proving system input. The returned copy is scrubbed by the witness,
// the receiver by Zeroize.
func (sk *SpendingKey) FieldElement() types.FieldElement {
	return sk.k
}

// Zeroize overwrites the key material in memory. The key is unusable
// afterwards.
func (sk *SpendingKey) Zeroize() {
	for i := range sk.k {
		sk.k[i] = 0
	}
}
