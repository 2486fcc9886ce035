// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"encoding/hex"

	"github.com/veilcash/veild/params/hash"
)

const NullifierSize = hash.HashSize

// Nullifier binds a commitment to its owner's key hash. It is
// published exactly once, when the note is spent, so the global
// nullifier set grows monotonically and doubles as the ledger's
// double-spend guard.
type Nullifier [hash.HashSize]byte

func (n Nullifier) String() string {
	return hex.EncodeToString(n[:])
}

func (n Nullifier) Bytes() []byte {
	return n[:]
}

func (n Nullifier) Clone() Nullifier {
	var b [len(n)]byte
	copy(b[:], n[:])
	return b
}

func (n Nullifier) ToFieldElement() FieldElement {
	return FieldElement(n)
}

func (n *Nullifier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(n[:]) + `"`), nil
}

func (n *Nullifier) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	i, err := NewNullifierFromString(string(data))
	if err != nil {
		return err
	}
	*n = i
	return nil
}

func NewNullifier(fe FieldElement) Nullifier {
	return Nullifier(fe)
}

func NewNullifierFromString(n string) (Nullifier, error) {
	fe, err := NewFieldElementFromString(n)
	if err != nil {
		return Nullifier{}, err
	}
	return Nullifier(fe), nil
}

// CalculateNullifier calculates and returns the nullifier for the
// given commitment. The owner key hash is derived from the spending
// key the same way as the note's owner key, so producing a valid
// nullifier proves knowledge of the spending key without revealing it.
func CalculateNullifier(commitment FieldElement, ownerKeyHash FieldElement) (Nullifier, error) {
	h, err := HashFields(commitment, ownerKeyHash)
	if err != nil {
		return Nullifier{}, err
	}
	return Nullifier(h), nil
}
