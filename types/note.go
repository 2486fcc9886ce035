// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"encoding/binary"
	"errors"

	"github.com/veilcash/veild/params/hash"
)

// VeilCoinID is the token id of the native coin.
var VeilCoinID = FieldElement{}

const (
	CommitmentLen = hash.HashSize
	AmountLen     = 8
	OwnerKeyLen   = hash.HashSize
	RandomnessLen = hash.HashSize
	TokenIDLen    = hash.HashSize

	// SerializedNoteLen is the length of a serialized note.
	SerializedNoteLen = AmountLen + OwnerKeyLen + RandomnessLen + TokenIDLen
)

// SpendNote holds all the data that makes up an output commitment.
// The plaintext is known only to the note's owner; only the commitment
// is ever published on the ledger.
type SpendNote struct {
	Amount     Amount
	OwnerKey   FieldElement
	Randomness FieldElement
	TokenID    FieldElement
}

// Commitment hashes the four note fields and returns the result.
// It is a pure deterministic function of the note: changing any
// field changes the commitment.
func (s *SpendNote) Commitment() (FieldElement, error) {
	return HashFields(s.Amount.ToFieldElement(), s.OwnerKey, s.Randomness, s.TokenID)
}

// IsDummy returns true if the note is a padding note. Dummy slots are
// exempt from merkle inclusion and nullifier uniqueness enforcement
// inside the proving system, keyed strictly on the amount being zero.
func (s *SpendNote) IsDummy() bool {
	return s.Amount == 0
}

// Serialize returns the note serialized as a byte array. This format is
// suitable for encrypting and attaching to a transaction output.
func (s *SpendNote) Serialize() []byte {
	ser := make([]byte, 0, SerializedNoteLen)
	ser = append(ser, s.Amount.ToBytes()...)
	ser = append(ser, s.OwnerKey.Bytes()...)
	ser = append(ser, s.Randomness.Bytes()...)
	ser = append(ser, s.TokenID.Bytes()...)
	return ser
}

// Deserialize turns a serialized byte slice back into a SpendNote
func (s *SpendNote) Deserialize(ser []byte) error {
	if len(ser) != SerializedNoteLen {
		return errors.New("invalid serialization length")
	}
	s.Amount = Amount(binary.BigEndian.Uint64(ser[:AmountLen]))
	ownerKey, err := NewFieldElement(ser[AmountLen : AmountLen+OwnerKeyLen])
	if err != nil {
		return err
	}
	randomness, err := NewFieldElement(ser[AmountLen+OwnerKeyLen : AmountLen+OwnerKeyLen+RandomnessLen])
	if err != nil {
		return err
	}
	tokenID, err := NewFieldElement(ser[AmountLen+OwnerKeyLen+RandomnessLen:])
	if err != nil {
		return err
	}
	s.OwnerKey = ownerKey
	s.Randomness = randomness
	s.TokenID = tokenID
	return nil
}

// DummyNote returns the all-zero padding note for the given token id.
// Its commitment and nullifier are still computed for circuit
// uniformity and are identical across every transaction using the
// same token.
func DummyNote(tokenID FieldElement) *SpendNote {
	return &SpendNote{
		Amount:     0,
		OwnerKey:   FieldElement{},
		Randomness: FieldElement{},
		TokenID:    tokenID,
	}
}
