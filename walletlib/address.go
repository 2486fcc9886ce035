// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package walletlib

import (
	"encoding/hex"
	"errors"

	"github.com/veilcash/veild/crypto"
	"github.com/veilcash/veild/params/hash"
	"github.com/veilcash/veild/types"
)

// Address is the information a sender needs to pay a wallet. OwnerKey
// binds the output note to the recipient's spending key and ScanKey is
// used to encrypt the note plaintext so the recipient can find it on
// chain.
type Address struct {
	OwnerKey types.FieldElement
	ScanKey  *crypto.Curve25519PublicKey
}

// String returns the hex encoding of the owner key followed by the
// scan pubkey.
func (a Address) String() string {
	b := make([]byte, 0, hash.HashSize+crypto.Curve25519PublicKeySize)
	b = append(b, a.OwnerKey.Bytes()...)
	b = append(b, a.ScanKey.Bytes()...)
	return hex.EncodeToString(b)
}

// NewAddressFromString parses an address in the format returned by
// Address.String.
func NewAddressFromString(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, err
	}
	if len(b) != hash.HashSize+crypto.Curve25519PublicKeySize {
		return Address{}, errors.New("invalid address length")
	}
	ownerKey, err := types.NewFieldElement(b[:hash.HashSize])
	if err != nil {
		return Address{}, err
	}
	scanKey, err := crypto.Curve25519PublicKeyFromBytes(b[hash.HashSize:])
	if err != nil {
		return Address{}, err
	}
	return Address{OwnerKey: ownerKey, ScanKey: scanKey}, nil
}
