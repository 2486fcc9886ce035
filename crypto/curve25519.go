// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"errors"
)

const (
	Curve25519PrivateKeySize = 32
	Curve25519PublicKeySize  = 32
)

// Curve25519PrivateKey is the scan key used to trial-decrypt
// transaction output ciphertexts. It is distinct from the spending
// key: holding it reveals incoming notes but cannot authorize spends.
type Curve25519PrivateKey struct {
	k *[Curve25519PrivateKeySize]byte
}

// Curve25519PublicKey is the public half of a scan key pair.
// Recipients publish it alongside their owner key so senders can
// encrypt note plaintexts to them.
type Curve25519PublicKey struct {
	k *[Curve25519PublicKeySize]byte
}

// GenerateCurve25519Key generates a new scan key pair.
func GenerateCurve25519Key() (*Curve25519PrivateKey, *Curve25519PublicKey, error) {
	pub, priv, err := generateBoxKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return &Curve25519PrivateKey{k: priv}, &Curve25519PublicKey{k: pub}, nil
}

// Curve25519PrivateKeyFromBytes loads a scan private key. The public
// key is recoverable via GetPublic.
func Curve25519PrivateKeyFromBytes(b []byte) (*Curve25519PrivateKey, error) {
	if len(b) != Curve25519PrivateKeySize {
		return nil, errors.New("invalid curve25519 private key length")
	}
	var k [Curve25519PrivateKeySize]byte
	copy(k[:], b)
	return &Curve25519PrivateKey{k: &k}, nil
}

// Curve25519PublicKeyFromBytes loads a scan public key.
func Curve25519PublicKeyFromBytes(b []byte) (*Curve25519PublicKey, error) {
	if len(b) != Curve25519PublicKeySize {
		return nil, errors.New("invalid curve25519 public key length")
	}
	var k [Curve25519PublicKeySize]byte
	copy(k[:], b)
	return &Curve25519PublicKey{k: &k}, nil
}

// GetPublic returns the public key half of the key pair.
func (k *Curve25519PrivateKey) GetPublic() *Curve25519PublicKey {
	return &Curve25519PublicKey{k: scalarBasePoint(k.k)}
}

func (k *Curve25519PrivateKey) Bytes() []byte {
	b := make([]byte, Curve25519PrivateKeySize)
	copy(b, k.k[:])
	return b
}

func (k *Curve25519PublicKey) Bytes() []byte {
	b := make([]byte, Curve25519PublicKeySize)
	copy(b, k.k[:])
	return b
}
