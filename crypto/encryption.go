// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

const (
	// Length of nacl nonce
	NonceBytes = 24

	// Length of nacl ephemeral public key
	EphemeralPublicKeyBytes = 32
)

// ErrBoxDecryption Nacl box decryption failed
var ErrBoxDecryption = errors.New("failed to decrypt curve25519")

// EncryptNote encrypts a serialized note plaintext to the recipient's
// scan public key using an ephemeral key pair. The ciphertext layout is
// nonce || ephemeral pubkey || box.
func EncryptNote(pubKey *Curve25519PublicKey, plaintext []byte) ([]byte, error) {
	// Generate ephemeral key pair
	ephemPub, ephemPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	// Encrypt with nacl
	var (
		ciphertext []byte
		nonce      [NonceBytes]byte
	)
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	ciphertext = box.Seal(ciphertext, plaintext, &nonce, pubKey.k, ephemPriv)

	// Prepend the ephemeral public key
	ciphertext = append(ephemPub[:], ciphertext...)

	// Prepend nonce
	ciphertext = append(nonce[:], ciphertext...)
	return ciphertext, nil
}

// DecryptNote decrypts a note ciphertext using the scan private key.
func DecryptNote(privKey *Curve25519PrivateKey, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < NonceBytes+EphemeralPublicKeyBytes {
		return nil, ErrBoxDecryption
	}
	n := ciphertext[:NonceBytes]
	ephemPubkeyBytes := ciphertext[NonceBytes : NonceBytes+EphemeralPublicKeyBytes]
	ct := ciphertext[NonceBytes+EphemeralPublicKeyBytes:]

	var (
		plaintext   []byte
		ephemPubkey [EphemeralPublicKeyBytes]byte
		nonce       [NonceBytes]byte
	)
	copy(ephemPubkey[:], ephemPubkeyBytes)
	copy(nonce[:], n)

	plaintext, success := box.Open(plaintext, ct, &nonce, &ephemPubkey, privKey.k)
	if !success {
		return nil, ErrBoxDecryption
	}
	return plaintext, nil
}

func generateBoxKey(r io.Reader) (*[32]byte, *[32]byte, error) {
	return box.GenerateKey(r)
}

func scalarBasePoint(priv *[32]byte) *[32]byte {
	var pub [32]byte
	curve25519.ScalarBaseMult(&pub, priv)
	return &pub
}
