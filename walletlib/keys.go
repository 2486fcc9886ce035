// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package walletlib

import (
	"context"
	"crypto/rand"
	"errors"

	"github.com/ipfs/go-datastore"
	"github.com/veilcash/veild/crypto"
	"github.com/veilcash/veild/repo"
)

// LoadOrCreateKeys returns the wallet's scan and store keys from the
// datastore, generating and persisting fresh ones on first run. The
// spending key is deliberately not handled here; it never touches the
// datastore.
func LoadOrCreateKeys(ds repo.Datastore) (*crypto.Curve25519PrivateKey, [storeKeySize]byte, error) {
	var storeKey [storeKeySize]byte

	scanKeyBytes, err := ds.Get(context.Background(), datastore.NewKey(repo.WalletScanKeyKey))
	if err != nil && !errors.Is(err, datastore.ErrNotFound) {
		return nil, storeKey, err
	}
	if errors.Is(err, datastore.ErrNotFound) {
		scanKey, _, err := crypto.GenerateCurve25519Key()
		if err != nil {
			return nil, storeKey, err
		}
		if _, err := rand.Read(storeKey[:]); err != nil {
			return nil, storeKey, err
		}
		if err := ds.Put(context.Background(), datastore.NewKey(repo.WalletScanKeyKey), scanKey.Bytes()); err != nil {
			return nil, storeKey, err
		}
		if err := ds.Put(context.Background(), datastore.NewKey(repo.WalletStoreKeyKey), storeKey[:]); err != nil {
			return nil, storeKey, err
		}
		return scanKey, storeKey, nil
	}

	scanKey, err := crypto.Curve25519PrivateKeyFromBytes(scanKeyBytes)
	if err != nil {
		return nil, storeKey, err
	}
	storeKeyBytes, err := ds.Get(context.Background(), datastore.NewKey(repo.WalletStoreKeyKey))
	if err != nil {
		return nil, storeKey, err
	}
	if len(storeKeyBytes) != storeKeySize {
		return nil, storeKey, errors.New("invalid store key length")
	}
	copy(storeKey[:], storeKeyBytes)
	return scanKey, storeKey, nil
}
