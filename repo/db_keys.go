// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo

const (
	// LeafKeyPrefix is the datastore key prefix for the ordered
	// commitment leaf list. Keys are fixed-width hex leaf indices so a
	// lexicographic scan yields insertion order.
	LeafKeyPrefix = "/veild/leaf/"
	// AccumulatorCheckpointKey is the datastore key for the last
	// confirmed (root, leafCount) checkpoint.
	AccumulatorCheckpointKey = "/veild/accumulatorcheckpoint/"
	// NullifierKeyPrefix is the datastore key prefix for the wallet's
	// spent nullifier set.
	NullifierKeyPrefix = "/veild/nullifier/"
	// WalletNoteKeyPrefix is the datastore key prefix for the
	// wallet's owned notes, encrypted at rest, keyed by commitment.
	WalletNoteKeyPrefix = "/veild/walletnote/"
	// WalletScanKeyKey is the datastore key for the wallet's scan
	// (note decryption) private key. This key reveals incoming notes
	// but cannot authorize spends; the spending key is never stored.
	WalletScanKeyKey = "/veild/scankey/"
	// WalletStoreKeyKey is the datastore key for the symmetric key
	// that encrypts note plaintexts at rest.
	WalletStoreKeyKey = "/veild/storekey/"
)
