// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package datastore

import (
	"os"
	"path"
	"time"

	"github.com/dgraph-io/badger"
	badgerds "github.com/ipfs/go-ds-badger"
	"github.com/veilcash/veild/repo"
)

var _ repo.Datastore = (*VeildDatastore)(nil)

// VeildDatastore is a badger-backed implementation of repo.Datastore.
type VeildDatastore struct {
	*badgerds.Datastore
}

// NewVeildDatastore opens (creating if necessary) the wallet database
// under dataDir.
func NewVeildDatastore(dataDir string) (*VeildDatastore, error) {
	dbPath := path.Join(dataDir, "datastore")
	if err := os.MkdirAll(dbPath, 0700); err != nil {
		return nil, err
	}

	bopts := badger.DefaultOptions(dbPath)
	bopts.Logger = nil

	opts := badgerds.Options{
		GcDiscardRatio: 0.2,
		GcInterval:     15 * time.Minute,
		GcSleep:        10 * time.Second,
		Options:        bopts,
	}
	ds, err := badgerds.NewDatastore(dbPath, &opts)
	if err != nil {
		return nil, err
	}
	return &VeildDatastore{Datastore: ds}, nil
}
