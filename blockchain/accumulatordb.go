// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	"github.com/veilcash/veild/params/hash"
	"github.com/veilcash/veild/repo"
	"github.com/veilcash/veild/types"
)

// leafKey builds a fixed-width key so the datastore returns leaves in
// insertion order under a lexicographic key sort.
func leafKey(index uint64) datastore.Key {
	return datastore.NewKey(repo.LeafKeyPrefix + fmt.Sprintf("%016x", index))
}

func dsPutLeaves(ds repo.Datastore, start uint64, leaves []types.FieldElement) error {
	batch, err := ds.Batch(context.Background())
	if err != nil {
		return err
	}
	for i, leaf := range leaves {
		if err := batch.Put(context.Background(), leafKey(start+uint64(i)), leaf.Bytes()); err != nil {
			return err
		}
	}
	return batch.Commit(context.Background())
}

func dsFetchLeaves(ds repo.Datastore) ([]types.FieldElement, error) {
	results, err := ds.Query(context.Background(), query.Query{
		Prefix: repo.LeafKeyPrefix,
		Orders: []query.Order{query.OrderByKey{}},
	})
	if err != nil {
		return nil, err
	}
	defer results.Close()

	entries, err := results.Rest()
	if err != nil {
		return nil, err
	}
	leaves := make([]types.FieldElement, 0, len(entries))
	for _, entry := range entries {
		leaf, err := types.NewFieldElement(entry.Value)
		if err != nil {
			return nil, AssertError(fmt.Sprintf("corrupt leaf record %s: %s", entry.Key, err))
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

func dsDeleteLeaves(ds repo.Datastore) error {
	results, err := ds.Query(context.Background(), query.Query{
		Prefix:   repo.LeafKeyPrefix,
		KeysOnly: true,
	})
	if err != nil {
		return err
	}
	defer results.Close()

	entries, err := results.Rest()
	if err != nil {
		return err
	}
	batch, err := ds.Batch(context.Background())
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := batch.Delete(context.Background(), datastore.NewKey(entry.Key)); err != nil {
			return err
		}
	}
	return batch.Commit(context.Background())
}

func dsPutAccumulatorCheckpoint(ds repo.Datastore, root types.FieldElement, leafCount uint64) error {
	ser := make([]byte, hash.HashSize+8)
	copy(ser[:hash.HashSize], root.Bytes())
	binary.BigEndian.PutUint64(ser[hash.HashSize:], leafCount)
	return ds.Put(context.Background(), datastore.NewKey(repo.AccumulatorCheckpointKey), ser)
}

func dsFetchAccumulatorCheckpoint(ds repo.Datastore) (types.FieldElement, uint64, error) {
	ser, err := ds.Get(context.Background(), datastore.NewKey(repo.AccumulatorCheckpointKey))
	if err != nil {
		return types.FieldElement{}, 0, err
	}
	if len(ser) != hash.HashSize+8 {
		return types.FieldElement{}, 0, AssertError("corrupt accumulator checkpoint")
	}
	root, err := types.NewFieldElement(ser[:hash.HashSize])
	if err != nil {
		return types.FieldElement{}, 0, AssertError("corrupt accumulator checkpoint root")
	}
	return root, binary.BigEndian.Uint64(ser[hash.HashSize:]), nil
}

func dsDeleteAccumulatorCheckpoint(ds repo.Datastore) error {
	return ds.Delete(context.Background(), datastore.NewKey(repo.AccumulatorCheckpointKey))
}

func dsPutNullifiers(ds repo.Datastore, nullifiers []types.Nullifier) error {
	batch, err := ds.Batch(context.Background())
	if err != nil {
		return err
	}
	for _, n := range nullifiers {
		if err := batch.Put(context.Background(), datastore.NewKey(repo.NullifierKeyPrefix+n.String()), []byte{}); err != nil {
			return err
		}
	}
	return batch.Commit(context.Background())
}

func dsNullifierExists(ds repo.Datastore, nullifier types.Nullifier) (bool, error) {
	return ds.Has(context.Background(), datastore.NewKey(repo.NullifierKeyPrefix+nullifier.String()))
}
