// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veilcash/veild/ledger"
	"github.com/veilcash/veild/types"
)

// testSubmission builds a submission that passes the mock verifier's
// structural checks against the ledger's current root.
func testSubmission(t *testing.T, m *MockLedger) *ledger.Submission {
	signals := make([]types.FieldElement, numPublicSignals)
	signals[0] = m.Root()
	for i := 1; i < numPublicSignals-1; i++ {
		var err error
		signals[i], err = types.RandomFieldElement()
		assert.NoError(t, err)
	}
	signals[6] = types.VeilCoinID
	return &ledger.Submission{
		Tag:           ledger.TagTransfer,
		Proof:         []byte{0x01},
		PublicSignals: signals,
	}
}

func TestMockLedgerSubmit(t *testing.T) {
	m := NewMockLedger()

	sub := testSubmission(t, m)
	event, err := m.Submit(context.Background(), sub)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), event.StartIndex)
	assert.Equal(t, []types.FieldElement{sub.PublicSignals[3], sub.PublicSignals[4]}, event.Commitments)
	assert.Equal(t, uint64(2), m.LeafCount())

	root, count, err := m.BestRoot(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, m.Root(), root)
	assert.Equal(t, uint64(2), count)

	leaf, err := m.LeafAt(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, sub.PublicSignals[3], leaf)
}

func TestMockLedgerRejections(t *testing.T) {
	m := NewMockLedger()

	t.Run("empty proof", func(t *testing.T) {
		sub := testSubmission(t, m)
		sub.Proof = nil
		_, err := m.Submit(context.Background(), sub)
		var rejection ledger.InvalidProofRejection
		assert.ErrorAs(t, err, &rejection)
	})

	t.Run("wrong signal count", func(t *testing.T) {
		sub := testSubmission(t, m)
		sub.PublicSignals = sub.PublicSignals[:5]
		_, err := m.Submit(context.Background(), sub)
		var rejection ledger.InvalidProofRejection
		assert.ErrorAs(t, err, &rejection)
	})

	t.Run("stale root", func(t *testing.T) {
		sub := testSubmission(t, m)
		var err error
		sub.PublicSignals[0], err = types.RandomFieldElement()
		assert.NoError(t, err)
		_, err = m.Submit(context.Background(), sub)
		var rejection ledger.InvalidProofRejection
		assert.ErrorAs(t, err, &rejection)
	})

	t.Run("reused nullifier", func(t *testing.T) {
		sub := testSubmission(t, m)
		_, err := m.Submit(context.Background(), sub)
		assert.NoError(t, err)

		replay := testSubmission(t, m)
		replay.PublicSignals[1] = sub.PublicSignals[1]
		_, err = m.Submit(context.Background(), replay)
		var rejection ledger.InvalidProofRejection
		assert.ErrorAs(t, err, &rejection)
	})
}

func TestMockLedgerEventsPagination(t *testing.T) {
	m := NewMockLedger()
	for i := 0; i < 5; i++ {
		_, err := m.Submit(context.Background(), testSubmission(t, m))
		assert.NoError(t, err)
	}

	events, err := m.Events(context.Background(), 0, 3)
	assert.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Equal(t, uint64(0), events[0].StartIndex)

	events, err = m.Events(context.Background(), 6, 10)
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, uint64(6), events[0].StartIndex)
}

func TestMockLedgerRollback(t *testing.T) {
	m := NewMockLedger()
	for i := 0; i < 3; i++ {
		_, err := m.Submit(context.Background(), testSubmission(t, m))
		assert.NoError(t, err)
	}
	assert.Equal(t, uint64(6), m.LeafCount())

	// Rolling back one leaf discards the whole last event.
	assert.NoError(t, m.Rollback(1))
	assert.Equal(t, uint64(4), m.LeafCount())

	events, err := m.Events(context.Background(), 0, 10)
	assert.NoError(t, err)
	assert.Len(t, events, 2)

	assert.Error(t, m.Rollback(100))
}
