// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/veilcash/veild/blockchain"
	"github.com/veilcash/veild/ledger"
	"github.com/veilcash/veild/types"
)

// numPublicSignals is the length of the public signal vector for the
// fixed two-in two-out circuit: root, two nullifiers, two output
// commitments, public amount, token mint.
const numPublicSignals = 7

// MockLedger is an in-process ledger for tests and the replay harness.
// It maintains its own accumulator and nullifier set and verifies
// submissions the way the chain's verifier would, minus the actual
// proof check. It implements both ledger.Client and ledger.ChainSource.
type MockLedger struct {
	acc        *blockchain.Accumulator
	events     []*ledger.Event
	nullifiers map[types.Nullifier]bool
	mtx        sync.RWMutex
}

// NewMockLedger returns an empty MockLedger.
func NewMockLedger() *MockLedger {
	return &MockLedger{
		acc:        blockchain.NewAccumulator(),
		nullifiers: make(map[types.Nullifier]bool),
	}
}

// Submit verifies the submission and, on acceptance, appends both
// output commitments to the accumulator and emits the event. Nullifier
// reuse is rejected, except for the canonical dummy nullifier which
// every padded operation shares.
func (m *MockLedger) Submit(ctx context.Context, sub *ledger.Submission) (*ledger.Event, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(sub.Proof) == 0 {
		return nil, ledger.InvalidProofRejection{Tag: sub.Tag, Reason: "empty proof"}
	}
	if len(sub.PublicSignals) != numPublicSignals {
		return nil, ledger.InvalidProofRejection{Tag: sub.Tag, Reason: fmt.Sprintf("expected %d public signals, got %d", numPublicSignals, len(sub.PublicSignals))}
	}
	if sub.PublicSignals[0].Compare(m.acc.Root()) != 0 {
		return nil, ledger.InvalidProofRejection{Tag: sub.Tag, Reason: "proof root does not match chain root"}
	}

	dummyNullifier, err := dummyNullifierFor(sub.PublicSignals[6])
	if err != nil {
		return nil, err
	}
	nullifiers := []types.Nullifier{
		types.NewNullifier(sub.PublicSignals[1]),
		types.NewNullifier(sub.PublicSignals[2]),
	}
	for _, n := range nullifiers {
		if n == dummyNullifier {
			continue
		}
		if m.nullifiers[n] {
			return nil, ledger.InvalidProofRejection{Tag: sub.Tag, Reason: fmt.Sprintf("nullifier %s already spent", n)}
		}
	}
	if nullifiers[0] == nullifiers[1] && nullifiers[0] != dummyNullifier {
		return nil, ledger.InvalidProofRejection{Tag: sub.Tag, Reason: "duplicate nullifier within operation"}
	}

	event := &ledger.Event{
		Tag:         sub.Tag,
		StartIndex:  m.acc.LeafCount(),
		Commitments: []types.FieldElement{sub.PublicSignals[3], sub.PublicSignals[4]},
		Ciphertexts: make([][]byte, 2),
	}
	for i := range event.Commitments {
		if _, err := m.acc.Insert(event.Commitments[i]); err != nil {
			return nil, err
		}
		if i < len(sub.EncryptedOutputs) {
			event.Ciphertexts[i] = sub.EncryptedOutputs[i]
		}
	}
	for _, n := range nullifiers {
		if n != dummyNullifier {
			m.nullifiers[n] = true
		}
	}
	m.events = append(m.events, event)
	return event, nil
}

// BestRoot returns the current accumulator root and leaf count.
func (m *MockLedger) BestRoot(ctx context.Context) (types.FieldElement, uint64, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.acc.Root(), m.acc.LeafCount(), nil
}

// Events returns up to limit events whose first commitment has a leaf
// index >= fromIndex, in leaf index order.
func (m *MockLedger) Events(ctx context.Context, fromIndex uint64, limit int) ([]*ledger.Event, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	events := make([]*ledger.Event, 0, limit)
	for _, event := range m.events {
		if event.StartIndex < fromIndex {
			continue
		}
		events = append(events, event)
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

// LeafAt returns the commitment at the given leaf index.
func (m *MockLedger) LeafAt(ctx context.Context, index uint64) (types.FieldElement, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.acc.LeafAt(index)
}

// Rollback discards the last n leaves and any events they belong to,
// simulating a chain reorganization. Rolling back into the middle of an
// event discards the whole event.
func (m *MockLedger) Rollback(n uint64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if n > m.acc.LeafCount() {
		return errors.New("rollback exceeds leaf count")
	}
	target := m.acc.LeafCount() - n
	for len(m.events) > 0 && m.events[len(m.events)-1].EndIndex() > target {
		m.events = m.events[:len(m.events)-1]
	}
	if len(m.events) > 0 {
		target = m.events[len(m.events)-1].EndIndex()
	} else {
		target = 0
	}
	leaves := m.acc.Leaves()[:target]
	acc, err := blockchain.NewAccumulatorFromLeaves(leaves)
	if err != nil {
		return err
	}
	m.acc = acc
	return nil
}

// Root returns the current accumulator root without the ChainSource
// error plumbing. Test helper.
func (m *MockLedger) Root() types.FieldElement {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.acc.Root()
}

// LeafCount returns the current leaf count. Test helper.
func (m *MockLedger) LeafCount() uint64 {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.acc.LeafCount()
}

func dummyNullifierFor(tokenID types.FieldElement) (types.Nullifier, error) {
	dummy := types.DummyNote(tokenID)
	commitment, err := dummy.Commitment()
	if err != nil {
		return types.Nullifier{}, err
	}
	zeroKeyHash, err := types.HashFields(types.FieldElement{})
	if err != nil {
		return types.Nullifier{}, err
	}
	return types.CalculateNullifier(commitment, zeroKeyHash)
}

var (
	_ ledger.Client      = (*MockLedger)(nil)
	_ ledger.ChainSource = (*MockLedger)(nil)
)
