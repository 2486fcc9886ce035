// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package walletlib

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veilcash/veild/blockchain"
	"github.com/veilcash/veild/crypto"
	"github.com/veilcash/veild/ledger"
	"github.com/veilcash/veild/ledger/mock"
	"github.com/veilcash/veild/params/hash"
	repomock "github.com/veilcash/veild/repo/mock"
	"github.com/veilcash/veild/types"
	"github.com/veilcash/veild/zk"
)

// testNode bundles a wallet with its reconciler against a shared mock
// ledger, the way the daemon wires them.
type testNode struct {
	wallet     *Wallet
	sk         *crypto.SpendingKey
	reconciler *blockchain.Reconciler
	chain      *mock.MockLedger
	prover     zk.Prover
}

func newTestNode(t *testing.T, chain *mock.MockLedger) *testNode {
	ds := repomock.NewMapDatastore()
	wallet, sk := newTestWallet(t, ds)
	scanner := blockchain.NewNoteScanner(wallet.ScanKey())
	reconciler, err := blockchain.NewReconciler(ds, scanner, wallet.ConnectScanMatch)
	assert.NoError(t, err)
	reconciler.SetResetHandler(wallet.Reset)
	return &testNode{
		wallet:     wallet,
		sk:         sk,
		reconciler: reconciler,
		chain:      chain,
		prover:     &zk.MockProver{},
	}
}

func (n *testNode) sync(t *testing.T) {
	assert.NoError(t, n.reconciler.Sync(context.Background(), n.chain))
}

func (n *testNode) submit(t *testing.T, op *Operation) *ledger.Event {
	proof, err := n.wallet.Prove(n.prover, op)
	assert.NoError(t, err)
	event, err := n.wallet.Submit(context.Background(), n.chain, op, proof)
	assert.NoError(t, err)
	return event
}

func TestShieldThenUnshield(t *testing.T) {
	chain := mock.NewMockLedger()
	node := newTestNode(t, chain)
	node.sync(t)

	// Shield 100000 into the pool.
	shield, err := node.wallet.Shield(node.reconciler.Accumulator(), 100000)
	assert.NoError(t, err)
	shieldEvent := node.submit(t, shield)
	assert.Equal(t, ledger.TagShield, shieldEvent.Tag)

	// The deposit is a positive public amount.
	decoded, err := zk.DecodePublicAmount(shield.Witness.PublicSignals()[5])
	assert.NoError(t, err)
	assert.Equal(t, 0, decoded.Cmp(big.NewInt(100000)))

	// Syncing discovers the new note via the scanner.
	node.sync(t)
	assert.Equal(t, chain.Root(), node.reconciler.Root())
	assert.Equal(t, types.Amount(100000), node.wallet.Balance())

	// Withdraw the full balance. The public amount is negative, so it
	// encodes as modulus minus the amount.
	unshield, err := node.wallet.Unshield(node.reconciler.Accumulator(), node.sk, 100000)
	assert.NoError(t, err)
	unshieldEvent := node.submit(t, unshield)
	assert.Equal(t, ledger.TagUnshield, unshieldEvent.Tag)

	expected := new(big.Int).Sub(hash.Modulus(), big.NewInt(100000))
	assert.Equal(t, 0, unshield.Witness.PublicSignals()[5].Big().Cmp(expected))

	node.sync(t)
	assert.Equal(t, types.Amount(0), node.wallet.Balance())
	assert.Equal(t, chain.Root(), node.reconciler.Root())
}

func TestTransferBetweenWallets(t *testing.T) {
	chain := mock.NewMockLedger()
	alice := newTestNode(t, chain)
	bob := newTestNode(t, chain)

	shield, err := alice.wallet.Shield(alice.reconciler.Accumulator(), 1000)
	assert.NoError(t, err)
	alice.submit(t, shield)
	alice.sync(t)
	assert.Equal(t, types.Amount(1000), alice.wallet.Balance())

	// Alice pays Bob 300; 700 comes back to her as change.
	transfer, err := alice.wallet.Transfer(alice.reconciler.Accumulator(), alice.sk, bob.wallet.Address(), 300)
	assert.NoError(t, err)
	assert.Len(t, transfer.Outputs, 2)

	// A transfer moves no public value.
	decoded, err := zk.DecodePublicAmount(transfer.Witness.PublicSignals()[5])
	assert.NoError(t, err)
	assert.Equal(t, 0, decoded.Sign())

	alice.submit(t, transfer)
	alice.sync(t)
	bob.sync(t)

	assert.Equal(t, types.Amount(700), alice.wallet.Balance())
	assert.Equal(t, types.Amount(300), bob.wallet.Balance())
}

func TestUnshieldInsufficientFunds(t *testing.T) {
	chain := mock.NewMockLedger()
	node := newTestNode(t, chain)
	node.sync(t)

	_, err := node.wallet.Unshield(node.reconciler.Accumulator(), node.sk, 100)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestSubmitRejectedProofNotRetried(t *testing.T) {
	chain := mock.NewMockLedger()
	node := newTestNode(t, chain)
	node.sync(t)

	shield, err := node.wallet.Shield(node.reconciler.Accumulator(), 500)
	assert.NoError(t, err)
	proof, err := node.wallet.Prove(node.prover, shield)
	assert.NoError(t, err)

	// Another operation lands first, so the proof's root is stale by
	// the time it reaches the verifier.
	other, err := node.wallet.Shield(node.reconciler.Accumulator(), 100)
	assert.NoError(t, err)
	node.submit(t, other)

	_, err = node.wallet.Submit(context.Background(), chain, shield, proof)
	var rejection ledger.InvalidProofRejection
	assert.ErrorAs(t, err, &rejection)
	assert.Equal(t, ledger.TagShield, rejection.Tag)

	// A rejected submission must not mark anything spent.
	node.sync(t)
	assert.Equal(t, types.Amount(100), node.wallet.Balance())
}

func TestDoubleSpendRejected(t *testing.T) {
	chain := mock.NewMockLedger()
	node := newTestNode(t, chain)
	node.sync(t)

	shield, err := node.wallet.Shield(node.reconciler.Accumulator(), 1000)
	assert.NoError(t, err)
	node.submit(t, shield)
	node.sync(t)

	// Build and prove two withdrawals of the same note against the
	// same root, then land the first.
	first, err := node.wallet.Unshield(node.reconciler.Accumulator(), node.sk, 400)
	assert.NoError(t, err)
	second, err := node.wallet.Unshield(node.reconciler.Accumulator(), node.sk, 600)
	assert.NoError(t, err)
	proof, err := node.wallet.Prove(node.prover, second)
	assert.NoError(t, err)

	node.submit(t, first)
	node.sync(t)

	// Re-target the second proof at the post-spend root so the only
	// thing standing between it and acceptance is its reused
	// nullifier.
	proof.PublicSignals[0] = chain.Root()
	_, err = node.wallet.Submit(context.Background(), chain, second, proof)
	var rejection ledger.InvalidProofRejection
	assert.ErrorAs(t, err, &rejection)
	assert.Contains(t, rejection.Reason, "already spent")
}

func TestReorgEvictsOrphanedNotes(t *testing.T) {
	chain := mock.NewMockLedger()
	alice := newTestNode(t, chain)
	alice.sync(t)

	shield, err := alice.wallet.Shield(alice.reconciler.Accumulator(), 1000)
	assert.NoError(t, err)
	alice.submit(t, shield)
	alice.sync(t)
	assert.Equal(t, types.Amount(1000), alice.wallet.Balance())

	// A rollback discards Alice's shield and an unrelated operation
	// takes its place. The chains end up the same length, but her note
	// no longer exists on this one.
	assert.NoError(t, chain.Rollback(2))
	bob := newTestNode(t, chain)
	bob.sync(t)
	bobShield, err := bob.wallet.Shield(bob.reconciler.Accumulator(), 500)
	assert.NoError(t, err)
	bob.submit(t, bobShield)

	// Alice's resync detects the reorg and evicts the orphaned note
	// instead of carrying an unprovable balance.
	alice.sync(t)
	assert.Equal(t, chain.Root(), alice.reconciler.Root())
	assert.Equal(t, types.Amount(0), alice.wallet.Balance())
	assert.Empty(t, alice.wallet.Notes())

	// The ghost note can no longer be selected for a spend.
	_, err = alice.wallet.Unshield(alice.reconciler.Accumulator(), alice.sk, 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	bob.sync(t)
	assert.Equal(t, types.Amount(500), bob.wallet.Balance())
}

func TestProveRetriesOnce(t *testing.T) {
	chain := mock.NewMockLedger()
	node := newTestNode(t, chain)
	node.sync(t)

	shield, err := node.wallet.Shield(node.reconciler.Accumulator(), 500)
	assert.NoError(t, err)

	// A corrupted nullifier slot fails constraint checking on both
	// the first attempt and the retry.
	prover := &failingProver{inner: &zk.MockProver{}}
	shield.Witness.Nullifiers[0] = types.Nullifier{}

	_, err = node.wallet.Prove(prover, shield)
	var pge zk.ProofGenerationError
	assert.ErrorAs(t, err, &pge)
	assert.Equal(t, 2, prover.calls)
}

// failingProver counts attempts while delegating to the mock prover.
type failingProver struct {
	inner *zk.MockProver
	calls int
}

func (f *failingProver) Prove(witness *zk.Witness) (*zk.Proof, error) {
	f.calls++
	return f.inner.Prove(witness)
}
