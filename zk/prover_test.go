// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package zk

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veilcash/veild/blockchain"
	"github.com/veilcash/veild/crypto"
	"github.com/veilcash/veild/types"
)

// buildTransferWitness assembles a valid witness spending one real
// 500-unit note into a 400-unit payment and a 100-unit change note.
func buildTransferWitness(t *testing.T) (*Witness, *crypto.SpendingKey) {
	sk, err := crypto.NewSpendingKey()
	assert.NoError(t, err)
	ownerKeyHash, err := sk.OwnerKey()
	assert.NoError(t, err)

	randomness, err := types.RandomFieldElement()
	assert.NoError(t, err)
	in := &types.SpendNote{
		Amount:     500,
		OwnerKey:   ownerKeyHash,
		Randomness: randomness,
		TokenID:    types.VeilCoinID,
	}
	inCommitment, err := in.Commitment()
	assert.NoError(t, err)

	acc := blockchain.NewAccumulator()
	_, err = acc.Insert(inCommitment)
	assert.NoError(t, err)
	inclusionProof, err := acc.GenerateProof(0)
	assert.NoError(t, err)

	nullifier, err := types.CalculateNullifier(inCommitment, ownerKeyHash)
	assert.NoError(t, err)

	zeroKeyHash, err := types.HashFields(types.FieldElement{})
	assert.NoError(t, err)
	dummy := types.DummyNote(types.VeilCoinID)
	dummyCommitment, err := dummy.Commitment()
	assert.NoError(t, err)
	dummyNullifier, err := types.CalculateNullifier(dummyCommitment, zeroKeyHash)
	assert.NoError(t, err)

	recipient, err := types.RandomFieldElement()
	assert.NoError(t, err)
	payment := &types.SpendNote{Amount: 400, OwnerKey: recipient, TokenID: types.VeilCoinID}
	payment.Randomness, err = types.RandomFieldElement()
	assert.NoError(t, err)
	change := &types.SpendNote{Amount: 100, OwnerKey: ownerKeyHash, TokenID: types.VeilCoinID}
	change.Randomness, err = types.RandomFieldElement()
	assert.NoError(t, err)

	witness := &Witness{
		MerkleRoot:  acc.Root(),
		TokenMint:   types.VeilCoinID,
		SpendingKey: sk.FieldElement(),
	}
	witness.InAmounts[0] = in.Amount
	witness.InOwnerPubkeys[0] = in.OwnerKey
	witness.InRandomness[0] = in.Randomness
	witness.InPathIndices[0] = inclusionProof.PathIndices
	witness.InPathElements[0] = inclusionProof.PathElements
	witness.Nullifiers[0] = nullifier
	witness.Nullifiers[1] = dummyNullifier

	for i, out := range []*types.SpendNote{payment, change} {
		commitment, err := out.Commitment()
		assert.NoError(t, err)
		witness.OutAmounts[i] = out.Amount
		witness.OutRecipients[i] = out.OwnerKey
		witness.OutRandomness[i] = out.Randomness
		witness.OutputCommitments[i] = commitment
	}

	witness.PublicAmount, err = EncodePublicAmount(big.NewInt(0))
	assert.NoError(t, err)
	return witness, sk
}

func TestMockProver(t *testing.T) {
	witness, _ := buildTransferWitness(t)

	prover := &MockProver{}
	proof, err := prover.Prove(witness)
	assert.NoError(t, err)
	assert.Len(t, proof.ProofBytes, EstimatedProofSize)
	assert.Equal(t, witness.PublicSignals(), proof.PublicSignals)

	// Public signal order is fixed: root, nullifiers, output
	// commitments, public amount, token mint.
	assert.Equal(t, witness.MerkleRoot, proof.PublicSignals[0])
	assert.Equal(t, witness.Nullifiers[0].ToFieldElement(), proof.PublicSignals[1])
	assert.Equal(t, witness.Nullifiers[1].ToFieldElement(), proof.PublicSignals[2])
	assert.Equal(t, witness.OutputCommitments[0], proof.PublicSignals[3])
	assert.Equal(t, witness.OutputCommitments[1], proof.PublicSignals[4])
	assert.Equal(t, witness.PublicAmount, proof.PublicSignals[5])
	assert.Equal(t, witness.TokenMint, proof.PublicSignals[6])
}

func TestMockProverConstraints(t *testing.T) {
	assertRejected := func(t *testing.T, witness *Witness) {
		prover := &MockProver{}
		_, err := prover.Prove(witness)
		var pge ProofGenerationError
		assert.ErrorAs(t, err, &pge)
	}

	t.Run("stale merkle root", func(t *testing.T) {
		witness, _ := buildTransferWitness(t)
		var err error
		witness.MerkleRoot, err = types.RandomFieldElement()
		assert.NoError(t, err)
		assertRejected(t, witness)
	})

	t.Run("wrong nullifier", func(t *testing.T) {
		witness, _ := buildTransferWitness(t)
		fe, err := types.RandomFieldElement()
		assert.NoError(t, err)
		witness.Nullifiers[0] = types.NewNullifier(fe)
		assertRejected(t, witness)
	})

	t.Run("wrong spending key", func(t *testing.T) {
		witness, _ := buildTransferWitness(t)
		other, err := crypto.NewSpendingKey()
		assert.NoError(t, err)
		witness.SpendingKey = other.FieldElement()
		assertRejected(t, witness)
	})

	t.Run("unbalanced amounts", func(t *testing.T) {
		witness, _ := buildTransferWitness(t)
		witness.OutAmounts[1] = 50
		assertRejected(t, witness)
	})

	t.Run("wrong output commitment", func(t *testing.T) {
		witness, _ := buildTransferWitness(t)
		var err error
		witness.OutputCommitments[0], err = types.RandomFieldElement()
		assert.NoError(t, err)
		assertRejected(t, witness)
	})
}

func TestMockProverDummyExemption(t *testing.T) {
	// A shield has two dummy inputs. No inclusion proofs exist, the
	// spending key is zero, and the root can be any value the chain
	// currently has. Only the zero-amount slots are exempt.
	zeroKeyHash, err := types.HashFields(types.FieldElement{})
	assert.NoError(t, err)
	dummy := types.DummyNote(types.VeilCoinID)
	dummyCommitment, err := dummy.Commitment()
	assert.NoError(t, err)
	dummyNullifier, err := types.CalculateNullifier(dummyCommitment, zeroKeyHash)
	assert.NoError(t, err)

	owner, err := types.RandomFieldElement()
	assert.NoError(t, err)
	out := &types.SpendNote{Amount: 100000, OwnerKey: owner, TokenID: types.VeilCoinID}
	out.Randomness, err = types.RandomFieldElement()
	assert.NoError(t, err)
	outCommitment, err := out.Commitment()
	assert.NoError(t, err)

	witness := &Witness{
		MerkleRoot: blockchain.NewAccumulator().Root(),
		TokenMint:  types.VeilCoinID,
	}
	witness.Nullifiers[0] = dummyNullifier
	witness.Nullifiers[1] = dummyNullifier
	witness.OutAmounts[0] = out.Amount
	witness.OutRecipients[0] = out.OwnerKey
	witness.OutRandomness[0] = out.Randomness
	witness.OutputCommitments[0] = outCommitment

	dummyOut := types.DummyNote(types.VeilCoinID)
	witness.OutRecipients[1] = dummyOut.OwnerKey
	witness.OutRandomness[1] = dummyOut.Randomness
	witness.OutputCommitments[1], err = dummyOut.Commitment()
	assert.NoError(t, err)

	witness.PublicAmount, err = EncodePublicAmount(big.NewInt(100000))
	assert.NoError(t, err)

	prover := &MockProver{}
	proof, err := prover.Prove(witness)
	assert.NoError(t, err)
	assert.Equal(t, witness.PublicAmount, proof.PublicSignals[5])
}

func TestWitnessZeroize(t *testing.T) {
	witness, sk := buildTransferWitness(t)
	assert.False(t, witness.SpendingKey.IsZero())

	witness.Zeroize()
	assert.True(t, witness.SpendingKey.IsZero())
	sk.Zeroize()
	assert.True(t, sk.FieldElement().IsZero())
}
