// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package zk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veilcash/veild/params"
	"github.com/veilcash/veild/types"
)

func TestWitnessInputs(t *testing.T) {
	witness, _ := buildTransferWitness(t)
	inputs := witness.Inputs()

	// The proof service addresses the witness by these exact names. A
	// renamed or missing key would only surface against the real
	// prover, so pin the full set here.
	wantKeys := []string{
		"merkle_root",
		"nullifier_1", "nullifier_2",
		"output_commitment_1", "output_commitment_2",
		"public_amount",
		"token_mint",
		"in_amount_1", "in_amount_2",
		"in_owner_pubkey_1", "in_owner_pubkey_2",
		"in_randomness_1", "in_randomness_2",
		"in_path_indices_1", "in_path_indices_2",
		"in_path_elements_1", "in_path_elements_2",
		"out_amount_1", "out_amount_2",
		"out_recipient_1", "out_recipient_2",
		"out_randomness_1", "out_randomness_2",
		"spending_key",
	}
	assert.Len(t, inputs, len(wantKeys))
	for _, key := range wantKeys {
		assert.Contains(t, inputs, key)
	}

	// Scalar entries carry the witness values.
	assert.Equal(t, witness.MerkleRoot, inputs["merkle_root"])
	assert.Equal(t, witness.Nullifiers[0].ToFieldElement(), inputs["nullifier_1"])
	assert.Equal(t, witness.Nullifiers[1].ToFieldElement(), inputs["nullifier_2"])
	assert.Equal(t, witness.OutputCommitments[0], inputs["output_commitment_1"])
	assert.Equal(t, witness.OutputCommitments[1], inputs["output_commitment_2"])
	assert.Equal(t, witness.PublicAmount, inputs["public_amount"])
	assert.Equal(t, witness.TokenMint, inputs["token_mint"])
	assert.Equal(t, witness.InAmounts[0].ToFieldElement(), inputs["in_amount_1"])
	assert.Equal(t, witness.OutAmounts[1].ToFieldElement(), inputs["out_amount_2"])
	assert.Equal(t, witness.SpendingKey, inputs["spending_key"])

	// Path entries keep the fixed circuit length.
	elements, ok := inputs["in_path_elements_1"].([]types.FieldElement)
	assert.True(t, ok)
	assert.Len(t, elements, params.TreeDepth)
	assert.Equal(t, witness.InPathElements[0][:], elements)
	indices, ok := inputs["in_path_indices_1"].([]uint8)
	assert.True(t, ok)
	assert.Len(t, indices, params.TreeDepth)
	assert.Equal(t, witness.InPathIndices[0][:], indices)

	// And are copies, so a caller mutating the map cannot corrupt the
	// witness before it reaches the prover.
	original := witness.InPathElements[0][0]
	elements[0][0] ^= 0xff
	assert.Equal(t, original, witness.InPathElements[0][0])
}
