// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package zk

import (
	"github.com/veilcash/veild/params"
	"github.com/veilcash/veild/types"
)

const (
	// NumInputs and NumOutputs fix the circuit shape. Every operation
	// is padded to exactly two input and two output note slots so
	// observers cannot infer transaction complexity from proof
	// metadata.
	NumInputs  = 2
	NumOutputs = 2
)

// Witness is the full named set of field element inputs handed to the
// proving system for one operation. It is built purely from locally
// known plaintext notes, the freshly reconciled accumulator's proofs,
// and the spending key held only for the duration of the call.
type Witness struct {
	MerkleRoot        types.FieldElement
	Nullifiers        [NumInputs]types.Nullifier
	OutputCommitments [NumOutputs]types.FieldElement
	PublicAmount      types.FieldElement
	TokenMint         types.FieldElement

	InAmounts      [NumInputs]types.Amount
	InOwnerPubkeys [NumInputs]types.FieldElement
	InRandomness   [NumInputs]types.FieldElement
	InPathIndices  [NumInputs][params.TreeDepth]uint8
	InPathElements [NumInputs][params.TreeDepth]types.FieldElement

	OutAmounts    [NumOutputs]types.Amount
	OutRecipients [NumOutputs]types.FieldElement
	OutRandomness [NumOutputs]types.FieldElement

	SpendingKey types.FieldElement
}

// Inputs returns the witness as the named map the proof service
// consumes. Array-valued entries keep their fixed circuit lengths.
func (w *Witness) Inputs() map[string]any {
	inputs := map[string]any{
		"merkle_root":         w.MerkleRoot,
		"nullifier_1":         w.Nullifiers[0].ToFieldElement(),
		"nullifier_2":         w.Nullifiers[1].ToFieldElement(),
		"output_commitment_1": w.OutputCommitments[0],
		"output_commitment_2": w.OutputCommitments[1],
		"public_amount":       w.PublicAmount,
		"token_mint":          w.TokenMint,
		"in_amount_1":         w.InAmounts[0].ToFieldElement(),
		"in_amount_2":         w.InAmounts[1].ToFieldElement(),
		"in_owner_pubkey_1":   w.InOwnerPubkeys[0],
		"in_owner_pubkey_2":   w.InOwnerPubkeys[1],
		"in_randomness_1":     w.InRandomness[0],
		"in_randomness_2":     w.InRandomness[1],
		"out_amount_1":        w.OutAmounts[0].ToFieldElement(),
		"out_amount_2":        w.OutAmounts[1].ToFieldElement(),
		"out_recipient_1":     w.OutRecipients[0],
		"out_recipient_2":     w.OutRecipients[1],
		"out_randomness_1":    w.OutRandomness[0],
		"out_randomness_2":    w.OutRandomness[1],
		"spending_key":        w.SpendingKey,
	}
	inputs["in_path_indices_1"] = append([]uint8(nil), w.InPathIndices[0][:]...)
	inputs["in_path_indices_2"] = append([]uint8(nil), w.InPathIndices[1][:]...)
	inputs["in_path_elements_1"] = append([]types.FieldElement(nil), w.InPathElements[0][:]...)
	inputs["in_path_elements_2"] = append([]types.FieldElement(nil), w.InPathElements[1][:]...)
	return inputs
}

// PublicSignals returns the public signal vector the verifier checks
// the proof against, in the circuit's fixed order.
func (w *Witness) PublicSignals() []types.FieldElement {
	return []types.FieldElement{
		w.MerkleRoot,
		w.Nullifiers[0].ToFieldElement(),
		w.Nullifiers[1].ToFieldElement(),
		w.OutputCommitments[0],
		w.OutputCommitments[1],
		w.PublicAmount,
		w.TokenMint,
	}
}

// Zeroize scrubs the spending key from the witness. Callers must
// invoke it as soon as the witness has been handed to the prover; the
// key must never outlive the witness assembly call.
func (w *Witness) Zeroize() {
	for i := range w.SpendingKey {
		w.SpendingKey[i] = 0
	}
}
