// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package zk

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/veilcash/veild/blockchain"
	"github.com/veilcash/veild/types"
)

// EstimatedProofSize is the estimated size (in bytes) of the
// transaction proofs. These vary slightly for each operation kind.
const EstimatedProofSize = 800

// Proof is the output of the proving system: opaque proof bytes plus
// the public signal vector the verifier checks them against.
type Proof struct {
	ProofBytes    []byte
	PublicSignals []types.FieldElement
}

// ProofGenerationError is a failure surfaced by the proving backend.
// An internal constraint violation means the witness itself was
// malformed, i.e. the accumulator's view disagreed with what was fed
// in. That is a fatal local bug: callers may retry at most once and
// must never swallow it.
type ProofGenerationError struct {
	Constraint string
	Err        error
}

func (e ProofGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("proof generation failed: %s", e.Err)
	}
	return fmt.Sprintf("proof generation failed: constraint violated: %s", e.Constraint)
}

func (e ProofGenerationError) Unwrap() error {
	return e.Err
}

// Prover is an interface to the zk-snark prove function.
//
// Proof generation is treated as a blocking call with no timeout
// semantics of its own; callers decide retry and cancellation policy.
type Prover interface {
	// Prove creates a proof that the witness satisfies the circuit
	// and returns it with the public signals.
	Prove(witness *Witness) (*Proof, error)
}

// MockProver is a mock implementation of the Prover interface. It
// checks the witness against the circuit's constraint semantics but
// does not actually create a proof. Instead, it just returns random
// bytes.
//
// A slot with a zero amount is exempt from the merkle inclusion
// check, keyed strictly on amount == 0. That mirrors the observed
// verifier behavior; the authoritative verifier's exemption mechanism
// is external to this package.
type MockProver struct {
	proofLen int
	mtx      sync.RWMutex
}

// Prove validates the witness and returns a mock proof.
func (m *MockProver) Prove(witness *Witness) (*Proof, error) {
	if err := checkConstraints(witness); err != nil {
		return nil, err
	}

	proofLen := EstimatedProofSize
	m.mtx.RLock()
	if m.proofLen > 0 {
		proofLen = m.proofLen
	}
	m.mtx.RUnlock()
	proof := make([]byte, proofLen)
	rand.Read(proof)
	return &Proof{
		ProofBytes:    proof,
		PublicSignals: witness.PublicSignals(),
	}, nil
}

// SetProofLen sets the length of the mock proof returned by the
// Prove method.
func (m *MockProver) SetProofLen(length int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.proofLen = length
}

func checkConstraints(witness *Witness) error {
	ownerKeyHash, err := types.HashFields(witness.SpendingKey)
	if err != nil {
		return ProofGenerationError{Err: err}
	}
	zeroOwnerHash, err := types.HashFields(types.FieldElement{})
	if err != nil {
		return ProofGenerationError{Err: err}
	}

	inSum := new(big.Int)
	for i := 0; i < NumInputs; i++ {
		note := &types.SpendNote{
			Amount:     witness.InAmounts[i],
			OwnerKey:   witness.InOwnerPubkeys[i],
			Randomness: witness.InRandomness[i],
			TokenID:    witness.TokenMint,
		}
		commitment, err := note.Commitment()
		if err != nil {
			return ProofGenerationError{Err: err}
		}

		keyHash := ownerKeyHash
		if note.IsDummy() {
			keyHash = zeroOwnerHash
		} else {
			if witness.InOwnerPubkeys[i] != ownerKeyHash {
				return ProofGenerationError{Constraint: fmt.Sprintf("input %d is not owned by the spending key", i+1)}
			}
			proof := &blockchain.InclusionProof{
				PathElements: witness.InPathElements[i],
				PathIndices:  witness.InPathIndices[i],
			}
			if !blockchain.VerifyInclusionProof(commitment, proof, witness.MerkleRoot) {
				return ProofGenerationError{Constraint: fmt.Sprintf("input %d inclusion proof does not fold to the merkle root", i+1)}
			}
		}
		nullifier, err := types.CalculateNullifier(commitment, keyHash)
		if err != nil {
			return ProofGenerationError{Err: err}
		}
		if nullifier != witness.Nullifiers[i] {
			return ProofGenerationError{Constraint: fmt.Sprintf("input %d nullifier mismatch", i+1)}
		}
		inSum.Add(inSum, new(big.Int).SetUint64(uint64(witness.InAmounts[i])))
	}

	outSum := new(big.Int)
	for i := 0; i < NumOutputs; i++ {
		note := &types.SpendNote{
			Amount:     witness.OutAmounts[i],
			OwnerKey:   witness.OutRecipients[i],
			Randomness: witness.OutRandomness[i],
			TokenID:    witness.TokenMint,
		}
		commitment, err := note.Commitment()
		if err != nil {
			return ProofGenerationError{Err: err}
		}
		if commitment != witness.OutputCommitments[i] {
			return ProofGenerationError{Constraint: fmt.Sprintf("output %d commitment mismatch", i+1)}
		}
		outSum.Add(outSum, new(big.Int).SetUint64(uint64(witness.OutAmounts[i])))
	}

	delta := new(big.Int).Sub(outSum, inSum)
	publicAmount, err := EncodePublicAmount(delta)
	if err != nil {
		return ProofGenerationError{Err: err}
	}
	if publicAmount != witness.PublicAmount {
		return ProofGenerationError{Constraint: "public amount does not balance inputs and outputs"}
	}
	return nil
}
