// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package walletlib

import (
	"context"
	"errors"

	"github.com/veilcash/veild/ledger"
	"github.com/veilcash/veild/zk"
)

// Prove generates the proof for an assembled operation. A proof
// generation failure is retried exactly once against the same witness
// before giving up; the witness is scrubbed in all cases before
// returning.
func (w *Wallet) Prove(prover zk.Prover, op *Operation) (*zk.Proof, error) {
	defer op.Witness.Zeroize()

	proof, err := prover.Prove(op.Witness)
	if err != nil {
		var pge zk.ProofGenerationError
		if !errors.As(err, &pge) {
			return nil, err
		}
		log.Warnf("Proof generation for %s failed, retrying: %s", op.Tag, err)
		proof, err = prover.Prove(op.Witness)
		if err != nil {
			return nil, err
		}
	}
	return proof, nil
}

// Submit sends a proven operation to the ledger. On acceptance the
// spent inputs are marked and their nullifiers recorded; a rejection is
// returned as-is and is never retried, since the witness is already
// scrubbed and the failure needs operator attention.
func (w *Wallet) Submit(ctx context.Context, client ledger.Client, op *Operation, proof *zk.Proof) (*ledger.Event, error) {
	event, err := client.Submit(ctx, &ledger.Submission{
		Tag:              op.Tag,
		Proof:            proof.ProofBytes,
		PublicSignals:    proof.PublicSignals,
		EncryptedOutputs: op.Ciphertexts,
	})
	if err != nil {
		return nil, err
	}

	w.mtx.Lock()
	defer w.mtx.Unlock()
	for i, commitment := range op.InputCommitments {
		if err := w.markSpent(commitment, op.Nullifiers[i]); err != nil {
			log.Errorf("Error marking note %s spent: %s", commitment, err)
		}
	}
	return event, nil
}
