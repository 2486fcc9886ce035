// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package walletlib

import (
	"errors"
	"math/big"

	"github.com/veilcash/veild/blockchain"
	"github.com/veilcash/veild/crypto"
	"github.com/veilcash/veild/ledger"
	"github.com/veilcash/veild/types"
	"github.com/veilcash/veild/zk"
)

const (
	maxInputs  = zk.NumInputs
	maxOutputs = zk.NumOutputs
)

// ErrZeroAmount is returned when an operation is requested for a zero
// amount. Zero-amount notes are reserved for circuit padding.
var ErrZeroAmount = errors.New("amount must be greater than zero")

// Operation is a fully assembled shielded operation ready for proving.
// InputCommitments and Nullifiers cover only the real input slots so
// the wallet can mark them spent after the ledger accepts the proof.
type Operation struct {
	Tag              ledger.OperationTag
	Witness          *zk.Witness
	Outputs          []*types.SpendNote
	Ciphertexts      [][]byte
	InputCommitments []types.FieldElement
	Nullifiers       []types.Nullifier
}

// Shield assembles a deposit of public funds into a fresh note paid to
// this wallet. Both input slots are dummies so no spending key is
// needed; the resulting public amount is +amount.
func (w *Wallet) Shield(acc *blockchain.Accumulator, amount types.Amount) (*Operation, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	out, err := w.newOutputNote(w.Address(), amount)
	if err != nil {
		return nil, err
	}
	witness, err := w.buildWitness(acc, nil, nil, []*types.SpendNote{out})
	if err != nil {
		return nil, err
	}
	ciphertext, err := crypto.EncryptNote(w.scanKey.GetPublic(), out.Serialize())
	if err != nil {
		return nil, err
	}
	return &Operation{
		Tag:         ledger.TagShield,
		Witness:     witness,
		Outputs:     []*types.SpendNote{out},
		Ciphertexts: [][]byte{ciphertext},
	}, nil
}

// Transfer assembles a fully shielded payment of amount to the given
// address, with any change returned to this wallet. The public amount
// is zero.
func (w *Wallet) Transfer(acc *blockchain.Accumulator, sk *crypto.SpendingKey, to Address, amount types.Amount) (*Operation, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	w.mtx.RLock()
	inputs, err := w.selectNotes(amount)
	w.mtx.RUnlock()
	if err != nil {
		return nil, err
	}

	payment, err := w.newOutputNote(to, amount)
	if err != nil {
		return nil, err
	}
	outputs := []*types.SpendNote{payment}
	ciphertext, err := crypto.EncryptNote(to.ScanKey, payment.Serialize())
	if err != nil {
		return nil, err
	}
	ciphertexts := [][]byte{ciphertext}

	if change := inputTotal(inputs) - amount; change > 0 {
		changeNote, err := w.newOutputNote(w.Address(), change)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, changeNote)
		changeCiphertext, err := crypto.EncryptNote(w.scanKey.GetPublic(), changeNote.Serialize())
		if err != nil {
			return nil, err
		}
		ciphertexts = append(ciphertexts, changeCiphertext)
	}

	witness, err := w.buildWitness(acc, sk, inputs, outputs)
	if err != nil {
		return nil, err
	}
	op := &Operation{
		Tag:         ledger.TagTransfer,
		Witness:     witness,
		Outputs:     outputs,
		Ciphertexts: ciphertexts,
	}
	for i, in := range inputs {
		op.InputCommitments = append(op.InputCommitments, in.Commitment)
		op.Nullifiers = append(op.Nullifiers, witness.Nullifiers[i])
	}
	return op, nil
}

// Unshield assembles a withdrawal of amount back to public funds, with
// any change returned to this wallet as a fresh note. The public amount
// is −amount in the half-field encoding.
func (w *Wallet) Unshield(acc *blockchain.Accumulator, sk *crypto.SpendingKey, amount types.Amount) (*Operation, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	w.mtx.RLock()
	inputs, err := w.selectNotes(amount)
	w.mtx.RUnlock()
	if err != nil {
		return nil, err
	}

	var (
		outputs     []*types.SpendNote
		ciphertexts [][]byte
	)
	if change := inputTotal(inputs) - amount; change > 0 {
		changeNote, err := w.newOutputNote(w.Address(), change)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, changeNote)
		changeCiphertext, err := crypto.EncryptNote(w.scanKey.GetPublic(), changeNote.Serialize())
		if err != nil {
			return nil, err
		}
		ciphertexts = append(ciphertexts, changeCiphertext)
	}

	witness, err := w.buildWitness(acc, sk, inputs, outputs)
	if err != nil {
		return nil, err
	}
	op := &Operation{
		Tag:         ledger.TagUnshield,
		Witness:     witness,
		Outputs:     outputs,
		Ciphertexts: ciphertexts,
	}
	for i, in := range inputs {
		op.InputCommitments = append(op.InputCommitments, in.Commitment)
		op.Nullifiers = append(op.Nullifiers, witness.Nullifiers[i])
	}
	return op, nil
}

func (w *Wallet) newOutputNote(to Address, amount types.Amount) (*types.SpendNote, error) {
	randomness, err := types.RandomFieldElement()
	if err != nil {
		return nil, err
	}
	return &types.SpendNote{
		Amount:     amount,
		OwnerKey:   to.OwnerKey,
		Randomness: randomness,
		TokenID:    w.tokenID,
	}, nil
}

// buildWitness pads the real inputs and outputs out to the circuit's
// fixed slots with dummy notes and assembles the full witness against
// the accumulator's current root. Real inputs must be spendable with
// sk; dummy slots use the zero key hash so they need no key and no
// inclusion path.
func (w *Wallet) buildWitness(acc *blockchain.Accumulator, sk *crypto.SpendingKey, inputs []*OwnedNote, outputs []*types.SpendNote) (*zk.Witness, error) {
	if len(inputs) > maxInputs || len(outputs) > maxOutputs {
		return nil, errors.New("operation exceeds circuit slots")
	}

	witness := &zk.Witness{
		MerkleRoot: acc.Root(),
		TokenMint:  w.tokenID,
	}

	var ownerKeyHash types.FieldElement
	if sk != nil {
		var err error
		ownerKeyHash, err = sk.OwnerKey()
		if err != nil {
			return nil, err
		}
		witness.SpendingKey = sk.FieldElement()
	}
	zeroKeyHash, err := types.HashFields(types.FieldElement{})
	if err != nil {
		return nil, err
	}

	inTotal := new(big.Int)
	for i := 0; i < maxInputs; i++ {
		if i < len(inputs) {
			in := inputs[i]
			if in.Note.OwnerKey.Compare(ownerKeyHash) != 0 {
				return nil, errors.New("note is not spendable with the provided key")
			}
			proof, err := acc.GenerateProof(in.LeafIndex)
			if err != nil {
				return nil, err
			}
			nullifier, err := types.CalculateNullifier(in.Commitment, ownerKeyHash)
			if err != nil {
				return nil, err
			}
			witness.InAmounts[i] = in.Note.Amount
			witness.InOwnerPubkeys[i] = in.Note.OwnerKey
			witness.InRandomness[i] = in.Note.Randomness
			witness.InPathIndices[i] = proof.PathIndices
			witness.InPathElements[i] = proof.PathElements
			witness.Nullifiers[i] = nullifier
			inTotal.Add(inTotal, new(big.Int).SetUint64(uint64(in.Note.Amount)))
			continue
		}
		dummy := types.DummyNote(w.tokenID)
		commitment, err := dummy.Commitment()
		if err != nil {
			return nil, err
		}
		nullifier, err := types.CalculateNullifier(commitment, zeroKeyHash)
		if err != nil {
			return nil, err
		}
		witness.Nullifiers[i] = nullifier
	}

	outTotal := new(big.Int)
	for i := 0; i < maxOutputs; i++ {
		out := types.DummyNote(w.tokenID)
		if i < len(outputs) {
			out = outputs[i]
		}
		commitment, err := out.Commitment()
		if err != nil {
			return nil, err
		}
		witness.OutAmounts[i] = out.Amount
		witness.OutRecipients[i] = out.OwnerKey
		witness.OutRandomness[i] = out.Randomness
		witness.OutputCommitments[i] = commitment
		outTotal.Add(outTotal, new(big.Int).SetUint64(uint64(out.Amount)))
	}

	witness.PublicAmount, err = zk.EncodePublicAmount(outTotal.Sub(outTotal, inTotal))
	if err != nil {
		return nil, err
	}
	return witness, nil
}

func inputTotal(inputs []*OwnedNote) types.Amount {
	total := types.Amount(0)
	for _, in := range inputs {
		total += in.Note.Amount
	}
	return total
}
