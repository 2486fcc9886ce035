// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package ledger

import (
	"context"
	"fmt"

	"github.com/veilcash/veild/types"
)

// OperationTag identifies the kind of shielded operation a submission
// or event belongs to.
type OperationTag uint8

const (
	// TagShield moves transparent value into the pool.
	TagShield OperationTag = iota
	// TagTransfer moves value privately inside the pool.
	TagTransfer
	// TagUnshield moves value out of the pool.
	TagUnshield
)

func (t OperationTag) String() string {
	switch t {
	case TagShield:
		return "shield"
	case TagTransfer:
		return "transfer"
	case TagUnshield:
		return "unshield"
	}
	return fmt.Sprintf("unknown operation tag (%d)", uint8(t))
}

// Event is emitted by the ledger for each accepted operation. It
// carries the newly inserted commitments, the leaf index of the first
// one, and the output ciphertexts senders attached for recipients.
//
// Commitments are assigned contiguous leaf indices starting at
// StartIndex, in the order they appear here. The accumulator root is
// order sensitive, so consumers must apply events in strict leaf
// index order.
type Event struct {
	Tag         OperationTag          `json:"tag"`
	StartIndex  uint64                `json:"startIndex"`
	Commitments []types.FieldElement  `json:"commitments"`
	Ciphertexts [][]byte              `json:"ciphertexts"`
}

// EndIndex returns the leaf index one past the event's last commitment.
func (e *Event) EndIndex() uint64 {
	return e.StartIndex + uint64(len(e.Commitments))
}

// Submission is handed to the ledger verifier. The proof and public
// signals are opaque here; the verifier checks the proof against the
// signals and enforces nullifier uniqueness.
type Submission struct {
	Tag           OperationTag
	Proof         []byte
	PublicSignals []types.FieldElement

	// EncryptedOutputs are note ciphertexts for the operation's real
	// outputs, echoed back in the resulting event so recipients can
	// discover their notes by trial decryption.
	EncryptedOutputs [][]byte
}

// InvalidProofRejection is returned by Submit when the on-chain
// verifier rejects a proof. It indicates either a stale root race or a
// genuine local bug, so the attempt is fatal and must not be blindly
// retried.
type InvalidProofRejection struct {
	Tag    OperationTag
	Reason string
}

func (e InvalidProofRejection) Error() string {
	return fmt.Sprintf("ledger rejected %s proof: %s", e.Tag, e.Reason)
}

// Client submits proved operations to the ledger. Resubmission of an
// already-accepted proof is rejected via nullifier uniqueness, which
// makes Submit safely retry-idempotent from the caller's perspective.
type Client interface {
	// Submit sends the operation to the ledger verifier and returns
	// the emitted event on acceptance.
	Submit(ctx context.Context, sub *Submission) (*Event, error)
}

// ChainSource provides ordered read access to the ledger's event log
// and its authoritative accumulator state. Reconciliation is the only
// component that performs this long-running I/O.
type ChainSource interface {
	// BestRoot returns the current on-chain accumulator root and
	// leaf count.
	BestRoot(ctx context.Context) (types.FieldElement, uint64, error)

	// Events returns up to limit events whose first commitment has a
	// leaf index >= fromIndex, in leaf index order.
	Events(ctx context.Context, fromIndex uint64, limit int) ([]*Event, error)

	// LeafAt returns the commitment at the given leaf index.
	LeafAt(ctx context.Context, index uint64) (types.FieldElement, error)
}
