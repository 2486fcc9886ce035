// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package walletlib

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	"github.com/veilcash/veild/blockchain"
	"github.com/veilcash/veild/crypto"
	"github.com/veilcash/veild/repo"
	"github.com/veilcash/veild/types"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	storeKeySize   = 32
	storeNonceSize = 24

	// noteRecordLen is leafIndex (8) + spent flag (1) + serialized note.
	noteRecordLen = 8 + 1 + types.SerializedNoteLen
)

// OwnedNote is a note the wallet controls along with its position in
// the commitment accumulator.
type OwnedNote struct {
	Note       *types.SpendNote
	Commitment types.FieldElement
	LeafIndex  uint64
	Spent      bool
}

func (n *OwnedNote) clone() *OwnedNote {
	note := *n.Note
	return &OwnedNote{
		Note:       &note,
		Commitment: n.Commitment,
		LeafIndex:  n.LeafIndex,
		Spent:      n.Spent,
	}
}

// Wallet tracks the notes owned by a single owner key. Note plaintexts
// are encrypted at rest with a symmetric store key. The spending key is
// never held here; it is passed in per operation and scrubbed by the
// witness builder.
type Wallet struct {
	ds         repo.Datastore
	nullifiers *blockchain.NullifierSet
	scanKey    *crypto.Curve25519PrivateKey
	storeKey   [storeKeySize]byte
	ownerKey   types.FieldElement
	tokenID    types.FieldElement

	notes map[types.FieldElement]*OwnedNote
	mtx   sync.RWMutex
}

// NewWallet loads the wallet state from the datastore. The owner key
// must be the Poseidon hash of the spending key that will be used to
// spend; notes paid to any other owner key are skipped during scanning.
func NewWallet(ds repo.Datastore, ownerKey types.FieldElement, scanKey *crypto.Curve25519PrivateKey, storeKey [storeKeySize]byte, tokenID types.FieldElement) (*Wallet, error) {
	w := &Wallet{
		ds:         ds,
		nullifiers: blockchain.NewNullifierSet(ds, 100000),
		scanKey:    scanKey,
		storeKey:   storeKey,
		ownerKey:   ownerKey,
		tokenID:    tokenID,
		notes:      make(map[types.FieldElement]*OwnedNote),
	}
	if err := w.loadNotes(); err != nil {
		return nil, err
	}
	return w, nil
}

// Address returns the payment address for this wallet.
func (w *Wallet) Address() Address {
	return Address{
		OwnerKey: w.ownerKey,
		ScanKey:  w.scanKey.GetPublic(),
	}
}

// ScanKey returns the wallet's scan private key for registration with
// a note scanner.
func (w *Wallet) ScanKey() *crypto.Curve25519PrivateKey {
	return w.scanKey
}

// Balance returns the sum of the wallet's unspent notes.
func (w *Wallet) Balance() types.Amount {
	w.mtx.RLock()
	defer w.mtx.RUnlock()

	total := types.Amount(0)
	for _, n := range w.notes {
		if !n.Spent {
			total += n.Note.Amount
		}
	}
	return total
}

// Notes returns a copy of all notes the wallet knows about, spent
// included.
func (w *Wallet) Notes() []*OwnedNote {
	w.mtx.RLock()
	defer w.mtx.RUnlock()

	notes := make([]*OwnedNote, 0, len(w.notes))
	for _, n := range w.notes {
		notes = append(notes, n.clone())
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].LeafIndex < notes[j].LeafIndex
	})
	return notes
}

// NoteByCommitment returns the unspent note with the given commitment
// or ErrNoteNotFound.
func (w *Wallet) NoteByCommitment(commitment types.FieldElement) (*OwnedNote, error) {
	w.mtx.RLock()
	defer w.mtx.RUnlock()

	n, ok := w.notes[commitment]
	if !ok || n.Spent {
		return nil, ErrNoteNotFound
	}
	return n.clone(), nil
}

// ConnectScanMatch records a note discovered by the note scanner. It is
// intended to be wired in as the reconciler's scan handler. Matches for
// other owner keys and commitments the wallet already tracks are
// ignored.
func (w *Wallet) ConnectScanMatch(match *blockchain.ScanMatch) {
	if match.Note.OwnerKey.Compare(w.ownerKey) != 0 {
		return
	}
	if err := w.AddNote(match.Note, match.LeafIndex); err != nil {
		log.Errorf("Error connecting scan match at leaf %d: %s", match.LeafIndex, err)
	}
}

// AddNote adds a note to the wallet at the given leaf index and
// persists it. Adding a commitment the wallet already tracks is a
// no-op.
func (w *Wallet) AddNote(note *types.SpendNote, leafIndex uint64) error {
	commitment, err := note.Commitment()
	if err != nil {
		return err
	}

	w.mtx.Lock()
	defer w.mtx.Unlock()

	if _, ok := w.notes[commitment]; ok {
		return nil
	}
	owned := &OwnedNote{
		Note:       note,
		Commitment: commitment,
		LeafIndex:  leafIndex,
	}
	if err := w.putNote(owned); err != nil {
		return err
	}
	w.notes[commitment] = owned
	log.Debugf("Wallet received note of %d at leaf %d", note.Amount, leafIndex)
	return nil
}

// MarkSpent marks the note with the given commitment as spent and adds
// its nullifier to the spent set.
func (w *Wallet) MarkSpent(commitment types.FieldElement, nullifier types.Nullifier) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	return w.markSpent(commitment, nullifier)
}

func (w *Wallet) markSpent(commitment types.FieldElement, nullifier types.Nullifier) error {
	n, ok := w.notes[commitment]
	if !ok {
		return ErrNoteNotFound
	}
	if n.Spent {
		return nil
	}
	n.Spent = true
	if err := w.putNote(n); err != nil {
		n.Spent = false
		return err
	}
	return w.nullifiers.AddNullifiers([]types.Nullifier{nullifier})
}

// Reset discards every owned note, in memory and at rest. It is meant
// to be wired in as the reconciler's reset handler: after a reorg
// forces a genesis resync the old event log is gone, so any note
// derived from it is unprovable and must be dropped. The resync's scan
// matches repopulate the set from the rebuilt log.
func (w *Wallet) Reset() error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	q := query.Query{Prefix: repo.WalletNoteKeyPrefix, KeysOnly: true}
	results, err := w.ds.Query(context.Background(), q)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(w.notes))
	for result, ok := results.NextSync(); ok; result, ok = results.NextSync() {
		keys = append(keys, result.Key)
	}
	results.Close()

	for _, key := range keys {
		if err := w.ds.Delete(context.Background(), datastore.NewKey(key)); err != nil {
			return err
		}
	}
	w.notes = make(map[types.FieldElement]*OwnedNote)
	log.Warnf("Wallet note set reset, waiting on rescan to repopulate")
	return nil
}

// NullifierSpent reports whether the wallet has recorded the nullifier
// as spent.
func (w *Wallet) NullifierSpent(nullifier types.Nullifier) (bool, error) {
	return w.nullifiers.NullifierExists(nullifier)
}

// selectNotes picks unspent notes covering amount, largest first, using
// at most the number of input slots in the circuit. Funds spread across
// more notes than that cannot be spent in one operation and return
// ErrInsufficientFunds.
func (w *Wallet) selectNotes(amount types.Amount) ([]*OwnedNote, error) {
	unspent := make([]*OwnedNote, 0, len(w.notes))
	for _, n := range w.notes {
		if !n.Spent {
			unspent = append(unspent, n)
		}
	}
	sort.Slice(unspent, func(i, j int) bool {
		if unspent[i].Note.Amount != unspent[j].Note.Amount {
			return unspent[i].Note.Amount > unspent[j].Note.Amount
		}
		return unspent[i].LeafIndex < unspent[j].LeafIndex
	})

	total := types.Amount(0)
	selected := make([]*OwnedNote, 0, maxInputs)
	for _, n := range unspent {
		selected = append(selected, n)
		total += n.Note.Amount
		if total >= amount {
			return selected, nil
		}
		if len(selected) == maxInputs {
			break
		}
	}
	return nil, ErrInsufficientFunds
}

func (w *Wallet) loadNotes() error {
	q := query.Query{Prefix: repo.WalletNoteKeyPrefix}
	results, err := w.ds.Query(context.Background(), q)
	if err != nil {
		return err
	}
	defer results.Close()

	for result, ok := results.NextSync(); ok; result, ok = results.NextSync() {
		owned, err := w.decodeNoteRecord(result.Value)
		if err != nil {
			return fmt.Errorf("malformed wallet note record %s: %w", result.Key, err)
		}
		w.notes[owned.Commitment] = owned
	}
	return nil
}

func (w *Wallet) putNote(n *OwnedNote) error {
	record, err := w.encodeNoteRecord(n)
	if err != nil {
		return err
	}
	return w.ds.Put(context.Background(), datastore.NewKey(repo.WalletNoteKeyPrefix+n.Commitment.String()), record)
}

func (w *Wallet) encodeNoteRecord(n *OwnedNote) ([]byte, error) {
	plaintext := make([]byte, noteRecordLen)
	binary.BigEndian.PutUint64(plaintext[:8], n.LeafIndex)
	if n.Spent {
		plaintext[8] = 1
	}
	copy(plaintext[9:], n.Note.Serialize())

	var nonce [storeNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &w.storeKey), nil
}

func (w *Wallet) decodeNoteRecord(record []byte) (*OwnedNote, error) {
	if len(record) < storeNonceSize {
		return nil, errors.New("record too short")
	}
	var nonce [storeNonceSize]byte
	copy(nonce[:], record[:storeNonceSize])
	plaintext, ok := secretbox.Open(nil, record[storeNonceSize:], &nonce, &w.storeKey)
	if !ok {
		return nil, errors.New("store key decryption failed")
	}
	if len(plaintext) != noteRecordLen {
		return nil, errors.New("invalid record length")
	}
	note := new(types.SpendNote)
	if err := note.Deserialize(plaintext[9:]); err != nil {
		return nil, err
	}
	commitment, err := note.Commitment()
	if err != nil {
		return nil, err
	}
	return &OwnedNote{
		Note:       note,
		Commitment: commitment,
		LeafIndex:  binary.BigEndian.Uint64(plaintext[:8]),
		Spent:      plaintext[8] == 1,
	}, nil
}
