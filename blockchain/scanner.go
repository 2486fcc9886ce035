// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"runtime"
	"sync"

	"github.com/veilcash/veild/crypto"
	"github.com/veilcash/veild/ledger"
	"github.com/veilcash/veild/types"
)

// ScanMatch represents an output ciphertext that has decrypted with
// one of our scan keys and whose plaintext re-derives the commitment
// the ledger published for that slot.
type ScanMatch struct {
	Key        *crypto.Curve25519PrivateKey
	Note       *types.SpendNote
	Commitment types.FieldElement
	LeafIndex  uint64
}

type scanWork struct {
	event *ledger.Event
	index int
}

// NoteScanner is used to scan ledger event outputs and attempt to
// decrypt each one. This is how a wallet discovers notes sent to it:
// senders encrypt the note plaintext to the recipient's scan key and
// the ledger echoes the ciphertext back in the event.
type NoteScanner struct {
	keys []*crypto.Curve25519PrivateKey
	mtx  sync.Mutex
}

// NewNoteScanner returns a new NoteScanner
func NewNoteScanner(keys ...*crypto.Curve25519PrivateKey) *NoteScanner {
	return &NoteScanner{
		keys: keys,
		mtx:  sync.Mutex{},
	}
}

// AddKeys adds new scan keys to the NoteScanner
func (s *NoteScanner) AddKeys(keys ...*crypto.Curve25519PrivateKey) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.keys = append(s.keys, keys...)
}

// ScanEvents attempts to decrypt every output ciphertext in the
// provided events using the scan keys and returns a map of matches
// keyed by commitment.
func (s *NoteScanner) ScanEvents(events []*ledger.Event) map[types.FieldElement]*ScanMatch {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	matches := make(map[types.FieldElement]*ScanMatch)
	if len(s.keys) == 0 {
		return matches
	}

	var (
		workChan   = make(chan *scanWork)
		resultChan = make(chan *ScanMatch)
		done       = make(chan struct{})
		maxGo      = runtime.NumCPU()
		wg         sync.WaitGroup
	)
	for i := 0; i < maxGo; i++ {
		go s.scanHandler(workChan, resultChan, &wg)
	}
	go func() {
		for match := range resultChan {
			matches[match.Commitment] = match
		}
		close(done)
	}()

	for _, event := range events {
		for i := range event.Ciphertexts {
			wg.Add(1)
			workChan <- &scanWork{event: event, index: i}
		}
	}
	wg.Wait()
	close(workChan)
	close(resultChan)
	<-done
	return matches
}

func (s *NoteScanner) scanHandler(workChan chan *scanWork, resultChan chan *ScanMatch, wg *sync.WaitGroup) {
	for work := range workChan {
		if match := s.tryDecrypt(work); match != nil {
			resultChan <- match
		}
		wg.Done()
	}
}

func (s *NoteScanner) tryDecrypt(work *scanWork) *ScanMatch {
	if work.index >= len(work.event.Commitments) {
		return nil
	}
	for _, key := range s.keys {
		plaintext, err := crypto.DecryptNote(key, work.event.Ciphertexts[work.index])
		if err != nil {
			continue
		}
		note := &types.SpendNote{}
		if err := note.Deserialize(plaintext); err != nil {
			continue
		}
		commitment, err := note.Commitment()
		if err != nil {
			continue
		}
		// A decrypt that doesn't re-derive the published commitment
		// is garbage, not ours.
		if commitment != work.event.Commitments[work.index] {
			continue
		}
		return &ScanMatch{
			Key:        key,
			Note:       note,
			Commitment: commitment,
			LeafIndex:  work.event.StartIndex + uint64(work.index),
		}
	}
	return nil
}
