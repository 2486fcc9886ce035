// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/ipfs/go-datastore"
	"github.com/veilcash/veild/ledger"
	"github.com/veilcash/veild/repo"
	"github.com/veilcash/veild/types"
)

const (
	// reorgCheckDepth is how many of the most recent local leaves are
	// re-verified against the chain source before resuming forward
	// processing after a restart. A mismatch means the ledger rolled
	// back and the local state must be rebuilt from genesis.
	reorgCheckDepth = 6

	// eventBatchSize is the maximum number of events requested from
	// the chain source per pull.
	eventBatchSize = 500
)

// ScanHandler is invoked for each event output that decrypts with one
// of the wallet's scan keys.
type ScanHandler func(*ScanMatch)

// ResetHandler is invoked after the reconciler wipes its local state
// for a genesis resync, so stores derived from the discarded event log
// (the wallet's owned notes) can be discarded with it. The resync's
// scan matches repopulate them.
type ResetHandler func() error

// Reconciler rebuilds the local accumulator from the ledger's ordered
// event log and keeps it verified against the authoritative on-chain
// root.
//
// The wallet is a single-actor, sequential state machine; the mutex
// only guards against accidental concurrent driving of the reconciler,
// it is not a concurrency feature.
type Reconciler struct {
	acc     *Accumulator
	ds      repo.Datastore
	scanner *NoteScanner
	onMatch ScanHandler
	onReset ResetHandler

	// pending buffers events that arrived ahead of their leaf index.
	// It is owned by the reconciler and drained as gaps fill in.
	pending map[uint64]*ledger.Event

	chainRoot      types.FieldElement
	chainLeafCount uint64
	mtx            sync.Mutex
}

// NewReconciler loads the persisted leaf list, rebuilds the
// accumulator by replaying it in order, and cross-checks the result
// against the persisted checkpoint.
func NewReconciler(ds repo.Datastore, scanner *NoteScanner, onMatch ScanHandler) (*Reconciler, error) {
	leaves, err := dsFetchLeaves(ds)
	if err != nil {
		return nil, err
	}
	acc, err := NewAccumulatorFromLeaves(leaves)
	if err != nil {
		return nil, err
	}

	root, leafCount, err := dsFetchAccumulatorCheckpoint(ds)
	switch {
	case err == datastore.ErrNotFound:
		// Fresh wallet, nothing to verify.
	case err != nil:
		return nil, err
	case leafCount > acc.LeafCount():
		return nil, AssertError("accumulator checkpoint ahead of stored leaves")
	default:
		// The checkpoint was taken at or before the stored leaf
		// count. Replay up to it and confirm the roots agree.
		checkAcc, err := NewAccumulatorFromLeaves(leaves[:leafCount])
		if err != nil {
			return nil, err
		}
		if checkAcc.Root() != root {
			return nil, AssertError("stored leaves do not replay to checkpoint root")
		}
	}

	return &Reconciler{
		acc:     acc,
		ds:      ds,
		scanner: scanner,
		onMatch: onMatch,
		pending: make(map[uint64]*ledger.Event),
	}, nil
}

// Root returns the current local accumulator root.
func (r *Reconciler) Root() types.FieldElement {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.acc.Root()
}

// LeafCount returns the number of leaves applied so far.
func (r *Reconciler) LeafCount() uint64 {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.acc.LeafCount()
}

// SetResetHandler registers a handler to run whenever the local state
// is wiped for a genesis resync.
func (r *Reconciler) SetResetHandler(fn ResetHandler) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.onReset = fn
}

// PendingEvents returns the number of buffered out-of-order events.
func (r *Reconciler) PendingEvents() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.pending)
}

// Accumulator returns the underlying accumulator for proof
// generation. Callers must not drive the reconciler while holding
// proofs open across further insertions they care about.
func (r *Reconciler) Accumulator() *Accumulator {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.acc
}

// ApplyEvent applies a ledger event to the local accumulator.
//
// Events must land in strict leaf index order because the root is
// order sensitive. An event from the future is buffered and
// GapInSequenceError is returned; once the missing predecessors
// arrive the buffer is drained automatically. An event that was
// already applied is ignored, which makes replays idempotent.
func (r *Reconciler) ApplyEvent(event *ledger.Event) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.applyEvent(event)
}

func (r *Reconciler) applyEvent(event *ledger.Event) error {
	if len(event.Commitments) == 0 {
		return AssertError("ledger event with no commitments")
	}
	next := r.acc.LeafCount()
	if event.EndIndex() <= next {
		log.Debugf("Reconciler: ignoring already applied event at leaf %d", event.StartIndex)
		return nil
	}
	if event.StartIndex > next {
		r.pending[event.StartIndex] = event
		return GapInSequenceError{Want: next, Got: event.StartIndex}
	}
	if event.StartIndex < next {
		// Events are atomic on the ledger; one straddling our tip
		// means the local state is corrupt, not merely behind.
		return AssertError("ledger event straddles local tip")
	}

	if err := r.insertEvent(event); err != nil {
		return err
	}

	// Drain any buffered successors that are now contiguous.
	for {
		nextEvent, ok := r.pending[r.acc.LeafCount()]
		if !ok {
			break
		}
		delete(r.pending, nextEvent.StartIndex)
		if err := r.insertEvent(nextEvent); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) insertEvent(event *ledger.Event) error {
	start := r.acc.LeafCount()
	for _, commitment := range event.Commitments {
		if _, err := r.acc.Insert(commitment); err != nil {
			return err
		}
	}
	if err := dsPutLeaves(r.ds, start, event.Commitments); err != nil {
		return err
	}
	if r.scanner != nil && r.onMatch != nil {
		for _, match := range r.scanner.ScanEvents([]*ledger.Event{event}) {
			r.onMatch(match)
		}
	}
	log.Debugf("Reconciler: applied %s event, leaves %d-%d, root %s",
		event.Tag, event.StartIndex, event.EndIndex()-1, r.acc.Root())
	return nil
}

// CheckRoot compares the local root against the authoritative
// on-chain root.
//
// If the local tree is still behind the chain tip the comparison is
// deferred and nil is returned. If the leaf counts agree and the
// roots differ, or the local tree is somehow ahead of the chain,
// StaleRootError is returned. That error is fatal by design: there
// are no partial-repair heuristics, the only recovery is Reset
// followed by a resync from genesis.
//
// On a successful match the (root, leafCount) checkpoint is persisted.
func (r *Reconciler) CheckRoot(ctx context.Context) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.checkRoot()
}

func (r *Reconciler) checkRoot() error {
	localCount := r.acc.LeafCount()
	if localCount < r.chainLeafCount {
		return nil
	}
	localRoot := r.acc.Root()
	if localCount > r.chainLeafCount || localRoot != r.chainRoot {
		return StaleRootError{
			LocalRoot: localRoot,
			ChainRoot: r.chainRoot,
			LeafCount: localCount,
		}
	}
	return dsPutAccumulatorCheckpoint(r.ds, localRoot, localCount)
}

// Resume re-verifies the most recent local leaves against the chain
// source before forward processing restarts. If the ledger rolled
// back (the chain is shorter than the local tree, or a leaf we hold
// is no longer what the chain holds at that index) the local state is
// wiped so the next Sync rebuilds from genesis.
func (r *Reconciler) Resume(ctx context.Context, source ledger.ChainSource) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	count := r.acc.LeafCount()
	if count == 0 {
		return nil
	}

	// A chain shorter than the local tree is itself a rollback; the
	// per-leaf comparison below can never run because our recent
	// indices no longer exist on the chain.
	_, chainCount, err := source.BestRoot(ctx)
	if err != nil {
		return err
	}
	if chainCount < count {
		log.Warnf("Reconciler: chain rolled back from %d to %d leaves, resyncing from genesis", count, chainCount)
		return r.reset()
	}

	start := uint64(0)
	if count > reorgCheckDepth {
		start = count - reorgCheckDepth
	}
	for i := start; i < count; i++ {
		local, err := r.acc.LeafAt(i)
		if err != nil {
			return err
		}
		remote, err := source.LeafAt(ctx, i)
		if err != nil {
			return err
		}
		if local != remote {
			log.Warnf("Reconciler: ledger rollback detected at leaf %d, resyncing from genesis", i)
			return r.reset()
		}
	}
	return nil
}

// Sync pulls events from the chain source until the local tree has
// caught up with the chain tip, then verifies the root and persists a
// checkpoint. Transient source errors are retried with exponential
// backoff; a root divergence is returned as StaleRootError.
func (r *Reconciler) Sync(ctx context.Context, source ledger.ChainSource) error {
	if err := r.Resume(ctx, source); err != nil {
		return err
	}

	for {
		var (
			root  types.FieldElement
			count uint64
		)
		op := func() error {
			var err error
			root, count, err = source.BestRoot(ctx)
			return err
		}
		if err := backoff.Retry(op, backoff.WithContext(backoff.NewExponentialBackOff(), ctx)); err != nil {
			return err
		}

		r.mtx.Lock()
		r.chainRoot = root
		r.chainLeafCount = count
		caughtUp := r.acc.LeafCount() >= count
		from := r.acc.LeafCount()
		r.mtx.Unlock()

		if caughtUp {
			r.mtx.Lock()
			defer r.mtx.Unlock()
			if err := r.checkRoot(); err != nil {
				return err
			}
			log.Infof("Reconciler: synced %d leaves, root %s", r.acc.LeafCount(), r.acc.Root())
			return nil
		}

		var events []*ledger.Event
		op = func() error {
			var err error
			events, err = source.Events(ctx, from, eventBatchSize)
			return err
		}
		if err := backoff.Retry(op, backoff.WithContext(backoff.NewExponentialBackOff(), ctx)); err != nil {
			return err
		}
		if len(events) == 0 {
			return AssertError("chain source reported more leaves but returned no events")
		}

		r.mtx.Lock()
		for _, event := range events {
			if err := r.applyEvent(event); err != nil {
				if _, ok := err.(GapInSequenceError); ok {
					// Buffered, never dropped. The next pull starts
					// at our tip so the gap will fill in.
					continue
				}
				r.mtx.Unlock()
				return err
			}
		}
		r.mtx.Unlock()
	}
}

// Reset wipes the local accumulator state. The next Sync rebuilds
// everything from genesis. This is the only recovery path after a
// StaleRootError.
func (r *Reconciler) Reset() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.reset()
}

func (r *Reconciler) reset() error {
	if err := dsDeleteLeaves(r.ds); err != nil {
		return err
	}
	if err := dsDeleteAccumulatorCheckpoint(r.ds); err != nil && err != datastore.ErrNotFound {
		return err
	}
	r.acc = NewAccumulator()
	r.pending = make(map[uint64]*ledger.Event)
	if r.onReset != nil {
		return r.onReset()
	}
	return nil
}
