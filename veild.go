// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/veilcash/veild/blockchain"
	"github.com/veilcash/veild/crypto"
	"github.com/veilcash/veild/ledger"
	"github.com/veilcash/veild/repo"
	"github.com/veilcash/veild/repo/datastore"
	"github.com/veilcash/veild/types"
	"github.com/veilcash/veild/walletlib"
	"go.uber.org/zap"
)

// VERSION is set at build time.
var VERSION = "0.1.0"

var log = zap.NewNop().Sugar()

func main() {
	// Load the config file. There are three steps to this:
	// 1. Start with a config populated with default values.
	// 2. Override the default values with any provided config file options.
	// 3. Override the first two with any provided command line options.
	cfg, err := repo.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.ShowVersion {
		fmt.Printf("veild v%s\n", VERSION)
		os.Exit(0)
	}
	if err := setupLogging(cfg.LogDir, cfg.LogLevel, cfg.Testnet); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *repo.Config) error {
	ds, err := datastore.NewVeildDatastore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer ds.Close()

	scanKey, storeKey, err := walletlib.LoadOrCreateKeys(ds)
	if err != nil {
		return err
	}
	ownerKey, err := loadOwnerKey()
	if err != nil {
		return err
	}

	wallet, err := walletlib.NewWallet(ds, ownerKey, scanKey, storeKey, types.VeilCoinID)
	if err != nil {
		return err
	}
	scanner := blockchain.NewNoteScanner(scanKey)
	reconciler, err := blockchain.NewReconciler(ds, scanner, wallet.ConnectScanMatch)
	if err != nil {
		return err
	}
	reconciler.SetResetHandler(wallet.Reset)

	log.Infof("Wallet address: %s", wallet.Address())
	if cfg.Journal != "" {
		return replayJournal(cfg.Journal, reconciler, wallet)
	}

	log.Infof("Accumulator root: %s", reconciler.Root())
	log.Infof("Leaf count: %d", reconciler.LeafCount())
	log.Infof("Balance: %d", wallet.Balance())
	return nil
}

// loadOwnerKey derives the wallet's owner key from the spending key in
// the VEILD_SPENDING_KEY environment variable. The spending key itself
// is scrubbed before returning and is never written to disk. Without
// the variable a fresh key is generated, which yields an empty wallet.
func loadOwnerKey() (types.FieldElement, error) {
	var (
		sk  *crypto.SpendingKey
		err error
	)
	if hexKey := os.Getenv("VEILD_SPENDING_KEY"); hexKey != "" {
		keyBytes, decodeErr := hex.DecodeString(hexKey)
		if decodeErr != nil {
			return types.FieldElement{}, decodeErr
		}
		sk, err = crypto.SpendingKeyFromBytes(keyBytes)
		if err != nil {
			return types.FieldElement{}, err
		}
	} else {
		log.Warn("VEILD_SPENDING_KEY not set, generating an ephemeral spending key")
		sk, err = crypto.NewSpendingKey()
		if err != nil {
			return types.FieldElement{}, err
		}
	}
	defer sk.Zeroize()
	return sk.OwnerKey()
}

// replayJournal applies the JSON event journal to the reconciler and
// prints the resulting state. Events may appear out of order in the
// journal; the reconciler buffers ahead-of-sequence events and drains
// them once the gap fills.
func replayJournal(journalPath string, reconciler *blockchain.Reconciler, wallet *walletlib.Wallet) error {
	raw, err := os.ReadFile(journalPath)
	if err != nil {
		return err
	}
	var events []*ledger.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return err
	}

	for _, event := range events {
		if err := reconciler.ApplyEvent(event); err != nil {
			var gap blockchain.GapInSequenceError
			if errors.As(err, &gap) {
				log.Debugf("Buffered out of order event: %s", err)
				continue
			}
			return err
		}
	}
	if pending := reconciler.PendingEvents(); pending > 0 {
		log.Warnf("Journal replay finished with %d events still buffered", pending)
	}

	fmt.Printf("root: %s\n", reconciler.Root())
	fmt.Printf("leaves: %d\n", reconciler.LeafCount())
	fmt.Printf("balance: %d\n", wallet.Balance())
	return nil
}
