// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package walletlib

import "errors"

// ErrInsufficientFunds is returned when the wallet cannot cover the
// requested amount with at most two unspent notes.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrNoteNotFound is returned when a commitment does not reference an
// unspent note in the wallet.
var ErrNoteNotFound = errors.New("note not found")
