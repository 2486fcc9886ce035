// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package walletlib

import "go.uber.org/zap"

var log = zap.NewNop().Sugar()

// UpdateLogger updates the logger to the package level logger.
func UpdateLogger() {
	log = zap.S()
}
