// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockchain

import "go.uber.org/zap"

var log = zap.NewNop().Sugar()

// UpdateLogger switches the package logger to the current zap global.
func UpdateLogger() {
	log = zap.S()
}
