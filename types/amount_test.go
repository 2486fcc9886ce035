// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	a := Amount(1500000000)
	assert.Equal(t, 1.5, a.ToVeil())
	assert.Equal(t, uint64(1500000000), a.ToFieldElement().Big().Uint64())
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00, 0x59, 0x68, 0x2f, 0x00}, a.ToBytes())
}
