// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veilcash/veild/types"
)

func TestSpendingKey(t *testing.T) {
	sk, err := NewSpendingKey()
	assert.NoError(t, err)

	owner1, err := sk.OwnerKey()
	assert.NoError(t, err)
	owner2, err := sk.OwnerKey()
	assert.NoError(t, err)
	assert.Equal(t, owner1, owner2)

	// The owner key is a hash of the spending key, not the key itself.
	assert.NotEqual(t, sk.FieldElement(), owner1)

	sk2, err := SpendingKeyFromBytes(sk.FieldElement().Bytes())
	assert.NoError(t, err)
	owner3, err := sk2.OwnerKey()
	assert.NoError(t, err)
	assert.Equal(t, owner1, owner3)
}

func TestSpendingKeyZeroize(t *testing.T) {
	sk, err := NewSpendingKey()
	assert.NoError(t, err)
	assert.False(t, sk.FieldElement().IsZero())

	sk.Zeroize()
	assert.True(t, sk.FieldElement().IsZero())
}

func TestSpendingKeyFromBytesValidation(t *testing.T) {
	_, err := SpendingKeyFromBytes(make([]byte, 16))
	assert.Error(t, err)

	_, err = SpendingKeyFromBytes(types.FieldElement{}.Bytes())
	assert.NoError(t, err)
}
