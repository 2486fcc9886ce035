// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veilcash/veild/params/hash"
)

func TestNewFieldElement(t *testing.T) {
	t.Run("canonical", func(t *testing.T) {
		b := make([]byte, hash.HashSize)
		b[hash.HashSize-1] = 1
		fe, err := NewFieldElement(b)
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), fe.Big().Uint64())
	})

	t.Run("rejects modulus", func(t *testing.T) {
		_, err := NewFieldElement(hash.Modulus().FillBytes(make([]byte, hash.HashSize)))
		assert.ErrorIs(t, err, ErrNonCanonical)
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := NewFieldElement(make([]byte, hash.HashSize-1))
		assert.Error(t, err)
	})
}

func TestFieldElementRoundtrip(t *testing.T) {
	fe, err := RandomFieldElement()
	assert.NoError(t, err)

	fe2, err := NewFieldElementFromBig(fe.Big())
	assert.NoError(t, err)
	assert.Equal(t, fe, fe2)

	fe3, err := NewFieldElementFromString(fe.String())
	assert.NoError(t, err)
	assert.Equal(t, fe, fe3)

	out, err := json.Marshal(&fe)
	assert.NoError(t, err)
	var fe4 FieldElement
	assert.NoError(t, json.Unmarshal(out, &fe4))
	assert.Equal(t, fe, fe4)
}

func TestNewFieldElementFromBig(t *testing.T) {
	maxCanonical := new(big.Int).Sub(hash.Modulus(), big.NewInt(1))
	fe, err := NewFieldElementFromBig(maxCanonical)
	assert.NoError(t, err)
	assert.Equal(t, 0, fe.Big().Cmp(maxCanonical))

	_, err = NewFieldElementFromBig(hash.Modulus())
	assert.ErrorIs(t, err, ErrNonCanonical)

	_, err = NewFieldElementFromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNonCanonical)
}

func TestHashFields(t *testing.T) {
	a := NewFieldElementFromUint64(1)
	b := NewFieldElementFromUint64(2)

	h1, err := HashFields(a, b)
	assert.NoError(t, err)
	h2, err := HashFields(b, a)
	assert.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	_, err = HashFields()
	assert.Error(t, err)
}
