// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/veilcash/veild/params/hash"
)

var ErrFieldElementStrSize = fmt.Errorf("max field element string length is %v bytes", hash.HashSize*2)

// ErrNonCanonical is returned when bytes or an integer do not encode
// a canonical field element (a value less than the field modulus).
var ErrNonCanonical = fmt.Errorf("value is not a canonical field element")

// FieldElement is a value in the prime field used throughout the hash
// and commitment arithmetic. It is stored as the canonical 32 byte
// big-endian encoding of an integer less than the field modulus.
type FieldElement [hash.HashSize]byte

// Compare returns 1 if f > target, -1 if f < target and
// 0 if f == target.
func (f FieldElement) Compare(target FieldElement) int {
	for i := 0; i < len(f); i++ {
		a := f[i]
		b := target[i]
		if a > b {
			return 1
		}
		if a < b {
			return -1
		}
	}
	return 0
}

func (f FieldElement) String() string {
	return hex.EncodeToString(f[:])
}

func (f FieldElement) Bytes() []byte {
	return f[:]
}

// Big returns the element as a big integer. The returned value is a
// copy and may be mutated by the caller.
func (f FieldElement) Big() *big.Int {
	return new(big.Int).SetBytes(f[:])
}

// IsZero returns true if the element is the additive identity.
func (f FieldElement) IsZero() bool {
	return f == FieldElement{}
}

func (f FieldElement) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(f[:]) + `"`), nil
}

func (f *FieldElement) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	i, err := NewFieldElementFromString(string(data))
	if err != nil {
		return err
	}
	*f = i
	return nil
}

// NewFieldElement returns the field element encoded by the provided
// big-endian bytes. The bytes must be at most 32 long and must encode
// an integer below the field modulus.
func NewFieldElement(b []byte) (FieldElement, error) {
	if len(b) > hash.HashSize {
		return FieldElement{}, ErrNonCanonical
	}
	var f FieldElement
	copy(f[hash.HashSize-len(b):], b)
	if f.Big().Cmp(hash.Modulus()) >= 0 {
		return FieldElement{}, ErrNonCanonical
	}
	return f, nil
}

// NewFieldElementFromBig returns the field element for x. x must be
// non-negative and below the field modulus.
func NewFieldElementFromBig(x *big.Int) (FieldElement, error) {
	if x.Sign() < 0 || x.Cmp(hash.Modulus()) >= 0 {
		return FieldElement{}, ErrNonCanonical
	}
	return NewFieldElement(x.Bytes())
}

// NewFieldElementFromUint64 returns the field element for x. Every
// uint64 is below the modulus so this cannot fail.
func NewFieldElementFromUint64(x uint64) FieldElement {
	f, _ := NewFieldElementFromBig(new(big.Int).SetUint64(x))
	return f
}

func NewFieldElementFromString(s string) (FieldElement, error) {
	if len(s) > hash.HashSize*2 {
		return FieldElement{}, ErrFieldElementStrSize
	}
	ret, err := hex.DecodeString(s)
	if err != nil {
		return FieldElement{}, err
	}
	return NewFieldElement(ret)
}

// RandomFieldElement returns a uniformly random field element drawn
// from the system's cryptographic randomness source.
func RandomFieldElement() (FieldElement, error) {
	x, err := rand.Int(rand.Reader, hash.Modulus())
	if err != nil {
		return FieldElement{}, err
	}
	return NewFieldElementFromBig(x)
}

// HashFields hashes the given field elements (arity one through four)
// and returns the digest as a field element.
func HashFields(elems ...FieldElement) (FieldElement, error) {
	inputs := make([]*big.Int, len(elems))
	for i, e := range elems {
		inputs[i] = e.Big()
	}
	h, err := hash.HashFunc(inputs...)
	if err != nil {
		return FieldElement{}, err
	}
	return NewFieldElementFromBig(h)
}
