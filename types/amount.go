// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import "encoding/binary"

const NanosPerVeil = 1e9

// Amount represents the base veil monetary unit (nanoveil or nanos).
// Amounts are non-negative and always fit in a single field element.
type Amount uint64

// ToBytes returns the byte representation of the amount
func (a Amount) ToBytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(a))
	return b
}

// ToFieldElement returns the amount as a field element.
func (a Amount) ToFieldElement() FieldElement {
	return NewFieldElementFromUint64(uint64(a))
}

// ToVeil returns the amount, formatted as VEIL
func (a Amount) ToVeil() float64 {
	return float64(a) / NanosPerVeil
}
