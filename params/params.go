// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package params

// TreeDepth is the fixed depth of the commitment accumulator. The pool
// supports up to 2^TreeDepth output commitments. Both the inclusion
// proofs handed to the proving system and the circuit itself are sized
// to this constant, so it cannot change without a new trusted setup.
const TreeDepth = 20

// ZeroLeafTag is the domain separation constant hashed to derive the
// empty-leaf value of the accumulator. zero[0] = H1(ZeroLeafTag) and
// zero[k] = H2(zero[k-1], zero[k-1]). The tag is fixed at protocol
// definition time and is not attacker or user influenced.
var ZeroLeafTag = []byte("veild:empty:leaf")
