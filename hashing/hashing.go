// Package hashing implements the keyed-hash and integer-encoding primitives
// the derivation kernel and view-tag check build on: Keccak-256 (the
// original, pre-standard padding — not NIST SHA3-256), hash-to-scalar, and
// LEB128-style varint encoding.
package hashing

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"viewscan/curve"
)

// Keccak256 hashes b with the original Keccak padding (domain separation
// byte 0x01), not the NIST SHA3-256 final standard (0x06). Monero, like
// Ethereum, was specified against the pre-standard Keccak submission.
func Keccak256(b ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, part := range b {
		h.Write(part)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashToScalar is H_s: keccak256(b) reduced modulo the curve order ℓ.
func HashToScalar(b ...[]byte) curve.Scalar {
	digest := Keccak256(b...)
	// ScalarFromBytes only fails on a length mismatch, which cannot happen
	// for a fixed 32-byte digest.
	s, _ := curve.ScalarFromBytes(digest[:])
	return s
}

// VarintEncode encodes i as a LEB128-style base-128 varint: 7 bits of
// payload per byte, continuation bit set on every byte but the last.
func VarintEncode(i uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, i)
	return buf[:n]
}
