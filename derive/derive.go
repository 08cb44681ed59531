// Package derive implements the derivation kernel: the shared-secret
// Diffie-Hellman step and the per-output H_s scalar that inverts the
// stealth-address construction.
package derive

import (
	"viewscan/curve"
	"viewscan/hashing"
)

// Derivation is the 32-byte shared secret 8·a·R, where a is the private
// view key and R the transaction public key.
type Derivation [32]byte

// KeyDerivation computes the canonical shared secret. The factor 8 clears
// the cofactor and MUST be applied — omitting it produces derivations
// that fail to reproduce mainnet-style test vectors.
func KeyDerivation(txPub curve.Point, viewPriv curve.Scalar) Derivation {
	shared := curve.ScalarMult(viewPriv, txPub)
	cleared := curve.MultByCofactor(shared)

	var d Derivation
	copy(d[:], curve.PointEncode(cleared))
	return d
}

// DerivationToScalar computes H_s(d ‖ varint(i)), the per-output scalar
// used both to recover the stealth spend key and to key the amount mask.
// The view tag is hashed from the derivation directly, not from this
// scalar.
func DerivationToScalar(d Derivation, i uint64) curve.Scalar {
	return hashing.HashToScalar(d[:], hashing.VarintEncode(i))
}
