// Package curve wraps filippo.io/edwards25519 with the narrow scalar/point
// surface the derivation kernel and output recognizer need: decode/encode,
// scalar-base multiplication, point addition and negation.
package curve

import (
	"errors"

	"filippo.io/edwards25519"
)

// ErrInvalidPoint is returned by PointDecode when the 32 input bytes do not
// decode to a point on the curve.
var ErrInvalidPoint = errors.New("curve: invalid point encoding")

// ErrInvalidLength is returned when an input byte slice is not exactly 32
// bytes long.
var ErrInvalidLength = errors.New("curve: input must be 32 bytes")

// Scalar is a value in [0, ℓ), ℓ the edwards25519 group order.
type Scalar struct {
	s *edwards25519.Scalar
}

// Point is a point on edwards25519, held as the library's point value;
// PointEncode produces its 32-byte compressed encoding.
type Point struct {
	p *edwards25519.Point
}

// ScalarFromBytes decodes 32 little-endian bytes into a Scalar, reducing
// modulo ℓ if the value is out of range. It only rejects encoding-length
// errors, never out-of-range values, since callers (notably the private
// view key) are not guaranteed to hand back a canonically-reduced scalar.
func ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != 32 {
		return Scalar{}, ErrInvalidLength
	}
	// SetUniformBytes performs a wide reduction mod ℓ over 64 bytes; zero
	// padding the high half makes this equivalent to reducing the 32-byte
	// value directly, and unlike SetCanonicalBytes it never rejects an
	// out-of-range input.
	var wide [64]byte
	copy(wide[:32], b)
	s, err := new(edwards25519.Scalar).SetUniformBytes(wide[:])
	if err != nil {
		// SetUniformBytes only errors on a length mismatch, which cannot
		// happen with a fixed 64-byte buffer.
		return Scalar{}, err
	}
	return Scalar{s: s}, nil
}

// Bytes returns the canonical 32-byte little-endian encoding of s.
func (s Scalar) Bytes() []byte {
	return s.s.Bytes()
}

// PointDecode decodes 32 bytes to a curve point.
func PointDecode(b []byte) (Point, error) {
	if len(b) != 32 {
		return Point{}, ErrInvalidLength
	}
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		return Point{}, ErrInvalidPoint
	}
	return Point{p: p}, nil
}

// PointEncode returns the 32-byte compressed encoding of p.
func PointEncode(p Point) []byte {
	return p.p.Bytes()
}

// ScalarMultBase computes s·G. Constant-time with respect to s, since s
// may be secret key material (e.g. a private key whose public key is
// being derived).
func ScalarMultBase(s Scalar) Point {
	return Point{p: new(edwards25519.Point).ScalarBaseMult(s.s)}
}

// ScalarMult computes s·p.
func ScalarMult(s Scalar, p Point) Point {
	return Point{p: new(edwards25519.Point).ScalarMult(s.s, p.p)}
}

// PointAdd computes a+b.
func PointAdd(a, b Point) Point {
	return Point{p: new(edwards25519.Point).Add(a.p, b.p)}
}

// PointNegate computes -p. For the twisted-Edwards curve used here
// (a = -1), negating a point negates only its x-coordinate, which is what
// the underlying library does internally; this is not a generic
// double-and-subtract.
func PointNegate(p Point) Point {
	return Point{p: new(edwards25519.Point).Negate(p.p)}
}

// MultByCofactor multiplies p by the curve's cofactor (8), clearing any
// small-subgroup component.
func MultByCofactor(p Point) Point {
	return Point{p: new(edwards25519.Point).MultByCofactor(p.p)}
}
