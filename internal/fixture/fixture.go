// Package fixture builds synthetic stealth outputs for tests: given a
// wallet's view/spend keypair, it runs the real construction the
// recognizer must invert (P = H_s(d‖i)·G + D), so tests can assert on
// genuine curve-correct vectors instead of hand-computed constants.
package fixture

import (
	"crypto/rand"

	"viewscan/curve"
	"viewscan/derive"
	"viewscan/hashing"
	"viewscan/types"
)

// Wallet is a synthetic view/spend keypair for building test vectors.
type Wallet struct {
	ViewPriv  curve.Scalar
	SpendPriv curve.Scalar
	SpendPub  curve.Point
}

// NewWallet generates a random view/spend keypair.
func NewWallet() Wallet {
	spendPriv := randomScalar()
	return Wallet{
		ViewPriv:  randomScalar(),
		SpendPriv: spendPriv,
		SpendPub:  curve.ScalarMultBase(spendPriv),
	}
}

func randomScalar() curve.Scalar {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	s, err := curve.ScalarFromBytes(buf[:])
	if err != nil {
		panic(err)
	}
	return s
}

// Output is a freshly-constructed stealth output addressed to a wallet,
// plus the ephemeral tx public key a scanner is handed alongside it.
type Output struct {
	TxPubKey        curve.Point
	VOut            types.VOut
	EncryptedAmount [8]byte
}

// BuildOutput constructs a stealth output at index i paying piconero to
// w, using a freshly generated ephemeral keypair as the tx public key.
//
// The sender-side derivation uses the recipient's public view key and
// the ephemeral private key: d = 8 * ephemeralPriv * viewPub. This
// equals 8 * viewPriv * txPub by the Diffie-Hellman commutativity the
// whole scheme rests on, so a scanner holding only viewPriv and txPub
// recovers the same d.
func BuildOutput(w Wallet, i uint64, piconero uint64) Output {
	ephemeralPriv := randomScalar()
	txPub := curve.ScalarMultBase(ephemeralPriv)

	viewPub := curve.ScalarMultBase(w.ViewPriv)
	d := derive.KeyDerivation(viewPub, ephemeralPriv)

	s := derive.DerivationToScalar(d, i)
	sG := curve.ScalarMultBase(s)
	destination := curve.PointAdd(sG, w.SpendPub)

	var outputKey types.PublicKey
	copy(outputKey[:], curve.PointEncode(destination))

	viewTagDigest := hashing.Keccak256([]byte("view_tag"), d[:], hashing.VarintEncode(i))

	maskDigest := hashing.Keccak256([]byte("amount"), s.Bytes())
	var encrypted [8]byte
	for b := 0; b < 8; b++ {
		encrypted[b] = maskDigest[b] ^ byte(piconero>>(8*uint(b)))
	}

	return Output{
		TxPubKey: txPub,
		VOut: types.VOut{
			OutputKey:  outputKey,
			ViewTag:    viewTagDigest[0],
			HasViewTag: true,
		},
		EncryptedAmount: encrypted,
	}
}
