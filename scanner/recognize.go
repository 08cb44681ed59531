// Package scanner implements the output recognizer and the per-block
// scanner facade: the pipeline that turns a transaction's extra field
// and output list into recovered, decrypted CandidateOutputs.
package scanner

import (
	"encoding/binary"

	"viewscan/amount"
	"viewscan/curve"
	"viewscan/derive"
	"viewscan/hashing"
	"viewscan/scanerr"
	"viewscan/types"
)

const defaultSafeAmountCeilingXMR = 9999

var (
	viewTagDomain = []byte("view_tag")
	amountDomain  = []byte("amount")
)

// Config holds the one knob the recognizer needs: the safe-amount
// ceiling in XMR. Constructed once and passed to the scanner — no
// process-wide mutable state.
type Config struct {
	SafeAmountCeilingXMR uint64
}

// DefaultConfig returns the documented default ceiling of 9999 XMR.
func DefaultConfig() Config {
	return Config{SafeAmountCeilingXMR: defaultSafeAmountCeilingXMR}
}

// candidateTxPubKeys applies the off-by-one convention real wallets use
// when additional public keys are present: the primary candidate is the
// primary tx public key, unless additional_pubkeys[i-1] exists, in which
// case that replaces it; the fallback candidate is additional_pubkeys[i]
// if present.
func candidateTxPubKeys(primary []byte, additional [][]byte, i int) (candidate, fallback []byte) {
	candidate = primary
	if i >= 1 && i-1 < len(additional) {
		candidate = additional[i-1]
	}
	if i < len(additional) {
		fallback = additional[i]
	}
	return candidate, fallback
}

func expectedViewTag(d derive.Derivation, i uint64) byte {
	digest := hashing.Keccak256(viewTagDomain, d[:], hashing.VarintEncode(i))
	return digest[0]
}

// recognizeWithCandidate runs steps 2-4 (view tag, spend-key recovery,
// amount decryption) against a single candidate tx public key, returning
// (output, matched). matched is false when the candidate does not decode
// to a curve point or the view tag does not check out against its
// derivation. The safe-amount filter is applied by RecognizeOutput.
func recognizeWithCandidate(cfg Config, viewPriv curve.Scalar, candidatePubKey []byte, out types.VOut, encryptedAmount [8]byte, i int) (types.CandidateOutput, bool, error) {
	txPub, err := curve.PointDecode(candidatePubKey)
	if err != nil {
		return types.CandidateOutput{}, false, nil
	}

	d := derive.KeyDerivation(txPub, viewPriv)
	if expectedViewTag(d, uint64(i)) != out.ViewTag {
		return types.CandidateOutput{}, false, nil
	}

	s := derive.DerivationToScalar(d, uint64(i))

	outputKeyPoint, err := curve.PointDecode(out.OutputKey[:])
	if err != nil {
		return types.CandidateOutput{}, false, scanerr.New(scanerr.InvalidPoint, "output_key does not decode to a curve point")
	}

	sG := curve.ScalarMultBase(s)
	destination := curve.PointAdd(curve.PointNegate(sG), outputKeyPoint)

	sEncoded := s.Bytes()
	maskDigest := hashing.Keccak256(amountDomain, sEncoded)
	var mask [8]byte
	copy(mask[:], maskDigest[:8])

	var maskedLE [8]byte
	for b := 0; b < 8; b++ {
		maskedLE[b] = mask[b] ^ encryptedAmount[b]
	}
	piconero := binary.LittleEndian.Uint64(maskedLE[:])

	xmrString := amount.FormatXMR(piconero)

	var destKey types.PublicKey
	copy(destKey[:], curve.PointEncode(destination))
	var txPubKey types.PublicKey
	copy(txPubKey[:], candidatePubKey)

	return types.CandidateOutput{
		OutputIndex:             i,
		RecoveredPublicSpendKey: destKey,
		AmountPiconero:          piconero,
		AmountXMR:               xmrString,
		TxPublicKey:             txPubKey,
		OutputKey:               out.OutputKey,
	}, true, nil
}

// RecognizeOutput runs the full recognition pipeline for one output. It
// returns (candidate, true, nil) on a recognized output, (zero, false,
// nil) when the output is simply not addressed to this wallet (or was
// filtered by the safe-amount ceiling), and (zero, false, err) only for
// malformed input that prevented any judgment (scanerr.InvalidPoint,
// scanerr.MalformedOutput, scanerr.DecryptShort). ecdh is nil when the
// transaction carries no RingCT ecdhInfo entry aligned with this output
// index (e.g. a coinbase output).
func RecognizeOutput(cfg Config, viewPriv curve.Scalar, primary []byte, additional [][]byte, out types.VOut, ecdh *types.ECDHInfo, i int) (types.CandidateOutput, bool, error) {
	if !out.HasViewTag {
		return types.CandidateOutput{}, false, scanerr.New(scanerr.MalformedOutput, "output has no view tag")
	}
	if ecdh == nil {
		return types.CandidateOutput{}, false, scanerr.New(scanerr.DecryptShort, "no ecdhInfo entry aligned with this output")
	}

	candidate, fallback := candidateTxPubKeys(primary, additional, i)
	if candidate == nil && fallback == nil {
		return types.CandidateOutput{}, false, nil
	}

	var (
		result  types.CandidateOutput
		matched bool
		err     error
	)
	if candidate != nil {
		result, matched, err = recognizeWithCandidate(cfg, viewPriv, candidate, out, ecdh.EncryptedAmount, i)
		if err != nil {
			return types.CandidateOutput{}, false, err
		}
	}
	if !matched && fallback != nil {
		result, matched, err = recognizeWithCandidate(cfg, viewPriv, fallback, out, ecdh.EncryptedAmount, i)
		if err != nil {
			return types.CandidateOutput{}, false, err
		}
	}
	if !matched {
		return types.CandidateOutput{}, false, nil
	}

	ceiling := cfg.SafeAmountCeilingXMR
	if ceiling == 0 {
		ceiling = defaultSafeAmountCeilingXMR
	}
	// Compare in piconero, not truncated XMR, so a fractional excess over
	// the ceiling (e.g. 9999.5 XMR against a 9999 XMR ceiling) still trips
	// the filter.
	if ceiling <= (^uint64(0))/1_000_000_000_000 && result.AmountPiconero > ceiling*1_000_000_000_000 {
		return types.CandidateOutput{}, false, nil
	}

	return result, true, nil
}
