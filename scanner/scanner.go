package scanner

import (
	"viewscan/curve"
	"viewscan/extrafield"
	"viewscan/scanerr"
	"viewscan/types"
)

// Scanner is the per-block scanning facade: it iterates a block's
// transactions, applies the output recognizer to every output, and
// collects survivors in order.
type Scanner struct {
	cfg Config
}

// New constructs a Scanner with the given configuration.
func New(cfg Config) *Scanner {
	return &Scanner{cfg: cfg}
}

// PerTxError records a non-fatal per-transaction failure surfaced for
// observability; it is never a reason to abort the block.
type PerTxError struct {
	TxHash types.Hash
	Err    error
}

// ScanBlock iterates txs in order and returns every recognized output
// across the block, preserving (transaction index, output index)
// ascending order, along with any per-transaction parse failures. A
// ScanError of a fatal kind aborts the scan and is returned immediately;
// all other failures are collected, never aborting. viewPriv arrives
// already decoded, so ScanBlock itself raises no BadScalarEncoding.
func (s *Scanner) ScanBlock(viewPriv curve.Scalar, txs []types.Transaction) ([]types.CandidateOutput, []PerTxError, error) {
	var candidates []types.CandidateOutput
	var txErrors []PerTxError

	for _, tx := range txs {
		out, err := s.scanTransaction(viewPriv, tx)
		if err != nil {
			if se, ok := err.(*scanerr.ScanError); ok && se.Kind.Fatal() {
				return nil, txErrors, err
			}
			txErrors = append(txErrors, PerTxError{TxHash: tx.Hash, Err: err})
			continue
		}
		candidates = append(candidates, out...)
	}

	return candidates, txErrors, nil
}

func (s *Scanner) scanTransaction(viewPriv curve.Scalar, tx types.Transaction) ([]types.CandidateOutput, error) {
	parsed := extrafield.Parse(tx.Extra)
	if parsed.PrimaryTxPubKey == nil {
		return nil, scanerr.New(scanerr.MalformedExtra, "no primary tx public key in extra field")
	}

	isCoinbase := tx.IsCoinbase()
	var out []types.CandidateOutput

	for i, vout := range tx.Vout {
		var ecdh *types.ECDHInfo
		if i < len(tx.RctSignatures.EcdhInfo) {
			ecdh = &tx.RctSignatures.EcdhInfo[i]
		}

		cand, ok, err := RecognizeOutput(s.cfg, viewPriv, parsed.PrimaryTxPubKey, parsed.AdditionalPubKeys, vout, ecdh, i)
		if err != nil || !ok {
			// Per-output failures (malformed key, bad point, no view tag,
			// missing ecdhInfo) are silent — they never abort the transaction.
			continue
		}

		cand.TxHash = tx.Hash
		cand.TxVersion = tx.Version
		cand.UnlockTime = tx.UnlockTime
		cand.InputCount = len(tx.Vin)
		cand.OutputCount = len(tx.Vout)
		cand.RctType = tx.RctSignatures.Type
		cand.IsCoinbase = isCoinbase

		out = append(out, cand)
	}

	return out, nil
}
