// Package types holds the value types shared across the scanner
// pipeline: the caller-facing logical transaction shape, the per-output
// records the extra-field parser and recognizer operate on, and the
// CandidateOutput result.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash is a 32-byte transaction hash, carried on the wire as a hex string.
type Hash [32]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return decodeFixedHex(s, h[:])
}

// PublicKey is a compressed edwards25519 point (32 bytes), carried on the
// wire as a hex string.
type PublicKey [32]byte

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.String())
}

func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return decodeFixedHex(s, pk[:])
}

func decodeFixedHex(s string, out []byte) error {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("types: invalid hex %q: %w", s, err)
	}
	if len(decoded) != len(out) {
		return fmt.Errorf("types: expected %d bytes, got %d", len(out), len(decoded))
	}
	copy(out, decoded)
	return nil
}

// VOut is one transaction output as the daemon reports it: output_key
// (32-byte hex) and view_tag (1-byte hex, only present on transactions
// built with view-tag support).
type VOut struct {
	OutputKey PublicKey
	ViewTag   byte
	// HasViewTag distinguishes older, pre-view-tag outputs from a
	// genuine zero view tag.
	HasViewTag bool
}

type voutWire struct {
	OutputKey string  `json:"output_key"`
	ViewTag   *string `json:"view_tag,omitempty"`
}

func (v *VOut) UnmarshalJSON(data []byte) error {
	var wire voutWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if err := decodeFixedHex(wire.OutputKey, v.OutputKey[:]); err != nil {
		return err
	}
	if wire.ViewTag != nil {
		tagBytes, err := hex.DecodeString(*wire.ViewTag)
		if err != nil || len(tagBytes) != 1 {
			return fmt.Errorf("types: invalid view_tag %q", *wire.ViewTag)
		}
		v.ViewTag = tagBytes[0]
		v.HasViewTag = true
	}
	return nil
}

func (v VOut) MarshalJSON() ([]byte, error) {
	wire := voutWire{OutputKey: v.OutputKey.String()}
	if v.HasViewTag {
		tag := hex.EncodeToString([]byte{v.ViewTag})
		wire.ViewTag = &tag
	}
	return json.Marshal(wire)
}

// ECDHInfo is the per-output RingCT entry, aligned with Vout by index;
// amount is an 8-byte hex-encoded XOR mask target.
type ECDHInfo struct {
	EncryptedAmount [8]byte
}

type ecdhInfoWire struct {
	Amount string `json:"amount"`
}

func (e *ECDHInfo) UnmarshalJSON(data []byte) error {
	var wire ecdhInfoWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	return decodeFixedHex(wire.Amount, e.EncryptedAmount[:])
}

func (e ECDHInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(ecdhInfoWire{Amount: hex.EncodeToString(e.EncryptedAmount[:])})
}

// ExtraBytes is the raw extra blob. The daemon's as_json encoding
// represents it as a JSON array of byte values (0-255), not a string.
type ExtraBytes []byte

func (e ExtraBytes) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(e))
	for i, b := range e {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

func (e *ExtraBytes) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		out[i] = byte(v)
	}
	*e = out
	return nil
}

// VIn is a transaction input. Gen marks a coinbase ("miner") input.
type VIn struct {
	Gen bool `json:"gen,omitempty"`
}

// RctSignatures carries the subset of RingCT metadata the scanner needs.
type RctSignatures struct {
	Type     int        `json:"type"`
	EcdhInfo []ECDHInfo `json:"ecdhInfo"`
}

// Transaction is the logical shape the scanner consumes, independent of
// however the RPC collaborator encoded it on the wire.
type Transaction struct {
	Hash          Hash          `json:"hash"`
	Version       int           `json:"version"`
	UnlockTime    uint64        `json:"unlock_time"`
	Extra         ExtraBytes    `json:"extra"`
	Vin           []VIn         `json:"vin"`
	Vout          []VOut        `json:"vout"`
	RctSignatures RctSignatures `json:"rct_signatures"`
}

// IsCoinbase reports whether this transaction is a coinbase ("gen") tx:
// exactly one input, and that input is of the gen variant.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Vin) == 1 && tx.Vin[0].Gen
}

// CandidateOutput is a recognized, decrypted output returned by the
// scanner. Callers MUST reconcile RecoveredPublicSpendKey against an
// authoritative owned-subaddress set before treating the output as
// theirs.
type CandidateOutput struct {
	TxHash                  Hash      `json:"tx_hash"`
	OutputIndex             int       `json:"output_index"`
	RecoveredPublicSpendKey PublicKey `json:"recovered_public_spend_key"`
	AmountPiconero          uint64    `json:"amount_piconero"`
	AmountXMR               string    `json:"amount_xmr"`
	TxPublicKey             PublicKey `json:"tx_public_key"`
	OutputKey               PublicKey `json:"output_key"`
	TxVersion               int       `json:"tx_version"`
	UnlockTime              uint64    `json:"unlock_time"`
	InputCount              int       `json:"input_count"`
	OutputCount             int       `json:"output_count"`
	RctType                 int       `json:"rct_type"`
	IsCoinbase              bool      `json:"is_coinbase"`
}
