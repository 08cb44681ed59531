// Package amount converts piconero integers to XMR decimal strings
// without ever routing the value through binary floating point.
package amount

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// piconeroPerXMR is 10^12.
const piconeroPerXMR = 1_000_000_000_000

// FormatXMR renders piconero as an XMR amount with exactly 12 fractional
// digits, e.g. 100_000_000_000_000 -> "100.000000000000". piconero is
// taken as uint64 (the full range a RingCT amount can occupy) so the
// conversion goes through math/big rather than int64, which would
// overflow above ~9.2e18.
func FormatXMR(piconero uint64) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(piconero), 0)
	d = d.DivRound(decimal.NewFromInt(piconeroPerXMR), 12)
	return d.StringFixed(12)
}
