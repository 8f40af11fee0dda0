package analytics

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// averageTicketPrecision is the significant-digit ceiling for derived
// monetary ratios: 16 significant digits, ties rounded half up.
const averageTicketPrecision = 16

// divSigFigs divides num by den and rounds the quotient to sig significant
// digits, half away from zero, in a single rounding step. Pre-rounding at
// guard digits and rounding again can manufacture a tie that the true
// quotient never had, so the quotient magnitude is determined exactly first
// and DivRound lands directly on the final digit. Division by zero yields
// zero; the callers treat an empty denominator as "no data".
func divSigFigs(num, den decimal.Decimal, sig int32) decimal.Decimal {
	if den.IsZero() || num.IsZero() {
		return decimal.Zero
	}

	// floor(log10) of a decimal is NumDigits+Exponent-1; the quotient's is
	// either the difference of the operands' or one less, settled by
	// comparing |num| against |den| shifted to the candidate magnitude.
	est := (int32(num.NumDigits()) + num.Exponent()) - (int32(den.NumDigits()) + den.Exponent())
	mag := est - 1
	if num.Abs().Cmp(den.Abs().Shift(est)) >= 0 {
		mag = est
	}

	return stripTrailingZeros(num.DivRound(den, sig-1-mag))
}

func stripTrailingZeros(d decimal.Decimal) decimal.Decimal {
	coeff := new(big.Int).Set(d.Coefficient())
	exp := d.Exponent()
	ten := big.NewInt(10)
	rem := new(big.Int)

	for exp < 0 && coeff.Sign() != 0 {
		q, r := new(big.Int).QuoRem(coeff, ten, rem)
		if r.Sign() != 0 {
			break
		}
		coeff = q
		exp++
	}

	return decimal.NewFromBigInt(coeff, exp)
}
