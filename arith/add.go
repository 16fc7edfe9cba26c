package arith

import "github.com/sarchlab/fpsim/fpnum"

// Bypass carries a result decided by special-case classification,
// skipping the compute stages entirely.
type Bypass struct {
	Valid bool
	Bits  uint64
	Flags fpnum.Flags
}

func bypass(bits uint64, flags fpnum.Flags) Bypass {
	return Bypass{Valid: true, Bits: bits, Flags: flags}
}

// AddSpecialCases classifies the two addend bit patterns. When a rule
// fires it returns a valid Bypass; otherwise it returns both operands
// decoded into the uniform working form, ready for alignment.
//
// The rules are ordered; the first match wins:
//  1. either operand NaN: propagate (A preferred), quieted. A
//     signaling input raises NV.
//  2. A infinite: Inf-Inf yields the default quiet NaN and NV, any
//     other B yields A.
//  3. B infinite: yields B.
//  4. both zero: equal signs keep the shared sign, opposite signs
//     take the mode's zero sign.
//  5. exact cancellation (same magnitude, opposite signs): zero with
//     the mode's zero sign.
//  6. A zero: yields B.  7. B zero: yields A.
func AddSpecialCases(
	f fpnum.Format,
	aBits, bBits uint64,
	rm fpnum.RoundingMode,
) (a, b fpnum.Decomposed, bp Bypass) {
	switch {
	case f.IsNaN(aBits) || f.IsNaN(bBits):
		var flags fpnum.Flags
		if f.IsSignalingNaN(aBits) || f.IsSignalingNaN(bBits) {
			flags = fpnum.FlagNV
		}
		n := aBits
		if !f.IsNaN(aBits) {
			n = bBits
		}
		return a, b, bypass(f.ToQuietNaN(n), flags)
	case f.IsInf(aBits):
		if f.IsInf(bBits) && f.SignField(aBits) != f.SignField(bBits) {
			return a, b, bypass(f.QuietNaN(false), fpnum.FlagNV)
		}
		return a, b, bypass(aBits, 0)
	case f.IsInf(bBits):
		return a, b, bypass(bBits, 0)
	case f.IsZero(aBits) && f.IsZero(bBits):
		if f.SignField(aBits) == f.SignField(bBits) {
			return a, b, bypass(aBits, 0)
		}
		return a, b, bypass(f.Zero(rm.ZeroSign()), 0)
	case aBits == bBits^f.Zero(true):
		return a, b, bypass(f.Zero(rm.ZeroSign()), 0)
	case f.IsZero(aBits):
		return a, b, bypass(bBits, 0)
	case f.IsZero(bBits):
		return a, b, bypass(aBits, 0)
	}

	a = fpnum.Decode(f, aBits).Denorm(f)
	b = fpnum.Decode(f, bBits).Denorm(f)
	return a, b, Bypass{}
}

// Align brings both operands to the larger of the two exponents. The
// smaller operand's mantissa shifts right with every lost bit merged
// into sticky, so no information relevant to rounding is dropped.
func Align(f fpnum.Format, a, b fpnum.Decomposed) (fpnum.Decomposed, fpnum.Decomposed) {
	w := fpnum.InternalMantWidth(f)
	if d := a.Exp - b.Exp; d > 0 {
		b.Mant = fpnum.ShiftRightSticky(b.Mant, uint32(d), w)
		b.Exp = a.Exp
	} else if d < 0 {
		a.Mant = fpnum.ShiftRightSticky(a.Mant, uint32(-d), w)
		a.Exp = b.Exp
	}
	return a, b
}

// AddMantissas adds or subtracts the aligned mantissas by sign. The
// result may carry one bit past the internal width (same-sign add) or
// have any number of leading zeros (cancellation); Normalize fixes
// both. A zero mantissa means the aligned values were identical.
func AddMantissas(a, b fpnum.Decomposed) fpnum.Decomposed {
	if a.Sign == b.Sign {
		return fpnum.Decomposed{Sign: a.Sign, Exp: a.Exp, Mant: a.Mant + b.Mant}
	}
	if a.Mant >= b.Mant {
		return fpnum.Decomposed{Sign: a.Sign, Exp: a.Exp, Mant: a.Mant - b.Mant}
	}
	return fpnum.Decomposed{Sign: b.Sign, Exp: a.Exp, Mant: b.Mant - a.Mant}
}

func add(f fpnum.Format, aBits, bBits uint64, rm fpnum.RoundingMode) Response {
	a, b, bp := AddSpecialCases(f, aBits, bBits, rm)
	if bp.Valid {
		return Response{Bits: bp.Bits, Flags: bp.Flags}
	}
	a, b = Align(f, a, b)
	sum := AddMantissas(a, b)
	if sum.Mant == 0 {
		// Aligned operands were equal with opposite signs. The raw
		// patterns differed (that case bypasses), so this only
		// happens when alignment collapsed them, and the result is
		// an exact zero.
		return Response{Bits: f.Zero(rm.ZeroSign())}
	}
	return NormRoundPack(f, sum, rm)
}
