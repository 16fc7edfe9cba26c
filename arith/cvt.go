package arith

import "github.com/sarchlab/fpsim/fpnum"

// Convert moves a value from format src to format dst under the given
// rounding mode. Widening is always exact. Narrowing reuses the shared
// normalize/round/pack tail of the destination format, so overflow,
// gradual underflow and flag behavior match the arithmetic ops; the
// round-to-odd modes make a narrowing step safe to follow with a
// second rounding.
func Convert(src, dst fpnum.Format, x uint64, rm fpnum.RoundingMode) Response {
	sign := src.SignField(x) != 0
	switch {
	case src.IsNaN(x):
		var flags fpnum.Flags
		if src.IsSignalingNaN(x) {
			flags = fpnum.FlagNV
		}
		// The payload rides in the high-order mantissa bits, so it
		// shifts with the width change.
		payload := src.MantissaField(x)
		if d, s := dst.FractionWidth(), src.FractionWidth(); d >= s {
			payload <<= d - s
		} else {
			payload >>= s - d
		}
		return Response{
			Bits:  dst.ToQuietNaN(dst.Zero(sign) | payload),
			Flags: flags,
		}
	case src.IsInf(x):
		return Response{Bits: dst.Inf(sign)}
	case src.IsZero(x):
		return Response{Bits: dst.Zero(sign)}
	}

	// The exact value is mant * 2^(exp - srcFraction); rebasing the
	// exponent expresses it in the destination's working form without
	// touching a single mantissa bit.
	d := fpnum.Decomposed{
		Sign: sign,
		Exp: src.ExponentValue(x) - int32(src.FractionWidth()) +
			int32(dst.FractionWidth()) + fpnum.GRSBits,
		Mant: src.MantissaValue(x),
	}
	return NormRoundPack(dst, d, rm)
}
