package arith

import (
	"math/bits"

	"github.com/sarchlab/fpsim/fpnum"
)

// fmaSpecialCases classifies the fused operands. The product sign and
// addend sign passed in already include the per-opcode negations; NaN
// inputs propagate with their own payload and sign untouched.
//
// Ordered rules: NaN propagation (A, then B, then C), Inf times zero,
// infinite product (against an opposing infinite addend, or alone),
// infinite addend, zero product against a zero or nonzero addend.
// A zero addend with a nonzero product is not special: the product
// still needs multiplying and rounding.
func fmaSpecialCases(
	f fpnum.Format,
	aBits, bBits, cBits uint64,
	rm fpnum.RoundingMode,
	pSign, bSign bool,
) Bypass {
	anyNaN := f.IsNaN(aBits) || f.IsNaN(bBits) || f.IsNaN(cBits)
	if anyNaN {
		var flags fpnum.Flags
		if f.IsSignalingNaN(aBits) || f.IsSignalingNaN(bBits) ||
			f.IsSignalingNaN(cBits) {
			flags = fpnum.FlagNV
		}
		n := aBits
		if !f.IsNaN(aBits) {
			n = bBits
			if !f.IsNaN(bBits) {
				n = cBits
			}
		}
		return bypass(f.ToQuietNaN(n), flags)
	}
	aInf, cInf := f.IsInf(aBits), f.IsInf(cBits)
	aZero, cZero := f.IsZero(aBits), f.IsZero(cBits)
	switch {
	case aInf && cZero, aZero && cInf:
		return bypass(f.QuietNaN(false), fpnum.FlagNV)
	case aInf || cInf:
		if f.IsInf(bBits) && bSign != pSign {
			return bypass(f.QuietNaN(false), fpnum.FlagNV)
		}
		return bypass(f.Inf(pSign), 0)
	case f.IsInf(bBits):
		return bypass(f.Inf(bSign), 0)
	case aZero || cZero:
		if f.IsZero(bBits) {
			if pSign == bSign {
				return bypass(f.Zero(pSign), 0)
			}
			return bypass(f.Zero(rm.ZeroSign()), 0)
		}
		return bypass(f.Zero(bSign)|bBits&^f.Zero(true), 0)
	}
	return Bypass{}
}

// fusedMulAdd computes A*C + B with a single rounding. The product is
// held exactly in a 128-bit accumulator with three guard positions
// below its least significant bit; the addend is shifted into that
// frame, or when it dominates by more than the frame can hold, the
// frame rebases toward the addend and the product tail collapses into
// sticky. Either way every discarded bit survives as sticky, so the
// shared rounding tail sees the exact value.
func fusedMulAdd(
	f fpnum.Format,
	aBits, bBits, cBits uint64,
	rm fpnum.RoundingMode,
	negProduct, negAddend bool,
) Response {
	pSign := (f.SignField(aBits)^f.SignField(cBits) != 0) != negProduct
	bSign := (f.SignField(bBits) != 0) != negAddend
	if bp := fmaSpecialCases(f, aBits, bBits, cBits, rm, pSign, bSign); bp.Valid {
		return Response{Bits: bp.Bits, Flags: bp.Flags}
	}

	fw := int32(f.FractionWidth())
	ma, ea := f.MantissaValue(aBits), f.ExponentValue(aBits)
	mc, ec := f.MantissaValue(cBits), f.ExponentValue(cBits)
	mb, eb := f.MantissaValue(bBits), f.ExponentValue(bBits)

	// acc holds product<<3; its bit i has weight 2^(frame+i).
	hi, lo := bits.Mul64(ma, mc)
	hi = hi<<fpnum.GRSBits | lo>>(64-fpnum.GRSBits)
	lo <<= fpnum.GRSBits
	frame := ea + ec - 2*fw - fpnum.GRSBits

	var bhi, blo uint64
	if mb != 0 {
		switch sh := eb - fw - frame; {
		case sh < 0:
			blo = fpnum.ShiftRightSticky(mb, uint32(-sh), 64)
		case sh <= 63:
			bhi = mb >> (64 - uint(sh))
			blo = mb << uint(sh)
		default:
			// Addend far above the product: move the frame up under
			// the addend and let the product tail become sticky.
			up := sh - 63
			hi, lo = shr128Sticky(hi, lo, uint32(up))
			frame += up
			bhi = mb >> 1
			blo = mb << 63
		}
	}

	sign := pSign
	var shi, slo uint64
	if pSign == bSign {
		var carry uint64
		slo, carry = bits.Add64(lo, blo, 0)
		shi, _ = bits.Add64(hi, bhi, carry)
	} else if bhi > hi || (bhi == hi && blo > lo) {
		sign = bSign
		var borrow uint64
		slo, borrow = bits.Sub64(blo, lo, 0)
		shi, _ = bits.Sub64(bhi, hi, borrow)
	} else {
		var borrow uint64
		slo, borrow = bits.Sub64(lo, blo, 0)
		shi, _ = bits.Sub64(hi, bhi, borrow)
	}
	if shi|slo == 0 {
		// Sticky is part of the accumulator, so a zero sum is an
		// exact cancellation.
		return Response{Bits: f.Zero(rm.ZeroSign())}
	}

	d := fpnum.Decomposed{Sign: sign}
	if shi == 0 {
		d.Mant = slo
		d.Exp = frame + fw + fpnum.GRSBits
	} else {
		k := uint32(64+bits.Len64(shi)) - uint32(fpnum.InternalMantWidth(f))
		_, d.Mant = shr128Sticky(shi, slo, k)
		d.Exp = frame + int32(k) + fw + fpnum.GRSBits
	}
	return NormRoundPack(f, d, rm)
}

// shr128Sticky shifts the 128-bit value hi:lo right by n, folding all
// shifted-out bits into bit 0 of the result.
func shr128Sticky(hi, lo uint64, n uint32) (uint64, uint64) {
	switch {
	case n == 0:
		return hi, lo
	case n >= 128:
		if hi|lo != 0 {
			return 0, 1
		}
		return 0, 0
	case n >= 64:
		var sticky uint64
		if lo != 0 || hi&(1<<(n-64)-1) != 0 {
			sticky = 1
		}
		return 0, hi>>(n-64) | sticky
	}
	var sticky uint64
	if lo&(1<<n-1) != 0 {
		sticky = 1
	}
	return hi >> n, hi<<(64-n) | lo>>n | sticky
}
