package arith

import (
	"math/bits"

	"github.com/sarchlab/fpsim/fpnum"
)

// Normalize positions the leading one of d at the top of the internal
// mantissa. A carry out of the internal width shifts right by one with
// sticky; leading zeros shift left, but never further than the
// exponent allows above the format minimum, which is how subnormal
// results form. An exponent already below the minimum (deep underflow
// from conversion) shifts right with sticky until it reaches it.
//
// Normalize must not see a zero mantissa; the add and fma paths divert
// exact zeros before this point.
func Normalize(f fpnum.Format, d fpnum.Decomposed) fpnum.Decomposed {
	if d.Mant == 0 {
		panic("arith: zero mantissa reached Normalize")
	}
	w := fpnum.InternalMantWidth(f)
	eMin := f.EMin()
	top := uint(bits.Len64(d.Mant))
	if top > w {
		d.Mant = fpnum.ShiftRightSticky(d.Mant, uint32(top-w), 64)
		d.Exp += int32(top - w)
	} else if top < w && d.Exp > eMin {
		sh := int32(w - top)
		if room := d.Exp - eMin; sh > room {
			sh = room
		}
		d.Mant <<= uint(sh)
		d.Exp -= sh
	}
	if d.Exp < eMin {
		d.Mant = fpnum.ShiftRightSticky(d.Mant, uint32(eMin-d.Exp), 64)
		d.Exp = eMin
	}
	return d
}

// RoundMantissa applies the rounding decision to a normalized value,
// dropping the guard/round/sticky bits. An all-ones mantissa that
// rounds up wraps cleanly into the next binade.
func RoundMantissa(f fpnum.Format, d fpnum.Decomposed, rm fpnum.RoundingMode) (fpnum.Decomposed, fpnum.Flags) {
	ov := fpnum.Overflow{
		Guard:    d.Mant&0b100 != 0,
		RoundBit: d.Mant&0b010 != 0,
		Sticky:   d.Mant&0b001 != 0,
		M0:       d.Mant&0b1000 != 0,
		Sign:     d.Sign,
		RM:       rm,
	}
	var flags fpnum.Flags
	if ov.Inexact() {
		flags |= fpnum.FlagNX
	}
	d.Mant >>= fpnum.GRSBits
	if ov.RoundUp() {
		d.Mant++
		if d.Mant>>(f.FractionWidth()+1) != 0 {
			d.Mant >>= 1
			d.Exp++
		}
	}
	return d, flags
}

// NormRoundPack is the shared tail of every computing datapath:
// normalize, round, correct the subnormal encoding, and pack, raising
// OF/UF/NX as appropriate.
func NormRoundPack(f fpnum.Format, d fpnum.Decomposed, rm fpnum.RoundingMode) Response {
	d = Normalize(f, d)
	d, flags := RoundMantissa(f, d, rm)

	if d.Exp > f.Bias() {
		flags |= fpnum.FlagOF | fpnum.FlagNX
		if rm.OverflowRoundsToInf(d.Sign) {
			return Response{Bits: f.Inf(d.Sign), Flags: flags}
		}
		return Response{Bits: f.MaxNormal(d.Sign), Flags: flags}
	}

	if d.Mant>>f.FractionWidth() == 0 {
		// No implicit bit: the result is subnormal (or rounded all
		// the way to zero) and must carry the reserved exponent
		// encoding. Underflow is flagged only when also inexact.
		d.Exp = f.ESub()
		if flags&fpnum.FlagNX != 0 {
			flags |= fpnum.FlagUF
		}
	}
	return Response{Bits: f.Pack(d.Sign, d.Exp, d.Mant), Flags: flags}
}
