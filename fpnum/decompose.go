package fpnum

// GRSBits is the number of extra low-order bits carried below the
// mantissa during intermediate computation: guard, round and sticky.
const GRSBits = 3

// Decomposed is the sign/exponent/mantissa working representation used
// between pipeline stages. The exponent is unbiased and widened so that
// over/underflow is detectable; the mantissa holds the implicit bit and
// fraction shifted up by GRSBits, with guard at bit 2, round at bit 1
// and sticky at bit 0.
//
// Decomposed is a pure dataflow value: stages return new values, they
// never mutate one in place.
type Decomposed struct {
	Sign bool
	Exp  int32
	Mant uint64
}

// InternalMantWidth returns the working mantissa width for the format:
// fraction bits plus the implicit bit plus GRSBits.
func InternalMantWidth(f Format) uint {
	return f.FractionWidth() + 1 + GRSBits
}

// Decode splits a packed value into the working representation. The
// bias is removed here, so a zero/denormal exponent field decodes to
// ESub; the implicit bit is NOT set yet (see Denorm).
func Decode(f Format, bits uint64) Decomposed {
	return Decomposed{
		Sign: f.SignField(bits) != 0,
		Exp:  f.Exponent(bits),
		Mant: f.MantissaField(bits) << GRSBits,
	}
}

// Denorm normalizes the decoded operand into the uniform internal
// form: a subnormal keeps its mantissa and has its exponent clamped to
// the format minimum; a normal number gets the implicit leading bit
// set.
func (d Decomposed) Denorm(f Format) Decomposed {
	if d.Exp == f.ESub() {
		d.Exp = f.EMin()
	} else {
		d.Mant |= 1 << (f.FractionWidth() + GRSBits)
	}
	return d
}

// ShiftRightSticky shifts m right by n, ORing every shifted-out bit
// into bit 0. The shift amount is clamped to width: beyond that the
// whole value collapses to its sticky bit.
func ShiftRightSticky(m uint64, n uint32, width uint) uint64 {
	if n == 0 {
		return m
	}
	if uint(n) >= width || n >= 64 {
		if m != 0 {
			return 1
		}
		return 0
	}
	r := m >> n
	if m&(1<<n-1) != 0 {
		r |= 1
	}
	return r
}
