// Package fpnum provides IEEE 754 binary floating-point format
// descriptors, rounding modes, and the decomposed sign/exponent/mantissa
// working representation used by the arithmetic pipelines.
package fpnum

import (
	"fmt"
	"math"
)

// Format describes a binary floating-point format based on IEEE 754.
//
// A Format is immutable after construction and is shared read-only by
// all pipeline stages. Field accessors and classification predicates
// operate on raw bit patterns held in a uint64 and therefore require
// Width() <= 64; wider formats are valid as descriptors only.
type Format struct {
	eWidth    uint
	mWidth    uint
	hasIntBit bool
	hasSign   bool
}

// NewFormat creates a Format with the given exponent and stored-mantissa
// widths. hasIntBit marks formats with an explicit integer bit (like the
// x87 80-bit format); the bit counts as part of the mantissa. hasSign is
// false for the rare unsigned formats (some Vulkan image formats).
func NewFormat(eWidth, mWidth uint, hasIntBit, hasSign bool) Format {
	return Format{eWidth: eWidth, mWidth: mWidth, hasIntBit: hasIntBit, hasSign: hasSign}
}

// Standard returns the IEEE 754-2008 interchange format for the given
// total bit width. Widths 16, 32, 64 and 128 use the fixed layouts from
// the standard; widths above 128 that are multiples of 32 use the
// standard's extended-format exponent formula round(4*log2(w)) - 13.
// Any other width is a configuration error.
func Standard(width uint) (Format, error) {
	switch width {
	case 16:
		return NewFormat(5, 10, false, true), nil
	case 32:
		return NewFormat(8, 23, false, true), nil
	case 64:
		return NewFormat(11, 52, false, true), nil
	case 128:
		return NewFormat(15, 112, false, true), nil
	}
	if width > 128 && width%32 == 0 {
		if width > 1_000_000 {
			return Format{}, fmt.Errorf("fpnum: width %d too big", width)
		}
		eWidth := uint(math.Round(4*math.Log2(float64(width)))) - 13
		return NewFormat(eWidth, width-1-eWidth, false, true), nil
	}
	return Format{}, fmt.Errorf(
		"fpnum: width %d is not a valid IEEE 754-2008 binary format width", width)
}

// MustStandard is like Standard but panics on invalid width. It is
// intended for package-level variables and tests.
func MustStandard(width uint) Format {
	f, err := Standard(width)
	if err != nil {
		panic(err)
	}
	return f
}

// Width returns the total number of bits in the format.
func (f Format) Width() uint {
	w := f.eWidth + f.mWidth
	if f.hasSign {
		w++
	}
	return w
}

// ExponentWidth returns the number of bits in the exponent field.
func (f Format) ExponentWidth() uint { return f.eWidth }

// MantissaWidth returns the number of bits stored in the mantissa field.
func (f Format) MantissaWidth() uint { return f.mWidth }

// HasIntBit reports whether the format stores an explicit integer bit.
func (f Format) HasIntBit() bool { return f.hasIntBit }

// HasSign reports whether the format has a sign bit.
func (f Format) HasSign() bool { return f.hasSign }

// FractionWidth returns the number of mantissa bits that are fraction
// bits (excludes an explicit integer bit when present).
func (f Format) FractionWidth() uint {
	if f.hasIntBit {
		return f.mWidth - 1
	}
	return f.mWidth
}

// Bias returns the exponent bias.
func (f Format) Bias() int32 {
	return int32(1)<<(f.eWidth-1) - 1
}

// ExponentInfNaN returns the exponent-field value designating Inf/NaN.
func (f Format) ExponentInfNaN() uint64 {
	return 1<<f.eWidth - 1
}

// ExponentMask returns the exponent field mask in packed position.
func (f Format) ExponentMask() uint64 {
	return f.ExponentInfNaN() << f.mWidth
}

// MantissaMask returns the mantissa field mask.
func (f Format) MantissaMask() uint64 {
	return 1<<f.mWidth - 1
}

// EMax returns the maximum unbiased exponent (the Inf/NaN encoding).
func (f Format) EMax() int32 {
	return int32(f.ExponentInfNaN()) - f.Bias()
}

// ESub returns the unbiased exponent of the denormal/zero encoding.
func (f Format) ESub() int32 {
	return -f.Bias()
}

// EMin returns the minimum unbiased exponent of a normal number, which
// is also the exponent assigned to subnormals in the working form.
func (f Format) EMin() int32 {
	return 1 - f.Bias()
}

// SignField returns the sign bit of x.
func (f Format) SignField(x uint64) uint64 {
	return x >> (f.eWidth + f.mWidth) & 1
}

// ExponentField returns the raw exponent field of x (bias included).
func (f Format) ExponentField(x uint64) uint64 {
	return x >> f.mWidth & f.ExponentInfNaN()
}

// Exponent returns the exponent of x with the bias removed.
func (f Format) Exponent(x uint64) int32 {
	return int32(f.ExponentField(x)) - f.Bias()
}

// ExponentValue returns the exponent of x adjusted for the
// mathematically correct subnormal exponent (the denormal/zero encoding
// maps to EMin rather than ESub).
func (f Format) ExponentValue(x uint64) int32 {
	e := f.ExponentField(x)
	if e == 0 {
		return f.EMin()
	}
	return int32(e) - f.Bias()
}

// MantissaField returns the mantissa field of x.
func (f Format) MantissaField(x uint64) uint64 {
	return x & f.MantissaMask()
}

// MantissaValue returns the mantissa of x with the implicit bit, if
// any, made explicit.
func (f Format) MantissaValue(x uint64) uint64 {
	if f.hasIntBit {
		return f.MantissaField(x)
	}
	m := f.MantissaField(x)
	if f.ExponentField(x) != 0 {
		m |= 1 << f.FractionWidth()
	}
	return m
}

// IsZero reports whether x is +/- zero.
func (f Format) IsZero(x uint64) bool {
	return f.ExponentField(x) == 0 && f.MantissaField(x) == 0
}

// IsSubnormal reports whether x is subnormal.
func (f Format) IsSubnormal(x uint64) bool {
	return f.ExponentField(x) == 0 && f.MantissaField(x) != 0
}

// IsInf reports whether x is infinite.
func (f Format) IsInf(x uint64) bool {
	return f.ExponentField(x) == f.ExponentInfNaN() && f.MantissaField(x) == 0
}

// IsNaN reports whether x is a NaN (quiet or signaling).
func (f Format) IsNaN(x uint64) bool {
	return f.ExponentField(x) == f.ExponentInfNaN() && f.MantissaField(x) != 0
}

// IsQuietNaN reports whether x is a quiet NaN.
func (f Format) IsQuietNaN(x uint64) bool {
	highbit := uint64(1) << (f.mWidth - 1)
	return f.IsNaN(x) && f.MantissaField(x)&highbit != 0
}

// IsSignalingNaN reports whether x is a signaling NaN.
func (f Format) IsSignalingNaN(x uint64) bool {
	highbit := uint64(1) << (f.mWidth - 1)
	return f.IsNaN(x) && f.MantissaField(x)&highbit == 0
}

// ToQuietNaN converts x to a quiet NaN, preserving its payload.
func (f Format) ToQuietNaN(x uint64) uint64 {
	highbit := uint64(1) << (f.mWidth - 1)
	return x | highbit | f.ExponentMask()
}

// Zero returns zero with the given sign.
func (f Format) Zero(sign bool) uint64 {
	if !sign {
		return 0
	}
	return 1 << (f.eWidth + f.mWidth)
}

// Inf returns infinity with the given sign.
func (f Format) Inf(sign bool) uint64 {
	return f.Zero(sign) | f.ExponentMask()
}

// QuietNaN returns the default quiet NaN with the given sign.
func (f Format) QuietNaN(sign bool) uint64 {
	return f.ToQuietNaN(f.Zero(sign))
}

// MaxNormal returns the largest finite value with the given sign.
func (f Format) MaxNormal(sign bool) uint64 {
	return f.Zero(sign) | (f.ExponentInfNaN()-1)<<f.mWidth | f.MantissaMask()
}

// MinDenormal returns the smallest nonzero magnitude with the given sign.
func (f Format) MinDenormal(sign bool) uint64 {
	return f.Zero(sign) | 1
}

// Pack assembles a bit pattern from a sign, an unbiased exponent and a
// mantissa field. The bias is added here. The mantissa is masked to the
// stored width; the exponent field is masked to the exponent width.
func (f Format) Pack(sign bool, exp int32, mant uint64) uint64 {
	e := uint64(exp+f.Bias()) & f.ExponentInfNaN()
	return f.Zero(sign) | e<<f.mWidth | mant&f.MantissaMask()
}

func (f Format) String() string {
	return fmt.Sprintf("binary%d{e:%d m:%d}", f.Width(), f.eWidth, f.mWidth)
}
