package arith_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fpsim/arith"
	"github.com/sarchlab/fpsim/fpnum"
)

func fmaF64(op arith.Opcode, a, c, b float64, rm fpnum.RoundingMode) arith.Response {
	return arith.Compute(fpnum.MustStandard(64), arith.Request{
		Op: op,
		A:  math.Float64bits(a),
		C:  math.Float64bits(c),
		B:  math.Float64bits(b),
		RM: rm,
	})
}

var _ = Describe("FusedMulAdd", func() {
	f16 := fpnum.MustStandard(16)
	f64 := fpnum.MustStandard(64)

	Describe("Directed cases", func() {
		It("should compute 5*7+1 = 36 in binary16", func() {
			r := arith.Compute(f16, arith.Request{
				Op: arith.OpFMAdd, A: 0x4500, C: 0x4700, B: 0x3C00, RM: fpnum.RNE,
			})
			Expect(r.Bits).To(Equal(uint64(0x5080)))
			Expect(r.Flags).To(Equal(fpnum.Flags(0)))
		})

		It("should round the product and addend together, not separately", func() {
			// (1 + 2^-27) * (1 + 2^-27) - 1: separate rounding of the
			// product loses the 2^-54 term and gives exactly 2^-26;
			// the fused result keeps it.
			x := 1 + 0x1p-27
			r := fmaF64(arith.OpFMAdd, x, x, -1, fpnum.RNE)
			Expect(math.Float64frombits(r.Bits)).To(Equal(math.FMA(x, x, -1)))
			Expect(math.Float64frombits(r.Bits)).NotTo(Equal(x*x - 1))
		})

		It("should survive a dominating addend", func() {
			r := fmaF64(arith.OpFMAdd, 0x1p-500, 0x1p-500, 0x1p500, fpnum.RNE)
			Expect(math.Float64frombits(r.Bits)).To(Equal(0x1p500))
			Expect(r.Flags).To(Equal(fpnum.FlagNX))
		})

		It("should survive a dominating product", func() {
			r := fmaF64(arith.OpFMAdd, 0x1p500, 0x1p400, 0x1p-500, fpnum.RNE)
			Expect(math.Float64frombits(r.Bits)).To(Equal(0x1p900))
			Expect(r.Flags).To(Equal(fpnum.FlagNX))
		})
	})

	Describe("Special cases", func() {
		It("should raise NV for Inf * 0", func() {
			r := fmaF64(arith.OpFMAdd, math.Inf(1), 0, 1, fpnum.RNE)
			Expect(r.Bits).To(Equal(f64.QuietNaN(false)))
			Expect(r.Flags).To(Equal(fpnum.FlagNV))
		})

		It("should raise NV when the product fights an opposite infinity", func() {
			r := fmaF64(arith.OpFMAdd, math.Inf(1), 1, math.Inf(-1), fpnum.RNE)
			Expect(r.Bits).To(Equal(f64.QuietNaN(false)))
			Expect(r.Flags).To(Equal(fpnum.FlagNV))
		})

		It("should forward an infinite product", func() {
			r := fmaF64(arith.OpFMAdd, math.Inf(-1), 2, 1, fpnum.RNE)
			Expect(r.Bits).To(Equal(f64.Inf(true)))
			Expect(r.Flags).To(Equal(fpnum.Flags(0)))
		})

		It("should forward an infinite addend", func() {
			r := fmaF64(arith.OpFMAdd, 2, 3, math.Inf(-1), fpnum.RNE)
			Expect(r.Bits).To(Equal(f64.Inf(true)))
		})

		It("should propagate NaN operands in A, B, C priority", func() {
			qnanB := uint64(0x7FF8000000000002)
			qnanC := uint64(0x7FF8000000000003)
			r := arith.Compute(f64, arith.Request{
				Op: arith.OpFMAdd,
				A:  math.Float64bits(1), C: qnanC, B: qnanB,
				RM: fpnum.RNE,
			})
			Expect(r.Bits).To(Equal(qnanB))
		})

		It("should quiet a signaling NaN operand and raise NV", func() {
			snan := uint64(0x7FF0000000000001)
			r := arith.Compute(f64, arith.Request{
				Op: arith.OpFMAdd,
				A:  snan, C: math.Float64bits(1), B: math.Float64bits(1),
				RM: fpnum.RNE,
			})
			Expect(r.Bits).To(Equal(uint64(0x7FF8000000000001)))
			Expect(r.Flags).To(Equal(fpnum.FlagNV))
		})

		It("should forward the addend when the product is zero", func() {
			r := fmaF64(arith.OpFMAdd, 0, 5, 3, fpnum.RNE)
			Expect(math.Float64frombits(r.Bits)).To(Equal(3.0))
		})

		It("should negate the forwarded addend for fmsub", func() {
			r := fmaF64(arith.OpFMSub, 0, 5, 3, fpnum.RNE)
			Expect(math.Float64frombits(r.Bits)).To(Equal(-3.0))
		})

		It("should resolve zero-product against zero-addend signs", func() {
			// (+0 * 5) + (-0): signs differ, mode decides.
			rne := fmaF64(arith.OpFMAdd, 0, 5, math.Copysign(0, -1), fpnum.RNE)
			Expect(rne.Bits).To(Equal(f64.Zero(false)))
			rtn := fmaF64(arith.OpFMAdd, 0, 5, math.Copysign(0, -1), fpnum.RTN)
			Expect(rtn.Bits).To(Equal(f64.Zero(true)))
		})
	})

	Describe("Cancellation", func() {
		It("should give the mode's zero sign on exact cancellation", func() {
			Expect(fmaF64(arith.OpFMAdd, 1, 1, -1, fpnum.RNE).Bits).
				To(Equal(f64.Zero(false)))
			Expect(fmaF64(arith.OpFMAdd, 1, 1, -1, fpnum.RTN).Bits).
				To(Equal(f64.Zero(true)))
			Expect(fmaF64(arith.OpFMAdd, 1, 1, -1, fpnum.RTON).Bits).
				To(Equal(f64.Zero(true)))
		})
	})

	Describe("Negating variants", func() {
		It("should match the sign identities on finite operands", func() {
			rng := rand.New(rand.NewSource(45))
			for i := 0; i < 5000; i++ {
				a := randFinite(rng)
				c := randFinite(rng)
				b := randFinite(rng)

				Expect(math.Float64frombits(
					fmaF64(arith.OpFMSub, a, c, b, fpnum.RNE).Bits)).
					To(Equal(math.FMA(a, c, -b)))
				Expect(math.Float64frombits(
					fmaF64(arith.OpFNMSub, a, c, b, fpnum.RNE).Bits)).
					To(Equal(math.FMA(-a, c, b)))
				Expect(math.Float64frombits(
					fmaF64(arith.OpFNMAdd, a, c, b, fpnum.RNE).Bits)).
					To(Equal(math.FMA(-a, c, -b)))
			}
		})
	})

	Describe("Against the runtime fused multiply-add", func() {
		It("should bit-match math.FMA on random finite operands", func() {
			rng := rand.New(rand.NewSource(46))
			for i := 0; i < 20000; i++ {
				a := randFinite(rng)
				c := randFinite(rng)
				b := randFinite(rng)

				want := math.Float64bits(math.FMA(a, c, b))
				got := fmaF64(arith.OpFMAdd, a, c, b, fpnum.RNE).Bits
				Expect(got).To(Equal(want), "fma(%x, %x, %x)", a, c, b)
			}
		})

		It("should bit-match math.FMA on near-cancelling operands", func() {
			rng := rand.New(rand.NewSource(47))
			for i := 0; i < 20000; i++ {
				a := randFinite(rng)
				c := randFinite(rng)
				// Addend close to -a*c forces heavy cancellation.
				b := -a * c * (1 + float64(rng.Intn(5)-2)*0x1p-50)
				if math.IsInf(b, 0) || b != b {
					continue
				}

				want := math.Float64bits(math.FMA(a, c, b))
				got := fmaF64(arith.OpFMAdd, a, c, b, fpnum.RNE).Bits
				Expect(got).To(Equal(want), "fma(%x, %x, %x)", a, c, b)
			}
		})

		It("should bit-match math.FMA when results go subnormal", func() {
			rng := rand.New(rand.NewSource(48))
			for i := 0; i < 20000; i++ {
				a := randScaled(rng, -540, -500)
				c := randScaled(rng, -540, -500)
				b := randScaled(rng, -1074, -1020)

				want := math.Float64bits(math.FMA(a, c, b))
				got := fmaF64(arith.OpFMAdd, a, c, b, fpnum.RNE).Bits
				Expect(got).To(Equal(want), "fma(%x, %x, %x)", a, c, b)
			}
		})
	})
})

// randFinite returns a finite float64 with a moderate exponent, so
// products stay finite.
func randFinite(rng *rand.Rand) float64 {
	return randScaled(rng, -120, 120)
}

// randScaled returns m * 2^e with a random full-width mantissa and a
// random exponent in [lo, hi], negated half the time.
func randScaled(rng *rand.Rand, lo, hi int) float64 {
	m := 1 + float64(rng.Uint64()&(1<<52-1))*0x1p-52
	e := lo + rng.Intn(hi-lo+1)
	v := m * math.Pow(2, float64(e))
	if rng.Intn(2) == 1 {
		v = -v
	}
	return v
}
