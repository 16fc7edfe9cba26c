package fpnum

// Flags is the per-operation exception flag bitset. The bit layout
// matches the conventional fflags ordering. The arithmetic core is
// stateless with respect to flags: every response carries its own set
// and the caller ORs them into whatever persistent status register it
// keeps.
type Flags uint8

const (
	// FlagNX signals an inexact result.
	FlagNX Flags = 1 << iota
	// FlagUF signals underflow (tiny and inexact).
	FlagUF
	// FlagOF signals overflow.
	FlagOF
	// FlagDZ signals division by zero.
	FlagDZ
	// FlagNV signals an invalid operation.
	FlagNV
)

func (fl Flags) String() string {
	if fl == 0 {
		return "-"
	}
	names := []struct {
		f Flags
		s string
	}{{FlagNV, "NV"}, {FlagDZ, "DZ"}, {FlagOF, "OF"}, {FlagUF, "UF"}, {FlagNX, "NX"}}
	out := ""
	for _, n := range names {
		if fl&n.f != 0 {
			if out != "" {
				out += "|"
			}
			out += n.s
		}
	}
	return out
}

// Overflow carries the rounding inputs extracted after normalization:
// the guard, round and sticky bits below the retained precision, the
// mantissa LSB (for ties and round-to-odd), the result sign and the
// rounding mode.
type Overflow struct {
	Guard    bool
	RoundBit bool
	Sticky   bool
	M0       bool
	Sign     bool
	RM       RoundingMode
}

// Inexact reports whether any precision was lost below the mantissa.
func (o Overflow) Inexact() bool {
	return o.Guard || o.RoundBit || o.Sticky
}

// RoundUp reports whether the mantissa must be incremented for the
// current rounding mode.
func (o Overflow) RoundUp() bool {
	switch o.RM {
	case RNE:
		return o.Guard && (o.RoundBit || o.Sticky || o.M0)
	case RNA:
		return o.Guard
	case RTN:
		return o.Sign && (o.Guard || o.RoundBit || o.Sticky)
	case RTP:
		return !o.Sign && (o.Guard || o.RoundBit || o.Sticky)
	case RTOP, RTON:
		return !o.M0 && (o.Guard || o.RoundBit || o.Sticky)
	case RTZ:
		return false
	}
	panic("fpnum: invalid rounding mode in Overflow.RoundUp")
}
