package fpnum

import (
	"fmt"
	"strings"
)

// RoundingMode selects one of the seven supported rounding policies.
// The discriminant values for RNE..RTN match the FPSCR.RN field layout;
// the values above 0b11 are used by miscellaneous instructions only.
type RoundingMode uint8

const (
	// RNE rounds to nearest, ties to the even mantissa.
	RNE RoundingMode = 0b000
	// RTZ rounds toward zero.
	RTZ RoundingMode = 0b001
	// RTP rounds toward +Infinity.
	RTP RoundingMode = 0b010
	// RTN rounds toward -Infinity.
	RTN RoundingMode = 0b011
	// RNA rounds to nearest, ties away from zero.
	RNA RoundingMode = 0b100
	// RTOP rounds to odd; undetermined-sign zeros are positive. Used to
	// avoid double rounding when narrowing through an intermediate
	// format.
	RTOP RoundingMode = 0b101
	// RTON rounds to odd; undetermined-sign zeros are negative.
	RTON RoundingMode = 0b110

	// DefaultRoundingMode is round-to-nearest-even.
	DefaultRoundingMode = RNE

	// NumRoundingModes is the count of valid modes.
	NumRoundingModes = 7
)

// OverflowRoundsToInf reports whether an overflowing result of the
// given sign rounds to infinity rather than to the maximum normal.
func (rm RoundingMode) OverflowRoundsToInf(sign bool) bool {
	switch rm {
	case RNE, RNA:
		return true
	case RTZ, RTOP, RTON:
		return false
	case RTP:
		return !sign
	case RTN:
		return sign
	}
	panic(fmt.Sprintf("fpnum: invalid rounding mode %d", rm))
}

// UnderflowRoundsToZero reports whether an underflowing result of the
// given sign rounds to zero rather than to the minimum denormal.
func (rm RoundingMode) UnderflowRoundsToZero(sign bool) bool {
	switch rm {
	case RNE, RNA, RTZ:
		return true
	case RTOP, RTON:
		return false
	case RTP:
		return sign
	case RTN:
		return !sign
	}
	panic(fmt.Sprintf("fpnum: invalid rounding mode %d", rm))
}

// ZeroSign returns the sign an exact zero result takes when it is not
// otherwise determined (e.g. 1.0 - 1.0). True means negative.
func (rm RoundingMode) ZeroSign() bool {
	switch rm {
	case RNE, RTZ, RTP, RNA, RTOP:
		return false
	case RTN, RTON:
		return true
	}
	panic(fmt.Sprintf("fpnum: invalid rounding mode %d", rm))
}

// Valid reports whether rm is one of the seven defined modes.
func (rm RoundingMode) Valid() bool {
	return rm < NumRoundingModes
}

func (rm RoundingMode) String() string {
	switch rm {
	case RNE:
		return "RNE"
	case RTZ:
		return "RTZ"
	case RTP:
		return "RTP"
	case RTN:
		return "RTN"
	case RNA:
		return "RNA"
	case RTOP:
		return "RTOP"
	case RTON:
		return "RTON"
	}
	return fmt.Sprintf("RoundingMode(%d)", uint8(rm))
}

// ParseRoundingMode converts a mode name ("RNE", "rtz", ...) to its
// RoundingMode value.
func ParseRoundingMode(s string) (RoundingMode, error) {
	for rm := RoundingMode(0); rm < NumRoundingModes; rm++ {
		if strings.EqualFold(s, rm.String()) {
			return rm, nil
		}
	}
	return 0, fmt.Errorf("fpnum: unknown rounding mode %q", s)
}
