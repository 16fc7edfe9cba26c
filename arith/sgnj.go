package arith

import "github.com/sarchlab/fpsim/fpnum"

// SignInject returns A's magnitude with a sign taken from B (sgnj),
// from inverted B (sgnjn), or from A xor B (sgnjx). Pure bit surgery:
// NaNs pass through unquieted and no flags are raised.
func SignInject(f fpnum.Format, op Opcode, aBits, bBits uint64) uint64 {
	s := f.SignField(bBits)
	switch op {
	case OpSgnJN:
		s ^= 1
	case OpSgnJX:
		s ^= f.SignField(aBits)
	}
	return aBits&^f.Zero(true) | f.Zero(s != 0)
}
