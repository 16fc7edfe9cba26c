// Package arith implements the combinational datapaths of the
// floating-point unit: add/sub, fused multiply-add, format conversion
// and sign injection. Every stage is a pure function from value to
// value; the timing model in timing/station decides when each stage's
// work becomes visible.
package arith

import (
	"fmt"

	"github.com/sarchlab/fpsim/fpnum"
)

// Opcode selects the operation a request performs.
type Opcode uint8

const (
	OpAdd Opcode = iota
	OpSub
	OpFMAdd
	OpFMSub
	OpFNMSub
	OpFNMAdd
	OpCvt
	OpSgnJ
	OpSgnJN
	OpSgnJX

	NumOpcodes
)

func (op Opcode) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpFMAdd:
		return "fmadd"
	case OpFMSub:
		return "fmsub"
	case OpFNMSub:
		return "fnmsub"
	case OpFNMAdd:
		return "fnmadd"
	case OpCvt:
		return "cvt"
	case OpSgnJ:
		return "sgnj"
	case OpSgnJN:
		return "sgnjn"
	case OpSgnJX:
		return "sgnjx"
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// Valid reports whether op names a defined operation.
func (op Opcode) Valid() bool {
	return op < NumOpcodes
}

// ParseOpcode converts an operation name to its Opcode value.
func ParseOpcode(s string) (Opcode, error) {
	for op := Opcode(0); op < NumOpcodes; op++ {
		if s == op.String() {
			return op, nil
		}
	}
	return 0, fmt.Errorf("arith: unknown opcode %q", s)
}

// Request is one operation presented to the unit. A and B are the
// operands of add/sub and sign injection; the fused ops compute
// A*C + B with per-opcode negations; Cvt converts A from the unit's
// format to Target.
type Request struct {
	Op      Opcode
	A, B, C uint64
	RM      fpnum.RoundingMode
	Target  fpnum.Format
}

// Response is the packed result of a request together with the
// exception flags the operation raised. Flags accumulate nowhere in
// this package; the caller owns any sticky status register.
type Response struct {
	Bits  uint64
	Flags fpnum.Flags
}

// Compute runs req through the full datapath for format f and returns
// the rounded, packed result. It panics on an invalid opcode; rounding
// mode validity is the caller's responsibility (the station checks it
// at admission).
func Compute(f fpnum.Format, req Request) Response {
	switch req.Op {
	case OpAdd:
		return add(f, req.A, req.B, req.RM)
	case OpSub:
		// One datapath for both: subtraction flips the sign of B
		// before classification, exactly as a hardware adder does.
		return add(f, req.A, req.B^f.Zero(true), req.RM)
	case OpFMAdd:
		return fusedMulAdd(f, req.A, req.B, req.C, req.RM, false, false)
	case OpFMSub:
		return fusedMulAdd(f, req.A, req.B, req.C, req.RM, false, true)
	case OpFNMSub:
		return fusedMulAdd(f, req.A, req.B, req.C, req.RM, true, false)
	case OpFNMAdd:
		return fusedMulAdd(f, req.A, req.B, req.C, req.RM, true, true)
	case OpCvt:
		return Convert(f, req.Target, req.A, req.RM)
	case OpSgnJ, OpSgnJN, OpSgnJX:
		return Response{Bits: SignInject(f, req.Op, req.A, req.B)}
	}
	panic(fmt.Sprintf("arith: invalid opcode %d", req.Op))
}
