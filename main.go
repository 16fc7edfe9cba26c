// Package main provides the entry point for fpsim.
// fpsim is an IEEE 754 floating-point pipeline simulator.
//
// For the full CLI, use: go run ./cmd/fpsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("fpsim - IEEE 754 floating-point pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: fpsim [options] <op> <operands...>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -width     Operand format width in bits (16, 32, 64)")
	fmt.Println("  -rows      Number of reservation station slots")
	fmt.Println("  -rm        Rounding mode (RNE, RTZ, RTP, RTN, RNA, RTOP, RTON)")
	fmt.Println("  -to        Target width for cvt operations")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/fpsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/fpsim' instead.")
	}
}
