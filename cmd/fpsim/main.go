// Package main provides the entry point for fpsim, a floating-point
// pipeline simulator. It parses operations from the command line,
// drives them through a reservation station, and prints one result
// line per operation.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/xyproto/env/v2"

	"github.com/sarchlab/fpsim/arith"
	"github.com/sarchlab/fpsim/fpnum"
	"github.com/sarchlab/fpsim/timing/latency"
	"github.com/sarchlab/fpsim/timing/station"
)

var (
	width      = flag.Uint("width", uint(env.Int("FPSIM_WIDTH", 32)), "Operand format width in bits")
	rows       = flag.Int("rows", env.Int("FPSIM_ROWS", 4), "Number of reservation station slots")
	rmName     = flag.String("rm", env.Str("FPSIM_RM", "RNE"), "Rounding mode (RNE, RTZ, RTP, RTN, RNA, RTOP, RTON)")
	cvtWidth   = flag.Uint("to", 16, "Target format width for cvt operations")
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	showStats  = flag.Bool("stats", false, "Print station statistics after the run")
)

// operandCount returns how many operand arguments an opcode consumes.
func operandCount(op arith.Opcode) int {
	switch op {
	case arith.OpFMAdd, arith.OpFMSub, arith.OpFNMSub, arith.OpFNMAdd:
		return 3
	case arith.OpCvt:
		return 1
	default:
		return 2
	}
}

// job pairs a parsed request with the slot it is assigned to.
type job struct {
	muxid int
	req   arith.Request
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: fpsim [options] <op> <operands...> [<op> <operands...> ...]\n")
		fmt.Fprintf(os.Stderr, "\nExample: fpsim -width 32 add 0x40a00000 0x40e00000\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	format, err := fpnum.Standard(*width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	rm, err := fpnum.ParseRoundingMode(*rmName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	jobs, err := parseJobs(flag.Args(), format, rm, *rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	table := latency.NewTable()
	if *configPath != "" {
		config, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		if err := config.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error in timing config: %v\n", err)
			os.Exit(1)
		}
		table = latency.NewTableWithConfig(config)
	}

	st, err := station.New(format, *rows, station.WithLatencyTable(table))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	run(st, jobs)

	if *showStats {
		stats := st.Stats()
		fmt.Fprintf(os.Stderr, "ticks=%d ops=%d rejected=%d stalls=%d ops/tick=%.3f\n",
			stats.Ticks, stats.Ops, stats.Rejected, stats.Stalls, stats.OpsPerTick())
	}
}

// parseJobs decodes the positional arguments into requests, assigning
// slots round-robin.
func parseJobs(args []string, format fpnum.Format, rm fpnum.RoundingMode, rows int) ([]job, error) {
	var jobs []job
	for i := 0; i < len(args); {
		op, err := arith.ParseOpcode(args[i])
		if err != nil {
			return nil, err
		}
		i++

		n := operandCount(op)
		if i+n > len(args) {
			return nil, fmt.Errorf("%s needs %d operands", op, n)
		}
		operands := make([]uint64, n)
		for j := 0; j < n; j++ {
			v, err := strconv.ParseUint(args[i+j], 0, 64)
			if err != nil {
				return nil, fmt.Errorf("bad operand %q: %v", args[i+j], err)
			}
			if format.Width() < 64 && v>>format.Width() != 0 {
				return nil, fmt.Errorf("operand %q does not fit in %d bits",
					args[i+j], format.Width())
			}
			operands[j] = v
		}
		i += n

		req := arith.Request{Op: op, RM: rm}
		switch op {
		case arith.OpFMAdd, arith.OpFMSub, arith.OpFNMSub, arith.OpFNMAdd:
			req.A, req.C, req.B = operands[0], operands[1], operands[2]
		case arith.OpCvt:
			target, err := fpnum.Standard(*cvtWidth)
			if err != nil {
				return nil, err
			}
			if target.Width() > 64 {
				return nil, fmt.Errorf("cvt target width %d is not computable", *cvtWidth)
			}
			req.A = operands[0]
			req.Target = target
		default:
			req.A, req.B = operands[0], operands[1]
		}
		jobs = append(jobs, job{muxid: len(jobs) % rows, req: req})
	}
	return jobs, nil
}

// run pushes every job through the station, printing a result line per
// completion: "<muxid> <op> <hex result> <flags>".
func run(st *station.Station, jobs []job) {
	resultWidth := int(st.Format().Width()) / 4
	inflight := make([]int, st.NumSlots())

	next, done := 0, 0
	for done < len(jobs) {
		for next < len(jobs) {
			m := jobs[next].muxid
			if !st.Submit(m, jobs[next].req) {
				break
			}
			inflight[m] = next
			next++
		}

		st.Tick()

		for m := 0; m < st.NumSlots(); m++ {
			resp, ok := st.Poll(m)
			if !ok {
				continue
			}
			j := jobs[inflight[m]]
			hexDigits := resultWidth
			if j.req.Op == arith.OpCvt {
				hexDigits = int(j.req.Target.Width()) / 4
			}
			fmt.Printf("%d %s 0x%0*X %s\n", m, j.req.Op, hexDigits, resp.Bits, resp.Flags)
			done++
		}
	}
}
