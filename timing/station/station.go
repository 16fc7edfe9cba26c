// Package station provides the reservation station that multiplexes
// many requesters onto one shared floating-point pipeline.
//
// Each requester owns a slot identified by its muxid. A slot admits at
// most one operation at a time; a second Submit while the first is
// still in flight is rejected and the caller retries. Tokens move
// through explicit stage registers, one stage per tick, and results
// fan out to a bounded per-slot completion buffer keyed by muxid.
// Backpressure is real: a full downstream register or buffer delays
// the token, it never drops it.
package station

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/fpsim/arith"
	"github.com/sarchlab/fpsim/fpnum"
	"github.com/sarchlab/fpsim/timing/latency"
)

// Statistics holds station performance statistics.
type Statistics struct {
	// Ticks is the total number of ticks simulated.
	Ticks uint64
	// Ops is the number of operations completed (pushed to a
	// completion buffer).
	Ops uint64
	// Rejected is the number of Submit calls refused because the
	// slot was busy.
	Rejected uint64
	// Stalls is the number of register-holds caused by a busy
	// downstream stage or a full completion buffer.
	Stalls uint64
}

// OpsPerTick returns the completion throughput so far.
func (s Statistics) OpsPerTick() float64 {
	if s.Ticks == 0 {
		return 0
	}
	return float64(s.Ops) / float64(s.Ticks)
}

// slotState tracks the occupancy of one requester slot.
type slotState uint8

const (
	slotIdle slotState = iota
	slotInFlight
)

// token is one operation moving through the stage registers.
type token struct {
	muxid int
	req   arith.Request
	resp  arith.Response
}

// issueRegister holds a token admitted this tick, before it enters
// the execute stage.
type issueRegister struct {
	Valid bool
	Tok   token
}

// execRegister holds the token occupying the execute stage together
// with its remaining latency.
type execRegister struct {
	Valid     bool
	Tok       token
	Remaining uint64
}

// writeRegister holds a finished token waiting to enter its slot's
// completion buffer.
type writeRegister struct {
	Valid bool
	Tok   token
}

// Option is a functional option for configuring the Station.
type Option func(*Station)

// WithLatencyTable sets a custom latency table for operation timing.
func WithLatencyTable(table *latency.Table) Option {
	return func(s *Station) {
		s.latencyTable = table
	}
}

// WithOutputBufferCap sets the capacity of each slot's completion
// buffer. The default is 1, which is all the one-in-flight contract
// needs; a larger value only changes when writeback backpressure
// appears.
func WithOutputBufferCap(c int) Option {
	return func(s *Station) {
		s.outputCap = c
	}
}

// Station schedules operations from numbered slots onto one shared
// pipeline. Stages: issue -> execute (per-op latency) -> writeback.
type Station struct {
	format fpnum.Format

	// Pipeline registers
	issue issueRegister
	exec  execRegister
	write writeRegister

	// Per-slot state
	slots   []slotState
	pending []*arith.Request
	outputs []sim.Buffer

	// Operation timing
	latencyTable *latency.Table
	outputCap    int

	stats Statistics
}

// New creates a Station for the given format with numSlots requester
// slots. The format must be computable, meaning its packed values fit
// in 64 bits; wider formats are descriptor-only and are a
// configuration error here.
func New(format fpnum.Format, numSlots int, opts ...Option) (*Station, error) {
	if format.Width() > 64 {
		return nil, fmt.Errorf(
			"station: format %s is wider than 64 bits and cannot be computed", format)
	}
	if numSlots < 1 {
		return nil, fmt.Errorf("station: need at least 1 slot, got %d", numSlots)
	}

	s := &Station{
		format:       format,
		slots:        make([]slotState, numSlots),
		pending:      make([]*arith.Request, numSlots),
		latencyTable: latency.NewTable(),
		outputCap:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.outputCap < 1 {
		return nil, fmt.Errorf("station: output buffer capacity must be > 0, got %d",
			s.outputCap)
	}

	s.outputs = make([]sim.Buffer, numSlots)
	for i := range s.outputs {
		s.outputs[i] = sim.NewBuffer(
			fmt.Sprintf("Station.Out[%d]", i), s.outputCap)
	}
	return s, nil
}

// NumSlots returns the number of requester slots.
func (s *Station) NumSlots() int {
	return len(s.slots)
}

// Format returns the format the station operates on.
func (s *Station) Format() fpnum.Format {
	return s.format
}

// Stats returns station statistics.
func (s *Station) Stats() Statistics {
	return s.stats
}

// Submit offers a request to the slot muxid. It returns false when the
// slot still has an operation in flight or an unconsumed result; the
// caller retries on a later tick. Nothing is queued on rejection.
//
// A muxid outside the slot range, an invalid opcode or an invalid
// rounding mode are programming errors and panic.
func (s *Station) Submit(muxid int, req arith.Request) bool {
	if muxid < 0 || muxid >= len(s.slots) {
		panic(fmt.Sprintf("station: muxid %d out of range [0,%d)", muxid, len(s.slots)))
	}
	if !req.Op.Valid() {
		panic(fmt.Sprintf("station: invalid opcode %d", req.Op))
	}
	if !req.RM.Valid() {
		panic(fmt.Sprintf("station: invalid rounding mode %d", req.RM))
	}

	if s.slots[muxid] != slotIdle {
		s.stats.Rejected++
		return false
	}
	s.slots[muxid] = slotInFlight
	r := req
	s.pending[muxid] = &r
	return true
}

// Poll pops the completed response for slot muxid, if one is ready.
// Consuming the response returns the slot to idle, making it
// submittable again.
func (s *Station) Poll(muxid int) (arith.Response, bool) {
	if muxid < 0 || muxid >= len(s.slots) {
		panic(fmt.Sprintf("station: muxid %d out of range [0,%d)", muxid, len(s.slots)))
	}
	item := s.outputs[muxid].Pop()
	if item == nil {
		return arith.Response{}, false
	}
	s.slots[muxid] = slotIdle
	return item.(arith.Response), true
}

// Busy reports whether slot muxid has an operation in flight or an
// unconsumed result.
func (s *Station) Busy(muxid int) bool {
	return s.slots[muxid] != slotIdle
}

// Idle reports whether no token occupies any stage register and no
// request is waiting at any slot.
func (s *Station) Idle() bool {
	if s.issue.Valid || s.exec.Valid || s.write.Valid {
		return false
	}
	for _, p := range s.pending {
		if p != nil {
			return false
		}
	}
	return true
}

// Tick advances the pipeline by one step.
//
// Stages are evaluated in reverse order (writeback, execute, issue,
// admit) so each stage sees whether its downstream register freed up
// this tick before deciding to move. A stage that cannot move holds
// its token in place.
func (s *Station) Tick() {
	s.stats.Ticks++

	// Writeback: move the finished token into its slot's completion
	// buffer. A full buffer holds the token and stalls upstream.
	if s.write.Valid {
		out := s.outputs[s.write.Tok.muxid]
		if out.CanPush() {
			out.Push(s.write.Tok.resp)
			s.write = writeRegister{}
			s.stats.Ops++
		} else {
			s.stats.Stalls++
		}
	}

	// Execute: burn down the operation's latency, then compute the
	// result and hand it to writeback once that register is free.
	if s.exec.Valid {
		if s.exec.Remaining > 0 {
			s.exec.Remaining--
		}
		if s.exec.Remaining == 0 {
			if !s.write.Valid {
				tok := s.exec.Tok
				tok.resp = arith.Compute(s.format, tok.req)
				s.write = writeRegister{Valid: true, Tok: tok}
				s.exec = execRegister{}
			} else {
				s.stats.Stalls++
			}
		}
	}

	// Issue: move the admitted token into the execute stage.
	if s.issue.Valid {
		if !s.exec.Valid {
			s.exec = execRegister{
				Valid:     true,
				Tok:       s.issue.Tok,
				Remaining: s.latencyTable.GetLatency(s.issue.Tok.req.Op),
			}
			s.issue = issueRegister{}
		} else {
			s.stats.Stalls++
		}
	}

	// Admit: one waiting request enters the issue register, lowest
	// muxid first (priority fan-in). The rest keep waiting in their
	// slots; their requesters already got a true from Submit.
	if !s.issue.Valid {
		for muxid, req := range s.pending {
			if req == nil {
				continue
			}
			s.issue = issueRegister{
				Valid: true,
				Tok:   token{muxid: muxid, req: *req},
			}
			s.pending[muxid] = nil
			break
		}
	}
}

// Run ticks the station until every submitted operation has reached
// its completion buffer, then returns the number of ticks spent. It is
// a convenience for drivers that submit a batch and then drain.
func (s *Station) Run() uint64 {
	start := s.stats.Ticks
	for !s.Idle() {
		s.Tick()
	}
	return s.stats.Ticks - start
}
