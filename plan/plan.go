// Package plan computes the tiling of a requested logical memory shape over
// an optional physical SRAM macro.
//
// A Plan is an immutable value tree: it carries the bank/row tiling, the
// address partition, the strobe geometry and the runtime decode guards, and
// is computed once per memory-instance generation request. Emission walks
// the plan separately, so the tiling algorithm stays independent of any
// output format.
package plan

import (
	"fmt"

	"github.com/memtile/memtile/macro"
)

// A Request is the logical memory shape the caller asks for.
type Request struct {
	// Bits is the data width. Must be positive.
	Bits int

	// LineNum is the number of addressable lines. Must be at least 2.
	LineNum int

	// BitSel is the byte-select granularity: 0 disables partial writes,
	// 1 selects per bit, n selects per n-bit granule. BitSelInherit takes
	// the granularity from the macro (or 1 without a macro).
	BitSel int

	// DualClock requests a distinct read-side clock.
	DualClock bool

	// SampleOut adds one output register stage to the read path.
	SampleOut bool
}

// BitSelInherit makes the request inherit the byte-select granularity from
// the macro geometry.
const BitSelInherit = -1

// A Plan is the complete, immutable description of one generated memory.
type Plan struct {
	Bits    int
	LineNum int
	BitSel  int

	// Macro is nil for the flip-flop fallback.
	Macro *macro.Geometry

	Tiling    Tiling
	Partition Partition

	PortNum   int
	PortCaps  [macro.MaxPorts]macro.Capability
	DualClock bool
	SampleOut bool

	Guards []Guard
}

// Build computes the tiling plan for the requested shape over the given
// macro geometry (nil selects the flip-flop fallback). Soft ceiling
// violations come back as warning diagnostics unless the limits are strict;
// everything else that fails is a build error and yields no plan.
func Build(req Request, mac *macro.Geometry, lim Limits) (*Plan, []Diagnostic, error) {
	if req.Bits <= 0 {
		return nil, nil, fmt.Errorf("data width %d must be positive", req.Bits)
	}

	if req.LineNum <= 1 {
		return nil, nil, fmt.Errorf("line number %d must be at least 2", req.LineNum)
	}

	var diags []Diagnostic
	warn := func(format string, args ...any) {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	p := &Plan{
		Bits:      req.Bits,
		LineNum:   req.LineNum,
		BitSel:    req.BitSel,
		Macro:     mac,
		SampleOut: req.SampleOut,
	}

	if mac == nil {
		p.Tiling = Tiling{
			BankNum:      1,
			RowNum:       1,
			BitsRoundup:  req.Bits,
			LinesRoundup: req.LineNum,
			BitsPerBank:  req.Bits,
			LinesPerRow:  req.LineNum,
		}
		p.PortNum = macro.MaxPorts
		p.PortCaps = [macro.MaxPorts]macro.Capability{
			macro.CapWrite, macro.CapRead,
		}
		p.DualClock = req.DualClock
		if p.BitSel == BitSelInherit {
			p.BitSel = 1
		}
	} else {
		if req.LineNum < mac.LineNum {
			warn("line number %d is less than macro line number %d",
				req.LineNum, mac.LineNum)
		}

		t := Tiling{
			BitsRoundup:  roundup(req.Bits, mac.Bits),
			LinesRoundup: roundup(req.LineNum, mac.LineNum),
		}
		t.BankNum = t.BitsRoundup / mac.Bits
		t.RowNum = t.LinesRoundup / mac.LineNum
		t.BitsPerBank = t.BitsRoundup / t.BankNum
		t.LinesPerRow = t.LinesRoundup / t.RowNum
		p.Tiling = t

		p.PortNum = mac.PortNum()
		p.PortCaps = mac.PortCaps
		p.DualClock = req.DualClock && mac.DualClock
		if p.BitSel == BitSelInherit {
			p.BitSel = mac.BitSel
		}
	}

	if err := p.Tiling.check(); err != nil {
		return nil, nil, err
	}

	if err := checkBitSel(p.BitSel, p.Bits, p.Tiling); err != nil {
		return nil, nil, err
	}

	if err := lim.check(p.Bits, p.LineNum, p.Tiling, warn); err != nil {
		return nil, nil, err
	}

	p.Partition = Partition{
		AddrBits:     Log2Up(p.LineNum),
		RowSelBits:   Log2Up(p.Tiling.RowNum),
		SRAMAddrBits: Log2Up(p.Tiling.LinesRoundup) - Log2Up(p.Tiling.RowNum),
	}

	p.Guards = decodeGuards(p.PortNum)

	return p, diags, nil
}

func checkBitSel(bitSel, bits int, t Tiling) error {
	if bitSel <= 1 {
		return nil
	}

	// A granularity wider than the word leaves zero strobe bits.
	if bitSel > bits {
		return fmt.Errorf(
			"byte select granularity %d exceeds data width %d",
			bitSel, bits)
	}

	if t.BitsRoundup%bitSel != 0 {
		return fmt.Errorf(
			"byte select granularity %d must divide data width %d",
			bitSel, t.BitsRoundup)
	}

	if t.BitsPerBank%bitSel != 0 {
		return fmt.Errorf(
			"byte select granularity %d must divide bank width %d",
			bitSel, t.BitsPerBank)
	}

	return nil
}

// ReadLatency is the fixed number of cycles between a read request and the
// corresponding valid read data.
func (p *Plan) ReadLatency() int {
	if p.SampleOut {
		return 2
	}

	return 1
}

// StrobeBits is the width of the external strobe vector, or 0 when the plan
// has no byte select.
func (p *Plan) StrobeBits() int {
	if p.BitSel <= 1 {
		return 0
	}

	return p.Bits / p.BitSel
}
