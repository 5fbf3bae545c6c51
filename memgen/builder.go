// Package memgen generates the Verilog module hierarchy of one memory
// instance: a top-level composer that decodes rows, a row module that cuts
// the data width across banks, a leaf that wraps the physical macro or a
// flip-flop array, and a read-data multiplexer.
package memgen

import (
	"fmt"

	"github.com/memtile/memtile/macro"
	"github.com/memtile/memtile/plan"
	"github.com/memtile/memtile/vlog"
)

// A Builder can build memory instances.
type Builder struct {
	bits      int
	lineNum   int
	bitSel    int
	dualClock bool
	sampleOut bool
	clocks    [2]string
	desc      macro.Descriptor
	limits    plan.Limits
	registry  *vlog.Registry
}

// MakeBuilder returns a builder with default configuration: a 32-bit wide,
// 1024-line single-clock memory with no physical macro.
func MakeBuilder() Builder {
	return Builder{
		bits:    32,
		lineNum: 1024,
		bitSel:  plan.BitSelInherit,
		clocks:  [2]string{"clk0", "clk1"},
		limits:  plan.DefaultLimits(),
	}
}

// WithBits sets the logical data width.
func (b Builder) WithBits(bits int) Builder {
	b.bits = bits
	return b
}

// WithLineNum sets the number of addressable lines.
func (b Builder) WithLineNum(lineNum int) Builder {
	b.lineNum = lineNum
	return b
}

// WithBitSel sets the byte-select granularity. Zero disables partial
// writes; the default inherits the granularity from the macro.
func (b Builder) WithBitSel(bitSel int) Builder {
	b.bitSel = bitSel
	return b
}

// WithDualClock requests a separate read-side clock. The request is honored
// only when the macro (if any) has one.
func (b Builder) WithDualClock(dualClock bool) Builder {
	b.dualClock = dualClock
	return b
}

// WithClocks sets the external clock port names.
func (b Builder) WithClocks(wrClk, rdClk string) Builder {
	if wrClk == "" || rdClk == "" {
		panic("memgen: clock names must not be empty")
	}

	b.clocks = [2]string{wrClk, rdClk}

	return b
}

// WithSampleOut adds one register stage to the read-data output.
func (b Builder) WithSampleOut(sampleOut bool) Builder {
	b.sampleOut = sampleOut
	return b
}

// WithMacro sets the physical SRAM macro to tile. Without a macro the
// memory is built from flip-flop arrays.
func (b Builder) WithMacro(d macro.Descriptor) Builder {
	b.desc = d
	return b
}

// WithLimits overrides the planner capacity ceilings.
func (b Builder) WithLimits(lim plan.Limits) Builder {
	b.limits = lim
	return b
}

// WithRegistry shares a module-name registry across builds, so several
// memories can be emitted into one file without name collisions.
func (b Builder) WithRegistry(reg *vlog.Registry) Builder {
	b.registry = reg
	return b
}

// Build plans the tiling and emits the module hierarchy. The name becomes
// the top-level module name; subordinate modules derive from it.
func (b Builder) Build(name string) (*Memory, error) {
	reg := b.registry
	if reg == nil {
		reg = vlog.NewRegistry()
	}

	var (
		binding *macro.Binding
		geo     *macro.Geometry
	)

	if b.desc != nil {
		var err error

		binding, err = macro.Bind(b.desc)
		if err != nil {
			return nil, fmt.Errorf("macro %s: %w", b.desc.Name(), err)
		}

		g := binding.Geometry()
		geo = &g
	}

	req := plan.Request{
		Bits:      b.bits,
		LineNum:   b.lineNum,
		BitSel:    b.bitSel,
		DualClock: b.dualClock,
		SampleOut: b.sampleOut,
	}

	p, diags, err := plan.Build(req, geo, b.limits)
	if err != nil {
		return nil, err
	}

	diags = append(diags, maskDiagnostics(p, binding)...)

	base := name
	if base == "" {
		base = "mem"
	}

	topName := reg.Claim(base)
	rowName := reg.Claim(topName + "_row")
	leafName := reg.Claim(topName + "_leaf")
	muxName := reg.Claim(topName + "_mux")

	mem := &Memory{
		Plan:        p,
		Binding:     binding,
		Diagnostics: diags,
		TopName:     topName,
	}

	ffName := ""
	if binding == nil {
		ffName = reg.Claim(topName + "_ff")
		mem.Modules = append(mem.Modules, buildFFArray(ffName, ffConfig{
			depth:     p.Tiling.LinesPerRow,
			bits:      p.Tiling.BitsPerBank,
			dualClock: p.DualClock,
		}))
	}

	mem.Modules = append(mem.Modules,
		buildLeaf(leafName, p, binding, ffName),
		buildRow(rowName, p, leafName),
		buildMux(muxName, muxConfig{
			num:      p.Tiling.RowNum,
			bits:     p.Tiling.BitsRoundup,
			sample:   p.SampleOut,
			hasValid: true,
		}),
		buildTop(topName, p, rowName, muxName, b.clocks),
	)

	return mem, nil
}

// maskDiagnostics warns when partial writes were requested over a macro
// that has no write-mask pin. Such writes silently replace the full word.
func maskDiagnostics(p *plan.Plan, b *macro.Binding) []plan.Diagnostic {
	if p.BitSel <= 0 || b == nil {
		return nil
	}

	for idx := 0; idx < p.PortNum; idx++ {
		if !p.PortCaps[idx].CanWrite() {
			continue
		}

		if b.HasPin(b.Pins(idx).WriteMask) {
			continue
		}

		return []plan.Diagnostic{{
			Severity: plan.SeverityWarning,
			Message: fmt.Sprintf(
				"macro %s has no write mask pin, partial writes replace the full word",
				b.Macro()),
		}}
	}

	return nil
}
