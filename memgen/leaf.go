package memgen

import (
	"fmt"

	"github.com/memtile/memtile/macro"
	"github.com/memtile/memtile/plan"
	"github.com/memtile/memtile/vlog"
)

// buildLeaf emits one physical leaf: a bound vendor macro instance or, when
// no macro is configured, a flip-flop array instance. The leaf owns the
// per-port capability guards and the innermost simulation access tasks.
func buildLeaf(name string, p *plan.Plan, b *macro.Binding, ffName string) *vlog.Module {
	g := &leafGen{
		m:        vlog.NewModule(name),
		p:        p,
		binding:  b,
		ffName:   ffName,
		bits:     p.Tiling.BitsPerBank,
		lineNum:  p.Tiling.LinesPerRow,
		addrBits: max(1, plan.Log2Up(p.Tiling.LinesPerRow)),
	}

	g.ports()

	if b == nil {
		g.fallback()
	} else {
		g.macroInstance()
	}

	g.portGuards()
	g.tasks()

	return g.m
}

type leafGen struct {
	m       *vlog.Module
	p       *plan.Plan
	binding *macro.Binding
	ffName  string

	bits     int
	lineNum  int
	addrBits int
	memPath  string
}

func (g *leafGen) clk(idx int) string {
	if g.p.DualClock && idx == 1 {
		return "clk1"
	}

	return "clk0"
}

func (g *leafGen) ports() {
	g.m.Input("clk0", 1)
	if g.p.DualClock {
		g.m.Input("clk1", 1)
	}

	for idx := 0; idx < g.p.PortNum; idx++ {
		g.m.Comment(fmt.Sprintf("sram port %d: %s", idx, g.p.PortCaps[idx]))
		g.m.Input(sig("wr", idx, ""), 1)
		g.m.Input(sig("wr", idx, "addr"), g.addrBits)
		g.m.Input(sig("wr", idx, "data"), g.bits)
		g.m.Input(sig("wr", idx, "sel"), g.bits)
		g.m.Input(sig("rd", idx, ""), 1)
		g.m.Input(sig("rd", idx, "addr"), g.addrBits)
		g.m.Output(sig("rd", idx, "data"), g.bits)
		g.m.Output(sig("rd", idx, "valid"), 1)
	}
}

// fallback wires port 0's write side and port 1's read side to a flip-flop
// array.
func (g *leafGen) fallback() {
	g.memPath = "sram.mem"

	inst := g.m.Instance(g.ffName, "sram")
	inst.Connect("wr_clk", g.clk(0))
	if g.p.DualClock {
		inst.Connect("rd_clk", g.clk(1))
	}

	inst.Connect("wr", sig("wr", 0, ""))
	inst.Connect("wr_addr", sig("wr", 0, "addr"))
	inst.Connect("wr_data", sig("wr", 0, "data"))
	inst.Connect("wr_sel", sig("wr", 0, "sel"))
	inst.Connect("rd", sig("rd", 1, ""))
	inst.Connect("rd_addr", sig("rd", 1, "addr"))
	inst.ConnectOut("rd_data", sig("rd", 1, "data"))
}

func (g *leafGen) macroInstance() {
	b := g.binding
	g.memPath = "sram." + b.MemPath()

	masks := g.compressMasks()
	inst := g.m.Instance(b.Macro(), "sram")

	for idx := 0; idx < macro.MaxPorts; idx++ {
		pins := b.Pins(idx)

		if b.HasPin(pins.Clock) {
			inst.Connect(pins.Clock, g.clk(idx))
		}

		if b.HasPin(pins.ChipSelect) {
			inst.Connect(pins.ChipSelect, fmt.Sprintf("~(%s | %s)",
				sig("wr", idx, ""), sig("rd", idx, "")))
		}

		if b.HasPin(pins.WriteEnable) {
			inst.Connect(pins.WriteEnable, g.writeEnableExpr(idx))
		}

		if b.HasPin(pins.Address) {
			inst.Connect(pins.Address, g.addrExpr(idx))
		}

		if b.HasPin(pins.DataIn) {
			inst.Connect(pins.DataIn, sig("wr", idx, "data"))
		}

		if b.HasPin(pins.WriteMask) {
			inst.Connect(pins.WriteMask, g.maskExpr(idx, masks))
		}

		if b.HasPin(pins.DataOut) {
			inst.ConnectOut(pins.DataOut, sig("rd", idx, "data"))
		}
	}

	// Physical pins with no canonical role are tied off.
	for pinName, port := range b.Ports() {
		if b.IsBound(pinName) {
			continue
		}

		if port.Dir == macro.In {
			inst.Connect(pinName, vlog.Zeros(port.Bits))
		} else {
			inst.ConnectOut(pinName, "")
		}
	}
}

// compressMasks reduces the bit-wise write select of each writing port to
// one bit per macro granule.
func (g *leafGen) compressMasks() [macro.MaxPorts]string {
	var masks [macro.MaxPorts]string

	bitSel := g.p.BitSel
	if bitSel <= 0 {
		return masks
	}

	for idx := 0; idx < g.p.PortNum; idx++ {
		if !g.p.PortCaps[idx].CanWrite() {
			continue
		}

		pins := g.binding.Pins(idx)
		if !g.binding.HasPin(pins.WriteMask) {
			continue
		}

		maskBits := g.bits / bitSel
		wsel := g.m.Logic(fmt.Sprintf("wsel%d", idx), maskBits)

		if bitSel == 1 {
			g.m.Assign(wsel, sig("wr", idx, "sel"))
		} else {
			for i := 0; i < maskBits; i++ {
				g.m.Assign(vlog.Bit(wsel, i),
					vlog.RedOr(vlog.Bits(sig("wr", idx, "sel"), bitSel, bitSel*i)))
			}
		}

		masks[idx] = wsel
	}

	return masks
}

func (g *leafGen) writeEnableExpr(idx int) string {
	switch g.binding.Convention() {
	case macro.TSMCSplit:
		if idx == 0 {
			return "~" + sig("wr", 0, "")
		}

		return "~" + sig("rd", 1, "")
	default:
		// Shared read/write port: high selects read.
		return sig("rd", idx, "")
	}
}

func (g *leafGen) addrExpr(idx int) string {
	if g.binding.Convention() == macro.TSMCSplit {
		if idx == 0 {
			return sig("wr", 0, "addr")
		}

		return sig("rd", 1, "addr")
	}

	return fmt.Sprintf("%s ? %s : %s",
		sig("wr", idx, ""), sig("wr", idx, "addr"), sig("rd", idx, "addr"))
}

func (g *leafGen) maskExpr(idx int, masks [macro.MaxPorts]string) string {
	pins := g.binding.Pins(idx)
	maskWidth := g.binding.PinWidth(pins.WriteMask)
	activeLow := g.binding.Convention() != macro.OpenRAM

	if masks[idx] == "" {
		// No usable select; enable the full word.
		if activeLow {
			return vlog.Zeros(maskWidth)
		}

		return vlog.Ones(maskWidth)
	}

	if activeLow {
		return "~" + masks[idx]
	}

	return masks[idx]
}

func (g *leafGen) portGuards() {
	for idx := 0; idx < g.p.PortNum; idx++ {
		pcap := g.p.PortCaps[idx]
		clk := g.clk(idx)

		if !pcap.CanWrite() {
			g.m.AllowUnused(sig("wr", idx, ""), sig("wr", idx, "addr"),
				sig("wr", idx, "data"), sig("wr", idx, "sel"))
			g.m.AssertNever(clk, sig("wr", idx, ""),
				fmt.Sprintf("wr%d_on_read_only_port", idx),
				fmt.Sprintf("write detected on read only port %d", idx))
		}

		if pcap.CanRead() {
			g.m.Sample(clk, sig("rd", idx, "valid"), sig("rd", idx, ""), "")
		} else {
			g.m.AllowUnused(sig("rd", idx, ""), sig("rd", idx, "addr"))
			g.m.AssertNever(clk, sig("rd", idx, ""),
				fmt.Sprintf("rd%d_on_write_only_port", idx),
				fmt.Sprintf("read detected on write only port %d", idx))
			g.m.Assign(sig("rd", idx, "data"), vlog.Zeros(g.bits))
			g.m.Assign(sig("rd", idx, "valid"), "1'b0")
		}
	}
}

func (g *leafGen) tasks() {
	addrSlice := vlog.Bits("addr", g.addrBits, 0)

	g.m.Unsynth(fmt.Sprintf(`task automatic write;
    input [31:0] addr; // larger to allow error
    input [%d:0] data;
    begin
        if (addr >= %d) $fatal(1, "write address 0x%%0h is out of memory size 0x%%0h", addr, %d);
        %s[%s] = data;
    end
endtask

task automatic read;
    input [31:0] addr; // larger to allow error
    output [%d:0] data;
    begin
        if (addr >= %d) $fatal(1, "read address 0x%%0h is out of memory size 0x%%0h", addr, %d);
        data = %s[%s];
    end
endtask`,
		g.bits-1, g.lineNum, g.lineNum, g.memPath, addrSlice,
		g.bits-1, g.lineNum, g.lineNum, g.memPath, addrSlice))
}

// sig builds the conventional per-port signal name: wr0, wr0_addr, rd1_data.
func sig(prefix string, idx int, suffix string) string {
	if suffix == "" {
		return fmt.Sprintf("%s%d", prefix, idx)
	}

	return fmt.Sprintf("%s%d_%s", prefix, idx, suffix)
}
