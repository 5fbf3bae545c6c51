package memgen

import (
	"fmt"
	"strings"

	"github.com/memtile/memtile/plan"
	"github.com/memtile/memtile/vlog"
)

// buildTop emits the externally visible memory module. It exposes only the
// ports each side is capable of, expands the write strobe to a bit-wise
// select, decodes the row-select field of the address, and muxes the read
// data of the selected row back together.
func buildTop(name string, p *plan.Plan, rowName, muxName string, clocks [2]string) *vlog.Module {
	g := &topGen{
		m:       vlog.NewModule(name),
		p:       p,
		rowName: rowName,
		muxName: muxName,
		clocks:  clocks,
	}

	g.ports()

	for idx := 0; idx < p.PortNum; idx++ {
		if p.PortCaps[idx].CanWrite() {
			g.writeSelect(idx)
		}

		g.rowSelect(idx)
	}

	g.rows()

	for idx := 0; idx < p.PortNum; idx++ {
		if p.PortCaps[idx].CanRead() {
			g.readPath(idx)
		}
	}

	g.guards()
	g.m.Unsynth(g.tasks())

	return g.m
}

type topGen struct {
	m       *vlog.Module
	p       *plan.Plan
	rowName string
	muxName string
	clocks  [2]string
}

func (g *topGen) clk(idx int) string {
	if g.p.DualClock && idx == 1 {
		return g.clocks[1]
	}

	return g.clocks[0]
}

func (g *topGen) ports() {
	g.m.Comment(fmt.Sprintf("banks: %d, rows: %d",
		g.p.Tiling.BankNum, g.p.Tiling.RowNum))

	g.m.Input(g.clocks[0], 1)
	if g.p.DualClock {
		g.m.Input(g.clocks[1], 1)
	}

	addrBits := g.p.Partition.AddrBits

	for idx := 0; idx < g.p.PortNum; idx++ {
		pcap := g.p.PortCaps[idx]
		g.m.Comment(fmt.Sprintf("port %d: %s", idx, pcap))

		if pcap.CanWrite() {
			g.m.Input(sig("wr", idx, ""), 1)
			g.m.Input(sig("wr", idx, "addr"), addrBits)
			g.m.Input(sig("wr", idx, "data"), g.p.Bits)

			switch {
			case g.p.BitSel == 1:
				g.m.Input(sig("wr", idx, "sel"), g.p.Bits)
			case g.p.BitSel > 1:
				g.m.Input(sig("wr", idx, "strb"), g.p.StrobeBits())
			}
		}

		if pcap.CanRead() {
			g.m.Input(sig("rd", idx, ""), 1)
			g.m.Input(sig("rd", idx, "addr"), addrBits)
			g.m.Output(sig("rd", idx, "data"), g.p.Bits)
			g.m.Output(sig("rd", idx, "valid"), 1)
		}
	}
}

// writeSelect expands the external strobe (or bit select) to a full-width
// internal bit select. Pad bits above the logical width are never written.
func (g *topGen) writeSelect(idx int) {
	bits := g.p.Tiling.BitsRoundup
	full := g.m.Logic(sig("wr", idx, "sel_full"), bits)

	switch {
	case g.p.BitSel == 0:
		g.m.Assign(full, vlog.Pad(bits-g.p.Bits, vlog.Ones(g.p.Bits)))

	case g.p.BitSel == 1:
		g.m.Assign(full, vlog.Pad(bits-g.p.Bits, sig("wr", idx, "sel")))

	default:
		for _, s := range plan.StrobeSlices(g.p.Bits, g.p.BitSel) {
			g.m.Assign(vlog.Bits(full, s.Width, s.Start),
				vlog.Repl(s.Width, vlog.Bit(sig("wr", idx, "strb"), s.StrobeBit)))
		}

		if pad := bits - g.p.Bits; pad > 0 {
			g.m.Assign(vlog.Bits(full, pad, g.p.Bits), vlog.Zeros(pad))
		}
	}
}

// rowSelect decodes the row field of each address into a one-hot vector.
func (g *topGen) rowSelect(idx int) {
	pcap := g.p.PortCaps[idx]
	part := g.p.Partition

	for _, op := range []plan.AccessOp{plan.OpWrite, plan.OpRead} {
		if op == plan.OpWrite && !pcap.CanWrite() {
			continue
		}

		if op == plan.OpRead && !pcap.CanRead() {
			continue
		}

		vec := g.m.Logic(rowSel(op, idx), g.p.Tiling.RowNum)

		for y := 0; y < g.p.Tiling.RowNum; y++ {
			if g.p.Tiling.RowNum == 1 {
				g.m.Assign(vec, "1'b1")

				continue
			}

			field := vlog.Bits(sig(op.String(), idx, "addr"),
				part.RowSelBits, part.SRAMAddrBits)
			g.m.Assign(vlog.Bit(vec, y),
				fmt.Sprintf("%s == %s", field, vlog.Dec(y, part.RowSelBits)))
		}
	}
}

func (g *topGen) rows() {
	t := g.p.Tiling

	for y := 0; y < t.RowNum; y++ {
		inst := g.m.Instance(g.rowName, fmt.Sprintf("row%d", y))
		inst.Connect("clk0", g.clk(0))
		if g.p.DualClock {
			inst.Connect("clk1", g.clk(1))
		}

		for idx := 0; idx < g.p.PortNum; idx++ {
			pcap := g.p.PortCaps[idx]

			if pcap.CanWrite() {
				inst.Connect(sig("wr", idx, ""), fmt.Sprintf("%s & %s",
					sig("wr", idx, ""), vlog.Bit(rowSel(plan.OpWrite, idx), y)))
				inst.Connect(sig("wr", idx, "addr"),
					g.leafAddr(sig("wr", idx, "addr")))
				inst.Connect(sig("wr", idx, "data"),
					vlog.Pad(t.BitsRoundup-g.p.Bits, sig("wr", idx, "data")))
				inst.Connect(sig("wr", idx, "sel"), sig("wr", idx, "sel_full"))
			} else {
				inst.Connect(sig("wr", idx, ""), "1'b0")
				inst.Connect(sig("wr", idx, "addr"), vlog.Zeros(g.leafAddrBits()))
				inst.Connect(sig("wr", idx, "data"), vlog.Zeros(t.BitsRoundup))
				inst.Connect(sig("wr", idx, "sel"), vlog.Zeros(t.BitsRoundup))
			}

			if pcap.CanRead() {
				inst.Connect(sig("rd", idx, ""), fmt.Sprintf("%s & %s",
					sig("rd", idx, ""), vlog.Bit(rowSel(plan.OpRead, idx), y)))
				inst.Connect(sig("rd", idx, "addr"),
					g.leafAddr(sig("rd", idx, "addr")))
				inst.ConnectOut(sig("rd", idx, "data"),
					g.m.Logic(fmt.Sprintf("rd%d_data_row%d", idx, y), t.BitsRoundup))
			} else {
				inst.Connect(sig("rd", idx, ""), "1'b0")
				inst.Connect(sig("rd", idx, "addr"), vlog.Zeros(g.leafAddrBits()))
				inst.ConnectOut(sig("rd", idx, "data"), "")
			}

			inst.ConnectOut(sig("rd", idx, "valid"), "")
		}
	}
}

// readPath registers the row select for the mux cycle, muxes the row data
// and truncates the roundup padding. The valid strobe travels through the
// mux so it picks up the same output latency as the data.
func (g *topGen) readPath(idx int) {
	t := g.p.Tiling
	clk := g.clk(idx)

	selQ := g.m.Logic(fmt.Sprintf("rd%d_row_sel_q", idx), t.RowNum)
	g.m.Sample(clk, selQ, rowSel(plan.OpRead, idx), sig("rd", idx, ""))

	validQ := g.m.Logic(fmt.Sprintf("rd%d_valid_q", idx), 1)
	g.m.Sample(clk, validQ, sig("rd", idx, ""), "")

	pad := g.m.Logic(fmt.Sprintf("rd%d_data_pad", idx), t.BitsRoundup)

	inst := g.m.Instance(g.muxName, fmt.Sprintf("mux%d", idx))
	if g.p.SampleOut {
		inst.Connect("clk", clk)
	}
	inst.Connect("valid", validQ)
	inst.Connect("sel", selQ)
	for y := 0; y < t.RowNum; y++ {
		inst.Connect(din(y), fmt.Sprintf("rd%d_data_row%d", idx, y))
	}
	inst.ConnectOut("out", pad)
	inst.ConnectOut("valid_out", sig("rd", idx, "valid"))

	g.m.Assign(sig("rd", idx, "data"), vlog.Bits(pad, g.p.Bits, 0))

	if t.BitsRoundup > g.p.Bits {
		g.m.AllowUnused(vlog.Bits(pad, t.BitsRoundup-g.p.Bits, g.p.Bits))
	}
}

func (g *topGen) guards() {
	for _, gd := range g.p.Guards {
		if gd.Kind != plan.ZeroRowSelect {
			continue
		}

		pcap := g.p.PortCaps[gd.Port]
		if gd.Op == plan.OpWrite && !pcap.CanWrite() {
			continue
		}

		if gd.Op == plan.OpRead && !pcap.CanRead() {
			continue
		}

		g.m.AssertNever(g.clk(gd.Port),
			fmt.Sprintf("%s & ~|%s",
				sig(gd.Op.String(), gd.Port, ""), rowSel(gd.Op, gd.Port)),
			gd.Name(), gd.Message(), sig(gd.Op.String(), gd.Port, "addr"))
	}
}

func (g *topGen) leafAddrBits() int {
	return max(1, g.p.Partition.SRAMAddrBits)
}

// leafAddr slices the intra-row field out of an external address, zero
// padding when the external address is narrower.
func (g *topGen) leafAddr(name string) string {
	bits := g.leafAddrBits()
	if g.p.Partition.AddrBits >= bits {
		return vlog.Bits(name, bits, 0)
	}

	return vlog.Pad(bits-g.p.Partition.AddrBits, name)
}

func (g *topGen) tasks() string {
	var sb strings.Builder

	t := g.p.Tiling
	part := g.p.Partition

	dispatch := func(op string) {
		if t.RowNum == 1 {
			fmt.Fprintf(&sb, "        row0.%s(addr, data);\n", op)

			return
		}

		field := vlog.Bits("addr", part.RowSelBits, part.SRAMAddrBits)
		for y := 0; y < t.RowNum; y++ {
			fmt.Fprintf(&sb, "        if (%s == %s) row%d.%s(%s, data);\n",
				field, vlog.Dec(y, part.RowSelBits), y, op,
				vlog.Bits("addr", part.SRAMAddrBits, 0))
		}
	}

	for _, op := range []string{"write", "read"} {
		dir := "input"
		if op == "read" {
			dir = "output"
		}

		fmt.Fprintf(&sb, `task automatic %s;
    input [31:0] addr; // larger to allow error
    %s [%d:0] data;
    begin
        if (addr >= %d) $fatal(1, "%s address 0x%%0h is out of memory size 0x%%0h", addr, %d);
`, op, dir, t.BitsRoundup-1, g.p.LineNum, op, g.p.LineNum)
		dispatch(op)
		sb.WriteString("    end\nendtask\n\n")
	}

	fmt.Fprintf(&sb, `reg [%d:0] load_mem [0:%d];
integer load_i;

task automatic write_file;
    input [2047:0] filename;
    begin
        $readmemh(filename, load_mem);
        for (load_i = 0; load_i < %d; load_i = load_i + 1)
            write(load_i[31:0], load_mem[load_i]);
    end
endtask`,
		t.BitsRoundup-1, g.p.LineNum-1, g.p.LineNum)

	return sb.String()
}

func rowSel(op plan.AccessOp, idx int) string {
	return fmt.Sprintf("%s%d_row_sel", op, idx)
}
