package memgen

import (
	"fmt"
	"strings"

	"github.com/memtile/memtile/plan"
	"github.com/memtile/memtile/vlog"
)

// buildRow emits one row of the tiling: the full data width cut across
// BankNum leaf instances. A bank sees a write only when its slice of the
// expanded write mask is nonzero; reads currently issue to every bank.
func buildRow(name string, p *plan.Plan, leafName string) *vlog.Module {
	m := vlog.NewModule(name)

	t := p.Tiling
	bits := t.BitsRoundup
	addrBits := max(1, p.Partition.SRAMAddrBits)

	m.Input("clk0", 1)
	if p.DualClock {
		m.Input("clk1", 1)
	}

	for idx := 0; idx < p.PortNum; idx++ {
		m.Input(sig("wr", idx, ""), 1)
		m.Input(sig("wr", idx, "addr"), addrBits)
		m.Input(sig("wr", idx, "data"), bits)
		m.Input(sig("wr", idx, "sel"), bits)
		m.Input(sig("rd", idx, ""), 1)
		m.Input(sig("rd", idx, "addr"), addrBits)
		m.Output(sig("rd", idx, "data"), bits)
		m.Output(sig("rd", idx, "valid"), 1)
	}

	for idx := 0; idx < p.PortNum; idx++ {
		bankWrSel := m.Logic(fmt.Sprintf("bank_wr%d_sel", idx), t.BankNum)
		bankRdSel := m.Logic(fmt.Sprintf("bank_rd%d_sel", idx), t.BankNum)

		for x := 0; x < t.BankNum; x++ {
			wrBank := m.Logic(fmt.Sprintf("wr%d_bank%d", idx, x), 1)
			m.Assign(wrBank, fmt.Sprintf("%s & %s",
				sig("wr", idx, ""), vlog.Bit(bankWrSel, x)))

			selSlice := m.Logic(fmt.Sprintf("wr%d_sel%d", idx, x), t.BitsPerBank)
			m.Assign(selSlice,
				vlog.Bits(sig("wr", idx, "sel"), t.BitsPerBank, t.BankStart(x)))
			m.Assign(vlog.Bit(bankWrSel, x), vlog.RedOr(selSlice))

			// Read-side bank gating is reserved for a read-enable feature.
			m.Assign(vlog.Bit(bankRdSel, x), "1'b1")
		}
	}

	for x := 0; x < t.BankNum; x++ {
		inst := m.Instance(leafName, fmt.Sprintf("bank%d", x))
		inst.Connect("clk0", "clk0")
		if p.DualClock {
			inst.Connect("clk1", "clk1")
		}

		for idx := 0; idx < p.PortNum; idx++ {
			inst.Connect(sig("wr", idx, ""), fmt.Sprintf("wr%d_bank%d", idx, x))
			inst.Connect(sig("wr", idx, "addr"), sig("wr", idx, "addr"))
			inst.Connect(sig("wr", idx, "data"),
				vlog.Bits(sig("wr", idx, "data"), t.BitsPerBank, t.BankStart(x)))
			inst.Connect(sig("wr", idx, "sel"), fmt.Sprintf("wr%d_sel%d", idx, x))
			inst.Connect(sig("rd", idx, ""), fmt.Sprintf("%s & %s",
				sig("rd", idx, ""),
				vlog.Bit(fmt.Sprintf("bank_rd%d_sel", idx), x)))
			inst.Connect(sig("rd", idx, "addr"), sig("rd", idx, "addr"))
			inst.ConnectOut(sig("rd", idx, "data"),
				vlog.Bits(sig("rd", idx, "data"), t.BitsPerBank, t.BankStart(x)))
			inst.ConnectOut(sig("rd", idx, "valid"), "")
		}
	}

	clk := func(idx int) string {
		if p.DualClock && idx == 1 {
			return "clk1"
		}

		return "clk0"
	}

	for idx := 0; idx < p.PortNum; idx++ {
		m.Sample(clk(idx), sig("rd", idx, "valid"), sig("rd", idx, ""), "")

		for _, g := range bankGuards(p, idx) {
			vector := fmt.Sprintf("bank_%s%d_sel", g.Op, idx)
			m.AssertNever(clk(idx),
				fmt.Sprintf("%s & ~|%s", sig(g.Op.String(), idx, ""), vector),
				g.Name(), g.Message(), sig(g.Op.String(), idx, "addr"))
		}
	}

	m.Unsynth(rowTasks(t))

	return m
}

func bankGuards(p *plan.Plan, idx int) []plan.Guard {
	var guards []plan.Guard
	for _, g := range p.Guards {
		if g.Kind == plan.ZeroBankSelect && g.Port == idx {
			guards = append(guards, g)
		}
	}

	return guards
}

// rowTasks forwards simulation accesses to every bank, slicing the data
// word per bank.
func rowTasks(t plan.Tiling) string {
	var sb strings.Builder

	for _, op := range []string{"write", "read"} {
		dir := "input"
		if op == "read" {
			dir = "output"
		}

		fmt.Fprintf(&sb, `task automatic %s;
    input [31:0] addr; // larger to allow error
    %s [%d:0] data;
    begin
`, op, dir, t.BitsRoundup-1)

		for x := 0; x < t.BankNum; x++ {
			fmt.Fprintf(&sb, "        bank%d.%s(addr, %s);\n",
				x, op, vlog.Bits("data", t.BitsPerBank, t.BankStart(x)))
		}

		sb.WriteString("    end\nendtask\n\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
