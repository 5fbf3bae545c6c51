package memgen

import (
	"fmt"

	"github.com/memtile/memtile/plan"
	"github.com/memtile/memtile/vlog"
)

// ffConfig parameterizes the flip-flop register-array leaf used when no
// physical macro is available.
type ffConfig struct {
	depth     int
	bits      int
	dualClock bool
}

// buildFFArray emits a register-array memory with per-bit write select and
// a sampled read port.
func buildFFArray(name string, cfg ffConfig) *vlog.Module {
	m := vlog.NewModule(name)
	addrBits := max(1, plan.Log2Up(cfg.depth))

	wrClk := m.Input("wr_clk", 1)
	rdClk := wrClk
	if cfg.dualClock {
		rdClk = m.Input("rd_clk", 1)
	}

	wr := m.Input("wr", 1)
	wrAddr := m.Input("wr_addr", addrBits)
	wrData := m.Input("wr_data", cfg.bits)
	wrSel := m.Input("wr_sel", cfg.bits)
	rd := m.Input("rd", 1)
	rdAddr := m.Input("rd_addr", addrBits)
	rdData := m.Output("rd_data", cfg.bits)

	mem := m.LogicArray("mem", cfg.depth, cfg.bits)

	m.Sample(wrClk, fmt.Sprintf("%s[%s]", mem, wrAddr),
		fmt.Sprintf("(%s & %s) | (~%s & %s[%s])",
			wrSel, wrData, wrSel, mem, wrAddr),
		wr)
	m.Sample(rdClk, rdData, fmt.Sprintf("%s[%s]", mem, rdAddr), rd)

	m.Unsynth(ffTasks(addrBits, cfg.bits))

	return m
}

func ffTasks(addrBits, bits int) string {
	return fmt.Sprintf(`task write;
    input [%d:0] addr;
    input [%d:0] data;
    begin
        mem[addr] = data;
    end
endtask

task read;
    input [%d:0] addr;
    output [%d:0] data;
    begin
        data = mem[addr];
    end
endtask`,
		addrBits-1, bits-1, addrBits-1, bits-1)
}
