package memgen

import (
	"fmt"
	"strings"

	"github.com/memtile/memtile/plan"
	"github.com/memtile/memtile/vlog"
)

// muxConfig parameterizes the N-to-1 read-data multiplexer.
type muxConfig struct {
	num      int
	bits     int
	encode   bool // encoded (binary) selector instead of decoded (one-hot)
	sample   bool // register the output
	hasValid bool // carry a valid strobe alongside the data
}

// buildMux emits the multiplexer module used for read-data selection.
func buildMux(name string, cfg muxConfig) *vlog.Module {
	m := vlog.NewModule(name)

	selBits := cfg.num
	if cfg.encode {
		selBits = max(1, plan.Log2Up(cfg.num))
	}

	if cfg.sample {
		m.Input("clk", 1)
	}

	if cfg.hasValid {
		m.Input("valid", 1)
		m.Output("valid_out", 1)
	}

	sel := m.Input("sel", selBits)
	for n := 0; n < cfg.num; n++ {
		m.Input(din(n), cfg.bits)
	}
	out := m.Output("out", cfg.bits)

	decoded := m.Logic("decoded_sel", cfg.num)
	if cfg.encode {
		for n := 0; n < cfg.num; n++ {
			m.Assign(vlog.Bit(decoded, n),
				fmt.Sprintf("%s == %s", sel, vlog.Dec(n, selBits)))
		}
	} else {
		m.Assign(decoded, sel)
	}

	lines := make([]string, cfg.num)
	for n := 0; n < cfg.num; n++ {
		lines[n] = fmt.Sprintf("(%s & %s)",
			vlog.Repl(cfg.bits, vlog.Bit(decoded, n)), din(n))
	}
	muxed := strings.Join(lines, " |\n    ")

	valid := ""
	if cfg.hasValid {
		valid = "valid"
	}

	if cfg.sample {
		m.Sample("clk", out, muxed, valid)
		if cfg.hasValid {
			m.Sample("clk", "valid_out", "valid", "")
		}
	} else {
		m.Assign(out, muxed)
		if cfg.hasValid {
			m.Assign("valid_out", "valid")
		}
	}

	if !cfg.encode && cfg.sample {
		m.AssumeProperty("clk", fmt.Sprintf("$onehot0(%s)", sel),
			"mux decoded selector must be zero or hotone")
	}

	return m
}

func din(n int) string {
	return fmt.Sprintf("din%d", n)
}
