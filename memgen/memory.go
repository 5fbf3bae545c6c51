package memgen

import (
	"strings"

	"github.com/memtile/memtile/macro"
	"github.com/memtile/memtile/plan"
	"github.com/memtile/memtile/vlog"
)

// A Memory is one fully generated memory instance: the tiling plan it was
// built from and the emitted module hierarchy, top module last.
type Memory struct {
	Plan        *plan.Plan
	Binding     *macro.Binding
	Diagnostics []plan.Diagnostic
	TopName     string
	Modules     []*vlog.Module
}

// Module returns the emitted module with the given name, or nil.
func (m *Memory) Module(name string) *vlog.Module {
	for _, mod := range m.Modules {
		if mod.Name() == name {
			return mod
		}
	}

	return nil
}

// Top returns the top-level module.
func (m *Memory) Top() *vlog.Module {
	return m.Module(m.TopName)
}

// Render emits the complete Verilog text of the hierarchy.
func (m *Memory) Render() string {
	var sb strings.Builder

	sb.WriteString("// Generated by memtile. Do not edit.\n\n")

	for n, mod := range m.Modules {
		if n > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(mod.Render())
	}

	return sb.String()
}
