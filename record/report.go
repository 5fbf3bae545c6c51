package record

import (
	"strings"

	"github.com/memtile/memtile/memgen"
)

// PlanEntry is one row of the memories table.
type PlanEntry struct {
	Name         string
	Bits         int
	LineNum      int
	BitSel       int
	Macro        string
	BankNum      int
	RowNum       int
	BitsPerBank  int
	LinesPerRow  int
	AddrBits     int
	RowSelBits   int
	SRAMAddrBits int
	PortNum      int
	DualClock    bool
	SampleOut    bool
	ReadLatency  int
}

// DiagnosticEntry is one row of the diagnostics table.
type DiagnosticEntry struct {
	Name     string
	Severity string
	Message  string
}

// ModuleEntry is one row of the modules table.
type ModuleEntry struct {
	Name   string
	Module string
	Lines  int
}

// Report writes the plan, the diagnostics and the emitted module inventory
// of one generated memory into the recorder.
func Report(rec Recorder, mem *memgen.Memory) {
	ensureTables(rec)

	p := mem.Plan

	macroName := ""
	if p.Macro != nil {
		macroName = p.Macro.Name
	}

	rec.InsertData("memories", PlanEntry{
		Name:         mem.TopName,
		Bits:         p.Bits,
		LineNum:      p.LineNum,
		BitSel:       p.BitSel,
		Macro:        macroName,
		BankNum:      p.Tiling.BankNum,
		RowNum:       p.Tiling.RowNum,
		BitsPerBank:  p.Tiling.BitsPerBank,
		LinesPerRow:  p.Tiling.LinesPerRow,
		AddrBits:     p.Partition.AddrBits,
		RowSelBits:   p.Partition.RowSelBits,
		SRAMAddrBits: p.Partition.SRAMAddrBits,
		PortNum:      p.PortNum,
		DualClock:    p.DualClock,
		SampleOut:    p.SampleOut,
		ReadLatency:  p.ReadLatency(),
	})

	for _, d := range mem.Diagnostics {
		rec.InsertData("diagnostics", DiagnosticEntry{
			Name:     mem.TopName,
			Severity: d.Severity.String(),
			Message:  d.Message,
		})
	}

	for _, mod := range mem.Modules {
		rec.InsertData("modules", ModuleEntry{
			Name:   mem.TopName,
			Module: mod.Name(),
			Lines:  strings.Count(mod.Render(), "\n"),
		})
	}
}

func ensureTables(rec Recorder) {
	tables := rec.ListTables()
	has := func(name string) bool {
		for _, t := range tables {
			if t == name {
				return true
			}
		}

		return false
	}

	if !has("memories") {
		rec.CreateTable("memories", PlanEntry{})
	}

	if !has("diagnostics") {
		rec.CreateTable("diagnostics", DiagnosticEntry{})
	}

	if !has("modules") {
		rec.CreateTable("modules", ModuleEntry{})
	}
}
