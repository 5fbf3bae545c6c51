package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/memtile/memtile/macro"
	"github.com/memtile/memtile/memgen"
	"github.com/memtile/memtile/plan"
	"github.com/memtile/memtile/record"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the Verilog of one memory instance.",
	Long: "`generate --bits 64 --lines 4096 --macro sram.v` plans the " +
		"tiling of the macro over the requested shape and writes the " +
		"generated module hierarchy.",
	Run: func(cmd *cobra.Command, args []string) {
		mem, err := buildMemory(cmd)
		if err != nil {
			log.Fatalf("Error generating memory: %v", err)
		}

		for _, d := range mem.Diagnostics {
			fmt.Fprintf(os.Stderr, "%s: %s\n", d.Severity, d.Message)
		}

		if report, _ := cmd.Flags().GetString("report"); report != "" {
			rec := record.New(report)
			record.Report(rec, mem)
			rec.Flush()
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			fmt.Print(mem.Render())
			return
		}

		if err := os.WriteFile(out, []byte(mem.Render()), 0644); err != nil {
			log.Fatalf("Error writing output: %v", err)
		}

		fmt.Printf("Memory '%s' generated successfully!\n", mem.TopName)
	},
}

func buildMemory(cmd *cobra.Command) (*memgen.Memory, error) {
	bits, _ := cmd.Flags().GetInt("bits")
	lines, _ := cmd.Flags().GetInt("lines")
	bitSel, _ := cmd.Flags().GetInt("bit-sel")
	name, _ := cmd.Flags().GetString("name")
	macroPath, _ := cmd.Flags().GetString("macro")
	dualClock, _ := cmd.Flags().GetBool("dual-clock")
	sampleOut, _ := cmd.Flags().GetBool("sample-out")
	strict, _ := cmd.Flags().GetBool("strict")
	wrClk, _ := cmd.Flags().GetString("wr-clk")
	rdClk, _ := cmd.Flags().GetString("rd-clk")

	lim := plan.DefaultLimits()
	lim.Strict = strict

	b := memgen.MakeBuilder().
		WithBits(bits).
		WithLineNum(lines).
		WithBitSel(bitSel).
		WithDualClock(dualClock).
		WithSampleOut(sampleOut).
		WithClocks(wrClk, rdClk).
		WithLimits(lim)

	if macroPath != "" {
		desc, err := macro.ParseVerilogFile(macroPath)
		if err != nil {
			return nil, fmt.Errorf("parse macro: %w", err)
		}

		b = b.WithMacro(desc)
	}

	return b.Build(name)
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Int("bits", 32, "Logical data width in bits")
	generateCmd.Flags().Int("lines", 1024, "Number of addressable lines")
	generateCmd.Flags().Int("bit-sel", plan.BitSelInherit,
		"Write strobe granularity in bits (0 disables, default inherits "+
			"from the macro)")
	generateCmd.Flags().String("name", envDefault("NAME", "mem"),
		"Top-level module name")
	generateCmd.Flags().String("macro", "",
		"Verilog file of the SRAM macro to tile")
	generateCmd.Flags().Bool("dual-clock", false,
		"Use a separate read-side clock")
	generateCmd.Flags().Bool("sample-out", false,
		"Register the read data output")
	generateCmd.Flags().Bool("strict", false,
		"Turn capacity ceiling overruns into errors")
	generateCmd.Flags().String("wr-clk", "clk0", "Write clock port name")
	generateCmd.Flags().String("rd-clk", "clk1", "Read clock port name")
	generateCmd.Flags().String("out", envDefault("OUT", ""),
		"Output file (default stdout)")
	generateCmd.Flags().String("report", envDefault("REPORT", ""),
		"Record the plan into an SQLite report database")
}
