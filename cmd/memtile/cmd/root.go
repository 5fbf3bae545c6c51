// Package cmd provides the command-line interface for memtile.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "memtile",
	Short: "Memtile generates Verilog memory subsystems by tiling SRAM " +
		"macros into a flat dual-port memory.",
	Long: `Memtile generates Verilog memory subsystems. It tiles a physical ` +
		`SRAM macro into banks and rows to cover a requested logical shape, ` +
		`emits the address decoding, write-strobe expansion and read muxing ` +
		`around the macro instances, and falls back to flip-flop arrays when ` +
		`no macro is given.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file can preset MEMTILE_* variables used as flag defaults.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// envDefault reads a MEMTILE_ prefixed environment default.
func envDefault(name, fallback string) string {
	if v := os.Getenv("MEMTILE_" + name); v != "" {
		return v
	}

	return fallback
}
