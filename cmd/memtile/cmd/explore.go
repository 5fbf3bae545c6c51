package cmd

import (
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/memtile/memtile/explore"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Serve the generated memory for inspection over HTTP.",
	Long: "`explore --bits 64 --lines 4096 --macro sram.v` generates the " +
		"memory and serves its plan and Verilog until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		mem, err := buildMemory(cmd)
		if err != nil {
			log.Fatalf("Error generating memory: %v", err)
		}

		port, _ := cmd.Flags().GetInt("port")
		noBrowser, _ := cmd.Flags().GetBool("no-browser")

		server := explore.NewServer().WithPortNumber(port)
		if !noBrowser {
			server = server.WithBrowser()
		}

		server.Register(mem)

		if _, err := server.StartServer(); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)

	exploreCmd.Flags().Int("bits", 32, "Logical data width in bits")
	exploreCmd.Flags().Int("lines", 1024, "Number of addressable lines")
	exploreCmd.Flags().Int("bit-sel", -1,
		"Write strobe granularity in bits (0 disables, default inherits "+
			"from the macro)")
	exploreCmd.Flags().String("name", "mem", "Top-level module name")
	exploreCmd.Flags().String("macro", "",
		"Verilog file of the SRAM macro to tile")
	exploreCmd.Flags().Bool("dual-clock", false,
		"Use a separate read-side clock")
	exploreCmd.Flags().Bool("sample-out", false,
		"Register the read data output")
	exploreCmd.Flags().Bool("strict", false,
		"Turn capacity ceiling overruns into errors")
	exploreCmd.Flags().String("wr-clk", "clk0", "Write clock port name")
	exploreCmd.Flags().String("rd-clk", "clk1", "Read clock port name")
	exploreCmd.Flags().Int("port", 0, "Port to listen on (0 picks one)")
	exploreCmd.Flags().Bool("no-browser", false,
		"Do not open the local browser")
}
