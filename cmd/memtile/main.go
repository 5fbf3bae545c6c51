// The memtile command generates Verilog memory subsystems from a physical
// SRAM macro and a logical shape.
package main

import "github.com/memtile/memtile/cmd/memtile/cmd"

func main() {
	cmd.Execute()
}
