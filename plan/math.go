package plan

import "math/bits"

// Log2Up returns the number of address bits needed to index n entries.
func Log2Up(n int) int {
	if n <= 1 {
		return 0
	}

	return bits.Len(uint(n - 1))
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func roundup(value, multiple int) int {
	return (value + multiple - 1) / multiple * multiple
}
