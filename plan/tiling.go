package plan

import "fmt"

// A Tiling describes how the logical shape is cut into physical leaves:
// BankNum leaves across the data width and RowNum leaf groups across the
// address depth.
type Tiling struct {
	BankNum int
	RowNum  int

	BitsPerBank int
	LinesPerRow int

	BitsRoundup  int
	LinesRoundup int
}

func (t Tiling) check() error {
	if t.BitsRoundup%t.BankNum != 0 {
		return fmt.Errorf("bits %d must divide by bank number %d",
			t.BitsRoundup, t.BankNum)
	}

	if t.LinesRoundup%t.RowNum != 0 {
		return fmt.Errorf("line number %d must divide by row number %d",
			t.LinesRoundup, t.RowNum)
	}

	if t.RowNum > 1 && !isPow2(t.LinesPerRow) {
		return fmt.Errorf(
			"line number per row %d must be a power of 2 when using multiple rows",
			t.LinesPerRow)
	}

	return nil
}

// BankStart is the first data bit covered by bank x.
func (t Tiling) BankStart(x int) int {
	return x * t.BitsPerBank
}
