package plan

import "fmt"

// Limits are the soft capacity ceilings of the planner. Overruns are
// diagnostics, not errors, unless Strict is set.
type Limits struct {
	MaxBankNum     int
	MaxRowNum      int
	MaxBits        int
	MaxLineNum     int
	MaxBitsPerBank int
	MaxLinesPerRow int

	// Strict turns ceiling overruns into build errors.
	Strict bool
}

// DefaultLimits returns the documented ceilings with permissive overrun
// handling.
func DefaultLimits() Limits {
	return Limits{
		MaxBankNum:     128,
		MaxRowNum:      128,
		MaxBits:        8 * 1024,
		MaxLineNum:     1024 * 1024,
		MaxBitsPerBank: 8 * 1024,
		MaxLinesPerRow: 64 * 1024,
	}
}

func (l Limits) check(bits, lineNum int, t Tiling, warn func(string, ...any)) error {
	overruns := []struct {
		value, max int
		what       string
	}{
		{bits, l.MaxBits, "data width"},
		{lineNum, l.MaxLineNum, "line number"},
		{t.BankNum, l.MaxBankNum, "bank number"},
		{t.RowNum, l.MaxRowNum, "row number"},
		{t.BitsPerBank, l.MaxBitsPerBank, "bank bits"},
		{t.LinesPerRow, l.MaxLinesPerRow, "row line number"},
	}

	for _, o := range overruns {
		if o.max <= 0 || o.value <= o.max {
			continue
		}

		if l.Strict {
			return fmt.Errorf("%s %d exceeds maximum of %d",
				o.what, o.value, o.max)
		}

		warn("%s %d exceeds maximum of %d", o.what, o.value, o.max)
	}

	return nil
}
