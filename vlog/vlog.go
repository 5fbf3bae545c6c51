// Package vlog is a small Verilog emission sink: module construction, port
// and signal declaration, assignment and sampled-register emission, runtime
// assertion emission, and instance connection bookkeeping.
//
// The package renders text; it does not understand the semantics of what it
// emits. Generators build Module values and render them at the end.
package vlog

import (
	"fmt"
	"strings"
)

// Bits returns a part-select expression of the given width starting at bit
// start.
func Bits(name string, width, start int) string {
	if width == 1 {
		return Bit(name, start)
	}

	return fmt.Sprintf("%s[%d:%d]", name, start+width-1, start)
}

// Bit returns a single-bit select expression.
func Bit(name string, i int) string {
	return fmt.Sprintf("%s[%d]", name, i)
}

// Concat returns a concatenation expression. Parts are given MSB first.
func Concat(parts ...string) string {
	return "{" + strings.Join(parts, ", ") + "}"
}

// Repl returns a replication expression {n{expr}}.
func Repl(n int, expr string) string {
	return fmt.Sprintf("{%d{%s}}", n, expr)
}

// Dec returns a sized decimal literal.
func Dec(val, width int) string {
	return fmt.Sprintf("%d'd%d", width, val)
}

// Zeros returns a width-wide all-zero literal.
func Zeros(width int) string {
	return Dec(0, width)
}

// Ones returns a width-wide all-one expression.
func Ones(width int) string {
	return Repl(width, "1'b1")
}

// Pad prefixes an expression with padBits zero bits. With padBits zero the
// expression passes through unchanged.
func Pad(padBits int, expr string) string {
	if padBits <= 0 {
		return expr
	}

	return Concat(Repl(padBits, "1'b0"), expr)
}

// RedOr returns the reduction-OR of an expression.
func RedOr(expr string) string {
	return "(|" + expr + ")"
}
