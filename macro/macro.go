// Package macro describes vendor SRAM blocks and maps their declared pinouts
// onto a canonical port contract.
//
// A macro is consumed exclusively through name and width inspection of its
// ports. The binder recognizes a small closed set of pin-naming conventions
// and fails loudly on anything else.
package macro

import "strings"

// MaxPorts is the number of access ports a macro may expose.
const MaxPorts = 2

// Direction tells whether a macro pin is driven from the outside or by the
// macro itself.
type Direction int

// The two pin directions.
const (
	In Direction = iota
	Out
)

// A Port is one named pin or bus on a vendor macro.
type Port struct {
	Name string
	Bits int
	Dir  Direction
}

// A Descriptor exposes the declared ports of a vendor macro.
type Descriptor interface {
	Name() string
	Ports() []Port
}

// Capability is the access type one bound port supports.
type Capability string

// The recognized port capabilities.
const (
	CapNone      Capability = ""
	CapRead      Capability = "r"
	CapWrite     Capability = "w"
	CapReadWrite Capability = "w/r"
)

// CanRead reports whether the port can serve reads.
func (c Capability) CanRead() bool {
	return strings.Contains(string(c), "r")
}

// CanWrite reports whether the port can serve writes.
func (c Capability) CanWrite() bool {
	return strings.Contains(string(c), "w")
}

// Geometry is the physical shape derived from a bound macro.
type Geometry struct {
	Name      string
	Bits      int
	AddrBits  int
	LineNum   int
	BitSel    int
	DualClock bool
	PortCaps  [MaxPorts]Capability
}

// PortNum returns the number of usable ports.
func (g Geometry) PortNum() int {
	if g.PortCaps[1] == CapNone {
		return 1
	}

	return MaxPorts
}
