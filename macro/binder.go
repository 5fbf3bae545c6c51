package macro

import (
	"fmt"
	"strconv"
)

// Convention identifies a recognized vendor pin-naming style.
type Convention int

// The recognized conventions.
const (
	// OpenRAM names ports clk{n}, csb{n}, web{n}, addr{n}, din{n}, dout{n}
	// and wmask{n} for each port n.
	OpenRAM Convention = iota
	// TSMCSplit has a dedicated write port (CLKW, WEB, AA, D, BWEB) and a
	// dedicated read port (CLKR, REB, AB, Q).
	TSMCSplit
	// TSMCCombined has a single shared read/write port
	// (CLK, CEB, WEB, A, D, Q, BWEB).
	TSMCCombined
)

func (c Convention) String() string {
	switch c {
	case OpenRAM:
		return "openram"
	case TSMCSplit:
		return "tsmc-split"
	case TSMCCombined:
		return "tsmc-combined"
	}

	return "unknown"
}

// A PinMap names the macro pins serving each canonical role for one port.
// An empty name means the convention defines no pin for that role. The
// chip-select and write-enable pins are active low. The write-mask pin is
// per-granule; its polarity depends on the convention.
type PinMap struct {
	Clock       string
	ChipSelect  string
	WriteEnable string
	Address     string
	DataIn      string
	WriteMask   string
	DataOut     string
}

func (p PinMap) roles() []string {
	return []string{
		p.Clock, p.ChipSelect, p.WriteEnable, p.Address,
		p.DataIn, p.WriteMask, p.DataOut,
	}
}

// A Binding is the result of matching a macro's pinout against a recognized
// convention. It is immutable after Bind returns.
type Binding struct {
	macroName  string
	convention Convention
	pins       [MaxPorts]PinMap
	ports      map[string]Port
	memPath    string
}

// Bind detects the pin-naming convention of the given macro and maps its
// pins onto the canonical port contract. Macros that match no recognized
// convention are rejected.
func Bind(d Descriptor) (*Binding, error) {
	b := &Binding{
		macroName: d.Name(),
		ports:     make(map[string]Port),
	}

	for _, p := range d.Ports() {
		b.ports[p.Name] = p
	}

	switch {
	case b.hasPort("din0") && b.hasPort("addr0"):
		b.convention = OpenRAM
		b.memPath = "mem"
		for n := 0; n < MaxPorts; n++ {
			b.pins[n] = PinMap{
				Clock:       "clk" + strconv.Itoa(n),
				ChipSelect:  "csb" + strconv.Itoa(n),
				WriteEnable: "web" + strconv.Itoa(n),
				Address:     "addr" + strconv.Itoa(n),
				DataIn:      "din" + strconv.Itoa(n),
				WriteMask:   "wmask" + strconv.Itoa(n),
				DataOut:     "dout" + strconv.Itoa(n),
			}
		}

	case b.hasPort("AA") && b.hasPort("CLKW"):
		b.convention = TSMCSplit
		b.memPath = "u_ram_core.memory"
		b.pins[0] = PinMap{
			Clock:       "CLKW",
			WriteEnable: "WEB",
			Address:     "AA",
			DataIn:      "D",
			WriteMask:   "BWEB",
		}
		b.pins[1] = PinMap{
			Clock:       "CLKR",
			WriteEnable: "REB",
			Address:     "AB",
			DataOut:     "Q",
		}

	case b.hasPort("D") && b.hasPort("Q"):
		b.convention = TSMCCombined
		b.memPath = "u_ram_core.memory"
		b.pins[0] = PinMap{
			Clock:       "CLK",
			ChipSelect:  "CEB",
			WriteEnable: "WEB",
			Address:     "A",
			DataIn:      "D",
			WriteMask:   "BWEB",
			DataOut:     "Q",
		}

	default:
		return nil, fmt.Errorf(
			"macro %s: unrecognized pinout, no known convention matches",
			d.Name())
	}

	return b, nil
}

// Macro returns the macro module name.
func (b *Binding) Macro() string {
	return b.macroName
}

// Convention returns the detected pin-naming convention.
func (b *Binding) Convention() Convention {
	return b.convention
}

// Pins returns the canonical pin map of the given port.
func (b *Binding) Pins(idx int) PinMap {
	return b.pins[idx]
}

// MemPath is the hierarchical path from the macro instance to its backing
// array, used by the simulation access tasks.
func (b *Binding) MemPath() string {
	return b.memPath
}

// Ports returns the declared ports of the macro keyed by pin name.
func (b *Binding) Ports() map[string]Port {
	return b.ports
}

// HasPin reports whether the named canonical pin maps to a real pin on the
// macro.
func (b *Binding) HasPin(name string) bool {
	return name != "" && b.hasPort(name)
}

// PinWidth returns the declared width of a macro pin, or 0 if absent.
func (b *Binding) PinWidth(name string) int {
	p, ok := b.ports[name]
	if !ok {
		return 0
	}

	return p.Bits
}

// IsBound reports whether the named physical pin serves a canonical role.
func (b *Binding) IsBound(name string) bool {
	for n := 0; n < MaxPorts; n++ {
		for _, role := range b.pins[n].roles() {
			if role == name {
				return true
			}
		}
	}

	return false
}

// Capability derives the access type of the given port from the pins that
// actually map.
func (b *Binding) Capability(idx int) Capability {
	pm := b.pins[idx]
	cs := b.HasPin(pm.ChipSelect)
	we := b.HasPin(pm.WriteEnable)

	switch {
	case cs && we:
		return CapReadWrite
	case cs || we:
		if b.HasPin(pm.DataIn) {
			return CapWrite
		}

		return CapRead
	default:
		return CapNone
	}
}

// Geometry derives the physical shape of the bound macro: width from the
// data-in pin, depth from the address pin, granularity from the write-mask
// pin, dual clocking from the presence of a second clock.
func (b *Binding) Geometry() Geometry {
	g := Geometry{
		Name:      b.macroName,
		Bits:      b.PinWidth(b.pins[0].DataIn),
		AddrBits:  b.PinWidth(b.pins[0].Address),
		DualClock: b.HasPin(b.pins[1].Clock),
	}

	g.LineNum = 1 << g.AddrBits

	if b.HasPin(b.pins[0].WriteMask) {
		g.BitSel = g.Bits / b.PinWidth(b.pins[0].WriteMask)
	}

	for n := 0; n < MaxPorts; n++ {
		g.PortCaps[n] = b.Capability(n)
	}

	return g
}

func (b *Binding) hasPort(name string) bool {
	_, ok := b.ports[name]
	return ok
}
