package vlog

import (
	"fmt"
	"strings"
)

type signalKind int

const (
	kindWire signalKind = iota
	kindReg
	kindArray
)

type signal struct {
	name  string
	bits  int
	depth int
	kind  signalKind
	dir   string // "input", "output" or "" for internal signals
}

type bodyItem interface {
	render(sb *strings.Builder)
}

// A Module is one Verilog module under construction.
type Module struct {
	name    string
	signals []*signal
	byName  map[string]*signal
	items   []bodyItem
	unused  []string
}

// NewModule starts an empty module. The caller is responsible for claiming
// a unique name from a Registry first.
func NewModule(name string) *Module {
	return &Module{
		name:   name,
		byName: make(map[string]*signal),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

func (m *Module) declare(name string, bits, depth int, dir string) string {
	if _, ok := m.byName[name]; ok {
		panic(fmt.Sprintf("vlog: signal %s declared twice in %s", name, m.name))
	}

	s := &signal{name: name, bits: bits, depth: depth, dir: dir}
	if depth > 0 {
		s.kind = kindArray
	}

	m.signals = append(m.signals, s)
	m.byName[name] = s

	return name
}

// Input declares an input port. A width of 1 declares a scalar.
func (m *Module) Input(name string, bits int) string {
	return m.declare(name, bits, 0, "input")
}

// Output declares an output port.
func (m *Module) Output(name string, bits int) string {
	return m.declare(name, bits, 0, "output")
}

// Logic declares an internal signal.
func (m *Module) Logic(name string, bits int) string {
	return m.declare(name, bits, 0, "")
}

// LogicArray declares an internal two-dimensional register array.
func (m *Module) LogicArray(name string, depth, bits int) string {
	return m.declare(name, bits, depth, "")
}

// markReg upgrades the declaration of the driven signal to reg. The target
// may be an indexed or sliced expression.
func (m *Module) markReg(target string) {
	base := target
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}

	if s, ok := m.byName[base]; ok && s.kind == kindWire {
		s.kind = kindReg
	}
}

// Assign emits a continuous assignment.
func (m *Module) Assign(lhs, rhs string) {
	m.items = append(m.items, rawItem(fmt.Sprintf("assign %s = %s;", lhs, rhs)))
}

// Sample emits a posedge-clocked register transfer, optionally gated by a
// valid signal.
func (m *Module) Sample(clk, dst, src, valid string) {
	m.markReg(dst)

	stmt := fmt.Sprintf("%s <= %s;", dst, src)
	if valid != "" {
		stmt = fmt.Sprintf("if (%s) %s", valid, stmt)
	}

	m.items = append(m.items,
		rawItem(fmt.Sprintf("always @(posedge %s) %s", clk, stmt)))
}

// Comment emits a line comment.
func (m *Module) Comment(text string) {
	m.items = append(m.items, rawItem("// "+text))
}

// Blank emits an empty line.
func (m *Module) Blank() {
	m.items = append(m.items, rawItem(""))
}

// Raw emits preformatted lines verbatim.
func (m *Module) Raw(text string) {
	m.items = append(m.items, rawItem(text))
}

// Unsynth emits preformatted lines guarded out of synthesis.
func (m *Module) Unsynth(text string) {
	m.items = append(m.items, rawItem(
		"`ifndef SYNTHESIS\n"+strings.TrimRight(text, "\n")+"\n`endif"))
}

// AssertNever emits a simulation-only fatal assertion that fires when cond
// holds at a clock edge. Extra params feed the message format.
func (m *Module) AssertNever(clk, cond, name, msg string, params ...string) {
	args := append([]string{`"` + msg + `"`}, params...)

	m.Unsynth(fmt.Sprintf(
		"// assert_never: %s\nalways @(posedge %s)\n    if (%s) $fatal(1, %s);",
		name, clk, cond, strings.Join(args, ", ")))
}

// AssumeProperty emits an assumption checked by formal and simulation
// tools.
func (m *Module) AssumeProperty(clk, expr, msg string) {
	m.Unsynth(fmt.Sprintf(
		"// %s\nassume property (@(posedge %s) %s);", msg, clk, expr))
}

// AllowUnused marks signals that are intentionally left undriven or
// unread.
func (m *Module) AllowUnused(names ...string) {
	m.unused = append(m.unused, names...)
}

type rawItem string

func (r rawItem) render(sb *strings.Builder) {
	sb.WriteString(string(r))
	sb.WriteByte('\n')
}

// An Instance records one submodule instantiation and its pin connections.
type Instance struct {
	module string
	name   string
	conns  []conn
}

type conn struct {
	pin  string
	expr string
}

// Instance adds a submodule instantiation to the module body.
func (m *Module) Instance(moduleName, instName string) *Instance {
	inst := &Instance{module: moduleName, name: instName}
	m.items = append(m.items, inst)

	return inst
}

// Connect ties a submodule input pin to an expression.
func (i *Instance) Connect(pin, expr string) {
	i.conns = append(i.conns, conn{pin: pin, expr: expr})
}

// ConnectOut ties a submodule output pin to a signal. An empty expression
// leaves the pin open.
func (i *Instance) ConnectOut(pin, expr string) {
	i.conns = append(i.conns, conn{pin: pin, expr: expr})
}

func (i *Instance) render(sb *strings.Builder) {
	fmt.Fprintf(sb, "%s %s (\n", i.module, i.name)

	for n, c := range i.conns {
		sep := ","
		if n == len(i.conns)-1 {
			sep = ""
		}

		fmt.Fprintf(sb, "    .%s(%s)%s\n", c.pin, c.expr, sep)
	}

	sb.WriteString(");\n")
}

// Render emits the complete module text.
func (m *Module) Render() string {
	var sb strings.Builder

	m.renderHeader(&sb)
	m.renderDecls(&sb)
	sb.WriteByte('\n')

	for _, item := range m.items {
		item.render(&sb)
	}

	m.renderUnused(&sb)
	sb.WriteString("endmodule\n")

	return sb.String()
}

func (m *Module) renderHeader(sb *strings.Builder) {
	var portNames []string
	for _, s := range m.signals {
		if s.dir != "" {
			portNames = append(portNames, s.name)
		}
	}

	fmt.Fprintf(sb, "module %s (\n", m.name)

	for n, name := range portNames {
		sep := ","
		if n == len(portNames)-1 {
			sep = ""
		}

		fmt.Fprintf(sb, "    %s%s\n", name, sep)
	}

	sb.WriteString(");\n")
}

func (m *Module) renderDecls(sb *strings.Builder) {
	for _, s := range m.signals {
		if s.dir != "" {
			fmt.Fprintf(sb, "%s %s;\n", s.dir, sigRange(s))
		}
	}

	for _, s := range m.signals {
		switch {
		case s.kind == kindArray:
			fmt.Fprintf(sb, "reg %s [0:%d];\n", sigRange(s), s.depth-1)
		case s.kind == kindReg:
			fmt.Fprintf(sb, "reg %s;\n", sigRange(s))
		case s.dir == "":
			fmt.Fprintf(sb, "wire %s;\n", sigRange(s))
		}
	}
}

func sigRange(s *signal) string {
	if s.bits <= 1 {
		return s.name
	}

	return fmt.Sprintf("[%d:0] %s", s.bits-1, s.name)
}

func (m *Module) renderUnused(sb *strings.Builder) {
	if len(m.unused) == 0 {
		return
	}

	fmt.Fprintf(sb, "wire _unused_ok = &{1'b0, %s};\n",
		strings.Join(m.unused, ", "))
}
