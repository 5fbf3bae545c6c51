package macro

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// parsedMacro is a Descriptor backed by a parsed Verilog module declaration.
type parsedMacro struct {
	name  string
	ports []Port
}

func (m *parsedMacro) Name() string  { return m.name }
func (m *parsedMacro) Ports() []Port { return m.ports }

var (
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	moduleRe       = regexp.MustCompile(
		`(?s)\bmodule\s+(\w+)\s*(?:#\s*\(.*?\)\s*)?\((.*?)\)\s*;`)
	rangeRe        = regexp.MustCompile(`^\[\s*(\d+)\s*:\s*(\d+)\s*\]`)
	identRe        = regexp.MustCompile(`^[a-zA-Z_]\w*$`)
)

// ParseVerilogFile parses the first module declaration in a Verilog source
// file and returns it as a macro Descriptor.
func ParseVerilogFile(path string) (Descriptor, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read macro file: %w", err)
	}

	d, err := ParseVerilog(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return d, nil
}

// ParseVerilog extracts the module name and the declared ports from Verilog
// source. Both ANSI-style headers and non-ANSI body declarations are
// accepted; only names, widths and directions are inspected.
func ParseVerilog(src string) (Descriptor, error) {
	src = blockCommentRe.ReplaceAllString(src, "")
	src = lineCommentRe.ReplaceAllString(src, "")

	m := moduleRe.FindStringSubmatchIndex(src)
	if m == nil {
		return nil, fmt.Errorf("no module declaration found")
	}

	name := src[m[2]:m[3]]
	header := src[m[4]:m[5]]
	body := src[m[1]:]
	if end := strings.Index(body, "endmodule"); end >= 0 {
		body = body[:end]
	}

	p := &portScanner{seen: make(map[string]bool)}
	p.scanHeader(header)
	p.scanBody(body)

	if len(p.ports) == 0 {
		return nil, fmt.Errorf("module %s declares no ports", name)
	}

	return &parsedMacro{name: name, ports: p.ports}, nil
}

// NewDescriptor wraps an explicit port list as a Descriptor, for callers
// that already know the macro's pinout.
func NewDescriptor(name string, ports []Port) Descriptor {
	return &parsedMacro{name: name, ports: ports}
}

type portScanner struct {
	ports []Port
	seen  map[string]bool
}

// scanHeader walks an ANSI-style port list. Elements without an explicit
// direction inherit the previous one; a header that is only a bare name
// list (non-ANSI style) contributes nothing and the body declarations are
// used instead.
func (p *portScanner) scanHeader(header string) {
	dir := In
	bits := 1
	sawDir := false

	for _, elem := range strings.Split(header, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}

		if d, rest, ok := splitDirection(elem); ok {
			dir = d
			bits = 1
			sawDir = true
			elem = rest
		} else if !sawDir {
			continue
		}

		elem = trimKinds(elem)
		if r := rangeRe.FindStringSubmatch(elem); r != nil {
			bits = rangeBits(r)
			elem = strings.TrimSpace(elem[len(r[0]):])
		}

		p.add(elem, bits, dir)
	}
}

// scanBody walks non-ANSI declarations, one statement per semicolon.
func (p *portScanner) scanBody(body string) {
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)

		dir, rest, ok := splitDirection(stmt)
		if !ok {
			continue
		}

		rest = trimKinds(rest)
		bits := 1
		if r := rangeRe.FindStringSubmatch(rest); r != nil {
			bits = rangeBits(r)
			rest = strings.TrimSpace(rest[len(r[0]):])
		}

		for _, name := range strings.Split(rest, ",") {
			p.add(strings.TrimSpace(name), bits, dir)
		}
	}
}

func (p *portScanner) add(name string, bits int, dir Direction) {
	if !identRe.MatchString(name) || p.seen[name] {
		return
	}

	p.seen[name] = true
	p.ports = append(p.ports, Port{Name: name, Bits: bits, Dir: dir})
}

func splitDirection(s string) (Direction, string, bool) {
	for prefix, dir := range map[string]Direction{
		"input": In, "output": Out, "inout": In,
	} {
		rest, found := strings.CutPrefix(s, prefix)
		if found && (rest == "" || !isIdentChar(rest[0])) {
			return dir, strings.TrimSpace(rest), true
		}
	}

	return In, s, false
}

func trimKinds(s string) string {
	for _, kind := range []string{"wire", "reg", "logic"} {
		rest, found := strings.CutPrefix(s, kind)
		if found && (rest == "" || !isIdentChar(rest[0])) {
			return strings.TrimSpace(rest)
		}
	}

	return s
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9'
}

func rangeBits(match []string) int {
	msb, _ := strconv.Atoi(match[1])
	lsb, _ := strconv.Atoi(match[2])
	if lsb > msb {
		msb, lsb = lsb, msb
	}

	return msb - lsb + 1
}
