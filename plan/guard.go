package plan

import "fmt"

// AccessOp distinguishes the read and write sides of a port.
type AccessOp int

// The two access operations.
const (
	OpWrite AccessOp = iota
	OpRead
)

func (op AccessOp) String() string {
	if op == OpWrite {
		return "wr"
	}

	return "rd"
}

// GuardKind names a decode invariant that must never be violated at
// runtime. A violation is an internal decode bug, not a usage error.
type GuardKind int

// The decode invariants.
const (
	// ZeroRowSelect fires when an active access observes an all-zero
	// row-select vector.
	ZeroRowSelect GuardKind = iota
	// ZeroBankSelect fires when an active access observes an all-zero
	// bank-select vector.
	ZeroBankSelect
)

// A Guard is a typed invariant check carried in the plan. The hardware
// emitter renders it as a simulation-only fatal assertion; tests check the
// same invariant directly against the decode functions.
type Guard struct {
	Kind GuardKind
	Port int
	Op   AccessOp
}

// Name is the stable identifier of the emitted assertion.
func (g Guard) Name() string {
	level := "row"
	if g.Kind == ZeroBankSelect {
		level = "bank"
	}

	return fmt.Sprintf("%s%d_no_%s_sel", g.Op, g.Port, level)
}

// Message is the text reported when the guard fires. The offending address
// is appended by the renderer.
func (g Guard) Message() string {
	level := "row"
	if g.Kind == ZeroBankSelect {
		level = "bank"
	}

	op := "write"
	if g.Op == OpRead {
		op = "read"
	}

	return fmt.Sprintf(
		"port %d %s to address 0x%%0h detected without any %s selected",
		g.Port, op, level)
}

func decodeGuards(portNum int) []Guard {
	var guards []Guard

	for idx := 0; idx < portNum; idx++ {
		for _, op := range []AccessOp{OpWrite, OpRead} {
			guards = append(guards,
				Guard{Kind: ZeroRowSelect, Port: idx, Op: op},
				Guard{Kind: ZeroBankSelect, Port: idx, Op: op},
			)
		}
	}

	return guards
}
