// Package behavior is a software model of a generated memory. It applies
// the same address partition, bank slicing and strobe expansion as the
// emitted hardware, so tests can check generated semantics without a
// simulator.
package behavior

import (
	"fmt"

	"github.com/memtile/memtile/plan"
)

// A Model holds the state of one memory instance. Lines are stored
// sparsely per row and bank; unwritten lines read as zero.
type Model struct {
	plan  *plan.Plan
	banks [][]bankStore
}

// Lines are bit-packed LSB first, one slice per leaf address.
type bankStore map[uint64][]byte

// NewModel returns an empty model of the planned memory.
func NewModel(p *plan.Plan) *Model {
	m := &Model{plan: p}

	m.banks = make([][]bankStore, p.Tiling.RowNum)
	for y := range m.banks {
		m.banks[y] = make([]bankStore, p.Tiling.BankNum)
		for x := range m.banks[y] {
			m.banks[y][x] = make(bankStore)
		}
	}

	return m
}

// Plan returns the plan the model was built from.
func (m *Model) Plan() *plan.Plan {
	return m.plan
}

// WordBytes is the byte length of one data word.
func (m *Model) WordBytes() int {
	return (m.plan.Bits + 7) / 8
}

// Write stores a word. The strobe is interpreted per the plan granularity:
// nil writes the full word, otherwise its length must match StrobeBits (or
// the data width for bit granularity). Unstrobed bits keep their value.
func (m *Model) Write(addr uint64, data []byte, strobe []bool) error {
	if addr >= uint64(m.plan.LineNum) {
		return fmt.Errorf("write address 0x%x is out of memory size 0x%x",
			addr, m.plan.LineNum)
	}

	if len(data) != m.WordBytes() {
		return fmt.Errorf("data length %d does not match word length %d",
			len(data), m.WordBytes())
	}

	mask, err := m.expandStrobe(strobe)
	if err != nil {
		return err
	}

	row := m.plan.Partition.RowIndex(addr)
	leaf := m.plan.Partition.LeafAddr(addr)
	t := m.plan.Tiling

	for x := 0; x < t.BankNum; x++ {
		start := t.BankStart(x)
		if !anySet(mask, start, t.BitsPerBank) {
			continue
		}

		line := m.line(row, x, leaf)
		for i := 0; i < t.BitsPerBank; i++ {
			bit := start + i
			if bit >= m.plan.Bits || !mask[bit] {
				continue
			}

			setBit(line, i, getBit(data, bit))
		}
	}

	return nil
}

// Read returns the word at addr. Unwritten lines read as zero.
func (m *Model) Read(addr uint64) ([]byte, error) {
	if addr >= uint64(m.plan.LineNum) {
		return nil, fmt.Errorf("read address 0x%x is out of memory size 0x%x",
			addr, m.plan.LineNum)
	}

	row := m.plan.Partition.RowIndex(addr)
	leaf := m.plan.Partition.LeafAddr(addr)
	t := m.plan.Tiling

	data := make([]byte, m.WordBytes())

	for x := 0; x < t.BankNum; x++ {
		line, ok := m.banks[row][x][leaf]
		if !ok {
			continue
		}

		start := t.BankStart(x)
		for i := 0; i < t.BitsPerBank; i++ {
			bit := start + i
			if bit >= m.plan.Bits {
				break
			}

			setBit(data, bit, getBit(line, i))
		}
	}

	return data, nil
}

func (m *Model) expandStrobe(strobe []bool) ([]bool, error) {
	if strobe == nil {
		mask := make([]bool, m.plan.Bits)
		for i := range mask {
			mask[i] = true
		}

		return mask, nil
	}

	want := m.plan.StrobeBits()
	if m.plan.BitSel == 1 {
		want = m.plan.Bits
	}

	if m.plan.BitSel == 0 {
		return nil, fmt.Errorf("strobe given but plan has no byte select")
	}

	if len(strobe) != want {
		return nil, fmt.Errorf("strobe length %d does not match %d",
			len(strobe), want)
	}

	return plan.ExpandStrobe(m.plan.Bits, m.plan.BitSel, strobe), nil
}

func (m *Model) line(row, bank int, leaf uint64) []byte {
	line, ok := m.banks[row][bank][leaf]
	if !ok {
		line = make([]byte, (m.plan.Tiling.BitsPerBank+7)/8)
		m.banks[row][bank][leaf] = line
	}

	return line
}

func anySet(mask []bool, start, width int) bool {
	for i := start; i < start+width && i < len(mask); i++ {
		if mask[i] {
			return true
		}
	}

	return false
}

func getBit(b []byte, i int) bool {
	return b[i/8]>>(i%8)&1 == 1
}

func setBit(b []byte, i int, v bool) {
	if v {
		b[i/8] |= 1 << (i % 8)
	} else {
		b[i/8] &^= 1 << (i % 8)
	}
}
