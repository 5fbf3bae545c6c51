package plan

// A Partition splits a flat external address into the intra-row field and
// the row-select field.
//
// The intra-row field occupies the low SRAMAddrBits of the address; the
// row-select field occupies the RowSelBits directly above it. An external
// address narrower than SRAMAddrBits is zero-padded.
type Partition struct {
	AddrBits     int
	RowSelBits   int
	SRAMAddrBits int
}

// RowIndex returns the row the address decodes to.
func (p Partition) RowIndex(addr uint64) int {
	if p.RowSelBits == 0 {
		return 0
	}

	return int(addr >> p.SRAMAddrBits & (1<<p.RowSelBits - 1))
}

// LeafAddr returns the address seen by the leaves of the selected row.
func (p Partition) LeafAddr(addr uint64) uint64 {
	return addr & (1<<p.SRAMAddrBits - 1)
}

// RowSelected reports whether row y is selected by the address. For a plan
// with a single row, every address selects it.
func (p Partition) RowSelected(addr uint64, y int) bool {
	return p.RowIndex(addr) == y
}
