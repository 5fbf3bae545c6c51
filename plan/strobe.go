package plan

// A StrobeSlice is the run of data bits one strobe bit enables.
type StrobeSlice struct {
	Start     int
	Width     int
	StrobeBit int
}

// StrobeSlices returns the per-granule slices of a bits-wide word under the
// given granularity. When bits does not divide evenly, the trailing
// remainder slice reuses the last strobe bit.
func StrobeSlices(bits, bitSel int) []StrobeSlice {
	if bitSel <= 1 {
		return nil
	}

	strbBits := bits / bitSel
	slices := make([]StrobeSlice, 0, strbBits+1)

	for i := 0; i < strbBits; i++ {
		slices = append(slices, StrobeSlice{
			Start:     bitSel * i,
			Width:     bitSel,
			StrobeBit: i,
		})
	}

	if remain := bits % bitSel; remain > 0 {
		slices = append(slices, StrobeSlice{
			Start:     strbBits * bitSel,
			Width:     remain,
			StrobeBit: strbBits - 1,
		})
	}

	return slices
}

// ExpandStrobe expands a per-granule strobe vector into a full bits-wide
// write mask. Granularity 0 yields an all-ones mask (no partial write
// support); granularity 1 passes the strobe through unchanged.
func ExpandStrobe(bits, bitSel int, strobe []bool) []bool {
	mask := make([]bool, bits)

	switch {
	case bitSel == 0:
		for i := range mask {
			mask[i] = true
		}

	case bitSel == 1:
		copy(mask, strobe)

	default:
		for _, s := range StrobeSlices(bits, bitSel) {
			for i := 0; i < s.Width; i++ {
				mask[s.Start+i] = strobe[s.StrobeBit]
			}
		}
	}

	return mask
}
