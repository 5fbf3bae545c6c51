package memgen

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/memtile/memtile/macro"
	"github.com/memtile/memtile/vlog"
)

func openramDescriptor() macro.Descriptor {
	return macro.NewDescriptor("sky130_sram", []macro.Port{
		{Name: "clk0", Bits: 1, Dir: macro.In},
		{Name: "csb0", Bits: 1, Dir: macro.In},
		{Name: "web0", Bits: 1, Dir: macro.In},
		{Name: "wmask0", Bits: 4, Dir: macro.In},
		{Name: "addr0", Bits: 9, Dir: macro.In},
		{Name: "din0", Bits: 32, Dir: macro.In},
		{Name: "dout0", Bits: 32, Dir: macro.Out},
		{Name: "clk1", Bits: 1, Dir: macro.In},
		{Name: "csb1", Bits: 1, Dir: macro.In},
		{Name: "addr1", Bits: 9, Dir: macro.In},
		{Name: "dout1", Bits: 32, Dir: macro.Out},
	})
}

func combinedDescriptor() macro.Descriptor {
	return macro.NewDescriptor("ts1n16ffc", []macro.Port{
		{Name: "CLK", Bits: 1, Dir: macro.In},
		{Name: "CEB", Bits: 1, Dir: macro.In},
		{Name: "WEB", Bits: 1, Dir: macro.In},
		{Name: "A", Bits: 9, Dir: macro.In},
		{Name: "D", Bits: 32, Dir: macro.In},
		{Name: "Q", Bits: 32, Dir: macro.Out},
	})
}

var _ = Describe("Builder", func() {
	Context("without a macro", func() {
		It("should build a flip-flop backed hierarchy", func() {
			mem, err := MakeBuilder().
				WithBits(17).
				WithLineNum(64).
				Build("tile")

			Expect(err).ToNot(HaveOccurred())
			Expect(mem.TopName).To(Equal("tile"))
			Expect(mem.Module("tile_ff")).ToNot(BeNil())
			Expect(mem.Module("tile_leaf")).ToNot(BeNil())
			Expect(mem.Module("tile_row")).ToNot(BeNil())
			Expect(mem.Module("tile_mux")).ToNot(BeNil())
			Expect(mem.Top()).ToNot(BeNil())
		})

		It("should expose only the capable side of each port", func() {
			mem, err := MakeBuilder().
				WithBits(17).
				WithLineNum(64).
				Build("tile")
			Expect(err).ToNot(HaveOccurred())

			top := mem.Top().Render()
			Expect(top).To(ContainSubstring("input wr0;"))
			Expect(top).To(ContainSubstring("input [16:0] wr0_data;"))
			Expect(top).To(ContainSubstring("input [16:0] wr0_sel;"))
			Expect(top).To(ContainSubstring("input rd1;"))
			Expect(top).To(ContainSubstring("output [16:0] rd1_data;"))
			Expect(top).To(ContainSubstring("output rd1_valid;"))
			Expect(top).ToNot(ContainSubstring("input rd0;"))
			Expect(top).ToNot(ContainSubstring("input wr1;"))
		})

		It("should emit the simulation access tasks", func() {
			mem, err := MakeBuilder().
				WithBits(17).
				WithLineNum(64).
				Build("tile")
			Expect(err).ToNot(HaveOccurred())

			top := mem.Top().Render()
			Expect(top).To(ContainSubstring("task automatic write;"))
			Expect(top).To(ContainSubstring("task automatic read;"))
			Expect(top).To(ContainSubstring("task automatic write_file;"))
			Expect(top).To(ContainSubstring("$readmemh(filename, load_mem);"))
			Expect(top).To(ContainSubstring(
				`"write address 0x%0h is out of memory size 0x%0h"`))
		})
	})

	Context("with a tiled macro", func() {
		var mem *Memory

		BeforeEach(func() {
			var err error
			mem, err = MakeBuilder().
				WithBits(64).
				WithLineNum(4096).
				WithMacro(openramDescriptor()).
				WithDualClock(true).
				Build("l2")

			Expect(err).ToNot(HaveOccurred())
		})

		It("should plan two banks and eight rows", func() {
			Expect(mem.Plan.Tiling.BankNum).To(Equal(2))
			Expect(mem.Plan.Tiling.RowNum).To(Equal(8))
			Expect(mem.Plan.BitSel).To(Equal(8))
			Expect(mem.Plan.DualClock).To(BeTrue())
		})

		It("should instantiate each tier", func() {
			top := mem.Top().Render()
			Expect(top).To(ContainSubstring("l2_row row0 ("))
			Expect(top).To(ContainSubstring("l2_row row7 ("))
			Expect(top).To(ContainSubstring("l2_mux mux"))

			row := mem.Module("l2_row").Render()
			Expect(row).To(ContainSubstring("l2_leaf bank0 ("))
			Expect(row).To(ContainSubstring("l2_leaf bank1 ("))

			leaf := mem.Module("l2_leaf").Render()
			Expect(leaf).To(ContainSubstring("sky130_sram sram ("))
		})

		It("should drive the macro control pins", func() {
			leaf := mem.Module("l2_leaf").Render()
			Expect(leaf).To(ContainSubstring(".csb0(~(wr0 | rd0))"))
			Expect(leaf).To(ContainSubstring(".web0(rd0)"))
			Expect(leaf).To(ContainSubstring(
				".addr0(wr0 ? wr0_addr : rd0_addr)"))
			Expect(leaf).To(ContainSubstring(".wmask0(wsel0)"))
		})

		It("should guard the decode invariants", func() {
			top := mem.Top().Render()
			Expect(top).To(ContainSubstring("assert_never: wr0_no_row_sel"))
			Expect(top).To(ContainSubstring(
				"without any row selected"))

			row := mem.Module("l2_row").Render()
			Expect(row).To(ContainSubstring("assert_never: wr0_no_bank_sel"))
		})

		It("should expose the strobe at the macro granularity", func() {
			top := mem.Top().Render()
			Expect(top).To(ContainSubstring("input [7:0] wr0_strb;"))
		})

		It("should note the tiling shape on the emitted top", func() {
			top := mem.Top().Render()
			Expect(top).To(ContainSubstring("// banks: 2, rows: 8"))
		})

		It("should route the read valid through the mux", func() {
			top := mem.Top().Render()
			Expect(top).To(ContainSubstring(".valid(rd1_valid_q)"))
			Expect(top).To(ContainSubstring(".valid_out(rd1_valid)"))

			mux := mem.Module("l2_mux").Render()
			Expect(mux).To(ContainSubstring("assign valid_out = valid;"))
		})
	})

	Context("with a maskless macro and a byte select request", func() {
		It("should warn that partial writes degrade", func() {
			mem, err := MakeBuilder().
				WithBits(32).
				WithLineNum(512).
				WithBitSel(8).
				WithMacro(combinedDescriptor()).
				Build("buf")

			Expect(err).ToNot(HaveOccurred())
			Expect(mem.Diagnostics).ToNot(BeEmpty())
			Expect(mem.Diagnostics[0].Message).To(
				ContainSubstring("no write mask pin"))
		})
	})

	Context("with a shared registry", func() {
		It("should keep module names unique across builds", func() {
			reg := vlog.NewRegistry()
			b := MakeBuilder().WithBits(8).WithLineNum(16).WithRegistry(reg)

			first, err := b.Build("")
			Expect(err).ToNot(HaveOccurred())
			second, err := b.Build("")
			Expect(err).ToNot(HaveOccurred())

			Expect(first.TopName).To(Equal("mem"))
			Expect(second.TopName).To(Equal("mem_1"))
		})
	})

	Context("with an output register", func() {
		It("should clock the mux", func() {
			mem, err := MakeBuilder().
				WithBits(8).
				WithLineNum(16).
				WithSampleOut(true).
				Build("slowmem")

			Expect(err).ToNot(HaveOccurred())
			Expect(mem.Plan.ReadLatency()).To(Equal(2))

			mux := mem.Module("slowmem_mux").Render()
			Expect(mux).To(ContainSubstring("always @(posedge clk)"))
		})
	})

	It("should reject an unbindable macro", func() {
		desc := macro.NewDescriptor("mystery", []macro.Port{
			{Name: "ck", Bits: 1, Dir: macro.In},
		})

		_, err := MakeBuilder().WithMacro(desc).Build("bad")

		Expect(err).To(HaveOccurred())
	})
})
