package macro_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/memtile/memtile/macro"
)

var _ = Describe("Bind", func() {
	var (
		mockCtrl *gomock.Controller
		desc     *MockDescriptor
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		desc = NewMockDescriptor(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	describeMacro := func(name string, ports []macro.Port) {
		desc.EXPECT().Name().Return(name).AnyTimes()
		desc.EXPECT().Ports().Return(ports).AnyTimes()
	}

	Context("with an OpenRAM style pinout", func() {
		BeforeEach(func() {
			describeMacro("sky130_sram_1kbyte", []macro.Port{
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
		})

		It("should detect the convention", func() {
			b, err := macro.Bind(desc)

			Expect(err).ToNot(HaveOccurred())
			Expect(b.Convention()).To(Equal(macro.OpenRAM))
			Expect(b.MemPath()).To(Equal("mem"))
			Expect(b.Pins(0).DataIn).To(Equal("din0"))
			Expect(b.Pins(1).DataOut).To(Equal("dout1"))
		})

		It("should derive the capabilities from the present pins", func() {
			b, err := macro.Bind(desc)

			Expect(err).ToNot(HaveOccurred())
			Expect(b.Capability(0)).To(Equal(macro.CapReadWrite))
			Expect(b.Capability(1)).To(Equal(macro.CapRead))
		})

		It("should derive the geometry from the pin widths", func() {
			b, err := macro.Bind(desc)
			Expect(err).ToNot(HaveOccurred())

			g := b.Geometry()
			Expect(g.Bits).To(Equal(32))
			Expect(g.AddrBits).To(Equal(9))
			Expect(g.LineNum).To(Equal(512))
			Expect(g.BitSel).To(Equal(8))
			Expect(g.DualClock).To(BeTrue())
			Expect(g.PortNum()).To(Equal(2))
		})
	})

	Context("with a split read/write pinout", func() {
		BeforeEach(func() {
			describeMacro("ts6n16ffc", []macro.Port{
				{Name: "CLKW", Bits: 1, Dir: macro.In},
				{Name: "WEB", Bits: 1, Dir: macro.In},
				{Name: "AA", Bits: 8, Dir: macro.In},
				{Name: "D", Bits: 16, Dir: macro.In},
				{Name: "BWEB", Bits: 16, Dir: macro.In},
				{Name: "CLKR", Bits: 1, Dir: macro.In},
				{Name: "REB", Bits: 1, Dir: macro.In},
				{Name: "AB", Bits: 8, Dir: macro.In},
				{Name: "Q", Bits: 16, Dir: macro.Out},
			})
		})

		It("should detect the convention", func() {
			b, err := macro.Bind(desc)

			Expect(err).ToNot(HaveOccurred())
			Expect(b.Convention()).To(Equal(macro.TSMCSplit))
			Expect(b.MemPath()).To(Equal("u_ram_core.memory"))
		})

		It("should split the capabilities across the ports", func() {
			b, err := macro.Bind(desc)

			Expect(err).ToNot(HaveOccurred())
			Expect(b.Capability(0)).To(Equal(macro.CapWrite))
			Expect(b.Capability(1)).To(Equal(macro.CapRead))
		})

		It("should treat the second clock as a dual clock", func() {
			b, err := macro.Bind(desc)
			Expect(err).ToNot(HaveOccurred())
			Expect(b.Geometry().DualClock).To(BeTrue())
		})
	})

	Context("with a combined single port pinout", func() {
		BeforeEach(func() {
			describeMacro("ts1n16ffc", []macro.Port{
				{Name: "CLK", Bits: 1, Dir: macro.In},
				{Name: "CEB", Bits: 1, Dir: macro.In},
				{Name: "WEB", Bits: 1, Dir: macro.In},
				{Name: "A", Bits: 10, Dir: macro.In},
				{Name: "D", Bits: 64, Dir: macro.In},
				{Name: "BWEB", Bits: 64, Dir: macro.In},
				{Name: "Q", Bits: 64, Dir: macro.Out},
			})
		})

		It("should bind everything onto one port", func() {
			b, err := macro.Bind(desc)

			Expect(err).ToNot(HaveOccurred())
			Expect(b.Convention()).To(Equal(macro.TSMCCombined))
			Expect(b.Capability(0)).To(Equal(macro.CapReadWrite))
			Expect(b.Capability(1)).To(Equal(macro.CapNone))

			g := b.Geometry()
			Expect(g.PortNum()).To(Equal(1))
			Expect(g.BitSel).To(Equal(1))
			Expect(g.DualClock).To(BeFalse())
		})
	})

	Context("with an unknown pinout", func() {
		BeforeEach(func() {
			describeMacro("mystery", []macro.Port{
				{Name: "ck", Bits: 1, Dir: macro.In},
				{Name: "adr", Bits: 8, Dir: macro.In},
			})
		})

		It("should refuse to bind", func() {
			_, err := macro.Bind(desc)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unrecognized pinout"))
		})
	})
})
