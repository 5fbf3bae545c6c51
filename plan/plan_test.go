package plan_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/memtile/memtile/macro"
	"github.com/memtile/memtile/plan"
)

var _ = Describe("Plan", func() {
	var (
		mac macro.Geometry
		lim plan.Limits
	)

	BeforeEach(func() {
		mac = macro.Geometry{
			Name:     "sram_32x512",
			Bits:     32,
			AddrBits: 9,
			LineNum:  512,
			BitSel:   8,
			PortCaps: [macro.MaxPorts]macro.Capability{
				macro.CapWrite, macro.CapRead,
			},
		}
		lim = plan.DefaultLimits()
	})

	Context("without a macro", func() {
		It("should plan a single flip-flop leaf", func() {
			p, diags, err := plan.Build(plan.Request{
				Bits:    17,
				LineNum: 100,
				BitSel:  plan.BitSelInherit,
			}, nil, lim)

			Expect(err).ToNot(HaveOccurred())
			Expect(diags).To(BeEmpty())
			Expect(p.Tiling.BankNum).To(Equal(1))
			Expect(p.Tiling.RowNum).To(Equal(1))
			Expect(p.Tiling.BitsPerBank).To(Equal(17))
			Expect(p.Tiling.LinesPerRow).To(Equal(100))
			Expect(p.BitSel).To(Equal(1))
			Expect(p.PortNum).To(Equal(2))
			Expect(p.PortCaps[0]).To(Equal(macro.CapWrite))
			Expect(p.PortCaps[1]).To(Equal(macro.CapRead))
		})

		It("should honor a dual clock request", func() {
			p, _, err := plan.Build(plan.Request{
				Bits:      8,
				LineNum:   16,
				DualClock: true,
			}, nil, lim)

			Expect(err).ToNot(HaveOccurred())
			Expect(p.DualClock).To(BeTrue())
		})
	})

	Context("with a macro", func() {
		It("should tile banks and rows", func() {
			p, diags, err := plan.Build(plan.Request{
				Bits:    64,
				LineNum: 4096,
				BitSel:  plan.BitSelInherit,
			}, &mac, lim)

			Expect(err).ToNot(HaveOccurred())
			Expect(diags).To(BeEmpty())
			Expect(p.Tiling.BankNum).To(Equal(2))
			Expect(p.Tiling.RowNum).To(Equal(8))
			Expect(p.Tiling.BitsPerBank).To(Equal(32))
			Expect(p.Tiling.LinesPerRow).To(Equal(512))
			Expect(p.BitSel).To(Equal(8))
			Expect(p.Partition.AddrBits).To(Equal(12))
			Expect(p.Partition.RowSelBits).To(Equal(3))
			Expect(p.Partition.SRAMAddrBits).To(Equal(9))
		})

		It("should round the width up to a whole bank", func() {
			p, _, err := plan.Build(plan.Request{
				Bits:    17,
				LineNum: 512,
				BitSel:  0,
			}, &mac, lim)

			Expect(err).ToNot(HaveOccurred())
			Expect(p.Tiling.BankNum).To(Equal(1))
			Expect(p.Tiling.BitsRoundup).To(Equal(32))
		})

		It("should warn when the shape is smaller than the macro", func() {
			_, diags, err := plan.Build(plan.Request{
				Bits:    32,
				LineNum: 100,
				BitSel:  0,
			}, &mac, lim)

			Expect(err).ToNot(HaveOccurred())
			Expect(diags).To(HaveLen(1))
			Expect(diags[0].Severity).To(Equal(plan.SeverityWarning))
			Expect(diags[0].Message).To(ContainSubstring("less than"))
		})

		It("should suppress a dual clock request on a single clock macro",
			func() {
				p, _, err := plan.Build(plan.Request{
					Bits:      32,
					LineNum:   512,
					DualClock: true,
				}, &mac, lim)

				Expect(err).ToNot(HaveOccurred())
				Expect(p.DualClock).To(BeFalse())
			})

		It("should reject rows with a non power of 2 depth", func() {
			mac.LineNum = 500
			mac.AddrBits = 9

			_, _, err := plan.Build(plan.Request{
				Bits:    32,
				LineNum: 1000,
			}, &mac, lim)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("power of 2"))
		})
	})

	Context("input validation", func() {
		It("should reject a non positive width", func() {
			_, _, err := plan.Build(plan.Request{
				Bits:    0,
				LineNum: 16,
			}, nil, lim)

			Expect(err).To(HaveOccurred())
		})

		It("should reject a depth of one", func() {
			_, _, err := plan.Build(plan.Request{
				Bits:    8,
				LineNum: 1,
			}, nil, lim)

			Expect(err).To(HaveOccurred())
		})

		It("should reject a granularity that does not divide the width",
			func() {
				_, _, err := plan.Build(plan.Request{
					Bits:    32,
					LineNum: 512,
					BitSel:  3,
				}, &mac, lim)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("granularity"))
			})

		It("should reject a granularity wider than the data width",
			func() {
				// 4 bits at granularity 8 would leave no strobe bits,
				// even though the rounded bank width divides evenly.
				_, _, err := plan.Build(plan.Request{
					Bits:    4,
					LineNum: 512,
					BitSel:  8,
				}, &mac, lim)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("exceeds data width"))
			})
	})

	Context("capacity ceilings", func() {
		It("should warn on an overrun by default", func() {
			lim.MaxRowNum = 4

			_, diags, err := plan.Build(plan.Request{
				Bits:    32,
				LineNum: 4096,
			}, &mac, lim)

			Expect(err).ToNot(HaveOccurred())
			Expect(diags).To(HaveLen(1))
			Expect(diags[0].Message).To(ContainSubstring("row number"))
		})

		It("should fail on an overrun when strict", func() {
			lim.MaxRowNum = 4
			lim.Strict = true

			_, _, err := plan.Build(plan.Request{
				Bits:    32,
				LineNum: 4096,
			}, &mac, lim)

			Expect(err).To(HaveOccurred())
		})
	})

	Context("derived properties", func() {
		It("should report the read latency", func() {
			p, _, err := plan.Build(plan.Request{
				Bits:    8,
				LineNum: 16,
			}, nil, lim)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.ReadLatency()).To(Equal(1))

			p, _, err = plan.Build(plan.Request{
				Bits:      8,
				LineNum:   16,
				SampleOut: true,
			}, nil, lim)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.ReadLatency()).To(Equal(2))
		})

		It("should report the strobe width", func() {
			p, _, err := plan.Build(plan.Request{
				Bits:    64,
				LineNum: 512,
				BitSel:  8,
			}, &mac, lim)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.StrobeBits()).To(Equal(8))

			p, _, err = plan.Build(plan.Request{
				Bits:    64,
				LineNum: 512,
				BitSel:  0,
			}, &mac, lim)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.StrobeBits()).To(Equal(0))
		})

		It("should carry a guard for each invariant of each port", func() {
			p, _, err := plan.Build(plan.Request{
				Bits:    8,
				LineNum: 16,
			}, nil, lim)
			Expect(err).ToNot(HaveOccurred())

			Expect(p.Guards).To(HaveLen(8))
			Expect(p.Guards[0].Name()).To(Equal("wr0_no_row_sel"))
			Expect(p.Guards[0].Message()).To(
				ContainSubstring("without any row selected"))
		})
	})
})
