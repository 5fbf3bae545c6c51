package memgen

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Mux", func() {
	Context("with an encoded selector", func() {
		It("should decode the binary select per input", func() {
			m := buildMux("pick", muxConfig{num: 4, bits: 8, encode: true})

			text := m.Render()
			Expect(text).To(ContainSubstring("input [1:0] sel;"))
			Expect(text).To(ContainSubstring(
				"assign decoded_sel[0] = sel == 2'd0;"))
			Expect(text).To(ContainSubstring(
				"assign decoded_sel[3] = sel == 2'd3;"))
			Expect(text).To(ContainSubstring("({8{decoded_sel[3]}} & din3)"))
		})
	})

	Context("with a valid strobe", func() {
		It("should pass the valid through combinationally", func() {
			m := buildMux("pick", muxConfig{num: 2, bits: 4, hasValid: true})

			text := m.Render()
			Expect(text).To(ContainSubstring("input valid;"))
			Expect(text).To(ContainSubstring("output valid_out;"))
			Expect(text).To(ContainSubstring("assign valid_out = valid;"))
		})

		It("should register the valid alongside the data", func() {
			m := buildMux("pick", muxConfig{
				num:      2,
				bits:     4,
				sample:   true,
				hasValid: true,
			})

			text := m.Render()
			Expect(text).To(ContainSubstring(
				"if (valid) out <= ({4{decoded_sel[0]}} & din0) |"))
			Expect(text).To(ContainSubstring(
				"always @(posedge clk) valid_out <= valid;"))
		})
	})
})
