package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		result := Truncate("this is a long string", 10)
		Expect(result).To(Equal("this is a ..."))
	})

	It("never splits a multibyte rune at the limit", func() {
		// "é" is two bytes; a limit of 3 lands mid-rune.
		Expect(Truncate("aaéé", 3)).To(Equal("aa..."))
	})
})

var _ = Describe("clip", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Clip("short", 10)).To(Equal("short"))
	})

	It("cuts at the limit on ascii text", func() {
		Expect(Clip("1234567890", 4)).To(Equal("1234"))
	})

	It("backs off to the previous rune boundary", func() {
		Expect(Clip("aaéé", 3)).To(Equal("aa"))
		Expect(Clip("aaéé", 4)).To(Equal("aaé"))
	})

	It("handles a limit landing inside the first rune", func() {
		Expect(Clip("日本語", 2)).To(Equal(""))
	})
})
