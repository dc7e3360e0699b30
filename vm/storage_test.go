package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PhysicalMemory", func() {

	var mem *PhysicalMemory

	BeforeEach(func() {
		mem = NewPhysicalMemory(4, 8)
	})

	It("should read back written words", func() {
		mem.WriteWord(2, 5, 42)

		Expect(mem.ReadWord(2, 5)).To(Equal(int64(42)))
		Expect(mem.ReadWord(2, 4)).To(Equal(int64(0)))
	})

	It("should panic on an out-of-range frame", func() {
		Expect(func() {
			mem.ReadWord(4, 0)
		}).To(Panic())
	})

	It("should panic on an out-of-range offset", func() {
		Expect(func() {
			mem.WriteWord(0, 8, 1)
		}).To(Panic())
	})
})

var _ = Describe("Disk", func() {

	var disk *Disk

	BeforeEach(func() {
		disk = NewDisk(4, 8)
	})

	It("should read back written words", func() {
		disk.WriteWord(3, 7, -9)

		Expect(disk.ReadWord(3, 7)).To(Equal(int64(-9)))
	})

	It("should panic on an out-of-range block", func() {
		Expect(func() {
			disk.ReadWord(-1, 0)
		}).To(Panic())
	})
})

var _ = Describe("Location", func() {

	It("should encode residency in the word sign", func() {
		Expect(Resident(7).word()).To(Equal(int64(7)))
		Expect(Archived(3).word()).To(Equal(int64(-3)))
		Expect(Location{}.word()).To(Equal(int64(0)))
	})

	It("should decode table words", func() {
		Expect(locationFromWord(7)).To(Equal(Resident(7)))
		Expect(locationFromWord(-3)).To(Equal(Archived(3)))
		Expect(locationFromWord(0).Kind()).To(Equal(LocationUnset))
	})

	It("should reject block 0 as an archive target", func() {
		Expect(func() {
			Archived(0)
		}).To(Panic())
	})
})
